package morph

import "testing"

func TestErodeDilateAllZeroIdempotent(t *testing.T) {
	w, h := 6, 5
	src := make([]byte, w*h)
	dst := make([]byte, w*h)
	if n := Erode9(dst, src, w, h, 0); n != 0 {
		t.Errorf("Erode9 on all-zero: count = %d, want 0", n)
	}
	for _, v := range dst {
		if v != 0 {
			t.Fatalf("Erode9 on all-zero produced non-zero output")
		}
	}
	if n := Dilate9(dst, src, w, h, 0); n != 0 {
		t.Errorf("Dilate9 on all-zero: count = %d, want 0", n)
	}
}

func TestErodeShrinksDilateGrows(t *testing.T) {
	w, h := 7, 7
	src := make([]byte, w*h)
	// A single interior blob of 3x3 set to 200.
	for y := 2; y <= 4; y++ {
		for x := 2; x <= 4; x++ {
			src[y*w+x] = 200
		}
	}
	dst := make([]byte, w*h)
	Erode9(dst, src, w, h, 0)
	for i := range dst {
		if dst[i] > src[i] {
			t.Fatalf("erode must not increase any pixel: dst[%d]=%d src[%d]=%d", i, dst[i], i, src[i])
		}
	}
	Dilate9(dst, src, w, h, 0)
	for i := range dst {
		if dst[i] < src[i] {
			t.Fatalf("dilate must not decrease any pixel: dst[%d]=%d src[%d]=%d", i, dst[i], i, src[i])
		}
	}
}

func TestDespeckleEmptyProgramUnchanged(t *testing.T) {
	w, h := 4, 4
	out := []byte{0, 1, 0, 0, 0, 2, 0, 0, 0, 0, 3, 0, 0, 0, 0, 0}
	orig := append([]byte(nil), out...)
	scratch := make([]byte, len(out))
	res := Despeckle(out, scratch, w, h, nil, 1)
	for i := range out {
		if out[i] != orig[i] {
			t.Fatalf("empty despeckle program changed out[%d]: %d -> %d", i, orig[i], out[i])
		}
	}
	if res.Diffs != 3 {
		t.Errorf("Diffs = %d, want 3", res.Diffs)
	}
}

func TestParseProgramRejectsUnknown(t *testing.T) {
	if _, err := ParseProgram("EedDlX"); err == nil {
		t.Fatal("ParseProgram accepted an unknown op")
	}
	p, err := ParseProgram("EedDl")
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	if len(p) != 5 {
		t.Fatalf("len(p) = %d, want 5", len(p))
	}
}

func TestLabelBackgroundAndForeground(t *testing.T) {
	w, h := 5, 5
	out := make([]byte, w*h)
	out[12] = 255 // center pixel only
	res := Label(out, w, h, 0)
	for i, v := range out {
		if v == 0 {
			if res.Labels[i] != 1 {
				t.Errorf("background pixel %d has label %d, want 1", i, res.Labels[i])
			}
		} else {
			if res.Labels[i] < 2 {
				t.Errorf("foreground pixel %d has label %d, want >= 2", i, res.Labels[i])
			}
		}
	}
}

func TestLabelSignificance(t *testing.T) {
	w, h := 6, 6
	out := make([]byte, w*h)
	for y := 1; y <= 3; y++ {
		for x := 1; x <= 3; x++ {
			out[y*w+x] = 200
		}
	}
	res := Label(out, w, h, 4) // 9-pixel blob exceeds threshold 4
	if res.LabelsAbove != 1 {
		t.Fatalf("LabelsAbove = %d, want 1", res.LabelsAbove)
	}
	if res.LabelgroupMax != 9 {
		t.Fatalf("LabelgroupMax = %d, want 9", res.LabelgroupMax)
	}
	for y := 1; y <= 3; y++ {
		for x := 1; x <= 3; x++ {
			if res.Labels[y*w+x]&SignificantBit == 0 {
				t.Fatalf("pixel (%d,%d) not marked significant", x, y)
			}
		}
	}
}
