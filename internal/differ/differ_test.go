package differ

import (
	"math/rand"
	"testing"
)

func TestStandardNoMaskSinglePixel(t *testing.T) {
	ref := make([]byte, 32)
	new := make([]byte, 32)
	for i := range ref {
		ref[i] = 128
		new[i] = 128
	}
	new[17] = 255
	dst := make([]byte, 32)
	buf := make([]int32, 32)
	res := Standard.Diff(dst, ref, new, buf, Options{Noise: 50})
	if res.Diffs != 1 {
		t.Fatalf("Diffs = %d, want 1", res.Diffs)
	}
	if dst[17] != 255 {
		t.Errorf("dst[17] = %d, want 255", dst[17])
	}
	for i, v := range dst {
		if i != 17 && v != 0 {
			t.Errorf("dst[%d] = %d, want 0", i, v)
		}
	}
}

func TestStandardStillScene(t *testing.T) {
	ref := make([]byte, 32)
	new := make([]byte, 32)
	for i := range ref {
		ref[i] = 128
		new[i] = 128
	}
	dst := make([]byte, 32)
	buf := make([]int32, 32)
	res := Standard.Diff(dst, ref, new, buf, Options{Noise: 10})
	if res.Diffs != 0 {
		t.Fatalf("Diffs = %d, want 0", res.Diffs)
	}
}

func TestSmartmaskGate(t *testing.T) {
	n := 16
	ref := make([]byte, n)
	new := make([]byte, n)
	for i := range ref {
		ref[i] = 0
		new[i] = 255
	}
	sf := make([]byte, n)
	for i := range sf {
		sf[i] = 255
	}
	sf[3] = 0 // blocked pixel
	dst := make([]byte, n)
	buf := make([]int32, n)
	res := Standard.Diff(dst, ref, new, buf, Options{Noise: 10, SmartmaskSpeed: 5, SmartmaskFinal: sf, NewEvent: true})
	if res.Diffs != n-1 {
		t.Fatalf("Diffs = %d, want %d", res.Diffs, n-1)
	}
	if dst[3] != 0 {
		t.Errorf("dst[3] = %d, want 0 (blocked by smartmask)", dst[3])
	}
	if buf[3] != 5 {
		t.Errorf("buf[3] = %d, want 5: blocked pixels still accrue the buffer increment before the gate, per the algorithm order", buf[3])
	}
}

func TestScalarVectorEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 20; trial++ {
		n := 1 + rng.Intn(4096)
		ref := make([]byte, n)
		new := make([]byte, n)
		mask := make([]byte, n)
		sf := make([]byte, n)
		for i := range ref {
			ref[i] = byte(rng.Intn(256))
			new[i] = byte(rng.Intn(256))
			mask[i] = byte(rng.Intn(256))
			if rng.Intn(4) == 0 {
				sf[i] = 0
			} else {
				sf[i] = 255
			}
		}
		opts := Options{
			Noise:          uint8(rng.Intn(64)),
			UseMask:        trial%2 == 0,
			Mask:           mask,
			SmartmaskSpeed: trial % 3,
			SmartmaskFinal: sf,
			NewEvent:       trial%5 == 0,
		}
		dstA := make([]byte, n)
		dstB := make([]byte, n)
		bufA := make([]int32, n)
		bufB := make([]int32, n)
		resA := Standard.Diff(dstA, ref, new, bufA, opts)
		resB := StandardVector.Diff(dstB, ref, new, bufB, opts)
		if resA.Diffs != resB.Diffs {
			t.Fatalf("trial %d: Diffs mismatch scalar=%d vector=%d", trial, resA.Diffs, resB.Diffs)
		}
		for i := range dstA {
			if dstA[i] != dstB[i] {
				t.Fatalf("trial %d: dst[%d] mismatch scalar=%d vector=%d", trial, i, dstA[i], dstB[i])
			}
			if bufA[i] != bufB[i] {
				t.Fatalf("trial %d: buf[%d] mismatch scalar=%d vector=%d", trial, i, bufA[i], bufB[i])
			}
		}
	}
}

func TestFastPreCheckDetectingAlwaysTrue(t *testing.T) {
	ref := make([]byte, 100)
	new := make([]byte, 100)
	if !FastPreCheck(ref, new, 10, 50, true) {
		t.Fatal("FastPreCheck with detecting=true must always return true")
	}
}

func TestFastPreCheckStillScene(t *testing.T) {
	ref := make([]byte, 20000)
	new := make([]byte, 20000)
	for i := range ref {
		ref[i] = 100
		new[i] = 100
	}
	if FastPreCheck(ref, new, 10, 50, false) {
		t.Fatal("FastPreCheck on identical frames must return false")
	}
}
