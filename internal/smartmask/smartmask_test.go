package smartmask

import "testing"

func TestLearnThresholdAndDecay(t *testing.T) {
	w, h := 6, 6
	n := w * h
	s := &State{
		Smartmask:       make([]byte, n),
		SmartmaskFinal:  make([]byte, n),
		SmartmaskBuffer: make([]int32, n),
	}
	for i := range s.SmartmaskFinal {
		s.SmartmaskFinal[i] = 255
	}
	// Hammer the center pixel's buffer so it crosses the significance
	// threshold after a few learner passes. Each pass stands for one
	// learner interval in which the pixel was flagged on 2*sensitivity
	// frames at +5 each; sensitivity = lastrate*(11-speed) = 60, so every
	// pass adds 600/60 = 10 to the level while decay takes 1.
	center := (h/2)*w + w/2
	for pass := 0; pass < 10; pass++ {
		s.SmartmaskBuffer[center] += 5 * 2 * 60
		Learn(s, w, h, 10, 5)
	}
	if s.Smartmask[center] <= significanceThreshold {
		t.Fatalf("Smartmask[center] = %d, want > %d after repeated hits", s.Smartmask[center], significanceThreshold)
	}
}

func TestLearnCapsAtMaxLevel(t *testing.T) {
	w, h := 4, 4
	n := w * h
	s := &State{
		Smartmask:       make([]byte, n),
		SmartmaskFinal:  make([]byte, n),
		SmartmaskBuffer: make([]int32, n),
	}
	for i := range s.SmartmaskFinal {
		s.SmartmaskFinal[i] = 255
	}
	for i := range s.SmartmaskBuffer {
		s.SmartmaskBuffer[i] = 1000000
	}
	for pass := 0; pass < 5; pass++ {
		Learn(s, w, h, 10, 10)
	}
	for i, v := range s.Smartmask {
		if v > maxLevel {
			t.Fatalf("Smartmask[%d] = %d exceeds cap %d", i, v, maxLevel)
		}
	}
}

func TestIntervalZeroWhenSpeedOff(t *testing.T) {
	if Interval(30, 0) != 0 {
		t.Fatal("Interval must be 0 when speed <= 0")
	}
}
