package tune

// ThresholdTuneLength mirrors THRESHOLD_TUNE_LENGTH from the original.
const ThresholdTuneLength = 256

// ThresholdTuner maintains the ring of recent diffs samples used to slowly
// adapt the motion-declaration threshold.
type ThresholdTuner struct {
	last [ThresholdTuneLength]int
}

// Tune runs one threshold-tune step. When motion was declared this frame,
// the sample inserted into the ring is threshold/4 (damping the ring
// toward the current threshold rather than the inflated in-event diffs);
// otherwise the raw diffs value is inserted. The ring's top starts from
// this frame's raw diffs either way, so a large in-event diffs value still
// raises the threshold; the result is capped at maxChanges.
func (t *ThresholdTuner) Tune(diffs int, motionDeclared bool, oldThreshold, maxChanges int) int {
	var sample int
	if motionDeclared {
		sample = oldThreshold / 4
	} else {
		sample = diffs
	}
	copy(t.last[1:], t.last[:ThresholdTuneLength-1])
	t.last[0] = sample

	sum := 0
	top := diffs
	for _, v := range t.last {
		sum += v
		if v > top {
			top = v
		}
	}
	sum /= ThresholdTuneLength / 4

	candidate := sum
	if 2*top > candidate {
		candidate = 2 * top
	}
	newThreshold := (oldThreshold + candidate) / 2
	if newThreshold > maxChanges {
		newThreshold = maxChanges
	}
	return newThreshold
}
