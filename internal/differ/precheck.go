package differ

// FastPreCheck samples every step-th pixel, step = max(1, n/10000) forced
// odd, and reports whether the sampled change count already indicates
// enough motion that the caller should run the full Standard differ.
// Detecting is true while motion is already confirmed or setup mode is on,
// in which case the pre-check is skipped entirely (the caller always runs
// the full differ).
func FastPreCheck(ref, new []byte, noise uint8, maxChanges int, detecting bool) bool {
	if detecting {
		return true
	}
	n := len(new)
	step := n / 10000
	if step < 1 {
		step = 1
	}
	if step%2 == 0 {
		step++
	}
	limit := maxChanges / (2 * step)
	count := 0
	for i := 0; i < n; i += step {
		if absDiff(int(ref[i]), int(new[i])) > int(noise) {
			count++
			if count > limit {
				return true
			}
		}
	}
	return false
}
