// Package suppress implements the lightswitch and switchfilter whole-scene
// change detectors. Apply is the only entry point: it enforces that
// lightswitch is checked first and that switchfilter is skipped entirely
// when lightswitch already fired this frame, per the component design.
package suppress

// Result reports what a suppression pass decided.
type Result struct {
	Lightswitch bool
	Switch      bool
	Diffs       int // possibly zeroed
	Moved       int // moved counter floor to apply (0 if unchanged)
	RequestReset bool
}

// Options configures the two detectors.
type Options struct {
	LightswitchPercent int // 0..100, 0 disables
	SwitchfilterOn     bool
	W, H               int
}

// Apply runs lightswitch, then (only if it did not fire) switchfilter.
// rowCounts must have length H and hold the per-row motion-pixel count.
func Apply(diffs int, rowCounts []int, opts Options) Result {
	res := Result{Diffs: diffs}
	if opts.LightswitchPercent > 0 && lightswitch(diffs, opts.W, opts.H, opts.LightswitchPercent) {
		res.Lightswitch = true
		res.Diffs = 0
		res.Moved = 5
		res.RequestReset = true
		return res
	}
	if opts.SwitchfilterOn && switchfilter(rowCounts, diffs, opts.W, opts.H) {
		res.Switch = true
		res.Diffs = 0
	}
	return res
}

func lightswitch(diffs, w, h, pct int) bool {
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	n := w * h
	return diffs > n*pct/100
}

func switchfilter(rowCounts []int, diffs, w, h int) bool {
	if h == 0 {
		return false
	}
	lines := 0
	vertlines := 0
	lineThresh := 2 * diffs / h
	vertThresh := w / 18
	for _, c := range rowCounts {
		if c > lineThresh {
			lines++
		}
		if c > vertThresh {
			vertlines++
		}
	}
	if vertlines <= h/10 {
		return false
	}
	if lines >= vertlines/3 {
		return false
	}
	if vertlines > h/4 {
		return true
	}
	return lines-vertlines > lines/2
}

// RowCounts computes the per-row motion-pixel count from a motion image,
// used as the rowCounts input to Apply.
func RowCounts(out []byte, w, h int) []int {
	counts := make([]int, h)
	for y := 0; y < h; y++ {
		c := 0
		for x := 0; x < w; x++ {
			if out[y*w+x] != 0 {
				c++
			}
		}
		counts[y] = c
	}
	return counts
}
