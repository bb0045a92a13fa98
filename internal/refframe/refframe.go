// Package refframe implements the adaptive reference-frame model: RESET
// and UPDATE modes with per-pixel dynamic-object age tracking.
package refframe

// Mode selects which reference-frame operation to run this frame.
type Mode int

const (
	Update Mode = iota
	Reset
)

// State is the subset of per-camera state the reference-frame model reads
// and mutates.
type State struct {
	Ref    []byte
	Virgin []byte
	RefDyn []int32
	Out    []byte // motion image; consulted to decide "still moving"

	SmartmaskFinal []byte
	Noise          uint8
	LastRate       int
}

// Apply runs one reference-frame step. RESET copies virgin into ref and
// zeroes every dynamic-object age counter. UPDATE runs the per-pixel state
// machine described in the component design.
func Apply(s *State, mode Mode) {
	if mode == Reset {
		copy(s.Ref, s.Virgin)
		for i := range s.RefDyn {
			s.RefDyn[i] = 0
		}
		return
	}

	acceptTimer := s.LastRate * 10
	if s.LastRate > 5 {
		acceptTimer /= s.LastRate / 3
	}
	// threshold_ref = noise * 20 / 100, truncating int division exactly as
	// the original C performs it.
	thresholdRef := int(s.Noise) * 20 / 100

	for i := range s.Ref {
		if s.SmartmaskFinal != nil && s.SmartmaskFinal[i] == 0 {
			s.RefDyn[i] = 0
			s.Ref[i] = s.Virgin[i]
			continue
		}
		d := int(s.Ref[i]) - int(s.Virgin[i])
		if d < 0 {
			d = -d
		}
		if d > thresholdRef {
			switch {
			case s.RefDyn[i] == 0:
				s.RefDyn[i] = 1
			case int(s.RefDyn[i]) > acceptTimer:
				s.RefDyn[i] = 0
				s.Ref[i] = s.Virgin[i]
			case s.Out[i] != 0:
				s.RefDyn[i]++
			default:
				s.RefDyn[i] = 0
				s.Ref[i] = byte((int(s.Ref[i]) + int(s.Virgin[i])) / 2)
			}
		} else {
			s.RefDyn[i] = 0
			s.Ref[i] = s.Virgin[i]
		}
	}
}

// MicroLightswitch reports whether the current frame looks like a
// micro-lightswitch: bounded change in diffs magnitude and bounded
// centroid drift within a 2-second window, in which case the caller
// should substitute a RESET for the scheduled UPDATE and zero this
// frame's diffs.
func MicroLightswitch(lightswitchFramecounter, lastrate, diffs, previousDiffs, locX, locY, prevLocX, prevLocY, w, h int) bool {
	if lightswitchFramecounter >= lastrate*2 {
		return false
	}
	if previousDiffs == 0 {
		return false
	}
	diffDelta := absInt(previousDiffs - diffs)
	if diffDelta >= previousDiffs/15 {
		return false
	}
	if absInt(locX-prevLocX) > w/150 {
		return false
	}
	if absInt(locY-prevLocY) > h/150 {
		return false
	}
	return true
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
