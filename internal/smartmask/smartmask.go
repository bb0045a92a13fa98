// Package smartmask implements the per-pixel sensitivity learner: pixels
// chronically flagged as motion are gradually masked out.
package smartmask

import "github.com/Motion-Project/motiond/internal/morph"

const maxLevel = 80
const significanceThreshold = 20

// State is the subset of per-camera state the learner reads and mutates.
type State struct {
	Smartmask       []byte
	SmartmaskFinal  []byte
	SmartmaskBuffer []int32
}

// Interval returns the frame interval between learner runs, per the
// component design: 5*lastrate*(11-speed) frames when speed > 0.
func Interval(lastrate, speed int) int {
	if speed <= 0 {
		return 0
	}
	return 5 * lastrate * (11 - speed)
}

// Learn runs one pass of the smartmask learner: decay, accumulate,
// threshold, then expand the masked-out region via erode9+erode5 with
// border flag 255 (inverted logic: these erodes grow the zeroed region).
func Learn(s *State, w, h, lastrate, speed int) {
	sensitivity := lastrate * (11 - speed)
	if sensitivity <= 0 {
		sensitivity = 1
	}
	for i := range s.Smartmask {
		if s.Smartmask[i] > 0 {
			s.Smartmask[i]--
		}
		inc := int(s.SmartmaskBuffer[i]) / sensitivity
		if inc > 0 {
			v := int(s.Smartmask[i]) + inc
			if v > maxLevel {
				v = maxLevel
			}
			s.Smartmask[i] = byte(v)
			s.SmartmaskBuffer[i] %= int32(sensitivity)
		}
	}
	for i := range s.SmartmaskFinal {
		if s.Smartmask[i] > significanceThreshold {
			s.SmartmaskFinal[i] = 0
		} else {
			s.SmartmaskFinal[i] = 255
		}
	}
	scratch := make([]byte, len(s.SmartmaskFinal))
	morph.Erode9(scratch, s.SmartmaskFinal, w, h, 255)
	morph.Erode5(s.SmartmaskFinal, scratch, w, h, 255)
}
