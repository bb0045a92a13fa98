package morph

import "fmt"

// Op is one step of a despeckle program.
type Op byte

const (
	OpErode9 Op = 'E'
	OpErode5 Op = 'e'
	OpDilate9 Op = 'D'
	OpDilate5 Op = 'd'
	OpLabel  Op = 'l'
)

// Program is a parsed despeckle string, e.g. "EedDl".
type Program []Op

// ParseProgram parses a despeckle configuration string, rejecting any byte
// that isn't one of E, e, D, d, l.
func ParseProgram(s string) (Program, error) {
	p := make(Program, 0, len(s))
	for _, c := range []byte(s) {
		switch Op(c) {
		case OpErode9, OpErode5, OpDilate9, OpDilate5, OpLabel:
			p = append(p, Op(c))
		default:
			return nil, fmt.Errorf("morph: unknown despeckle op %q", c)
		}
	}
	return p, nil
}

// Result summarizes the outcome of running a despeckle program.
type Result struct {
	Diffs        int
	LabelingRan  bool
	LabelResult  LabelResult
}

// Despeckle runs the parsed program against out (modified in place using
// scratch as ping-pong storage; scratch must be the same length as out).
// If an erode step reaches zero surviving pixels, remaining ops are
// skipped. Labeling only runs, and is only considered active, if OpLabel
// is present and reached, and uses the camera's own dynamic threshold as
// the component-significance cutoff (alg.c:384's `labelsize > cnt->threshold`),
// not a fixed fraction of the frame.
func Despeckle(out, scratch []byte, w, h int, prog Program, threshold int) Result {
	cur, next := out, scratch
	count := nonZero(cur)
	labeled := false
	var lr LabelResult
	for _, op := range prog {
		switch op {
		case OpErode9:
			count = Erode9(next, cur, w, h, 0)
			cur, next = next, cur
		case OpErode5:
			count = Erode5(next, cur, w, h, 0)
			cur, next = next, cur
		case OpDilate9:
			count = Dilate9(next, cur, w, h, 0)
			cur, next = next, cur
		case OpDilate5:
			count = Dilate5(next, cur, w, h, 0)
			cur, next = next, cur
		case OpLabel:
			lr = Label(cur, w, h, threshold)
			labeled = true
		}
		if (op == OpErode9 || op == OpErode5) && count == 0 {
			break
		}
		if labeled {
			break
		}
	}
	// cur may be the caller's scratch buffer rather than out, since each
	// step ping-pongs between the two; copy the final result back into out
	// so the caller's slice always holds the despeckled image.
	if &cur[0] != &out[0] {
		copy(out, cur)
	}
	if labeled {
		return Result{Diffs: lr.LabelgroupMax, LabelingRan: true, LabelResult: lr}
	}
	return Result{Diffs: count}
}

func nonZero(b []byte) int {
	n := 0
	for _, v := range b {
		if v != 0 {
			n++
		}
	}
	return n
}
