package morph

// SignificantBit marks a label as belonging to a component whose size
// exceeded the significance threshold.
const SignificantBit = 1 << 15

// MaxSegments bounds the number of pixels one flood fill pushes. Once the
// bound is exceeded the fill stops: pixels already pushed keep the
// component's label but are not counted in its size, and pixels the fill
// never reached are labeled later as components of their own. This is
// acceptable degradation, not an error, mirroring the original's
// fixed-size segment stack.
const MaxSegments = 10000

// LabelResult is the outcome of running the connected-component labeler.
type LabelResult struct {
	Labels        []int32
	LabelgroupMax int // sum of sizes of all components above the threshold
	LabelsAbove   int // count of components above the threshold
	LargestLabel  int32
	LabelSizeMax  int
}

// Label performs 4-connected flood-fill labeling, with a per-pixel stack,
// over pixels
// where out[i] != 0. Labels start at 2; background (out[i] == 0) gets
// label 1. Components whose size exceeds sigThreshold have SignificantBit
// added to their label and contribute to LabelgroupMax.
func Label(out []byte, w, h, sigThreshold int) LabelResult {
	n := w * h
	labels := make([]int32, n)
	for i, v := range out {
		if v == 0 {
			labels[i] = 1
		}
	}

	res := LabelResult{Labels: labels}
	next := int32(2)
	stack := make([]int, 0, 256)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if out[i] == 0 || labels[i] != 0 {
				continue
			}
			stack = stack[:0]
			stack = append(stack, i)
			labels[i] = next
			size := 0
			pushed := 1
			members := make([]int, 0, 64)
			for len(stack) > 0 && pushed <= MaxSegments {
				j := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				members = append(members, j)
				size++
				jx, jy := j%w, j/w
				neighbors := [4][2]int{{jx - 1, jy}, {jx + 1, jy}, {jx, jy - 1}, {jx, jy + 1}}
				for _, nb := range neighbors {
					nx, ny := nb[0], nb[1]
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					k := ny*w + nx
					if out[k] == 0 || labels[k] != 0 {
						continue
					}
					labels[k] = next
					stack = append(stack, k)
					pushed++
					if pushed > MaxSegments {
						break
					}
				}
			}

			if size > sigThreshold {
				for _, m := range members {
					labels[m] |= SignificantBit
				}
				res.LabelgroupMax += size
				res.LabelsAbove++
			}
			if size > res.LabelSizeMax {
				res.LabelSizeMax = size
				res.LargestLabel = next
			}
			next++
		}
	}
	return res
}
