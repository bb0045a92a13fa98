// Package locate implements the motion region locator: a centroid and an
// asymmetric bounding box over either the raw motion image or the
// significant connected components from the labeler.
package locate

import "github.com/Motion-Project/motiond/internal/motionimg"

// Options configures the vertical bbox expansion ratios. Defaults (3, 2)
// match the original: biased upward to include a person's head relative
// to the center of body mass.
type Options struct {
	AboveRatio int
	BelowRatio int
}

// DefaultOptions returns the original algorithm's ratios.
func DefaultOptions() Options { return Options{AboveRatio: 3, BelowRatio: 2} }

// contributes reports whether pixel i should contribute to the locate
// pass, depending on whether labeling is active.
func contributes(i int, out []byte, labels []int32, labelingActive bool) bool {
	if labelingActive {
		return labels[i]&(1<<15) != 0
	}
	return out[i] != 0
}

// Locate computes the centroid and bounding box described in the
// component design. Returns a degenerate (all-zero) location when no
// pixel contributes.
func Locate(out []byte, labels []int32, labelingActive bool, w, h int, opts Options) motionimg.Location {
	var sumX, sumY, n int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if contributes(i, out, labels, labelingActive) {
				sumX += x
				sumY += y
				n++
			}
		}
	}
	if n == 0 {
		return motionimg.Location{}
	}
	cx := sumX / n
	cy := sumY / n

	var sumDX, sumDY int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if contributes(i, out, labels, labelingActive) {
				sumDX += absInt(x - cx)
				sumDY += absInt(y - cy)
			}
		}
	}
	dx := sumDX / n
	dy := sumDY / n

	above, below := opts.AboveRatio, opts.BelowRatio
	if above == 0 && below == 0 {
		d := DefaultOptions()
		above, below = d.AboveRatio, d.BelowRatio
	}

	minx := clamp(cx-2*dx, 0, w-1)
	maxx := clamp(cx+2*dx, 0, w-1)
	miny := clamp(cy-above*dy, 0, h-1)
	maxy := clamp(cy+below*dy, 0, h-1)
	if minx > maxx {
		minx, maxx = maxx, minx
	}
	if miny > maxy {
		miny, maxy = maxy, miny
	}

	return motionimg.Location{
		X:    cx,
		Y:    (miny + maxy) / 2,
		MinX: minx, MaxX: maxx,
		MinY: miny, MaxY: maxy,
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CentDist returns the squared distance of a location's centroid from the
// frame center, used by the event engine's "best centered" preview
// selection mode.
func CentDist(loc motionimg.Location, w, h int) int {
	dx := w/2 - loc.X
	dy := h/2 - loc.Y
	return dx*dx + dy*dy
}
