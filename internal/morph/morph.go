// Package morph implements the morphological erode/dilate operators, the
// despeckle pipeline that sequences them, and the connected-component
// labeler.
package morph

// Erode9 zeroes a pixel if any of its 8 neighbors (or itself) is zero.
// Border columns (where the full neighborhood would leave the image
// horizontally) are set to flag; top/bottom rows are computed normally but
// treat any off-image vertical neighbor as flag, matching alg.c:571-585.
func Erode9(dst, src []byte, w, h int, flag byte) int {
	return erode(dst, src, w, h, flag, true)
}

// Erode5 is the 4-neighborhood (cross-shaped) variant of Erode9.
func Erode5(dst, src []byte, w, h int, flag byte) int {
	return erode(dst, src, w, h, flag, false)
}

// Dilate9 replaces a pixel with the max over its 8 neighbors and itself.
// Border columns are set to flag; see Erode9 for the row treatment.
func Dilate9(dst, src []byte, w, h int, flag byte) int {
	return dilate(dst, src, w, h, flag, true)
}

// Dilate5 is the 4-neighborhood (cross-shaped) variant of Dilate9.
func Dilate5(dst, src []byte, w, h int, flag byte) int {
	return dilate(dst, src, w, h, flag, false)
}

func erode(dst, src []byte, w, h int, flag byte, full bool) int {
	count := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if onBorderColumn(x, w) {
				dst[i] = flag
			} else {
				v := src[i]
				if v != 0 {
					v = minNeighbor(src, x, y, w, h, flag, full)
				}
				dst[i] = v
			}
			if dst[i] != 0 {
				count++
			}
		}
	}
	return count
}

func dilate(dst, src []byte, w, h int, flag byte, full bool) int {
	count := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if onBorderColumn(x, w) {
				dst[i] = flag
			} else {
				dst[i] = maxNeighbor(src, x, y, w, h, flag, full)
			}
			if dst[i] != 0 {
				count++
			}
		}
	}
	return count
}

func onBorderColumn(x, w int) bool {
	return x == 0 || x == w-1
}

// neighborOrFlag returns the neighbor value at (x+dx, y+dy), treating a
// vertical neighbor that would fall off the image as flag; x+dx is always
// in range because erode/dilate only call this for non-border columns.
func neighborOrFlag(src []byte, x, y, w, h int, dx, dy int, flag byte) byte {
	ny := y + dy
	if ny < 0 || ny >= h {
		return flag
	}
	return src[ny*w+(x+dx)]
}

func minNeighbor(src []byte, x, y, w, h int, flag byte, full bool) byte {
	m := src[y*w+x]
	for _, d := range offsets(full) {
		v := neighborOrFlag(src, x, y, w, h, d[0], d[1], flag)
		if v < m {
			m = v
		}
	}
	return m
}

func maxNeighbor(src []byte, x, y, w, h int, flag byte, full bool) byte {
	m := src[y*w+x]
	for _, d := range offsets(full) {
		v := neighborOrFlag(src, x, y, w, h, d[0], d[1], flag)
		if v > m {
			m = v
		}
	}
	return m
}

func offsets(full bool) [][2]int {
	if full {
		return [][2]int{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}}
	}
	return [][2]int{{0, -1}, {-1, 0}, {1, 0}, {0, 1}}
}
