package event

import "github.com/Motion-Project/motiond/internal/motionimg"

// AreaDetect maps a centroid onto a 3x3 grid of regions numbered 1-9
// (row-major, top-left is 1) and reports whether that region is one of
// the camera's configured trigger regions. regions nil or empty disables
// area detection entirely.
func AreaDetect(loc motionimg.Location, w, h int, regions map[int]bool) (int, bool) {
	if len(regions) == 0 {
		return 0, false
	}
	col := loc.X * 3 / w
	row := loc.Y * 3 / h
	if col > 2 {
		col = 2
	}
	if row > 2 {
		row = 2
	}
	region := row*3 + col + 1
	return region, regions[region]
}

func regionName(region int) string {
	names := [10]string{"", "1", "2", "3", "4", "5", "6", "7", "8", "9"}
	if region < 1 || region > 9 {
		return ""
	}
	return names[region]
}
