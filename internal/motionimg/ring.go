package motionimg

import "time"

// Flags is a bitset describing why a ring slot was captured and what a
// writer should do with it.
type Flags uint

const (
	FlagMotion Flags = 1 << iota
	FlagTrigger
	FlagSave
	FlagSaved
	FlagPrecap
	FlagPostcap
)

// Location is the centroid and bounding box produced by the locator.
type Location struct {
	X, Y                 int
	MinX, MinY, MaxX, MaxY int
}

// RingSlot is one frame's worth of detection results plus the image bytes
// backing it, exactly the "image_data" record of the data model.
type RingSlot struct {
	Image       *Frame
	Timestamp   time.Time
	Shot        int
	Diffs       int
	Flags       Flags
	Location    Location
	TotalLabels int
	CentDist    int // squared distance of centroid from frame center
}

// Ring is the pre-capture circular buffer. Its length is
// pre_capture + minimum_motion_frames, recomputed whenever that
// configuration changes.
type Ring struct {
	slots []RingSlot
	in    int // next slot to be filled
	out   int // oldest slot still valid
	full  bool
}

// NewRing allocates a ring of the given size, each slot backed by a W x H
// frame.
func NewRing(size, w, h int) (*Ring, error) {
	r := &Ring{slots: make([]RingSlot, size)}
	for i := range r.slots {
		f, err := NewFrame(w, h)
		if err != nil {
			return nil, err
		}
		r.slots[i].Image = f
	}
	return r, nil
}

// Len reports the ring's capacity.
func (r *Ring) Len() int { return len(r.slots) }

// Cur returns the slot currently being filled.
func (r *Ring) Cur() *RingSlot { return &r.slots[r.in] }

// Advance moves the write pointer forward one slot. If the ring is full,
// the oldest slot is dropped by advancing the read pointer too.
func (r *Ring) Advance() {
	r.in = (r.in + 1) % len(r.slots)
	if r.full {
		r.out = (r.out + 1) % len(r.slots)
	}
	if r.in == r.out {
		r.full = true
	}
}

// All returns every slot in the ring, oldest first, for flushing and for
// scanning the trailing window in the event engine.
func (r *Ring) All() []RingSlot {
	n := len(r.slots)
	if !r.full {
		// Only slots [0, in) have ever been written.
		out := make([]RingSlot, 0, r.in)
		for i := 0; i < r.in; i++ {
			out = append(out, r.slots[i])
		}
		return out
	}
	out := make([]RingSlot, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, r.slots[(r.out+i)%n])
	}
	return out
}

// MarkAllSave flips Flags |= FlagSave on every slot currently holding data,
// used to flush the pre-roll window once sustained motion is confirmed.
func (r *Ring) MarkAllSave() {
	n := len(r.slots)
	lim := r.in
	if r.full {
		lim = n
	}
	for i := 0; i < lim; i++ {
		r.slots[i].Flags |= FlagSave
	}
}

// Trailing returns up to n slots ending at the slot just filled, oldest
// first, used by the event engine to count MOTION flags in the trailing
// minimum_motion_frames window.
func (r *Ring) Trailing(n int) []RingSlot {
	all := r.All()
	if n > len(all) {
		n = len(all)
	}
	return all[len(all)-n:]
}

// Resize rebuilds the ring at a new size, preserving as many of the
// smaller of (old, new) size's most recent slots as possible. Per the
// invariant in the data model, callers only resize while idle.
func (r *Ring) Resize(size, w, h int) error {
	nr, err := NewRing(size, w, h)
	if err != nil {
		return err
	}
	old := r.All()
	keep := len(old)
	if keep > size {
		keep = size
	}
	for i := 0; i < keep; i++ {
		nr.slots[i] = old[len(old)-keep+i]
	}
	nr.in = keep % size
	nr.full = keep == size
	*r = *nr
	return nil
}
