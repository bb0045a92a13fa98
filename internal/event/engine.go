// Package event implements the per-camera event state machine: motion
// classification against the trailing window, the pre-capture ring flush,
// the post-capture countdown, and gap/maxtime-based event closing.
package event

import (
	"time"

	"github.com/Motion-Project/motiond/internal/locate"
	"github.com/Motion-Project/motiond/internal/motionimg"
	"github.com/Motion-Project/motiond/internal/notify"
)

// Config holds the per-camera tunables the event engine consults.
type Config struct {
	MinimumMotionFrames int
	PreCapture          int
	PostCapture         int
	Gap                 time.Duration
	MaxMPEGTime         time.Duration
	OutputAll           bool
	PreviewMethod       string // "center" or "best"
	SnapshotInterval    time.Duration
	AreaRegions         map[int]bool
}

// Engine is the per-camera event state machine. Not safe for concurrent
// use; owned exclusively by one camera worker, like every other piece of
// per-camera state.
type Engine struct {
	cfg  Config
	ring *motionimg.Ring

	detecting  bool
	postcap    int
	eventNr    int
	eventTime  time.Time
	lastActive time.Time

	areaFiredEventNr int // -1 until an area-detected event has fired

	snapshot snapshotState
	preview  *motionimg.RingSlot
}

// NewEngine creates an event engine driving the given ring.
func NewEngine(cfg Config, ring *motionimg.Ring) *Engine {
	return &Engine{cfg: cfg, ring: ring, areaFiredEventNr: -1}
}

// Frame is the per-frame input the event engine classifies.
type Frame struct {
	Now         time.Time
	Diffs       int
	Threshold   int
	Location    motionimg.Location
	TotalLabels int
	Y           []byte // source Y plane, copied into the ring slot's image
}

// Outcome reports what ProcessFrame decided for this frame.
type Outcome struct {
	Slot   *motionimg.RingSlot
	Events []notify.Event
}

// ProcessFrame runs one frame through the event state machine, exactly as
// described in the component design's ACTIONS AND EVENT CONTROL section.
func (e *Engine) ProcessFrame(camera string, in Frame) Outcome {
	cur := e.ring.Cur()
	copy(cur.Image.Y, in.Y)
	cur.Timestamp = in.Now
	cur.Diffs = in.Diffs
	cur.Location = in.Location
	cur.TotalLabels = in.TotalLabels
	cur.Flags = 0
	cur.CentDist = locate.CentDist(in.Location, cur.Image.W, cur.Image.H)

	motionFlagged := in.Diffs > in.Threshold
	if motionFlagged {
		cur.Flags |= motionimg.FlagMotion
	}

	var events []notify.Event
	newEventStarted := false

	switch {
	case e.cfg.OutputAll:
		cur.Flags |= motionimg.FlagTrigger | motionimg.FlagSave
		e.postcap = e.cfg.PostCapture
		e.lastActive = in.Now
		if !e.detecting {
			newEventStarted = true
		}
		e.detecting = true

	case motionFlagged:
		// cur has not been committed to the ring yet (Advance runs at the
		// end of ProcessFrame), so the trailing window only covers the
		// minimum_motion_frames-1 prior committed slots; cur's own MOTION
		// flag is added in separately to complete the window.
		trailing := e.ring.Trailing(e.cfg.MinimumMotionFrames - 1)
		count := countMotion(trailing) + 1
		switch {
		case count >= e.cfg.MinimumMotionFrames:
			cur.Flags |= motionimg.FlagTrigger | motionimg.FlagSave
			e.ring.MarkAllSave()
			if !e.detecting {
				newEventStarted = true
			}
			e.detecting = true
			e.postcap = e.cfg.PostCapture
			e.lastActive = in.Now
		case e.postcap > 0:
			cur.Flags |= motionimg.FlagPostcap | motionimg.FlagSave
			e.postcap--
			e.lastActive = in.Now
		default:
			cur.Flags |= motionimg.FlagPrecap
		}

	default:
		if e.postcap > 0 {
			cur.Flags |= motionimg.FlagPostcap | motionimg.FlagSave
			e.postcap--
			e.lastActive = in.Now
		} else {
			cur.Flags |= motionimg.FlagPrecap
			e.detecting = false
		}
	}

	if newEventStarted {
		e.eventTime = in.Now
		events = append(events, notify.Event{Camera: camera, Kind: notify.FirstMotion, Timestamp: in.Now})
		events = append(events, notify.Event{Camera: camera, Kind: notify.Motion, Timestamp: in.Now})

		if region, ok := AreaDetect(in.Location, cur.Image.W, cur.Image.H, e.cfg.AreaRegions); ok && e.areaFiredEventNr != e.eventNr {
			e.areaFiredEventNr = e.eventNr
			events = append(events, notify.Event{Camera: camera, Kind: notify.AreaDetected, Timestamp: in.Now, Filename: regionName(region)})
		}
	}

	if cur.Flags&(motionimg.FlagTrigger|motionimg.FlagPostcap) != 0 {
		e.updatePreview(cur)
	}

	if snap, ok := e.snapshot.Check(in.Now, e.cfg.SnapshotInterval); ok {
		_ = snap
		events = append(events, notify.Event{Camera: camera, Kind: notify.ImageSnapshot, Timestamp: in.Now})
	}

	if e.shouldClose(in.Now) {
		e.ring.MarkAllSave()
		events = append(events, notify.Event{Camera: camera, Kind: notify.EndMotion, Timestamp: in.Now})
		e.eventNr++
		e.postcap = 0
		e.detecting = false
		e.preview = nil
	}

	out := Outcome{Slot: cur, Events: events}
	e.ring.Advance()
	return out
}

// RequestClose forces the current event to close on the next frame that
// satisfies shouldClose's active check, used by external makemovie
// signals (process termination, manual trigger).
func (e *Engine) RequestClose() {
	e.lastActive = time.Time{}
	e.cfg.Gap = time.Nanosecond
}

func (e *Engine) shouldClose(now time.Time) bool {
	if !e.detecting && e.postcap <= 0 {
		return false
	}
	if e.cfg.Gap > 0 && !e.lastActive.IsZero() && now.Sub(e.lastActive) >= e.cfg.Gap {
		return true
	}
	if e.cfg.MaxMPEGTime > 0 && !e.eventTime.IsZero() && now.Sub(e.eventTime) >= e.cfg.MaxMPEGTime {
		return true
	}
	return false
}

func (e *Engine) updatePreview(cur *motionimg.RingSlot) {
	switch e.cfg.PreviewMethod {
	case "best":
		if e.preview == nil || cur.Diffs > e.preview.Diffs {
			e.preview = cur
		}
	default: // "center"
		if e.preview == nil || cur.CentDist < e.preview.CentDist {
			e.preview = cur
		}
	}
}

// Preview returns the ring slot currently selected as the event's preview
// image, or nil if no event is in progress.
func (e *Engine) Preview() *motionimg.RingSlot { return e.preview }

// EventNr reports the engine's current event number.
func (e *Engine) EventNr() int { return e.eventNr }

func countMotion(slots []motionimg.RingSlot) int {
	n := 0
	for _, s := range slots {
		if s.Flags&motionimg.FlagMotion != 0 {
			n++
		}
	}
	return n
}

// RingSize returns the ring length a given configuration requires.
func RingSize(cfg Config) int {
	return cfg.PreCapture + cfg.MinimumMotionFrames
}
