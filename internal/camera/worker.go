// Package camera implements the per-camera frame-pacing loop and the
// supervisor that keeps one worker goroutine running per configured
// camera, restarting it on transient failure and tearing it down on a
// resolution change.
package camera

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Motion-Project/motiond/internal/broadcast"
	"github.com/Motion-Project/motiond/internal/capture"
	"github.com/Motion-Project/motiond/internal/config"
	"github.com/Motion-Project/motiond/internal/differ"
	"github.com/Motion-Project/motiond/internal/event"
	"github.com/Motion-Project/motiond/internal/locate"
	"github.com/Motion-Project/motiond/internal/morph"
	"github.com/Motion-Project/motiond/internal/motionimg"
	"github.com/Motion-Project/motiond/internal/notify"
	"github.com/Motion-Project/motiond/internal/refframe"
	"github.com/Motion-Project/motiond/internal/smartmask"
	"github.com/Motion-Project/motiond/internal/suppress"
	"github.com/Motion-Project/motiond/internal/tune"
)

// Worker drives one camera: it owns every buffer exclusively (no locking
// between the pixel pipeline packages) and hands each notify.Event to its
// Sink with a direct, synchronous Notify call from the frame loop, so a
// slow Sink delays processing of the next frame.
type Worker struct {
	Name string

	driver capture.Driver
	cfg    config.Camera
	state  *motionimg.CameraState
	ring   *motionimg.Ring
	engine *event.Engine
	sinks  notify.Sink
	logger *slog.Logger
	stream *broadcast.Broadcaster[Status]

	despeckleProg morph.Program
	locateOpts    locate.Options
	thresholdTune tune.ThresholdTuner

	frameBuf  []byte
	scratch   []byte
	rowCounts []int
	prevDiffs int
	prevLoc   motionimg.Location
	lsFrame   int // lightswitch_framecounter: frames since last RESET
	watchdog  int

	statusMu sync.Mutex
	status   Status
}

// Status is a point-in-time snapshot of a camera's detection state, safe
// to read from another goroutine (the HTTP status endpoint) while the
// worker loop keeps running; the worker publishes a new Status at the end
// of every processed frame.
type Status struct {
	Camera    string
	Detecting bool
	EventNr   int
	Diffs     int
	Threshold int
	Timestamp time.Time
	PreviewY  []byte // copy of the current preview frame's Y plane, may be nil
	PreviewW  int
	PreviewH  int
}

// Status returns the most recent snapshot published by Run.
func (w *Worker) Status() Status {
	w.statusMu.Lock()
	defer w.statusMu.Unlock()
	return w.status
}

func (w *Worker) publishStatus(now time.Time, diffs int) {
	st := Status{
		Camera:    w.Name,
		Detecting: w.state.Detecting,
		EventNr:   w.state.EventNr,
		Diffs:     diffs,
		Threshold: w.state.Threshold,
		Timestamp: now,
	}
	if prev := w.engine.Preview(); prev != nil {
		st.PreviewY = append([]byte(nil), prev.Image.Y...)
		st.PreviewW = prev.Image.W
		st.PreviewH = prev.Image.H
	}
	w.statusMu.Lock()
	w.status = st
	w.statusMu.Unlock()
	if w.stream != nil {
		w.stream.Publish(st)
	}
}

// NewWorker builds a Worker for one camera and sizes its ring with
// event.RingSize of the event.Config derived from cfg. stream may be
// nil; when set, every published Status is also fanned out to it so the
// HTTP preview stream can relay frames without polling.
func NewWorker(name string, driver capture.Driver, cfg config.Camera, sinks notify.Sink, logger *slog.Logger, stream *broadcast.Broadcaster[Status]) (*Worker, error) {
	state := motionimg.NewCameraState(cfg.W, cfg.H)
	state.Threshold = cfg.Threshold
	state.Noise = uint8(cfg.Noise)
	state.SmartmaskSpeed = cfg.SmartmaskSpeed
	state.LastRate = cfg.FPS

	evCfg := eventConfig(cfg)
	ring, err := motionimg.NewRing(event.RingSize(evCfg), cfg.W, cfg.H)
	if err != nil {
		return nil, fmt.Errorf("camera %q: %w", name, err)
	}

	prog, err := morph.ParseProgram(cfg.Despeckle)
	if err != nil {
		return nil, fmt.Errorf("camera %q: %w", name, err)
	}

	n := cfg.W * cfg.H
	return &Worker{
		Name:          name,
		driver:        driver,
		cfg:           cfg,
		state:         state,
		ring:          ring,
		engine:        event.NewEngine(evCfg, ring),
		sinks:         sinks,
		logger:        logger,
		stream:        stream,
		despeckleProg: prog,
		locateOpts:    locate.DefaultOptions(),
		frameBuf:      make([]byte, n),
		scratch:       make([]byte, n),
		rowCounts:     make([]int, cfg.H),
	}, nil
}

func eventConfig(cfg config.Camera) event.Config {
	var regions map[int]bool
	return event.Config{
		MinimumMotionFrames: cfg.MinimumMotionFrames,
		PreCapture:          cfg.PreCapture,
		PostCapture:         cfg.PostCapture,
		Gap:                 cfg.Gap,
		MaxMPEGTime:         cfg.MaxMPEGTime,
		OutputAll:           cfg.OutputAll,
		PreviewMethod:       cfg.PreviewMethod,
		SnapshotInterval:    cfg.SnapshotInterval,
		AreaRegions:         regions,
	}
}

// watchdogForceCancel is the counter floor at which Run gives up and
// returns an error: a worker that failed to read a frame this many
// consecutive times is presumed wedged, and the supervisor restarts it
// after restartBackoff.
const watchdogForceCancel = -60

// Run drives the capture/detect/react loop until ctx is canceled or an
// unrecoverable error occurs. A capture.ErrResolutionChanged is returned
// unwrapped so the supervisor can rebuild the worker at the new size.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.driver.Start(ctx); err != nil {
		return fmt.Errorf("camera %q: start: %w", w.Name, err)
	}
	defer w.driver.Close()

	first := true
	smartmaskCounter := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := w.driver.Next(ctx, w.frameBuf); err != nil {
			if _, ok := err.(*capture.ErrResolutionChanged); ok {
				return err
			}
			w.watchdog--
			w.logger.Warn("capture: frame read failed", "err", err, "watchdog", w.watchdog)
			if w.watchdog <= watchdogForceCancel {
				return fmt.Errorf("camera %q: watchdog exhausted: %w", w.Name, err)
			}
			continue
		}
		w.watchdog = 0
		now := time.Now()
		copy(w.state.Virgin, w.frameBuf)

		if first {
			copy(w.state.Ref, w.state.Virgin)
			first = false
			continue
		}

		newEvent := w.state.EventNr != w.state.PrevEvent
		// FastPreCheck gates on the camera's configured max_changes
		// (cfg.Threshold), not the dynamically tuned w.state.Threshold,
		// matching alg.c:1007's use of cnt->conf.max_changes.
		preCheckOK := w.cfg.SetupMode || differ.FastPreCheck(w.state.Ref, w.state.Virgin, w.state.Noise, w.cfg.Threshold, w.state.Detecting)

		diffOpts := differ.Options{
			UseMask:        w.state.Mask != nil,
			Mask:           w.state.Mask,
			SmartmaskFinal: w.state.SmartmaskFinal,
			SmartmaskSpeed: w.state.SmartmaskSpeed,
			NewEvent:       newEvent,
			Noise:          w.state.Noise,
		}
		var diffs int
		if preCheckOK {
			res := differ.Standard.Diff(w.state.Out, w.state.Ref, w.state.Virgin, w.state.SmartmaskBuffer, diffOpts)
			diffs = res.Diffs
		} else {
			for i := range w.state.Out {
				w.state.Out[i] = 0
			}
		}

		despRes := morph.Despeckle(w.state.Out, w.scratch, w.cfg.W, w.cfg.H, w.despeckleProg, w.state.Threshold)
		diffs = despRes.Diffs
		totalLabels := 0
		if despRes.LabelingRan {
			copy(w.state.Labels, despRes.LabelResult.Labels)
			totalLabels = despRes.LabelResult.LabelsAbove
		}

		loc := locate.Locate(w.state.Out, w.state.Labels, despRes.LabelingRan, w.cfg.W, w.cfg.H, w.locateOpts)

		w.rowCounts = suppress.RowCounts(w.state.Out, w.cfg.W, w.cfg.H)
		supRes := suppress.Apply(diffs, w.rowCounts, suppress.Options{
			LightswitchPercent: w.cfg.LightswitchPercent,
			SwitchfilterOn:     w.cfg.SwitchfilterOn,
			W:                  w.cfg.W,
			H:                  w.cfg.H,
		})
		diffs = supRes.Diffs

		if refframe.MicroLightswitch(w.lsFrame, w.state.LastRate, diffs, w.prevDiffs, loc.X, loc.Y, w.prevLoc.X, w.prevLoc.Y, w.cfg.W, w.cfg.H) {
			supRes.RequestReset = true
			diffs = 0
		}

		motionDeclared := diffs > w.state.Threshold
		if w.cfg.NoiseTune && !motionDeclared {
			w.state.Noise = tune.NoiseTune(w.state.Ref, w.state.Virgin, w.state.Mask, w.state.SmartmaskFinal, w.state.Noise)
		}
		if w.cfg.ThresholdTune {
			w.state.Threshold = w.thresholdTune.Tune(diffs, motionDeclared, w.state.Threshold, w.cfg.Threshold)
		}

		mode := refframe.Update
		if supRes.RequestReset {
			mode = refframe.Reset
			w.lsFrame = 0
		} else {
			w.lsFrame++
		}
		refframe.Apply(&refframe.State{
			Ref: w.state.Ref, Virgin: w.state.Virgin, RefDyn: w.state.RefDyn, Out: w.state.Out,
			SmartmaskFinal: w.state.SmartmaskFinal, Noise: w.state.Noise, LastRate: w.state.LastRate,
		}, mode)

		if interval := smartmask.Interval(w.state.LastRate, w.state.SmartmaskSpeed); interval > 0 {
			smartmaskCounter++
			if smartmaskCounter >= interval {
				smartmaskCounter = 0
				smartmask.Learn(&smartmask.State{
					Smartmask: w.state.Smartmask, SmartmaskFinal: w.state.SmartmaskFinal, SmartmaskBuffer: w.state.SmartmaskBuffer,
				}, w.cfg.W, w.cfg.H, w.state.LastRate, w.state.SmartmaskSpeed)
			}
		}

		w.state.Detecting = motionDeclared
		outcome := w.engine.ProcessFrame(w.Name, event.Frame{
			Now: now, Diffs: diffs, Threshold: w.state.Threshold,
			Location: loc, TotalLabels: totalLabels, Y: w.state.Virgin,
		})
		for _, ev := range outcome.Events {
			w.sinks.Notify(ctx, ev)
		}
		w.state.PrevEvent = w.state.EventNr
		w.state.EventNr = w.engine.EventNr()
		w.publishStatus(now, diffs)

		w.prevDiffs = diffs
		w.prevLoc = loc
	}
}
