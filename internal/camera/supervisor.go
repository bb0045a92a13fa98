package camera

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Motion-Project/motiond/internal/broadcast"
	"github.com/Motion-Project/motiond/internal/capture"
	"github.com/Motion-Project/motiond/internal/config"
	"github.com/Motion-Project/motiond/internal/notify"
	"github.com/Motion-Project/motiond/internal/obslog"
)

// restartBackoff is how long the supervisor waits before restarting a
// worker that exited with a transient error, mirroring the original
// daemon's tolerance for a camera that's briefly unplugged.
const restartBackoff = 5 * time.Second

// Supervisor runs one Worker goroutine per configured camera, restarting
// a worker that fails with a transient error and rebuilding one that
// reports a resolution change, exactly the fan-out-with-supervision shape
// named in the concurrency model.
type Supervisor struct {
	console  slog.Handler
	logDir   string
	makeSink func(config.Camera) notify.Sink

	mu      sync.Mutex
	workers map[string]*Worker
	streams map[string]*broadcast.Broadcaster[Status]
}

// NewSupervisor builds a Supervisor. makeSink lets the caller (cmd/motiond)
// wire ScriptSink/WebhookSink/Multi per camera config; passing nil uses a
// sink built from the camera's own OnEventStart/OnEventEnd/Webhook fields.
func NewSupervisor(console slog.Handler, logDir string, makeSink func(config.Camera) notify.Sink) *Supervisor {
	return &Supervisor{
		console: console, logDir: logDir, makeSink: makeSink,
		workers: map[string]*Worker{}, streams: map[string]*broadcast.Broadcaster[Status]{},
	}
}

// Relay streams live Status snapshots for the named camera until ctx is
// done, reporting false if no camera with that name has ever started.
// Backs internal/httpapi's pushed MJPEG preview stream.
func (s *Supervisor) Relay(ctx context.Context, name string) (iter.Seq[Status], bool) {
	s.mu.Lock()
	stream, ok := s.streams[name]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	return stream.Relay(ctx), true
}

func (s *Supervisor) streamFor(name string) *broadcast.Broadcaster[Status] {
	s.mu.Lock()
	defer s.mu.Unlock()
	stream, ok := s.streams[name]
	if !ok {
		stream = &broadcast.Broadcaster[Status]{}
		s.streams[name] = stream
	}
	return stream
}

// Status returns a point-in-time status snapshot for every camera
// currently running, keyed by camera name; used by internal/httpapi.
func (s *Supervisor) Status() map[string]Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Status, len(s.workers))
	for name, w := range s.workers {
		out[name] = w.Status()
	}
	return out
}

func (s *Supervisor) setWorker(name string, w *Worker) {
	s.mu.Lock()
	s.workers[name] = w
	s.mu.Unlock()
}

// Run starts every camera in f and blocks until ctx is canceled or a
// camera cannot be set up (logger or worker construction fails). A worker
// that returns any other error, including an exhausted watchdog, is
// restarted here after restartBackoff, and a resolution change rebuilds it
// at once; only a wider context cancellation stops every camera at once.
func (s *Supervisor) Run(ctx context.Context, f *config.File) error {
	eg, ctx := errgroup.WithContext(ctx)
	for i, cam := range f.Cameras {
		cam := cam
		name := cam.Name
		if name == "" {
			name = "camera" + strconv.Itoa(i)
		}
		eg.Go(func() error {
			return s.runCamera(ctx, name, cam)
		})
	}
	return eg.Wait()
}

func (s *Supervisor) runCamera(ctx context.Context, name string, cam config.Camera) error {
	logger, closer, err := obslog.PerCamera(s.console, s.logDir, name)
	if err != nil {
		return fmt.Errorf("camera %q: logger: %w", name, err)
	}
	defer closer.Close()

	sink := s.sinkFor(cam)
	stream := s.streamFor(name)
	w, h := cam.W, cam.H
	for {
		driver := capture.NewFFmpegDriver(capture.FFmpegOptions{
			Src: cam.Src, W: w, H: h, FPS: cam.FPS, Verbose: logger.Enabled(ctx, slog.LevelDebug),
		})
		cam.W, cam.H = w, h
		worker, err := NewWorker(name, driver, cam, sink, logger, stream)
		if err != nil {
			return fmt.Errorf("camera %q: %w", name, err)
		}
		s.setWorker(name, worker)

		err = worker.Run(ctx)
		if err == nil || ctx.Err() != nil {
			return err
		}
		var resChanged *capture.ErrResolutionChanged
		if rc, ok := err.(*capture.ErrResolutionChanged); ok {
			resChanged = rc
			logger.Info("camera: resolution changed, rebuilding worker", "w", resChanged.W, "h", resChanged.H)
			w, h = resChanged.W, resChanged.H
			continue
		}

		logger.Warn("camera: worker exited, restarting", "err", err, "backoff", restartBackoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(restartBackoff):
		}
	}
}

func (s *Supervisor) sinkFor(cam config.Camera) notify.Sink {
	if s.makeSink != nil {
		return s.makeSink(cam)
	}
	var multi notify.Multi
	if cam.OnEventStart != "" || cam.OnEventEnd != "" {
		multi = append(multi, &notify.ScriptSink{Scripts: map[notify.Kind]string{
			notify.FirstMotion: cam.OnEventStart,
			notify.EndMotion:   cam.OnEventEnd,
		}})
	}
	if cam.Webhook != "" {
		multi = append(multi, &notify.WebhookSink{URL: cam.Webhook})
	}
	return multi
}
