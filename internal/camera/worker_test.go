package camera

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/Motion-Project/motiond/internal/config"
	"github.com/Motion-Project/motiond/internal/notify"
)

// fakeDriver serves a fixed sequence of frames, then blocks until ctx is
// canceled, matching a camera that stops producing new frames once the
// test scenario is exhausted.
type fakeDriver struct {
	frames [][]byte
	i      int
}

func (d *fakeDriver) Start(ctx context.Context) error { return nil }

func (d *fakeDriver) Next(ctx context.Context, into []byte) error {
	if d.i < len(d.frames) {
		copy(into, d.frames[d.i])
		d.i++
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (d *fakeDriver) Close() error { return nil }

type recordingSink struct {
	events []notify.Event
}

func (s *recordingSink) Notify(ctx context.Context, ev notify.Event) {
	s.events = append(s.events, ev)
}

func solidFrame(w, h int, v byte) []byte {
	b := make([]byte, w*h)
	for i := range b {
		b[i] = v
	}
	return b
}

func movingFrame(w, h int, v byte, boxX, boxY, boxSize int, boxV byte) []byte {
	b := solidFrame(w, h, v)
	for y := boxY; y < boxY+boxSize && y < h; y++ {
		for x := boxX; x < boxX+boxSize && x < w; x++ {
			b[y*w+x] = boxV
		}
	}
	return b
}

func TestWorkerDetectsSustainedMotion(t *testing.T) {
	w, h := 32, 32
	frames := [][]byte{
		solidFrame(w, h, 20), // first frame: seeds Ref, no detection
	}
	// The box shifts one pixel right per frame. A box that stays put gives
	// identical diffs and centroid on consecutive frames, which the
	// micro-lightswitch check treats as a light change and resets.
	for i := 0; i < 5; i++ {
		frames = append(frames, movingFrame(w, h, 20, 4+i, 4, 10, 220))
	}

	cfg := config.Default()
	cfg.Name = "front"
	cfg.W, cfg.H = w, h
	cfg.Threshold = 5
	cfg.Noise = 8
	cfg.MinimumMotionFrames = 2
	cfg.PreCapture = 1
	cfg.PostCapture = 1
	cfg.Despeckle = ""

	sink := &recordingSink{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	worker, err := NewWorker("front", &fakeDriver{frames: frames}, cfg, sink, logger, nil)
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err = worker.Run(ctx)
	if err != nil && err != context.DeadlineExceeded && err != context.Canceled {
		t.Fatalf("Run: %v", err)
	}

	foundFirstMotion := false
	for _, ev := range sink.events {
		if ev.Kind == notify.FirstMotion {
			foundFirstMotion = true
		}
	}
	if !foundFirstMotion {
		t.Errorf("expected a FirstMotion event, got %d events: %+v", len(sink.events), sink.events)
	}
}

func TestWorkerStillSceneEmitsNoEvents(t *testing.T) {
	w, h := 16, 16
	frames := make([][]byte, 5)
	for i := range frames {
		frames[i] = solidFrame(w, h, 30)
	}

	cfg := config.Default()
	cfg.Name = "back"
	cfg.W, cfg.H = w, h
	cfg.Threshold = 50
	cfg.Noise = 16
	cfg.Despeckle = ""

	sink := &recordingSink{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	worker, err := NewWorker("back", &fakeDriver{frames: frames}, cfg, sink, logger, nil)
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	_ = worker.Run(ctx)

	if len(sink.events) != 0 {
		t.Errorf("expected no events on a still scene, got %+v", sink.events)
	}
}
