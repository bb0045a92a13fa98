// Package notify implements the event writer interface and the two
// concrete sinks the engine ships with: running a script, and posting a
// webhook. Both are grounded directly on the teacher's processMotion,
// generalized from a single hardcoded motion-start/motion-stop pair of
// actions to the full set of event kinds the component design names.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os/exec"
	"time"
)

// Kind enumerates every external event the engine can emit.
type Kind int

const (
	FirstMotion Kind = iota
	Motion
	ImageDetected
	ImageMDetected
	ImageSnapshot
	Image
	ImageM
	Webcam
	Timelapse
	TimelapseEnd
	EndMotion
	AreaDetected
	CameraLost
	Stop
)

func (k Kind) String() string {
	switch k {
	case FirstMotion:
		return "FIRSTMOTION"
	case Motion:
		return "MOTION"
	case ImageDetected:
		return "IMAGE_DETECTED"
	case ImageMDetected:
		return "IMAGEM_DETECTED"
	case ImageSnapshot:
		return "IMAGE_SNAPSHOT"
	case Image:
		return "IMAGE"
	case ImageM:
		return "IMAGEM"
	case Webcam:
		return "WEBCAM"
	case Timelapse:
		return "TIMELAPSE"
	case TimelapseEnd:
		return "TIMELAPSEEND"
	case EndMotion:
		return "ENDMOTION"
	case AreaDetected:
		return "AREA_DETECTED"
	case CameraLost:
		return "CAMERA_LOST"
	case Stop:
		return "STOP"
	default:
		return "UNKNOWN"
	}
}

// Event is delivered to every configured Sink.
type Event struct {
	Camera    string
	Kind      Kind
	Image     []byte
	Filename  string
	Timestamp time.Time
}

// Sink consumes engine events. Implementations must not block the caller
// for long: the camera worker calls Notify synchronously from its frame
// loop, with no buffering in between, so a slow Sink stalls frame
// processing.
type Sink interface {
	Notify(ctx context.Context, ev Event)
}

// ScriptSink runs a configured shell command per event kind, exactly like
// processMotion's runCmd but keyed by Kind instead of a fixed start/end
// pair.
type ScriptSink struct {
	Scripts map[Kind]string
	Timeout time.Duration // defaults to one minute, matching runCmd
}

// Notify runs the script configured for ev.Kind, if any.
func (s *ScriptSink) Notify(ctx context.Context, ev Event) {
	script, ok := s.Scripts[ev.Kind]
	if !ok || script == "" {
		return
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	slog.Info("notify: exec", "camera", ev.Camera, "kind", ev.Kind, "script", script)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	c := exec.CommandContext(ctx, script)
	if err := c.Run(); err != nil {
		slog.Error("notify: exec failed", "camera", ev.Camera, "kind", ev.Kind, "script", script, "err", err)
	}
}

// WebhookSink posts a small JSON envelope to a configured URL, the same
// http.Post call the teacher's processMotion uses, generalized from a
// hardcoded {"motion":bool} body to {camera,kind,timestamp}.
type WebhookSink struct {
	URL    string
	Client *http.Client
}

type webhookBody struct {
	Camera    string    `json:"camera"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// Notify POSTs ev to the configured webhook URL.
func (w *WebhookSink) Notify(ctx context.Context, ev Event) {
	if w.URL == "" {
		return
	}
	d, err := json.Marshal(webhookBody{Camera: ev.Camera, Kind: ev.Kind.String(), Timestamp: ev.Timestamp})
	if err != nil {
		slog.Error("notify: webhook marshal", "err", err)
		return
	}
	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(d))
	if err != nil {
		slog.Error("notify: webhook request", "url", w.URL, "err", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	slog.Info("notify: webhook", "camera", ev.Camera, "kind", ev.Kind, "url", w.URL)
	resp, err := client.Do(req)
	if err != nil {
		slog.Error("notify: webhook failed", "camera", ev.Camera, "kind", ev.Kind, "url", w.URL, "err", err)
		return
	}
	_ = resp.Body.Close()
}

// Multi fans an event out to every configured Sink, so a camera can run a
// script and hit a webhook for the same event.
type Multi []Sink

// Notify calls every sink in turn.
func (m Multi) Notify(ctx context.Context, ev Event) {
	for _, s := range m {
		s.Notify(ctx, ev)
	}
}
