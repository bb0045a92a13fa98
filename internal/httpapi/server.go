// Package httpapi is the daemon's thin read-only status/preview surface,
// grounded on the teacher's server.go: the same net/http.ServeMux shape
// and MJPEG multipart broadcast pattern, narrowed to per-camera JSON
// status plus a still/streaming preview. A full video-serving surface
// (the teacher's /videos, /list, /raw/) is out of scope — see SPEC_FULL's
// non-goals — so this package is deliberately small next to server.go.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"iter"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	"github.com/Motion-Project/motiond/internal/camera"
)

// StatusProvider is the boundary httpapi needs from the supervisor,
// narrowing camera.Supervisor down to the read-only queries this package
// performs.
type StatusProvider interface {
	Status() map[string]camera.Status
	Relay(ctx context.Context, name string) (iter.Seq[camera.Status], bool)
}

// Server serves the status/preview surface.
type Server struct {
	provider StatusProvider
	mux      *http.ServeMux
}

// New builds a Server backed by provider.
func New(provider StatusProvider) *Server {
	s := &Server{provider: provider, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /status", s.handleStatus)
	s.mux.HandleFunc("GET /cameras/{name}/preview.jpg", s.handlePreview)
	s.mux.HandleFunc("GET /cameras/{name}/mjpeg", s.handleMJPEG)
	s.mux.HandleFunc("GET /", s.handleIndex)
	return s
}

func (s *Server) handleIndex(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != "/" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.Redirect(w, req, "/status", http.StatusFound)
}

type statusEntry struct {
	Camera    string    `json:"camera"`
	Detecting bool      `json:"detecting"`
	EventNr   int       `json:"event_nr"`
	Diffs     int       `json:"diffs"`
	Threshold int       `json:"threshold"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleStatus(w http.ResponseWriter, req *http.Request) {
	all := s.provider.Status()
	out := make([]statusEntry, 0, len(all))
	for name, st := range all {
		out = append(out, statusEntry{
			Camera: name, Detecting: st.Detecting, EventNr: st.EventNr,
			Diffs: st.Diffs, Threshold: st.Threshold, Timestamp: st.Timestamp,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// handlePreview renders the camera's current preview frame (the ring slot
// the event engine selected as preview) as a single grayscale JPEG, since the pipeline only
// ever needs the Y plane for detection and never decodes real color.
func (s *Server) handlePreview(w http.ResponseWriter, req *http.Request) {
	name := req.PathValue("name")
	st, ok := s.provider.Status()[name]
	if !ok || st.PreviewY == nil {
		http.Error(w, "camera not found or no preview yet", http.StatusNotFound)
		return
	}
	img := yPlaneImage(st.PreviewW, st.PreviewH, st.PreviewY)
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	_ = jpeg.Encode(w, img, &jpeg.Options{Quality: 80})
}

// handleMJPEG relays the camera's live preview stream as a
// multipart/x-mixed-replace sequence, the same content type and per-part
// header shape as the teacher's /mjpeg handler in server.go, fed by the
// same stolen-stale-frame broadcaster pattern as the teacher's
// broadcastFrames instead of a live ffmpeg mjpeg pipe.
func (s *Server) handleMJPEG(w http.ResponseWriter, req *http.Request) {
	name := req.PathValue("name")
	relay, ok := s.provider.Relay(req.Context(), name)
	if !ok {
		http.Error(w, "camera not found", http.StatusNotFound)
		return
	}

	mw := multipart.NewWriter(w)
	defer mw.Close()
	h := w.Header()
	h.Set("Content-Type", "multipart/x-mixed-replace;boundary="+mw.Boundary())
	h.Set("Connection", "close")
	h.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")

	for st := range relay {
		if st.PreviewY == nil {
			continue
		}
		img := yPlaneImage(st.PreviewW, st.PreviewH, st.PreviewY)
		var buf jpegBuf
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
			continue
		}
		fw, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":   []string{"image/jpeg"},
			"Content-Length": []string{strconv.Itoa(len(buf))},
		})
		if err != nil {
			return
		}
		if _, err := fw.Write(buf); err != nil {
			return
		}
	}
}

type jpegBuf []byte

func (b *jpegBuf) Write(p []byte) (int, error) {
	*b = append(*b, p...)
	return len(p), nil
}

func yPlaneImage(w, h int, y []byte) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	copy(img.Pix, y)
	return img
}

// Serve starts an HTTP server on addr and blocks until ctx is canceled,
// matching the teacher's startServer shape (net.Listen then http.Serve),
// but synchronous and error-returning rather than fire-and-forget, since
// the supervisor's errgroup already propagates the first failure.
func Serve(ctx context.Context, addr string, provider StatusProvider) error {
	srv := New(provider)
	httpSrv := &http.Server{
		Handler:      srv.mux,
		BaseContext:  func(net.Listener) context.Context { return ctx },
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 366 * 24 * time.Hour,
		IdleTimeout:  10 * time.Second,
	}
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	slog.Info("httpapi: listening", "addr", l.Addr())
	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.Serve(l) }()
	select {
	case <-ctx.Done():
		_ = httpSrv.Close()
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("httpapi: %w", err)
	}
}
