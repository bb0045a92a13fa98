// Package obslog sets up structured logging: a tint-colored console
// handler for the process, and a per-camera fan-out handler that
// additionally tees each camera's records to its own log file.
package obslog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	slogmulti "github.com/samber/slog-multi"
)

// Level is the shared, mutable level used by the console handler; Setup
// returns it so callers can raise it at runtime (the -v flag, a SIGHUP
// config reload, etc.) without rebuilding the logger.
type Level = slog.LevelVar

// Setup builds the process-wide console logger and installs it as the
// slog default, matching the teacher's mainImpl: tint over colorable
// over isatty, NoColor forced when w isn't a terminal.
func Setup(w *os.File, verbose bool) (*slog.Logger, *Level) {
	var level Level
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
	logger := slog.New(tint.NewHandler(colorable.NewColorable(w), &tint.Options{
		Level:      &level,
		TimeFormat: time.TimeOnly,
		NoColor:    !isatty.IsTerminal(w.Fd()),
	}))
	slog.SetDefault(logger)
	return logger, &level
}

// PerCamera returns a logger that fans records out to both the shared
// console handler and a per-camera file under logDir/<name>.log. The
// teacher imported slog-multi but never called it; this is its first
// real use, one handler per camera so a noisy camera's logs don't drown
// out the others in a single shared file.
func PerCamera(console slog.Handler, logDir, name string) (*slog.Logger, io.Closer, error) {
	if logDir == "" {
		return slog.New(console).With("camera", name), nopCloser{}, nil
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(filepath.Join(logDir, name+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	fileHandler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	handler := slogmulti.Fanout(console, fileHandler)
	return slog.New(handler).With("camera", name), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
