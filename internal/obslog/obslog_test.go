package obslog

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestPerCameraWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logger, closer, err := PerCamera(slog.NewTextHandler(os.Stderr, nil), dir, "front")
	if err != nil {
		t.Fatalf("PerCamera: %v", err)
	}
	defer closer.Close()
	logger.Info("hello", "frame", 1)
	closer.Close()

	data, err := os.ReadFile(filepath.Join(dir, "front.log"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected the per-camera file to contain the log record")
	}
}

func TestPerCameraWithoutLogDirSkipsFile(t *testing.T) {
	logger, closer, err := PerCamera(slog.NewTextHandler(os.Stderr, nil), "", "front")
	if err != nil {
		t.Fatalf("PerCamera: %v", err)
	}
	defer closer.Close()
	if logger == nil {
		t.Fatal("expected a non-nil logger")
	}
}
