package config

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestParseBasicCamera(t *testing.T) {
	src := `
# comment
root /var/motion
thread camA.conf
name front
videodevice /dev/video0
width 320
height 240
threshold 2000
pre_capture 4
`
	loaded := map[string]string{
		"camA.conf": "name overlay\nwidth 99\n",
	}
	f, err := Parse(strings.NewReader(src), func(p string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(loaded[p])), nil
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Global.Root != "/var/motion" {
		t.Errorf("Root = %q", f.Global.Root)
	}
	if len(f.Cameras) != 1 {
		t.Fatalf("len(Cameras) = %d, want 1", len(f.Cameras))
	}
	cam := f.Cameras[0]
	if cam.Name != "front" {
		t.Errorf("Name = %q, want %q (keys after the thread overlay must override it)", cam.Name, "front")
	}
	if cam.Threshold != 2000 {
		t.Errorf("Threshold = %d, want 2000", cam.Threshold)
	}
	if cam.PreCapture != 4 {
		t.Errorf("PreCapture = %d, want 4", cam.PreCapture)
	}
}

func TestValidateDefaultsInvalidFields(t *testing.T) {
	c := Default()
	c.W = 0
	c.PreviewMethod = "bogus"
	err := c.Validate()
	if err == nil {
		t.Fatal("expected a MultiError for invalid fields")
	}
	if c.W <= 0 {
		t.Errorf("W not defaulted: %d", c.W)
	}
	if c.PreviewMethod != "center" {
		t.Errorf("PreviewMethod not defaulted: %q", c.PreviewMethod)
	}
}

func TestLoadPGMRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("P5\n2 2\n255\n")
	buf.Write([]byte{1, 2, 3, 4})
	got, err := LoadPGM(&buf, 2, 2)
	if err != nil {
		t.Fatalf("LoadPGM: %v", err)
	}
	want := []byte{1, 2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestLoadPGMRejectsSizeMismatch(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("P5\n2 2\n255\n")
	buf.Write([]byte{1, 2, 3, 4})
	if _, err := LoadPGM(&buf, 3, 3); err == nil {
		t.Fatal("expected a size mismatch error")
	}
}
