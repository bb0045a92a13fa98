package capture

import (
	"strings"
	"testing"
)

func TestBuildRawFFmpegArgsContainsRawVideoOutput(t *testing.T) {
	args, err := buildRawFFmpegArgs(FFmpegOptions{Src: "/dev/video0", W: 640, H: 480, FPS: 15})
	if err != nil {
		t.Fatalf("buildRawFFmpegArgs: %v", err)
	}
	joined := strings.Join(args, " ")
	for _, want := range []string{"-pix_fmt gray", "-f rawvideo", "pipe:1", "-video_size 640x480", "-framerate 15"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args %q missing %q", joined, want)
		}
	}
}

func TestBuildRawFFmpegArgsTCPSourceSkipsVideoSize(t *testing.T) {
	args, err := buildRawFFmpegArgs(FFmpegOptions{Src: "tcp://127.0.0.1:1234", W: 640, H: 480, FPS: 15})
	if err != nil {
		t.Fatalf("buildRawFFmpegArgs: %v", err)
	}
	joined := strings.Join(args, " ")
	if strings.Contains(joined, "-video_size") {
		t.Errorf("tcp source must not set -video_size: %q", joined)
	}
	if !strings.Contains(joined, "-f h264") {
		t.Errorf("tcp source must set -f h264: %q", joined)
	}
}
