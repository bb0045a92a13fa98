// Package config implements the line-based configuration file format,
// per-camera thread overlays, and the PGM mask loader.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// MultiError accumulates validation problems encountered while defaulting
// a config, grounded directly on ausocean-av/device.MultiError's
// validate-and-default pattern: problems are collected, not fatal, and
// the caller decides whether to proceed.
type MultiError []error

func (m MultiError) Error() string {
	s := make([]string, len(m))
	for i, e := range m {
		s[i] = e.Error()
	}
	return strings.Join(s, "; ")
}

// add appends err to m if err is non-nil; returns the new slice.
func (m MultiError) add(err error) MultiError {
	if err != nil {
		return append(m, err)
	}
	return m
}

// Global holds process-wide settings (state root, HTTP address, log
// directory). They are not copied into any Camera.
type Global struct {
	Root    string
	Addr    string
	LogPath string
}

// Camera holds one camera's tunables, mirroring the component design's
// scalar configuration fields.
type Camera struct {
	Name string
	Src  string
	W, H int
	FPS  int

	Threshold           int
	Noise               int
	LightswitchPercent  int
	SwitchfilterOn      bool
	Despeckle           string
	PreCapture          int
	PostCapture         int
	MinimumMotionFrames int
	Gap                 time.Duration
	MaxMPEGTime         time.Duration
	FrameLimit          int
	SmartmaskSpeed      int
	OutputAll           bool
	SetupMode           bool
	NoiseTune           bool
	ThresholdTune       bool
	MaskFile            string
	PreviewMethod       string
	SnapshotInterval    time.Duration
	OnEventStart        string
	OnEventEnd          string
	Webhook             string
}

// Default returns a Camera with every field at the original daemon's
// documented default.
func Default() Camera {
	return Camera{
		W: 640, H: 480, FPS: 15,
		Threshold:           1500,
		Noise:               32,
		LightswitchPercent:  0,
		Despeckle:           "EedDl",
		PreCapture:          3,
		PostCapture:         3,
		MinimumMotionFrames: 1,
		Gap:                 60 * time.Second,
		FrameLimit:          15,
		SmartmaskSpeed:      0,
		PreviewMethod:       "center",
	}
}

// Validate checks a Camera for invalid fields, defaulting what it can and
// accumulating the rest into a MultiError rather than failing outright —
// per §7 kind 5, a bad field disables a feature for the session, it does
// not stop the daemon.
func (c *Camera) Validate() error {
	var errs MultiError
	if c.W <= 0 || c.H <= 0 {
		d := Default()
		errs = errs.add(fmt.Errorf("camera %q: invalid size, defaulting to %dx%d", c.Name, d.W, d.H))
		c.W, c.H = d.W, d.H
	}
	if c.FPS <= 0 {
		errs = errs.add(fmt.Errorf("camera %q: invalid fps, defaulting to 15", c.Name))
		c.FPS = 15
	}
	if c.MinimumMotionFrames <= 0 {
		errs = errs.add(fmt.Errorf("camera %q: minimum_motion_frames must be >= 1, defaulting to 1", c.Name))
		c.MinimumMotionFrames = 1
	}
	if c.Despeckle != "" {
		if _, err := parseDespeckleCheck(c.Despeckle); err != nil {
			errs = errs.add(fmt.Errorf("camera %q: %w, disabling despeckle", c.Name, err))
			c.Despeckle = ""
		}
	}
	if c.PreviewMethod != "center" && c.PreviewMethod != "best" {
		errs = errs.add(fmt.Errorf("camera %q: unknown preview_method %q, defaulting to center", c.Name, c.PreviewMethod))
		c.PreviewMethod = "center"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func parseDespeckleCheck(s string) (string, error) {
	for _, c := range s {
		switch c {
		case 'E', 'e', 'D', 'd', 'l':
		default:
			return "", fmt.Errorf("unknown despeckle op %q", c)
		}
	}
	return s, nil
}

// File is a parsed line-based config file: global keys plus, for each
// "thread <file>" directive encountered, the nested Camera overlay.
type File struct {
	Global  Global
	Cameras []Camera
}

// Parse reads a line-based "key value" config file. Blank lines and
// "#"-prefixed comments are skipped. Camera keys outside any thread build a
// camera of their own. "thread <path>" closes the camera built so far and
// starts a new one from path's first camera, which starts from Default():
// camera keys set earlier in this file are not inherited. Camera keys after
// the directive apply to the thread's camera.
func Parse(r io.Reader, loadThread func(path string) (io.ReadCloser, error)) (*File, error) {
	f := &File{}
	cur := Default()
	haveCamera := false
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			key, val = line, ""
		}
		val = strings.TrimSpace(val)
		switch key {
		case "root":
			f.Global.Root = val
		case "addr":
			f.Global.Addr = val
		case "log_path":
			f.Global.LogPath = val
		case "thread":
			if haveCamera {
				f.Cameras = append(f.Cameras, cur)
			}
			cur = Default()
			haveCamera = true
			if loadThread != nil {
				rc, err := loadThread(val)
				if err != nil {
					return nil, fmt.Errorf("config: thread %q: %w", val, err)
				}
				sub, err := Parse(rc, loadThread)
				_ = rc.Close()
				if err != nil {
					return nil, err
				}
				if len(sub.Cameras) > 0 {
					cur = sub.Cameras[0]
				}
			}
		default:
			if err := applyCameraKey(&cur, key, val); err != nil {
				return nil, err
			}
			haveCamera = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if haveCamera {
		f.Cameras = append(f.Cameras, cur)
	}
	return f, nil
}

func applyCameraKey(c *Camera, key, val string) error {
	var err error
	switch key {
	case "name":
		c.Name = val
	case "videodevice", "src":
		c.Src = val
	case "width":
		c.W, err = strconv.Atoi(val)
	case "height":
		c.H, err = strconv.Atoi(val)
	case "framerate":
		c.FPS, err = strconv.Atoi(val)
	case "threshold":
		c.Threshold, err = strconv.Atoi(val)
	case "noise_level":
		c.Noise, err = strconv.Atoi(val)
	case "lightswitch_percent":
		c.LightswitchPercent, err = strconv.Atoi(val)
	case "switchfilter":
		c.SwitchfilterOn = val == "on" || val == "true"
	case "despeckle_filter":
		c.Despeckle = val
	case "pre_capture":
		c.PreCapture, err = strconv.Atoi(val)
	case "post_capture":
		c.PostCapture, err = strconv.Atoi(val)
	case "minimum_motion_frames":
		c.MinimumMotionFrames, err = strconv.Atoi(val)
	case "event_gap":
		c.Gap, err = time.ParseDuration(val)
	case "max_mpeg_time":
		c.MaxMPEGTime, err = time.ParseDuration(val)
	case "smart_mask_speed":
		c.SmartmaskSpeed, err = strconv.Atoi(val)
	case "output_all":
		c.OutputAll = val == "on" || val == "true"
	case "setup_mode":
		c.SetupMode = val == "on" || val == "true"
	case "noise_tune":
		c.NoiseTune = val == "on" || val == "true"
	case "threshold_tune":
		c.ThresholdTune = val == "on" || val == "true"
	case "mask_file":
		c.MaskFile = val
	case "preview_method":
		c.PreviewMethod = val
	case "snapshot_interval":
		c.SnapshotInterval, err = time.ParseDuration(val)
	case "on_event_start":
		c.OnEventStart = val
	case "on_event_end":
		c.OnEventEnd = val
	case "webhook":
		c.Webhook = val
	default:
		// Unknown keys are ignored rather than fatal, matching the
		// original's tolerance of config keys from newer/older versions.
	}
	if err != nil {
		return fmt.Errorf("config: key %q value %q: %w", key, val, err)
	}
	return nil
}

// LoadFile opens path and parses it. "thread" paths are opened as given,
// so a relative one resolves against the working directory, not against
// path's directory.
func LoadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, func(p string) (io.ReadCloser, error) {
		return os.Open(p)
	})
}
