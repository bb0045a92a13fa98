// Copyright 2024 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// motiond runs the motion-detection daemon across every camera named in
// its config file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Motion-Project/motiond/internal/camera"
	"github.com/Motion-Project/motiond/internal/config"
	"github.com/Motion-Project/motiond/internal/httpapi"
	"github.com/Motion-Project/motiond/internal/obslog"
)

func mainImpl() error {
	cfgPath := flag.String("c", "motiond.conf", "path to the config file")
	addr := flag.String("addr", "", "optional address to serve the status/preview HTTP surface on")
	logDir := flag.String("log-dir", "", "directory for per-camera log files; empty disables per-camera files")
	verbose := flag.Bool("v", false, "enable verbose logging")
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument")
	}

	logger, _ := obslog.Setup(os.Stderr, *verbose)

	f, err := config.LoadFile(*cfgPath)
	if err != nil {
		return fmt.Errorf("loading %q: %w", *cfgPath, err)
	}
	for i := range f.Cameras {
		if err := f.Cameras[i].Validate(); err != nil {
			logger.Warn("config: camera validation", "camera", f.Cameras[i].Name, "err", err)
		}
	}
	if f.Global.Addr != "" && *addr == "" {
		*addr = f.Global.Addr
	}
	logDirVal := *logDir
	if logDirVal == "" {
		logDirVal = f.Global.LogPath
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	watcher, err := config.NewWatcher(*cfgPath)
	if err != nil {
		logger.Warn("config: watcher unavailable, hot reload disabled", "err", err)
	} else {
		defer watcher.Close()
		go func() {
			for range watcher.Reload {
				logger.Info("config: reload signaled, restart the daemon to pick it up")
			}
		}()
	}

	sup := camera.NewSupervisor(logger.Handler(), logDirVal, nil)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return sup.Run(ctx, f)
	})
	if *addr != "" {
		eg.Go(func() error {
			return httpapi.Serve(ctx, *addr, sup)
		})
	}
	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "motiond: %s\n", err.Error())
		os.Exit(1)
	}
}
