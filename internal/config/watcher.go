package config

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a config file (and any thread-included files) for
// changes and signals Reload. Grounded on the teacher's use of fsnotify in
// mainImpl, repurposed from watching the running executable (hot-restart
// on rebuild) to watching the config file, the idiomatic SIGHUP-reload
// equivalent named in the concurrency model.
type Watcher struct {
	w      *fsnotify.Watcher
	Reload chan struct{}
}

// NewWatcher creates a Watcher over the given paths.
func NewWatcher(paths ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		if err := w.Add(p); err != nil {
			_ = w.Close()
			return nil, err
		}
	}
	watcher := &Watcher{w: w, Reload: make(chan struct{}, 1)}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				select {
				case w.Reload <- struct{}{}:
				default:
				}
			}
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			slog.Error("config: watcher", "err", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error { return w.w.Close() }
