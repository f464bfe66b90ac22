// Package watcher notices edits to the site configuration file while the
// daemon runs. The daemon keeps its loaded configuration; the watcher only
// validates the new file and reports it.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce collapses editor save bursts into one notification.
const DefaultDebounce = 200 * time.Millisecond

// ValidateFunc checks the changed file. A nil error means it still loads.
type ValidateFunc func(path string) error

// ChangeFunc receives the changed file and its validation result.
type ChangeFunc func(path string, validationErr error)

// ConfigWatcher watches one file by watching its directory, so editors that
// save via rename are still seen.
type ConfigWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	validate ValidateFunc
	onChange ChangeFunc
	logger   *logrus.Entry

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a watcher for path. Start must be called to begin delivering
// notifications.
func New(path string, debounce time.Duration, validate ValidateFunc, onChange ChangeFunc, logger *logrus.Entry) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	// fsnotify doesn't follow symlinks, so watch the target's directory.
	if target, err := filepath.EvalSymlinks(abs); err == nil {
		abs = target
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &ConfigWatcher{
		watcher:  w,
		path:     abs,
		debounce: debounce,
		validate: validate,
		onChange: onChange,
		logger:   logger,
	}, nil
}

// Path returns the resolved file being watched.
func (w *ConfigWatcher) Path() string { return w.path }

// Start begins watching for changes. It blocks until the context is cancelled.
func (w *ConfigWatcher) Start(ctx context.Context) {
	defer w.watcher.Close()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			w.logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.schedule()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("Watcher error: %v", err)
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return
		}
	}
}

// schedule (re)arms the debounce timer.
func (w *ConfigWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *ConfigWatcher) fire() {
	var err error
	if w.validate != nil {
		err = w.validate(w.path)
	}
	if err != nil {
		w.logger.WithError(err).Warnf("Site config %s changed and no longer loads", filepath.Base(w.path))
	} else {
		w.logger.Infof("Site config %s changed; restart to apply", filepath.Base(w.path))
	}
	if w.onChange != nil {
		w.onChange(w.path, err)
	}
}
