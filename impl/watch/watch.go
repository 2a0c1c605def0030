// Package watch watches the configuration file so that the server can apply changes
// without a restart.
package watch

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// DefaultSettle is how long the file has to be quiet before the change is handled
const DefaultSettle = 100 * time.Millisecond

// Watcher calls a function when a file changes. Editors often write a file in
// several steps, or replace it with a rename, so the directory is watched and events
// for the file are de-duplicated by time: the function runs once the file has been
// quiet for the settle duration. Based on:
//
// https://github.com/fsnotify/fsnotify/blob/main/cmd/fsnotify/dedup.go
type Watcher struct {
	file     string
	settle   time.Duration
	onChange func()
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	timer    *time.Timer
}

// New starts watching the passed file. The passed function is called from the
// watcher's own goroutine once Run is called.
func New(file string, settle time.Duration, onChange func()) (*Watcher, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create a file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("unable to watch %s: %w", abs, err)
	}
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{
		file:     abs,
		settle:   settle,
		onChange: onChange,
		watcher:  fw,
	}, nil
}

// Run handles file events until the passed context is done
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()
	log.Infof("watching %s for changes", w.file)
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			log.Infof("stopped watching %s", w.file)
			return
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("error watching %s: %s", w.file, err)
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.file {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.mu.Lock()
			if w.timer == nil {
				w.timer = time.AfterFunc(math.MaxInt64, w.fire)
				w.timer.Stop()
			}
			w.timer.Reset(w.settle)
			w.mu.Unlock()
		}
	}
}

func (w *Watcher) fire() {
	log.Infof("%s changed", w.file)
	w.onChange()
}
