package dev

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Change represents a detected file change.
type Change struct {
	Path string
}

// Watcher polls a set of paths for modified, added, or removed files.
// Polling keeps the dev loop dependency-free and portable; the interval
// is coarse enough to stay cheap on the directory sizes involved.
type Watcher struct {
	paths    []string
	interval time.Duration
	debounce time.Duration

	mu       sync.Mutex
	onChange func(Change)
	modTimes map[string]time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher over the given files and directories.
func NewWatcher(paths []string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	return &Watcher{
		paths:    paths,
		interval: 500 * time.Millisecond,
		debounce: debounce,
		modTimes: make(map[string]time.Time),
		stop:     make(chan struct{}),
	}
}

// OnChange registers the change callback. Changes within the debounce
// window coalesce into one callback invocation.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start begins polling until the context is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	w.scan(false)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var pending *Change
	var deadline time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-ticker.C:
			if c, changed := w.latestChange(); changed {
				pending = &c
				deadline = time.Now().Add(w.debounce)
			}
			if pending != nil && time.Now().After(deadline) {
				w.fire(*pending)
				pending = nil
			}
		}
	}
}

// Stop terminates polling.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
}

// latestChange rescans and reports one changed path, if any.
func (w *Watcher) latestChange() (Change, bool) {
	return w.scan(true)
}

// scan walks every watched path recording mod times. With report set,
// the first difference from the previous scan is returned.
func (w *Watcher) scan(report bool) (Change, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	seen := make(map[string]time.Time, len(w.modTimes))
	var change *Change

	for _, root := range w.paths {
		filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return nil
			}
			seen[path] = info.ModTime()
			if report && change == nil {
				if prev, ok := w.modTimes[path]; !ok || !prev.Equal(info.ModTime()) {
					change = &Change{Path: path}
				}
			}
			return nil
		})
	}

	if report && change == nil {
		for path := range w.modTimes {
			if _, ok := seen[path]; !ok {
				change = &Change{Path: path}
				break
			}
		}
	}

	w.modTimes = seen
	if change != nil {
		return *change, true
	}
	return Change{}, false
}

func (w *Watcher) fire(c Change) {
	w.mu.Lock()
	fn := w.onChange
	w.mu.Unlock()
	if fn != nil {
		fn(c)
	}
}
