package source

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 150 * time.Millisecond

// Watcher reports changes to a single file, typically the reference image
// being edited in another tool. The containing directory is watched so
// atomic-rename saves are seen.
type Watcher struct {
	logger   *slog.Logger
	fw       *fsnotify.Watcher
	debounce time.Duration
	onChange func(path string)

	mu     sync.Mutex
	target string
	dir    string
	timer  *time.Timer
	done   chan struct{}
}

// NewWatcher starts an idle watcher; call Watch to choose a file.
func NewWatcher(logger *slog.Logger, debounce time.Duration, onChange func(path string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	w := &Watcher{logger: logger, fw: fw, debounce: debounce, onChange: onChange, done: make(chan struct{})}
	go w.loop()
	return w, nil
}

// Watch switches the watched file to path.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dir != dir {
		if w.dir != "" {
			_ = w.fw.Remove(w.dir)
		}
		if err := w.fw.Add(dir); err != nil {
			w.dir, w.target = "", ""
			return fmt.Errorf("watch directory: %w", err)
		}
		w.dir = dir
	}
	w.target = abs
	return nil
}

// Unwatch stops reporting changes until the next Watch.
func (w *Watcher) Unwatch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	if w.dir != "" {
		_ = w.fw.Remove(w.dir)
	}
	w.dir, w.target = "", ""
}

// Target returns the watched file path, or "".
func (w *Watcher) Target() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.target
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	err := w.fw.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			name, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			w.mu.Lock()
			if name == w.target {
				if w.timer != nil {
					w.timer.Stop()
				}
				w.timer = time.AfterFunc(w.debounce, func() { w.fire(name) })
			}
			w.mu.Unlock()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn("reference watch", "error", err)
			}
		}
	}
}

func (w *Watcher) fire(path string) {
	if w.Target() != path {
		return
	}
	if w.logger != nil {
		w.logger.Debug("reference changed", "path", path)
	}
	if w.onChange != nil {
		w.onChange(path)
	}
}
