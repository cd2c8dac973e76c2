package presenter

// WatchModel provides enabled state access.
type WatchModel interface {
	Enabled() bool
	SetEnabled(bool)
}

// FileWatcher narrows source.Watcher to what the presenter needs.
type FileWatcher interface {
	Watch(path string) error
	Unwatch()
}

// WatchView reflects whether the reference is being watched.
type WatchView interface {
	SetWatching(bool)
}

// WatchPresenter toggles reloading the reference image when it changes on disk.
type WatchPresenter struct {
	model   WatchModel
	watcher FileWatcher
	view    WatchView
	target  string
	onError func(error)
}

// NewWatchPresenter wires the presenter. onError may be nil.
func NewWatchPresenter(model WatchModel, watcher FileWatcher, view WatchView, onError func(error)) *WatchPresenter {
	return &WatchPresenter{model: model, watcher: watcher, view: view, onError: onError}
}

// Follow records the current reference path and watches it when enabled.
func (w *WatchPresenter) Follow(path string) {
	if w == nil || w.model == nil || w.watcher == nil {
		return
	}
	w.target = path
	if w.model.Enabled() {
		w.watch()
	}
}

// Enable starts watching the current reference. Idempotent.
func (w *WatchPresenter) Enable() {
	if w == nil || w.model == nil || w.watcher == nil || w.view == nil {
		return
	}
	if w.model.Enabled() {
		return
	}
	w.model.SetEnabled(true)
	w.watch()
	w.view.SetWatching(true)
}

// Disable stops watching. Idempotent.
func (w *WatchPresenter) Disable() {
	if w == nil || w.model == nil || w.watcher == nil || w.view == nil {
		return
	}
	if !w.model.Enabled() {
		return
	}
	w.model.SetEnabled(false)
	w.watcher.Unwatch()
	w.view.SetWatching(false)
}

// Toggle flips enabled state delegating to Enable/Disable.
func (w *WatchPresenter) Toggle() {
	if w == nil || w.model == nil {
		return
	}
	if w.model.Enabled() {
		w.Disable()
		return
	}
	w.Enable()
}

func (w *WatchPresenter) watch() {
	if w.target == "" {
		return
	}
	if err := w.watcher.Watch(w.target); err != nil && w.onError != nil {
		w.onError(err)
	}
}
