package model

import (
	"sync/atomic"
)

// WatchModel tracks whether the reference file is reloaded on change. The
// zero value is disabled and usable.
// Atomic because the file watcher callback runs off the UI thread.
type WatchModel struct{ enabled atomic.Bool }

// Enabled reports whether reference watching is on.
func (m *WatchModel) Enabled() bool {
	if m == nil {
		return false
	}
	return m.enabled.Load()
}

// SetEnabled stores the enabled flag.
func (m *WatchModel) SetEnabled(b bool) {
	if m == nil {
		return
	}
	m.enabled.Store(b)
}
