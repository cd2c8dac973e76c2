package model

import (
	"time"
)

// Operation names tracked by BusyModel.
const (
	OpRefresh      = "refresh"
	OpScreenshot   = "screenshot"
	OpReference    = "reference"
	OpSaveResult   = "save-result"
	OpSaveViewport = "save-viewport"
)

// BusyModel tracks which background operations are in flight and how long
// they have been running. It is decoupled from the UI; presenters poll it
// on the tick. The zero value is ready to use.
type BusyModel struct {
	started map[string]time.Time
	last    map[string]time.Duration
}

// NewBusyModel returns a ready-to-use BusyModel.
func NewBusyModel() *BusyModel { return &BusyModel{} }

// Begin marks op as running. It reports false when op is already running.
func (m *BusyModel) Begin(op string, now time.Time) bool {
	if m == nil {
		return false
	}
	if m.started == nil {
		m.started = make(map[string]time.Time)
	}
	if _, running := m.started[op]; running {
		return false
	}
	m.started[op] = now
	return true
}

// End marks op as finished and records its duration.
func (m *BusyModel) End(op string, now time.Time) {
	if m == nil {
		return
	}
	start, running := m.started[op]
	if !running {
		return
	}
	delete(m.started, op)
	if m.last == nil {
		m.last = make(map[string]time.Duration)
	}
	m.last[op] = now.Sub(start)
}

// Busy reports whether op is running.
func (m *BusyModel) Busy(op string) bool {
	if m == nil {
		return false
	}
	_, running := m.started[op]
	return running
}

// Elapsed returns how long op has been running, or its last duration once finished.
func (m *BusyModel) Elapsed(op string, now time.Time) time.Duration {
	if m == nil {
		return 0
	}
	if start, running := m.started[op]; running {
		return now.Sub(start)
	}
	return m.last[op]
}

// Running returns the number of operations in flight.
func (m *BusyModel) Running() int {
	if m == nil {
		return 0
	}
	return len(m.started)
}
