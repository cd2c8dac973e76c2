package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick on the sub-presenters and invokes a scheduler callback.
// The zero value is usable (methods are nil-safe).
type Loop struct {
	Compare  *ComparePresenter
	Canvas   *CanvasPresenter
	State    *StatePresenter
	Stats    *StatsPresenter
	Schedule func()
}

func NewLoop(compare *ComparePresenter, canvas *CanvasPresenter, state *StatePresenter, stats *StatsPresenter, schedule func()) *Loop {
	return &Loop{Compare: compare, Canvas: canvas, State: state, Stats: stats, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	// Apply finished background work first so the canvas sees new inputs.
	if l.Compare != nil {
		l.Compare.Tick()
	}
	if l.State != nil {
		l.State.Tick()
	}
	if l.Canvas != nil {
		l.Canvas.Tick()
	}
	if l.Stats != nil {
		l.Stats.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
