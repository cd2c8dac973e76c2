package presenter

import (
	"github.com/soocke/pixel-diff-go/domain/viewport"
)

// StateView sets the interaction state label in the view.
type StateView interface{ SetStateLabel(string) }

// StatePresenter receives drag state transitions from the viewport
// interaction and reflects the newest one on the next Tick.
type StatePresenter struct {
	view    StateView
	latest  viewport.DragState
	shown   bool
	pending []viewport.DragState
}

func NewStatePresenter(view StateView) *StatePresenter {
	return &StatePresenter{view: view}
}

// OnState queues a transition. It has the viewport.StateListener signature.
func (p *StatePresenter) OnState(_, next viewport.DragState) {
	if p == nil {
		return
	}
	p.pending = append(p.pending, next)
}

// Tick shows the most recent queued state and clears the queue.
func (p *StatePresenter) Tick() {
	if p == nil || p.view == nil {
		return
	}
	if !p.shown {
		p.shown = true
		p.view.SetStateLabel(stateLabel(p.latest))
	}
	if len(p.pending) == 0 {
		return
	}
	last := p.pending[len(p.pending)-1]
	p.pending = p.pending[:0]
	if last != p.latest {
		p.latest = last
		p.view.SetStateLabel(stateLabel(last))
	}
}

func stateLabel(s viewport.DragState) string { return "Finder: " + s.String() }
