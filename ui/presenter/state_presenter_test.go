package presenter

import (
	"testing"

	"github.com/soocke/pixel-diff-go/domain/viewport"
)

type mockStateView struct {
	labels []string
}

func (v *mockStateView) SetStateLabel(s string) { v.labels = append(v.labels, s) }

func TestStatePresenter_ShowsLatestQueuedState(t *testing.T) {
	view := &mockStateView{}
	p := NewStatePresenter(view)

	p.Tick()
	if len(view.labels) != 1 || view.labels[0] != "Finder: idle" {
		t.Fatalf("first tick should show the initial state, got %v", view.labels)
	}

	p.OnState(viewport.StateIdle, viewport.StateDragging)
	p.OnState(viewport.StateDragging, viewport.StateIdle)
	p.OnState(viewport.StateIdle, viewport.StateDragging)
	p.Tick()
	if len(view.labels) != 2 || view.labels[1] != "Finder: dragging" {
		t.Fatalf("expected only the newest state to be shown, got %v", view.labels)
	}

	p.Tick()
	if len(view.labels) != 2 {
		t.Fatalf("idle tick should not touch the view, got %v", view.labels)
	}

	p.OnState(viewport.StateIdle, viewport.StateDragging)
	p.Tick()
	if len(view.labels) != 2 {
		t.Fatalf("unchanged state should not be re-shown, got %v", view.labels)
	}
}

func TestStatePresenter_AsListener(t *testing.T) {
	view := &mockStateView{}
	p := NewStatePresenter(view)
	in := viewport.NewInteraction(nil, viewport.NewTransform(0, 0), viewport.ModAlt, nil)
	in.AddListener(p.OnState)

	in.Press(viewport.ButtonPrimary, 1, 1)
	p.Tick()
	if got := view.labels[len(view.labels)-1]; got != "Finder: dragging" {
		t.Fatalf("expected dragging label, got %q", got)
	}
}
