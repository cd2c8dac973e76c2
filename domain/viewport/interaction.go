package viewport

import "log/slog"

// Interaction turns pointer input into viewport and finder changes. It is
// owned by the UI thread; no synchronization is performed.
//
// Every input method returns true when the view needs repainting.
type Interaction struct {
	logger    *slog.Logger
	transform Transform
	finders   FinderSet
	draft     Finder
	state     DragState
	zoomMod   Modifier
	hasImage  func() bool
	listeners []StateListener
}

// NewInteraction constructs an idle interaction. hasImage gates finder
// creation; nil means an image is always present.
func NewInteraction(logger *slog.Logger, t Transform, zoomMod Modifier, hasImage func() bool) *Interaction {
	if t.Scale == 0 {
		t.Scale = 1
	}
	if zoomMod == 0 {
		zoomMod = ModAlt
	}
	return &Interaction{logger: logger, transform: t, zoomMod: zoomMod, hasImage: hasImage}
}

// AddListener registers l for drag state transitions.
func (in *Interaction) AddListener(l StateListener) {
	if l != nil {
		in.listeners = append(in.listeners, l)
	}
}

func (in *Interaction) State() DragState { return in.state }

// Transform returns the current view transform.
func (in *Interaction) Transform() Transform { return in.transform }

// SetOrigin moves the top-left of the visible area.
func (in *Interaction) SetOrigin(x, y float64) {
	in.transform.OriginX, in.transform.OriginY = x, y
}

// ResetView restores identity pan and zoom.
func (in *Interaction) ResetView() bool {
	in.transform.Reset()
	return true
}

// ZoomModifier is the modifier that turns wheel input into zoom.
func (in *Interaction) ZoomModifier() Modifier { return in.zoomMod }

// Finders exposes the committed finder set.
func (in *Interaction) Finders() *FinderSet { return &in.finders }

// Draft returns the finder being dragged, if any.
func (in *Interaction) Draft() (Finder, bool) {
	return in.draft, in.state == StateDragging
}

// Press handles a button press at screen point (sx, sy).
func (in *Interaction) Press(b Button, sx, sy float64) bool {
	switch b {
	case ButtonPrimary:
		if in.hasImage != nil && !in.hasImage() {
			return false
		}
		x, y := in.transform.ToImage(sx, sy)
		in.draft = Finder{X0: x, Y0: y, X1: x, Y1: y}
		in.transition(StateDragging)
		return true
	case ButtonSecondary:
		if in.state != StateIdle {
			return false
		}
		x, y := in.transform.ToImage(sx, sy)
		f, ok := in.finders.RemoveAt(x, y)
		if ok && in.logger != nil {
			in.logger.Debug("finder removed", "finder", f.Bounds().String())
		}
		return ok
	}
	return false
}

// Move updates the draft's second corner while dragging.
func (in *Interaction) Move(sx, sy float64) bool {
	if in.state != StateDragging {
		return false
	}
	in.draft.X1, in.draft.Y1 = in.transform.ToImage(sx, sy)
	return true
}

// Release ends a drag, committing the draft when it has an area.
func (in *Interaction) Release(sx, sy float64) bool {
	if in.state != StateDragging {
		return false
	}
	in.draft.X1, in.draft.Y1 = in.transform.ToImage(sx, sy)
	f := in.draft
	in.draft = Finder{}
	in.transition(StateIdle)
	if in.finders.Add(f) && in.logger != nil {
		in.logger.Debug("finder added", "finder", f.Bounds().String(), "count", in.finders.Len())
	}
	return true
}

// Wheel handles a scroll of delta notches at (sx, sy). With the zoom
// modifier held it zooms around the pointer; with Shift it pans
// horizontally; otherwise vertically. It reports whether the view changed.
func (in *Interaction) Wheel(delta float64, mods Modifier, sx, sy float64) bool {
	if delta == 0 {
		return false
	}
	switch {
	case mods.Has(in.zoomMod):
		return in.transform.Zoom(delta, sx, sy)
	case mods.Has(ModShift):
		in.transform.Pan(delta, true)
	default:
		in.transform.Pan(delta, false)
	}
	return true
}

func (in *Interaction) transition(next DragState) {
	prev := in.state
	in.state = next
	if prev == next {
		return
	}
	if in.logger != nil {
		in.logger.Debug("finder state transition", "from", prev.String(), "to", next.String())
	}
	for _, l := range in.listeners {
		l(prev, next)
	}
}
