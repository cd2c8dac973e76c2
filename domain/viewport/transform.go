package viewport

import "math"

// Default step sizes for wheel input.
const (
	DefaultZoomStep = 0.02
	DefaultPanStep  = 10
	minScale        = 0.01
	maxScale        = 64
)

// State is the user-controlled part of the view: pan offset and zoom.
type State struct {
	PanX, PanY float64
	Scale      float64
}

// Transform maps between image pixels and screen pixels:
//
//	screen = origin + image*scale + pan
//
// Origin is the top-left of the visible area.
type Transform struct {
	State
	OriginX, OriginY float64
	ZoomStep         float64
	PanStep          float64
}

// NewTransform returns an identity transform with the given wheel steps.
// Non-positive steps fall back to the defaults.
func NewTransform(zoomStep, panStep float64) Transform {
	if zoomStep <= 0 {
		zoomStep = DefaultZoomStep
	}
	if panStep <= 0 {
		panStep = DefaultPanStep
	}
	return Transform{State: State{Scale: 1}, ZoomStep: zoomStep, PanStep: panStep}
}

// ToScreen maps an image coordinate to screen space.
func (t Transform) ToScreen(ix, iy float64) (sx, sy float64) {
	return t.OriginX + ix*t.Scale + t.PanX, t.OriginY + iy*t.Scale + t.PanY
}

// ToImage maps a screen coordinate to the nearest image pixel.
func (t Transform) ToImage(sx, sy float64) (ix, iy int) {
	return roundHalfUp((sx - t.OriginX - t.PanX) / t.Scale), roundHalfUp((sy - t.OriginY - t.PanY) / t.Scale)
}

// Zoom scales by 1 + step*ZoomStep around the screen point (sx, sy), which
// keeps the image point under it fixed. Steps that would collapse or blow up
// the scale are ignored. It reports whether the transform changed.
func (t *Transform) Zoom(step, sx, sy float64) bool {
	f := step * t.ZoomStep
	next := t.Scale * (1 + f)
	if f == 0 || 1+f <= 0 || next < minScale || next > maxScale {
		return false
	}
	t.PanX -= (sx - t.OriginX - t.PanX) * f
	t.PanY -= (sy - t.OriginY - t.PanY) * f
	t.Scale = next
	return true
}

// Pan moves the view by -step*PanStep pixels along one axis.
func (t *Transform) Pan(step float64, horizontal bool) {
	dist := -step * t.PanStep
	if horizontal {
		t.PanX += dist
	} else {
		t.PanY += dist
	}
}

// WheelNotches converts a toolkit wheel delta into scroll steps where
// positive means scrolling down. Windows reports multiples of 120 with
// positive values for scrolling up; other platforms report small integers.
func WheelNotches(delta float64) float64 {
	switch {
	case delta == 0 || math.IsNaN(delta):
		return 0
	case math.Abs(delta) >= 120:
		return -delta / 120
	case delta > 0:
		return -1
	default:
		return 1
	}
}

// Reset restores identity pan and zoom.
func (t *Transform) Reset() {
	t.State = State{Scale: 1}
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
