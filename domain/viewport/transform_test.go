package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransformRoundTrip(t *testing.T) {
	tr := NewTransform(0, 0)
	tr.OriginX, tr.OriginY = 5, 7
	tr.PanX, tr.PanY = 12, -3
	tr.Scale = 2

	sx, sy := tr.ToScreen(10, 20)
	assert.Equal(t, 37.0, sx)
	assert.Equal(t, 44.0, sy)

	ix, iy := tr.ToImage(sx, sy)
	assert.Equal(t, 10, ix)
	assert.Equal(t, 20, iy)
}

func TestToImageRoundsHalfUp(t *testing.T) {
	tr := NewTransform(0, 0)
	tr.Scale = 2
	ix, iy := tr.ToImage(3, -3)
	assert.Equal(t, 2, ix)  // 1.5
	assert.Equal(t, -1, iy) // -1.5
}

func TestZoomKeepsPointUnderCursorFixed(t *testing.T) {
	tr := NewTransform(DefaultZoomStep, DefaultPanStep)
	tr.OriginX, tr.OriginY = 30, 40
	tr.PanX, tr.PanY = 8, -6
	tr.Scale = 1.5

	const cx, cy = 213.0, 171.0
	beforeX := (cx - tr.OriginX - tr.PanX) / tr.Scale
	beforeY := (cy - tr.OriginY - tr.PanY) / tr.Scale

	for _, step := range []float64{3, -1, 5, -7, 2.5} {
		tr.Zoom(step, cx, cy)
		sx, sy := tr.ToScreen(beforeX, beforeY)
		assert.InDelta(t, cx, sx, 1e-9)
		assert.InDelta(t, cy, sy, 1e-9)
	}
	assert.NotEqual(t, 1.5, tr.Scale)
}

func TestZoomFactor(t *testing.T) {
	tr := NewTransform(DefaultZoomStep, DefaultPanStep)
	tr.Zoom(5, 0, 0)
	assert.InDelta(t, 1.1, tr.Scale, 1e-12)
}

func TestZoomIgnoresCollapsingStep(t *testing.T) {
	tr := NewTransform(DefaultZoomStep, DefaultPanStep)
	assert.False(t, tr.Zoom(-50, 10, 10))
	assert.Equal(t, 1.0, tr.Scale)
	assert.Equal(t, 0.0, tr.PanX)
}

func TestPan(t *testing.T) {
	tr := NewTransform(DefaultZoomStep, DefaultPanStep)
	tr.Pan(1, false)
	assert.Equal(t, -10.0, tr.PanY)
	tr.Pan(-2, true)
	assert.Equal(t, 20.0, tr.PanX)
	tr.Reset()
	assert.Equal(t, State{Scale: 1}, tr.State)
}

func TestZoomReportsClampedSteps(t *testing.T) {
	tr := NewTransform(0.5, DefaultPanStep)
	tr.Scale = maxScale
	assert.False(t, tr.Zoom(1, 0, 0), "beyond max scale")
	assert.Equal(t, float64(maxScale), tr.Scale)
	assert.True(t, tr.Zoom(-1, 0, 0))
	assert.Equal(t, float64(maxScale)/2, tr.Scale)
}

func TestWheelNotches(t *testing.T) {
	cases := []struct {
		delta, want float64
	}{
		{120, -1},
		{-240, 2},
		{1, -1},
		{-3, 1},
		{0, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, WheelNotches(c.delta), "delta %v", c.delta)
	}
}
