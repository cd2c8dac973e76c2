package viewport

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestFinderLabels(t *testing.T) {
	f := Finder{X0: 10, Y0: 10, X1: 50, Y1: 60}

	w, h := FinderLabels(f, 0)
	assert.Equal(t, "w:40px", w)
	assert.Equal(t, "h:50px", h)

	w, h = FinderLabels(f, 2)
	assert.Equal(t, "w:40px (20dp)", w)
	assert.Equal(t, "h:50px (25dp)", h)

	w, _ = FinderLabels(Finder{X0: 0, Y0: 0, X1: 21, Y1: 1}, 2.625)
	assert.Equal(t, "w:21px (8dp)", w)

	w, _ = FinderLabels(Finder{X0: 0, Y0: 0, X1: 5, Y1: 1}, 2)
	assert.Equal(t, "w:5px (2.5dp)", w)
}

func TestRenderBackgroundAndImage(t *testing.T) {
	p := DefaultPalette()
	r := NewRenderer(p)
	tr := NewTransform(0, 0)
	tr.PanX, tr.PanY = 10, 5
	img := solid(20, 10, color.RGBA{R: 200, A: 255})

	out := r.Render(64, 48, Scene{Image: img, Transform: tr})

	assert.Equal(t, image.Rect(0, 0, 64, 48), out.Rect)
	assert.Equal(t, p.Background, out.RGBAAt(0, 0))
	assert.Equal(t, p.Background, out.RGBAAt(9, 5))
	assert.Equal(t, color.RGBA{R: 200, A: 255}, out.RGBAAt(10, 5))
	assert.Equal(t, color.RGBA{R: 200, A: 255}, out.RGBAAt(29, 14))
	assert.Equal(t, p.Background, out.RGBAAt(30, 14))
}

func TestRenderScaledImageExtent(t *testing.T) {
	p := DefaultPalette()
	r := NewRenderer(p)
	tr := NewTransform(0, 0)
	tr.Scale = 2
	img := solid(8, 4, color.RGBA{G: 200, A: 255})

	out := r.Render(40, 40, Scene{Image: img, Transform: tr})

	inside := out.RGBAAt(8, 4)
	assert.NotEqual(t, p.Background, inside)
	assert.InDelta(t, 200, int(inside.G), 2)
	assert.Equal(t, p.Background, out.RGBAAt(16, 4))
	assert.Equal(t, p.Background, out.RGBAAt(4, 8))
}

func TestRenderFinderOutlines(t *testing.T) {
	p := DefaultPalette()
	r := NewRenderer(p)
	tr := NewTransform(0, 0)
	img := solid(100, 100, color.RGBA{A: 255})
	draft := Finder{X0: 70, Y0: 70, X1: 80, Y1: 90}

	out := r.Render(100, 100, Scene{
		Image:     img,
		Transform: tr,
		Finders:   []Finder{{X0: 40, Y0: 30, X1: 20, Y1: 20}},
		Draft:     &draft,
	})

	assert.Equal(t, p.Finder, out.RGBAAt(20, 20))
	assert.Equal(t, p.Finder, out.RGBAAt(40, 25))
	assert.Equal(t, p.Finder, out.RGBAAt(30, 30))
	assert.Equal(t, color.RGBA{A: 255}, out.RGBAAt(30, 25))
	assert.Equal(t, p.Draft, out.RGBAAt(70, 80))
	assert.Equal(t, p.Draft, out.RGBAAt(75, 90))
}

func TestRenderWithoutImageIsBackgroundOnly(t *testing.T) {
	p := DefaultPalette()
	out := NewRenderer(p).Render(4, 4, Scene{Transform: NewTransform(0, 0), Finders: []Finder{{X0: 0, Y0: 0, X1: 2, Y1: 2}}})
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, p.Background, out.RGBAAt(x, y))
		}
	}
}

func TestSceneOfCarriesDraft(t *testing.T) {
	in := NewInteraction(nil, NewTransform(0, 0), ModAlt, nil)
	in.Press(ButtonPrimary, 1, 1)
	in.Move(5, 5)
	s := SceneOf(in, nil, 3)
	if assert.NotNil(t, s.Draft) {
		assert.Equal(t, Finder{X0: 1, Y0: 1, X1: 5, Y1: 5}, *s.Draft)
	}
	assert.Equal(t, 3.0, s.Density)
}
