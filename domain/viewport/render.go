package viewport

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Palette holds the viewport colors.
type Palette struct {
	Background color.RGBA
	Finder     color.RGBA
	Draft      color.RGBA
}

// DefaultPalette matches the comparison canvas: dark gray backdrop, white
// committed finders and a yellow draft.
func DefaultPalette() Palette {
	return Palette{
		Background: color.RGBA{R: 64, G: 64, B: 64, A: 255},
		Finder:     color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Draft:      color.RGBA{R: 255, G: 255, B: 0, A: 255},
	}
}

// Scene is everything needed to draw one viewport frame.
type Scene struct {
	Image     *image.RGBA
	Transform Transform
	Finders   []Finder
	Draft     *Finder
	// Density is the pixels-per-dp factor; labels omit dp when it is not positive.
	Density float64
}

// SceneOf snapshots an interaction over img.
func SceneOf(in *Interaction, img *image.RGBA, density float64) Scene {
	s := Scene{Image: img, Transform: in.Transform(), Finders: in.Finders().All(), Density: density}
	if d, ok := in.Draft(); ok {
		s.Draft = &d
	}
	return s
}

// Renderer rasterizes scenes.
type Renderer struct {
	palette Palette
	scaler  draw.Scaler
	face    font.Face
}

// NewRenderer constructs a renderer using Catmull-Rom resampling.
func NewRenderer(p Palette) *Renderer {
	return &Renderer{palette: p, scaler: draw.CatmullRom, face: basicfont.Face7x13}
}

// SetPalette replaces the colours used by subsequent renders.
func (r *Renderer) SetPalette(p Palette) { r.palette = p }

// Render draws scene into a new w x h image.
func (r *Renderer) Render(w, h int, scene Scene) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	r.RenderInto(dst, scene)
	return dst
}

// RenderInto draws scene over the whole of dst.
func (r *Renderer) RenderInto(dst *image.RGBA, scene Scene) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(r.palette.Background), image.Point{}, draw.Src)
	img := scene.Image
	if img == nil || img.Rect.Empty() {
		return
	}
	t := scene.Transform
	iw := roundHalfUp(float64(img.Rect.Dx()) * t.Scale)
	ih := int(float64(img.Rect.Dy()) / float64(img.Rect.Dx()) * float64(iw))
	x := int(t.OriginX) + roundHalfUp(t.PanX)
	y := int(t.OriginY) + roundHalfUp(t.PanY)
	dr := image.Rect(x, y, x+iw, y+ih)
	if iw == img.Rect.Dx() && ih == img.Rect.Dy() {
		draw.Draw(dst, dr, img, img.Rect.Min, draw.Over)
	} else if iw > 0 && ih > 0 {
		r.scaler.Scale(dst, dr, img, img.Rect, draw.Over, nil)
	}

	for _, f := range scene.Finders {
		r.drawFinder(dst, t, f, scene.Density, r.palette.Finder)
	}
	if scene.Draft != nil {
		r.drawFinder(dst, t, *scene.Draft, scene.Density, r.palette.Draft)
	}
}

func (r *Renderer) drawFinder(dst *image.RGBA, t Transform, f Finder, density float64, c color.RGBA) {
	b := f.Bounds()
	sx, sy := t.ToScreen(float64(b.Min.X), float64(b.Min.Y))
	l, top := roundHalfUp(sx), roundHalfUp(sy)
	w := roundHalfUp(float64(b.Dx()) * t.Scale)
	h := roundHalfUp(float64(b.Dy()) * t.Scale)

	for x := l; x <= l+w; x++ {
		dst.Set(x, top, c)
		dst.Set(x, top+h, c)
	}
	for y := top; y <= top+h; y++ {
		dst.Set(l, y, c)
		dst.Set(l+w, y, c)
	}

	wLabel, hLabel := FinderLabels(f, density)
	r.drawString(dst, wLabel, l, top-10, c)
	r.drawString(dst, hLabel, l+w+10, top+h, c)
}

func (r *Renderer) drawString(dst *image.RGBA, s string, x, y int, c color.RGBA) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: r.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// FinderLabels returns the width and height captions for f, e.g.
// "w:42px (16dp)". The dp part is present only when density > 0.
func FinderLabels(f Finder, density float64) (string, string) {
	return sizeLabel("w", f.Width(), density), sizeLabel("h", f.Height(), density)
}

func sizeLabel(axis string, px int, density float64) string {
	if density <= 0 {
		return fmt.Sprintf("%s:%dpx", axis, px)
	}
	dp := float32(px) / float32(density)
	return fmt.Sprintf("%s:%dpx (%sdp)", axis, px, strconv.FormatFloat(float64(dp), 'f', -1, 32))
}
