package presenter

import (
	"image"
	"log/slog"

	"github.com/soocke/pixel-diff-go/domain/diff"
	"github.com/soocke/pixel-diff-go/domain/viewport"
)

// ResultSource supplies the most recently published composite.
type ResultSource interface {
	Latest() diff.Result
}

// CanvasView displays rendered viewport frames.
type CanvasView interface {
	CanvasSize() (w, h int)
	SetCanvas(img image.Image)
}

// CanvasPresenter forwards pointer input to the viewport interaction and
// repaints the canvas when the composite, the canvas size or the
// interaction changes. UI thread only.
type CanvasPresenter struct {
	in       *viewport.Interaction
	renderer *viewport.Renderer
	source   ResultSource
	view     CanvasView
	density  func() float64
	logger   *slog.Logger

	dirty   bool
	lastSeq uint64
	lastW   int
	lastH   int
	frames  uint64
}

// NewCanvasPresenter constructs a canvas presenter. density may be nil.
func NewCanvasPresenter(in *viewport.Interaction, renderer *viewport.Renderer, source ResultSource, view CanvasView, density func() float64, logger *slog.Logger) *CanvasPresenter {
	if renderer == nil {
		renderer = viewport.NewRenderer(viewport.DefaultPalette())
	}
	if density == nil {
		density = func() float64 { return 0 }
	}
	return &CanvasPresenter{in: in, renderer: renderer, source: source, view: view, density: density, logger: logger, dirty: true}
}

// HasImage reports whether a composite is available for finder creation.
func (p *CanvasPresenter) HasImage() bool {
	return p != nil && p.source != nil && !p.source.Latest().Empty()
}

func (p *CanvasPresenter) Press(b viewport.Button, x, y float64) {
	if p != nil && p.in != nil && p.in.Press(b, x, y) {
		p.dirty = true
	}
}

func (p *CanvasPresenter) Move(x, y float64) {
	if p != nil && p.in != nil && p.in.Move(x, y) {
		p.dirty = true
	}
}

func (p *CanvasPresenter) Release(x, y float64) {
	if p != nil && p.in != nil && p.in.Release(x, y) {
		p.dirty = true
	}
}

// Wheel forwards a scroll of delta notches at (x, y).
func (p *CanvasPresenter) Wheel(delta float64, mods viewport.Modifier, x, y float64) {
	if p != nil && p.in != nil && p.in.Wheel(delta, mods, x, y) {
		p.dirty = true
	}
}

// Zoom zooms by delta steps around (x, y), as the zoom modifier plus wheel would.
func (p *CanvasPresenter) Zoom(delta, x, y float64) {
	if p != nil && p.in != nil {
		p.Wheel(delta, p.in.ZoomModifier(), x, y)
	}
}

// Pan scrolls by delta steps.
func (p *CanvasPresenter) Pan(delta float64, horizontal bool) {
	if p == nil || p.in == nil {
		return
	}
	var mods viewport.Modifier
	if horizontal {
		mods = viewport.ModShift
	}
	p.Wheel(delta, mods, 0, 0)
}

// ResetView restores identity pan and zoom.
func (p *CanvasPresenter) ResetView() {
	if p != nil && p.in != nil && p.in.ResetView() {
		p.dirty = true
	}
}

// SetPalette switches the canvas colours, e.g. after a theme change.
func (p *CanvasPresenter) SetPalette(pal viewport.Palette) {
	if p == nil || p.renderer == nil {
		return
	}
	p.renderer.SetPalette(pal)
	p.dirty = true
}

// ClearFinders removes every committed finder.
func (p *CanvasPresenter) ClearFinders() {
	if p == nil || p.in == nil || p.in.Finders().Len() == 0 {
		return
	}
	p.in.Finders().Clear()
	p.dirty = true
}

// FinderRects returns the committed finders in image coordinates.
func (p *CanvasPresenter) FinderRects() []image.Rectangle {
	if p == nil || p.in == nil {
		return nil
	}
	all := p.in.Finders().All()
	rects := make([]image.Rectangle, len(all))
	for i, f := range all {
		rects[i] = f.Bounds()
	}
	return rects
}

// Snapshot renders the viewport into a new image at the current canvas size.
func (p *CanvasPresenter) Snapshot() *image.RGBA {
	if p == nil || p.in == nil || p.view == nil {
		return nil
	}
	w, h := p.view.CanvasSize()
	return p.renderer.Render(w, h, viewport.SceneOf(p.in, p.latestImage(), p.density()))
}

// Tick repaints when anything visible changed since the last frame.
func (p *CanvasPresenter) Tick() {
	if p == nil || p.in == nil || p.view == nil {
		return
	}
	var seq uint64
	var img *image.RGBA
	if p.source != nil {
		res := p.source.Latest()
		seq, img = res.Sequence, res.Image
	}
	w, h := p.view.CanvasSize()
	if w <= 0 || h <= 0 {
		return
	}
	if !p.dirty && seq == p.lastSeq && w == p.lastW && h == p.lastH {
		return
	}
	p.dirty = false
	p.lastSeq, p.lastW, p.lastH = seq, w, h
	p.view.SetCanvas(p.renderer.Render(w, h, viewport.SceneOf(p.in, img, p.density())))
	p.frames++
	if p.logger != nil && p.frames%100 == 0 {
		p.logger.Debug("canvas.frames", "frames", p.frames, "sequence", seq, "width", w, "height", h)
	}
}

func (p *CanvasPresenter) latestImage() *image.RGBA {
	if p.source == nil {
		return nil
	}
	return p.source.Latest().Image
}
