package view

import (
	"image"

	"github.com/soocke/pixel-diff-go/domain/viewport"
	"github.com/soocke/pixel-diff-go/ui/images"
	"github.com/soocke/pixel-diff-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// CanvasHandlers receive pointer and keyboard input in canvas coordinates.
type CanvasHandlers struct {
	Press   func(b viewport.Button, x, y float64)
	Move    func(x, y float64)
	Release func(x, y float64)
	Wheel   func(delta float64, mods viewport.Modifier, x, y float64)
	Zoom    func(delta, x, y float64)
	Pan     func(delta float64, horizontal bool)
	Reset   func()
}

// CanvasView shows rendered viewport frames in a fixed-size label.
type CanvasView interface {
	CanvasSize() (w, h int)
	SetCanvas(img image.Image)
}

type canvasView struct {
	label     *LabelWidget
	w, h      int
	prevPhoto *Img // last Tk photo image, deleted on replacement
	pointerX  float64
	pointerY  float64
}

// NewCanvasView creates the canvas label, grids it and binds input.
// Layout: the canvas spans columns 0-3 of row.
func NewCanvasView(row, w, h int, hs CanvasHandlers) CanvasView {
	w, h = max(w, 50), max(h, 50)
	v := &canvasView{w: w, h: h}
	placeholder := image.NewRGBA(image.Rect(0, 0, w, h))
	v.prevPhoto = NewPhoto(Data(images.EncodePNG(placeholder)))
	v.label = Label(Image(v.prevPhoto), Borderwidth(0), Background(theme.CurrentPalette().Canvas))
	Grid(v.label, Row(row), Column(0), Columnspan(4), Sticky("nw"), Padx("0.4m"), Pady("0.4m"))
	v.bind(hs)
	return v
}

func (v *canvasView) CanvasSize() (int, int) { return v.w, v.h }

func (v *canvasView) SetCanvas(img image.Image) {
	if v.label == nil || img == nil {
		return
	}
	// Frames are rendered at canvas size; anything larger is shrunk to fit.
	pngBytes := images.EncodePNG(images.ScaleToFit(img, v.w, v.h))
	// Replace previous photo to avoid retaining obsolete pixel buffers.
	if v.prevPhoto != nil {
		v.prevPhoto.Delete()
	}
	v.prevPhoto = NewPhoto(Data(pngBytes))
	v.label.Configure(Image(v.prevPhoto))
}

// bind wires mouse and wheel input on the canvas and keyboard shortcuts on
// the window. Keys use Control so typing into the control fields is unaffected.
func (v *canvasView) bind(hs CanvasHandlers) {
	at := func(e *Event) (float64, float64) {
		v.pointerX, v.pointerY = float64(e.X), float64(e.Y)
		return v.pointerX, v.pointerY
	}
	if hs.Press != nil {
		Bind(v.label, "<ButtonPress-1>", Command(func(e *Event) { x, y := at(e); hs.Press(viewport.ButtonPrimary, x, y) }))
		Bind(v.label, "<ButtonPress-3>", Command(func(e *Event) { x, y := at(e); hs.Press(viewport.ButtonSecondary, x, y) }))
	}
	if hs.Move != nil {
		Bind(v.label, "<B1-Motion>", Command(func(e *Event) { hs.Move(at(e)) }))
	}
	Bind(v.label, "<Motion>", Command(func(e *Event) { at(e) }))
	if hs.Release != nil {
		Bind(v.label, "<ButtonRelease-1>", Command(func(e *Event) { hs.Release(at(e)) }))
	}
	if hs.Wheel != nil {
		wheel := func(e *Event, notches float64) {
			x, y := at(e)
			hs.Wheel(notches, modifiers(e.State), x, y)
		}
		Bind(v.label, "<MouseWheel>", Command(func(e *Event) { wheel(e, viewport.WheelNotches(float64(e.Delta))) }))
		// X11 builds that still report the wheel as buttons 4 and 5.
		Bind(v.label, "<Button-4>", Command(func(e *Event) { wheel(e, -1) }))
		Bind(v.label, "<Button-5>", Command(func(e *Event) { wheel(e, 1) }))
	}
	if hs.Zoom != nil {
		Bind(App, "<Control-equal>", Command(func() { hs.Zoom(1, v.pointerX, v.pointerY) }))
		Bind(App, "<Control-plus>", Command(func() { hs.Zoom(1, v.pointerX, v.pointerY) }))
		Bind(App, "<Control-minus>", Command(func() { hs.Zoom(-1, v.pointerX, v.pointerY) }))
	}
	if hs.Pan != nil {
		Bind(App, "<Control-Left>", Command(func() { hs.Pan(-1, true) }))
		Bind(App, "<Control-Right>", Command(func() { hs.Pan(1, true) }))
		Bind(App, "<Control-Up>", Command(func() { hs.Pan(-1, false) }))
		Bind(App, "<Control-Down>", Command(func() { hs.Pan(1, false) }))
	}
	if hs.Reset != nil {
		Bind(App, "<Control-0>", Command(hs.Reset))
	}
}

func modifiers(state Modifier) viewport.Modifier {
	var m viewport.Modifier
	if state&ModifierShift != 0 {
		m |= viewport.ModShift
	}
	if state&ModifierControl != 0 {
		m |= viewport.ModCtrl
	}
	if state&ModifierAlt != 0 {
		m |= viewport.ModAlt
	}
	return m
}
