package view

import (
	"image"
	"log/slog"
	"strconv"

	"github.com/soocke/pixel-diff-go/domain/diff"
	"github.com/soocke/pixel-diff-go/ui/model"
	"github.com/soocke/pixel-diff-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Handlers are invoked on user actions. Nil entries are ignored.
type Handlers struct {
	OnRefresh        func()
	OnScreenshot     func()
	OnSaveResult     func()
	OnSaveViewport   func()
	OnResetView      func()
	OnClearFinders   func()
	OnToggleWatch    func()
	OnToggleTheme    func()
	OnExit           func()
	OnDeviceSelected func(idx int)
	OnMode           func(kind diff.BlendKind)
	OnApply          func(ControlValues)
	OnReference      func(path string)
	Canvas           CanvasHandlers
}

// Layout describes the initial widget contents.
type Layout struct {
	Controls     ControlValues
	Reference    string
	CanvasWidth  int
	CanvasHeight int
}

// RootView composes the top-level application layout and wires UI callbacks.
// It owns high-level subviews and satisfies every presenter view contract.
type RootView struct {
	logger *slog.Logger

	// Subviews
	Status   StatusBar
	Controls ControlsPanel
	Canvas   CanvasView

	// Widgets
	StateLabel   *TLabelWidget
	DeviceSelect *TComboboxWidget
	screenshot   *ButtonWidget
	refresh      *ButtonWidget
	saveResult   *ButtonWidget
	saveViewport *ButtonWidget
	watch        *ButtonWidget
	modeButtons  map[diff.BlendKind]*TButtonWidget
	deviceCount  int
}

func NewRootView(logger *slog.Logger) *RootView {
	return &RootView{logger: logger, modeButtons: map[diff.BlendKind]*TButtonWidget{}}
}

// Build constructs the layout.
func (rv *RootView) Build(layout Layout, hs Handlers) {
	if rv == nil {
		return
	}
	call := func(fn func()) func() {
		return func() {
			if fn != nil {
				fn()
			}
		}
	}

	// Row 0: stats, state label; buttons frame on the right
	rv.StateLabel = TLabel(Txt("Finder: idle"), Style(theme.StyleStateLabel))
	Grid(rv.StateLabel, Row(0), Column(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(4), Rowspan(8), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	rv.DeviceSelect = TCombobox(Values([]string{"<none>"}), Width(26))
	Grid(rv.DeviceSelect, In(btnFrame), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	rv.DeviceSelect.Current(0)
	rv.deviceCount = 1
	Bind(rv.DeviceSelect, "<<ComboboxSelected>>", Command(func() {
		idx, err := strconv.Atoi(rv.DeviceSelect.Current(nil))
		if err != nil || idx < 0 || idx >= rv.deviceCount {
			if rv.logger != nil {
				rv.logger.Error("device selection parse error", "error", err)
			}
			return
		}
		if hs.OnDeviceSelected != nil {
			hs.OnDeviceSelected(idx)
		}
	}))
	row := 1
	button := func(text string, fn func()) *ButtonWidget {
		b := Button(Txt(text), Command(call(fn)))
		Grid(b, In(btnFrame), Row(row), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
		row++
		return b
	}
	rv.refresh = button("Refresh Devices", hs.OnRefresh)
	rv.screenshot = button("Take Screenshot", hs.OnScreenshot)
	rv.saveResult = button("Save Result", hs.OnSaveResult)
	rv.saveViewport = button("Save Viewport", hs.OnSaveViewport)
	button("Reset View", hs.OnResetView)
	button("Clear Finders", hs.OnClearFinders)
	rv.watch = button("Watch Reference", hs.OnToggleWatch)
	button("Toggle Theme", hs.OnToggleTheme)
	button("Exit", hs.OnExit)

	modeFrame := Frame()
	Grid(modeFrame, In(btnFrame), Row(row), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	for i, kind := range []diff.BlendKind{diff.BlendOpacity, diff.BlendSumDiff} {
		b := TButton(Txt(kind.String()), Style(theme.StyleModeButton), Command(func() {
			if hs.OnMode != nil {
				hs.OnMode(kind)
			}
		}))
		Grid(b, In(modeFrame), Row(0), Column(i), Sticky("we"), Padx("0.1m"))
		rv.modeButtons[kind] = b
	}

	// Control rows below the stats line
	rv.Controls = NewControlsPanel(layout.Controls, layout.Reference, hs.OnApply, hs.OnReference)
	endRow := rv.Controls.Build(1)

	rv.Canvas = NewCanvasView(endRow, layout.CanvasWidth, layout.CanvasHeight, hs.Canvas)
	rv.Status = NewStatusBar(0, endRow+1)
}

// SetStateLabel updates the finder state label text.
func (rv *RootView) SetStateLabel(text string) {
	if rv != nil && rv.StateLabel != nil {
		rv.StateLabel.Configure(Txt(text))
	}
}

// SetDevices replaces the device dropdown entries.
func (rv *RootView) SetDevices(names []string, selected int) {
	if rv == nil || rv.DeviceSelect == nil || len(names) == 0 {
		return
	}
	rv.DeviceSelect.Configure(Values(names))
	rv.deviceCount = len(names)
	if selected >= 0 && selected < len(names) {
		rv.DeviceSelect.Current(selected)
	}
}

// SetCaptureEnabled toggles the screenshot button.
func (rv *RootView) SetCaptureEnabled(enabled bool) {
	if rv != nil && rv.screenshot != nil {
		rv.screenshot.Configure(State(stateOf(enabled)))
	}
}

// SetBusy disables the control that started op while it runs.
func (rv *RootView) SetBusy(op string, busy bool) {
	if rv == nil {
		return
	}
	switch op {
	case model.OpRefresh:
		if rv.refresh != nil {
			rv.refresh.Configure(State(stateOf(!busy)))
		}
	case model.OpSaveResult:
		if rv.saveResult != nil {
			rv.saveResult.Configure(State(stateOf(!busy)))
		}
	case model.OpSaveViewport:
		if rv.saveViewport != nil {
			rv.saveViewport.Configure(State(stateOf(!busy)))
		}
	case model.OpReference:
		if rv.Controls != nil {
			rv.Controls.SetEditable(!busy)
		}
	}
}

func (rv *RootView) SetStatus(text string) {
	if rv != nil && rv.Status != nil {
		rv.Status.SetStatus(text)
	}
}

func (rv *RootView) SetStats(text string) {
	if rv != nil && rv.Status != nil {
		rv.Status.SetStats(text)
	}
}

// SetMode highlights the active blend mode button.
func (rv *RootView) SetMode(kind diff.BlendKind) {
	if rv == nil {
		return
	}
	for k, b := range rv.modeButtons {
		style := theme.StyleModeButton
		if k == kind {
			style = theme.StyleActiveModeButton
		}
		b.Configure(Style(style))
	}
}

func (rv *RootView) SetOffsetLabels(x, softY, hardY, totalY string) {
	if rv != nil && rv.Controls != nil {
		rv.Controls.SetOffsetLabels(x, softY, hardY, totalY)
	}
}

func (rv *RootView) SetReferencePath(path string) {
	if rv != nil && rv.Controls != nil {
		rv.Controls.SetReferencePath(path)
	}
}

// SetWatching updates the watch toggle caption.
func (rv *RootView) SetWatching(on bool) {
	if rv == nil || rv.watch == nil {
		return
	}
	text := "Watch Reference"
	if on {
		text = "Stop Watching"
	}
	rv.watch.Configure(Txt(text))
}

// CanvasSize proxies to the canvas view.
func (rv *RootView) CanvasSize() (int, int) {
	if rv == nil || rv.Canvas == nil {
		return 0, 0
	}
	return rv.Canvas.CanvasSize()
}

// SetCanvas proxies to the canvas view.
func (rv *RootView) SetCanvas(img image.Image) {
	if rv != nil && rv.Canvas != nil {
		rv.Canvas.SetCanvas(img)
	}
}

func stateOf(enabled bool) string {
	if enabled {
		return "normal"
	}
	return "disabled"
}
