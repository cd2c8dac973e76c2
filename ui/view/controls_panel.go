package view

import (
	"fmt"
	"strings"

	"github.com/soocke/pixel-diff-go/ui/model"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ControlValues is the parsed content of the composite control fields.
type ControlValues struct {
	Value   int
	OffsetX int
	SoftY   int
	HardY   int
}

// ControlsPanel owns the composite control form: slider value, offsets and
// the reference path.
type ControlsPanel interface {
	Build(startRow int) (endRow int) // constructs widgets starting at startRow, returns next free row
	SetEditable(enabled bool)
	SetOffsetLabels(x, softY, hardY, totalY string)
	SetReferencePath(path string)
	Values() ControlValues
}

type controlsPanel struct {
	initial   ControlValues
	onApply   func(ControlValues)
	onLoad    func(path string)
	applyBtn  *ButtonWidget
	loadBtn   *ButtonWidget
	widgets   map[string]*TextWidget // keyed by internal field id
	labels    map[string]*LabelWidget
	last      ControlValues
	reference string
}

// NewControlsPanel creates the panel seeded with initial. onApply receives
// the parsed fields; onLoad receives the reference path.
func NewControlsPanel(initial ControlValues, reference string, onApply func(ControlValues), onLoad func(path string)) ControlsPanel {
	return &controlsPanel{
		initial:   initial,
		last:      initial,
		reference: reference,
		onApply:   onApply,
		onLoad:    onLoad,
		widgets:   make(map[string]*TextWidget),
		labels:    make(map[string]*LabelWidget),
	}
}

func (v *controlsPanel) Build(startRow int) (row int) {
	c := v.initial
	row = startRow
	makeRow := func(id, label, value string, width int) {
		lbl := Label(Txt(label), Anchor("w"))
		Grid(lbl, Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := Text(Height(1), Width(width))
		Grid(w, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", value)
		v.widgets[id] = w
		info := Label(Txt(""), Anchor("w"))
		Grid(info, Row(row), Column(2), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		v.labels[id] = info
		row++
	}
	makeRow("value", "Opacity / Threshold", fmt.Sprintf("%d", c.Value), 8)
	makeRow("offsetX", "X Offset", fmt.Sprintf("%d", c.OffsetX), 8)
	makeRow("softY", "Soft Y Offset", fmt.Sprintf("%d", c.SoftY), 8)
	makeRow("hardY", "Hard Y Offset", fmt.Sprintf("%d", c.HardY), 8)
	makeRow("reference", "Reference", v.reference, 40)
	v.applyBtn = Button(Txt("Apply"), Command(func() { v.apply() }))
	Grid(v.applyBtn, Row(row), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	v.loadBtn = Button(Txt("Load Reference"), Command(func() { v.load() }))
	Grid(v.loadBtn, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++
	return row
}

func (v *controlsPanel) SetEditable(enabled bool) {
	state := "disabled"
	if enabled {
		state = "normal"
	}
	for _, w := range v.widgets {
		if w != nil {
			w.Configure(State(state))
		}
	}
	for _, b := range []*ButtonWidget{v.applyBtn, v.loadBtn} {
		if b != nil {
			b.Configure(State(state))
		}
	}
}

func (v *controlsPanel) SetOffsetLabels(x, softY, hardY, totalY string) {
	for id, text := range map[string]string{"offsetX": x, "softY": softY, "hardY": hardY + "  " + totalY} {
		if l := v.labels[id]; l != nil {
			l.Configure(Txt(text))
		}
	}
}

func (v *controlsPanel) SetReferencePath(path string) {
	v.reference = path
	w := v.widgets["reference"]
	if w == nil || strings.TrimSpace(v.text(w)) == path {
		return
	}
	w.Delete("1.0", END)
	w.Insert("1.0", path)
}

// Values parses the fields; unparsable fields keep their last good value.
func (v *controlsPanel) Values() ControlValues {
	out := v.last
	assignInt := func(id string, dst *int) {
		if i, ok := model.ParseIntField(v.text(v.widgets[id])); ok {
			*dst = i
		}
	}
	assignInt("value", &out.Value)
	assignInt("offsetX", &out.OffsetX)
	assignInt("softY", &out.SoftY)
	assignInt("hardY", &out.HardY)
	v.last = out
	return out
}

func (v *controlsPanel) apply() {
	if v.onApply != nil {
		v.onApply(v.Values())
	}
}

func (v *controlsPanel) load() {
	if v.onLoad != nil {
		v.onLoad(strings.TrimSpace(v.text(v.widgets["reference"])))
	}
}

func (v *controlsPanel) text(w *TextWidget) string {
	if w == nil {
		return ""
	}
	parts := w.Get("1.0", END)
	return strings.Join(parts, "")
}
