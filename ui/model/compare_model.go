package model

import (
	"fmt"

	"github.com/soocke/pixel-diff-go/config"
	"github.com/soocke/pixel-diff-go/domain/diff"
)

// CompareModel holds the comparison controls as the user sees them: blend
// mode, the mode slider, the reference offsets and the device density.
// It is owned by the UI thread. Methods are nil-safe.
type CompareModel struct {
	mode        diff.BlendKind
	value       int
	max         int
	offsetRange int
	offsetX     int
	softY       int
	hardY       int
	density     float64
	reference   string
}

// NewCompareModel seeds the model from cfg (defaults when nil).
func NewCompareModel(cfg *config.Config) *CompareModel {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	m := &CompareModel{max: cfg.SliderMax, offsetRange: cfg.OffsetRange}
	if m.max <= 0 {
		m.max = 1
	}
	if m.offsetRange < 0 {
		m.offsetRange = 0
	}
	if cfg.BlendMode == config.BlendModeSumDiff {
		m.mode = diff.BlendSumDiff
	}
	m.SetValue(cfg.SliderValue)
	m.SetOffsetX(cfg.OffsetX)
	m.SetSoftOffsetY(cfg.SoftOffsetY)
	m.SetHardOffsetY(cfg.HardOffsetY)
	m.reference = cfg.Reference
	return m
}

// Mode returns the selected blend kind.
func (m *CompareModel) Mode() diff.BlendKind {
	if m == nil {
		return diff.BlendOpacity
	}
	return m.mode
}

// SetMode selects the blend kind and reports whether it changed.
func (m *CompareModel) SetMode(k diff.BlendKind) bool {
	if m == nil || m.mode == k {
		return false
	}
	m.mode = k
	return true
}

func (m *CompareModel) Value() int {
	if m == nil {
		return 0
	}
	return m.value
}

func (m *CompareModel) Max() int {
	if m == nil {
		return 1
	}
	return m.max
}

// SetValue moves the slider, clamped to [0, Max].
func (m *CompareModel) SetValue(v int) bool {
	if m == nil {
		return false
	}
	v = clamp(v, 0, m.max)
	if v == m.value {
		return false
	}
	m.value = v
	return true
}

// Operator derives the blend operator for the current mode and slider.
func (m *CompareModel) Operator() diff.BlendOperator {
	if m == nil {
		return diff.Opacity(1)
	}
	return diff.OperatorFromControl(m.mode, m.value, m.max)
}

// OffsetRange is the soft slider limit in either direction.
func (m *CompareModel) OffsetRange() int {
	if m == nil {
		return 0
	}
	return m.offsetRange
}

func (m *CompareModel) OffsetX() int {
	if m == nil {
		return 0
	}
	return m.offsetX
}

// SetOffsetX moves the reference horizontally, clamped to the offset range.
func (m *CompareModel) SetOffsetX(v int) bool {
	if m == nil {
		return false
	}
	v = clamp(v, -m.offsetRange, m.offsetRange)
	if v == m.offsetX {
		return false
	}
	m.offsetX = v
	return true
}

func (m *CompareModel) SoftOffsetY() int {
	if m == nil {
		return 0
	}
	return m.softY
}

// SetSoftOffsetY sets the slider part of the vertical offset.
func (m *CompareModel) SetSoftOffsetY(v int) bool {
	if m == nil {
		return false
	}
	v = clamp(v, -m.offsetRange, m.offsetRange)
	if v == m.softY {
		return false
	}
	m.softY = v
	return true
}

func (m *CompareModel) HardOffsetY() int {
	if m == nil {
		return 0
	}
	return m.hardY
}

// SetHardOffsetY sets the typed, unbounded part of the vertical offset.
func (m *CompareModel) SetHardOffsetY(v int) bool {
	if m == nil || v == m.hardY {
		return false
	}
	m.hardY = v
	return true
}

// OffsetY is the total vertical offset, soft plus hard.
func (m *CompareModel) OffsetY() int {
	if m == nil {
		return 0
	}
	return m.softY + m.hardY
}

// Density returns pixels per dp for the current screenshot.
func (m *CompareModel) Density() float64 {
	if m == nil {
		return 0
	}
	return m.density
}

// SetDensity stores the screenshot's density. Non-positive values mean unknown.
func (m *CompareModel) SetDensity(d float64) bool {
	if m == nil {
		return false
	}
	if d < 0 {
		d = 0
	}
	if d == m.density {
		return false
	}
	m.density = d
	return true
}

func (m *CompareModel) Reference() string {
	if m == nil {
		return ""
	}
	return m.reference
}

func (m *CompareModel) SetReference(path string) {
	if m != nil {
		m.reference = path
	}
}

// Apply copies the controls into a render configuration.
func (m *CompareModel) Apply(rc diff.RenderConfig) diff.RenderConfig {
	if m == nil {
		return rc
	}
	op := m.Operator()
	rc.Operator = &op
	rc.OffsetX = m.offsetX
	rc.OffsetY = m.OffsetY()
	rc.PixelDensityScale = m.density
	return rc
}

// Store writes the controls back into cfg for persistence.
func (m *CompareModel) Store(cfg *config.Config) {
	if m == nil || cfg == nil {
		return
	}
	cfg.BlendMode = config.BlendModeOpacity
	if m.mode == diff.BlendSumDiff {
		cfg.BlendMode = config.BlendModeSumDiff
	}
	cfg.SliderValue = m.value
	cfg.OffsetX = m.offsetX
	cfg.SoftOffsetY = m.softY
	cfg.HardOffsetY = m.hardY
	cfg.Reference = m.reference
}

// Labels for the offset controls, e.g. "X offset: 12px (6dp)".
func (m *CompareModel) OffsetXLabel() string {
	return "X offset: " + m.pxdp(m.OffsetX())
}

func (m *CompareModel) SoftOffsetYLabel() string {
	return "Soft Y: " + m.pxdp(m.SoftOffsetY())
}

func (m *CompareModel) HardOffsetYLabel() string {
	return "Hard Y: " + m.pxdp(m.HardOffsetY())
}

func (m *CompareModel) TotalOffsetYLabel() string {
	return "Total Y: " + m.pxdp(m.OffsetY())
}

func (m *CompareModel) pxdp(px int) string {
	d := m.Density()
	if d <= 0 {
		return fmt.Sprintf("%dpx", px)
	}
	return fmt.Sprintf("%dpx (%.4gdp)", px, float64(px)/d)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
