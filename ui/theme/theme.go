package theme

// Centralized theming and styling for the pixel diff UI: palette constants
// and InitStyles to activate a base theme and configure semantic styles.

import (
	"image/color"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/pixel-diff-go/domain/viewport"
)

// Palette defines core semantic colors used across widgets.
const (
	ColorBg        = "#f7f9fb" // app background
	ColorSurface   = "#ffffff" // panels
	ColorBorder    = "#d0d7de"
	ColorPrimary   = "#2563eb" // active mode, accents
	ColorPrimaryHi = "#1d4ed8"
	ColorDanger    = "#dc2626"
	ColorAccent    = "#10b981"
	ColorText      = "#1e293b"
	ColorTextMuted = "#64748b"
	ColorCanvas    = "#404040" // viewport backdrop
)

// PaletteSnapshot represents resolved colors for the active mode.
type PaletteSnapshot struct {
	AppBg     string
	Surface   string
	Border    string
	Primary   string
	Danger    string
	Accent    string
	Text      string
	TextMuted string
	Canvas    string
}

// CurrentPalette returns colors for the current dark/light mode.
func CurrentPalette() PaletteSnapshot {
	if darkMode {
		return PaletteSnapshot{
			AppBg:     "#0f172a",
			Surface:   "#1e293b",
			Border:    "#334155",
			Primary:   "#3b82f6",
			Danger:    "#ef4444",
			Accent:    "#10b981",
			Text:      "#f1f5f9",
			TextMuted: "#94a3b8",
			Canvas:    "#202020",
		}
	}
	return PaletteSnapshot{
		AppBg:     ColorBg,
		Surface:   ColorSurface,
		Border:    ColorBorder,
		Primary:   ColorPrimary,
		Danger:    ColorDanger,
		Accent:    ColorAccent,
		Text:      ColorText,
		TextMuted: ColorTextMuted,
		Canvas:    ColorCanvas,
	}
}

// ViewportPalette returns the raster colors for the comparison canvas.
func ViewportPalette() viewport.Palette {
	p := viewport.DefaultPalette()
	if darkMode {
		p.Background = color.RGBA{R: 32, G: 32, B: 32, A: 255}
	}
	return p
}

// style names used with Style("mode.TButton") etc.
const (
	StyleModeButton       = "mode.TButton"
	StyleActiveModeButton = "activemode.TButton"
	StylePrimaryButton    = "primary.TButton"
	StyleStatusLabel      = "status.TLabel"
	StyleStateLabel       = "state.TLabel"
)

// internal flag for current mode
var darkMode bool

// InitStyles (re)applies styles for the current darkMode value.
func InitStyles() { applyStyles(darkMode) }

// SetDark toggles dark mode and reapplies styles. Returns new mode value.
func SetDark(dark bool) bool {
	darkMode = dark
	applyStyles(darkMode)
	return darkMode
}

// IsDark reports current mode.
func IsDark() bool { return darkMode }

func applyStyles(dark bool) {
	_ = ActivateTheme("azure light") // baseline metrics
	p := CurrentPalette()
	App.Configure(Background(p.AppBg))

	StyleConfigure(StyleModeButton,
		Background(p.Surface),
		Foreground(p.Text),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleActiveModeButton,
		Background(p.Primary),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("sunken"),
	)
	StyleConfigure(StylePrimaryButton,
		Background(p.Primary),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleStatusLabel,
		Foreground(p.TextMuted),
		Background(p.Surface),
		Padding("2p 1p"),
	)
	StyleConfigure(StyleStateLabel,
		Foreground(func() string {
			if dark {
				return "#f0fdf4"
			}
			return "white"
		}()),
		Background(p.Accent),
		Padding("4p 2p"),
		Borderwidth(1),
		Relief("groove"),
	)
}
