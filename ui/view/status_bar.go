package view

import (
	"github.com/soocke/pixel-diff-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// StatusBar shows the render summary and the last operation message.
type StatusBar interface {
	SetStats(text string)
	SetStatus(text string)
}

type statusBar struct {
	stats  *LabelWidget
	status *TLabelWidget
}

// NewStatusBar places the stats label at statsRow and the status line at
// statusRow; both span the canvas columns.
func NewStatusBar(statsRow, statusRow int) StatusBar {
	sb := &statusBar{}
	sb.stats = Label(Txt("No image"), Anchor("w"))
	Grid(sb.stats, Row(statsRow), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	sb.status = TLabel(Txt("Ready"), Anchor("w"), Style(theme.StyleStatusLabel))
	Grid(sb.status, Row(statusRow), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	return sb
}

func (s *statusBar) SetStats(text string) {
	if s.stats != nil {
		s.stats.Configure(Txt(text))
	}
}

func (s *statusBar) SetStatus(text string) {
	if s.status != nil {
		s.status.Configure(Txt(text))
	}
}
