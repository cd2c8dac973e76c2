package presenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/soocke/pixel-diff-go/domain/diff"
	"github.com/soocke/pixel-diff-go/ui/model"
)

// StatsSource provides pipeline results and counters.
type StatsSource interface {
	Latest() diff.Result
	Stats() diff.PipelineStats
}

// StatsView displays the one-line render summary.
type StatsView interface {
	SetStats(text string)
}

var busyOps = []string{model.OpRefresh, model.OpScreenshot, model.OpReference, model.OpSaveResult, model.OpSaveViewport}

// StatsPresenter formats the latest composite, its similarity score and
// any running operations into the stats line.
type StatsPresenter struct {
	source StatsSource
	busy   *model.BusyModel
	view   StatsView
	last   string
}

// NewStatsPresenter returns a new StatsPresenter.
func NewStatsPresenter(source StatsSource, busy *model.BusyModel, view StatsView) *StatsPresenter {
	return &StatsPresenter{source: source, busy: busy, view: view}
}

// Tick pushes the summary to the view when it changed.
func (p *StatsPresenter) Tick(now time.Time) {
	if p == nil || p.source == nil || p.view == nil {
		return
	}
	text := FormatStats(p.source.Latest(), p.source.Stats())
	if p.busy != nil {
		for _, op := range busyOps {
			if p.busy.Busy(op) {
				text += fmt.Sprintf(" | %s %.1fs", op, p.busy.Elapsed(op, now).Seconds())
			}
		}
	}
	if text == p.last {
		return
	}
	p.last = text
	p.view.SetStats(text)
}

// FormatStats renders e.g. "#12 sumdiff(382) 3ms | similarity 93.8% | failures 1".
func FormatStats(res diff.Result, stats diff.PipelineStats) string {
	if res.Empty() {
		return "No image"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "#%d", res.Sequence)
	if res.Config != nil && res.Config.Operator != nil && res.Config.Reference != nil && res.Config.Screenshot != nil {
		fmt.Fprintf(&b, " %s", res.Config.Operator)
	}
	fmt.Fprintf(&b, " %s", res.Duration.Round(time.Millisecond))
	if res.Similarity != nil {
		fmt.Fprintf(&b, " | similarity %.1f%%", res.Similarity.Percent)
	}
	if stats.Failures > 0 {
		fmt.Fprintf(&b, " | failures %d", stats.Failures)
	}
	return b.String()
}
