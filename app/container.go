package app

import (
	"log/slog"

	"github.com/soocke/pixel-diff-go/config"
	"github.com/soocke/pixel-diff-go/domain/capture"
	"github.com/soocke/pixel-diff-go/domain/command"
	"github.com/soocke/pixel-diff-go/domain/diff"
	"github.com/soocke/pixel-diff-go/domain/output"
	"github.com/soocke/pixel-diff-go/domain/source"
	"github.com/soocke/pixel-diff-go/domain/viewport"
	"github.com/soocke/pixel-diff-go/ui/model"
	"github.com/soocke/pixel-diff-go/ui/presenter"
	"github.com/soocke/pixel-diff-go/ui/theme"
	"github.com/soocke/pixel-diff-go/ui/view"
)

// AppContainer assembles models, services, presenters and the root view.
type AppContainer struct {
	Config  *config.Config
	Logger  *slog.Logger
	Compare *model.CompareModel
	Busy    *model.BusyModel
	Watch   *model.WatchModel

	CaptureSvc  capture.CaptureService
	Loader      *source.Loader
	Watcher     *source.Watcher
	Output      *output.FileFactory
	Pipeline    *diff.Pipeline
	Interaction *viewport.Interaction
	RootView    *view.RootView

	// Presenters
	ComparePresenter *presenter.ComparePresenter
	CanvasPresenter  *presenter.CanvasPresenter
	StatePresenter   *presenter.StatePresenter
	StatsPresenter   *presenter.StatsPresenter
	WatchPresenter   *presenter.WatchPresenter
	Loop             *presenter.Loop
}

// BuildContainer constructs services, models and presenters. The view is
// created but not built; presenters that push into it are initialised by
// the app after Build.
func BuildContainer(cfg *config.Config, logger *slog.Logger) (*AppContainer, error) {
	c := &AppContainer{Config: cfg, Logger: logger}
	c.Compare = model.NewCompareModel(cfg)
	c.Busy = model.NewBusyModel()
	c.Watch = &model.WatchModel{}

	run := command.Exec{}
	sources := []capture.Source{capture.NewAdbSource(logger, run, cfg.ProjectDir, cfg.AdbPath)}
	if cfg.DesktopCapture {
		sources = append(sources, capture.DesktopSource{})
	}
	c.CaptureSvc = capture.NewCaptureService(logger, sources...)

	loader, err := source.NewLoader(logger, cfg.ImageCacheSize)
	if err != nil {
		return nil, err
	}
	c.Loader = loader
	c.Output = output.NewFileFactory(logger, run, cfg.OutputDir, cfg.ProjectDir)
	c.Pipeline = diff.NewPipeline(logger, diff.NewCompositor(diff.NewBufferPool(cfg.PoolSize), nil))
	if logger != nil {
		c.Pipeline.OnPublish(func(r diff.Result) {
			logger.Debug("pipeline.publish", "sequence", r.Sequence, "duration", r.Duration)
		})
	}

	// Watcher callbacks run on the watcher goroutine; ReferenceChanged is
	// safe to call from there.
	watcher, err := source.NewWatcher(logger, 0, func(path string) {
		if c.Watch.Enabled() && c.ComparePresenter != nil {
			c.ComparePresenter.ReferenceChanged(path)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Watcher = watcher

	t := viewport.NewTransform(cfg.ZoomStep, cfg.PanStep)
	c.Interaction = viewport.NewInteraction(logger, t, viewport.ParseModifier(cfg.ZoomModifier), func() bool {
		return !c.Pipeline.Latest().Empty()
	})
	if cfg.FindersPath != "" {
		if err := c.Interaction.Finders().Load(cfg.FindersPath); err != nil && logger != nil {
			logger.Warn("finders not loaded", "path", cfg.FindersPath, "error", err)
		}
	}

	c.RootView = view.NewRootView(logger)
	c.ComparePresenter = presenter.NewComparePresenter(c.Compare, c.Busy, c.CaptureSvc, c.Loader, c.Output, c.Pipeline, c.RootView, logger)
	c.CanvasPresenter = presenter.NewCanvasPresenter(c.Interaction, viewport.NewRenderer(theme.ViewportPalette()), c.Pipeline, c.RootView, c.Compare.Density, logger)
	c.StatePresenter = presenter.NewStatePresenter(c.RootView)
	c.StatsPresenter = presenter.NewStatsPresenter(c.Pipeline, c.Busy, c.RootView)
	c.WatchPresenter = presenter.NewWatchPresenter(c.Watch, c.Watcher, c.RootView, func(err error) {
		c.RootView.SetStatus("Watch: " + err.Error())
	})

	c.Interaction.AddListener(c.StatePresenter.OnState)
	c.ComparePresenter.SetViewport(c.CanvasPresenter)
	c.ComparePresenter.OnReference = c.WatchPresenter.Follow
	return c, nil
}

// Close saves state and releases background resources.
func (c *AppContainer) Close() {
	if c == nil {
		return
	}
	if c.ComparePresenter != nil {
		c.ComparePresenter.Close()
	}
	if c.Pipeline != nil {
		c.Pipeline.Stop()
	}
	if c.Watcher != nil {
		_ = c.Watcher.Close()
	}
	if c.CaptureSvc != nil && c.Logger != nil {
		st := c.CaptureSvc.Stats()
		c.Logger.Info("capture.stats", "captures", st.Captures, "failures", st.Failures, "avg", st.AvgCapture, "last_device", st.LastDevice)
	}
	if c.Loader != nil && c.Logger != nil {
		c.Logger.Debug("source.cache", "entries", c.Loader.Len())
	}
	if c.Config.FindersPath != "" && c.Interaction != nil {
		if err := c.Interaction.Finders().Save(c.Config.FindersPath); err != nil && c.Logger != nil {
			c.Logger.Error("finders not saved", "path", c.Config.FindersPath, "error", err)
		}
	}
}
