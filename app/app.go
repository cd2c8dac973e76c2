package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/soocke/pixel-diff-go/config"
	"github.com/soocke/pixel-diff-go/debug"
	"github.com/soocke/pixel-diff-go/domain/diff"
	"github.com/soocke/pixel-diff-go/ui/presenter"
	"github.com/soocke/pixel-diff-go/ui/theme"
	"github.com/soocke/pixel-diff-go/ui/view"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

const (
	tick = 50 * time.Millisecond

	// space reserved beside and above the canvas for the button column and
	// the control rows
	panelWidth     = 240
	controlsHeight = 260
)

type app struct {
	title     string
	config    *config.Config
	cfgPath   string
	reference string
	logger    *slog.Logger
	container *AppContainer
	afterID   string
	stopDebug context.CancelFunc
}

// NewApp prepares the main window. reference, when set, is loaded on start.
func NewApp(title string, cfg *config.Config, cfgPath, reference string, logger *slog.Logger) *app {
	a := &app{title: title, config: cfg, cfgPath: cfgPath, reference: reference, logger: logger}
	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", cfg.WindowWidth, cfg.WindowHeight))
	return a
}

// Start builds the UI, starts the render pipeline and blocks in the Tk
// event loop until the window closes.
func (a *app) Start() error {
	c, err := BuildContainer(a.config, a.logger)
	if err != nil {
		return err
	}
	a.container = c
	theme.SetDark(a.config.DarkMode)

	if a.config.Debug {
		ctx, cancel := context.WithCancel(context.Background())
		a.stopDebug = cancel
		debug.StartGoroutineLogger(ctx, 5*time.Second, a.logger)
		debug.StartMemLogger(ctx, 5*time.Second, a.logger)
	}

	cp, cv := c.ComparePresenter, c.CanvasPresenter
	ref := a.reference
	if ref == "" {
		ref = a.config.Reference
	}
	c.RootView.Build(view.Layout{
		Controls: view.ControlValues{
			Value:   c.Compare.Value(),
			OffsetX: c.Compare.OffsetX(),
			SoftY:   c.Compare.SoftOffsetY(),
			HardY:   c.Compare.HardOffsetY(),
		},
		Reference:    ref,
		CanvasWidth:  a.config.WindowWidth - panelWidth,
		CanvasHeight: a.config.WindowHeight - controlsHeight,
	}, view.Handlers{
		OnRefresh:        cp.RefreshDevices,
		OnScreenshot:     cp.TakeScreenshot,
		OnSaveResult:     cp.SaveResult,
		OnSaveViewport:   cp.SaveViewport,
		OnResetView:      cv.ResetView,
		OnClearFinders:   cv.ClearFinders,
		OnToggleWatch:    c.WatchPresenter.Toggle,
		OnToggleTheme:    a.toggleTheme,
		OnExit:           a.exitHandler,
		OnDeviceSelected: cp.SelectDevice,
		OnMode:           func(kind diff.BlendKind) { cp.SetMode(kind) },
		OnApply: func(v view.ControlValues) {
			cp.SetControls(v.Value, v.OffsetX, v.SoftY, v.HardY)
		},
		OnReference: cp.SetReference,
		Canvas: view.CanvasHandlers{
			Press:   cv.Press,
			Move:    cv.Move,
			Release: cv.Release,
			Wheel:   cv.Wheel,
			Zoom:    cv.Zoom,
			Pan:     cv.Pan,
			Reset:   cv.ResetView,
		},
	})

	cp.Init()
	if a.config.WatchReference {
		c.WatchPresenter.Enable()
	} else {
		c.WatchPresenter.Disable()
	}
	c.Pipeline.Start()
	cp.RefreshDevices()
	if ref != "" {
		cp.SetReference(ref)
	}

	c.Loop = presenter.NewLoop(cp, cv, c.StatePresenter, c.StatsPresenter, a.scheduleUpdate)
	a.scheduleUpdate()
	App.Wait()
	return nil
}

func (a *app) scheduleUpdate() {
	// Schedule the next update using TclAfter to stay on Tk's event loop thread.
	a.afterID = TclAfter(tick, func() { a.container.Loop.Tick() })
}

func (a *app) toggleTheme() {
	dark := theme.SetDark(!theme.IsDark())
	a.config.DarkMode = dark
	a.container.CanvasPresenter.SetPalette(theme.ViewportPalette())
}

func (a *app) exitHandler() {
	// Cancel scheduled after event if any.
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	if a.stopDebug != nil {
		a.stopDebug()
	}
	if c := a.container; c != nil {
		c.Compare.Store(a.config)
		c.Config.WatchReference = c.Watch.Enabled()
		c.Close()
		if a.cfgPath != "" {
			if err := a.config.Save(a.cfgPath); err != nil {
				a.logger.Error("config save failed", "error", err)
			} else {
				a.logger.Info("config saved", "path", a.cfgPath)
			}
		}
	}
	Destroy(App)
}
