package presenter

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/soocke/pixel-diff-go/domain/capture"
	"github.com/soocke/pixel-diff-go/domain/diff"
	"github.com/soocke/pixel-diff-go/ui/images"
	"github.com/soocke/pixel-diff-go/ui/model"
)

// outputSubdir groups screenshots and saved composites under the branch folder.
const outputSubdir = "image"

// DeviceService narrows capture.CaptureService to what the presenter uses.
type DeviceService interface {
	Devices(ctx context.Context) []capture.Device
	Acquire(ctx context.Context, dev capture.Device, path string) error
	ResetCaches()
}

// ImageLoader decodes screenshot and reference files.
type ImageLoader interface {
	Load(path string) (*image.RGBA, error)
	Forget(path string)
}

// OutputFactory reserves and writes output files.
type OutputFactory interface {
	Create(ctx context.Context, subdir, ext, tag string) (string, error)
	SavePNG(ctx context.Context, subdir, tag string, img image.Image) (string, error)
}

// RenderPipeline is the part of diff.Pipeline the presenter drives.
type RenderPipeline interface {
	Update(fn func(diff.RenderConfig) diff.RenderConfig) diff.RenderConfig
	Latest() diff.Result
}

// ViewportSource renders the current viewport for saving. FinderRects returns
// the finder rectangles in image coordinates.
type ViewportSource interface {
	Snapshot() *image.RGBA
	FinderRects() []image.Rectangle
}

// CompareView is the UI surface updated by the presenter.
type CompareView interface {
	SetDevices(names []string, selected int)
	SetCaptureEnabled(enabled bool)
	SetBusy(op string, busy bool)
	SetStatus(text string)
	SetMode(kind diff.BlendKind)
	SetOffsetLabels(x, softY, hardY, totalY string)
	SetReferencePath(path string)
}

type compareResult struct {
	op       string
	err      error
	devices  []capture.Device
	device   capture.Device
	image    *image.RGBA
	path     string
	extra    int
	reloaded bool
}

// ComparePresenter owns the comparison workflow: device discovery,
// screenshots, the reference image, the blend controls and saving outputs.
// Blocking work runs on goroutines; completions are applied on Tick, which
// must be called from the UI thread like every other method except
// ReferenceChanged.
type ComparePresenter struct {
	model    *model.CompareModel
	busy     *model.BusyModel
	devices  DeviceService
	loader   ImageLoader
	output   OutputFactory
	pipeline RenderPipeline
	viewport ViewportSource
	view     CompareView
	logger   *slog.Logger

	// OnReference is called on the UI thread after a reference loads.
	OnReference func(path string)

	ctx      context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
	resultCh chan compareResult
	now      func() time.Time

	deviceList []capture.Device
	selected   int
}

// NewComparePresenter constructs the presenter. viewport may be set later
// with SetViewport.
func NewComparePresenter(m *model.CompareModel, busy *model.BusyModel, devices DeviceService, loader ImageLoader, output OutputFactory, pipeline RenderPipeline, view CompareView, logger *slog.Logger) *ComparePresenter {
	if m == nil {
		m = model.NewCompareModel(nil)
	}
	if busy == nil {
		busy = model.NewBusyModel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ComparePresenter{
		model:      m,
		busy:       busy,
		devices:    devices,
		loader:     loader,
		output:     output,
		pipeline:   pipeline,
		view:       view,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		timeout:    30 * time.Second,
		resultCh:   make(chan compareResult, 16),
		now:        time.Now,
		deviceList: []capture.Device{capture.NoDevice},
	}
}

// SetViewport attaches the viewport used by SaveViewport and finder crops.
func (p *ComparePresenter) SetViewport(v ViewportSource) {
	if p != nil {
		p.viewport = v
	}
}

// Close cancels in-flight work.
func (p *ComparePresenter) Close() {
	if p != nil {
		p.cancel()
	}
}

// Init pushes the model state into the view and pipeline.
func (p *ComparePresenter) Init() {
	if p == nil || p.view == nil {
		return
	}
	p.view.SetDevices(deviceNames(p.deviceList), 0)
	p.view.SetCaptureEnabled(false)
	p.view.SetMode(p.model.Mode())
	p.pushControls()
}

// Devices returns the listed devices.
func (p *ComparePresenter) Devices() []capture.Device {
	if p == nil {
		return nil
	}
	return p.deviceList
}

// Selected returns the chosen device, or capture.NoDevice.
func (p *ComparePresenter) Selected() capture.Device {
	if p == nil || p.selected < 0 || p.selected >= len(p.deviceList) {
		return capture.NoDevice
	}
	return p.deviceList[p.selected]
}

// RefreshDevices re-resolves tools and lists devices in the background.
func (p *ComparePresenter) RefreshDevices() {
	if p == nil || p.devices == nil || !p.begin(model.OpRefresh) {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
		defer cancel()
		p.devices.ResetCaches()
		p.post(compareResult{op: model.OpRefresh, devices: p.devices.Devices(ctx)})
	}()
}

// SelectDevice chooses the device at idx in the listed order.
func (p *ComparePresenter) SelectDevice(idx int) {
	if p == nil || idx < 0 || idx >= len(p.deviceList) {
		return
	}
	p.selected = idx
	if p.view != nil {
		p.view.SetCaptureEnabled(p.Selected().Valid() && !p.busy.Busy(model.OpScreenshot))
	}
}

// TakeScreenshot captures the selected device into a new output file and
// makes it the pipeline's screenshot.
func (p *ComparePresenter) TakeScreenshot() {
	if p == nil || p.devices == nil || p.output == nil || p.loader == nil {
		return
	}
	dev := p.Selected()
	if !dev.Valid() {
		p.status("Screenshot: " + capture.ErrNoDevice.Error())
		return
	}
	if !p.begin(model.OpScreenshot) {
		return
	}
	if p.view != nil {
		p.view.SetCaptureEnabled(false)
	}
	go func() {
		ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
		defer cancel()
		res := compareResult{op: model.OpScreenshot, device: dev}
		res.path, res.err = p.output.Create(ctx, outputSubdir, "png", dev.Name)
		if res.err == nil {
			res.err = p.devices.Acquire(ctx, dev, res.path)
		}
		if res.err == nil {
			res.image, res.err = p.loader.Load(res.path)
		}
		p.post(res)
	}()
}

// SetReference loads path as the reference image.
func (p *ComparePresenter) SetReference(path string) {
	if p == nil || p.loader == nil {
		return
	}
	if path == "" {
		p.status("Reference: no file given")
		return
	}
	if !p.begin(model.OpReference) {
		return
	}
	go func() {
		img, err := p.loader.Load(path)
		p.post(compareResult{op: model.OpReference, image: img, path: path, err: err})
	}()
}

// ReferenceChanged reloads the reference after it changed on disk. Safe to
// call from any goroutine.
func (p *ComparePresenter) ReferenceChanged(path string) {
	if p == nil || p.loader == nil {
		return
	}
	p.loader.Forget(path)
	img, err := p.loader.Load(path)
	p.post(compareResult{op: model.OpReference, image: img, path: path, err: err, reloaded: true})
}

// SetMode switches the blend kind.
func (p *ComparePresenter) SetMode(kind diff.BlendKind) {
	if p == nil || !p.model.SetMode(kind) {
		return
	}
	if p.view != nil {
		p.view.SetMode(kind)
	}
	p.pushControls()
}

// SetControls applies the slider value and offsets in one step.
func (p *ComparePresenter) SetControls(value, offsetX, softY, hardY int) {
	if p == nil {
		return
	}
	changed := p.model.SetValue(value)
	changed = p.model.SetOffsetX(offsetX) || changed
	changed = p.model.SetSoftOffsetY(softY) || changed
	changed = p.model.SetHardOffsetY(hardY) || changed
	if changed {
		p.pushControls()
	}
}

// SaveResult writes the latest composite, plus a crop per finder.
func (p *ComparePresenter) SaveResult() {
	if p == nil || p.output == nil || p.pipeline == nil {
		return
	}
	latest := p.pipeline.Latest()
	if latest.Empty() {
		p.status("Save result: nothing to save")
		return
	}
	if !p.begin(model.OpSaveResult) {
		return
	}
	// The pipeline recycles its buffers; save a private copy.
	img := latest.Clone().Image
	var rects []image.Rectangle
	if p.viewport != nil {
		rects = p.viewport.FinderRects()
	}
	go func() {
		ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
		defer cancel()
		res := compareResult{op: model.OpSaveResult}
		res.path, res.err = p.output.SavePNG(ctx, outputSubdir, "result", img)
		if res.err == nil {
			for i, r := range rects {
				crop, err := images.Crop(img, r)
				if err != nil {
					continue
				}
				if _, err := p.output.SavePNG(ctx, outputSubdir, fmt.Sprintf("finder%d", i+1), crop); err != nil {
					res.err = err
					break
				}
				res.extra++
			}
		}
		p.post(res)
	}()
}

// SaveViewport writes the viewport as currently displayed.
func (p *ComparePresenter) SaveViewport() {
	if p == nil || p.output == nil || p.viewport == nil {
		return
	}
	if !p.begin(model.OpSaveViewport) {
		return
	}
	img := p.viewport.Snapshot()
	go func() {
		ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
		defer cancel()
		res := compareResult{op: model.OpSaveViewport}
		res.path, res.err = p.output.SavePNG(ctx, outputSubdir, "viewport", img)
		p.post(res)
	}()
}

// Tick applies completed background work.
func (p *ComparePresenter) Tick() {
	if p == nil {
		return
	}
	for {
		select {
		case res := <-p.resultCh:
			p.handle(res)
		default:
			return
		}
	}
}

func (p *ComparePresenter) handle(res compareResult) {
	if !res.reloaded {
		p.busy.End(res.op, p.now())
		if p.view != nil {
			p.view.SetBusy(res.op, false)
		}
	}
	switch res.op {
	case model.OpRefresh:
		p.deviceList = res.devices
		if len(p.deviceList) == 0 {
			p.deviceList = []capture.Device{capture.NoDevice}
		}
		p.selected = 0
		if p.view != nil {
			p.view.SetDevices(deviceNames(p.deviceList), 0)
		}
		p.SelectDevice(0)
		if p.Selected().Valid() {
			p.status(fmt.Sprintf("%d device(s)", len(p.deviceList)))
		} else {
			p.status(capture.NoDevice.Name)
		}
	case model.OpScreenshot:
		if p.view != nil {
			p.view.SetCaptureEnabled(p.Selected().Valid())
		}
		if res.err != nil {
			p.fail("screenshot failed", res.err)
			if !errors.Is(res.err, context.Canceled) {
				p.RefreshDevices()
			}
			return
		}
		p.model.SetDensity(res.device.Density)
		img := res.image
		p.update(func(rc diff.RenderConfig) diff.RenderConfig {
			rc.Screenshot = img
			return rc
		})
		p.pushLabels()
		p.status("Screenshot: " + filepath.Base(res.path))
	case model.OpReference:
		if res.err != nil {
			p.fail("reference load failed", res.err)
			return
		}
		p.model.SetReference(res.path)
		img := res.image
		p.update(func(rc diff.RenderConfig) diff.RenderConfig {
			rc.Reference = img
			return rc
		})
		if p.view != nil {
			p.view.SetReferencePath(res.path)
		}
		if res.reloaded {
			p.status("Reference reloaded: " + filepath.Base(res.path))
			return
		}
		p.status("Reference: " + filepath.Base(res.path))
		if p.OnReference != nil {
			p.OnReference(res.path)
		}
	case model.OpSaveResult, model.OpSaveViewport:
		if res.err != nil {
			p.fail("save failed", res.err)
			return
		}
		msg := "Saved " + filepath.Base(res.path)
		if res.extra > 0 {
			msg += fmt.Sprintf(" and %d finder crop(s)", res.extra)
		}
		p.status(msg)
	}
}

func (p *ComparePresenter) begin(op string) bool {
	if !p.busy.Begin(op, p.now()) {
		return false
	}
	if p.view != nil {
		p.view.SetBusy(op, true)
	}
	return true
}

func (p *ComparePresenter) post(res compareResult) {
	select {
	case p.resultCh <- res:
	case <-p.ctx.Done():
	}
}

func (p *ComparePresenter) pushControls() {
	p.update(p.model.Apply)
	p.pushLabels()
}

func (p *ComparePresenter) pushLabels() {
	if p.view == nil {
		return
	}
	p.view.SetOffsetLabels(p.model.OffsetXLabel(), p.model.SoftOffsetYLabel(), p.model.HardOffsetYLabel(), p.model.TotalOffsetYLabel())
}

// update applies fn and re-applies the controls so density changes are seen.
func (p *ComparePresenter) update(fn func(diff.RenderConfig) diff.RenderConfig) {
	if p.pipeline == nil {
		return
	}
	p.pipeline.Update(func(rc diff.RenderConfig) diff.RenderConfig {
		return p.model.Apply(fn(rc))
	})
}

func (p *ComparePresenter) status(text string) {
	if p.view != nil {
		p.view.SetStatus(text)
	}
}

func (p *ComparePresenter) fail(msg string, err error) {
	if p.logger != nil {
		p.logger.Error(msg, "error", err)
	}
	p.status(fmt.Sprintf("%s: %v", msg, err))
}

func deviceNames(devs []capture.Device) []string {
	names := make([]string, len(devs))
	for i, d := range devs {
		names[i] = d.String()
	}
	return names
}
