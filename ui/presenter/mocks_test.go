package presenter

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/soocke/pixel-diff-go/domain/capture"
	"github.com/soocke/pixel-diff-go/domain/diff"
)

// mockDevices implements DeviceService.
type mockDevices struct {
	mu         sync.Mutex
	list       []capture.Device
	acquireErr error
	resets     int
	acquired   []string
}

var _ DeviceService = (*mockDevices)(nil)

func (d *mockDevices) Devices(context.Context) []capture.Device {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.list) == 0 {
		return []capture.Device{capture.NoDevice}
	}
	return append([]capture.Device(nil), d.list...)
}

func (d *mockDevices) Acquire(_ context.Context, _ capture.Device, path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.acquired = append(d.acquired, path)
	return d.acquireErr
}

func (d *mockDevices) ResetCaches() {
	d.mu.Lock()
	d.resets++
	d.mu.Unlock()
}

func (d *mockDevices) resetCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resets
}

// mockLoader returns a fresh 4x4 image per path unless an error is configured.
type mockLoader struct {
	mu     sync.Mutex
	errs   map[string]error
	loaded map[string]*image.RGBA
	forgot []string
}

func newMockLoader() *mockLoader {
	return &mockLoader{errs: map[string]error{}, loaded: map[string]*image.RGBA{}}
}

func (l *mockLoader) Load(path string) (*image.RGBA, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.errs[path]; err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	l.loaded[path] = img
	return img, nil
}

func (l *mockLoader) Forget(path string) {
	l.mu.Lock()
	l.forgot = append(l.forgot, path)
	l.mu.Unlock()
}

func (l *mockLoader) loadedImage(path string) *image.RGBA {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded[path]
}

// mockOutput hands out predictable paths and records saved images by tag.
type mockOutput struct {
	mu    sync.Mutex
	n     int
	saved map[string]image.Image
	err   error
}

func newMockOutput() *mockOutput { return &mockOutput{saved: map[string]image.Image{}} }

func (o *mockOutput) Create(_ context.Context, subdir, ext, tag string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return "", o.err
	}
	o.n++
	return filepath.Join("out", subdir, fmt.Sprintf("%s-%d.%s", tag, o.n, ext)), nil
}

func (o *mockOutput) SavePNG(ctx context.Context, subdir, tag string, img image.Image) (string, error) {
	if img == nil {
		return "", errors.New("no image to save")
	}
	path, err := o.Create(ctx, subdir, "png", tag)
	if err != nil {
		return "", err
	}
	o.mu.Lock()
	o.saved[tag] = img
	o.mu.Unlock()
	return path, nil
}

func (o *mockOutput) get(tag string) image.Image {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.saved[tag]
}

// mockPipeline applies updates synchronously and serves a settable result.
type mockPipeline struct {
	cfg     diff.RenderConfig
	latest  diff.Result
	stats   diff.PipelineStats
	updates int
}

func (p *mockPipeline) Update(fn func(diff.RenderConfig) diff.RenderConfig) diff.RenderConfig {
	p.cfg = fn(p.cfg)
	p.updates++
	return p.cfg
}

func (p *mockPipeline) Latest() diff.Result       { return p.latest }
func (p *mockPipeline) Stats() diff.PipelineStats { return p.stats }

// mockCompareView records the last value pushed to each widget.
type mockCompareView struct {
	devices        []string
	selected       int
	captureEnabled bool
	busy           map[string]bool
	status         string
	mode           diff.BlendKind
	labels         [4]string
	reference      string
}

var _ CompareView = (*mockCompareView)(nil)

func newMockCompareView() *mockCompareView { return &mockCompareView{busy: map[string]bool{}} }

func (v *mockCompareView) SetDevices(names []string, selected int) {
	v.devices, v.selected = names, selected
}
func (v *mockCompareView) SetCaptureEnabled(b bool)          { v.captureEnabled = b }
func (v *mockCompareView) SetBusy(op string, b bool)         { v.busy[op] = b }
func (v *mockCompareView) SetStatus(text string)             { v.status = text }
func (v *mockCompareView) SetMode(k diff.BlendKind)          { v.mode = k }
func (v *mockCompareView) SetReferencePath(path string)      { v.reference = path }
func (v *mockCompareView) SetOffsetLabels(x, s, h, t string) { v.labels = [4]string{x, s, h, t} }

// mockViewport implements ViewportSource.
type mockViewport struct {
	rects []image.Rectangle
	snaps int
}

func (v *mockViewport) Snapshot() *image.RGBA {
	v.snaps++
	return image.NewRGBA(image.Rect(0, 0, 10, 10))
}

func (v *mockViewport) FinderRects() []image.Rectangle { return v.rects }

// tickUntil drives Tick on the test goroutine until cond holds.
func tickUntil(t *testing.T, tick func(), cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		tick()
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}
