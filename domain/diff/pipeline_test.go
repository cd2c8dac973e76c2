package diff

import (
	"image"
	"image/color"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p := NewPipeline(discardLogger(), NewCompositor(NewBufferPool(4), nil))
	p.Start()
	t.Cleanup(p.Stop)
	return p
}

func waitForConfig(t *testing.T, p *Pipeline, want func(*RenderConfig) bool) Result {
	t.Helper()
	var got Result
	require.Eventually(t, func() bool {
		got = p.Latest()
		return got.Config != nil && want(got.Config)
	}, 2*time.Second, 5*time.Millisecond)
	return got
}

func TestPipelinePublishesComposite(t *testing.T) {
	p := startPipeline(t)
	published := make(chan Result, 8)
	p.OnPublish(func(r Result) { published <- r })

	op := Opacity(1)
	p.Set(RenderConfig{
		Reference:  filled(8, 8, color.RGBA{R: 255, A: 255}),
		Screenshot: filled(8, 8, color.RGBA{B: 255, A: 255}),
		Operator:   &op,
	})

	res := waitForConfig(t, p, func(c *RenderConfig) bool { return c.Screenshot != nil })
	require.NotNil(t, res.Image)
	assert.Equal(t, color.RGBA{B: 255, A: 255}, res.Image.RGBAAt(4, 4))
	require.NotNil(t, res.Similarity)
	assert.Zero(t, p.Stats().Failures)

	select {
	case r := <-published:
		assert.NotZero(t, r.Sequence)
	case <-time.After(2 * time.Second):
		t.Fatal("no publish notification")
	}
}

func TestPipelineLastWriterWins(t *testing.T) {
	p := startPipeline(t)
	ref := filled(16, 16, color.RGBA{R: 255, A: 255})
	scr := filled(16, 16, color.RGBA{G: 255, A: 255})
	op := Opacity(0.5)

	for i := 0; i < 50; i++ {
		p.Update(func(c RenderConfig) RenderConfig {
			c.Reference, c.Screenshot, c.Operator = ref, scr, &op
			c.OffsetX = i
			return c
		})
	}

	res := waitForConfig(t, p, func(c *RenderConfig) bool { return c.OffsetX == 49 })
	assert.Same(t, p.config.Load(), res.Config)
	// Offset 49 pushes the reference out of frame, leaving the screenshot at half weight over nothing.
	assert.Equal(t, color.RGBA{G: 128, A: 128}, res.Image.RGBAAt(0, 0))
}

func TestPipelineUpdateIsAtomic(t *testing.T) {
	p := NewPipeline(discardLogger(), nil)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Update(func(c RenderConfig) RenderConfig {
				c.OffsetY++
				return c
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, p.Config().OffsetY)
}

func TestPipelineFailureKeepsPreviousResult(t *testing.T) {
	p := startPipeline(t)
	good := filled(4, 4, color.RGBA{R: 9, A: 255})
	p.Set(RenderConfig{Reference: good})
	first := waitForConfig(t, p, func(c *RenderConfig) bool { return c.Reference == good })
	require.Same(t, good, first.Image)

	bad := &image.RGBA{Pix: make([]byte, 4), Stride: 4, Rect: image.Rect(0, 0, 4, 4)}
	p.Set(RenderConfig{Reference: good, Screenshot: bad})

	require.Eventually(t, func() bool { return p.Stats().Failures == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Same(t, good, p.Latest().Image)
	assert.Equal(t, first.Sequence, p.Latest().Sequence)
}

func TestPipelineStartStopIdempotent(t *testing.T) {
	p := NewPipeline(discardLogger(), nil)
	p.Stop()
	p.Start()
	p.Start()
	assert.True(t, p.Running())
	p.Stop()
	p.Stop()
	assert.False(t, p.Running())
}

func TestPipelineClonedResultSurvivesRecycling(t *testing.T) {
	p := startPipeline(t)
	op := Opacity(1)
	green := color.RGBA{G: 200, A: 255}
	p.Set(RenderConfig{
		Reference:  filled(8, 8, color.RGBA{R: 255, A: 255}),
		Screenshot: filled(8, 8, green),
		Operator:   &op,
	})
	held := waitForConfig(t, p, func(c *RenderConfig) bool { return c.Screenshot != nil })
	kept := held.Clone()
	require.NotSame(t, held.Image, kept.Image)
	assert.Equal(t, held.Sequence, kept.Sequence)

	for i := 1; i <= 6; i++ {
		shot := filled(8, 8, color.RGBA{R: uint8(40 * i), G: 100, A: 255})
		p.Update(func(rc RenderConfig) RenderConfig {
			rc.Screenshot = shot
			rc.OffsetX = i
			return rc
		})
		waitForConfig(t, p, func(c *RenderConfig) bool { return c.OffsetX == i })
	}
	assert.Equal(t, green, kept.Image.RGBAAt(4, 4))
	assert.Equal(t, Result{}, Result{}.Clone())
}
