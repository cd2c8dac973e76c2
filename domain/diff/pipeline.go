package diff

import (
	"image"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

const pipelineStatsLogInterval = 5 * time.Second

// Pipeline recomposes the diff whenever its RenderConfig is replaced and
// publishes the newest result atomically. A single worker goroutine does
// all decoding-free pixel work; readers never block on it.
type Pipeline struct {
	logger *slog.Logger
	comp   *Compositor

	config atomic.Pointer[RenderConfig]
	latest atomic.Pointer[Result]

	running atomic.Bool
	wake    chan struct{}
	stop    chan struct{}
	done    chan struct{}

	mu        sync.Mutex
	listeners []func(Result)

	compositions atomic.Uint64
	coalesced    atomic.Uint64
	failures     atomic.Uint64
	composeNanos atomic.Uint64
	sequence     atomic.Uint64

	// worker-owned
	retired  *image.RGBA
	simRef   *image.RGBA
	simShot  *image.RGBA
	simScore *SimilarityScore
}

// NewPipeline constructs a stopped pipeline. Call Start to run the worker.
func NewPipeline(logger *slog.Logger, comp *Compositor) *Pipeline {
	if comp == nil {
		comp = NewCompositor(NewBufferPool(4), nil)
	}
	p := &Pipeline{logger: logger, comp: comp, wake: make(chan struct{}, 1)}
	p.config.Store(&RenderConfig{})
	return p
}

// Start launches the render worker. It is a no-op when already running.
func (p *Pipeline) Start() {
	if !p.running.CompareAndSwap(false, true) {
		return
	}
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go func() {
		defer func() {
			if r := recover(); r != nil && p.logger != nil {
				p.logger.Error("pipeline panic", "error", r, "stack", string(debug.Stack()))
			}
		}()
		p.loop(p.stop, p.done)
	}()
	p.signal()
}

// Stop terminates the worker and waits for the in-flight composition.
func (p *Pipeline) Stop() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.stop)
	<-p.done
}

// Running reports whether the worker is active.
func (p *Pipeline) Running() bool { return p.running.Load() }

// Config returns the most recently published configuration.
func (p *Pipeline) Config() RenderConfig { return *p.config.Load() }

// Update derives a new configuration from the current one and publishes it.
// fn may run more than once under contention and must be free of side effects.
func (p *Pipeline) Update(fn func(RenderConfig) RenderConfig) RenderConfig {
	for {
		old := p.config.Load()
		next := fn(*old)
		if p.config.CompareAndSwap(old, &next) {
			p.signal()
			return next
		}
	}
}

// Set publishes cfg as the new configuration.
func (p *Pipeline) Set(cfg RenderConfig) {
	p.config.Store(&cfg)
	p.signal()
}

// Latest returns the newest published result, or a zero Result. Its Image
// is valid until the second subsequent publish; see Result.
func (p *Pipeline) Latest() Result {
	r := p.latest.Load()
	if r == nil {
		return Result{}
	}
	return *r
}

// OnPublish registers fn to be called from the worker after each publish.
func (p *Pipeline) OnPublish(fn func(Result)) {
	if fn == nil {
		return
	}
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}

// Stats returns a point-in-time summary of the worker.
func (p *Pipeline) Stats() PipelineStats {
	n := p.compositions.Load()
	var avg time.Duration
	if n > 0 {
		avg = time.Duration(p.composeNanos.Load() / n)
	}
	latest := p.Latest()
	hits, misses := p.comp.pool.Counters()
	return PipelineStats{
		Compositions: n,
		Coalesced:    p.coalesced.Load(),
		Failures:     p.failures.Load(),
		AvgCompose:   avg,
		LastCompose:  latest.ComposedAt,
		Sequence:     latest.Sequence,
		PoolIdle:     p.comp.pool.Len(),
		PoolHits:     hits,
		PoolMisses:   misses,
	}
}

func (p *Pipeline) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
		p.coalesced.Add(1)
	}
}

func (p *Pipeline) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	logTicker := time.NewTicker(pipelineStatsLogInterval)
	defer logTicker.Stop()
	var last *RenderConfig
	for {
		select {
		case <-stop:
			return
		case <-logTicker.C:
			p.logStats()
		case <-p.wake:
			cfg := p.config.Load()
			if cfg == last {
				continue
			}
			last = cfg
			p.render(cfg)
		}
	}
}

func (p *Pipeline) render(cfg *RenderConfig) {
	start := time.Now()
	out, owned, err := p.comp.Compose(cfg.Reference, cfg.Screenshot, cfg.Operator, cfg.OffsetX, cfg.OffsetY)
	if err != nil {
		p.failures.Add(1)
		if p.logger != nil {
			p.logger.Error("pipeline compose", "error", err)
		}
		return
	}
	elapsed := time.Since(start)
	p.composeNanos.Add(uint64(elapsed.Nanoseconds()))
	p.compositions.Add(1)

	res := &Result{
		Image:      out,
		Config:     cfg,
		Sequence:   p.sequence.Add(1),
		ComposedAt: time.Now(),
		Duration:   elapsed,
		Similarity: p.similarity(cfg),
		owned:      owned,
	}
	prev := p.latest.Swap(res)

	// Buffers go back to the pool one generation late so a reader still
	// holding the previous result never sees it overwritten.
	if p.retired != nil {
		p.comp.Recycle(p.retired)
		p.retired = nil
	}
	if prev != nil && prev.owned && prev.Image != out {
		p.retired = prev.Image
	}

	p.mu.Lock()
	listeners := append([]func(Result){}, p.listeners...)
	p.mu.Unlock()
	for _, l := range listeners {
		l(*res)
	}
}

func (p *Pipeline) similarity(cfg *RenderConfig) *SimilarityScore {
	if cfg.Reference == nil || cfg.Screenshot == nil {
		return nil
	}
	if cfg.Reference == p.simRef && cfg.Screenshot == p.simShot {
		return p.simScore
	}
	p.simRef, p.simShot, p.simScore = cfg.Reference, cfg.Screenshot, nil
	score, err := Similarity(cfg.Reference, cfg.Screenshot)
	if err != nil {
		if p.logger != nil {
			p.logger.Warn("pipeline similarity", "error", err)
		}
		return nil
	}
	p.simScore = &score
	return p.simScore
}

func (p *Pipeline) logStats() {
	if p.logger == nil {
		return
	}
	stats := p.Stats()
	p.logger.Debug("pipeline.stats",
		"compositions", stats.Compositions,
		"coalesced", stats.Coalesced,
		"failures", stats.Failures,
		"avg_compose", stats.AvgCompose,
		"pool_idle", stats.PoolIdle,
		"pool_hits", stats.PoolHits,
	)
}
