package diff

import (
	"image"
	"sync"
)

// BufferPool is a bounded free list of RGBA buffers keyed by exact size.
// Composite results are large and produced on every control change; reusing
// them keeps the steady-state heap flat while the user drags a slider.
//
// Acquire returns a buffer whose contents are unspecified. Callers that
// need a blank canvas must clear it. A buffer handed to Release must no
// longer be accessed by the caller.
type BufferPool struct {
	mu       sync.Mutex
	capacity int
	free     []*image.RGBA // oldest first
	hits     uint64
	misses   uint64
}

// NewBufferPool constructs a pool retaining at most capacity idle buffers.
func NewBufferPool(capacity int) *BufferPool {
	if capacity < 0 {
		capacity = 0
	}
	return &BufferPool{capacity: capacity}
}

// Acquire returns an idle buffer of exactly w x h or allocates a new one.
func (p *BufferPool) Acquire(w, h int) *image.RGBA {
	if w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	}
	if p != nil {
		p.mu.Lock()
		for i := len(p.free) - 1; i >= 0; i-- {
			img := p.free[i]
			if img.Rect.Dx() == w && img.Rect.Dy() == h {
				p.free = append(p.free[:i], p.free[i+1:]...)
				p.hits++
				p.mu.Unlock()
				return img
			}
		}
		p.misses++
		p.mu.Unlock()
	}
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

// Release returns img to the pool. When the pool is full the oldest idle
// buffer is dropped.
func (p *BufferPool) Release(img *image.RGBA) {
	if p == nil || img == nil || img.Pix == nil || p.capacity == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, f := range p.free {
		if f == img {
			return
		}
	}
	if len(p.free) >= p.capacity {
		p.free[0] = nil
		p.free = p.free[1:]
	}
	p.free = append(p.free, img)
}

// Len reports the number of idle buffers.
func (p *BufferPool) Len() int {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// Counters reports how many Acquire calls were served from the pool and how
// many allocated.
func (p *BufferPool) Counters() (hits, misses uint64) {
	if p == nil {
		return 0, 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits, p.misses
}
