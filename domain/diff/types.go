package diff

import (
	"image"
	"time"
)

// RenderConfig is an immutable snapshot of everything a composite depends on.
// Replace it wholesale through Pipeline.Update; never mutate a published one.
type RenderConfig struct {
	Reference  *image.RGBA
	Screenshot *image.RGBA
	Operator   *BlendOperator
	OffsetX    int
	OffsetY    int
	// PixelDensityScale converts pixels to density-independent units; 0 when unknown.
	PixelDensityScale float64
}

// Result is a published composite with its provenance.
//
// Image belongs to the pipeline: it stays intact until the second publish
// after this one, when the buffer may be recomposed in place. Callers that
// keep a result longer than that use Clone.
type Result struct {
	Image      *image.RGBA
	Config     *RenderConfig
	Sequence   uint64
	ComposedAt time.Time
	Duration   time.Duration
	Similarity *SimilarityScore
	owned      bool
}

// Clone returns a copy of r whose Image is private to the caller.
func (r Result) Clone() Result {
	if r.Image == nil {
		return r
	}
	img := &image.RGBA{Pix: make([]uint8, len(r.Image.Pix)), Stride: r.Image.Stride, Rect: r.Image.Rect}
	copy(img.Pix, r.Image.Pix)
	r.Image = img
	r.owned = false
	return r
}

// Empty reports whether the result carries no image.
func (r Result) Empty() bool { return r.Image == nil }

// PipelineStats summarises render worker behaviour for instrumentation.
type PipelineStats struct {
	Compositions uint64
	Coalesced    uint64
	Failures     uint64
	AvgCompose   time.Duration
	LastCompose  time.Time
	Sequence     uint64
	PoolIdle     int
	PoolHits     uint64
	PoolMisses   uint64
}
