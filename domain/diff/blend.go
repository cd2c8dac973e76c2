package diff

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"runtime"
	"sync"
)

// MaxThreshold is the largest meaningful sum-diff threshold (3 * 255).
const MaxThreshold = 765

// BlendKind selects the per-pixel blend rule.
type BlendKind uint8

const (
	BlendOpacity BlendKind = iota
	BlendSumDiff
)

func (k BlendKind) String() string {
	switch k {
	case BlendOpacity:
		return "opacity"
	case BlendSumDiff:
		return "sumdiff"
	default:
		return "unknown"
	}
}

// BlendOperator is a tagged variant: Alpha is read for BlendOpacity,
// Threshold for BlendSumDiff.
type BlendOperator struct {
	Kind      BlendKind
	Alpha     float64
	Threshold int
}

// Opacity returns an opacity overlay operator. alpha is clamped to [0, 1].
func Opacity(alpha float64) BlendOperator {
	if math.IsNaN(alpha) {
		alpha = 0
	}
	return BlendOperator{Kind: BlendOpacity, Alpha: clampFloat(alpha, 0, 1)}
}

// SumDiff returns a difference highlight operator. threshold is clamped to [0, 765].
func SumDiff(threshold int) BlendOperator {
	return BlendOperator{Kind: BlendSumDiff, Threshold: clampInt(threshold, 0, MaxThreshold)}
}

// OperatorFromControl maps a slider position in [0, max] to an operator of the
// given kind.
func OperatorFromControl(kind BlendKind, value, max int) BlendOperator {
	if max <= 0 {
		max = 1
	}
	if kind == BlendSumDiff {
		return SumDiff(value * 3 * 255 / max)
	}
	return Opacity(float64(value) / float64(max))
}

func (op BlendOperator) String() string {
	if op.Kind == BlendSumDiff {
		return fmt.Sprintf("sumdiff(%d)", op.Threshold)
	}
	return fmt.Sprintf("opacity(%.2f)", op.Alpha)
}

// Blend combines one source (screenshot) pixel with one destination
// (reference) pixel.
func (op BlendOperator) Blend(src, dst color.RGBA) color.RGBA {
	if op.Kind == BlendSumDiff {
		return BlendSumDiffPixel(src, dst, op.Threshold)
	}
	return BlendOpacityPixel(src, dst, op.Alpha)
}

// BlendOpacityPixel returns src*alpha + dst*(1-alpha) per channel, alpha included.
func BlendOpacityPixel(src, dst color.RGBA, alpha float64) color.RGBA {
	mix := func(s, d uint8) uint8 {
		v := math.Round(float64(s)*alpha + float64(d)*(1-alpha))
		return uint8(clampFloat(v, 0, 255))
	}
	return color.RGBA{
		R: mix(src.R, dst.R),
		G: mix(src.G, dst.G),
		B: mix(src.B, dst.B),
		A: mix(src.A, dst.A),
	}
}

// BlendSumDiffPixel renders the source at half intensity and flags pixels
// whose channel sums differ by more than threshold: green when the source is
// darker, red otherwise.
func BlendSumDiffPixel(src, dst color.RGBA, threshold int) color.RGBA {
	out := color.RGBA{
		R: halve(src.R),
		G: halve(src.G),
		B: halve(src.B),
		A: 0xff,
	}
	srcSum := int(src.R) + int(src.G) + int(src.B)
	dstSum := int(dst.R) + int(dst.G) + int(dst.B)
	delta := srcSum - dstSum
	if delta < 0 {
		delta = -delta
	}
	if delta > threshold {
		if srcSum < dstSum {
			out.G = 0xff
		} else {
			out.R = 0xff
		}
	}
	return out
}

// BlendInto blends src over dst in place for the overlapping region anchored
// at both origins. Pixels of dst outside that region keep their values.
func BlendInto(dst, src *image.RGBA, op BlendOperator) {
	if dst == nil || src == nil {
		return
	}
	w := min(dst.Rect.Dx(), src.Rect.Dx())
	h := min(dst.Rect.Dy(), src.Rect.Dy())
	if w <= 0 || h <= 0 {
		return
	}
	forEachRowBand(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			di := dst.PixOffset(dst.Rect.Min.X, dst.Rect.Min.Y+y)
			si := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
			for x := 0; x < w; x++ {
				d := dst.Pix[di : di+4 : di+4]
				s := src.Pix[si : si+4 : si+4]
				out := op.Blend(
					color.RGBA{R: s[0], G: s[1], B: s[2], A: s[3]},
					color.RGBA{R: d[0], G: d[1], B: d[2], A: d[3]},
				)
				d[0], d[1], d[2], d[3] = out.R, out.G, out.B, out.A
				di += 4
				si += 4
			}
		}
	})
}

// forEachRowBand splits [0, h) into contiguous bands processed concurrently.
func forEachRowBand(h int, fn func(y0, y1 int)) {
	workers := runtime.GOMAXPROCS(0)
	if workers > h {
		workers = h
	}
	if workers <= 1 {
		fn(0, h)
		return
	}
	band := (h + workers - 1) / workers
	var wg sync.WaitGroup
	for y0 := 0; y0 < h; y0 += band {
		y1 := min(y0+band, h)
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			fn(y0, y1)
		}(y0, y1)
	}
	wg.Wait()
}

func halve(v uint8) uint8 {
	return uint8(float64(v) * 0.5)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
