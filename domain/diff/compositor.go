package diff

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// ErrIncompatibleRaster is returned when an input raster's layout does not
// match its declared bounds.
var ErrIncompatibleRaster = errors.New("incompatible raster")

// Compositor draws the reference and screenshot into a single output raster.
type Compositor struct {
	pool   *BufferPool
	scaler draw.Scaler
}

// NewCompositor constructs a compositor that takes output buffers from pool.
// A nil scaler defaults to nearest neighbour.
func NewCompositor(pool *BufferPool, scaler draw.Scaler) *Compositor {
	if scaler == nil {
		scaler = draw.NearestNeighbor
	}
	return &Compositor{pool: pool, scaler: scaler}
}

// Compose produces the composite of reference and screenshot.
//
// With only one input present that input is returned as is and owned is
// false; the caller must not recycle it. Otherwise the output is sized to the
// screenshot, the reference is scaled to the screenshot width (preserving its
// aspect) and drawn at (offX, offY), and the screenshot is blended over it
// through op. A nil op draws the screenshot opaquely.
func (c *Compositor) Compose(reference, screenshot *image.RGBA, op *BlendOperator, offX, offY int) (out *image.RGBA, owned bool, err error) {
	if err := validateRaster("reference", reference); err != nil {
		return nil, false, err
	}
	if err := validateRaster("screenshot", screenshot); err != nil {
		return nil, false, err
	}
	if screenshot == nil {
		return reference, false, nil
	}
	if reference == nil {
		return screenshot, false, nil
	}

	w, h := screenshot.Rect.Dx(), screenshot.Rect.Dy()
	out = c.pool.Acquire(w, h)
	clear(out.Pix)

	refW, refH := reference.Rect.Dx(), reference.Rect.Dy()
	if refW > 0 && refH > 0 && w > 0 {
		scaledH := int(float64(refH) / float64(refW) * float64(w))
		dr := image.Rect(offX, offY, offX+w, offY+scaledH)
		if w == refW && scaledH == refH {
			draw.Draw(out, dr, reference, reference.Rect.Min, draw.Over)
		} else {
			c.scaler.Scale(out, dr, reference, reference.Rect, draw.Over, nil)
		}
	}

	blend := Opacity(1)
	if op != nil {
		blend = *op
	}
	BlendInto(out, screenshot, blend)
	return out, true, nil
}

// Recycle hands a buffer previously returned with owned == true back to the pool.
func (c *Compositor) Recycle(img *image.RGBA) {
	c.pool.Release(img)
}

func validateRaster(name string, img *image.RGBA) error {
	if img == nil || img.Rect.Empty() {
		return nil
	}
	if img.Stride < 4*img.Rect.Dx() {
		return fmt.Errorf("%s: stride %d below row width %d: %w", name, img.Stride, 4*img.Rect.Dx(), ErrIncompatibleRaster)
	}
	need := img.PixOffset(img.Rect.Max.X-1, img.Rect.Max.Y-1) + 4
	if img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y) < 0 || len(img.Pix) < need {
		return fmt.Errorf("%s: %d bytes for %v: %w", name, len(img.Pix), img.Rect, ErrIncompatibleRaster)
	}
	return nil
}
