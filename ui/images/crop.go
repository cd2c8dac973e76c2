package images

import (
	"errors"
	"image"

	"golang.org/x/image/draw"
)

// Crop copies the part of frame covered by r into a new zero-origin RGBA.
// r is clamped to the frame; an empty intersection is an error.
func Crop(frame *image.RGBA, r image.Rectangle) (*image.RGBA, error) {
	if frame == nil {
		return nil, errors.New("nil frame")
	}
	r = r.Canon().Intersect(frame.Rect)
	if r.Empty() {
		return nil, errors.New("crop outside frame")
	}
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Rect, frame, r.Min, draw.Src)
	return out, nil
}
