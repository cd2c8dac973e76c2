package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestCrop_ClampsToFrame(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 20, 20))
	frame.SetRGBA(18, 18, color.RGBA{R: 255, A: 255})
	out, err := Crop(frame, image.Rect(25, 25, 15, 15))
	if err != nil {
		t.Fatalf("crop: %v", err)
	}
	if out.Rect != image.Rect(0, 0, 5, 5) {
		t.Fatalf("expected 5x5 zero-origin crop, got %v", out.Rect)
	}
	if got := out.RGBAAt(3, 3); got.R != 255 {
		t.Fatalf("pixel not copied: %v", got)
	}
}

func TestCrop_OutsideFrame(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 10, 10))
	if _, err := Crop(frame, image.Rect(20, 20, 30, 30)); err == nil {
		t.Fatalf("expected error for crop outside frame")
	}
	if _, err := Crop(nil, image.Rect(0, 0, 1, 1)); err == nil {
		t.Fatalf("expected error for nil frame")
	}
}

func TestScaleToFit(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 200))
	out := ScaleToFit(src, 100, 100)
	if b := out.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Fatalf("expected 100x50, got %v", b)
	}
	small := image.NewRGBA(image.Rect(0, 0, 10, 10))
	if ScaleToFit(small, 100, 100) != image.Image(small) {
		t.Fatalf("image that fits should be returned as is")
	}
}

func TestEncodePNG(t *testing.T) {
	data := EncodePNG(image.NewRGBA(image.Rect(0, 0, 3, 1)))
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil || img.Bounds().Dx() != 3 {
		t.Fatalf("round trip failed: %v", err)
	}
	if EncodePNG(nil) != nil {
		t.Fatalf("nil image should encode to nil")
	}
}
