package diff

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func filled(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestBlendOpacityEndpoints(t *testing.T) {
	src := color.RGBA{R: 200, G: 10, B: 30, A: 255}
	dst := color.RGBA{R: 1, G: 2, B: 3, A: 128}

	assert.Equal(t, dst, Opacity(0).Blend(src, dst))
	assert.Equal(t, src, Opacity(1).Blend(src, dst))
}

func TestBlendOpacityHalf(t *testing.T) {
	src := color.RGBA{R: 200, G: 100, B: 0, A: 255}
	dst := color.RGBA{R: 100, G: 100, B: 100, A: 255}

	assert.Equal(t, color.RGBA{R: 150, G: 100, B: 50, A: 255}, Opacity(0.5).Blend(src, dst))
}

func TestOpacityClampsAlpha(t *testing.T) {
	assert.Equal(t, 1.0, Opacity(3).Alpha)
	assert.Equal(t, 0.0, Opacity(-1).Alpha)
}

func TestBlendSumDiff(t *testing.T) {
	cases := []struct {
		name      string
		src, dst  color.RGBA
		threshold int
		want      color.RGBA
	}{
		{
			name: "darker source flags green",
			src:  color.RGBA{A: 255}, dst: color.RGBA{R: 255, G: 255, B: 255, A: 255},
			threshold: 0,
			want:      color.RGBA{R: 0, G: 255, B: 0, A: 255},
		},
		{
			name: "brighter source flags red",
			src:  color.RGBA{R: 200, G: 200, B: 200, A: 255}, dst: color.RGBA{A: 255},
			threshold: 100,
			want:      color.RGBA{R: 255, G: 100, B: 100, A: 255},
		},
		{
			name: "within threshold halves only",
			src:  color.RGBA{R: 101, G: 51, B: 11, A: 10}, dst: color.RGBA{R: 100, G: 50, B: 10, A: 255},
			threshold: 3,
			want:      color.RGBA{R: 50, G: 25, B: 5, A: 255},
		},
		{
			name: "equal to threshold is not flagged",
			src:  color.RGBA{R: 30, A: 255}, dst: color.RGBA{A: 255},
			threshold: 30,
			want:      color.RGBA{R: 15, A: 255},
		},
		{
			name: "max threshold never flags",
			src:  color.RGBA{R: 255, G: 255, B: 255, A: 255}, dst: color.RGBA{},
			threshold: MaxThreshold,
			want:      color.RGBA{R: 127, G: 127, B: 127, A: 255},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SumDiff(tc.threshold).Blend(tc.src, tc.dst))
		})
	}
}

func TestOperatorFromControl(t *testing.T) {
	assert.Equal(t, Opacity(0.5), OperatorFromControl(BlendOpacity, 10, 20))
	assert.Equal(t, Opacity(1), OperatorFromControl(BlendOpacity, 25, 20))
	assert.Equal(t, SumDiff(765), OperatorFromControl(BlendSumDiff, 20, 20))
	assert.Equal(t, SumDiff(38), OperatorFromControl(BlendSumDiff, 1, 20))
	assert.Equal(t, SumDiff(0), OperatorFromControl(BlendSumDiff, 0, 20))
}

func TestBlendIntoOnlyTouchesOverlap(t *testing.T) {
	dst := filled(4, 3, color.RGBA{B: 255, A: 255})
	src := filled(2, 5, color.RGBA{R: 255, A: 255})

	BlendInto(dst, src, Opacity(1))

	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			if x < 2 {
				assert.Equal(t, color.RGBA{R: 255, A: 255}, dst.RGBAAt(x, y), "x=%d y=%d", x, y)
			} else {
				assert.Equal(t, color.RGBA{B: 255, A: 255}, dst.RGBAAt(x, y), "x=%d y=%d", x, y)
			}
		}
	}
}

func TestBlendIntoManyRows(t *testing.T) {
	dst := filled(3, 257, color.RGBA{A: 255})
	src := filled(3, 257, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	BlendInto(dst, src, SumDiff(0))

	for y := 0; y < 257; y++ {
		assert.Equal(t, color.RGBA{R: 255, G: 127, B: 127, A: 255}, dst.RGBAAt(2, y))
	}
}
