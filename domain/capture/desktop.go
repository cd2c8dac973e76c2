package capture

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/vova616/screenshot"
)

const (
	desktopSourceName = "desktop"
	desktopDeviceID   = "screen"
)

// DesktopSource captures the local primary screen.
type DesktopSource struct{}

func (DesktopSource) Name() string { return desktopSourceName }

// Devices reports the primary screen when one can be queried.
func (DesktopSource) Devices(ctx context.Context) ([]Device, error) {
	rect, err := screenshot.ScreenRect()
	if err != nil {
		return nil, fmt.Errorf("screen rect: %w", err)
	}
	return []Device{{
		ID:      desktopDeviceID,
		Name:    fmt.Sprintf("Desktop %dx%d", rect.Dx(), rect.Dy()),
		Source:  desktopSourceName,
		Density: 1,
	}}, nil
}

// Screenshot writes a PNG of the current screen into w.
func (DesktopSource) Screenshot(ctx context.Context, dev Device, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	img, err := grab()
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// grab returns a screen capture of the current active monitor.
func grab() (*image.RGBA, error) {
	img, err := screenshot.CaptureScreen()
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	return img, nil
}
