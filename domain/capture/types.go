package capture

import (
	"context"
	"errors"
	"io"
)

// ErrNoDevice is returned when a screenshot is requested without a usable device.
var ErrNoDevice = errors.New("no device selected")

// Device identifies a screenshot target.
type Device struct {
	ID     string
	Name   string
	Source string
	// Density is the pixels-per-dp factor (physical dpi / 160); 1 when unknown.
	Density float64
}

// NoDevice is the placeholder listed when nothing is connected.
var NoDevice = Device{Name: "No devices", Density: 1}

// Valid reports whether d can be captured.
func (d Device) Valid() bool { return d.ID != "" && d.Source != "" }

func (d Device) String() string { return d.Name }

// Source enumerates devices of one kind and captures PNG screenshots from them.
type Source interface {
	Name() string
	Devices(ctx context.Context) ([]Device, error)
	Screenshot(ctx context.Context, dev Device, w io.Writer) error
}

// CacheResetter is implemented by sources holding resolved tool locations.
type CacheResetter interface{ ResetCache() }
