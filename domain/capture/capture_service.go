package capture

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// CaptureService enumerates devices across sources and writes screenshots
// to disk. Use NewCaptureService to construct an instance.
type CaptureService interface {
	// Devices lists every reachable device, or NoDevice alone when none are.
	Devices(ctx context.Context) []Device
	// Acquire writes a PNG screenshot of dev to path. The file is removed on failure.
	Acquire(ctx context.Context, dev Device, path string) error
	// ResetCaches drops cached tool locations so the next call re-resolves them.
	ResetCaches()
	Stats() CaptureStats
}

type captureService struct {
	logger       *slog.Logger
	sources      map[string]Source
	order        []string
	captures     atomic.Uint64
	failures     atomic.Uint64
	captureNanos atomic.Uint64
	mu           sync.Mutex
	lastCapture  time.Time
	lastDevice   string
}

// NewCaptureService aggregates sources. Sources are queried in the order given.
func NewCaptureService(logger *slog.Logger, sources ...Source) CaptureService {
	s := &captureService{logger: logger, sources: make(map[string]Source, len(sources))}
	for _, src := range sources {
		if src == nil {
			continue
		}
		if _, dup := s.sources[src.Name()]; !dup {
			s.order = append(s.order, src.Name())
		}
		s.sources[src.Name()] = src
	}
	return s
}

func (s *captureService) Devices(ctx context.Context) []Device {
	var all []Device
	for _, name := range s.order {
		devs, err := s.sources[name].Devices(ctx)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("capture devices", "source", name, "error", err)
			}
			continue
		}
		all = append(all, devs...)
	}
	if len(all) == 0 {
		return []Device{NoDevice}
	}
	return all
}

func (s *captureService) Acquire(ctx context.Context, dev Device, path string) (err error) {
	if !dev.Valid() {
		return ErrNoDevice
	}
	src, ok := s.sources[dev.Source]
	if !ok {
		return fmt.Errorf("unknown source %q: %w", dev.Source, ErrNoDevice)
	}
	start := time.Now()
	defer func() {
		if err != nil {
			s.failures.Add(1)
			return
		}
		elapsed := time.Since(start)
		s.captureNanos.Add(uint64(elapsed.Nanoseconds()))
		s.captures.Add(1)
		s.mu.Lock()
		s.lastCapture, s.lastDevice = time.Now(), dev.Name
		s.mu.Unlock()
		if s.logger != nil {
			s.logger.Info("capture.screenshot", "device", dev.Name, "path", path, "elapsed", elapsed)
		}
	}()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := src.Screenshot(ctx, dev, f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("screenshot %s: %w", dev.Name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	if fi, statErr := os.Stat(path); statErr == nil && fi.Size() == 0 {
		os.Remove(path)
		return fmt.Errorf("screenshot %s: empty output", dev.Name)
	}
	return nil
}

func (s *captureService) ResetCaches() {
	for _, src := range s.sources {
		if r, ok := src.(CacheResetter); ok {
			r.ResetCache()
		}
	}
}

func (s *captureService) Stats() CaptureStats {
	captures := s.captures.Load()
	var avg time.Duration
	if captures > 0 {
		avg = time.Duration(s.captureNanos.Load() / captures)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return CaptureStats{
		Captures:    captures,
		Failures:    s.failures.Load(),
		AvgCapture:  avg,
		LastCapture: s.lastCapture,
		LastDevice:  s.lastDevice,
	}
}
