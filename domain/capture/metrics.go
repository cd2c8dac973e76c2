package capture

import "time"

// CaptureStats summarises screenshot acquisition for instrumentation.
type CaptureStats struct {
	Captures    uint64
	Failures    uint64
	AvgCapture  time.Duration
	LastCapture time.Time
	LastDevice  string
}
