//go:build unix

package debug

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// processRSS returns the peak resident set size reported by getrusage.
func processRSS() (uint64, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, err
	}
	rss := uint64(ru.Maxrss)
	// Darwin reports bytes, the others kilobytes.
	if runtime.GOOS != "darwin" && runtime.GOOS != "ios" {
		rss *= 1024
	}
	return rss, nil
}
