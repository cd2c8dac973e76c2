package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/soocke/pixel-diff-go/domain/command"
)

const (
	adbSourceName   = "adb"
	baselineDensity = 160.0
)

// AdbSource lists Android devices and captures their screens through adb.
type AdbSource struct {
	logger     *slog.Logger
	run        command.Runner
	projectDir string
	override   string

	mu       sync.Mutex
	resolved string
}

// NewAdbSource constructs an adb source. adbPath, when set, bypasses SDK
// discovery; otherwise adb is located via projectDir/local.properties and
// falls back to the one on PATH.
func NewAdbSource(logger *slog.Logger, run command.Runner, projectDir, adbPath string) *AdbSource {
	if run == nil {
		run = command.Exec{}
	}
	return &AdbSource{logger: logger, run: run, projectDir: projectDir, override: adbPath}
}

func (a *AdbSource) Name() string { return adbSourceName }

// ResetCache forgets the resolved adb location.
func (a *AdbSource) ResetCache() {
	a.mu.Lock()
	a.resolved = ""
	a.mu.Unlock()
}

func (a *AdbSource) adb() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.override != "" {
		return a.override
	}
	if a.resolved != "" {
		return a.resolved
	}
	sdk, err := readSDKDir(filepath.Join(a.projectDir, "local.properties"))
	if err == nil {
		bin := "adb"
		if runtime.GOOS == "windows" {
			bin = "adb.exe"
		}
		p := filepath.Join(sdk, "platform-tools", bin)
		if _, statErr := os.Stat(p); statErr == nil {
			a.resolved = p
			return p
		}
		err = fmt.Errorf("sdk found at %s but adb missing", sdk)
	}
	if a.logger != nil {
		a.logger.Debug("adb fallback to PATH", "error", err)
	}
	return "adb"
}

// Devices lists attached devices in the "device" state.
func (a *AdbSource) Devices(ctx context.Context) ([]Device, error) {
	adb := a.adb()
	out, err := a.run.Output(ctx, "", adb, "devices", "-l")
	if err != nil {
		return nil, err
	}
	entries := parseDevices(string(out))
	devices := make([]Device, 0, len(entries))
	for _, e := range entries {
		if e.state != "device" {
			if a.logger != nil {
				a.logger.Info("adb device skipped", "id", e.id, "state", e.state)
			}
			continue
		}
		devices = append(devices, Device{ID: e.id, Name: e.model, Source: adbSourceName, Density: a.density(ctx, adb, e.id)})
	}
	return devices, nil
}

func (a *AdbSource) density(ctx context.Context, adb, id string) float64 {
	out, err := a.run.Output(ctx, "", adb, "-s", id, "shell", "wm", "density")
	if err == nil {
		var d float64
		if d, err = parseDensity(string(out)); err == nil {
			return d
		}
	}
	if a.logger != nil {
		a.logger.Warn("adb density", "id", id, "error", err)
	}
	return 1
}

// Screenshot streams a PNG of the device screen into w.
func (a *AdbSource) Screenshot(ctx context.Context, dev Device, w io.Writer) error {
	if dev.ID == "" {
		return ErrNoDevice
	}
	return a.run.Stream(ctx, w, a.adb(), "-s", dev.ID, "exec-out", "screencap", "-p")
}

type adbEntry struct {
	id, state, model string
}

// parseDevices reads `adb devices -l` output:
//
//	List of devices attached
//	emulator-5554  device product:sdk_gphone64 model:sdk_gphone64_arm64 device:emu64a transport_id:4
func parseDevices(out string) []adbEntry {
	var entries []adbEntry
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "*") || strings.HasPrefix(line, "List of devices") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		e := adbEntry{id: fields[0], state: fields[1], model: "Unknown"}
		for _, kv := range fields[2:] {
			key, value, ok := strings.Cut(kv, ":")
			if ok && key == "model" && value != "" {
				e.model = value
			}
		}
		entries = append(entries, e)
	}
	return entries
}

// parseDensity reads `wm density` output and returns dpi/160. The physical
// density is used even when an override is active.
func parseDensity(out string) (float64, error) {
	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok || key != "Physical density" {
			continue
		}
		dpi, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0, fmt.Errorf("parse density %q: %w", value, err)
		}
		if dpi <= 0 {
			return 0, fmt.Errorf("non-positive density %v", dpi)
		}
		return dpi / baselineDensity, nil
	}
	return 0, errors.New("physical density not reported")
}

// readSDKDir extracts sdk.dir from a Gradle local.properties file.
func readSDKDir(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if ok && strings.TrimSpace(key) == "sdk.dir" {
			return unescapeProperty(strings.TrimSpace(value)), nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("sdk.dir not found in %s", path)
}

// unescapeProperty undoes the backslash escaping Android Studio writes on
// Windows (C\:\\Users\\...).
func unescapeProperty(v string) string {
	var b strings.Builder
	escaped := false
	for _, r := range v {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}
