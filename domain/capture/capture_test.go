package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soocke/pixel-diff-go/domain/command"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRunner answers commands by their joined argument string.
type fakeRunner struct {
	outputs map[string]string
	stream  string
	err     error
	calls   []string
}

var _ command.Runner = (*fakeRunner)(nil)

func (f *fakeRunner) Output(_ context.Context, _ string, name string, args ...string) ([]byte, error) {
	key := strings.Join(args, " ")
	f.calls = append(f.calls, name+" "+key)
	out, ok := f.outputs[key]
	if !ok {
		return nil, fmt.Errorf("unexpected command %q", key)
	}
	return []byte(out), nil
}

func (f *fakeRunner) Stream(_ context.Context, w io.Writer, name string, args ...string) error {
	f.calls = append(f.calls, name+" "+strings.Join(args, " "))
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(w, f.stream)
	return err
}

const devicesOutput = `* daemon not running; starting now at tcp:5037
List of devices attached
S3F4C19C13008032       device usb:17825792X product:STK-L21HNRU model:STK_LX1 device:HWSTK-HF transport_id:5
emulator-5554          device product:sdk_gphone64_arm64 model:sdk_gphone64_arm64 device:emulator64_arm64 transport_id:4
R58M123                unauthorized usb:1-1 transport_id:6
0123456789             device transport_id:7

`

func TestParseDevices(t *testing.T) {
	entries := parseDevices(devicesOutput)
	require.Len(t, entries, 4)
	assert.Equal(t, adbEntry{id: "S3F4C19C13008032", state: "device", model: "STK_LX1"}, entries[0])
	assert.Equal(t, "sdk_gphone64_arm64", entries[1].model)
	assert.Equal(t, "unauthorized", entries[2].state)
	assert.Equal(t, "Unknown", entries[3].model)
}

func TestParseDensity(t *testing.T) {
	d, err := parseDensity("Physical density: 420\n")
	require.NoError(t, err)
	assert.InDelta(t, 2.625, d, 1e-9)

	d, err = parseDensity("Physical density: 480\nOverride density: 320\n")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, d, 1e-9)

	_, err = parseDensity("Override density: 320")
	assert.Error(t, err)
	_, err = parseDensity("Physical density: abc")
	assert.Error(t, err)
}

func TestReadSDKDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "local.properties")
	require.NoError(t, os.WriteFile(path, []byte("# generated\nsdk.dir=C\\:\\\\Users\\\\dev\\\\Android\\\\Sdk\n"), 0o644))

	sdk, err := readSDKDir(path)
	require.NoError(t, err)
	assert.Equal(t, `C:\Users\dev\Android\Sdk`, sdk)

	require.NoError(t, os.WriteFile(path, []byte("ndk.dir=/x\n"), 0o644))
	_, err = readSDKDir(path)
	assert.Error(t, err)
}

func TestAdbSourceDevices(t *testing.T) {
	run := &fakeRunner{outputs: map[string]string{
		"devices -l":                           devicesOutput,
		"-s S3F4C19C13008032 shell wm density": "Physical density: 480",
		"-s emulator-5554 shell wm density":    "Physical density: 420",
		// 0123456789 has no density answer and falls back to 1
	}}
	src := NewAdbSource(discardLogger(), run, t.TempDir(), "")

	devs, err := src.Devices(context.Background())
	require.NoError(t, err)
	require.Len(t, devs, 3)
	assert.Equal(t, Device{ID: "S3F4C19C13008032", Name: "STK_LX1", Source: "adb", Density: 3}, devs[0])
	assert.InDelta(t, 2.625, devs[1].Density, 1e-9)
	assert.Equal(t, 1.0, devs[2].Density)
	assert.True(t, strings.HasPrefix(run.calls[0], "adb "))
}

func TestAdbSourceResolvesSDK(t *testing.T) {
	project := t.TempDir()
	sdk := filepath.Join(project, "sdk")
	bin := "adb"
	if filepath.Separator == '\\' {
		bin = "adb.exe"
	}
	require.NoError(t, os.MkdirAll(filepath.Join(sdk, "platform-tools"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sdk, "platform-tools", bin), nil, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(project, "local.properties"), []byte("sdk.dir="+filepath.ToSlash(sdk)+"\n"), 0o644))

	src := NewAdbSource(nil, &fakeRunner{}, project, "")
	assert.Equal(t, filepath.Join(sdk, "platform-tools", bin), src.adb())

	require.NoError(t, os.Remove(filepath.Join(project, "local.properties")))
	assert.Equal(t, filepath.Join(sdk, "platform-tools", bin), src.adb(), "cached")
	src.ResetCache()
	assert.Equal(t, "adb", src.adb())

	assert.Equal(t, "/opt/adb", NewAdbSource(nil, nil, project, "/opt/adb").adb())
}

type stubSource struct {
	name    string
	devices []Device
	err     error
	payload string
}

func (s *stubSource) Name() string { return s.name }
func (s *stubSource) Devices(context.Context) ([]Device, error) {
	return s.devices, s.err
}
func (s *stubSource) Screenshot(_ context.Context, _ Device, w io.Writer) error {
	if s.err != nil {
		return s.err
	}
	_, err := io.WriteString(w, s.payload)
	return err
}

func TestCaptureServiceDevicesFallsBackToNoDevice(t *testing.T) {
	svc := NewCaptureService(discardLogger(), &stubSource{name: "adb", err: errors.New("adb missing")})
	assert.Equal(t, []Device{NoDevice}, svc.Devices(context.Background()))
}

func TestCaptureServiceAcquire(t *testing.T) {
	dev := Device{ID: "x", Name: "Pixel", Source: "adb", Density: 2}
	ok := &stubSource{name: "adb", devices: []Device{dev}, payload: "\x89PNG"}
	svc := NewCaptureService(discardLogger(), ok)
	path := filepath.Join(t.TempDir(), "shot.png")

	require.NoError(t, svc.Acquire(context.Background(), dev, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(data))
	assert.Equal(t, uint64(1), svc.Stats().Captures)
	assert.Equal(t, "Pixel", svc.Stats().LastDevice)
}

func TestCaptureServiceAcquireFailureRemovesFile(t *testing.T) {
	dev := Device{ID: "x", Name: "Pixel", Source: "adb"}
	svc := NewCaptureService(discardLogger(), &stubSource{name: "adb", err: errors.New("boom")})
	path := filepath.Join(t.TempDir(), "shot.png")

	require.Error(t, svc.Acquire(context.Background(), dev, path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, uint64(1), svc.Stats().Failures)

	assert.ErrorIs(t, svc.Acquire(context.Background(), NoDevice, path), ErrNoDevice)
}

func TestCaptureServiceResetCaches(t *testing.T) {
	project := t.TempDir()
	src := NewAdbSource(nil, &fakeRunner{}, project, "")
	src.resolved = "/cached/adb"
	NewCaptureService(nil, src).ResetCaches()
	assert.Empty(t, src.resolved)
}
