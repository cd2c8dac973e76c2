package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Blend mode names accepted in configuration files.
const (
	BlendModeOpacity = "opacity"
	BlendModeSumDiff = "sumdiff"
)

// Zoom modifier names accepted in configuration files.
const (
	ModifierAlt   = "alt"
	ModifierCtrl  = "ctrl"
	ModifierShift = "shift"
)

const appDirName = "pixel-diff"

// Config holds runtime configuration for comparison and app behavior.
// Fields may be loaded from a JSON, TOML or YAML file and overridden by
// command-line flags.
type Config struct {
	Debug     bool   `json:"debug" toml:"debug" yaml:"debug"`
	LogLevel  string `json:"log_level" toml:"log_level" yaml:"log_level"`
	LogFormat string `json:"log_format" toml:"log_format" yaml:"log_format"`

	// Composite controls
	BlendMode   string `json:"blend_mode" toml:"blend_mode" yaml:"blend_mode"`
	SliderMax   int    `json:"slider_max" toml:"slider_max" yaml:"slider_max"`
	SliderValue int    `json:"slider_value" toml:"slider_value" yaml:"slider_value"`
	OffsetRange int    `json:"offset_range" toml:"offset_range" yaml:"offset_range"`
	OffsetX     int    `json:"offset_x" toml:"offset_x" yaml:"offset_x"`
	SoftOffsetY int    `json:"soft_offset_y" toml:"soft_offset_y" yaml:"soft_offset_y"`
	HardOffsetY int    `json:"hard_offset_y" toml:"hard_offset_y" yaml:"hard_offset_y"`
	Reference   string `json:"reference" toml:"reference" yaml:"reference"`

	// Viewport
	ZoomStep     float64 `json:"zoom_step" toml:"zoom_step" yaml:"zoom_step"`
	PanStep      float64 `json:"pan_step" toml:"pan_step" yaml:"pan_step"`
	ZoomModifier string  `json:"zoom_modifier" toml:"zoom_modifier" yaml:"zoom_modifier"`
	FindersPath  string  `json:"finders_path" toml:"finders_path" yaml:"finders_path"`

	// Devices and output
	ProjectDir     string `json:"project_dir" toml:"project_dir" yaml:"project_dir"`
	AdbPath        string `json:"adb_path" toml:"adb_path" yaml:"adb_path"`
	DesktopCapture bool   `json:"desktop_capture" toml:"desktop_capture" yaml:"desktop_capture"`
	OutputDir      string `json:"output_dir" toml:"output_dir" yaml:"output_dir"`

	// Resources
	PoolSize       int  `json:"pool_size" toml:"pool_size" yaml:"pool_size"`
	ImageCacheSize int  `json:"image_cache_size" toml:"image_cache_size" yaml:"image_cache_size"`
	WatchReference bool `json:"watch_reference" toml:"watch_reference" yaml:"watch_reference"`

	// Window
	WindowWidth  int  `json:"window_width" toml:"window_width" yaml:"window_width"`
	WindowHeight int  `json:"window_height" toml:"window_height" yaml:"window_height"`
	DarkMode     bool `json:"dark_mode" toml:"dark_mode" yaml:"dark_mode"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:          false,
		LogLevel:       "info",
		LogFormat:      "json",
		BlendMode:      BlendModeOpacity,
		SliderMax:      20,
		SliderValue:    10,
		OffsetRange:    100,
		ZoomStep:       0.02,
		PanStep:        10,
		ZoomModifier:   ModifierAlt,
		ProjectDir:     ".",
		DesktopCapture: true,
		OutputDir:      filepath.Join(xdg.UserDirs.Pictures, appDirName),
		PoolSize:       4,
		ImageCacheSize: 8,
		WatchReference: true,
		WindowWidth:    1200,
		WindowHeight:   900,
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	p, err := xdg.ConfigFile(filepath.Join(appDirName, "config.json"))
	if err != nil {
		return filepath.Join(xdg.ConfigHome, appDirName, "config.json")
	}
	return p
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		c.LogLevel = "info"
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		c.LogFormat = "json"
	}
	switch strings.ToLower(c.BlendMode) {
	case BlendModeOpacity, BlendModeSumDiff:
		c.BlendMode = strings.ToLower(c.BlendMode)
	default:
		c.BlendMode = BlendModeOpacity
	}
	if c.SliderMax <= 0 {
		c.SliderMax = 20
	}
	c.SliderValue = clampInt(c.SliderValue, 0, c.SliderMax)
	if c.OffsetRange <= 0 {
		c.OffsetRange = 100
	}
	c.OffsetX = clampInt(c.OffsetX, -c.OffsetRange, c.OffsetRange)
	c.SoftOffsetY = clampInt(c.SoftOffsetY, -c.OffsetRange, c.OffsetRange)
	if c.ZoomStep <= 0 || c.ZoomStep >= 1 {
		c.ZoomStep = 0.02
	}
	if c.PanStep <= 0 {
		c.PanStep = 10
	}
	switch strings.ToLower(c.ZoomModifier) {
	case ModifierAlt, ModifierCtrl, ModifierShift:
		c.ZoomModifier = strings.ToLower(c.ZoomModifier)
	default:
		c.ZoomModifier = ModifierAlt
	}
	if c.ProjectDir == "" {
		c.ProjectDir = "."
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 4
	}
	if c.ImageCacheSize <= 0 {
		c.ImageCacheSize = 8
	}
	if c.WindowWidth < 320 {
		c.WindowWidth = 320
	}
	if c.WindowHeight < 240 {
		c.WindowHeight = 240
	}
	return nil
}

// Load attempts to read configuration from the given file path. The format is
// picked from the extension (.json, .toml, .yaml/.yml). If the file does not
// exist it returns DefaultConfig(). On decode error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	switch formatOf(path) {
	case "toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("decode toml %s: %w", path, err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("decode yaml %s: %w", path, err)
		}
	default:
		if err := json.NewDecoder(bytes.NewReader(data)).Decode(cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("decode json %s: %w", path, err)
		}
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path, in the format implied by
// its extension. Parent directories are created as needed.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	switch formatOf(path) {
	case "toml":
		return toml.NewEncoder(f).Encode(c)
	case "yaml":
		enc := yaml.NewEncoder(f)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	}
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
