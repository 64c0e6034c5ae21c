package app

import (
	"log/slog"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/scenes/frame"
)

// Config is everything the application takes from the command line.
type Config struct {
	Title  string
	Width  int
	Height int

	Scene     string
	ShaderDir string
	AssetDir  string

	FramesInFlight  int
	FenceTimeout    time.Duration
	PreferredFormat khr_surface.SurfaceFormat
	PresentMode     khr_surface.PresentMode
	// StrictFormat fails startup when PreferredFormat is unsupported instead of
	// falling back to the surface's first format.
	StrictFormat bool

	Validation bool
	LogLevel   slog.Level
	// FPSInterval is how often frame statistics are logged. Zero disables it.
	FPSInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Title:          "scenes",
		Width:          800,
		Height:         600,
		Scene:          "triangle",
		ShaderDir:      "shaders",
		AssetDir:       "assets",
		FramesInFlight: frame.DefaultFramesInFlight,
		FenceTimeout:   frame.DefaultFenceTimeout,
		PreferredFormat: khr_surface.SurfaceFormat{
			Format:     core1_0.FormatB8G8R8A8SRGB,
			ColorSpace: khr_surface.ColorSpaceSRGBNonlinear,
		},
		PresentMode: khr_surface.PresentModeMailbox,
		LogLevel:    slog.LevelInfo,
		FPSInterval: 5 * time.Second,
	}
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Newf("window size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.FramesInFlight < frame.MinFramesInFlight || c.FramesInFlight > frame.MaxFramesInFlight {
		return errors.Newf("frames in flight must be between %d and %d, got %d", frame.MinFramesInFlight, frame.MaxFramesInFlight, c.FramesInFlight)
	}
	if c.FenceTimeout <= 0 {
		return errors.Newf("fence timeout must be positive, got %s", c.FenceTimeout)
	}
	if c.Scene == "" {
		return errors.New("no scene selected")
	}
	if c.FPSInterval < 0 {
		return errors.Newf("fps interval must not be negative, got %s", c.FPSInterval)
	}
	return nil
}

var presentModes = map[string]khr_surface.PresentMode{
	"immediate":    khr_surface.PresentModeImmediate,
	"mailbox":      khr_surface.PresentModeMailbox,
	"fifo":         khr_surface.PresentModeFIFO,
	"fifo-relaxed": khr_surface.PresentModeFIFORelaxed,
}

func ParsePresentMode(name string) (khr_surface.PresentMode, error) {
	mode, ok := presentModes[strings.ToLower(name)]
	if !ok {
		return 0, errors.Newf("unknown present mode %q", name)
	}
	return mode, nil
}

var surfaceFormats = map[string]core1_0.Format{
	"bgra8-srgb":  core1_0.FormatB8G8R8A8SRGB,
	"rgba8-srgb":  core1_0.FormatR8G8B8A8SRGB,
	"bgra8-unorm": core1_0.FormatB8G8R8A8UnsignedNormalized,
	"rgba8-unorm": core1_0.FormatR8G8B8A8UnsignedNormalized,
}

// ParseSurfaceFormat resolves a format name in the sRGB nonlinear color space.
func ParseSurfaceFormat(name string) (khr_surface.SurfaceFormat, error) {
	format, ok := surfaceFormats[strings.ToLower(name)]
	if !ok {
		return khr_surface.SurfaceFormat{}, errors.Newf("unknown surface format %q", name)
	}
	return khr_surface.SurfaceFormat{
		Format:     format,
		ColorSpace: khr_surface.ColorSpaceSRGBNonlinear,
	}, nil
}

func ParseLogLevel(name string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(name))
	if err != nil {
		return level, errors.Wrapf(err, "parse log level %q", name)
	}
	return level, nil
}
