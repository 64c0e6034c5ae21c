package app

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 2, cfg.FramesInFlight)
	require.Equal(t, 5*time.Second, cfg.FenceTimeout)
	require.Equal(t, core1_0.FormatB8G8R8A8SRGB, cfg.PreferredFormat.Format)
}

func TestConfigValidate(t *testing.T) {
	tests := map[string]struct {
		modify func(*Config)
		err    string
	}{
		"zero width":          {func(c *Config) { c.Width = 0 }, "window size"},
		"negative height":     {func(c *Config) { c.Height = -1 }, "window size"},
		"one frame in flight": {func(c *Config) { c.FramesInFlight = 1 }, "frames in flight"},
		"four in flight":      {func(c *Config) { c.FramesInFlight = 4 }, "frames in flight"},
		"no timeout":          {func(c *Config) { c.FenceTimeout = 0 }, "fence timeout"},
		"no scene":            {func(c *Config) { c.Scene = "" }, "no scene"},
		"negative interval":   {func(c *Config) { c.FPSInterval = -time.Second }, "fps interval"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			test.modify(&cfg)
			require.ErrorContains(t, cfg.Validate(), test.err)
		})
	}

	cfg := DefaultConfig()
	cfg.FramesInFlight = 3
	require.NoError(t, cfg.Validate())
}

func TestParsePresentMode(t *testing.T) {
	mode, err := ParsePresentMode("FIFO")
	require.NoError(t, err)
	require.Equal(t, khr_surface.PresentModeFIFO, mode)

	_, err = ParsePresentMode("vsync")
	require.ErrorContains(t, err, "unknown present mode")
}

func TestParseSurfaceFormat(t *testing.T) {
	format, err := ParseSurfaceFormat("rgba8-srgb")
	require.NoError(t, err)
	require.Equal(t, core1_0.FormatR8G8B8A8SRGB, format.Format)
	require.Equal(t, khr_surface.ColorSpaceSRGBNonlinear, format.ColorSpace)

	_, err = ParseSurfaceFormat("rgb10")
	require.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("debug")
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, level)

	_, err = ParseLogLevel("chatty")
	require.Error(t, err)
}
