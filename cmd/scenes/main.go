package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/vkngwrapper/scenes/app"
	"github.com/vkngwrapper/scenes/scenes"
	"github.com/vkngwrapper/scenes/scenes/model"
	"github.com/vkngwrapper/scenes/scenes/particles"
	"github.com/vkngwrapper/scenes/scenes/triangle"
)

var constructors = map[string]scenes.Constructor{
	triangle.Name:  triangle.New,
	model.Name:     model.New,
	particles.Name: particles.New,
}

func init() {
	// SDL and the Vulkan surface must stay on the main thread.
	runtime.LockOSThread()
}

func parseConfig(args []string) (app.Config, error) {
	cfg := app.DefaultConfig()

	flags := flag.NewFlagSet("scenes", flag.ContinueOnError)
	flags.IntVar(&cfg.Width, "width", cfg.Width, "initial window width")
	flags.IntVar(&cfg.Height, "height", cfg.Height, "initial window height")
	flags.StringVar(&cfg.Scene, "scene", cfg.Scene, "scene to run: "+strings.Join(app.SceneNames(constructors), ", "))
	flags.StringVar(&cfg.ShaderDir, "shaders", cfg.ShaderDir, "directory holding <scene>/<stage>.spv")
	flags.StringVar(&cfg.AssetDir, "assets", cfg.AssetDir, "directory holding per-scene meshes and textures")
	flags.IntVar(&cfg.FramesInFlight, "frames-in-flight", cfg.FramesInFlight, "frames recorded ahead of the GPU (2 or 3)")
	flags.DurationVar(&cfg.FenceTimeout, "fence-timeout", cfg.FenceTimeout, "longest wait on a fence or acquire before failing")
	flags.BoolVar(&cfg.StrictFormat, "strict-format", cfg.StrictFormat, "fail when the preferred surface format is unsupported")
	flags.BoolVar(&cfg.Validation, "validation", cfg.Validation, "enable the Khronos validation layer")
	flags.DurationVar(&cfg.FPSInterval, "fps-interval", cfg.FPSInterval, "how often to log frame statistics, 0 to disable")
	presentMode := flags.String("present-mode", "mailbox", "preferred present mode: immediate, mailbox, fifo, fifo-relaxed")
	format := flags.String("format", "bgra8-srgb", "preferred surface format: bgra8-srgb, rgba8-srgb, bgra8-unorm, rgba8-unorm")
	logLevel := flags.String("log-level", "info", "debug, info, warn or error")

	err := flags.Parse(args)
	if err != nil {
		return cfg, err
	}

	cfg.PresentMode, err = app.ParsePresentMode(*presentMode)
	if err != nil {
		return cfg, err
	}
	cfg.PreferredFormat, err = app.ParseSurfaceFormat(*format)
	if err != nil {
		return cfg, err
	}
	cfg.LogLevel, err = app.ParseLogLevel(*logLevel)
	if err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = app.Run(ctx, cfg, constructors, logger)
	if err != nil {
		log.Fatalf("%+v\n", err)
	}
}
