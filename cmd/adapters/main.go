// Command adapters lists every physical adapter with the queue families the
// renderer would pick on it.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/scenes/device"
	"github.com/vkngwrapper/scenes/vulkan"
)

func init() {
	runtime.LockOSThread()
}

func run(validation bool, logger *slog.Logger) error {
	err := sdl.Init(sdl.INIT_VIDEO)
	if err != nil {
		return errors.Wrap(err, "init sdl video")
	}
	defer sdl.Quit()

	// Presentation support is queried against a surface, so a hidden window
	// stands in for the real one.
	window, err := sdl.CreateWindow("adapters", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, 64, 64, sdl.WINDOW_HIDDEN|sdl.WINDOW_VULKAN)
	if err != nil {
		return errors.Wrap(err, "create window")
	}
	defer window.Destroy()

	instance, err := vulkan.NewInstance(window, vulkan.InstanceOptions{
		AppName:    "adapters",
		Validation: validation,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer instance.Destroy()

	adapters, err := instance.Adapters()
	if err != nil {
		return err
	}

	for index, adapter := range adapters {
		info := adapter.Info()
		attrs := []any{
			slog.Int("index", index),
			slog.String("name", info.Name),
			slog.String("type", info.Type),
			slog.String("driver", info.DriverVersion),
			slog.String("pipelineCache", info.PipelineCacheUUID.String()),
			slog.Int("queueFamilies", len(adapter.QueueFamilyFlags())),
		}

		families, err := device.FindQueueFamilies(adapter.QueueFamilyFlags(), adapter.PresentSupport)
		if err != nil {
			attrs = append(attrs, slog.String("unusable", err.Error()))
		} else {
			attrs = append(attrs,
				slog.Int("graphics", families.Graphics),
				slog.Int("present", families.Present),
				slog.Bool("shared", families.Shared()))
		}

		if vk, ok := adapter.(*vulkan.Adapter); ok {
			attrs = append(attrs, slog.Float64("maxAnisotropy", float64(vk.MaxSamplerAnisotropy())))
		}

		logger.Info("adapter", attrs...)
	}
	return nil
}

func main() {
	validation := flag.Bool("validation", false, "enable the Khronos validation layer")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	err := run(*validation, logger)
	if err != nil {
		log.Fatalf("%+v\n", err)
	}
}
