// Package app wires the window, device, swap chain, scene and frame engine
// together and runs the event loop.
package app

import (
	"context"
	"log/slog"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/scenes/device"
	"github.com/vkngwrapper/scenes/frame"
	"github.com/vkngwrapper/scenes/resource"
	"github.com/vkngwrapper/scenes/scenes"
	"github.com/vkngwrapper/scenes/swapchain"
	"github.com/vkngwrapper/scenes/vulkan"
)

// SceneNames lists the registered scenes in order.
func SceneNames(constructors map[string]scenes.Constructor) []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run builds everything cfg describes, runs the loop and tears everything down
// in reverse creation order. The calling goroutine must be locked to the main
// OS thread.
func Run(ctx context.Context, cfg Config, constructors map[string]scenes.Constructor, logger *slog.Logger) error {
	err := cfg.Validate()
	if err != nil {
		return err
	}
	if logger == nil {
		logger = slog.Default()
	}

	constructor, ok := constructors[cfg.Scene]
	if !ok {
		return errors.Newf("unknown scene %q, available: %v", cfg.Scene, SceneNames(constructors))
	}

	var teardown resource.Scope
	defer teardown.Destroy()

	window, err := NewSDLWindow(cfg)
	if err != nil {
		return err
	}
	teardown.Add(window)

	instance, err := vulkan.NewInstance(window.Handle(), vulkan.InstanceOptions{
		AppName:    cfg.Title,
		Validation: cfg.Validation,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	teardown.Add(instance)

	devices, err := device.New(instance, logger)
	if err != nil {
		return err
	}
	teardown.Add(devices)

	dev, ok := devices.Device().(*vulkan.Device)
	if !ok {
		return errors.AssertionFailedf("unexpected device type %T", devices.Device())
	}
	surface := dev.Adapter().Surface()

	manager := swapchain.NewManager(surface, dev.SwapchainFactory(surface), dev, devices.Families(), swapchain.Options{
		PreferredFormat: cfg.PreferredFormat,
		PresentMode:     cfg.PresentMode,
		StrictFormat:    cfg.StrictFormat,
	}, logger)
	chain, err := manager.Create()
	if err != nil {
		return err
	}
	teardown.Defer(manager.Destroy)

	scene, err := constructor(scenes.Context{
		Device:    dev,
		Allocator: resource.NewAllocator(dev, dev, logger),
		Chain:     chain,
		ShaderDir: cfg.ShaderDir,
		AssetDir:  cfg.AssetDir,
		Logger:    logger.With(slog.String("scene", cfg.Scene)),
	})
	if err != nil {
		return errors.Wrapf(err, "create scene %s", cfg.Scene)
	}
	manager.AddDependent(scene)
	teardown.Defer(func() {
		manager.RemoveDependent(scene)
		scene.Destroy()
	})

	renderer, err := frame.NewRenderer(dev, devices.GraphicsQueue(), manager, scene, frame.Options{
		FramesInFlight: cfg.FramesInFlight,
		FenceTimeout:   cfg.FenceTimeout,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	teardown.Defer(renderer.Destroy)

	logger.Info("running", slog.String("scene", scene.Name()), slog.Int("framesInFlight", renderer.Engine().FramesInFlight()))
	return NewLoop(window, renderer, cfg.FPSInterval, logger).Run(ctx)
}
