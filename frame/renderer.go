package frame

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/scenes/gpu"
	"github.com/vkngwrapper/scenes/swapchain"
)

// ChainManager is the part of swapchain.Manager the renderer drives.
type ChainManager interface {
	Chain() *swapchain.Chain
	// Recreate waits for idle, replaces the chain and rebuilds its dependents.
	// It reports false when the surface currently has zero area.
	Recreate() (bool, error)
}

// Renderer ties an Engine to a swap chain manager and a scene, and turns a
// Recreate result into a chain rebuild before the next frame.
type Renderer struct {
	device  gpu.Device
	manager ChainManager
	engine  *Engine
	scene   Scene
	logger  *slog.Logger
	pending bool
}

// NewRenderer creates an engine sized to the manager's current chain.
func NewRenderer(dev gpu.Device, queue gpu.Queue, manager ChainManager, scene Scene, options Options) (*Renderer, error) {
	chain := manager.Chain()
	if chain == nil {
		return nil, errors.AssertionFailedf("renderer needs a created swap chain")
	}

	engine, err := New(dev, queue, chain.ImageCount(), options)
	if err != nil {
		return nil, err
	}

	return &Renderer{
		device:  dev,
		manager: manager,
		engine:  engine,
		scene:   scene,
		logger:  engine.logger,
	}, nil
}

func (r *Renderer) Engine() *Engine {
	return r.engine
}

// SetScene swaps the scene drawn by subsequent frames.
func (r *Renderer) SetScene(scene Scene) {
	r.scene = scene
}

// Pending reports whether a recreation is waiting for the surface to regain a
// nonzero area.
func (r *Renderer) Pending() bool {
	return r.pending
}

// Frame draws one frame. A stale chain is rebuilt before Frame returns, so the
// next call starts on a fresh chain. While a recreation is pending, Frame retries
// it and draws nothing until it succeeds.
func (r *Renderer) Frame() error {
	if r.pending {
		err := r.Recreate()
		if err != nil || r.pending {
			return err
		}
	}

	result, err := r.engine.DrawFrame(r.manager.Chain().Swapchain, r.scene)
	if err != nil {
		r.logger.Error("frame failed", slog.Any("error", err))
		return err
	}

	if result == Recreate {
		r.logger.Info("swap chain stale, recreating", slog.Uint64("frame", r.engine.stats.Frames))
		return r.Recreate()
	}
	return nil
}

// Recreate rebuilds the chain and its dependents and resets image tracking.
func (r *Renderer) Recreate() error {
	recreated, err := r.manager.Recreate()
	if err != nil {
		return err
	}
	if !recreated {
		r.pending = true
		return nil
	}

	r.pending = false
	r.engine.ResetImages(r.manager.Chain().ImageCount())
	return nil
}

// Destroy waits for the device to go idle and releases the engine. The chain,
// scene resources and device belong to the caller.
func (r *Renderer) Destroy() {
	err := r.device.WaitIdle()
	if err != nil {
		r.logger.Error("wait for device idle at teardown", slog.Any("error", err))
	}
	r.engine.Destroy()
}
