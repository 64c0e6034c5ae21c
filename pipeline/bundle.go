package pipeline

import (
	"log/slog"

	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/scenes/gpu"
	"github.com/vkngwrapper/scenes/resource"
	"github.com/vkngwrapper/scenes/swapchain"
)

// ChainBuild creates everything a technique sizes or binds to one chain
// generation: framebuffers, per-image command buffers, per-image uniforms.
type ChainBuild func(b *Builder, chain *swapchain.Chain) error

// Bundle owns one technique's pipeline objects in two scopes. The persistent
// scope lives until Destroy; the chain scope is emptied on every ReleaseChain
// and refilled by RebuildChain.
//
// Render passes and pipelines in the persistent scope are built for the surface
// format of the first chain generation passed to RebuildChain. A later
// generation with a different format is rejected.
type Bundle struct {
	persistent resource.Scope
	chain      resource.Scope
	driver     core1_0.DeviceDriver
	build      ChainBuild
	built      bool
	format     core1_0.Format
	pinned     bool
	logger     *slog.Logger
}

func NewBundle(driver core1_0.DeviceDriver, build ChainBuild, logger *slog.Logger) *Bundle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bundle{
		driver: driver,
		build:  build,
		logger: logger,
	}
}

// Persistent is a builder over the persistent scope.
func (b *Bundle) Persistent() *Builder {
	return NewBuilder(b.driver, &b.persistent)
}

// ReleaseChain destroys the chain scope. It is safe to call repeatedly.
func (b *Bundle) ReleaseChain() {
	if !b.built {
		return
	}
	b.chain.Destroy()
	b.built = false
}

// RebuildChain releases whatever the previous generation built and runs the
// chain build against chain. On failure the partial build is released.
func (b *Bundle) RebuildChain(chain *swapchain.Chain) error {
	b.ReleaseChain()

	if !b.pinned {
		b.format = chain.Format.Format
		b.pinned = true
	}
	if chain.Format.Format != b.format {
		return gpu.Fail(gpu.ErrPipelineCreationFailed, nil, "swap chain generation %d uses format %v, render pass was built for %v", chain.Generation, chain.Format.Format, b.format)
	}

	err := b.build(NewBuilder(b.driver, &b.chain), chain)
	if err != nil {
		b.chain.Destroy()
		return gpu.Fail(gpu.ErrPipelineCreationFailed, err, "build pipeline objects for swap chain generation %d", chain.Generation)
	}

	b.built = true
	b.logger.Debug("rebuilt pipeline objects",
		slog.Int("generation", chain.Generation),
		slog.Int("objects", b.chain.Len()))
	return nil
}

// Destroy releases the chain scope, then the persistent scope.
func (b *Bundle) Destroy() {
	b.ReleaseChain()
	b.persistent.Destroy()
}
