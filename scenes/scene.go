// Package scenes holds what every demo scene shares: the context scenes are
// constructed from and the per-chain render target that owns framebuffers and
// per-image command buffers.
package scenes

import (
	"log/slog"

	"github.com/vkngwrapper/scenes/frame"
	"github.com/vkngwrapper/scenes/resource"
	"github.com/vkngwrapper/scenes/swapchain"
	"github.com/vkngwrapper/scenes/vulkan"
)

// Context is everything a scene needs at construction time.
type Context struct {
	Device    *vulkan.Device
	Allocator *resource.Allocator
	Chain     *swapchain.Chain
	ShaderDir string
	// AssetDir holds per-scene meshes and textures under <AssetDir>/<scene>.
	AssetDir string
	Logger   *slog.Logger
}

// Scene records frames, follows swap chain rebuilds and owns its GPU resources.
type Scene interface {
	frame.Scene
	swapchain.Dependent
	Name() string
	Destroy()
}

// Constructor builds a scene against the current chain.
type Constructor func(ctx Context) (Scene, error)
