package scenes

import (
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/scenes/frame"
	"github.com/vkngwrapper/scenes/gpu"
	"github.com/vkngwrapper/scenes/pipeline"
	"github.com/vkngwrapper/scenes/resource"
	"github.com/vkngwrapper/scenes/swapchain"
	"github.com/vkngwrapper/scenes/vulkan"
)

// Target is one chain generation's framebuffers and command buffers, one of each
// per chain image.
type Target struct {
	driver       core1_0.DeviceDriver
	RenderPass   core1_0.RenderPass
	Extent       core1_0.Extent2D
	Framebuffers []core1_0.Framebuffer
	Commands     []*vulkan.CommandBuffer
	clearValues  []core1_0.ClearValue
}

// NewTarget builds a target for chain inside b's scope. Each framebuffer binds
// the chain image's view followed by extra.
func NewTarget(b *pipeline.Builder, dev *vulkan.Device, renderPass core1_0.RenderPass, chain *swapchain.Chain, extra ...core1_0.ImageView) (*Target, error) {
	attachments := make([][]core1_0.ImageView, 0, chain.ImageCount())
	for _, view := range chain.Views {
		handle, err := vulkan.ImageViewHandle(view)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, append([]core1_0.ImageView{handle}, extra...))
	}

	framebuffers, err := b.Framebuffers(renderPass, chain.Extent, attachments)
	if err != nil {
		return nil, err
	}

	commands, err := dev.AllocateCommandBuffers(chain.ImageCount())
	if err != nil {
		return nil, err
	}
	b.Scope().Defer(func() { dev.FreeCommandBuffers(commands) })

	clearValues := []core1_0.ClearValue{core1_0.ClearValueFloat{0, 0, 0, 1}}
	if len(extra) > 0 {
		clearValues = append(clearValues, core1_0.ClearValueDepthStencil{Depth: 1.0, Stencil: 0})
	}

	return &Target{
		driver:       dev.Driver(),
		RenderPass:   renderPass,
		Extent:       chain.Extent,
		Framebuffers: framebuffers,
		Commands:     commands,
		clearValues:  clearValues,
	}, nil
}

// Begin starts recording the command buffer of f's image.
// vulkan.CommandBuffer.Begin resets the buffer first.
func (t *Target) Begin(f frame.Frame) (*vulkan.CommandBuffer, error) {
	cmd := t.Commands[f.ImageIndex]
	err := cmd.Begin()
	if err != nil {
		return nil, err
	}
	return cmd, nil
}

// BeginPass starts the render pass on f's framebuffer and sets the dynamic
// viewport and scissor to the full extent.
func (t *Target) BeginPass(cmd *vulkan.CommandBuffer, f frame.Frame) error {
	err := t.driver.CmdBeginRenderPass(cmd.Handle(), core1_0.SubpassContentsInline,
		core1_0.RenderPassBeginInfo{
			RenderPass:  t.RenderPass,
			Framebuffer: t.Framebuffers[f.ImageIndex],
			RenderArea: core1_0.Rect2D{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: t.Extent,
			},
			ClearValues: t.clearValues,
		})
	if err != nil {
		return err
	}

	t.driver.CmdSetViewport(cmd.Handle(), core1_0.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(t.Extent.Width),
		Height:   float32(t.Extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	})
	t.driver.CmdSetScissor(cmd.Handle(), core1_0.Rect2D{
		Offset: core1_0.Offset2D{X: 0, Y: 0},
		Extent: t.Extent,
	})
	return nil
}

// Finish records the overlay, ends the render pass and ends the command buffer.
func (t *Target) Finish(cmd *vulkan.CommandBuffer, f frame.Frame) (gpu.CommandBuffer, error) {
	err := f.RecordOverlay(cmd)
	if err != nil {
		return nil, err
	}

	t.driver.CmdEndRenderPass(cmd.Handle())

	err = cmd.End()
	if err != nil {
		return nil, err
	}
	return cmd, nil
}

// DepthBuffer creates a depth attachment sized to extent, moved to
// DEPTH_STENCIL_ATTACHMENT_OPTIMAL and registered in scope.
func DepthBuffer(allocator *resource.Allocator, scope *resource.Scope, format core1_0.Format, extent core1_0.Extent2D) (gpu.ImageView, error) {
	image, err := allocator.CreateImage(gpu.ImageInfo{
		Width:  extent.Width,
		Height: extent.Height,
		Format: format,
		Tiling: core1_0.ImageTilingOptimal,
		Usage:  core1_0.ImageUsageDepthStencilAttachment,
	}, core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return nil, err
	}
	scope.Add(image)

	view, err := allocator.CreateImageView(image.Image, format, core1_0.ImageAspectDepth, 1)
	if err != nil {
		return nil, err
	}
	scope.Add(view)

	err = allocator.TransitionImageLayout(image, core1_0.ImageLayoutUndefined, core1_0.ImageLayoutDepthStencilAttachmentOptimal)
	if err != nil {
		return nil, err
	}
	return view, nil
}
