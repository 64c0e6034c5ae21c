package pipeline

import (
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

// RenderPassInfo describes a single-subpass pass with one color attachment and
// an optional depth attachment.
type RenderPassInfo struct {
	ColorFormat core1_0.Format
	// DepthFormat is FormatUndefined when the pass has no depth attachment.
	DepthFormat core1_0.Format
	// FinalLayout defaults to PRESENT_SRC.
	FinalLayout core1_0.ImageLayout
}

func (i RenderPassInfo) HasDepth() bool {
	return i.DepthFormat != core1_0.FormatUndefined
}

func renderPassCreateInfo(info RenderPassInfo) core1_0.RenderPassCreateInfo {
	finalLayout := info.FinalLayout
	if finalLayout == core1_0.ImageLayoutUndefined {
		finalLayout = khr_swapchain.ImageLayoutPresentSrc
	}

	attachments := []core1_0.AttachmentDescription{
		{
			Format:         info.ColorFormat,
			Samples:        core1_0.Samples1,
			LoadOp:         core1_0.AttachmentLoadOpClear,
			StoreOp:        core1_0.AttachmentStoreOpStore,
			StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
			StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
			InitialLayout:  core1_0.ImageLayoutUndefined,
			FinalLayout:    finalLayout,
		},
	}

	subpass := core1_0.SubpassDescription{
		PipelineBindPoint: core1_0.PipelineBindPointGraphics,
		ColorAttachments: []core1_0.AttachmentReference{
			{
				Attachment: 0,
				Layout:     core1_0.ImageLayoutColorAttachmentOptimal,
			},
		},
	}

	// The clear at the start of the pass must wait for the image to be released
	// by the presentation engine, which the frame's acquire semaphore signals at
	// color attachment output.
	dependency := core1_0.SubpassDependency{
		SrcSubpass:    core1_0.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput,
		SrcAccessMask: 0,
		DstStageMask:  core1_0.PipelineStageColorAttachmentOutput,
		DstAccessMask: core1_0.AccessColorAttachmentWrite,
	}

	if info.HasDepth() {
		attachments = append(attachments, core1_0.AttachmentDescription{
			Format:         info.DepthFormat,
			Samples:        core1_0.Samples1,
			LoadOp:         core1_0.AttachmentLoadOpClear,
			StoreOp:        core1_0.AttachmentStoreOpDontCare,
			StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
			StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
			InitialLayout:  core1_0.ImageLayoutUndefined,
			FinalLayout:    core1_0.ImageLayoutDepthStencilAttachmentOptimal,
		})
		subpass.DepthStencilAttachment = &core1_0.AttachmentReference{
			Attachment: 1,
			Layout:     core1_0.ImageLayoutDepthStencilAttachmentOptimal,
		}
		dependency.SrcStageMask |= core1_0.PipelineStageEarlyFragmentTests
		dependency.DstStageMask |= core1_0.PipelineStageEarlyFragmentTests
		dependency.DstAccessMask |= core1_0.AccessDepthStencilAttachmentWrite
	}

	return core1_0.RenderPassCreateInfo{
		Attachments:         attachments,
		Subpasses:           []core1_0.SubpassDescription{subpass},
		SubpassDependencies: []core1_0.SubpassDependency{dependency},
	}
}

// GraphicsInfo is the fixed-function state of a graphics pipeline. Viewport and
// scissor are always dynamic, so a resize never rebuilds the pipeline.
type GraphicsInfo struct {
	Shaders    Shaders
	Bindings   []core1_0.VertexInputBindingDescription
	Attributes []core1_0.VertexInputAttributeDescription
	Topology   core1_0.PrimitiveTopology
	CullMode   core1_0.CullModeFlags
	Depth      bool
	Layout     core1_0.PipelineLayout
	RenderPass core1_0.RenderPass
}

func graphicsCreateInfo(info GraphicsInfo, stages []core1_0.PipelineShaderStageCreateInfo) core1_0.GraphicsPipelineCreateInfo {
	create := core1_0.GraphicsPipelineCreateInfo{
		Stages: stages,
		VertexInputState: &core1_0.PipelineVertexInputStateCreateInfo{
			VertexBindingDescriptions:   info.Bindings,
			VertexAttributeDescriptions: info.Attributes,
		},
		InputAssemblyState: &core1_0.PipelineInputAssemblyStateCreateInfo{
			Topology:               info.Topology,
			PrimitiveRestartEnable: false,
		},
		ViewportState: &core1_0.PipelineViewportStateCreateInfo{
			Viewports: []core1_0.Viewport{{MaxDepth: 1}},
			Scissors:  []core1_0.Rect2D{{}},
		},
		RasterizationState: &core1_0.PipelineRasterizationStateCreateInfo{
			PolygonMode: core1_0.PolygonModeFill,
			CullMode:    info.CullMode,
			FrontFace:   core1_0.FrontFaceCounterClockwise,
			LineWidth:   1.0,
		},
		MultisampleState: &core1_0.PipelineMultisampleStateCreateInfo{
			RasterizationSamples: core1_0.Samples1,
			MinSampleShading:     1.0,
		},
		ColorBlendState: &core1_0.PipelineColorBlendStateCreateInfo{
			LogicOp: core1_0.LogicOpCopy,
			Attachments: []core1_0.PipelineColorBlendAttachmentState{
				{
					ColorWriteMask: core1_0.ColorComponentRed | core1_0.ColorComponentGreen | core1_0.ColorComponentBlue | core1_0.ColorComponentAlpha,
				},
			},
		},
		DynamicState: &core1_0.PipelineDynamicStateCreateInfo{
			DynamicStates: []core1_0.DynamicState{core1_0.DynamicStateViewport, core1_0.DynamicStateScissor},
		},
		Layout:            info.Layout,
		RenderPass:        info.RenderPass,
		Subpass:           0,
		BasePipelineIndex: -1,
	}

	if info.Depth {
		create.DepthStencilState = &core1_0.PipelineDepthStencilStateCreateInfo{
			DepthTestEnable:  true,
			DepthWriteEnable: true,
			DepthCompareOp:   core1_0.CompareOpLess,
		}
	}

	return create
}

// ComputeInfo describes a single-stage compute pipeline. WorkgroupSize is
// bound to specialization constant 0 so the shader's local size is fixed at
// pipeline creation.
type ComputeInfo struct {
	Shader        []uint32
	Layout        core1_0.PipelineLayout
	WorkgroupSize int
}
