package resource

import (
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/scenes/gpu"
)

// Transition is the access masks and pipeline stages a layout change sits between.
type Transition struct {
	SrcAccess core1_0.AccessFlags
	DstAccess core1_0.AccessFlags
	SrcStage  core1_0.PipelineStageFlags
	DstStage  core1_0.PipelineStageFlags
}

type layoutPair struct {
	old, new core1_0.ImageLayout
}

var transitions = map[layoutPair]Transition{
	{core1_0.ImageLayoutUndefined, core1_0.ImageLayoutTransferDstOptimal}: {
		SrcAccess: 0,
		DstAccess: core1_0.AccessTransferWrite,
		SrcStage:  core1_0.PipelineStageTopOfPipe,
		DstStage:  core1_0.PipelineStageTransfer,
	},
	{core1_0.ImageLayoutTransferDstOptimal, core1_0.ImageLayoutShaderReadOnlyOptimal}: {
		SrcAccess: core1_0.AccessTransferWrite,
		DstAccess: core1_0.AccessShaderRead,
		SrcStage:  core1_0.PipelineStageTransfer,
		DstStage:  core1_0.PipelineStageFragmentShader,
	},
	{core1_0.ImageLayoutTransferDstOptimal, core1_0.ImageLayoutTransferSrcOptimal}: {
		SrcAccess: core1_0.AccessTransferWrite,
		DstAccess: core1_0.AccessTransferRead,
		SrcStage:  core1_0.PipelineStageTransfer,
		DstStage:  core1_0.PipelineStageTransfer,
	},
	{core1_0.ImageLayoutTransferSrcOptimal, core1_0.ImageLayoutShaderReadOnlyOptimal}: {
		SrcAccess: core1_0.AccessTransferRead,
		DstAccess: core1_0.AccessShaderRead,
		SrcStage:  core1_0.PipelineStageTransfer,
		DstStage:  core1_0.PipelineStageFragmentShader,
	},
	{core1_0.ImageLayoutUndefined, core1_0.ImageLayoutDepthStencilAttachmentOptimal}: {
		SrcAccess: 0,
		DstAccess: core1_0.AccessDepthStencilAttachmentRead | core1_0.AccessDepthStencilAttachmentWrite,
		SrcStage:  core1_0.PipelineStageTopOfPipe,
		DstStage:  core1_0.PipelineStageEarlyFragmentTests,
	},
}

// LayoutTransition looks up the barrier parameters for oldLayout -> newLayout.
// Pairs outside the table fail with ErrUnsupportedLayoutTransition.
func LayoutTransition(oldLayout, newLayout core1_0.ImageLayout) (Transition, error) {
	transition, ok := transitions[layoutPair{oldLayout, newLayout}]
	if !ok {
		return Transition{}, gpu.Fail(gpu.ErrUnsupportedLayoutTransition, nil, "unexpected layout transition: %s -> %s", oldLayout, newLayout)
	}
	return transition, nil
}

// HasStencilComponent reports whether a depth format also carries stencil bits.
func HasStencilComponent(format core1_0.Format) bool {
	return format == core1_0.FormatD32SignedFloatS8UnsignedInt || format == core1_0.FormatD24UnsignedNormalizedS8UnsignedInt
}

// IsDepthFormat reports whether format is one of the depth formats the scenes use.
func IsDepthFormat(format core1_0.Format) bool {
	return format == core1_0.FormatD32SignedFloat || HasStencilComponent(format)
}

// AspectFor picks the image aspect a barrier into layout must name.
func AspectFor(format core1_0.Format, layout core1_0.ImageLayout) core1_0.ImageAspectFlags {
	if layout != core1_0.ImageLayoutDepthStencilAttachmentOptimal && !IsDepthFormat(format) {
		return core1_0.ImageAspectColor
	}

	aspect := core1_0.ImageAspectDepth
	if HasStencilComponent(format) {
		aspect |= core1_0.ImageAspectStencil
	}
	return aspect
}
