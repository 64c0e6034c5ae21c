package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

func TestRenderPassColorOnly(t *testing.T) {
	info := renderPassCreateInfo(RenderPassInfo{ColorFormat: core1_0.FormatB8G8R8A8SRGB})

	require.Len(t, info.Attachments, 1)
	color := info.Attachments[0]
	require.Equal(t, core1_0.FormatB8G8R8A8SRGB, color.Format)
	require.Equal(t, core1_0.AttachmentLoadOpClear, color.LoadOp)
	require.Equal(t, core1_0.AttachmentStoreOpStore, color.StoreOp)
	require.Equal(t, core1_0.ImageLayoutUndefined, color.InitialLayout)
	require.Equal(t, khr_swapchain.ImageLayoutPresentSrc, color.FinalLayout)

	require.Len(t, info.Subpasses, 1)
	require.Nil(t, info.Subpasses[0].DepthStencilAttachment)

	require.Len(t, info.SubpassDependencies, 1)
	dep := info.SubpassDependencies[0]
	require.Equal(t, core1_0.SubpassExternal, dep.SrcSubpass)
	require.Equal(t, 0, dep.DstSubpass)
	require.Equal(t, core1_0.PipelineStageColorAttachmentOutput, dep.SrcStageMask)
	require.Equal(t, core1_0.PipelineStageColorAttachmentOutput, dep.DstStageMask)
	require.Equal(t, core1_0.AccessColorAttachmentWrite, dep.DstAccessMask)
}

func TestRenderPassWithDepth(t *testing.T) {
	info := renderPassCreateInfo(RenderPassInfo{
		ColorFormat: core1_0.FormatB8G8R8A8SRGB,
		DepthFormat: core1_0.FormatD32SignedFloat,
	})

	require.Len(t, info.Attachments, 2)
	depth := info.Attachments[1]
	require.Equal(t, core1_0.FormatD32SignedFloat, depth.Format)
	require.Equal(t, core1_0.AttachmentStoreOpDontCare, depth.StoreOp)
	require.Equal(t, core1_0.ImageLayoutDepthStencilAttachmentOptimal, depth.FinalLayout)

	ref := info.Subpasses[0].DepthStencilAttachment
	require.NotNil(t, ref)
	require.Equal(t, 1, ref.Attachment)

	dep := info.SubpassDependencies[0]
	require.NotZero(t, dep.DstStageMask&core1_0.PipelineStageEarlyFragmentTests)
	require.NotZero(t, dep.DstAccessMask&core1_0.AccessDepthStencilAttachmentWrite)
}

func TestRenderPassFinalLayoutOverride(t *testing.T) {
	info := renderPassCreateInfo(RenderPassInfo{
		ColorFormat: core1_0.FormatR8G8B8A8SRGB,
		FinalLayout: core1_0.ImageLayoutShaderReadOnlyOptimal,
	})
	require.Equal(t, core1_0.ImageLayoutShaderReadOnlyOptimal, info.Attachments[0].FinalLayout)
}

func TestGraphicsViewportIsDynamic(t *testing.T) {
	info := graphicsCreateInfo(GraphicsInfo{
		Topology: core1_0.PrimitiveTopologyTriangleList,
		CullMode: core1_0.CullModeBack,
	}, nil)

	require.NotNil(t, info.DynamicState)
	require.ElementsMatch(t, []core1_0.DynamicState{core1_0.DynamicStateViewport, core1_0.DynamicStateScissor}, info.DynamicState.DynamicStates)
	require.Len(t, info.ViewportState.Viewports, 1)
	require.Len(t, info.ViewportState.Scissors, 1)
	require.Equal(t, core1_0.PrimitiveTopologyTriangleList, info.InputAssemblyState.Topology)
	require.Equal(t, core1_0.CullModeBack, info.RasterizationState.CullMode)
	require.Nil(t, info.DepthStencilState)
	require.Equal(t, -1, info.BasePipelineIndex)
}

func TestGraphicsDepthState(t *testing.T) {
	info := graphicsCreateInfo(GraphicsInfo{Depth: true}, nil)

	require.NotNil(t, info.DepthStencilState)
	require.True(t, info.DepthStencilState.DepthTestEnable)
	require.True(t, info.DepthStencilState.DepthWriteEnable)
	require.Equal(t, core1_0.CompareOpLess, info.DepthStencilState.DepthCompareOp)
}
