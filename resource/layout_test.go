package resource

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/scenes/gpu"
)

func TestLayoutTransitionTable(t *testing.T) {
	testCases := map[string]struct {
		old, new core1_0.ImageLayout
		expected Transition
	}{
		"undefined to transfer dst": {
			old: core1_0.ImageLayoutUndefined,
			new: core1_0.ImageLayoutTransferDstOptimal,
			expected: Transition{
				SrcAccess: 0,
				DstAccess: core1_0.AccessTransferWrite,
				SrcStage:  core1_0.PipelineStageTopOfPipe,
				DstStage:  core1_0.PipelineStageTransfer,
			},
		},
		"transfer dst to shader read": {
			old: core1_0.ImageLayoutTransferDstOptimal,
			new: core1_0.ImageLayoutShaderReadOnlyOptimal,
			expected: Transition{
				SrcAccess: core1_0.AccessTransferWrite,
				DstAccess: core1_0.AccessShaderRead,
				SrcStage:  core1_0.PipelineStageTransfer,
				DstStage:  core1_0.PipelineStageFragmentShader,
			},
		},
		"transfer dst to transfer src": {
			old: core1_0.ImageLayoutTransferDstOptimal,
			new: core1_0.ImageLayoutTransferSrcOptimal,
			expected: Transition{
				SrcAccess: core1_0.AccessTransferWrite,
				DstAccess: core1_0.AccessTransferRead,
				SrcStage:  core1_0.PipelineStageTransfer,
				DstStage:  core1_0.PipelineStageTransfer,
			},
		},
		"transfer src to shader read": {
			old: core1_0.ImageLayoutTransferSrcOptimal,
			new: core1_0.ImageLayoutShaderReadOnlyOptimal,
			expected: Transition{
				SrcAccess: core1_0.AccessTransferRead,
				DstAccess: core1_0.AccessShaderRead,
				SrcStage:  core1_0.PipelineStageTransfer,
				DstStage:  core1_0.PipelineStageFragmentShader,
			},
		},
		"undefined to depth attachment": {
			old: core1_0.ImageLayoutUndefined,
			new: core1_0.ImageLayoutDepthStencilAttachmentOptimal,
			expected: Transition{
				SrcAccess: 0,
				DstAccess: core1_0.AccessDepthStencilAttachmentRead | core1_0.AccessDepthStencilAttachmentWrite,
				SrcStage:  core1_0.PipelineStageTopOfPipe,
				DstStage:  core1_0.PipelineStageEarlyFragmentTests,
			},
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			transition, err := LayoutTransition(testCase.old, testCase.new)
			require.NoError(t, err)
			require.Equal(t, testCase.expected, transition)
		})
	}

	require.Len(t, transitions, len(testCases))
}

func TestLayoutTransitionUnlisted(t *testing.T) {
	pairs := [][2]core1_0.ImageLayout{
		{core1_0.ImageLayoutShaderReadOnlyOptimal, core1_0.ImageLayoutTransferDstOptimal},
		{core1_0.ImageLayoutUndefined, core1_0.ImageLayoutShaderReadOnlyOptimal},
		{core1_0.ImageLayoutTransferDstOptimal, core1_0.ImageLayoutTransferDstOptimal},
		{core1_0.ImageLayoutUndefined, core1_0.ImageLayoutColorAttachmentOptimal},
	}

	for _, pair := range pairs {
		_, err := LayoutTransition(pair[0], pair[1])
		require.Error(t, err)
		require.True(t, errors.Is(err, gpu.ErrUnsupportedLayoutTransition), "%s -> %s", pair[0], pair[1])
	}
}

func TestAspectFor(t *testing.T) {
	require.Equal(t, core1_0.ImageAspectColor, AspectFor(core1_0.FormatR8G8B8A8SRGB, core1_0.ImageLayoutTransferDstOptimal))
	require.Equal(t, core1_0.ImageAspectDepth, AspectFor(core1_0.FormatD32SignedFloat, core1_0.ImageLayoutDepthStencilAttachmentOptimal))
	require.Equal(t, core1_0.ImageAspectDepth|core1_0.ImageAspectStencil, AspectFor(core1_0.FormatD32SignedFloatS8UnsignedInt, core1_0.ImageLayoutDepthStencilAttachmentOptimal))
}
