package pipeline

import (
	"strconv"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/scenes/gpu"
	"github.com/vkngwrapper/scenes/swapchain"
)

// The bundle only touches the driver through the builders handed to the build
// function, so these tests register plain releases instead.

func TestBundleRebuildReleasesPreviousGeneration(t *testing.T) {
	var events []string
	bundle := NewBundle(nil, func(b *Builder, chain *swapchain.Chain) error {
		generation := chain.Generation
		b.Scope().Defer(func() { events = append(events, "release framebuffers", strconv.Itoa(generation)) })
		b.Scope().Defer(func() { events = append(events, "release commands", strconv.Itoa(generation)) })
		return nil
	}, nil)
	bundle.Persistent().Scope().Defer(func() { events = append(events, "release pipeline") })

	require.NoError(t, bundle.RebuildChain(&swapchain.Chain{Generation: 1}))
	require.Empty(t, events)

	require.NoError(t, bundle.RebuildChain(&swapchain.Chain{Generation: 2}))
	require.Equal(t, []string{"release commands", "1", "release framebuffers", "1"}, events)

	events = nil
	bundle.Destroy()
	require.Equal(t, []string{"release commands", "2", "release framebuffers", "2", "release pipeline"}, events)
}

func TestBundleReleaseChainIsIdempotent(t *testing.T) {
	releases := 0
	bundle := NewBundle(nil, func(b *Builder, chain *swapchain.Chain) error {
		b.Scope().Defer(func() { releases++ })
		return nil
	}, nil)

	require.NoError(t, bundle.RebuildChain(&swapchain.Chain{Generation: 1}))
	bundle.ReleaseChain()
	bundle.ReleaseChain()
	bundle.Destroy()
	require.Equal(t, 1, releases)
}

func TestBundleFailedBuildReleasesPartialWork(t *testing.T) {
	releases := 0
	bundle := NewBundle(nil, func(b *Builder, chain *swapchain.Chain) error {
		b.Scope().Defer(func() { releases++ })
		return errors.New("framebuffer 2")
	}, nil)

	err := bundle.RebuildChain(&swapchain.Chain{Generation: 4})
	require.Error(t, err)
	require.True(t, errors.Is(err, gpu.ErrPipelineCreationFailed))
	require.Contains(t, err.Error(), "generation 4")
	require.Equal(t, 1, releases)

	bundle.Destroy()
	require.Equal(t, 1, releases)
}

func TestBundleRejectsFormatChange(t *testing.T) {
	builds := 0
	bundle := NewBundle(nil, func(b *Builder, chain *swapchain.Chain) error {
		builds++
		return nil
	}, nil)

	srgb := khr_surface.SurfaceFormat{Format: core1_0.FormatB8G8R8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear}
	unorm := khr_surface.SurfaceFormat{Format: core1_0.FormatB8G8R8A8UnsignedNormalized, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear}

	require.NoError(t, bundle.RebuildChain(&swapchain.Chain{Format: srgb, Generation: 1}))
	require.NoError(t, bundle.RebuildChain(&swapchain.Chain{Format: srgb, Generation: 2}))

	err := bundle.RebuildChain(&swapchain.Chain{Format: unorm, Generation: 3})
	require.Error(t, err)
	require.True(t, errors.Is(err, gpu.ErrPipelineCreationFailed))
	require.Contains(t, err.Error(), "generation 3")
	require.Equal(t, 2, builds)

	require.NoError(t, bundle.RebuildChain(&swapchain.Chain{Format: srgb, Generation: 4}))
	require.Equal(t, 3, builds)
	bundle.Destroy()
}

func TestBytesToBytecode(t *testing.T) {
	code, err := bytesToBytecode([]byte{1, 0, 0, 0, 0, 1, 0, 0})
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 256}, code)

	_, err = bytesToBytecode(nil)
	require.Error(t, err)
}
