package swapchain

import (
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/scenes/gpu"
)

// SupportDetails is the cached result of the three surface queries.
type SupportDetails struct {
	Capabilities *khr_surface.SurfaceCapabilities
	Formats      []khr_surface.SurfaceFormat
	PresentModes []khr_surface.PresentMode
}

// ChooseSurfaceFormat returns preferred when the surface supports it. Otherwise it
// falls back to the first supported format, or fails with ErrUnsupportedFormat
// when strict is set.
func ChooseSurfaceFormat(available []khr_surface.SurfaceFormat, preferred khr_surface.SurfaceFormat, strict bool) (khr_surface.SurfaceFormat, error) {
	if len(available) == 0 {
		return khr_surface.SurfaceFormat{}, gpu.Fail(gpu.ErrSwapChainCreationFailed, nil, "surface reports no formats")
	}

	for _, format := range available {
		if format.Format == preferred.Format && format.ColorSpace == preferred.ColorSpace {
			return format, nil
		}
	}

	if strict {
		return khr_surface.SurfaceFormat{}, gpu.Fail(gpu.ErrUnsupportedFormat, nil, "surface does not support %s in %s", preferred.Format, preferred.ColorSpace)
	}
	return available[0], nil
}

// ChoosePresentMode returns preferred when available and FIFO, which every
// surface supports, otherwise.
func ChoosePresentMode(available []khr_surface.PresentMode, preferred khr_surface.PresentMode) khr_surface.PresentMode {
	for _, presentMode := range available {
		if presentMode == preferred {
			return presentMode
		}
	}

	return khr_surface.PresentModeFIFO
}

// ChooseExtent uses the surface's current extent unless the surface leaves it to
// the application (width -1), in which case the drawable size is clamped to the
// surface bounds.
func ChooseExtent(capabilities *khr_surface.SurfaceCapabilities, drawableWidth, drawableHeight int) core1_0.Extent2D {
	if capabilities.CurrentExtent.Width != -1 {
		return capabilities.CurrentExtent
	}

	return core1_0.Extent2D{
		Width:  clamp(drawableWidth, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width),
		Height: clamp(drawableHeight, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height),
	}
}

func clamp(value, low, high int) int {
	if value < low {
		value = low
	}
	if value > high {
		value = high
	}
	return value
}

// ChooseImageCount asks for one image more than the minimum, capped by the maximum
// when the surface has one (0 means unbounded).
func ChooseImageCount(capabilities *khr_surface.SurfaceCapabilities) int {
	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && capabilities.MaxImageCount < imageCount {
		imageCount = capabilities.MaxImageCount
	}
	return imageCount
}
