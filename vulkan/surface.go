package vulkan

import (
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

// Surface answers capability queries for one adapter and reports the window's
// drawable size.
type Surface struct {
	driver   khr_surface.ExtensionDriver
	handle   khr_surface.Surface
	physical core1_0.PhysicalDevice
	window   *sdl.Window
}

func (s *Surface) Capabilities() (*khr_surface.SurfaceCapabilities, error) {
	capabilities, res, err := s.driver.GetPhysicalDeviceSurfaceCapabilities(s.handle, s.physical)
	if err != nil {
		return nil, resultError("query surface capabilities", res, err)
	}
	return capabilities, nil
}

func (s *Surface) Formats() ([]khr_surface.SurfaceFormat, error) {
	formats, res, err := s.driver.GetPhysicalDeviceSurfaceFormats(s.handle, s.physical)
	if err != nil {
		return nil, resultError("query surface formats", res, err)
	}
	return formats, nil
}

func (s *Surface) PresentModes() ([]khr_surface.PresentMode, error) {
	modes, res, err := s.driver.GetPhysicalDeviceSurfacePresentModes(s.handle, s.physical)
	if err != nil {
		return nil, resultError("query surface present modes", res, err)
	}
	return modes, nil
}

func (s *Surface) DrawableSize() (int, int) {
	width, height := s.window.VulkanGetDrawableSize()
	return int(width), int(height)
}
