package vulkan

import (
	"time"

	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"github.com/vkngwrapper/scenes/gpu"
	"github.com/vkngwrapper/scenes/swapchain"
)

// SwapchainFactory creates chains on one surface for one device.
type SwapchainFactory struct {
	device  *Device
	surface *Surface
}

func (f *SwapchainFactory) CreateSwapchain(info swapchain.CreateInfo) (gpu.Swapchain, error) {
	create := khr_swapchain.SwapchainCreateInfo{
		Surface: f.surface.handle,

		MinImageCount:    info.ImageCount,
		ImageFormat:      info.Format.Format,
		ImageColorSpace:  info.Format.ColorSpace,
		ImageExtent:      info.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,

		ImageSharingMode:   info.SharingMode(),
		QueueFamilyIndices: info.QueueFamilyIndices(),

		PreTransform:   info.Capabilities.CurrentTransform,
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    info.PresentMode,
		Clipped:        true,
	}

	if info.Old != nil {
		old, err := unwrap[*Swapchain](info.Old, "swap chain")
		if err != nil {
			return nil, err
		}
		create.OldSwapchain = &old.handle
	}

	driver := f.device.swapchainDriver
	handle, res, err := driver.CreateSwapchain(nil, create)
	if err != nil {
		return nil, resultError("create swap chain", res, err)
	}

	images, res, err := driver.GetSwapchainImages(handle)
	if err != nil {
		driver.DestroySwapchain(handle, nil)
		return nil, resultError("get swap chain images", res, err)
	}

	return &Swapchain{
		device:  f.device,
		handle:  handle,
		images:  images,
		format:  info.Format.Format,
		present: f.device.queues[f.device.families.Present],
	}, nil
}

// Swapchain is a live presentable chain and the images it owns.
type Swapchain struct {
	device  *Device
	handle  khr_swapchain.Swapchain
	images  []core1_0.Image
	format  core1_0.Format
	present *Queue
}

func (s *Swapchain) ImageCount() int {
	return len(s.images)
}

func (s *Swapchain) CreateImageView(index int) (gpu.ImageView, error) {
	return s.device.createImageView(s.images[index], s.format, core1_0.ImageAspectColor, 1)
}

func (s *Swapchain) AcquireNextImage(timeout time.Duration, signal gpu.Semaphore) (int, gpu.Status, error) {
	semaphore, err := unwrap[*Semaphore](signal, "semaphore")
	if err != nil {
		return 0, gpu.Success, err
	}

	index, res, err := s.device.swapchainDriver.AcquireNextImage(s.handle, timeout, &semaphore.handle, nil)
	status, ok := statusOf(res)
	if ok {
		return index, status, nil
	}
	return 0, gpu.Success, resultError("acquire next image", res, err)
}

func (s *Swapchain) Present(index int, wait gpu.Semaphore) (gpu.Status, error) {
	semaphore, err := unwrap[*Semaphore](wait, "semaphore")
	if err != nil {
		return gpu.Success, err
	}

	res, err := s.device.swapchainDriver.QueuePresent(s.present.handle, khr_swapchain.PresentInfo{
		WaitSemaphores: []core1_0.Semaphore{semaphore.handle},
		Swapchains:     []khr_swapchain.Swapchain{s.handle},
		ImageIndices:   []int{index},
	})
	status, ok := statusOf(res)
	if ok {
		return status, nil
	}
	return gpu.Success, resultError("queue present", res, err)
}

func (s *Swapchain) Destroy() {
	s.device.swapchainDriver.DestroySwapchain(s.handle, nil)
	s.images = nil
}
