package gpu

import (
	"time"

	"github.com/vkngwrapper/core/v3/core1_0"
)

// SubmitInfo describes one batch handed to a Queue.
type SubmitInfo struct {
	CommandBuffers   []CommandBuffer
	WaitSemaphores   []Semaphore
	WaitStages       []core1_0.PipelineStageFlags
	SignalSemaphores []Semaphore
}

// Queue is a device queue that accepts command buffers.
type Queue interface {
	// Submit is asynchronous with respect to the CPU. fence may be nil.
	Submit(info SubmitInfo, fence Fence) error
	WaitIdle() error
}

// Swapchain is a presentable image chain bound to a surface and a present queue.
type Swapchain interface {
	Destroyer
	ImageCount() int
	// CreateImageView creates a 2D color view of image index with identity swizzle,
	// one mip level and one layer.
	CreateImageView(index int) (ImageView, error)
	// AcquireNextImage signals signal once the returned image is available.
	// OutOfDate, Suboptimal and Timeout come back as a Status with a nil error.
	AcquireNextImage(timeout time.Duration, signal Semaphore) (int, Status, error)
	// Present queues image index for display once wait is signaled.
	Present(index int, wait Semaphore) (Status, error)
}

// ImageView is a view of an image usable as an attachment or sampled resource.
type ImageView interface {
	Destroyer
}
