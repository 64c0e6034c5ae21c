package vulkan

import (
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/scenes/gpu"
)

// CommandBuffer is a resettable primary command buffer from the device's
// graphics command pool.
type CommandBuffer struct {
	device *Device
	handle core1_0.CommandBuffer
}

func (c *CommandBuffer) Handle() core1_0.CommandBuffer {
	return c.handle
}

func (c *CommandBuffer) Reset() error {
	res, err := c.device.driver.ResetCommandBuffer(c.handle, 0)
	if err != nil {
		return resultError("reset command buffer", res, err)
	}
	return nil
}

// Begin resets the buffer and starts recording.
func (c *CommandBuffer) Begin() error {
	err := c.Reset()
	if err != nil {
		return err
	}

	res, err := c.device.driver.BeginCommandBuffer(c.handle, core1_0.CommandBufferBeginInfo{})
	if err != nil {
		return resultError("begin command buffer", res, err)
	}
	return nil
}

func (c *CommandBuffer) End() error {
	res, err := c.device.driver.EndCommandBuffer(c.handle)
	if err != nil {
		return resultError("end command buffer", res, err)
	}
	return nil
}

type transferRecorder struct {
	device *Device
	cmd    core1_0.CommandBuffer
}

func (r *transferRecorder) CopyBuffer(src, dst gpu.Buffer, size int) error {
	srcHandle, err := BufferHandle(src)
	if err != nil {
		return err
	}
	dstHandle, err := BufferHandle(dst)
	if err != nil {
		return err
	}

	return r.device.driver.CmdCopyBuffer(r.cmd, srcHandle, dstHandle, core1_0.BufferCopy{
		SrcOffset: 0,
		DstOffset: 0,
		Size:      size,
	})
}

func (r *transferRecorder) CopyBufferToImage(src gpu.Buffer, dst gpu.Image, width, height int) error {
	srcHandle, err := BufferHandle(src)
	if err != nil {
		return err
	}
	image, err := unwrap[*Image](dst, "image")
	if err != nil {
		return err
	}

	return r.device.driver.CmdCopyBufferToImage(r.cmd, srcHandle, image.handle, core1_0.ImageLayoutTransferDstOptimal,
		core1_0.BufferImageCopy{
			ImageSubresource: core1_0.ImageSubresourceLayers{
				AspectMask:     core1_0.ImageAspectColor,
				MipLevel:       0,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
			ImageOffset: core1_0.Offset3D{X: 0, Y: 0, Z: 0},
			ImageExtent: core1_0.Extent3D{Width: width, Height: height, Depth: 1},
		},
	)
}

func (r *transferRecorder) PipelineBarrier(barrier gpu.ImageBarrier) error {
	image, err := unwrap[*Image](barrier.Image, "image")
	if err != nil {
		return err
	}

	return r.device.driver.CmdPipelineBarrier(r.cmd, barrier.SrcStage, barrier.DstStage, 0, nil, nil, []core1_0.ImageMemoryBarrier{
		{
			OldLayout:           barrier.OldLayout,
			NewLayout:           barrier.NewLayout,
			SrcQueueFamilyIndex: -1,
			DstQueueFamilyIndex: -1,
			Image:               image.handle,
			SubresourceRange: core1_0.ImageSubresourceRange{
				AspectMask:     barrier.Aspect,
				BaseMipLevel:   0,
				LevelCount:     barrier.MipLevels,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
			SrcAccessMask: barrier.SrcAccess,
			DstAccessMask: barrier.DstAccess,
		},
	})
}
