package resource

import (
	"bytes"
	"encoding/binary"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/scenes/gpu"
)

// Allocator creates buffers and images with one dedicated allocation each and
// performs setup-time transfers through a one-shot submitter.
//
// One allocation per resource does not scale past a few hundred objects; large
// scenes should sub-allocate from shared pages instead.
type Allocator struct {
	device    gpu.MemoryDevice
	submitter gpu.OneShotSubmitter
	logger    *slog.Logger
}

func NewAllocator(device gpu.MemoryDevice, submitter gpu.OneShotSubmitter, logger *slog.Logger) *Allocator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Allocator{
		device:    device,
		submitter: submitter,
		logger:    logger,
	}
}

// BufferAllocation is a buffer and the memory bound to it.
type BufferAllocation struct {
	Buffer gpu.Buffer
	Memory gpu.Memory
	Size   int
}

// Destroy releases the buffer before the memory it is bound to.
func (b *BufferAllocation) Destroy() {
	if b.Buffer != nil {
		b.Buffer.Destroy()
		b.Buffer = nil
	}
	if b.Memory != nil {
		b.Memory.Destroy()
		b.Memory = nil
	}
}

// ImageAllocation is an image and the memory bound to it.
type ImageAllocation struct {
	Image     gpu.Image
	Memory    gpu.Memory
	Format    core1_0.Format
	Width     int
	Height    int
	MipLevels int
}

func (i *ImageAllocation) Destroy() {
	if i.Image != nil {
		i.Image.Destroy()
		i.Image = nil
	}
	if i.Memory != nil {
		i.Memory.Destroy()
		i.Memory = nil
	}
}

// CreateBuffer creates a buffer of size bytes and binds it to a fresh allocation
// of the first memory type that satisfies properties. Nothing is leaked on failure.
func (a *Allocator) CreateBuffer(size int, usage core1_0.BufferUsageFlags, properties core1_0.MemoryPropertyFlags) (*BufferAllocation, error) {
	buffer, err := a.device.CreateBuffer(gpu.BufferInfo{Size: size, Usage: usage})
	if err != nil {
		return nil, gpu.Fail(gpu.ErrBufferCreationFailed, err, "create buffer of %d bytes", size)
	}

	memory, err := a.bind(buffer, properties)
	if err != nil {
		buffer.Destroy()
		return nil, err
	}

	a.logger.Debug("created buffer", slog.Int("size", size), slog.String("usage", usage.String()))
	return &BufferAllocation{Buffer: buffer, Memory: memory, Size: size}, nil
}

// CreateImage creates a 2D image and binds it to a fresh allocation.
func (a *Allocator) CreateImage(info gpu.ImageInfo, properties core1_0.MemoryPropertyFlags) (*ImageAllocation, error) {
	if info.MipLevels < 1 {
		info.MipLevels = 1
	}
	if info.Samples == 0 {
		info.Samples = core1_0.Samples1
	}

	image, err := a.device.CreateImage(info)
	if err != nil {
		return nil, gpu.Fail(gpu.ErrImageCreationFailed, err, "create %dx%d image", info.Width, info.Height)
	}

	memory, err := a.bind(image, properties)
	if err != nil {
		image.Destroy()
		return nil, err
	}

	return &ImageAllocation{
		Image:     image,
		Memory:    memory,
		Format:    info.Format,
		Width:     info.Width,
		Height:    info.Height,
		MipLevels: info.MipLevels,
	}, nil
}

func (a *Allocator) bind(resource gpu.Bindable, properties core1_0.MemoryPropertyFlags) (gpu.Memory, error) {
	requirements := resource.MemoryRequirements()
	memoryTypeIndex, err := FindMemoryType(a.device.MemoryTypes(), requirements.MemoryTypeBits, properties)
	if err != nil {
		return nil, err
	}

	memory, err := a.device.AllocateMemory(requirements.Size, memoryTypeIndex)
	if err != nil {
		return nil, gpu.Fail(gpu.ErrMemoryAllocationFailed, err, "allocate %d bytes of memory type %d", requirements.Size, memoryTypeIndex)
	}

	err = resource.BindMemory(memory, 0)
	if err != nil {
		memory.Destroy()
		return nil, gpu.Fail(gpu.ErrMemoryAllocationFailed, err, "bind memory")
	}

	return memory, nil
}

// CreateImageView creates a 2D view of image covering mipLevels levels.
func (a *Allocator) CreateImageView(image gpu.Image, format core1_0.Format, aspect core1_0.ImageAspectFlags, mipLevels int) (gpu.ImageView, error) {
	view, err := a.device.CreateImageView(image, format, aspect, mipLevels)
	if err != nil {
		return nil, gpu.Fail(gpu.ErrImageCreationFailed, err, "create image view")
	}
	return view, nil
}

func (a *Allocator) CreateSampler(info gpu.SamplerInfo) (gpu.Sampler, error) {
	sampler, err := a.device.CreateSampler(info)
	if err != nil {
		return nil, gpu.Fail(gpu.ErrImageCreationFailed, err, "create sampler")
	}
	return sampler, nil
}

// WriteData encodes data with the driver byte order and copies it into memory at
// offset. data must be a fixed-size value or a slice of fixed-size values.
func WriteData(memory gpu.Memory, offset int, data any) error {
	buf := &bytes.Buffer{}
	err := binary.Write(buf, common.ByteOrder, data)
	if err != nil {
		return errors.Wrap(err, "encode host data")
	}

	mapped, err := memory.Map(offset, buf.Len())
	if err != nil {
		return gpu.Fail(gpu.ErrMemoryAllocationFailed, err, "map %d bytes", buf.Len())
	}
	defer memory.Unmap()

	copy(mapped, buf.Bytes())
	return nil
}

// CreateStagingBuffer returns a host-visible, host-coherent transfer source filled
// with data.
func (a *Allocator) CreateStagingBuffer(data any) (*BufferAllocation, error) {
	size := binary.Size(data)
	if size <= 0 {
		return nil, gpu.Fail(gpu.ErrBufferCreationFailed, nil, "staging data of type %T has no fixed size", data)
	}

	staging, err := a.CreateBuffer(size, core1_0.BufferUsageTransferSrc, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		return nil, err
	}

	err = WriteData(staging.Memory, 0, data)
	if err != nil {
		staging.Destroy()
		return nil, err
	}

	return staging, nil
}

// UploadViaStaging copies data into a new device-local buffer with usage plus
// TRANSFER_DST. It blocks until the copy has finished, so it belongs in setup
// code only.
func (a *Allocator) UploadViaStaging(data any, usage core1_0.BufferUsageFlags) (*BufferAllocation, error) {
	staging, err := a.CreateStagingBuffer(data)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()

	final, err := a.CreateBuffer(staging.Size, usage|core1_0.BufferUsageTransferDst, core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return nil, err
	}

	err = a.submitter.SubmitOnce(func(rec gpu.TransferRecorder) error {
		return rec.CopyBuffer(staging.Buffer, final.Buffer, staging.Size)
	})
	if err != nil {
		final.Destroy()
		return nil, gpu.Fail(gpu.ErrQueueSubmitFailed, err, "staging copy of %d bytes", staging.Size)
	}

	return final, nil
}

// UploadImage creates a sampled device-local image from tightly packed pixels and
// leaves it in SHADER_READ_ONLY_OPTIMAL.
func (a *Allocator) UploadImage(pixels []byte, info gpu.ImageInfo) (*ImageAllocation, error) {
	staging, err := a.CreateStagingBuffer(pixels)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()

	info.Tiling = core1_0.ImageTilingOptimal
	info.Usage |= core1_0.ImageUsageTransferDst | core1_0.ImageUsageSampled
	image, err := a.CreateImage(info, core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return nil, err
	}

	toTransfer, err := a.barrier(image, core1_0.ImageLayoutUndefined, core1_0.ImageLayoutTransferDstOptimal)
	if err != nil {
		image.Destroy()
		return nil, err
	}
	toShader, err := a.barrier(image, core1_0.ImageLayoutTransferDstOptimal, core1_0.ImageLayoutShaderReadOnlyOptimal)
	if err != nil {
		image.Destroy()
		return nil, err
	}

	err = a.submitter.SubmitOnce(func(rec gpu.TransferRecorder) error {
		err := rec.PipelineBarrier(toTransfer)
		if err != nil {
			return err
		}

		err = rec.CopyBufferToImage(staging.Buffer, image.Image, image.Width, image.Height)
		if err != nil {
			return err
		}

		return rec.PipelineBarrier(toShader)
	})
	if err != nil {
		image.Destroy()
		return nil, gpu.Fail(gpu.ErrQueueSubmitFailed, err, "image upload")
	}

	return image, nil
}

// TransitionImageLayout moves every mip level of image from oldLayout to newLayout
// in a one-time command buffer and waits for it.
func (a *Allocator) TransitionImageLayout(image *ImageAllocation, oldLayout, newLayout core1_0.ImageLayout) error {
	barrier, err := a.barrier(image, oldLayout, newLayout)
	if err != nil {
		return err
	}

	err = a.submitter.SubmitOnce(func(rec gpu.TransferRecorder) error {
		return rec.PipelineBarrier(barrier)
	})
	if err != nil {
		return gpu.Fail(gpu.ErrQueueSubmitFailed, err, "layout transition %s -> %s", oldLayout, newLayout)
	}
	return nil
}

func (a *Allocator) barrier(image *ImageAllocation, oldLayout, newLayout core1_0.ImageLayout) (gpu.ImageBarrier, error) {
	transition, err := LayoutTransition(oldLayout, newLayout)
	if err != nil {
		return gpu.ImageBarrier{}, err
	}

	return gpu.ImageBarrier{
		Image:     image.Image,
		OldLayout: oldLayout,
		NewLayout: newLayout,
		SrcAccess: transition.SrcAccess,
		DstAccess: transition.DstAccess,
		SrcStage:  transition.SrcStage,
		DstStage:  transition.DstStage,
		Aspect:    AspectFor(image.Format, newLayout),
		MipLevels: image.MipLevels,
	}, nil
}
