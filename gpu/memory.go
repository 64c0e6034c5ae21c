package gpu

import "github.com/vkngwrapper/core/v3/core1_0"

// MemoryRequirements mirrors what the driver reports for a buffer or image.
type MemoryRequirements struct {
	Size           int
	Alignment      int
	MemoryTypeBits uint32
}

// MemoryType is one entry of the adapter's memory type list.
type MemoryType struct {
	PropertyFlags core1_0.MemoryPropertyFlags
	HeapIndex     int
}

// Memory is one device memory allocation.
type Memory interface {
	Destroyer
	// Map returns a host view of size bytes starting at offset. The slice is only
	// valid until Unmap.
	Map(offset, size int) ([]byte, error)
	Unmap()
}

// Bindable is a resource whose backing memory is bound after creation.
type Bindable interface {
	Destroyer
	MemoryRequirements() MemoryRequirements
	BindMemory(memory Memory, offset int) error
}

type Buffer interface {
	Bindable
}

type Image interface {
	Bindable
}

type Sampler interface {
	Destroyer
}

type BufferInfo struct {
	Size  int
	Usage core1_0.BufferUsageFlags
}

type ImageInfo struct {
	Width, Height int
	MipLevels     int
	Samples       core1_0.SampleCountFlags
	Format        core1_0.Format
	Tiling        core1_0.ImageTiling
	Usage         core1_0.ImageUsageFlags
}

type SamplerInfo struct {
	MagFilter   core1_0.Filter
	MinFilter   core1_0.Filter
	AddressMode core1_0.SamplerAddressMode
	MipmapMode  core1_0.SamplerMipmapMode
	Anisotropy  bool
	MaxLod      float32
}

// MemoryDevice creates memory-backed resources.
type MemoryDevice interface {
	MemoryTypes() []MemoryType
	CreateBuffer(info BufferInfo) (Buffer, error)
	CreateImage(info ImageInfo) (Image, error)
	CreateImageView(image Image, format core1_0.Format, aspect core1_0.ImageAspectFlags, mipLevels int) (ImageView, error)
	CreateSampler(info SamplerInfo) (Sampler, error)
	AllocateMemory(size int, memoryTypeIndex int) (Memory, error)
}

// ImageBarrier is a single image memory barrier plus the stages it sits between.
type ImageBarrier struct {
	Image     Image
	OldLayout core1_0.ImageLayout
	NewLayout core1_0.ImageLayout
	SrcAccess core1_0.AccessFlags
	DstAccess core1_0.AccessFlags
	SrcStage  core1_0.PipelineStageFlags
	DstStage  core1_0.PipelineStageFlags
	Aspect    core1_0.ImageAspectFlags
	MipLevels int
}

// TransferRecorder records transfer commands into a one-time command buffer.
type TransferRecorder interface {
	CopyBuffer(src, dst Buffer, size int) error
	CopyBufferToImage(src Buffer, dst Image, width, height int) error
	PipelineBarrier(barrier ImageBarrier) error
}

// OneShotSubmitter runs record against a fresh one-time command buffer, submits it to
// the render queue and blocks until the queue is idle. Setup-time use only.
type OneShotSubmitter interface {
	SubmitOnce(record func(rec TransferRecorder) error) error
}
