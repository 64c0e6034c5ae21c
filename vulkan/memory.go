package vulkan

import (
	"unsafe"

	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/scenes/gpu"
)

func (d *Device) MemoryTypes() []gpu.MemoryType {
	return d.memoryTypes
}

func (d *Device) AllocateMemory(size int, memoryTypeIndex int) (gpu.Memory, error) {
	memory, res, err := d.driver.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  size,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		return nil, resultError("allocate memory", res, err)
	}
	return &Memory{device: d, handle: memory}, nil
}

func (d *Device) CreateBuffer(info gpu.BufferInfo) (gpu.Buffer, error) {
	buffer, res, err := d.driver.CreateBuffer(nil, core1_0.BufferCreateInfo{
		Size:        info.Size,
		Usage:       info.Usage,
		SharingMode: core1_0.SharingModeExclusive,
	})
	if err != nil {
		return nil, resultError("create buffer", res, err)
	}
	return &Buffer{device: d, handle: buffer}, nil
}

func (d *Device) CreateImage(info gpu.ImageInfo) (gpu.Image, error) {
	image, res, err := d.driver.CreateImage(nil, core1_0.ImageCreateInfo{
		ImageType: core1_0.ImageType2D,
		Extent: core1_0.Extent3D{
			Width:  info.Width,
			Height: info.Height,
			Depth:  1,
		},
		MipLevels:     info.MipLevels,
		ArrayLayers:   1,
		Format:        info.Format,
		Tiling:        info.Tiling,
		InitialLayout: core1_0.ImageLayoutUndefined,
		Usage:         info.Usage,
		SharingMode:   core1_0.SharingModeExclusive,
		Samples:       info.Samples,
	})
	if err != nil {
		return nil, resultError("create image", res, err)
	}
	return &Image{device: d, handle: image}, nil
}

func (d *Device) CreateImageView(image gpu.Image, format core1_0.Format, aspect core1_0.ImageAspectFlags, mipLevels int) (gpu.ImageView, error) {
	typed, err := unwrap[*Image](image, "image")
	if err != nil {
		return nil, err
	}
	return d.createImageView(typed.handle, format, aspect, mipLevels)
}

func (d *Device) createImageView(image core1_0.Image, format core1_0.Format, aspect core1_0.ImageAspectFlags, mipLevels int) (*ImageView, error) {
	view, res, err := d.driver.CreateImageView(nil, core1_0.ImageViewCreateInfo{
		Image:    image,
		ViewType: core1_0.ImageViewType2D,
		Format:   format,
		SubresourceRange: core1_0.ImageSubresourceRange{
			AspectMask:     aspect,
			BaseMipLevel:   0,
			LevelCount:     mipLevels,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	})
	if err != nil {
		return nil, resultError("create image view", res, err)
	}
	return &ImageView{device: d, handle: view}, nil
}

func (d *Device) CreateSampler(info gpu.SamplerInfo) (gpu.Sampler, error) {
	create := core1_0.SamplerCreateInfo{
		MagFilter:    info.MagFilter,
		MinFilter:    info.MinFilter,
		AddressModeU: info.AddressMode,
		AddressModeV: info.AddressMode,
		AddressModeW: info.AddressMode,
		BorderColor:  core1_0.BorderColorIntOpaqueBlack,
		MipmapMode:   info.MipmapMode,
		MinLod:       0,
		MaxLod:       info.MaxLod,
	}
	if info.Anisotropy {
		create.AnisotropyEnable = true
		create.MaxAnisotropy = d.adapter.MaxSamplerAnisotropy()
	}

	sampler, res, err := d.driver.CreateSampler(nil, create)
	if err != nil {
		return nil, resultError("create sampler", res, err)
	}
	return &Sampler{device: d, handle: sampler}, nil
}

type Memory struct {
	device *Device
	handle core1_0.DeviceMemory
}

func (m *Memory) Map(offset, size int) ([]byte, error) {
	ptr, res, err := m.device.driver.MapMemory(m.handle, offset, size, 0)
	if err != nil {
		return nil, resultError("map memory", res, err)
	}
	return unsafe.Slice((*byte)(ptr), size), nil
}

func (m *Memory) Unmap() {
	m.device.driver.UnmapMemory(m.handle)
}

func (m *Memory) Destroy() {
	m.device.driver.FreeMemory(m.handle, nil)
}

type Buffer struct {
	device *Device
	handle core1_0.Buffer
}

func (b *Buffer) Handle() core1_0.Buffer {
	return b.handle
}

func (b *Buffer) MemoryRequirements() gpu.MemoryRequirements {
	reqs := b.device.driver.GetBufferMemoryRequirements(b.handle)
	return gpu.MemoryRequirements{
		Size:           reqs.Size,
		Alignment:      reqs.Alignment,
		MemoryTypeBits: reqs.MemoryTypeBits,
	}
}

func (b *Buffer) BindMemory(memory gpu.Memory, offset int) error {
	typed, err := unwrap[*Memory](memory, "memory")
	if err != nil {
		return err
	}

	res, err := b.device.driver.BindBufferMemory(b.handle, typed.handle, offset)
	if err != nil {
		return resultError("bind buffer memory", res, err)
	}
	return nil
}

func (b *Buffer) Destroy() {
	b.device.driver.DestroyBuffer(b.handle, nil)
}

type Image struct {
	device *Device
	handle core1_0.Image
}

func (i *Image) Handle() core1_0.Image {
	return i.handle
}

func (i *Image) MemoryRequirements() gpu.MemoryRequirements {
	reqs := i.device.driver.GetImageMemoryRequirements(i.handle)
	return gpu.MemoryRequirements{
		Size:           reqs.Size,
		Alignment:      reqs.Alignment,
		MemoryTypeBits: reqs.MemoryTypeBits,
	}
}

func (i *Image) BindMemory(memory gpu.Memory, offset int) error {
	typed, err := unwrap[*Memory](memory, "memory")
	if err != nil {
		return err
	}

	res, err := i.device.driver.BindImageMemory(i.handle, typed.handle, offset)
	if err != nil {
		return resultError("bind image memory", res, err)
	}
	return nil
}

func (i *Image) Destroy() {
	i.device.driver.DestroyImage(i.handle, nil)
}

type ImageView struct {
	device *Device
	handle core1_0.ImageView
}

func (v *ImageView) Handle() core1_0.ImageView {
	return v.handle
}

func (v *ImageView) Destroy() {
	v.device.driver.DestroyImageView(v.handle, nil)
}

type Sampler struct {
	device *Device
	handle core1_0.Sampler
}

func (s *Sampler) Handle() core1_0.Sampler {
	return s.handle
}

func (s *Sampler) Destroy() {
	s.device.driver.DestroySampler(s.handle, nil)
}

// BufferHandle returns the driver handle behind a buffer created by Device.
func BufferHandle(buffer gpu.Buffer) (core1_0.Buffer, error) {
	typed, err := unwrap[*Buffer](buffer, "buffer")
	if err != nil {
		return core1_0.Buffer{}, err
	}
	return typed.handle, nil
}

// ImageViewHandle returns the driver handle behind a view created by Device or
// a Swapchain.
func ImageViewHandle(view gpu.ImageView) (core1_0.ImageView, error) {
	typed, err := unwrap[*ImageView](view, "image view")
	if err != nil {
		return core1_0.ImageView{}, err
	}
	return typed.handle, nil
}

// SamplerHandle returns the driver handle behind a sampler created by Device.
func SamplerHandle(sampler gpu.Sampler) (core1_0.Sampler, error) {
	typed, err := unwrap[*Sampler](sampler, "sampler")
	if err != nil {
		return core1_0.Sampler{}, err
	}
	return typed.handle, nil
}
