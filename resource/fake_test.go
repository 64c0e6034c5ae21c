package resource

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/scenes/gpu"
)

// fakeDevice counts live driver objects so tests can assert nothing leaks.
type fakeDevice struct {
	types          []gpu.MemoryType
	typeBits       uint32
	liveBuffers    int
	liveImages     int
	liveMemory     int
	liveViews      int
	liveSamplers   int
	failAllocation bool
	failBind       bool
	lastBufferInfo gpu.BufferInfo
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		types: []gpu.MemoryType{
			{PropertyFlags: core1_0.MemoryPropertyDeviceLocal},
			{PropertyFlags: core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent},
		},
		typeBits: 0b11,
	}
}

func (d *fakeDevice) MemoryTypes() []gpu.MemoryType { return d.types }

func (d *fakeDevice) CreateBuffer(info gpu.BufferInfo) (gpu.Buffer, error) {
	d.liveBuffers++
	d.lastBufferInfo = info
	return &fakeBindable{device: d, size: info.Size, live: &d.liveBuffers}, nil
}

func (d *fakeDevice) CreateImage(info gpu.ImageInfo) (gpu.Image, error) {
	d.liveImages++
	return &fakeBindable{device: d, size: info.Width * info.Height * 4, live: &d.liveImages}, nil
}

func (d *fakeDevice) CreateImageView(image gpu.Image, format core1_0.Format, aspect core1_0.ImageAspectFlags, mipLevels int) (gpu.ImageView, error) {
	d.liveViews++
	return fakeDestroyer{live: &d.liveViews}, nil
}

func (d *fakeDevice) CreateSampler(info gpu.SamplerInfo) (gpu.Sampler, error) {
	d.liveSamplers++
	return fakeDestroyer{live: &d.liveSamplers}, nil
}

func (d *fakeDevice) AllocateMemory(size int, memoryTypeIndex int) (gpu.Memory, error) {
	if d.failAllocation {
		return nil, errors.New("VK_ERROR_OUT_OF_DEVICE_MEMORY")
	}
	d.liveMemory++
	return &fakeMemory{data: make([]byte, size), typeIndex: memoryTypeIndex, live: &d.liveMemory}, nil
}

func (d *fakeDevice) live() int {
	return d.liveBuffers + d.liveImages + d.liveMemory + d.liveViews + d.liveSamplers
}

type fakeDestroyer struct {
	live *int
}

func (f fakeDestroyer) Destroy() { *f.live-- }

type fakeBindable struct {
	device *fakeDevice
	size   int
	live   *int
	bound  *fakeMemory
}

func (b *fakeBindable) Destroy() { *b.live-- }

func (b *fakeBindable) MemoryRequirements() gpu.MemoryRequirements {
	return gpu.MemoryRequirements{Size: b.size, Alignment: 4, MemoryTypeBits: b.device.typeBits}
}

func (b *fakeBindable) BindMemory(memory gpu.Memory, offset int) error {
	if b.device.failBind {
		return errors.New("bind failed")
	}
	b.bound = memory.(*fakeMemory)
	return nil
}

type fakeMemory struct {
	data      []byte
	typeIndex int
	mapped    bool
	live      *int
}

func (m *fakeMemory) Destroy() { *m.live-- }

func (m *fakeMemory) Map(offset, size int) ([]byte, error) {
	m.mapped = true
	return m.data[offset : offset+size], nil
}

func (m *fakeMemory) Unmap() { m.mapped = false }

// fakeSubmitter runs recordings immediately and keeps a log of commands.
type fakeSubmitter struct {
	submits  int
	commands []string
	barriers []gpu.ImageBarrier
	fail     error
}

func (s *fakeSubmitter) SubmitOnce(record func(rec gpu.TransferRecorder) error) error {
	if s.fail != nil {
		return s.fail
	}
	s.submits++
	return record(s)
}

func (s *fakeSubmitter) CopyBuffer(src, dst gpu.Buffer, size int) error {
	copy(dst.(*fakeBindable).bound.data, src.(*fakeBindable).bound.data[:size])
	s.commands = append(s.commands, "copy-buffer")
	return nil
}

func (s *fakeSubmitter) CopyBufferToImage(src gpu.Buffer, dst gpu.Image, width, height int) error {
	s.commands = append(s.commands, "copy-buffer-to-image")
	return nil
}

func (s *fakeSubmitter) PipelineBarrier(barrier gpu.ImageBarrier) error {
	s.barriers = append(s.barriers, barrier)
	s.commands = append(s.commands, "barrier")
	return nil
}
