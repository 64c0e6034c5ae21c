package vulkan

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"github.com/vkngwrapper/scenes/device"
	"github.com/vkngwrapper/scenes/gpu"
)

var depthFormats = []core1_0.Format{
	core1_0.FormatD32SignedFloat,
	core1_0.FormatD32SignedFloatS8UnsignedInt,
	core1_0.FormatD24UnsignedNormalizedS8UnsignedInt,
}

// Device is an open logical device. Besides the frame-lifecycle ports it
// creates memory-backed resources, runs one-shot transfers on the graphics
// queue and hands out the command pool's buffers.
type Device struct {
	adapter         *Adapter
	driver          core1_0.CoreDeviceDriver
	swapchainDriver khr_swapchain.ExtensionDriver
	families        device.QueueFamilies
	queues          map[int]*Queue
	pool            core1_0.CommandPool
	memoryTypes     []gpu.MemoryType
	logger          *slog.Logger
}

func newDevice(adapter *Adapter, driver core1_0.CoreDeviceDriver, families device.QueueFamilies) (*Device, error) {
	d := &Device{
		adapter:         adapter,
		driver:          driver,
		swapchainDriver: khr_swapchain.CreateExtensionDriverFromCoreDriver(driver),
		families:        families,
		queues:          map[int]*Queue{},
		memoryTypes:     adapter.memoryTypes(),
		logger:          adapter.instance.logger,
	}

	for _, family := range families.Unique() {
		d.queues[family] = &Queue{
			device: d,
			handle: driver.GetQueue(family, 0),
			family: family,
		}
	}

	pool, res, err := driver.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		Flags:            core1_0.CommandPoolCreateResetBuffer,
		QueueFamilyIndex: families.Graphics,
	})
	if err != nil {
		driver.DestroyDevice(nil)
		return nil, resultError("create command pool", res, err)
	}
	d.pool = pool

	return d, nil
}

// Driver exposes the device driver for pipeline construction and command
// recording.
func (d *Device) Driver() core1_0.CoreDeviceDriver {
	return d.driver
}

func (d *Device) Adapter() *Adapter {
	return d.adapter
}

func (d *Device) CreateFence(signaled bool) (gpu.Fence, error) {
	var info core1_0.FenceCreateInfo
	if signaled {
		info.Flags = core1_0.FenceCreateSignaled
	}

	fence, res, err := d.driver.CreateFence(nil, info)
	if err != nil {
		return nil, resultError("create fence", res, err)
	}
	return &Fence{device: d, handle: fence}, nil
}

func (d *Device) CreateSemaphore() (gpu.Semaphore, error) {
	semaphore, res, err := d.driver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
	if err != nil {
		return nil, resultError("create semaphore", res, err)
	}
	return &Semaphore{device: d, handle: semaphore}, nil
}

func (d *Device) WaitIdle() error {
	res, err := d.driver.DeviceWaitIdle()
	if err != nil {
		return resultError("wait for device idle", res, err)
	}
	return nil
}

// Queue returns the queue opened for family, or nil if none was requested.
func (d *Device) Queue(family int) gpu.Queue {
	queue, ok := d.queues[family]
	if !ok {
		return nil
	}
	return queue
}

// DepthFormat picks the first depth format usable as an optimal-tiling
// depth/stencil attachment.
func (d *Device) DepthFormat() (core1_0.Format, error) {
	format, ok := d.adapter.supportedFormat(depthFormats, core1_0.FormatFeatureDepthStencilAttachment)
	if !ok {
		return 0, gpu.Fail(gpu.ErrImageCreationFailed, nil, "no supported depth attachment format")
	}
	return format, nil
}

// SwapchainFactory builds chains for surface, presenting on the device's
// present queue.
func (d *Device) SwapchainFactory(surface *Surface) *SwapchainFactory {
	return &SwapchainFactory{device: d, surface: surface}
}

// AllocateCommandBuffers allocates resettable primary command buffers from the
// graphics command pool.
func (d *Device) AllocateCommandBuffers(count int) ([]*CommandBuffer, error) {
	handles, res, err := d.driver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        d.pool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	})
	if err != nil {
		return nil, resultError("allocate command buffers", res, err)
	}

	buffers := make([]*CommandBuffer, 0, len(handles))
	for _, handle := range handles {
		buffers = append(buffers, &CommandBuffer{device: d, handle: handle})
	}
	return buffers, nil
}

func (d *Device) FreeCommandBuffers(buffers []*CommandBuffer) {
	if len(buffers) == 0 {
		return
	}

	handles := make([]core1_0.CommandBuffer, 0, len(buffers))
	for _, buffer := range buffers {
		handles = append(handles, buffer.handle)
	}
	d.driver.FreeCommandBuffers(handles...)
}

// SubmitOnce records into a fresh one-time command buffer, submits it to the
// graphics queue and waits for the queue to go idle.
func (d *Device) SubmitOnce(record func(rec gpu.TransferRecorder) error) error {
	buffers, err := d.AllocateCommandBuffers(1)
	if err != nil {
		return err
	}
	cmd := buffers[0]
	defer d.FreeCommandBuffers(buffers)

	res, err := d.driver.BeginCommandBuffer(cmd.handle, core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	})
	if err != nil {
		return resultError("begin one-shot commands", res, err)
	}

	err = record(&transferRecorder{device: d, cmd: cmd.handle})
	if err != nil {
		return err
	}

	res, err = d.driver.EndCommandBuffer(cmd.handle)
	if err != nil {
		return resultError("end one-shot commands", res, err)
	}

	graphics := d.queues[d.families.Graphics]
	res, err = d.driver.QueueSubmit(graphics.handle, nil, core1_0.SubmitInfo{
		CommandBuffers: []core1_0.CommandBuffer{cmd.handle},
	})
	if err != nil {
		return resultError("submit one-shot commands", res, err)
	}

	return graphics.WaitIdle()
}

// Destroy releases the command pool and the device. Every object created from
// the device must already be destroyed.
func (d *Device) Destroy() {
	if d.driver == nil {
		return
	}

	if d.pool.Initialized() {
		d.driver.DestroyCommandPool(d.pool, nil)
		d.pool = core1_0.CommandPool{}
	}

	d.driver.DestroyDevice(nil)
	d.driver = nil
}

func unwrap[T any](value any, what string) (T, error) {
	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, errors.AssertionFailedf("%s of type %T was not created by this device", what, value)
	}
	return typed, nil
}
