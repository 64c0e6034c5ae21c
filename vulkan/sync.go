package vulkan

import (
	"time"

	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/scenes/gpu"
)

type Fence struct {
	device *Device
	handle core1_0.Fence
}

func (f *Fence) Wait(timeout time.Duration) (gpu.Status, error) {
	res, err := f.device.driver.WaitForFences(true, timeout, f.handle)
	if err != nil {
		return gpu.Success, resultError("wait for fence", res, err)
	}

	status, ok := statusOf(res)
	if !ok {
		return gpu.Success, resultError("wait for fence", res, nil)
	}
	return status, nil
}

func (f *Fence) Reset() error {
	res, err := f.device.driver.ResetFences(f.handle)
	if err != nil {
		return resultError("reset fence", res, err)
	}
	return nil
}

func (f *Fence) Destroy() {
	f.device.driver.DestroyFence(f.handle, nil)
}

type Semaphore struct {
	device *Device
	handle core1_0.Semaphore
}

func (s *Semaphore) Destroy() {
	s.device.driver.DestroySemaphore(s.handle, nil)
}

type Queue struct {
	device *Device
	handle core1_0.Queue
	family int
}

func (q *Queue) Family() int {
	return q.family
}

func (q *Queue) Submit(info gpu.SubmitInfo, fence gpu.Fence) error {
	submit := core1_0.SubmitInfo{
		WaitDstStageMask: info.WaitStages,
	}

	for _, cmd := range info.CommandBuffers {
		buffer, err := unwrap[*CommandBuffer](cmd, "command buffer")
		if err != nil {
			return err
		}
		submit.CommandBuffers = append(submit.CommandBuffers, buffer.handle)
	}

	for _, wait := range info.WaitSemaphores {
		semaphore, err := unwrap[*Semaphore](wait, "semaphore")
		if err != nil {
			return err
		}
		submit.WaitSemaphores = append(submit.WaitSemaphores, semaphore.handle)
	}

	for _, signal := range info.SignalSemaphores {
		semaphore, err := unwrap[*Semaphore](signal, "semaphore")
		if err != nil {
			return err
		}
		submit.SignalSemaphores = append(submit.SignalSemaphores, semaphore.handle)
	}

	var fenceHandle *core1_0.Fence
	if fence != nil {
		typed, err := unwrap[*Fence](fence, "fence")
		if err != nil {
			return err
		}
		fenceHandle = &typed.handle
	}

	res, err := q.device.driver.QueueSubmit(q.handle, fenceHandle, submit)
	if err != nil {
		return resultError("queue submit", res, err)
	}
	return nil
}

func (q *Queue) WaitIdle() error {
	res, err := q.device.driver.QueueWaitIdle(q.handle)
	if err != nil {
		return resultError("wait for queue idle", res, err)
	}
	return nil
}
