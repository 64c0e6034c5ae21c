// Package frame drives the per-frame submission protocol: acquire, wait for the
// image, record, submit, present, advance. It owns the frame-in-flight
// synchronization objects and the per-image in-flight tracking, and is the only
// place that decides whether a driver status is recoverable.
package frame

import (
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/scenes/gpu"
	"github.com/vkngwrapper/scenes/resource"
)

const (
	MinFramesInFlight     = 2
	MaxFramesInFlight     = 3
	DefaultFramesInFlight = 2
	DefaultFenceTimeout   = 5 * time.Second
)

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	FramesInFlight int
	// FenceTimeout bounds every fence wait and acquire. Exceeding it is fatal
	// and reported as ErrDeviceTimeout.
	FenceTimeout time.Duration
	Overlay      Overlay
	Logger       *slog.Logger
	// Clock is used for frame timing. Defaults to hrtime.Now.
	Clock func() time.Duration
}

// Engine runs the frame protocol against one render queue and whatever swap
// chain it is handed each frame. It is not safe for concurrent use; one thread
// drives all frames.
type Engine struct {
	device  gpu.Device
	queue   gpu.Queue
	slots   []*slot
	images  []gpu.Fence
	current int
	timeout time.Duration
	overlay Overlay
	logger  *slog.Logger
	clock   func() time.Duration
	stats   Stats
	scope   resource.Scope
}

// New creates the frame slots and a tracking array for imageCount images.
func New(dev gpu.Device, queue gpu.Queue, imageCount int, options Options) (*Engine, error) {
	if options.FramesInFlight == 0 {
		options.FramesInFlight = DefaultFramesInFlight
	}
	if options.FramesInFlight < MinFramesInFlight || options.FramesInFlight > MaxFramesInFlight {
		return nil, errors.Newf("frames in flight must be between %d and %d, got %d", MinFramesInFlight, MaxFramesInFlight, options.FramesInFlight)
	}
	if options.FenceTimeout <= 0 {
		options.FenceTimeout = DefaultFenceTimeout
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Clock == nil {
		options.Clock = hrtime.Now
	}

	engine := &Engine{
		device:  dev,
		queue:   queue,
		timeout: options.FenceTimeout,
		overlay: options.Overlay,
		logger:  options.Logger,
		clock:   options.Clock,
	}

	slots, err := createSlots(dev, options.FramesInFlight, &engine.scope)
	if err != nil {
		engine.scope.Destroy()
		return nil, errors.Wrap(err, "create frame sync objects")
	}
	engine.slots = slots
	engine.resize(imageCount)

	return engine, nil
}

// SetOverlay installs (or, with nil, removes) the UI overlay hook.
func (e *Engine) SetOverlay(overlay Overlay) {
	e.overlay = overlay
}

func (e *Engine) FramesInFlight() int {
	return len(e.slots)
}

func (e *Engine) resize(imageCount int) {
	e.images = make([]gpu.Fence, imageCount)
	e.stats.Images = make([]ImageStats, imageCount)
}

func (e *Engine) wait(fence gpu.Fence, what string, index int) error {
	status, err := fence.Wait(e.timeout)
	if err != nil {
		return gpu.Fail(gpu.ErrDeviceTimeout, err, "wait for %s %d", what, index)
	}
	if status != gpu.Success {
		return gpu.Fail(gpu.ErrDeviceTimeout, nil, "wait for %s %d: %s after %s", what, index, status, e.timeout)
	}
	return nil
}

// DrawFrame runs one pass of the frame protocol.
//
// It returns Recreate without submitting anything when acquire reports the chain
// out of date, and Recreate after presenting when acquire or present reports it
// suboptimal (or present reports it out of date). Every other failure is a fatal
// error marked with its stage's kind.
func (e *Engine) DrawFrame(chain gpu.Swapchain, scene Scene) (Result, error) {
	start := e.clock()
	current := e.current
	slot := e.slots[current]

	// The slot's semaphores may still be referenced by its previous submission.
	err := e.wait(slot.inFlight, "frame slot", current)
	if err != nil {
		return Success, err
	}

	imageIndex, status, err := chain.AcquireNextImage(e.timeout, slot.presentComplete)
	if err != nil {
		return Success, gpu.Fail(gpu.ErrSwapChainAcquireFailed, err, "acquire next image")
	}

	stale := false
	switch status {
	case gpu.Success:
	case gpu.Suboptimal:
		stale = true
	case gpu.OutOfDate:
		e.stats.StaleFrames++
		e.logger.Debug("swap chain out of date on acquire", slog.Int("slot", current))
		return Recreate, nil
	case gpu.Timeout, gpu.NotReady:
		return Success, gpu.Fail(gpu.ErrDeviceTimeout, nil, "acquire next image: %s after %s", status, e.timeout)
	default:
		return Success, gpu.Fail(gpu.ErrSwapChainAcquireFailed, nil, "acquire next image: unexpected status %s", status)
	}

	if imageIndex < 0 || imageIndex >= len(e.images) {
		return Success, gpu.Fail(gpu.ErrSwapChainAcquireFailed, nil, "acquired image %d outside tracked range %d", imageIndex, len(e.images))
	}
	imageStats := &e.stats.Images[imageIndex]
	imageStats.Acquires++

	// A previous frame from a different slot may still be rendering to this image.
	if fence := e.images[imageIndex]; fence != nil {
		imageStats.Waits++
		err = e.wait(fence, "image", imageIndex)
		if err != nil {
			return Success, err
		}
		e.images[imageIndex] = nil
		imageStats.Clears++
	}

	frame := Frame{
		ImageIndex: imageIndex,
		Slot:       current,
		Number:     e.stats.Frames,
		overlay:    e.overlay,
	}
	cmd, err := scene.Record(frame)
	if err != nil {
		return Success, errors.Wrapf(err, "record frame %d for image %d", frame.Number, imageIndex)
	}

	e.images[imageIndex] = slot.inFlight
	imageStats.Marks++

	err = slot.inFlight.Reset()
	if err != nil {
		return Success, gpu.Fail(gpu.ErrQueueSubmitFailed, err, "reset fence for slot %d", current)
	}

	err = e.queue.Submit(gpu.SubmitInfo{
		CommandBuffers:   []gpu.CommandBuffer{cmd},
		WaitSemaphores:   []gpu.Semaphore{slot.presentComplete},
		WaitStages:       []core1_0.PipelineStageFlags{core1_0.PipelineStageColorAttachmentOutput},
		SignalSemaphores: []gpu.Semaphore{slot.renderComplete},
	}, slot.inFlight)
	if err != nil {
		return Success, gpu.Fail(gpu.ErrQueueSubmitFailed, err, "submit frame %d", frame.Number)
	}

	// The slot is committed once its fence is queued, whatever present says.
	e.current = (e.current + 1) % len(e.slots)
	e.stats.CurrentSlot = e.current
	e.stats.Frames++

	status, err = chain.Present(imageIndex, slot.renderComplete)
	if err != nil {
		return Success, gpu.Fail(gpu.ErrQueuePresentFailed, err, "present image %d", imageIndex)
	}
	switch status {
	case gpu.Success:
	case gpu.Suboptimal, gpu.OutOfDate:
		stale = true
	default:
		return Success, gpu.Fail(gpu.ErrQueuePresentFailed, nil, "present image %d: unexpected status %s", imageIndex, status)
	}

	e.stats.LastFrame = e.clock() - start
	if stale {
		e.stats.StaleFrames++
		return Recreate, nil
	}
	return Success, nil
}

// ResetImages resizes the tracking array to imageCount and marks every entry
// unset. The caller must have waited for the device to go idle, which is what
// makes dropping the tracked fences safe.
func (e *Engine) ResetImages(imageCount int) {
	e.stats.Recreations++
	e.resize(imageCount)
}

// Drain waits for every frame slot's last submission and clears all image
// tracking entries.
func (e *Engine) Drain() error {
	for i, slot := range e.slots {
		err := e.wait(slot.inFlight, "frame slot", i)
		if err != nil {
			return err
		}
	}

	for i, fence := range e.images {
		if fence != nil {
			e.images[i] = nil
			e.stats.Images[i].Clears++
		}
	}
	return nil
}

// Stats returns a copy of the engine counters.
func (e *Engine) Stats() Stats {
	return e.stats.clone()
}

// Destroy releases the frame sync objects. No submission may still be pending.
func (e *Engine) Destroy() {
	e.images = nil
	e.slots = nil
	e.scope.Destroy()
}
