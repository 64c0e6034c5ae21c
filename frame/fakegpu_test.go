package frame

import (
	"fmt"
	"time"

	"github.com/vkngwrapper/scenes/gpu"
)

// fakeClock is the fake GPU's timeline. It only moves forward: submissions tick
// it by one and fence waits jump it to the fence's completion time.
type fakeClock struct {
	now time.Duration
}

func (c *fakeClock) Now() time.Duration {
	return c.now
}

func (c *fakeClock) advanceTo(t time.Duration) {
	if t > c.now {
		c.now = t
	}
}

// fakeGPU executes submissions on a simulated timeline. Each submission completes
// latency after it was queued, unless its fence is set to hang.
type fakeGPU struct {
	clock       *fakeClock
	latency     time.Duration
	fences      []*fakeFence
	semaphores  int
	submissions []*submission
	events      []string
	idleWaits   int

	// lastByImage is the most recent submission that rendered to each image.
	lastByImage map[int]*submission
}

type submission struct {
	imageIndex int
	fence      *fakeFence
	queuedAt   time.Duration
	doneAt     time.Duration

	// observed is set once a CPU wait has seen this submission complete.
	observed bool
}

func newFakeGPU(latency time.Duration) *fakeGPU {
	return &fakeGPU{
		clock:       &fakeClock{},
		latency:     latency,
		lastByImage: map[int]*submission{},
	}
}

func (g *fakeGPU) logf(format string, args ...any) {
	g.events = append(g.events, fmt.Sprintf(format, args...))
}

func (g *fakeGPU) CreateFence(signaled bool) (gpu.Fence, error) {
	fence := &fakeFence{gpu: g, id: len(g.fences), signaled: signaled}
	g.fences = append(g.fences, fence)
	return fence, nil
}

func (g *fakeGPU) CreateSemaphore() (gpu.Semaphore, error) {
	g.semaphores++
	return &fakeSemaphore{gpu: g}, nil
}

func (g *fakeGPU) WaitIdle() error {
	g.idleWaits++
	for _, fence := range g.fences {
		if fence.pending != nil && !fence.hang {
			fence.complete()
		}
	}
	return nil
}

func (g *fakeGPU) Submit(info gpu.SubmitInfo, fence gpu.Fence) error {
	g.clock.now++
	cmd := info.CommandBuffers[0].(*fakeCommandBuffer)
	sub := &submission{
		imageIndex: cmd.imageIndex,
		queuedAt:   g.clock.now,
		doneAt:     g.clock.now + g.latency,
	}
	if fence != nil {
		f := fence.(*fakeFence)
		if f.signaled || f.pending != nil {
			return fmt.Errorf("fence %d submitted without reset", f.id)
		}
		sub.fence = f
		f.pending = sub
	}
	g.submissions = append(g.submissions, sub)
	g.lastByImage[cmd.imageIndex] = sub
	g.logf("submit image %d @%d", cmd.imageIndex, g.clock.now)
	return nil
}

func (g *fakeGPU) liveFences() int {
	live := 0
	for _, fence := range g.fences {
		if !fence.destroyed {
			live++
		}
	}
	return live
}

type fakeFence struct {
	gpu       *fakeGPU
	id        int
	signaled  bool
	pending   *submission
	hang      bool
	destroyed bool

	// waitReturns is the clock value at each successful wait return.
	waitReturns []time.Duration
}

func (f *fakeFence) complete() {
	f.gpu.clock.advanceTo(f.pending.doneAt)
	f.pending.observed = true
	f.pending = nil
	f.signaled = true
}

func (f *fakeFence) Wait(timeout time.Duration) (gpu.Status, error) {
	if f.pending != nil {
		if f.hang || f.pending.doneAt-f.gpu.clock.now > timeout {
			f.gpu.clock.advanceTo(f.gpu.clock.now + timeout)
			return gpu.Timeout, nil
		}
		f.complete()
	}
	if !f.signaled {
		// Reset and never submitted: nothing will ever signal it.
		f.gpu.clock.advanceTo(f.gpu.clock.now + timeout)
		return gpu.Timeout, nil
	}

	f.waitReturns = append(f.waitReturns, f.gpu.clock.now)
	f.gpu.logf("wait fence %d returned @%d", f.id, f.gpu.clock.now)
	return gpu.Success, nil
}

func (f *fakeFence) Reset() error {
	if f.pending != nil {
		return fmt.Errorf("fence %d reset while in flight", f.id)
	}
	f.signaled = false
	return nil
}

func (f *fakeFence) Destroy() {
	f.destroyed = true
}

type fakeSemaphore struct {
	gpu       *fakeGPU
	destroyed bool
}

func (s *fakeSemaphore) Destroy() {
	s.destroyed = true
	s.gpu.semaphores--
}

type fakeCommandBuffer struct {
	imageIndex int
}

func (c *fakeCommandBuffer) Reset() error {
	return nil
}

// fakeChain hands out images round-robin unless a script is set, and reports
// scripted statuses for acquire and present.
type fakeChain struct {
	gpu           *fakeGPU
	images        int
	next          int
	script        []int
	acquireStatus []gpu.Status
	presentStatus []gpu.Status
	acquires      int
	presents      []int
	destroyed     bool
}

func (c *fakeChain) Destroy() {
	c.destroyed = true
}

func (c *fakeChain) ImageCount() int {
	return c.images
}

func (c *fakeChain) CreateImageView(index int) (gpu.ImageView, error) {
	return nil, nil
}

func (c *fakeChain) AcquireNextImage(timeout time.Duration, signal gpu.Semaphore) (int, gpu.Status, error) {
	call := c.acquires
	c.acquires++

	status := gpu.Success
	if call < len(c.acquireStatus) {
		status = c.acquireStatus[call]
	}
	if status == gpu.OutOfDate {
		return 0, status, nil
	}

	var index int
	if call < len(c.script) {
		index = c.script[call]
	} else {
		index = c.next
		c.next = (c.next + 1) % c.images
	}
	c.gpu.logf("acquire image %d", index)
	return index, status, nil
}

func (c *fakeChain) Present(index int, wait gpu.Semaphore) (gpu.Status, error) {
	call := len(c.presents)
	c.presents = append(c.presents, index)
	if call < len(c.presentStatus) {
		return c.presentStatus[call], nil
	}
	return gpu.Success, nil
}

// fakeScene records one command buffer per image and checks that the image's
// previous submission was observed complete before re-recording.
type fakeScene struct {
	gpu        *fakeGPU
	buffers    map[int]*fakeCommandBuffer
	records    []Frame
	recordedAt []time.Duration
	violations []string
}

func newFakeScene(g *fakeGPU) *fakeScene {
	return &fakeScene{gpu: g, buffers: map[int]*fakeCommandBuffer{}}
}

func (s *fakeScene) Record(f Frame) (gpu.CommandBuffer, error) {
	if prior, ok := s.gpu.lastByImage[f.ImageIndex]; ok && !prior.observed {
		s.violations = append(s.violations, fmt.Sprintf("image %d re-recorded at %d before submission queued at %d was observed", f.ImageIndex, s.gpu.clock.now, prior.queuedAt))
	}

	cmd, ok := s.buffers[f.ImageIndex]
	if !ok {
		cmd = &fakeCommandBuffer{imageIndex: f.ImageIndex}
		s.buffers[f.ImageIndex] = cmd
	}

	err := f.RecordOverlay(cmd)
	if err != nil {
		return nil, err
	}

	s.records = append(s.records, f)
	s.recordedAt = append(s.recordedAt, s.gpu.clock.now)
	s.gpu.logf("record image %d @%d", f.ImageIndex, s.gpu.clock.now)
	return cmd, nil
}

type countingOverlay struct {
	calls []int
}

func (o *countingOverlay) Record(cmd gpu.CommandBuffer, imageIndex int) error {
	o.calls = append(o.calls, imageIndex)
	return nil
}
