package gpu

import "time"

// Destroyer releases a driver object. Destroy must be safe to call exactly once.
type Destroyer interface {
	Destroy()
}

// Fence is a CPU-waitable completion signal.
type Fence interface {
	Destroyer
	// Wait blocks until the fence signals or timeout passes. A timeout is reported as
	// the Timeout status, not as an error.
	Wait(timeout time.Duration) (Status, error)
	Reset() error
}

// Semaphore orders queue operations on the GPU timeline. The CPU never waits on one.
type Semaphore interface {
	Destroyer
}

// CommandBuffer is a recorded (or recordable) list of GPU commands.
type CommandBuffer interface {
	Reset() error
}

// SyncFactory creates the synchronization primitives owned by frame slots.
type SyncFactory interface {
	CreateFence(signaled bool) (Fence, error)
	CreateSemaphore() (Semaphore, error)
}

// Device is the part of a logical device the frame lifecycle needs.
type Device interface {
	SyncFactory
	WaitIdle() error
}
