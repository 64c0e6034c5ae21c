package frame

import (
	"github.com/vkngwrapper/scenes/gpu"
	"github.com/vkngwrapper/scenes/resource"
)

// slot is one frame in flight. Its objects live for the whole engine and are not
// touched by swap chain recreation.
type slot struct {
	presentComplete gpu.Semaphore
	renderComplete  gpu.Semaphore
	inFlight        gpu.Fence
}

func createSlots(factory gpu.SyncFactory, count int, scope *resource.Scope) ([]*slot, error) {
	slots := make([]*slot, 0, count)

	for i := 0; i < count; i++ {
		presentComplete, err := factory.CreateSemaphore()
		if err != nil {
			return nil, err
		}
		scope.Add(presentComplete)

		renderComplete, err := factory.CreateSemaphore()
		if err != nil {
			return nil, err
		}
		scope.Add(renderComplete)

		// Signaled so the first wait on each slot returns immediately.
		inFlight, err := factory.CreateFence(true)
		if err != nil {
			return nil, err
		}
		scope.Add(inFlight)

		slots = append(slots, &slot{
			presentComplete: presentComplete,
			renderComplete:  renderComplete,
			inFlight:        inFlight,
		})
	}

	return slots, nil
}
