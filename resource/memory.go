package resource

import (
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/scenes/gpu"
)

// FindMemoryType returns the index of the first memory type that is allowed by
// typeBits and carries every flag in properties.
func FindMemoryType(types []gpu.MemoryType, typeBits uint32, properties core1_0.MemoryPropertyFlags) (int, error) {
	for i, memoryType := range types {
		typeBit := uint32(1 << i)

		if (typeBits&typeBit) != 0 && (memoryType.PropertyFlags&properties) == properties {
			return i, nil
		}
	}

	return 0, gpu.Fail(gpu.ErrMemoryAllocationFailed, nil, "no memory type matches bits %#x with properties %s", typeBits, properties)
}
