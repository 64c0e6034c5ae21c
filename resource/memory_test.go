package resource

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/scenes/gpu"
)

func TestFindMemoryType(t *testing.T) {
	types := []gpu.MemoryType{
		{PropertyFlags: core1_0.MemoryPropertyDeviceLocal},
		{PropertyFlags: core1_0.MemoryPropertyHostVisible},
		{PropertyFlags: core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent},
		{PropertyFlags: core1_0.MemoryPropertyDeviceLocal | core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent},
	}

	testCases := map[string]struct {
		bits       uint32
		properties core1_0.MemoryPropertyFlags
		expected   int
	}{
		"first match wins": {
			bits:       0b1111,
			properties: core1_0.MemoryPropertyHostVisible,
			expected:   1,
		},
		"superset qualifies": {
			bits:       0b1001,
			properties: core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent,
			expected:   3,
		},
		"bitmask excludes types": {
			bits:       0b1100,
			properties: core1_0.MemoryPropertyHostVisible,
			expected:   2,
		},
		"no properties requested": {
			bits:       0b0100,
			properties: 0,
			expected:   2,
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			index, err := FindMemoryType(types, testCase.bits, testCase.properties)
			require.NoError(t, err)
			require.Equal(t, testCase.expected, index)
		})
	}
}

func TestFindMemoryTypeNoMatch(t *testing.T) {
	types := []gpu.MemoryType{
		{PropertyFlags: core1_0.MemoryPropertyDeviceLocal},
		{PropertyFlags: core1_0.MemoryPropertyHostVisible},
	}

	_, err := FindMemoryType(types, 0b01, core1_0.MemoryPropertyHostVisible)
	require.Error(t, err)
	require.True(t, errors.Is(err, gpu.ErrMemoryAllocationFailed))
}
