package device

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/scenes/gpu"
)

func presentOn(families ...int) PresentSupport {
	return func(family int) (bool, error) {
		for _, f := range families {
			if f == family {
				return true, nil
			}
		}
		return false, nil
	}
}

func TestFindQueueFamilies(t *testing.T) {
	testCases := map[string]struct {
		flags    []core1_0.QueueFlags
		present  PresentSupport
		expected QueueFamilies
		unique   []int
	}{
		"shared family": {
			flags:    []core1_0.QueueFlags{core1_0.QueueGraphics | core1_0.QueueCompute},
			present:  presentOn(0),
			expected: QueueFamilies{Graphics: 0, Present: 0},
			unique:   []int{0},
		},
		"split families": {
			flags:    []core1_0.QueueFlags{core1_0.QueueTransfer, core1_0.QueueGraphics, core1_0.QueueCompute},
			present:  presentOn(2),
			expected: QueueFamilies{Graphics: 1, Present: 2},
			unique:   []int{1, 2},
		},
		"first of each wins": {
			flags:    []core1_0.QueueFlags{core1_0.QueueCompute, core1_0.QueueGraphics, core1_0.QueueGraphics},
			present:  presentOn(0, 1, 2),
			expected: QueueFamilies{Graphics: 1, Present: 0},
			unique:   []int{1, 0},
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			families, err := FindQueueFamilies(testCase.flags, testCase.present)
			require.NoError(t, err)
			require.Equal(t, testCase.expected, families)
			require.Equal(t, testCase.unique, families.Unique())
		})
	}
}

func TestFindQueueFamiliesIncomplete(t *testing.T) {
	testCases := map[string]struct {
		flags   []core1_0.QueueFlags
		present PresentSupport
	}{
		"no graphics": {
			flags:   []core1_0.QueueFlags{core1_0.QueueCompute, core1_0.QueueTransfer},
			present: presentOn(0),
		},
		"no present": {
			flags:   []core1_0.QueueFlags{core1_0.QueueGraphics},
			present: presentOn(),
		},
		"no families": {
			present: presentOn(0),
		},
		"query failure": {
			flags: []core1_0.QueueFlags{core1_0.QueueGraphics},
			present: func(int) (bool, error) {
				return false, errors.New("VK_ERROR_SURFACE_LOST_KHR")
			},
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := FindQueueFamilies(testCase.flags, testCase.present)
			require.Error(t, err)
			require.True(t, errors.Is(err, gpu.ErrIncompleteQueueFamilies))
		})
	}
}
