package device

import (
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/scenes/gpu"
)

// QueueFamilies holds the resolved graphics and present family indices. A value
// only exists once both roles have been found.
type QueueFamilies struct {
	Graphics int
	Present  int
}

// Shared reports whether one family serves both roles.
func (q QueueFamilies) Shared() bool {
	return q.Graphics == q.Present
}

// Unique lists the distinct families, graphics first. Device creation requests
// one queue per entry.
func (q QueueFamilies) Unique() []int {
	if q.Shared() {
		return []int{q.Graphics}
	}
	return []int{q.Graphics, q.Present}
}

// PresentSupport reports whether family can present to the target surface.
type PresentSupport func(family int) (bool, error)

// FindQueueFamilies walks the families' queue flags in order and picks the first
// that supports graphics and the first that can present.
func FindQueueFamilies(families []core1_0.QueueFlags, presentSupport PresentSupport) (QueueFamilies, error) {
	graphics, present := -1, -1

	for familyIdx, flags := range families {
		if graphics < 0 && (flags&core1_0.QueueGraphics) != 0 {
			graphics = familyIdx
		}

		if present < 0 {
			supported, err := presentSupport(familyIdx)
			if err != nil {
				return QueueFamilies{}, gpu.Fail(gpu.ErrIncompleteQueueFamilies, err, "query present support for family %d", familyIdx)
			}
			if supported {
				present = familyIdx
			}
		}

		if graphics >= 0 && present >= 0 {
			return QueueFamilies{Graphics: graphics, Present: present}, nil
		}
	}

	return QueueFamilies{}, gpu.Fail(gpu.ErrIncompleteQueueFamilies, nil, "scanned %d queue families: graphics found %t, present found %t", len(families), graphics >= 0, present >= 0)
}
