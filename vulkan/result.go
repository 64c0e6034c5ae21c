package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"github.com/vkngwrapper/scenes/gpu"
)

// statusOf maps the recoverable driver results onto a Status. ok is false for
// every result that is not one of them.
func statusOf(res common.VkResult) (gpu.Status, bool) {
	switch res {
	case core1_0.VKSuccess:
		return gpu.Success, true
	case khr_swapchain.VKSuboptimal:
		return gpu.Suboptimal, true
	case khr_swapchain.VKErrorOutOfDate:
		return gpu.OutOfDate, true
	case core1_0.VKTimeout:
		return gpu.Timeout, true
	case core1_0.VKNotReady:
		return gpu.NotReady, true
	}
	return gpu.Success, false
}

// resultError records the driver result of a failed call next to the driver's
// own error.
func resultError(op string, res common.VkResult, err error) error {
	resErr := &gpu.ResultError{Op: op, Result: int(res), Name: res.String()}
	if err == nil {
		return errors.WithStack(resErr)
	}
	return errors.WithSecondaryError(errors.WithStack(resErr), err)
}
