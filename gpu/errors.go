package gpu

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Error kinds. Failures are wrapped with context and marked with one of these, so
// callers use errors.Is to find out which stage failed.
var (
	ErrNoCompatibleAdapter         = errors.New("no compatible adapter")
	ErrIncompleteQueueFamilies     = errors.New("incomplete queue families")
	ErrDeviceCreationFailed        = errors.New("device creation failed")
	ErrSwapChainCreationFailed     = errors.New("swap chain creation failed")
	ErrUnsupportedFormat           = errors.New("unsupported surface format")
	ErrBufferCreationFailed        = errors.New("buffer creation failed")
	ErrImageCreationFailed         = errors.New("image creation failed")
	ErrMemoryAllocationFailed      = errors.New("memory allocation failed")
	ErrUnsupportedLayoutTransition = errors.New("unsupported layout transition")
	ErrPipelineCreationFailed      = errors.New("pipeline creation failed")
	ErrShaderMissing               = errors.New("shader missing")
	ErrSwapChainAcquireFailed      = errors.New("swap chain acquire failed")
	ErrQueueSubmitFailed           = errors.New("queue submit failed")
	ErrQueuePresentFailed          = errors.New("queue present failed")
	ErrDeviceTimeout               = errors.New("device timeout")
)

// Fail wraps err with a formatted message and marks it with kind.
func Fail(kind error, err error, format string, args ...any) error {
	if err == nil {
		err = errors.Newf(format, args...)
	} else {
		err = errors.Wrapf(err, format, args...)
	}
	return errors.Mark(err, kind)
}

// ResultError carries the raw driver result code that produced a failure.
type ResultError struct {
	Op     string
	Result int
	Name   string
}

func (e *ResultError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (%d)", e.Op, e.Name, e.Result)
	}
	return fmt.Sprintf("%s: result %d", e.Op, e.Result)
}

// ResultCode extracts the driver result code from err, if one was recorded.
func ResultCode(err error) (int, bool) {
	var resErr *ResultError
	if errors.As(err, &resErr) {
		return resErr.Result, true
	}
	return 0, false
}
