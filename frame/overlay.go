package frame

import "github.com/vkngwrapper/scenes/gpu"

// Overlay records UI draw commands into a scene's command buffer after the
// scene's own draws and before its render pass ends.
type Overlay interface {
	Record(cmd gpu.CommandBuffer, imageIndex int) error
}

// Frame is what a scene sees while recording one frame.
type Frame struct {
	// ImageIndex is the acquired swap chain image. Per-image command buffers,
	// framebuffers, uniforms and descriptor sets are selected by it.
	ImageIndex int
	// Slot is the frame-in-flight slot, for per-slot resources.
	Slot   int
	Number uint64

	overlay Overlay
}

// RecordOverlay hands cmd to the installed overlay, if any.
func (f Frame) RecordOverlay(cmd gpu.CommandBuffer) error {
	if f.overlay == nil {
		return nil
	}
	return f.overlay.Record(cmd, f.ImageIndex)
}

// Scene updates per-image state and records the command buffer for one frame.
// The engine only calls Record once the previous submission that used
// f.ImageIndex has completed.
type Scene interface {
	Record(f Frame) (gpu.CommandBuffer, error)
}

// SceneFunc adapts a function to Scene.
type SceneFunc func(f Frame) (gpu.CommandBuffer, error)

func (fn SceneFunc) Record(f Frame) (gpu.CommandBuffer, error) {
	return fn(f)
}
