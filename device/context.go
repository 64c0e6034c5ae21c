package device

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/scenes/gpu"
)

// AdapterInfo identifies a physical adapter in logs.
type AdapterInfo struct {
	Name              string
	Type              string
	DriverVersion     string
	PipelineCacheUUID uuid.UUID
}

// Adapter is one enumerated physical adapter, already bound to the presentation
// surface the process renders to.
type Adapter interface {
	Info() AdapterInfo
	QueueFamilyFlags() []core1_0.QueueFlags
	PresentSupport(family int) (bool, error)
	// Open creates the logical device with one queue per unique family, the
	// swap chain extension and anisotropic sampling enabled.
	Open(families QueueFamilies) (Logical, error)
}

// Logical is an open logical device.
type Logical interface {
	gpu.Device
	Queue(family int) gpu.Queue
	Destroy()
}

// Instance enumerates adapters.
type Instance interface {
	Adapters() ([]Adapter, error)
}

// Context owns the selected adapter, the logical device and its queues. Exactly
// one exists per renderer; it is created before any swap chain and destroyed
// after everything that depends on it.
type Context struct {
	adapter  Adapter
	info     AdapterInfo
	families QueueFamilies
	device   Logical
	graphics gpu.Queue
	present  gpu.Queue
	logger   *slog.Logger
}

// New selects the first enumerated adapter, resolves its queue families and opens
// a logical device on it. Adapter ranking is intentionally absent.
func New(instance Instance, logger *slog.Logger) (*Context, error) {
	if logger == nil {
		logger = slog.Default()
	}

	adapters, err := instance.Adapters()
	if err != nil {
		return nil, gpu.Fail(gpu.ErrNoCompatibleAdapter, err, "enumerate adapters")
	}
	if len(adapters) == 0 {
		return nil, gpu.Fail(gpu.ErrNoCompatibleAdapter, nil, "no adapters enumerated")
	}

	adapter := adapters[0]
	info := adapter.Info()
	logger.Info("selected adapter",
		slog.String("name", info.Name),
		slog.String("type", info.Type),
		slog.String("driver", info.DriverVersion),
		slog.String("pipelineCache", info.PipelineCacheUUID.String()),
		slog.Int("candidates", len(adapters)))

	families, err := FindQueueFamilies(adapter.QueueFamilyFlags(), adapter.PresentSupport)
	if err != nil {
		return nil, err
	}
	logger.Info("resolved queue families",
		slog.Int("graphics", families.Graphics),
		slog.Int("present", families.Present),
		slog.Bool("shared", families.Shared()))

	logical, err := adapter.Open(families)
	if err != nil {
		return nil, gpu.Fail(gpu.ErrDeviceCreationFailed, err, "open %s", info.Name)
	}

	ctx := &Context{
		adapter:  adapter,
		info:     info,
		families: families,
		device:   logical,
		logger:   logger,
	}
	ctx.graphics = logical.Queue(families.Graphics)
	ctx.present = ctx.graphics
	if !families.Shared() {
		ctx.present = logical.Queue(families.Present)
	}

	return ctx, nil
}

func (c *Context) Adapter() Adapter {
	return c.adapter
}

func (c *Context) Info() AdapterInfo {
	return c.info
}

func (c *Context) Families() QueueFamilies {
	return c.families
}

func (c *Context) Device() Logical {
	return c.device
}

func (c *Context) GraphicsQueue() gpu.Queue {
	return c.graphics
}

func (c *Context) PresentQueue() gpu.Queue {
	return c.present
}

// Destroy closes the logical device. Everything created from it must already be
// gone.
func (c *Context) Destroy() {
	if c.device == nil {
		return
	}
	c.logger.Debug("destroying device", slog.String("adapter", c.info.Name))
	c.device.Destroy()
	c.device = nil
	c.graphics = nil
	c.present = nil
}
