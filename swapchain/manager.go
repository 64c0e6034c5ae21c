package swapchain

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/scenes/device"
	"github.com/vkngwrapper/scenes/gpu"
)

// Surface is the presentation target the chain is negotiated against.
type Surface interface {
	Capabilities() (*khr_surface.SurfaceCapabilities, error)
	Formats() ([]khr_surface.SurfaceFormat, error)
	PresentModes() ([]khr_surface.PresentMode, error)
	// DrawableSize is the window's size in pixels, used when the surface does
	// not dictate an extent.
	DrawableSize() (int, int)
}

// CreateInfo is everything a Factory needs to build one chain.
type CreateInfo struct {
	Format       khr_surface.SurfaceFormat
	PresentMode  khr_surface.PresentMode
	Extent       core1_0.Extent2D
	ImageCount   int
	Capabilities *khr_surface.SurfaceCapabilities
	Families     device.QueueFamilies
	// Old is the chain being replaced, or nil on first creation.
	Old gpu.Swapchain
}

// SharingMode is CONCURRENT when graphics and present use different families.
func (c CreateInfo) SharingMode() core1_0.SharingMode {
	if c.Families.Shared() {
		return core1_0.SharingModeExclusive
	}
	return core1_0.SharingModeConcurrent
}

// QueueFamilyIndices lists the sharing families for CONCURRENT mode, nil otherwise.
func (c CreateInfo) QueueFamilyIndices() []int {
	if c.Families.Shared() {
		return nil
	}
	return c.Families.Unique()
}

// Factory creates the driver-level chain object.
type Factory interface {
	CreateSwapchain(info CreateInfo) (gpu.Swapchain, error)
}

// Options are the caller's negotiation preferences.
type Options struct {
	PreferredFormat khr_surface.SurfaceFormat
	PresentMode     khr_surface.PresentMode
	StrictFormat    bool
}

// Chain is one generation of the presentable image chain. Views always has one
// entry per chain image.
type Chain struct {
	Swapchain   gpu.Swapchain
	Views       []gpu.ImageView
	Format      khr_surface.SurfaceFormat
	PresentMode khr_surface.PresentMode
	Extent      core1_0.Extent2D
	Support     SupportDetails
	Generation  int
}

func (c *Chain) ImageCount() int {
	return len(c.Views)
}

// Dependent owns resources sized or bound to the chain: framebuffers, per-image
// command buffers, per-image uniforms. ReleaseChain runs before the old chain is
// destroyed and RebuildChain after the new one exists.
type Dependent interface {
	ReleaseChain()
	RebuildChain(chain *Chain) error
}

// Manager negotiates, builds and rebuilds the chain for one surface.
type Manager struct {
	surface    Surface
	factory    Factory
	device     gpu.Device
	families   device.QueueFamilies
	options    Options
	logger     *slog.Logger
	chain      *Chain
	dependents []Dependent
	generation int
}

func NewManager(surface Surface, factory Factory, dev gpu.Device, families device.QueueFamilies, options Options, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		surface:  surface,
		factory:  factory,
		device:   dev,
		families: families,
		options:  options,
		logger:   logger,
	}
}

// Chain is the live chain, nil before Create and after Destroy.
func (m *Manager) Chain() *Chain {
	return m.chain
}

// AddDependent registers d to be released and rebuilt around every recreation.
// Dependents are rebuilt in registration order and released in reverse.
func (m *Manager) AddDependent(d Dependent) {
	m.dependents = append(m.dependents, d)
}

// RemoveDependent unregisters d. It does not call ReleaseChain.
func (m *Manager) RemoveDependent(d Dependent) {
	for i, dependent := range m.dependents {
		if dependent == d {
			m.dependents = append(m.dependents[:i], m.dependents[i+1:]...)
			return
		}
	}
}

func (m *Manager) querySupport() (SupportDetails, error) {
	var details SupportDetails
	var err error

	details.Capabilities, err = m.surface.Capabilities()
	if err != nil {
		return details, gpu.Fail(gpu.ErrSwapChainCreationFailed, err, "query surface capabilities")
	}

	details.Formats, err = m.surface.Formats()
	if err != nil {
		return details, gpu.Fail(gpu.ErrSwapChainCreationFailed, err, "query surface formats")
	}

	details.PresentModes, err = m.surface.PresentModes()
	if err != nil {
		return details, gpu.Fail(gpu.ErrSwapChainCreationFailed, err, "query surface present modes")
	}

	return details, nil
}

// Create builds the first chain and its image views.
func (m *Manager) Create() (*Chain, error) {
	if m.chain != nil {
		return nil, errors.AssertionFailedf("swap chain already created")
	}

	support, err := m.querySupport()
	if err != nil {
		return nil, err
	}

	extent := m.extent(support)
	if extent.Width == 0 || extent.Height == 0 {
		return nil, gpu.Fail(gpu.ErrSwapChainCreationFailed, nil, "surface has zero area")
	}

	chain, err := m.create(support, extent, nil)
	if err != nil {
		return nil, err
	}

	m.chain = chain
	return chain, nil
}

func (m *Manager) extent(support SupportDetails) core1_0.Extent2D {
	width, height := m.surface.DrawableSize()
	return ChooseExtent(support.Capabilities, width, height)
}

func (m *Manager) create(support SupportDetails, extent core1_0.Extent2D, old gpu.Swapchain) (*Chain, error) {
	format, err := ChooseSurfaceFormat(support.Formats, m.options.PreferredFormat, m.options.StrictFormat)
	if err != nil {
		return nil, err
	}

	info := CreateInfo{
		Format:       format,
		PresentMode:  ChoosePresentMode(support.PresentModes, m.options.PresentMode),
		Extent:       extent,
		ImageCount:   ChooseImageCount(support.Capabilities),
		Capabilities: support.Capabilities,
		Families:     m.families,
		Old:          old,
	}

	swapchain, err := m.factory.CreateSwapchain(info)
	if err != nil {
		return nil, gpu.Fail(gpu.ErrSwapChainCreationFailed, err, "create %dx%d swap chain", extent.Width, extent.Height)
	}

	m.generation++
	chain := &Chain{
		Swapchain:   swapchain,
		Format:      format,
		PresentMode: info.PresentMode,
		Extent:      extent,
		Support:     support,
		Generation:  m.generation,
	}

	err = m.createImageViews(chain)
	if err != nil {
		m.destroyChain(chain)
		return nil, err
	}

	m.logger.Info("created swap chain",
		slog.Int("generation", chain.Generation),
		slog.Int("width", extent.Width),
		slog.Int("height", extent.Height),
		slog.String("format", format.Format.String()),
		slog.String("presentMode", info.PresentMode.String()),
		slog.Int("images", chain.ImageCount()))
	return chain, nil
}

func (m *Manager) createImageViews(chain *Chain) error {
	count := chain.Swapchain.ImageCount()
	chain.Views = make([]gpu.ImageView, 0, count)

	for i := 0; i < count; i++ {
		view, err := chain.Swapchain.CreateImageView(i)
		if err != nil {
			return gpu.Fail(gpu.ErrSwapChainCreationFailed, err, "create view for image %d", i)
		}
		chain.Views = append(chain.Views, view)
	}

	return nil
}

func destroyViews(chain *Chain) {
	for _, view := range chain.Views {
		view.Destroy()
	}
	chain.Views = nil
}

func (m *Manager) destroyChain(chain *Chain) {
	destroyViews(chain)
	if chain.Swapchain != nil {
		chain.Swapchain.Destroy()
		chain.Swapchain = nil
	}
}

// Recreate waits for the device to go idle, releases every dependent, replaces
// the chain and rebuilds the dependents against the new one. It reports false,
// without touching anything, while the surface has zero area (a minimized
// window); the caller retries once the window is restored.
func (m *Manager) Recreate() (bool, error) {
	if m.chain == nil {
		return false, errors.AssertionFailedf("recreate before create")
	}

	support, err := m.querySupport()
	if err != nil {
		return false, err
	}

	extent := m.extent(support)
	if extent.Width == 0 || extent.Height == 0 {
		m.logger.Debug("skipping swap chain recreation for zero-area surface")
		return false, nil
	}

	err = m.device.WaitIdle()
	if err != nil {
		return false, gpu.Fail(gpu.ErrSwapChainCreationFailed, err, "wait for device idle before recreation")
	}

	for i := len(m.dependents) - 1; i >= 0; i-- {
		m.dependents[i].ReleaseChain()
	}

	old := m.chain
	m.chain = nil
	destroyViews(old)

	chain, err := m.create(support, extent, old.Swapchain)
	m.destroyChain(old)
	if err != nil {
		return false, err
	}
	m.chain = chain

	for _, dependent := range m.dependents {
		err = dependent.RebuildChain(chain)
		if err != nil {
			return false, err
		}
	}

	return true, nil
}

// Destroy releases dependents, image views and the chain. Callers must have
// waited for the device to go idle.
func (m *Manager) Destroy() {
	if m.chain == nil {
		return
	}

	for i := len(m.dependents) - 1; i >= 0; i-- {
		m.dependents[i].ReleaseChain()
	}
	m.destroyChain(m.chain)
	m.chain = nil
}
