package swapchain

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/scenes/device"
	"github.com/vkngwrapper/scenes/gpu"
	"github.com/vkngwrapper/scenes/gpu/mocks"
	"go.uber.org/mock/gomock"
)

type fakeSurface struct {
	capabilities  khr_surface.SurfaceCapabilities
	formats       []khr_surface.SurfaceFormat
	width, height int
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		capabilities: khr_surface.SurfaceCapabilities{
			CurrentExtent:  core1_0.Extent2D{Width: -1, Height: -1},
			MinImageExtent: core1_0.Extent2D{Width: 1, Height: 1},
			MaxImageExtent: core1_0.Extent2D{Width: 4096, Height: 4096},
			MinImageCount:  2,
			MaxImageCount:  0,
		},
		formats: []khr_surface.SurfaceFormat{bgraSRGB},
		width:   800,
		height:  600,
	}
}

func (s *fakeSurface) Capabilities() (*khr_surface.SurfaceCapabilities, error) {
	capabilities := s.capabilities
	return &capabilities, nil
}

func (s *fakeSurface) Formats() ([]khr_surface.SurfaceFormat, error) { return s.formats, nil }

func (s *fakeSurface) PresentModes() ([]khr_surface.PresentMode, error) {
	return []khr_surface.PresentMode{khr_surface.PresentModeFIFO}, nil
}

func (s *fakeSurface) DrawableSize() (int, int) { return s.width, s.height }

type fakeFactory struct {
	created   []*fakeSwapchain
	infos     []CreateInfo
	liveViews int
}

func (f *fakeFactory) CreateSwapchain(info CreateInfo) (gpu.Swapchain, error) {
	chain := &fakeSwapchain{factory: f, images: info.ImageCount}
	f.created = append(f.created, chain)
	f.infos = append(f.infos, info)
	return chain, nil
}

func (f *fakeFactory) liveChains() int {
	live := 0
	for _, chain := range f.created {
		if !chain.destroyed {
			live++
		}
	}
	return live
}

type fakeSwapchain struct {
	factory   *fakeFactory
	images    int
	destroyed bool
}

func (s *fakeSwapchain) Destroy() { s.destroyed = true }

func (s *fakeSwapchain) ImageCount() int { return s.images }

func (s *fakeSwapchain) CreateImageView(index int) (gpu.ImageView, error) {
	s.factory.liveViews++
	return &fakeView{factory: s.factory}, nil
}

func (s *fakeSwapchain) AcquireNextImage(timeout time.Duration, signal gpu.Semaphore) (int, gpu.Status, error) {
	return 0, gpu.Success, nil
}

func (s *fakeSwapchain) Present(index int, wait gpu.Semaphore) (gpu.Status, error) {
	return gpu.Success, nil
}

type fakeView struct {
	factory *fakeFactory
}

func (v *fakeView) Destroy() { v.factory.liveViews-- }

// fakeDependent mimics a bundle with one framebuffer per chain image.
type fakeDependent struct {
	name         string
	log          *[]string
	framebuffers int
}

func (d *fakeDependent) ReleaseChain() {
	*d.log = append(*d.log, "release "+d.name)
	d.framebuffers = 0
}

func (d *fakeDependent) RebuildChain(chain *Chain) error {
	*d.log = append(*d.log, "rebuild "+d.name)
	d.framebuffers = chain.ImageCount()
	return nil
}

func newManager(t *testing.T, surface *fakeSurface, factory *fakeFactory, families device.QueueFamilies) (*Manager, *mocks.MockDevice) {
	ctrl := gomock.NewController(t)
	dev := mocks.NewMockDevice(ctrl)
	manager := NewManager(surface, factory, dev, families, Options{
		PreferredFormat: bgraSRGB,
		PresentMode:     khr_surface.PresentModeMailbox,
	}, nil)
	return manager, dev
}

func TestCreate(t *testing.T) {
	factory := &fakeFactory{}
	manager, _ := newManager(t, newFakeSurface(), factory, device.QueueFamilies{Graphics: 0, Present: 1})

	chain, err := manager.Create()
	require.NoError(t, err)
	require.Equal(t, 3, chain.ImageCount())
	require.Equal(t, 3, factory.liveViews)
	require.Equal(t, bgraSRGB, chain.Format)
	require.Equal(t, khr_surface.PresentModeFIFO, chain.PresentMode)
	require.Equal(t, core1_0.Extent2D{Width: 800, Height: 600}, chain.Extent)

	info := factory.infos[0]
	require.Nil(t, info.Old)
	require.Equal(t, core1_0.SharingModeConcurrent, info.SharingMode())
	require.Equal(t, []int{0, 1}, info.QueueFamilyIndices())

	_, err = manager.Create()
	require.Error(t, err)

	manager.Destroy()
	require.Equal(t, 0, factory.liveViews)
	require.Equal(t, 0, factory.liveChains())
	require.Nil(t, manager.Chain())
}

func TestCreateExclusiveSharing(t *testing.T) {
	factory := &fakeFactory{}
	manager, _ := newManager(t, newFakeSurface(), factory, device.QueueFamilies{Graphics: 2, Present: 2})

	_, err := manager.Create()
	require.NoError(t, err)
	require.Equal(t, core1_0.SharingModeExclusive, factory.infos[0].SharingMode())
	require.Nil(t, factory.infos[0].QueueFamilyIndices())
}

func TestCreateStrictFormat(t *testing.T) {
	surface := newFakeSurface()
	surface.formats = []khr_surface.SurfaceFormat{rgbaSRGB}
	ctrl := gomock.NewController(t)
	manager := NewManager(surface, &fakeFactory{}, mocks.NewMockDevice(ctrl), device.QueueFamilies{}, Options{
		PreferredFormat: bgraSRGB,
		StrictFormat:    true,
	}, nil)

	_, err := manager.Create()
	require.True(t, errors.Is(err, gpu.ErrUnsupportedFormat))
}

func TestRecreateIsIdempotent(t *testing.T) {
	factory := &fakeFactory{}
	manager, dev := newManager(t, newFakeSurface(), factory, device.QueueFamilies{})
	dev.EXPECT().WaitIdle().Return(nil).Times(2)

	var log []string
	first := &fakeDependent{name: "first", log: &log}
	second := &fakeDependent{name: "second", log: &log}
	manager.AddDependent(first)
	manager.AddDependent(second)

	initial, err := manager.Create()
	require.NoError(t, err)

	recreated, err := manager.Recreate()
	require.NoError(t, err)
	require.True(t, recreated)
	afterFirst := manager.Chain()

	recreated, err = manager.Recreate()
	require.NoError(t, err)
	require.True(t, recreated)
	afterSecond := manager.Chain()

	require.Equal(t, afterFirst.ImageCount(), afterSecond.ImageCount())
	require.Equal(t, afterFirst.Format, afterSecond.Format)
	require.Equal(t, afterFirst.Extent, afterSecond.Extent)
	require.Equal(t, initial.Generation+2, afterSecond.Generation)

	// Only the latest generation's handles are alive.
	require.Equal(t, 1, factory.liveChains())
	require.Equal(t, afterSecond.ImageCount(), factory.liveViews)
	require.Nil(t, initial.Views)
	require.Nil(t, afterFirst.Views)
	require.Equal(t, afterSecond.ImageCount(), first.framebuffers)
	require.Equal(t, afterSecond.ImageCount(), second.framebuffers)

	// Each recreation hands the replaced chain to the driver.
	require.Same(t, factory.created[0], factory.infos[1].Old)
	require.Same(t, factory.created[1], factory.infos[2].Old)

	require.Equal(t, []string{
		"release second", "release first", "rebuild first", "rebuild second",
		"release second", "release first", "rebuild first", "rebuild second",
	}, log)
}

func TestRecreateSkipsZeroAreaSurface(t *testing.T) {
	surface := newFakeSurface()
	factory := &fakeFactory{}
	manager, _ := newManager(t, surface, factory, device.QueueFamilies{})

	_, err := manager.Create()
	require.NoError(t, err)

	surface.width, surface.height = 0, 0
	recreated, err := manager.Recreate()
	require.NoError(t, err)
	require.False(t, recreated)
	require.Len(t, factory.created, 1)
	require.Equal(t, 3, factory.liveViews)
}

func TestRecreateWaitIdleFailure(t *testing.T) {
	factory := &fakeFactory{}
	manager, dev := newManager(t, newFakeSurface(), factory, device.QueueFamilies{})
	dev.EXPECT().WaitIdle().Return(errors.New("VK_ERROR_DEVICE_LOST"))

	_, err := manager.Create()
	require.NoError(t, err)

	_, err = manager.Recreate()
	require.True(t, errors.Is(err, gpu.ErrSwapChainCreationFailed))
	require.NotNil(t, manager.Chain())
}
