package frame

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/scenes/gpu"
	"github.com/vkngwrapper/scenes/swapchain"
)

type fakeManager struct {
	gpu     *fakeGPU
	chain   *swapchain.Chain
	results []bool
	calls   int
	err     error
}

func newFakeManager(g *fakeGPU, images int) *fakeManager {
	m := &fakeManager{gpu: g}
	m.chain = m.newChain(images, 1)
	return m
}

func (m *fakeManager) newChain(images, generation int) *swapchain.Chain {
	return &swapchain.Chain{
		Swapchain:  &fakeChain{gpu: m.gpu, images: images},
		Views:      make([]gpu.ImageView, images),
		Generation: generation,
	}
}

func (m *fakeManager) Chain() *swapchain.Chain {
	return m.chain
}

func (m *fakeManager) Recreate() (bool, error) {
	call := m.calls
	m.calls++
	if m.err != nil {
		return false, m.err
	}

	recreated := true
	if call < len(m.results) {
		recreated = m.results[call]
	}
	if !recreated {
		return false, nil
	}

	err := m.gpu.WaitIdle()
	if err != nil {
		return false, err
	}
	m.chain = m.newChain(m.chain.ImageCount()+1, m.chain.Generation+1)
	return true, nil
}

func newTestRenderer(t *testing.T, g *fakeGPU, manager *fakeManager, scene Scene) *Renderer {
	t.Helper()
	renderer, err := NewRenderer(g, g, manager, scene, Options{FenceTimeout: time.Second, Clock: g.clock.Now})
	require.NoError(t, err)
	return renderer
}

func TestRendererRequiresChain(t *testing.T) {
	g := newFakeGPU(1)
	_, err := NewRenderer(g, g, &fakeManager{gpu: g}, newFakeScene(g), Options{})
	require.Error(t, err)
}

func TestRendererRecreatesStaleChain(t *testing.T) {
	g := newFakeGPU(3)
	manager := newFakeManager(g, 2)
	scene := newFakeScene(g)
	renderer := newTestRenderer(t, g, manager, scene)

	manager.chain.Swapchain.(*fakeChain).presentStatus = []gpu.Status{gpu.Success, gpu.Suboptimal}

	require.NoError(t, renderer.Frame())
	require.Equal(t, 0, manager.calls)
	require.NoError(t, renderer.Frame())
	require.Equal(t, 1, manager.calls)
	require.False(t, renderer.Pending())

	stats := renderer.Engine().Stats()
	require.Equal(t, 1, stats.Recreations)
	require.Len(t, stats.Images, 3)
	require.Equal(t, 2, manager.chain.Generation)

	// Frames continue on the new chain.
	for i := 0; i < 6; i++ {
		require.NoError(t, renderer.Frame())
	}
	require.Equal(t, 6, manager.chain.Swapchain.(*fakeChain).acquires)
	require.Empty(t, scene.violations)
}

func TestRendererOutOfDateAcquire(t *testing.T) {
	g := newFakeGPU(3)
	manager := newFakeManager(g, 2)
	scene := newFakeScene(g)
	renderer := newTestRenderer(t, g, manager, scene)

	manager.chain.Swapchain.(*fakeChain).acquireStatus = []gpu.Status{gpu.OutOfDate}

	require.NoError(t, renderer.Frame())
	require.Equal(t, 1, manager.calls)
	require.Empty(t, scene.records)
	require.Empty(t, g.submissions)

	require.NoError(t, renderer.Frame())
	require.Len(t, scene.records, 1)
}

func TestRendererWaitsOutZeroArea(t *testing.T) {
	g := newFakeGPU(3)
	manager := newFakeManager(g, 2)
	manager.results = []bool{false, false, true}
	scene := newFakeScene(g)
	renderer := newTestRenderer(t, g, manager, scene)

	manager.chain.Swapchain.(*fakeChain).presentStatus = []gpu.Status{gpu.OutOfDate}

	require.NoError(t, renderer.Frame())
	require.True(t, renderer.Pending())
	require.Len(t, scene.records, 1)

	// Still minimized: nothing is drawn.
	require.NoError(t, renderer.Frame())
	require.True(t, renderer.Pending())
	require.Len(t, scene.records, 1)

	// Restored: the chain is rebuilt and drawing resumes in the same call.
	require.NoError(t, renderer.Frame())
	require.False(t, renderer.Pending())
	require.Equal(t, 3, manager.calls)
	require.Len(t, scene.records, 2)
	require.Equal(t, 1, renderer.Engine().Stats().Recreations)
}

func TestRendererRecreateFailure(t *testing.T) {
	g := newFakeGPU(3)
	manager := newFakeManager(g, 2)
	renderer := newTestRenderer(t, g, manager, newFakeScene(g))

	manager.chain.Swapchain.(*fakeChain).acquireStatus = []gpu.Status{gpu.OutOfDate}
	manager.err = gpu.Fail(gpu.ErrSwapChainCreationFailed, nil, "surface lost")

	err := renderer.Frame()
	require.True(t, errors.Is(err, gpu.ErrSwapChainCreationFailed))
}

func TestRendererDestroyWaitsIdle(t *testing.T) {
	g := newFakeGPU(3)
	manager := newFakeManager(g, 3)
	renderer := newTestRenderer(t, g, manager, newFakeScene(g))

	require.NoError(t, renderer.Frame())
	require.NoError(t, renderer.Frame())

	renderer.Destroy()
	require.Equal(t, 1, g.idleWaits)
	for _, sub := range g.submissions {
		require.True(t, sub.observed)
	}
	require.Equal(t, 0, g.liveFences())
	require.Equal(t, 0, g.semaphores)
}
