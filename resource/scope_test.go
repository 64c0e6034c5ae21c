package resource

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingDestroyer struct {
	name string
	log  *[]string
}

func (r recordingDestroyer) Destroy() { *r.log = append(*r.log, r.name) }

func TestScopeDestroysInReverseOrder(t *testing.T) {
	var log []string
	scope := &Scope{}
	scope.Add(recordingDestroyer{"render-pass", &log})
	scope.Add(recordingDestroyer{"pipeline-layout", &log})

	child := &Scope{}
	child.Add(recordingDestroyer{"framebuffer-0", &log})
	child.Add(recordingDestroyer{"framebuffer-1", &log})
	scope.Nest(child)

	scope.Defer(func() { log = append(log, "pipeline") })
	require.Equal(t, 4, scope.Len())

	scope.Destroy()
	require.Equal(t, []string{"pipeline", "framebuffer-1", "framebuffer-0", "pipeline-layout", "render-pass"}, log)
	require.Equal(t, 0, scope.Len())

	scope.Destroy()
	require.Len(t, log, 5)
}

func TestScopeIgnoresNil(t *testing.T) {
	scope := &Scope{}
	scope.Add(nil)
	scope.Defer(nil)
	require.Equal(t, 0, scope.Len())
}
