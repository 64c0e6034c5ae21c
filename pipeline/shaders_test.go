package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/scenes/gpu"
)

func writeShader(t *testing.T, dir, scene string, stage Stage, data []byte) {
	t.Helper()
	sceneDir := filepath.Join(dir, scene)
	require.NoError(t, os.MkdirAll(sceneDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sceneDir, string(stage)+".spv"), data, 0o644))
}

func TestLoadShaders(t *testing.T) {
	dir := t.TempDir()
	writeShader(t, dir, "triangle", Vertex, []byte{0x03, 0x02, 0x23, 0x07, 0x01, 0x00, 0x00, 0x00})
	writeShader(t, dir, "triangle", Fragment, []byte{0x03, 0x02, 0x23, 0x07})

	shaders, err := LoadShaders(dir, "triangle", Vertex, Fragment)
	require.NoError(t, err)
	require.Equal(t, []uint32{0x07230203, 1}, shaders[Vertex])
	require.Equal(t, []uint32{0x07230203}, shaders[Fragment])
}

func TestLoadShadersMissing(t *testing.T) {
	dir := t.TempDir()
	writeShader(t, dir, "particles", Compute, []byte{0x03, 0x02, 0x23, 0x07})

	_, err := LoadShaders(dir, "particles", Compute, Vertex)
	require.Error(t, err)
	require.True(t, errors.Is(err, gpu.ErrShaderMissing))
	require.Contains(t, err.Error(), "vert")
}

func TestLoadShadersRejectsTruncatedCode(t *testing.T) {
	dir := t.TempDir()
	writeShader(t, dir, "model", Vertex, []byte{0x03, 0x02, 0x23})

	_, err := LoadShaders(dir, "model", Vertex)
	require.Error(t, err)
	require.True(t, errors.Is(err, gpu.ErrPipelineCreationFailed))
	require.False(t, errors.Is(err, gpu.ErrShaderMissing))
}

func TestStageFlags(t *testing.T) {
	require.NotZero(t, Vertex.Flags())
	require.NotEqual(t, Vertex.Flags(), Fragment.Flags())
	require.NotEqual(t, Fragment.Flags(), Compute.Flags())
	require.Zero(t, Stage("geom").Flags())
}
