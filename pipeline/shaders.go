package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/scenes/gpu"
	"golang.org/x/sync/errgroup"
)

// Stage names one shader stage and the file it is loaded from.
type Stage string

const (
	Vertex   Stage = "vert"
	Fragment Stage = "frag"
	Compute  Stage = "comp"
)

func (s Stage) Flags() core1_0.ShaderStageFlags {
	switch s {
	case Vertex:
		return core1_0.StageVertex
	case Fragment:
		return core1_0.StageFragment
	case Compute:
		return core1_0.StageCompute
	}
	return 0
}

// Shaders holds SPIR-V words per stage.
type Shaders map[Stage][]uint32

// LoadShaders reads <dir>/<scene>/<stage>.spv for every stage in parallel. A
// missing file fails with ErrShaderMissing.
func LoadShaders(dir, scene string, stages ...Stage) (Shaders, error) {
	var lock sync.Mutex
	shaders := Shaders{}

	var group errgroup.Group
	for _, stage := range stages {
		group.Go(func() error {
			path := filepath.Join(dir, scene, string(stage)+".spv")
			data, err := os.ReadFile(path)
			if errors.Is(err, fs.ErrNotExist) {
				return gpu.Fail(gpu.ErrShaderMissing, err, "load %s shader for %s", stage, scene)
			}
			if err != nil {
				return errors.Wrapf(err, "load %s shader for %s", stage, scene)
			}

			code, err := bytesToBytecode(data)
			if err != nil {
				return gpu.Fail(gpu.ErrPipelineCreationFailed, err, "decode %s", path)
			}

			lock.Lock()
			shaders[stage] = code
			lock.Unlock()
			return nil
		})
	}

	err := group.Wait()
	if err != nil {
		return nil, err
	}
	return shaders, nil
}

func bytesToBytecode(b []byte) ([]uint32, error) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, errors.Newf("spir-v length %d is not a positive multiple of 4", len(b))
	}

	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	return byteCode, nil
}
