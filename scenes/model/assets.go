package model

import (
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/g3n/engine/loader/obj"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"
)

type Vertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
	TexCoord mgl32.Vec2
}

// Mesh is an indexed triangle list.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// Texture is tightly packed RGBA8 pixels.
type Texture struct {
	Width, Height int
	Pixels        []byte
}

// Assets is everything the scene reads from disk.
type Assets struct {
	Mesh    Mesh
	Texture Texture
}

// LoadAssets decodes <dir>/model.obj (with model.mtl) and <dir>/texture.png in
// parallel.
func LoadAssets(dir string) (*Assets, error) {
	var assets Assets
	var group errgroup.Group

	group.Go(func() error {
		meshFile, err := os.Open(filepath.Join(dir, "model.obj"))
		if err != nil {
			return errors.Wrap(err, "open mesh")
		}
		defer meshFile.Close()

		matFile, err := os.Open(filepath.Join(dir, "model.mtl"))
		if err != nil {
			return errors.Wrap(err, "open materials")
		}
		defer matFile.Close()

		mesh, err := DecodeMesh(meshFile, matFile)
		if err != nil {
			return err
		}
		assets.Mesh = *mesh
		return nil
	})

	group.Go(func() error {
		imageFile, err := os.Open(filepath.Join(dir, "texture.png"))
		if err != nil {
			return errors.Wrap(err, "open texture")
		}
		defer imageFile.Close()

		texture, err := DecodeTexture(imageFile)
		if err != nil {
			return err
		}
		assets.Texture = *texture
		return nil
	})

	err := group.Wait()
	if err != nil {
		return nil, err
	}
	return &assets, nil
}

// DecodeMesh triangulates every face as a fan and shares vertices by position
// index.
func DecodeMesh(meshReader, matReader io.Reader) (*Mesh, error) {
	decoder, err := obj.DecodeReader(meshReader, matReader)
	if err != nil {
		return nil, errors.Wrap(err, "decode mesh")
	}

	mesh := &Mesh{}
	uniqueVertices := make(map[int]uint32)

	for _, decodedObj := range decoder.Objects {
		for _, face := range decodedObj.Faces {
			for i := 2; i < len(face.Vertices); i++ {
				mesh.addVertex(decoder, uniqueVertices, face, 0)
				mesh.addVertex(decoder, uniqueVertices, face, i-1)
				mesh.addVertex(decoder, uniqueVertices, face, i)
			}
		}
	}

	if len(mesh.Indices) == 0 {
		return nil, errors.New("mesh has no faces")
	}
	return mesh, nil
}

func (m *Mesh) addVertex(decoder *obj.Decoder, uniqueVertices map[int]uint32, face obj.Face, faceIndex int) {
	vertInd := face.Vertices[faceIndex]
	index, vertexExists := uniqueVertices[vertInd]

	if !vertexExists {
		vert := Vertex{
			Position: mgl32.Vec3{
				decoder.Vertices[vertInd*3],
				decoder.Vertices[vertInd*3+1],
				decoder.Vertices[vertInd*3+2],
			},
			Color: mgl32.Vec3{1, 1, 1},
		}

		if faceIndex < len(face.Uvs) {
			uvInd := face.Uvs[faceIndex]
			vert.TexCoord = mgl32.Vec2{
				decoder.Uvs[uvInd*2],
				1.0 - decoder.Uvs[uvInd*2+1],
			}
		}

		index = uint32(len(m.Vertices))
		m.Vertices = append(m.Vertices, vert)
		uniqueVertices[vertInd] = index
	}

	m.Indices = append(m.Indices, index)
}

func DecodeTexture(r io.Reader) (*Texture, error) {
	decoded, err := png.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "decode texture")
	}

	bounds := decoded.Bounds()
	rgba, ok := decoded.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), decoded, bounds.Min, draw.Src)
	}

	return &Texture{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Pixels: rgba.Pix,
	}, nil
}
