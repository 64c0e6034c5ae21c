// Package model draws a textured OBJ mesh with a depth buffer. Every chain image
// has its own uniform buffer and descriptor set, rewritten when the image is
// recorded.
package model

import (
	"encoding/binary"
	"math"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/scenes/frame"
	"github.com/vkngwrapper/scenes/gpu"
	"github.com/vkngwrapper/scenes/pipeline"
	"github.com/vkngwrapper/scenes/resource"
	"github.com/vkngwrapper/scenes/scenes"
	"github.com/vkngwrapper/scenes/swapchain"
	"github.com/vkngwrapper/scenes/vulkan"
)

const Name = "model"

type Uniforms struct {
	Model mgl32.Mat4
	View  mgl32.Mat4
	Proj  mgl32.Mat4
}

// vulkanClip maps OpenGL clip space onto Vulkan's: Y flipped, depth in [0, 1].
var vulkanClip = mgl32.Mat4{
	1, 0, 0, 0,
	0, -1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// uniformsAt spins the model a quarter turn per second.
func uniformsAt(seconds float64, extent core1_0.Extent2D) Uniforms {
	period := math.Mod(seconds, 4.0)
	aspectRatio := float32(extent.Width) / float32(extent.Height)

	return Uniforms{
		Model: mgl32.HomogRotate3DZ(float32(period * math.Pi / 2.0)),
		View: mgl32.LookAtV(
			mgl32.Vec3{2, 2, 2},
			mgl32.Vec3{0, 0, 0},
			mgl32.Vec3{0, 0, 1},
		),
		Proj: vulkanClip.Mul4(mgl32.Perspective(math.Pi/4.0, aspectRatio, 0.1, 10.0)),
	}
}

func vertexBindings() []core1_0.VertexInputBindingDescription {
	return []core1_0.VertexInputBindingDescription{
		{
			Binding:   0,
			Stride:    binary.Size(Vertex{}),
			InputRate: core1_0.VertexInputRateVertex,
		},
	}
}

func vertexAttributes() []core1_0.VertexInputAttributeDescription {
	vec3 := binary.Size(mgl32.Vec3{})
	return []core1_0.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   core1_0.FormatR32G32B32SignedFloat,
			Offset:   0,
		},
		{
			Binding:  0,
			Location: 1,
			Format:   core1_0.FormatR32G32B32SignedFloat,
			Offset:   vec3,
		},
		{
			Binding:  0,
			Location: 2,
			Format:   core1_0.FormatR32G32SignedFloat,
			Offset:   2 * vec3,
		},
	}
}

type Scene struct {
	*pipeline.Bundle

	driver      core1_0.DeviceDriver
	device      *vulkan.Device
	allocator   *resource.Allocator
	clock       func() time.Duration
	depthFormat core1_0.Format

	renderPass     core1_0.RenderPass
	pipeline       core1_0.Pipeline
	pipelineLayout core1_0.PipelineLayout
	setLayout      core1_0.DescriptorSetLayout
	vertices       core1_0.Buffer
	indices        core1_0.Buffer
	indexCount     int
	textureView    core1_0.ImageView
	sampler        core1_0.Sampler

	target   *scenes.Target
	uniforms []*resource.BufferAllocation
	sets     []core1_0.DescriptorSet
}

func New(ctx scenes.Context) (scenes.Scene, error) {
	shaders, err := pipeline.LoadShaders(ctx.ShaderDir, Name, pipeline.Vertex, pipeline.Fragment)
	if err != nil {
		return nil, err
	}

	assets, err := LoadAssets(filepath.Join(ctx.AssetDir, Name))
	if err != nil {
		return nil, err
	}

	depthFormat, err := ctx.Device.DepthFormat()
	if err != nil {
		return nil, err
	}

	s := &Scene{
		driver:      ctx.Device.Driver(),
		device:      ctx.Device,
		allocator:   ctx.Allocator,
		clock:       hrtime.Now,
		depthFormat: depthFormat,
	}
	s.Bundle = pipeline.NewBundle(s.driver, s.buildChain, ctx.Logger)

	err = s.build(ctx, shaders, assets)
	if err != nil {
		s.Destroy()
		return nil, err
	}

	err = s.RebuildChain(ctx.Chain)
	if err != nil {
		s.Destroy()
		return nil, err
	}
	return s, nil
}

func (s *Scene) Name() string {
	return Name
}

func (s *Scene) uploadMesh(b *pipeline.Builder, mesh Mesh) error {
	vertices, err := s.allocator.UploadViaStaging(mesh.Vertices, core1_0.BufferUsageVertexBuffer)
	if err != nil {
		return err
	}
	b.Scope().Add(vertices)

	indices, err := s.allocator.UploadViaStaging(mesh.Indices, core1_0.BufferUsageIndexBuffer)
	if err != nil {
		return err
	}
	b.Scope().Add(indices)

	s.vertices, err = vulkan.BufferHandle(vertices.Buffer)
	if err != nil {
		return err
	}
	s.indices, err = vulkan.BufferHandle(indices.Buffer)
	if err != nil {
		return err
	}
	s.indexCount = len(mesh.Indices)
	return nil
}

func (s *Scene) uploadTexture(b *pipeline.Builder, texture Texture) error {
	image, err := s.allocator.UploadImage(texture.Pixels, gpu.ImageInfo{
		Width:  texture.Width,
		Height: texture.Height,
		Format: core1_0.FormatR8G8B8A8SRGB,
	})
	if err != nil {
		return err
	}
	b.Scope().Add(image)

	view, err := s.allocator.CreateImageView(image.Image, image.Format, core1_0.ImageAspectColor, image.MipLevels)
	if err != nil {
		return err
	}
	b.Scope().Add(view)

	sampler, err := s.allocator.CreateSampler(gpu.SamplerInfo{
		MagFilter:   core1_0.FilterLinear,
		MinFilter:   core1_0.FilterLinear,
		AddressMode: core1_0.SamplerAddressModeRepeat,
		MipmapMode:  core1_0.SamplerMipmapModeLinear,
		Anisotropy:  true,
		MaxLod:      float32(image.MipLevels),
	})
	if err != nil {
		return err
	}
	b.Scope().Add(sampler)

	s.textureView, err = vulkan.ImageViewHandle(view)
	if err != nil {
		return err
	}
	s.sampler, err = vulkan.SamplerHandle(sampler)
	return err
}

func (s *Scene) build(ctx scenes.Context, shaders pipeline.Shaders, assets *Assets) error {
	b := s.Persistent()

	err := s.uploadMesh(b, assets.Mesh)
	if err != nil {
		return err
	}

	err = s.uploadTexture(b, assets.Texture)
	if err != nil {
		return err
	}

	s.setLayout, err = b.DescriptorSetLayout(
		core1_0.DescriptorSetLayoutBinding{
			Binding:         0,
			DescriptorType:  core1_0.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      core1_0.StageVertex,
		},
		core1_0.DescriptorSetLayoutBinding{
			Binding:         1,
			DescriptorType:  core1_0.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      core1_0.StageFragment,
		},
	)
	if err != nil {
		return err
	}

	s.pipelineLayout, err = b.PipelineLayout([]core1_0.DescriptorSetLayout{s.setLayout})
	if err != nil {
		return err
	}

	s.renderPass, err = b.RenderPass(pipeline.RenderPassInfo{
		ColorFormat: ctx.Chain.Format.Format,
		DepthFormat: s.depthFormat,
	})
	if err != nil {
		return err
	}

	s.pipeline, err = b.GraphicsPipeline(pipeline.GraphicsInfo{
		Shaders:    shaders,
		Bindings:   vertexBindings(),
		Attributes: vertexAttributes(),
		Topology:   core1_0.PrimitiveTopologyTriangleList,
		CullMode:   core1_0.CullModeBack,
		Depth:      true,
		Layout:     s.pipelineLayout,
		RenderPass: s.renderPass,
	})
	return err
}

// buildChain creates the depth buffer, target, uniform buffers and descriptor
// sets for one chain generation.
func (s *Scene) buildChain(b *pipeline.Builder, chain *swapchain.Chain) error {
	depth, err := scenes.DepthBuffer(s.allocator, b.Scope(), s.depthFormat, chain.Extent)
	if err != nil {
		return err
	}
	depthHandle, err := vulkan.ImageViewHandle(depth)
	if err != nil {
		return err
	}

	s.target, err = scenes.NewTarget(b, s.device, s.renderPass, chain, depthHandle)
	if err != nil {
		return err
	}

	imageCount := chain.ImageCount()
	uniformSize := binary.Size(Uniforms{})

	s.uniforms = make([]*resource.BufferAllocation, 0, imageCount)
	for i := 0; i < imageCount; i++ {
		buffer, err := s.allocator.CreateBuffer(uniformSize, core1_0.BufferUsageUniformBuffer, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
		if err != nil {
			return err
		}
		b.Scope().Add(buffer)
		s.uniforms = append(s.uniforms, buffer)
	}

	pool, err := b.DescriptorPool(imageCount,
		core1_0.DescriptorPoolSize{Type: core1_0.DescriptorTypeUniformBuffer, DescriptorCount: imageCount},
		core1_0.DescriptorPoolSize{Type: core1_0.DescriptorTypeCombinedImageSampler, DescriptorCount: imageCount},
	)
	if err != nil {
		return err
	}

	s.sets, err = b.DescriptorSets(pool, s.setLayout, imageCount)
	if err != nil {
		return err
	}

	for i, set := range s.sets {
		uniformBuffer, err := vulkan.BufferHandle(s.uniforms[i].Buffer)
		if err != nil {
			return err
		}

		err = s.driver.UpdateDescriptorSets([]core1_0.WriteDescriptorSet{
			{
				DstSet:          set,
				DstBinding:      0,
				DstArrayElement: 0,
				DescriptorType:  core1_0.DescriptorTypeUniformBuffer,
				BufferInfo: []core1_0.DescriptorBufferInfo{
					{
						Buffer: uniformBuffer,
						Offset: 0,
						Range:  uniformSize,
					},
				},
			},
			{
				DstSet:          set,
				DstBinding:      1,
				DstArrayElement: 0,
				DescriptorType:  core1_0.DescriptorTypeCombinedImageSampler,
				ImageInfo: []core1_0.DescriptorImageInfo{
					{
						ImageView:   s.textureView,
						Sampler:     s.sampler,
						ImageLayout: core1_0.ImageLayoutShaderReadOnlyOptimal,
					},
				},
			},
		}, nil)
		if err != nil {
			return err
		}
	}

	return nil
}

// Record rewrites the uniforms of f's image. The engine has already waited for
// the last submission that read them.
func (s *Scene) Record(f frame.Frame) (gpu.CommandBuffer, error) {
	ubo := uniformsAt(s.clock().Seconds(), s.target.Extent)
	err := resource.WriteData(s.uniforms[f.ImageIndex].Memory, 0, &ubo)
	if err != nil {
		return nil, err
	}

	cmd, err := s.target.Begin(f)
	if err != nil {
		return nil, err
	}

	err = s.target.BeginPass(cmd, f)
	if err != nil {
		return nil, err
	}

	s.driver.CmdBindPipeline(cmd.Handle(), core1_0.PipelineBindPointGraphics, s.pipeline)
	s.driver.CmdBindVertexBuffers(cmd.Handle(), 0, []core1_0.Buffer{s.vertices}, []int{0})
	s.driver.CmdBindIndexBuffer(cmd.Handle(), s.indices, 0, core1_0.IndexTypeUInt32)
	s.driver.CmdBindDescriptorSets(cmd.Handle(), core1_0.PipelineBindPointGraphics, s.pipelineLayout, 0, []core1_0.DescriptorSet{
		s.sets[f.ImageIndex],
	}, nil)
	s.driver.CmdDrawIndexed(cmd.Handle(), s.indexCount, 1, 0, 0, 0)

	return s.target.Finish(cmd, f)
}
