// Package triangle draws one colored triangle from a device-local vertex
// buffer.
package triangle

import (
	"encoding/binary"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/scenes/frame"
	"github.com/vkngwrapper/scenes/gpu"
	"github.com/vkngwrapper/scenes/pipeline"
	"github.com/vkngwrapper/scenes/scenes"
	"github.com/vkngwrapper/scenes/swapchain"
	"github.com/vkngwrapper/scenes/vulkan"
)

const Name = "triangle"

type Vertex struct {
	Position mgl32.Vec2
	Color    mgl32.Vec3
}

var vertices = []Vertex{
	{Position: mgl32.Vec2{0.0, -0.5}, Color: mgl32.Vec3{1, 0, 0}},
	{Position: mgl32.Vec2{0.5, 0.5}, Color: mgl32.Vec3{0, 1, 0}},
	{Position: mgl32.Vec2{-0.5, 0.5}, Color: mgl32.Vec3{0, 0, 1}},
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
	return []core1_0.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   core1_0.FormatR32G32SignedFloat,
			Offset:   0,
		},
		{
			Binding:  0,
			Location: 1,
			Format:   core1_0.FormatR32G32B32SignedFloat,
			Offset:   binary.Size(mgl32.Vec2{}),
		},
	}
}

type Scene struct {
	*pipeline.Bundle

	driver     core1_0.DeviceDriver
	device     *vulkan.Device
	renderPass core1_0.RenderPass
	pipeline   core1_0.Pipeline
	vertices   core1_0.Buffer
	target     *scenes.Target
}

func New(ctx scenes.Context) (scenes.Scene, error) {
	shaders, err := pipeline.LoadShaders(ctx.ShaderDir, Name, pipeline.Vertex, pipeline.Fragment)
	if err != nil {
		return nil, err
	}

	s := &Scene{
		driver: ctx.Device.Driver(),
		device: ctx.Device,
	}
	s.Bundle = pipeline.NewBundle(s.driver, s.buildChain, ctx.Logger)

	err = s.build(ctx, shaders)
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

func (s *Scene) build(ctx scenes.Context, shaders pipeline.Shaders) error {
	b := s.Persistent()

	buffer, err := ctx.Allocator.UploadViaStaging(vertices, core1_0.BufferUsageVertexBuffer)
	if err != nil {
		return err
	}
	b.Scope().Add(buffer)
	s.vertices, err = vulkan.BufferHandle(buffer.Buffer)
	if err != nil {
		return err
	}

	s.renderPass, err = b.RenderPass(pipeline.RenderPassInfo{ColorFormat: ctx.Chain.Format.Format})
	if err != nil {
		return err
	}

	layout, err := b.PipelineLayout(nil)
	if err != nil {
		return err
	}

	s.pipeline, err = b.GraphicsPipeline(pipeline.GraphicsInfo{
		Shaders:    shaders,
		Bindings:   vertexBindings(),
		Attributes: vertexAttributes(),
		Topology:   core1_0.PrimitiveTopologyTriangleList,
		CullMode:   core1_0.CullModeNone,
		Layout:     layout,
		RenderPass: s.renderPass,
	})
	return err
}

func (s *Scene) buildChain(b *pipeline.Builder, chain *swapchain.Chain) error {
	target, err := scenes.NewTarget(b, s.device, s.renderPass, chain)
	if err != nil {
		return err
	}
	s.target = target
	return nil
}

func (s *Scene) Record(f frame.Frame) (gpu.CommandBuffer, error) {
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
	s.driver.CmdDraw(cmd.Handle(), len(vertices), 1, 0, 0)

	return s.target.Finish(cmd, f)
}
