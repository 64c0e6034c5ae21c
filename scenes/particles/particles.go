// Package particles advances a particle system in a compute shader and draws
// the same storage buffer as points.
package particles

import (
	"bytes"
	"encoding/binary"
	"math"
	"math/rand/v2"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/scenes/frame"
	"github.com/vkngwrapper/scenes/gpu"
	"github.com/vkngwrapper/scenes/pipeline"
	"github.com/vkngwrapper/scenes/scenes"
	"github.com/vkngwrapper/scenes/swapchain"
	"github.com/vkngwrapper/scenes/vulkan"
)

const (
	Name          = "particles"
	ParticleCount = 8192
	WorkgroupSize = 256

	maxStep = 50 * time.Millisecond
)

// Particle matches the std430 layout of the compute shader's storage buffer.
type Particle struct {
	Position mgl32.Vec2
	Velocity mgl32.Vec2
	Color    mgl32.Vec4
}

// initialParticles scatters count particles on a ring, each moving outward.
func initialParticles(count int, seed uint64) []Particle {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	particles := make([]Particle, count)

	for i := range particles {
		radius := 0.25 * float32(math.Sqrt(rng.Float64()))
		theta := rng.Float64() * 2 * math.Pi
		direction := mgl32.Vec2{float32(math.Cos(theta)), float32(math.Sin(theta))}

		particles[i] = Particle{
			Position: direction.Mul(radius),
			Velocity: direction.Mul(0.25),
			Color:    mgl32.Vec4{rng.Float32(), rng.Float32(), rng.Float32(), 1},
		}
	}
	return particles
}

func workgroups(count, size int) int {
	return (count + size - 1) / size
}

type pushConstants struct {
	DeltaSeconds float32
	Count        uint32
}

func (p pushConstants) bytes() []byte {
	buf := &bytes.Buffer{}
	// Fixed-size struct into a bytes.Buffer cannot fail.
	_ = binary.Write(buf, common.ByteOrder, p)
	return buf.Bytes()
}

// stepSeconds is the simulation step between two records, clamped so a stall
// (a drag-resize, a minimized window) does not fling every particle away.
func stepSeconds(last, now time.Duration) float32 {
	delta := now - last
	if delta < 0 {
		delta = 0
	}
	if delta > maxStep {
		delta = maxStep
	}
	return float32(delta.Seconds())
}

type Scene struct {
	*pipeline.Bundle

	driver core1_0.DeviceDriver
	device *vulkan.Device
	clock  func() time.Duration
	last   time.Duration

	particles       core1_0.Buffer
	particlesSize   int
	computeLayout   core1_0.PipelineLayout
	computePipeline core1_0.Pipeline
	computeSet      core1_0.DescriptorSet
	renderPass      core1_0.RenderPass
	graphics        core1_0.Pipeline

	target *scenes.Target
}

func New(ctx scenes.Context) (scenes.Scene, error) {
	shaders, err := pipeline.LoadShaders(ctx.ShaderDir, Name, pipeline.Compute, pipeline.Vertex, pipeline.Fragment)
	if err != nil {
		return nil, err
	}

	s := &Scene{
		driver: ctx.Device.Driver(),
		device: ctx.Device,
		clock:  hrtime.Now,
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

	s.last = s.clock()
	return s, nil
}

func (s *Scene) Name() string {
	return Name
}

func (s *Scene) buildCompute(b *pipeline.Builder, shaders pipeline.Shaders) error {
	setLayout, err := b.DescriptorSetLayout(core1_0.DescriptorSetLayoutBinding{
		Binding:         0,
		DescriptorType:  core1_0.DescriptorTypeStorageBuffer,
		DescriptorCount: 1,
		StageFlags:      core1_0.StageCompute,
	})
	if err != nil {
		return err
	}

	s.computeLayout, err = b.PipelineLayout([]core1_0.DescriptorSetLayout{setLayout}, core1_0.PushConstantRange{
		Stages: core1_0.StageCompute,
		Offset: 0,
		Size:   binary.Size(pushConstants{}),
	})
	if err != nil {
		return err
	}

	s.computePipeline, err = b.ComputePipeline(pipeline.ComputeInfo{
		Shader:        shaders[pipeline.Compute],
		Layout:        s.computeLayout,
		WorkgroupSize: WorkgroupSize,
	})
	if err != nil {
		return err
	}

	pool, err := b.DescriptorPool(1, core1_0.DescriptorPoolSize{
		Type:            core1_0.DescriptorTypeStorageBuffer,
		DescriptorCount: 1,
	})
	if err != nil {
		return err
	}

	sets, err := b.DescriptorSets(pool, setLayout, 1)
	if err != nil {
		return err
	}
	s.computeSet = sets[0]

	return s.driver.UpdateDescriptorSets([]core1_0.WriteDescriptorSet{
		{
			DstSet:          s.computeSet,
			DstBinding:      0,
			DstArrayElement: 0,
			DescriptorType:  core1_0.DescriptorTypeStorageBuffer,
			BufferInfo: []core1_0.DescriptorBufferInfo{
				{
					Buffer: s.particles,
					Offset: 0,
					Range:  s.particlesSize,
				},
			},
		},
	}, nil)
}

func (s *Scene) build(ctx scenes.Context, shaders pipeline.Shaders) error {
	b := s.Persistent()

	buffer, err := ctx.Allocator.UploadViaStaging(initialParticles(ParticleCount, 1), core1_0.BufferUsageStorageBuffer|core1_0.BufferUsageVertexBuffer)
	if err != nil {
		return err
	}
	b.Scope().Add(buffer)
	s.particlesSize = buffer.Size
	s.particles, err = vulkan.BufferHandle(buffer.Buffer)
	if err != nil {
		return err
	}

	err = s.buildCompute(b, shaders)
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

	s.graphics, err = b.GraphicsPipeline(pipeline.GraphicsInfo{
		Shaders: shaders,
		Bindings: []core1_0.VertexInputBindingDescription{
			{
				Binding:   0,
				Stride:    binary.Size(Particle{}),
				InputRate: core1_0.VertexInputRateVertex,
			},
		},
		Attributes: []core1_0.VertexInputAttributeDescription{
			{
				Binding:  0,
				Location: 0,
				Format:   core1_0.FormatR32G32SignedFloat,
				Offset:   0,
			},
			{
				Binding:  0,
				Location: 1,
				Format:   core1_0.FormatR32G32B32A32SignedFloat,
				Offset:   2 * binary.Size(mgl32.Vec2{}),
			},
		},
		Topology:   core1_0.PrimitiveTopologyPointList,
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

func (s *Scene) particleBarrier(cmd core1_0.CommandBuffer, srcStage, dstStage core1_0.PipelineStageFlags, srcAccess, dstAccess core1_0.AccessFlags) error {
	return s.driver.CmdPipelineBarrier(cmd, srcStage, dstStage, 0, nil, []core1_0.BufferMemoryBarrier{
		{
			SrcAccessMask:       srcAccess,
			DstAccessMask:       dstAccess,
			SrcQueueFamilyIndex: -1,
			DstQueueFamilyIndex: -1,
			Buffer:              s.particles,
			Offset:              0,
			Size:                s.particlesSize,
		},
	}, nil)
}

// Record dispatches the simulation step, then draws the result. The storage
// buffer is shared by every frame in flight, so the dispatch first waits for
// earlier frames' vertex reads, and the draw waits for the dispatch's writes.
func (s *Scene) Record(f frame.Frame) (gpu.CommandBuffer, error) {
	now := s.clock()
	push := pushConstants{
		DeltaSeconds: stepSeconds(s.last, now),
		Count:        ParticleCount,
	}
	s.last = now

	cmd, err := s.target.Begin(f)
	if err != nil {
		return nil, err
	}

	err = s.particleBarrier(cmd.Handle(),
		core1_0.PipelineStageVertexInput, core1_0.PipelineStageComputeShader,
		core1_0.AccessVertexAttributeRead, core1_0.AccessShaderWrite)
	if err != nil {
		return nil, err
	}

	s.driver.CmdBindPipeline(cmd.Handle(), core1_0.PipelineBindPointCompute, s.computePipeline)
	s.driver.CmdBindDescriptorSets(cmd.Handle(), core1_0.PipelineBindPointCompute, s.computeLayout, 0, []core1_0.DescriptorSet{s.computeSet}, nil)
	s.driver.CmdPushConstants(cmd.Handle(), s.computeLayout, core1_0.StageCompute, 0, push.bytes())
	s.driver.CmdDispatch(cmd.Handle(), workgroups(ParticleCount, WorkgroupSize), 1, 1)

	err = s.particleBarrier(cmd.Handle(),
		core1_0.PipelineStageComputeShader, core1_0.PipelineStageVertexInput,
		core1_0.AccessShaderWrite, core1_0.AccessVertexAttributeRead)
	if err != nil {
		return nil, err
	}

	err = s.target.BeginPass(cmd, f)
	if err != nil {
		return nil, err
	}

	s.driver.CmdBindPipeline(cmd.Handle(), core1_0.PipelineBindPointGraphics, s.graphics)
	s.driver.CmdBindVertexBuffers(cmd.Handle(), 0, []core1_0.Buffer{s.particles}, []int{0})
	s.driver.CmdDraw(cmd.Handle(), ParticleCount, 1, 0, 0)

	return s.target.Finish(cmd, f)
}
