// Package pipeline builds render passes, pipelines, framebuffers and descriptor
// objects, and ties their lifetime to a swap chain generation.
package pipeline

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/scenes/gpu"
	"github.com/vkngwrapper/scenes/resource"
)

// Builder creates pipeline objects and registers each one in its scope, so
// destroying the scope releases everything built through it in reverse order.
// Every failure is fatal to the caller and marked ErrPipelineCreationFailed.
type Builder struct {
	driver core1_0.DeviceDriver
	scope  *resource.Scope
}

func NewBuilder(driver core1_0.DeviceDriver, scope *resource.Scope) *Builder {
	return &Builder{driver: driver, scope: scope}
}

func (b *Builder) Scope() *resource.Scope {
	return b.scope
}

func (b *Builder) Driver() core1_0.DeviceDriver {
	return b.driver
}

func failed(op string, res common.VkResult, err error) error {
	if err == nil {
		err = errors.Newf("unexpected result %s", res)
	}
	err = errors.WithSecondaryError(errors.WithStack(&gpu.ResultError{Op: op, Result: int(res), Name: res.String()}), err)
	return errors.Mark(err, gpu.ErrPipelineCreationFailed)
}

func (b *Builder) RenderPass(info RenderPassInfo) (core1_0.RenderPass, error) {
	renderPass, res, err := b.driver.CreateRenderPass(nil, renderPassCreateInfo(info))
	if err != nil {
		return renderPass, failed("create render pass", res, err)
	}

	b.scope.Defer(func() { b.driver.DestroyRenderPass(renderPass, nil) })
	return renderPass, nil
}

func (b *Builder) DescriptorSetLayout(bindings ...core1_0.DescriptorSetLayoutBinding) (core1_0.DescriptorSetLayout, error) {
	layout, res, err := b.driver.CreateDescriptorSetLayout(nil, core1_0.DescriptorSetLayoutCreateInfo{
		Bindings: bindings,
	})
	if err != nil {
		return layout, failed("create descriptor set layout", res, err)
	}

	b.scope.Defer(func() { b.driver.DestroyDescriptorSetLayout(layout, nil) })
	return layout, nil
}

// PipelineLayout aggregates setLayouts and any push constant ranges.
func (b *Builder) PipelineLayout(setLayouts []core1_0.DescriptorSetLayout, pushConstants ...core1_0.PushConstantRange) (core1_0.PipelineLayout, error) {
	layout, res, err := b.driver.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{
		SetLayouts:         setLayouts,
		PushConstantRanges: pushConstants,
	})
	if err != nil {
		return layout, failed("create pipeline layout", res, err)
	}

	b.scope.Defer(func() { b.driver.DestroyPipelineLayout(layout, nil) })
	return layout, nil
}

// shaderModules creates one module per stage. The modules are only needed while
// the pipeline is created; release destroys them.
func (b *Builder) shaderModules(shaders Shaders, stages ...Stage) ([]core1_0.PipelineShaderStageCreateInfo, func(), error) {
	var modules []core1_0.ShaderModule
	release := func() {
		for _, module := range modules {
			b.driver.DestroyShaderModule(module, nil)
		}
	}

	infos := make([]core1_0.PipelineShaderStageCreateInfo, 0, len(stages))
	for _, stage := range stages {
		code, ok := shaders[stage]
		if !ok {
			release()
			return nil, nil, gpu.Fail(gpu.ErrShaderMissing, nil, "no %s shader", stage)
		}

		module, res, err := b.driver.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
			Code: code,
		})
		if err != nil {
			release()
			return nil, nil, failed("create "+string(stage)+" shader module", res, err)
		}
		modules = append(modules, module)

		infos = append(infos, core1_0.PipelineShaderStageCreateInfo{
			Stage:  stage.Flags(),
			Module: module,
			Name:   "main",
		})
	}

	return infos, release, nil
}

func (b *Builder) GraphicsPipeline(info GraphicsInfo) (core1_0.Pipeline, error) {
	stages, release, err := b.shaderModules(info.Shaders, Vertex, Fragment)
	if err != nil {
		return core1_0.Pipeline{}, err
	}
	defer release()

	pipelines, res, err := b.driver.CreateGraphicsPipelines(nil, nil, graphicsCreateInfo(info, stages))
	if err != nil {
		return core1_0.Pipeline{}, failed("create graphics pipeline", res, err)
	}

	pipeline := pipelines[0]
	b.scope.Defer(func() { b.driver.DestroyPipeline(pipeline, nil) })
	return pipeline, nil
}

func (b *Builder) ComputePipeline(info ComputeInfo) (core1_0.Pipeline, error) {
	stages, release, err := b.shaderModules(Shaders{Compute: info.Shader}, Compute)
	if err != nil {
		return core1_0.Pipeline{}, err
	}
	defer release()

	stage := stages[0]
	if info.WorkgroupSize > 0 {
		stage.SpecializationInfo = map[uint32]any{
			0: uint32(info.WorkgroupSize),
		}
	}

	pipelines, res, err := b.driver.CreateComputePipelines(nil, nil, core1_0.ComputePipelineCreateInfo{
		Stage:             stage,
		Layout:            info.Layout,
		BasePipelineIndex: -1,
	})
	if err != nil {
		return core1_0.Pipeline{}, failed("create compute pipeline", res, err)
	}

	pipeline := pipelines[0]
	b.scope.Defer(func() { b.driver.DestroyPipeline(pipeline, nil) })
	return pipeline, nil
}

// Framebuffers creates one framebuffer per entry of attachments, each binding
// that entry's views to renderPass in attachment order.
func (b *Builder) Framebuffers(renderPass core1_0.RenderPass, extent core1_0.Extent2D, attachments [][]core1_0.ImageView) ([]core1_0.Framebuffer, error) {
	framebuffers := make([]core1_0.Framebuffer, 0, len(attachments))
	for i, views := range attachments {
		framebuffer, res, err := b.driver.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
			RenderPass:  renderPass,
			Layers:      1,
			Attachments: views,
			Width:       extent.Width,
			Height:      extent.Height,
		})
		if err != nil {
			return nil, failed(fmt.Sprintf("create framebuffer %d", i), res, err)
		}

		b.scope.Defer(func() { b.driver.DestroyFramebuffer(framebuffer, nil) })
		framebuffers = append(framebuffers, framebuffer)
	}
	return framebuffers, nil
}

func (b *Builder) DescriptorPool(maxSets int, sizes ...core1_0.DescriptorPoolSize) (core1_0.DescriptorPool, error) {
	pool, res, err := b.driver.CreateDescriptorPool(nil, core1_0.DescriptorPoolCreateInfo{
		MaxSets:   maxSets,
		PoolSizes: sizes,
	})
	if err != nil {
		return pool, failed("create descriptor pool", res, err)
	}

	b.scope.Defer(func() { b.driver.DestroyDescriptorPool(pool, nil) })
	return pool, nil
}

// DescriptorSets allocates count sets of layout from pool. They are released
// with the pool.
func (b *Builder) DescriptorSets(pool core1_0.DescriptorPool, layout core1_0.DescriptorSetLayout, count int) ([]core1_0.DescriptorSet, error) {
	layouts := make([]core1_0.DescriptorSetLayout, count)
	for i := range layouts {
		layouts[i] = layout
	}

	sets, res, err := b.driver.AllocateDescriptorSets(core1_0.DescriptorSetAllocateInfo{
		DescriptorPool: pool,
		SetLayouts:     layouts,
	})
	if err != nil {
		return nil, failed("allocate descriptor sets", res, err)
	}
	return sets, nil
}
