package vulkan

import (
	"fmt"

	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_portability_subset"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"github.com/vkngwrapper/scenes/device"
	"github.com/vkngwrapper/scenes/gpu"
)

var deviceExtensions = []string{khr_swapchain.ExtensionName}

// Adapter is one physical device seen through the instance's window surface.
type Adapter struct {
	instance   *Instance
	handle     core1_0.PhysicalDevice
	properties *core1_0.PhysicalDeviceProperties
}

func (a *Adapter) Info() device.AdapterInfo {
	return device.AdapterInfo{
		Name:              a.properties.DriverName,
		Type:              fmt.Sprint(a.properties.DriverType),
		DriverVersion:     fmt.Sprint(a.properties.DriverVersion),
		PipelineCacheUUID: a.properties.PipelineCacheUUID,
	}
}

func (a *Adapter) QueueFamilyFlags() []core1_0.QueueFlags {
	families := a.instance.driver.GetPhysicalDeviceQueueFamilyProperties(a.handle)

	flags := make([]core1_0.QueueFlags, 0, len(families))
	for _, family := range families {
		flags = append(flags, family.QueueFlags)
	}
	return flags
}

func (a *Adapter) PresentSupport(family int) (bool, error) {
	supported, res, err := a.instance.surfaceDriver.GetPhysicalDeviceSurfaceSupport(a.instance.surface, a.handle, family)
	if err != nil {
		return false, resultError("query present support", res, err)
	}
	return supported, nil
}

// Surface is the instance's window surface bound to this adapter for capability
// queries.
func (a *Adapter) Surface() *Surface {
	return &Surface{
		driver:   a.instance.surfaceDriver,
		handle:   a.instance.surface,
		physical: a.handle,
		window:   a.instance.window,
	}
}

// MaxSamplerAnisotropy is the adapter's anisotropy limit.
func (a *Adapter) MaxSamplerAnisotropy() float32 {
	return a.properties.Limits.MaxSamplerAnisotropy
}

// Open creates the logical device with one queue per unique family, the swap
// chain extension, portability subset when the adapter reports it, and
// anisotropic sampling.
func (a *Adapter) Open(families device.QueueFamilies) (device.Logical, error) {
	var queueInfos []core1_0.DeviceQueueCreateInfo
	for _, family := range families.Unique() {
		queueInfos = append(queueInfos, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: family,
			QueuePriorities:  []float32{1.0},
		})
	}

	extensions, res, err := a.instance.driver.EnumerateDeviceExtensionProperties(a.handle)
	if err != nil {
		return nil, resultError("enumerate device extensions", res, err)
	}

	var extensionNames []string
	for _, name := range deviceExtensions {
		_, supported := extensions[name]
		if !supported {
			return nil, gpu.Fail(gpu.ErrDeviceCreationFailed, nil, "adapter lacks extension %s", name)
		}
		extensionNames = append(extensionNames, name)
	}

	_, portability := extensions[khr_portability_subset.ExtensionName]
	if portability {
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}

	driver, res, err := a.instance.driver.CreateDevice(a.handle, nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos: queueInfos,
		EnabledFeatures: &core1_0.PhysicalDeviceFeatures{
			SamplerAnisotropy: true,
		},
		EnabledExtensionNames: extensionNames,
	})
	if err != nil {
		return nil, resultError("create device", res, err)
	}

	return newDevice(a, driver, families)
}

func (a *Adapter) memoryTypes() []gpu.MemoryType {
	properties := a.instance.driver.GetPhysicalDeviceMemoryProperties(a.handle)

	types := make([]gpu.MemoryType, 0, len(properties.MemoryTypes))
	for _, memoryType := range properties.MemoryTypes {
		types = append(types, gpu.MemoryType{
			PropertyFlags: memoryType.PropertyFlags,
			HeapIndex:     memoryType.HeapIndex,
		})
	}
	return types
}

// supportedFormat returns the first candidate whose optimal-tiling features
// include features.
func (a *Adapter) supportedFormat(candidates []core1_0.Format, features core1_0.FormatFeatureFlags) (core1_0.Format, bool) {
	for _, format := range candidates {
		props := a.instance.driver.GetPhysicalDeviceFormatProperties(a.handle, format)
		if props.OptimalTilingFeatures&features == features {
			return format, true
		}
	}
	return 0, false
}

