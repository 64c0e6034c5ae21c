package vulkan

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2/v3"
	"github.com/vkngwrapper/scenes/device"
	"github.com/vkngwrapper/scenes/gpu"
)

var validationLayers = []string{"VK_LAYER_KHRONOS_validation"}

type InstanceOptions struct {
	AppName    string
	Validation bool
	Logger     *slog.Logger
}

// Instance owns the Vulkan instance, the optional debug messenger and the window
// surface every adapter presents to.
type Instance struct {
	global        core1_0.GlobalDriver
	driver        core1_0.CoreInstanceDriver
	debugDriver   ext_debug_utils.ExtensionDriver
	messenger     ext_debug_utils.DebugUtilsMessenger
	surfaceDriver khr_surface.ExtensionDriver
	surface       khr_surface.Surface
	window        *sdl.Window
	logger        *slog.Logger
}

// NewInstance creates an instance with the extensions SDL needs for window, plus
// debug utils when validation is on and portability enumeration when available,
// then creates the window surface.
func NewInstance(window *sdl.Window, options InstanceOptions) (*Instance, error) {
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	global, err := core.CreateDriverFromProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		return nil, errors.Wrap(err, "load vulkan")
	}

	instance := &Instance{
		global: global,
		window: window,
		logger: options.Logger,
	}

	err = instance.create(options)
	if err != nil {
		instance.Destroy()
		return nil, err
	}

	if options.Validation {
		instance.debugDriver = ext_debug_utils.CreateExtensionDriverFromCoreDriver(instance.driver)
		instance.messenger, _, err = instance.debugDriver.CreateDebugUtilsMessenger(nil, debugMessengerOptions(instance.logger))
		if err != nil {
			instance.Destroy()
			return nil, errors.Wrap(err, "create debug messenger")
		}
	}

	instance.surfaceDriver = khr_surface.CreateExtensionDriverFromCoreDriver(instance.driver)
	instance.surface, err = vkng_sdl2.CreateSurface(instance.driver.Instance(), instance.surfaceDriver, window)
	if err != nil {
		instance.Destroy()
		return nil, errors.Wrap(err, "create window surface")
	}

	return instance, nil
}

func (i *Instance) create(options InstanceOptions) error {
	info := core1_0.InstanceCreateInfo{
		ApplicationName:    options.AppName,
		ApplicationVersion: common.CreateVersion(1, 0, 0),
		EngineName:         "scenes",
		EngineVersion:      common.CreateVersion(1, 0, 0),
		APIVersion:         common.Vulkan1_2,
	}

	extensions, _, err := i.global.AvailableExtensions()
	if err != nil {
		return errors.Wrap(err, "enumerate instance extensions")
	}

	for _, ext := range i.window.VulkanGetInstanceExtensions() {
		_, hasExt := extensions[ext]
		if !hasExt {
			return errors.Newf("missing instance extension %s required by sdl", ext)
		}
		info.EnabledExtensionNames = append(info.EnabledExtensionNames, ext)
	}

	_, enumerationSupported := extensions[khr_portability_enumeration.ExtensionName]
	if enumerationSupported {
		info.EnabledExtensionNames = append(info.EnabledExtensionNames, khr_portability_enumeration.ExtensionName)
		info.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	if options.Validation {
		layers, _, err := i.global.AvailableLayers()
		if err != nil {
			return errors.Wrap(err, "enumerate instance layers")
		}

		for _, layer := range validationLayers {
			_, hasLayer := layers[layer]
			if !hasLayer {
				return errors.Newf("validation layer %s not available, install the Vulkan SDK or run without validation", layer)
			}
			info.EnabledLayerNames = append(info.EnabledLayerNames, layer)
		}

		info.EnabledExtensionNames = append(info.EnabledExtensionNames, ext_debug_utils.ExtensionName)
		info.Next = debugMessengerOptions(i.logger)
	}

	var res common.VkResult
	i.driver, res, err = i.global.CreateInstance(nil, info)
	if err != nil {
		return resultError("create instance", res, err)
	}
	return nil
}

// Adapters lists the physical devices in driver enumeration order.
func (i *Instance) Adapters() ([]device.Adapter, error) {
	physicalDevices, res, err := i.driver.EnumeratePhysicalDevices()
	if err != nil {
		return nil, resultError("enumerate physical devices", res, err)
	}

	adapters := make([]device.Adapter, 0, len(physicalDevices))
	for _, physicalDevice := range physicalDevices {
		properties, err := i.driver.GetPhysicalDeviceProperties(physicalDevice)
		if err != nil {
			return nil, gpu.Fail(gpu.ErrNoCompatibleAdapter, err, "read adapter properties")
		}

		adapters = append(adapters, &Adapter{
			instance:   i,
			handle:     physicalDevice,
			properties: properties,
		})
	}
	return adapters, nil
}

// Destroy releases the surface, debug messenger and instance. Every device
// created from the instance must already be destroyed.
func (i *Instance) Destroy() {
	if i.surface.Initialized() {
		i.surfaceDriver.DestroySurface(i.surface, nil)
		i.surface = khr_surface.Surface{}
	}

	if i.messenger.Initialized() {
		i.debugDriver.DestroyDebugUtilsMessenger(i.messenger, nil)
		i.messenger = ext_debug_utils.DebugUtilsMessenger{}
	}

	if i.driver != nil {
		i.driver.DestroyInstance(nil)
		i.driver = nil
	}
}
