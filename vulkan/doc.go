// Package vulkan implements the gpu, device and swapchain ports on top of
// vkngwrapper. It is the only package that issues driver calls for device
// lifecycle, synchronization, memory and presentation; the pipeline and scene
// packages record commands through the driver it exposes.
package vulkan
