// Package gpu holds the small set of interfaces the frame engine, swap chain manager
// and resource helpers are written against. The vulkan package implements them on
// top of vkngwrapper; tests implement them with fakes and gomock.
//
// Every handle that owns driver memory implements Destroyer. Nothing in this package
// performs a driver call.
package gpu

//go:generate mockgen -source=sync.go -destination=mocks/sync.go -package=mocks
//go:generate mockgen -source=present.go -destination=mocks/present.go -package=mocks
