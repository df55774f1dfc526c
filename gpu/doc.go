//go:build !nogpu

// Package gpu renders the two demo surfaces with WebGPU.
//
// It uses the gogpu/wgpu Pure Go WebGPU implementation (zero CGO), which
// supports Vulkan, Metal, and DX12 backends depending on the platform.
//
// # Devices
//
// A Device is either opened by this package (OpenDevice) or borrowed from a
// host that already owns one (NewFromProvider). A borrowed device is never
// released here.
//
// # Pipelines
//
//   - RayPipeline: full-screen quad whose fragment shader path-traces the
//     sphere scene. Bindings: 0 uniform {frame, width, height}, 1 camera
//     basis, 2 read-only sphere storage.
//   - TrianglePipeline: three vertices rotated and translated by a
//     {pointer, angle} uniform.
//
// Both implement raydemo.Backend and render into an offscreen RGBA8
// texture. Draw submits without waiting for the GPU; Snapshot reads the
// texture back for export or display.
//
// # Build tags
//
// Build with -tags nogpu to exclude the package; the software backend
// then serves both surfaces.
package gpu
