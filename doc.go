// Package raydemo drives two small GPU demos side by side: a spinning
// triangle that follows the pointer, and a progressive path-traced sphere
// scene in the style of "Ray Tracing in One Weekend".
//
// # Overview
//
// The package owns the CPU side of both demos:
//   - [Vec3] and [OrbitCamera] build the camera basis
//   - [BuildScene] packs the sphere records into a fixed-capacity buffer
//   - [Uniforms] carries the per-frame counter and canvas size
//   - [AppState] runs the frame loop and throttles the ray surface
//   - [Gate] tracks which canvases are on screen
//
// Rendering is delegated to a [Backend]. The gpu package renders with
// gogpu/wgpu and WGSL shaders; the software package mirrors the same
// shader on the CPU.
//
// # Quick Start
//
//	tri, _ := software.NewTriangleRenderer()
//	ray := software.NewRayRenderer()
//
//	app, err := raydemo.NewApp(tri, ray, raydemo.WithSeed(42))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Start(640, 360); err != nil {
//	    log.Fatal(err)
//	}
//	for now := range ticker.C {
//	    app.Tick(now)
//	}
//
// # Buffer Layouts
//
// All buffers are little-endian and match the shader declarations field for
// field:
//   - uniform: frame, width, height as u32 (12 bytes, padded to 16 on the GPU)
//   - camera: origin, u, v, w as four vec4 (64 bytes)
//   - scene: [MaxSpheres] records of [SphereStride] float32 (48 bytes each)
//
// # Threading
//
// AppState is not safe for concurrent use. All calls are expected from the
// single goroutine that drives the frame loop.
package raydemo
