// Package software renders the two demo surfaces on the CPU.
//
// RayRenderer traces the same buffers the GPU ray pipeline consumes, using
// the tile-parallel tracer, so its frames match the shader pixel for pixel
// up to float rounding. TriangleRenderer rasterizes the triangle with gg.
//
// Both satisfy raydemo.Backend and are used when no GPU is available or the
// binary is built with -tags nogpu.
package software
