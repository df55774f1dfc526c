//go:build !nogpu

package gpu

import _ "embed"

// Embedded WGSL shader sources.

//go:embed shaders/ray.wgsl
var rayShaderSource string

//go:embed shaders/triangle.wgsl
var triangleShaderSource string
