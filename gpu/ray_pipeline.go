//go:build !nogpu

package gpu

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/raydemo"
)

// quadVertices covers clip space with two triangles.
var quadVertices = []float32{
	-1, -1, 1, -1, 1, 1,
	-1, -1, 1, 1, -1, 1,
}

// RayPipeline path-traces the sphere scene in a fragment shader over a
// full-screen quad.
type RayPipeline struct {
	*pipeline
}

var (
	_ raydemo.Backend     = (*RayPipeline)(nil)
	_ raydemo.Snapshotter = (*RayPipeline)(nil)
	_ raydemo.Limiter     = (*RayPipeline)(nil)
)

// NewRayPipeline compiles the ray shader and allocates its buffers on dev.
func NewRayPipeline(dev *Device) (*RayPipeline, error) {
	fragment := gputypes.ShaderStageFragment
	p, err := newPipeline(dev, pipelineDesc{
		label:  "ray",
		shader: rayShaderSource,
		bindings: []binding{
			{
				id:      raydemo.BufferUniform,
				size:    raydemo.UniformBufferSize,
				usage:   gputypes.BufferUsageUniform,
				layout:  gputypes.BufferBindingTypeUniform,
				visible: fragment,
			},
			{
				id:      raydemo.BufferCamera,
				size:    raydemo.CameraSize,
				usage:   gputypes.BufferUsageUniform,
				layout:  gputypes.BufferBindingTypeUniform,
				visible: fragment,
			},
			{
				id:      raydemo.BufferScene,
				size:    raydemo.SceneSize,
				usage:   gputypes.BufferUsageStorage,
				layout:  gputypes.BufferBindingTypeReadOnlyStorage,
				visible: fragment,
			},
		},
		vertices: quadVertices,
		clear:    gputypes.Color{A: 1},
	})
	if err != nil {
		return nil, err
	}
	return &RayPipeline{pipeline: p}, nil
}
