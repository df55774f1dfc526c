//go:build !nogpu

package gpu

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/raydemo"
)

// TrianglePipeline draws the spinning triangle.
type TrianglePipeline struct {
	*pipeline
}

var (
	_ raydemo.Backend     = (*TrianglePipeline)(nil)
	_ raydemo.Snapshotter = (*TrianglePipeline)(nil)
	_ raydemo.Limiter     = (*TrianglePipeline)(nil)
)

// NewTrianglePipeline compiles the triangle shader and uploads its vertices.
func NewTrianglePipeline(dev *Device) (*TrianglePipeline, error) {
	verts := make([]float32, 0, 2*len(raydemo.TriangleVertices))
	for _, v := range raydemo.TriangleVertices {
		verts = append(verts, v[0], v[1])
	}
	bg := raydemo.TriangleClear
	p, err := newPipeline(dev, pipelineDesc{
		label:  "triangle",
		shader: triangleShaderSource,
		bindings: []binding{{
			id:      raydemo.BufferTriangle,
			size:    raydemo.TriangleUniformSize,
			usage:   gputypes.BufferUsageUniform,
			layout:  gputypes.BufferBindingTypeUniform,
			visible: gputypes.ShaderStageVertex,
		}},
		vertices: verts,
		clear:    clearColor(bg.R, bg.G, bg.B, bg.A),
	})
	if err != nil {
		return nil, err
	}
	return &TrianglePipeline{pipeline: p}, nil
}
