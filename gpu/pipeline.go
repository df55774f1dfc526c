//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/raydemo"
)

// ErrNotConfigured is returned by Draw and Snapshot before Configure.
var ErrNotConfigured = errors.New("gpu: pipeline not configured")

// ErrUnknownBuffer is returned by WriteBuffer for ids the pipeline does not
// bind.
var ErrUnknownBuffer = errors.New("gpu: unknown buffer")

// binding describes one buffer in bind group 0.
type binding struct {
	id      raydemo.BufferID
	size    uint64
	usage   gputypes.BufferUsage
	layout  gputypes.BufferBindingType
	visible gputypes.ShaderStages
}

// pipelineDesc is what differs between the ray and triangle pipelines.
type pipelineDesc struct {
	label    string
	shader   string
	bindings []binding
	vertices []float32
	clear    gputypes.Color
}

// pipeline is a render pipeline drawing a vertex list into an offscreen
// target with one bind group.
type pipeline struct {
	desc pipelineDesc
	dev  *Device

	shader      *wgpu.ShaderModule
	bgLayout    *wgpu.BindGroupLayout
	layout      *wgpu.PipelineLayout
	render      *wgpu.RenderPipeline
	bindGroup   *wgpu.BindGroup
	vertexBuf   *wgpu.Buffer
	vertexCount uint32
	buffers     map[raydemo.BufferID]*wgpu.Buffer

	target    offscreen
	destroyed bool
}

func newPipeline(dev *Device, desc pipelineDesc) (*pipeline, error) {
	if dev == nil || dev.device == nil {
		return nil, fmt.Errorf("%s: %w", desc.label, raydemo.ErrNoContext)
	}
	p := &pipeline{
		desc:    desc,
		dev:     dev,
		buffers: make(map[raydemo.BufferID]*wgpu.Buffer, len(desc.bindings)),
		target:  offscreen{dev: dev, label: desc.label},
	}
	if err := p.init(); err != nil {
		p.destroy()
		return nil, err
	}
	slogger().Debug("gpu: pipeline created", "pipeline", desc.label)
	return p, nil
}

func (p *pipeline) init() error {
	d := p.dev.device
	label := p.desc.label

	shader, err := d.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: label + "_shader",
		WGSL:  p.desc.shader,
	})
	if err != nil {
		return fmt.Errorf("create %s shader: %w", label, err)
	}
	p.shader = shader

	entries := make([]gputypes.BindGroupLayoutEntry, len(p.desc.bindings))
	for i, b := range p.desc.bindings {
		entries[i] = gputypes.BindGroupLayoutEntry{
			Binding:    uint32(i),
			Visibility: b.visible,
			Buffer: &gputypes.BufferBindingLayout{
				Type:           b.layout,
				MinBindingSize: b.size,
			},
		}
	}
	p.bgLayout, err = d.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   label + "_bind_layout",
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("create %s bind group layout: %w", label, err)
	}

	p.layout, err = d.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label + "_layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{p.bgLayout},
	})
	if err != nil {
		return fmt.Errorf("create %s pipeline layout: %w", label, err)
	}

	p.render, err = d.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  label + "_pipeline",
		Layout: p.layout,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers: []gputypes.VertexBufferLayout{{
				ArrayStride: 8,
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes: []gputypes.VertexAttribute{{
					Format:         gputypes.VertexFormatFloat32x2,
					Offset:         0,
					ShaderLocation: 0,
				}},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{{
				Format:    gputypes.TextureFormatRGBA8Unorm,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return fmt.Errorf("create %s render pipeline: %w", label, err)
	}

	groupEntries := make([]wgpu.BindGroupEntry, len(p.desc.bindings))
	for i, b := range p.desc.bindings {
		buf, err := d.CreateBuffer(&wgpu.BufferDescriptor{
			Label: label + "_" + b.id.String(),
			Size:  b.size,
			Usage: b.usage | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("create %s %s buffer: %w", label, b.id, err)
		}
		p.buffers[b.id] = buf
		groupEntries[i] = wgpu.BindGroupEntry{Binding: uint32(i), Buffer: buf, Size: b.size}
	}
	p.bindGroup, err = d.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label + "_bind_group",
		Layout:  p.bgLayout,
		Entries: groupEntries,
	})
	if err != nil {
		return fmt.Errorf("create %s bind group: %w", label, err)
	}

	verts := packFloats(p.desc.vertices)
	p.vertexBuf, err = d.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + "_vertices",
		Size:  uint64(len(verts)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create %s vertex buffer: %w", label, err)
	}
	if err := p.dev.queue.WriteBuffer(p.vertexBuf, 0, verts); err != nil {
		return fmt.Errorf("upload %s vertices: %w", label, err)
	}
	p.vertexCount = uint32(len(p.desc.vertices) / 2)
	return nil
}

// Configure (re)allocates the render target.
func (p *pipeline) Configure(width, height int) error {
	if p.destroyed {
		return ErrNotConfigured
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", raydemo.ErrInvalidSize, width, height)
	}
	if limit := p.dev.MaxTextureDimension(); limit > 0 && (width > limit || height > limit) {
		return fmt.Errorf("%w: %dx%d exceeds %d", raydemo.ErrInvalidSize, width, height, limit)
	}
	return p.target.ensure(uint32(width), uint32(height))
}

// WriteBuffer uploads data to the buffer bound for id. The data is padded to
// a multiple of four bytes.
func (p *pipeline) WriteBuffer(id raydemo.BufferID, data []byte) error {
	buf, ok := p.buffers[id]
	if !ok {
		return fmt.Errorf("%s: %w: %s", p.desc.label, ErrUnknownBuffer, id)
	}
	if uint64(len(data)) > buf.Size() {
		return fmt.Errorf("%s: %s buffer: %d bytes exceeds %d", p.desc.label, id, len(data), buf.Size())
	}
	if rem := len(data) % 4; rem != 0 {
		padded := make([]byte, len(data)+4-rem)
		copy(padded, data)
		data = padded
	}
	if len(data) == 0 {
		return nil
	}
	return p.dev.queue.WriteBuffer(buf, 0, data)
}

// Draw records one render pass and submits it without waiting.
func (p *pipeline) Draw() error {
	if p.destroyed || p.target.view == nil {
		return ErrNotConfigured
	}
	encoder, err := p.dev.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{
		Label: p.desc.label + "_frame",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	pass, err := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: p.desc.label + "_pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       p.target.view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: p.desc.clear,
		}},
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("begin render pass: %w", err)
	}
	pass.SetPipeline(p.render)
	pass.SetBindGroup(0, p.bindGroup, nil)
	pass.SetVertexBuffer(0, p.vertexBuf, 0)
	pass.Draw(p.vertexCount, 1, 0, 0)
	if err := pass.End(); err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("end render pass: %w", err)
	}
	cmd, err := encoder.Finish()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	return p.target.submit(cmd)
}

// Snapshot reads back the last drawn frame.
func (p *pipeline) Snapshot() (*image.RGBA, error) {
	if p.destroyed || p.target.tex == nil {
		return nil, ErrNotConfigured
	}
	return p.target.readback()
}

// MaxTextureDimension reports the device texture size limit.
func (p *pipeline) MaxTextureDimension() int { return p.dev.MaxTextureDimension() }

// Pending returns the number of submitted frames not yet known complete.
func (p *pipeline) Pending() int { return p.target.pending() }

// Destroy releases every GPU resource. The device itself is left alone.
func (p *pipeline) Destroy() {
	if p.destroyed {
		return
	}
	p.destroy()
	slogger().Debug("gpu: pipeline destroyed", "pipeline", p.desc.label)
}

func (p *pipeline) destroy() {
	p.destroyed = true
	p.target.release()
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	for id, buf := range p.buffers {
		buf.Release()
		delete(p.buffers, id)
	}
	if p.vertexBuf != nil {
		p.vertexBuf.Release()
		p.vertexBuf = nil
	}
	if p.render != nil {
		p.render.Release()
		p.render = nil
	}
	if p.layout != nil {
		p.layout.Release()
		p.layout = nil
	}
	if p.bgLayout != nil {
		p.bgLayout.Release()
		p.bgLayout = nil
	}
	if p.shader != nil {
		p.shader.Release()
		p.shader = nil
	}
}

func packFloats(v []float32) []byte {
	b := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
	}
	return b
}

// clearColor converts an 8-bit color to a clear value.
func clearColor(r, g, b, a uint8) gputypes.Color {
	return gputypes.Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: float64(a) / 255,
	}
}
