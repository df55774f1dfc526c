//go:build !nogpu

package gpu

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
)

// readbackTimeout bounds how long Snapshot waits for the GPU.
const readbackTimeout = 5 * time.Second

// rowAlignment is the copy alignment for BytesPerRow in texture-to-buffer
// copies.
const rowAlignment = 256

// offscreen is the RGBA8 render target of one pipeline together with the
// command buffers still in flight against it.
type offscreen struct {
	dev   *Device
	label string

	width, height uint32
	tex           *wgpu.Texture
	view          *wgpu.TextureView

	inflight []submission
}

type submission struct {
	index uint64
	cmd   *wgpu.CommandBuffer
}

// ensure (re)creates the texture when the size changes. In-flight work is
// drained first because it may still reference the old view.
func (o *offscreen) ensure(w, h uint32) error {
	if o.tex != nil && o.width == w && o.height == h {
		return nil
	}
	o.drain()
	o.releaseTexture()

	tex, err := o.dev.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         o.label + "_target",
		Size:          wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create %s target: %w", o.label, err)
	}
	view, err := o.dev.device.CreateTextureView(tex, &wgpu.TextureViewDescriptor{
		Label:           o.label + "_target_view",
		Format:          gputypes.TextureFormatRGBA8Unorm,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		tex.Release()
		return fmt.Errorf("create %s target view: %w", o.label, err)
	}

	o.tex, o.view = tex, view
	o.width, o.height = w, h
	slogger().Debug("gpu: target allocated", "pipeline", o.label, "width", w, "height", h)
	return nil
}

// submit hands cmd to the queue without waiting and frees whatever earlier
// submissions the GPU has finished.
func (o *offscreen) submit(cmd *wgpu.CommandBuffer) error {
	index, err := o.dev.queue.Submit(cmd)
	if err != nil {
		cmd.Release()
		return fmt.Errorf("submit %s: %w", o.label, err)
	}
	o.inflight = append(o.inflight, submission{index: index, cmd: cmd})
	o.reclaim()
	return nil
}

func (o *offscreen) reclaim() {
	done := o.dev.queue.Poll()
	keep := o.inflight[:0]
	for _, s := range o.inflight {
		if s.index <= done {
			o.dev.device.FreeCommandBuffer(s.cmd)
			continue
		}
		keep = append(keep, s)
	}
	clear(o.inflight[len(keep):])
	o.inflight = keep
}

// drain waits for the GPU and frees every in-flight command buffer.
func (o *offscreen) drain() {
	if len(o.inflight) == 0 {
		return
	}
	if err := o.dev.device.WaitIdle(); err != nil {
		slogger().Warn("gpu: wait idle failed", "pipeline", o.label, "err", err)
	}
	for _, s := range o.inflight {
		o.dev.device.FreeCommandBuffer(s.cmd)
	}
	clear(o.inflight)
	o.inflight = o.inflight[:0]
}

// pending returns the number of submissions not yet known to be complete.
func (o *offscreen) pending() int { return len(o.inflight) }

// readback copies the target into a staging buffer and returns it as an
// image. It blocks until the copy completes or readbackTimeout passes.
func (o *offscreen) readback() (*image.RGBA, error) {
	if o.tex == nil {
		return nil, fmt.Errorf("%s: target not configured", o.label)
	}
	w, h := o.width, o.height
	stride := alignUp(w*4, rowAlignment)
	size := uint64(stride) * uint64(h)

	staging, err := o.dev.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: o.label + "_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s staging buffer: %w", o.label, err)
	}
	defer staging.Release()

	encoder, err := o.dev.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{
		Label: o.label + "_readback",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	encoder.TransitionTextures([]wgpu.TextureBarrier{{
		Texture: o.tex,
		Range: wgpu.TextureRange{
			Aspect:          gputypes.TextureAspectAll,
			MipLevelCount:   1,
			ArrayLayerCount: 1,
		},
		Usage: wgpu.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(o.tex, staging, []wgpu.BufferTextureCopy{{
		BufferLayout: wgpu.ImageDataLayout{Offset: 0, BytesPerRow: stride, RowsPerImage: h},
		TextureBase:  wgpu.ImageCopyTexture{Texture: o.tex, MipLevel: 0},
		Size:         wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	cmd, err := encoder.Finish()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	if err := o.submit(cmd); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), readbackTimeout)
	defer cancel()
	if err := staging.Map(ctx, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("map %s staging: %w", o.label, err)
	}
	rng, err := staging.MappedRange(0, size)
	if err != nil {
		if err := staging.Unmap(); err != nil {
			slogger().Warn("gpu: unmap failed", "err", err)
		}
		return nil, fmt.Errorf("mapped range: %w", err)
	}
	img := unpackRows(rng.Bytes(), int(w), int(h), int(stride))
	if err := staging.Unmap(); err != nil {
		slogger().Warn("gpu: unmap failed", "err", err)
	}
	o.reclaim()
	return img, nil
}

func (o *offscreen) releaseTexture() {
	if o.view != nil {
		o.view.Release()
		o.view = nil
	}
	if o.tex != nil {
		o.tex.Release()
		o.tex = nil
	}
	o.width, o.height = 0, 0
}

func (o *offscreen) release() {
	o.drain()
	o.releaseTexture()
}

// unpackRows drops the row padding of a texture copy.
func unpackRows(src []byte, w, h, stride int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	row := w * 4
	for y := range h {
		off := y * stride
		if off+row > len(src) {
			break
		}
		copy(img.Pix[y*img.Stride:y*img.Stride+row], src[off:off+row])
	}
	return img
}

func alignUp(n, a uint32) uint32 {
	return (n + a - 1) / a * a
}
