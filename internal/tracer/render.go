package tracer

import (
	"image"

	"github.com/gogpu/raydemo/internal/parallel"
)

// Render shades every pixel of dst with f. Tiles are spread over pool when
// it is non-nil and rendered on the calling goroutine otherwise.
//
// dst must match the frame size recorded in f.Uniforms; pixels outside
// that size are left untouched.
func Render(dst *image.RGBA, f *Frame, pool *parallel.WorkerPool) {
	w := min(dst.Rect.Dx(), int(f.Uniforms.Width))
	h := min(dst.Rect.Dy(), int(f.Uniforms.Height))
	tiles := parallel.SplitTiles(w, h, parallel.TileSize)

	if pool == nil || !pool.IsRunning() {
		for _, t := range tiles {
			renderTile(dst, f, t)
		}
		return
	}

	work := make([]func(), len(tiles))
	for i, t := range tiles {
		work[i] = func() { renderTile(dst, f, t) }
	}
	pool.ExecuteAll(work)
}

func renderTile(dst *image.RGBA, f *Frame, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := dst.PixOffset(dst.Rect.Min.X+r.Min.X, dst.Rect.Min.Y+y)
		for x := r.Min.X; x < r.Max.X; x++ {
			c := f.Shade(x, y)
			dst.Pix[off+0] = toByte(c.X)
			dst.Pix[off+1] = toByte(c.Y)
			dst.Pix[off+2] = toByte(c.Z)
			dst.Pix[off+3] = 0xff
			off += 4
		}
	}
}

// toByte matches the unorm conversion of an rgba8unorm render target.
func toByte(v float32) uint8 {
	switch {
	case v <= 0 || v != v:
		return 0
	case v >= 1:
		return 0xff
	}
	return uint8(v*255 + 0.5)
}
