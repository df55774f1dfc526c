// Package viewer models the demo page shown by the interactive host: two
// canvases stacked in a scrollable column, with pointer input routed to
// whichever canvas is under the cursor.
//
// It holds no windowing code, so hosts only translate their input events
// into Page calls.
package viewer

import (
	"fmt"

	"github.com/gogpu/raydemo"
)

// Canvas identifies one of the two surfaces on the page.
type Canvas int

// Canvases in page order.
const (
	CanvasNone Canvas = iota - 1
	CanvasTriangle
	CanvasRay
)

// Margin is the space around and between canvases in pixels.
const Margin = 24

// dragSlop is how far the pointer may move before a press stops being a
// click.
const dragSlop = 3

// randomBatch is the number of spheres added per request.
const randomBatch = 10

// Page lays out the canvases and forwards input to the app.
type Page struct {
	app *raydemo.AppState

	canvasW, canvasH int
	view             raydemo.Viewport
	scroll           float64
	loaded           bool

	pressed    bool
	button     raydemo.Button
	lastX      int
	lastY      int
	travel     int
	pressedOn  Canvas
	lastPicked int
	status     string
}

// NewPage tracks both surfaces of app with its visibility gate. Canvases
// are canvasW × canvasH pixels.
func NewPage(app *raydemo.AppState, canvasW, canvasH int) *Page {
	p := &Page{app: app, canvasW: canvasW, canvasH: canvasH, lastPicked: -1}
	app.Gate.Track(func() raydemo.Rect { return p.CanvasRect(CanvasTriangle) }, app.Triangle.SetVisible)
	app.Gate.Track(func() raydemo.Rect { return p.CanvasRect(CanvasRay) }, app.Ray.SetVisible)
	return p
}

// SetViewport records the visible page area. The first call fires the
// DOMContentLoaded and load events; later size changes fire resize.
func (p *Page) SetViewport(width, height int) {
	vp := raydemo.Viewport{Width: float64(width), Height: float64(height)}
	if !p.loaded {
		p.view = vp
		p.loaded = true
		p.app.Gate.Handle(raydemo.EventDOMContentLoaded, p.view)
		p.app.Gate.Handle(raydemo.EventLoad, p.view)
		return
	}
	if vp == p.view {
		return
	}
	p.view = vp
	p.scroll = p.clampScroll(p.scroll)
	p.app.Gate.Handle(raydemo.EventResize, p.view)
}

// Height returns the full page height.
func (p *Page) Height() int { return 3*Margin + 2*p.canvasH }

// Scroll moves the page by dy pixels (positive scrolls down) and fires a
// scroll event when the offset changes.
func (p *Page) Scroll(dy float64) {
	next := p.clampScroll(p.scroll + dy)
	if next == p.scroll {
		return
	}
	p.scroll = next
	p.app.Gate.Handle(raydemo.EventScroll, p.view)
}

// ScrollOffset returns the current scroll position.
func (p *Page) ScrollOffset() float64 { return p.scroll }

func (p *Page) clampScroll(s float64) float64 {
	limit := float64(p.Height()) - p.view.Height
	return max(0, min(s, limit))
}

// CanvasRect returns a canvas's bounds in viewport coordinates.
func (p *Page) CanvasRect(c Canvas) raydemo.Rect {
	top := Margin + int(c)*(p.canvasH+Margin)
	return raydemo.Rect{
		X:      Margin,
		Y:      float64(top) - p.scroll,
		Width:  float64(p.canvasW),
		Height: float64(p.canvasH),
	}
}

// Hit returns the canvas under viewport position (x, y) and the position in
// canvas pixels.
func (p *Page) Hit(x, y int) (c Canvas, cx, cy float32) {
	for _, c := range []Canvas{CanvasTriangle, CanvasRay} {
		r := p.CanvasRect(c)
		fx, fy := float64(x)-r.X, float64(y)-r.Y
		if fx >= 0 && fy >= 0 && fx < r.Width && fy < r.Height {
			return c, float32(fx), float32(fy)
		}
	}
	return CanvasNone, 0, 0
}

// PointerMove handles a cursor move with no button held, or the motion
// part of a drag.
func (p *Page) PointerMove(x, y int) {
	if p.pressed {
		dx, dy := x-p.lastX, y-p.lastY
		p.travel += abs(dx) + abs(dy)
		p.lastX, p.lastY = x, y
		if p.pressedOn == CanvasRay && p.travel > dragSlop && (dx != 0 || dy != 0) {
			p.app.PointerDrag(p.button, float32(dx), float32(dy))
		}
		return
	}
	if c, cx, cy := p.Hit(x, y); c == CanvasTriangle {
		p.app.PointerMove(cx, cy)
	}
}

// PointerDown starts a press.
func (p *Page) PointerDown(button raydemo.Button, x, y int) {
	p.pressed = true
	p.button = button
	p.lastX, p.lastY = x, y
	p.travel = 0
	p.pressedOn, _, _ = p.Hit(x, y)
}

// PointerUp ends a press. A left click on the ray canvas picks the sphere
// under the cursor.
func (p *Page) PointerUp(x, y int) {
	if !p.pressed {
		return
	}
	p.pressed = false
	if p.button != raydemo.ButtonLeft || p.travel > dragSlop {
		return
	}
	c, cx, cy := p.Hit(x, y)
	if c != CanvasRay || p.pressedOn != CanvasRay {
		return
	}
	p.lastPicked = p.app.Pick(int(cx), int(cy))
	if p.lastPicked < 0 {
		p.status = "sky"
	} else {
		sp := p.app.Ray.Payload.Scene.Sphere(p.lastPicked)
		p.status = fmt.Sprintf("sphere %d: %s r=%.2f", p.lastPicked, sp.Material, sp.Radius)
	}
	raydemo.Logger().Info("picked", "index", p.lastPicked)
}

// Wheel zooms the camera when over the ray canvas with zoom held, and
// scrolls the page otherwise.
func (p *Page) Wheel(x, y int, dy float64, zoom bool) {
	if c, _, _ := p.Hit(x, y); zoom && c == CanvasRay {
		p.app.Zoom(float32(1 - dy*0.1))
		return
	}
	p.Scroll(-dy * 40)
}

// AddRandomSpheres adds a batch of random spheres to the scene.
func (p *Page) AddRandomSpheres() {
	n := p.app.AddRandomSpheres(randomBatch)
	p.status = fmt.Sprintf("added %d spheres (%d total)", n, p.app.Ray.Payload.Scene.Active())
}

// LastPicked returns the result of the last pick, or -1.
func (p *Page) LastPicked() int { return p.lastPicked }

// Status returns a one-line description of the page state.
func (p *Page) Status() string {
	s := fmt.Sprintf("%.1f fps  frame %d", p.app.FPS(), p.app.Ray.Payload.Uniforms.Frame)
	if p.status != "" {
		s += "  " + p.status
	}
	return s
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
