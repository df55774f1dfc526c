package main

import (
	"image"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gogpu/raydemo"
	"github.com/gogpu/raydemo/internal/viewer"
)

var pageBackground = color.RGBA{R: 0xf4, G: 0xf4, B: 0xf0, A: 0xff}

var buttons = []struct {
	mouse ebiten.MouseButton
	app   raydemo.Button
}{
	{ebiten.MouseButtonLeft, raydemo.ButtonLeft},
	{ebiten.MouseButtonRight, raydemo.ButtonRight},
	{ebiten.MouseButtonMiddle, raydemo.ButtonMiddle},
}

// game adapts ebiten's loop to the page: Update feeds input and ticks the
// app, Draw blits the last snapshot of each canvas.
type game struct {
	app  *raydemo.AppState
	page *viewer.Page

	canvases     [2]*ebiten.Image
	cursorX      int
	cursorY      int
	cursorKnown  bool
	pressedMouse ebiten.MouseButton
	pressed      bool
}

func newGame(app *raydemo.AppState, page *viewer.Page) *game {
	return &game{app: app, page: page}
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	x, y := ebiten.CursorPosition()
	if !g.pressed {
		for _, b := range buttons {
			if inpututil.IsMouseButtonJustPressed(b.mouse) {
				g.page.PointerDown(b.app, x, y)
				g.pressed, g.pressedMouse = true, b.mouse
				break
			}
		}
	}
	if !g.cursorKnown || x != g.cursorX || y != g.cursorY {
		g.page.PointerMove(x, y)
		g.cursorX, g.cursorY, g.cursorKnown = x, y, true
	}
	if g.pressed && inpututil.IsMouseButtonJustReleased(g.pressedMouse) {
		g.page.PointerUp(x, y)
		g.pressed = false
	}

	if _, dy := ebiten.Wheel(); dy != 0 {
		zoom := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
		g.page.Wheel(x, y, dy, zoom)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyA) {
		g.page.AddRandomSpheres()
	}

	res := g.app.Tick(time.Now())
	if res.Triangle {
		g.upload(viewer.CanvasTriangle, g.app.Triangle.Snapshot)
	}
	if res.Ray {
		g.upload(viewer.CanvasRay, g.app.Ray.Snapshot)
	}
	return nil
}

// upload copies a fresh snapshot into the canvas image, reallocating it
// when the size changed.
func (g *game) upload(c viewer.Canvas, snapshot func() (*image.RGBA, error)) {
	img, err := snapshot()
	if err != nil {
		raydemo.Logger().Warn("snapshot failed", "canvas", int(c), "err", err)
		return
	}
	size := img.Bounds().Size()
	dst := g.canvases[c]
	if dst == nil || dst.Bounds().Size() != size {
		if dst != nil {
			dst.Deallocate()
		}
		dst = ebiten.NewImage(size.X, size.Y)
		g.canvases[c] = dst
	}
	dst.WritePixels(img.Pix)
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(pageBackground)
	for _, c := range []viewer.Canvas{viewer.CanvasTriangle, viewer.CanvasRay} {
		img := g.canvases[c]
		if img == nil {
			continue
		}
		r := g.page.CanvasRect(c)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(r.X, r.Y)
		screen.DrawImage(img, op)
	}
	ebitenutil.DebugPrintAt(screen, g.page.Status(), viewer.Margin, 4)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.page.SetViewport(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}
