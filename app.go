// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raydemo

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// fpsHistoryLength is the number of ray redraw intervals averaged by FPS.
const fpsHistoryLength = 60

// Pointer drag sensitivities, per pixel.
const (
	orbitPerPixel = 0.01
	panPerPixel   = 0.002
	zoomPerPixel  = 0.01
)

// Button identifies the pointer button of a drag.
type Button int

// Pointer buttons.
const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// TickResult reports which surfaces drew during a Tick.
type TickResult struct {
	Triangle bool
	Ray      bool
}

// AppState is the single owner of both demo surfaces and everything the
// frame loop mutates. It is created once by the host and passed to the
// loop and input handlers; there are no package-level singletons.
type AppState struct {
	Triangle *RenderSurface[*TrianglePayload]
	Ray      *RenderSurface[*RayPayload]

	// Gate recomputes surface visibility on page events.
	Gate Gate

	opts appOptions
	rng  *rand.Rand

	started bool
	epoch   time.Time

	lastRay  time.Time
	rayDrawn bool
	passes   int

	fps        [fpsHistoryLength]time.Duration
	fpsNext    int
	fpsCount   int
	drawErrors int
}

// NewApp builds the scene and camera and wraps the two backends in
// surfaces. No backend call is made until Start.
func NewApp(triangle, ray Backend, opts ...Option) (*AppState, error) {
	if triangle == nil || ray == nil {
		return nil, fmt.Errorf("raydemo: nil backend: %w", ErrNoContext)
	}

	o := defaultAppOptions()
	for _, opt := range opts {
		opt(&o)
	}

	rng := o.rng()
	scene, err := BuildScene(rng, o.gridK)
	if err != nil {
		return nil, err
	}
	cam := NewOrbitCamera(o.from, o.to, o.up)

	a := &AppState{
		Triangle: NewRenderSurface("triangle", triangle, newTrianglePayload()),
		Ray:      NewRenderSurface("ray", ray, newRayPayload(cam, scene)),
		opts:     o,
		rng:      rng,
	}
	Logger().Info("scene built", "spheres", scene.Active(), "grid", o.gridK)
	return a, nil
}

// Start configures both surfaces and uploads all buffers once.
// A surface that fails stays disabled while the other keeps running; the
// returned error joins every failure.
func (a *AppState) Start(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	w, h := a.clampSize(width, height)

	p := a.Ray.Payload
	p.Uniforms.Width, p.Uniforms.Height = uint32(w), uint32(h) //nolint:gosec // clamped to texture limits
	p.syncUniforms()
	p.syncCamera()

	var errs []error
	if err := a.Triangle.Configure(w, h); err != nil {
		errs = append(errs, err)
	}
	if err := a.Ray.Configure(w, h); err != nil {
		errs = append(errs, err)
	}
	a.started = a.Triangle.Ready() || a.Ray.Ready()
	if a.started {
		Logger().Info("surfaces configured", "width", w, "height", h,
			"triangle", a.Triangle.Ready(), "ray", a.Ray.Ready())
	}
	return errors.Join(errs...)
}

// Tick runs one animation callback at time now.
//
// The triangle draws on every tick while visible. The ray surface draws only
// while visible and once at least the throttle interval has passed since its
// last draw; each ray draw advances the orbit and the frame counter.
// Draw errors are logged and never stop the loop.
func (a *AppState) Tick(now time.Time) TickResult {
	var res TickResult
	if !a.started {
		return res
	}
	if a.epoch.IsZero() {
		a.epoch = now
	}

	if a.Triangle.Ready() && a.Triangle.Visible() {
		tp := a.Triangle.Payload
		tp.Uniform.Angle = float32(now.Sub(a.epoch).Seconds()) * a.opts.spinRate
		tp.sync()
		if err := a.Triangle.render(); err != nil {
			a.drawFailed(err)
		} else {
			res.Triangle = true
		}
	}

	if a.Ray.Ready() && a.Ray.Visible() && a.rayDue(now) {
		res.Ray = a.drawRay(now)
	}
	return res
}

func (a *AppState) rayDue(now time.Time) bool {
	if a.opts.maxPasses > 0 && a.passes >= a.opts.maxPasses {
		return false
	}
	return !a.rayDrawn || now.Sub(a.lastRay) >= a.opts.throttle
}

func (a *AppState) drawRay(now time.Time) bool {
	p := a.Ray.Payload
	if a.opts.orbitStep != 0 {
		p.Camera.Orbit(a.opts.orbitStep, 0)
	}
	if p.Camera.Dirty() {
		p.syncCamera()
	}
	p.Uniforms.Advance()
	p.syncUniforms()

	if a.rayDrawn {
		a.recordInterval(now.Sub(a.lastRay))
	}
	a.lastRay = now
	a.rayDrawn = true
	a.passes++

	if err := a.Ray.render(); err != nil {
		a.drawFailed(err)
		return false
	}
	Logger().Debug("ray frame", "frame", p.Uniforms.Frame, "azimuth", p.Camera.Azimuth())
	return true
}

func (a *AppState) drawFailed(err error) {
	a.drawErrors++
	Logger().Warn("draw failed", "err", err, "failures", a.drawErrors)
}

func (a *AppState) recordInterval(d time.Duration) {
	a.fps[a.fpsNext] = d
	a.fpsNext = (a.fpsNext + 1) % fpsHistoryLength
	if a.fpsCount < fpsHistoryLength {
		a.fpsCount++
	}
}

// FPS returns the ray redraw rate averaged over the last 60 intervals, or
// 0 before the second ray draw.
func (a *AppState) FPS() float64 {
	if a.fpsCount == 0 {
		return 0
	}
	var total time.Duration
	for i := range a.fpsCount {
		total += a.fps[i]
	}
	if total <= 0 {
		return 0
	}
	return float64(a.fpsCount) / total.Seconds()
}

// DrawErrors returns the number of failed draws since Start.
func (a *AppState) DrawErrors() int { return a.drawErrors }

// Passes returns the number of ray draws since the last camera or scene
// change.
func (a *AppState) Passes() int { return a.passes }

// PointerMove moves the triangle to pixel position (x, y).
func (a *AppState) PointerMove(x, y float32) {
	a.Triangle.pointer = Pointer{X: x, Y: y}
	a.Ray.pointer = Pointer{X: x, Y: y}
	w, h := a.Triangle.Size()
	tp := a.Triangle.Payload
	tp.Uniform.PointerX, tp.Uniform.PointerY = PixelToClip(x, y, w, h)
	tp.sync()
}

// PointerDrag moves the camera by a drag of (dx, dy) pixels: the left
// button orbits, the right button pans and the middle button zooms.
func (a *AppState) PointerDrag(button Button, dx, dy float32) {
	cam := a.Ray.Payload.Camera
	switch button {
	case ButtonLeft:
		cam.Orbit(-dx*orbitPerPixel, 0)
	case ButtonRight:
		cam.Pan(-dx*panPerPixel, dy*panPerPixel)
	case ButtonMiddle:
		cam.Zoom(1 + dy*zoomPerPixel)
	default:
		return
	}
	a.resetPasses()
}

// Zoom scales the camera distance, as a wheel would.
func (a *AppState) Zoom(factor float32) {
	a.Ray.Payload.Camera.Zoom(factor)
	a.resetPasses()
}

// AddRandomSpheres places up to n random spheres in free scene slots and
// returns how many were placed.
func (a *AppState) AddRandomSpheres(n int) int {
	added := a.Ray.Payload.Scene.AddRandomSpheres(a.rng, n)
	if added > 0 {
		a.Ray.Payload.syncScene()
		a.resetPasses()
	}
	Logger().Info("random spheres added", "requested", n, "added", added)
	return added
}

// Pick returns the sphere index under pixel (x, y), or -1 for sky or when
// the ray backend cannot pick.
func (a *AppState) Pick(x, y int) int {
	if p, ok := a.Ray.Backend().(Picker); ok {
		return p.Pick(x, y)
	}
	return -1
}

// Resize reconfigures both surfaces. Sizes above the texture limit are
// clamped. The frame counter keeps running.
func (a *AppState) Resize(width, height int) error {
	if !a.started {
		return ErrNotStarted
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	w, h := a.clampSize(width, height)

	p := a.Ray.Payload
	p.Uniforms.Width, p.Uniforms.Height = uint32(w), uint32(h) //nolint:gosec // clamped to texture limits
	p.syncUniforms()

	var errs []error
	if err := a.Triangle.Configure(w, h); err != nil {
		errs = append(errs, err)
	}
	if err := a.Ray.Configure(w, h); err != nil {
		errs = append(errs, err)
	}
	a.resetPasses()
	return errors.Join(errs...)
}

// Destroy releases both backends.
func (a *AppState) Destroy() {
	a.Triangle.Destroy()
	a.Ray.Destroy()
	a.started = false
}

func (a *AppState) resetPasses() { a.passes = 0 }

func (a *AppState) maxDimension() int {
	if a.opts.maxDim > 0 {
		return a.opts.maxDim
	}
	limit := 0
	for _, b := range []Backend{a.Triangle.Backend(), a.Ray.Backend()} {
		if l, ok := b.(Limiter); ok {
			if n := l.MaxTextureDimension(); n > 0 && (limit == 0 || n < limit) {
				limit = n
			}
		}
	}
	return limit
}

func (a *AppState) clampSize(width, height int) (int, int) {
	limit := a.maxDimension()
	if limit <= 0 || (width <= limit && height <= limit) {
		return width, height
	}
	w, h := min(width, limit), min(height, limit)
	Logger().Warn("surface size clamped", "requested_w", width, "requested_h", height,
		"width", w, "height", h, "limit", limit)
	return w, h
}
