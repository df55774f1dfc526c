// Package export writes rendered frames to image files.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"
)

// Format is an output image format.
type Format string

// Supported formats.
const (
	PNG  Format = "png"
	WebP Format = "webp"
	TGA  Format = "tga"
	GIF  Format = "gif"
)

// ErrUnknownFormat is returned for formats other than the ones above.
var ErrUnknownFormat = errors.New("export: unknown format")

// ParseFormat returns the Format named s.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case PNG, WebP, TGA, GIF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

// Encode writes img to w in the given format. GIF output is a single
// dithered frame.
func Encode(w io.Writer, img image.Image, f Format) error {
	var err error
	switch f {
	case PNG:
		err = png.Encode(w, img)
	case WebP:
		err = nativewebp.Encode(w, img, nil)
	case TGA:
		err = tga.Encode(w, img)
	case GIF:
		err = gif.Encode(w, quantize(img), nil)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return fmt.Errorf("export: encode %s: %w", f, err)
	}
	return nil
}

// WriteFile encodes img to dir/name plus the format extension and returns
// the path written.
func WriteFile(dir, name string, img image.Image, f Format) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	path := filepath.Join(dir, name+f.Ext())
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	if err := Encode(file, img, f); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("export: close %s: %w", path, err)
	}
	return path, nil
}

// Downsample shrinks img by an integer factor with a Catmull-Rom filter.
// A factor below 2 returns img unchanged.
func Downsample(img *image.RGBA, factor int) *image.RGBA {
	if factor < 2 {
		return img
	}
	b := img.Bounds()
	w, h := max(b.Dx()/factor, 1), max(b.Dy()/factor, 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Animation collects frames for an animated GIF.
type Animation struct {
	// Delay between frames in hundredths of a second.
	Delay int

	g gif.GIF
}

// NewAnimation creates an endlessly looping animation.
func NewAnimation(delay int) *Animation {
	return &Animation{Delay: delay}
}

// Add quantizes img and appends it as the next frame.
func (a *Animation) Add(img image.Image) {
	a.g.Image = append(a.g.Image, quantize(img))
	a.g.Delay = append(a.g.Delay, a.Delay)
}

// Len returns the number of frames.
func (a *Animation) Len() int { return len(a.g.Image) }

// Encode writes the animation.
func (a *Animation) Encode(w io.Writer) error {
	if len(a.g.Image) == 0 {
		return errors.New("export: animation has no frames")
	}
	if err := gif.EncodeAll(w, &a.g); err != nil {
		return fmt.Errorf("export: encode animation: %w", err)
	}
	return nil
}

// WriteFile encodes the animation to dir/name.gif and returns the path
// written.
func (a *Animation) WriteFile(dir, name string) (string, error) {
	if a.Len() == 0 {
		return "", errors.New("export: animation has no frames")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	path := filepath.Join(dir, name+GIF.Ext())
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	if err := a.Encode(file); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("export: close %s: %w", path, err)
	}
	return path, nil
}

func quantize(img image.Image) *image.Paletted {
	b := img.Bounds()
	p := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette.Plan9)
	draw.FloydSteinberg.Draw(p, p.Bounds(), img, b.Min)
	return p
}
