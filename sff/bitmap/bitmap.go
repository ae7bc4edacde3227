// Package bitmap defines the destination that sprite decoders write pixels
// into.
//
// Decoders never own pixel storage. They initialize a surface of the sprite's
// size through a Renderer, then stream runs of pixels into it, occasionally
// reading back pixels they have already written (LZ-style back references).
// Surface is the in-memory implementation backed by an *image.RGBA.
package bitmap

import (
	"fmt"
	"image/color"
	"io"

	"github.com/pkg/errors"
)

// Transparent is the pixel emitted for palette index 0.
var Transparent = color.RGBA{}

// Renderer receives decoded pixels.
//
// The io.Seeker reports and moves the absolute write position, counted in
// pixels from the start of the surface.
type Renderer interface {
	io.Seeker

	// InitializeSurface allocates a width x height surface. It is called once
	// per decode, before any pixel is written.
	InitializeSurface(width, height int) error
	// RenderPixels writes count copies of p at the current position and
	// advances the position by count.
	RenderPixels(p color.RGBA, count int) error
	// PixelCount returns the total pixel capacity of the surface.
	PixelCount() int
	// Pixel returns a previously written pixel by absolute index.
	Pixel(index int) (color.RGBA, error)
}

// SinglePixelRenderer may be implemented by a Renderer that has a faster
// path for writing one pixel.
type SinglePixelRenderer interface {
	RenderSinglePixel(p color.RGBA) error
}

// OffsetCopier may be implemented by a Renderer that can perform the
// back-reference copy of CopyPixelsOffset itself.
type OffsetCopier interface {
	CopyPixelsOffset(count, offset int) error
}

// RendererError wraps an error reported by a Renderer, so that callers can
// tell sink failures apart from malformed sprite data.
type RendererError struct {
	Err error
}

func (e *RendererError) Error() string {
	return fmt.Sprintf("renderer error: %v", e.Err)
}

// Unwrap returns the error reported by the renderer.
func (e *RendererError) Unwrap() error { return e.Err }

// Wrap returns err wrapped in a *RendererError, or nil if err is nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*RendererError); ok {
		return err
	}
	return &RendererError{Err: err}
}

// Position returns the current write position of r.
func Position(r Renderer) (int, error) {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	return int(pos), nil
}

// Remaining returns how many pixels can still be written before the surface
// is full.
func Remaining(r Renderer) (int, error) {
	pos, err := Position(r)
	if err != nil {
		return 0, err
	}
	if n := r.PixelCount() - pos; n > 0 {
		return n, nil
	}
	return 0, nil
}

// RenderSinglePixel writes one pixel to r.
func RenderSinglePixel(r Renderer, p color.RGBA) error {
	if s, ok := r.(SinglePixelRenderer); ok {
		return s.RenderSinglePixel(p)
	}
	return r.RenderPixels(p, 1)
}

// RenderClamped writes count copies of p, truncated so that the surface
// capacity is never exceeded.
func RenderClamped(r Renderer, p color.RGBA, count int) error {
	left, err := Remaining(r)
	if err != nil {
		return err
	}
	if count > left {
		count = left
	}
	switch {
	case count <= 0:
		return nil
	case count == 1:
		return RenderSinglePixel(r, p)
	}
	return r.RenderPixels(p, count)
}

// CopyPixelsOffset copies count pixels that start offset pixels behind the
// current position to the current position.
//
// When count exceeds offset the source window repeats: pixel i of the copy
// is read from pos-offset+(i mod offset), so a copy may reproduce pixels it
// is itself writing.
func CopyPixelsOffset(r Renderer, count, offset int) error {
	if c, ok := r.(OffsetCopier); ok {
		return c.CopyPixelsOffset(count, offset)
	}
	if offset <= 0 {
		return errors.Errorf("bitmap: copy offset %d not positive", offset)
	}
	start, err := Position(r)
	if err != nil {
		return err
	}
	src := start - offset
	if src < 0 {
		return errors.Errorf("bitmap: copy source %d pixels behind position %d", offset, start)
	}
	for i := 0; i < count; i++ {
		p, err := r.Pixel(src + i%offset)
		if err != nil {
			return err
		}
		if err := RenderSinglePixel(r, p); err != nil {
			return err
		}
	}
	return nil
}
