package bitmap

import (
	"image"
	"image/color"
	"io"

	"github.com/pkg/errors"
)

// ErrSurfaceFull is returned when a write would go past the end of the
// surface.
var ErrSurfaceFull = errors.New("bitmap: surface full")

// ErrNotInitialized is returned when pixels are written before
// InitializeSurface.
var ErrNotInitialized = errors.New("bitmap: surface not initialized")

// Surface is a Renderer storing pixels in an *image.RGBA, row-major.
//
// The zero value is ready to be initialized. A Surface must not be shared
// between concurrent decodes.
type Surface struct {
	img *image.RGBA
	pos int
}

// NewSurface returns an uninitialized Surface.
func NewSurface() *Surface {
	return &Surface{}
}

// Image returns the decoded image, or nil if the surface was never
// initialized.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// InitializeSurface implements Renderer. Every pixel starts transparent.
func (s *Surface) InitializeSurface(width, height int) error {
	if width < 0 || height < 0 {
		return errors.Errorf("bitmap: invalid surface size %dx%d", width, height)
	}
	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
	s.pos = 0
	return nil
}

// PixelCount implements Renderer.
func (s *Surface) PixelCount() int {
	if s.img == nil {
		return 0
	}
	b := s.img.Bounds()
	return b.Dx() * b.Dy()
}

// RenderPixels implements Renderer.
func (s *Surface) RenderPixels(p color.RGBA, count int) error {
	if s.img == nil {
		return ErrNotInitialized
	}
	if count < 0 {
		return errors.Errorf("bitmap: negative pixel count %d", count)
	}
	if s.pos+count > s.PixelCount() {
		return errors.Wrapf(ErrSurfaceFull, "writing %d pixels at %d of %d", count, s.pos, s.PixelCount())
	}
	for i := 0; i < count; i++ {
		o := (s.pos + i) * 4
		s.img.Pix[o+0] = p.R
		s.img.Pix[o+1] = p.G
		s.img.Pix[o+2] = p.B
		s.img.Pix[o+3] = p.A
	}
	s.pos += count
	return nil
}

// RenderSinglePixel implements SinglePixelRenderer.
func (s *Surface) RenderSinglePixel(p color.RGBA) error {
	return s.RenderPixels(p, 1)
}

// Pixel implements Renderer.
func (s *Surface) Pixel(index int) (color.RGBA, error) {
	if s.img == nil {
		return color.RGBA{}, ErrNotInitialized
	}
	if index < 0 || index >= s.PixelCount() {
		return color.RGBA{}, errors.Errorf("bitmap: pixel %d outside surface of %d", index, s.PixelCount())
	}
	o := index * 4
	return color.RGBA{R: s.img.Pix[o], G: s.img.Pix[o+1], B: s.img.Pix[o+2], A: s.img.Pix[o+3]}, nil
}

// Seek implements io.Seeker over pixel positions.
func (s *Surface) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(s.pos) + offset
	case io.SeekEnd:
		abs = int64(s.PixelCount()) + offset
	default:
		return 0, errors.Errorf("bitmap: invalid whence %d", whence)
	}
	if abs < 0 || abs > int64(s.PixelCount()) {
		return 0, errors.Errorf("bitmap: seek to %d outside surface of %d", abs, s.PixelCount())
	}
	s.pos = int(abs)
	return abs, nil
}
