package bitmap

import (
	"image/color"
	"io"
	"testing"

	"github.com/bradfitz/iter"

	"badc0de.net/pkg/go-mugen/ttesting"
)

var (
	red   = color.RGBA{R: 0xFF, A: 0xFF}
	green = color.RGBA{G: 0xFF, A: 0xFF}
	blue  = color.RGBA{B: 0xFF, A: 0xFF}
)

// recorder is a Renderer without the optional fast paths, so the derived
// helpers are exercised through the primitives.
type recorder struct {
	pix   []color.RGBA
	size  int
	pos   int
	calls int
}

func (r *recorder) InitializeSurface(w, h int) error {
	r.size = w * h
	r.pix = make([]color.RGBA, r.size)
	return nil
}

func (r *recorder) RenderPixels(p color.RGBA, n int) error {
	r.calls++
	if r.pos+n > r.size {
		return ErrSurfaceFull
	}
	for range iter.N(n) {
		r.pix[r.pos] = p
		r.pos++
	}
	return nil
}

func (r *recorder) PixelCount() int { return r.size }

func (r *recorder) Pixel(i int) (color.RGBA, error) { return r.pix[i], nil }

func (r *recorder) Seek(off int64, whence int) (int64, error) {
	if whence == io.SeekCurrent {
		off += int64(r.pos)
	}
	r.pos = int(off)
	return off, nil
}

func TestSurfaceRowMajor(t *testing.T) {
	s := NewSurface()
	if err := s.InitializeSurface(3, 2); err != nil {
		t.Fatalf("init: %v", err)
	}
	ttesting.AssertEqualInt(t, "capacity", s.PixelCount(), 6)
	if err := s.RenderPixels(red, 4); err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := s.RenderSinglePixel(green); err != nil {
		t.Fatalf("render: %v", err)
	}
	img := s.Image()
	ttesting.AssertEqualRGBA(t, "row 0 col 2", img.RGBAAt(2, 0), red)
	ttesting.AssertEqualRGBA(t, "row 1 col 0", img.RGBAAt(0, 1), red)
	ttesting.AssertEqualRGBA(t, "row 1 col 1", img.RGBAAt(1, 1), green)
	ttesting.AssertTransparent(t, "unwritten", img.RGBAAt(2, 1))

	pos, err := Position(s)
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	ttesting.AssertEqualInt(t, "position", pos, 5)
}

func TestSurfaceFull(t *testing.T) {
	s := NewSurface()
	s.InitializeSurface(2, 2)
	err := s.RenderPixels(blue, 5)
	ttesting.AssertCause(t, "overflow", err, ErrSurfaceFull)

	err = NewSurface().RenderPixels(blue, 1)
	ttesting.AssertCause(t, "uninitialized", err, ErrNotInitialized)
}

func TestRenderClamped(t *testing.T) {
	s := NewSurface()
	s.InitializeSurface(2, 2)
	if err := RenderClamped(s, blue, 3); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := RenderClamped(s, red, 10); err != nil {
		t.Fatalf("clamped run: %v", err)
	}
	if err := RenderClamped(s, red, 10); err != nil {
		t.Fatalf("run on full surface: %v", err)
	}
	p, _ := s.Pixel(3)
	ttesting.AssertEqualRGBA(t, "last pixel", p, red)
}

func TestCopyPixelsOffsetWraps(t *testing.T) {
	for _, tc := range []struct {
		name   string
		r      Renderer
		count  int
		offset int
		want   []color.RGBA
	}{
		{
			name:   "surface offset 1 repeats last",
			r:      NewSurface(),
			count:  3,
			offset: 1,
			want:   []color.RGBA{red, green, blue, blue, blue, blue, {}},
		},
		{
			name:   "recorder offset 2 repeats pair",
			r:      &recorder{},
			count:  4,
			offset: 2,
			want:   []color.RGBA{red, green, blue, green, blue, green, blue},
		},
		{
			name:   "surface plain copy",
			r:      NewSurface(),
			count:  2,
			offset: 3,
			want:   []color.RGBA{red, green, blue, red, green, {}, {}},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tc.r.InitializeSurface(7, 1)
			for _, p := range []color.RGBA{red, green, blue} {
				if err := RenderSinglePixel(tc.r, p); err != nil {
					t.Fatalf("seed: %v", err)
				}
			}
			if err := CopyPixelsOffset(tc.r, tc.count, tc.offset); err != nil {
				t.Fatalf("copy: %v", err)
			}
			for i, want := range tc.want {
				got, _ := tc.r.Pixel(i)
				if got != want {
					t.Errorf("pixel %d: got %+v; want %+v", i, got, want)
				}
			}
		})
	}
}

func TestCopyPixelsOffsetBeforeStart(t *testing.T) {
	s := NewSurface()
	s.InitializeSurface(4, 1)
	s.RenderSinglePixel(red)
	if err := CopyPixelsOffset(s, 1, 2); err == nil {
		t.Errorf("copy reaching before the surface start: got nil error")
	}
	if err := CopyPixelsOffset(s, 1, 0); err == nil {
		t.Errorf("zero offset: got nil error")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil) != nil {
		t.Errorf("Wrap(nil) != nil")
	}
	err := Wrap(ErrSurfaceFull)
	ttesting.AssertErrorType(t, "wrapped", err, &RendererError{})
	if Wrap(err) != err {
		t.Errorf("double wrap produced a new error")
	}
}
