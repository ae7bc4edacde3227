package sffv1

import (
	"bytes"
	"encoding/binary"
	"image/color"
	"io"
	"testing"

	"badc0de.net/pkg/go-mugen/internal/sffbuild"
	"badc0de.net/pkg/go-mugen/sff/bitmap"
	"badc0de.net/pkg/go-mugen/sff/table"
	"badc0de.net/pkg/go-mugen/ttesting"
)

// embedded[i] = (i, 10, 20); external[i] = (0, i, 30).
var embedded, external [256][3]byte

func init() {
	for i := range embedded {
		embedded[i] = [3]byte{byte(i), 10, 20}
		external[i] = [3]byte{0, byte(i), 30}
	}
}

func embeddedColor(i byte) color.RGBA { return color.RGBA{R: i, G: 10, B: 20, A: 0xFF} }
func externalColor(i byte) color.RGBA { return color.RGBA{G: i, B: 30, A: 0xFF} }

func load(t *testing.T, container []byte, palettes ...Palette) *Data {
	t.Helper()
	r := bytes.NewReader(container)
	if _, err := r.Seek(16, io.SeekStart); err != nil {
		t.Fatalf("seek: %v", err)
	}
	d, err := Read(r, palettes...)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return d
}

func externalPalette(t *testing.T) Palette {
	t.Helper()
	p, err := ReadPalette(bytes.NewReader(sffbuild.ExternalPalette(external)))
	if err != nil {
		t.Fatalf("palette: %v", err)
	}
	return p
}

func render(t *testing.T, d *Data, group, image uint16, palette int) []color.RGBA {
	t.Helper()
	s := bitmap.NewSurface()
	if err := d.RenderSprite(s, group, image, palette); err != nil {
		t.Fatalf("render %d,%d: %v", group, image, err)
	}
	var pix []color.RGBA
	for i := 0; i < s.PixelCount(); i++ {
		p, _ := s.Pixel(i)
		pix = append(pix, p)
	}
	return pix
}

func TestReadPaletteReversed(t *testing.T) {
	file := make([]byte, 768)
	file[0], file[1], file[2] = 1, 2, 3
	file[765], file[766], file[767] = 7, 8, 9
	p, err := ReadPalette(bytes.NewReader(file))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	ttesting.AssertEqualRGBA(t, "first triple", p[255], color.RGBA{1, 2, 3, 0xFF})
	ttesting.AssertEqualRGBA(t, "last triple", p[0], color.RGBA{7, 8, 9, 0xFF})

	if _, err := ReadPalette(bytes.NewReader(file[:100])); err == nil {
		t.Errorf("short palette file: got nil error")
	}
}

func TestPCXHeaderErrors(t *testing.T) {
	pixels := []byte{1, 2, 3, 4}
	for _, tc := range []struct {
		name string
		mod  func(o *sffbuild.PCXOptions)
		want interface{}
	}{
		{"manufacturer", func(o *sffbuild.PCXOptions) { o.Manufacturer = 0x0B }, &BadManufacturerByteError{}},
		{"paintbrush", func(o *sffbuild.PCXOptions) { o.Version = 4 }, &InvalidPaintbrushError{}},
		{"encoding", func(o *sffbuild.PCXOptions) { o.Encoding = 0x02 }, &BadEncodingByteError{}},
		{"bits per plane", func(o *sffbuild.PCXOptions) { o.BitsPerPixel = 7 }, &InvalidBitsPerPlaneError{}},
		{"reserved", func(o *sffbuild.PCXOptions) { o.Reserved = 1 }, &BadReservedByteError{}},
	} {
		o := sffbuild.DefaultPCX()
		tc.mod(&o)
		data := sffbuild.PCX(o, 2, 2, pixels, nil)
		r := &countingRenderer{Surface: bitmap.NewSurface()}
		err := DecodePCX(data, r, &transparentPalette)
		ttesting.AssertErrorType(t, tc.name, err, tc.want)
		ttesting.AssertEqualInt(t, tc.name+" writes", r.writes, 0)
	}
}

type countingRenderer struct {
	*bitmap.Surface
	writes int
}

func (c *countingRenderer) RenderPixels(p color.RGBA, n int) error {
	c.writes++
	return c.Surface.RenderPixels(p, n)
}

func TestDecodePCXRLEWithPadding(t *testing.T) {
	pixels := []byte{
		1, 1, 2,
		0, 3, 0xC5,
	}
	data := sffbuild.PCX(sffbuild.DefaultPCX(), 3, 2, pixels, &embedded)
	d := load(t, sffbuild.Legacy(false, sffbuild.LegacySprite{Group: 0, Image: 0, Data: data}))
	got := render(t, d, 0, 0, 0)
	if len(got) != 6 {
		t.Fatalf("got %d pixels; want 6", len(got))
	}
	for i, idx := range pixels {
		if idx == 0 {
			ttesting.AssertTransparent(t, "index 0", got[i])
			continue
		}
		if got[i] != embeddedColor(idx) {
			t.Errorf("pixel %d: got %+v; want %+v", i, got[i], embeddedColor(idx))
		}
	}
}

func TestDecodePCXRLEFullWidthRuns(t *testing.T) {
	pixels := []byte{5, 5, 5, 5, 6, 6, 7, 7}
	data := sffbuild.PCX(sffbuild.DefaultPCX(), 4, 2, pixels, &embedded)
	d := load(t, sffbuild.Legacy(false, sffbuild.LegacySprite{Data: data}))
	got := render(t, d, 0, 0, 0)
	for i, idx := range pixels {
		if got[i] != embeddedColor(idx) {
			t.Errorf("pixel %d: got %+v; want %+v", i, got[i], embeddedColor(idx))
		}
	}
}

func TestDecodePCXUncompressed(t *testing.T) {
	o := sffbuild.DefaultPCX()
	o.Encoding = 0
	pixels := []byte{0, 9, 200, 4}
	d := load(t, sffbuild.Legacy(false, sffbuild.LegacySprite{Data: sffbuild.PCX(o, 2, 2, pixels, &embedded)}))
	got := render(t, d, 0, 0, 0)
	ttesting.AssertTransparent(t, "index 0", got[0])
	ttesting.AssertEqualRGBA(t, "index 200", got[2], embeddedColor(200))
	ttesting.AssertEqualRGBA(t, "index 4", got[3], embeddedColor(4))
}

func TestLinkedSprite(t *testing.T) {
	pixels := make([]byte, 16)
	for i := range pixels {
		pixels[i] = byte(i + 1)
	}
	d := load(t, sffbuild.Legacy(false,
		sffbuild.LegacySprite{Group: 0, Image: 0, Data: sffbuild.PCX(sffbuild.DefaultPCX(), 4, 4, pixels, &embedded)},
		sffbuild.LegacySprite{Group: 1, Image: 0, Linked: 0},
	))
	want := render(t, d, 0, 0, 0)
	got := render(t, d, 1, 0, 0)
	if len(got) != 16 {
		t.Fatalf("got %d pixels; want 16", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pixel %d: got %+v; want %+v", i, got[i], want[i])
		}
	}
	w, h, err := d.Size(1, 0)
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	ttesting.AssertEqualInt(t, "width", w, 4)
	ttesting.AssertEqualInt(t, "height", h, 4)
}

func TestLinkErrors(t *testing.T) {
	d := load(t, sffbuild.Legacy(false,
		sffbuild.LegacySprite{Group: 0, Image: 0, Linked: 1},
		sffbuild.LegacySprite{Group: 0, Image: 1, Linked: 0},
		sffbuild.LegacySprite{Group: 0, Image: 2, Linked: 40},
	))
	err := d.RenderSprite(bitmap.NewSurface(), 0, 0, 0)
	ttesting.AssertErrorType(t, "cycle", err, &table.LinkCycleError{})
	err = d.RenderSprite(bitmap.NewSurface(), 0, 2, 0)
	ttesting.AssertErrorType(t, "out of range", err, &table.InvalidLinkedSpriteError{})
}

func TestLookupErrors(t *testing.T) {
	d := load(t, sffbuild.Legacy(false, sffbuild.LegacySprite{Group: 3, Image: 1, Data: sffbuild.PCX(sffbuild.DefaultPCX(), 1, 1, []byte{1}, &embedded)}))
	err := d.RenderSprite(bitmap.NewSurface(), 4, 1, 0)
	ttesting.AssertErrorType(t, "unknown group", err, &table.UnknownGroupError{})
	err = d.RenderSprite(bitmap.NewSurface(), 3, 0, 0)
	ttesting.AssertErrorType(t, "unknown image", err, &table.UnknownImageError{})
	err = d.RenderSprite(bitmap.NewSurface(), 3, 1, 1)
	ttesting.AssertErrorType(t, "palette", err, &table.PaletteNotFoundError{})
}

func TestSharedPaletteResolution(t *testing.T) {
	pix := []byte{7}
	container := sffbuild.Legacy(true,
		// carries its own palette
		sffbuild.LegacySprite{Group: 0, Image: 0, Data: sffbuild.PCX(sffbuild.DefaultPCX(), 1, 1, pix, &embedded)},
		// inherits the palette of the sprite before it
		sffbuild.LegacySprite{Group: 0, Image: 1, Data: sffbuild.PCX(sffbuild.DefaultPCX(), 1, 1, pix, nil)},
		// uses the general palette
		sffbuild.LegacySprite{Group: 0, Image: 2, UsesSharedPalette: true, Data: sffbuild.PCX(sffbuild.DefaultPCX(), 1, 1, pix, nil)},
	)
	d := load(t, container, externalPalette(t))

	ttesting.AssertEqualRGBA(t, "embedded", render(t, d, 0, 0, 0)[0], embeddedColor(7))
	ttesting.AssertEqualRGBA(t, "inherited", render(t, d, 0, 1, 0)[0], embeddedColor(7))
	ttesting.AssertEqualRGBA(t, "shared", render(t, d, 0, 2, 0)[0], externalColor(7))

	// Without shared palette mode the flag is ignored and the walk continues.
	d = load(t, sffbuild.Legacy(false,
		sffbuild.LegacySprite{Group: 0, Image: 0, Data: sffbuild.PCX(sffbuild.DefaultPCX(), 1, 1, pix, &embedded)},
		sffbuild.LegacySprite{Group: 0, Image: 2, UsesSharedPalette: true, Data: sffbuild.PCX(sffbuild.DefaultPCX(), 1, 1, pix, nil)},
	), externalPalette(t))
	ttesting.AssertEqualRGBA(t, "flag ignored", render(t, d, 0, 2, 0)[0], embeddedColor(7))
}

func TestRenderIsRepeatable(t *testing.T) {
	pixels := []byte{1, 2, 0, 4, 4, 4}
	d := load(t, sffbuild.Legacy(false, sffbuild.LegacySprite{Data: sffbuild.PCX(sffbuild.DefaultPCX(), 3, 2, pixels, &embedded)}))
	a := render(t, d, 0, 0, 0)
	b := render(t, d, 0, 0, 0)
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("pixel %d differs between renders: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestReadSFFStopsAtImageCount(t *testing.T) {
	container := sffbuild.Legacy(false,
		sffbuild.LegacySprite{Group: 0, Image: 0, Data: []byte{1}},
		sffbuild.LegacySprite{Group: 0, Image: 1, Data: []byte{2}},
	)
	// Claim a single image.
	container[20] = 1
	d := load(t, container)
	ttesting.AssertEqualInt(t, "sprites", d.SpriteCount(), 1)

	truncated := sffbuild.Legacy(false, sffbuild.LegacySprite{Data: make([]byte, 50)})
	r := bytes.NewReader(truncated[:len(truncated)-10])
	r.Seek(16, io.SeekStart)
	if _, err := Read(r); err == nil {
		t.Errorf("truncated payload: got nil error")
	}
}

func TestReadSFFRejectsOversizedSubfile(t *testing.T) {
	container := sffbuild.Legacy(false, sffbuild.LegacySprite{Data: []byte{1}})
	// length field of the first subfile header
	binary.LittleEndian.PutUint32(container[68:], 0xFFFFFFF0)
	r := bytes.NewReader(container)
	r.Seek(16, io.SeekStart)
	_, err := Read(r)
	ttesting.AssertCause(t, "subfile length", err, io.ErrUnexpectedEOF)
}

func TestRenderIndexWithoutGeneralPalette(t *testing.T) {
	d := load(t, sffbuild.Legacy(false, sffbuild.LegacySprite{Data: sffbuild.PCX(sffbuild.DefaultPCX(), 1, 1, []byte{7}, nil)}))
	s := bitmap.NewSurface()
	if err := d.RenderIndex(s, 0, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	p, err := s.Pixel(0)
	if err != nil {
		t.Fatalf("pixel: %v", err)
	}
	ttesting.AssertTransparent(t, "no general palette", p)
}
