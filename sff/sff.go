package sff

import (
	"fmt"
	"image"
	"io"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-mugen/sff/bitmap"
	"badc0de.net/pkg/go-mugen/sff/sffv1"
	"badc0de.net/pkg/go-mugen/sff/sffv2"
	"badc0de.net/pkg/go-mugen/sff/table"
)

// Signature starts every container.
const Signature = "ElecbyteSpr\x00"

var (
	// ErrNoSignature is returned when a stream does not start with Signature.
	ErrNoSignature = errors.New("sff: no signature")
	// ErrNoSprites is returned by Decode and DecodeConfig for an empty container.
	ErrNoSprites = errors.New("sff: container holds no sprites")
)

// UnknownVersionError is returned for a version tag other than 1.01 or 2.0x.
type UnknownVersionError struct {
	Version [4]byte
}

func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("sff: unknown version % x", e.Version[:])
}

// container is what both layouts provide once loaded.
type container interface {
	PaletteCount() int
	SpriteCount() int
	Refs() []table.Ref
	Axis(group, image uint16) ([2]int16, error)
	Size(group, image uint16) (int, int, error)
	RenderSprite(r bitmap.Renderer, group, image uint16, palette int) error
}

// File is a loaded container. It is read-only, so sprites may be rendered
// concurrently as long as each render uses its own Renderer.
type File struct {
	version [4]byte
	data    container
}

// SpriteRef identifies one sprite of a File.
type SpriteRef struct {
	Group, Image uint16
	// Index is the position of the sprite in file order.
	Index int
	Axis  [2]int16
}

// Read loads a container from r, which must be positioned at the signature.
//
// externalPalettes are only used by legacy containers, where they are the
// general palettes selected by the palette argument of RenderSprite. Modern
// containers carry all their palettes.
func Read(r io.ReadSeeker, externalPalettes ...sffv1.Palette) (*File, error) {
	var sig [len(Signature)]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		return nil, errors.Wrap(err, "reading sff signature")
	}
	if string(sig[:]) != Signature {
		return nil, ErrNoSignature
	}
	var version [4]byte
	if _, err := io.ReadFull(r, version[:]); err != nil {
		return nil, errors.Wrap(err, "reading sff version")
	}

	f := &File{version: version}
	switch version {
	case sffv1.Version:
		d, err := sffv1.Read(r, externalPalettes...)
		if err != nil {
			return nil, err
		}
		f.data = d
	case sffv2.Version:
		if len(externalPalettes) > 0 {
			glog.Warningf("sff: ignoring %d external palettes for a version 2 container", len(externalPalettes))
		}
		d, err := sffv2.Read(r)
		if err != nil {
			return nil, err
		}
		f.data = d
	default:
		return nil, &UnknownVersionError{Version: version}
	}
	glog.V(1).Infof("sff: loaded version % x container with %d sprites and %d palettes", version[:], f.SpriteCount(), f.PaletteCount())
	return f, nil
}

// Version returns the version tag of the container.
func (f *File) Version() [4]byte { return f.version }

// Legacy returns the legacy container, or nil for a modern one.
func (f *File) Legacy() *sffv1.Data {
	d, _ := f.data.(*sffv1.Data)
	return d
}

// Modern returns the modern container, or nil for a legacy one.
func (f *File) Modern() *sffv2.Data {
	d, _ := f.data.(*sffv2.Data)
	return d
}

// PaletteCount returns how many palettes RenderSprite accepts. For legacy
// containers this is the number of external palettes.
func (f *File) PaletteCount() int { return f.data.PaletteCount() }

func (f *File) SpriteCount() int { return f.data.SpriteCount() }

// Sprites lists every addressable sprite in file order.
func (f *File) Sprites() []SpriteRef {
	var refs []SpriteRef
	for _, r := range f.data.Refs() {
		axis, _ := f.data.Axis(r.Group, r.Image)
		refs = append(refs, SpriteRef{Group: r.Group, Image: r.Image, Index: r.Index, Axis: axis})
	}
	return refs
}

// Size returns the pixel size of a sprite without decoding it.
func (f *File) Size(group, image uint16) (int, int, error) {
	return f.data.Size(group, image)
}

// RenderSprite decodes (group, image) with the given palette into r.
func (f *File) RenderSprite(r bitmap.Renderer, group, image uint16, palette int) error {
	return f.data.RenderSprite(r, group, image, palette)
}

// Image decodes (group, image) with the given palette into a new image.
func (f *File) Image(group, image uint16, palette int) (*image.RGBA, error) {
	s := bitmap.NewSurface()
	if err := f.RenderSprite(s, group, image, palette); err != nil {
		return nil, errors.Wrapf(err, "rendering sprite %d,%d", group, image)
	}
	return s.Image(), nil
}
