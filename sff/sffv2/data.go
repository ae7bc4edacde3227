// Package sffv2 reads modern (version 2) sprite containers.
//
// All sprite and palette payloads live in two data blocks that are copied
// into memory on load: the literal block and the translated block. Sprite
// pixels are stored raw or packed with one of three compression schemes.
package sffv2

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-mugen/sff/bitmap"
	"badc0de.net/pkg/go-mugen/sff/table"
)

// Version is the version tag of modern containers.
var Version = [4]byte{0, 1, 0, 2}

// ImageFormat is the pixel packing of a sprite.
type ImageFormat uint8

const (
	Raw  ImageFormat = 0
	RLE8 ImageFormat = 2
	RLE5 ImageFormat = 3
	LZ5  ImageFormat = 4
)

// Valid reports whether f is one of the known formats.
func (f ImageFormat) Valid() bool {
	switch f {
	case Raw, RLE8, RLE5, LZ5:
		return true
	}
	return false
}

// String implements the stringer interface.
func (f ImageFormat) String() string {
	switch f {
	case Raw:
		return "raw"
	case RLE8:
		return "rle8"
	case RLE5:
		return "rle5"
	case LZ5:
		return "lz5"
	}
	return fmt.Sprintf("invalid(%d)", uint8(f))
}

// SpriteInfo is one sprite table entry.
type SpriteInfo struct {
	Size        [2]uint16
	Axis        [2]int16
	LinkedIndex uint16
	Format      ImageFormat
	ColorDepth  uint8
	// DataOffset and DataLength locate the payload in the literal block, or
	// in the translated block when UsesTData is set. The payload starts
	// with a 4 byte uncompressed size.
	DataOffset   uint32
	DataLength   uint32
	PaletteIndex uint16
	UsesTData    bool
}

// PaletteInfo is one palette table entry. Colors are 4 bytes each (R, G,
// B, unused) in the literal block.
type PaletteInfo struct {
	Colors      uint16
	LinkedIndex uint16
	LDataOffset uint32
	LDataLength uint32
}

// ErrNullCopyLength is returned when an LZ5 copy has a zero offset.
var ErrNullCopyLength = errors.New("null copy length")

// InvalidImageFormatError is returned when rendering a sprite whose format
// byte is not known.
type InvalidImageFormatError struct {
	Format ImageFormat
}

func (e *InvalidImageFormatError) Error() string {
	return fmt.Sprintf("invalid image format %d", uint8(e.Format))
}

// Data is a loaded modern container. It is never modified after NewData,
// so concurrent renders are safe as long as each uses its own Renderer.
type Data struct {
	sprites  []SpriteInfo
	groups   table.Groups
	palettes []PaletteInfo
	ldata    []byte
	tdata    []byte
}

// NewData assembles a container from its parts.
func NewData(sprites []SpriteInfo, groups table.Groups, palettes []PaletteInfo, ldata, tdata []byte) *Data {
	return &Data{
		sprites:  sprites,
		groups:   groups,
		palettes: palettes,
		ldata:    ldata,
		tdata:    tdata,
	}
}

// Read reads a modern container positioned after its version bytes.
func Read(r io.ReadSeeker) (*Data, error) {
	return ReadSFF(r)
}

func (d *Data) PaletteCount() int { return len(d.palettes) }

func (d *Data) SpriteCount() int { return len(d.sprites) }

// Refs lists the sprites in file order.
func (d *Data) Refs() []table.Ref { return d.groups.Refs() }

// Sprite returns the sprite table entry at idx.
func (d *Data) Sprite(idx int) SpriteInfo { return d.sprites[idx] }

// Payload returns the encoded pixels stored for the sprite at idx, without
// following links.
func (d *Data) Payload(idx int) ([]byte, error) { return d.payload(&d.sprites[idx]) }

// Palette returns the palette table entry at idx.
func (d *Data) Palette(idx int) PaletteInfo { return d.palettes[idx] }

// BlockSizes returns the lengths of the literal and translated blocks.
func (d *Data) BlockSizes() (int, int) { return len(d.ldata), len(d.tdata) }

// Axis returns the axis of (group, image).
func (d *Data) Axis(group, image uint16) ([2]int16, error) {
	idx, err := d.groups.Lookup(group, image)
	if err != nil {
		return [2]int16{}, err
	}
	return d.sprites[idx].Axis, nil
}

// Size returns the pixel size of (group, image) after following links.
func (d *Data) Size(group, image uint16) (int, int, error) {
	idx, err := d.groups.Lookup(group, image)
	if err != nil {
		return 0, 0, err
	}
	s, err := d.LinkedSprite(idx)
	if err != nil {
		return 0, 0, err
	}
	return int(s.Size[0]), int(s.Size[1]), nil
}

// RenderSprite decodes (group, image) into r with the requested palette.
// A sprite that names its own palette overrides the request.
func (d *Data) RenderSprite(r bitmap.Renderer, group, image uint16, palette int) error {
	idx, err := d.groups.Lookup(group, image)
	if err != nil {
		return err
	}
	return d.RenderIndex(r, idx, palette)
}

// RenderIndex decodes the sprite at idx into r.
func (d *Data) RenderIndex(r bitmap.Renderer, idx, palette int) error {
	s, err := d.LinkedSprite(idx)
	if err != nil {
		return err
	}
	if s.PaletteIndex > 0 {
		palette = int(s.PaletteIndex)
	}
	p, err := d.LinkedPalette(palette)
	if err != nil {
		return err
	}
	return d.decode(r, s, p)
}

// LinkedSprite returns the sprite at idx after following its links.
func (d *Data) LinkedSprite(idx int) (*SpriteInfo, error) {
	if idx < 0 || idx >= len(d.sprites) {
		return nil, &table.InvalidLinkedSpriteError{Index: uint16(idx), SpriteCount: len(d.sprites)}
	}
	idx, err := table.Follow("sprite", idx, len(d.sprites), func(i int) (int, bool, error) {
		l := int(d.sprites[i].LinkedIndex)
		return l, l > 0 && l < len(d.sprites), nil
	})
	if err != nil {
		return nil, err
	}
	return &d.sprites[idx], nil
}

// LinkedPalette returns the palette at idx after following its links.
func (d *Data) LinkedPalette(idx int) (*PaletteInfo, error) {
	if idx < 0 || idx >= len(d.palettes) {
		return nil, &table.PaletteNotFoundError{Index: idx, PaletteCount: len(d.palettes)}
	}
	idx, err := table.Follow("palette", idx, len(d.palettes), func(i int) (int, bool, error) {
		l := int(d.palettes[i].LinkedIndex)
		return l, l > 0 && l < len(d.palettes), nil
	})
	if err != nil {
		return nil, err
	}
	return &d.palettes[idx], nil
}
