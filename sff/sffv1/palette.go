package sffv1

import (
	"image/color"
	"io"

	"github.com/pkg/errors"
)

// PaletteColorCount is the number of entries in a legacy palette.
const PaletteColorCount = 256

// paletteMarker precedes a palette embedded at the end of a PCX payload.
const paletteMarker = 0x0C

// Palette holds 256 colors. An RGB entry is opaque; the zero value of an
// entry is transparent.
type Palette [PaletteColorCount]color.RGBA

// ReadPalette reads an external palette file: 256 RGB triples stored with
// index 255 first.
func ReadPalette(r io.Reader) (Palette, error) {
	var buf [PaletteColorCount * 3]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Palette{}, errors.Wrap(err, "reading palette colors")
	}
	var p Palette
	for i := 0; i < PaletteColorCount; i++ {
		p[PaletteColorCount-1-i] = color.RGBA{R: buf[i*3], G: buf[i*3+1], B: buf[i*3+2], A: 0xFF}
	}
	return p, nil
}

// embeddedPalette returns the palette appended to a PCX payload, if there is
// one. Unlike palette files, embedded palettes are stored in index order.
func embeddedPalette(data []byte) (*Palette, bool) {
	n := len(data)
	if n <= PaletteColorCount*3 || data[n-PaletteColorCount*3-1] != paletteMarker {
		return nil, false
	}
	colors := data[n-PaletteColorCount*3:]
	var p Palette
	for j := range p {
		p[j] = color.RGBA{R: colors[j*3], G: colors[j*3+1], B: colors[j*3+2], A: 0xFF}
	}
	return &p, true
}

// pixel maps a color index through the palette. Index 0 is always
// transparent.
func (p *Palette) pixel(index byte) color.RGBA {
	if index == 0 {
		return color.RGBA{}
	}
	return p[index]
}
