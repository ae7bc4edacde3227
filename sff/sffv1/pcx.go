package sffv1

// This file contains the decoder for the PCX images that legacy containers
// store each sprite as.

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-mugen/sff/bitmap"
)

// pcxDataOffset is where pixel data starts, right after the header.
const pcxDataOffset = 128

type pcxPrefix struct {
	Manufacturer uint8
	Version      uint8
	Encoding     uint8
	BitsPerPixel uint8
}

type pcxRest struct {
	XMin, YMin, XMax, YMax uint16
	HDPI, VDPI             uint16
	ColorMap               [48]byte
	Reserved               uint8
	Planes                 uint8
	BytesPerPlane          uint16
	PaletteInfo            uint16
	HScreen, VScreen       uint16
}

// PCXHeader is the validated header of a PCX payload.
type PCXHeader struct {
	RLE           bool
	BitsPerPixel  int
	Width, Height int
	Planes        int
	BytesPerPlane int
}

// ReadPCXHeader validates the header at the start of a PCX payload.
//
// Fields are checked in file order, so the first offending byte determines
// the error.
func ReadPCXHeader(data []byte) (PCXHeader, error) {
	return readPCXHeader(bytes.NewReader(data))
}

func readPCXHeader(r io.Reader) (PCXHeader, error) {
	var p pcxPrefix
	if err := binary.Read(r, binary.LittleEndian, &p); err != nil {
		return PCXHeader{}, errors.Wrap(err, "reading pcx header")
	}
	if p.Manufacturer != 0x0A {
		return PCXHeader{}, &BadManufacturerByteError{p.Manufacturer}
	}
	switch p.Version {
	case 0, 2, 3, 5: // 2.5, 2.8 with palette, 2.8 without palette, 3.0
	default:
		return PCXHeader{}, &InvalidPaintbrushError{p.Version}
	}
	if p.Encoding > 1 {
		return PCXHeader{}, &BadEncodingByteError{p.Encoding}
	}
	switch p.BitsPerPixel {
	case 1, 2, 4, 8, 24:
	default:
		return PCXHeader{}, &InvalidBitsPerPlaneError{p.BitsPerPixel}
	}

	var rest pcxRest
	if err := binary.Read(r, binary.LittleEndian, &rest); err != nil {
		return PCXHeader{}, errors.Wrap(err, "reading pcx header")
	}
	if rest.Reserved != 0 {
		return PCXHeader{}, &BadReservedByteError{rest.Reserved}
	}
	h := PCXHeader{
		RLE:           p.Encoding == 1,
		BitsPerPixel:  int(p.BitsPerPixel),
		Width:         int(rest.XMax) - int(rest.XMin) + 1,
		Height:        int(rest.YMax) - int(rest.YMin) + 1,
		Planes:        int(rest.Planes),
		BytesPerPlane: int(rest.BytesPerPlane),
	}
	if h.Width <= 0 || h.Height <= 0 {
		return PCXHeader{}, errors.Errorf("invalid pcx bounds %d,%d-%d,%d", rest.XMin, rest.YMin, rest.XMax, rest.YMax)
	}
	return h, nil
}

// scanline returns the encoded length of one line and the number of those
// bytes that lie past the visible width.
func (h PCXHeader) scanline() (length, padding int) {
	length = h.Planes * h.BytesPerPlane
	padding = length*8/h.BitsPerPixel - h.Width
	if padding < 0 {
		padding = 0
	}
	return length, padding
}

// DecodePCX decodes a PCX payload into r, mapping color indices through pal.
func DecodePCX(data []byte, r bitmap.Renderer, pal *Palette) error {
	h, err := ReadPCXHeader(data)
	if err != nil {
		return err
	}
	if len(data) < pcxDataOffset {
		return errors.Wrap(io.ErrUnexpectedEOF, "pcx payload shorter than its header")
	}
	if err := r.InitializeSurface(h.Width, h.Height); err != nil {
		return bitmap.Wrap(err)
	}
	src := bytes.NewReader(data[pcxDataOffset:])
	if h.RLE {
		return decodePCXRLE(h, src, r, pal)
	}
	return decodePCXRaw(h, src, r, pal)
}

func decodePCXRaw(h PCXHeader, src io.ByteReader, r bitmap.Renderer, pal *Palette) error {
	for i := 0; i < h.Width*h.Height; i++ {
		b, err := src.ReadByte()
		if err != nil {
			return errors.Wrapf(io.ErrUnexpectedEOF, "reading pcx pixel %d", i)
		}
		if err := bitmap.RenderSinglePixel(r, pal.pixel(b)); err != nil {
			return bitmap.Wrap(err)
		}
	}
	return nil
}

// decodePCXRLE expands PCX run-length data. A byte with both top bits set
// is a run of its low six bits of the following index; any other byte is a
// single index. Runs are clipped at the end of the visible scanline, and
// indices landing on the scanline padding are dropped.
func decodePCXRLE(h PCXHeader, src io.ByteReader, r bitmap.Renderer, pal *Palette) error {
	length, padding := h.scanline()
	if length <= 0 {
		return errors.Errorf("pcx scanline of %d planes x %d bytes is empty", h.Planes, h.BytesPerPlane)
	}
	total := h.Width * h.Height
	read := func() (byte, error) {
		b, err := src.ReadByte()
		if err != nil {
			return 0, errors.Wrap(io.ErrUnexpectedEOF, "reading pcx rle data")
		}
		return b, nil
	}

	pos, linePos := 0, 0
	for pos < total {
		var (
			run       int
			index     byte
			isRun     bool
			isPadding bool
		)
		if linePos < length {
			b, err := read()
			if err != nil {
				return err
			}
			if b&0xC0 == 0xC0 {
				run = int(b & 0x3F)
				if index, err = read(); err != nil {
					return err
				}
				isRun = true
			} else {
				run, index = 1, b
			}
		} else {
			linePos = 0
			run, isPadding = padding, true
		}

		if isPadding || linePos+run >= length {
			switch {
			case isPadding:
			case isRun:
				run = length - linePos - padding
			case h.BytesPerPlane == h.Width:
				run = 1
			default:
				run = 0
			}
			linePos = 0
		} else {
			linePos += run
		}
		if run < 0 {
			run = 0
		}
		if pos+run > total {
			run = total - pos
		}
		if run > 0 {
			if err := r.RenderPixels(pal.pixel(index), run); err != nil {
				return bitmap.Wrap(err)
			}
		}
		pos += run
	}
	return nil
}
