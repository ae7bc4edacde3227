package sffv2

import (
	"image/color"
	"io"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-mugen/sff/bitmap"
)

// colorMap maps palette indices to colors stored in the literal block.
type colorMap struct {
	lut [256]color.RGBA
	// n is how many leading indices have a full 4 byte entry in the block.
	n int
}

func newColorMap(ldata []byte, p *PaletteInfo) *colorMap {
	m := &colorMap{}
	off := int(p.LDataOffset)
	for i := range m.lut {
		at := off + 4*i
		if at < 0 || at+4 > len(ldata) {
			break
		}
		m.lut[i] = color.RGBA{R: ldata[at], G: ldata[at+1], B: ldata[at+2], A: 0xFF}
		m.n = i + 1
	}
	m.lut[0] = bitmap.Transparent
	return m
}

func (m *colorMap) pixel(index byte) (color.RGBA, error) {
	if index == 0 {
		return bitmap.Transparent, nil
	}
	if int(index) >= m.n {
		return color.RGBA{}, errors.Wrapf(io.ErrUnexpectedEOF, "palette color %d outside literal block", index)
	}
	return m.lut[index], nil
}

// writer streams pixels into a renderer, dropping whatever would not fit.
type writer struct {
	r      bitmap.Renderer
	colors *colorMap
}

// room returns how many of count pixels still fit on the surface.
func (w *writer) room(count int) (int, error) {
	left, err := bitmap.Remaining(w.r)
	if err != nil {
		return 0, bitmap.Wrap(err)
	}
	if count > left {
		count = left
	}
	return count, nil
}

func (w *writer) run(index byte, count int) error {
	n, err := w.room(count)
	if err != nil || n <= 0 {
		return err
	}
	p, err := w.colors.pixel(index)
	if err != nil {
		return err
	}
	return bitmap.Wrap(bitmap.RenderClamped(w.r, p, count))
}

func (w *writer) copy(count, offset int) error {
	if offset == 0 {
		return ErrNullCopyLength
	}
	n, err := w.room(count)
	if err != nil || n <= 0 {
		return err
	}
	return bitmap.Wrap(bitmap.CopyPixelsOffset(w.r, n, offset))
}

// payload returns the encoded bytes of s, without the leading size field.
func (d *Data) payload(s *SpriteInfo) ([]byte, error) {
	block := d.ldata
	if s.UsesTData {
		block = d.tdata
	}
	if s.DataLength < 4 {
		return nil, nil
	}
	start := int64(s.DataOffset) + 4
	end := int64(s.DataOffset) + int64(s.DataLength)
	if end > int64(len(block)) {
		return nil, errors.Wrapf(io.ErrUnexpectedEOF, "sprite data %d..%d outside %d byte block", s.DataOffset, end, len(block))
	}
	return block[start:end], nil
}

func (d *Data) decode(r bitmap.Renderer, s *SpriteInfo, p *PaletteInfo) error {
	if !s.Format.Valid() {
		return &InvalidImageFormatError{Format: s.Format}
	}
	data, err := d.payload(s)
	if err != nil {
		return err
	}
	if err := r.InitializeSurface(int(s.Size[0]), int(s.Size[1])); err != nil {
		return bitmap.Wrap(err)
	}
	w := &writer{r: r, colors: newColorMap(d.ldata, p)}

	switch s.Format {
	case Raw:
		return decodeRaw(w, data)
	case RLE8:
		return decodeRLE8(w, data)
	case RLE5:
		return decodeRLE5(w, data)
	case LZ5:
		return decodeLZ5(w, data)
	}
	return &InvalidImageFormatError{Format: s.Format}
}

func decodeRaw(w *writer, data []byte) error {
	for _, b := range data {
		if err := w.run(b, 1); err != nil {
			return err
		}
	}
	return nil
}

// decodeRLE8: a byte 01xxxxxx is a run of xxxxxx pixels of the color in
// the next byte; anything else is one pixel.
func decodeRLE8(w *writer, data []byte) error {
	for i := 0; i < len(data); i++ {
		b := data[i]
		if b&0xC0 != 0x40 {
			if err := w.run(b, 1); err != nil {
				return err
			}
			continue
		}
		i++
		if i >= len(data) {
			return errors.Wrap(io.ErrUnexpectedEOF, "rle8 run without color")
		}
		if err := w.run(data[i], int(b&0x3F)); err != nil {
			return err
		}
	}
	return nil
}

// decodeRLE5 reads packets of a run byte, a data length byte (bit 7 set
// when a color byte follows) and that many bytes of 3 bit run, 5 bit color.
func decodeRLE5(w *writer, data []byte) error {
	i := 0
	next := func() (byte, error) {
		if i >= len(data) {
			return 0, errors.Wrap(io.ErrUnexpectedEOF, "reading rle5 packet")
		}
		b := data[i]
		i++
		return b, nil
	}
	for i < len(data) {
		run, err := next()
		if err != nil {
			return err
		}
		length, err := next()
		if err != nil {
			return err
		}
		var c byte
		if length&0x80 != 0 {
			if c, err = next(); err != nil {
				return err
			}
		}
		if err := w.run(c, int(run&0x7F)); err != nil {
			return err
		}
		for n := int(length & 0x7F); n > 0; n-- {
			b, err := next()
			if err != nil {
				return err
			}
			if err := w.run(b&0x1F, int(b>>5)); err != nil {
				return err
			}
		}
	}
	return nil
}

// decodeLZ5 reads a control byte followed by up to 8 packets, bit 0 of the
// control byte describing the first. A clear bit is a color run, a set bit
// a back reference into the pixels already written.
//
// Every fourth short back reference carries no offset byte; its offset is
// assembled from the top 2 bits of the short references before it.
func decodeLZ5(w *writer, data []byte) error {
	i := 0
	next := func() (byte, error) {
		if i >= len(data) {
			return 0, errors.Wrap(io.ErrUnexpectedEOF, "reading lz5 packet")
		}
		b := data[i]
		i++
		return b, nil
	}
	var recycled byte
	shortCopies := 1
	for i < len(data) {
		control := data[i]
		i++
		for bit := uint(0); bit < 8 && i < len(data); bit++ {
			b := data[i]
			i++
			if control&(1<<bit) == 0 {
				run := int(b >> 5)
				if run == 0 {
					ext, err := next()
					if err != nil {
						return err
					}
					run = 8 + int(ext)
				}
				if err := w.run(b&0x1F, run); err != nil {
					return err
				}
				continue
			}

			var count, offset int
			if b&0x3F != 0 {
				count = int(b&0x3F) + 1
				recycled = (b&0xC0)>>6 | recycled<<2
				if shortCopies%4 == 0 {
					offset = int(recycled) + 1
					recycled = 0
				} else {
					o, err := next()
					if err != nil {
						return err
					}
					offset = int(o) + 1
				}
				shortCopies++
			} else {
				lo, err := next()
				if err != nil {
					return err
				}
				n, err := next()
				if err != nil {
					return err
				}
				offset = (int(b&0xC0)<<2 | int(lo)) + 1
				count = int(n) + 3
			}
			if err := w.copy(count, offset); err != nil {
				return err
			}
		}
	}
	return nil
}
