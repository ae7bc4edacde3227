// Package sffbuild assembles small sprite containers in memory for tests.
//
// It writes just enough of each layout for the readers to accept it; it is
// not an encoder for real game assets.
package sffbuild

import (
	"bytes"
	"encoding/binary"
)

// Signature starts every container.
const Signature = "ElecbyteSpr\x00"

var (
	LegacyVersion = [4]byte{0, 1, 0, 1}
	ModernVersion = [4]byte{0, 1, 0, 2}
)

const legacyHeaderSize = 64

// LegacySprite is one subfile of a legacy container.
type LegacySprite struct {
	Group, Image      uint16
	Axis              [2]int16
	Linked            uint16
	UsesSharedPalette bool
	Data              []byte
}

type legacyHeader struct {
	GroupCount, ImageCount uint32
	FirstOffset            uint32
	SubheaderSize          uint32
	SharedPalette          uint8
}

type legacySubheader struct {
	NextOffset, Length uint32
	AxisX, AxisY       int16
	Group, Image       uint16
	Linked             uint16
	UsesShared         uint8
	Reserved           [13]byte
}

// Legacy returns a complete legacy container holding sprites in order.
func Legacy(sharedPalette bool, sprites ...LegacySprite) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString(Signature)
	buf.Write(LegacyVersion[:])

	groups := map[uint16]bool{}
	for _, s := range sprites {
		groups[s.Group] = true
	}
	binary.Write(buf, binary.LittleEndian, legacyHeader{
		GroupCount:    uint32(len(groups)),
		ImageCount:    uint32(len(sprites)),
		FirstOffset:   legacyHeaderSize,
		SubheaderSize: 32,
		SharedPalette: boolByte(sharedPalette),
	})
	buf.Write(make([]byte, legacyHeaderSize-buf.Len()))

	for _, s := range sprites {
		next := uint32(buf.Len() + 32 + len(s.Data))
		binary.Write(buf, binary.LittleEndian, legacySubheader{
			NextOffset: next,
			Length:     uint32(len(s.Data)),
			AxisX:      s.Axis[0],
			AxisY:      s.Axis[1],
			Group:      s.Group,
			Image:      s.Image,
			Linked:     s.Linked,
			UsesShared: boolByte(s.UsesSharedPalette),
		})
		buf.Write(s.Data)
	}
	return buf.Bytes()
}

// PCXOptions tweak the header written by PCX.
type PCXOptions struct {
	Manufacturer  byte
	Version       byte
	Encoding      byte
	BitsPerPixel  byte
	Reserved      byte
	Planes        byte
	BytesPerPlane uint16
}

// DefaultPCX describes an 8-bit single-plane image run-length encoded.
func DefaultPCX() PCXOptions {
	return PCXOptions{Manufacturer: 0x0A, Version: 5, Encoding: 1, BitsPerPixel: 8, Planes: 1}
}

// PCX encodes width x height palette indices. When palette is non-nil it is
// appended after a 0x0C marker, in forward index order.
func PCX(o PCXOptions, width, height int, pixels []byte, palette *[256][3]byte) []byte {
	bpl := int(o.BytesPerPlane)
	if bpl == 0 {
		bpl = width + width%2
	}
	hdr := make([]byte, 128)
	hdr[0] = o.Manufacturer
	hdr[1] = o.Version
	hdr[2] = o.Encoding
	hdr[3] = o.BitsPerPixel
	binary.LittleEndian.PutUint16(hdr[8:], uint16(width-1))
	binary.LittleEndian.PutUint16(hdr[10:], uint16(height-1))
	hdr[64] = o.Reserved
	hdr[65] = o.Planes
	binary.LittleEndian.PutUint16(hdr[66:], uint16(bpl))

	buf := bytes.NewBuffer(hdr)
	for y := 0; y < height; y++ {
		line := make([]byte, bpl)
		copy(line, pixels[y*width:(y+1)*width])
		if o.Encoding == 0 {
			buf.Write(line[:width])
			continue
		}
		for i := 0; i < len(line); {
			n := 1
			for i+n < len(line) && line[i+n] == line[i] && n < 63 {
				n++
			}
			if n > 1 || line[i] >= 0xC0 {
				buf.WriteByte(0xC0 | byte(n))
			}
			buf.WriteByte(line[i])
			i += n
		}
	}
	if palette != nil {
		buf.WriteByte(0x0C)
		for _, c := range palette {
			buf.Write(c[:])
		}
	}
	return buf.Bytes()
}

// ExternalPalette encodes a palette file: 256 RGB triples, index 255 first.
func ExternalPalette(colors [256][3]byte) []byte {
	buf := make([]byte, 0, 768)
	for i := 255; i >= 0; i-- {
		buf = append(buf, colors[i][:]...)
	}
	return buf
}

// ModernSprite is one sprite table entry of a modern container. Data is the
// encoded payload without the leading uncompressed-size field.
type ModernSprite struct {
	Group, Image  uint16
	Width, Height uint16
	Axis          [2]int16
	Linked        uint16
	Format        uint8
	ColorDepth    uint8
	Data          []byte
	PaletteIndex  uint16
	TData         bool
}

// ModernPalette is one palette table entry; Colors are written to the
// literal block as R, G, B, 0.
type ModernPalette struct {
	Group, Item uint16
	Linked      uint16
	Colors      [][3]byte
}

type modernHeader struct {
	Reserved1                   [8]byte
	Compat                      [4]byte
	Reserved2                   [8]byte
	SpriteOffset, SpriteCount   uint32
	PaletteOffset, PaletteCount uint32
	LOffset, LLength            uint32
	TOffset, TLength            uint32
}

type modernSpriteEntry struct {
	Group, Image        uint16
	Width, Height       uint16
	AxisX, AxisY        int16
	Linked              uint16
	Format, ColorDepth  uint8
	DataOffset, DataLen uint32
	PaletteIndex, Flags uint16
}

type modernPaletteEntry struct {
	Group, Item    uint16
	Colors, Linked uint16
	Offset, Length uint32
}

const modernHeaderSize = 16 + 20 + 32

// Modern returns a complete modern container.
func Modern(sprites []ModernSprite, palettes []ModernPalette) []byte {
	ldata := &bytes.Buffer{}
	tdata := &bytes.Buffer{}

	var pentries []modernPaletteEntry
	for _, p := range palettes {
		e := modernPaletteEntry{Group: p.Group, Item: p.Item, Colors: uint16(len(p.Colors)), Linked: p.Linked}
		if len(p.Colors) > 0 {
			e.Offset = uint32(ldata.Len())
			e.Length = uint32(4 * len(p.Colors))
			for _, c := range p.Colors {
				ldata.Write(c[:])
				ldata.WriteByte(0)
			}
		}
		pentries = append(pentries, e)
	}

	var sentries []modernSpriteEntry
	for _, s := range sprites {
		e := modernSpriteEntry{
			Group: s.Group, Image: s.Image,
			Width: s.Width, Height: s.Height,
			AxisX: s.Axis[0], AxisY: s.Axis[1],
			Linked:       s.Linked,
			Format:       s.Format,
			ColorDepth:   s.ColorDepth,
			PaletteIndex: s.PaletteIndex,
		}
		if s.Data != nil {
			block := ldata
			if s.TData {
				block = tdata
				e.Flags = 1
			}
			e.DataOffset = uint32(block.Len())
			e.DataLen = uint32(4 + len(s.Data))
			binary.Write(block, binary.LittleEndian, uint32(int(s.Width)*int(s.Height)))
			block.Write(s.Data)
		}
		sentries = append(sentries, e)
	}

	spriteOffset := uint32(modernHeaderSize)
	paletteOffset := spriteOffset + uint32(28*len(sentries))
	lOffset := paletteOffset + uint32(16*len(pentries))
	tOffset := lOffset + uint32(ldata.Len())

	buf := &bytes.Buffer{}
	buf.WriteString(Signature)
	buf.Write(ModernVersion[:])
	binary.Write(buf, binary.LittleEndian, modernHeader{
		Compat:        ModernVersion,
		SpriteOffset:  spriteOffset,
		SpriteCount:   uint32(len(sentries)),
		PaletteOffset: paletteOffset,
		PaletteCount:  uint32(len(pentries)),
		LOffset:       lOffset,
		LLength:       uint32(ldata.Len()),
		TOffset:       tOffset,
		TLength:       uint32(tdata.Len()),
	})
	for _, e := range sentries {
		binary.Write(buf, binary.LittleEndian, e)
	}
	for _, e := range pentries {
		binary.Write(buf, binary.LittleEndian, e)
	}
	buf.Write(ldata.Bytes())
	buf.Write(tdata.Bytes())
	return buf.Bytes()
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
