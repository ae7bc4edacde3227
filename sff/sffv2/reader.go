package sffv2

import (
	"encoding/binary"
	"io"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-mugen/sff/table"
)

// header follows the signature and version bytes.
type header struct {
	Reserved1            [8]byte
	CompatVersion        [4]byte
	Reserved2            [8]byte
	SpriteOffset         uint32
	SpriteCount          uint32
	PaletteOffset        uint32
	PaletteCount         uint32
	LDataOffset, LLength uint32
	TDataOffset, TLength uint32
}

type spriteEntry struct {
	Group, Item   uint16
	Width, Height uint16
	AxisX, AxisY  int16
	LinkedIndex   uint16
	Format        uint8
	ColorDepth    uint8
	DataOffset    uint32
	DataLength    uint32
	PaletteIndex  uint16
	Flags         uint16
}

type paletteEntry struct {
	Group, Item uint16
	Colors      uint16
	LinkedIndex uint16
	Offset      uint32
	Length      uint32
}

// ReadSFF reads a modern container positioned after its version bytes.
// Both data blocks are copied into memory before the tables are read.
//
// Tables and blocks must lie within the stream; anything reaching past its
// end fails with a wrapped io.ErrUnexpectedEOF before memory is allocated
// for it.
func ReadSFF(r io.ReadSeeker) (*Data, error) {
	size, err := streamSize(r)
	if err != nil {
		return nil, err
	}

	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrap(err, "reading sffv2 header")
	}
	glog.V(2).Infof("sffv2: compat %v, %d sprites at %d, %d palettes at %d, ldata %d bytes, tdata %d bytes",
		h.CompatVersion, h.SpriteCount, h.SpriteOffset, h.PaletteCount, h.PaletteOffset, h.LLength, h.TLength)

	ldata, err := readBlock(r, size, h.LDataOffset, h.LLength)
	if err != nil {
		return nil, errors.Wrap(err, "reading literal data block")
	}
	tdata, err := readBlock(r, size, h.TDataOffset, h.TLength)
	if err != nil {
		return nil, errors.Wrap(err, "reading translated data block")
	}

	if err := checkRange(size, h.SpriteOffset, h.SpriteCount, binary.Size(spriteEntry{})); err != nil {
		return nil, errors.Wrap(err, "sprite table")
	}
	if err := checkRange(size, h.PaletteOffset, h.PaletteCount, binary.Size(paletteEntry{})); err != nil {
		return nil, errors.Wrap(err, "palette table")
	}

	if _, err := r.Seek(int64(h.SpriteOffset), io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "seeking to sprite table")
	}
	groups := make(table.Groups)
	sprites := make([]SpriteInfo, 0, h.SpriteCount)
	for i := 0; i < int(h.SpriteCount); i++ {
		var e spriteEntry
		if err := binary.Read(r, binary.LittleEndian, &e); err != nil {
			return nil, errors.Wrapf(err, "reading sprite %d", i)
		}
		groups.Add(e.Group, e.Item, len(sprites))
		sprites = append(sprites, SpriteInfo{
			Size:         [2]uint16{e.Width, e.Height},
			Axis:         [2]int16{e.AxisX, e.AxisY},
			LinkedIndex:  e.LinkedIndex,
			Format:       ImageFormat(e.Format),
			ColorDepth:   e.ColorDepth,
			DataOffset:   e.DataOffset,
			DataLength:   e.DataLength,
			PaletteIndex: e.PaletteIndex,
			UsesTData:    e.Flags&1 != 0,
		})
	}

	if _, err := r.Seek(int64(h.PaletteOffset), io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "seeking to palette table")
	}
	palettes := make([]PaletteInfo, 0, h.PaletteCount)
	for i := 0; i < int(h.PaletteCount); i++ {
		var e paletteEntry
		if err := binary.Read(r, binary.LittleEndian, &e); err != nil {
			return nil, errors.Wrapf(err, "reading palette %d", i)
		}
		palettes = append(palettes, PaletteInfo{
			Colors:      e.Colors,
			LinkedIndex: e.LinkedIndex,
			LDataOffset: e.Offset,
			LDataLength: e.Length,
		})
	}
	return NewData(sprites, groups, palettes, ldata, tdata), nil
}

// streamSize returns the length of r, leaving the position unchanged.
func streamSize(r io.ReadSeeker) (int64, error) {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, errors.Wrap(err, "finding sffv2 header position")
	}
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, errors.Wrap(err, "finding sffv2 stream size")
	}
	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return 0, errors.Wrap(err, "seeking back to sffv2 header")
	}
	return size, nil
}

// checkRange fails unless count entries of entrySize bytes at offset fit in
// a stream of size bytes.
func checkRange(size int64, offset, count uint32, entrySize int) error {
	end := int64(offset) + int64(count)*int64(entrySize)
	if end > size {
		return errors.Wrapf(io.ErrUnexpectedEOF, "%d entries at %d end at %d, past the %d byte stream", count, offset, end, size)
	}
	return nil
}

// readBlock copies length bytes at offset, leaving the position unchanged.
func readBlock(r io.ReadSeeker, size int64, offset, length uint32) ([]byte, error) {
	if err := checkRange(size, offset, length, 1); err != nil {
		return nil, err
	}
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(int64(offset), io.SeekStart); err != nil {
		return nil, err
	}
	block := make([]byte, length)
	if _, err := io.ReadFull(r, block); err != nil {
		return nil, err
	}
	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return nil, err
	}
	return block, nil
}
