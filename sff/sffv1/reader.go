package sffv1

import (
	"encoding/binary"
	"io"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-mugen/sff/table"
)

// header follows the signature and version bytes.
type header struct {
	GroupCount    uint32
	ImageCount    uint32
	FirstOffset   uint32
	SubheaderSize uint32
	SharedPalette uint8
}

// subheader starts every subfile. It is followed by Length bytes of PCX
// data, possibly ending in an embedded palette.
type subheader struct {
	NextOffset        uint32
	Length            uint32
	AxisX, AxisY      int16
	Group, Image      uint16
	LinkedIndex       uint16
	UsesSharedPalette uint8
	Comment           [13]byte
}

// ReadSFF reads the sprite table of a legacy container. r must be
// positioned right after the version bytes.
//
// Subfiles form a linked list; reading stops once the declared number of
// images has been read or the next offset points past the end of the
// stream. Any read error fails the whole load.
func ReadSFF(r io.ReadSeeker) ([]Sprite, table.Groups, bool, error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, nil, false, errors.Wrap(err, "finding sff header position")
	}
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, nil, false, errors.Wrap(err, "finding sff stream size")
	}
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return nil, nil, false, errors.Wrap(err, "seeking back to sff header")
	}

	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, nil, false, errors.Wrap(err, "reading sffv1 header")
	}
	glog.V(2).Infof("sffv1: %d groups, %d images, first subfile at %d, shared palette %v", h.GroupCount, h.ImageCount, h.FirstOffset, h.SharedPalette != 0)

	var sprites []Sprite
	groups := make(table.Groups)
	next := int64(h.FirstOffset)
	for len(sprites) < int(h.ImageCount) && next < size {
		if _, err := r.Seek(next, io.SeekStart); err != nil {
			return nil, nil, false, errors.Wrapf(err, "seeking to subfile %d at %d", len(sprites), next)
		}
		var sh subheader
		if err := binary.Read(r, binary.LittleEndian, &sh); err != nil {
			return nil, nil, false, errors.Wrapf(err, "reading subfile %d header", len(sprites))
		}
		if left := size - next - int64(binary.Size(sh)); int64(sh.Length) > left {
			return nil, nil, false, errors.Wrapf(io.ErrUnexpectedEOF, "subfile %d claims %d bytes, %d left in stream", len(sprites), sh.Length, left)
		}
		data := make([]byte, sh.Length)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, nil, false, errors.Wrapf(err, "reading %d bytes of subfile %d", sh.Length, len(sprites))
		}
		groups.Add(sh.Group, sh.Image, len(sprites))
		sprites = append(sprites, Sprite{
			Axis:              [2]int16{sh.AxisX, sh.AxisY},
			LinkedIndex:       sh.LinkedIndex,
			UsesSharedPalette: sh.UsesSharedPalette != 0,
			Data:              data,
		})
		next = int64(sh.NextOffset)
	}
	if len(sprites) < int(h.ImageCount) {
		glog.Warningf("sffv1: subfile chain ended after %d of %d images", len(sprites), h.ImageCount)
	}
	return sprites, groups, h.SharedPalette != 0, nil
}
