package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"

	"badc0de.net/pkg/go-mugen/sff"
)

// listSprites writes a table of every sprite of f, with the size and digest
// of its payload so that duplicated sprites are easy to spot.
func listSprites(w io.Writer, f *sff.File, container []byte) error {
	v := f.Version()
	fmt.Fprintf(w, "version %d.%d%d, %d sprites, %d palettes, %s, xxhash %016x\n",
		v[3], v[2], v[1], f.SpriteCount(), f.PaletteCount(), humanize.Bytes(uint64(len(container))), xxhash.Sum64(container))
	if m := f.Modern(); m != nil {
		l, t := m.BlockSizes()
		fmt.Fprintf(w, "literal data %s, translated data %s\n", humanize.Bytes(uint64(l)), humanize.Bytes(uint64(t)))
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "group\timage\tindex\taxis\tsize\tformat\tpayload\tdigest\n")
	for _, s := range f.Sprites() {
		size := "?"
		if width, height, err := f.Size(s.Group, s.Image); err == nil {
			size = fmt.Sprintf("%dx%d", width, height)
		}
		format, payload := describe(f, s.Index)
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d,%d\t%s\t%s\t%s\t%016x\n",
			s.Group, s.Image, s.Index, s.Axis[0], s.Axis[1], size, format, humanize.Bytes(uint64(len(payload))), xxhash.Sum64(payload))
	}
	return tw.Flush()
}

// describe returns the pixel format and the stored payload of the sprite at
// idx. Linked sprites have an empty payload.
func describe(f *sff.File, idx int) (string, []byte) {
	if l := f.Legacy(); l != nil {
		data := l.Sprite(idx).Data
		if len(data) == 0 {
			return "linked", nil
		}
		return "pcx", data
	}
	m := f.Modern()
	s := m.Sprite(idx)
	if s.DataLength == 0 {
		return "linked", nil
	}
	payload, err := m.Payload(idx)
	if err != nil {
		return s.Format.String(), nil
	}
	return s.Format.String(), payload
}
