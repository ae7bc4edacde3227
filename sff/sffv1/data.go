// Package sffv1 reads legacy (version 1) sprite containers, whose sprites
// are PCX images that may carry their own palette.
package sffv1

import (
	"io"

	"badc0de.net/pkg/go-mugen/sff/bitmap"
	"badc0de.net/pkg/go-mugen/sff/table"
)

// Version is the version tag of legacy containers.
var Version = [4]byte{0, 1, 0, 1}

// Sprite is one subfile.
type Sprite struct {
	// Axis is the sprite's origin relative to its top left corner.
	Axis [2]int16
	// LinkedIndex names the sprite whose image this one reuses. It only
	// matters when Data is empty.
	LinkedIndex uint16
	// UsesSharedPalette is set when the sprite uses the general palette
	// rather than the one of the sprites before it.
	UsesSharedPalette bool
	// Data is the PCX payload, possibly ending in an embedded palette.
	Data []byte
}

// Data is a loaded legacy container. It is never modified after NewData,
// so concurrent renders are safe as long as each uses its own Renderer.
type Data struct {
	sprites       []Sprite
	groups        table.Groups
	palettes      []Palette
	sharedPalette bool
}

// NewData assembles a container from its parts.
func NewData(sprites []Sprite, groups table.Groups, palettes []Palette, sharedPalette bool) *Data {
	return &Data{
		sprites:       sprites,
		groups:        groups,
		palettes:      palettes,
		sharedPalette: sharedPalette,
	}
}

// Read reads a legacy container positioned after its version bytes.
// palettes are the external palette files selectable when rendering.
func Read(r io.ReadSeeker, palettes ...Palette) (*Data, error) {
	sprites, groups, shared, err := ReadSFF(r)
	if err != nil {
		return nil, err
	}
	return NewData(sprites, groups, palettes, shared), nil
}

func (d *Data) PaletteCount() int { return len(d.palettes) }

func (d *Data) SpriteCount() int { return len(d.sprites) }

// SharedPalette reports whether the container allows sprites to fall back to
// the general palette.
func (d *Data) SharedPalette() bool { return d.sharedPalette }

// Refs lists the sprites in file order.
func (d *Data) Refs() []table.Ref { return d.groups.Refs() }

// Sprite returns the sprite at idx. The payload is shared and must not be
// modified.
func (d *Data) Sprite(idx int) Sprite { return d.sprites[idx] }

// Axis returns the axis of (group, image).
func (d *Data) Axis(group, image uint16) ([2]int16, error) {
	idx, err := d.groups.Lookup(group, image)
	if err != nil {
		return [2]int16{}, err
	}
	return d.sprites[idx].Axis, nil
}

// Size returns the pixel size of (group, image), after following links,
// without decoding it.
func (d *Data) Size(group, image uint16) (int, int, error) {
	idx, err := d.groups.Lookup(group, image)
	if err != nil {
		return 0, 0, err
	}
	if idx, err = d.resolve(idx); err != nil {
		return 0, 0, err
	}
	h, err := ReadPCXHeader(d.sprites[idx].Data)
	if err != nil {
		return 0, 0, err
	}
	return h.Width, h.Height, nil
}

// RenderSprite decodes (group, image) into r using external palette
// palette as the general palette.
func (d *Data) RenderSprite(r bitmap.Renderer, group, image uint16, palette int) error {
	general, err := d.generalPalette(palette)
	if err != nil {
		return err
	}
	idx, err := d.groups.Lookup(group, image)
	if err != nil {
		return err
	}
	return d.RenderIndex(r, idx, general)
}

// RenderIndex decodes the sprite at idx into r, following links to the
// sprite that holds the image. general is used by sprites that take the
// general palette; nil stands for a fully transparent one.
func (d *Data) RenderIndex(r bitmap.Renderer, idx int, general *Palette) error {
	if general == nil {
		general = &transparentPalette
	}
	if idx < 0 || idx >= len(d.sprites) {
		return &table.InvalidLinkedSpriteError{Index: uint16(idx), SpriteCount: len(d.sprites)}
	}
	target, err := d.resolve(idx)
	if err != nil {
		return err
	}
	return DecodePCX(d.sprites[target].Data, r, d.spritePalette(target, general))
}

// resolve follows links from sprites without data.
func (d *Data) resolve(idx int) (int, error) {
	return table.Follow("sprite", idx, len(d.sprites), func(i int) (int, bool, error) {
		s := &d.sprites[i]
		if len(s.Data) > 0 {
			return i, false, nil
		}
		if int(s.LinkedIndex) >= len(d.sprites) {
			return 0, false, &table.InvalidLinkedSpriteError{Index: s.LinkedIndex, SpriteCount: len(d.sprites)}
		}
		return int(s.LinkedIndex), true, nil
	})
}

var transparentPalette Palette

// generalPalette returns the external palette at index. A container loaded
// without external palettes still renders with index 0, using a fully
// transparent general palette; sprites then rely on embedded palettes.
func (d *Data) generalPalette(index int) (*Palette, error) {
	if len(d.palettes) == 0 && index == 0 {
		return &transparentPalette, nil
	}
	if index < 0 || index >= len(d.palettes) {
		return nil, &table.PaletteNotFoundError{Index: index, PaletteCount: len(d.palettes)}
	}
	return &d.palettes[index], nil
}

// spritePalette picks the palette of the sprite at idx by walking back
// through the sprites before it: a sprite using the shared palette (when the
// container allows it) selects the general palette, and a sprite with an
// embedded palette selects that one.
func (d *Data) spritePalette(idx int, general *Palette) *Palette {
	for i := idx; i >= 0; i-- {
		s := &d.sprites[i]
		if d.sharedPalette && s.UsesSharedPalette {
			break
		}
		if p, ok := embeddedPalette(s.Data); ok {
			return p
		}
	}
	return general
}
