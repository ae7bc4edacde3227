// Package table holds the group index and link resolution shared by the
// legacy and modern sprite container layouts.
package table

import (
	"fmt"
	"sort"

	"github.com/golang/glog"
)

// Group maps image numbers to indices in the flat sprite list.
type Group map[uint16]int

// Groups maps group numbers to their images.
type Groups map[uint16]Group

// Add records that (group, image) is stored at sprite index idx.
//
// Containers are not supposed to repeat a (group, image) pair; when one does,
// the later sprite in file order wins.
func (g Groups) Add(group, image uint16, idx int) {
	images, ok := g[group]
	if !ok {
		images = make(Group)
		g[group] = images
	}
	if prev, ok := images[image]; ok {
		glog.Warningf("sprite %d,%d repeated at index %d (first at %d)", group, image, idx, prev)
	}
	images[image] = idx
}

// Lookup returns the sprite index for (group, image). There is no fallback:
// a missing group or image is an error.
func (g Groups) Lookup(group, image uint16) (int, error) {
	images, ok := g[group]
	if !ok {
		return 0, &UnknownGroupError{Group: group, GroupCount: len(g)}
	}
	idx, ok := images[image]
	if !ok {
		return 0, &UnknownImageError{Group: group, Image: image, ImageCount: len(images)}
	}
	return idx, nil
}

// Ref identifies one sprite of a container.
type Ref struct {
	Group, Image uint16
	Index        int
}

// Refs lists every (group, image) pair ordered by sprite index.
func (g Groups) Refs() []Ref {
	var refs []Ref
	for group, images := range g {
		for image, idx := range images {
			refs = append(refs, Ref{Group: group, Image: image, Index: idx})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Index < refs[j].Index })
	return refs
}

// UnknownGroupError is returned when a requested group does not exist.
type UnknownGroupError struct {
	Group      uint16
	GroupCount int
}

func (e *UnknownGroupError) Error() string {
	return fmt.Sprintf("invalid sprite group number %d (%d sprite groups available)", e.Group, e.GroupCount)
}

// UnknownImageError is returned when a requested image does not exist in an
// existing group.
type UnknownImageError struct {
	Group, Image uint16
	ImageCount   int
}

func (e *UnknownImageError) Error() string {
	return fmt.Sprintf("invalid image number %d in group %d (%d images available in the group)", e.Image, e.Group, e.ImageCount)
}

// PaletteNotFoundError is returned when a palette index is out of range.
type PaletteNotFoundError struct {
	Index, PaletteCount int
}

func (e *PaletteNotFoundError) Error() string {
	return fmt.Sprintf("palette %d not found (%d palettes available)", e.Index, e.PaletteCount)
}

// InvalidLinkedSpriteError is returned when a sprite without data links to
// a sprite index that does not exist.
type InvalidLinkedSpriteError struct {
	Index       uint16
	SpriteCount int
}

func (e *InvalidLinkedSpriteError) Error() string {
	return fmt.Sprintf("invalid linked sprite number %d (%d sprites available)", e.Index, e.SpriteCount)
}
