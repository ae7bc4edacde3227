package sff_test

import (
	"bytes"
	"fmt"

	"badc0de.net/pkg/go-mugen/internal/sffbuild"
	"badc0de.net/pkg/go-mugen/sff"
)

// ExampleRead loads a small container and prints its sprites.
func ExampleRead() {
	container := sffbuild.Modern(
		[]sffbuild.ModernSprite{
			{Group: 0, Image: 0, Width: 2, Height: 1, Data: []byte{1, 1}},
			{Group: 5000, Image: 1, Width: 3, Height: 2, Axis: [2]int16{1, 2}, Data: make([]byte, 6)},
		},
		[]sffbuild.ModernPalette{{Colors: [][3]byte{{}, {255, 0, 0}}}},
	)
	f, err := sff.Read(bytes.NewReader(container))
	if err != nil {
		fmt.Printf("failed to read sff: %s", err)
		return
	}
	for _, s := range f.Sprites() {
		img, err := f.Image(s.Group, s.Image, 0)
		if err != nil {
			fmt.Printf("failed to render %d,%d: %s", s.Group, s.Image, err)
			return
		}
		fmt.Printf("%d,%d: %dx%d axis %v\n", s.Group, s.Image, img.Bounds().Dx(), img.Bounds().Dy(), s.Axis)
	}
	// Output:
	// 0,0: 2x1 axis [0 0]
	// 5000,1: 3x2 axis [1 2]
}
