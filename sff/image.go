package sff

// This file hooks the first sprite of a container into the image package.

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"io/ioutil"

	"github.com/pkg/errors"
)

func init() {
	image.RegisterFormat("sff", Signature, Decode, DecodeConfig)
}

// readAny loads a container from any reader, buffering it in memory when it
// cannot seek.
func readAny(r io.Reader) (*File, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		buf, err := ioutil.ReadAll(r)
		if err != nil {
			return nil, errors.Wrap(err, "buffering sff stream")
		}
		rs = bytes.NewReader(buf)
	}
	return Read(rs)
}

func first(f *File) (SpriteRef, error) {
	refs := f.Sprites()
	if len(refs) == 0 {
		return SpriteRef{}, ErrNoSprites
	}
	return refs[0], nil
}

// DecodeConfig returns the size of the first sprite in the container.
func DecodeConfig(r io.Reader) (image.Config, error) {
	f, err := readAny(r)
	if err != nil {
		return image.Config{}, err
	}
	s, err := first(f)
	if err != nil {
		return image.Config{}, err
	}
	w, h, err := f.Size(s.Group, s.Image)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{Width: w, Height: h, ColorModel: color.RGBAModel}, nil
}

// Decode returns the first sprite in the container, using palette 0.
func Decode(r io.Reader) (image.Image, error) {
	f, err := readAny(r)
	if err != nil {
		return nil, err
	}
	s, err := first(f)
	if err != nil {
		return nil, err
	}
	return f.Image(s.Group, s.Image, 0)
}
