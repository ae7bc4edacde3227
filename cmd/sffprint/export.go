package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/sync/errgroup"

	"badc0de.net/pkg/go-mugen/sff"
)

type encoder func(f *os.File, img image.Image) error

func encoderFor(format string) (encoder, error) {
	switch format {
	case "png":
		return func(f *os.File, img image.Image) error { return png.Encode(f, img) }, nil
	case "bmp":
		return func(f *os.File, img image.Image) error { return bmp.Encode(f, img) }, nil
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}

// exportAll writes every sprite of f into dir as <group>-<image>.<format>.
// Sprites that fail to render are logged and skipped; failing to write a
// file stops the export.
func exportAll(f *sff.File, dir, format string, palette, jobs int) error {
	enc, err := encoderFor(format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "creating %q", dir)
	}

	var g errgroup.Group
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for _, s := range f.Sprites() {
		g.Go(func() error {
			img, err := f.Image(s.Group, s.Image, palette)
			if err != nil {
				glog.Errorf("skipping sprite %d,%d: %v", s.Group, s.Image, err)
				return nil
			}
			name := filepath.Join(dir, fmt.Sprintf("%d-%d.%s", s.Group, s.Image, format))
			out, err := os.Create(name)
			if err != nil {
				return errors.Wrapf(err, "creating %q", name)
			}
			if err := enc(out, img); err != nil {
				out.Close()
				return errors.Wrapf(err, "encoding %q", name)
			}
			glog.V(1).Infof("wrote %s", name)
			return out.Close()
		})
	}
	return g.Wait()
}
