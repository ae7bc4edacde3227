package main

import (
	"image"
	"io"

	"github.com/nfnt/resize"

	"badc0de.net/pkg/go-mugen/imageprint"
)

// fit shrinks img to the terminal. With a raster protocol the limit is the
// pixel size of the window; otherwise each pixel takes two columns.
func fit(img image.Image, ts TermSize, raster bool) image.Image {
	if raster && ts.XPixel != 0 && ts.YPixel != 0 {
		return resize.Thumbnail(ts.XPixel/2, ts.YPixel/2, img, resize.NearestNeighbor)
	}
	if ts.Cols == 0 || ts.Rows == 0 {
		return img
	}
	return resize.Thumbnail(ts.Cols/2, ts.Rows, img, resize.NearestNeighbor)
}

func out(w io.Writer, img image.Image, axis *image.Point, name string) error {
	raster := *rasterm || *iterm
	if *downsize {
		if ts, err := GetTermSize(); err == nil {
			scaled := fit(img, ts, raster)
			if axis != nil && scaled.Bounds().Dx() != img.Bounds().Dx() {
				// the axis no longer lines up with the shrunk pixels
				axis = nil
			}
			img = scaled
		}
	}

	p := &imageprint.Printer{W: w, Blanks: *blanks, Axis: axis}
	switch {
	case *rasterm:
		return p.RasTerm(img)
	case *iterm:
		return p.ITerm(img, name)
	case !*col:
		return p.Shaded(img, imageprint.NoColor)
	case *col256:
		return p.Shaded(img, imageprint.Color256)
	}
	return p.Shaded(img, imageprint.TrueColor)
}
