// Command sffprint loads a sprite container and prints, lists or exports its
// sprites.
//
// The container is read from -sff, or from the member -sff of the zip
// archive -zip, the way characters are usually distributed. Legacy
// containers take their general palettes from -pal files, looked up in the
// same place.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"

	"badc0de.net/pkg/flagutil/v1"

	"badc0de.net/pkg/go-mugen/sff"
	"badc0de.net/pkg/go-mugen/sff/sffv1"
)

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(s string) error {
	*l = append(*l, s)
	return nil
}

var (
	sffPath      = flag.String("sff", "", "path to the sprite container; inside the -zip archive if that is set")
	zipPath      = flag.String("zip", "", "zip archive holding the container and palettes")
	palPaths     stringList
	group        = flag.Int("group", 0, "group of the sprite to print")
	imageNo      = flag.Int("image", 0, "image of the sprite to print")
	palette      = flag.Int("palette", 0, "palette to render with")
	list         = flag.Bool("list", false, "whether to list the sprites instead of printing one")
	exportDir    = flag.String("export_dir", "", "if set, every sprite is written into this directory instead of printed")
	exportFormat = flag.String("export_format", "png", "image format for -export_dir: png or bmp")
	jobs         = flag.Int("jobs", 4, "how many sprites to export concurrently")
	col          = flag.Bool("col", true, "whether to use color at all")
	col256       = flag.Bool("col256", false, "whether to use 256 col instead of 24 bit")
	iterm        = flag.Bool("iterm", false, "whether to print with iterm escape code instead of 24 bit")
	rasterm      = flag.Bool("rasterm", false, "whether to print with the rasterm library (kitty, iterm or sixel)")
	blanks       = flag.Bool("blanks", true, "whether to just use colored blanks instead of some bad ascii art")
	downsize     = flag.Bool("downsize", true, "whether to shrink sprites larger than the terminal")
	axis         = flag.Bool("axis", false, "whether to mark the sprite axis")
)

func init() {
	flag.Var(&palPaths, "pal", "external palette file for legacy containers; repeat for more palettes")
}

// source opens files either from disk or from one zip archive.
type source struct {
	zr *zip.ReadCloser
}

func openSource(zipPath string) (*source, error) {
	if zipPath == "" {
		return &source{}, nil
	}
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, errors.Wrapf(err, "opening zip archive %q", zipPath)
	}
	return &source{zr: zr}, nil
}

func (s *source) Close() error {
	if s.zr == nil {
		return nil
	}
	return s.zr.Close()
}

// ReadFile returns the contents of name. Inside a zip archive, names are
// matched case-insensitively since characters are packed on all kinds of
// systems.
func (s *source) ReadFile(name string) ([]byte, error) {
	if s.zr == nil {
		return ioutil.ReadFile(name)
	}
	for _, f := range s.zr.File {
		if !strings.EqualFold(f.Name, name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "opening %q in zip", name)
		}
		defer rc.Close()
		return ioutil.ReadAll(rc)
	}
	return nil, errors.Wrapf(os.ErrNotExist, "%q not in zip", name)
}

// load reads the container and the external palettes. The raw container
// bytes are returned too, for listing.
func load(src *source) (*sff.File, []byte, error) {
	var pals []sffv1.Palette
	for _, p := range palPaths {
		b, err := src.ReadFile(p)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "reading palette %q", p)
		}
		pal, err := sffv1.ReadPalette(bytes.NewReader(b))
		if err != nil {
			return nil, nil, errors.Wrapf(err, "parsing palette %q", p)
		}
		pals = append(pals, pal)
	}

	container, err := src.ReadFile(*sffPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading container %q", *sffPath)
	}
	f, err := sff.Read(bytes.NewReader(container), pals...)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "parsing container %q", *sffPath)
	}
	return f, container, nil
}

func printSprite(f *sff.File, w io.Writer) error {
	g, i := uint16(*group), uint16(*imageNo)
	img, err := f.Image(g, i, *palette)
	if err != nil {
		return err
	}
	var axisPt *image.Point
	if *axis {
		for _, s := range f.Sprites() {
			if s.Group == g && s.Image == i {
				axisPt = &image.Point{X: int(s.Axis[0]), Y: int(s.Axis[1])}
			}
		}
	}
	return out(w, img, axisPt, fmt.Sprintf("%d-%d.png", g, i))
}

func main() {
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	if *sffPath == "" {
		glog.Exitf("-sff is required")
	}
	src, err := openSource(*zipPath)
	if err != nil {
		glog.Exitf("%v", err)
	}
	defer src.Close()

	f, container, err := load(src)
	if err != nil {
		glog.Errorf("%v", err)
		src.Close()
		os.Exit(1)
	}

	switch {
	case *list:
		err = listSprites(os.Stdout, f, container)
	case *exportDir != "":
		err = exportAll(f, *exportDir, *exportFormat, *palette, *jobs)
	default:
		err = printSprite(f, os.Stdout)
	}
	if err != nil {
		glog.Errorf("%v", err)
		src.Close()
		os.Exit(1)
	}
}
