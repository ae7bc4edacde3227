// Package imageprint prints decoded sprites on a terminal. UNSUPPORTED debug package.
//
// This package has an API with no stability guarantees.
package imageprint

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	ic "image/color"
	"image/png"
	"io"

	"github.com/gookit/color"
)

// Mode selects how Printer.Shaded colors each cell.
type Mode int

const (
	// NoColor prints shading characters only. Only makes sense with Blanks unset.
	NoColor Mode = iota
	// Color256 leaves the escape sequence to gookit/color, which falls back
	// to the 256color palette on terminals without true color.
	Color256
	// TrueColor uses 24bit escape sequences by changing the background.
	TrueColor
)

// Printer draws images as two characters per pixel.
type Printer struct {
	W io.Writer
	// Blanks draws opaque pixels as spaces on a colored background instead
	// of shading characters.
	Blanks bool
	// Axis, when set, marks the sprite axis on transparent pixels of its
	// row and column.
	Axis *image.Point
}

func (p *Printer) shade(col ic.Color, mode Mode, onAxis bool) string {
	cR, cG, cB, cA := col.RGBA()
	if cA == 0 {
		if onAxis {
			return "\x1b[0m++"
		}
		if mode == NoColor {
			return "  "
		}
		return "\x1b[0m  "
	}
	cell := "  "
	if !p.Blanks {
		switch a := ((cR + cG + cB) / 3) >> 8; {
		case a < 32:
			cell = ".."
		case a < 64:
			cell = "--"
		case a < 128:
			cell = "=="
		default:
			cell = "##"
		}
	}
	switch mode {
	case TrueColor:
		return fmt.Sprintf("\x1b[48;2;%d;%d;%dm%s\x1b[0m", uint8(cR>>8), uint8(cG>>8), uint8(cB>>8), cell)
	case Color256:
		return color.RGB(uint8(cR>>8), uint8(cG>>8), uint8(cB>>8), true).Sprintf("%s", cell)
	}
	return cell
}

func (p *Printer) onAxis(x, y int) bool {
	return p.Axis != nil && (x == p.Axis.X || y == p.Axis.Y)
}

// Shaded draws i line by line with the given coloring mode.
func (p *Printer) Shaded(i image.Image, mode Mode) error {
	b := &bytes.Buffer{}
	for y := i.Bounds().Min.Y; y < i.Bounds().Max.Y; y++ {
		for x := i.Bounds().Min.X; x < i.Bounds().Max.X; x++ {
			b.WriteString(p.shade(i.At(x, y), mode, p.onAxis(x-i.Bounds().Min.X, y-i.Bounds().Min.Y)))
		}
		if mode != NoColor {
			b.WriteString("\x1b[0m")
		}
		b.WriteString("\n")
	}
	_, err := b.WriteTo(p.W)
	return err
}

// ITerm draws an image using iTerm2's inline image escape sequence, if the
// terminal looks like it supports it.
//
// https://www.iterm2.com/documentation-images.html
func (p *Printer) ITerm(i image.Image, fn string) error {
	if !isTermItermWez() {
		return nil
	}
	return p.writeITerm(i, fn)
}

func (p *Printer) writeITerm(i image.Image, fn string) error {
	name := base64.StdEncoding.EncodeToString([]byte(fn))
	b := &bytes.Buffer{}
	bEnc := base64.NewEncoder(base64.StdEncoding, b)
	if err := png.Encode(bEnc, i); err != nil {
		return err
	}
	bEnc.Close()
	_, err := fmt.Fprintf(p.W, "\n\033]1337;File=name=%s;inline=1;size=%d,width=%dpx;height=%dpx:%s\a\n", name, b.Len(), i.Bounds().Size().X, i.Bounds().Size().Y, b.String())
	return err
}
