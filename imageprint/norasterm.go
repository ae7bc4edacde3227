//go:build windows

package imageprint

import (
	"flag"
	"fmt"
	"image"
)

var (
	forceITerm = flag.Bool("force_iterm", false, "value to force iterm detection to take (implementation variant: no rasterm)")
)

func isTermItermWez() bool {
	return *forceITerm
}

func (p *Printer) RasTerm(i image.Image) error {
	return fmt.Errorf("imageprint: rasterm not supported on windows")
}
