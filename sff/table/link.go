package table

import "fmt"

// LinkCycleError is returned when a link chain does not end within the
// number of entries in its table, which means it loops.
type LinkCycleError struct {
	Kind  string // "sprite" or "palette"
	Start int
	Hops  int
}

func (e *LinkCycleError) Error() string {
	return fmt.Sprintf("%s link chain from %d does not end after %d hops", e.Kind, e.Start, e.Hops)
}

// Follow walks a link chain starting at start. next returns the entry that
// idx links to and whether the walk continues there; Follow returns the
// first entry for which next reports false.
//
// A chain that has not ended after count hops must revisit an entry, so it
// is reported as a *LinkCycleError instead of being walked forever.
func Follow(kind string, start, count int, next func(idx int) (int, bool, error)) (int, error) {
	idx := start
	for hops := 0; ; hops++ {
		n, more, err := next(idx)
		if err != nil {
			return 0, err
		}
		if !more {
			return idx, nil
		}
		if hops >= count {
			return 0, &LinkCycleError{Kind: kind, Start: start, Hops: hops}
		}
		idx = n
	}
}
