package table

import (
	"testing"

	"badc0de.net/pkg/go-mugen/ttesting"
)

func TestLookup(t *testing.T) {
	g := make(Groups)
	g.Add(0, 0, 0)
	g.Add(0, 1, 1)
	g.Add(5000, 0, 2)
	g.Add(0, 1, 3) // repeated pair, later one wins

	idx, err := g.Lookup(5000, 0)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	ttesting.AssertEqualInt(t, "5000,0", idx, 2)

	idx, _ = g.Lookup(0, 1)
	ttesting.AssertEqualInt(t, "repeated 0,1", idx, 3)

	_, err = g.Lookup(1, 0)
	ttesting.AssertErrorType(t, "unknown group", err, &UnknownGroupError{})
	_, err = g.Lookup(0, 7)
	ttesting.AssertErrorType(t, "unknown image", err, &UnknownImageError{})
}

func TestRefsInIndexOrder(t *testing.T) {
	g := make(Groups)
	g.Add(9, 9, 2)
	g.Add(1, 0, 0)
	g.Add(3, 4, 1)
	refs := g.Refs()
	if len(refs) != 3 {
		t.Fatalf("got %d refs; want 3", len(refs))
	}
	for i, want := range []Ref{{1, 0, 0}, {3, 4, 1}, {9, 9, 2}} {
		if refs[i] != want {
			t.Errorf("ref %d: got %+v; want %+v", i, refs[i], want)
		}
	}
}

func TestFollow(t *testing.T) {
	// 0 -> 2 -> 3 (end); 4 -> 5 -> 4 loops.
	links := []int{2, -1, 3, -1, 5, 4}
	next := func(idx int) (int, bool, error) {
		return links[idx], links[idx] >= 0, nil
	}

	got, err := Follow("sprite", 0, len(links), next)
	if err != nil {
		t.Fatalf("follow: %v", err)
	}
	ttesting.AssertEqualInt(t, "chain end", got, 3)

	got, _ = Follow("sprite", 1, len(links), next)
	ttesting.AssertEqualInt(t, "no link", got, 1)

	_, err = Follow("sprite", 4, len(links), next)
	ttesting.AssertErrorType(t, "cycle", err, &LinkCycleError{})
}

func TestFollowSelfLink(t *testing.T) {
	_, err := Follow("palette", 0, 1, func(idx int) (int, bool, error) { return 0, true, nil })
	ttesting.AssertErrorType(t, "self link", err, &LinkCycleError{})
}
