package cards

import (
	"fmt"
	"testing"
)

func testCards(n int) []*Card {
	out := make([]*Card, n)
	for i := range out {
		out[i] = &Card{ID: fmt.Sprintf("c%d", i), UniqueID: fmt.Sprintf("u%d", i)}
	}
	return out
}

func TestShufflePreservesMultiset(t *testing.T) {
	rng := NewSeededRNG(42)

	for _, n := range []int{0, 1, 2, 5, 40} {
		in := testCards(n)
		want := make(map[string]int)
		for _, c := range in {
			want[c.UniqueID]++
		}

		Shuffle(rng, in)

		if len(in) != n {
			t.Fatalf("shuffle changed length: got %d, want %d", len(in), n)
		}
		got := make(map[string]int)
		for _, c := range in {
			got[c.UniqueID]++
		}
		for uid, count := range want {
			if got[uid] != count {
				t.Errorf("n=%d: element %s count changed: got %d, want %d", n, uid, got[uid], count)
			}
		}
	}
}

func TestShuffleProducesDistinctOrderings(t *testing.T) {
	rng := NewSeededRNG(7)
	orderings := make(map[string]bool)

	for trial := 0; trial < 100; trial++ {
		in := testCards(5)
		Shuffle(rng, in)
		key := ""
		for _, c := range in {
			key += c.UniqueID + ","
		}
		orderings[key] = true
	}

	if len(orderings) <= 1 {
		t.Fatalf("100 shuffles of a 5-element slice produced %d distinct orderings", len(orderings))
	}
}

func TestSeededRNGDeterministic(t *testing.T) {
	a := NewSeededRNG(99)
	b := NewSeededRNG(99)
	for i := 0; i < 50; i++ {
		if got, want := a.Intn(1000), b.Intn(1000); got != want {
			t.Fatalf("draw %d diverged: %d vs %d", i, got, want)
		}
	}
}

func TestDefaultRNGInRange(t *testing.T) {
	rng := DefaultRNG()
	for i := 0; i < 100; i++ {
		v := rng.Intn(10)
		if v < 0 || v >= 10 {
			t.Fatalf("Intn(10) returned %d", v)
		}
	}
}
