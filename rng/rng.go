// Package rng defines the random source consumed by the simulation. All turn
// order, movement and placement randomness is drawn from one Source so that a
// seed fully determines a run.
package rng

import "math/rand"

// Source provides uniformly distributed integers and permutations.
type Source interface {
	// Intn returns an integer in [0, n). n must be positive.
	Intn(n int) int

	// Shuffle permutes n elements using swap.
	Shuffle(n int, swap func(i, j int))
}

// New returns a deterministic Source seeded with seed.
func New(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// Pick returns a uniformly chosen element of items. It panics on an empty
// slice.
func Pick[T any](src Source, items []T) T {
	if len(items) == 0 {
		panic("cannot pick from an empty slice")
	}

	return items[src.Intn(len(items))]
}

// Perm returns a random permutation of [0, n) drawn with src.Shuffle.
func Perm(src Source, n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	src.Shuffle(n, func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	return order
}
