package emas

import "math/rand/v2"

type pair struct {
	first, second int
}

// pairEligible matches the indices in [0, n) that satisfy eligible into
// disjoint pairs, uniformly at random. Each index appears in at most one
// pair; with an odd number of eligible indices one is left out.
func pairEligible(rng *rand.Rand, n int, eligible func(i int) bool) []pair {
	candidates := make([]int, 0, n)
	for i := range n {
		if eligible(i) {
			candidates = append(candidates, i)
		}
	}
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	pairs := make([]pair, 0, len(candidates)/2)
	for k := 0; k+1 < len(candidates); k += 2 {
		pairs = append(pairs, pair{candidates[k], candidates[k+1]})
	}
	return pairs
}
