package framework

import (
	"math"
	"math/rand/v2"
	"slices"
)

// Clamp returns v limited to [l, h].
func Clamp(v, l, h float64) float64 {
	return math.Max(l, math.Min(h, v))
}

// ClampVector clamps every element of x into its per-dimension bounds in place.
func ClampVector(x, lower, upper []float64) {
	for i := range x {
		x[i] = Clamp(x[i], lower[i], upper[i])
	}
}

// RandomVector draws a point uniformly inside the box [lower, upper].
func RandomVector(rng *rand.Rand, lower, upper []float64) []float64 {
	x := make([]float64, len(lower))
	for i := range x {
		x[i] = lower[i] + rng.Float64()*(upper[i]-lower[i])
	}
	return x
}

// PMXCrossover performs partially-matched crossover on two parent vectors of
// equal length. Two cut points c1 <= c2 are drawn from [0, n]; the segments
// [c1, c2) are swapped and values outside the segment that became duplicates
// are remapped through the segment correspondence. A duplicate that cannot be
// remapped is left in place. The parents are not modified and the children
// are not clamped to any bounds.
func PMXCrossover(rng *rand.Rand, parent1, parent2 []float64) ([]float64, []float64) {
	n := len(parent1)
	c1, c2 := rng.IntN(n+1), rng.IntN(n+1)
	if c1 > c2 {
		c1, c2 = c2, c1
	}
	return pmx(parent1, parent2, c1, c2)
}

func pmx(parent1, parent2 []float64, c1, c2 int) ([]float64, []float64) {
	child1 := slices.Clone(parent1)
	child2 := slices.Clone(parent2)
	copy(child1[c1:c2], parent2[c1:c2])
	copy(child2[c1:c2], parent1[c1:c2])

	children := [2][]float64{child1, child2}
	segments := [2][]float64{
		slices.Clone(child1[c1:c2]),
		slices.Clone(child2[c1:c2]),
	}

	// A chain of remaps is never longer than the segment for permutations.
	// For arbitrary vectors it can cycle, so it is cut off there.
	maxRemaps := c2 - c1 + 1
	for i := range len(parent1) {
		if i >= c1 && i < c2 {
			continue
		}
		for son := range 2 {
			child := children[son]
			for range maxRemaps {
				if !repeated(child[i], child) {
					break
				}
				idx := slices.Index(segments[son], child[i])
				if idx < 0 {
					break
				}
				child[i] = segments[1-son][idx]
			}
		}
	}

	return child1, child2
}

func repeated(v float64, xs []float64) bool {
	c := 0
	for _, x := range xs {
		if x == v {
			c++
			if c > 1 {
				return true
			}
		}
	}
	return false
}

// SBXCrossover performs simulated binary crossover with the given distribution
// index. With probability 1-rate the children are plain copies of the parents.
// Children are clamped into [lower, upper].
func SBXCrossover(rng *rand.Rand, parent1, parent2, lower, upper []float64, rate, eta float64) ([]float64, []float64) {
	child1 := slices.Clone(parent1)
	child2 := slices.Clone(parent2)
	if rng.Float64() >= rate {
		return child1, child2
	}

	exp := 1.0 / (eta + 1.0)
	for i := range parent1 {
		var beta float64
		u := rng.Float64()
		if u <= 0.5 {
			beta = math.Pow(2*u, exp)
		} else {
			beta = math.Pow(1.0/(2*(1.0-u)), exp)
		}

		child1[i] = 0.5 * ((1+beta)*parent1[i] + (1-beta)*parent2[i])
		child2[i] = 0.5 * ((1-beta)*parent1[i] + (1+beta)*parent2[i])

		child1[i] = Clamp(child1[i], lower[i], upper[i])
		child2[i] = Clamp(child2[i], lower[i], upper[i])
	}
	return child1, child2
}

// PolynomialMutation perturbs each element of x with probability elementProb
// (1/n when elementProb <= 0) using polynomial mutation with distribution
// index eta. The result is always inside [lower, upper]; x is not modified.
func PolynomialMutation(rng *rand.Rand, x, lower, upper []float64, eta, elementProb float64) []float64 {
	y := slices.Clone(x)
	if len(y) == 0 {
		return y
	}
	if elementProb <= 0 {
		elementProb = 1.0 / float64(len(y))
	}

	mutPow := 1.0 / (eta + 1.0)
	for i := range y {
		if rng.Float64() > elementProb {
			continue
		}

		yl, yu := lower[i], upper[i]
		if yl == yu {
			y[i] = yl
			continue
		}

		v := Clamp(y[i], yl, yu)
		delta1 := (v - yl) / (yu - yl)
		delta2 := (yu - v) / (yu - yl)

		var deltaq float64
		rnd := rng.Float64()
		if rnd <= 0.5 {
			xy := 1.0 - delta1
			val := 2.0*rnd + (1.0-2.0*rnd)*math.Pow(xy, eta+1.0)
			deltaq = math.Pow(val, mutPow) - 1.0
		} else {
			xy := 1.0 - delta2
			val := 2.0*(1.0-rnd) + 2.0*(rnd-0.5)*math.Pow(xy, eta+1.0)
			deltaq = 1.0 - math.Pow(val, mutPow)
		}

		y[i] = Clamp(v+deltaq*(yu-yl), yl, yu)
	}
	return y
}
