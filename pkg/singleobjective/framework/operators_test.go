package framework

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestPMXFixedCutPoints(t *testing.T) {
	p1 := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	p2 := []float64{3, 7, 5, 1, 6, 8, 2, 4}

	c1, c2 := pmx(p1, p2, 3, 6)

	if diff := cmp.Diff([]float64{4, 2, 3, 1, 6, 8, 7, 5}, c1); diff != "" {
		t.Errorf("unexpected first child (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{3, 7, 8, 4, 5, 6, 2, 1}, c2); diff != "" {
		t.Errorf("unexpected second child (-want +got):\n%s", diff)
	}
	// Parents are untouched.
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8}, p1)
	assert.Equal(t, []float64{3, 7, 5, 1, 6, 8, 2, 4}, p2)
}

func TestPMXPreservesPermutations(t *testing.T) {
	rng := newRand(7)
	p1 := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	for range 200 {
		p2 := slices.Clone(p1)
		rng.Shuffle(len(p2), func(i, j int) { p2[i], p2[j] = p2[j], p2[i] })

		c1, c2 := PMXCrossover(rng, p1, p2)
		for _, c := range [][]float64{c1, c2} {
			sorted := slices.Clone(c)
			slices.Sort(sorted)
			require.Equal(t, p1, sorted, "child %v is not a permutation", c)
		}
	}
}

func TestPMXUnresolvedDuplicateIsKept(t *testing.T) {
	// 5 is duplicated in the first child but absent from the swapped segment,
	// so there is nothing to remap it through.
	p1 := []float64{5, 5, 3}
	p2 := []float64{1, 2, 4}

	c1, c2 := pmx(p1, p2, 2, 3)

	assert.Equal(t, []float64{5, 5, 4}, c1)
	assert.Equal(t, []float64{1, 2, 3}, c2)
}

func TestPMXRemapCycleTerminates(t *testing.T) {
	p1 := []float64{1, 1, 2, 2}
	p2 := []float64{2, 2, 1, 1}
	for c1 := 0; c1 <= 4; c1++ {
		for c2 := c1; c2 <= 4; c2++ {
			a, b := pmx(p1, p2, c1, c2)
			require.Len(t, a, 4)
			require.Len(t, b, 4)
		}
	}
}

func TestPMXContinuousVectors(t *testing.T) {
	rng := newRand(11)
	lower, upper := UniformBounds(30, -5.12, 5.12)
	for range 100 {
		p1 := RandomVector(rng, lower, upper)
		p2 := RandomVector(rng, lower, upper)
		c1, c2 := PMXCrossover(rng, p1, p2)

		require.Len(t, c1, 30)
		require.Len(t, c2, 30)
		// Without duplicates PMX degenerates to a two-point crossover.
		for i := range c1 {
			pair := []float64{c1[i], c2[i]}
			slices.Sort(pair)
			want := []float64{p1[i], p2[i]}
			slices.Sort(want)
			assert.Equal(t, want, pair)
		}
	}
}

func TestPolynomialMutationStaysInBounds(t *testing.T) {
	rng := newRand(3)
	lower, upper := UniformBounds(20, -5.12, 5.12)
	for _, eta := range []float64{0.2, 1, 20, 100} {
		for range 500 {
			x := RandomVector(rng, lower, upper)
			y := PolynomialMutation(rng, x, lower, upper, eta, 0.5)
			require.Len(t, y, len(x))
			for i := range y {
				require.GreaterOrEqual(t, y[i], lower[i])
				require.LessOrEqual(t, y[i], upper[i])
			}
		}
	}
}

func TestPolynomialMutationDoesNotModifyInput(t *testing.T) {
	rng := newRand(5)
	lower, upper := UniformBounds(4, 0, 1)
	x := []float64{0.1, 0.2, 0.3, 0.4}
	y := PolynomialMutation(rng, x, lower, upper, 20, 1)

	assert.Equal(t, []float64{0.1, 0.2, 0.3, 0.4}, x)
	assert.NotEqual(t, x, y)
}

func TestPolynomialMutationDegenerateBounds(t *testing.T) {
	rng := newRand(5)
	lower := []float64{2, 0}
	upper := []float64{2, 0}
	y := PolynomialMutation(rng, []float64{2, 0}, lower, upper, 20, 1)
	assert.Equal(t, []float64{2, 0}, y)
}

func TestPolynomialMutationZeroProbability(t *testing.T) {
	rng := newRand(5)
	lower, upper := UniformBounds(3, -1, 1)
	x := []float64{0.5, -0.5, 0}
	// A tiny explicit probability practically never fires.
	y := PolynomialMutation(rng, x, lower, upper, 20, 1e-12)
	assert.Equal(t, x, y)
}

func TestSBXCrossoverClamps(t *testing.T) {
	rng := newRand(9)
	lower, upper := UniformBounds(10, 0, 1)
	for range 200 {
		p1 := RandomVector(rng, lower, upper)
		p2 := RandomVector(rng, lower, upper)
		c1, c2 := SBXCrossover(rng, p1, p2, lower, upper, 1, 2)
		for i := range c1 {
			require.True(t, c1[i] >= 0 && c1[i] <= 1)
			require.True(t, c2[i] >= 0 && c2[i] <= 1)
		}
	}
}

func TestSBXCrossoverRateZeroCopiesParents(t *testing.T) {
	rng := newRand(9)
	lower, upper := UniformBounds(3, 0, 1)
	p1 := []float64{0.1, 0.2, 0.3}
	p2 := []float64{0.7, 0.8, 0.9}
	c1, c2 := SBXCrossover(rng, p1, p2, lower, upper, 0, 2)
	assert.Equal(t, p1, c1)
	assert.Equal(t, p2, c2)
}

func TestEvaluatorCounts(t *testing.T) {
	lower, upper := UniformBounds(2, -1, 1)
	p := NewFuncProblem("sum", func(x []float64) float64 { return x[0] + x[1] }, lower, upper)
	e := NewEvaluator(p)

	assert.Equal(t, 3.0, e.Evaluate([]float64{1, 2}))
	assert.Equal(t, 3.0, e.Evaluate([]float64{1, 2}))
	assert.Equal(t, 2, e.Count())
	assert.Equal(t, 2, Dimensions(p))

	_, ok := p.KnownOptimum()
	assert.False(t, ok)
}
