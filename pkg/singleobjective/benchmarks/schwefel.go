package benchmarks

import (
	"math"

	"github.com/mihai-snyk/emas/pkg/singleobjective/framework"
)

const (
	SchwefelName = "schwefel"

	schwefelConstant = 418.9828872724339
)

// Schwefel is deceptive: the global minimum near x_i = 420.9687 is far from
// the next best local minima.
type Schwefel struct {
	numVars int
}

func NewSchwefel(numVars int) *Schwefel {
	return &Schwefel{
		numVars,
	}
}

func (p *Schwefel) Name() string {
	return SchwefelName
}

func (p *Schwefel) LowerBounds() []float64 {
	lb, _ := framework.UniformBounds(p.numVars, -500, 500)
	return lb
}

func (p *Schwefel) UpperBounds() []float64 {
	_, ub := framework.UniformBounds(p.numVars, -500, 500)
	return ub
}

func (p *Schwefel) ObjectiveFunc() framework.ObjectiveFunc {
	return schwefel
}

func (p *Schwefel) KnownOptimum() (float64, bool) {
	return 0, true
}

func schwefel(x []float64) float64 {
	sum := schwefelConstant * float64(len(x))
	for _, xi := range x {
		sum -= xi * math.Sin(math.Sqrt(math.Abs(xi)))
	}
	return sum
}
