package benchmarks

import (
	"math"

	"github.com/mihai-snyk/emas/pkg/singleobjective/framework"
)

const (
	RastriginName = "rastrigin"
)

// Rastrigin is a highly multimodal benchmark with a regular grid of local
// minima and a global minimum of 0 at the origin.
type Rastrigin struct {
	numVars int
}

func NewRastrigin(numVars int) *Rastrigin {
	return &Rastrigin{
		numVars,
	}
}

func (p *Rastrigin) Name() string {
	return RastriginName
}

func (p *Rastrigin) LowerBounds() []float64 {
	lb, _ := framework.UniformBounds(p.numVars, -5.12, 5.12)
	return lb
}

func (p *Rastrigin) UpperBounds() []float64 {
	_, ub := framework.UniformBounds(p.numVars, -5.12, 5.12)
	return ub
}

func (p *Rastrigin) ObjectiveFunc() framework.ObjectiveFunc {
	return rastrigin
}

func (p *Rastrigin) KnownOptimum() (float64, bool) {
	return 0, true
}

func rastrigin(x []float64) float64 {
	sum := 10.0 * float64(len(x))
	for _, xi := range x {
		sum += xi*xi - 10.0*math.Cos(2*math.Pi*xi)
	}
	return sum
}
