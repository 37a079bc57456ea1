package benchmarks

import (
	"math"

	"github.com/mihai-snyk/emas/pkg/singleobjective/framework"
)

const (
	SchafferName = "schaffer"
)

// Schaffer is the N-dimensional generalization of Schaffer's F6 function,
// summed over consecutive coordinate pairs.
type Schaffer struct {
	numVars int
}

func NewSchaffer(numVars int) *Schaffer {
	return &Schaffer{
		numVars,
	}
}

func (p *Schaffer) Name() string {
	return SchafferName
}

func (p *Schaffer) LowerBounds() []float64 {
	lb, _ := framework.UniformBounds(p.numVars, -100, 100)
	return lb
}

func (p *Schaffer) UpperBounds() []float64 {
	_, ub := framework.UniformBounds(p.numVars, -100, 100)
	return ub
}

func (p *Schaffer) ObjectiveFunc() framework.ObjectiveFunc {
	return schaffer
}

func (p *Schaffer) KnownOptimum() (float64, bool) {
	return 0, true
}

func schaffer(x []float64) float64 {
	sum := 0.0
	for i := 0; i+1 < len(x); i++ {
		sq := x[i]*x[i] + x[i+1]*x[i+1]
		s := math.Sin(math.Sqrt(sq))
		d := 1 + 0.001*sq
		sum += 0.5 + (s*s-0.5)/(d*d)
	}
	return sum
}
