package benchmarks

import (
	"github.com/mihai-snyk/emas/pkg/singleobjective/framework"
)

const (
	SphereName = "sphere"
)

// Sphere is the unimodal sum of squares.
type Sphere struct {
	numVars int
}

func NewSphere(numVars int) *Sphere {
	return &Sphere{
		numVars,
	}
}

func (p *Sphere) Name() string {
	return SphereName
}

func (p *Sphere) LowerBounds() []float64 {
	lb, _ := framework.UniformBounds(p.numVars, -5.12, 5.12)
	return lb
}

func (p *Sphere) UpperBounds() []float64 {
	_, ub := framework.UniformBounds(p.numVars, -5.12, 5.12)
	return ub
}

func (p *Sphere) ObjectiveFunc() framework.ObjectiveFunc {
	return sphere
}

func (p *Sphere) KnownOptimum() (float64, bool) {
	return 0, true
}

func sphere(x []float64) float64 {
	sum := 0.0
	for _, xi := range x {
		sum += xi * xi
	}
	return sum
}
