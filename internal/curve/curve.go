// Package curve provides piecewise-linear breakpoint tables.
//
// Every tier-dependent mapping in the projection engine (regression
// targets, regression strength, elite workload bonuses, plate-appearance
// age baselines) is expressed as a single Curve so the consumers can
// never drift apart.
package curve

import (
	"fmt"
	"sort"
)

// Point is a single breakpoint in a piecewise-linear table.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Curve is an ordered set of breakpoints. Evaluation interpolates
// linearly between adjacent points and clamps flat outside the range.
type Curve []Point

// New builds a curve from points, sorting them by X.
func New(points ...Point) Curve {
	c := make(Curve, len(points))
	copy(c, points)
	sort.Slice(c, func(i, j int) bool { return c[i].X < c[j].X })
	return c
}

// Validate checks that the curve has at least two points and strictly
// increasing X values.
func (c Curve) Validate() error {
	if len(c) < 2 {
		return fmt.Errorf("curve needs at least 2 breakpoints, got %d", len(c))
	}
	for i := 1; i < len(c); i++ {
		if c[i].X <= c[i-1].X {
			return fmt.Errorf("curve breakpoints must be strictly increasing: x[%d]=%.4f, x[%d]=%.4f",
				i-1, c[i-1].X, i, c[i].X)
		}
	}
	return nil
}

// Eval returns the piecewise-linear interpolation at x. Outside the
// breakpoint range the nearest endpoint value is returned.
func (c Curve) Eval(x float64) float64 {
	if len(c) == 0 {
		return 0
	}
	if x <= c[0].X {
		return c[0].Y
	}
	last := len(c) - 1
	if x >= c[last].X {
		return c[last].Y
	}
	for i := 1; i <= last; i++ {
		if x <= c[i].X {
			x0, y0 := c[i-1].X, c[i-1].Y
			x1, y1 := c[i].X, c[i].Y
			t := (x - x0) / (x1 - x0)
			return y0 + t*(y1-y0)
		}
	}
	return c[last].Y
}
