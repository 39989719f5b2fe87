package curve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval_Interpolation(t *testing.T) {
	c := New(Point{X: 0, Y: 0}, Point{X: 10, Y: 100})

	testCases := []struct {
		x        float64
		expected float64
	}{
		{-5, 0},
		{0, 0},
		{2.5, 25},
		{5, 50},
		{10, 100},
		{15, 100},
	}

	for _, tc := range testCases {
		assert.InDelta(t, tc.expected, c.Eval(tc.x), 1e-9, "x=%.1f", tc.x)
	}
}

func TestEval_MultiSegment(t *testing.T) {
	c := New(
		Point{X: 2.8, Y: 1.0},
		Point{X: 4.3, Y: 0.0},
		Point{X: 5.5, Y: -0.6},
	)

	assert.InDelta(t, 1.0, c.Eval(2.0), 1e-9)
	assert.InDelta(t, 0.5, c.Eval(3.55), 1e-9)
	assert.InDelta(t, -0.3, c.Eval(4.9), 1e-9)
	assert.InDelta(t, -0.6, c.Eval(6.0), 1e-9)
}

func TestNew_SortsPoints(t *testing.T) {
	c := New(Point{X: 10, Y: 1}, Point{X: 0, Y: 0})
	require.NoError(t, c.Validate())
	assert.InDelta(t, 0.5, c.Eval(5), 1e-9)
}

func TestValidate(t *testing.T) {
	assert.Error(t, Curve{}.Validate())
	assert.Error(t, Curve{{X: 1, Y: 1}}.Validate())
	assert.Error(t, Curve{{X: 1, Y: 1}, {X: 1, Y: 2}}.Validate())
	assert.NoError(t, Curve{{X: 1, Y: 1}, {X: 2, Y: 2}}.Validate())
}
