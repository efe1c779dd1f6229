package al

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProportionOrIntegerResolve(t *testing.T) {
	n, err := ProportionOrInteger(32).Resolve(500)
	require.NoError(t, err)
	assert.Equal(t, 32, n)

	n, err = ProportionOrInteger(0.1).Resolve(500)
	require.NoError(t, err)
	assert.Equal(t, 50, n)

	n, err = ProportionOrInteger(1).Resolve(500)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = ProportionOrInteger(1.5).Resolve(500)
	assert.Error(t, err)
	_, err = ProportionOrInteger(-0.1).Resolve(500)
	assert.Error(t, err)
	_, err = ProportionOrInteger(0.5).Resolve(0)
	assert.Error(t, err)
}

func TestProportionOrIntegerString(t *testing.T) {
	assert.Equal(t, "32", ProportionOrInteger(32).String())
	assert.Equal(t, "0.1", ProportionOrInteger(0.1).String())
	assert.Equal(t, "0.25", ProportionOrInteger(0.25).String())
}

func TestTotalIterations(t *testing.T) {
	cases := []struct {
		rows, start, query, want int
	}{
		{100, 32, 32, 3},
		{96, 32, 32, 2},
		{33, 32, 32, 1},
		{32, 32, 32, 0},
		{563, 32, 32, 17},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TotalIterations(tc.rows, tc.start, tc.query),
			"rows=%d start=%d query=%d", tc.rows, tc.start, tc.query)
	}
}

func TestNewPlan(t *testing.T) {
	p, err := NewPlan(563, 32, 32, 0.1, 16)
	require.NoError(t, err)
	assert.Equal(t, 32, p.NStart)
	assert.Equal(t, 32, p.NQuery)
	assert.Equal(t, 17, p.Total)
	assert.Equal(t, 16, p.NIterations)
	assert.False(t, p.Clamped)
}

func TestNewPlanClampsIterations(t *testing.T) {
	p, err := NewPlan(100, 32, 32, 0.1, 16)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, 3, p.NIterations)
	assert.True(t, p.Clamped)
}

func TestNewPlanProportions(t *testing.T) {
	p, err := NewPlan(1000, 0.1, 0.05, 0.1, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 100, p.NStart)
	assert.Equal(t, 50, p.NQuery)
	assert.Equal(t, 18, p.Total)
	// n_iterations 0.5 resolves as a proportion of the possible total
	assert.Equal(t, 9, p.NIterations)
}

func TestNewPlanRejects(t *testing.T) {
	_, err := NewPlan(0, 32, 32, 0.1, 16)
	assert.Error(t, err)
	_, err = NewPlan(100, 0, 32, 0.1, 16)
	assert.Error(t, err)
	_, err = NewPlan(100, 200, 32, 0.1, 16)
	assert.Error(t, err)
	_, err = NewPlan(100, 32, 0, 0.1, 16)
	assert.Error(t, err)
}

func TestLabeledAt(t *testing.T) {
	p, err := NewPlan(100, 32, 32, 0.1, 16)
	require.NoError(t, err)
	assert.Equal(t, 32, p.LabeledAt(0))
	assert.Equal(t, 64, p.LabeledAt(1))
	assert.Equal(t, 96, p.LabeledAt(2))
	assert.Equal(t, 100, p.LabeledAt(3))
}

func TestOutputRoot(t *testing.T) {
	p, err := NewPlan(563, 32, 32, 0.1, 16)
	require.NoError(t, err)
	assert.Equal(t, "32/32/0.1", p.OutputRoot())
}
