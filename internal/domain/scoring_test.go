package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/raxzrrr/mockinvi/internal/domain"
)

func TestGradeFor(t *testing.T) {
	t.Parallel()
	cases := []struct {
		avg  float64
		want string
	}{
		{10, "A+"},
		{9, "A+"},
		{8.99, "A"},
		{8, "A"},
		{7.5, "B+"},
		{7, "B+"},
		{6, "B"},
		{5.2, "C+"},
		{5, "C+"},
		{4, "C"},
		{3, "D"},
		{2.99, "F"},
		{0, "F"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, domain.GradeFor(tc.avg), "avg=%v", tc.avg)
	}
}

func TestTierFor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "high", domain.TierFor(8))
	assert.Equal(t, "high", domain.TierFor(9.5))
	assert.Equal(t, "medium", domain.TierFor(7.99))
	assert.Equal(t, "medium", domain.TierFor(6))
	assert.Equal(t, "low", domain.TierFor(5.99))
	assert.Equal(t, "low", domain.TierFor(0))
}

func TestClampScore(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0.0, domain.ClampScore(-1))
	assert.Equal(t, 10.0, domain.ClampScore(11))
	assert.Equal(t, 7.5, domain.ClampScore(7.5))
}

func TestAverageScore(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0.0, domain.AverageScore(nil))
	evals := []domain.EvaluationRecord{{Score: 4}, {Score: 6}, {Score: 8}}
	assert.InDelta(t, 6.0, domain.AverageScore(evals), 1e-9)
}
