package prioritymatrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/types"
)

func weights() map[types.FeatureName]float64 {
	return map[types.FeatureName]float64{
		types.FeatureNGRate:        0.4,
		types.FeatureCavityRate:    0.2,
		types.FeatureCycleTimeRate: 0.2,
		types.FeatureCapacityRate:  0.2,
	}
}

func metric(ng, cavity, cycle, capacity float64) map[types.FeatureName]float64 {
	return map[types.FeatureName]float64{
		types.FeatureNGRate:        ng,
		types.FeatureCavityRate:    cavity,
		types.FeatureCycleTimeRate: cycle,
		types.FeatureCapacityRate:  capacity,
	}
}

func TestRun_RoundTripRank(t *testing.T) {
	aggregates := []AggregateMetric{
		{MoldID: "M1", MachineCode: "K1", Metrics: metric(0.01, 0.99, 1.0, 0.95)},
		{MoldID: "M1", MachineCode: "K2", Metrics: metric(0.10, 0.80, 0.85, 0.70)},
		{MoldID: "M1", MachineCode: "K3", Metrics: metric(0.05, 0.90, 0.92, 0.88)},
	}
	matrix := Run(weights(), aggregates)

	row := matrix.Ranks["M1"]
	require.Len(t, row, 3)

	seen := map[int]bool{}
	for _, rank := range row {
		assert.GreaterOrEqual(t, rank, 1)
		assert.LessOrEqual(t, rank, 3)
		assert.False(t, seen[rank], "duplicate rank %d", rank)
		seen[rank] = true
	}
	// K1 has the strongest metrics across the board so it must rank first.
	assert.Equal(t, 1, matrix.RankOf("M1", "K1"))
}

func TestRun_TieBreakByMachineCodeAscending(t *testing.T) {
	aggregates := []AggregateMetric{
		{MoldID: "M1", MachineCode: "K2", Metrics: metric(0.05, 0.9, 0.9, 0.9)},
		{MoldID: "M1", MachineCode: "K1", Metrics: metric(0.05, 0.9, 0.9, 0.9)},
	}
	matrix := Run(weights(), aggregates)
	assert.Equal(t, 1, matrix.RankOf("M1", "K1"))
	assert.Equal(t, 2, matrix.RankOf("M1", "K2"))
}

func TestRun_IncompatibleMachineStaysUnranked(t *testing.T) {
	matrix := Run(weights(), []AggregateMetric{
		{MoldID: "M1", MachineCode: "K1", Metrics: metric(0.01, 0.99, 1.0, 0.95)},
	})
	assert.Equal(t, 0, matrix.RankOf("M1", "K9"))
	assert.Equal(t, 0, matrix.RankOf("M2", "K1"))
}

func TestScore_NGRateEntersInverted(t *testing.T) {
	w := map[types.FeatureName]float64{types.FeatureNGRate: 1.0}
	low := score(w, metric(0.01, 0, 0, 0))
	high := score(w, metric(0.20, 0, 0, 0))
	assert.Greater(t, low, high)
}
