package stability

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/types"
)

func mold(id types.MoldID, cavityStandard int, settingCycle float64) types.Mold {
	return types.Mold{
		MoldID:              id,
		CavityStandard:      cavityStandard,
		SettingCycleSeconds: decimal.NewFromFloat(settingCycle),
	}
}

func workingRecord(moldID types.MoldID, moldShot float64, observedCavity int) types.ProductionRecord {
	return types.ProductionRecord{
		MoldID:         moldID,
		MoldShot:       decimal.NewFromFloat(moldShot),
		ObservedCavity: observedCavity,
	}
}

func defaultParams() Params {
	return Params{Efficiency: 0.85, Loss: 0.03, TotalRecordsThreshold: 30}
}

// TestRun_SingleStableMold covers a mold with perfectly uniform cavity
// and cycle observations across every record.
func TestRun_SingleStableMold(t *testing.T) {
	m := mold("M1", 4, 10)
	records := make([]types.ProductionRecord, 60)
	for i := range records {
		records[i] = workingRecord("M1", 2880, 4)
	}

	report, err := Run(defaultParams(), []types.Mold{m}, records)
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)

	row := report.Rows[0]
	assert.InDelta(t, 1.0, row.CavityStabilityIndex, 1e-9)
	assert.InDelta(t, 1.0, row.CycleStabilityIndex, 1e-9)
	assert.True(t, row.TheoreticalCapacity.Equal(decimal.NewFromInt(1440)))
	assert.True(t, row.EffectiveCapacity.Equal(decimal.NewFromInt(1440)))
	assert.InDelta(t, 1180.8, row.EstimatedCapacity.InexactFloat64(), 1e-6)
	assert.InDelta(t, 1.0, row.TrustCoefficient, 1e-9)
	assert.True(t, row.BalancedCapacity.Equal(decimal.NewFromInt(1440)))
}

// TestRun_CycleDrift covers a mold whose observed cycle time (12s on
// every record) drifts 20% above its 10s setting.
func TestRun_CycleDrift(t *testing.T) {
	m := mold("M1", 4, 10)
	records := make([]types.ProductionRecord, 30)
	for i := range records {
		records[i] = workingRecord("M1", 2400, 4)
	}

	report, err := Run(defaultParams(), []types.Mold{m}, records)
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)

	assert.InDelta(t, 0.94, report.Rows[0].CycleStabilityIndex, 1e-9)
}

func TestRun_BoundsHoldAcrossIndices(t *testing.T) {
	m := mold("M1", 4, 10)
	records := []types.ProductionRecord{
		workingRecord("M1", 1000, 2),
		workingRecord("M1", 5000, 6),
		workingRecord("M1", 2880, 4),
	}
	report, err := Run(defaultParams(), []types.Mold{m}, records)
	require.NoError(t, err)
	row := report.Rows[0]

	assert.GreaterOrEqual(t, row.CavityStabilityIndex, 0.0)
	assert.LessOrEqual(t, row.CavityStabilityIndex, 1.0)
	assert.GreaterOrEqual(t, row.CycleStabilityIndex, 0.0)
	assert.LessOrEqual(t, row.CycleStabilityIndex, 1.0)
	assert.GreaterOrEqual(t, row.OverallStability, 0.0)
	assert.LessOrEqual(t, row.OverallStability, 1.0)
}

func TestRun_TrustCoefficientBounds(t *testing.T) {
	m := mold("M1", 4, 10)
	params := Params{Efficiency: 0.85, Loss: 0.03, TotalRecordsThreshold: 30}

	zero, err := Run(params, []types.Mold{m}, nil)
	require.NoError(t, err)
	assert.Empty(t, zero.Rows) // no records at all -> no row emitted

	atThreshold := make([]types.ProductionRecord, 30)
	for i := range atThreshold {
		atThreshold[i] = workingRecord("M1", 2880, 4)
	}
	report, err := Run(params, []types.Mold{m}, atThreshold)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, report.Rows[0].TrustCoefficient, 1e-9)
}

func TestRun_NonPositiveSettingCycleExcludesMold(t *testing.T) {
	m := mold("M1", 4, 0)
	records := []types.ProductionRecord{workingRecord("M1", 2880, 4)}
	report, err := Run(defaultParams(), []types.Mold{m}, records)
	require.NoError(t, err)
	assert.Empty(t, report.Rows)
	assert.Equal(t, []types.MoldID{"M1"}, report.InvalidMolds)
}

func TestRun_UnknownMoldReferenceRecordsWarning(t *testing.T) {
	records := []types.ProductionRecord{workingRecord("GHOST", 2880, 4)}
	report, err := Run(defaultParams(), nil, records)
	require.NoError(t, err)
	assert.Empty(t, report.Rows)
	require.NotEmpty(t, report.Warnings)
}

func TestRun_NonWorkingRecordsExcluded(t *testing.T) {
	m := mold("M1", 4, 10)
	records := []types.ProductionRecord{
		{MoldID: "M1", MoldShot: decimal.Zero, ObservedCavity: 4},
	}
	report, err := Run(defaultParams(), []types.Mold{m}, records)
	require.NoError(t, err)
	assert.Empty(t, report.Rows)
}
