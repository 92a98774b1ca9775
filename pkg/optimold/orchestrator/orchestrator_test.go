package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThuyHaLE/optimoldiq-core/internal/testdata"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/config"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/repository/memory"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/types"
)

func buildSnapshot() types.Snapshot {
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	molds := []types.Mold{testdata.Mold("M1", 4, 10)}
	machines := []types.Machine{testdata.Machine("MC1", "K1", 100)}
	moldSpecs := []types.MoldSpec{
		{MoldID: "M1", CompatibleMachineCodes: []types.MachineCode{"K1"}},
	}

	var records []types.ProductionRecord
	for i := 0; i < 60; i++ {
		records = append(records, testdata.WorkingRecord("M1", "MC1", "PO1", 2880, 100, 0, 4, day))
	}
	for i := 0; i < 10; i++ {
		records = append(records, testdata.WorkingRecord("M1", "MC1", "PO3", 2880, 80, 5, 4, day))
	}

	// PO1's quantity is large enough that moldEstimatedShiftUsed exceeds
	// the single shift actually recorded, so it classifies as "good";
	// PO3's is small enough to classify as "bad".
	po1, status1 := testdata.CompletedOrder("PO1", 20000, "M1", "MC1", day)
	po3, status3 := testdata.CompletedOrder("PO3", 1000, "M1", "MC1", day)
	po2, status2 := testdata.PendingOrder("PO2", 500, "M1", day)

	return types.Snapshot{
		Molds: molds, Machines: machines, MoldSpecs: moldSpecs,
		ProductionRecords: records,
		PurchaseOrders:    []types.PurchaseOrder{po1, po2, po3},
		OrderStatuses:     []types.OrderStatus{status1, status2, status3},
	}
}

func TestRun_EndToEndProducesPlan(t *testing.T) {
	cfg := config.Default()
	seed := int64(42)
	cfg.RandomSeed = &seed
	cfg.MinSampleSize = 1

	snap := buildSnapshot()
	result, err := Run(cfg, snap, nil, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	require.Len(t, result.Stability.Rows, 1)
	assert.InDelta(t, 1.0, result.Stability.Rows[0].CavityStabilityIndex, 1e-9)

	totalAccounted := result.Plan.Counters.AssignedTier1 + result.Plan.Counters.AssignedTier2 + result.Plan.Counters.Unassigned
	assert.Equal(t, result.Plan.Counters.TotalPending, totalAccounted)
	assert.False(t, result.FromCache)
}

func TestRun_InvalidConfigReturnsFatalError(t *testing.T) {
	cfg := config.Default()
	cfg.Efficiency = 0.01
	cfg.Loss = 0.5

	_, err := Run(cfg, buildSnapshot(), nil, nil)
	assert.Error(t, err)
}

func TestRun_FingerprintShortCircuitReusesPriorOutputs(t *testing.T) {
	cfg := config.Default()
	seed := int64(42)
	cfg.RandomSeed = &seed
	cfg.MinSampleSize = 1

	snap := buildSnapshot()
	store := memory.New(10)

	first, err := Run(cfg, snap, store, nil)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := Run(cfg, snap, store, nil)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Plan.Counters, second.Plan.Counters)
}

func TestRun_RegenerateFlagBypassesCache(t *testing.T) {
	cfg := config.Default()
	seed := int64(42)
	cfg.RandomSeed = &seed
	cfg.MinSampleSize = 1
	cfg.Regenerate = true

	snap := buildSnapshot()
	store := memory.New(10)

	_, err := Run(cfg, snap, store, nil)
	require.NoError(t, err)
	second, err := Run(cfg, snap, store, nil)
	require.NoError(t, err)
	assert.False(t, second.FromCache)
}

func TestRun_NoDuplicateAssignmentSlot(t *testing.T) {
	cfg := config.Default()
	seed := int64(7)
	cfg.RandomSeed = &seed
	cfg.MinSampleSize = 1

	result, err := Run(cfg, buildSnapshot(), nil, nil)
	require.NoError(t, err)

	type slot struct {
		machine  types.MachineCode
		priority int
	}
	seen := map[slot]bool{}
	for _, a := range result.Plan.Assignments {
		s := slot{a.MachineCode, a.PriorityInMachine}
		assert.False(t, seen[s], "duplicate slot %+v", s)
		seen[s] = true
	}
}
