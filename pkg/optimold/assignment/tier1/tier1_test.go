package tier1

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/types"
)

func matrixFromRanks(ranks map[types.MoldID]map[types.MachineCode]int) types.PriorityMatrix {
	return types.PriorityMatrix{Ranks: ranks}
}

// TestRun_UniqueMatch: M1 has a single candidate (K1); M2 has two
// candidates but K2 is the tighter constraint and is resolved first.
func TestRun_UniqueMatch(t *testing.T) {
	matrix := matrixFromRanks(map[types.MoldID]map[types.MachineCode]int{
		"M1": {"K1": 1},
		"M2": {"K1": 2, "K2": 1},
	})
	pending := []Pending{
		{MoldID: "M1", LeadTime: 10},
		{MoldID: "M2", LeadTime: 15},
	}

	result := Run(matrix, pending, map[types.MachineCode]float64{"K1": 0, "K2": 0}, 30)

	assignedTo := map[types.MoldID]types.MachineCode{}
	for _, a := range result.Assignments {
		assignedTo[a.MoldID] = a.MachineCode
	}
	assert.Equal(t, types.MachineCode("K1"), assignedTo["M1"])
	assert.Equal(t, types.MachineCode("K2"), assignedTo["M2"])
	assert.Empty(t, result.Unassigned)
}

// TestRun_OverflowsToUnassignedWhenLoadCapHit: M1 and M2 fit within
// T=20, M3 does not.
func TestRun_OverflowsToUnassignedWhenLoadCapHit(t *testing.T) {
	matrix := matrixFromRanks(map[types.MoldID]map[types.MachineCode]int{
		"M1": {"K1": 1},
		"M2": {"K1": 2},
		"M3": {"K1": 3},
	})
	pending := []Pending{
		{MoldID: "M1", LeadTime: 10},
		{MoldID: "M2", LeadTime: 10},
		{MoldID: "M3", LeadTime: 15},
	}

	result := Run(matrix, pending, map[types.MachineCode]float64{"K1": 0}, 20)

	assigned := map[types.MoldID]bool{}
	for _, a := range result.Assignments {
		assigned[a.MoldID] = true
	}
	assert.True(t, assigned["M1"])
	assert.True(t, assigned["M2"])
	assert.False(t, assigned["M3"])
	assert.Equal(t, []types.MoldID{"M3"}, result.Unassigned)
	assert.Equal(t, 20.0, result.Load["K1"])
}

func TestRun_LoadCapNeverExceeded(t *testing.T) {
	matrix := matrixFromRanks(map[types.MoldID]map[types.MachineCode]int{
		"M1": {"K1": 1},
		"M2": {"K1": 1},
		"M3": {"K1": 1},
	})
	pending := []Pending{
		{MoldID: "M1", LeadTime: 12},
		{MoldID: "M2", LeadTime: 12},
		{MoldID: "M3", LeadTime: 12},
	}

	result := Run(matrix, pending, map[types.MachineCode]float64{"K1": 0}, 25)
	assert.LessOrEqual(t, result.Load["K1"], 25.0)
}

func TestRun_MissingPriorityRowLeavesMoldUnassigned(t *testing.T) {
	matrix := matrixFromRanks(map[types.MoldID]map[types.MachineCode]int{})
	pending := []Pending{{MoldID: "M1", LeadTime: 5}}

	result := Run(matrix, pending, map[types.MachineCode]float64{}, 30)
	assert.Equal(t, []types.MoldID{"M1"}, result.Unassigned)
	assert.Empty(t, result.Assignments)
}
