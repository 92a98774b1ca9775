package assignment

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/types"
)

func TestCombine_Tier2PriorityAlwaysAboveTier1OnSameMachine(t *testing.T) {
	tier1 := []types.Assignment{
		{MoldID: "M1", MachineCode: "K1", PriorityInMachine: 1, Source: types.SourceHistBased},
		{MoldID: "M2", MachineCode: "K1", PriorityInMachine: 2, Source: types.SourceHistBased},
	}
	tier2 := []types.Assignment{
		{MoldID: "M3", MachineCode: "K1", PriorityInMachine: 1},
	}

	plan := Combine(tier1, tier2, nil, 0, nil, nil)

	maxTier1 := 0
	minTier2 := 1 << 30
	for _, a := range plan.Assignments {
		if a.MachineCode != "K1" {
			continue
		}
		switch a.Source {
		case types.SourceHistBased:
			if a.PriorityInMachine > maxTier1 {
				maxTier1 = a.PriorityInMachine
			}
		case types.SourceCompatibilityBased:
			if a.PriorityInMachine < minTier2 {
				minTier2 = a.PriorityInMachine
			}
		}
	}
	assert.Greater(t, minTier2, maxTier1)
}

func TestCombine_NoDuplicateSlot(t *testing.T) {
	tier1 := []types.Assignment{
		{MoldID: "M1", MachineCode: "K1", PriorityInMachine: 1, Source: types.SourceHistBased},
	}
	tier2 := []types.Assignment{
		{MoldID: "M2", MachineCode: "K1", PriorityInMachine: 1},
		{MoldID: "M3", MachineCode: "K2", PriorityInMachine: 1},
	}

	plan := Combine(tier1, tier2, nil, 0, nil, nil)

	seen := map[string]bool{}
	for _, a := range plan.Assignments {
		key := string(a.MachineCode) + "#" + strconv.Itoa(a.PriorityInMachine)
		assert.False(t, seen[key], "duplicate slot %s", key)
		seen[key] = true
	}
}

func TestCombine_SortedByMachineThenPriority(t *testing.T) {
	tier1 := []types.Assignment{
		{MoldID: "M2", MachineCode: "K2", PriorityInMachine: 1, Source: types.SourceHistBased},
		{MoldID: "M1", MachineCode: "K1", PriorityInMachine: 1, Source: types.SourceHistBased},
	}
	plan := Combine(tier1, nil, nil, 0, nil, nil)
	assert.Equal(t, types.MachineCode("K1"), plan.Assignments[0].MachineCode)
	assert.Equal(t, types.MachineCode("K2"), plan.Assignments[1].MachineCode)
}

func TestCombine_Counters(t *testing.T) {
	tier1 := []types.Assignment{{MoldID: "M1", MachineCode: "K1", PriorityInMachine: 1, Source: types.SourceHistBased}}
	tier2 := []types.Assignment{{MoldID: "M2", MachineCode: "K2", PriorityInMachine: 1}}
	unassigned := []types.MoldID{"M3"}

	plan := Combine(tier1, tier2, unassigned, 1, nil, map[string]int{"stability": 2})

	assert.Equal(t, 1, plan.Counters.AssignedTier1)
	assert.Equal(t, 1, plan.Counters.AssignedTier2)
	assert.Equal(t, 1, plan.Counters.Unassigned)
	assert.Equal(t, 3, plan.Counters.TotalPending)
	assert.Equal(t, 2, plan.Counters.InvalidByStage["stability"])
}

func TestBuildLeadTimeBreakdown_ZeroCapacityYieldsZeroLeadTime(t *testing.T) {
	row := BuildLeadTimeBreakdown("M1", 100, 0)
	assert.Equal(t, 0.0, row.LeadTimeDays)
}
