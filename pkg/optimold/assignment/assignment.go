// Package assignment holds the types shared by the Tier-1 and Tier-2
// optimizers and the final combination step that merges their output
// into one ordered plan.
package assignment

import (
	"sort"

	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/types"
)

// LeadTimeBreakdown is an explainability projection over the same
// figures the Stability Index Engine already computed: why a mold's
// lead time is what it is, with no new inputs or semantics.
type LeadTimeBreakdown struct {
	MoldID                 types.MoldID
	TotalQuantity          float64
	BalancedCapacityPerDay float64
	LeadTimeDays           float64
}

// Counters are the AssignmentPlan's required summary, tallied over
// pending purchase orders rather than the molds they happen to share.
type Counters struct {
	TotalPending   int
	AssignedTier1  int
	AssignedTier2  int
	Unassigned     int
	InvalidByStage map[string]int
}

// Plan is the orchestrator's final output: the combined, ordered
// assignment list plus its summary counters and unplaced molds.
type Plan struct {
	Assignments []types.Assignment // sorted by (machineCode asc, priorityInMachine asc)
	Unassigned  []types.MoldID
	LeadTimes   []LeadTimeBreakdown
	Counters    Counters
}

// Combine merges Tier-1 and Tier-2 results into the final plan: Tier-2
// priorities on a machine are offset past every Tier-1 priority already
// on that machine, and the whole list is sorted by
// (machineCode, priorityInMachine). tier1 and tier2 are expected to
// already be PO-level (one row per pending PO, not per mold), so the
// resulting counters tally pending POs rather than pending molds;
// unassignedPOCount is the PO-level count backing the molds listed in
// unassigned.
func Combine(tier1, tier2 []types.Assignment, unassigned []types.MoldID, unassignedPOCount int, leadTimes []LeadTimeBreakdown, invalidByStage map[string]int) Plan {
	maxPriorityOnMachine := make(map[types.MachineCode]int, len(tier1))
	for _, a := range tier1 {
		if a.PriorityInMachine > maxPriorityOnMachine[a.MachineCode] {
			maxPriorityOnMachine[a.MachineCode] = a.PriorityInMachine
		}
	}

	combined := make([]types.Assignment, 0, len(tier1)+len(tier2))
	combined = append(combined, tier1...)

	tier2ByMachine := make(map[types.MachineCode]int)
	for _, a := range tier2 {
		tier2ByMachine[a.MachineCode]++
		a.PriorityInMachine = maxPriorityOnMachine[a.MachineCode] + tier2ByMachine[a.MachineCode]
		a.Source = types.SourceCompatibilityBased
		combined = append(combined, a)
	}

	sort.SliceStable(combined, func(i, j int) bool {
		if combined[i].MachineCode != combined[j].MachineCode {
			return combined[i].MachineCode < combined[j].MachineCode
		}
		return combined[i].PriorityInMachine < combined[j].PriorityInMachine
	})

	sortedUnassigned := append([]types.MoldID(nil), unassigned...)
	sort.Slice(sortedUnassigned, func(i, j int) bool { return sortedUnassigned[i] < sortedUnassigned[j] })

	if invalidByStage == nil {
		invalidByStage = map[string]int{}
	}

	counters := Counters{
		TotalPending:   len(combined) + unassignedPOCount,
		AssignedTier1:  len(tier1),
		AssignedTier2:  len(tier2),
		Unassigned:     unassignedPOCount,
		InvalidByStage: invalidByStage,
	}

	return Plan{
		Assignments: combined,
		Unassigned:  sortedUnassigned,
		LeadTimes:   leadTimes,
		Counters:    counters,
	}
}

// BuildLeadTimeBreakdown projects a mold's lead time computation
// (totalQuantity / balancedCapacityPerDay) into an explainable row.
func BuildLeadTimeBreakdown(mold types.MoldID, totalQuantity, balancedCapacityPerDay float64) LeadTimeBreakdown {
	leadTime := 0.0
	if balancedCapacityPerDay > 0 {
		leadTime = totalQuantity / balancedCapacityPerDay
	}
	return LeadTimeBreakdown{
		MoldID:                 mold,
		TotalQuantity:          totalQuantity,
		BalancedCapacityPerDay: balancedCapacityPerDay,
		LeadTimeDays:           leadTime,
	}
}
