// Package tier2 implements the Compatibility-Based Optimizer: the
// fallback for molds Tier-1 could not place, using a tonnage-derived
// compatibility matrix instead of historical priority.
package tier2

import (
	"sort"

	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/types"
)

// Pending is one Tier-1-unassigned mold with the figures its priority
// key is computed from.
type Pending struct {
	MoldID             types.MoldID
	TotalQuantity      float64
	LeadTime           float64
	CompatibleMachines []types.MachineCode
}

// Result is Tier-2's output: the local assignments (priorityInMachine
// starts at 1 within this tier; the caller offsets it past Tier-1 at
// combination time) plus molds still unplaced and the overloaded
// machines recorded for each.
type Result struct {
	Assignments []types.Assignment
	Unassigned  []types.MoldID
	Overloaded  map[types.MoldID][]types.MachineCode
	Load        map[types.MachineCode]float64
}

func Run(pending []Pending, initialLoad map[types.MachineCode]float64, maxLoadThreshold float64, enforceThreshold bool, order types.PriorityOrder) Result {
	load := make(map[types.MachineCode]float64, len(initialLoad))
	for m, l := range initialLoad {
		load[m] = l
	}

	sorted := append([]Pending(nil), pending...)
	sort.SliceStable(sorted, func(i, j int) bool { return less(order, sorted[i], sorted[j]) })

	var assignments []types.Assignment
	var unassigned []types.MoldID
	overloaded := map[types.MoldID][]types.MachineCode{}
	priorityCounter := 0

	for _, p := range sorted {
		candidates := append([]types.MachineCode(nil), p.CompatibleMachines...)
		sort.Slice(candidates, func(i, j int) bool {
			if load[candidates[i]] != load[candidates[j]] {
				return load[candidates[i]] < load[candidates[j]]
			}
			return candidates[i] < candidates[j]
		})

		var chosen types.MachineCode
		found := false
		var overloadedFor []types.MachineCode
		for _, m := range candidates {
			if !enforceThreshold || load[m]+p.LeadTime <= maxLoadThreshold {
				chosen = m
				found = true
				break
			}
			overloadedFor = append(overloadedFor, m)
		}

		if !found {
			unassigned = append(unassigned, p.MoldID)
			if len(overloadedFor) > 0 {
				overloaded[p.MoldID] = overloadedFor
			}
			continue
		}

		priorityCounter++
		assignments = append(assignments, types.Assignment{
			MoldID:            p.MoldID,
			MachineCode:       chosen,
			PriorityInMachine: priorityCounter,
			Source:            types.SourceCompatibilityBased,
		})
		load[chosen] += p.LeadTime
	}

	sort.Slice(unassigned, func(i, j int) bool { return unassigned[i] < unassigned[j] })

	return Result{Assignments: assignments, Unassigned: unassigned, Overloaded: overloaded, Load: load}
}

// less implements the three named priority-key orderings.
func less(order types.PriorityOrder, a, b Pending) bool {
	ca, cb := len(a.CompatibleMachines), len(b.CompatibleMachines)
	switch order {
	case types.Priority1: // (compatibilityCount asc, leadTime desc, totalQuantity asc)
		if ca != cb {
			return ca < cb
		}
		if a.LeadTime != b.LeadTime {
			return a.LeadTime > b.LeadTime
		}
		if a.TotalQuantity != b.TotalQuantity {
			return a.TotalQuantity < b.TotalQuantity
		}
	case types.Priority2: // (totalQuantity asc, compatibilityCount asc, leadTime desc)
		if a.TotalQuantity != b.TotalQuantity {
			return a.TotalQuantity < b.TotalQuantity
		}
		if ca != cb {
			return ca < cb
		}
		if a.LeadTime != b.LeadTime {
			return a.LeadTime > b.LeadTime
		}
	case types.Priority3: // (leadTime desc, totalQuantity asc, compatibilityCount asc)
		if a.LeadTime != b.LeadTime {
			return a.LeadTime > b.LeadTime
		}
		if a.TotalQuantity != b.TotalQuantity {
			return a.TotalQuantity < b.TotalQuantity
		}
		if ca != cb {
			return ca < cb
		}
	}
	return a.MoldID < b.MoldID
}
