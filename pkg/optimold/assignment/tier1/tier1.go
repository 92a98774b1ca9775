// Package tier1 implements the History-Based Optimizer: it walks the
// Priority Matrix and greedily assigns molds to machines within a
// per-machine load cap, resolving unique matches first and then the
// most tightly constrained machines.
package tier1

import (
	"sort"

	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/types"
)

// Pending is one mold awaiting assignment, with its precomputed lead
// time (days at balanced capacity).
type Pending struct {
	MoldID   types.MoldID
	LeadTime float64
}

// Result is Tier-1's output: a partial assignment matrix plus the
// molds it assigned and the ones it left unassigned.
type Result struct {
	Assignments []types.Assignment
	Unassigned  []types.MoldID
	Load        map[types.MachineCode]float64
}

const maxIterations = 10000

// Run executes the two-phase allocation: unique matches first, then
// the most tightly constrained machines.
func Run(matrix types.PriorityMatrix, pending []Pending, initialLoad map[types.MachineCode]float64, maxLoadThreshold float64) Result {
	load := make(map[types.MachineCode]float64, len(initialLoad))
	for m, l := range initialLoad {
		load[m] = l
	}

	leadTimeOf := make(map[types.MoldID]float64, len(pending))
	unassignedMolds := make(map[types.MoldID]bool, len(pending))
	for _, p := range pending {
		leadTimeOf[p.MoldID] = p.LeadTime
		unassignedMolds[p.MoldID] = true
	}

	var assignments []types.Assignment
	priorityCounter := make(map[types.MachineCode]int)

	assign := func(mold types.MoldID, machine types.MachineCode) {
		priorityCounter[machine]++
		assignments = append(assignments, types.Assignment{
			MoldID:            mold,
			MachineCode:       machine,
			PriorityInMachine: priorityCounter[machine],
			Source:            types.SourceHistBased,
		})
		load[machine] += leadTimeOf[mold]
		delete(unassignedMolds, mold)
	}

	candidateMachines := func(mold types.MoldID) []types.MachineCode {
		row := matrix.Ranks[mold]
		out := make([]types.MachineCode, 0, len(row))
		for m := range row {
			out = append(out, m)
		}
		return out
	}

	// Phase 1: unique matches. A machine that resolves a unique match is
	// removed from further consideration so it cannot also be claimed by
	// a mold with other candidate machines in Phase 2.
	consumedMachines := make(map[types.MachineCode]bool)
	for _, p := range pending {
		candidates := candidateMachines(p.MoldID)
		if len(candidates) != 1 {
			continue
		}
		machine := candidates[0]
		if load[machine]+leadTimeOf[p.MoldID] <= maxLoadThreshold {
			assign(p.MoldID, machine)
			consumedMachines[machine] = true
		}
	}

	// Phase 2: greedy constrained resolution.
	for iter := 0; iter < maxIterations; iter++ {
		progressed := false

		type machineCandidates struct {
			machine types.MachineCode
			molds   []types.MoldID
		}
		byMachine := map[types.MachineCode][]types.MoldID{}
		for mold := range unassignedMolds {
			for machine := range matrix.Ranks[mold] {
				if consumedMachines[machine] {
					continue
				}
				byMachine[machine] = append(byMachine[machine], mold)
			}
		}

		ordered := make([]machineCandidates, 0, len(byMachine))
		for m, molds := range byMachine {
			ordered = append(ordered, machineCandidates{m, molds})
		}
		sort.SliceStable(ordered, func(i, j int) bool {
			if len(ordered[i].molds) != len(ordered[j].molds) {
				return len(ordered[i].molds) < len(ordered[j].molds)
			}
			return ordered[i].machine < ordered[j].machine
		})

		for _, mc := range ordered {
			candidates := append([]types.MoldID(nil), mc.molds...)
			sort.SliceStable(candidates, func(i, j int) bool {
				ri := matrix.RankOf(candidates[i], mc.machine)
				rj := matrix.RankOf(candidates[j], mc.machine)
				if ri != rj {
					return ri < rj
				}
				return candidates[i] < candidates[j]
			})
			for _, mold := range candidates {
				if !unassignedMolds[mold] {
					continue
				}
				if load[mc.machine]+leadTimeOf[mold] <= maxLoadThreshold {
					assign(mold, mc.machine)
					progressed = true
					break
				}
			}
		}

		if !progressed {
			break
		}
	}

	remaining := make([]types.MoldID, 0, len(unassignedMolds))
	for mold := range unassignedMolds {
		remaining = append(remaining, mold)
	}
	sort.Slice(remaining, func(i, j int) bool { return remaining[i] < remaining[j] })

	return Result{Assignments: assignments, Unassigned: remaining, Load: load}
}
