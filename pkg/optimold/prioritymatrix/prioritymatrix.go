// Package prioritymatrix implements the Priority Matrix Engine: a
// weighted score per observed (mold, machine) pair, folded into a
// dense per-mold rank so downstream optimizers can walk candidate
// machines best-first.
package prioritymatrix

import (
	"sort"

	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/types"
)

// AggregateMetric is the per-(mold, machine) mean of one feature over
// the sample set the caller selects (typically the Feature Weight
// Engine's good sample).
type AggregateMetric struct {
	MoldID      types.MoldID
	MachineCode types.MachineCode
	Metrics     map[types.FeatureName]float64
}

// Run scores and ranks every observed (mold, machine) pair.
func Run(weights map[types.FeatureName]float64, aggregates []AggregateMetric) types.PriorityMatrix {
	scores := make(map[types.MoldID]map[types.MachineCode]float64)
	for _, a := range aggregates {
		row, ok := scores[a.MoldID]
		if !ok {
			row = make(map[types.MachineCode]float64)
			scores[a.MoldID] = row
		}
		row[a.MachineCode] = score(weights, a.Metrics)
	}

	ranks := make(map[types.MoldID]map[types.MachineCode]int, len(scores))
	for mold, row := range scores {
		ranks[mold] = rankRow(row)
	}

	return types.PriorityMatrix{Ranks: ranks, Scores: scores}
}

// score computes Σ weight(f)·metric(f), with shiftNGRate entering as
// (1-rate) so every term is "higher is better".
func score(weights map[types.FeatureName]float64, metrics map[types.FeatureName]float64) float64 {
	total := 0.0
	for feature, w := range weights {
		v, ok := metrics[feature]
		if !ok {
			continue
		}
		if feature == types.FeatureNGRate {
			v = 1 - v
		}
		total += w * v
	}
	return total
}

// rankRow assigns dense ranks over nonzero scores, descending by
// score, ties broken by ascending machineCode.
func rankRow(row map[types.MachineCode]float64) map[types.MachineCode]int {
	type entry struct {
		machine types.MachineCode
		score   float64
	}
	entries := make([]entry, 0, len(row))
	for m, s := range row {
		if s == 0 {
			continue
		}
		entries = append(entries, entry{m, s})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].machine < entries[j].machine
	})

	ranks := make(map[types.MachineCode]int, len(entries))
	for i, e := range entries {
		ranks[e.machine] = i + 1
	}
	return ranks
}
