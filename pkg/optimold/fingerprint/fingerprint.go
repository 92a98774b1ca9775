// Package fingerprint hashes a snapshot's relevant frames so the
// orchestrator can diff against a persisted prior fingerprint and
// short-circuit recomputation when nothing has changed.
package fingerprint

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/types"
	"github.com/cespare/xxhash/v2"
)

// Fingerprint is a content hash of a Snapshot's frames. Two snapshots
// with identical data (regardless of input row order) hash identically,
// since rows are sorted into a canonical string form before hashing.
type Fingerprint uint64

// Of computes the fingerprint of a snapshot. Row order in the input
// slices does not affect the result: each frame is serialized into a
// sorted list of canonical lines before hashing, so a caller's snapshot
// assembly order never perturbs the short-circuit decision.
func Of(snap types.Snapshot) Fingerprint {
	h := xxhash.New()

	writeSortedLines(h, "mold", len(snap.Molds), func(i int) string {
		m := snap.Molds[i]
		return fmt.Sprintf("%s|%d|%s|%s|%s", m.MoldID, m.CavityStandard,
			m.SettingCycleSeconds.String(), m.TonnageRange.Min.String(), m.TonnageRange.Max.String())
	})
	writeSortedLines(h, "machine", len(snap.Machines), func(i int) string {
		m := snap.Machines[i]
		return fmt.Sprintf("%s|%s|%s|%t", m.MachineID, m.MachineCode, m.Tonnage.String(), m.ActiveFlag)
	})
	writeSortedLines(h, "moldspec", len(snap.MoldSpecs), func(i int) string {
		s := snap.MoldSpecs[i]
		codes := make([]string, len(s.CompatibleMachineCodes))
		for j, c := range s.CompatibleMachineCodes {
			codes[j] = string(c)
		}
		sort.Strings(codes)
		return fmt.Sprintf("%s|%v", s.MoldID, codes)
	})
	writeSortedLines(h, "record", len(snap.ProductionRecords), func(i int) string {
		r := snap.ProductionRecords[i]
		return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%s|%s|%d",
			r.RecordDate.Format("2006-01-02"), r.ShiftID, r.MachineID, r.MoldID, r.ItemCode, r.PONo,
			r.MoldShot.String(), r.ItemGoodQty.String(), r.ItemDefectQty.String(), r.ObservedCavity)
	})
	writeSortedLines(h, "po", len(snap.PurchaseOrders), func(i int) string {
		p := snap.PurchaseOrders[i]
		return fmt.Sprintf("%s|%s|%s|%s|%s|%s", p.PONo, p.ItemCode, p.ItemName,
			p.ItemQuantity.String(), p.POETA.Format("2006-01-02"), p.POReceivedDate.Format("2006-01-02"))
	})
	writeSortedLines(h, "status", len(snap.OrderStatuses), func(i int) string {
		s := snap.OrderStatuses[i]
		return fmt.Sprintf("%s|%s|%s|%s|%s|%s", s.PONo, s.State, s.ItemRemain.String(), s.ETAStatus,
			s.LastMachineID, s.LastMoldID)
	})

	return Fingerprint(h.Sum64())
}

func writeSortedLines(h *xxhash.Digest, frame string, n int, line func(i int) string) {
	lines := make([]string, n)
	for i := 0; i < n; i++ {
		lines[i] = line(i)
	}
	sort.Strings(lines)
	_, _ = h.WriteString(frame)
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(strconv.Itoa(n))
	for _, l := range lines {
		_, _ = h.WriteString("\n")
		_, _ = h.WriteString(l)
	}
	_, _ = h.WriteString(";;")
}
