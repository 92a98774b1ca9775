package types

import "fmt"

// Snapshot is the inbound data contract: an ordered, already-typed view of
// every entity the core needs for one invocation. Raw ingestion (Excel,
// parquet, schema validation) is an external collaborator's concern — by
// the time a Snapshot reaches the core, columns have already been mapped
// onto these fields. Snapshot.Validate still checks the structural
// invariants the core owns (uniqueness, positivity) since those are core
// responsibilities, not ingestion ones.
type Snapshot struct {
	Molds             []Mold
	Machines          []Machine
	MoldSpecs         []MoldSpec
	ProductionRecords []ProductionRecord
	PurchaseOrders    []PurchaseOrder
	OrderStatuses     []OrderStatus
}

// MoldByID returns a lookup map built fresh from the snapshot's Molds.
func (s Snapshot) MoldByID() map[MoldID]Mold {
	out := make(map[MoldID]Mold, len(s.Molds))
	for _, m := range s.Molds {
		out[m.MoldID] = m
	}
	return out
}

// MachineByCode returns a lookup map keyed by MachineCode, restricted to
// active machines (uniqueness is only guaranteed among active machines
// at a point in time).
func (s Snapshot) MachineByCode() map[MachineCode]Machine {
	out := make(map[MachineCode]Machine, len(s.Machines))
	for _, m := range s.Machines {
		if !m.ActiveFlag {
			continue
		}
		out[m.MachineCode] = m
	}
	return out
}

// MachineByID returns a lookup map keyed by MachineID, including inactive
// machines (needed to resolve ProductionRecord.MachineID for history).
func (s Snapshot) MachineByID() map[MachineID]Machine {
	out := make(map[MachineID]Machine, len(s.Machines))
	for _, m := range s.Machines {
		out[m.MachineID] = m
	}
	return out
}

// MoldSpecByID returns a lookup map built fresh from the snapshot's MoldSpecs.
func (s Snapshot) MoldSpecByID() map[MoldID]MoldSpec {
	out := make(map[MoldID]MoldSpec, len(s.MoldSpecs))
	for _, spec := range s.MoldSpecs {
		out[spec.MoldID] = spec
	}
	return out
}

// PurchaseOrderByNo returns a lookup map built fresh from the snapshot's POs.
func (s Snapshot) PurchaseOrderByNo() map[string]PurchaseOrder {
	out := make(map[string]PurchaseOrder, len(s.PurchaseOrders))
	for _, po := range s.PurchaseOrders {
		out[po.PONo] = po
	}
	return out
}

// Validate enforces the structural invariants the core owns regardless
// of how the snapshot was ingested: unique mold/machine/PO identifiers
// and positive master-data quantities. A caller-facing ingestion layer
// may check far more (column types, encodings); this is only what the
// downstream engines assume holds.
func (s Snapshot) Validate() error {
	seenMolds := make(map[MoldID]bool, len(s.Molds))
	for _, m := range s.Molds {
		if seenMolds[m.MoldID] {
			return fmt.Errorf("duplicate mold id %q", m.MoldID)
		}
		seenMolds[m.MoldID] = true
		if m.CavityStandard < 1 {
			return fmt.Errorf("mold %q: cavity_standard must be >=1", m.MoldID)
		}
		if !m.SettingCycleSeconds.IsPositive() {
			return fmt.Errorf("mold %q: setting_cycle_seconds must be >0", m.MoldID)
		}
	}

	seenMachines := make(map[MachineCode]bool, len(s.Machines))
	for _, m := range s.Machines {
		if !m.ActiveFlag {
			continue
		}
		if seenMachines[m.MachineCode] {
			return fmt.Errorf("duplicate active machine code %q", m.MachineCode)
		}
		seenMachines[m.MachineCode] = true
	}

	seenPOs := make(map[string]bool, len(s.PurchaseOrders))
	for _, po := range s.PurchaseOrders {
		if seenPOs[po.PONo] {
			return fmt.Errorf("duplicate purchase order number %q", po.PONo)
		}
		seenPOs[po.PONo] = true
		if !po.ItemQuantity.IsPositive() {
			return fmt.Errorf("purchase order %q: item_quantity must be >0", po.PONo)
		}
	}

	for _, spec := range s.MoldSpecs {
		if !seenMolds[spec.MoldID] {
			return fmt.Errorf("mold spec references unknown mold %q", spec.MoldID)
		}
	}

	return nil
}
