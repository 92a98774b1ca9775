package csv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMolds_ParsesRows(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "molds.csv",
		"mold_id,cavity_standard,setting_cycle_seconds,tonnage_min,tonnage_max\n"+
			"M1,4,10,50,300\n")

	molds, err := NewLoader().LoadMolds(path)
	require.NoError(t, err)
	require.Len(t, molds, 1)
	assert.Equal(t, 4, molds[0].CavityStandard)
	assert.True(t, molds[0].TonnageRange.Contains(molds[0].TonnageRange.Min))
}

func TestLoadMolds_HeaderMismatchErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "molds.csv", "wrong,header\nx,y\n")

	_, err := NewLoader().LoadMolds(path)
	assert.ErrorContains(t, err, "header mismatch")
}

func TestLoadMolds_BadNumberReportsRow(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "molds.csv",
		"mold_id,cavity_standard,setting_cycle_seconds,tonnage_min,tonnage_max\n"+
			"M1,notanumber,10,50,300\n")

	_, err := NewLoader().LoadMolds(path)
	assert.ErrorContains(t, err, "row 2")
}

func TestLoadMoldSpecs_SplitsCompatibleCodes(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "mold_specs.csv",
		"mold_id,compatible_machine_codes\n"+
			"M1,K1; K2;K3\n")

	specs, err := NewLoader().LoadMoldSpecs(path)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.ElementsMatch(t, []string{"K1", "K2", "K3"}, codesToStrings(specs[0].CompatibleMachineCodes))
}

func TestLoadOrderStatuses_EmptyDatesAreOptional(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "order_statuses.csv",
		"po_no,state,item_remain,eta_status,last_machine_id,last_mold_id,started_date,end_date\n"+
			"PO1,PENDING,500,PENDING,,M1,,\n")

	statuses, err := NewLoader().LoadOrderStatuses(path)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Nil(t, statuses[0].StartedDate)
	assert.Nil(t, statuses[0].EndDate)
}

func TestLoadSnapshot_AssemblesAllSixFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "molds.csv", "mold_id,cavity_standard,setting_cycle_seconds,tonnage_min,tonnage_max\nM1,4,10,50,300\n")
	writeFile(t, dir, "machines.csv", "machine_id,machine_code,tonnage,active_flag\nMC1,K1,100,true\n")
	writeFile(t, dir, "mold_specs.csv", "mold_id,compatible_machine_codes\nM1,K1\n")
	writeFile(t, dir, "production_records.csv",
		"record_date,shift_id,machine_id,mold_id,item_code,po_no,mold_shot,item_good_qty,item_defect_qty,observed_cavity\n"+
			"2026-01-01,1,MC1,M1,IC1,PO1,2880,100,0,4\n")
	writeFile(t, dir, "purchase_orders.csv", "po_no,item_code,item_name,item_quantity,po_eta,po_received_date\nPO1,IC1,Item,20000,2026-01-01,2026-01-01\n")
	writeFile(t, dir, "order_statuses.csv",
		"po_no,state,item_remain,eta_status,last_machine_id,last_mold_id,started_date,end_date\n"+
			"PO1,MOLDED,0,ONTIME,MC1,M1,2026-01-01,2026-01-01\n")

	snap, err := NewLoader().LoadSnapshot(dir)
	require.NoError(t, err)
	assert.Len(t, snap.Molds, 1)
	assert.Len(t, snap.Machines, 1)
	assert.Len(t, snap.MoldSpecs, 1)
	assert.Len(t, snap.ProductionRecords, 1)
	assert.Len(t, snap.PurchaseOrders, 1)
	assert.Len(t, snap.OrderStatuses, 1)
	assert.NoError(t, snap.Validate())
}

func codesToStrings[T ~string](codes []T) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = string(c)
	}
	return out
}
