// Package csv loads a types.Snapshot from a directory of CSV files:
// one method per entity, a strict header check, and errors that name
// the file and row they came from.
package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/types"
)

const dateLayout = "2006-01-02"

// Loader reads the six CSV files that make up a Snapshot.
type Loader struct{}

// NewLoader returns a Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// LoadSnapshot reads molds.csv, machines.csv, mold_specs.csv,
// production_records.csv, purchase_orders.csv and order_statuses.csv
// from dir and assembles a types.Snapshot.
func (l *Loader) LoadSnapshot(dir string) (types.Snapshot, error) {
	molds, err := l.LoadMolds(join(dir, "molds.csv"))
	if err != nil {
		return types.Snapshot{}, err
	}
	machines, err := l.LoadMachines(join(dir, "machines.csv"))
	if err != nil {
		return types.Snapshot{}, err
	}
	moldSpecs, err := l.LoadMoldSpecs(join(dir, "mold_specs.csv"))
	if err != nil {
		return types.Snapshot{}, err
	}
	records, err := l.LoadProductionRecords(join(dir, "production_records.csv"))
	if err != nil {
		return types.Snapshot{}, err
	}
	pos, err := l.LoadPurchaseOrders(join(dir, "purchase_orders.csv"))
	if err != nil {
		return types.Snapshot{}, err
	}
	statuses, err := l.LoadOrderStatuses(join(dir, "order_statuses.csv"))
	if err != nil {
		return types.Snapshot{}, err
	}

	return types.Snapshot{
		Molds:             molds,
		Machines:          machines,
		MoldSpecs:         moldSpecs,
		ProductionRecords: records,
		PurchaseOrders:    pos,
		OrderStatuses:     statuses,
	}, nil
}

func join(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + string(os.PathSeparator) + name
}

// LoadMolds loads the mold master from filename.
func (l *Loader) LoadMolds(filename string) ([]types.Mold, error) {
	records, err := readCSV(filename)
	if err != nil {
		return nil, err
	}
	header := []string{"mold_id", "cavity_standard", "setting_cycle_seconds", "tonnage_min", "tonnage_max"}
	rows, err := validatedRows(filename, records, header)
	if err != nil {
		return nil, err
	}

	out := make([]types.Mold, 0, len(rows))
	for i, row := range rows {
		cavity, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, rowErr(filename, i, "invalid cavity_standard: %s", row[1])
		}
		cycle, err := decimal.NewFromString(row[2])
		if err != nil {
			return nil, rowErr(filename, i, "invalid setting_cycle_seconds: %s", row[2])
		}
		tonMin, err := decimal.NewFromString(row[3])
		if err != nil {
			return nil, rowErr(filename, i, "invalid tonnage_min: %s", row[3])
		}
		tonMax, err := decimal.NewFromString(row[4])
		if err != nil {
			return nil, rowErr(filename, i, "invalid tonnage_max: %s", row[4])
		}
		out = append(out, types.Mold{
			MoldID:              types.MoldID(row[0]),
			CavityStandard:      cavity,
			SettingCycleSeconds: cycle,
			TonnageRange:        types.TonnageRange{Min: tonMin, Max: tonMax},
		})
	}
	return out, nil
}

// LoadMachines loads the machine master from filename.
func (l *Loader) LoadMachines(filename string) ([]types.Machine, error) {
	records, err := readCSV(filename)
	if err != nil {
		return nil, err
	}
	header := []string{"machine_id", "machine_code", "tonnage", "active_flag"}
	rows, err := validatedRows(filename, records, header)
	if err != nil {
		return nil, err
	}

	out := make([]types.Machine, 0, len(rows))
	for i, row := range rows {
		tonnage, err := decimal.NewFromString(row[2])
		if err != nil {
			return nil, rowErr(filename, i, "invalid tonnage: %s", row[2])
		}
		active, err := strconv.ParseBool(row[3])
		if err != nil {
			return nil, rowErr(filename, i, "invalid active_flag: %s", row[3])
		}
		out = append(out, types.Machine{
			MachineID:   types.MachineID(row[0]),
			MachineCode: types.MachineCode(row[1]),
			Tonnage:     tonnage,
			ActiveFlag:  active,
		})
	}
	return out, nil
}

// LoadMoldSpecs loads mold/machine compatibility rows from filename.
// compatible_machine_codes is a single column of semicolon-separated codes.
func (l *Loader) LoadMoldSpecs(filename string) ([]types.MoldSpec, error) {
	records, err := readCSV(filename)
	if err != nil {
		return nil, err
	}
	header := []string{"mold_id", "compatible_machine_codes"}
	rows, err := validatedRows(filename, records, header)
	if err != nil {
		return nil, err
	}

	out := make([]types.MoldSpec, 0, len(rows))
	for _, row := range rows {
		var codes []types.MachineCode
		for _, code := range strings.Split(row[1], ";") {
			code = strings.TrimSpace(code)
			if code != "" {
				codes = append(codes, types.MachineCode(code))
			}
		}
		out = append(out, types.MoldSpec{MoldID: types.MoldID(row[0]), CompatibleMachineCodes: codes})
	}
	return out, nil
}

// LoadProductionRecords loads shop-floor shift observations from filename.
func (l *Loader) LoadProductionRecords(filename string) ([]types.ProductionRecord, error) {
	records, err := readCSV(filename)
	if err != nil {
		return nil, err
	}
	header := []string{
		"record_date", "shift_id", "machine_id", "mold_id", "item_code", "po_no",
		"mold_shot", "item_good_qty", "item_defect_qty", "observed_cavity",
	}
	rows, err := validatedRows(filename, records, header)
	if err != nil {
		return nil, err
	}

	out := make([]types.ProductionRecord, 0, len(rows))
	for i, row := range rows {
		date, err := time.Parse(dateLayout, row[0])
		if err != nil {
			return nil, rowErr(filename, i, "invalid record_date: %s", row[0])
		}
		moldShot, err := decimal.NewFromString(row[6])
		if err != nil {
			return nil, rowErr(filename, i, "invalid mold_shot: %s", row[6])
		}
		goodQty, err := decimal.NewFromString(row[7])
		if err != nil {
			return nil, rowErr(filename, i, "invalid item_good_qty: %s", row[7])
		}
		defectQty, err := decimal.NewFromString(row[8])
		if err != nil {
			return nil, rowErr(filename, i, "invalid item_defect_qty: %s", row[8])
		}
		cavity, err := strconv.Atoi(row[9])
		if err != nil {
			return nil, rowErr(filename, i, "invalid observed_cavity: %s", row[9])
		}
		out = append(out, types.ProductionRecord{
			RecordDate:     date,
			ShiftID:        types.ShiftID(row[1]),
			MachineID:      types.MachineID(row[2]),
			MoldID:         types.MoldID(row[3]),
			ItemCode:       row[4],
			PONo:           row[5],
			MoldShot:       moldShot,
			ItemGoodQty:    goodQty,
			ItemDefectQty:  defectQty,
			ObservedCavity: cavity,
		})
	}
	return out, nil
}

// LoadPurchaseOrders loads customer orders from filename.
func (l *Loader) LoadPurchaseOrders(filename string) ([]types.PurchaseOrder, error) {
	records, err := readCSV(filename)
	if err != nil {
		return nil, err
	}
	header := []string{"po_no", "item_code", "item_name", "item_quantity", "po_eta", "po_received_date"}
	rows, err := validatedRows(filename, records, header)
	if err != nil {
		return nil, err
	}

	out := make([]types.PurchaseOrder, 0, len(rows))
	for i, row := range rows {
		qty, err := decimal.NewFromString(row[3])
		if err != nil {
			return nil, rowErr(filename, i, "invalid item_quantity: %s", row[3])
		}
		eta, err := time.Parse(dateLayout, row[4])
		if err != nil {
			return nil, rowErr(filename, i, "invalid po_eta: %s", row[4])
		}
		received, err := time.Parse(dateLayout, row[5])
		if err != nil {
			return nil, rowErr(filename, i, "invalid po_received_date: %s", row[5])
		}
		out = append(out, types.PurchaseOrder{
			PONo:           row[0],
			ItemCode:       row[1],
			ItemName:       row[2],
			ItemQuantity:   qty,
			POETA:          eta,
			POReceivedDate: received,
		})
	}
	return out, nil
}

// LoadOrderStatuses loads the PO lifecycle rows from filename.
// started_date/end_date may be empty strings for orders not yet started/finished.
func (l *Loader) LoadOrderStatuses(filename string) ([]types.OrderStatus, error) {
	records, err := readCSV(filename)
	if err != nil {
		return nil, err
	}
	header := []string{
		"po_no", "state", "item_remain", "eta_status",
		"last_machine_id", "last_mold_id", "started_date", "end_date",
	}
	rows, err := validatedRows(filename, records, header)
	if err != nil {
		return nil, err
	}

	out := make([]types.OrderStatus, 0, len(rows))
	for i, row := range rows {
		remain, err := decimal.NewFromString(row[2])
		if err != nil {
			return nil, rowErr(filename, i, "invalid item_remain: %s", row[2])
		}
		started, err := optionalDate(row[6])
		if err != nil {
			return nil, rowErr(filename, i, "invalid started_date: %s", row[6])
		}
		ended, err := optionalDate(row[7])
		if err != nil {
			return nil, rowErr(filename, i, "invalid end_date: %s", row[7])
		}
		out = append(out, types.OrderStatus{
			PONo:          row[0],
			State:         types.OrderState(row[1]),
			ItemRemain:    remain,
			ETAStatus:     types.ETAStatus(row[3]),
			LastMachineID: types.MachineID(row[4]),
			LastMoldID:    types.MoldID(row[5]),
			StartedDate:   started,
			EndDate:       ended,
		})
	}
	return out, nil
}

func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func readCSV(filename string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return records, nil
}

// validatedRows checks the header row against want and returns the data
// rows (records[1:]), each already confirmed to have len(want) columns.
func validatedRows(filename string, records [][]string, want []string) ([][]string, error) {
	if len(records) < 1 {
		return nil, fmt.Errorf("%s: missing header row", filename)
	}
	if !headerMatches(records[0], want) {
		return nil, fmt.Errorf("%s: header mismatch, want %v got %v", filename, want, records[0])
	}
	rows := records[1:]
	for i, row := range rows {
		if len(row) != len(want) {
			return nil, rowErr(filename, i, "expected %d columns, got %d", len(want), len(row))
		}
	}
	return rows, nil
}

func headerMatches(actual, want []string) bool {
	if len(actual) != len(want) {
		return false
	}
	for i, col := range want {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}
	return true
}

func rowErr(filename string, rowIndex int, format string, args ...any) error {
	return fmt.Errorf("%s row %d: %s", filename, rowIndex+2, fmt.Sprintf(format, args...))
}
