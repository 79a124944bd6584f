package calc

import (
	"testing"

	"asi_schedules/pkg/core/schedule"
)

func receiptsSchedule(item5, item11 string) *schedule.Schedule {
	s := schedule.New("Block G: OTHER OUTPUT/RECEIPTS")
	rows := map[string]string{
		"5. Net balance of goods sold in the same condition as purchased": item5,
		"7. Variation in stock of semi-finished goods":                    "",
		"11. Sale value of goods sold in the same condition as purchased": item11,
	}
	for _, key := range []string{
		"5. Net balance of goods sold in the same condition as purchased",
		"7. Variation in stock of semi-finished goods",
		"11. Sale value of goods sold in the same condition as purchased",
	} {
		row := schedule.NewObject()
		row.SetCell("Receipts (Rs.)", rows[key])
		s.Rows().Set(key, row)
	}
	return s
}

func expensesSchedule(item11 string) *schedule.Schedule {
	s := schedule.New("Block F: OTHER EXPENSES")
	row := schedule.NewObject()
	row.SetCell("Expenditure (Rs.)", item11)
	s.Rows().Set("11. Purchase value of goods sold in the same condition as purchased", row)
	return s
}

func capitalSchedule(opening, closing string) *schedule.Schedule {
	s := schedule.New("Block D: WORKING CAPITAL AND LOANS")
	row := schedule.NewObject()
	row.SetCell("Opening (Rs.)", opening)
	row.SetCell("Closing (Rs.)", closing)
	s.Rows().Set("5. Semi-finished goods/work in progress", row)
	return s
}

func receiptsCell(t *testing.T, s *schedule.Schedule, serial int) string {
	t.Helper()
	row, ok := s.Row(serial)
	if !ok {
		t.Fatalf("Row %d missing", serial)
	}
	cell, _ := row.CellOf("Receipts (Rs.)")
	return cell
}

func TestReceiptsProcessorFillsBothDerivedRows(t *testing.T) {
	receipts := receiptsSchedule("", "5,000.00")
	expenses := expensesSchedule("3,200.50")
	capital := capitalSchedule("1,000.00", "1,450.25")

	out := NewReceiptsProcessor(receipts, capital, expenses).Process()

	// 5000.00 - 3200.50
	if got := receiptsCell(t, out, 5); got != "1799.50" {
		t.Errorf("Item 5: expected 1799.50, got %q", got)
	}
	// 1450.25 - 1000.00
	if got := receiptsCell(t, out, 7); got != "450.25" {
		t.Errorf("Item 7: expected 450.25, got %q", got)
	}
}

func TestReceiptsProcessorNeverOverwrites(t *testing.T) {
	receipts := receiptsSchedule("999.99", "5000")
	out := NewReceiptsProcessor(receipts, capitalSchedule("1", "2"), expensesSchedule("100")).Process()

	if got := receiptsCell(t, out, 5); got != "999.99" {
		t.Errorf("Pre-filled item 5 overwritten: %q", got)
	}

	// Running the resolver again over its own output changes nothing.
	again := NewReceiptsProcessor(out, capitalSchedule("1", "2"), expensesSchedule("100")).Process()
	before, _ := out.Encode()
	after, _ := again.Encode()
	if string(before) != string(after) {
		t.Error("Resolver is not idempotent")
	}
}

func TestReceiptsProcessorMissingSourcesAreNoOps(t *testing.T) {
	receipts := receiptsSchedule("", "5000")

	out := NewReceiptsProcessor(receipts, nil, nil).Process()
	if got := receiptsCell(t, out, 5); got != "" {
		t.Errorf("Item 5 should stay empty without expenses block, got %q", got)
	}
	if got := receiptsCell(t, out, 7); got != "" {
		t.Errorf("Item 7 should stay empty without capital block, got %q", got)
	}
}

func TestReceiptsProcessorZeroResultStaysEmpty(t *testing.T) {
	// Sale and purchase cancel out: the zero net is written as "".
	receipts := receiptsSchedule("", "250.00")
	out := NewReceiptsProcessor(receipts, capitalSchedule("10", "10"), expensesSchedule("250.00")).Process()

	if got := receiptsCell(t, out, 5); got != "" {
		t.Errorf("Zero net balance should render as empty, got %q", got)
	}
	if got := receiptsCell(t, out, 7); got != "" {
		t.Errorf("Zero stock variation should render as empty, got %q", got)
	}
}

func TestReceiptsProcessorNegativeVariation(t *testing.T) {
	receipts := receiptsSchedule("", "")
	out := NewReceiptsProcessor(receipts, capitalSchedule("2,000.00", "1,500.00"), nil).Process()

	if got := receiptsCell(t, out, 7); got != "-500.00" {
		t.Errorf("Item 7: expected -500.00, got %q", got)
	}
}
