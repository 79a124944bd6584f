package calc

import (
	"fmt"

	"asi_schedules/pkg/core/schedule"
)

// Field names the receipts resolver reads and writes. These are owned by
// the external template contract.
const (
	receiptsField    = "Receipts (Rs.)"
	expenditureField = "Expenditure (Rs.)"
	openingField     = "Opening (Rs.)"
	closingField     = "Closing (Rs.)"
)

// ReceiptsProcessor fills the two derived rows of the other-output/receipts
// schedule from sibling blocks' already-computed outputs:
//
//	item 5 (net balance of goods sold as purchased) =
//	        receipts row 11 − other-expenses row 11
//	item 7 (variation in stock of semi-finished goods) =
//	        working-capital row 5 closing − opening
//
// It is the only engine with cross-block inputs; the orchestrator must run
// it after the working-capital and other-expenses stages have persisted.
type ReceiptsProcessor struct {
	receipts *schedule.Schedule
	capital  *schedule.Schedule // working capital block, may be nil
	expenses *schedule.Schedule // other expenses block, may be nil
}

// NewReceiptsProcessor deep-copies the target schedule. The two source
// schedules are read-only and optional: a missing source degrades the
// corresponding field to a no-op.
func NewReceiptsProcessor(receipts, capital, expenses *schedule.Schedule) *ReceiptsProcessor {
	return &ReceiptsProcessor{
		receipts: receipts.Clone(),
		capital:  capital,
		expenses: expenses,
	}
}

// Process fills both derived rows and returns the updated schedule. A row
// whose cell is already non-empty is never overwritten, which also makes
// the resolver idempotent.
func (p *ReceiptsProcessor) Process() *schedule.Schedule {
	p.fillIfEmpty(5, p.netBalance)
	p.fillIfEmpty(7, p.stockVariation)
	return p.receipts
}

func (p *ReceiptsProcessor) fillIfEmpty(serial int, compute func() (string, bool)) {
	row, ok := p.receipts.Row(serial)
	if !ok || !row.IsObject() {
		fmt.Printf("⚠️ Receipts item %d not found, skipping\n", serial)
		return
	}
	if current, _ := row.CellOf(receiptsField); current != "" {
		fmt.Printf("ℹ️ Receipts item %d already has value %s, skipping calculation\n", serial, current)
		return
	}
	value, ok := compute()
	if !ok {
		return
	}
	row.SetCell(receiptsField, value)
	fmt.Printf("✅ Receipts item %d updated with calculated value: %q\n", serial, value)
}

// netBalance computes sale value of goods sold in the same condition as
// purchased (receipts row 11) minus their purchase value (expenses row 11).
func (p *ReceiptsProcessor) netBalance() (string, bool) {
	if p.expenses == nil {
		fmt.Println("⚠️ Other-expenses schedule not provided, skipping net balance")
		return "", false
	}
	saleRow, okSale := p.receipts.Row(11)
	purchaseRow, okPurchase := p.expenses.Row(11)
	if !okSale || !okPurchase {
		fmt.Println("⚠️ Could not find item 11 in receipts or other-expenses schedule")
		return "", false
	}
	sale, _ := saleRow.CellOf(receiptsField)
	purchase, _ := purchaseRow.CellOf(expenditureField)
	net := schedule.ParseCell(sale) - schedule.ParseCell(purchase)
	fmt.Printf("📊 Net balance: sale %.2f − purchase %.2f = %.2f\n",
		schedule.ParseCell(sale), schedule.ParseCell(purchase), net)
	return schedule.FormatCell(net), true
}

// stockVariation computes closing minus opening of semi-finished goods
// (working-capital row 5).
func (p *ReceiptsProcessor) stockVariation() (string, bool) {
	if p.capital == nil {
		fmt.Println("⚠️ Working-capital schedule not provided, skipping stock variation")
		return "", false
	}
	row, ok := p.capital.Row(5)
	if !ok {
		fmt.Println("⚠️ Could not find item 5 in working-capital schedule")
		return "", false
	}
	opening, _ := row.CellOf(openingField)
	closing, _ := row.CellOf(closingField)
	variation := schedule.ParseCell(closing) - schedule.ParseCell(opening)
	fmt.Printf("📊 Stock variation: closing %.2f − opening %.2f = %.2f\n",
		schedule.ParseCell(closing), schedule.ParseCell(opening), variation)
	return schedule.FormatCell(variation), true
}
