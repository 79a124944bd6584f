package calc

import (
	"fmt"

	"asi_schedules/pkg/core/schedule"
)

// Field names of the indigenous-input-items block.
const (
	inputDescriptionField = "Item description"
	inputUnitField        = "Unit of quantity"
	inputQuantityField    = "Quantity consumed"
	inputValueField       = "Purchase value (Rs.)"
	inputRateField        = "Rate per unit (Rs.)"
)

// Serial layout of the input-consumption block: line items 1–11 roll up
// into row 12, items 13–21 into row 22, and row 23 is the grand total.
// Rows 1–10 are the reserved major-basic-item rows and are locked empty.
const (
	inputBasicTotalSerial    = 12
	inputNonBasicTotalSerial = 22
	inputGrandTotalSerial    = 23
	inputLockedMaxSerial     = 10
	inputLastSerial          = 24
)

// InputsProcessor post-processes the input-consumption schedule: per-row
// rate per unit, the three summary rows, and finally the hard lock that
// wipes fields upstream extraction is never allowed to populate.
type InputsProcessor struct {
	sched *schedule.Schedule
}

// NewInputsProcessor deep-copies the extracted schedule.
func NewInputsProcessor(extracted *schedule.Schedule) *InputsProcessor {
	return &InputsProcessor{sched: extracted.Clone()}
}

// Process runs all computations and returns the updated schedule. The hard
// lock runs last, unconditionally, even over values the earlier steps just
// wrote: it is a firewall against extraction over-reach, not an
// optimization.
func (p *InputsProcessor) Process() *schedule.Schedule {
	p.fillRates()
	p.fillSummary(inputBasicTotalSerial, p.sumSerials(1, 11))
	p.fillSummary(inputNonBasicTotalSerial, p.sumSerials(13, 21))
	p.fillGrandTotal()
	p.enforceLock()
	return p.sched
}

// RatePerUnit computes purchase value ÷ quantity consumed for one row.
// A zero or unset quantity yields the empty string, never an error.
func RatePerUnit(row *schedule.Node) string {
	value, _ := row.CellOf(inputValueField)
	quantity, _ := row.CellOf(inputQuantityField)
	qty := schedule.ParseCell(quantity)
	if qty == 0 {
		return ""
	}
	return schedule.FormatCell(schedule.ParseCell(value) / qty)
}

// fillRates computes the rate for every line item whose rate cell is still
// empty. Summary rows derive their own rates from their summed figures.
func (p *InputsProcessor) fillRates() {
	for _, key := range p.sched.Rows().Keys() {
		serial, ok := schedule.SerialOf(key)
		if !ok || serial < 1 || serial > 21 {
			continue
		}
		if serial == inputBasicTotalSerial || serial == inputNonBasicTotalSerial {
			continue
		}
		row, _ := p.sched.Rows().Child(key)
		if !row.IsObject() {
			continue
		}
		if current, _ := row.CellOf(inputRateField); current != "" {
			continue
		}
		if rate := RatePerUnit(row); rate != "" {
			row.SetCell(inputRateField, rate)
			fmt.Printf("   ✅ Item %d: rate = %s\n", serial, rate)
		}
	}
}

// summary holds the three computed figures of a summary row.
type summary struct {
	quantity string
	value    string
	rate     string
}

// sumSerials totals quantity and purchase value over the first-found row of
// each serial in [from, to], then derives the range's own rate.
func (p *InputsProcessor) sumSerials(from, to int) summary {
	var quantity, value float64
	for serial := from; serial <= to; serial++ {
		row, ok := p.sched.Row(serial)
		if !ok || !row.IsObject() {
			continue
		}
		if cell, ok := row.CellOf(inputQuantityField); ok {
			quantity += schedule.ParseCell(cell)
		}
		if cell, ok := row.CellOf(inputValueField); ok {
			value += schedule.ParseCell(cell)
		}
	}
	return newSummary(quantity, value)
}

func newSummary(quantity, value float64) summary {
	s := summary{
		quantity: schedule.FormatCell(quantity),
		value:    schedule.FormatCell(value),
	}
	if quantity > 0 {
		s.rate = schedule.FormatCell(value / quantity)
	}
	return s
}

// fillSummary writes a summary row, overwriting a cell only when the
// computed value is non-empty: an empty sum never clobbers an extracted
// figure.
func (p *InputsProcessor) fillSummary(serial int, s summary) {
	row, ok := p.sched.Row(serial)
	if !ok || !row.IsObject() {
		fmt.Printf("⚠️ Summary row %d not found\n", serial)
		return
	}
	setIfComputed(row, inputQuantityField, s.quantity)
	setIfComputed(row, inputValueField, s.value)
	setIfComputed(row, inputRateField, s.rate)
	fmt.Printf("✅ Updated summary row %d (qty=%s value=%s rate=%s)\n", serial, s.quantity, s.value, s.rate)
}

// fillGrandTotal adds rows 12 and 22 numerically. If either is missing the
// grand total's fields are left as empty strings.
func (p *InputsProcessor) fillGrandTotal() {
	row, ok := p.sched.Row(inputGrandTotalSerial)
	if !ok || !row.IsObject() {
		fmt.Printf("⚠️ Grand total row %d not found\n", inputGrandTotalSerial)
		return
	}
	basic, okBasic := p.sched.Row(inputBasicTotalSerial)
	nonBasic, okNonBasic := p.sched.Row(inputNonBasicTotalSerial)
	if !okBasic || !okNonBasic {
		fmt.Printf("⚠️ Row %d or %d missing, leaving grand total untouched\n",
			inputBasicTotalSerial, inputNonBasicTotalSerial)
		return
	}
	quantity := parsedCell(basic, inputQuantityField) + parsedCell(nonBasic, inputQuantityField)
	value := parsedCell(basic, inputValueField) + parsedCell(nonBasic, inputValueField)
	s := newSummary(quantity, value)
	setIfComputed(row, inputQuantityField, s.quantity)
	setIfComputed(row, inputValueField, s.value)
	setIfComputed(row, inputRateField, s.rate)
	fmt.Printf("✅ Updated grand total row %d\n", inputGrandTotalSerial)
}

// enforceLock is the final pass over the whole schedule. Rows 1–10 are
// wiped entirely; rows 11–24 keep only their purchase value. The lock runs
// regardless of what extraction or the steps above produced.
func (p *InputsProcessor) enforceLock() {
	locked := []string{inputDescriptionField, inputUnitField, inputQuantityField, inputRateField}
	for _, key := range p.sched.Rows().Keys() {
		serial, ok := schedule.SerialOf(key)
		if !ok {
			continue
		}
		row, _ := p.sched.Rows().Child(key)
		if !row.IsObject() {
			continue
		}
		switch {
		case serial >= 1 && serial <= inputLockedMaxSerial:
			for _, field := range row.Keys() {
				row.SetCell(field, "")
			}
		case serial >= inputLockedMaxSerial+1 && serial <= inputLastSerial:
			for _, field := range locked {
				if _, ok := row.Child(field); ok {
					row.SetCell(field, "")
				}
			}
		}
	}
	fmt.Println("✅ Hard lock enforced on input-consumption schedule")
}

func setIfComputed(row *schedule.Node, field, value string) {
	if value != "" {
		row.SetCell(field, value)
	}
}

func parsedCell(row *schedule.Node, field string) float64 {
	cell, _ := row.CellOf(field)
	return schedule.ParseCell(cell)
}
