package calc

import (
	"fmt"

	"asi_schedules/pkg/core/schedule"
)

// Field names of the manufactured-products block. The distributive-expense
// field is the one nested sub-object an otherwise flat row may carry.
const (
	productDescriptionField = "Item description"
	productCodeField        = "Item code (NPCMS)"
	productUnitField        = "Unit of quantity"
	productQtyMfgField      = "Quantity manufactured"
	productQtySoldField     = "Quantity sold"
	productGrossSaleField   = "Gross sale value (Rs.)"
	productDistField        = "Distributive expenses (Rs.)"
	productPerUnitField     = "Per unit net sale value (Rs. 0.00)"
	productExFactoryField   = "Ex-factory value of quantity manufactured (Rs.)"
)

// Sub-fields of the distributive-expense object.
const (
	distGSTField     = "Goods and Services Tax(GST)"
	distExciseField  = "Excise Duty/Sales Tax/VAT/Other Taxes, if any"
	distOtherField   = "Other Distributive Expenses"
	distSubsidyField = "Subsidy (-)"
)

var distSubFields = []string{distGSTField, distExciseField, distOtherField, distSubsidyField}

// productLastItemSerial is the last product row; serial 12 is the totals row.
const (
	productLastItemSerial = 11
	productTotalSerial    = 12
)

// ProductsProcessor post-processes the manufactured-products schedule:
// per-row per-unit net sale value and ex-factory value, then the field-wise
// totals row including the nested distributive-expense sub-fields.
type ProductsProcessor struct {
	sched *schedule.Schedule
}

// NewProductsProcessor deep-copies the extracted schedule.
func NewProductsProcessor(extracted *schedule.Schedule) *ProductsProcessor {
	return &ProductsProcessor{sched: extracted.Clone()}
}

// Process fills all derived fields and returns the updated schedule.
func (p *ProductsProcessor) Process() *schedule.Schedule {
	p.fillItems()
	p.fillTotals()
	return p.sched
}

// PerUnitNetSaleValue computes
//
//	(gross sale − (GST + excise/VAT + other expenses − subsidy)) ÷ quantity sold
//
// for one product row. A zero or unset quantity sold yields "".
func PerUnitNetSaleValue(row *schedule.Node) string {
	sold := parsedCell(row, productQtySoldField)
	if sold == 0 {
		return ""
	}
	gross := parsedCell(row, productGrossSaleField)

	var gst, excise, other, subsidy float64
	if dist, ok := row.Child(productDistField); ok && dist.IsObject() {
		gst = parsedCell(dist, distGSTField)
		excise = parsedCell(dist, distExciseField)
		other = parsedCell(dist, distOtherField)
		subsidy = parsedCell(dist, distSubsidyField)
	}

	net := gross - (gst + excise + other - subsidy)
	return schedule.FormatCell(net / sold)
}

// ExFactoryValue computes per-unit net sale value × quantity manufactured.
// Either factor at zero yields "".
func ExFactoryValue(row *schedule.Node) string {
	perUnit := parsedCell(row, productPerUnitField)
	manufactured := parsedCell(row, productQtyMfgField)
	if perUnit == 0 || manufactured == 0 {
		return ""
	}
	return schedule.FormatCell(perUnit * manufactured)
}

// fillItems derives the two per-row figures for product rows 1–11. The
// per-unit value is written before the ex-factory value so the latter can
// use it within the same pass; existing non-empty cells are never
// recomputed.
func (p *ProductsProcessor) fillItems() {
	for _, key := range p.sched.Rows().Keys() {
		serial, ok := schedule.SerialOf(key)
		if !ok || serial < 1 || serial > productLastItemSerial {
			continue
		}
		row, _ := p.sched.Rows().Child(key)
		if !row.IsObject() {
			continue
		}
		if current, _ := row.CellOf(productPerUnitField); current == "" {
			if perUnit := PerUnitNetSaleValue(row); perUnit != "" {
				row.SetCell(productPerUnitField, perUnit)
				fmt.Printf("   ✅ Item %d: per unit = %s\n", serial, perUnit)
			}
		}
		if current, _ := row.CellOf(productExFactoryField); current == "" {
			if exFactory := ExFactoryValue(row); exFactory != "" {
				row.SetCell(productExFactoryField, exFactory)
				fmt.Printf("   ✅ Item %d: ex-factory = %s\n", serial, exFactory)
			}
		}
	}
}

// fillTotals sums the three scalar fields and the four distributive
// sub-fields over rows 1–11 into row 12, then re-derives the totals row's
// own per-unit and ex-factory figures from the summed constituents.
// Descriptive fields are never touched and an empty computation never
// blanks an existing total.
func (p *ProductsProcessor) fillTotals() {
	totalRow, ok := p.sched.Row(productTotalSerial)
	if !ok || !totalRow.IsObject() {
		fmt.Printf("⚠️ Totals row %d not found\n", productTotalSerial)
		return
	}

	var qtyMfg, qtySold, gross float64
	distTotals := make(map[string]float64, len(distSubFields))
	for serial := 1; serial <= productLastItemSerial; serial++ {
		row, ok := p.sched.Row(serial)
		if !ok || !row.IsObject() {
			continue
		}
		qtyMfg += parsedCell(row, productQtyMfgField)
		qtySold += parsedCell(row, productQtySoldField)
		gross += parsedCell(row, productGrossSaleField)
		if dist, ok := row.Child(productDistField); ok && dist.IsObject() {
			for _, field := range distSubFields {
				distTotals[field] += parsedCell(dist, field)
			}
		}
	}

	setIfComputed(totalRow, productQtyMfgField, schedule.FormatCell(qtyMfg))
	setIfComputed(totalRow, productQtySoldField, schedule.FormatCell(qtySold))
	setIfComputed(totalRow, productGrossSaleField, schedule.FormatCell(gross))

	if dist, ok := totalRow.Child(productDistField); ok && dist.IsObject() {
		for _, field := range distSubFields {
			setIfComputed(dist, field, schedule.FormatCell(distTotals[field]))
		}
	}

	// Re-derive the totals row's own unit economics from the summed
	// constituents, working on a scratch row so the scaffolding never
	// leaks template keys into the document.
	scratch := schedule.NewObject()
	scratch.SetCell(productQtyMfgField, schedule.FormatCell(qtyMfg))
	scratch.SetCell(productQtySoldField, schedule.FormatCell(qtySold))
	scratch.SetCell(productGrossSaleField, schedule.FormatCell(gross))
	scratchDist := schedule.NewObject()
	for _, field := range distSubFields {
		scratchDist.SetCell(field, schedule.FormatCell(distTotals[field]))
	}
	scratch.Set(productDistField, scratchDist)

	if perUnit := PerUnitNetSaleValue(scratch); perUnit != "" {
		totalRow.SetCell(productPerUnitField, perUnit)
		scratch.SetCell(productPerUnitField, perUnit)
		setIfComputed(totalRow, productExFactoryField, ExFactoryValue(scratch))
	}
	fmt.Printf("✅ Updated products totals row %d\n", productTotalSerial)
}
