package calc

import (
	"testing"

	"asi_schedules/pkg/core/schedule"
)

func productRow(qtyMfg, qtySold, gross, gst, excise, other, subsidy string) *schedule.Node {
	row := schedule.NewObject()
	row.SetCell("Item description", "Widgets")
	row.SetCell("Item code (NPCMS)", "")
	row.SetCell("Unit of quantity", "NOS")
	row.SetCell("Quantity manufactured", qtyMfg)
	row.SetCell("Quantity sold", qtySold)
	row.SetCell("Gross sale value (Rs.)", gross)
	dist := schedule.NewObject()
	dist.SetCell("Goods and Services Tax(GST)", gst)
	dist.SetCell("Excise Duty/Sales Tax/VAT/Other Taxes, if any", excise)
	dist.SetCell("Other Distributive Expenses", other)
	dist.SetCell("Subsidy (-)", subsidy)
	row.Set("Distributive expenses (Rs.)", dist)
	row.SetCell("Per unit net sale value (Rs. 0.00)", "")
	row.SetCell("Ex-factory value of quantity manufactured (Rs.)", "")
	return row
}

func productsSchedule() *schedule.Schedule {
	s := schedule.New("Block J: Products and by-products manufactured by the unit")
	s.Rows().Set("1. Product 1", productRow("", "", "", "", "", "", ""))
	s.Rows().Set("2. Product 2", productRow("", "", "", "", "", "", ""))
	s.Rows().Set("11. Other products/by-products", productRow("", "", "", "", "", "", ""))
	s.Rows().Set("12. Total (items 1 to 11)", productRow("", "", "", "", "", "", ""))
	s.Rows().Set("13. Share (%) of products/by-products directly exported", schedule.NewCell(""))
	return s
}

func TestPerUnitNetSaleValue(t *testing.T) {
	// (900 - (30 + 20 + 30 - 10)) / 50 = 830 / 50
	row := productRow("60", "50", "900", "30", "20", "30", "10")
	if got := PerUnitNetSaleValue(row); got != "16.60" {
		t.Errorf("Expected 16.60, got %q", got)
	}

	// Zero quantity sold yields no figure.
	row = productRow("60", "", "900", "", "", "", "")
	if got := PerUnitNetSaleValue(row); got != "" {
		t.Errorf("Expected empty for zero quantity sold, got %q", got)
	}
}

func TestExFactoryValue(t *testing.T) {
	row := productRow("60", "50", "900", "30", "20", "30", "10")
	row.SetCell("Per unit net sale value (Rs. 0.00)", "16.60")
	// 16.60 * 60
	if got := ExFactoryValue(row); got != "996.00" {
		t.Errorf("Expected 996.00, got %q", got)
	}

	row.SetCell("Quantity manufactured", "")
	if got := ExFactoryValue(row); got != "" {
		t.Errorf("Expected empty for zero quantity manufactured, got %q", got)
	}
}

func TestProductsProcessorFillsItemsAndTotals(t *testing.T) {
	s := productsSchedule()
	s.Rows().Set("1. Product 1", productRow("60", "50", "900", "30", "20", "30", "10"))
	s.Rows().Set("2. Product 2", productRow("100", "100", "1,000", "50", "", "", ""))

	out := NewProductsProcessor(s).Process()

	row1, _ := out.Row(1)
	if got, _ := row1.CellOf("Per unit net sale value (Rs. 0.00)"); got != "16.60" {
		t.Errorf("Item 1 per unit: expected 16.60, got %q", got)
	}
	if got, _ := row1.CellOf("Ex-factory value of quantity manufactured (Rs.)"); got != "996.00" {
		t.Errorf("Item 1 ex-factory: expected 996.00, got %q", got)
	}

	// Item 2: (1000 - 50) / 100 = 9.50, ex-factory 9.50 * 100.
	row2, _ := out.Row(2)
	if got, _ := row2.CellOf("Per unit net sale value (Rs. 0.00)"); got != "9.50" {
		t.Errorf("Item 2 per unit: expected 9.50, got %q", got)
	}
	if got, _ := row2.CellOf("Ex-factory value of quantity manufactured (Rs.)"); got != "950.00" {
		t.Errorf("Item 2 ex-factory: expected 950.00, got %q", got)
	}

	// Totals row: qty mfg 160, qty sold 150, gross 1900, GST 80.
	total, _ := out.Row(12)
	if got, _ := total.CellOf("Quantity manufactured"); got != "160.00" {
		t.Errorf("Total qty mfg: expected 160.00, got %q", got)
	}
	if got, _ := total.CellOf("Gross sale value (Rs.)"); got != "1900.00" {
		t.Errorf("Total gross: expected 1900.00, got %q", got)
	}
	dist, _ := total.Child("Distributive expenses (Rs.)")
	if got, _ := dist.CellOf("Goods and Services Tax(GST)"); got != "80.00" {
		t.Errorf("Total GST: expected 80.00, got %q", got)
	}
	// Excise summed to zero across all rows except item 1's 20.
	if got, _ := dist.CellOf("Excise Duty/Sales Tax/VAT/Other Taxes, if any"); got != "20.00" {
		t.Errorf("Total excise: expected 20.00, got %q", got)
	}

	// Totals row unit economics re-derived from the sums:
	// (1900 - (80 + 20 + 30 - 10)) / 150 = 1780 / 150 = 11.87
	if got, _ := total.CellOf("Per unit net sale value (Rs. 0.00)"); got != "11.87" {
		t.Errorf("Total per unit: expected 11.87, got %q", got)
	}
	// 11.87 * 160
	if got, _ := total.CellOf("Ex-factory value of quantity manufactured (Rs.)"); got != "1899.20" {
		t.Errorf("Total ex-factory: expected 1899.20, got %q", got)
	}

	// Descriptive fields of the totals row stay untouched.
	if got, _ := total.CellOf("Item description"); got != "Widgets" {
		t.Errorf("Totals description changed: %q", got)
	}
}

func TestProductsProcessorDoesNotRecomputeFilledCells(t *testing.T) {
	s := productsSchedule()
	row := productRow("60", "50", "900", "30", "20", "30", "10")
	row.SetCell("Per unit net sale value (Rs. 0.00)", "12.34")
	s.Rows().Set("1. Product 1", row)

	out := NewProductsProcessor(s).Process()

	row1, _ := out.Row(1)
	if got, _ := row1.CellOf("Per unit net sale value (Rs. 0.00)"); got != "12.34" {
		t.Errorf("Extracted per unit recomputed: %q", got)
	}
	// Ex-factory derives from the extracted per-unit figure: 12.34 * 60.
	if got, _ := row1.CellOf("Ex-factory value of quantity manufactured (Rs.)"); got != "740.40" {
		t.Errorf("Item 1 ex-factory: expected 740.40, got %q", got)
	}
}

func TestProductsProcessorBareCellRowsAreIgnored(t *testing.T) {
	s := productsSchedule()
	s.Rows().Set("13. Share (%) of products/by-products directly exported", schedule.NewCell("25"))

	out := NewProductsProcessor(s).Process()

	row, ok := out.Rows().Child("13. Share (%) of products/by-products directly exported")
	if !ok || row.IsObject() {
		t.Fatal("Bare-cell row lost or reshaped")
	}
	if row.Cell() != "25" {
		t.Errorf("Bare-cell row value changed: %q", row.Cell())
	}
}
