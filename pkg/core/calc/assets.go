// Package calc contains the deterministic post-extraction engines that fill
// computed rows and derived fields in ASI survey schedules. Each engine takes
// defensive deep copies on construction, mutates its own copy in place, and
// returns it; no engine performs I/O.
package calc

import (
	"fmt"

	"asi_schedules/pkg/core/schedule"
)

// Fixed computed-row keys of the asset block. The blank template does not
// carry these rows; the aggregator appends them in this exact spelling.
const (
	assetSubtotalKey = "8. Sub-total (items 2 to 7)"
	assetTotalKey    = "10. Total (items 1+8+9)"
)

// AssetProcessor merges an extracted asset schedule into a blank template of
// the same shape and appends the sub-total and total rows. Asset rows are
// two-level: section (gross value / depreciation / net value) → field.
type AssetProcessor struct {
	filled *schedule.Schedule
	result *schedule.Schedule
}

// NewAssetProcessor copies both inputs so the caller's documents are never
// mutated. The blank template supplies the authoritative row/section/field
// shape; the filled schedule supplies extracted values.
func NewAssetProcessor(filled, blank *schedule.Schedule) *AssetProcessor {
	return &AssetProcessor{
		filled: filled.Clone(),
		result: blank.Clone(),
	}
}

// Process fills the result template and computes the two aggregate rows.
// An empty template is a fatal input-shape violation: the aggregate rows
// need a first row to discover the section/field schema, and without one
// the whole block aborts.
func (p *AssetProcessor) Process() (*schedule.Schedule, error) {
	p.merge()

	reference, err := p.result.FirstRow()
	if err != nil {
		return nil, err
	}

	subtotal := p.sumRows(reference, []int{2, 3, 4, 5, 6, 7}, nil)
	p.result.Rows().Set(assetSubtotalKey, subtotal)

	total := p.sumRows(reference, []int{1, 9}, subtotal)
	p.result.Rows().Set(assetTotalKey, total)

	fmt.Printf("✅ Asset schedule aggregated: %d rows, sub-total and total computed\n", p.result.Rows().Len())
	return p.result, nil
}

// merge copies extracted values into the template for every row key both
// documents share, defaulting to "" where the extraction lacks a field.
// Rows only the template knows stay blank.
func (p *AssetProcessor) merge() {
	rows := p.result.Rows()
	for _, rowKey := range rows.Keys() {
		sourceRow, ok := p.filled.Rows().Child(rowKey)
		if !ok || !sourceRow.IsObject() {
			continue
		}
		targetRow, _ := rows.Child(rowKey)
		if !targetRow.IsObject() {
			continue
		}
		for _, section := range targetRow.Keys() {
			targetSection, _ := targetRow.Child(section)
			if !targetSection.IsObject() {
				continue
			}
			sourceSection, ok := sourceRow.Child(section)
			for _, field := range targetSection.Keys() {
				value := ""
				if ok && sourceSection.IsObject() {
					if cell, found := sourceSection.CellOf(field); found {
						value = cell
					}
				}
				targetSection.SetCell(field, value)
			}
		}
	}
}

// sumRows builds one aggregate row. For every section and field of the
// reference schema it sums the first-found row per serial, plus the extra
// row when given (the total row folds in the freshly computed sub-total).
// A field that turns out to hold a nested object contributes nothing.
func (p *AssetProcessor) sumRows(reference *schedule.Node, serials []int, extra *schedule.Node) *schedule.Node {
	out := schedule.NewObject()
	for _, section := range reference.Keys() {
		refSection, _ := reference.Child(section)
		if !refSection.IsObject() {
			continue
		}
		outSection := schedule.NewObject()
		out.Set(section, outSection)
		for _, field := range refSection.Keys() {
			sum := 0.0
			for _, serial := range serials {
				row, ok := p.result.Row(serial)
				if !ok {
					continue
				}
				rowSection, ok := row.Child(section)
				if !ok || !rowSection.IsObject() {
					continue
				}
				cell, ok := rowSection.CellOf(field)
				if !ok {
					// Nested mapping where a scalar belongs: skip.
					continue
				}
				sum += schedule.ParseCell(cell)
			}
			if extra != nil {
				if extraSection, ok := extra.Child(section); ok && extraSection.IsObject() {
					if cell, ok := extraSection.CellOf(field); ok {
						sum += schedule.ParseCell(cell)
					}
				}
			}
			// Aggregate rows keep the unconditional two-decimal policy,
			// zero included.
			outSection.SetCell(field, schedule.FormatFixed(sum))
		}
	}
	return out
}
