// Package export renders finished schedules into a row-oriented workbook,
// one sheet per block. Nested fields (sections and the distributive-expense
// sub-object) are flattened into sibling columns named by concatenating the
// parent and child labels.
package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"asi_schedules/pkg/core/schedule"
)

// Sheet pairs one finished schedule with its workbook sheet name.
type Sheet struct {
	Name     string
	Schedule *schedule.Schedule
}

// WriteWorkbook writes all sheets to an xlsx file at path.
func WriteWorkbook(path string, sheets []Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			// Reuse the default sheet for the first block.
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return fmt.Errorf("export: failed to name sheet %s: %w", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("export: failed to create sheet %s: %w", sheet.Name, err)
		}
		if err := writeSheet(f, sheet); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: failed to save workbook: %w", err)
	}
	fmt.Printf("✅ Workbook written: %s (%d sheets)\n", path, len(sheets))
	return nil
}

func writeSheet(f *excelize.File, sheet Sheet) error {
	columns := headerColumns(sheet.Schedule)
	header := append([]interface{}{"Sl. No.", "Item"}, toInterfaces(columns)...)
	if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
		return fmt.Errorf("export: failed to write header on %s: %w", sheet.Name, err)
	}

	rows := sheet.Schedule.Rows()
	for i, key := range rows.Keys() {
		serial, label := splitRowKey(key)
		body, _ := rows.Child(key)

		record := make([]interface{}, 0, len(columns)+2)
		record = append(record, serial, label)
		if body.IsObject() {
			flat := flattenRow(body)
			for _, col := range columns {
				record = append(record, flat[col])
			}
		} else if len(columns) > 0 {
			// A bare-cell row (e.g. a single percentage line) lands in
			// the first data column.
			record = append(record, body.Cell())
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet.Name, cell, &record); err != nil {
			return fmt.Errorf("export: failed to write row %s on %s: %w", key, sheet.Name, err)
		}
	}
	return nil
}

// headerColumns derives the flattened column names from the first object
// row, the same schema reference the aggregation engines use.
func headerColumns(s *schedule.Schedule) []string {
	rows := s.Rows()
	for _, key := range rows.Keys() {
		body, _ := rows.Child(key)
		if body.IsObject() {
			return flattenKeys(body, nil)
		}
	}
	return nil
}

func flattenKeys(node *schedule.Node, prefix []string) []string {
	var out []string
	for _, key := range node.Keys() {
		child, _ := node.Child(key)
		path := append(append([]string{}, prefix...), key)
		if child.IsObject() {
			out = append(out, flattenKeys(child, path)...)
		} else {
			out = append(out, strings.Join(path, " "))
		}
	}
	return out
}

func flattenRow(node *schedule.Node) map[string]string {
	out := make(map[string]string)
	var walk func(n *schedule.Node, prefix []string)
	walk = func(n *schedule.Node, prefix []string) {
		for _, key := range n.Keys() {
			child, _ := n.Child(key)
			path := append(append([]string{}, prefix...), key)
			if child.IsObject() {
				walk(child, path)
			} else {
				out[strings.Join(path, " ")] = child.Cell()
			}
		}
	}
	walk(node, nil)
	return out
}

func splitRowKey(key string) (string, string) {
	head, rest, found := strings.Cut(key, ".")
	if !found {
		return "", key
	}
	return strings.TrimSpace(head), strings.TrimSpace(rest)
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
