package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseCell converts a schedule cell into a float64. Cells arrive from text
// extraction and may carry thousands-separator commas and surrounding
// whitespace; the empty string and anything non-numeric parse as 0. This is
// the single source of truth for numeric coercion; no engine parses cells
// on its own.
func ParseCell(cell string) float64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if cleaned == "" {
		return 0
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}

// FormatCell renders a computed quantity back into the schedule's string
// convention: exactly two fractional digits, sign preserved, no thousands
// separators, and an exact zero rendered as the empty "unset" sentinel
// rather than "0.00".
func FormatCell(value float64) string {
	if value == 0 {
		return ""
	}
	return fmt.Sprintf("%.2f", value)
}

// FormatFixed renders a quantity with two fractional digits unconditionally,
// zero included. The asset aggregator's computed rows use this policy where
// everything else zero-suppresses; the divergence is part of the downstream
// output contract and must not be unified with FormatCell.
func FormatFixed(value float64) string {
	return fmt.Sprintf("%.2f", value)
}
