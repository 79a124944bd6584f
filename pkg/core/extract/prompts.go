// Package extract implements the extraction collaborator: an LLM-backed
// block extractor that fills cells of a blank template from document text
// without ever touching the template's key structure.
package extract

import (
	"fmt"

	"asi_schedules/pkg/core/pipeline"
	"asi_schedules/pkg/core/schedule"
)

// extractionSystemPrompt is the strict contract handed to the model for
// every block. The fill-only rules mirror what the merge step enforces in
// code; the prompt exists so the model wastes fewer tokens on output we
// would discard anyway.
const extractionSystemPrompt = `You are a STRICT survey-schedule data extraction engine.

INPUTS PROVIDED:
- json_input: the official block JSON structure (exact keys and serial numbers must be preserved).
- markdown: extracted text from balance sheet / P&L / notes (SOLE source of truth).
- synonyms: reference keywords ONLY to locate relevant lines.

ABSOLUTE RULES (NO EXCEPTIONS):
1. Populate a field ONLY if an explicit numeric value is written in the markdown.
2. NEVER infer, calculate, derive, sum, subtract, average, or estimate any value.
3. NEVER compute totals or sub-totals.
4. If a value is not explicitly present, LEAVE THE FIELD AS AN EMPTY STRING.
5. Copy numeric values EXACTLY as written (no rounding, no unit conversion).
6. Do NOT add, remove, rename, or restructure any JSON keys.
7. Output ONLY valid JSON. No explanations, no comments, no markdown.`

// blockSynonyms maps row-key prefixes to the report-text keywords used both
// in the prompt and by the regex fallback. Only rows the balance sheet can
// plausibly source carry entries.
var blockSynonyms = map[pipeline.BlockID]map[string][]string{
	pipeline.BlockInputs: {
		"11.": {"Other basic items"},
		"13.": {"Non-basic chemicals"},
		"14.": {"Packing material"},
		"16.": {"Electricity charges", "Electricity expense"},
		"17.": {"Petrol", "Diesel", "Fuel expenses", "Power & fuel"},
		"20.": {"Other fuel"},
		"21.": {"Consumable stores", "Stores & spares"},
	},
	pipeline.BlockExpenses: {
		"1.":  {"Work done by others", "Job work charges"},
		"2.":  {"Repairs & maintenance", "Repairs to building"},
		"3.":  {"Repairs to machinery"},
		"8.":  {"Insurance charges", "Insurance"},
		"9.":  {"Rent paid", "Lease rent"},
		"11.": {"Purchase of traded goods", "Purchases of stock-in-trade"},
		"12.": {"Rent paid for building"},
		"14.": {"Interest paid", "Finance costs"},
	},
	pipeline.BlockReceipts: {
		"1.":  {"Work done for others", "Job work income"},
		"3.":  {"Electricity sold"},
		"8.":  {"Rent received"},
		"10.": {"Interest received", "Interest income"},
		"11.": {"Sale of traded goods", "Sale of stock-in-trade"},
	},
}

// synonymsFor flattens a block's keyword table for the given row keys,
// matching by exact serial so "1." never captures "11.".
func synonymsFor(block pipeline.BlockID, keys []string) []string {
	table := blockSynonyms[block]
	if table == nil {
		return nil
	}
	var out []string
	for _, key := range keys {
		serial, ok := schedule.SerialOf(key)
		if !ok {
			continue
		}
		out = append(out, table[fmt.Sprintf("%d.", serial)]...)
	}
	return out
}
