package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"asi_schedules/pkg/core/llm"
	"asi_schedules/pkg/core/pipeline"
	"asi_schedules/pkg/core/schedule"
	"asi_schedules/pkg/core/utils"
)

const defaultBatchSize = 5

// purchaseValueField is the only cell the regex fallback may populate: a
// value pulled from keyword proximity is too weak evidence for anything
// else.
const purchaseValueField = "Purchase value (Rs.)"

// numberPattern matches values as they appear in financial text, thousands
// separators included.
var numberPattern = regexp.MustCompile(`(?:\d{1,3}(?:,\d{3})*(?:\.\d+)?)|\d+\.\d+`)

// BlockExtractor extracts cell values for one block at a time by prompting
// the model with small batches of template rows. Replies are repaired before
// parsing, and only cell values of keys that already exist in the template
// are merged back; the template's key structure is never altered.
type BlockExtractor struct {
	provider  llm.Provider
	batchSize int
}

var _ pipeline.Extractor = (*BlockExtractor)(nil)

// NewBlockExtractor builds an extractor on the given provider.
func NewBlockExtractor(provider llm.Provider) *BlockExtractor {
	return &BlockExtractor{provider: provider, batchSize: defaultBatchSize}
}

// Extract fills the template's cells from the document text. The returned
// schedule has exactly the template's keys in the template's order.
func (e *BlockExtractor) Extract(ctx context.Context, block pipeline.BlockID, title string, markdown string, template *schedule.Schedule) (*schedule.Schedule, error) {
	result := template.Clone()
	keys := result.Rows().Keys()

	for start := 0; start < len(keys); start += e.batchSize {
		end := start + e.batchSize
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[start:end]
		if err := e.extractBatch(ctx, block, title, markdown, result, batch); err != nil {
			// A failed batch degrades to the regex fallback; the other
			// batches still run.
			fmt.Printf("⚠️ Block %s batch %v failed (%v), using keyword fallback\n", block, batch, err)
			e.regexFallback(block, markdown, result, batch)
		}
	}
	return result, nil
}

func (e *BlockExtractor) extractBatch(ctx context.Context, block pipeline.BlockID, title, markdown string, result *schedule.Schedule, batch []string) error {
	batchDoc := schedule.NewObject()
	for _, key := range batch {
		row, _ := result.Rows().Child(key)
		batchDoc.Set(key, row.Clone())
	}
	batchJSON, err := batchDoc.MarshalJSON()
	if err != nil {
		return err
	}

	prompt := fmt.Sprintf(
		"BLOCK: %s\n\njson_input:\n%s\n\nsynonyms: %s\n\nmarkdown:\n%s\n\nReturn the json_input with any explicitly present values filled in.",
		title, string(batchJSON), strings.Join(synonymsFor(block, batch), ", "), markdown,
	)

	raw, err := e.provider.GenerateResponse(ctx, prompt, extractionSystemPrompt, map[string]interface{}{
		"response_format": "json",
	})
	if err != nil {
		return err
	}

	parsed, err := parseReply(raw)
	if err != nil {
		return err
	}

	for _, key := range batch {
		src, ok := parsed.Child(key)
		if !ok {
			continue
		}
		dst, _ := result.Rows().Child(key)
		mergeCells(dst, src)
	}
	return nil
}

// parseReply turns a model reply into a document node, going through code
// fence stripping, JSON repair, and an hjson fallback in that order.
func parseReply(raw string) (*schedule.Node, error) {
	cleaned := utils.StripCodeFence(raw)

	var node schedule.Node
	if err := json.Unmarshal([]byte(cleaned), &node); err == nil {
		return &node, nil
	}
	if repaired, err := utils.RepairJSON(cleaned); err == nil {
		if err := json.Unmarshal([]byte(repaired), &node); err == nil {
			return &node, nil
		}
	}
	if lenient, err := utils.ParseHJSON(cleaned); err == nil {
		if err := json.Unmarshal([]byte(lenient), &node); err == nil {
			return &node, nil
		}
	}
	return nil, fmt.Errorf("extract: reply is not parseable JSON")
}

// mergeCells copies cell values from src into dst for keys dst already has,
// recursing into shared sub-objects. Keys only src knows are dropped.
func mergeCells(dst, src *schedule.Node) {
	if dst == nil || src == nil || !dst.IsObject() || !src.IsObject() {
		return
	}
	for _, key := range dst.Keys() {
		dstChild, _ := dst.Child(key)
		srcChild, ok := src.Child(key)
		if !ok {
			continue
		}
		switch {
		case dstChild.IsObject():
			mergeCells(dstChild, srcChild)
		case !srcChild.IsObject():
			dstChild.SetCellValue(srcChild.Cell())
		}
	}
}

// regexFallback scans keyword neighborhoods for a number and fills only the
// purchase-value cell, mirroring the conservative behavior of the prompt
// rules.
func (e *BlockExtractor) regexFallback(block pipeline.BlockID, markdown string, result *schedule.Schedule, batch []string) {
	for _, key := range batch {
		row, _ := result.Rows().Child(key)
		if !row.IsObject() {
			continue
		}
		if _, ok := row.Child(purchaseValueField); !ok {
			continue
		}
		if current, _ := row.CellOf(purchaseValueField); current != "" {
			continue
		}
		if found := findNearKeywords(markdown, synonymsFor(block, []string{key})); found != "" {
			row.SetCell(purchaseValueField, found)
			fmt.Printf("   ✅ %s: keyword fallback found %s\n", key, found)
		}
	}
}

// findNearKeywords returns the first number within an 80-character window
// around any keyword occurrence.
func findNearKeywords(markdown string, keywords []string) string {
	lower := strings.ToLower(markdown)
	for _, kw := range keywords {
		idx := strings.Index(lower, strings.ToLower(kw))
		if idx < 0 {
			continue
		}
		start := idx - 80
		if start < 0 {
			start = 0
		}
		end := idx + len(kw) + 80
		if end > len(markdown) {
			end = len(markdown)
		}
		if num := numberPattern.FindString(markdown[start:end]); num != "" {
			return num
		}
	}
	return ""
}
