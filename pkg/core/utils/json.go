// Package utils holds small shared helpers for cleaning model output.
package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// StripCodeFence removes a wrapping markdown code fence (``` or ```json)
// from a model reply and trims everything outside the outermost braces.
func StripCodeFence(raw string) string {
	cleaned := strings.TrimSpace(raw)
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// RepairJSON fixes common JSON defects in model replies: single quotes,
// unquoted keys, trailing commas, unclosed objects, markdown wrapping.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("utils: JSON repair failed: %v", err)
	}
	return repaired, nil
}

// ParseHJSON parses human-friendly JSON (comments, unquoted keys, optional
// commas) and returns standard JSON. Used as the lenient fallback when
// repair still does not yield a parseable document.
func ParseHJSON(data string) (string, error) {
	var result interface{}
	if err := hjson.Unmarshal([]byte(data), &result); err != nil {
		return "", fmt.Errorf("utils: hjson parse failed: %v", err)
	}
	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("utils: marshal failed: %v", err)
	}
	return string(out), nil
}
