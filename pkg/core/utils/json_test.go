package utils

import (
	"encoding/json"
	"testing"
)

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":"1"}`, `{"a":"1"}`},
		{"fenced", "```json\n{\"a\":\"1\"}\n```", `{"a":"1"}`},
		{"chatter", "Here is the filled JSON:\n{\"a\":\"1\"}\nLet me know!", `{"a":"1"}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := StripCodeFence(c.in); got != c.want {
				t.Errorf("Expected %q, got %q", c.want, got)
			}
		})
	}
}

func TestRepairJSONRecoversCommonDefects(t *testing.T) {
	malformed := `{'1. Land': {"Closing (Rs.)": "10.00",},`
	repaired, err := RepairJSON(malformed)
	if err != nil {
		t.Fatalf("RepairJSON failed: %v", err)
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(repaired), &parsed); err != nil {
		t.Fatalf("Repaired output still not valid JSON: %v\n%s", err, repaired)
	}
}

func TestParseHJSON(t *testing.T) {
	lenient := `{
		// extraction note
		value: "1,200.00"
	}`
	out, err := ParseHJSON(lenient)
	if err != nil {
		t.Fatalf("ParseHJSON failed: %v", err)
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("Output not valid JSON: %v", err)
	}
	if parsed["value"] != "1,200.00" {
		t.Errorf("Expected value to survive, got %v", parsed["value"])
	}
}
