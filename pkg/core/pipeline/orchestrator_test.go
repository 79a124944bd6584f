package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"asi_schedules/pkg/core/schedule"
	"asi_schedules/pkg/core/store"
)

// stubTemplates serves in-memory templates keyed by block.
type stubTemplates map[BlockID]*schedule.Schedule

func (s stubTemplates) Template(block BlockID) (*schedule.Schedule, error) {
	tpl, ok := s[block]
	if !ok {
		return nil, fmt.Errorf("no template for block %s", block)
	}
	return tpl.Clone(), nil
}

// stubExtractor fills a fixed set of cells per block and never calls a model.
type stubExtractor struct {
	fills map[BlockID]map[int]map[string]string // serial -> field -> value
	fail  map[BlockID]error
}

func (e *stubExtractor) Extract(_ context.Context, block BlockID, _ string, _ string, template *schedule.Schedule) (*schedule.Schedule, error) {
	if err := e.fail[block]; err != nil {
		return nil, err
	}
	out := template.Clone()
	for serial, fields := range e.fills[block] {
		row, ok := out.Row(serial)
		if !ok {
			continue
		}
		for field, value := range fields {
			row.SetCell(field, value)
		}
	}
	return out, nil
}

func singleFieldSchedule(title string, rows map[string]string, field string) *schedule.Schedule {
	s := schedule.New(title)
	for _, key := range sortedKeys(rows) {
		row := schedule.NewObject()
		row.SetCell(field, rows[key])
		s.Rows().Set(key, row)
	}
	return s
}

func sortedKeys(m map[string]string) []string {
	// Serial order is enough for test fixtures.
	keys := make([]string, 0, len(m))
	for serial := 1; serial <= 30; serial++ {
		for key := range m {
			if s, ok := schedule.SerialOf(key); ok && s == serial {
				keys = append(keys, key)
			}
		}
	}
	return keys
}

func crossBlockFixture() (stubTemplates, *stubExtractor) {
	templates := stubTemplates{
		BlockWorkingCapital: func() *schedule.Schedule {
			s := schedule.New("Block D: WORKING CAPITAL AND LOANS")
			row := schedule.NewObject()
			row.SetCell("Opening (Rs.)", "")
			row.SetCell("Closing (Rs.)", "")
			s.Rows().Set("5. Semi-finished goods/work in progress", row)
			return s
		}(),
		BlockExpenses: singleFieldSchedule("Block F: OTHER EXPENSES", map[string]string{
			"11. Purchase value of goods sold in the same condition as purchased": "",
		}, "Expenditure (Rs.)"),
		BlockReceipts: singleFieldSchedule("Block G: OTHER OUTPUT/RECEIPTS", map[string]string{
			"5. Net balance of goods sold in the same condition as purchased": "",
			"7. Variation in stock of semi-finished goods":                    "",
			"11. Sale value of goods sold in the same condition as purchased": "",
		}, "Receipts (Rs.)"),
	}
	extractor := &stubExtractor{
		fills: map[BlockID]map[int]map[string]string{
			BlockWorkingCapital: {5: {"Opening (Rs.)": "1000", "Closing (Rs.)": "1600"}},
			BlockExpenses:       {11: {"Expenditure (Rs.)": "300"}},
			BlockReceipts:       {11: {"Receipts (Rs.)": "800"}},
		},
		fail: map[BlockID]error{},
	}
	return templates, extractor
}

func crossBlockSpecs() []BlockSpec {
	all := DefaultBlocks()
	specs := make([]BlockSpec, 0, 3)
	for _, spec := range all {
		switch spec.ID {
		case BlockWorkingCapital, BlockExpenses, BlockReceipts:
			specs = append(specs, spec)
		}
	}
	return specs
}

func TestOrchestratorResolvesCrossBlockFields(t *testing.T) {
	templates, extractor := crossBlockFixture()
	repo := store.NewMemoryStore()
	orch := NewOrchestrator(templates, extractor, repo)

	result, err := orch.Run(context.Background(), "doc text", crossBlockSpecs())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.RunID == "" {
		t.Error("Expected a run ID")
	}
	if len(result.Failed) != 0 {
		t.Fatalf("Unexpected failures: %v", result.Failed)
	}

	receipts := result.Schedules[BlockReceipts]
	row5, _ := receipts.Row(5)
	// 800 - 300
	if got, _ := row5.CellOf("Receipts (Rs.)"); got != "500.00" {
		t.Errorf("Item 5: expected 500.00, got %q", got)
	}
	row7, _ := receipts.Row(7)
	// 1600 - 1000
	if got, _ := row7.CellOf("Receipts (Rs.)"); got != "600.00" {
		t.Errorf("Item 7: expected 600.00, got %q", got)
	}

	// Persisted copy matches the returned schedule.
	persisted, err := repo.Load(context.Background(), result.RunID, string(BlockReceipts))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want, _ := receipts.Encode()
	got, _ := persisted.Encode()
	if string(want) != string(got) {
		t.Error("Persisted schedule differs from pipeline output")
	}
}

func TestOrchestratorFailedDependencyDegradesDependent(t *testing.T) {
	templates, extractor := crossBlockFixture()
	extractor.fail[BlockExpenses] = errors.New("model unavailable")
	orch := NewOrchestrator(templates, extractor, store.NewMemoryStore())

	result, err := orch.Run(context.Background(), "doc text", crossBlockSpecs())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if _, failed := result.Failed[BlockExpenses]; !failed {
		t.Error("Expected expenses block to be reported failed")
	}

	// Receipts still runs: item 7 resolves, item 5 stays empty.
	receipts, ok := result.Schedules[BlockReceipts]
	if !ok {
		t.Fatal("Receipts block should still complete")
	}
	row5, _ := receipts.Row(5)
	if got, _ := row5.CellOf("Receipts (Rs.)"); got != "" {
		t.Errorf("Item 5 should be empty without expenses output, got %q", got)
	}
	row7, _ := receipts.Row(7)
	if got, _ := row7.CellOf("Receipts (Rs.)"); got != "600.00" {
		t.Errorf("Item 7: expected 600.00, got %q", got)
	}
}

func TestOrchestratorMissingTemplateFailsOnlyThatBlock(t *testing.T) {
	templates, extractor := crossBlockFixture()
	delete(templates, BlockWorkingCapital)
	orch := NewOrchestrator(templates, extractor, store.NewMemoryStore())

	result, err := orch.Run(context.Background(), "doc text", crossBlockSpecs())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, failed := result.Failed[BlockWorkingCapital]; !failed {
		t.Error("Expected working-capital block to fail")
	}
	if _, ok := result.Schedules[BlockReceipts]; !ok {
		t.Error("Receipts block should still complete")
	}
}
