// Package pipeline orchestrates the per-block processing stages: template
// loading, extraction, deterministic post-computation, and persistence.
// Blocks are independent except where a BlockSpec declares dependency edges,
// which the orchestrator resolves topologically.
package pipeline

import (
	"asi_schedules/pkg/core/calc"
	"asi_schedules/pkg/core/schedule"
)

// BlockID identifies one schedule block of the survey form.
type BlockID string

const (
	BlockAssets         BlockID = "C"
	BlockWorkingCapital BlockID = "D"
	BlockExpenses       BlockID = "F"
	BlockReceipts       BlockID = "G"
	BlockInputs         BlockID = "H"
	BlockProducts       BlockID = "J"
)

// ComputeFunc runs a block's deterministic post-processing. extracted is the
// extraction collaborator's output, blank the pristine template, and deps
// the persisted outputs of blocks the spec depends on (nil when that block
// failed or was not run).
type ComputeFunc func(extracted, blank *schedule.Schedule, deps map[BlockID]*schedule.Schedule) (*schedule.Schedule, error)

// BlockSpec describes one pipeline stage.
type BlockSpec struct {
	ID        BlockID
	Title     string
	DependsOn []BlockID
	Compute   ComputeFunc // nil: the extraction output is persisted as-is
}

// DefaultBlocks returns the standard survey pipeline. The receipts block is
// the only one with cross-block edges: it consumes the working-capital and
// other-expenses outputs, so it declares both and the orchestrator schedules
// it after them.
func DefaultBlocks() []BlockSpec {
	return []BlockSpec{
		{
			ID:    BlockAssets,
			Title: "Type of Assets",
			Compute: func(extracted, blank *schedule.Schedule, _ map[BlockID]*schedule.Schedule) (*schedule.Schedule, error) {
				return calc.NewAssetProcessor(extracted, blank).Process()
			},
		},
		{
			ID:    BlockWorkingCapital,
			Title: "Block D: WORKING CAPITAL AND LOANS",
		},
		{
			ID:    BlockExpenses,
			Title: "Block F: OTHER EXPENSES",
		},
		{
			ID:        BlockReceipts,
			Title:     "Block G: OTHER OUTPUT/RECEIPTS",
			DependsOn: []BlockID{BlockWorkingCapital, BlockExpenses},
			Compute: func(extracted, _ *schedule.Schedule, deps map[BlockID]*schedule.Schedule) (*schedule.Schedule, error) {
				return calc.NewReceiptsProcessor(extracted, deps[BlockWorkingCapital], deps[BlockExpenses]).Process(), nil
			},
		},
		{
			ID:    BlockInputs,
			Title: "Block H: Indigenous input items consumed",
			Compute: func(extracted, _ *schedule.Schedule, _ map[BlockID]*schedule.Schedule) (*schedule.Schedule, error) {
				return calc.NewInputsProcessor(extracted).Process(), nil
			},
		},
		{
			ID:    BlockProducts,
			Title: "Block J: Products and by-products manufactured by the unit",
			Compute: func(extracted, _ *schedule.Schedule, _ map[BlockID]*schedule.Schedule) (*schedule.Schedule, error) {
				return calc.NewProductsProcessor(extracted).Process(), nil
			},
		},
	}
}
