package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"asi_schedules/pkg/core/schedule"
	"asi_schedules/pkg/core/store"
)

// Extractor is the extraction collaborator: given document text and a blank
// template it returns the same template with some cells filled. It must
// never add, remove, rename, or reorder keys.
type Extractor interface {
	Extract(ctx context.Context, block BlockID, title string, markdown string, template *schedule.Schedule) (*schedule.Schedule, error)
}

// TemplateSource supplies the blank template for each block.
type TemplateSource interface {
	Template(block BlockID) (*schedule.Schedule, error)
}

// RunResult reports what a pipeline run produced. A block that failed
// appears in Failed and not in Schedules; independent blocks proceed
// regardless.
type RunResult struct {
	RunID     string
	Schedules map[BlockID]*schedule.Schedule
	Failed    map[BlockID]error
}

// Orchestrator runs the block pipeline: per block, load template → extract
// → compute → persist. Cross-block dependencies are honored by topological
// ordering, so the receipts stage always sees the working-capital and
// other-expenses outputs it reads.
type Orchestrator struct {
	templates TemplateSource
	extractor Extractor
	repo      store.ScheduleStore
}

// NewOrchestrator wires the orchestrator's collaborators.
func NewOrchestrator(templates TemplateSource, extractor Extractor, repo store.ScheduleStore) *Orchestrator {
	return &Orchestrator{templates: templates, extractor: extractor, repo: repo}
}

// Run processes every block over the given document text. Each run gets a
// fresh UUID so persisted outputs from different documents never collide.
func (o *Orchestrator) Run(ctx context.Context, markdown string, blocks []BlockSpec) (*RunResult, error) {
	ordered, err := resolveOrder(blocks)
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		RunID:     uuid.New().String(),
		Schedules: make(map[BlockID]*schedule.Schedule),
		Failed:    make(map[BlockID]error),
	}
	fmt.Printf("Starting schedule pipeline run %s (%d blocks)...\n", result.RunID, len(ordered))
	start := time.Now()

	for _, spec := range ordered {
		if err := o.runBlock(ctx, markdown, spec, result); err != nil {
			// One block's failure never stops its independent siblings.
			fmt.Printf("⚠️ Block %s failed: %v\n", spec.ID, err)
			result.Failed[spec.ID] = err
		}
	}

	fmt.Printf("Pipeline run %s completed in %v (%d ok, %d failed)\n",
		result.RunID, time.Since(start), len(result.Schedules), len(result.Failed))
	return result, nil
}

func (o *Orchestrator) runBlock(ctx context.Context, markdown string, spec BlockSpec, result *RunResult) error {
	fmt.Printf("--- Block %s: %s ---\n", spec.ID, spec.Title)

	blank, err := o.templates.Template(spec.ID)
	if err != nil {
		return fmt.Errorf("load template: %w", err)
	}

	extracted, err := o.extractor.Extract(ctx, spec.ID, spec.Title, markdown, blank)
	if err != nil {
		return fmt.Errorf("extraction: %w", err)
	}

	out := extracted
	if spec.Compute != nil {
		deps := make(map[BlockID]*schedule.Schedule, len(spec.DependsOn))
		for _, dep := range spec.DependsOn {
			// A failed dependency degrades the dependent fields to
			// no-ops; it does not abort this block.
			deps[dep] = result.Schedules[dep]
		}
		out, err = spec.Compute(extracted, blank, deps)
		if err != nil {
			return fmt.Errorf("computation: %w", err)
		}
	}

	if err := o.repo.Save(ctx, result.RunID, string(spec.ID), out); err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	result.Schedules[spec.ID] = out
	fmt.Printf("✅ Block %s persisted\n", spec.ID)
	return nil
}
