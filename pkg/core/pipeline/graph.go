package pipeline

import "fmt"

// resolveOrder topologically sorts the block specs by their declared
// dependency edges, preserving the declared order among blocks that are
// ready at the same time. Unknown dependencies and cycles are errors.
func resolveOrder(blocks []BlockSpec) ([]BlockSpec, error) {
	known := make(map[BlockID]bool, len(blocks))
	for _, b := range blocks {
		if known[b.ID] {
			return nil, fmt.Errorf("pipeline: duplicate block %q", b.ID)
		}
		known[b.ID] = true
	}

	pending := make(map[BlockID]int, len(blocks))
	for _, b := range blocks {
		for _, dep := range b.DependsOn {
			if !known[dep] {
				return nil, fmt.Errorf("pipeline: block %q depends on unknown block %q", b.ID, dep)
			}
			pending[b.ID]++
		}
	}

	ordered := make([]BlockSpec, 0, len(blocks))
	done := make(map[BlockID]bool, len(blocks))
	for len(ordered) < len(blocks) {
		progressed := false
		for _, b := range blocks {
			if done[b.ID] {
				continue
			}
			ready := true
			for _, dep := range b.DependsOn {
				if !done[dep] {
					ready = false
					break
				}
			}
			if ready {
				ordered = append(ordered, b)
				done[b.ID] = true
				progressed = true
			}
		}
		if !progressed {
			return nil, fmt.Errorf("pipeline: dependency cycle among blocks")
		}
	}
	return ordered, nil
}
