package modelmodifier

import (
	"github.com/forsyde/f2cc-sub001/config"
	"github.com/forsyde/f2cc-sub001/ir"
)

// ComputePipelineStages assigns each leaf a pipeline stage index: the length
// of the longest dependency path, through non-delay edges, reaching it from
// a model input. Gated behind config.Config.ExperimentalPipelineStages (spec
// §4.2's "(experimental)" pipeline-stage segregation bullet, DESIGN.md Open
// Question decision 3) — stage assignment only matters once the synthesizer
// commits to emitting stage-interleaved, double-buffered kernels, which this
// compiler does not do by default.
//
// A Delay leaf's own in-edge is excluded from the stage computation, the
// same delay-breaks-the-dependency convention the scheduler uses to keep its
// topological ordering acyclic.
func ComputePipelineStages(net *ir.ProcessNetwork, cfg *config.Config) map[string]int {
	if cfg == nil || !cfg.ExperimentalPipelineStages {
		return nil
	}
	leaves := net.Leaves()
	stages := make(map[string]int, len(leaves))

	for pass := 0; pass <= len(leaves); pass++ {
		changed := false
		for _, leaf := range leaves {
			stage := 0
			if leaf.Kind != ir.Delay {
				for _, in := range leaf.In {
					prod := ir.ProducerPort(in)
					if prod == nil {
						continue
					}
					up := ir.OwnerLeaf(prod)
					if up == nil {
						continue
					}
					if s := stages[up.ID()] + 1; s > stage {
						stage = s
					}
				}
			}
			if stages[leaf.ID()] != stage {
				stages[leaf.ID()] = stage
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return stages
}
