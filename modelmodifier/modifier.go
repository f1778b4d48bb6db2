package modelmodifier

import (
	"github.com/forsyde/f2cc-sub001/config"
	"github.com/forsyde/f2cc-sub001/ir"
)

// Result carries the outputs of RunDefaultPasses that aren't expressed as IR
// mutations.
type Result struct {
	PipelineStages map[string]int
}

// RunDefaultPasses runs every modelmodifier rewrite in the default order:
// per-section Fuse/Coalesce, cross-leaf ParallelMap chain coalescing,
// redundant-routing elimination, arity normalization, and (when the model
// contains sibling composites sharing a structural signature) hierarchical
// parallelization — then re-validates every invariant.
//
// Split (§4.2.3's opposite of Coalesce) is not run by default: it trades
// fewer, coarser leaves for more, finer ones in order to expose additional
// pipeline parallelism, a choice this compiler leaves to an explicit future
// target selection rather than applying unconditionally (see DESIGN.md).
func RunDefaultPasses(net *ir.ProcessNetwork, cfg *config.Config) (*Result, error) {
	sections, err := DiscoverContainedSections(net)
	if err != nil {
		return nil, err
	}
	for _, sec := range sections {
		switch {
		case IsDataParallel(sec) && ChainLength(sec) == 1:
			if err := Fuse(net, sec); err != nil {
				return nil, err
			}
		case IsDataParallel(sec) && ChainLength(sec) > 1:
			if err := Coalesce(net, sec); err != nil {
				return nil, err
			}
		}
	}

	CoalesceParallelChains(net)

	if err := RemoveRedundantRouting(net); err != nil {
		return nil, err
	}

	NormalizeArity(net)

	if err := FlattenHierarchicalParallelism(net); err != nil {
		return nil, err
	}

	if err := ir.CheckInvariants(net); err != nil {
		return nil, err
	}

	return &Result{PipelineStages: ComputePipelineStages(net, cfg)}, nil
}
