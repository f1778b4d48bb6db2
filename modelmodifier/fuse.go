package modelmodifier

import (
	"github.com/forsyde/f2cc-sub001/errs"
	"github.com/forsyde/f2cc-sub001/ir"
)

// Fuse replaces a chain-length-1 data-parallel section's (unzipx, maps, zipx)
// triangle with a single ParallelMap leaf (spec §4.2.3 "Fuse"). Since every
// branch is pairwise value-equal (IsDataParallel), the replication count
// alone captures the "N identical lanes" shape and the new leaf's function
// list is just the shared branch's function.
func Fuse(net *ir.ProcessNetwork, sec *Section) error {
	if !IsDataParallel(sec) || ChainLength(sec) != 1 {
		return nil
	}
	composite, err := ownerComposite(net, sec.Diverge)
	if err != nil {
		return err
	}

	branchLeaf := sec.Branches[0][0]
	if len(sec.Diverge.In) != 1 || len(sec.Converge.Out) != 1 {
		return errs.New(errs.InvalidModel, "fuse requires a single-in diverge and single-out converge")
	}

	parallel := ir.NewLeaf(net.NextProcessID("parallel_map"), ir.ParallelMap)
	parallel.Replication = len(sec.Branches)
	parallel.Functions = append(parallel.Functions, branchLeaf.Functions...)

	elemIn := branchLeaf.In[0].Type.Clone()
	elemOut := branchLeaf.Out[0].Type.Clone()
	n := parallel.Replication
	inArr := elemIn.Clone()
	inArr.IsArray = true
	inArr.ArraySize = &n
	outArr := elemOut.Clone()
	outArr.IsArray = true
	outArr.ArraySize = &n

	parallel.AddIn(ir.NewPort("in1", ir.In, inArr))
	parallel.AddOut(ir.NewPort("out1", ir.Out, outArr))
	composite.AddChild(parallel)

	if err := redirectFlow(net, sec.Diverge, sec.Converge, parallel, parallel); err != nil {
		return err
	}

	removeLeaves(sec.Diverge, sec.Converge)
	for _, branch := range sec.Branches {
		removeLeaves(branch...)
	}
	return nil
}
