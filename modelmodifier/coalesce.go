package modelmodifier

import (
	"github.com/forsyde/f2cc-sub001/errs"
	"github.com/forsyde/f2cc-sub001/ir"
)

// Coalesce rewrites every branch of a data-parallel section of chain length
// > 1 into a single CoalescedMap leaf whose function list preserves chain
// order (spec §4.2.3 "Coalesce"). The diverge/converge pair itself is left
// in place; only the interior of each branch changes.
func Coalesce(net *ir.ProcessNetwork, sec *Section) error {
	if !IsDataParallel(sec) || ChainLength(sec) <= 1 {
		return nil
	}
	composite, err := ownerComposite(net, sec.Diverge)
	if err != nil {
		return err
	}
	for i, branch := range sec.Branches {
		newLeaf, err := coalesceBranch(net, branch)
		if err != nil {
			return err
		}
		composite.AddChild(newLeaf)

		divOut := sec.Diverge.Out[i]
		convIn := sec.Converge.In[i]
		ir.Connect(divOut, newLeaf.In[0])
		ir.Connect(newLeaf.Out[0], convIn)
		removeLeaves(branch...)
	}
	return nil
}

// coalesceBranch builds a CoalescedMap leaf standing in for the whole chain,
// concatenating each stage's function in order (the synthesizer's later
// wrap.go pass, spec §4.4 Step 4, generates the sequential-composition
// wrapper realizing this).
func coalesceBranch(net *ir.ProcessNetwork, branch []*ir.Leaf) (*ir.Leaf, error) {
	if len(branch) == 0 {
		return nil, errs.New(errs.IllegalState, "coalesceBranch called on an empty branch")
	}
	leaf := ir.NewLeaf(net.NextProcessID("coalesced"), ir.CoalescedMap)
	for _, stage := range branch {
		leaf.Functions = append(leaf.Functions, stage.Functions...)
	}
	first, last := branch[0], branch[len(branch)-1]
	if len(first.In) != 1 || len(last.Out) != 1 {
		return nil, errs.New(errs.InvalidModel, "coalesce requires single-in/single-out Map stages")
	}
	leaf.AddIn(ir.NewPort("in1", ir.In, first.In[0].Type.Clone()))
	leaf.AddOut(ir.NewPort("out1", ir.Out, last.Out[0].Type.Clone()))
	return leaf, nil
}
