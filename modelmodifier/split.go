package modelmodifier

import (
	"strconv"

	"github.com/forsyde/f2cc-sub001/ir"
)

// Split is Coalesce's inverse (spec §4.2.3 "Split"): for a chain-length > 1
// data-parallel section, insert a zipx/unzipx pair at every stage boundary
// across all branches, turning one coarse-grained section into a pipeline of
// single-stage data-parallel sections. This exposes finer pipeline stages for
// the scheduler to interleave.
func Split(net *ir.ProcessNetwork, sec *Section) error {
	if !IsDataParallel(sec) || ChainLength(sec) <= 1 {
		return nil
	}
	composite, err := ownerComposite(net, sec.Diverge)
	if err != nil {
		return err
	}
	n := len(sec.Branches)
	length := ChainLength(sec)

	for k := 1; k < length; k++ {
		conv := ir.NewLeaf(net.NextProcessID("zipx"), ir.ZipX)
		div := ir.NewLeaf(net.NextProcessID("unzipx"), ir.UnzipX)
		composite.AddChild(conv)
		composite.AddChild(div)

		convOutType := arrayTypeOf(sec.Branches[0][k-1].Out[0].Type, n)
		conv.AddOut(ir.NewPort("out1", ir.Out, convOutType))
		div.AddIn(ir.NewPort("in1", ir.In, convOutType.Clone()))
		ir.Connect(conv.Out[0], div.In[0])

		for i := 0; i < n; i++ {
			prevLeaf := sec.Branches[i][k-1]
			nextLeaf := sec.Branches[i][k]

			conv.AddIn(ir.NewPort("in"+strconv.Itoa(i+1), ir.In, prevLeaf.Out[0].Type.Clone()))
			div.AddOut(ir.NewPort("out"+strconv.Itoa(i+1), ir.Out, nextLeaf.In[0].Type.Clone()))

			ir.Disconnect(prevLeaf.Out[0])
			ir.Connect(prevLeaf.Out[0], conv.In[i])
			ir.Disconnect(nextLeaf.In[0])
			ir.Connect(div.Out[i], nextLeaf.In[0])
		}
	}
	return nil
}

// arrayTypeOf clones elem into the array-of-n-elements type used at a
// zipx/unzipx face (spec §4.1's convergence/divergence port typing).
func arrayTypeOf(elem *ir.DataType, n int) *ir.DataType {
	arr := elem.Clone()
	arr.IsArray = true
	arr.ArraySize = &n
	return arr
}
