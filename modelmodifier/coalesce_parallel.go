package modelmodifier

import "github.com/forsyde/f2cc-sub001/ir"

// CoalesceParallelChains merges adjacent ParallelMap leaves that share the
// same replication count and whose facing types agree modulo constness (spec
// §4.2.4): a ParallelMap feeding directly into another ParallelMap of equal
// replication collapses into one leaf whose function list concatenates both,
// the same sequential-composition convention as Coalesce (§4.2.3) but for
// leaves that are already parallel.
//
// Merging can expose new adjacent pairs (the merged leaf may now feed a
// third ParallelMap), so the scan repeats until a full pass finds nothing
// left to merge.
func CoalesceParallelChains(net *ir.ProcessNetwork) {
	for {
		merged := false
		for _, composite := range net.AllComposites() {
			if mergeOneParallelPair(net, composite) {
				merged = true
				break
			}
		}
		if !merged {
			return
		}
	}
}

func mergeOneParallelPair(net *ir.ProcessNetwork, composite *ir.Composite) bool {
	for _, child := range composite.Children {
		first, ok := child.(*ir.Leaf)
		if !ok || first.Kind != ir.ParallelMap || len(first.Out) != 1 {
			continue
		}
		consumers := ir.ConsumerPorts(first.Out[0])
		if len(consumers) != 1 {
			continue
		}
		second := ir.OwnerLeaf(consumers[0])
		if second == nil || second.Kind != ir.ParallelMap {
			continue
		}
		if second.Replication != first.Replication {
			continue
		}
		if len(first.In) != 1 || len(second.Out) != 1 {
			continue
		}
		if !shapeCompatibleIgnoringConst(first.Out[0].Type, second.In[0].Type) {
			continue
		}

		merged := ir.NewLeaf(net.NextProcessID("parallel_map"), ir.ParallelMap)
		merged.Replication = first.Replication
		merged.Functions = append(merged.Functions, first.Functions...)
		merged.Functions = append(merged.Functions, second.Functions...)
		merged.AddIn(ir.NewPort("in1", ir.In, first.In[0].Type.Clone()))
		merged.AddOut(ir.NewPort("out1", ir.Out, second.Out[0].Type.Clone()))
		composite.AddChild(merged)

		externalIn := first.In[0].Peer()
		ir.Disconnect(first.In[0])
		if externalIn != nil {
			reconnectExternal(externalIn, merged.In[0])
			replaceInterfaceEndpoint(net.Inputs, first.In[0], merged.In[0])
		}
		externalOut := second.Out[0].Peer()
		ir.Disconnect(second.Out[0])
		if externalOut != nil {
			reconnectExternal(externalOut, merged.Out[0])
			replaceInterfaceEndpoint(net.Outputs, second.Out[0], merged.Out[0])
		}

		removeLeaves(first, second)
		return true
	}
	return false
}

func shapeCompatibleIgnoringConst(a, b *ir.DataType) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.IsArray != b.IsArray {
		return false
	}
	if a.SizeKnown() && b.SizeKnown() {
		return *a.ArraySize == *b.ArraySize
	}
	return a.SizeKnown() == b.SizeKnown()
}
