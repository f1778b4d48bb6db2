package synthesizer

import (
	"testing"

	"github.com/forsyde/f2cc-sub001/errs"
	"github.com/forsyde/f2cc-sub001/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEmitComb_RejectsIncompatibleOutputType exercises spec §4.4's emit-time
// compatibility check: a's function "f" returns int32, but its out-port
// Signal is forced to double (e.g. inference gone wrong, or a hand-edited
// model) — emitComb must reject rather than generate a mismatched C
// assignment.
func TestEmitComb_RejectsIncompatibleOutputType(t *testing.T) {
	net, a := buildSingleCombNetwork(t)
	set := CollectSignals(net, []*ir.Leaf{a})
	set.ForConsumer(a.In[0]).Type = intType()
	set.ForProducer(a.Out[0]).Type = &ir.DataType{Kind: ir.KindDouble}

	_, err := emitLeaf(set, a)
	require.Error(t, err)
	code, ok := errs.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, errs.InvalidModel, code)
}

// TestEmitComb_RejectsConstDestination exercises the "destination not const"
// half of the same check.
func TestEmitComb_RejectsConstDestination(t *testing.T) {
	net, a := buildSingleCombNetwork(t)
	set := CollectSignals(net, []*ir.Leaf{a})
	set.ForConsumer(a.In[0]).Type = intType()
	set.ForProducer(a.Out[0]).Type = &ir.DataType{Kind: ir.KindInt32, IsConst: true}

	_, err := emitLeaf(set, a)
	require.Error(t, err)
	code, ok := errs.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, errs.InvalidModel, code)
}

// TestEmitFanout_RejectsBranchSizeMismatch exercises the array-size half of
// the check across a direct in-to-out copy.
func TestEmitFanout_RejectsBranchSizeMismatch(t *testing.T) {
	net := ir.NewProcessNetwork("test")
	fo := ir.NewLeaf("fo1", ir.Fanout)
	n4, n8 := 4, 8
	fo.AddIn(ir.NewPort("in1", ir.In, &ir.DataType{Kind: ir.KindInt32, IsArray: true, ArraySize: &n4}))
	fo.AddOut(ir.NewPort("out1", ir.Out, &ir.DataType{Kind: ir.KindInt32, IsArray: true, ArraySize: &n8}))
	net.Root.AddChild(fo)
	net.Inputs = append(net.Inputs, fo.In[0])
	net.Outputs = append(net.Outputs, fo.Out[0])

	set := CollectSignals(net, []*ir.Leaf{fo})
	set.ForConsumer(fo.In[0]).Type = fo.In[0].Type
	set.ForProducer(fo.Out[0]).Type = fo.Out[0].Type

	_, err := emitLeaf(set, fo)
	require.Error(t, err)
	code, ok := errs.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, errs.InvalidModel, code)
}
