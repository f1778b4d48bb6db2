package synthesizer

import (
	"testing"

	"github.com/forsyde/f2cc-sub001/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyConstness_MarksOnlyModelInputArrays(t *testing.T) {
	net := ir.NewProcessNetwork("test")
	a := ir.NewLeaf("a", ir.Comb)
	a.Functions = append(a.Functions, &ir.FunctionRecord{
		Name:       "f",
		Params:     []ir.Parameter{{Name: "x", Type: arrType(4)}},
		ReturnType: arrType(4),
	})
	a.AddIn(ir.NewPort("in1", ir.In, arrType(4)))
	a.AddOut(ir.NewPort("out1", ir.Out, arrType(4)))
	net.Root.AddChild(a)

	net.Inputs = append(net.Inputs, a.In[0])
	net.Outputs = append(net.Outputs, a.Out[0])

	set := CollectSignals(net, []*ir.Leaf{a})
	require.NoError(t, InferTypes(net, set))
	ApplyConstness(set)

	in := set.ForConsumer(a.In[0])
	out := set.ForProducer(a.Out[0])
	assert.True(t, in.Type.IsConst)
	assert.False(t, out.Type.IsConst)
}
