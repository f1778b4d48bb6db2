package synthesizer

import (
	"testing"

	"github.com/forsyde/f2cc-sub001/errs"
	"github.com/forsyde/f2cc-sub001/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferTypes_ResolvesBoundarySignalsFromFunctionSignature(t *testing.T) {
	net, a := buildSingleCombNetwork(t)
	set := CollectSignals(net, []*ir.Leaf{a})

	require.NoError(t, InferTypes(net, set))

	in := set.ForConsumer(a.In[0])
	out := set.ForProducer(a.Out[0])
	assert.Equal(t, ir.KindInt32, in.Type.Kind)
	assert.Equal(t, ir.KindInt32, out.Type.Kind)
}

func TestInferTypes_PassesThroughAFanout(t *testing.T) {
	net := ir.NewProcessNetwork("test")
	a := combLeaf("a", "f")
	fo := ir.NewLeaf("fo1", ir.Fanout)
	fo.AddIn(ir.NewPort("in1", ir.In, &ir.DataType{}))
	fo.AddOut(ir.NewPort("out1", ir.Out, &ir.DataType{}))
	fo.AddOut(ir.NewPort("out2", ir.Out, &ir.DataType{}))
	b := combLeaf("b", "g")
	c := combLeaf("c", "h")

	net.Root.AddChild(a)
	net.Root.AddChild(fo)
	net.Root.AddChild(b)
	net.Root.AddChild(c)

	ir.Connect(a.Out[0], fo.In[0])
	ir.Connect(fo.Out[0], b.In[0])
	ir.Connect(fo.Out[1], c.In[0])

	set := CollectSignals(net, []*ir.Leaf{a, fo, b, c})
	require.NoError(t, InferTypes(net, set))

	assert.Equal(t, ir.KindInt32, set.ForProducer(fo.Out[0]).Type.Kind)
	assert.Equal(t, ir.KindInt32, set.ForProducer(fo.Out[1]).Type.Kind)
}

func TestInferTypes_ZipXTakesArrayOfBranchKind(t *testing.T) {
	net := ir.NewProcessNetwork("test")
	a := combLeaf("a", "f")
	b := combLeaf("b", "g")
	z := ir.NewLeaf("z1", ir.ZipX)
	z.AddIn(ir.NewPort("in1", ir.In, &ir.DataType{}))
	z.AddIn(ir.NewPort("in2", ir.In, &ir.DataType{}))
	z.AddOut(ir.NewPort("out1", ir.Out, &ir.DataType{}))

	net.Root.AddChild(a)
	net.Root.AddChild(b)
	net.Root.AddChild(z)

	ir.Connect(a.Out[0], z.In[0])
	ir.Connect(b.Out[0], z.In[1])

	set := CollectSignals(net, []*ir.Leaf{a, b, z})
	require.NoError(t, InferTypes(net, set))

	out := set.ForProducer(z.Out[0])
	assert.Equal(t, ir.KindInt32, out.Type.Kind)
	assert.True(t, out.Type.IsArray)
}

func TestInferTypes_ZipXBranchDisagreementIsInvalidModel(t *testing.T) {
	net := ir.NewProcessNetwork("test")
	a := combLeaf("a", "f")
	floatLeaf := ir.NewLeaf("b", ir.Comb)
	floatLeaf.Functions = append(floatLeaf.Functions, &ir.FunctionRecord{
		Name:       "g",
		Params:     []ir.Parameter{{Name: "x", Type: &ir.DataType{Kind: ir.KindFloat, IsConst: true}}},
		ReturnType: &ir.DataType{Kind: ir.KindFloat},
	})
	floatLeaf.AddIn(ir.NewPort("in1", ir.In, &ir.DataType{}))
	floatLeaf.AddOut(ir.NewPort("out1", ir.Out, &ir.DataType{}))

	z := ir.NewLeaf("z1", ir.ZipX)
	z.AddIn(ir.NewPort("in1", ir.In, &ir.DataType{}))
	z.AddIn(ir.NewPort("in2", ir.In, &ir.DataType{}))
	z.AddOut(ir.NewPort("out1", ir.Out, &ir.DataType{}))

	net.Root.AddChild(a)
	net.Root.AddChild(floatLeaf)
	net.Root.AddChild(z)

	ir.Connect(a.Out[0], z.In[0])
	ir.Connect(floatLeaf.Out[0], z.In[1])

	set := CollectSignals(net, []*ir.Leaf{a, floatLeaf, z})
	err := InferTypes(net, set)
	require.Error(t, err)
	code, ok := errs.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, errs.InvalidModel, code)
}
