package modelmodifier

import (
	"testing"

	"github.com/forsyde/f2cc-sub001/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intType() *ir.DataType { return &ir.DataType{Kind: ir.KindInt32} }

func mapFunc(name string) *ir.FunctionRecord {
	return &ir.FunctionRecord{
		Name:       name,
		Params:     []ir.Parameter{{Name: "x", Type: &ir.DataType{Kind: ir.KindInt32, IsConst: true}}},
		ReturnType: &ir.DataType{Kind: ir.KindInt32},
	}
}

func mapLeaf(id, fnName string) *ir.Leaf {
	l := ir.NewLeaf(id, ir.MapLeaf)
	l.Functions = append(l.Functions, mapFunc(fnName))
	l.AddIn(ir.NewPort("in1", ir.In, intType()))
	l.AddOut(ir.NewPort("out1", ir.Out, intType()))
	return l
}

// buildTwoStageSection builds unzipx -> (m0/m1, n0/n1) -> zipx, a two-branch,
// two-stage data-parallel section, under net.Root.
func buildTwoStageSection(t *testing.T, net *ir.ProcessNetwork) *Section {
	t.Helper()
	root := net.Root

	unzipx := ir.NewLeaf("u1", ir.UnzipX)
	unzipx.AddIn(ir.NewPort("in1", ir.In, intType()))
	unzipx.AddOut(ir.NewPort("out1", ir.Out, intType()))
	unzipx.AddOut(ir.NewPort("out2", ir.Out, intType()))
	root.AddChild(unzipx)

	zipx := ir.NewLeaf("z1", ir.ZipX)
	zipx.AddIn(ir.NewPort("in1", ir.In, intType()))
	zipx.AddIn(ir.NewPort("in2", ir.In, intType()))
	zipx.AddOut(ir.NewPort("out1", ir.Out, intType()))
	root.AddChild(zipx)

	m0 := mapLeaf("m0", "f")
	n0 := mapLeaf("n0", "g")
	m1 := mapLeaf("m1", "f")
	n1 := mapLeaf("n1", "g")
	root.AddChild(m0)
	root.AddChild(n0)
	root.AddChild(m1)
	root.AddChild(n1)

	ir.Connect(unzipx.Out[0], m0.In[0])
	ir.Connect(m0.Out[0], n0.In[0])
	ir.Connect(n0.Out[0], zipx.In[0])

	ir.Connect(unzipx.Out[1], m1.In[0])
	ir.Connect(m1.Out[0], n1.In[0])
	ir.Connect(n1.Out[0], zipx.In[1])

	return &Section{
		Diverge:  unzipx,
		Converge: zipx,
		Branches: [][]*ir.Leaf{{m0, n0}, {m1, n1}},
	}
}

func TestCoalesce_ReplacesEachBranchWithSingleLeaf(t *testing.T) {
	net := ir.NewProcessNetwork("test")
	sec := buildTwoStageSection(t, net)
	require.True(t, IsDataParallel(sec))
	require.Equal(t, 2, ChainLength(sec))

	require.NoError(t, Coalesce(net, sec))

	leaves := net.Leaves()
	var coalesced []*ir.Leaf
	for _, l := range leaves {
		if l.Kind == ir.CoalescedMap {
			coalesced = append(coalesced, l)
		}
	}
	require.Len(t, coalesced, 2)
	for _, l := range coalesced {
		assert.Len(t, l.Functions, 2)
		assert.Equal(t, "f", l.Functions[0].Name)
		assert.Equal(t, "g", l.Functions[1].Name)
		assert.Len(t, l.In, 1)
		assert.Len(t, l.Out, 1)
	}

	for _, id := range []string{"m0", "n0", "m1", "n1"} {
		assert.Nil(t, net.Root.Child(id))
	}
}

func TestCoalesce_NoOpWhenChainLengthOne(t *testing.T) {
	net := ir.NewProcessNetwork("test")
	sec := buildTwoStageSection(t, net)
	sec.Branches = [][]*ir.Leaf{{sec.Branches[0][0]}, {sec.Branches[1][0]}}
	require.NoError(t, Coalesce(net, sec))
	assert.NotNil(t, net.Root.Child("m0"))
}
