package modelmodifier

import (
	"testing"

	"github.com/forsyde/f2cc-sub001/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildEquivalentComposite builds a composite with a single boundary-crossed
// in/out Comb leaf, structurally identical across different ids/function
// instances sharing the same function name.
func buildEquivalentComposite(id string) *ir.Composite {
	c := ir.NewComposite(id)

	in := ir.NewIOPort("in1", ir.In)
	in.OutsideType = intType()
	in.InsideType = intType()
	c.AddIn(in)

	out := ir.NewIOPort("out1", ir.Out)
	out.OutsideType = intType()
	out.InsideType = intType()
	c.AddOut(out)

	comb := ir.NewLeaf("comb", ir.Comb)
	comb.Functions = append(comb.Functions, mapFunc("f"))
	comb.AddIn(ir.NewPort("in1", ir.In, intType()))
	comb.AddOut(ir.NewPort("out1", ir.Out, intType()))
	c.AddChild(comb)

	in.SetInside(comb.In[0])
	comb.In[0].SetPeer(in)
	out.SetInside(comb.Out[0])
	comb.Out[0].SetPeer(out)

	return c
}

func TestFlattenHierarchicalParallelism_CollapsesEquivalentComposites(t *testing.T) {
	net := ir.NewProcessNetwork("test")
	c1 := buildEquivalentComposite("unit1")
	c2 := buildEquivalentComposite("unit2")
	net.Root.AddChild(c1)
	net.Root.AddChild(c2)

	src1 := ir.NewLeaf("src1", ir.MapLeaf)
	src1.AddOut(ir.NewPort("out1", ir.Out, intType()))
	src2 := ir.NewLeaf("src2", ir.MapLeaf)
	src2.AddOut(ir.NewPort("out1", ir.Out, intType()))
	dst1 := ir.NewLeaf("dst1", ir.MapLeaf)
	dst1.AddIn(ir.NewPort("in1", ir.In, intType()))
	dst2 := ir.NewLeaf("dst2", ir.MapLeaf)
	dst2.AddIn(ir.NewPort("in1", ir.In, intType()))
	net.Root.AddChild(src1)
	net.Root.AddChild(src2)
	net.Root.AddChild(dst1)
	net.Root.AddChild(dst2)

	ir.Connect(src1.Out[0], c1.In[0])
	ir.Connect(c1.Out[0], dst1.In[0])
	ir.Connect(src2.Out[0], c2.In[0])
	ir.Connect(c2.Out[0], dst2.In[0])

	require.NoError(t, FlattenHierarchicalParallelism(net))

	assert.Nil(t, net.Root.Child("unit1"))
	assert.Nil(t, net.Root.Child("unit2"))

	var parallel *ir.ParallelComposite
	for _, child := range net.Root.Children {
		if pc, ok := child.(*ir.ParallelComposite); ok {
			parallel = pc
		}
	}
	require.NotNil(t, parallel)
	assert.Equal(t, 2, parallel.Replication)
	require.NotNil(t, parallel.Contained())

	var zipxCount, unzipxCount int
	for _, l := range net.Leaves() {
		switch l.Kind {
		case ir.ZipX:
			zipxCount++
		case ir.UnzipX:
			unzipxCount++
		}
	}
	assert.Equal(t, 1, zipxCount)
	assert.Equal(t, 1, unzipxCount)

	require.NoError(t, ir.CheckInvariants(net))
}

func TestFlattenHierarchicalParallelism_NoOpForSingleInstance(t *testing.T) {
	net := ir.NewProcessNetwork("test")
	c1 := buildEquivalentComposite("unit1")
	net.Root.AddChild(c1)
	require.NoError(t, FlattenHierarchicalParallelism(net))
	assert.NotNil(t, net.Root.Child("unit1"))
}
