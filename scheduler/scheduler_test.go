package scheduler

import (
	"testing"

	"github.com/forsyde/f2cc-sub001/errs"
	"github.com/forsyde/f2cc-sub001/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intType() *ir.DataType { return &ir.DataType{Kind: ir.KindInt32} }

func combLeaf(id string) *ir.Leaf {
	l := ir.NewLeaf(id, ir.Comb)
	l.Functions = append(l.Functions, &ir.FunctionRecord{
		Name:       "f_" + id,
		ReturnType: intType(),
		Params:     []ir.Parameter{{Name: "x", Type: &ir.DataType{Kind: ir.KindInt32, IsConst: true}}},
	})
	l.AddIn(ir.NewPort("in1", ir.In, intType()))
	l.AddOut(ir.NewPort("out1", ir.Out, intType()))
	return l
}

func indexOf(order []*ir.Leaf, id string) int {
	for i, l := range order {
		if l.ID() == id {
			return i
		}
	}
	return -1
}

func TestSchedule_LinearChainOrdersProducerBeforeConsumer(t *testing.T) {
	net := ir.NewProcessNetwork("test")
	a := combLeaf("a")
	b := combLeaf("b")
	c := combLeaf("c")
	net.Root.AddChild(c)
	net.Root.AddChild(a)
	net.Root.AddChild(b)

	ir.Connect(a.Out[0], b.In[0])
	ir.Connect(b.Out[0], c.In[0])

	order, err := Schedule(net)
	require.NoError(t, err)
	require.Len(t, order, 3)
	assert.Less(t, indexOf(order, "a"), indexOf(order, "b"))
	assert.Less(t, indexOf(order, "b"), indexOf(order, "c"))
}

func TestSchedule_ReportsCycleOverNonDelayEdges(t *testing.T) {
	net := ir.NewProcessNetwork("test")
	a := combLeaf("a")
	b := combLeaf("b")
	net.Root.AddChild(a)
	net.Root.AddChild(b)

	ir.Connect(a.Out[0], b.In[0])
	ir.Connect(b.Out[0], a.In[0])

	_, err := Schedule(net)
	require.Error(t, err)
	code, ok := errs.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, errs.InvalidModel, code)
}

func TestSchedule_AcceptsCycleClosedThroughDelay(t *testing.T) {
	net := ir.NewProcessNetwork("test")
	m := combLeaf("m")
	d := ir.NewLeaf("d", ir.Delay)
	d.InitValue = "0"
	d.AddIn(ir.NewPort("in1", ir.In, intType()))
	d.AddOut(ir.NewPort("out1", ir.Out, intType()))
	net.Root.AddChild(m)
	net.Root.AddChild(d)

	ir.Connect(m.Out[0], d.In[0])
	ir.Connect(d.Out[0], m.In[0])

	order, err := Schedule(net)
	require.NoError(t, err)
	assert.Len(t, order, 2)
}

func TestSchedule_CoversEveryLeafIncludingUnconsumedOutput(t *testing.T) {
	net := ir.NewProcessNetwork("test")
	a := combLeaf("a")
	b := combLeaf("b") // unconnected, b's output feeds nothing
	net.Root.AddChild(a)
	net.Root.AddChild(b)

	order, err := Schedule(net)
	require.NoError(t, err)
	assert.Len(t, order, 2)
}
