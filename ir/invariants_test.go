package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forsyde/f2cc-sub001/errs"
)

func TestCheckInvariants_EmptyNetworkOK(t *testing.T) {
	n := NewProcessNetwork("empty")
	assert.NoError(t, CheckInvariants(n))
}

func TestCheckInvariants_DuplicateProcessID(t *testing.T) {
	n := NewProcessNetwork("dup")
	l1 := NewLeaf("p1", Comb)
	l2 := NewLeaf("p1", Comb)
	n.Root.AddChild(l1)
	n.Root.Children = append(n.Root.Children, l2)

	err := CheckInvariants(n)
	require.Error(t, err)
	code, ok := errs.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, errs.InvalidModel, code)
}

func TestCheckInvariants_DelayArity(t *testing.T) {
	n := NewProcessNetwork("delay")
	d := NewLeaf("d1", Delay)
	d.AddIn(NewPort("in", In, &DataType{Kind: KindInt32}))
	n.Root.AddChild(d)

	err := CheckInvariants(n)
	require.Error(t, err)
	code, ok := errs.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, errs.InvalidProcess, code)
}

func TestCheckInvariants_PeerSymmetryHolds(t *testing.T) {
	n := NewProcessNetwork("peers")
	a := NewLeaf("a", Comb)
	b := NewLeaf("b", Comb)
	out := NewPort("out", Out, &DataType{Kind: KindInt32})
	in := NewPort("in", In, &DataType{Kind: KindInt32})
	a.AddOut(out)
	b.AddIn(in)
	Connect(out, in)
	n.Root.AddChild(a)
	n.Root.AddChild(b)

	assert.NoError(t, checkPeerSymmetry(out))
	assert.NoError(t, checkPeerSymmetry(in))
}

func TestCheckInvariants_HierarchyMismatch(t *testing.T) {
	n := NewProcessNetwork("hier")
	child := NewComposite("c1")
	n.Root.Children = append(n.Root.Children, child) // bypass AddChild: hierarchy left unset
	err := CheckInvariants(n)
	require.Error(t, err)
}

func TestCheckInvariants_FunctionRegistryKeyMismatch(t *testing.T) {
	n := NewProcessNetwork("fn")
	n.Functions["wrongkey"] = &FunctionRecord{Name: "actual"}
	err := CheckInvariants(n)
	require.Error(t, err)
	code, ok := errs.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, errs.IllegalState, code)
}
