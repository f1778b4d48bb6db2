package dumper

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forsyde/f2cc-sub001/frontend"
	"github.com/forsyde/f2cc-sub001/ir"
)

// buildSampleNetwork wires two model inputs and one model output through a
// ZipWithN leaf, using the same root-IOPort Inside/Peer self-reference
// convention Frontend's Build produces for a boundary-crossing signal
// (DESIGN.md Open Question decision 5).
func buildSampleNetwork(t *testing.T) *ir.ProcessNetwork {
	t.Helper()
	net := ir.NewProcessNetwork("sample")

	zw := ir.NewLeaf("zw1", ir.ZipWithN)
	zw.Functions = append(zw.Functions, &ir.FunctionRecord{
		Name:       "f",
		Signature:  "int f(int x,int y){return x+y;}",
		Params:     []ir.Parameter{{Name: "x", Type: &ir.DataType{Kind: ir.KindInt32, IsConst: true}}, {Name: "y", Type: &ir.DataType{Kind: ir.KindInt32, IsConst: true}}},
		ReturnType: &ir.DataType{Kind: ir.KindInt32},
	})
	zw.AddIn(ir.NewPort("in1", ir.In, &ir.DataType{Kind: ir.KindInt32}))
	zw.AddIn(ir.NewPort("in2", ir.In, &ir.DataType{Kind: ir.KindInt32}))
	zw.AddOut(ir.NewPort("out1", ir.Out, &ir.DataType{Kind: ir.KindInt32}))
	net.Root.AddChild(zw)

	rootIn1 := ir.NewIOPort("in1", ir.In)
	rootIn1.SetInside(zw.In[0])
	zw.In[0].SetPeer(rootIn1)
	net.Root.AddIn(rootIn1)

	rootIn2 := ir.NewIOPort("in2", ir.In)
	rootIn2.SetInside(zw.In[1])
	zw.In[1].SetPeer(rootIn2)
	net.Root.AddIn(rootIn2)

	rootOut1 := ir.NewIOPort("out1", ir.Out)
	rootOut1.SetInside(zw.Out[0])
	zw.Out[0].SetPeer(rootOut1)
	net.Root.AddOut(rootOut1)

	net.Inputs = append(net.Inputs, zw.In[0], zw.In[1])
	net.Outputs = append(net.Outputs, zw.Out[0])

	return net
}

func TestRender_EmitsExpectedElements(t *testing.T) {
	net := buildSampleNetwork(t)

	text, err := New().Render(net)
	require.NoError(t, err)

	assert.Contains(t, text, `<process_network name="sample">`)
	assert.Contains(t, text, `<leaf_process name="zw1">`)
	assert.Contains(t, text, `name="ZipWithN"`)
	assert.Contains(t, text, `int f(int x,int y){return x+y;}`)
	assert.Contains(t, text, `<signal source="f2cc0" source_port="in1" target="zw1" target_port="in1"/>`)
	assert.Contains(t, text, `<signal source="f2cc0" source_port="in2" target="zw1" target_port="in2"/>`)
	assert.Contains(t, text, `<signal source="zw1" source_port="out1" target="f2cc0" target_port="out1"/>`)
}

func TestRender_SignalNotNestedInsideLeafProcess(t *testing.T) {
	net := buildSampleNetwork(t)

	text, err := New().Render(net)
	require.NoError(t, err)

	closeIdx := indexOf(t, text, "</leaf_process>")
	sigIdx := indexOf(t, text, `<signal source="f2cc0" source_port="in1"`)
	assert.Greater(t, sigIdx, closeIdx, "signal element must be a sibling of leaf_process, not nested inside it")
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	i := -1
	for n := 0; n+len(needle) <= len(haystack); n++ {
		if haystack[n:n+len(needle)] == needle {
			i = n
			break
		}
	}
	require.GreaterOrEqual(t, i, 0, "expected to find %q", needle)
	return i
}

func TestRenderThenParse_RoundTripsToEquivalentGraph(t *testing.T) {
	net := buildSampleNetwork(t)

	text, err := New().Render(net)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dump.xml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))

	reparsed, err := frontend.New().Parse(context.Background(), path)
	require.NoError(t, err)

	assert.Len(t, reparsed.Inputs, 2)
	assert.Len(t, reparsed.Outputs, 1)

	leaves := reparsed.Leaves()
	require.Len(t, leaves, 1)
	assert.Equal(t, ir.ZipWithN, leaves[0].Kind)
	assert.NotNil(t, reparsed.LookupFunction("f"))
}
