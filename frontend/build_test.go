package frontend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forsyde/f2cc-sub001/errs"
	"github.com/forsyde/f2cc-sub001/ir"
)

const scenarioAXML = `<?xml version="1.0"?>
<process_network name="scenario_a">
  <port name="in1" direction="in" type="int32_t"/>
  <port name="in2" direction="in" type="int32_t"/>
  <port name="out1" direction="out" type="int32_t"/>
  <leaf_process name="zw1">
    <process_constructor name="ZipWithN" moc="sy">
      <argument value="int f(int x,int y){return x+y;}"/>
    </process_constructor>
    <port name="in1" direction="in" type="int32_t"/>
    <port name="in2" direction="in" type="int32_t"/>
    <port name="out1" direction="out" type="int32_t"/>
  </leaf_process>
  <signal source="f2cc0" source_port="in1" target="zw1" target_port="in1"/>
  <signal source="f2cc0" source_port="in2" target="zw1" target_port="in2"/>
  <signal source="zw1" source_port="out1" target="f2cc0" target_port="out1"/>
</process_network>
`

func TestBuild_ScenarioA(t *testing.T) {
	doc, err := decodeXML([]byte(scenarioAXML))
	require.NoError(t, err)

	net, err := Build(doc)
	require.NoError(t, err)

	require.NoError(t, PostCheck(net))

	assert.Len(t, net.Inputs, 2)
	assert.Len(t, net.Outputs, 1)

	leaves := net.Leaves()
	require.Len(t, leaves, 1)
	assert.Equal(t, ir.ZipWithN, leaves[0].Kind)
	assert.NotNil(t, net.LookupFunction("f"))
}

func TestBuild_UnsupportedConstructor(t *testing.T) {
	doc := &xmlProcessNetwork{
		Name: "bad",
		Leaves: []xmlLeaf{
			{Name: "x", Constructor: xmlConstructor{Name: "frobnicate"}},
		},
	}
	_, err := Build(doc)
	require.Error(t, err)
	code, ok := errs.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, errs.InvalidModel, code)
}

func TestBuild_FanoutInsertedOnSecondConsumer(t *testing.T) {
	doc := &xmlProcessNetwork{
		Name: "fanout_net",
		Leaves: []xmlLeaf{
			{
				Name:        "src",
				Constructor: xmlConstructor{Name: "comb", Arguments: []xmlArgument{{Value: "int g(int a){return a;}"}}},
				Ports:       []xmlPort{{Name: "out1", Direction: "out", Type: "int32_t"}},
			},
			{
				Name:        "a",
				Constructor: xmlConstructor{Name: "comb", Arguments: []xmlArgument{{Value: "int h1(int a){return a;}"}}},
				Ports:       []xmlPort{{Name: "in1", Direction: "in", Type: "int32_t"}},
			},
			{
				Name:        "b",
				Constructor: xmlConstructor{Name: "comb", Arguments: []xmlArgument{{Value: "int h2(int a){return a;}"}}},
				Ports:       []xmlPort{{Name: "in1", Direction: "in", Type: "int32_t"}},
			},
		},
		Signals: []xmlSignal{
			{Source: "src", SourcePort: "out1", Target: "a", TargetPort: "in1"},
			{Source: "src", SourcePort: "out1", Target: "b", TargetPort: "in1"},
		},
	}
	net, err := Build(doc)
	require.NoError(t, err)

	var foundFanout bool
	for _, l := range net.Leaves() {
		if l.Kind == ir.Fanout {
			foundFanout = true
			assert.Len(t, l.Out, 2)
		}
	}
	assert.True(t, foundFanout, "expected a fanout leaf to be inserted")
}
