package frontend

import (
	"testing"

	"github.com/forsyde/f2cc-sub001/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyGraphML = `<?xml version="1.0"?>
<graphml>
  <graph id="legacy_net">
    <node id="p1">
      <data key="leaf_type">comb</data>
      <data key="procfun_arg">int id1(int x){return x;}</data>
    </node>
    <node id="p2">
      <data key="leaf_type">comb</data>
      <data key="procfun_arg">int id2(int x){return x;}</data>
    </node>
    <edge source="p1" target="p2">
      <data key="array_size"></data>
    </edge>
  </graph>
</graphml>
`

func TestDecodeGraphML(t *testing.T) {
	assert.True(t, looksLikeGraphML([]byte(legacyGraphML)))

	doc, err := decodeGraphML([]byte(legacyGraphML))
	require.NoError(t, err)
	assert.Equal(t, "legacy_net", doc.Name)
	require.Len(t, doc.Leaves, 2)
	require.Len(t, doc.Signals, 1)
	assert.Equal(t, "p1", doc.Signals[0].Source)
	assert.Equal(t, "p2", doc.Signals[0].Target)

	net, err := Build(doc)
	require.NoError(t, err)
	assert.Len(t, net.Leaves(), 2)
}

// legacyGraphMLSYSuffixed exercises the real GraphML dialect's leaf_type
// vocabulary, which suffixes every constructor name with "sy"
// (_examples/original_source/.../graphmlparser.cpp): "unzipxsy"/"zipxsy"/
// "delaysy", not the bare "unzipx"/"zipx"/"delay" the rich XML dialect uses.
const legacyGraphMLSYSuffixed = `<?xml version="1.0"?>
<graphml>
  <graph id="legacy_net_sy">
    <node id="src">
      <data key="leaf_type">unzipxsy</data>
    </node>
    <node id="z">
      <data key="leaf_type">zipxsy</data>
    </node>
    <node id="d">
      <data key="leaf_type">delaysy</data>
      <data key="initial_value">0</data>
    </node>
    <edge source="src" target="z">
      <data key="array_size"></data>
    </edge>
    <edge source="z" target="d">
      <data key="array_size"></data>
    </edge>
  </graph>
</graphml>
`

func TestDecodeGraphML_DispatchesSYSuffixedLeafTypes(t *testing.T) {
	doc, err := decodeGraphML([]byte(legacyGraphMLSYSuffixed))
	require.NoError(t, err)

	net, err := Build(doc)
	require.NoError(t, err)

	byID := map[string]*ir.Leaf{}
	for _, l := range net.Leaves() {
		byID[l.ID()] = l
	}
	require.Len(t, byID, 3)
	assert.Equal(t, ir.UnzipX, byID["src"].Kind)
	assert.Equal(t, ir.ZipX, byID["z"].Kind)
	assert.Equal(t, ir.Delay, byID["d"].Kind)
}
