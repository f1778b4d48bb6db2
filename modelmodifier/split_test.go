package modelmodifier

import (
	"testing"

	"github.com/forsyde/f2cc-sub001/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_InsertsZipUnzipPairAtEachBoundary(t *testing.T) {
	net := ir.NewProcessNetwork("test")
	sec := buildTwoStageSection(t, net)

	require.NoError(t, Split(net, sec))

	var zipxCount, unzipxCount int
	for _, l := range net.Leaves() {
		switch l.Kind {
		case ir.ZipX:
			zipxCount++
		case ir.UnzipX:
			unzipxCount++
		}
	}
	// Original diverge/converge plus one inserted pair at the single
	// boundary between stage 0 (m0/m1) and stage 1 (n0/n1).
	assert.Equal(t, 2, zipxCount)
	assert.Equal(t, 2, unzipxCount)

	// m0's out-port no longer connects directly to n0's in-port.
	m0 := sec.Branches[0][0].Out[0]
	n0 := sec.Branches[0][1].In[0]
	assert.NotEqual(t, ir.Endpoint(n0), m0.Peer())
}

func TestSplit_NoOpWhenChainLengthOne(t *testing.T) {
	net := ir.NewProcessNetwork("test")
	sec := buildOneStageSection(t, net)
	require.NoError(t, Split(net, sec))
	var zipxCount int
	for _, l := range net.Leaves() {
		if l.Kind == ir.ZipX {
			zipxCount++
		}
	}
	assert.Equal(t, 1, zipxCount)
}
