package modelmodifier

import (
	"testing"

	"github.com/forsyde/f2cc-sub001/config"
	"github.com/forsyde/f2cc-sub001/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDefaultPasses_FusesChainLengthOneSection(t *testing.T) {
	net := ir.NewProcessNetwork("test")
	buildOneStageSection(t, net)

	res, err := RunDefaultPasses(net, config.DefaultConfig())
	require.NoError(t, err)
	assert.Nil(t, res.PipelineStages)

	leaves := net.Leaves()
	require.Len(t, leaves, 1)
	assert.Equal(t, ir.ParallelMap, leaves[0].Kind)
}

func TestRunDefaultPasses_CoalescesChainLengthTwoSection(t *testing.T) {
	net := ir.NewProcessNetwork("test")
	buildTwoStageSection(t, net)

	_, err := RunDefaultPasses(net, nil)
	require.NoError(t, err)

	var coalesced int
	for _, l := range net.Leaves() {
		if l.Kind == ir.CoalescedMap {
			coalesced++
		}
	}
	assert.Equal(t, 2, coalesced)
}

func TestRunDefaultPasses_WithPipelineStagesEnabled(t *testing.T) {
	net := ir.NewProcessNetwork("test")
	buildOneStageSection(t, net)

	cfg := config.DefaultConfig()
	cfg.ExperimentalPipelineStages = true
	res, err := RunDefaultPasses(net, cfg)
	require.NoError(t, err)
	require.NotNil(t, res.PipelineStages)
	for _, leaf := range net.Leaves() {
		_, ok := res.PipelineStages[leaf.ID()]
		assert.True(t, ok)
	}
}
