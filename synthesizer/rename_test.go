package synthesizer

import (
	"testing"

	"github.com/forsyde/f2cc-sub001/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenameFunctions_GivesEachLeafOccurrenceAUniqueName(t *testing.T) {
	shared := combFunc("f")
	a := ir.NewLeaf("a", ir.Comb)
	a.Functions = append(a.Functions, shared)
	b := ir.NewLeaf("b", ir.Comb)
	b.Functions = append(b.Functions, shared)

	RenameFunctions([]*ir.Leaf{a, b})

	assert.Equal(t, "fa_f0", a.Functions[0].Name)
	assert.Equal(t, "fb_f0", b.Functions[0].Name)
	assert.NotSame(t, a.Functions[0], b.Functions[0])
	// The shared registry record itself is untouched.
	assert.Equal(t, "f", shared.Name)
}

func TestDeduplicateFunctions_MergesIdenticalBodies(t *testing.T) {
	a := ir.NewLeaf("a", ir.Comb)
	a.Functions = append(a.Functions, &ir.FunctionRecord{Name: "f1", Body: "return x + 1;"})
	b := ir.NewLeaf("b", ir.Comb)
	b.Functions = append(b.Functions, &ir.FunctionRecord{Name: "f2", Body: "return x + 1;"})
	c := ir.NewLeaf("c", ir.Comb)
	c.Functions = append(c.Functions, &ir.FunctionRecord{Name: "f3", Body: "return x - 1;"})

	schedule := []*ir.Leaf{a, b, c}
	require.NoError(t, DeduplicateFunctions(schedule))

	assert.Same(t, a.Functions[0], b.Functions[0])
	assert.NotSame(t, a.Functions[0], c.Functions[0])

	uniq := UniqueFunctions(schedule)
	require.Len(t, uniq, 2)
}

func TestUniqueFunctions_ReturnsReverseScheduleOrderWithWrappersAfterInner(t *testing.T) {
	inner := &ir.FunctionRecord{Name: "inner", Body: "inner-body"}
	wrapper := &ir.FunctionRecord{Name: "wrapper", Body: "wrapper-body"}

	a := ir.NewLeaf("a", ir.Comb)
	a.Functions = append(a.Functions, &ir.FunctionRecord{Name: "a_fn", Body: "a-body"})
	coalesced := ir.NewLeaf("c", ir.CoalescedMap)
	// Step 4's convention: wrapper at index 0, inner stage functions after.
	coalesced.Functions = append(coalesced.Functions, wrapper, inner)

	schedule := []*ir.Leaf{a, coalesced}
	uniq := UniqueFunctions(schedule)

	require.Len(t, uniq, 3)
	// Reverse schedule order: coalesced's functions before a's.
	innerIdx, wrapperIdx, aIdx := -1, -1, -1
	for i, fn := range uniq {
		switch fn.Name {
		case "inner":
			innerIdx = i
		case "wrapper":
			wrapperIdx = i
		case "a_fn":
			aIdx = i
		}
	}
	assert.Less(t, innerIdx, wrapperIdx, "inner function must be emitted before the wrapper that calls it")
	assert.Less(t, wrapperIdx, aIdx, "coalesced leaf's functions come before leaf a's in reverse-schedule order")
}
