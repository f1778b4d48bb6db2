package modelmodifier

import "github.com/forsyde/f2cc-sub001/ir"

// IsDataParallel reports whether sec is data-parallel (spec §4.2.2): every
// branch is a non-empty chain of Map leaves, and all branches are pairwise
// equal as chains (same length; corresponding leaves identical modulo Id).
// Leaf value-equality (ir.Leaf.EqualModuloID), not reference equality, is
// used for the pairwise comparison.
func IsDataParallel(sec *Section) bool {
	if len(sec.Branches) == 0 {
		return false
	}
	for _, branch := range sec.Branches {
		if len(branch) == 0 {
			return false
		}
		for _, leaf := range branch {
			if leaf.Kind != ir.MapLeaf {
				return false
			}
		}
	}
	first := sec.Branches[0]
	for _, branch := range sec.Branches[1:] {
		if len(branch) != len(first) {
			return false
		}
		for i := range branch {
			if !branch[i].EqualModuloID(first[i]) {
				return false
			}
		}
	}
	return true
}

// ChainLength returns the (common, since IsDataParallel requires pairwise
// equal lengths) branch length of a data-parallel section, or 0 if sec has
// no branches.
func ChainLength(sec *Section) int {
	if len(sec.Branches) == 0 {
		return 0
	}
	return len(sec.Branches[0])
}
