package modelmodifier

import "github.com/forsyde/f2cc-sub001/ir"

// NormalizeArity rewrites every ZipWithN leaf with a single in-port into a
// plain Map leaf (spec §4.2.6): zipping a single signal is a no-op, so the
// two leaf kinds are equivalent once arity has collapsed to 1. No rewiring is
// needed — the port shape is already exactly a Map's.
func NormalizeArity(net *ir.ProcessNetwork) {
	for _, leaf := range net.Leaves() {
		if leaf.Kind == ir.ZipWithN && len(leaf.In) == 1 {
			leaf.Kind = ir.MapLeaf
		}
	}
}
