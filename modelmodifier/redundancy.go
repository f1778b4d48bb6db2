package modelmodifier

import (
	"github.com/forsyde/f2cc-sub001/errs"
	"github.com/forsyde/f2cc-sub001/ir"
)

// RemoveRedundantRouting deletes every zipx/unzipx leaf that has degenerated
// to a single in-port and single out-port (spec §4.2.5): such a leaf no
// longer does any converging or diverging, so it is short-circuited by
// connecting its producer directly to its consumer.
//
// Both sides are required to be bound (DESIGN.md Open Question decision 1:
// the null/null case cannot arise for a leaf that survived CheckInvariants,
// since an unbound port would already have failed invariant checking or
// never have been wired in the first place) — a bound leaf with either side
// left nil indicates a modelmodifier bug and is reported as errs.IllegalState
// rather than silently skipped.
func RemoveRedundantRouting(net *ir.ProcessNetwork) error {
	for _, leaf := range net.Leaves() {
		if (leaf.Kind != ir.ZipX && leaf.Kind != ir.UnzipX) || len(leaf.In) != 1 || len(leaf.Out) != 1 {
			continue
		}
		in := leaf.In[0]
		out := leaf.Out[0]
		producer := in.Peer()
		consumer := out.Peer()
		if producer == nil || consumer == nil {
			return errs.New(errs.IllegalState, "redundant routing leaf %q has an unbound port", leaf.ID())
		}

		ir.Disconnect(in)
		ir.Disconnect(out)
		ir.Connect(producer, consumer)
		// net.Inputs/Outputs hold the *inside* port a model/composite boundary
		// feeds or is fed by (frontend/build.go's own convention). After
		// splicing producer straight to consumer, the new inside-facing
		// endpoint on in's side is consumer (whatever out used to feed), and
		// symmetrically on out's side it is producer — not the other way
		// round.
		replaceInterfaceEndpoint(net.Inputs, in, consumer)
		replaceInterfaceEndpoint(net.Outputs, out, producer)

		removeLeaves(leaf)
	}
	return nil
}
