// Package scheduler produces a total order over a ProcessNetwork's Leaves
// such that every non-delay signal's producer precedes its consumer (spec
// §4.3).
package scheduler

import (
	"github.com/forsyde/f2cc-sub001/errs"
	"github.com/forsyde/f2cc-sub001/ir"
)

type color int

const (
	white color = iota
	gray
	black
)

// Schedule runs a topological DFS, marking leaves gray/black for cycle
// detection across non-delay edges. Grounded on analyzer/touchpoint.go's
// applyTransitiveDependencies (a processed-map guard over a recursive
// call-graph walk), adapted from "collect transitive deps" to "topologically
// order, report cycles outside of delay edges."
//
// A Delay leaf's edges never constrain ordering — its two-phase execution
// (spec §4.4 steps 5 and 7) makes it a scheduling boundary rather than an
// ordinary producer/consumer — so neither an edge into nor an edge out of a
// Delay is followed when building the dependency walk, and a cycle closed
// only through Delay edges is accepted rather than reported.
//
// The walk starts from every leaf in ProcessNetwork.Leaves() registration
// order rather than literally starting from each model output (spec §4.3's
// "DFS from model outputs" describes the dependency direction, not a
// mandatory entry point): since Delay edges never constrain order, starting
// from the full leaf list reaches the identical dependency graph while also
// guaranteeing a leaf whose output feeds nothing still gets scheduled (spec
// §8 testable property 3).
func Schedule(net *ir.ProcessNetwork) ([]*ir.Leaf, error) {
	colors := map[string]color{}
	var order []*ir.Leaf

	var visit func(l *ir.Leaf) error
	visit = func(l *ir.Leaf) error {
		switch colors[l.ID()] {
		case black:
			return nil
		case gray:
			return errs.New(errs.InvalidModel, "scheduling cycle detected at leaf %q over non-delay edges", l.ID())
		}
		colors[l.ID()] = gray

		if l.Kind != ir.Delay {
			for _, in := range l.In {
				prod := ir.ProducerPort(in)
				if prod == nil {
					continue
				}
				up := ir.OwnerLeaf(prod)
				if up == nil || up.Kind == ir.Delay {
					continue
				}
				if err := visit(up); err != nil {
					return err
				}
			}
		}

		colors[l.ID()] = black
		order = append(order, l)
		return nil
	}

	for _, leaf := range net.Leaves() {
		if err := visit(leaf); err != nil {
			return nil, err
		}
	}
	return order, nil
}
