package frontend

import (
	"strings"

	"github.com/forsyde/f2cc-sub001/ir"
)

// placeholderNames are the conventional leaf names used by legacy models to
// mark the network's external interface before dedicated model-level
// Inputs/Outputs lists existed (spec §4.1 "Post-check fixes").
const (
	inportPlaceholderName  = "inport"
	outportPlaceholderName = "outport"
)

// PostCheck promotes the inputs/outputs of a legacy inport/outport
// placeholder leaf (if present) into the Process Network-level input/output
// interface lists, deletes those placeholder leaves, then runs the generic
// invariant check (spec §4.1). The promotion only applies when the network
// has no root-level boundary ports of its own — the rich dialect expresses
// the model interface directly as process_network's own `port` elements
// (populated into Inputs/Outputs by Build), so legacy promotion is purely a
// GraphML-dialect fallback.
func PostCheck(net *ir.ProcessNetwork) error {
	if len(net.Inputs) == 0 && len(net.Outputs) == 0 {
		promotePlaceholders(net)
	}
	return ir.CheckInvariants(net)
}

func promotePlaceholders(net *ir.ProcessNetwork) {
	var toRemove []string
	for _, leaf := range net.Root.Children {
		l, ok := leaf.(*ir.Leaf)
		if !ok {
			continue
		}
		name := strings.ToLower(l.ID())
		switch {
		case strings.Contains(name, inportPlaceholderName):
			for _, p := range l.Out {
				net.Inputs = append(net.Inputs, p)
			}
			toRemove = append(toRemove, l.ID())
		case strings.Contains(name, outportPlaceholderName):
			for _, p := range l.In {
				net.Outputs = append(net.Outputs, p)
			}
			toRemove = append(toRemove, l.ID())
		}
	}
	for _, id := range toRemove {
		net.Root.RemoveChild(id)
	}
}
