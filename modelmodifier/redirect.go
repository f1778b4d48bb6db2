package modelmodifier

import (
	"github.com/forsyde/f2cc-sub001/errs"
	"github.com/forsyde/f2cc-sub001/ir"
)

// redirectFlow is the shared primitive behind split/coalesce/fuse (spec
// §4.2.3): replace the set of in-ports of an old-start process and the set
// of out-ports of an old-end process with those of a new-start/new-end pair,
// rewiring each external neighbour onto the corresponding new port and
// updating the network's model-level Inputs/Outputs lists when an external
// endpoint was one of them.
func redirectFlow(net *ir.ProcessNetwork, oldStart, oldEnd, newStart, newEnd *ir.Leaf) error {
	if len(oldStart.In) != len(newStart.In) {
		return errs.New(errs.IllegalState, "redirectFlow: in-port count mismatch (%d vs %d)", len(oldStart.In), len(newStart.In))
	}
	if len(oldEnd.Out) != len(newEnd.Out) {
		return errs.New(errs.IllegalState, "redirectFlow: out-port count mismatch (%d vs %d)", len(oldEnd.Out), len(newEnd.Out))
	}

	for i, oldPort := range oldStart.In {
		external := oldPort.Peer()
		ir.Disconnect(oldPort)
		if external == nil {
			continue
		}
		reconnectExternal(external, newStart.In[i])
		replaceInterfaceEndpoint(net.Inputs, oldPort, newStart.In[i])
	}
	for i, oldPort := range oldEnd.Out {
		external := oldPort.Peer()
		ir.Disconnect(oldPort)
		if external == nil {
			continue
		}
		reconnectExternal(external, newEnd.Out[i])
		replaceInterfaceEndpoint(net.Outputs, oldPort, newEnd.Out[i])
	}
	return nil
}

// reconnectExternal relinks external — the far endpoint of a connection
// whose near side is being rerouted onto newPort — for both shapes external
// can take. An ordinary sibling Port just gets a plain symmetric Connect.
// A composite's own boundary IOPort (DESIGN.md Open Question decision 5:
// Inside bound to the child endpoint, the child's Peer bound back to the
// IOPort) crosses the boundary via Inside, not Peer — Peer on an IOPort is
// reserved for its own outside/parent-level connection — so this repoints
// Inside at newPort instead of calling Connect, which would otherwise leave
// Inside dangling at the port being removed while spuriously overwriting
// the IOPort's outside binding.
func reconnectExternal(external ir.Endpoint, newPort *ir.Port) {
	if io, ok := external.(*ir.IOPort); ok {
		io.SetInside(newPort)
		newPort.SetPeer(io)
		return
	}
	ir.Connect(external, newPort)
}

// replaceInterfaceEndpoint swaps a model-level Inputs/Outputs list entry
// that pointed at oldEP to point at newEP instead, when present.
func replaceInterfaceEndpoint(list []ir.Endpoint, oldEP, newEP ir.Endpoint) {
	for i, e := range list {
		if e == oldEP {
			list[i] = newEP
		}
	}
}

// removeLeaves detaches every leaf in leaves from its parent composite.
func removeLeaves(leaves ...*ir.Leaf) {
	for _, l := range leaves {
		if p := l.Parent(); p != nil {
			p.RemoveChild(l.ID())
		}
	}
}
