package ir

// ResolveLeafPort follows an Endpoint's chain of IOPort inside-bindings
// downward until it reaches a concrete Leaf Port (or nil, meaning the chain
// terminates without reaching a leaf — a dangling/unbound composite
// boundary). Used to flatten hierarchical routing when descending from a
// known outer boundary crossing toward the model's leaves (e.g. the
// dumper's boundary-port bindings and the synthesizer's model input/output
// parameters).
func ResolveLeafPort(e Endpoint) *Port {
	for {
		switch v := e.(type) {
		case *Port:
			return v
		case *IOPort:
			inside := v.Inside()
			if inside == nil {
				return nil
			}
			e = inside
		default:
			return nil
		}
	}
}

// followBoundary walks a chain of composite-boundary crossings starting from
// e, in the direction implied by chaseProducer. A signal that crosses a
// composite boundary binds the crossed IOPort's Inside to the child endpoint
// and the child endpoint's Peer back to that IOPort (spec §4.1's nested-IOPort
// binding convention, DESIGN.md Open Question decision 5); resolving the real
// producer or consumer of a leaf port therefore means, at every IOPort hop,
// choosing to descend (follow Inside, into the composite) or continue
// ascending (follow Peer, further out of the composite) depending on which
// side of the crossing carries the data we are chasing:
//   - chasing a producer: an Out-direction IOPort carries its producer on the
//     Inside (data leaves the composite through it, so the source is inside);
//     an In-direction IOPort carries its producer further outside (follow Peer).
//   - chasing a consumer: the same rule with the two directions swapped.
func followBoundary(e Endpoint, chaseProducer bool) *Port {
	for {
		switch v := e.(type) {
		case *Port:
			return v
		case *IOPort:
			descend := (v.Direction == Out) == chaseProducer
			var next Endpoint
			if descend {
				next = v.Inside()
			} else {
				next = v.Peer()
			}
			if next == nil {
				return nil
			}
			e = next
		default:
			return nil
		}
	}
}

// ProducerPort returns the Port driving p, resolved through any number of
// composite boundaries, or nil if p is driven by a model-level input.
func ProducerPort(p *Port) *Port {
	peer := p.Peer()
	if peer == nil {
		return nil
	}
	return followBoundary(peer, true)
}

// ConsumerPorts returns every leaf Port that p drives. A single out-port has
// exactly one Peer in this IR (fan-out is made explicit by the Frontend's
// fanout-leaf insertion, spec §4.1), so this always has at most one element;
// it returns a slice for symmetry with call sites that iterate consumers.
func ConsumerPorts(p *Port) []*Port {
	peer := p.Peer()
	if peer == nil {
		return nil
	}
	if leaf := followBoundary(peer, false); leaf != nil {
		return []*Port{leaf}
	}
	return nil
}

// OwnerLeaf returns the Leaf owning p, or nil if p belongs to an IOPort's
// owning Composite instead.
func OwnerLeaf(p *Port) *Leaf {
	if p == nil {
		return nil
	}
	if l, ok := p.Owner().(*Leaf); ok {
		return l
	}
	return nil
}
