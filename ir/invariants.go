package ir

import "github.com/forsyde/f2cc-sub001/errs"

// CheckInvariants verifies the structural invariants from spec §3 that must
// hold after every pass. It is run by the Frontend after parsing and by
// tests after each ModelModifier pass (spec §8 testable property 1). The
// Model-of-Computation invariant (7) is not checked: every process reports
// the same MoC, so no cross-MoC edge can arise.
func CheckInvariants(n *ProcessNetwork) error {
	if n == nil || n.Root == nil {
		return errs.New(errs.InvalidModel, "process network has no root composite")
	}

	seenProcessIDs := map[string]map[string]bool{} // parent id -> child id -> seen
	functionNames := map[string]bool{}
	for name, f := range n.Functions {
		if name != f.Name {
			return errs.New(errs.IllegalState, "function registry key %q does not match record name %q", name, f.Name)
		}
		if functionNames[name] {
			return errs.New(errs.IllegalState, "duplicate function name %q in registry", name)
		}
		functionNames[name] = true
	}

	var visit func(c *Composite) error
	visit = func(c *Composite) error {
		ids := map[string]bool{}
		for _, child := range c.Children {
			if ids[child.ID()] {
				return errs.New(errs.InvalidModel, "duplicate process id %q within parent %q", child.ID(), c.ID())
			}
			ids[child.ID()] = true

			// invariant 3: hierarchy matches physical containment
			wantHierarchy := append(c.Hierarchy().Clone(), c.ID())
			if !child.Hierarchy().Equal(wantHierarchy) {
				return errs.New(errs.InvalidModel, "process %q hierarchy %v does not match containment under %q (want %v)",
					child.ID(), child.Hierarchy(), c.ID(), wantHierarchy)
			}

			switch v := child.(type) {
			case *Leaf:
				if err := checkLeafPorts(v); err != nil {
					return err
				}
				if err := checkLeafPortSymmetry(v); err != nil {
					return err
				}
			case *Composite:
				if err := checkIOPortSymmetry(v); err != nil {
					return err
				}
				if err := visit(v); err != nil {
					return err
				}
			case *ParallelComposite:
				if err := checkIOPortSymmetry(&v.Composite); err != nil {
					return err
				}
				if err := visit(&v.Composite); err != nil {
					return err
				}
			default:
				return errs.New(errs.Cast, "process %q is neither Leaf nor Composite", child.ID())
			}
		}
		seenProcessIDs[c.ID()] = ids
		return nil
	}
	if err := checkIOPortSymmetry(n.Root); err != nil {
		return err
	}
	return visit(n.Root)
}

// checkLeafPorts verifies invariant 4: leaf-variant-specific structural
// constraints (in/out degree, function arity consistency).
func checkLeafPorts(l *Leaf) error {
	switch l.Kind {
	case Delay:
		if len(l.In) != 1 || len(l.Out) != 1 {
			return errs.New(errs.InvalidProcess, "delay %q must have exactly 1 in-port and 1 out-port, has %d/%d", l.ID(), len(l.In), len(l.Out))
		}
	case Fanout:
		if len(l.In) != 1 {
			return errs.New(errs.InvalidProcess, "fanout %q must have exactly 1 in-port, has %d", l.ID(), len(l.In))
		}
	case ZipX:
		if len(l.Out) != 1 {
			return errs.New(errs.InvalidProcess, "zipx %q must have exactly 1 out-port, has %d", l.ID(), len(l.Out))
		}
	case UnzipX:
		if len(l.In) != 1 {
			return errs.New(errs.InvalidProcess, "unzipx %q must have exactly 1 in-port, has %d", l.ID(), len(l.In))
		}
	case Comb, MapLeaf, CoalescedMap, ParallelMap, ZipWithN:
		if len(l.Out) != 1 && len(l.Functions) > 0 && !l.Functions[0].IsVoidReturning() {
			return errs.New(errs.InvalidProcess, "combinatorial leaf %q with value-returning function must have exactly 1 out-port, has %d", l.ID(), len(l.Out))
		}
		for _, f := range l.Functions {
			if f == nil {
				continue
			}
			if err := f.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkLeafPortSymmetry(l *Leaf) error {
	for _, p := range l.In {
		if p.Owner() != Process(l) {
			return errs.New(errs.InvalidModel, "port %q claims owner mismatch on leaf %q", p.Id, l.ID())
		}
		if err := checkPeerSymmetry(p); err != nil {
			return err
		}
	}
	for _, p := range l.Out {
		if p.Owner() != Process(l) {
			return errs.New(errs.InvalidModel, "port %q claims owner mismatch on leaf %q", p.Id, l.ID())
		}
		if err := checkPeerSymmetry(p); err != nil {
			return err
		}
	}
	return nil
}

func checkIOPortSymmetry(c *Composite) error {
	for _, p := range c.In {
		if err := checkPeerSymmetry(p); err != nil {
			return err
		}
	}
	for _, p := range c.Out {
		if err := checkPeerSymmetry(p); err != nil {
			return err
		}
	}
	return nil
}

// checkPeerSymmetry verifies invariant 2: P.peer != nil => P.peer.peer == P,
// with one exception — a composite-boundary crossing (DESIGN.md Open
// Question decision 5) binds the child endpoint's Peer to the boundary
// IOPort while the IOPort's own reciprocal is its Inside, not its Peer (Peer
// is reserved on an IOPort for its own outside/parent-level connection).
// Either shape counts as symmetric.
func checkPeerSymmetry(e Endpoint) error {
	peer := e.Peer()
	if peer == nil {
		return nil
	}
	if peer.Peer() == e {
		return nil
	}
	if io, ok := peer.(*IOPort); ok && io.Inside() == e {
		return nil
	}
	return errs.New(errs.InvalidModel, "connection asymmetry at %q: peer does not reciprocate", e.EndpointID())
}
