// Package synthesizer schedules and emits target code for a transformed
// Process Network: signal-variable allocation, type/array-size inference,
// wrapper synthesis, and header/implementation text generation (spec §4.4).
package synthesizer

import (
	"sort"
	"strconv"
	"strings"

	"github.com/forsyde/f2cc-sub001/ir"
)

// Signal is the synthesizer-local view of one edge (spec §3 "Signal"): a
// pair of (out-port, in-port) with at most one side nil. Nil OutPort means
// the edge is driven by a process-network input; nil InPort means it drives
// a process-network output.
type Signal struct {
	OutPort *ir.Port
	InPort  *ir.Port
	Type    *ir.DataType // populated by InferTypes; nil until then

	varName string
}

// key is the structural dedup key spec §9 prescribes: "two Signals are
// equal iff they name the same (out-port, in-port) pair of indices."
type key struct {
	out *ir.Port
	in  *ir.Port
}

// Set is the synthesizer's deduplicated signal collection, keyed
// structurally by (out-port, in-port) (spec §4.4 Step 6, §9 "Signal
// equivalence"). Grounded on inspector/graph/file.go's IndexFunctions/
// typeMap map-keyed dedup pattern.
type Set struct {
	net     *ir.ProcessNetwork
	byKey   map[key]*Signal
	byOut   map[*ir.Port]*Signal
	byIn    map[*ir.Port]*Signal
	ordered []*Signal
}

func newSet(net *ir.ProcessNetwork) *Set {
	return &Set{
		net:   net,
		byKey: map[key]*Signal{},
		byOut: map[*ir.Port]*Signal{},
		byIn:  map[*ir.Port]*Signal{},
	}
}

func (s *Set) getOrCreate(out, in *ir.Port) *Signal {
	k := key{out: out, in: in}
	if sig, ok := s.byKey[k]; ok {
		return sig
	}
	sig := &Signal{OutPort: out, InPort: in}
	s.byKey[k] = sig
	if out != nil {
		s.byOut[out] = sig
	}
	if in != nil {
		s.byIn[in] = sig
	}
	s.ordered = append(s.ordered, sig)
	return sig
}

// ForProducer returns the Signal whose OutPort is out, if any has been
// collected.
func (s *Set) ForProducer(out *ir.Port) *Signal { return s.byOut[out] }

// ForConsumer returns the Signal whose InPort is in, if any has been
// collected.
func (s *Set) ForConsumer(in *ir.Port) *Signal { return s.byIn[in] }

// All returns every collected Signal, ordered by generated variable name
// (spec §9 "ordering used in sets is the lexicographic order of the derived
// variable name") — VarName must therefore already be assigned before this
// is relied upon for emission order.
func (s *Set) All() []*Signal {
	out := append([]*Signal(nil), s.ordered...)
	sort.Slice(out, func(i, j int) bool { return out[i].VarName() < out[j].VarName() })
	return out
}

// CollectSignals walks every port reachable in schedule order and
// materializes one Signal per edge, deduplicated structurally (spec §4.4
// Step 6). schedule is the scheduler's total leaf order; every leaf's ports
// are visited in registration order (in-ports then out-ports), matching the
// "ports retain insertion order" ordering guarantee (spec §5).
func CollectSignals(net *ir.ProcessNetwork, schedule []*ir.Leaf) *Set {
	set := newSet(net)
	for _, leaf := range schedule {
		for _, in := range leaf.In {
			prod := ir.ProducerPort(in)
			if prod != nil {
				set.getOrCreate(prod, in)
			} else {
				set.getOrCreate(nil, in)
			}
		}
		for _, out := range leaf.Out {
			if len(ir.ConsumerPorts(out)) == 0 {
				set.getOrCreate(out, nil)
			}
		}
	}
	return set
}

// ModelInputIndex returns the 1-based position of leafPort among the
// network's model-level inputs (spec §4.4 Step 11 naming inputs
// "input1…inputN"), resolving each interface endpoint down to its concrete
// leaf port via ir.ResolveLeafPort.
func ModelInputIndex(net *ir.ProcessNetwork, leafPort *ir.Port) (int, bool) {
	for i, ep := range net.Inputs {
		if ir.ResolveLeafPort(ep) == leafPort {
			return i + 1, true
		}
	}
	return 0, false
}

// ModelOutputIndex is ModelInputIndex's symmetric counterpart for model-level
// outputs ("output1…outputM").
func ModelOutputIndex(net *ir.ProcessNetwork, leafPort *ir.Port) (int, bool) {
	for i, ep := range net.Outputs {
		if ir.ResolveLeafPort(ep) == leafPort {
			return i + 1, true
		}
	}
	return 0, false
}

// VarName returns the signal's generated C variable name, computed lazily
// and memoized (spec §3 "a generated variable name derived from both
// endpoints"; spec §5 "signal-variable naming is stable for a fixed graph —
// depends only on leaf Ids and port names").
//
// A model-input signal (no producer) is named "v_inN" from its model-level
// input index once BindModelInput has run, and "v_in_unbound_<port>" before
// that. Every signal with a producer, model-output signals included, is
// named from its producing leaf's Id and port Id, which is always unique
// since out-degree is 1 (fan-out is made explicit by a dedicated Fanout
// leaf, spec §4.1).
func (s *Signal) VarName() string {
	if s.varName != "" {
		return s.varName
	}
	switch {
	case s.OutPort == nil && s.InPort != nil:
		s.varName = "v_in_unbound_" + sanitize(s.InPort.Id)
	case s.OutPort != nil:
		owner := ir.OwnerLeaf(s.OutPort)
		ownerID := "leaf"
		if owner != nil {
			ownerID = owner.ID()
		}
		s.varName = "v_" + sanitize(ownerID) + "_" + sanitize(s.OutPort.Id)
	default:
		s.varName = "v_unknown"
	}
	return s.varName
}

// BindModelInput overrides a boundary signal's variable name to "v_inN"
// once the signal's model-input index is known, keeping the emitted body's
// copy-in statements and the Javadoc parameter naming in lockstep.
func (s *Signal) BindModelInput(idx int) {
	s.varName = "v_in" + strconv.Itoa(idx)
}

func sanitize(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

