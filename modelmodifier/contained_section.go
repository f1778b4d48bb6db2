// Package modelmodifier implements the graph-rewriting passes that run
// between the Frontend and the Scheduler: discovering parallel sections,
// classifying and coalescing/splitting/fusing them, normalizing arity, and
// eliminating redundant routing nodes.
//
// Traversal style (worklist/stack-based DFS, guarded by a visited set) is
// grounded on analyzer/node.go's recursive walk and analyzer/analyzer.go's
// handleSelect explicit worklist-stack BFS.
package modelmodifier

import (
	"github.com/forsyde/f2cc-sub001/errs"
	"github.com/forsyde/f2cc-sub001/ir"
)

// Section is a contained section (spec §4.2.1): a diverge/converge pair
// (unzipx/zipx) such that every maximal path forward from diverge ends at
// converge and every maximal path backward from converge starts at diverge.
// Branches[i] is the chain of leaves strictly between diverge's i'th out-port
// and converge's i'th in-port, in forward order.
type Section struct {
	Diverge  *ir.Leaf
	Converge *ir.Leaf
	Branches [][]*ir.Leaf
}

// DiscoverContainedSections examines every zipx leaf in the network, in
// Leaves() order: at each one, search backward for the nearest unzipx, then
// verify the two convergence properties (spec §4.2.1). The scan is not a
// DFS from the model outputs, so a section is found whether or not a model
// output is reachable from it.
func DiscoverContainedSections(net *ir.ProcessNetwork) ([]*Section, error) {
	var sections []*Section
	for _, leaf := range net.Leaves() {
		if leaf.Kind != ir.ZipX {
			continue
		}
		sec, err := discoverSectionAt(leaf)
		if err != nil {
			return nil, err
		}
		if sec != nil {
			sections = append(sections, sec)
		}
	}
	return sections, nil
}

func discoverSectionAt(conv *ir.Leaf) (*Section, error) {
	if len(conv.In) == 0 {
		return nil, nil
	}
	var branches [][]*ir.Leaf
	var diverge *ir.Leaf
	for _, inPort := range conv.In {
		chain, d, err := backwardChain(inPort)
		if err != nil {
			return nil, err
		}
		if d == nil {
			return nil, nil // a branch doesn't bottom out at an unzipx: not contained
		}
		if diverge == nil {
			diverge = d
		} else if diverge.ID() != d.ID() {
			return nil, nil // branches disagree on their common diverge
		}
		branches = append(branches, chain)
	}

	// Verify the forward convergence property: every out-port of diverge
	// forward-chains to this same converge.
	for _, outPort := range diverge.Out {
		_, c, err := forwardChain(outPort)
		if err != nil {
			return nil, err
		}
		if c == nil || c.ID() != conv.ID() {
			return nil, nil
		}
	}
	if len(diverge.Out) != len(conv.In) {
		return nil, nil
	}

	return &Section{Diverge: diverge, Converge: conv, Branches: branches}, nil
}

// backwardChain walks upstream from p, collecting the chain of leaves
// traversed in forward order, until it reaches an unzipx (the candidate
// diverge) or a point where the chain stops being a linear single-in/out
// branch (in which case d is returned nil, meaning "not contained").
func backwardChain(p *ir.Port) ([]*ir.Leaf, *ir.Leaf, error) {
	var chain []*ir.Leaf
	cur := p
	for {
		prod := ir.ProducerPort(cur)
		if prod == nil {
			return chain, nil, nil
		}
		leaf := ir.OwnerLeaf(prod)
		if leaf == nil {
			return chain, nil, nil
		}
		if leaf.Kind == ir.UnzipX {
			return chain, leaf, nil
		}
		chain = append([]*ir.Leaf{leaf}, chain...)
		if len(leaf.In) != 1 {
			return chain, nil, nil
		}
		cur = leaf.In[0]
	}
}

// forwardChain is backwardChain's mirror, walking downstream from p.
func forwardChain(p *ir.Port) ([]*ir.Leaf, *ir.Leaf, error) {
	var chain []*ir.Leaf
	cur := p
	for {
		consumers := ir.ConsumerPorts(cur)
		if len(consumers) == 0 {
			return chain, nil, nil
		}
		leaf := ir.OwnerLeaf(consumers[0])
		if leaf == nil {
			return chain, nil, nil
		}
		if leaf.Kind == ir.ZipX {
			return chain, leaf, nil
		}
		chain = append(chain, leaf)
		if len(leaf.Out) != 1 {
			return chain, nil, nil
		}
		cur = leaf.Out[0]
	}
}

// ownerComposite finds the Composite directly containing leaf, required by
// every rewrite that needs to remove/insert siblings of a Section.
func ownerComposite(net *ir.ProcessNetwork, leaf *ir.Leaf) (*ir.Composite, error) {
	p := leaf.Parent()
	if p == nil {
		return nil, errs.New(errs.IllegalState, "leaf %q has no parent composite", leaf.ID())
	}
	return p, nil
}
