package modelmodifier

import (
	"strconv"

	"github.com/forsyde/f2cc-sub001/errs"
	"github.com/forsyde/f2cc-sub001/ir"
)

// FlattenHierarchicalParallelism implements spec §4.2.7's SystemC-style
// hierarchical parallelization: the root composite's direct composite
// children are grouped into equivalence classes by structural signature
// (same child leaf kinds and function names, spec's "processes sharing
// component/function names"). Each class of two or more collapses into a
// single ParallelComposite wrapping one representative, with a zipx/unzipx
// face inserted at every boundary port so the N individual external signals
// become one array-typed signal feeding the ParallelComposite.
func FlattenHierarchicalParallelism(net *ir.ProcessNetwork) error {
	classes, err := equivalenceClasses(net.Root)
	if err != nil {
		return err
	}
	for _, class := range classes {
		if len(class) < 2 {
			continue
		}
		if err := collapseClass(net, class); err != nil {
			return err
		}
	}
	return nil
}

// equivalenceClasses groups root's direct composite children by structural
// signature.
func equivalenceClasses(root *ir.Composite) (map[string][]*ir.Composite, error) {
	classes := map[string][]*ir.Composite{}
	for _, child := range root.Children {
		c, ok := child.(*ir.Composite)
		if !ok {
			continue
		}
		sig, err := compositeSignature(c)
		if err != nil {
			return nil, err
		}
		classes[sig] = append(classes[sig], c)
	}
	return classes, nil
}

// compositeSignature is a structural fingerprint built from the ordered list
// of child leaf kinds and function names, stable across instances of the
// same subsystem replicated under different ids. A composite whose body is
// anything but a flat list of leaves cannot take part in hierarchical
// parallelization (spec §4.2.7 requires a flat component body).
func compositeSignature(c *ir.Composite) (string, error) {
	sig := ""
	for _, child := range c.Children {
		leaf, ok := child.(*ir.Leaf)
		if !ok {
			return "", errs.New(errs.InvalidProcess, "composite %q has a non-leaf child %q; hierarchical parallelization requires a flat leaf body", c.ID(), child.ID())
		}
		sig += string(leaf.Kind) + ":"
		for _, fn := range leaf.Functions {
			sig += fn.Name + ","
		}
		sig += ";"
	}
	return sig, nil
}

func collapseClass(net *ir.ProcessNetwork, class []*ir.Composite) error {
	rep := class[0]
	n := len(class)
	root := net.Root

	for _, c := range class[1:] {
		if len(c.In) != len(rep.In) || len(c.Out) != len(rep.Out) {
			return errs.New(errs.InvalidModel, "equivalence class member %q has a different port shape than %q", c.ID(), rep.ID())
		}
	}

	parallel := ir.NewParallelComposite(net.NextProcessID("parallel"), n, rep.ID())
	for i, repPort := range rep.In {
		if err := buildConvergingFace(net, root, parallel, repPort, class, i); err != nil {
			return err
		}
	}
	for i, repPort := range rep.Out {
		if err := buildDivergingFace(net, root, parallel, repPort, class, i); err != nil {
			return err
		}
	}

	for _, c := range class {
		root.RemoveChild(c.ID())
	}
	// parallel must join root before rep joins parallel, so rep's hierarchy
	// path is computed from parallel's final (root-anchored) hierarchy
	// rather than a still-empty one.
	root.AddChild(parallel)
	parallel.AddChild(rep)
	return nil
}

// buildConvergingFace handles one In-direction boundary port: the class's N
// separate external producers are converged by a zipx leaf into a single
// array-typed signal feeding a new IOPort on parallel, whose Inside binds to
// the representative's own port (the nested-composite convention, DESIGN.md
// Open Question decision 5).
func buildConvergingFace(net *ir.ProcessNetwork, root *ir.Composite, parallel *ir.ParallelComposite, repPort *ir.IOPort, class []*ir.Composite, portIdx int) error {
	n := len(class)
	zipx := ir.NewLeaf(net.NextProcessID("zipx"), ir.ZipX)
	root.AddChild(zipx)

	for i, c := range class {
		member := c.In[portIdx]
		external := member.Peer()
		ir.Disconnect(member)
		in := ir.NewPort("in"+strconv.Itoa(i+1), ir.In, member.OutsideType.Clone())
		zipx.AddIn(in)
		if external != nil {
			reconnectExternal(external, in)
		}
	}
	zipx.AddOut(ir.NewPort("out1", ir.Out, arrayTypeOf(repPort.OutsideType, n)))

	boundary := ir.NewIOPort(repPort.Id, ir.In)
	boundary.OutsideType = arrayTypeOf(repPort.OutsideType, n)
	boundary.InsideType = repPort.InsideType.Clone()
	parallel.AddIn(boundary)
	boundary.SetInside(repPort)
	repPort.SetPeer(boundary)

	ir.Connect(zipx.Out[0], boundary)
	return nil
}

// buildDivergingFace mirrors buildConvergingFace for an Out-direction
// boundary port: an unzipx leaf diverges the representative's single
// array-typed output to each class member's own external consumer.
func buildDivergingFace(net *ir.ProcessNetwork, root *ir.Composite, parallel *ir.ParallelComposite, repPort *ir.IOPort, class []*ir.Composite, portIdx int) error {
	n := len(class)
	unzipx := ir.NewLeaf(net.NextProcessID("unzipx"), ir.UnzipX)
	root.AddChild(unzipx)

	unzipx.AddIn(ir.NewPort("in1", ir.In, arrayTypeOf(repPort.OutsideType, n)))

	boundary := ir.NewIOPort(repPort.Id, ir.Out)
	boundary.OutsideType = arrayTypeOf(repPort.OutsideType, n)
	boundary.InsideType = repPort.InsideType.Clone()
	parallel.AddOut(boundary)
	boundary.SetInside(repPort)
	repPort.SetPeer(boundary)

	ir.Connect(boundary, unzipx.In[0])

	for i, c := range class {
		member := c.Out[portIdx]
		external := member.Peer()
		ir.Disconnect(member)
		out := ir.NewPort("out"+strconv.Itoa(i+1), ir.Out, member.OutsideType.Clone())
		unzipx.AddOut(out)
		if external != nil {
			reconnectExternal(external, out)
		}
	}
	return nil
}
