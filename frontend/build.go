package frontend

import (
	"strconv"
	"strings"

	"github.com/forsyde/f2cc-sub001/errs"
	"github.com/forsyde/f2cc-sub001/ir"
)

// builder holds the ProcessNetwork under construction as the DOM is walked
// depth-first.
type builder struct {
	net *ir.ProcessNetwork
}

// Build constructs a ProcessNetwork from a parsed rich-dialect DOM. Dispatch
// on process_constructor's name (case-insensitive, "comb" substring match)
// mirrors the switch-on-node-type dispatch in analyzer/node.go:walk.
func Build(doc *xmlProcessNetwork) (*ir.ProcessNetwork, error) {
	b := &builder{net: ir.NewProcessNetwork(doc.Name)}
	root := xmlComposite{
		Name:       doc.Name,
		Composites: doc.Composites,
		Leaves:     doc.Leaves,
		Ports:      doc.Ports,
		Signals:    doc.Signals,
	}
	if err := b.buildComposite(root, b.net.Root); err != nil {
		return nil, err
	}

	// The root composite's own boundary ports are the network's model-level
	// interface (spec §4.1's `process_network` directly containing `port*`).
	for _, p := range b.net.Root.In {
		b.net.Inputs = append(b.net.Inputs, p)
	}
	for _, p := range b.net.Root.Out {
		b.net.Outputs = append(b.net.Outputs, p)
	}
	return b.net, nil
}

func (b *builder) buildComposite(x xmlComposite, c *ir.Composite) error {
	for _, xp := range x.Ports {
		dt, err := parsePortType(xp.Type)
		if err != nil {
			return err
		}
		dir := directionOf(xp.Direction)
		io := ir.NewIOPort(xp.Name, dir)
		io.OutsideType = dt
		io.InsideType = dt.Clone()
		if dir == ir.In {
			c.AddIn(io)
		} else {
			c.AddOut(io)
		}
	}

	for _, xc := range x.Composites {
		child := ir.NewComposite(xc.Name)
		c.AddChild(child)
		if err := b.buildComposite(xc, child); err != nil {
			return err
		}
	}

	for _, xl := range x.Leaves {
		leaf, err := b.buildLeaf(xl)
		if err != nil {
			return err
		}
		c.AddChild(leaf)
	}

	if err := b.resolveSignals(x, c); err != nil {
		return err
	}
	return nil
}

func (b *builder) buildLeaf(x xmlLeaf) (*ir.Leaf, error) {
	kind, err := leafKindOf(x.Constructor.Name)
	if err != nil {
		return nil, err
	}
	leaf := ir.NewLeaf(x.Name, kind)

	switch kind {
	case ir.Comb, ir.MapLeaf, ir.ZipWithN:
		fnArg := argValue(x.Constructor.Arguments, "")
		if fnArg == "" {
			return nil, errs.New(errs.Parse, "%s leaf %q has no function argument", kind, x.Name)
		}
		fn, err := ParseCFunction(fnArg)
		if err != nil {
			return nil, err
		}
		fn = b.net.RegisterFunction(fn)
		if err := fn.Validate(); err != nil {
			return nil, err
		}
		leaf.Functions = append(leaf.Functions, fn)
	case ir.CoalescedMap, ir.ParallelMap:
		// A fused chain (or a replicated leaf's function list) is one
		// function per argument, in chain/stage order; "replication" is
		// reserved for ParallelMap's own count and never a function body.
		for _, a := range x.Constructor.Arguments {
			if a.Name == "replication" {
				continue
			}
			val := a.Value
			if val == "" {
				val = a.Text
			}
			if val == "" {
				continue
			}
			fn, err := ParseCFunction(val)
			if err != nil {
				return nil, err
			}
			fn = b.net.RegisterFunction(fn)
			if err := fn.Validate(); err != nil {
				return nil, err
			}
			leaf.Functions = append(leaf.Functions, fn)
		}
		if len(leaf.Functions) == 0 {
			return nil, errs.New(errs.Parse, "%s leaf %q has no function arguments", kind, x.Name)
		}
		if kind == ir.ParallelMap {
			repStr, ok := argValueOK(x.Constructor.Arguments, "replication")
			if !ok {
				return nil, errs.New(errs.Parse, "ParallelMap leaf %q missing argument \"replication\"", x.Name)
			}
			n, err := strconv.Atoi(repStr)
			if err != nil {
				return nil, errs.Wrap(errs.Parse, err, "invalid replication count for leaf %q", x.Name)
			}
			leaf.Replication = n
		}
	}

	if kind == ir.Delay {
		init, ok := argValueOK(x.Constructor.Arguments, "init_val")
		if !ok {
			return nil, errs.New(errs.Parse, "delay leaf %q missing argument \"init_val\"", x.Name)
		}
		leaf.InitValue = init
	}

	for _, xp := range x.Ports {
		dt, err := parsePortType(xp.Type)
		if err != nil {
			return nil, err
		}
		if err := validatePortIDShape(xp.Name); err != nil {
			return nil, err
		}
		dir := directionOf(xp.Direction)
		p := ir.NewPort(xp.Name, dir, dt)
		if dir == ir.In {
			leaf.AddIn(p)
		} else {
			leaf.AddOut(p)
		}
	}
	return leaf, nil
}

// resolveSignals binds every signal of composite x, routing self-referencing
// endpoints (source/target id equal to x's own Id) to c's IOPort "inside"
// bindings rather than ordinary sibling-to-sibling connections (Open Question
// decision 5, DESIGN.md).
func (b *builder) resolveSignals(x xmlComposite, c *ir.Composite) error {
	for _, sig := range x.Signals {
		srcEP, srcSelf, err := b.resolveEndpoint(c, sig.Source, sig.SourcePort, ir.Out)
		if err != nil {
			return err
		}
		dstEP, dstSelf, err := b.resolveEndpoint(c, sig.Target, sig.TargetPort, ir.In)
		if err != nil {
			return err
		}

		switch {
		case srcSelf:
			// Data enters c from its own boundary in-port and flows to
			// dstEP, which lives inside c (DESIGN.md Open Question 5).
			srcEP.(*ir.IOPort).SetInside(dstEP)
			dstEP.SetPeer(srcEP)
		case dstSelf:
			// Data leaves c through its own boundary out-port; srcEP is the
			// inner producer.
			dstEP.(*ir.IOPort).SetInside(srcEP)
			srcEP.SetPeer(dstEP)
		default:
			if srcEP.Connected() {
				srcEP = b.insertFanout(c, srcEP.(*ir.Port))
			}
			ir.Connect(srcEP, dstEP)
		}
	}
	return nil
}

// resolveEndpoint looks up the named port of the process identified by
// procID within composite c. procID equal to c's own Id denotes a
// self-reference to one of c's own IOPorts (searched across both In and Out,
// since the role implied by dir is about the signal, not the port's own
// declared direction); the second return value reports whether this is such
// a self-reference.
func (b *builder) resolveEndpoint(c *ir.Composite, procID, portID string, dir ir.Direction) (ir.Endpoint, bool, error) {
	if procID == c.ID() {
		for _, p := range c.In {
			if p.Id == portID {
				return p, true, nil
			}
		}
		for _, p := range c.Out {
			if p.Id == portID {
				return p, true, nil
			}
		}
		return nil, false, errs.New(errs.InvalidModel, "composite %q has no port %q for self-referencing signal", c.ID(), portID)
	}

	child := c.Child(procID)
	if child == nil {
		return nil, false, errs.New(errs.InvalidModel, "signal references unknown process %q inside %q", procID, c.ID())
	}
	switch v := child.(type) {
	case *ir.Leaf:
		ports := v.In
		if dir == ir.Out {
			ports = v.Out
		}
		for _, p := range ports {
			if p.Id == portID {
				return p, false, nil
			}
		}
		return nil, false, errs.New(errs.InvalidModel, "leaf %q has no %s port %q", procID, dirName(dir), portID)
	case *ir.Composite:
		ports := v.In
		if dir == ir.Out {
			ports = v.Out
		}
		for _, p := range ports {
			if p.Id == portID {
				return p, false, nil
			}
		}
		return nil, false, errs.New(errs.InvalidModel, "composite %q has no %s port %q", procID, dirName(dir), portID)
	default:
		return nil, false, errs.New(errs.Cast, "process %q is neither leaf nor composite", procID)
	}
}

func dirName(d ir.Direction) string {
	if d == ir.In {
		return "in"
	}
	return "out"
}

// insertFanout splits an already-bound out-port by inserting a fanout leaf
// between the producer and its (growing) set of consumers, per spec §4.1:
// "If the source port is already bound, a fanout leaf is inserted as a
// splitter; subsequent extra targets attach to new out-ports of the same
// fanout."
func (b *builder) insertFanout(c *ir.Composite, src *ir.Port) ir.Endpoint {
	existingPeer := src.Peer()
	if fanout, ok := fanoutOwnerOf(existingPeer); ok {
		return newFanoutOutPort(b.net, fanout)
	}

	fanout := ir.NewLeaf(b.net.NextProcessID("fanout"), ir.Fanout)
	in := ir.NewPort("in", ir.In, src.Type.Clone())
	fanout.AddIn(in)
	c.AddChild(fanout)

	ir.Disconnect(src)
	ir.Connect(src, in)
	if existingPeer != nil {
		out1 := ir.NewPort("out1", ir.Out, src.Type.Clone())
		fanout.AddOut(out1)
		ir.Connect(out1, existingPeer)
	}
	return newFanoutOutPort(b.net, fanout)
}

func fanoutOwnerOf(e ir.Endpoint) (*ir.Leaf, bool) {
	p, ok := e.(*ir.Port)
	if !ok {
		return nil, false
	}
	l, ok := p.Owner().(*ir.Leaf)
	if !ok || l.Kind != ir.Fanout {
		return nil, false
	}
	return l, true
}

func newFanoutOutPort(net *ir.ProcessNetwork, fanout *ir.Leaf) *ir.Port {
	dt := fanout.In[0].Type.Clone()
	out := ir.NewPort("out"+strconv.Itoa(len(fanout.Out)+1), ir.Out, dt)
	fanout.AddOut(out)
	return out
}

func leafKindOf(name string) (ir.LeafKind, error) {
	lower := strings.ToLower(name)
	// The GraphML dialect suffixes its leaf_type literals with "sy"
	// ("unzipxsy", "zipxsy", "delaysy") while the rich XML dialect's
	// process_constructor names do not; strip it before dispatch so both
	// dialects land on the same cases instead of the suffixed ones falling
	// through to the generic "comb" substring match.
	lower = strings.TrimSuffix(lower, "sy")
	switch {
	case lower == "unzipx":
		return ir.UnzipX, nil
	case lower == "zipx":
		return ir.ZipX, nil
	case lower == "fanout":
		return ir.Fanout, nil
	case lower == "delay":
		return ir.Delay, nil
	case strings.Contains(lower, "coalescedmap"):
		return ir.CoalescedMap, nil
	case strings.Contains(lower, "parallelmap"):
		return ir.ParallelMap, nil
	case strings.Contains(lower, "zipwithn"):
		return ir.ZipWithN, nil
	case strings.Contains(lower, "map"):
		return ir.MapLeaf, nil
	case strings.Contains(lower, "comb"):
		return ir.Comb, nil
	default:
		return "", errs.New(errs.InvalidModel, "unsupported process_constructor %q", name)
	}
}

func directionOf(s string) ir.Direction {
	if s == "out" {
		return ir.Out
	}
	return ir.In
}

func argValue(args []xmlArgument, name string) string {
	v, _ := argValueOK(args, name)
	return v
}

// argValueOK returns the value of the named argument, or (for name=="") the
// first argument's value — the comb function-body convention, since the
// spec's single constructor argument for a comb leaf carries no name
// requirement beyond "argument".
func argValueOK(args []xmlArgument, name string) (string, bool) {
	if name == "" {
		if len(args) == 0 {
			return "", false
		}
		if args[0].Value != "" {
			return args[0].Value, true
		}
		return args[0].Text, true
	}
	for _, a := range args {
		if a.Name == name {
			if a.Value != "" {
				return a.Value, true
			}
			return a.Text, true
		}
	}
	return "", false
}

// validatePortIDShape enforces spec §4.1's "(in|out)[0-9]*" naming
// convention used later by the synthesizer for signal variable naming.
func validatePortIDShape(id string) error {
	rest := id
	switch {
	case strings.HasPrefix(rest, "in"):
		rest = strings.TrimPrefix(rest, "in")
	case strings.HasPrefix(rest, "out"):
		rest = strings.TrimPrefix(rest, "out")
	default:
		return errs.New(errs.Parse, "port id %q does not match shape (in|out)[0-9]*", id)
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return errs.New(errs.Parse, "port id %q does not match shape (in|out)[0-9]*", id)
		}
	}
	return nil
}

func parsePortType(t string) (*ir.DataType, error) {
	t = strings.TrimSpace(t)
	if t == "" {
		return &ir.DataType{}, nil
	}
	dt := &ir.DataType{}
	if strings.HasPrefix(t, "const ") {
		dt.IsConst = true
		t = strings.TrimPrefix(t, "const ")
	}
	if idx := strings.Index(t, "["); idx >= 0 {
		dt.IsArray = true
		sizeStr := strings.TrimSuffix(t[idx+1:], "]")
		t = t[:idx]
		if sizeStr != "" {
			n, err := strconv.Atoi(sizeStr)
			if err != nil {
				return nil, errs.Wrap(errs.Parse, err, "invalid array size in port type %q", t)
			}
			dt.ArraySize = &n
		}
	}
	if strings.HasSuffix(t, "*") {
		dt.IsPointer = true
		t = strings.TrimSuffix(t, "*")
	}
	dt.Kind = primitiveKindFromText(t)
	if dt.Kind == ir.KindUnknown && t != "" {
		return nil, errs.New(errs.Parse, "unrecognized port data type %q", t)
	}
	return dt, nil
}
