package synthesizer

import (
	"fmt"
	"strings"

	"github.com/forsyde/f2cc-sub001/errs"
	"github.com/forsyde/f2cc-sub001/ir"
)

// cType renders a DataType's C declarator (kind plus a trailing "*" for a
// pointer), leaving "const"/array-bracket placement to call sites, since
// those vary by position (parameter vs local declaration vs array bound).
func cType(dt *ir.DataType) string {
	if dt == nil || dt.Kind == ir.KindUnknown {
		return "void"
	}
	s := string(dt.Kind)
	if dt.IsPointer {
		s += "*"
	}
	return s
}

// Validate implements spec §4.4 Step 1: reject a network containing any
// unresolved port (nil Type) or unknown leaf kind.
func Validate(net *ir.ProcessNetwork) error {
	for _, leaf := range net.Leaves() {
		switch leaf.Kind {
		case ir.Comb, ir.Delay, ir.ZipX, ir.UnzipX, ir.Fanout,
			ir.MapLeaf, ir.CoalescedMap, ir.ParallelMap, ir.ZipWithN:
		default:
			return errs.New(errs.InvalidModel, "leaf %q has unknown kind %q", leaf.ID(), leaf.Kind)
		}
		for _, p := range append(append([]*ir.Port{}, leaf.In...), leaf.Out...) {
			if p.Type == nil {
				return errs.New(errs.InvalidModel, "leaf %q port %q has no resolved type", leaf.ID(), p.Id)
			}
		}
	}
	return nil
}

// declareVar renders sig's local declaration per spec §4.4 Step 11.1: an
// array signal that is both produced and consumed internally is
// heap-allocated; an array signal aliasing a model input/output parameter
// is declared as a bare pointer (the alias assignment itself is emitted
// separately, spec §4.4 Step 11.3); a scalar signal is always a plain local.
func declareVar(sig *Signal) (string, error) {
	name := sig.VarName()
	t := sig.Type
	if !t.IsArray {
		return fmt.Sprintf("    %s %s;\n", cType(t), name), nil
	}
	if sig.OutPort == nil || sig.InPort == nil {
		return fmt.Sprintf("    %s* %s;\n", cType(t), name), nil
	}
	if !t.SizeKnown() {
		return "", errs.New(errs.UnknownArraySize, "signal %s has unknown array size", name)
	}
	return fmt.Sprintf("    %s* %s = new %s[%d];\n", cType(t), name, cType(t), *t.ArraySize), nil
}

// bindModelInputNames fixes every model-input Signal's VarName to "v_inN"
// before anything else emits or sorts by VarName (spec §3 naming,
// memoized) — declareVar's set.All() pass runs first in emitImplementation
// and would otherwise freeze in the unbound fallback name.
func bindModelInputNames(net *ir.ProcessNetwork, set *Set) {
	for i, ep := range net.Inputs {
		leafPort := ir.ResolveLeafPort(ep)
		if sig := set.ForConsumer(leafPort); sig != nil {
			sig.BindModelInput(i + 1)
		}
	}
}

// boundaryAliases implements spec §4.4 Step 11.3: array-typed model
// input/output signals are pointer-aliased directly to the corresponding
// parameter, no copy.
func boundaryAliases(net *ir.ProcessNetwork, set *Set) (string, error) {
	var b strings.Builder
	for i, ep := range net.Inputs {
		leafPort := ir.ResolveLeafPort(ep)
		sig := set.ForConsumer(leafPort)
		if sig == nil || !sig.Type.IsArray {
			continue
		}
		fmt.Fprintf(&b, "    %s = input%d;\n", sig.VarName(), i+1)
	}
	for j, ep := range net.Outputs {
		leafPort := ir.ResolveLeafPort(ep)
		sig := set.ForProducer(leafPort)
		if sig == nil || !sig.Type.IsArray {
			continue
		}
		fmt.Fprintf(&b, "    %s = output%d;\n", sig.VarName(), j+1)
	}
	return b.String(), nil
}

// scalarCopyIn implements the scalar half of spec §4.4 Step 11.4: copy-in of
// scalar model inputs to their Signal variables.
func scalarCopyIn(net *ir.ProcessNetwork, set *Set) string {
	var b strings.Builder
	for i, ep := range net.Inputs {
		leafPort := ir.ResolveLeafPort(ep)
		sig := set.ForConsumer(leafPort)
		if sig == nil || sig.Type.IsArray {
			continue
		}
		fmt.Fprintf(&b, "    %s = input%d;\n", sig.VarName(), i+1)
	}
	return b.String()
}

// scalarCopyOut implements spec §4.4 Step 11.8: copy-out of scalar signals
// to model output pointers.
func scalarCopyOut(net *ir.ProcessNetwork, set *Set) string {
	var b strings.Builder
	for j, ep := range net.Outputs {
		leafPort := ir.ResolveLeafPort(ep)
		sig := set.ForProducer(leafPort)
		if sig == nil || sig.Type.IsArray {
			continue
		}
		fmt.Fprintf(&b, "    *output%d = %s;\n", j+1, sig.VarName())
	}
	return b.String()
}

// freeHeapSignals implements spec §4.4 Step 11.9: delete[] every
// heap-allocated signal array.
func freeHeapSignals(set *Set) string {
	var b strings.Builder
	for _, sig := range set.All() {
		if sig.Type != nil && sig.Type.IsArray && sig.OutPort != nil && sig.InPort != nil {
			fmt.Fprintf(&b, "    delete[] %s;\n", sig.VarName())
		}
	}
	return b.String()
}

// delayVarName is the static storage slot name for a delay leaf's register
// (spec §4.4 Step 10: "v_delay_element<n>"), n being the leaf's 1-based
// position among the network's delay leaves in Leaves() order.
func delayVarName(net *ir.ProcessNetwork, leaf *ir.Leaf) string {
	n := 0
	for _, l := range net.Leaves() {
		if l.Kind != ir.Delay {
			continue
		}
		n++
		if l == leaf {
			return fmt.Sprintf("v_delay_element%d", n)
		}
	}
	return "v_delay_element_" + leaf.ID()
}

// emitDelayDecls implements spec §4.4 Step 10/11.2: a static variable per
// delay leaf, initialized with its literal initial value.
func emitDelayDecls(net *ir.ProcessNetwork, set *Set, schedule []*ir.Leaf) (string, error) {
	var b strings.Builder
	for _, leaf := range schedule {
		if leaf.Kind != ir.Delay {
			continue
		}
		outSig := set.ForProducer(leaf.Out[0])
		if outSig == nil || outSig.Type == nil {
			return "", errs.New(errs.InvalidModel, "delay %q has no resolved out signal type", leaf.ID())
		}
		fmt.Fprintf(&b, "    static %s %s = %s;\n", cType(outSig.Type), delayVarName(net, leaf), leaf.InitValue)
	}
	return b.String(), nil
}

// emitDelayStep1 implements spec §4.4 Step 11.5: before the schedule body,
// copy each delay's current stored value to its out-signal.
func emitDelayStep1(net *ir.ProcessNetwork, set *Set, schedule []*ir.Leaf) string {
	var b strings.Builder
	for _, leaf := range schedule {
		if leaf.Kind != ir.Delay {
			continue
		}
		outSig := set.ForProducer(leaf.Out[0])
		if outSig == nil {
			continue
		}
		fmt.Fprintf(&b, "    %s = %s;\n", outSig.VarName(), delayVarName(net, leaf))
	}
	return b.String()
}

// emitDelayStep2 implements spec §4.4 Step 11.7: after the schedule body,
// snapshot each delay's in-signal into its stored variable for next cycle.
func emitDelayStep2(net *ir.ProcessNetwork, set *Set, schedule []*ir.Leaf) string {
	var b strings.Builder
	for _, leaf := range schedule {
		if leaf.Kind != ir.Delay {
			continue
		}
		inSig := set.ForConsumer(leaf.In[0])
		if inSig == nil {
			continue
		}
		fmt.Fprintf(&b, "    %s = %s;\n", delayVarName(net, leaf), inSig.VarName())
	}
	return b.String()
}

// emitSchedule implements spec §4.4 Step 11.6: the schedule body, each
// non-delay leaf executed via its type-specific emitter.
func emitSchedule(set *Set, schedule []*ir.Leaf) (string, error) {
	var b strings.Builder
	for _, leaf := range schedule {
		stmt, err := emitLeaf(set, leaf)
		if err != nil {
			return "", err
		}
		b.WriteString(stmt)
	}
	return b.String(), nil
}

func emitLeaf(set *Set, leaf *ir.Leaf) (string, error) {
	switch leaf.Kind {
	case ir.Delay:
		return "", nil
	case ir.Comb, ir.MapLeaf, ir.ZipWithN, ir.CoalescedMap, ir.ParallelMap:
		return emitComb(set, leaf)
	case ir.ZipX:
		return emitZipX(set, leaf)
	case ir.UnzipX:
		return emitUnzipX(set, leaf)
	case ir.Fanout:
		return emitFanout(set, leaf)
	default:
		return "", errs.New(errs.InvalidModel, "leaf %q has an unsupported kind %q for emission", leaf.ID(), leaf.Kind)
	}
}

// checkAssignable implements spec §4.4's emit-time compatibility check
// (same primitive kind, same array-ness, equal sizes, destination not
// const) on a single generated assignment, reporting a violation as
// InvalidModel identifying both endpoints rather than letting it through to
// invalid C.
func checkAssignable(src, dst *ir.DataType, srcDesc, dstDesc string) error {
	if err := src.CompatibleWith(dst); err != nil {
		return errs.New(errs.InvalidModel, "cannot assign %s to %s: %v", srcDesc, dstDesc, err)
	}
	return nil
}

// elementType strips the array-ness off t, giving the type of one element —
// used to check compatibility of a zipx/unzipx per-element copy against the
// whole-array signal on the other side of it.
func elementType(t *ir.DataType) *ir.DataType {
	if t == nil {
		return nil
	}
	e := t.Clone()
	e.IsArray = false
	e.ArraySize = nil
	return e
}

// emitComb implements spec §4.4 Step 11.6's "Map"/"ZipWithN" rule (also
// covering CoalescedMap/ParallelMap, which share the same external-interface
// calling shape once wrapped): "out = f(in)" or "f(in, out)" depending on
// the function's calling convention.
func emitComb(set *Set, leaf *ir.Leaf) (string, error) {
	fn := leaf.Function()
	if fn == nil {
		return "", errs.New(errs.InvalidModel, "leaf %q has no function to emit", leaf.ID())
	}
	var args []string
	for _, in := range leaf.In {
		sig := set.ForConsumer(in)
		if sig == nil {
			return "", errs.New(errs.IllegalState, "leaf %q in-port %q has no signal", leaf.ID(), in.Id)
		}
		args = append(args, sig.VarName())
	}
	if fn.IsVoidReturning() {
		if len(leaf.Out) == 0 {
			return "", errs.New(errs.InvalidModel, "leaf %q's void-returning function has no out-port to bind", leaf.ID())
		}
		outSig := set.ForProducer(leaf.Out[0])
		if outSig == nil {
			return "", errs.New(errs.IllegalState, "leaf %q out-port has no signal", leaf.ID())
		}
		if err := checkAssignable(fn.OutputType(), outSig.Type,
			fmt.Sprintf("function %q output parameter", fn.Name), fmt.Sprintf("leaf %q out-port %q", leaf.ID(), leaf.Out[0].Id)); err != nil {
			return "", err
		}
		outArg := outSig.VarName()
		if !outSig.Type.IsArray {
			outArg = "&" + outArg
		}
		return fmt.Sprintf("    %s(%s, %s);\n", fn.Name, strings.Join(args, ", "), outArg), nil
	}
	outSig := set.ForProducer(leaf.Out[0])
	if outSig == nil {
		return "", errs.New(errs.IllegalState, "leaf %q out-port has no signal", leaf.ID())
	}
	if err := checkAssignable(fn.OutputType(), outSig.Type,
		fmt.Sprintf("function %q return value", fn.Name), fmt.Sprintf("leaf %q out-port %q", leaf.ID(), leaf.Out[0].Id)); err != nil {
		return "", err
	}
	return fmt.Sprintf("    %s = %s(%s);\n", outSig.VarName(), fn.Name, strings.Join(args, ", ")), nil
}

// emitZipX implements spec §4.4 Step 11.6's "zipx" rule: element-wise copy
// from each in-signal to consecutive segments of the out array.
func emitZipX(set *Set, leaf *ir.Leaf) (string, error) {
	outSig := set.ForProducer(leaf.Out[0])
	if outSig == nil {
		return "", errs.New(errs.IllegalState, "zipx %q out-port has no signal", leaf.ID())
	}
	var b strings.Builder
	offset := 0
	for _, in := range leaf.In {
		sig := set.ForConsumer(in)
		if sig == nil {
			return "", errs.New(errs.IllegalState, "zipx %q in-port %q has no signal", leaf.ID(), in.Id)
		}
		if sig.Type.IsArray {
			if !sig.Type.SizeKnown() {
				return "", errs.New(errs.UnknownArraySize, "zipx %q branch %q has unknown array size", leaf.ID(), in.Id)
			}
			if err := checkAssignable(elementType(sig.Type), elementType(outSig.Type),
				fmt.Sprintf("zipx %q branch %q element", leaf.ID(), in.Id), fmt.Sprintf("zipx %q out-port element", leaf.ID())); err != nil {
				return "", err
			}
			n := *sig.Type.ArraySize
			fmt.Fprintf(&b, "    for (int i = 0; i < %d; i++) %s[%d + i] = %s[i];\n", n, outSig.VarName(), offset, sig.VarName())
			offset += n
		} else {
			if err := checkAssignable(sig.Type, elementType(outSig.Type),
				fmt.Sprintf("zipx %q branch %q", leaf.ID(), in.Id), fmt.Sprintf("zipx %q out-port element", leaf.ID())); err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "    %s[%d] = %s;\n", outSig.VarName(), offset, sig.VarName())
			offset++
		}
	}
	return b.String(), nil
}

// emitUnzipX implements spec §4.4 Step 11.6's "unzipx" rule: element-wise
// copy from the in array to each out-signal.
func emitUnzipX(set *Set, leaf *ir.Leaf) (string, error) {
	inSig := set.ForConsumer(leaf.In[0])
	if inSig == nil {
		return "", errs.New(errs.IllegalState, "unzipx %q in-port has no signal", leaf.ID())
	}
	var b strings.Builder
	offset := 0
	for _, out := range leaf.Out {
		sig := set.ForProducer(out)
		if sig == nil {
			return "", errs.New(errs.IllegalState, "unzipx %q out-port %q has no signal", leaf.ID(), out.Id)
		}
		if sig.Type.IsArray {
			if !sig.Type.SizeKnown() {
				return "", errs.New(errs.UnknownArraySize, "unzipx %q branch %q has unknown array size", leaf.ID(), out.Id)
			}
			if err := checkAssignable(elementType(inSig.Type), elementType(sig.Type),
				fmt.Sprintf("unzipx %q in-port element", leaf.ID()), fmt.Sprintf("unzipx %q branch %q element", leaf.ID(), out.Id)); err != nil {
				return "", err
			}
			n := *sig.Type.ArraySize
			fmt.Fprintf(&b, "    for (int i = 0; i < %d; i++) %s[i] = %s[%d + i];\n", n, sig.VarName(), inSig.VarName(), offset)
			offset += n
		} else {
			if err := checkAssignable(elementType(inSig.Type), sig.Type,
				fmt.Sprintf("unzipx %q in-port element", leaf.ID()), fmt.Sprintf("unzipx %q branch %q", leaf.ID(), out.Id)); err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "    %s = %s[%d];\n", sig.VarName(), inSig.VarName(), offset)
			offset++
		}
	}
	return b.String(), nil
}

// emitFanout implements spec §4.4 Step 11.6's "fanout" rule: copy the
// in-signal to each out-signal, deep-copying arrays element by element.
func emitFanout(set *Set, leaf *ir.Leaf) (string, error) {
	inSig := set.ForConsumer(leaf.In[0])
	if inSig == nil {
		return "", errs.New(errs.IllegalState, "fanout %q in-port has no signal", leaf.ID())
	}
	var b strings.Builder
	for _, out := range leaf.Out {
		sig := set.ForProducer(out)
		if sig == nil {
			return "", errs.New(errs.IllegalState, "fanout %q out-port %q has no signal", leaf.ID(), out.Id)
		}
		if err := checkAssignable(inSig.Type, sig.Type,
			fmt.Sprintf("fanout %q in-port", leaf.ID()), fmt.Sprintf("fanout %q out-port %q", leaf.ID(), out.Id)); err != nil {
			return "", err
		}
		if sig.Type.IsArray {
			n := 0
			if sig.Type.SizeKnown() {
				n = *sig.Type.ArraySize
			}
			fmt.Fprintf(&b, "    for (int i = 0; i < %d; i++) %s[i] = %s[i];\n", n, sig.VarName(), inSig.VarName())
		} else {
			fmt.Fprintf(&b, "    %s = %s;\n", sig.VarName(), inSig.VarName())
		}
	}
	return b.String(), nil
}
