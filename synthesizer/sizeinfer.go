package synthesizer

import (
	"github.com/forsyde/f2cc-sub001/errs"
	"github.com/forsyde/f2cc-sub001/ir"
)

// InferArraySizes runs spec §4.4 Step 8's second two-phase search: for every
// array-typed Signal, resolve its element count. InferTypes must already
// have populated every Signal's Type.
//
// ZipX (out-array size = sum of in-branch sizes) and UnzipX (in-array size
// = sum of out-arm sizes) have closed-form rules, as does ParallelMap (size
// = Replication times the function's per-replica array size, or times 1
// when that is scalar); every other leaf kind passes the array size
// straight through, mirroring InferTypes's structure.
func InferArraySizes(net *ir.ProcessNetwork, set *Set) error {
	resolving := map[*Signal]bool{}
	var resolve func(sig *Signal) (int, bool, error) // size, known, error

	resolve = func(sig *Signal) (int, bool, error) {
		if !sig.Type.IsArray {
			return 0, false, nil
		}
		if sig.Type.SizeKnown() {
			return *sig.Type.ArraySize, true, nil
		}
		if resolving[sig] {
			return 0, false, errs.New(errs.InvalidModel, "array-size inference cycle at signal %s", sig.VarName())
		}
		resolving[sig] = true
		defer delete(resolving, sig)

		size, ok, err := backwardSize(set, sig, resolve)
		if err != nil {
			return 0, false, err
		}
		if !ok {
			size, ok, err = forwardSize(set, sig, resolve)
			if err != nil {
				return 0, false, err
			}
		}
		if !ok {
			return 0, false, errs.New(errs.UnknownArraySize, "array size for signal %s could not be inferred", sig.VarName())
		}
		sig.Type.ArraySize = &size
		return size, true, nil
	}

	for _, sig := range set.ordered {
		if sig.Type == nil {
			return errs.New(errs.IllegalState, "signal %s has no inferred type before size inference", sig.VarName())
		}
		if !sig.Type.IsArray {
			continue
		}
		if _, _, err := resolve(sig); err != nil {
			return err
		}
	}
	return nil
}

type resolveFn func(*Signal) (int, bool, error)

func backwardSize(set *Set, sig *Signal, resolve resolveFn) (int, bool, error) {
	if sig.OutPort == nil {
		return 0, false, nil
	}
	leaf := ir.OwnerLeaf(sig.OutPort)
	if leaf == nil {
		return 0, false, nil
	}
	switch leaf.Kind {
	case ir.ZipX:
		return sumBranchSizes(set, leaf.In, resolve)
	case ir.ParallelMap:
		if leaf.Replication == 0 {
			return 0, false, nil
		}
		fn := leaf.Function()
		if fn == nil {
			return 0, false, nil
		}
		per := 1
		if ot := fn.OutputType(); ot != nil && ot.IsArray && ot.SizeKnown() {
			per = *ot.ArraySize
		}
		return leaf.Replication * per, true, nil
	default:
		return passthroughSizeBackward(set, leaf, resolve)
	}
}

func forwardSize(set *Set, sig *Signal, resolve resolveFn) (int, bool, error) {
	if sig.InPort == nil {
		return 0, false, nil
	}
	leaf := ir.OwnerLeaf(sig.InPort)
	if leaf == nil {
		return 0, false, nil
	}
	switch leaf.Kind {
	case ir.UnzipX:
		return sumBranchSizes(set, leaf.Out, resolve)
	case ir.ParallelMap:
		if leaf.Replication == 0 {
			return 0, false, nil
		}
		fn := leaf.Function()
		if fn == nil {
			return 0, false, nil
		}
		per := 1
		idx := portIndex(leaf.In, sig.InPort)
		if idx >= 0 && idx < len(fn.Params) {
			if pt := fn.Params[idx].Type; pt != nil && pt.IsArray && pt.SizeKnown() {
				per = *pt.ArraySize
			}
		}
		return leaf.Replication * per, true, nil
	default:
		return passthroughSizeForward(set, leaf, resolve)
	}
}

func sumBranchSizes(set *Set, ports []*ir.Port, resolve resolveFn) (int, bool, error) {
	total := 0
	any := false
	for _, p := range ports {
		sig := set.ForConsumer(p)
		if sig == nil {
			sig = set.ForProducer(p)
		}
		if sig == nil {
			continue
		}
		if !sig.Type.IsArray {
			total++
			any = true
			continue
		}
		sz, ok, err := resolve(sig)
		if err != nil {
			return 0, false, err
		}
		if !ok {
			return 0, false, nil
		}
		total += sz
		any = true
	}
	return total, any, nil
}

func passthroughSizeBackward(set *Set, leaf *ir.Leaf, resolve resolveFn) (int, bool, error) {
	for _, p := range leaf.In {
		sig := set.ForConsumer(p)
		if sig == nil || !sig.Type.IsArray {
			continue
		}
		sz, ok, err := resolve(sig)
		if err != nil || ok {
			return sz, ok, err
		}
	}
	return 0, false, nil
}

func passthroughSizeForward(set *Set, leaf *ir.Leaf, resolve resolveFn) (int, bool, error) {
	for _, p := range leaf.Out {
		sig := set.ForProducer(p)
		if sig == nil || !sig.Type.IsArray {
			continue
		}
		sz, ok, err := resolve(sig)
		if err != nil || ok {
			return sz, ok, err
		}
	}
	return 0, false, nil
}
