package ir

import "github.com/forsyde/f2cc-sub001/errs"

// Parameter is one formal parameter (or the single output-parameter) of a
// combinatorial leaf's function (spec §3 "comb").
type Parameter struct {
	Name     string
	Type     *DataType
	IsOutput bool // true only for the trailing "out Tout" parameter
}

// FunctionRecord is a C-like function referenced by one or more comb leaves,
// deduplicated by name in the ProcessNetwork's function registry (spec §3
// "a registry of defined C-like functions by name").
type FunctionRecord struct {
	Name       string
	Params     []Parameter
	ReturnType *DataType // nil/KindVoid for the "k inputs + 1 out param -> void" shape
	Body       string    // raw C body text, "" if only declared (never parsed)
	Signature  string     // raw textual signature as encountered in the XML
	Hash       uint64     // content hash, populated by synthesizer Step 3
}

// IsVoidReturning reports whether this function uses the "k inputs plus one
// output parameter, returning void" admitted shape (spec §3 invariant 5).
func (f *FunctionRecord) IsVoidReturning() bool {
	return f.ReturnType == nil || f.ReturnType.Kind == KindVoid
}

// Validate checks invariant 5: exactly one of two admitted shapes, and any
// array/pointer input parameter must be const.
func (f *FunctionRecord) Validate() error {
	if f.IsVoidReturning() {
		if len(f.Params) == 0 || !f.Params[len(f.Params)-1].IsOutput {
			return errs.New(errs.InvalidModel,
				"function %q returns void but has no trailing output parameter", f.Name)
		}
	} else {
		for _, p := range f.Params {
			if p.IsOutput {
				return errs.New(errs.InvalidModel,
					"function %q has a non-void return but also an output parameter", f.Name)
			}
		}
	}
	for _, p := range f.Params {
		if p.IsOutput {
			continue
		}
		if (p.Type.IsArray || p.Type.IsPointer) && !p.Type.IsConst {
			return errs.New(errs.InvalidModel,
				"function %q: input parameter %q is an array/pointer but not const", f.Name, p.Name)
		}
	}
	return nil
}

// InputArity is the number of non-output parameters (the leaf's in-degree).
func (f *FunctionRecord) InputArity() int {
	n := 0
	for _, p := range f.Params {
		if !p.IsOutput {
			n++
		}
	}
	return n
}

// OutputType is the function's effective return type: ReturnType when
// non-void, otherwise the type of the trailing output parameter.
func (f *FunctionRecord) OutputType() *DataType {
	if !f.IsVoidReturning() {
		return f.ReturnType
	}
	if n := len(f.Params); n > 0 && f.Params[n-1].IsOutput {
		return f.Params[n-1].Type
	}
	return nil
}
