package ir

import "fmt"

// PrimitiveKind is the scalar kind carried by a DataType (spec §3 Port/IOPort).
type PrimitiveKind string

const (
	KindVoid   PrimitiveKind = "void"
	KindBool   PrimitiveKind = "bool"
	KindChar   PrimitiveKind = "char"
	KindInt8   PrimitiveKind = "int8_t"
	KindInt16  PrimitiveKind = "int16_t"
	KindInt32  PrimitiveKind = "int32_t"
	KindInt64  PrimitiveKind = "int64_t"
	KindUInt8  PrimitiveKind = "uint8_t"
	KindUInt16 PrimitiveKind = "uint16_t"
	KindUInt32 PrimitiveKind = "uint32_t"
	KindUInt64 PrimitiveKind = "uint64_t"
	KindFloat  PrimitiveKind = "float"
	KindDouble PrimitiveKind = "double"
	// KindUnknown marks a DataType whose kind has not yet been inferred by
	// the Synthesizer (spec §4.4 Step 7).
	KindUnknown PrimitiveKind = ""
)

// DataType is a port's primitive kind plus array-ness, optional array size,
// constness, and pointer-ness (spec §3 "Port / IOPort").
type DataType struct {
	Kind      PrimitiveKind
	IsArray   bool
	ArraySize *int // nil means unknown/unset
	IsConst   bool
	IsPointer bool
}

// Known reports whether the scalar kind has been resolved.
func (d *DataType) Known() bool {
	return d != nil && d.Kind != KindUnknown
}

// SizeKnown reports whether an array's element count has been resolved.
func (d *DataType) SizeKnown() bool {
	return d != nil && d.ArraySize != nil
}

// Clone returns a deep copy so two signals never alias the same *DataType.
func (d *DataType) Clone() *DataType {
	if d == nil {
		return nil
	}
	cp := *d
	if d.ArraySize != nil {
		sz := *d.ArraySize
		cp.ArraySize = &sz
	}
	return &cp
}

// CompatibleWith reports whether d may be assigned to dst per spec §4.4's
// emit-time checks: same primitive kind, same array-ness, equal array sizes
// when both known, and dst not const.
func (d *DataType) CompatibleWith(dst *DataType) error {
	if d == nil || dst == nil {
		return fmt.Errorf("nil data type in assignment compatibility check")
	}
	if dst.IsConst {
		return fmt.Errorf("destination is const")
	}
	if d.Kind != dst.Kind {
		return fmt.Errorf("primitive kind mismatch: %s vs %s", d.Kind, dst.Kind)
	}
	if d.IsArray != dst.IsArray {
		return fmt.Errorf("array-ness mismatch: %v vs %v", d.IsArray, dst.IsArray)
	}
	if d.IsArray && d.SizeKnown() && dst.SizeKnown() && *d.ArraySize != *dst.ArraySize {
		return fmt.Errorf("array size mismatch: %d vs %d", *d.ArraySize, *dst.ArraySize)
	}
	return nil
}

func (d *DataType) String() string {
	if d == nil {
		return "<nil>"
	}
	s := string(d.Kind)
	if d.IsConst {
		s = "const " + s
	}
	if d.IsPointer {
		s += "*"
	}
	if d.IsArray {
		if d.SizeKnown() {
			s += fmt.Sprintf("[%d]", *d.ArraySize)
		} else {
			s += "[]"
		}
	}
	return s
}

// EqualShape compares kind/array-ness/size/const, ignoring pointer-ness, used
// by branch-equality checks (spec §4.2.2) that compare "modulo Id".
func (d *DataType) EqualShape(o *DataType) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.Kind != o.Kind || d.IsArray != o.IsArray || d.IsConst != o.IsConst {
		return false
	}
	if d.SizeKnown() && o.SizeKnown() {
		return *d.ArraySize == *o.ArraySize
	}
	return d.SizeKnown() == o.SizeKnown()
}
