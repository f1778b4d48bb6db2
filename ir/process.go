package ir

// MoC is a process's Model-of-Computation tag (spec §3). Only "sy"
// (synchronous) is currently supported.
type MoC string

const SY MoC = "sy"

// Hierarchy is the ordered sequence of ancestor Ids from the root composite,
// not including the process's own Id (spec §3 "Hierarchy").
type Hierarchy []string

func (h Hierarchy) Clone() Hierarchy {
	cp := make(Hierarchy, len(h))
	copy(cp, h)
	return cp
}

func (h Hierarchy) Equal(o Hierarchy) bool {
	if len(h) != len(o) {
		return false
	}
	for i := range h {
		if h[i] != o[i] {
			return false
		}
	}
	return true
}

// Process is the abstract supertype of Leaf and Composite (spec §3
// "Process (abstract)"). Modeled as an interface over two concrete arms
// rather than a deep inheritance tree (spec §9 design note).
type Process interface {
	ID() string
	SetID(string)
	Hierarchy() Hierarchy
	SetHierarchy(Hierarchy)
	MoC() MoC
	IsComposite() bool
	// Parent is nil for the root composite.
	Parent() *Composite
	setParent(*Composite)
}

// base carries the fields common to every Process, embedded by both Leaf
// and Composite (the "tagged union with two top-level arms" from spec §9).
type base struct {
	Id        string
	hierarchy Hierarchy
	moc       MoC
	parent    *Composite
}

func (b *base) ID() string               { return b.Id }
func (b *base) SetID(id string)          { b.Id = id }
func (b *base) Hierarchy() Hierarchy     { return b.hierarchy }
func (b *base) SetHierarchy(h Hierarchy) { b.hierarchy = h }
func (b *base) MoC() MoC {
	if b.moc == "" {
		return SY
	}
	return b.moc
}
func (b *base) Parent() *Composite    { return b.parent }
func (b *base) setParent(c *Composite) { b.parent = c }
