package ir

// LeafKind tags which variant of Leaf a process is (spec §3 "Leaf variants").
type LeafKind string

const (
	Comb         LeafKind = "comb"
	Delay        LeafKind = "delay"
	ZipX         LeafKind = "zipx"
	UnzipX       LeafKind = "unzipx"
	Fanout       LeafKind = "fanout"
	MapLeaf      LeafKind = "Map"
	CoalescedMap LeafKind = "CoalescedMap"
	ParallelMap  LeafKind = "ParallelMap"
	ZipWithN     LeafKind = "ZipWithN"
)

// Leaf is a process with no internal processes (spec §3 "Leaf").
type Leaf struct {
	base
	Kind LeafKind
	In   []*Port
	Out  []*Port

	// Functions holds the leaf's function reference(s). comb/Map/ZipWithN
	// carry exactly one; CoalescedMap carries the fused chain in
	// composition order; ParallelMap carries the function list applied by
	// each of its N replicas (itself possibly a coalesced chain).
	Functions []*FunctionRecord

	// Replication is only meaningful for ParallelMap: the count N of
	// independent replicated instances.
	Replication int

	// InitValue is only meaningful for Delay: the literal initial state.
	InitValue string
}

func NewLeaf(id string, kind LeafKind) *Leaf {
	return &Leaf{base: base{Id: id}, Kind: kind}
}

func (l *Leaf) IsComposite() bool { return false }

func (l *Leaf) AddIn(p *Port) {
	p.SetOwner(l)
	l.In = append(l.In, p)
}

func (l *Leaf) AddOut(p *Port) {
	p.SetOwner(l)
	l.Out = append(l.Out, p)
}

// Endpoints returns every Port owned by the leaf, inputs then outputs, in
// registration order — used by generic traversal (spec §5's "ports retain
// insertion order" ordering guarantee).
func (l *Leaf) Endpoints() []*Port {
	out := make([]*Port, 0, len(l.In)+len(l.Out))
	out = append(out, l.In...)
	out = append(out, l.Out...)
	return out
}

func (l *Leaf) Function() *FunctionRecord {
	if len(l.Functions) == 0 {
		return nil
	}
	return l.Functions[0]
}
