package ir

// Clone returns a structural deep copy of the leaf with a fresh Id, port
// peers left unconnected — the caller is responsible for rewiring them.
// Grounded on inspector/graph/types.go's Type.Clone: copy every owned field,
// re-seed any side structures.
func (l *Leaf) Clone(newID string) *Leaf {
	cp := NewLeaf(newID, l.Kind)
	cp.Replication = l.Replication
	cp.InitValue = l.InitValue
	cp.Functions = append([]*FunctionRecord(nil), l.Functions...)
	for _, p := range l.In {
		np := NewPort(p.Id, p.Direction, p.Type.Clone())
		cp.AddIn(np)
	}
	for _, p := range l.Out {
		np := NewPort(p.Id, p.Direction, p.Type.Clone())
		cp.AddOut(np)
	}
	return cp
}

// EqualModuloID reports whether two leaves are value-equal ignoring their
// Ids — same Kind, same function bodies (by name, since functions are
// deduplicated by name in the registry), and same port data types in order.
// Used by the data-parallelism classifier (spec §4.2.2: "branch equality
// uses leaf value-equality rather than reference equality").
func (l *Leaf) EqualModuloID(o *Leaf) bool {
	if l == nil || o == nil {
		return l == o
	}
	if l.Kind != o.Kind || l.Replication != o.Replication || l.InitValue != o.InitValue {
		return false
	}
	if len(l.Functions) != len(o.Functions) {
		return false
	}
	for i := range l.Functions {
		if l.Functions[i] == nil || o.Functions[i] == nil {
			if l.Functions[i] != o.Functions[i] {
				return false
			}
			continue
		}
		if l.Functions[i].Name != o.Functions[i].Name {
			return false
		}
	}
	if len(l.In) != len(o.In) || len(l.Out) != len(o.Out) {
		return false
	}
	for i := range l.In {
		if !l.In[i].Type.EqualShape(o.In[i].Type) {
			return false
		}
	}
	for i := range l.Out {
		if !l.Out[i].Type.EqualShape(o.Out[i].Type) {
			return false
		}
	}
	return true
}
