package ir

// Composite contains a nested set of Leaves/Composites plus its own IOPorts
// (spec §3 "Composite").
type Composite struct {
	base
	Children   []Process
	In         []*IOPort
	Out        []*IOPort
	childIndex map[string]int
}

func NewComposite(id string) *Composite {
	return &Composite{base: base{Id: id}, childIndex: map[string]int{}}
}

func (c *Composite) IsComposite() bool { return true }

// AddChild appends a process to the composite, recording the child's
// parentage and hierarchy path (spec §3 invariant 3: "a process's parent
// hierarchy matches its physical containment").
func (c *Composite) AddChild(p Process) {
	p.setParent(c)
	p.SetHierarchy(append(c.Hierarchy().Clone(), c.ID()))
	if c.childIndex == nil {
		c.childIndex = map[string]int{}
	}
	c.childIndex[p.ID()] = len(c.Children)
	c.Children = append(c.Children, p)
}

// RemoveChild detaches a process by Id from this composite.
func (c *Composite) RemoveChild(id string) bool {
	idx, ok := c.childIndex[id]
	if !ok || idx >= len(c.Children) {
		return false
	}
	c.Children = append(c.Children[:idx], c.Children[idx+1:]...)
	delete(c.childIndex, id)
	for i := idx; i < len(c.Children); i++ {
		c.childIndex[c.Children[i].ID()] = i
	}
	return true
}

// Child looks up an immediate child by Id.
func (c *Composite) Child(id string) Process {
	if idx, ok := c.childIndex[id]; ok && idx < len(c.Children) {
		return c.Children[idx]
	}
	return nil
}

func (c *Composite) AddIn(p *IOPort) {
	p.SetOwner(c)
	c.In = append(c.In, p)
}

func (c *Composite) AddOut(p *IOPort) {
	p.SetOwner(c)
	c.Out = append(c.Out, p)
}

// ParallelComposite specializes Composite with a replication count and a
// distinguished contained process whose semantics is "apply to each stripe
// of an N-wide input" (spec §3 "ParallelComposite").
type ParallelComposite struct {
	Composite
	Replication int
	ContainedID string
}

func NewParallelComposite(id string, n int, containedID string) *ParallelComposite {
	return &ParallelComposite{
		Composite:   Composite{base: base{Id: id}, childIndex: map[string]int{}},
		Replication: n,
		ContainedID: containedID,
	}
}

func (c *ParallelComposite) Contained() Process {
	return c.Child(c.ContainedID)
}
