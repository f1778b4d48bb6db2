package ir

import "fmt"

// RootID is the conventional name of the root composite (spec §3
// "Identifier").
const RootID = "f2cc0"

// ProcessNetwork is the root container: a Composite (root), the model-level
// input/output interface lists, the function registry, and unique-id
// generators (spec §3 "Process Network").
type ProcessNetwork struct {
	Name    string
	Root    *Composite
	Inputs  []Endpoint
	Outputs []Endpoint

	Functions map[string]*FunctionRecord

	// Warnings holds the non-fatal diagnostics recorded through Warn, for the
	// driver to log and for callers/tests to inspect. None of the frontend,
	// modelmodifier or synthesizer passes calls Warn, so the list stays
	// empty unless a caller records a warning itself.
	Warnings []string

	nextProcessID int
	nextSignalID  int
}

func NewProcessNetwork(name string) *ProcessNetwork {
	return &ProcessNetwork{
		Name:      name,
		Root:      NewComposite(RootID),
		Functions: map[string]*FunctionRecord{},
	}
}

// Warn records a non-fatal diagnostic.
func (n *ProcessNetwork) Warn(format string, args ...interface{}) {
	n.Warnings = append(n.Warnings, fmt.Sprintf(format, args...))
}

// NextProcessID returns a fresh, network-unique process Id with the given
// prefix (e.g. used when ModelModifier inserts a fanout/zipx/unzipx).
func (n *ProcessNetwork) NextProcessID(prefix string) string {
	n.nextProcessID++
	return fmt.Sprintf("%s%d", prefix, n.nextProcessID)
}

// NextSignalID returns a fresh, network-unique signal-variable suffix.
func (n *ProcessNetwork) NextSignalID() int {
	n.nextSignalID++
	return n.nextSignalID
}

// RegisterFunction deduplicates by name: a second reference to the same
// name reuses the existing record (spec §4.1 "Function records are
// deduplicated by name").
func (n *ProcessNetwork) RegisterFunction(f *FunctionRecord) *FunctionRecord {
	if existing, ok := n.Functions[f.Name]; ok {
		return existing
	}
	n.Functions[f.Name] = f
	return f
}

// LookupFunction retrieves a function record by name, mirroring
// inspector/graph/file.go's LookupFunction/IndexFunctions pattern.
func (n *ProcessNetwork) LookupFunction(name string) *FunctionRecord {
	return n.Functions[name]
}

// Leaves returns every Leaf reachable from the root, depth-first, in
// registration order (spec §8 testable property 3).
func (n *ProcessNetwork) Leaves() []*Leaf {
	var out []*Leaf
	var walk func(c *Composite)
	walk = func(c *Composite) {
		for _, child := range c.Children {
			switch v := child.(type) {
			case *Leaf:
				out = append(out, v)
			case *Composite:
				walk(v)
			case *ParallelComposite:
				walk(&v.Composite)
			}
		}
	}
	walk(n.Root)
	return out
}

// AllComposites returns every Composite (including ParallelComposite and the
// root) reachable from the root, depth-first.
func (n *ProcessNetwork) AllComposites() []*Composite {
	var out []*Composite
	var walk func(c *Composite)
	walk = func(c *Composite) {
		out = append(out, c)
		for _, child := range c.Children {
			switch v := child.(type) {
			case *Composite:
				walk(v)
			case *ParallelComposite:
				walk(&v.Composite)
			}
		}
	}
	walk(n.Root)
	return out
}
