package ir

// Direction is a leaf port's data direction.
type Direction string

const (
	In  Direction = "in"
	Out Direction = "out"
)

// Endpoint is the common supertype of Port and IOPort (spec §3 "a process
// exposes Interfaces — a common supertype of Leaf Port and Composite
// IOPort"). Both a Leaf's Port and a Composite's IOPort can sit on either
// side of a `signal` binding.
type Endpoint interface {
	EndpointID() string
	Owner() Process
	SetOwner(Process)
	Peer() Endpoint
	SetPeer(Endpoint)
	Connected() bool
}

// Port is owned by exactly one Leaf and carries a single DataType.
type Port struct {
	Id        string
	Direction Direction
	Type      *DataType
	owner     Process
	peer      Endpoint
}

func NewPort(id string, dir Direction, dt *DataType) *Port {
	if dt == nil {
		dt = &DataType{}
	}
	return &Port{Id: id, Direction: dir, Type: dt}
}

func (p *Port) EndpointID() string  { return p.Id }
func (p *Port) Owner() Process      { return p.owner }
func (p *Port) SetOwner(pr Process) { p.owner = pr }
func (p *Port) Peer() Endpoint      { return p.peer }
func (p *Port) SetPeer(e Endpoint)  { p.peer = e }
func (p *Port) Connected() bool     { return p.peer != nil }

// IOPort has a dual identity: exactly one binding on the outside (shared
// Peer field, same symmetric contract as Port.Peer) and exactly one binding
// on the inside (to a child process's port/IOPort), each carrying its own
// DataType (spec §3 "Composite").
type IOPort struct {
	Id          string
	Direction   Direction
	OutsideType *DataType
	InsideType  *DataType
	owner       Process
	peer        Endpoint // outside binding
	inside      Endpoint // inside binding
}

func NewIOPort(id string, dir Direction) *IOPort {
	return &IOPort{Id: id, Direction: dir, OutsideType: &DataType{}, InsideType: &DataType{}}
}

func (p *IOPort) EndpointID() string  { return p.Id }
func (p *IOPort) Owner() Process      { return p.owner }
func (p *IOPort) SetOwner(pr Process) { p.owner = pr }
func (p *IOPort) Peer() Endpoint      { return p.peer }
func (p *IOPort) SetPeer(e Endpoint)  { p.peer = e }
func (p *IOPort) Connected() bool     { return p.peer != nil }
func (p *IOPort) Inside() Endpoint    { return p.inside }
func (p *IOPort) SetInside(e Endpoint) {
	p.inside = e
}

// Connect makes the relation symmetric, per invariant 2: connecting A to B
// makes both sides' Peer point at each other.
func Connect(a, b Endpoint) {
	a.SetPeer(b)
	b.SetPeer(a)
}

// Disconnect removes both sides of a symmetric connection.
func Disconnect(a Endpoint) {
	if a == nil {
		return
	}
	b := a.Peer()
	a.SetPeer(nil)
	if b != nil {
		b.SetPeer(nil)
	}
}

// DType returns the DataType a plain Endpoint exposes to its peer: for a
// Port this is its single Type; for an IOPort this is its OutsideType, since
// Peer is always the outside-facing binding.
func DType(e Endpoint) *DataType {
	switch v := e.(type) {
	case *Port:
		return v.Type
	case *IOPort:
		return v.OutsideType
	default:
		return nil
	}
}
