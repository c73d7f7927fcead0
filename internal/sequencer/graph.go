package sequencer

import (
	"fmt"

	"github.com/google/uuid"
)

// PortType distinguishes control flow links from data links.
type PortType uint8

const (
	PortDefault PortType = iota // control flow
	PortObject                  // carries an entity id
	PortDataID                  // carries a bridge handle (audio, light, text)
)

var portTypeNames = [...]string{
	PortDefault: "default",
	PortObject:  "object",
	PortDataID:  "data_id",
}

func (t PortType) String() string {
	if int(t) < len(portTypeNames) {
		return portTypeNames[t]
	}
	return fmt.Sprintf("PortType(%d)", t)
}

// ParsePortType maps a name to a PortType. The empty name is PortDefault.
func ParsePortType(name string) (PortType, error) {
	if name == "" {
		return PortDefault, nil
	}
	for i, n := range portTypeNames {
		if n == name {
			return PortType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown port type %q", name)
}

// Link is one end of a connection as recorded on a node. On a Nexts entry
// Node is the target; on a Prevs entry Node is the source.
type Link struct {
	Node       uuid.UUID
	InputPort  int
	OutputPort int
	Type       PortType
}

// Node is one step of an event graph. Behavior state lives on the node and
// is shared by every instance that passes through it.
type Node struct {
	GUID     uuid.UUID
	Kind     string
	Name     string
	Prevs    []Link
	Nexts    []Link
	Behavior Behavior

	active int
}

// Active returns how many running instances sit on this node.
func (n *Node) Active() int { return n.active }

// NextsFor returns the control-flow successors leaving through any of ports,
// in declaration order.
func (n *Node) NextsFor(ports []int) []Link {
	var out []Link
	for _, l := range n.Nexts {
		if l.Type != PortDefault {
			continue
		}
		for _, p := range ports {
			if l.OutputPort == p {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

// Graph is a loaded event graph.
type Graph struct {
	ID    string
	Nodes []*Node
	index map[uuid.UUID]*Node
}

func NewGraph(id string) *Graph {
	return &Graph{ID: id, index: make(map[uuid.UUID]*Node)}
}

// Add appends a node with a fresh GUID.
func (g *Graph) Add(kind, name string, b Behavior) *Node {
	n := &Node{GUID: uuid.New(), Kind: kind, Name: name, Behavior: b}
	g.insert(n)
	return n
}

func (g *Graph) insert(n *Node) {
	if n.GUID == uuid.Nil {
		n.GUID = uuid.New()
	}
	g.Nodes = append(g.Nodes, n)
	g.index[n.GUID] = n
}

// Node returns the node with the given GUID, or nil.
func (g *Graph) Node(id uuid.UUID) *Node {
	return g.index[id]
}

// Connect links from's output port to to's input port, recording the link on
// both nodes.
func (g *Graph) Connect(from *Node, out int, to *Node, in int, t PortType) {
	from.Nexts = append(from.Nexts, Link{Node: to.GUID, InputPort: in, OutputPort: out, Type: t})
	to.Prevs = append(to.Prevs, Link{Node: from.GUID, InputPort: in, OutputPort: out, Type: t})
}

// Starts returns the entry nodes in graph order.
func (g *Graph) Starts() []*Node {
	var out []*Node
	for _, n := range g.Nodes {
		if n.Kind == KindStart {
			out = append(out, n)
		}
	}
	return out
}

// Validate checks that every link has a reciprocal entry on the other node.
func (g *Graph) Validate() error {
	for _, n := range g.Nodes {
		for _, l := range n.Nexts {
			target := g.index[l.Node]
			if target == nil {
				return fmt.Errorf("graph %s: node %s links to unknown node %s", g.ID, n.GUID, l.Node)
			}
			back := Link{Node: n.GUID, InputPort: l.InputPort, OutputPort: l.OutputPort, Type: l.Type}
			if count(target.Prevs, back) != count(n.Nexts, l) {
				return fmt.Errorf("graph %s: link %s:%d -> %s:%d has no reciprocal prev",
					g.ID, n.GUID, l.OutputPort, target.GUID, l.InputPort)
			}
		}
		for _, l := range n.Prevs {
			source := g.index[l.Node]
			if source == nil {
				return fmt.Errorf("graph %s: node %s linked from unknown node %s", g.ID, n.GUID, l.Node)
			}
			fwd := Link{Node: n.GUID, InputPort: l.InputPort, OutputPort: l.OutputPort, Type: l.Type}
			if count(source.Nexts, fwd) != count(n.Prevs, l) {
				return fmt.Errorf("graph %s: link %s:%d -> %s:%d has no reciprocal next",
					g.ID, source.GUID, l.OutputPort, n.GUID, l.InputPort)
			}
		}
	}
	return nil
}

func count(links []Link, l Link) int {
	n := 0
	for _, x := range links {
		if x == l {
			n++
		}
	}
	return n
}
