package sequencer

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func graphSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("event-graph.schema.json", schemaJSON)
	})
	return schema, schemaErr
}

// fileGraph is the on-disk YAML layout of a graph.
type fileGraph struct {
	ID    string     `yaml:"id"`
	Nodes []fileNode `yaml:"nodes"`
}

type fileNode struct {
	GUID   string     `yaml:"guid"`
	Kind   string     `yaml:"kind"`
	Name   string     `yaml:"name,omitempty"`
	Params yaml.Node  `yaml:"params,omitempty"`
	Prevs  []fileLink `yaml:"prevs,omitempty"`
	Nexts  []fileLink `yaml:"nexts,omitempty"`
}

type fileLink struct {
	Node   string `yaml:"node"`
	Input  int    `yaml:"input"`
	Output int    `yaml:"output"`
	Type   string `yaml:"type,omitempty"`
}

// Decode parses a YAML event graph, validates it against the graph schema
// and rebuilds its nodes. Links whose node is empty or unknown are dropped.
func Decode(data []byte) (*Graph, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse graph: %w", err)
	}
	if err := validateDoc(doc); err != nil {
		return nil, err
	}

	var fg fileGraph
	if err := yaml.Unmarshal(data, &fg); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}

	g := NewGraph(fg.ID)
	for i, fn := range fg.Nodes {
		id, err := uuid.Parse(fn.GUID)
		if err != nil {
			return nil, fmt.Errorf("graph %s: node %d: guid: %w", fg.ID, i, err)
		}
		if g.Node(id) != nil {
			return nil, fmt.Errorf("graph %s: duplicate node %s", fg.ID, id)
		}
		b, ok := NewBehavior(fn.Kind)
		if !ok {
			return nil, fmt.Errorf("graph %s: node %s: unknown kind %q", fg.ID, id, fn.Kind)
		}
		if fn.Params.Kind != 0 {
			if err := fn.Params.Decode(b); err != nil {
				return nil, fmt.Errorf("graph %s: node %s params: %w", fg.ID, id, err)
			}
		}
		if v, ok := b.(validator); ok {
			if err := v.validate(); err != nil {
				return nil, fmt.Errorf("graph %s: node %s: %w", fg.ID, id, err)
			}
		}
		g.insert(&Node{GUID: id, Kind: fn.Kind, Name: fn.Name, Behavior: b})
	}

	for i, fn := range fg.Nodes {
		n := g.Nodes[i]
		var err error
		if n.Prevs, err = decodeLinks(g, fn.Prevs); err != nil {
			return nil, fmt.Errorf("graph %s: node %s prevs: %w", fg.ID, n.GUID, err)
		}
		if n.Nexts, err = decodeLinks(g, fn.Nexts); err != nil {
			return nil, fmt.Errorf("graph %s: node %s nexts: %w", fg.ID, n.GUID, err)
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func decodeLinks(g *Graph, in []fileLink) ([]Link, error) {
	var out []Link
	for _, fl := range in {
		if fl.Node == "" || fl.Node == "null" {
			continue
		}
		id, err := uuid.Parse(fl.Node)
		if err != nil || id == uuid.Nil || g.Node(id) == nil {
			continue
		}
		t, err := ParsePortType(fl.Type)
		if err != nil {
			return nil, err
		}
		out = append(out, Link{Node: id, InputPort: fl.Input, OutputPort: fl.Output, Type: t})
	}
	return out, nil
}

// validateDoc checks a decoded YAML document against the graph schema. The
// document goes through JSON so numbers and maps have the shapes the
// validator expects.
func validateDoc(doc any) error {
	s, err := graphSchema()
	if err != nil {
		return fmt.Errorf("compile graph schema: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("graph to json: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("graph to json: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("graph schema: %w", err)
	}
	return nil
}

// Encode writes g as YAML with both prevs and nexts on every node. Links to
// nodes no longer in the graph are dropped.
func Encode(g *Graph) ([]byte, error) {
	fg := fileGraph{ID: g.ID, Nodes: make([]fileNode, 0, len(g.Nodes))}
	for _, n := range g.Nodes {
		fn := fileNode{
			GUID:  n.GUID.String(),
			Kind:  n.Kind,
			Name:  n.Name,
			Prevs: encodeLinks(g, n.Prevs),
			Nexts: encodeLinks(g, n.Nexts),
		}
		if n.Behavior != nil {
			var p yaml.Node
			if err := p.Encode(n.Behavior); err != nil {
				return nil, fmt.Errorf("graph %s: node %s params: %w", g.ID, n.GUID, err)
			}
			if len(p.Content) > 0 {
				fn.Params = p
			}
		}
		fg.Nodes = append(fg.Nodes, fn)
	}
	return yaml.Marshal(&fg)
}

func encodeLinks(g *Graph, in []Link) []fileLink {
	var out []fileLink
	for _, l := range in {
		if l.Node == uuid.Nil || g.Node(l.Node) == nil {
			continue
		}
		fl := fileLink{Node: l.Node.String(), Input: l.InputPort, Output: l.OutputPort}
		if l.Type != PortDefault {
			fl.Type = l.Type.String()
		}
		out = append(out, fl)
	}
	return out
}
