package sequencer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Library holds event graphs indexed by ID.
type Library struct {
	graphs map[string]*Graph
}

// NewLibrary builds a library from in-memory graphs.
func NewLibrary(graphs ...*Graph) (*Library, error) {
	l := &Library{graphs: make(map[string]*Graph, len(graphs))}
	for _, g := range graphs {
		if err := l.add(g, ""); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// LoadLibrary decodes every *.yaml / *.yml file in dir. A missing directory
// yields an empty library.
func LoadLibrary(dir string) (*Library, error) {
	l := &Library{graphs: make(map[string]*Graph)}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read graph dir: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		path := filepath.Join(dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read graph: %w", err)
		}
		g, err := Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if err := l.add(g, path); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *Library) add(g *Graph, path string) error {
	if _, dup := l.graphs[g.ID]; dup {
		if path != "" {
			return fmt.Errorf("%s: duplicate graph id %q", path, g.ID)
		}
		return fmt.Errorf("duplicate graph id %q", g.ID)
	}
	l.graphs[g.ID] = g
	return nil
}

// Get returns the graph with the given ID, or nil.
func (l *Library) Get(id string) *Graph {
	return l.graphs[id]
}

// IDs returns every graph ID, sorted.
func (l *Library) IDs() []string {
	out := make([]string, 0, len(l.graphs))
	for id := range l.graphs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (l *Library) Count() int { return len(l.graphs) }
