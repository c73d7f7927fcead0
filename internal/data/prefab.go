package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PrefabKind selects which component set a prefab spawns with.
type PrefabKind string

const (
	PrefabPlayer PrefabKind = "player"
	PrefabDummy  PrefabKind = "dummy"
	PrefabObject PrefabKind = "object"
)

// DummyBrain configures the scripted movement of an AI-controlled body.
type DummyBrain struct {
	TurnRate  float64 `yaml:"turn_rate"`  // radians per tick
	Magnitude float64 `yaml:"magnitude"`  // 0..1 share of move speed
	JumpEvery int     `yaml:"jump_every"` // ticks between jump attempts, 0 = never
}

// Prefab describes an entity template.
type Prefab struct {
	Name     string     `yaml:"name"`
	Kind     PrefabKind `yaml:"kind"`
	Position [3]float64 `yaml:"position"`
	Ability  string     `yaml:"ability"`  // prefab spawned on ability input (player only)
	Lifetime int        `yaml:"lifetime"` // ticks before auto-destroy, 0 = forever (objects)
	Speed    [3]float64 `yaml:"speed"`    // initial velocity (objects)
	Dummy    DummyBrain `yaml:"dummy"`
}

type prefabFile struct {
	Prefabs []Prefab `yaml:"prefabs"`
}

// PrefabTable holds entity templates indexed by name.
type PrefabTable struct {
	prefabs map[string]*Prefab
}

// Get returns the prefab with the given name, or nil.
func (t *PrefabTable) Get(name string) *Prefab {
	return t.prefabs[name]
}

// Count returns the number of prefabs.
func (t *PrefabTable) Count() int {
	return len(t.prefabs)
}

// NewPrefabTable builds a table from in-memory prefabs.
func NewPrefabTable(prefabs ...Prefab) (*PrefabTable, error) {
	t := &PrefabTable{prefabs: make(map[string]*Prefab, len(prefabs))}
	for i := range prefabs {
		p := prefabs[i]
		if p.Name == "" {
			return nil, fmt.Errorf("prefab %d: missing name", i)
		}
		switch p.Kind {
		case PrefabPlayer, PrefabDummy, PrefabObject:
		case "":
			p.Kind = PrefabObject
		default:
			return nil, fmt.Errorf("prefab %s: unknown kind %q", p.Name, p.Kind)
		}
		if _, dup := t.prefabs[p.Name]; dup {
			return nil, fmt.Errorf("prefab %s: duplicate name", p.Name)
		}
		t.prefabs[p.Name] = &p
	}
	return t, nil
}

// LoadPrefabTable loads prefabs from a YAML file.
func LoadPrefabTable(path string) (*PrefabTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prefab_list: %w", err)
	}
	var f prefabFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse prefab_list: %w", err)
	}
	t, err := NewPrefabTable(f.Prefabs...)
	if err != nil {
		return nil, fmt.Errorf("prefab_list: %w", err)
	}
	return t, nil
}
