package ecs

// Registry lists every component store of a world so a destroyed entity can
// be stripped from all of them at once.
type Registry struct {
	stores []Removable
}

func NewRegistry() *Registry {
	return &Registry{stores: make([]Removable, 0, 16)}
}

func (r *Registry) Register(store Removable) {
	r.stores = append(r.stores, store)
}

// Len returns the number of registered stores.
func (r *Registry) Len() int { return len(r.stores) }

// Components counts the stores that hold data for id.
func (r *Registry) Components(id EntityID) int {
	n := 0
	for _, s := range r.stores {
		if s.Has(id) {
			n++
		}
	}
	return n
}

// RemoveAll strips id from every store and reports how many held it.
func (r *Registry) RemoveAll(id EntityID) int {
	n := 0
	for _, s := range r.stores {
		if s.Has(id) {
			s.Remove(id)
			n++
		}
	}
	return n
}
