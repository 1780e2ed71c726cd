package ecs

// Registry tracks one dense store per component kind and supports bulk
// cleanup on entity destroy.
type Registry struct {
	stores [MaxKinds]*DenseStore
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Store returns the store for kind, creating it on first use.
func (r *Registry) Store(kind ComponentKind) *DenseStore {
	s := r.stores[kind]
	if s == nil {
		s = NewDenseStore(kind)
		r.stores[kind] = s
	}
	return s
}

// Lookup returns the store for kind without creating it.
func (r *Registry) Lookup(kind ComponentKind) (*DenseStore, bool) {
	s := r.stores[kind]
	return s, s != nil
}

// RemoveAll clears the given entity from every registered component store.
func (r *Registry) RemoveAll(id EntityID) {
	for _, s := range r.stores {
		if s != nil {
			s.Remove(id)
		}
	}
}
