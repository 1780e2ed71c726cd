package ecs

// ComponentKind tags a component type. An entity holds at most one
// component per kind.
type ComponentKind uint8

// MaxKinds bounds the kind space so an entity's kind set fits a bitmask.
const MaxKinds = 32

// Component is implemented by every component type. Kind must not read
// the receiver: Get calls it on a nil pointer to learn the kind of T.
type Component interface {
	Kind() ComponentKind
}

// Removable is implemented by all component stores so the Registry can
// bulk-remove an entity's data from every store on destroy.
type Removable interface {
	Remove(id EntityID)
}

// DenseStore packs one component kind into a contiguous slice with a
// sparse entity → slot index. Removal swaps the last element into the hole.
type DenseStore struct {
	kind   ComponentKind
	items  []Component
	owners []EntityID
	slots  map[EntityID]int
}

func NewDenseStore(kind ComponentKind) *DenseStore {
	return &DenseStore{
		kind:   kind,
		items:  make([]Component, 0, 64),
		owners: make([]EntityID, 0, 64),
		slots:  make(map[EntityID]int, 64),
	}
}

func (s *DenseStore) Kind() ComponentKind { return s.kind }

// Set stores c for id, replacing any existing value. Reports whether a
// value was replaced.
func (s *DenseStore) Set(id EntityID, c Component) bool {
	if slot, ok := s.slots[id]; ok {
		s.items[slot] = c
		return true
	}
	s.slots[id] = len(s.items)
	s.items = append(s.items, c)
	s.owners = append(s.owners, id)
	return false
}

func (s *DenseStore) Get(id EntityID) (Component, bool) {
	slot, ok := s.slots[id]
	if !ok {
		return nil, false
	}
	return s.items[slot], true
}

func (s *DenseStore) Remove(id EntityID) {
	slot, ok := s.slots[id]
	if !ok {
		return
	}
	last := len(s.items) - 1
	if slot != last {
		s.items[slot] = s.items[last]
		s.owners[slot] = s.owners[last]
		s.slots[s.owners[slot]] = slot
	}
	s.items[last] = nil
	s.items = s.items[:last]
	s.owners = s.owners[:last]
	delete(s.slots, id)
}

func (s *DenseStore) Has(id EntityID) bool {
	_, ok := s.slots[id]
	return ok
}

func (s *DenseStore) Len() int {
	return len(s.items)
}

// Owners returns a copy of the owning entity ids in slot order.
func (s *DenseStore) Owners() []EntityID {
	out := make([]EntityID, len(s.owners))
	copy(out, s.owners)
	return out
}
