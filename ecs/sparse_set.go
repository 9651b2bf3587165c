package ecs

// store is the type-erased view of a SparseSet used for bulk removal on
// entity destruction and for multi-kind queries.
type store interface {
	has(id entityID) bool
	remove(id entityID) bool
	len() int
	ids() []entityID
}

// SparseSet is a cache-friendly storage for components keyed by entity slot id.
// Values are stored by pointer so every holder observes the same record.
type SparseSet[T any] struct {
	denseIDs    []entityID
	denseValues []*T
	sparse      []int
}

func (s *SparseSet[T]) has(id entityID) bool {
	if id == 0 || int(id) > len(s.sparse) {
		return false
	}
	idx := s.sparse[id-1]
	return idx >= 0 && idx < len(s.denseIDs) && s.denseIDs[idx] == id
}

func (s *SparseSet[T]) get(id entityID) *T {
	if !s.has(id) {
		return nil
	}
	return s.denseValues[s.sparse[id-1]]
}

// insert adds a value for id. It reports false if id already has a value.
func (s *SparseSet[T]) insert(id entityID, v *T) bool {
	if id == 0 {
		return false
	}
	if s.has(id) {
		return false
	}
	for int(id) > len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	s.denseIDs = append(s.denseIDs, id)
	s.denseValues = append(s.denseValues, v)
	s.sparse[id-1] = len(s.denseIDs) - 1
	return true
}

func (s *SparseSet[T]) remove(id entityID) bool {
	if !s.has(id) {
		return false
	}
	idx := s.sparse[id-1]
	last := len(s.denseIDs) - 1
	lastID := s.denseIDs[last]

	s.denseIDs[idx] = lastID
	s.denseValues[idx] = s.denseValues[last]
	s.sparse[lastID-1] = idx

	s.denseValues[last] = nil
	s.denseIDs = s.denseIDs[:last]
	s.denseValues = s.denseValues[:last]
	s.sparse[id-1] = -1
	return true
}

func (s *SparseSet[T]) len() int {
	return len(s.denseIDs)
}

func (s *SparseSet[T]) ids() []entityID {
	return s.denseIDs
}
