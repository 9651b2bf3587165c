package ecs

import "github.com/bootzin/BootEngine-sub000/ecs/component"

// snapshot copies the dense id list so callbacks may add, remove or destroy
// while the caller iterates.
func snapshot(ids []entityID) []entityID {
	if len(ids) == 0 {
		return nil
	}
	return append([]entityID(nil), ids...)
}

// ForEach calls fn for every entity holding kind.
func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(Entity, *T)) {
	s := storeFor(w, kind, false)
	if s == nil {
		return
	}
	for _, id := range snapshot(s.ids()) {
		v := s.get(id)
		if v == nil {
			continue
		}
		fn(w.entityFor(id), v)
	}
}

// ForEach2 calls fn for every entity holding both kinds.
func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	sa := storeFor(w, ka, false)
	sb := storeFor(w, kb, false)
	if sa == nil || sb == nil {
		return
	}
	for _, id := range snapshot(smallest(sa, sb).ids()) {
		a, b := sa.get(id), sb.get(id)
		if a == nil || b == nil {
			continue
		}
		fn(w.entityFor(id), a, b)
	}
}

// ForEach3 calls fn for every entity holding all three kinds.
func ForEach3[A, B, C any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], fn func(Entity, *A, *B, *C)) {
	sa := storeFor(w, ka, false)
	sb := storeFor(w, kb, false)
	sc := storeFor(w, kc, false)
	if sa == nil || sb == nil || sc == nil {
		return
	}
	for _, id := range snapshot(smallest(sa, sb, sc).ids()) {
		a, b, c := sa.get(id), sb.get(id), sc.get(id)
		if a == nil || b == nil || c == nil {
			continue
		}
		fn(w.entityFor(id), a, b, c)
	}
}

// First returns any entity holding kind.
func First[T any](w *World, kind component.ComponentKind[T]) (Entity, bool) {
	s := storeFor(w, kind, false)
	if s == nil || s.len() == 0 {
		return 0, false
	}
	return w.entityFor(s.ids()[0]), true
}

// Count returns the number of entities holding kind.
func Count[T any](w *World, kind component.ComponentKind[T]) int {
	s := storeFor(w, kind, false)
	if s == nil {
		return 0
	}
	return s.len()
}

func smallest(stores ...store) store {
	best := stores[0]
	for _, s := range stores[1:] {
		if s.len() < best.len() {
			best = s
		}
	}
	return best
}

// Iter walks the entities matching a component signature. The match set is
// captured when the iterator is created.
type Iter struct {
	w    *World
	ents []Entity
	pos  int
}

// Query returns an iterator over entities holding every kind in the signature.
// An empty signature matches nothing.
func (w *World) Query(kinds ...component.Kind) *Iter {
	it := &Iter{w: w, pos: -1}
	if w == nil || len(kinds) == 0 {
		return it
	}
	stores := make([]store, 0, len(kinds))
	for _, k := range kinds {
		s, ok := w.stores[k.ID()]
		if !ok {
			return it
		}
		stores = append(stores, s)
	}
	for _, id := range smallest(stores...).ids() {
		match := true
		for _, s := range stores {
			if !s.has(id) {
				match = false
				break
			}
		}
		if match {
			it.ents = append(it.ents, w.entityFor(id))
		}
	}
	return it
}

// Next advances the iterator, skipping entities destroyed since the query ran.
func (it *Iter) Next() bool {
	for {
		it.pos++
		if it.pos >= len(it.ents) {
			return false
		}
		if it.w.entities.isAlive(it.ents[it.pos]) {
			return true
		}
	}
}

// Entity returns the entity at the current position.
func (it *Iter) Entity() Entity {
	return it.ents[it.pos]
}

// Len returns the number of entities captured by the query.
func (it *Iter) Len() int {
	return len(it.ents)
}

// Collect drains the iterator into a slice.
func (it *Iter) Collect() []Entity {
	var out []Entity
	for it.Next() {
		out = append(out, it.Entity())
	}
	return out
}
