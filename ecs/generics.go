package ecs

import (
	"fmt"

	"github.com/bootzin/BootEngine-sub000/ecs/component"
)

// Add attaches value to e under kind. An entity holds at most one value per
// kind; adding a second one fails with component.ErrDuplicateComponent.
func Add[T any](w *World, e Entity, kind component.ComponentKind[T], value *T) error {
	if !kind.Valid() {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	if !IsAlive(w, e) {
		return fmt.Errorf("add %s to %s: %w", kind, e, component.ErrEntityNotAlive)
	}
	if !storeFor(w, kind, true).insert(e.id(), value) {
		return fmt.Errorf("add %s to %s: %w", kind, e, component.ErrDuplicateComponent)
	}
	return nil
}

// Get returns the stored pointer for kind on e. Mutations through the pointer
// are visible to every holder.
func Get[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	if !IsAlive(w, e) {
		return nil, false
	}
	v := storeFor(w, kind, false)
	if v == nil {
		return nil, false
	}
	out := v.get(e.id())
	return out, out != nil
}

// Has reports whether e holds kind. It never fails.
func Has[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	if !IsAlive(w, e) {
		return false
	}
	s := storeFor(w, kind, false)
	return s != nil && s.has(e.id())
}

// Remove detaches kind from e, failing with component.ErrMissingComponent when
// it is absent.
func Remove[T any](w *World, e Entity, kind component.ComponentKind[T]) error {
	if !IsAlive(w, e) {
		return fmt.Errorf("remove %s from %s: %w", kind, e, component.ErrEntityNotAlive)
	}
	s := storeFor(w, kind, false)
	if s == nil || !s.remove(e.id()) {
		return fmt.Errorf("remove %s from %s: %w", kind, e, component.ErrMissingComponent)
	}
	return nil
}

// MustAdd is Add that panics on contract violations.
func MustAdd[T any](w *World, e Entity, kind component.ComponentKind[T], value *T) {
	if err := Add(w, e, kind, value); err != nil {
		panic(err)
	}
}

// MustGet is Get that panics with component.ErrMissingComponent when absent.
func MustGet[T any](w *World, e Entity, kind component.ComponentKind[T]) *T {
	v, ok := Get(w, e, kind)
	if !ok {
		panic(fmt.Errorf("get %s from %s: %w", kind, e, component.ErrMissingComponent))
	}
	return v
}

// MustRemove is Remove that panics on contract violations.
func MustRemove[T any](w *World, e Entity, kind component.ComponentKind[T]) {
	if err := Remove(w, e, kind); err != nil {
		panic(err)
	}
}
