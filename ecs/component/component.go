package component

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
)

var (
	ErrEntityNotAlive       = errors.New("ecs: entity not alive")
	ErrNilComponent         = errors.New("ecs: component is nil")
	ErrInvalidComponentKind = errors.New("ecs: invalid component kind")
	ErrDuplicateComponent   = errors.New("ecs: duplicate component")
	ErrMissingComponent     = errors.New("ecs: missing component")
)

// Kind is the type-erased view of a ComponentKind used by multi-kind queries.
type Kind interface {
	ID() ComponentID
}

type ComponentKind[T any] struct {
	id ComponentID
}

func NewComponentKind[T any]() ComponentKind[T] {
	return ComponentKind[T]{id: ComponentID(nextComponentID.Add(1))}
}

func (k ComponentKind[T]) ID() ComponentID {
	return k.id
}

func (k ComponentKind[T]) Valid() bool {
	return k.id != 0
}

func (k ComponentKind[T]) String() string {
	if name, ok := Name(k.id); ok {
		return name
	}
	return "component#" + strconv.FormatUint(uint64(k.id), 10)
}

type ComponentHandle[T any] struct {
	kind ComponentKind[T]
}

func NewComponent[T any]() ComponentHandle[T] {
	return ComponentHandle[T]{kind: NewComponentKind[T]()}
}

// NewNamedComponent allocates a kind and registers it under name so
// persistence can address it.
func NewNamedComponent[T any](name string) ComponentHandle[T] {
	h := NewComponent[T]()
	if err := Register(name, h.kind.id); err != nil {
		panic(err)
	}
	return h
}

func (h ComponentHandle[T]) Kind() ComponentKind[T] {
	return h.kind
}

type ComponentID uint32

var nextComponentID atomic.Uint32

var ErrDuplicateKindName = errors.New("ecs: duplicate component kind name")

var names struct {
	sync.RWMutex
	byName map[string]ComponentID
	byID   map[ComponentID]string
}

// Register binds a kind name to id. Names are unique.
func Register(name string, id ComponentID) error {
	names.Lock()
	defer names.Unlock()
	if names.byName == nil {
		names.byName = make(map[string]ComponentID)
		names.byID = make(map[ComponentID]string)
	}
	if _, ok := names.byName[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateKindName, name)
	}
	names.byName[name] = id
	names.byID[id] = name
	return nil
}

// Lookup returns the kind registered under name.
func Lookup(name string) (ComponentID, bool) {
	names.RLock()
	defer names.RUnlock()
	id, ok := names.byName[name]
	return id, ok
}

// Name returns the registered name of id.
func Name(id ComponentID) (string, bool) {
	names.RLock()
	defer names.RUnlock()
	name, ok := names.byID[id]
	return name, ok
}
