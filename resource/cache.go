// Package resource provides the name-keyed registry of GPU objects shared by
// the renderer and asset loaders.
package resource

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

var ErrDuplicateName = errors.New("resource: duplicate name")

// Cache maps unique names to values. It is safe for concurrent use; lookups
// never block registration.
type Cache[T any] struct {
	items sync.Map
	count atomic.Int64
}

func NewCache[T any]() *Cache[T] {
	return &Cache[T]{}
}

// Get returns the value registered under name. A miss returns the zero value
// and false.
func (c *Cache[T]) Get(name string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	v, ok := c.items.Load(name)
	if !ok {
		return zero, false
	}
	return v.(T), true
}

// Add registers v under name. Registering a name twice fails with
// ErrDuplicateName and keeps the first value.
func (c *Cache[T]) Add(name string, v T) error {
	if _, loaded := c.items.LoadOrStore(name, v); loaded {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	c.count.Add(1)
	return nil
}

// AddMany registers every entry in name order and stops at the first
// duplicate. Entries added before the failure stay registered.
func (c *Cache[T]) AddMany(items map[string]T) error {
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := c.Add(name, items[name]); err != nil {
			return err
		}
	}
	return nil
}

// Remove unregisters name and returns the value it held.
func (c *Cache[T]) Remove(name string) (T, bool) {
	var zero T
	v, ok := c.items.LoadAndDelete(name)
	if !ok {
		return zero, false
	}
	c.count.Add(-1)
	return v.(T), true
}

// Len returns the number of registered names.
func (c *Cache[T]) Len() int {
	if c == nil {
		return 0
	}
	return int(c.count.Load())
}

// Range calls fn for every entry until fn returns false.
func (c *Cache[T]) Range(fn func(name string, v T) bool) {
	c.items.Range(func(k, v any) bool {
		return fn(k.(string), v.(T))
	})
}
