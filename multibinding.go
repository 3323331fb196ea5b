package inject

import (
	"errors"
	"iter"
	"reflect"
	"sync"

	"github.com/junioryono/inject/metadata"
)

// ListBinding accumulates the entries of a list multibinding. Every call to
// Binder.BindList with the same label returns the same ListBinding, so
// contributions from several modules append to one list.
//
//	b.BindList("plugins").WithValue(auditPlugin)
//	b.BindList("plugins").WithClosure(NewMetricsPlugin)
//
// A list bound with BindListOf carries an element type; every resolved
// entry is checked against it.
type ListBinding struct {
	label string
	elem  reflect.Type

	mu      sync.RWMutex
	entries []target
	err     error
}

func newListBinding(label string, elem reflect.Type) *ListBinding {
	return &ListBinding{label: label, elem: elem}
}

func (*ListBinding) binding() {}

// Key returns the key of the list.
func (b *ListBinding) Key() Key {
	if b.elem != nil {
		return listKeyOf(b.elem)
	}
	return listKey(b.label)
}

// Label returns the list label, empty for typed lists.
func (b *ListBinding) Label() string {
	return b.label
}

// ElementType returns the declared element type, or nil for untyped lists.
func (b *ListBinding) ElementType() reflect.Type {
	return b.elem
}

// Len returns the number of contributed entries.
func (b *ListBinding) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Err returns the configuration errors recorded on the list.
func (b *ListBinding) Err() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.err
}

// WithValue appends a literal value.
func (b *ListBinding) WithValue(v any) *ListBinding {
	if v == nil {
		return b.fail(ConfigurationError{Key: b.Key(), Operation: "with-value", Cause: ErrNilTarget})
	}

	return b.add(target{kind: targetInstance, instance: v})
}

// WithProvider appends an entry produced by p.
func (b *ListBinding) WithProvider(p Provider) *ListBinding {
	if err := checkProvider(b.Key(), "with-provider", p); err != nil {
		return b.fail(err)
	}

	return b.add(target{kind: targetProvider, provider: p})
}

// WithProviderType appends an entry produced by a provider resolved
// through the injector.
func (b *ListBinding) WithProviderType(t reflect.Type) *ListBinding {
	if err := checkProviderType(b.Key(), "with-provider-type", t); err != nil {
		return b.fail(err)
	}

	return b.add(target{kind: targetProviderType, typ: t})
}

// WithClosure appends an entry produced by fn.
func (b *ListBinding) WithClosure(fn any, opts ...metadata.Option) *ListBinding {
	c, err := describeClosure(b.Key(), "with-closure", fn, opts)
	if err != nil {
		return b.fail(err)
	}

	return b.add(target{kind: targetClosure, closure: c})
}

func (b *ListBinding) add(t target) *ListBinding {
	b.mu.Lock()
	b.entries = append(b.entries, t)
	b.mu.Unlock()
	return b
}

func (b *ListBinding) fail(err error) *ListBinding {
	b.mu.Lock()
	b.err = errors.Join(b.err, err)
	b.mu.Unlock()
	return b
}

func (b *ListBinding) snapshot() ([]target, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.err != nil {
		return nil, b.err
	}

	entries := make([]target, len(b.entries))
	copy(entries, b.entries)
	return entries, nil
}

// MapBinding accumulates the entries of a map multibinding. Keys keep the
// position of their first registration; registering a key again replaces
// its value.
//
//	b.BindMap("routes").WithEntry("/health", healthHandler)
//	b.BindMap("routes").WithEntryFromClosure("/users", NewUsersHandler)
type MapBinding struct {
	label string
	elem  reflect.Type

	mu      sync.RWMutex
	keys    []string
	entries map[string]target
	err     error
}

func newMapBinding(label string, elem reflect.Type) *MapBinding {
	return &MapBinding{label: label, elem: elem, entries: make(map[string]target)}
}

func (*MapBinding) binding() {}

// Key returns the key of the map.
func (b *MapBinding) Key() Key {
	if b.elem != nil {
		return mapKeyOf(b.elem)
	}
	return mapKey(b.label)
}

// Label returns the map label, empty for typed maps.
func (b *MapBinding) Label() string {
	return b.label
}

// ElementType returns the declared value type, or nil for untyped maps.
func (b *MapBinding) ElementType() reflect.Type {
	return b.elem
}

// Len returns the number of distinct keys.
func (b *MapBinding) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.keys)
}

// Err returns the configuration errors recorded on the map.
func (b *MapBinding) Err() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.err
}

// WithEntry sets key to a literal value.
func (b *MapBinding) WithEntry(key string, v any) *MapBinding {
	if v == nil {
		return b.fail(ConfigurationError{Key: b.Key(), Operation: "with-entry", Cause: ErrNilTarget})
	}

	return b.put(key, target{kind: targetInstance, instance: v})
}

// WithEntryFromProvider sets key to a value produced by p.
func (b *MapBinding) WithEntryFromProvider(key string, p Provider) *MapBinding {
	if err := checkProvider(b.Key(), "with-entry-from-provider", p); err != nil {
		return b.fail(err)
	}

	return b.put(key, target{kind: targetProvider, provider: p})
}

// WithEntryFromProviderType sets key to a value produced by a provider
// resolved through the injector.
func (b *MapBinding) WithEntryFromProviderType(key string, t reflect.Type) *MapBinding {
	if err := checkProviderType(b.Key(), "with-entry-from-provider-type", t); err != nil {
		return b.fail(err)
	}

	return b.put(key, target{kind: targetProviderType, typ: t})
}

// WithEntryFromClosure sets key to a value produced by fn.
func (b *MapBinding) WithEntryFromClosure(key string, fn any, opts ...metadata.Option) *MapBinding {
	c, err := describeClosure(b.Key(), "with-entry-from-closure", fn, opts)
	if err != nil {
		return b.fail(err)
	}

	return b.put(key, target{kind: targetClosure, closure: c})
}

func (b *MapBinding) put(key string, t target) *MapBinding {
	b.mu.Lock()
	if _, ok := b.entries[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.entries[key] = t
	b.mu.Unlock()
	return b
}

func (b *MapBinding) fail(err error) *MapBinding {
	b.mu.Lock()
	b.err = errors.Join(b.err, err)
	b.mu.Unlock()
	return b
}

func (b *MapBinding) snapshot() ([]string, map[string]target, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.err != nil {
		return nil, nil, b.err
	}

	keys := make([]string, len(b.keys))
	copy(keys, b.keys)

	entries := make(map[string]target, len(b.entries))
	for k, t := range b.entries {
		entries[k] = t
	}

	return keys, entries, nil
}

// OrderedMap is a resolved map multibinding. Keys are ordered by first
// registration.
type OrderedMap struct {
	keys   []string
	values map[string]any
}

func newOrderedMap(size int) *OrderedMap {
	return &OrderedMap{
		keys:   make([]string, 0, size),
		values: make(map[string]any, size),
	}
}

func (m *OrderedMap) set(key string, value any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Keys returns the keys in order.
func (m *OrderedMap) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Get returns the value stored under key.
func (m *OrderedMap) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of entries.
func (m *OrderedMap) Len() int {
	return len(m.keys)
}

// All iterates over the entries in key order.
func (m *OrderedMap) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// ToMap copies the entries into a plain map.
func (m *OrderedMap) ToMap() map[string]any {
	out := make(map[string]any, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}
