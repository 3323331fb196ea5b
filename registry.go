package inject

import (
	"reflect"
	"sync"

	"github.com/junioryono/inject/metadata"
)

// Registry owns the bindings of one binder. Class bindings are kept in
// registration order and indexed by key; the index is rebuilt lazily after
// a binding is added or renamed, so the last registration for a key wins.
// Constants are replaced, lists and maps accumulate.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	classes     []*ClassBinding
	index       map[Key]*ClassBinding
	dirty       bool
	constants   map[string]*ConstantBinding
	lists       map[Key]*ListBinding
	maps        map[Key]*MapBinding
	environment string

	metadata  metadata.Provider
	singleton *singletonScope
	session   SessionScope
}

func newRegistry(md metadata.Provider, singleton *singletonScope, session SessionScope, environment string) *Registry {
	return &Registry{
		index:       make(map[Key]*ClassBinding),
		constants:   make(map[string]*ConstantBinding),
		lists:       make(map[Key]*ListBinding),
		maps:        make(map[Key]*MapBinding),
		environment: environment,
		metadata:    md,
		singleton:   singleton,
		session:     session,
	}
}

// Bind registers a class binding for t. A previous binding for the same
// key is replaced.
func (r *Registry) Bind(t reflect.Type) *ClassBinding {
	return r.add(newClassBinding(r, Key{Type: t}))
}

// BindNamed registers a class binding for t qualified by name.
func (r *Registry) BindNamed(t reflect.Type, name string) *ClassBinding {
	return r.add(newClassBinding(r, Key{Type: t, Name: name, Named: true}))
}

// BindConstant registers the constant name, replacing a previous one.
func (r *Registry) BindConstant(name string) *ConstantBinding {
	b := newConstantBinding(name)

	r.mu.Lock()
	r.constants[name] = b
	r.mu.Unlock()

	return b
}

// BindList returns the list labeled label, creating it on first use.
func (r *Registry) BindList(label string) *ListBinding {
	return r.list(label, nil)
}

// BindListOf returns the list of elements of type t, creating it on first
// use. Resolved entries must be assignable to t. Typed lists are keyed by
// t itself, apart from labeled lists.
func (r *Registry) BindListOf(t reflect.Type) *ListBinding {
	if t == nil {
		b := newListBinding("", nil)
		return b.fail(ConfigurationError{Key: b.Key(), Operation: "bind-list", Cause: ErrNilType})
	}
	return r.list("", t)
}

// BindMap returns the map labeled label, creating it on first use.
func (r *Registry) BindMap(label string) *MapBinding {
	return r.mapBinding(label, nil)
}

// BindMapOf returns the map of values of type t, creating it on first use.
// Resolved values must be assignable to t.
func (r *Registry) BindMapOf(t reflect.Type) *MapBinding {
	if t == nil {
		b := newMapBinding("", nil)
		return b.fail(ConfigurationError{Key: b.Key(), Operation: "bind-map", Cause: ErrNilType})
	}
	return r.mapBinding("", t)
}

// HasBinding reports whether t, optionally qualified by name, can be
// resolved: it is bound explicitly or a convention can supply an implicit
// binding.
func (r *Registry) HasBinding(t reflect.Type, name ...string) bool {
	key := KeyOf(t, name...)
	if _, ok := r.binding(key); ok {
		return true
	}

	_, err := r.synthesize(key)
	return err == nil
}

// HasExplicitBinding reports whether t, optionally qualified by name, is
// bound explicitly. An implicit binding counts once it has been resolved
// successfully.
func (r *Registry) HasExplicitBinding(t reflect.Type, name ...string) bool {
	b, ok := r.binding(KeyOf(t, name...))
	return ok && b.explicit()
}

// HasConstant reports whether the constant name is bound.
func (r *Registry) HasConstant(name string) bool {
	_, ok := r.constant(name)
	return ok
}

// HasList reports whether the list labeled label exists.
func (r *Registry) HasList(label string) bool {
	_, ok := r.lookupList(listKey(label))
	return ok
}

// HasListOf reports whether the list of elements of type t exists.
func (r *Registry) HasListOf(t reflect.Type) bool {
	_, ok := r.lookupList(listKeyOf(t))
	return ok
}

// HasMap reports whether the map labeled label exists.
func (r *Registry) HasMap(label string) bool {
	_, ok := r.lookupMap(mapKey(label))
	return ok
}

// HasMapOf reports whether the map of values of type t exists.
func (r *Registry) HasMapOf(t reflect.Type) bool {
	_, ok := r.lookupMap(mapKeyOf(t))
	return ok
}

// Bindings returns the class bindings currently visible, in registration order.
func (r *Registry) Bindings() []*ClassBinding {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reindex()

	out := make([]*ClassBinding, 0, len(r.index))
	for _, b := range r.classes {
		if r.index[b.Key()] == b {
			out = append(out, b)
		}
	}
	return out
}

// SetEnvironment sets the environment label conventions are selected by.
func (r *Registry) SetEnvironment(environment string) {
	r.mu.Lock()
	r.environment = environment
	r.mu.Unlock()
}

// Environment returns the active environment label.
func (r *Registry) Environment() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.environment
}

// Metadata returns the metadata provider.
func (r *Registry) Metadata() metadata.Provider {
	return r.metadata
}

// SessionScope returns the installed session scope.
func (r *Registry) SessionScope() SessionScope {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.session
}

func (r *Registry) setSessionScope(s SessionScope) {
	r.mu.Lock()
	r.session = s
	r.mu.Unlock()
}

// bindInstance points key at a fixed instance, reusing the binding that
// currently serves key when it already targets an instance.
func (r *Registry) bindInstance(key Key, v any) {
	if b, ok := r.binding(key); ok && b.explicit() {
		if _, t, _, _ := b.snapshot(); t.kind == targetInstance {
			b.setTarget(target{kind: targetInstance, instance: v})
			return
		}
	}

	r.add(newClassBinding(r, key)).ToInstance(v)
}

// configurationErrors collects the errors recorded on the visible bindings.
func (r *Registry) configurationErrors() []error {
	var errs []error
	for _, b := range r.Bindings() {
		if err := b.Err(); err != nil {
			errs = append(errs, err)
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.constants {
		if err := b.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, b := range r.lists {
		if err := b.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, b := range r.maps {
		if err := b.Err(); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

func (r *Registry) add(b *ClassBinding) *ClassBinding {
	r.mu.Lock()
	r.classes = append(r.classes, b)
	r.dirty = true
	r.mu.Unlock()
	return b
}

func (r *Registry) markDirty() {
	r.mu.Lock()
	r.dirty = true
	r.mu.Unlock()
}

// reindex rebuilds the key index. Callers hold the write lock.
func (r *Registry) reindex() {
	if !r.dirty {
		return
	}

	index := make(map[Key]*ClassBinding, len(r.classes))
	for _, b := range r.classes {
		index[b.Key()] = b
	}

	r.index = index
	r.dirty = false
}

// acquire looks up the binding for key to resolve it. Implicit bindings are
// pinned until release.
func (r *Registry) acquire(key Key) (*ClassBinding, bool) {
	r.mu.RLock()
	if !r.dirty {
		b, ok := r.index[key]
		if ok {
			b.pin()
		}
		r.mu.RUnlock()
		return b, ok
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.reindex()
	b, ok := r.index[key]
	if ok {
		b.pin()
	}
	return b, ok
}

func (r *Registry) binding(key Key) (*ClassBinding, bool) {
	r.mu.RLock()
	if !r.dirty {
		b, ok := r.index[key]
		r.mu.RUnlock()
		return b, ok
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.reindex()
	b, ok := r.index[key]
	return b, ok
}

func (r *Registry) constant(name string) (*ConstantBinding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.constants[name]
	return b, ok
}

func (r *Registry) lookupList(key Key) (*ListBinding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.lists[key]
	return b, ok
}

func (r *Registry) lookupMap(key Key) (*MapBinding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.maps[key]
	return b, ok
}

// list returns the labeled list, or the typed list when elem is set.
func (r *Registry) list(label string, elem reflect.Type) *ListBinding {
	nb := newListBinding(label, elem)

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.lists[nb.Key()]
	if !ok {
		b = nb
		r.lists[b.Key()] = b
	}
	return b
}

// mapBinding returns the labeled map, or the typed map when elem is set.
func (r *Registry) mapBinding(label string, elem reflect.Type) *MapBinding {
	nb := newMapBinding(label, elem)

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.maps[nb.Key()]
	if !ok {
		b = nb
		r.maps[b.Key()] = b
	}
	return b
}

// synthesize builds an unregistered implicit binding for key from the
// conventions of its type. Named keys never fall back to conventions.
//
// An implementation convention wins over a provider convention; a type
// with neither is bound to itself when it is constructible.
func (r *Registry) synthesize(key Key) (*ClassBinding, error) {
	if key.Named || !key.typed() {
		return nil, ErrBindingNotFound
	}

	b := &ClassBinding{registry: r, key: key, implicit: true}

	conv, hasConv := r.metadata.Convention(key.Type)
	if hasConv && conv.Singleton {
		b.scopeKind = scopeSingleton
	}

	if impl, ok := conv.Implementation(r.Environment()); ok {
		if !impl.AssignableTo(key.Type) {
			return nil, ErrNotAssignable
		}
		b.target = target{kind: targetType, typ: impl}
		return b, nil
	}

	if hasConv && conv.Provider != nil {
		b.target = target{kind: targetProviderType, typ: conv.Provider}
		return b, nil
	}

	if conv.HasImplementation() {
		return nil, ErrNoEnvironmentFallback
	}

	if _, ok := r.metadata.Constructor(key.Type); ok {
		b.target = target{kind: targetSelf}
		return b, nil
	}

	return nil, ErrBindingNotFound
}

// materialize stores an implicit binding and pins it like acquire. When
// another binding for the same key got there first, that binding is
// returned instead.
func (r *Registry) materialize(b *ClassBinding) *ClassBinding {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reindex()

	key := b.Key()
	if existing, ok := r.index[key]; ok {
		existing.pin()
		return existing
	}

	r.classes = append(r.classes, b)
	r.index[key] = b
	b.pin()
	return b
}

// release ends one resolution of a binding returned by acquire or
// materialize, and reports whether it confirmed an implicit binding.
// The first success confirms it. A failure removes it only when it is
// unconfirmed and no other resolution holds it.
func (r *Registry) release(b *ClassBinding, err error) bool {
	if !b.implicit {
		return false
	}

	if err == nil {
		confirmed := b.confirmed.CompareAndSwap(false, true)
		b.inflight.Add(-1)
		return confirmed
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if b.inflight.Add(-1) > 0 || b.confirmed.Load() {
		return false
	}

	for i, c := range r.classes {
		if c == b {
			r.classes = append(r.classes[:i], r.classes[i+1:]...)
			r.dirty = true
			break
		}
	}
	return false
}

// scopeFor returns the scope instances of b are obtained through. Without
// an explicit scope a singleton convention on the constructed type applies.
func (r *Registry) scopeFor(b *ClassBinding) Scope {
	key, t, kind, custom := b.snapshot()

	switch kind {
	case scopeSingleton:
		return r.singleton
	case scopeSession:
		return r.SessionScope()
	case scopeCustom:
		return custom
	case scopePrototype:
		return Prototype
	}

	if typ := t.constructedType(key); typ != nil {
		if conv, ok := r.metadata.Convention(typ); ok && conv.Singleton {
			return r.singleton
		}
	}

	return Prototype
}
