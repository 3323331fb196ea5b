package inject

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/junioryono/inject/metadata"
)

// Binding is a stored rule mapping a key to a producer. The concrete
// bindings are *ClassBinding, *ConstantBinding, *ListBinding and *MapBinding.
//
// Binding values are comparable by identity; scopes key their caches on them.
type Binding interface {
	// Key returns the key the binding is registered under.
	Key() Key

	// Err returns the configuration errors recorded on the binding.
	Err() error

	binding()
}

var (
	_ Binding = (*ClassBinding)(nil)
	_ Binding = (*ConstantBinding)(nil)
	_ Binding = (*ListBinding)(nil)
	_ Binding = (*MapBinding)(nil)
)

type targetKind int

const (
	targetSelf targetKind = iota // construct the key type itself
	targetType
	targetInstance
	targetProvider
	targetProviderType
	targetClosure
)

func (k targetKind) String() string {
	switch k {
	case targetSelf:
		return "self"
	case targetType:
		return "type"
	case targetInstance:
		return "instance"
	case targetProvider:
		return "provider"
	case targetProviderType:
		return "provider-type"
	case targetClosure:
		return "closure"
	default:
		return "unknown"
	}
}

// target describes one producer. Exactly one of the fields matching kind is set.
type target struct {
	kind     targetKind
	typ      reflect.Type
	instance any
	provider Provider
	closure  *metadata.Constructor
}

// ClassBinding binds a type, optionally qualified by a name, to a concrete
// type, a fixed instance, a provider or a closure. Without a target the
// bound type itself is constructed.
//
//	b.Bind(inject.TypeOf[Tire]()).To(inject.TypeOf[Goodyear]())
//	b.Bind(inject.TypeOf[*Config]()).ToInstance(cfg)
//	b.Bind(inject.TypeOf[Tire]()).Named("spare").ToClosure(NewSpareTire).AsSingleton()
//
// The last target call wins. Configuration errors are recorded and returned
// by Err and Binder.Injector.
type ClassBinding struct {
	registry *Registry

	mu        sync.RWMutex
	key       Key
	target    target
	scopeKind scopeKind
	scope     Scope
	err       error

	// implicit bindings are synthesized from conventions and count as
	// explicit once confirmed by a successful resolution. inflight counts
	// the resolutions of an implicit binding still running.
	implicit  bool
	confirmed atomic.Bool
	inflight  atomic.Int32
}

func newClassBinding(r *Registry, key Key) *ClassBinding {
	b := &ClassBinding{registry: r, key: key}
	if key.Type == nil {
		b.err = ConfigurationError{Operation: "bind", Cause: ErrNilType}
	}
	return b
}

func (*ClassBinding) binding() {}

// Key returns the key the binding is registered under.
func (b *ClassBinding) Key() Key {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.key
}

// Err returns the configuration errors recorded on the binding.
func (b *ClassBinding) Err() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.err
}

// Scope returns the scope instances of this binding are obtained through.
func (b *ClassBinding) Scope() Scope {
	return b.registry.scopeFor(b)
}

// To binds to the concrete type t, which must be assignable to the bound
// type. t is constructed with its metadata constructor; a t without one is
// resolved as a dependency of its own.
func (b *ClassBinding) To(t reflect.Type) *ClassBinding {
	key := b.Key()
	if err := checkType(key, "to", t); err != nil {
		return b.fail(err)
	}

	return b.setTarget(target{kind: targetType, typ: t})
}

// ToInstance binds to a fixed instance. Fixed instances bypass scopes.
func (b *ClassBinding) ToInstance(v any) *ClassBinding {
	if err := checkInstance(b.Key(), "to-instance", v); err != nil {
		return b.fail(err)
	}

	return b.setTarget(target{kind: targetInstance, instance: v})
}

// ToProvider binds to a provider instance.
func (b *ClassBinding) ToProvider(p Provider) *ClassBinding {
	if err := checkProvider(b.Key(), "to-provider", p); err != nil {
		return b.fail(err)
	}

	return b.setTarget(target{kind: targetProvider, provider: p})
}

// ToProviderType binds to a provider type. The provider is resolved through
// the injector and must implement Provider.
func (b *ClassBinding) ToProviderType(t reflect.Type) *ClassBinding {
	if err := checkProviderType(b.Key(), "to-provider-type", t); err != nil {
		return b.fail(err)
	}

	return b.setTarget(target{kind: targetProviderType, typ: t})
}

// ToClosure binds to a factory function. The parameters of fn are
// resolved like constructor parameters; fn must return a value and may
// return an error as well.
//
//	b.Bind(inject.TypeOf[Tire]()).ToClosure(func(cfg *Config) (Tire, error) {
//	    return NewTire(cfg.TireSize)
//	})
func (b *ClassBinding) ToClosure(fn any, opts ...metadata.Option) *ClassBinding {
	c, err := describeClosure(b.Key(), "to-closure", fn, opts)
	if err != nil {
		return b.fail(err)
	}

	return b.setTarget(target{kind: targetClosure, closure: c})
}

// Named qualifies the binding with name.
func (b *ClassBinding) Named(name string) *ClassBinding {
	b.mu.Lock()
	b.key = Key{Type: b.key.Type, Name: name, Named: true}
	b.mu.Unlock()

	b.registry.markDirty()
	return b
}

// AsSingleton shares one instance for the lifetime of the binder.
func (b *ClassBinding) AsSingleton() *ClassBinding {
	return b.setScope(scopeSingleton, nil)
}

// AsPrototype creates an instance per resolution, overriding a singleton
// convention of the target type.
func (b *ClassBinding) AsPrototype() *ClassBinding {
	return b.setScope(scopePrototype, nil)
}

// InSession caches instances in the session attached with
// Injector.SetSession.
func (b *ClassBinding) InSession() *ClassBinding {
	return b.setScope(scopeSession, nil)
}

// In obtains instances through a custom scope.
func (b *ClassBinding) In(s Scope) *ClassBinding {
	if s == nil {
		return b.fail(ConfigurationError{Key: b.Key(), Operation: "in", Cause: ErrNilScope})
	}

	return b.setScope(scopeCustom, s)
}

func (b *ClassBinding) setTarget(t target) *ClassBinding {
	b.mu.Lock()
	b.target = t
	b.mu.Unlock()
	return b
}

func (b *ClassBinding) setScope(kind scopeKind, s Scope) *ClassBinding {
	b.mu.Lock()
	b.scopeKind = kind
	b.scope = s
	b.mu.Unlock()
	return b
}

func (b *ClassBinding) fail(err error) *ClassBinding {
	b.mu.Lock()
	b.err = errors.Join(b.err, err)
	b.mu.Unlock()
	return b
}

// snapshot returns the fields resolution depends on.
func (b *ClassBinding) snapshot() (Key, target, scopeKind, Scope) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.key, b.target, b.scopeKind, b.scope
}

// explicit reports whether the binding was registered by the caller or
// confirmed by a successful implicit resolution.
// pin marks one more resolution of an implicit binding as running. The
// registry pins under its lock.
func (b *ClassBinding) pin() {
	if b.implicit {
		b.inflight.Add(1)
	}
}

func (b *ClassBinding) explicit() bool {
	return !b.implicit || b.confirmed.Load()
}

// constructedType returns the concrete type the binding constructs, or nil for
// instance, provider and closure targets.
func (t target) constructedType(key Key) reflect.Type {
	switch t.kind {
	case targetSelf:
		return key.Type
	case targetType:
		return t.typ
	default:
		return nil
	}
}
