package inject

import (
	"fmt"
	"reflect"

	"github.com/junioryono/inject/internal/graph"
	"github.com/junioryono/inject/metadata"
	"go.uber.org/zap"
)

// resolution carries the state of one top-level request. It is owned by a
// single goroutine; the path detects cycles depth first.
type resolution struct {
	injector *Injector
	registry *Registry
	path     *graph.Path[Key]
}

func (i *Injector) newResolution() *resolution {
	return &resolution{
		injector: i,
		registry: i.registry,
		path:     graph.NewPath[Key](),
	}
}

// instance resolves a class request: explicit binding first, then an
// implicit binding synthesized from conventions.
func (r *resolution) instance(key Key) (any, error) {
	if err := r.path.Push(key); err != nil {
		return nil, err
	}
	defer r.path.Pop()

	b, err := r.lookup(key)
	if err != nil {
		return nil, err
	}

	v, err := r.class(b)

	if r.registry.release(b, err) {
		_, t, _, _ := b.snapshot()
		r.injector.metrics.ObserveImplicitBinding()
		r.injector.logger.Debug("implicit binding materialized",
			zap.Stringer("key", key),
			zap.Stringer("target", t.kind),
		)
	}

	return v, err
}

// lookup returns the binding for key, synthesizing an implicit one when
// none is registered. The caller releases it.
func (r *resolution) lookup(key Key) (*ClassBinding, error) {
	if b, ok := r.registry.acquire(key); ok {
		return b, nil
	}

	b, err := r.registry.synthesize(key)
	if err != nil {
		return nil, BindingError{Key: key, Cause: err}
	}

	return r.registry.materialize(b), nil
}

// class obtains an instance through the scope of b. Fixed instances bypass
// the scope.
func (r *resolution) class(b *ClassBinding) (any, error) {
	if err := b.Err(); err != nil {
		return nil, err
	}

	key, t, _, _ := b.snapshot()
	if t.kind == targetInstance {
		return t.instance, nil
	}

	return r.registry.scopeFor(b).Obtain(b, func() (any, error) {
		return r.produce(key, t, key.Name, key.Type, "")
	})
}

// produce runs one producer and checks the result against want. site
// describes the list or map entry being produced, if any.
func (r *resolution) produce(key Key, t target, name string, want reflect.Type, site string) (any, error) {
	var (
		v   any
		err error
	)

	switch t.kind {
	case targetSelf, targetType:
		v, err = r.construct(key, t.constructedType(key))
	case targetInstance:
		v = t.instance
	case targetProvider:
		v, err = r.provide(t.provider, name, want)
	case targetProviderType:
		var p Provider
		if p, err = r.providerOf(key, t.typ); err == nil {
			v, err = r.provide(p, name, want)
		}
	case targetClosure:
		v, err = r.call(t.closure, "closure for "+key.String())
	default:
		err = BindingError{Key: key, Cause: fmt.Errorf("unknown target kind %d", t.kind)}
	}

	if err != nil {
		return nil, err
	}

	if want != nil && !assignable(v, want) {
		return nil, BindingError{
			Key:   key,
			Param: site,
			Cause: fmt.Errorf("%w: got %T, expected %s", ErrTypeMismatch, v, formatType(want)),
		}
	}

	return v, nil
}

// construct builds typ with its metadata constructor, then injects its
// properties. A typ without a constructor that differs from the requested
// type is resolved as a request of its own, so interfaces can be linked to
// other interfaces.
func (r *resolution) construct(key Key, typ reflect.Type) (any, error) {
	c, ok := r.registry.metadata.Constructor(typ)
	if !ok {
		if typ != key.Type {
			return r.instance(Key{Type: typ})
		}
		return nil, BindingError{Key: key, Cause: fmt.Errorf("%w: %s", ErrNotConstructible, formatType(typ))}
	}

	args, err := r.arguments(c.Params, formatType(typ))
	if err != nil {
		return nil, err
	}

	out, err := c.Call(args)
	if err != nil {
		return nil, ConstructorError{Type: typ, Cause: err}
	}

	out, err = r.inject(dynamic(out))
	if err != nil {
		return nil, err
	}

	if !out.IsValid() {
		return nil, nil
	}
	return out.Interface(), nil
}

func (r *resolution) provide(p Provider, name string, want reflect.Type) (any, error) {
	v, err := p.Get(name)
	if err != nil {
		return nil, ConstructorError{Type: want, Cause: err}
	}
	return v, nil
}

// providerOf resolves a provider type through the injector.
func (r *resolution) providerOf(key Key, typ reflect.Type) (Provider, error) {
	v, err := r.instance(Key{Type: typ})
	if err != nil {
		return nil, err
	}

	p, ok := v.(Provider)
	if !ok {
		return nil, BindingError{
			Key:   key,
			Cause: fmt.Errorf("%w: %s does not implement inject.Provider", ErrInvalidProvider, formatType(typ)),
		}
	}

	return p, nil
}

// call invokes a closure with injected arguments.
func (r *resolution) call(c *metadata.Constructor, owner string) (any, error) {
	args, err := r.arguments(c.Params, owner)
	if err != nil {
		return nil, err
	}

	out, err := c.Call(args)
	if err != nil {
		return nil, ConstructorError{Type: c.Type, Cause: err}
	}

	if !out.IsValid() {
		return nil, nil
	}
	return out.Interface(), nil
}

// constant resolves a named constant. Constants are neither scoped nor
// injected into.
func (r *resolution) constant(name string) (any, error) {
	key := constantKey(name)

	b, ok := r.registry.constant(name)
	if !ok {
		return nil, BindingError{Key: key, Cause: ErrBindingNotFound}
	}

	t, err := b.snapshot()
	if err != nil {
		return nil, err
	}

	if err := r.path.Push(key); err != nil {
		return nil, err
	}
	defer r.path.Pop()

	return r.produce(key, t, name, nil, "")
}

// list materializes a list multibinding in registration order.
func (r *resolution) list(key Key) ([]any, error) {
	b, ok := r.registry.lookupList(key)
	if !ok {
		return nil, BindingError{Key: key, Cause: ErrBindingNotFound}
	}

	entries, err := b.snapshot()
	if err != nil {
		return nil, err
	}

	if err := r.path.Push(key); err != nil {
		return nil, err
	}
	defer r.path.Pop()

	out := make([]any, 0, len(entries))
	for i, t := range entries {
		v, err := r.produce(key, t, b.label, b.elem, fmt.Sprintf("entry %d", i))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}

	return out, nil
}

// mapping materializes a map multibinding in first-registration key order.
func (r *resolution) mapping(key Key) (*OrderedMap, error) {
	b, ok := r.registry.lookupMap(key)
	if !ok {
		return nil, BindingError{Key: key, Cause: ErrBindingNotFound}
	}

	keys, entries, err := b.snapshot()
	if err != nil {
		return nil, err
	}

	if err := r.path.Push(key); err != nil {
		return nil, err
	}
	defer r.path.Pop()

	out := newOrderedMap(len(keys))
	for _, k := range keys {
		v, err := r.produce(key, entries[k], k, b.elem, fmt.Sprintf("entry %q", k))
		if err != nil {
			return nil, err
		}
		out.set(k, v)
	}

	return out, nil
}
