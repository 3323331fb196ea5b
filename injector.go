package inject

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/junioryono/inject/internal/metrics"
	"github.com/junioryono/inject/metadata"
	"go.uber.org/zap"
)

var (
	injectorType = reflect.TypeOf((*Injector)(nil))
	sessionType  = reflect.TypeOf((*Session)(nil)).Elem()
)

// Injector resolves requests against the bindings of a Binder. It is
// registered in its own registry under *Injector, so components can ask
// for it like any other dependency.
//
// Injector is safe for concurrent use. Scopes serialize the creation of
// cached instances, so a singleton is created at most once even when it is
// first requested from several goroutines.
type Injector struct {
	id       string
	binder   *Binder
	registry *Registry
	logger   *zap.Logger
	metrics  *metrics.Collector
	closed   atomic.Bool
}

func newInjector(b *Binder) *Injector {
	return &Injector{
		id:       uuid.NewString(),
		binder:   b,
		registry: b.Registry,
		logger:   b.logger,
		metrics:  b.metrics,
	}
}

// ID returns a unique identifier of the injector.
func (i *Injector) ID() string {
	return i.id
}

// Binder returns the binder the injector was created from.
func (i *Injector) Binder() *Binder {
	return i.binder
}

// Environment returns the active environment label.
func (i *Injector) Environment() string {
	return i.registry.Environment()
}

// GetInstance resolves t, qualified by name when one is given.
//
//	v, err := injector.GetInstance(inject.TypeOf[Vehicle]())
//	spare, err := injector.GetInstance(inject.TypeOf[Tire](), "spare")
func (i *Injector) GetInstance(t reflect.Type, name ...string) (any, error) {
	if t == nil {
		return nil, ConfigurationError{Operation: "get-instance", Cause: ErrNilType}
	}

	key := KeyOf(t, name...)
	return i.resolve("class", key, func(r *resolution) (any, error) {
		return r.instance(key)
	})
}

// GetConstant resolves the constant name.
func (i *Injector) GetConstant(name string) (any, error) {
	return i.resolve("constant", constantKey(name), func(r *resolution) (any, error) {
		return r.constant(name)
	})
}

// GetList resolves the list labeled label.
func (i *Injector) GetList(label string) ([]any, error) {
	return i.getList(listKey(label))
}

// GetListOf resolves the list of elements of type t.
func (i *Injector) GetListOf(t reflect.Type) ([]any, error) {
	if t == nil {
		return nil, ConfigurationError{Operation: "get-list", Cause: ErrNilType}
	}
	return i.getList(listKeyOf(t))
}

// GetMap resolves the map labeled label.
func (i *Injector) GetMap(label string) (*OrderedMap, error) {
	return i.getMap(mapKey(label))
}

// GetMapOf resolves the map of values of type t.
func (i *Injector) GetMapOf(t reflect.Type) (*OrderedMap, error) {
	if t == nil {
		return nil, ConfigurationError{Operation: "get-map", Cause: ErrNilType}
	}
	return i.getMap(mapKeyOf(t))
}

func (i *Injector) getList(key Key) ([]any, error) {
	v, err := i.resolve("list", key, func(r *resolution) (any, error) {
		return r.list(key)
	})
	if err != nil {
		return nil, err
	}
	return v.([]any), nil
}

func (i *Injector) getMap(key Key) (*OrderedMap, error) {
	v, err := i.resolve("map", key, func(r *resolution) (any, error) {
		return r.mapping(key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*OrderedMap), nil
}

// HasBinding reports whether t can be resolved explicitly or by convention.
func (i *Injector) HasBinding(t reflect.Type, name ...string) bool {
	return i.registry.HasBinding(t, name...)
}

// HasExplicitBinding reports whether t is bound explicitly.
func (i *Injector) HasExplicitBinding(t reflect.Type, name ...string) bool {
	return i.registry.HasExplicitBinding(t, name...)
}

// HasConstant reports whether the constant name is bound.
func (i *Injector) HasConstant(name string) bool {
	return i.registry.HasConstant(name)
}

// HasList reports whether the list labeled label exists.
func (i *Injector) HasList(label string) bool {
	return i.registry.HasList(label)
}

// HasListOf reports whether the list of elements of type t exists.
func (i *Injector) HasListOf(t reflect.Type) bool {
	return i.registry.HasListOf(t)
}

// HasMap reports whether the map labeled label exists.
func (i *Injector) HasMap(label string) bool {
	return i.registry.HasMap(label)
}

// HasMapOf reports whether the map of values of type t exists.
func (i *Injector) HasMapOf(t reflect.Type) bool {
	return i.registry.HasMapOf(t)
}

// SetSession attaches s to the session scope and binds it as Session,
// qualified by name when one is given. A nil session detaches the
// current one.
func (i *Injector) SetSession(s Session, name ...string) {
	i.registry.SessionScope().SetSession(s)
	if s == nil {
		i.logger.Debug("session detached")
		return
	}

	i.registry.bindInstance(KeyOf(sessionType, name...), s)
	i.logger.Debug("session attached", zap.String("session", fmt.Sprintf("%T", s)))
}

// Invoke calls fn with injected arguments and returns its result. fn may
// return nothing, a value, an error, or a value and an error; an error
// returned by fn is passed through unchanged.
//
//	_, err := injector.Invoke(func(v Vehicle, log *zap.Logger) {
//	    log.Info("ready", zap.Int("wheels", v.Wheels()))
//	})
func (i *Injector) Invoke(fn any, opts ...metadata.Option) (any, error) {
	c, err := metadata.Describe(fn, opts...)
	if err != nil {
		return nil, ConfigurationError{Operation: "invoke", Cause: fmt.Errorf("%w: %w", ErrInvalidClosure, err)}
	}

	if i.closed.Load() {
		return nil, BindingError{Key: Key{Type: reflect.TypeOf(fn)}, Cause: ErrInjectorClosed}
	}

	r := i.newResolution()
	args, err := r.arguments(c.Params, fmt.Sprintf("%T", fn))
	if err != nil {
		i.metrics.ObserveResolution("invoke", err)
		return nil, err
	}
	i.metrics.ObserveResolution("invoke", nil)

	out, err := c.Call(args)
	if err != nil {
		return nil, err
	}

	if !out.IsValid() {
		return nil, nil
	}
	return out.Interface(), nil
}

// InjectProperties injects the tagged properties of the struct ptr points
// to. Properties that already hold a non-zero value are left untouched.
//
//	type Handler struct {
//	    Repo  Repository `inject:""`
//	    Cache Cache      `inject:"name=sessions,optional"`
//	}
func (i *Injector) InjectProperties(ptr any) error {
	v := reflect.ValueOf(ptr)
	if ptr == nil || v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ConfigurationError{
			Operation: "inject-properties",
			Cause:     fmt.Errorf("%w: expected a non-nil pointer to a struct, got %T", ErrNilTarget, ptr),
		}
	}

	_, err := i.resolve("properties", Key{Type: v.Type()}, func(r *resolution) (any, error) {
		return r.inject(v)
	})
	return err
}

// resolve runs one top-level request with its own resolution path.
func (i *Injector) resolve(kind string, key Key, fn func(*resolution) (any, error)) (any, error) {
	if i.closed.Load() {
		return nil, BindingError{Key: key, Cause: ErrInjectorClosed}
	}

	v, err := fn(i.newResolution())
	i.metrics.ObserveResolution(kind, err)

	if err != nil {
		i.logger.Debug("resolution failed",
			zap.Stringer("key", key),
			zap.Error(err),
		)
		return nil, err
	}

	return v, nil
}
