package inject

import (
	"errors"
	"reflect"
	"sync"

	"github.com/junioryono/inject/metadata"
)

// ConstantBinding binds a named constant. Constants live in their own
// namespace and are never scoped or injected into.
//
//	b.BindConstant("answer").To(42)
type ConstantBinding struct {
	mu     sync.RWMutex
	name   string
	target target
	set    bool
	err    error
}

func newConstantBinding(name string) *ConstantBinding {
	return &ConstantBinding{name: name}
}

func (*ConstantBinding) binding() {}

// Key returns the key of the constant.
func (b *ConstantBinding) Key() Key {
	return constantKey(b.name)
}

// Name returns the constant name.
func (b *ConstantBinding) Name() string {
	return b.name
}

// Err returns the configuration errors recorded on the binding. A constant
// that was never given a value is a configuration error.
func (b *ConstantBinding) Err() error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.err == nil && !b.set {
		return ConfigurationError{Key: b.Key(), Operation: "bind-constant", Cause: ErrNilTarget}
	}
	return b.err
}

// To sets the constant value.
func (b *ConstantBinding) To(v any) *ConstantBinding {
	if v == nil {
		return b.fail(ConfigurationError{Key: b.Key(), Operation: "to", Cause: ErrNilTarget})
	}

	return b.setTarget(target{kind: targetInstance, instance: v})
}

// ToProvider computes the constant with p on every request.
func (b *ConstantBinding) ToProvider(p Provider) *ConstantBinding {
	if err := checkProvider(b.Key(), "to-provider", p); err != nil {
		return b.fail(err)
	}

	return b.setTarget(target{kind: targetProvider, provider: p})
}

// ToProviderType computes the constant with a provider resolved through
// the injector.
func (b *ConstantBinding) ToProviderType(t reflect.Type) *ConstantBinding {
	if err := checkProviderType(b.Key(), "to-provider-type", t); err != nil {
		return b.fail(err)
	}

	return b.setTarget(target{kind: targetProviderType, typ: t})
}

// ToClosure computes the constant with fn on every request.
func (b *ConstantBinding) ToClosure(fn any, opts ...metadata.Option) *ConstantBinding {
	c, err := describeClosure(b.Key(), "to-closure", fn, opts)
	if err != nil {
		return b.fail(err)
	}

	return b.setTarget(target{kind: targetClosure, closure: c})
}

func (b *ConstantBinding) setTarget(t target) *ConstantBinding {
	b.mu.Lock()
	b.target = t
	b.set = true
	b.mu.Unlock()
	return b
}

func (b *ConstantBinding) fail(err error) *ConstantBinding {
	b.mu.Lock()
	b.err = errors.Join(b.err, err)
	b.mu.Unlock()
	return b
}

func (b *ConstantBinding) snapshot() (target, error) {
	if err := b.Err(); err != nil {
		return target{}, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.target, nil
}
