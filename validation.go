package inject

import (
	"fmt"
	"reflect"

	"github.com/junioryono/inject/metadata"
)

// checkType validates a concrete target type for key.
func checkType(key Key, op string, t reflect.Type) error {
	if t == nil {
		return ConfigurationError{Key: key, Operation: op, Cause: ErrNilType}
	}

	if key.typed() && !t.AssignableTo(key.Type) {
		return ConfigurationError{
			Key:       key,
			Operation: op,
			Cause:     fmt.Errorf("%w: %s does not implement %s", ErrNotAssignable, t, key.Type),
		}
	}

	return nil
}

// checkInstance validates a fixed instance for key.
func checkInstance(key Key, op string, v any) error {
	if v == nil {
		return ConfigurationError{Key: key, Operation: op, Cause: ErrNilTarget}
	}

	if key.typed() && !reflect.TypeOf(v).AssignableTo(key.Type) {
		return ConfigurationError{
			Key:       key,
			Operation: op,
			Cause:     fmt.Errorf("%w: %T does not implement %s", ErrNotAssignable, v, key.Type),
		}
	}

	return nil
}

func checkProvider(key Key, op string, p Provider) error {
	if p == nil || isNilValue(reflect.ValueOf(p)) {
		return ConfigurationError{Key: key, Operation: op, Cause: ErrNilTarget}
	}
	return nil
}

func checkProviderType(key Key, op string, t reflect.Type) error {
	if t == nil {
		return ConfigurationError{Key: key, Operation: op, Cause: ErrNilType}
	}
	return nil
}

// describeClosure analyzes fn and checks that it can produce a value for key.
// Closures returning an interface are checked at resolution time.
func describeClosure(key Key, op string, fn any, opts []metadata.Option) (*metadata.Constructor, error) {
	if fn == nil {
		return nil, ConfigurationError{Key: key, Operation: op, Cause: ErrNilTarget}
	}

	c, err := metadata.Describe(fn, opts...)
	if err != nil {
		return nil, ConfigurationError{Key: key, Operation: op, Cause: fmt.Errorf("%w: %w", ErrInvalidClosure, err)}
	}

	if c.Type == nil {
		return nil, ConfigurationError{
			Key:       key,
			Operation: op,
			Cause:     fmt.Errorf("%w: %T does not return a value", ErrInvalidClosure, fn),
		}
	}

	if key.typed() && c.Type.Kind() != reflect.Interface && !c.Type.AssignableTo(key.Type) {
		return nil, ConfigurationError{
			Key:       key,
			Operation: op,
			Cause:     fmt.Errorf("%w: closure returns %s, not %s", ErrNotAssignable, c.Type, key.Type),
		}
	}

	return c, nil
}
