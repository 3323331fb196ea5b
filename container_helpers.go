package inject

import "fmt"

// Get resolves an instance of T.
//
//	vehicle, err := inject.Get[Vehicle](injector)
func Get[T any](i *Injector) (T, error) {
	var zero T

	v, err := i.GetInstance(TypeOf[T]())
	if err != nil {
		return zero, err
	}

	return as[T](v, KeyOf(TypeOf[T]()))
}

// GetNamed resolves an instance of T qualified by name.
func GetNamed[T any](i *Injector, name string) (T, error) {
	var zero T

	v, err := i.GetInstance(TypeOf[T](), name)
	if err != nil {
		return zero, err
	}

	return as[T](v, KeyOf(TypeOf[T](), name))
}

// MustGet resolves an instance of T and panics on error.
func MustGet[T any](i *Injector) T {
	v, err := Get[T](i)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s: %v", TypeOf[T](), err))
	}
	return v
}

// Constant resolves the constant name as T. Numeric and string constants
// are converted to T when T has the same kind family.
//
//	answer, err := inject.Constant[int64](injector, "answer")
func Constant[T any](i *Injector, name string) (T, error) {
	var zero T

	v, err := i.GetConstant(name)
	if err != nil {
		return zero, err
	}

	rv, ok := convert(v, TypeOf[T]())
	if !ok {
		return zero, BindingError{
			Key:   constantKey(name),
			Cause: fmt.Errorf("%w: got %T, expected %s", ErrTypeMismatch, v, TypeOf[T]()),
		}
	}

	result, _ := rv.Interface().(T)
	return result, nil
}

// List resolves the list of elements of type T bound with BindListOf.
func List[T any](i *Injector) ([]T, error) {
	return listOf[T](i, listKeyOf(TypeOf[T]()))
}

// NamedList resolves the list labeled label, asserting each entry to T.
func NamedList[T any](i *Injector, label string) ([]T, error) {
	return listOf[T](i, listKey(label))
}

// Map resolves the map of values of type T bound with BindMapOf.
func Map[T any](i *Injector) (map[string]T, error) {
	return mapOf[T](i, mapKeyOf(TypeOf[T]()))
}

// NamedMap resolves the map labeled label, asserting each value to T.
func NamedMap[T any](i *Injector, label string) (map[string]T, error) {
	return mapOf[T](i, mapKey(label))
}

// Bind registers a class binding for T.
//
//	inject.Bind[Tire](b).To(inject.TypeOf[Goodyear]())
func Bind[T any](b *Binder) *ClassBinding {
	return b.Bind(TypeOf[T]())
}

// BindNamed registers a class binding for T qualified by name.
func BindNamed[T any](b *Binder, name string) *ClassBinding {
	return b.BindNamed(TypeOf[T](), name)
}

// BindListOf returns the list of elements of type T.
func BindListOf[T any](b *Binder) *ListBinding {
	return b.BindListOf(TypeOf[T]())
}

// BindMapOf returns the map of values of type T.
func BindMapOf[T any](b *Binder) *MapBinding {
	return b.BindMapOf(TypeOf[T]())
}

func as[T any](v any, key Key) (T, error) {
	if v == nil {
		var zero T
		return zero, nil
	}

	result, ok := v.(T)
	if !ok {
		var zero T
		return zero, BindingError{
			Key:   key,
			Cause: fmt.Errorf("%w: got %T, expected %s", ErrTypeMismatch, v, TypeOf[T]()),
		}
	}

	return result, nil
}

func listOf[T any](i *Injector, key Key) ([]T, error) {
	items, err := i.getList(key)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(items))
	for n, item := range items {
		v, err := as[T](item, key)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", n, err)
		}
		out = append(out, v)
	}

	return out, nil
}

func mapOf[T any](i *Injector, key Key) (map[string]T, error) {
	m, err := i.getMap(key)
	if err != nil {
		return nil, err
	}

	out := make(map[string]T, m.Len())
	for k, item := range m.All() {
		v, err := as[T](item, key)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", k, err)
		}
		out[k] = v
	}

	return out, nil
}

