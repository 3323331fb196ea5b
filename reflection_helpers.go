package inject

import "reflect"

var orderedMapType = reflect.TypeOf((*OrderedMap)(nil))

// nillable reports whether nil is a valid value of t.
func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}

func isNilValue(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	return nillable(v.Type()) && v.IsNil()
}

// convert returns v as a value of type t. Numeric values convert between
// numeric kinds and strings between string kinds, so an untyped constant
// like 42 can satisfy an int64 parameter.
func convert(v any, t reflect.Type) (reflect.Value, bool) {
	if v == nil {
		if nillable(t) {
			return reflect.Zero(t), true
		}
		return reflect.Value{}, false
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, true
	}

	if convertibleScalar(rv.Type(), t) {
		return rv.Convert(t), true
	}

	return reflect.Value{}, false
}

// assignable reports whether v can be used as a value of type t.
func assignable(v any, t reflect.Type) bool {
	if v == nil {
		return nillable(t)
	}
	return reflect.TypeOf(v).AssignableTo(t)
}

func convertibleScalar(from, to reflect.Type) bool {
	switch {
	case isNumeric(from.Kind()) && isNumeric(to.Kind()):
		return from.ConvertibleTo(to)
	case from.Kind() == reflect.String && to.Kind() == reflect.String:
		return true
	case from.Kind() == reflect.Bool && to.Kind() == reflect.Bool:
		return true
	default:
		return false
	}
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// dynamic unwraps an interface value to the value it holds.
func dynamic(v reflect.Value) reflect.Value {
	if v.IsValid() && v.Kind() == reflect.Interface && !v.IsNil() {
		return v.Elem()
	}
	return v
}
