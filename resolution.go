package inject

import (
	"fmt"
	"reflect"

	"github.com/junioryono/inject/metadata"
)

// arguments resolves constructor or closure parameters positionally. An
// invalid value stands for an optional parameter without a default.
func (r *resolution) arguments(params []metadata.Param, owner string) ([]reflect.Value, error) {
	if len(params) == 0 {
		return nil, nil
	}

	args := make([]reflect.Value, len(params))
	for i, p := range params {
		v, err := r.argument(p, owner)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	return args, nil
}

// argument resolves one parameter or property. A request that can be
// resolved is resolved and its errors propagate; one that cannot falls back
// to the default of an optional parameter.
func (r *resolution) argument(p metadata.Param, owner string) (reflect.Value, error) {
	site := fmt.Sprintf("%s of %s", p, owner)

	key, unavailable := r.request(p)
	if unavailable != nil {
		if p.Optional {
			return fallback(p), nil
		}
		return reflect.Value{}, BindingError{Key: key, Param: site, Cause: unavailable}
	}

	var (
		v   reflect.Value
		err error
	)

	switch p.Kind {
	case metadata.KindConstant:
		v, err = r.constantArgument(p, p.Label)
	case metadata.KindList:
		v, err = r.listArgument(p, key)
	case metadata.KindMap:
		v, err = r.mapArgument(p, key)
	default:
		v, err = r.classArgument(p, key)
	}

	if err != nil {
		return reflect.Value{}, BindingError{Key: key, Param: site, Cause: err}
	}

	return v, nil
}

// request returns the key a parameter asks for and, when the request cannot
// be resolved, the reason. Unlabeled lists and maps request the collection
// typed by the element type of the parameter.
func (r *resolution) request(p metadata.Param) (Key, error) {
	switch p.Kind {
	case metadata.KindConstant:
		key := constantKey(p.Label)
		if !r.registry.HasConstant(p.Label) {
			return key, ErrBindingNotFound
		}
		return key, nil

	case metadata.KindList:
		key := listKey(p.Label)
		if p.Label == "" {
			key = listKeyOf(p.Type.Elem())
		}

		if _, ok := r.registry.lookupList(key); !ok {
			return key, ErrBindingNotFound
		}
		return key, nil

	case metadata.KindMap:
		key := mapKey(p.Label)
		if p.Label == "" {
			if p.Type.Kind() != reflect.Map {
				return key, fmt.Errorf("%w: unlabeled map parameter must be a map, got %s", ErrTypeMismatch, formatType(p.Type))
			}
			key = mapKeyOf(p.Type.Elem())
		}

		if _, ok := r.registry.lookupMap(key); !ok {
			return key, ErrBindingNotFound
		}
		return key, nil

	default:
		key := Key{Type: p.Type, Name: p.Name, Named: p.Named}
		if _, ok := r.registry.binding(key); ok {
			return key, nil
		}

		_, err := r.registry.synthesize(key)
		return key, err
	}
}

func (r *resolution) classArgument(p metadata.Param, key Key) (reflect.Value, error) {
	v, err := r.instance(key)
	if err != nil {
		return reflect.Value{}, err
	}

	return convertArgument(v, p.Type)
}

func (r *resolution) constantArgument(p metadata.Param, name string) (reflect.Value, error) {
	v, err := r.constant(name)
	if err != nil {
		return reflect.Value{}, err
	}

	return convertArgument(v, p.Type)
}

func (r *resolution) listArgument(p metadata.Param, key Key) (reflect.Value, error) {
	items, err := r.list(key)
	if err != nil {
		return reflect.Value{}, err
	}

	out := reflect.MakeSlice(p.Type, 0, len(items))
	for i, item := range items {
		v, ok := convert(item, p.Type.Elem())
		if !ok {
			return reflect.Value{}, fmt.Errorf("%w: entry %d is %T, expected %s", ErrTypeMismatch, i, item, formatType(p.Type.Elem()))
		}
		out = reflect.Append(out, v)
	}

	return out, nil
}

func (r *resolution) mapArgument(p metadata.Param, key Key) (reflect.Value, error) {
	m, err := r.mapping(key)
	if err != nil {
		return reflect.Value{}, err
	}

	if p.Type == orderedMapType {
		return reflect.ValueOf(m), nil
	}

	if p.Type.Kind() != reflect.Map || p.Type.Key().Kind() != reflect.String {
		return reflect.Value{}, fmt.Errorf("%w: map parameter must be *inject.OrderedMap or keyed by string, got %s", ErrTypeMismatch, formatType(p.Type))
	}

	out := reflect.MakeMapWithSize(p.Type, m.Len())
	for k, item := range m.All() {
		v, ok := convert(item, p.Type.Elem())
		if !ok {
			return reflect.Value{}, fmt.Errorf("%w: entry %q is %T, expected %s", ErrTypeMismatch, k, item, formatType(p.Type.Elem()))
		}
		out.SetMapIndex(reflect.ValueOf(k).Convert(p.Type.Key()), v)
	}

	return out, nil
}

func convertArgument(v any, t reflect.Type) (reflect.Value, error) {
	rv, ok := convert(v, t)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: got %T, expected %s", ErrTypeMismatch, v, formatType(t))
	}
	return rv, nil
}

// fallback returns the default of an optional parameter, or an invalid
// value when it has none.
func fallback(p metadata.Param) reflect.Value {
	if !p.HasDefault {
		return reflect.Value{}
	}

	if p.Default == nil {
		return reflect.Zero(p.Type)
	}

	if v, ok := convert(p.Default, p.Type); ok {
		return v
	}
	return reflect.Zero(p.Type)
}

// inject runs property injection on a constructed value. Only zero valued
// properties are set, so values supplied by the constructor are kept. A
// struct value is copied into an addressable value first.
func (r *resolution) inject(v reflect.Value) (reflect.Value, error) {
	if !v.IsValid() {
		return v, nil
	}

	props, err := r.registry.metadata.Properties(v.Type())
	if err != nil {
		return reflect.Value{}, BindingError{Key: Key{Type: v.Type()}, Cause: err}
	}

	if len(props) == 0 {
		return v, nil
	}

	var (
		out  = v
		elem reflect.Value
	)

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return v, nil
		}
		elem = v.Elem()
	case reflect.Struct:
		out = reflect.New(v.Type()).Elem()
		out.Set(v)
		elem = out
	default:
		return v, nil
	}

	owner := formatType(v.Type())
	for _, p := range props {
		field := elem.Field(p.Index)
		if !field.IsZero() {
			continue
		}

		arg, err := r.argument(p, owner)
		if err != nil {
			return reflect.Value{}, err
		}

		if !arg.IsValid() {
			continue
		}

		field.Set(arg)
	}

	return out, nil
}
