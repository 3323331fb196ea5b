package metadata

import (
	"fmt"
	"reflect"
)

// Option adjusts how the parameters of a constructor are resolved.
type Option func(*Constructor) error

func param(c *Constructor, index int) (*Param, error) {
	if index < 0 || index >= len(c.Params) {
		return nil, fmt.Errorf("parameter index %d out of range [0,%d)", index, len(c.Params))
	}
	return &c.Params[index], nil
}

// Named qualifies parameter index with name.
func Named(index int, name string) Option {
	return func(c *Constructor) error {
		p, err := param(c, index)
		if err != nil {
			return err
		}

		p.Kind = KindType
		p.Label = ""
		p.Name = name
		p.Named = true
		return nil
	}
}

// Names assigns names positionally. An empty string leaves the parameter
// unnamed. This is the grouped form of Named for constructors taking several
// parameters of the same type.
//
//	table.Register(NewCar, metadata.Names("front", "rear"))
func Names(names ...string) Option {
	return func(c *Constructor) error {
		if len(names) > len(c.Params) {
			return fmt.Errorf("%d names given for %d parameters", len(names), len(c.Params))
		}

		for i, name := range names {
			if name == "" {
				continue
			}

			if err := Named(i, name)(c); err != nil {
				return err
			}
		}

		return nil
	}
}

// Optional marks parameter index as optional; the zero value is used when
// it cannot be resolved.
func Optional(index int) Option {
	return func(c *Constructor) error {
		p, err := param(c, index)
		if err != nil {
			return err
		}

		p.Optional = true
		return nil
	}
}

// OptionalDefault marks parameter index as optional with a default value.
func OptionalDefault(index int, value any) Option {
	return func(c *Constructor) error {
		p, err := param(c, index)
		if err != nil {
			return err
		}

		if value != nil && !reflect.TypeOf(value).AssignableTo(p.Type) {
			return fmt.Errorf("default %T is not assignable to %s", value, p.Type)
		}

		p.Optional = true
		p.Default = value
		p.HasDefault = true
		return nil
	}
}

// Constant makes parameter index request the constant named label.
func Constant(index int, label string) Option {
	return func(c *Constructor) error {
		if label == "" {
			return fmt.Errorf("constant name cannot be empty")
		}

		p, err := param(c, index)
		if err != nil {
			return err
		}

		p.Kind = KindConstant
		p.Label = label
		p.Name, p.Named = "", false
		return nil
	}
}

// List makes parameter index request the list named label. An empty label
// requests the list keyed by the element type of the parameter.
func List(index int, label string) Option {
	return func(c *Constructor) error {
		p, err := param(c, index)
		if err != nil {
			return err
		}

		if p.Type.Kind() != reflect.Slice {
			return fmt.Errorf("%s: list injection requires a slice, got %s", p, p.Type)
		}

		p.Kind = KindList
		p.Label = label
		p.Name, p.Named = "", false
		return nil
	}
}

// Map makes parameter index request the map named label. An empty label
// requests the map keyed by the element type of the parameter.
func Map(index int, label string) Option {
	return func(c *Constructor) error {
		p, err := param(c, index)
		if err != nil {
			return err
		}

		p.Kind = KindMap
		p.Label = label
		p.Name, p.Named = "", false
		return nil
	}
}
