// Package metadata describes how types are constructed and wired.
//
// The injector never inspects types on its own: it asks a Provider which
// constructor builds a type, which of its parameters and properties must be
// injected, and which convention applies when nothing was bound explicitly.
// Table is the default Provider; it combines reflection over constructor
// functions and struct tags with explicit registration.
package metadata

import (
	"fmt"
	"reflect"

	"github.com/junioryono/inject/internal/reflection"
)

// In marks a constructor parameter object. Each exported field of a struct
// embedding In is injected independently and may carry the tags
// name, optional, constant, list, map and inject:"-".
//
//	type CarParams struct {
//	    metadata.In
//
//	    Front  Tire `name:"front"`
//	    Rear   Tire `name:"rear"`
//	    Answer int  `constant:"answer"`
//	    Radio  Radio `optional:"true"`
//	}
type In = reflection.In

// Kind tells which namespace a parameter is resolved from.
type Kind int

const (
	// KindType requests an instance of the declared type, optionally named.
	KindType Kind = iota

	// KindConstant requests a named constant.
	KindConstant

	// KindList requests a list multibinding.
	KindList

	// KindMap requests a map multibinding.
	KindMap
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindConstant:
		return "constant"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Param describes one constructor parameter or injectable property.
type Param struct {
	// Index is the parameter position, or the struct field index for
	// properties and parameter object fields.
	Index int

	// Field is the struct field name; empty for positional parameters.
	Field string

	// Type is the declared type.
	Type reflect.Type

	// Name qualifies a KindType request when Named is set.
	Name  string
	Named bool

	Kind Kind

	// Label names the constant, list or map for the non-type kinds.
	// An empty list or map label means the collection keyed by the
	// element type of Type.
	Label string

	Optional bool

	// Default is used for an optional parameter that cannot be resolved.
	// Without a default the zero value is used, and properties are left untouched.
	Default    any
	HasDefault bool
}

// String describes the parameter for error messages.
func (p Param) String() string {
	if p.Field != "" {
		return fmt.Sprintf("field %s", p.Field)
	}
	return fmt.Sprintf("parameter %d", p.Index)
}

// Constructor builds instances of Type.
type Constructor struct {
	// Type is the type of the constructed value. It is nil for functions
	// that return nothing but an optional error.
	Type reflect.Type

	// Params are the dependencies passed positionally to Call.
	Params []Param

	call func(args []reflect.Value) (reflect.Value, error)
}

// Call invokes the constructor with one argument per parameter. An invalid
// reflect.Value argument stands for "no value" and is passed as the zero value.
func (c *Constructor) Call(args []reflect.Value) (reflect.Value, error) {
	if c == nil || c.call == nil {
		return reflect.Value{}, fmt.Errorf("constructor is not callable")
	}
	return c.call(args)
}

// Convention holds type-level defaults consulted when a type has no
// explicit binding.
type Convention struct {
	// Default is the implementation used in every environment that has no
	// entry in PerEnvironment.
	Default reflect.Type

	// PerEnvironment maps environment labels to implementations.
	PerEnvironment map[string]reflect.Type

	// Provider is a type implementing the injector's provider contract.
	Provider reflect.Type

	// Singleton marks the type as singleton scoped by default.
	Singleton bool
}

// HasImplementation reports whether the convention names an implementation
// for at least one environment.
func (c *Convention) HasImplementation() bool {
	return c != nil && (c.Default != nil || len(c.PerEnvironment) > 0)
}

// Implementation selects the implementation for the given environment.
func (c *Convention) Implementation(environment string) (reflect.Type, bool) {
	if c == nil {
		return nil, false
	}

	if impl, ok := c.PerEnvironment[environment]; ok && environment != "" {
		return impl, true
	}

	if c.Default != nil {
		return c.Default, true
	}

	return nil, false
}

// Provider supplies construction metadata to the injector.
type Provider interface {
	// Constructor returns how to build t, or false when t cannot be built.
	Constructor(t reflect.Type) (*Constructor, bool)

	// Properties returns the injectable properties of t.
	Properties(t reflect.Type) ([]Param, error)

	// Convention returns the type-level defaults of t, if any.
	Convention(t reflect.Type) (*Convention, bool)
}

// Registrar is implemented by providers that accept constructor registration.
type Registrar interface {
	Register(fn any, opts ...Option) error
}
