package metadata

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/junioryono/inject/internal/reflection"
)

var _ Provider = (*Table)(nil)
var _ Registrar = (*Table)(nil)

// Table is a Provider backed by explicit registrations and reflection.
//
// Registered constructor functions describe how a type is built; pointer
// to struct and struct types without a registered constructor are built
// from their zero value. Properties come from inject struct tags and
// conventions are registered per type.
//
// Table is safe for concurrent use.
type Table struct {
	mu           sync.RWMutex
	analyzer     *reflection.Analyzer
	constructors map[reflect.Type]*Constructor
	conventions  map[reflect.Type]*Convention
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{
		analyzer:     reflection.New(),
		constructors: make(map[reflect.Type]*Constructor),
		conventions:  make(map[reflect.Type]*Convention),
	}
}

var defaultAnalyzer = reflection.New()

// Describe analyzes fn without registering it. fn may take positional
// parameters or a single parameter object, and may return (), (T), (error)
// or (T, error).
func Describe(fn any, opts ...Option) (*Constructor, error) {
	return describe(defaultAnalyzer, fn, opts)
}

// Register registers fn as the constructor of its first return type,
// replacing any previous constructor for that type.
//
//	table.Register(NewCar)
//	table.Register(NewCar, metadata.Names("front", "rear"))
func (t *Table) Register(fn any, opts ...Option) error {
	c, err := describe(t.analyzer, fn, opts)
	if err != nil {
		return err
	}

	if c.Type == nil {
		return Error{Operation: "register", Cause: fmt.Errorf("constructor %T does not return a value", fn)}
	}

	t.mu.Lock()
	t.constructors[c.Type] = c
	t.mu.Unlock()

	return nil
}

// MustRegister is like Register but panics on error.
func (t *Table) MustRegister(fn any, opts ...Option) *Table {
	if err := t.Register(fn, opts...); err != nil {
		panic(err)
	}
	return t
}

// ImplementedBy declares impl as the default implementation of iface.
func (t *Table) ImplementedBy(iface, impl reflect.Type) error {
	if err := checkImplementation(iface, impl); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.convention(iface).Default = impl

	return nil
}

// ImplementedByIn declares impl as the implementation of iface while the
// injector runs in the given environment.
func (t *Table) ImplementedByIn(iface reflect.Type, environment string, impl reflect.Type) error {
	if err := checkImplementation(iface, impl); err != nil {
		return err
	}

	if environment == "" {
		return Error{Type: iface, Operation: "implemented-by", Cause: fmt.Errorf("environment cannot be empty")}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	c := t.convention(iface)
	if c.PerEnvironment == nil {
		c.PerEnvironment = make(map[string]reflect.Type)
	}
	c.PerEnvironment[environment] = impl

	return nil
}

// ProvidedBy declares providerType as the default provider of typ.
func (t *Table) ProvidedBy(typ, providerType reflect.Type) error {
	if typ == nil || providerType == nil {
		return Error{Type: typ, Operation: "provided-by", Cause: fmt.Errorf("types cannot be nil")}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.convention(typ).Provider = providerType

	return nil
}

// Singleton marks typ as singleton scoped unless a binding says otherwise.
func (t *Table) Singleton(typ reflect.Type) error {
	if typ == nil {
		return Error{Operation: "singleton", Cause: fmt.Errorf("type cannot be nil")}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.convention(typ).Singleton = true

	return nil
}

// Constructor implements Provider.
func (t *Table) Constructor(typ reflect.Type) (*Constructor, bool) {
	if typ == nil {
		return nil, false
	}

	t.mu.RLock()
	c, ok := t.constructors[typ]
	t.mu.RUnlock()
	if ok {
		return c, true
	}

	c = zeroConstructor(typ)
	if c == nil {
		return nil, false
	}

	t.mu.Lock()
	if existing, ok := t.constructors[typ]; ok {
		c = existing
	} else {
		t.constructors[typ] = c
	}
	t.mu.Unlock()

	return c, true
}

// Properties implements Provider.
func (t *Table) Properties(typ reflect.Type) ([]Param, error) {
	fields, err := t.analyzer.Fields(typ)
	if err != nil {
		return nil, Error{Type: typ, Operation: "properties", Cause: err}
	}

	if len(fields) == 0 {
		return nil, nil
	}

	params := make([]Param, 0, len(fields))
	for _, f := range fields {
		p, err := newParam(f.Index, f.Name, f.Type, f.Tags)
		if err != nil {
			return nil, Error{Type: typ, Operation: "properties", Cause: err}
		}
		params = append(params, p)
	}

	return params, nil
}

// Convention implements Provider.
func (t *Table) Convention(typ reflect.Type) (*Convention, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	c, ok := t.conventions[typ]
	if !ok {
		return nil, false
	}

	cp := *c
	if c.PerEnvironment != nil {
		cp.PerEnvironment = make(map[string]reflect.Type, len(c.PerEnvironment))
		for env, impl := range c.PerEnvironment {
			cp.PerEnvironment[env] = impl
		}
	}

	return &cp, true
}

// convention returns the mutable convention for typ. Callers hold mu.
func (t *Table) convention(typ reflect.Type) *Convention {
	c, ok := t.conventions[typ]
	if !ok {
		c = &Convention{}
		t.conventions[typ] = c
	}
	return c
}

func checkImplementation(iface, impl reflect.Type) error {
	if iface == nil || impl == nil {
		return Error{Type: iface, Operation: "implemented-by", Cause: fmt.Errorf("types cannot be nil")}
	}

	if !impl.AssignableTo(iface) {
		return Error{Type: iface, Operation: "implemented-by", Cause: fmt.Errorf("%s is not assignable to %s", impl, iface)}
	}

	return nil
}

func describe(analyzer *reflection.Analyzer, fn any, opts []Option) (*Constructor, error) {
	sig, err := analyzer.Analyze(fn)
	if err != nil {
		return nil, Error{Operation: "analyze", Cause: err}
	}

	params := make([]Param, len(sig.Parameters))
	for i, info := range sig.Parameters {
		p, err := newParam(i, info.Name, info.Type, info.Tags)
		if err != nil {
			return nil, Error{Type: sig.Result, Operation: "analyze", Cause: err}
		}
		params[i] = p
	}

	fnValue := reflect.ValueOf(fn)
	c := &Constructor{
		Type:   sig.Result,
		Params: params,
		call: func(args []reflect.Value) (reflect.Value, error) {
			return reflection.Call(fnValue, sig, args)
		},
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(c); err != nil {
			return nil, Error{Type: c.Type, Operation: "configure", Cause: err}
		}
	}

	return c, nil
}

// zeroConstructor builds struct and pointer to struct types from their zero value.
func zeroConstructor(typ reflect.Type) *Constructor {
	switch {
	case typ.Kind() == reflect.Pointer && typ.Elem().Kind() == reflect.Struct:
		elem := typ.Elem()
		return &Constructor{
			Type: typ,
			call: func([]reflect.Value) (reflect.Value, error) {
				return reflect.New(elem), nil
			},
		}
	case typ.Kind() == reflect.Struct:
		return &Constructor{
			Type: typ,
			call: func([]reflect.Value) (reflect.Value, error) {
				return reflect.New(typ).Elem(), nil
			},
		}
	default:
		return nil
	}
}

func newParam(index int, field string, typ reflect.Type, tags reflection.TagInfo) (Param, error) {
	p := Param{
		Index:    index,
		Field:    field,
		Type:     typ,
		Optional: tags.Optional,
	}

	switch {
	case tags.IsConstant():
		p.Kind = KindConstant
		p.Label = tags.Constant
	case tags.IsList:
		if typ.Kind() != reflect.Slice {
			return p, fmt.Errorf("%s: list injection requires a slice, got %s", p, typ)
		}
		p.Kind = KindList
		p.Label = tags.List
	case tags.IsMap:
		p.Kind = KindMap
		p.Label = tags.Map
	default:
		p.Kind = KindType
		p.Name = tags.Name
		p.Named = tags.Named
	}

	return p, nil
}
