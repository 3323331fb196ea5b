package reflection

import (
	"fmt"
	"reflect"
	"sync"
)

// In marks a struct as a parameter object. A function whose only parameter
// embeds In has each exported field of that struct resolved independently.
type In struct{}

var (
	inType  = reflect.TypeOf((*In)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

// Analyzer performs reflection-based analysis of functions and struct types.
// Results depend only on the analyzed type, so they are cached per type.
type Analyzer struct {
	mu         sync.RWMutex
	signatures map[reflect.Type]*Signature
	fields     map[reflect.Type][]FieldInfo
}

// Signature contains analyzed information about a function type.
type Signature struct {
	Type           reflect.Type
	Parameters     []ParameterInfo
	IsParamObject  bool         // single parameter embedding In
	ParamObject    reflect.Type // the parameter object type, possibly a pointer
	Result         reflect.Type // nil when the function returns nothing or only an error
	HasErrorReturn bool
}

// ParameterInfo describes a function parameter or a field of a parameter object.
type ParameterInfo struct {
	Type  reflect.Type
	Name  string // field name for parameter objects
	Index int    // parameter index or field index
	Tags  TagInfo
}

// FieldInfo describes an exported struct field that asked for injection.
type FieldInfo struct {
	Type  reflect.Type
	Name  string
	Index int
	Tags  TagInfo
}

// New creates a new Analyzer.
func New() *Analyzer {
	return &Analyzer{
		signatures: make(map[reflect.Type]*Signature),
		fields:     make(map[reflect.Type][]FieldInfo),
	}
}

// Analyze analyzes a function value and returns its signature.
func (a *Analyzer) Analyze(fn any) (*Signature, error) {
	if fn == nil {
		return nil, fmt.Errorf("function cannot be nil")
	}

	val := reflect.ValueOf(fn)
	if val.Kind() != reflect.Func {
		return nil, fmt.Errorf("expected a function, got %s", val.Type())
	}

	if val.IsNil() {
		return nil, fmt.Errorf("function cannot be nil")
	}

	return a.AnalyzeType(val.Type())
}

// AnalyzeType analyzes a function type and returns its signature.
func (a *Analyzer) AnalyzeType(fnType reflect.Type) (*Signature, error) {
	if fnType == nil || fnType.Kind() != reflect.Func {
		return nil, fmt.Errorf("expected a function type, got %v", fnType)
	}

	a.mu.RLock()
	if cached, ok := a.signatures[fnType]; ok {
		a.mu.RUnlock()
		return cached, nil
	}
	a.mu.RUnlock()

	sig := &Signature{Type: fnType}

	if fnType.IsVariadic() {
		return nil, fmt.Errorf("variadic functions are not supported: %s", fnType)
	}

	if err := a.analyzeParameters(sig); err != nil {
		return nil, fmt.Errorf("failed to analyze parameters: %w", err)
	}

	if err := a.analyzeReturns(sig); err != nil {
		return nil, fmt.Errorf("failed to analyze returns: %w", err)
	}

	a.mu.Lock()
	a.signatures[fnType] = sig
	a.mu.Unlock()

	return sig, nil
}

// analyzeParameters analyzes function parameters or parameter object fields.
func (a *Analyzer) analyzeParameters(sig *Signature) error {
	fnType := sig.Type

	if fnType.NumIn() == 1 {
		paramType := fnType.In(0)
		if hasEmbeddedType(paramType, inType) {
			sig.IsParamObject = true
			sig.ParamObject = paramType
			return a.analyzeParamObject(sig, paramType)
		}
	}

	sig.Parameters = make([]ParameterInfo, fnType.NumIn())
	for i := 0; i < fnType.NumIn(); i++ {
		sig.Parameters[i] = ParameterInfo{
			Type:  fnType.In(i),
			Index: i,
		}
	}

	return nil
}

// analyzeParamObject analyzes the fields of a parameter object.
func (a *Analyzer) analyzeParamObject(sig *Signature, structType reflect.Type) error {
	if structType.Kind() == reflect.Pointer {
		structType = structType.Elem()
	}

	if structType.Kind() != reflect.Struct {
		return fmt.Errorf("In parameter must be a struct, got %v", structType.Kind())
	}

	params := make([]ParameterInfo, 0, structType.NumField())
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		if field.Anonymous && field.Type == inType {
			continue
		}

		if !field.IsExported() {
			continue
		}

		tags, err := ParseParamTags(field.Tag)
		if err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}

		if tags.Ignore {
			continue
		}

		params = append(params, ParameterInfo{
			Type:  field.Type,
			Name:  field.Name,
			Index: i,
			Tags:  tags,
		})
	}

	sig.Parameters = params
	return nil
}

// analyzeReturns accepts (), (T), (error) and (T, error).
func (a *Analyzer) analyzeReturns(sig *Signature) error {
	fnType := sig.Type

	switch fnType.NumOut() {
	case 0:
		return nil
	case 1:
		out := fnType.Out(0)
		if out == errType {
			sig.HasErrorReturn = true
			return nil
		}

		sig.Result = out
		return nil
	case 2:
		if fnType.Out(1) != errType {
			return fmt.Errorf("second return value must be error, got %s", fnType.Out(1))
		}

		if fnType.Out(0) == errType {
			return fmt.Errorf("first return value cannot be error when two values are returned")
		}

		sig.Result = fnType.Out(0)
		sig.HasErrorReturn = true
		return nil
	default:
		return fmt.Errorf("functions may return at most a value and an error, %s returns %d values", fnType, fnType.NumOut())
	}
}

// Fields returns the injectable fields of a struct type, or of the struct a
// pointer type points to. Fields without an inject tag are not reported.
func (a *Analyzer) Fields(t reflect.Type) ([]FieldInfo, error) {
	if t == nil {
		return nil, nil
	}

	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return nil, nil
	}

	a.mu.RLock()
	if cached, ok := a.fields[t]; ok {
		a.mu.RUnlock()
		return cached, nil
	}
	a.mu.RUnlock()

	var fields []FieldInfo
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		raw, ok := field.Tag.Lookup("inject")
		if !ok || raw == "-" {
			continue
		}

		if !field.IsExported() {
			return nil, fmt.Errorf("field %s.%s is tagged for injection but is not exported", t.Name(), field.Name)
		}

		tags, err := ParsePropertyTag(raw)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", t.Name(), field.Name, err)
		}

		fields = append(fields, FieldInfo{
			Type:  field.Type,
			Name:  field.Name,
			Index: i,
			Tags:  tags,
		})
	}

	a.mu.Lock()
	a.fields[t] = fields
	a.mu.Unlock()

	return fields, nil
}

// Clear clears the analysis caches.
func (a *Analyzer) Clear() {
	a.mu.Lock()
	a.signatures = make(map[reflect.Type]*Signature)
	a.fields = make(map[reflect.Type][]FieldInfo)
	a.mu.Unlock()
}

// CacheSize returns the number of cached function signatures.
func (a *Analyzer) CacheSize() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.signatures)
}

// Call invokes fn with args laid out by sig. For parameter objects the
// arguments are packed into the struct fields; invalid arguments leave the
// corresponding field at its zero value.
func Call(fn reflect.Value, sig *Signature, args []reflect.Value) (reflect.Value, error) {
	if len(args) != len(sig.Parameters) {
		return reflect.Value{}, fmt.Errorf("expected %d arguments, got %d", len(sig.Parameters), len(args))
	}

	var in []reflect.Value
	if sig.IsParamObject {
		structType := sig.ParamObject
		isPtr := structType.Kind() == reflect.Pointer
		if isPtr {
			structType = structType.Elem()
		}

		obj := reflect.New(structType).Elem()
		for i, param := range sig.Parameters {
			if args[i].IsValid() {
				obj.Field(param.Index).Set(args[i])
			}
		}

		if isPtr {
			in = []reflect.Value{obj.Addr()}
		} else {
			in = []reflect.Value{obj}
		}
	} else {
		in = make([]reflect.Value, len(args))
		for i, arg := range args {
			if arg.IsValid() {
				in[i] = arg
			} else {
				in[i] = reflect.Zero(sig.Parameters[i].Type)
			}
		}
	}

	out := fn.Call(in)

	if sig.HasErrorReturn {
		if errVal := out[len(out)-1]; !errVal.IsNil() {
			return reflect.Value{}, errVal.Interface().(error)
		}
	}

	if sig.Result == nil {
		return reflect.Value{}, nil
	}

	return out[0], nil
}

// hasEmbeddedType checks if a type has an embedded field of the given type.
func hasEmbeddedType(t, embedded reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return false
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous && field.Type == embedded {
			return true
		}
	}

	return false
}
