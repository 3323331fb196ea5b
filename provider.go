package inject

import "reflect"

// Provider produces values on demand. Providers bound with ToProvider,
// ToProviderType, WithProvider or a ProvidedBy convention are called once
// per resolution that reaches them; the binding's scope decides whether the
// result is reused.
//
// name is the qualifying name of the request, or the label of the constant,
// list or map entry being produced.
type Provider interface {
	Get(name string) (any, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(name string) (any, error)

// Get calls f(name).
func (f ProviderFunc) Get(name string) (any, error) {
	return f(name)
}

var providerType = reflect.TypeOf((*Provider)(nil)).Elem()
