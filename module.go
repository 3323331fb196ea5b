package inject

import "fmt"

// Module groups related bindings.
//
//	type TireModule struct{ Brand string }
//
//	func (m TireModule) Configure(b *inject.Binder) error {
//	    b.Bind(inject.TypeOf[Tire]()).To(inject.TypeOf[Goodyear]())
//	    b.BindConstant("tire.brand").To(m.Brand)
//	    return nil
//	}
type Module interface {
	Configure(b *Binder) error
}

// ModuleFunc adapts a function to Module.
type ModuleFunc func(b *Binder) error

// Configure calls f(b).
func (f ModuleFunc) Configure(b *Binder) error {
	return f(b)
}

// NewModule creates a named module from other modules. Errors are reported
// with the module name; nested named modules add their own.
//
//	var StorageModule = inject.NewModule("storage",
//	    inject.ModuleFunc(func(b *inject.Binder) error {
//	        b.Bind(inject.TypeOf[Store]()).To(inject.TypeOf[*PostgresStore]()).AsSingleton()
//	        return nil
//	    }),
//	    CacheModule,
//	)
func NewModule(name string, modules ...Module) Module {
	return &namedModule{name: name, modules: modules}
}

type namedModule struct {
	name    string
	modules []Module
}

func (m *namedModule) Name() string {
	return m.name
}

func (m *namedModule) Configure(b *Binder) error {
	for _, part := range m.modules {
		if part == nil {
			continue
		}

		if nested, ok := part.(*namedModule); ok {
			if err := b.Install(nested); err != nil {
				return err
			}
			continue
		}

		if err := part.Configure(b); err != nil {
			return err
		}
	}

	return nil
}

func moduleName(m Module) string {
	if named, ok := m.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", m)
}
