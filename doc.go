// Package inject provides a binding based dependency injection container.
//
// Bindings map a request key, a type optionally qualified by a name, to a
// producer: a concrete type, a fixed instance, a provider or a closure.
// The injector builds object graphs on demand, resolving constructor
// parameters and tagged properties transitively, honoring scopes, and
// falling back to type conventions when nothing was bound explicitly.
//
// # Basic Usage
//
// Declare bindings on a Binder, then ask its Injector for instances:
//
//	b := inject.NewBinder()
//	b.RegisterConstructor(NewCar)
//
//	inject.Bind[Tire](b).To(inject.TypeOf[*Goodyear]())
//	inject.Bind[Vehicle](b).To(inject.TypeOf[*Car]()).AsSingleton()
//	b.BindConstant("answer").To(42)
//
//	injector, err := b.Injector()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer injector.Close()
//
//	vehicle, err := inject.Get[Vehicle](injector)
//
// # Bindings
//
// A ClassBinding targets exactly one producer; the last target call wins:
//
//	b.Bind(t).To(impl)                 // construct impl
//	b.Bind(t).ToInstance(v)            // always return v
//	b.Bind(t).ToProvider(p)            // call p.Get
//	b.Bind(t).ToProviderType(pt)       // resolve pt, then call its Get
//	b.Bind(t).ToClosure(fn)            // call fn with injected arguments
//	b.Bind(t).Named("spare")           // qualify the key
//
// Binding the same key again replaces the previous binding. Constants live
// in their own namespace. Lists and maps accumulate: every BindList or
// BindMap call with the same label contributes to one collection.
//
// # Scopes
//
// Class bindings are prototype scoped unless configured otherwise:
//
//   - AsSingleton: one instance per binding for the lifetime of the binder
//   - InSession: one instance per binding per attached Session
//   - In(scope): any Scope implementation
//
// Session scoped bindings may be declared before any session exists;
// resolving one without a session fails with a SessionError.
//
// # Metadata and Conventions
//
// Constructors, injectable properties and conventions come from a
// metadata.Provider, by default a metadata.Table. Struct and pointer to
// struct types are constructible without registration. Properties are
// exported fields tagged inject:
//
//	type Car struct {
//	    Radio  Radio `inject:"optional"`
//	    Answer int   `inject:"constant=answer"`
//	}
//
// When a type has no explicit binding the table's conventions apply:
//
//	table.ImplementedBy(inject.TypeOf[Tire](), inject.TypeOf[*Goodyear]())
//	table.ImplementedByIn(inject.TypeOf[Tire](), "test", inject.TypeOf[*FakeTire]())
//	table.ProvidedBy(inject.TypeOf[Clock](), inject.TypeOf[*ClockProvider]())
//
// An implicit binding is stored in the registry after its first successful
// resolution. Named requests never fall back to conventions.
//
// # Errors
//
// Resolution failures are reported as BindingError, configuration mistakes
// as ConfigurationError, and cycles as CircularDependencyError. Use
// IsNotFound, IsConfigurationError, IsSessionNotAttached and IsCircular to
// classify them.
package inject
