package testutil

import (
	"testing"

	"github.com/junioryono/inject"
	"github.com/stretchr/testify/require"
)

// BinderBuilder provides a fluent interface for building test binders.
type BinderBuilder struct {
	t      testing.TB
	binder *inject.Binder
}

// NewBinderBuilder creates a builder over a binder using the fixture table.
func NewBinderBuilder(t testing.TB, opts ...inject.Option) *BinderBuilder {
	t.Helper()

	opts = append([]inject.Option{inject.WithMetadata(Table(t))}, opts...)
	return &BinderBuilder{
		t:      t,
		binder: inject.NewBinder(opts...),
	}
}

// With applies configure to the binder.
func (b *BinderBuilder) With(configure func(*inject.Binder)) *BinderBuilder {
	configure(b.binder)
	return b
}

// WithModule installs modules.
func (b *BinderBuilder) WithModule(modules ...inject.Module) *BinderBuilder {
	require.NoError(b.t, b.binder.Install(modules...))
	return b
}

// Binder returns the binder.
func (b *BinderBuilder) Binder() *inject.Binder {
	return b.binder
}

// Injector returns the injector, failing the test on configuration errors.
func (b *BinderBuilder) Injector() *inject.Injector {
	b.t.Helper()

	inj, err := b.binder.Injector()
	require.NoError(b.t, err)
	return inj
}

// GarageModule binds Tire to Goodyear and Vehicle to Car.
var GarageModule = inject.NewModule("garage",
	inject.ModuleFunc(func(b *inject.Binder) error {
		inject.Bind[Tire](b).To(inject.TypeOf[*Goodyear]())
		inject.Bind[Vehicle](b).To(inject.TypeOf[*Car]())
		return nil
	}),
)
