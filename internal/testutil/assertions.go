package testutil

import (
	"testing"

	"github.com/junioryono/inject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertResolvable resolves T and checks that it is not nil.
func AssertResolvable[T any](t testing.TB, inj *inject.Injector) T {
	t.Helper()
	v, err := inject.Get[T](inj)
	require.NoError(t, err, "failed to resolve %s", inject.TypeOf[T]())
	require.NotNil(t, v, "resolved %s is nil", inject.TypeOf[T]())
	return v
}

// AssertNamedResolvable resolves T qualified by name.
func AssertNamedResolvable[T any](t testing.TB, inj *inject.Injector, name string) T {
	t.Helper()
	v, err := inject.GetNamed[T](inj, name)
	require.NoError(t, err, "failed to resolve %s named %q", inject.TypeOf[T](), name)
	require.NotNil(t, v, "resolved %s named %q is nil", inject.TypeOf[T](), name)
	return v
}

// AssertNotFound checks that resolving T fails with a not found error.
func AssertNotFound[T any](t testing.TB, inj *inject.Injector) {
	t.Helper()
	_, err := inject.Get[T](inj)
	require.Error(t, err)
	assert.True(t, inject.IsNotFound(err), "expected not found error, got: %v", err)
}

// AssertSingleton checks that two resolutions of T return the same pointer.
func AssertSingleton[T any](t testing.TB, inj *inject.Injector) T {
	t.Helper()
	first := AssertResolvable[T](t, inj)
	second := AssertResolvable[T](t, inj)
	assert.Same(t, any(first), any(second), "%s should be a singleton", inject.TypeOf[T]())
	return first
}

// AssertPrototype checks that two resolutions of T return different pointers.
func AssertPrototype[T any](t testing.TB, inj *inject.Injector) {
	t.Helper()
	first := AssertResolvable[T](t, inj)
	second := AssertResolvable[T](t, inj)
	assert.NotSame(t, any(first), any(second), "%s should not be cached", inject.TypeOf[T]())
}
