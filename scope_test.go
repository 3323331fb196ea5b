package inject_test

import (
	"sync"
	"testing"

	"github.com/junioryono/inject"
	"github.com/junioryono/inject/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingScope caches per binding and counts the Obtain calls it serves.
type countingScope struct {
	mu     sync.Mutex
	cache  map[inject.Binding]any
	served int
}

func newCountingScope() *countingScope {
	return &countingScope{cache: make(map[inject.Binding]any)}
}

func (s *countingScope) Obtain(b inject.Binding, create func() (any, error)) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.served++
	if v, ok := s.cache[b]; ok {
		return v, nil
	}

	v, err := create()
	if err != nil {
		return nil, err
	}

	s.cache[b] = v
	return v, nil
}

func TestScope_Default(t *testing.T) {
	t.Parallel()

	inj := testutil.NewBinderBuilder(t).With(func(b *inject.Binder) {
		inject.Bind[testutil.Tire](b).To(inject.TypeOf[*testutil.Goodyear]())
	}).Injector()

	testutil.AssertPrototype[testutil.Tire](t, inj)
	testutil.AssertPrototype[*testutil.Pirelli](t, inj)

	binding := inj.Binder().Bindings()[0]
	assert.Equal(t, inject.Prototype, binding.Scope())
}

func TestScope_Singleton(t *testing.T) {
	t.Parallel()

	inj := testutil.NewBinderBuilder(t).With(func(b *inject.Binder) {
		inject.Bind[testutil.Tire](b).To(inject.TypeOf[*testutil.Goodyear]()).AsSingleton()
		inject.BindNamed[testutil.Tire](b, "spare").To(inject.TypeOf[*testutil.Goodyear]()).AsSingleton()
	}).Injector()

	tire := testutil.AssertSingleton[testutil.Tire](t, inj)
	spare := testutil.AssertNamedResolvable[testutil.Tire](t, inj, "spare")
	assert.NotSame(t, tire, spare, "singletons are cached per binding")

	again, err := inj.Binder().Injector()
	require.NoError(t, err)
	assert.Same(t, inj, again)
}

func TestScope_FixedInstanceBypassesScope(t *testing.T) {
	t.Parallel()

	scope := newCountingScope()
	tire := testutil.NewPirelli()

	inj := testutil.NewBinderBuilder(t).With(func(b *inject.Binder) {
		inject.Bind[testutil.Tire](b).ToInstance(tire).In(scope)
	}).Injector()

	assert.Same(t, tire, testutil.AssertResolvable[testutil.Tire](t, inj))
	assert.Zero(t, scope.served)
}

func TestScope_Custom(t *testing.T) {
	t.Parallel()

	scope := newCountingScope()
	inj := testutil.NewBinderBuilder(t).With(func(b *inject.Binder) {
		inject.Bind[testutil.Tire](b).To(inject.TypeOf[*testutil.Goodyear]()).In(scope)
	}).Injector()

	testutil.AssertSingleton[testutil.Tire](t, inj)
	assert.Equal(t, 2, scope.served)
	assert.Len(t, scope.cache, 1)
}

func TestScope_Func(t *testing.T) {
	t.Parallel()

	var seen []inject.Key
	scope := inject.ScopeFunc(func(b inject.Binding, create func() (any, error)) (any, error) {
		seen = append(seen, b.Key())
		return create()
	})

	inj := testutil.NewBinderBuilder(t).With(func(b *inject.Binder) {
		inject.BindNamed[testutil.Tire](b, "audited").To(inject.TypeOf[*testutil.Goodyear]()).In(scope)
	}).Injector()

	testutil.AssertNamedResolvable[testutil.Tire](t, inj, "audited")
	assert.Equal(t, []inject.Key{inject.KeyOf(inject.TypeOf[testutil.Tire](), "audited")}, seen)
}

func TestScope_LastScopeWins(t *testing.T) {
	t.Parallel()

	inj := testutil.NewBinderBuilder(t).With(func(b *inject.Binder) {
		inject.Bind[testutil.Tire](b).To(inject.TypeOf[*testutil.Goodyear]()).AsSingleton().AsPrototype()
	}).Injector()

	testutil.AssertPrototype[testutil.Tire](t, inj)
}

func TestScope_CustomSessionScope(t *testing.T) {
	t.Parallel()

	custom := inject.NewSessionScope()
	b := testutil.NewBinderBuilder(t, inject.WithSessionScope(custom)).With(func(b *inject.Binder) {
		inject.Bind[testutil.Tire](b).To(inject.TypeOf[*testutil.Goodyear]()).InSession()
	}).Binder()

	assert.Same(t, custom, b.SessionScope())

	inj := b.MustInjector()
	session := inject.NewMapSession()
	inj.SetSession(session)

	assert.Same(t, session, custom.Session())
	testutil.AssertSingleton[testutil.Tire](t, inj)
	assert.Equal(t, 1, session.Len())
}

func TestScope_SetSessionScope(t *testing.T) {
	t.Parallel()

	b := testutil.NewBinderBuilder(t).With(func(b *inject.Binder) {
		inject.Bind[testutil.Tire](b).To(inject.TypeOf[*testutil.Goodyear]()).InSession()
	}).Binder()
	inj := b.MustInjector()

	err := b.SetSessionScope(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, inject.ErrNilScope)

	first := inject.NewSessionScope()
	first.SetSession(inject.NewMapSession())
	require.NoError(t, b.SetSessionScope(first))

	tire := testutil.AssertResolvable[testutil.Tire](t, inj)

	second := inject.NewSessionScope()
	second.SetSession(inject.NewMapSession())
	require.NoError(t, b.SetSessionScope(second))

	assert.NotSame(t, tire, testutil.AssertResolvable[testutil.Tire](t, inj), "the scope is looked up at resolution time")
}

func TestScope_NamedSession(t *testing.T) {
	t.Parallel()

	inj := testutil.NewBinderBuilder(t).Injector()
	session := inject.NewMapSession()
	inj.SetSession(session, "request")

	bound := testutil.AssertNamedResolvable[inject.Session](t, inj, "request")
	assert.Same(t, session, bound)
	assert.NotEmpty(t, session.ID())

	testutil.AssertNotFound[inject.Session](t, inj)
}
