package inject_test

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/junioryono/inject"
	"github.com/junioryono/inject/internal/testutil"
	"github.com/junioryono/inject/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests that exercise binder, registry, scopes and resolver together

func TestIntegration_TireAndVehicle(t *testing.T) {
	t.Parallel()

	inj := testutil.NewBinderBuilder(t).WithModule(testutil.GarageModule).Injector()

	vehicle := testutil.AssertResolvable[testutil.Vehicle](t, inj)

	car, ok := vehicle.(*testutil.Car)
	require.True(t, ok, "expected *Car, got %T", vehicle)
	assert.IsType(t, &testutil.Goodyear{}, car.Front)
	assert.Nil(t, car.Radio, "unbound optional property is left unset")
	assert.Zero(t, car.Answer)
}

func TestIntegration_ImplicitSelfBinding(t *testing.T) {
	t.Parallel()

	inj := testutil.NewBinderBuilder(t).Injector()
	goodyear := inject.TypeOf[*testutil.Goodyear]()

	assert.True(t, inj.HasBinding(goodyear))
	assert.False(t, inj.HasExplicitBinding(goodyear))

	v, err := inj.GetInstance(goodyear)
	require.NoError(t, err)
	assert.IsType(t, &testutil.Goodyear{}, v)

	assert.True(t, inj.HasExplicitBinding(goodyear))
}

func TestIntegration_NamedConstant(t *testing.T) {
	t.Parallel()

	inj := testutil.NewBinderBuilder(t).
		WithModule(testutil.GarageModule).
		With(func(b *inject.Binder) {
			b.BindConstant("answer").To(42)
			b.BindConstant("cylinders").To(8)
		}).
		Injector()

	car := testutil.AssertResolvable[*testutil.Car](t, inj)
	assert.Equal(t, 42, car.Answer)

	engine := testutil.AssertResolvable[*testutil.Engine](t, inj)
	assert.Equal(t, 8, engine.Cylinders)

	// constants and types occupy different namespaces
	assert.False(t, inj.HasBinding(inject.TypeOf[int](), "answer"))
}

func TestIntegration_SingletonAndPrototype(t *testing.T) {
	t.Parallel()

	t.Run("singleton", func(t *testing.T) {
		t.Parallel()

		inj := testutil.NewBinderBuilder(t).With(func(b *inject.Binder) {
			inject.Bind[testutil.Tire](b).To(inject.TypeOf[*testutil.Goodyear]()).AsSingleton()
		}).Injector()

		testutil.AssertSingleton[testutil.Tire](t, inj)
	})

	t.Run("prototype", func(t *testing.T) {
		t.Parallel()

		inj := testutil.NewBinderBuilder(t).With(func(b *inject.Binder) {
			inject.Bind[testutil.Tire](b).To(inject.TypeOf[*testutil.Goodyear]())
		}).Injector()

		testutil.AssertPrototype[testutil.Tire](t, inj)
	})
}

func TestIntegration_SessionLifecycle(t *testing.T) {
	t.Parallel()

	inj := testutil.NewBinderBuilder(t).With(func(b *inject.Binder) {
		inject.Bind[testutil.Tire](b).To(inject.TypeOf[*testutil.Goodyear]()).InSession()
	}).Injector()

	_, err := inject.Get[testutil.Tire](inj)
	require.Error(t, err)
	assert.True(t, inject.IsSessionNotAttached(err))

	var serr inject.SessionError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, inject.TypeOf[testutil.Tire](), serr.Key.Type)

	session := inject.NewMapSession()
	inj.SetSession(session)

	first := testutil.AssertResolvable[testutil.Tire](t, inj)
	second := testutil.AssertResolvable[testutil.Tire](t, inj)
	assert.Same(t, first, second)
	assert.True(t, session.Has(inject.KeyOf(inject.TypeOf[testutil.Tire]()).ID()))
	assert.Same(t, first, session.Get("github.com/junioryono/inject/internal/testutil.Tire"))

	bound := testutil.AssertResolvable[inject.Session](t, inj)
	assert.Same(t, session, bound)

	other := inject.NewMapSession()
	inj.SetSession(other)

	third := testutil.AssertResolvable[testutil.Tire](t, inj)
	assert.NotSame(t, first, third)
	assert.Same(t, other, testutil.AssertResolvable[inject.Session](t, inj))

	inj.SetSession(nil)
	_, err = inject.Get[testutil.Tire](inj)
	assert.True(t, inject.IsSessionNotAttached(err))
}

func TestIntegration_ListAccumulation(t *testing.T) {
	t.Parallel()

	inj := testutil.NewBinderBuilder(t).
		With(func(b *inject.Binder) {
			b.BindList("plugins").WithValue(testutil.NewPlugin("audit"))
		}).
		With(func(b *inject.Binder) {
			b.BindList("plugins").WithClosure(func() *testutil.NamedPlugin { return testutil.NewPlugin("metrics") })
		}).
		With(func(b *inject.Binder) {
			b.BindList("plugins").WithProvider(inject.ProviderFunc(func(name string) (any, error) {
				return testutil.NewPlugin(name + "-tracing"), nil
			}))
		}).
		Injector()

	items, err := inj.GetList("plugins")
	require.NoError(t, err)
	require.Len(t, items, 3)

	plugins, err := inject.NamedList[testutil.Plugin](inj, "plugins")
	require.NoError(t, err)

	names := make([]string, len(plugins))
	for i, p := range plugins {
		names[i] = p.Name()
	}
	assert.Equal(t, []string{"audit", "metrics", "plugins-tracing"}, names)
}

func TestIntegration_MapAccumulation(t *testing.T) {
	t.Parallel()

	front, rear, spare := testutil.NewGoodyear(), testutil.NewPirelli(), testutil.NewGoodyear()
	replacement := testutil.NewPirelli()

	inj := testutil.NewBinderBuilder(t).
		With(func(b *inject.Binder) {
			b.BindMap("tires").WithEntry("front", front).WithEntry("rear", rear)
		}).
		With(func(b *inject.Binder) {
			b.BindMap("tires").WithEntry("spare", spare).WithEntry("front", replacement)
		}).
		Injector()

	m, err := inj.GetMap("tires")
	require.NoError(t, err)

	assert.Equal(t, []string{"front", "rear", "spare"}, m.Keys())

	v, ok := m.Get("front")
	require.True(t, ok)
	assert.Same(t, replacement, v, "a repeated key replaces the value but keeps its position")

	tires, err := inject.NamedMap[testutil.Tire](inj, "tires")
	require.NoError(t, err)
	assert.Len(t, tires, 3)
	assert.Same(t, rear, tires["rear"])
}

func TestIntegration_OptionalDependency(t *testing.T) {
	t.Parallel()

	type Dashboard struct{ Radio testutil.Radio }
	newDashboard := func(r testutil.Radio) *Dashboard { return &Dashboard{Radio: r} }

	t.Run("required fails", func(t *testing.T) {
		t.Parallel()

		b := testutil.NewBinderBuilder(t).Binder()
		require.NoError(t, b.RegisterConstructor(newDashboard))

		_, err := inject.Get[*Dashboard](b.MustInjector())
		require.Error(t, err)
		assert.True(t, inject.IsNotFound(err))

		var berr inject.BindingError
		require.ErrorAs(t, err, &berr)
		assert.Equal(t, inject.TypeOf[testutil.Radio](), berr.Key.Type)
		assert.Contains(t, berr.Param, "parameter 0")
	})

	t.Run("optional uses default", func(t *testing.T) {
		t.Parallel()

		b := testutil.NewBinderBuilder(t).Binder()
		require.NoError(t, b.RegisterConstructor(newDashboard, metadata.OptionalDefault(0, &testutil.FM{Frequency: "101.1"})))

		dash := testutil.AssertResolvable[*Dashboard](t, b.MustInjector())
		require.NotNil(t, dash.Radio)
		assert.Equal(t, "101.1", dash.Radio.Station())
	})

	t.Run("optional without default is zero", func(t *testing.T) {
		t.Parallel()

		b := testutil.NewBinderBuilder(t).Binder()
		require.NoError(t, b.RegisterConstructor(newDashboard, metadata.Optional(0)))

		dash := testutil.AssertResolvable[*Dashboard](t, b.MustInjector())
		assert.Nil(t, dash.Radio)
	})

	t.Run("bound optional is resolved", func(t *testing.T) {
		t.Parallel()

		b := testutil.NewBinderBuilder(t).Binder()
		require.NoError(t, b.RegisterConstructor(newDashboard, metadata.OptionalDefault(0, &testutil.FM{Frequency: "101.1"})))
		inject.Bind[testutil.Radio](b).ToInstance(&testutil.FM{Frequency: "88.0"})

		dash := testutil.AssertResolvable[*Dashboard](t, b.MustInjector())
		assert.Equal(t, "88.0", dash.Radio.Station())
	})
}

func TestIntegration_EnvironmentConventions(t *testing.T) {
	t.Parallel()

	newTable := func(t *testing.T, withDefault bool) *metadata.Table {
		table := testutil.Table(t)
		if withDefault {
			require.NoError(t, table.ImplementedBy(inject.TypeOf[testutil.Tire](), inject.TypeOf[*testutil.Goodyear]()))
		}
		require.NoError(t, table.ImplementedByIn(inject.TypeOf[testutil.Tire](), "race", inject.TypeOf[*testutil.Pirelli]()))
		return table
	}

	tests := []struct {
		name        string
		environment string
		withDefault bool
		want        string
		wantErr     error
	}{
		{name: "override", environment: "race", withDefault: true, want: "Pirelli"},
		{name: "default", environment: "street", withDefault: true, want: "Goodyear"},
		{name: "no environment", withDefault: true, want: "Goodyear"},
		{name: "override without default", environment: "race", want: "Pirelli"},
		{name: "no fallback", environment: "street", wantErr: inject.ErrNoEnvironmentFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := inject.NewBinder(inject.WithMetadata(newTable(t, tt.withDefault)), inject.WithEnvironment(tt.environment))
			inj := b.MustInjector()

			tire, err := inject.Get[testutil.Tire](inj)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, inject.IsNotFound(err))
				assert.False(t, inj.HasBinding(inject.TypeOf[testutil.Tire]()))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, tire.Brand())
			assert.True(t, inj.HasExplicitBinding(inject.TypeOf[testutil.Tire]()))
		})
	}
}

func TestIntegration_ProvidedByConvention(t *testing.T) {
	t.Parallel()

	table := testutil.Table(t)
	require.NoError(t, table.ProvidedBy(inject.TypeOf[testutil.Tire](), inject.TypeOf[*testutil.TireProvider]()))
	require.NoError(t, table.Singleton(inject.TypeOf[*testutil.TireProvider]()))

	inj := inject.NewBinder(inject.WithMetadata(table)).MustInjector()

	first := testutil.AssertResolvable[testutil.Tire](t, inj)
	second := testutil.AssertResolvable[testutil.Tire](t, inj)
	assert.NotSame(t, first, second)

	provider := testutil.AssertSingleton[*testutil.TireProvider](t, inj)
	assert.Equal(t, int64(2), provider.Calls.Load())
}

func TestIntegration_SingletonConvention(t *testing.T) {
	t.Parallel()

	table := testutil.Table(t)
	require.NoError(t, table.Singleton(inject.TypeOf[*testutil.Goodyear]()))

	b := inject.NewBinder(inject.WithMetadata(table))
	inject.Bind[testutil.Tire](b).To(inject.TypeOf[*testutil.Goodyear]())
	inject.BindNamed[testutil.Tire](b, "fresh").To(inject.TypeOf[*testutil.Goodyear]()).AsPrototype()
	inj := b.MustInjector()

	testutil.AssertSingleton[*testutil.Goodyear](t, inj)
	testutil.AssertSingleton[testutil.Tire](t, inj)

	first := testutil.AssertNamedResolvable[testutil.Tire](t, inj, "fresh")
	second := testutil.AssertNamedResolvable[testutil.Tire](t, inj, "fresh")
	assert.NotSame(t, first, second)
}

func TestIntegration_CircularDependencies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		resolve func(*inject.Injector) error
	}{
		{
			name: "self",
			resolve: func(inj *inject.Injector) error {
				_, err := inject.Get[*testutil.SelfReferencing](inj)
				return err
			},
		},
		{
			name: "pair",
			resolve: func(inj *inject.Injector) error {
				_, err := inject.Get[*testutil.CycleA](inj)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			inj := testutil.NewBinderBuilder(t).With(func(b *inject.Binder) {
				inject.Bind[*testutil.CycleA](b).AsSingleton()
			}).Injector()

			err := tt.resolve(inj)
			require.Error(t, err)
			assert.True(t, inject.IsCircular(err))

			var cerr inject.CircularDependencyError
			require.ErrorAs(t, err, &cerr)
			assert.Contains(t, cerr.Error(), "circular dependency detected")
		})
	}
}

func TestIntegration_ConcurrentSingleton(t *testing.T) {
	t.Parallel()

	var counter testutil.Counter
	inj := testutil.NewBinderBuilder(t).With(func(b *inject.Binder) {
		inject.Bind[testutil.Tire](b).ToClosure(func() testutil.Tire {
			counter.Inc()
			return testutil.NewGoodyear()
		}).AsSingleton()
	}).Injector()

	const workers = 50
	results := make([]testutil.Tire, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = inject.Get[testutil.Tire](inj)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errors.Join(errs...))
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
	assert.Equal(t, int64(1), counter.Load())
}

func TestIntegration_ConcurrentImplicitBinding(t *testing.T) {
	t.Parallel()

	table := testutil.Table(t)
	require.NoError(t, table.Singleton(inject.TypeOf[*testutil.Pirelli]()))

	b := inject.NewBinder(inject.WithMetadata(table))
	inj := b.MustInjector()

	const workers = 50
	results := make([]*testutil.Pirelli, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = inject.Get[*testutil.Pirelli](inj)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errors.Join(errs...))
	for _, r := range results {
		assert.Same(t, results[0], r)
	}

	count := 0
	for _, binding := range b.Bindings() {
		if binding.Key().Type == inject.TypeOf[*testutil.Pirelli]() {
			count++
		}
	}
	assert.Equal(t, 1, count, "exactly one implicit binding wins")
}

// sameNamedTypes returns two distinct types that print the same.
func sameNamedTypes() (first, second reflect.Type, newFirst, newSecond func(string) any) {
	{
		type Config struct{ Source string }
		first = reflect.TypeOf(&Config{})
		newFirst = func(source string) any { return &Config{Source: source} }
	}
	{
		type Config struct{ Source string }
		second = reflect.TypeOf(&Config{})
		newSecond = func(source string) any { return &Config{Source: source} }
	}
	return first, second, newFirst, newSecond
}

func TestIntegration_SessionSameNamedTypes(t *testing.T) {
	t.Parallel()

	first, second, _, _ := sameNamedTypes()
	require.NotEqual(t, first, second)
	require.Equal(t, first.String(), second.String())

	inj := testutil.NewBinderBuilder(t).With(func(b *inject.Binder) {
		b.Bind(first).InSession()
		b.Bind(second).InSession()
	}).Injector()

	session := inject.NewMapSession()
	inj.SetSession(session)

	a, err := inj.GetInstance(first)
	require.NoError(t, err)
	assert.Equal(t, first, reflect.TypeOf(a))

	b, err := inj.GetInstance(second)
	require.NoError(t, err)
	assert.Equal(t, second, reflect.TypeOf(b), "each binding has its own session slot")

	again, err := inj.GetInstance(second)
	require.NoError(t, err)
	assert.Same(t, b, again)

	assert.Equal(t, 2, session.Len())
}

func TestIntegration_SessionValueTypeMismatch(t *testing.T) {
	t.Parallel()

	inj := testutil.NewBinderBuilder(t).With(func(b *inject.Binder) {
		inject.Bind[testutil.Tire](b).To(inject.TypeOf[*testutil.Goodyear]()).InSession()
	}).Injector()

	session := inject.NewMapSession()
	session.Put(inject.KeyOf(inject.TypeOf[testutil.Tire]()).ID(), "not a tire")
	inj.SetSession(session)

	_, err := inject.Get[testutil.Tire](inj)
	require.Error(t, err)
	assert.ErrorIs(t, err, inject.ErrTypeMismatch)

	var berr inject.BindingError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, inject.TypeOf[testutil.Tire](), berr.Key.Type)
}

func TestIntegration_TypedMultibindingsSameNamedTypes(t *testing.T) {
	t.Parallel()

	first, second, newFirst, newSecond := sameNamedTypes()

	inj := testutil.NewBinderBuilder(t).With(func(b *inject.Binder) {
		b.BindListOf(first).WithValue(newFirst("list"))
		b.BindListOf(second).WithValue(newSecond("list"))
		b.BindMapOf(first).WithEntry("a", newFirst("map"))
		b.BindMapOf(second).WithEntry("b", newSecond("map"))
	}).Injector()

	for _, typ := range []reflect.Type{first, second} {
		items, err := inj.GetListOf(typ)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, typ, reflect.TypeOf(items[0]))

		m, err := inj.GetMapOf(typ)
		require.NoError(t, err)
		require.Equal(t, 1, m.Len())
	}

	m, err := inj.GetMapOf(second)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, m.Keys())
}

func TestIntegration_LabeledListDoesNotUntypeTypedList(t *testing.T) {
	t.Parallel()

	pluginType := inject.TypeOf[testutil.Plugin]()

	inj := testutil.NewBinderBuilder(t).With(func(b *inject.Binder) {
		b.BindList(pluginType.String()).WithValue(42)
		inject.BindListOf[testutil.Plugin](b).WithValue(42)
	}).Injector()

	labeled, err := inj.GetList(pluginType.String())
	require.NoError(t, err)
	assert.Equal(t, []any{42}, labeled)

	_, err = inj.GetListOf(pluginType)
	require.Error(t, err)
	assert.ErrorIs(t, err, inject.ErrTypeMismatch)
}

type flakyGauge struct{ ID int64 }

func TestIntegration_ConcurrentFlakyImplicitBinding(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	gaugeType := inject.TypeOf[*flakyGauge]()

	table := testutil.Table(t)
	require.NoError(t, table.Register(func() (*flakyGauge, error) {
		n := calls.Add(1)
		if n == 1 {
			return nil, errors.New("warming up")
		}
		return &flakyGauge{ID: n}, nil
	}))
	require.NoError(t, table.Singleton(gaugeType))

	b := inject.NewBinder(inject.WithMetadata(table))
	inj := b.MustInjector()

	const workers = 50
	results := make([]*flakyGauge, workers)
	errs := make([]error, workers)
	start := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = inject.Get[*flakyGauge](inj)
		}(i)
	}
	close(start)
	wg.Wait()

	var winner *flakyGauge
	for i, r := range results {
		if errs[i] != nil {
			continue
		}
		if winner == nil {
			winner = r
		}
		assert.Same(t, winner, r, "every success observes one singleton")
	}

	last, err := inject.Get[*flakyGauge](inj)
	require.NoError(t, err)
	if winner != nil {
		assert.Same(t, winner, last)
	}

	assert.True(t, inj.HasExplicitBinding(gaugeType))
	assert.Len(t, filterBindings(inj, gaugeType), 1, "exactly one implicit binding wins")
}
