package inject

import (
	"errors"
	"fmt"
	"sync"

	"github.com/junioryono/inject/config"
	"github.com/junioryono/inject/internal/metrics"
	"github.com/junioryono/inject/metadata"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Binder declares bindings and produces the Injector that resolves them.
// The registry methods (Bind, BindConstant, BindList, ...) are promoted
// from the embedded Registry.
//
//	b := inject.NewBinder(inject.WithEnvironment("prod"))
//	b.Bind(inject.TypeOf[Tire]()).To(inject.TypeOf[Goodyear]())
//	b.Bind(inject.TypeOf[Vehicle]()).To(inject.TypeOf[*Car]()).AsSingleton()
//	b.BindConstant("answer").To(42)
//
//	injector, err := b.Injector()
//
// The binder owns the singleton and session scopes, so every injector it
// returns shares their caches.
type Binder struct {
	*Registry

	mu       sync.Mutex
	logger   *zap.Logger
	metrics  *metrics.Collector
	errs     []error
	injector *Injector
}

// NewBinder creates a binder.
func NewBinder(opts ...Option) *Binder {
	o := &binderOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(o)
		}
	}

	if o.metadata == nil {
		o.metadata = metadata.NewTable()
	}

	b := &Binder{logger: o.logger}

	if o.registerer != nil {
		m, err := metrics.New(o.namespace, o.registerer)
		if err != nil {
			b.errs = append(b.errs, ConfigurationError{Operation: "metrics", Cause: err})
		} else {
			b.metrics = m
		}
	}

	session := o.sessionScope
	if session == nil {
		session = newSessionScope(b.metrics)
	}

	b.Registry = newRegistry(o.metadata, newSingletonScope(b.metrics), session, o.environment)
	return b
}

// NewBinderFromConfig creates a binder from loaded configuration. opts are
// applied after the configuration and take precedence.
func NewBinderFromConfig(cfg *config.Config, opts ...Option) (*Binder, error) {
	if cfg == nil {
		return nil, ConfigurationError{Operation: "config", Cause: ErrNilTarget}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithEnvironment(cfg.Environment),
		WithLogger(logger),
	}

	if cfg.Metrics {
		base = append(base,
			WithMetrics(prometheus.DefaultRegisterer),
			WithMetricsNamespace(cfg.MetricsNamespace),
		)
	}

	return NewBinder(append(base, opts...)...), nil
}

// SetSessionScope replaces the session scope used by InSession bindings.
func (b *Binder) SetSessionScope(s SessionScope) error {
	if s == nil {
		return ConfigurationError{Operation: "set-session-scope", Cause: ErrNilScope}
	}

	b.setSessionScope(s)
	return nil
}

// RegisterConstructor registers fn as the constructor of its result type
// with the metadata provider.
//
//	b.RegisterConstructor(NewCar)
//	b.RegisterConstructor(NewEngine, metadata.Named(0, "v8"))
func (b *Binder) RegisterConstructor(fn any, opts ...metadata.Option) error {
	registrar, ok := b.Metadata().(metadata.Registrar)
	if !ok {
		return ConfigurationError{
			Operation: "register-constructor",
			Cause:     fmt.Errorf("%w: %T", ErrNoRegistrar, b.Metadata()),
		}
	}

	return registrar.Register(fn, opts...)
}

// Install configures the binder with each module in order. The first error
// stops the installation.
func (b *Binder) Install(modules ...Module) error {
	for _, m := range modules {
		if m == nil {
			return ConfigurationError{Operation: "install", Cause: ErrNilModule}
		}

		name := moduleName(m)
		if err := m.Configure(b); err != nil {
			return ModuleError{Module: name, Cause: err}
		}

		b.logger.Debug("module installed", zap.String("module", name))
	}

	return nil
}

// Injector returns the injector of this binder, creating it on first use.
// Every call returns the same injector until it is closed. Configuration
// errors recorded on the bindings are returned joined.
func (b *Binder) Injector() (*Injector, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	errs := append(append([]error(nil), b.errs...), b.configurationErrors()...)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if b.injector != nil && !b.injector.closed.Load() {
		return b.injector, nil
	}

	inj := newInjector(b)
	b.bindInstance(Key{Type: injectorType}, inj)
	b.injector = inj

	b.logger.Debug("injector created",
		zap.String("id", inj.id),
		zap.String("environment", b.Environment()),
		zap.Int("bindings", len(b.Bindings())),
	)

	return inj, nil
}

// MustInjector is like Injector but panics on error.
func (b *Binder) MustInjector() *Injector {
	inj, err := b.Injector()
	if err != nil {
		panic(err)
	}
	return inj
}
