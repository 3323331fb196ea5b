package inject

import (
	"github.com/junioryono/inject/metadata"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures a Binder.
type Option interface {
	apply(*binderOptions)
}

// binderOptions holds binder configuration.
type binderOptions struct {
	environment  string
	logger       *zap.Logger
	metadata     metadata.Provider
	registerer   prometheus.Registerer
	namespace    string
	sessionScope SessionScope
}

// optionFunc adapts a function to Option.
type optionFunc func(*binderOptions)

func (f optionFunc) apply(opts *binderOptions) {
	f(opts)
}

// WithEnvironment sets the environment label conventions are selected by.
func WithEnvironment(environment string) Option {
	return optionFunc(func(opts *binderOptions) {
		opts.environment = environment
	})
}

// WithLogger sets the logger. Binders log at debug level only; the default
// logger discards everything.
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(opts *binderOptions) {
		if logger != nil {
			opts.logger = logger
		}
	})
}

// WithMetadata sets the metadata provider. The default is a fresh
// metadata.Table.
func WithMetadata(p metadata.Provider) Option {
	return optionFunc(func(opts *binderOptions) {
		if p != nil {
			opts.metadata = p
		}
	})
}

// WithMetrics registers resolution metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return optionFunc(func(opts *binderOptions) {
		opts.registerer = reg
	})
}

// WithMetricsNamespace sets the namespace of the metrics enabled by
// WithMetrics. The default is "inject".
func WithMetricsNamespace(namespace string) Option {
	return optionFunc(func(opts *binderOptions) {
		opts.namespace = namespace
	})
}

// WithSessionScope replaces the default session scope.
func WithSessionScope(s SessionScope) Option {
	return optionFunc(func(opts *binderOptions) {
		if s != nil {
			opts.sessionScope = s
		}
	})
}
