// Package metrics exposes Prometheus counters for binding resolution.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace is used when no namespace is configured.
const DefaultNamespace = "inject"

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Collector holds the resolution metrics of one binder. A nil *Collector
// is valid and records nothing.
type Collector struct {
	Resolutions      *prometheus.CounterVec
	ImplicitBindings prometheus.Counter
	ScopeHits        *prometheus.CounterVec
	ScopeMisses      *prometheus.CounterVec
}

// New creates a collector and registers it with reg. Metrics that are
// already registered under the same names are reused, so several binders
// can share one registry.
func New(namespace string, reg prometheus.Registerer) (*Collector, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	resolutions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Total number of binding resolutions by binding kind and outcome",
		},
		[]string{"binding", "outcome"},
	)

	implicit := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "implicit_bindings_total",
			Help:      "Total number of bindings synthesized from type conventions",
		},
	)

	hits := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scope_cache_hits_total",
			Help:      "Total number of scoped instances served from a scope cache",
		},
		[]string{"scope"},
	)

	misses := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scope_cache_misses_total",
			Help:      "Total number of scoped instances created on a scope cache miss",
		},
		[]string{"scope"},
	)

	c := &Collector{}
	var err error

	if c.Resolutions, err = register(reg, resolutions); err != nil {
		return nil, err
	}
	if c.ImplicitBindings, err = register(reg, implicit); err != nil {
		return nil, err
	}
	if c.ScopeHits, err = register(reg, hits); err != nil {
		return nil, err
	}
	if c.ScopeMisses, err = register(reg, misses); err != nil {
		return nil, err
	}

	return c, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if reg == nil {
		return c, nil
	}

	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}

		var zero C
		return zero, err
	}

	return c, nil
}

// ObserveResolution counts one resolution of the given binding kind.
func (c *Collector) ObserveResolution(binding string, err error) {
	if c == nil {
		return
	}

	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}

	c.Resolutions.WithLabelValues(binding, outcome).Inc()
}

// ObserveImplicitBinding counts one materialized implicit binding.
func (c *Collector) ObserveImplicitBinding() {
	if c == nil {
		return
	}

	c.ImplicitBindings.Inc()
}

// ObserveScope counts a scope cache hit or miss.
func (c *Collector) ObserveScope(scope string, hit bool) {
	if c == nil {
		return
	}

	if hit {
		c.ScopeHits.WithLabelValues(scope).Inc()
	} else {
		c.ScopeMisses.WithLabelValues(scope).Inc()
	}
}
