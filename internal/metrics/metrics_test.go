package metrics_test

import (
	"errors"
	"testing"

	"github.com/junioryono/inject/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()

	c, err := metrics.New("test", reg)
	require.NoError(t, err)

	c.ObserveResolution("class", nil)
	c.ObserveResolution("class", nil)
	c.ObserveResolution("class", errors.New("boom"))
	c.ObserveImplicitBinding()
	c.ObserveScope("singleton", false)
	c.ObserveScope("singleton", true)
	c.ObserveScope("singleton", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Resolutions.WithLabelValues("class", metrics.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Resolutions.WithLabelValues("class", metrics.OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ImplicitBindings))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.ScopeHits.WithLabelValues("singleton")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ScopeMisses.WithLabelValues("singleton")))

	count, err := testutil.GatherAndCount(reg, "test_resolutions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCollector_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()

	first, err := metrics.New("", reg)
	require.NoError(t, err)
	second, err := metrics.New("", reg)
	require.NoError(t, err)

	first.ObserveImplicitBinding()
	second.ObserveImplicitBinding()

	assert.Equal(t, 2.0, testutil.ToFloat64(first.ImplicitBindings))
	assert.Same(t, first.Resolutions, second.Resolutions)
}

func TestCollector_InvalidNamespace(t *testing.T) {
	_, err := metrics.New("not a namespace", prometheus.NewRegistry())
	assert.Error(t, err)
}

func TestCollector_Nil(t *testing.T) {
	var c *metrics.Collector

	assert.NotPanics(t, func() {
		c.ObserveResolution("class", nil)
		c.ObserveImplicitBinding()
		c.ObserveScope("session", true)
	})
}

func TestCollector_WithoutRegistry(t *testing.T) {
	c, err := metrics.New("", nil)
	require.NoError(t, err)

	c.ObserveImplicitBinding()
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ImplicitBindings))
}
