package container_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-resolver/framework/container"
)

func TestMetrics_CountsResolutions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := container.NewMetrics(reg)
	require.NoError(t, err)

	c := container.New(container.WithMetrics(m))
	require.NoError(t, c.Singleton(singletonKey, newIdentified))
	require.NoError(t, c.Transient(transientKey, newIdentified))
	require.NoError(t, c.Transient("broken", func(container.Resolver) (any, error) {
		return nil, errors.New("broken")
	}))
	c.Build()

	for range 3 {
		_, err := c.Resolve(singletonKey)
		require.NoError(t, err)
		_, err = c.Resolve(transientKey)
		require.NoError(t, err)
	}
	_, err = c.Resolve("missing")
	require.NoError(t, err)
	_, err = c.Resolve("broken")
	require.Error(t, err)

	count, err := testutil.GatherAndCount(reg, "resolver_resolutions_total")
	require.NoError(t, err)
	assert.Equal(t, 4, count, "one series per lifecycle/outcome pair")

	metric := "resolver_constructions_total"
	n, err := testutil.GatherAndCount(reg, metric)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMetrics_TracksScopes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := container.NewMetrics(reg)
	require.NoError(t, err)

	c := container.New(container.WithMetrics(m)).Build()
	s1, err := c.NewScope()
	require.NoError(t, err)
	_, err = c.NewScope()
	require.NoError(t, err)
	require.NoError(t, s1.End())

	expected := `
# HELP resolver_scopes_active Scopes created and not yet ended.
# TYPE resolver_scopes_active gauge
resolver_scopes_active 2
# HELP resolver_scopes_created_total Scopes created, including root scopes.
# TYPE resolver_scopes_created_total counter
resolver_scopes_created_total 3
`
	err = testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"resolver_scopes_active", "resolver_scopes_created_total")
	assert.NoError(t, err)
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := container.NewMetrics(reg)
	require.NoError(t, err)

	_, err = container.NewMetrics(reg)
	assert.Error(t, err)
}

func TestMetrics_NilIsSafe(t *testing.T) {
	c := container.New(container.WithMetrics(nil))
	require.NoError(t, c.Transient(transientKey, newIdentified))
	c.Build()

	_, err := c.Resolve(transientKey)
	assert.NoError(t, err)
}
