package testutil

import (
	"testing"

	"github.com/junioryono/inject/metadata"
	"github.com/stretchr/testify/require"
)

// Table returns a metadata table with the fixture constructors registered.
func Table(t testing.TB) *metadata.Table {
	t.Helper()

	table := metadata.NewTable()
	require.NoError(t, table.Register(NewGoodyear))
	require.NoError(t, table.Register(NewPirelli))
	require.NoError(t, table.Register(NewCar))
	require.NoError(t, table.Register(NewTruck, metadata.Names("front", "rear")))
	require.NoError(t, table.Register(NewEngine, metadata.Constant(0, "cylinders")))
	require.NoError(t, table.Register(NewSelfReferencing))
	require.NoError(t, table.Register(NewCycleA))
	require.NoError(t, table.Register(NewCycleB))

	return table
}
