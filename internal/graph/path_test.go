package graph_test

import (
	"errors"
	"testing"

	"github.com/junioryono/inject/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type node string

func (n node) String() string { return string(n) }

func TestPath_PushPop(t *testing.T) {
	p := graph.NewPath[node]()

	require.NoError(t, p.Push("a"))
	require.NoError(t, p.Push("b"))
	assert.Equal(t, 2, p.Depth())
	assert.Equal(t, []node{"a", "b"}, p.Nodes())

	p.Pop()
	require.NoError(t, p.Push("b"), "popped nodes may be pushed again")

	p.Pop()
	p.Pop()
	p.Pop()
	assert.Equal(t, 0, p.Depth())
}

func TestPath_DetectsCycle(t *testing.T) {
	p := graph.NewPath[node]()

	require.NoError(t, p.Push("root"))
	require.NoError(t, p.Push("a"))
	require.NoError(t, p.Push("b"))

	err := p.Push("a")
	require.Error(t, err)

	var cycle graph.CircularDependencyError
	require.True(t, errors.As(err, &cycle))
	assert.Equal(t, "a", cycle.Node)
	assert.Equal(t, []string{"a", "b"}, cycle.Path)
	assert.Contains(t, err.Error(), "a (cycle)")
	assert.Equal(t, 3, p.Depth(), "failed push leaves the path unchanged")
}

func TestPath_SelfCycle(t *testing.T) {
	p := graph.NewPath[node]()
	require.NoError(t, p.Push("a"))

	err := p.Push("a")
	var cycle graph.CircularDependencyError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"a"}, cycle.Path)
}

func TestCircularDependencyError_EmptyPath(t *testing.T) {
	err := graph.CircularDependencyError{Node: "x"}
	assert.Contains(t, err.Error(), "x (cycle)")
}
