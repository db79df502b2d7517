package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEdge_RejectsCycle(t *testing.T) {
	g := New[string]()
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("b", "c"))

	err := g.AddEdge("c", "a")
	require.Error(t, err)

	var cycle CycleError[string]
	require.True(t, errors.As(err, &cycle))
	assert.Equal(t, "c", cycle.From)
	assert.Equal(t, "a", cycle.To)
	assert.Equal(t, []string{"a", "b", "c", "a"}, cycle.Path)
	assert.Equal(t, "cycle detected: a -> b -> c -> a", err.Error())
	assert.False(t, g.HasEdge("c", "a"))
}

func TestAddEdge_SelfLoop(t *testing.T) {
	g := New[int]()
	err := g.AddEdge(1, 1)
	var cycle CycleError[int]
	require.True(t, errors.As(err, &cycle))
	assert.Equal(t, []int{1, 1}, cycle.Path)
}

func TestAddEdge_Idempotent(t *testing.T) {
	g := New[string]()
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("a", "b"))
	assert.Equal(t, []string{"b"}, g.Outgoing("a"))
	assert.Equal(t, []string{"a"}, g.Incoming("b"))
}

func TestShortestPath(t *testing.T) {
	g := New[string]()
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("b", "c"))
	require.NoError(t, g.AddEdge("c", "d"))
	require.NoError(t, g.AddEdge("a", "d"))

	path, ok := g.ShortestPath("a", "d")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "d"}, path)

	path, ok = g.ShortestPath("b", "d")
	require.True(t, ok)
	assert.Equal(t, []string{"b", "c", "d"}, path)

	_, ok = g.ShortestPath("d", "a")
	assert.False(t, ok)

	_, ok = g.ShortestPath("a", "missing")
	assert.False(t, ok)
}

func TestCycleError_UsesShortestPath(t *testing.T) {
	g := New[string]()
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("b", "c"))
	require.NoError(t, g.AddEdge("c", "d"))
	require.NoError(t, g.AddEdge("a", "d"))

	err := g.AddEdge("d", "a")
	var cycle CycleError[string]
	require.True(t, errors.As(err, &cycle))
	assert.Equal(t, []string{"a", "d", "a"}, cycle.Path)
}

func TestVerticesAndEdges(t *testing.T) {
	g := New[string]()
	g.AddVertex("root")
	require.NoError(t, g.AddEdge("root", "x"))
	require.NoError(t, g.AddEdge("root", "y"))
	require.NoError(t, g.AddEdge("x", "y"))

	assert.Equal(t, []string{"root", "x", "y"}, g.Vertices())

	var edges [][2]string
	g.Edges(func(from, to string) { edges = append(edges, [2]string{from, to}) })
	assert.Equal(t, [][2]string{{"root", "x"}, {"root", "y"}, {"x", "y"}}, edges)
	assert.Equal(t, []string{"root", "x"}, g.Incoming("y"))
}
