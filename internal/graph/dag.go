// Package graph provides a small directed acyclic graph used to explain
// import relationships in diagnostics.
package graph

import (
	"fmt"
	"strings"
)

// CycleError reports an edge that was rejected because it would close a cycle.
// Path runs from To back to From along existing edges, followed by the
// rejected edge, so it starts and ends with To.
type CycleError[K comparable] struct {
	From K
	To   K
	Path []K
}

// Error returns the error string.
func (e CycleError[K]) Error() string {
	parts := make([]string, len(e.Path))
	for i, k := range e.Path {
		parts[i] = fmt.Sprint(k)
	}
	return "cycle detected: " + strings.Join(parts, " -> ")
}

// DAG is a directed acyclic graph. Vertices and edges are kept in insertion
// order so traversals are deterministic. It is not safe for concurrent use.
type DAG[K comparable] struct {
	vertices []K
	index    map[K]struct{}
	out      map[K][]K
	in       map[K][]K
}

// New creates an empty graph.
func New[K comparable]() *DAG[K] {
	return &DAG[K]{
		index: make(map[K]struct{}),
		out:   make(map[K][]K),
		in:    make(map[K][]K),
	}
}

// AddVertex adds k if it is not already present.
func (g *DAG[K]) AddVertex(k K) {
	if _, ok := g.index[k]; ok {
		return
	}
	g.index[k] = struct{}{}
	g.vertices = append(g.vertices, k)
}

// HasVertex reports whether k is present.
func (g *DAG[K]) HasVertex(k K) bool {
	_, ok := g.index[k]
	return ok
}

// HasEdge reports whether the edge from -> to is present.
func (g *DAG[K]) HasEdge(from, to K) bool {
	for _, n := range g.out[from] {
		if n == to {
			return true
		}
	}
	return false
}

// AddEdge adds from -> to, adding missing vertices. Adding an edge that is
// already present does nothing. An edge that would close a cycle is
// rejected with a CycleError and the graph is left unchanged.
func (g *DAG[K]) AddEdge(from, to K) error {
	if g.HasEdge(from, to) {
		return nil
	}
	if from == to {
		return CycleError[K]{From: from, To: to, Path: []K{to, to}}
	}
	if path, ok := g.ShortestPath(to, from); ok {
		return CycleError[K]{From: from, To: to, Path: append(path, to)}
	}
	g.AddVertex(from)
	g.AddVertex(to)
	g.out[from] = append(g.out[from], to)
	g.in[to] = append(g.in[to], from)
	return nil
}

// ShortestPath returns the vertices of a shortest path from -> to,
// inclusive of both ends, found by breadth first search.
func (g *DAG[K]) ShortestPath(from, to K) ([]K, bool) {
	if !g.HasVertex(from) || !g.HasVertex(to) {
		return nil, false
	}
	if from == to {
		return []K{from}, true
	}

	parent := map[K]K{}
	visited := map[K]struct{}{from: {}}
	queue := []K{from}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range g.out[current] {
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			parent[next] = current
			if next == to {
				return g.unwind(parent, from, to), true
			}
			queue = append(queue, next)
		}
	}
	return nil, false
}

func (g *DAG[K]) unwind(parent map[K]K, from, to K) []K {
	var reversed []K
	for k := to; k != from; k = parent[k] {
		reversed = append(reversed, k)
	}
	reversed = append(reversed, from)

	path := make([]K, len(reversed))
	for i, k := range reversed {
		path[len(reversed)-1-i] = k
	}
	return path
}

// Incoming returns the sources of edges into k, in insertion order.
func (g *DAG[K]) Incoming(k K) []K {
	return append([]K(nil), g.in[k]...)
}

// Outgoing returns the targets of edges out of k, in insertion order.
func (g *DAG[K]) Outgoing(k K) []K {
	return append([]K(nil), g.out[k]...)
}

// Vertices returns every vertex in insertion order.
func (g *DAG[K]) Vertices() []K {
	return append([]K(nil), g.vertices...)
}

// Edges calls fn for every edge in insertion order of the source vertex.
func (g *DAG[K]) Edges(fn func(from, to K)) {
	for _, v := range g.vertices {
		for _, n := range g.out[v] {
			fn(v, n)
		}
	}
}
