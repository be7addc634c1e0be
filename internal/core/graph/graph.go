// internal/core/graph/graph.go
package graph

import (
	"reconweave/internal/core/value"
)

// Graph es el almacén deduplicado de valores descubiertos y sus aristas
// hijo → padres. Un valor conserva todos sus caminos de descubrimiento,
// no solo el primero.
//
// Graph no es seguro para uso concurrente: durante una corrida lo muta
// únicamente el coordinador del engine; las lecturas tras Run son seguras.
type Graph struct {
	// nodes indexa por Key (O(1) lookup)
	nodes map[string]*node

	// order preserva el orden de inserción para salidas estables
	order []string

	edges int
}

type node struct {
	value      value.Value
	parents    []value.Value
	parentKeys map[string]struct{}
	seed       bool
}

// Edge es un par (hijo, padre).
type Edge struct {
	Child  value.Value
	Parent value.Value
}

// Stats resume el contenido del grafo.
type Stats struct {
	Nodes  int
	Edges  int
	ByKind map[value.Kind]int
	Roots  int // seeds, más nodos sin padres
}

// New crea un grafo vacío.
func New() *Graph {
	return &Graph{nodes: make(map[string]*node)}
}

// AddNode inserts v and reports whether it was not present before.
func (g *Graph) AddNode(v value.Value) bool {
	k := v.Key()
	if _, ok := g.nodes[k]; ok {
		return false
	}
	g.nodes[k] = &node{value: v}
	g.order = append(g.order, k)
	return true
}

// AddSeed inserts v marked as a seed and reports whether it was not present
// before. A seed stays a root even after some worker records a parent for it.
func (g *Graph) AddSeed(v value.Value) bool {
	added := g.AddNode(v)
	g.nodes[v.Key()].seed = true
	return added
}

// IsSeed reports whether v was added with AddSeed.
func (g *Graph) IsSeed(v value.Value) bool {
	n, ok := g.nodes[v.Key()]
	return ok && n.seed
}

// isRoot: un seed, o un nodo al que nadie apunta.
func (n *node) isRoot() bool { return n.seed || len(n.parents) == 0 }

// AddEdge records parent as one of v's parents and reports whether the
// exact pair is new. v is inserted if missing.
func (g *Graph) AddEdge(v, parent value.Value) bool {
	g.AddNode(v)
	n := g.nodes[v.Key()]
	pk := parent.Key()
	if _, ok := n.parentKeys[pk]; ok {
		return false
	}
	if n.parentKeys == nil {
		n.parentKeys = make(map[string]struct{}, 1)
	}
	n.parentKeys[pk] = struct{}{}
	n.parents = append(n.parents, parent)
	g.edges++
	return true
}

// Includes reports whether a value strictly equal to v is present.
func (g *Graph) Includes(v value.Value) bool {
	_, ok := g.nodes[v.Key()]
	return ok
}

// Get returns the stored value strictly equal to v. The stored value keeps
// the descriptive fields of its first sighting.
func (g *Graph) Get(v value.Value) (value.Value, bool) {
	n, ok := g.nodes[v.Key()]
	if !ok {
		return nil, false
	}
	return n.value, true
}

// ParentsOf returns v's parents in the order they were recorded. The second
// result is false when v is not in the graph; a present seed has no parents.
func (g *Graph) ParentsOf(v value.Value) ([]value.Value, bool) {
	n, ok := g.nodes[v.Key()]
	if !ok {
		return nil, false
	}
	out := make([]value.Value, len(n.parents))
	copy(out, n.parents)
	return out, true
}

// Nodes returns every value in insertion order.
func (g *Graph) Nodes() []value.Value {
	out := make([]value.Value, 0, len(g.order))
	for _, k := range g.order {
		out = append(out, g.nodes[k].value)
	}
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// EdgeCount returns the number of (child, parent) pairs.
func (g *Graph) EdgeCount() int { return g.edges }

// Edges returns every (child, parent) pair, children in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.edges)
	for _, k := range g.order {
		n := g.nodes[k]
		for _, p := range n.parents {
			out = append(out, Edge{Child: n.value, Parent: p})
		}
	}
	return out
}

// Stats calcula las estadísticas del grafo.
func (g *Graph) Stats() Stats {
	s := Stats{
		Nodes:  len(g.order),
		Edges:  g.edges,
		ByKind: make(map[value.Kind]int),
	}
	for _, k := range g.order {
		n := g.nodes[k]
		s.ByKind[n.value.Kind()]++
		if n.isRoot() {
			s.Roots++
		}
	}
	return s
}

// PathToSeed returns the shortest chain of values from v up to a root,
// v first. The search stops at the first seed or parentless node reached. Usa BFS sobre los enlaces a padres; nil si v no está en el grafo.
func (g *Graph) PathToSeed(v value.Value) []value.Value {
	start := v.Key()
	if _, ok := g.nodes[start]; !ok {
		return nil
	}

	prev := map[string]string{start: ""}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		n := g.nodes[current]
		if n.isRoot() {
			return g.walkBack(prev, current)
		}
		for _, p := range n.parents {
			pk := p.Key()
			if _, seen := prev[pk]; seen {
				continue
			}
			if _, ok := g.nodes[pk]; !ok {
				continue
			}
			prev[pk] = current
			queue = append(queue, pk)
		}
	}

	// Todos los caminos forman ciclos sin raíz
	return []value.Value{g.nodes[start].value}
}

// walkBack rebuilds the path from the root found by PathToSeed back to the
// starting value, then reverses it so the start comes first.
func (g *Graph) walkBack(prev map[string]string, root string) []value.Value {
	var path []value.Value
	for k := root; k != ""; k = prev[k] {
		path = append(path, g.nodes[k].value)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
