// internal/core/graph/graph_test.go
package graph

import (
	"testing"

	"reconweave/internal/core/value"
	"reconweave/internal/testutil"
)

var (
	domain  = value.Must(value.NewDomain("example.com"))
	www     = value.Must(value.NewHost("www.example.com"))
	dev     = value.Must(value.NewHost("dev.example.com"))
	address = value.Must(value.NewIP("93.184.215.14"))
)

func TestGraph_AddNodeIsIdempotent(t *testing.T) {
	g := New()

	testutil.AssertTrue(t, g.AddNode(domain), "first insert")
	testutil.AssertFalse(t, g.AddNode(domain), "second insert")
	testutil.AssertFalse(t, g.AddNode(value.Must(value.NewDomain("EXAMPLE.com."))), "equal value after normalization")
	testutil.AssertEqual(t, g.Len(), 1, "size unaffected by repeats")
	testutil.AssertTrue(t, g.Includes(domain), "includes")
	testutil.AssertFalse(t, g.Includes(www), "does not include unrelated")
}

func TestGraph_AddNodeKeepsFirstSighting(t *testing.T) {
	g := New()
	g.AddNode(address.WithHost("www.example.com"))
	g.AddNode(address.WithHost("dev.example.com"))

	stored, ok := g.Get(address)
	testutil.AssertTrue(t, ok, "present")
	testutil.AssertEqual(t, stored.(value.IP).Host(), "www.example.com", "first host hint kept")
}

func TestGraph_MultiParentAccumulation(t *testing.T) {
	g := New()
	g.AddNode(domain)

	testutil.AssertTrue(t, g.AddEdge(address, domain), "first parent")
	testutil.AssertTrue(t, g.AddEdge(address, www), "second parent")
	testutil.AssertFalse(t, g.AddEdge(address, domain), "repeated pair")

	parents, ok := g.ParentsOf(address)
	testutil.AssertTrue(t, ok, "address present")
	testutil.AssertLen(t, parents, 2, "two parents")
	testutil.AssertTrue(t, value.Equal(parents[0], domain), "insertion order kept")
	testutil.AssertTrue(t, value.Equal(parents[1], www), "insertion order kept")
	testutil.AssertEqual(t, g.EdgeCount(), 2, "edge count")
}

func TestGraph_ParentsOf(t *testing.T) {
	g := New()
	g.AddNode(domain)

	parents, ok := g.ParentsOf(domain)
	testutil.AssertTrue(t, ok, "seed present")
	testutil.AssertLen(t, parents, 0, "seed has no parents")

	_, ok = g.ParentsOf(www)
	testutil.AssertFalse(t, ok, "absent value")
}

func TestGraph_NodesAndEdgesOrder(t *testing.T) {
	g := New()
	g.AddNode(domain)
	g.AddEdge(www, domain)
	g.AddEdge(dev, domain)
	g.AddEdge(address, www)

	nodes := g.Nodes()
	want := []string{"example.com", "www.example.com", "dev.example.com", "93.184.215.14"}
	testutil.AssertLen(t, nodes, len(want), "nodes")
	for i, n := range nodes {
		testutil.AssertEqual(t, n.String(), want[i], "node order")
	}

	edges := g.Edges()
	testutil.AssertLen(t, edges, 3, "edges")
	testutil.AssertTrue(t, value.Equal(edges[2].Child, address), "last edge child")
	testutil.AssertTrue(t, value.Equal(edges[2].Parent, www), "last edge parent")
}

func TestGraph_Stats(t *testing.T) {
	g := New()
	g.AddNode(domain)
	g.AddEdge(www, domain)
	g.AddEdge(dev, domain)
	g.AddEdge(address, www)
	g.AddEdge(address, domain)

	s := g.Stats()
	testutil.AssertEqual(t, s.Nodes, 4, "nodes")
	testutil.AssertEqual(t, s.Edges, 4, "edges")
	testutil.AssertEqual(t, s.Roots, 1, "roots")
	testutil.AssertEqual(t, s.ByKind[value.KindHost], 2, "hosts")
	testutil.AssertEqual(t, s.ByKind[value.KindIP], 1, "ips")
}

func TestGraph_PathToSeed(t *testing.T) {
	g := New()
	g.AddNode(domain)
	g.AddEdge(www, domain)
	g.AddEdge(dev, www)
	g.AddEdge(address, dev)
	g.AddEdge(address, domain) // atajo

	path := g.PathToSeed(address)
	testutil.AssertLen(t, path, 2, "shortest path")
	testutil.AssertTrue(t, value.Equal(path[0], address), "starts at value")
	testutil.AssertTrue(t, value.Equal(path[1], domain), "ends at seed")

	path = g.PathToSeed(dev)
	testutil.AssertLen(t, path, 3, "dev path")
	testutil.AssertTrue(t, value.Equal(path[1], www), "through www")

	testutil.AssertLen(t, g.PathToSeed(domain), 1, "seed path is itself")
	testutil.AssertTrue(t, g.PathToSeed(value.Must(value.NewHost("nope.example.com"))) == nil, "absent value")
}

func TestGraph_PathToSeed_Cycle(t *testing.T) {
	g := New()
	g.AddEdge(www, dev)
	g.AddEdge(dev, www)

	path := g.PathToSeed(www)
	testutil.AssertLen(t, path, 1, "rootless cycle yields the value alone")
}

func TestGraph_SeedWithParent(t *testing.T) {
	g := New()
	testutil.AssertTrue(t, g.AddSeed(domain), "seed added")
	testutil.AssertFalse(t, g.AddSeed(domain), "seed already present")
	g.AddEdge(www, domain)
	g.AddEdge(domain, www) // apex de vuelta al seed
	g.AddEdge(address, www)

	testutil.AssertTrue(t, g.IsSeed(domain), "domain is seed")
	testutil.AssertFalse(t, g.IsSeed(www), "www is not")
	testutil.AssertFalse(t, g.IsSeed(dev), "absent value")
	testutil.AssertEqual(t, g.Stats().Roots, 1, "seed with parent is still a root")

	path := g.PathToSeed(address)
	testutil.AssertLen(t, path, 3, "address -> www -> domain")
	testutil.AssertTrue(t, value.Equal(path[2], domain), "ends at seed")
	testutil.AssertLen(t, g.PathToSeed(domain), 1, "seed path is itself")
}
