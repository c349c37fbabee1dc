package graph

import (
	"reflect"
	"testing"

	"github.com/vanshika/soltrace/internal/domain"
)

func record(keys ...string) domain.TransactionRecord {
	return domain.TransactionRecord{AccountKeys: keys}
}

func hasEdge(g Graph, from, to string) bool {
	set, ok := g[from]
	if !ok {
		return false
	}
	_, ok = set[to]
	return ok
}

func TestBuild_AnchorEdges(t *testing.T) {
	g := Build([]domain.TransactionRecord{record("A", "B", "C")})

	if g.Nodes() != 3 {
		t.Fatalf("expected 3 nodes, got %d", g.Nodes())
	}
	if !hasEdge(g, "A", "B") || !hasEdge(g, "B", "A") {
		t.Errorf("expected edge A-B in both directions")
	}
	if !hasEdge(g, "A", "C") || !hasEdge(g, "C", "A") {
		t.Errorf("expected edge A-C in both directions")
	}
	if hasEdge(g, "B", "C") || hasEdge(g, "C", "B") {
		t.Errorf("associates must not be linked to each other")
	}
}

func TestBuild_Symmetry(t *testing.T) {
	g := Build([]domain.TransactionRecord{
		record("A", "B", "C"),
		record("B", "D"),
		record("D", "E", "A"),
	})

	for from, neighbors := range g {
		for to := range neighbors {
			if !hasEdge(g, to, from) {
				t.Errorf("edge %s-%s has no reverse direction", from, to)
			}
		}
	}
}

func TestBuild_DegenerateRecords(t *testing.T) {
	g := Build([]domain.TransactionRecord{
		record("A"),
		record(),
		{Signature: "sig-without-keys"},
	})

	if g.Nodes() != 0 {
		t.Fatalf("expected empty graph, got %d nodes", g.Nodes())
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	if g := Build(nil); g.Nodes() != 0 {
		t.Fatalf("expected empty graph from nil input, got %d nodes", g.Nodes())
	}
}

func TestBuild_OrderIndependent(t *testing.T) {
	records := []domain.TransactionRecord{
		record("A", "B"),
		record("B", "C", "D"),
		record("C", "A"),
	}
	reversed := []domain.TransactionRecord{records[2], records[1], records[0]}

	first := Build(records)
	second := Build(reversed)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("graphs differ by record order:\n%v\n%v", first, second)
	}
}

func TestBuild_DuplicateEdgesCollapse(t *testing.T) {
	g := Build([]domain.TransactionRecord{
		record("A", "B"),
		record("A", "B"),
		record("B", "A"),
	})

	if g.Nodes() != 2 {
		t.Fatalf("expected 2 nodes, got %d", g.Nodes())
	}
	if len(g["A"]) != 1 || len(g["B"]) != 1 {
		t.Fatalf("expected single neighbor per node, got %d and %d", len(g["A"]), len(g["B"]))
	}
}

func TestBuild_SelfLoopKept(t *testing.T) {
	g := Build([]domain.TransactionRecord{record("A", "A")})

	if !hasEdge(g, "A", "A") {
		t.Fatalf("expected self loop when the anchor repeats as associate")
	}
}
