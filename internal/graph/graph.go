package graph

import (
	"github.com/vanshika/soltrace/internal/domain"
)

// Graph is an undirected adjacency structure over addresses. Two addresses
// are neighbors when they co-occur in at least one transaction's participant
// list with one of them in the anchor position. The structure is symmetric:
// b is a neighbor of a exactly when a is a neighbor of b.
type Graph map[string]map[string]struct{}

// Build derives the co-occurrence graph from transaction records. The first
// entry of each participant list is the anchor; both directions of an edge
// are inserted between the anchor and every other entry. Lists with fewer
// than two entries and records without a list contribute nothing. Insertion
// is idempotent, so record order never affects the result. Build never
// fails; without usable input it returns an empty graph.
func Build(records []domain.TransactionRecord) Graph {
	g := make(Graph)
	for _, rec := range records {
		if !rec.HasParticipants() {
			continue
		}
		anchor := rec.AccountKeys[0]
		for _, associate := range rec.AccountKeys[1:] {
			g.addEdge(anchor, associate)
			g.addEdge(associate, anchor)
		}
	}
	return g
}

func (g Graph) addEdge(from, to string) {
	set, ok := g[from]
	if !ok {
		set = make(map[string]struct{})
		g[from] = set
	}
	set[to] = struct{}{}
}

// Nodes reports the number of distinct addresses in the graph.
func (g Graph) Nodes() int {
	return len(g)
}
