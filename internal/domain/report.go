package domain

import (
	"strings"
	"time"
)

// Path is an ordered walk through the co-occurrence graph, start address first.
type Path []string

// String renders the path in the arrow notation used by the CLI report.
func (p Path) String() string {
	return strings.Join(p, " -> ")
}

// TraceReport summarises a single trace run between two addresses.
type TraceReport struct {
	Address1         string        `json:"address1"`
	Address2         string        `json:"address2"`
	SignatureCount1  int           `json:"signatureCount1"`
	SignatureCount2  int           `json:"signatureCount2"`
	UniqueSignatures int           `json:"uniqueSignatures"`
	RecordsFetched   int           `json:"recordsFetched"`
	RecordsSkipped   int           `json:"recordsSkipped"`
	GraphNodes       int           `json:"graphNodes"`
	MaxDepth         int           `json:"maxDepth"`
	Paths            []Path        `json:"paths"`
	Elapsed          time.Duration `json:"elapsedNs"`

	// Graph is the adjacency structure the search ran over, keyed by
	// address. It is carried for export and omitted from serialized
	// reports.
	Graph map[string]map[string]struct{} `json:"-"`
}
