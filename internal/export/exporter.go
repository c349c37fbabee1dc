package export

import (
	"context"
	"fmt"
	"slices"

	"github.com/vanshika/soltrace/internal/graph"
)

// Exporter persists address connection graphs to a Bolt-compatible database.
type Exporter struct {
	client Client
}

// NewExporter instantiates an Exporter backed by the supplied graph client.
func NewExporter(client Client) *Exporter {
	return &Exporter{client: client}
}

// Stats summarizes the node and relationship counts touched by an export.
type Stats struct {
	Addresses int
	Links     int
}

// ExportGraph writes one Address node per graph entry and one TRANSACTED_WITH
// relationship per undirected edge. Addresses are written in lexical order and
// each edge once with its endpoints ordered lexically, so repeated exports of
// the same graph are idempotent.
func (e *Exporter) ExportGraph(ctx context.Context, g graph.Graph) (Stats, error) {
	var stats Stats

	addresses := make([]string, 0, len(g))
	for address := range g {
		addresses = append(addresses, address)
	}
	slices.Sort(addresses)

	for _, address := range addresses {
		params := map[string]any{"address": address}
		if _, err := e.client.ExecuteWrite(ctx, mergeAddressCypher, params); err != nil {
			return stats, fmt.Errorf("export address %s: %w", address, err)
		}
		stats.Addresses++
	}

	for _, from := range addresses {
		neighbors := make([]string, 0, len(g[from]))
		for to := range g[from] {
			if from < to {
				neighbors = append(neighbors, to)
			}
		}
		slices.Sort(neighbors)

		for _, to := range neighbors {
			params := map[string]any{
				"from": from,
				"to":   to,
			}
			if _, err := e.client.ExecuteWrite(ctx, mergeLinkCypher, params); err != nil {
				return stats, fmt.Errorf("export link %s-%s: %w", from, to, err)
			}
			stats.Links++
		}
	}

	return stats, nil
}

// GraphStats reports how many address nodes and links the database holds.
func (e *Exporter) GraphStats(ctx context.Context) (Stats, error) {
	res, err := e.client.ExecuteRead(ctx, countGraphCypher, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("count graph: %w", err)
	}
	if len(res.Records) == 0 {
		return Stats{}, nil
	}

	record := res.Records[0]
	return Stats{
		Addresses: int(toInt64(record["addresses"])),
		Links:     int(toInt64(record["links"])),
	}, nil
}

func toInt64(val any) int64 {
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

const mergeAddressCypher = `
MERGE (a:Address {address: $address})
RETURN a.address AS address
`

const mergeLinkCypher = `
MATCH (a:Address {address: $from})
MATCH (b:Address {address: $to})
MERGE (a)-[l:TRANSACTED_WITH]->(b)
SET l.updatedAt = datetime()
RETURN a.address AS from
`

const countGraphCypher = `
MATCH (a:Address)
OPTIONAL MATCH (:Address)-[l:TRANSACTED_WITH]->(:Address)
RETURN count(DISTINCT a) AS addresses, count(DISTINCT l) AS links
`
