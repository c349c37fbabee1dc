package generator

import (
	"context"
	"math/rand"
	"time"

	"github.com/mr-tron/base58"

	"github.com/vanshika/soltrace/internal/domain"
)

// Dataset contains the generated address pool and transaction records.
type Dataset struct {
	Addresses    []string                   `json:"addresses"`
	Transactions []domain.TransactionRecord `json:"transactions"`
}

// Generator produces synthetic ledger data shaped like retrieved transaction
// records. Addresses are grouped into clusters that transact mostly among
// themselves, with occasional bridge participants from other clusters.
type Generator struct {
	cfg  Config
	rand *rand.Rand
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	if cfg.NumAddresses <= 0 {
		cfg.NumAddresses = DefaultConfig().NumAddresses
	}
	if cfg.NumTransactions <= 0 {
		cfg.NumTransactions = DefaultConfig().NumTransactions
	}
	if cfg.MaxParticipants < 2 {
		cfg.MaxParticipants = DefaultConfig().MaxParticipants
	}
	if cfg.Clusters <= 0 {
		cfg.Clusters = DefaultConfig().Clusters
	}
	if cfg.Clusters > cfg.NumAddresses {
		cfg.Clusters = cfg.NumAddresses
	}
	if cfg.BridgeChance < 0 {
		cfg.BridgeChance = 0
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Generate synthesises the address pool and transactions. It respects context
// cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	addresses := make([]string, g.cfg.NumAddresses)
	for i := range addresses {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		addresses[i] = g.randomAddress()
	}

	clusters := splitClusters(addresses, g.cfg.Clusters)
	now := time.Now().UTC().Unix()
	baseSlot := uint64(150_000_000)

	transactions := make([]domain.TransactionRecord, g.cfg.NumTransactions)
	for i := range transactions {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}

		cluster := clusters[g.rand.Intn(len(clusters))]
		participants := g.pickParticipants(cluster, clusters)

		slot := baseSlot + uint64(i*2) + uint64(g.rand.Intn(2))
		blockTime := now - int64(g.rand.Intn(60*60*24*30))

		transactions[i] = domain.TransactionRecord{
			Signature:   g.randomSignature(),
			Slot:        slot,
			BlockTime:   &blockTime,
			AccountKeys: participants,
		}
	}

	return Dataset{Addresses: addresses, Transactions: transactions}, nil
}

// pickParticipants draws an anchor plus distinct associates from the anchor's
// cluster, occasionally swapping the last associate for a bridge address from
// another cluster.
func (g *Generator) pickParticipants(cluster []string, clusters [][]string) []string {
	count := 2 + g.rand.Intn(g.cfg.MaxParticipants-1)
	if count > len(cluster) {
		count = len(cluster)
	}

	seen := make(map[string]struct{}, count)
	participants := make([]string, 0, count)
	for len(participants) < count {
		addr := cluster[g.rand.Intn(len(cluster))]
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		participants = append(participants, addr)
	}

	if len(clusters) > 1 && len(participants) > 1 && g.rand.Float64() < g.cfg.BridgeChance {
		other := clusters[g.rand.Intn(len(clusters))]
		bridge := other[g.rand.Intn(len(other))]
		if _, ok := seen[bridge]; !ok {
			participants[len(participants)-1] = bridge
		}
	}

	return participants
}

func (g *Generator) randomAddress() string {
	buf := make([]byte, 32)
	g.rand.Read(buf)
	return base58.Encode(buf)
}

func (g *Generator) randomSignature() string {
	buf := make([]byte, 64)
	g.rand.Read(buf)
	return base58.Encode(buf)
}

func splitClusters(addresses []string, n int) [][]string {
	clusters := make([][]string, 0, n)
	size := (len(addresses) + n - 1) / n
	for start := 0; start < len(addresses); start += size {
		end := start + size
		if end > len(addresses) {
			end = len(addresses)
		}
		clusters = append(clusters, addresses[start:end])
	}
	return clusters
}
