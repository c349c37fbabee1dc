package generator

// Config drives the synthetic ledger generator.
type Config struct {
	NumAddresses    int
	NumTransactions int
	MaxParticipants int
	Clusters        int
	BridgeChance    float64
	Seed            int64
}

// DefaultConfig returns baseline settings that produce a clustered ledger
// with occasional cross-cluster links, so generated datasets contain both
// short and multi-hop connection paths.
func DefaultConfig() Config {
	return Config{
		NumAddresses:    250,
		NumTransactions: 2000,
		MaxParticipants: 8,
		Clusters:        5,
		BridgeChance:    0.08,
		Seed:            42,
	}
}
