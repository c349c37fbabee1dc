package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vanshika/soltrace/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		addresses       = flag.Int("addresses", cfg.NumAddresses, "number of addresses to generate")
		transactions    = flag.Int("transactions", cfg.NumTransactions, "number of transactions to generate")
		maxParticipants = flag.Int("max-participants", cfg.MaxParticipants, "maximum participants per transaction")
		clusters        = flag.Int("clusters", cfg.Clusters, "number of address clusters")
		bridgeChance    = flag.Float64("bridge-chance", cfg.BridgeChance, "probability of a cross-cluster participant per transaction")
		seed            = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir       = flag.String("output-dir", "data", "directory to write addresses.json and transactions.json")
		writeStdout     = flag.Bool("stdout", false, "write combined dataset to stdout instead of files")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumAddresses:    *addresses,
		NumTransactions: *transactions,
		MaxParticipants: *maxParticipants,
		Clusters:        *clusters,
		BridgeChance:    clampProbability(*bridgeChance),
		Seed:            *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gen := generator.New(genCfg)
	dataset, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(dataset, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d addresses and %d transactions into %s\n", len(dataset.Addresses), len(dataset.Transactions), *outputDir)
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
