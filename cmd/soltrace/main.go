package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vanshika/soltrace/internal/cache"
	"github.com/vanshika/soltrace/internal/config"
	"github.com/vanshika/soltrace/internal/domain"
	"github.com/vanshika/soltrace/internal/export"
	"github.com/vanshika/soltrace/internal/logging"
	"github.com/vanshika/soltrace/internal/service"
	"github.com/vanshika/soltrace/internal/solana"
)

var errInvalidAddress = errors.New("invalid address provided")

type runOptions struct {
	Address1         string
	Address2         string
	MaxDepth         int
	TransactionsPath string
	UseCache         bool
	CachePath        string
	Export           bool
	JSON             bool
}

func main() {
	var (
		maxDepth     = flag.Int("max-depth", 0, "maximum path length to search, 0 uses TRACE_MAX_DEPTH")
		transactions = flag.String("transactions", "", "path to a transactions.json file to trace offline instead of querying the RPC node")
		useCache     = flag.Bool("cache", false, "cache retrieved transaction details on disk")
		cachePath    = flag.String("cache-path", "", "cache directory, overrides CACHE_PATH")
		exportGraph  = flag.Bool("export", false, "export the connection graph to the configured graph database")
		jsonOut      = flag.Bool("json", false, "print the trace report as JSON instead of text")
	)
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: soltrace [flags] <address1> <address2>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewWithWriter(cfg.Logging, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := runOptions{
		Address1:         flag.Arg(0),
		Address2:         flag.Arg(1),
		MaxDepth:         *maxDepth,
		TransactionsPath: *transactions,
		UseCache:         *useCache,
		CachePath:        *cachePath,
		Export:           *exportGraph,
		JSON:             *jsonOut,
	}

	if err := run(ctx, cfg, logger, opts); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, opts runOptions) error {
	out := io.Writer(os.Stdout)

	if !opts.JSON {
		fmt.Fprintln(out, "Analyzing connection between addresses:")
		fmt.Fprintf(out, "Address 1: %s\n", opts.Address1)
		fmt.Fprintf(out, "Address 2: %s\n", opts.Address2)
	}

	if !solana.IsValidPubkey(opts.Address1) || !solana.IsValidPubkey(opts.Address2) {
		fmt.Fprintln(out, "Invalid address provided")
		return errInvalidAddress
	}

	svcOpts := service.Options{
		HistoryPageSize: cfg.RPC.PageSize,
		HistoryMaxPages: cfg.RPC.MaxPages,
		FetchWorkers:    cfg.Trace.FetchWorkers,
		MaxDepth:        cfg.Trace.MaxDepth,
	}

	var progress service.Progress
	if !opts.JSON {
		progress = consoleProgress{out: out}
	}

	req := service.TraceRequest{
		Address1: opts.Address1,
		Address2: opts.Address2,
		MaxDepth: opts.MaxDepth,
		Progress: progress,
	}

	var report domain.TraceReport
	if opts.TransactionsPath != "" {
		records, err := loadRecords(opts.TransactionsPath)
		if err != nil {
			logger.Error("failed to load transactions", "error", err, "path", opts.TransactionsPath)
			return err
		}

		svc := service.NewTraceService(nil, logger, nil, svcOpts)
		report, err = svc.TraceRecords(ctx, req, records)
		if err != nil {
			logger.Error("trace failed", "error", err)
			return err
		}
	} else {
		if cfg.RPC.EndpointDefaulted {
			logger.Warn("SOLANA_RPC_ENDPOINT not set, using default endpoint", "endpoint", cfg.RPC.Endpoint)
		}

		var client solana.Client = solana.NewHTTPClient(solana.Options{
			Endpoint:  cfg.RPC.Endpoint,
			Timeout:   cfg.RPC.Timeout,
			RateLimit: cfg.RPC.RateLimit,
		})

		if opts.UseCache || cfg.Cache.Enabled {
			path := cfg.Cache.Path
			if opts.CachePath != "" {
				path = opts.CachePath
			}

			store, err := cache.Open(cache.Options{
				Path:     path,
				InMemory: cfg.Cache.InMemory,
				Logger:   logger,
			})
			if err != nil {
				logger.Error("failed to open cache", "error", err, "path", path)
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					logger.Warn("closing cache failed", "error", err)
				}
			}()

			client = cache.WrapClient(client, store, logger, nil)
		}

		svc := service.NewTraceService(client, logger, nil, svcOpts)
		var err error
		report, err = svc.Trace(ctx, req)
		if err != nil {
			logger.Error("trace failed", "error", err)
			return err
		}
	}

	if opts.JSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			logger.Error("failed to encode report", "error", err)
			return err
		}
	} else {
		renderReport(out, report)
	}

	if opts.Export {
		if err := exportReport(ctx, cfg, logger, report); err != nil {
			return err
		}
	}

	return nil
}

// consoleProgress renders trace milestones as plain console lines.
type consoleProgress struct {
	out io.Writer
}

func (p consoleProgress) HistoryFetched(address string, signatures int) {
	fmt.Fprintf(p.out, "Fetched %d transactions for address %s\n", signatures, address)
}

func (p consoleProgress) DetailsStarted(total int) {
	fmt.Fprintf(p.out, "Fetching details for %d unique transactions\n", total)
}

func (p consoleProgress) DetailsProcessed(done int) {
	fmt.Fprintf(p.out, "Processed %d transactions\n", done)
}

func (p consoleProgress) GraphStarted() {
	fmt.Fprintln(p.out, "Building transaction graph")
}

func (p consoleProgress) GraphBuilt(nodes int) {
	fmt.Fprintf(p.out, "Number of nodes in graph: %d\n", nodes)
}

func (p consoleProgress) SearchStarted() {
	fmt.Fprintln(p.out, "Finding paths between addresses")
}

func renderReport(out io.Writer, report domain.TraceReport) {
	fmt.Fprintf(out, "Found %d path(s) between the addresses:\n", len(report.Paths))
	for i, path := range report.Paths {
		fmt.Fprintf(out, "Path %d:\n", i+1)
		fmt.Fprintln(out, path.String())
	}
}

func loadRecords(path string) ([]domain.TransactionRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var records []domain.TransactionRecord
	if err := json.NewDecoder(file).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}

func exportReport(ctx context.Context, cfg config.Config, logger *slog.Logger, report domain.TraceReport) error {
	if cfg.Graph.URI == "" {
		logger.Error("GRAPH_URI is required for export")
		return export.ErrMissingURI
	}

	client, err := export.NewNeo4jClient(ctx, export.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	})
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		return err
	}
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}()

	stats, err := export.NewExporter(client).ExportGraph(ctx, report.Graph)
	if err != nil {
		logger.Error("graph export failed", "error", err)
		return err
	}

	logger.Info("graph exported", "addresses", stats.Addresses, "links", stats.Links)
	return nil
}
