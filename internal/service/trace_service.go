package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanshika/soltrace/internal/domain"
	"github.com/vanshika/soltrace/internal/graph"
	"github.com/vanshika/soltrace/internal/metrics"
	"github.com/vanshika/soltrace/internal/solana"
)

const (
	defaultFetchWorkers = 8
	defaultMaxDepth     = 50
)

// Options bounds the retrieval and search stages of a trace.
type Options struct {
	HistoryPageSize int
	HistoryMaxPages int
	FetchWorkers    int
	MaxDepth        int
}

func (o Options) withDefaults() Options {
	history := solana.DefaultHistoryOptions()
	if o.HistoryPageSize <= 0 {
		o.HistoryPageSize = history.PageSize
	}
	if o.HistoryMaxPages <= 0 {
		o.HistoryMaxPages = history.MaxPages
	}
	if o.FetchWorkers <= 0 {
		o.FetchWorkers = defaultFetchWorkers
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = defaultMaxDepth
	}
	return o
}

// TraceRequest identifies the two addresses to connect. MaxDepth overrides
// the service default when positive; Progress may be nil.
type TraceRequest struct {
	Address1 string
	Address2 string
	MaxDepth int
	Progress Progress
}

// TraceService orchestrates the full pipeline: signature history retrieval,
// transaction detail fetching, graph construction, and path search.
type TraceService struct {
	client  solana.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
	opts    Options
	nowFn   func() time.Time
}

// NewTraceService constructs a TraceService over the provided client.
// Metrics may be nil.
func NewTraceService(client solana.Client, logger *slog.Logger, m *metrics.Metrics, opts Options) *TraceService {
	return &TraceService{
		client:  client,
		logger:  logger,
		metrics: m,
		opts:    opts.withDefaults(),
		nowFn:   time.Now,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (s *TraceService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// Trace runs the pipeline for a pair of addresses against the RPC node.
func (s *TraceService) Trace(ctx context.Context, req TraceRequest) (domain.TraceReport, error) {
	started := s.nowFn()
	report, err := s.trace(ctx, req)
	report.Elapsed = s.nowFn().Sub(started)
	s.metrics.ObserveTrace(report.Elapsed, err)
	return report, err
}

// TraceRecords runs graph construction and path search over an already
// retrieved record set, bypassing the node entirely.
func (s *TraceService) TraceRecords(ctx context.Context, req TraceRequest, records []domain.TransactionRecord) (domain.TraceReport, error) {
	started := s.nowFn()
	report, err := s.traceRecords(ctx, req, records)
	report.Elapsed = s.nowFn().Sub(started)
	s.metrics.ObserveTrace(report.Elapsed, err)
	return report, err
}

func (s *TraceService) trace(ctx context.Context, req TraceRequest) (domain.TraceReport, error) {
	progress := req.Progress
	if progress == nil {
		progress = noopProgress{}
	}

	if err := validateAddresses(req); err != nil {
		return domain.TraceReport{}, err
	}
	maxDepth := req.MaxDepth
	if maxDepth <= 0 {
		maxDepth = s.opts.MaxDepth
	}

	historyOpts := solana.HistoryOptions{
		PageSize: s.opts.HistoryPageSize,
		MaxPages: s.opts.HistoryMaxPages,
	}

	var sigs1, sigs2 []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sigs1, err = solana.FetchHistory(gctx, s.client, req.Address1, historyOpts)
		return err
	})
	g.Go(func() error {
		var err error
		sigs2, err = solana.FetchHistory(gctx, s.client, req.Address2, historyOpts)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.TraceReport{}, err
	}
	progress.HistoryFetched(req.Address1, len(sigs1))
	progress.HistoryFetched(req.Address2, len(sigs2))

	union := make([]string, 0, len(sigs1)+len(sigs2))
	union = append(union, sigs1...)
	union = append(union, sigs2...)
	slices.Sort(union)
	union = slices.Compact(union)

	fetcher := &detailFetcher{
		client:   s.client,
		logger:   s.logger,
		workers:  s.opts.FetchWorkers,
		progress: progress,
	}
	fetched, err := fetcher.fetchAll(ctx, union)
	if err != nil {
		return domain.TraceReport{}, err
	}

	txGraph, paths := s.connect(progress, fetched.records, req.Address1, req.Address2, maxDepth)

	return domain.TraceReport{
		Address1:         req.Address1,
		Address2:         req.Address2,
		SignatureCount1:  len(sigs1),
		SignatureCount2:  len(sigs2),
		UniqueSignatures: len(union),
		RecordsFetched:   len(fetched.records),
		RecordsSkipped:   fetched.skipped,
		GraphNodes:       txGraph.Nodes(),
		MaxDepth:         maxDepth,
		Paths:            paths,
		Graph:            txGraph,
	}, nil
}

func (s *TraceService) traceRecords(ctx context.Context, req TraceRequest, records []domain.TransactionRecord) (domain.TraceReport, error) {
	progress := req.Progress
	if progress == nil {
		progress = noopProgress{}
	}

	if err := validateAddresses(req); err != nil {
		return domain.TraceReport{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.TraceReport{}, err
	}
	maxDepth := req.MaxDepth
	if maxDepth <= 0 {
		maxDepth = s.opts.MaxDepth
	}

	txGraph, paths := s.connect(progress, records, req.Address1, req.Address2, maxDepth)

	return domain.TraceReport{
		Address1:       req.Address1,
		Address2:       req.Address2,
		RecordsFetched: len(records),
		GraphNodes:     txGraph.Nodes(),
		MaxDepth:       maxDepth,
		Paths:          paths,
		Graph:          txGraph,
	}, nil
}

func (s *TraceService) connect(progress Progress, records []domain.TransactionRecord, address1, address2 string, maxDepth int) (graph.Graph, []domain.Path) {
	progress.GraphStarted()
	txGraph := graph.Build(records)
	progress.GraphBuilt(len(txGraph))

	progress.SearchStarted()
	paths := graph.FindPaths(txGraph, address1, address2, maxDepth)
	return txGraph, paths
}

func validateAddresses(req TraceRequest) error {
	if err := solana.ValidatePubkey(req.Address1); err != nil {
		return fmt.Errorf("address 1: %w", err)
	}
	if err := solana.ValidatePubkey(req.Address2); err != nil {
		return fmt.Errorf("address 2: %w", err)
	}
	return nil
}
