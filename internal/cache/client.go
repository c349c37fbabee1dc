package cache

import (
	"context"
	"log/slog"

	"github.com/vanshika/soltrace/internal/domain"
	"github.com/vanshika/soltrace/internal/metrics"
	"github.com/vanshika/soltrace/internal/solana"
)

// CachingClient layers the transaction store over a Solana client.
// Signature history and health checks pass straight through; transaction
// lookups are answered from the cache when possible and written through
// on a miss. Cache failures degrade to node fetches rather than failing
// the lookup.
type CachingClient struct {
	client  solana.Client
	store   *Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// WrapClient builds the caching decorator around client.
func WrapClient(client solana.Client, store *Store, logger *slog.Logger, m *metrics.Metrics) *CachingClient {
	return &CachingClient{
		client:  client,
		store:   store,
		logger:  logger,
		metrics: m,
	}
}

func (c *CachingClient) GetSignaturesForAddress(ctx context.Context, address string, limit int, before string) ([]solana.SignatureInfo, error) {
	return c.client.GetSignaturesForAddress(ctx, address, limit, before)
}

func (c *CachingClient) GetTransaction(ctx context.Context, signature string) (*domain.TransactionRecord, error) {
	rec, found, err := c.store.Get(signature)
	if err != nil {
		c.logger.Warn("cache read failed", "signature", signature, "error", err)
	}
	if found {
		c.metrics.CacheHit()
		return &rec, nil
	}
	c.metrics.CacheMiss()

	fetched, err := c.client.GetTransaction(ctx, signature)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put(*fetched); err != nil {
		c.logger.Warn("cache write failed", "signature", signature, "error", err)
	}
	return fetched, nil
}

func (c *CachingClient) Health(ctx context.Context) error {
	return c.client.Health(ctx)
}
