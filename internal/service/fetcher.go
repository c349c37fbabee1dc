package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vanshika/soltrace/internal/domain"
	"github.com/vanshika/soltrace/internal/solana"
)

// detailFetcher retrieves transaction details for a signature set using a
// bounded worker pool. A failed lookup drops that signature from the result;
// only context cancellation aborts the batch.
type detailFetcher struct {
	client   solana.Client
	logger   *slog.Logger
	workers  int
	progress Progress
}

type fetchResult struct {
	records []domain.TransactionRecord
	skipped int
}

func (f *detailFetcher) fetchAll(ctx context.Context, signatures []string) (fetchResult, error) {
	total := len(signatures)
	f.progress.DetailsStarted(total)
	if total == 0 {
		return fetchResult{}, nil
	}

	f.progress.DetailsProcessed(0)

	indexCh := make(chan int)
	var wg sync.WaitGroup

	var (
		mu      sync.Mutex
		records []domain.TransactionRecord
		skipped int
		done    int
	)

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			rec, err := f.client.GetTransaction(ctx, signatures[idx])

			mu.Lock()
			if err != nil {
				if ctx.Err() != nil {
					mu.Unlock()
					return
				}
				skipped++
				f.logger.Warn("skipping transaction", "signature", signatures[idx], "error", err)
			} else {
				records = append(records, *rec)
			}
			done++
			if done%100 == 0 {
				f.progress.DetailsProcessed(done)
			}
			mu.Unlock()
		}
	}

	workers := f.workers
	if workers <= 0 {
		workers = defaultFetchWorkers
	}
	if workers > total {
		workers = total
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return fetchResult{}, err
	}
	return fetchResult{records: records, skipped: skipped}, nil
}
