package solana

import (
	"context"
	"errors"
	"fmt"

	"github.com/vanshika/soltrace/internal/domain"
)

// Client defines the minimal contract the tracer requires from a Solana
// JSON-RPC node.
type Client interface {
	GetSignaturesForAddress(ctx context.Context, address string, limit int, before string) ([]SignatureInfo, error)
	GetTransaction(ctx context.Context, signature string) (*domain.TransactionRecord, error)
	Health(ctx context.Context) error
}

// SignatureInfo is one entry of an address's signature history, newest first.
type SignatureInfo struct {
	Signature string `json:"signature"`
	Slot      uint64 `json:"slot"`
	BlockTime *int64 `json:"blockTime"`
	Err       any    `json:"err"`
}

// ErrTransactionNotFound indicates the node holds no record for a signature.
var ErrTransactionNotFound = errors.New("transaction not found")

// HistoryOptions bounds a full signature-history retrieval.
type HistoryOptions struct {
	PageSize int
	MaxPages int
}

// DefaultHistoryOptions mirrors the node-side page maximum and caps the walk
// at 10,000 signatures per address.
func DefaultHistoryOptions() HistoryOptions {
	return HistoryOptions{PageSize: 1000, MaxPages: 10}
}

// FetchHistory pages backward through an address's signature history. Each
// page is requested before the previous page's last signature; the walk
// stops on an empty page or once MaxPages pages have been fetched. Any page
// failure aborts the retrieval for the address.
func FetchHistory(ctx context.Context, client Client, address string, opts HistoryOptions) ([]string, error) {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultHistoryOptions().PageSize
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultHistoryOptions().MaxPages
	}

	var signatures []string
	before := ""
	for page := 0; page < opts.MaxPages; page++ {
		infos, err := client.GetSignaturesForAddress(ctx, address, opts.PageSize, before)
		if err != nil {
			return nil, fmt.Errorf("fetch signatures for %s: %w", address, err)
		}
		if len(infos) == 0 {
			break
		}
		for _, info := range infos {
			if info.Signature == "" {
				continue
			}
			signatures = append(signatures, info.Signature)
		}
		before = infos[len(infos)-1].Signature
	}
	return signatures, nil
}
