package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/vanshika/soltrace/internal/domain"
	"github.com/vanshika/soltrace/internal/solana"
)

func TestCachingClient_WriteThrough(t *testing.T) {
	store := newTestStore(t)
	node := solana.NewMemoryClient()
	node.PutTransaction(domain.TransactionRecord{Signature: "sig-1", Slot: 9, AccountKeys: []string{"a", "b"}})

	var client solana.Client = WrapClient(node, store, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	first, err := client.GetTransaction(context.Background(), "sig-1")
	if err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	second, err := client.GetTransaction(context.Background(), "sig-1")
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}

	if first.Slot != 9 || second.Slot != 9 {
		t.Errorf("unexpected records: %+v, %+v", first, second)
	}
	if len(second.AccountKeys) != 2 {
		t.Errorf("expected cached record to keep account keys, got %v", second.AccountKeys)
	}
	if calls := node.TransactionCalls(); len(calls) != 1 {
		t.Errorf("expected a single node fetch, got %d", len(calls))
	}
}

func TestCachingClient_FetchErrorNotCached(t *testing.T) {
	store := newTestStore(t)
	node := solana.NewMemoryClient()
	node.FailTransaction("sig-1", errors.New("node flaked"))

	client := WrapClient(node, store, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	for i := 0; i < 2; i++ {
		if _, err := client.GetTransaction(context.Background(), "sig-1"); err == nil {
			t.Fatal("expected lookup to fail")
		}
	}

	if calls := node.TransactionCalls(); len(calls) != 2 {
		t.Errorf("expected failures to reach the node every time, got %d calls", len(calls))
	}
	if count, _ := store.Len(); count != 0 {
		t.Errorf("expected nothing cached after failures, got %d entries", count)
	}
}

func TestCachingClient_HistoryPassesThrough(t *testing.T) {
	store := newTestStore(t)
	node := solana.NewMemoryClient()
	node.PushSignaturePage("addr-1", []solana.SignatureInfo{{Signature: "sig-1"}})

	client := WrapClient(node, store, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	page, err := client.GetSignaturesForAddress(context.Background(), "addr-1", 10, "")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(page) != 1 || page[0].Signature != "sig-1" {
		t.Errorf("unexpected page: %+v", page)
	}
	if err := client.Health(context.Background()); err != nil {
		t.Errorf("health: %v", err)
	}
}
