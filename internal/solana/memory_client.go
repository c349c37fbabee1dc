package solana

import (
	"context"
	"fmt"
	"sync"

	"github.com/vanshika/soltrace/internal/domain"
)

// MemoryClient is an in-memory implementation of the Client interface used
// to test retrieval orchestration without a running node. Signature pages
// are queued per address and replayed in order; transactions are served from
// a map, with optional per-signature failures.
type MemoryClient struct {
	mu               sync.Mutex
	pages            map[string][][]SignatureInfo
	transactions     map[string]domain.TransactionRecord
	transactionErrs  map[string]error
	err              error
	health           error
	signatureCalls   []SignatureCall
	transactionCalls []string
}

// SignatureCall captures the arguments of one GetSignaturesForAddress call.
type SignatureCall struct {
	Address string
	Limit   int
	Before  string
}

// NewMemoryClient instantiates the in-memory client.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		pages:           make(map[string][][]SignatureInfo),
		transactions:    make(map[string]domain.TransactionRecord),
		transactionErrs: make(map[string]error),
	}
}

// WithError configures the client to fail every call with the provided error.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithHealthError forces Health to return the supplied error.
func (m *MemoryClient) WithHealthError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.health = err
	return m
}

// PushSignaturePage queues a history page for the address. Pages are served
// in push order; once exhausted, further calls return an empty page.
func (m *MemoryClient) PushSignaturePage(address string, page []SignatureInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[address] = append(m.pages[address], page)
}

// PutTransaction registers a transaction record served by GetTransaction.
func (m *MemoryClient) PutTransaction(rec domain.TransactionRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[rec.Signature] = rec
}

// FailTransaction makes GetTransaction fail for one signature.
func (m *MemoryClient) FailTransaction(signature string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactionErrs[signature] = err
}

func (m *MemoryClient) GetSignaturesForAddress(_ context.Context, address string, limit int, before string) ([]SignatureInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.signatureCalls = append(m.signatureCalls, SignatureCall{
		Address: address,
		Limit:   limit,
		Before:  before,
	})

	if m.err != nil {
		return nil, m.err
	}

	queue := m.pages[address]
	if len(queue) == 0 {
		return nil, nil
	}

	page := queue[0]
	m.pages[address] = queue[1:]
	return append([]SignatureInfo(nil), page...), nil
}

func (m *MemoryClient) GetTransaction(_ context.Context, signature string) (*domain.TransactionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.transactionCalls = append(m.transactionCalls, signature)

	if m.err != nil {
		return nil, m.err
	}
	if err := m.transactionErrs[signature]; err != nil {
		return nil, err
	}

	rec, ok := m.transactions[signature]
	if !ok {
		return nil, fmt.Errorf("%s: %w", signature, ErrTransactionNotFound)
	}

	rec.AccountKeys = append([]string(nil), rec.AccountKeys...)
	return &rec, nil
}

func (m *MemoryClient) Health(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.health
}

// SignatureCalls returns a snapshot of recorded history calls.
func (m *MemoryClient) SignatureCalls() []SignatureCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SignatureCall(nil), m.signatureCalls...)
}

// TransactionCalls returns a snapshot of requested signatures.
func (m *MemoryClient) TransactionCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.transactionCalls...)
}
