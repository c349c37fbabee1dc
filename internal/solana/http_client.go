package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/vanshika/soltrace/internal/domain"
)

// RPCObserver receives a record of every RPC round trip. The metrics package
// provides a Prometheus-backed implementation; a nil observer is ignored.
type RPCObserver interface {
	ObserveRPC(method string, duration time.Duration, err error)
}

// Options configures the HTTP RPC client.
type Options struct {
	Endpoint   string
	Timeout    time.Duration
	RateLimit  float64 // requests per second, 0 disables limiting
	HTTPClient *http.Client
	Observer   RPCObserver
}

// HTTPClient speaks JSON-RPC 2.0 to a Solana node over HTTP POST.
type HTTPClient struct {
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
	observer RPCObserver
}

// NewHTTPClient builds a client for the configured endpoint. The default
// transport keeps idle connections around so paginated walks reuse them.
func NewHTTPClient(opts Options) *HTTPClient {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &HTTPClient{
		endpoint: opts.Endpoint,
		http:     httpClient,
		limiter:  limiter,
		observer: opts.Observer,
	}
}

// GetSignaturesForAddress fetches one page of the address's signature
// history, newest first. An empty before requests the newest page.
func (c *HTTPClient) GetSignaturesForAddress(ctx context.Context, address string, limit int, before string) ([]SignatureInfo, error) {
	cfg := map[string]any{"limit": limit}
	if before != "" {
		cfg["before"] = before
	}

	raw, err := c.call(ctx, "getConfirmedSignaturesForAddress2", []any{address, cfg})
	if err != nil {
		return nil, err
	}
	if isNullResult(raw) {
		return nil, nil
	}

	var infos []SignatureInfo
	if err := json.Unmarshal(raw, &infos); err != nil {
		return nil, fmt.Errorf("decode signature page: %w", err)
	}
	return infos, nil
}

// GetTransaction fetches the full record for a signature. A null result maps
// to ErrTransactionNotFound; a record without the expected message structure
// decodes to a record with no participant list.
func (c *HTTPClient) GetTransaction(ctx context.Context, signature string) (*domain.TransactionRecord, error) {
	raw, err := c.call(ctx, "getConfirmedTransaction", []any{signature, "json"})
	if err != nil {
		return nil, err
	}
	if isNullResult(raw) {
		return nil, fmt.Errorf("%s: %w", signature, ErrTransactionNotFound)
	}

	var payload transactionResult
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode transaction %s: %w", signature, err)
	}
	return payload.toRecord(signature), nil
}

// Health asks the node for its health status.
func (c *HTTPClient) Health(ctx context.Context) error {
	raw, err := c.call(ctx, "getHealth", []any{})
	if err != nil {
		return err
	}
	var status string
	if err := json.Unmarshal(raw, &status); err != nil {
		return fmt.Errorf("decode health response: %w", err)
	}
	if status != "ok" {
		return fmt.Errorf("node reported %q", status)
	}
	return nil
}

func (c *HTTPClient) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	result, err := c.post(ctx, method, params)
	if c.observer != nil {
		c.observer.ObserveRPC(method, time.Since(start), err)
	}
	return result, err
}

func (c *HTTPClient) post(ctx context.Context, method string, params any) (json.RawMessage, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %s", method, resp.Status)
	}

	var decoded rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("%s: %w", method, decoded.Error)
	}
	return decoded.Result, nil
}

func isNullResult(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type transactionResult struct {
	Slot        uint64           `json:"slot"`
	BlockTime   *int64           `json:"blockTime"`
	Transaction *transactionBody `json:"transaction"`
}

type transactionBody struct {
	Signatures []string            `json:"signatures"`
	Message    *transactionMessage `json:"message"`
}

type transactionMessage struct {
	AccountKeys accountKeyList `json:"accountKeys"`
}

func (t transactionResult) toRecord(signature string) *domain.TransactionRecord {
	rec := &domain.TransactionRecord{
		Signature: signature,
		Slot:      t.Slot,
		BlockTime: t.BlockTime,
	}
	if t.Transaction != nil && t.Transaction.Message != nil {
		rec.AccountKeys = t.Transaction.Message.AccountKeys
	}
	return rec
}

// accountKeyList tolerates both the plain string array of the "json"
// encoding and the object form of "jsonParsed". Entries that are neither
// are dropped, and a list that is not an array at all decodes to nil, so
// malformed records lose their participants instead of failing the fetch.
type accountKeyList []string

func (l *accountKeyList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*l = nil
		return nil
	}

	keys := make([]string, 0, len(raw))
	for _, entry := range raw {
		var key string
		if err := json.Unmarshal(entry, &key); err == nil {
			keys = append(keys, key)
			continue
		}
		var parsed struct {
			Pubkey string `json:"pubkey"`
		}
		if err := json.Unmarshal(entry, &parsed); err == nil && parsed.Pubkey != "" {
			keys = append(keys, parsed.Pubkey)
		}
	}
	*l = keys
	return nil
}
