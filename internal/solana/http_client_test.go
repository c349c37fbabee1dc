package solana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// newRPCServer serves JSON-RPC responses built by handle, which receives the
// decoded method and params and returns the raw JSON for the result field.
func newRPCServer(t *testing.T, handle func(method string, params []json.RawMessage) string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			JSONRPC string            `json:"jsonrpc"`
			Method  string            `json:"method"`
			Params  []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode rpc request: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.JSONRPC != "2.0" {
			t.Errorf("expected jsonrpc version 2.0, got %q", req.JSONRPC)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":%s}`, handle(req.Method, req.Params))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetSignaturesForAddress_RequestShape(t *testing.T) {
	var (
		gotMethod string
		gotParams []json.RawMessage
	)
	srv := newRPCServer(t, func(method string, params []json.RawMessage) string {
		gotMethod = method
		gotParams = params
		return `[{"signature":"sig-1","slot":100},{"signature":"sig-2","slot":99}]`
	})

	client := NewHTTPClient(Options{Endpoint: srv.URL})
	infos, err := client.GetSignaturesForAddress(context.Background(), "addr-1", 1000, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(infos) != 2 || infos[0].Signature != "sig-1" || infos[1].Signature != "sig-2" {
		t.Errorf("unexpected page: %+v", infos)
	}

	if gotMethod != "getConfirmedSignaturesForAddress2" {
		t.Errorf("unexpected method %q", gotMethod)
	}
	if len(gotParams) != 2 {
		t.Fatalf("expected 2 params, got %d", len(gotParams))
	}

	var address string
	if err := json.Unmarshal(gotParams[0], &address); err != nil || address != "addr-1" {
		t.Errorf("expected address param addr-1, got %s", gotParams[0])
	}

	var cfg map[string]any
	if err := json.Unmarshal(gotParams[1], &cfg); err != nil {
		t.Fatalf("decode config param: %v", err)
	}
	if limit, ok := cfg["limit"].(float64); !ok || limit != 1000 {
		t.Errorf("expected limit 1000, got %v", cfg["limit"])
	}
	if _, ok := cfg["before"]; ok {
		t.Error("first page should not carry a before cursor")
	}
}

func TestGetSignaturesForAddress_BeforeCursor(t *testing.T) {
	var gotParams []json.RawMessage
	srv := newRPCServer(t, func(_ string, params []json.RawMessage) string {
		gotParams = params
		return `[]`
	})

	client := NewHTTPClient(Options{Endpoint: srv.URL})
	if _, err := client.GetSignaturesForAddress(context.Background(), "addr-1", 500, "sig-42"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var cfg map[string]any
	if err := json.Unmarshal(gotParams[1], &cfg); err != nil {
		t.Fatalf("decode config param: %v", err)
	}
	if cfg["before"] != "sig-42" {
		t.Errorf("expected before cursor sig-42, got %v", cfg["before"])
	}
}

func TestGetSignaturesForAddress_NullResult(t *testing.T) {
	srv := newRPCServer(t, func(_ string, _ []json.RawMessage) string {
		return `null`
	})

	client := NewHTTPClient(Options{Endpoint: srv.URL})
	infos, err := client.GetSignaturesForAddress(context.Background(), "addr-1", 1000, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("expected empty page, got %+v", infos)
	}
}

func TestGetTransaction_DecodesRecord(t *testing.T) {
	var gotParams []json.RawMessage
	srv := newRPCServer(t, func(method string, params []json.RawMessage) string {
		if method != "getConfirmedTransaction" {
			t.Errorf("unexpected method %q", method)
		}
		gotParams = params
		return `{"slot":4242,"blockTime":1700000000,"transaction":{"signatures":["sig-1"],"message":{"accountKeys":["key-a","key-b","key-c"]}}}`
	})

	client := NewHTTPClient(Options{Endpoint: srv.URL})
	rec, err := client.GetTransaction(context.Background(), "sig-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Signature != "sig-1" || rec.Slot != 4242 {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.BlockTime == nil || *rec.BlockTime != 1700000000 {
		t.Errorf("unexpected block time: %v", rec.BlockTime)
	}
	if len(rec.AccountKeys) != 3 || rec.AccountKeys[0] != "key-a" {
		t.Errorf("unexpected account keys: %v", rec.AccountKeys)
	}

	if len(gotParams) != 2 {
		t.Fatalf("expected 2 params, got %d", len(gotParams))
	}
	var encoding string
	if err := json.Unmarshal(gotParams[1], &encoding); err != nil || encoding != "json" {
		t.Errorf("expected json encoding param, got %s", gotParams[1])
	}
}

func TestGetTransaction_ParsedKeyObjects(t *testing.T) {
	srv := newRPCServer(t, func(_ string, _ []json.RawMessage) string {
		return `{"slot":7,"transaction":{"message":{"accountKeys":[{"pubkey":"key-a","signer":true},{"pubkey":"key-b"},{"writable":true}]}}}`
	})

	client := NewHTTPClient(Options{Endpoint: srv.URL})
	rec, err := client.GetTransaction(context.Background(), "sig-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.AccountKeys) != 2 || rec.AccountKeys[0] != "key-a" || rec.AccountKeys[1] != "key-b" {
		t.Errorf("unexpected account keys: %v", rec.AccountKeys)
	}
}

func TestGetTransaction_MalformedMessage(t *testing.T) {
	tests := []struct {
		name   string
		result string
	}{
		{name: "account keys not an array", result: `{"slot":7,"transaction":{"message":{"accountKeys":42}}}`},
		{name: "missing message", result: `{"slot":7,"transaction":{"signatures":["sig-1"]}}`},
		{name: "missing transaction", result: `{"slot":7}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newRPCServer(t, func(_ string, _ []json.RawMessage) string {
				return tc.result
			})

			client := NewHTTPClient(Options{Endpoint: srv.URL})
			rec, err := client.GetTransaction(context.Background(), "sig-1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.HasParticipants() {
				t.Errorf("expected no participants, got %v", rec.AccountKeys)
			}
		})
	}
}

func TestGetTransaction_NotFound(t *testing.T) {
	srv := newRPCServer(t, func(_ string, _ []json.RawMessage) string {
		return `null`
	})

	client := NewHTTPClient(Options{Endpoint: srv.URL})
	_, err := client.GetTransaction(context.Background(), "sig-gone")
	if !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("expected ErrTransactionNotFound, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "sig-gone") {
		t.Errorf("expected error to name the signature, got %v", err)
	}
}

func TestHTTPClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client := NewHTTPClient(Options{Endpoint: srv.URL})
	_, err := client.GetSignaturesForAddress(context.Background(), "addr-1", 1000, "")
	if err == nil || !strings.Contains(err.Error(), "unexpected status") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestHTTPClient_RPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"invalid params"}}`)
	}))
	t.Cleanup(srv.Close)

	client := NewHTTPClient(Options{Endpoint: srv.URL})
	_, err := client.GetTransaction(context.Background(), "sig-1")
	if err == nil || !strings.Contains(err.Error(), "invalid params") {
		t.Errorf("expected rpc error message, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	status := `"ok"`
	srv := newRPCServer(t, func(method string, _ []json.RawMessage) string {
		if method != "getHealth" {
			t.Errorf("unexpected method %q", method)
		}
		return status
	})

	client := NewHTTPClient(Options{Endpoint: srv.URL})
	if err := client.Health(context.Background()); err != nil {
		t.Errorf("expected healthy node, got %v", err)
	}

	status = `"behind"`
	err := client.Health(context.Background())
	if err == nil || !strings.Contains(err.Error(), "behind") {
		t.Errorf("expected behind status error, got %v", err)
	}
}

type captureObserver struct {
	mu      sync.Mutex
	methods []string
	errs    []error
}

func (o *captureObserver) ObserveRPC(method string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.methods = append(o.methods, method)
	o.errs = append(o.errs, err)
}

func TestHTTPClient_Observer(t *testing.T) {
	srv := newRPCServer(t, func(_ string, _ []json.RawMessage) string {
		return `"ok"`
	})

	observer := &captureObserver{}
	client := NewHTTPClient(Options{Endpoint: srv.URL, Observer: observer})

	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	srv.Close()
	if err := client.Health(context.Background()); err == nil {
		t.Fatal("expected error after server shutdown")
	}

	observer.mu.Lock()
	defer observer.mu.Unlock()
	if len(observer.methods) != 2 || observer.methods[0] != "getHealth" {
		t.Fatalf("unexpected observed methods: %v", observer.methods)
	}
	if observer.errs[0] != nil {
		t.Errorf("expected first call to observe success, got %v", observer.errs[0])
	}
	if observer.errs[1] == nil {
		t.Error("expected second call to observe a failure")
	}
}

func TestFetchHistory_Paginates(t *testing.T) {
	client := NewMemoryClient()
	client.PushSignaturePage("addr-1", []SignatureInfo{{Signature: "sig-1"}, {Signature: "sig-2"}})
	client.PushSignaturePage("addr-1", []SignatureInfo{{Signature: "sig-3"}})

	sigs, err := FetchHistory(context.Background(), client, "addr-1", HistoryOptions{PageSize: 2, MaxPages: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"sig-1", "sig-2", "sig-3"}
	if len(sigs) != len(want) {
		t.Fatalf("expected %d signatures, got %v", len(want), sigs)
	}
	for i, sig := range want {
		if sigs[i] != sig {
			t.Errorf("signature %d: expected %s, got %s", i, sig, sigs[i])
		}
	}

	calls := client.SignatureCalls()
	if len(calls) != 3 {
		t.Fatalf("expected 3 history calls, got %d", len(calls))
	}
	if calls[0].Before != "" || calls[1].Before != "sig-2" || calls[2].Before != "sig-3" {
		t.Errorf("unexpected cursor threading: %+v", calls)
	}
	for _, call := range calls {
		if call.Limit != 2 {
			t.Errorf("expected page size 2 on every call, got %+v", call)
		}
	}
}

func TestFetchHistory_StopsAtPageLimit(t *testing.T) {
	client := NewMemoryClient()
	for i := 1; i <= 5; i++ {
		client.PushSignaturePage("addr-1", []SignatureInfo{{Signature: fmt.Sprintf("sig-%d", i)}})
	}

	sigs, err := FetchHistory(context.Background(), client, "addr-1", HistoryOptions{PageSize: 1, MaxPages: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sigs) != 3 {
		t.Errorf("expected 3 signatures, got %v", sigs)
	}
	if calls := client.SignatureCalls(); len(calls) != 3 {
		t.Errorf("expected 3 history calls, got %d", len(calls))
	}
}

func TestFetchHistory_Defaults(t *testing.T) {
	client := NewMemoryClient()

	sigs, err := FetchHistory(context.Background(), client, "addr-1", HistoryOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sigs) != 0 {
		t.Errorf("expected no signatures, got %v", sigs)
	}

	calls := client.SignatureCalls()
	if len(calls) != 1 {
		t.Fatalf("expected a single call, got %d", len(calls))
	}
	if calls[0].Limit != 1000 {
		t.Errorf("expected default page size 1000, got %d", calls[0].Limit)
	}
}

func TestFetchHistory_PropagatesError(t *testing.T) {
	client := NewMemoryClient().WithError(errors.New("node unreachable"))

	_, err := FetchHistory(context.Background(), client, "addr-1", DefaultHistoryOptions())
	if err == nil || !strings.Contains(err.Error(), "addr-1") {
		t.Errorf("expected wrapped fetch error naming the address, got %v", err)
	}
}

func TestFetchHistory_SkipsEmptySignatures(t *testing.T) {
	client := NewMemoryClient()
	client.PushSignaturePage("addr-1", []SignatureInfo{{Signature: "sig-1"}, {Signature: ""}, {Signature: "sig-2"}})

	sigs, err := FetchHistory(context.Background(), client, "addr-1", DefaultHistoryOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sigs) != 2 || sigs[0] != "sig-1" || sigs[1] != "sig-2" {
		t.Errorf("expected blank entries dropped, got %v", sigs)
	}
}
