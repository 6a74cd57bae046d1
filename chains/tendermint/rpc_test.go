package tendermint

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type rpcRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// fakeRPC answers CometBFT JSON-RPC calls with canned results.
type fakeRPC struct {
	mu       sync.Mutex
	results  map[string]func(params json.RawMessage) (string, error)
	requests []rpcRequest
}

func newFakeRPC(t *testing.T) (*fakeRPC, *Chain) {
	f := &fakeRPC{results: make(map[string]func(json.RawMessage) (string, error))}
	srv := httptest.NewServer(http.HandlerFunc(f.serveHTTP))
	t.Cleanup(srv.Close)

	chain, err := ChainConfig{
		ChainID: "cosmoshub-4",
		RPCAddr: srv.URL,
		Timeout: 5 * time.Second,
	}.Build()
	if err != nil {
		t.Fatal(err)
	}
	return f, chain
}

func (f *fakeRPC) handle(method string, fn func(params json.RawMessage) (string, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[method] = fn
}

func (f *fakeRPC) serveHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	fn, ok := f.results[req.Method]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":{"code":-32601,"message":"Method not found"}}`, req.ID)
		return
	}
	result, err := fn(req.Params)
	if err != nil {
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":{"code":-32603,"message":"Internal error","data":%q}}`, req.ID, err.Error())
		return
	}
	fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%s}`, req.ID, result)
}

func statusResult(network string, height int64, catchingUp bool) string {
	return fmt.Sprintf(`{"node_info":{"network":%q},"sync_info":{"latest_block_height":"%d","catching_up":%t}}`,
		network, height, catchingUp)
}
