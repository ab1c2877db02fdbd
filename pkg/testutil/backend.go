// Package testutil provides an in-process fake of the DEX/bridge backend
// for tests that exercise real HTTP round trips.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"dex-bridge/pkg/types"
)

// FakeBackend serves /api/dex/best, /api/transaction/status and
// /api/bridge/tokens from configurable in-memory values.
type FakeBackend struct {
	server *httptest.Server

	mu        sync.Mutex
	bestDEX   string
	status    string
	reference string
	failures  map[string]int
	calls     map[string]int
	submitted []types.BridgeRequest
}

// NewFakeBackend starts a fake backend that is shut down when the test ends
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	b := &FakeBackend{
		bestDEX:   "Raydium",
		status:    "PENDING",
		reference: "0x1234567890abcdef",
		failures:  make(map[string]int),
		calls:     make(map[string]int),
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/dex/best", b.handleBestDEX).Methods(http.MethodGet)
	r.HandleFunc("/api/transaction/status", b.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/bridge/tokens", b.handleBridge).Methods(http.MethodPost)

	b.server = httptest.NewServer(r)
	t.Cleanup(b.server.Close)
	return b
}

// URL returns the base address of the fake backend
func (b *FakeBackend) URL() string {
	return b.server.URL
}

// SetBestDEX sets the best DEX response body
func (b *FakeBackend) SetBestDEX(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bestDEX = name
}

// SetStatus sets the transaction status response body
func (b *FakeBackend) SetStatus(status string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = status
}

// SetReference sets the reference returned for bridge submissions
func (b *FakeBackend) SetReference(ref string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reference = ref
}

// Fail makes every request to path answer with code. Zero clears it.
func (b *FakeBackend) Fail(path string, code int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if code == 0 {
		delete(b.failures, path)
		return
	}
	b.failures[path] = code
}

// Calls returns how many requests reached path
func (b *FakeBackend) Calls(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

// Submitted returns the decoded bodies of all bridge submissions
func (b *FakeBackend) Submitted() []types.BridgeRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]types.BridgeRequest, len(b.submitted))
	copy(out, b.submitted)
	return out
}

// record counts the call and reports the configured failure code, if any
func (b *FakeBackend) record(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[path]++
	return b.failures[path]
}

func (b *FakeBackend) handleBestDEX(w http.ResponseWriter, r *http.Request) {
	if code := b.record(r.URL.Path); code != 0 {
		http.Error(w, "Failed to monitor DEX rates", code)
		return
	}
	b.mu.Lock()
	body := b.bestDEX
	b.mu.Unlock()
	_, _ = w.Write([]byte(body))
}

func (b *FakeBackend) handleStatus(w http.ResponseWriter, r *http.Request) {
	if code := b.record(r.URL.Path); code != 0 {
		http.Error(w, "Failed to fetch transaction status", code)
		return
	}
	b.mu.Lock()
	body := b.status
	b.mu.Unlock()
	_, _ = w.Write([]byte(body))
}

func (b *FakeBackend) handleBridge(w http.ResponseWriter, r *http.Request) {
	if code := b.record(r.URL.Path); code != 0 {
		http.Error(w, "Failed to bridge tokens", code)
		return
	}

	var req types.BridgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	b.submitted = append(b.submitted, req)
	body := b.reference
	b.mu.Unlock()
	_, _ = w.Write([]byte(body))
}
