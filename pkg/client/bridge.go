package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"dex-bridge/pkg/types"
)

// API paths exposed by the DEX/bridge backend
const (
	PathBestDEX           = "/api/dex/best"
	PathTransactionStatus = "/api/transaction/status"
	PathBridgeTokens      = "/api/bridge/tokens"
)

// DefaultTimeout bounds a single request when no timeout is configured
const DefaultTimeout = 10 * time.Second

// Operation names used in errors and reports
const (
	OpGetBestDEX           = "get best dex"
	OpGetTransactionStatus = "get transaction status"
	OpSubmitBridge         = "submit bridge"
)

// BridgeClient talks to the DEX/bridge backend over HTTP
type BridgeClient struct {
	baseURL    string
	httpClient *http.Client
	headers    map[string]string
}

// NewBridgeClient creates a client for the backend at baseURL
func NewBridgeClient(baseURL string, timeout time.Duration) *BridgeClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &BridgeClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent": "dex-bridge/0.1",
			"Accept":     "text/plain, application/json",
		},
	}
}

// BaseURL returns the backend address the client was created with
func (c *BridgeClient) BaseURL() string {
	return c.baseURL
}

// GetBestDEX reads the name of the currently best-priced DEX
func (c *BridgeClient) GetBestDEX(ctx context.Context) (types.DEXName, error) {
	body, err := c.makeRequest(ctx, OpGetBestDEX, http.MethodGet, PathBestDEX, nil)
	if err != nil {
		return "", err
	}
	return types.DEXName(body), nil
}

// GetTransactionStatus reads the status of the current transaction.
// The endpoint is global; it is not scoped to any transaction reference.
func (c *BridgeClient) GetTransactionStatus(ctx context.Context) (types.TransactionStatus, error) {
	body, err := c.makeRequest(ctx, OpGetTransactionStatus, http.MethodGet, PathTransactionStatus, nil)
	if err != nil {
		return "", err
	}
	return types.TransactionStatus(body), nil
}

// SubmitBridge posts a bridge request and returns the transaction reference
// exactly as the backend sent it.
func (c *BridgeClient) SubmitBridge(ctx context.Context, req types.BridgeRequest) (types.TransactionReference, error) {
	body, err := c.makeRequest(ctx, OpSubmitBridge, http.MethodPost, PathBridgeTokens, req)
	if err != nil {
		return "", err
	}
	return types.TransactionReference(body), nil
}

func (c *BridgeClient) makeRequest(ctx context.Context, op, method, path string, body interface{}) (string, error) {
	fail := func(err error) error {
		return &RequestError{Op: op, Method: method, Path: path, Err: err}
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return "", fail(fmt.Errorf("failed to marshal body: %w", err))
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return "", fail(fmt.Errorf("failed to create request: %w", err))
	}

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fail(fmt.Errorf("failed to make http call: %w", err))
	}
	defer func() {
		_ = res.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fail(fmt.Errorf("failed to read response body: %w", err))
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", &RequestError{
			Op:         op,
			Method:     method,
			Path:       path,
			StatusCode: res.StatusCode,
			Body:       strings.TrimSpace(string(bodyBytes)),
		}
	}

	return decodeText(res.Header.Get("Content-Type"), bodyBytes), nil
}

// decodeText returns the body verbatim, except that a JSON-encoded string
// is unquoted when the response declares a JSON content type.
func decodeText(contentType string, body []byte) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err == nil && mediaType == "application/json" {
		var s string
		if json.Unmarshal(body, &s) == nil {
			return s
		}
	}
	return string(body)
}
