// Package rpcclient provides a JSON-RPC 2.0 client for suitokend.
package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Klingon-tech/sui-tokengen/internal/rpc"
)

// DefaultEndpoint is the daemon's default listen URL.
const DefaultEndpoint = "http://127.0.0.1:8645"

// Client is a JSON-RPC 2.0 HTTP client.
type Client struct {
	endpoint string
	http     *http.Client
}

// New creates a new RPC client targeting the given endpoint URL.
func New(endpoint string) *Client {
	return NewWithTimeout(endpoint, 60*time.Second)
}

// NewWithTimeout creates a new RPC client with a custom HTTP timeout.
// Verification of a remote repository includes a clone, so the default
// is generous.
func NewWithTimeout(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// Endpoint returns the target URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// request is a JSON-RPC 2.0 request.
type request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
	ID      int         `json:"id"`
}

// response is a JSON-RPC 2.0 response.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      int             `json:"id"`
}

// rpcError is a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    *rpc.ErrorData `json:"data,omitempty"`
}

// RPCError is returned when the server responds with an error.
type RPCError struct {
	Code      int
	Message   string
	Kind      string // Service error kind; empty for protocol errors.
	Transient bool
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// IsTampered reports whether the server rejected a contract as modified.
func (e *RPCError) IsTampered() bool {
	return e.Code == rpc.CodeTampered
}

// IsValidation reports whether the request parameters were rejected.
func (e *RPCError) IsValidation() bool {
	return e.Code == rpc.CodeInvalidParams
}

// Call invokes a JSON-RPC method and unmarshals the result into the provided pointer.
// If result is nil, the response result is discarded.
func (c *Client) Call(ctx context.Context, method string, params, result interface{}) error {
	req := request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http status %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}

	var rpcResp response
	if err := json.Unmarshal(data, &rpcResp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if rpcResp.Error != nil {
		e := &RPCError{
			Code:    rpcResp.Error.Code,
			Message: rpcResp.Error.Message,
		}
		if d := rpcResp.Error.Data; d != nil {
			e.Kind = d.Kind
			e.Transient = d.Transient
		}
		return e
	}

	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}

	return nil
}

// Create generates a coin package.
func (c *Client) Create(ctx context.Context, p rpc.CreateParam) (*rpc.CreateResult, error) {
	var res rpc.CreateResult
	if err := c.Call(ctx, "create", p, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// VerifyURL verifies the sources of a git repository.
func (c *Client) VerifyURL(ctx context.Context, url string) (*rpc.VerifyResult, error) {
	var res rpc.VerifyResult
	if err := c.Call(ctx, "verify_url", rpc.VerifyURLParam{URL: url}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// VerifyContent verifies a single module's text.
func (c *Client) VerifyContent(ctx context.Context, content string) (*rpc.VerifyResult, error) {
	var res rpc.VerifyResult
	if err := c.Call(ctx, "verify_content", rpc.VerifyContentParam{Content: content}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ServerInfo returns the daemon's version and settings.
func (c *Client) ServerInfo(ctx context.Context) (*rpc.ServerInfoResult, error) {
	var res rpc.ServerInfoResult
	if err := c.Call(ctx, "server_info", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
