package rpc

// JSON-RPC 2.0 error codes. The -320xx range carries application errors.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeTampered       = -32010
	CodeSource         = -32011
	CodeIO             = -32012
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      interface{} `json:"id"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorData is attached to errors raised by the token service.
type ErrorData struct {
	Kind      string `json:"kind"`
	Transient bool   `json:"transient,omitempty"`
}

// ── Param types ─────────────────────────────────────────────────────────

// CreateParam is used by create.
type CreateParam struct {
	Decimals    int    `json:"decimals"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	IsFrozen    bool   `json:"is_frozen"`
	Environment string `json:"environment"`
}

// VerifyURLParam is used by verify_url.
type VerifyURLParam struct {
	URL string `json:"url"`
}

// VerifyContentParam is used by verify_content.
type VerifyContentParam struct {
	Content string `json:"content"`
}

// ── Result types ────────────────────────────────────────────────────────

// CreateResult is returned by create.
type CreateResult struct {
	Slug             string `json:"slug"`
	TokenContent     string `json:"token_content"`
	MoveToml         string `json:"move_toml"`
	TestTokenContent string `json:"test_token_content"`
}

// VerifyResult is returned by verify_url and verify_content.
type VerifyResult struct {
	Authentic   bool     `json:"authentic"`
	Files       []string `json:"files"`
	Fingerprint string   `json:"fingerprint"`
}

// ServerInfoResult is returned by server_info.
type ServerInfoResult struct {
	Version      string   `json:"version"`
	Environments []string `json:"environments"`
	VerifyMode   string   `json:"verify_mode"`
	WebSocket    bool     `json:"websocket"`
	Uptime       int64    `json:"uptime_seconds"`
}
