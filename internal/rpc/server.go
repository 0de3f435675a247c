// Package rpc implements the JSON-RPC 2.0 API server.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Klingon-tech/sui-tokengen/config"
	klog "github.com/Klingon-tech/sui-tokengen/internal/log"
	"github.com/Klingon-tech/sui-tokengen/internal/metrics"
	"github.com/Klingon-tech/sui-tokengen/internal/service"
)

// maxBodySize is the maximum allowed request body size (1 MB).
const maxBodySize = 1 << 20

// handlerFunc serves one JSON-RPC method.
type handlerFunc func(ctx context.Context, req *Request) (interface{}, *Error)

// Server is the JSON-RPC 2.0 HTTP server.
type Server struct {
	addr        string
	svc         *service.Service
	metrics     *metrics.Metrics // nil = disabled.
	timeout     time.Duration    // Per-request deadline; 0 = none.
	wsEnabled   bool
	upgrader    websocket.Upgrader
	methods     map[string]handlerFunc
	started     time.Time
	server      *http.Server
	logger      zerolog.Logger
	ln          net.Listener
	allowedNets []*net.IPNet // Empty = allow all.
	corsOrigins []string     // Empty = no CORS headers.
}

// New creates a new RPC server. The rpcCfg parameter controls IP filtering,
// CORS, the request deadline and the WebSocket endpoint. A zero-value
// RPCConfig allows all IPs, disables CORS and sets no deadline.
func New(addr string, svc *service.Service, rpcCfg ...config.RPCConfig) *Server {
	s := &Server{
		addr:    addr,
		svc:     svc,
		started: time.Now(),
		logger:  klog.RPC,
	}

	if len(rpcCfg) > 0 {
		s.allowedNets = parseAllowedIPs(rpcCfg[0].AllowedIPs)
		s.corsOrigins = rpcCfg[0].CORSOrigins
		s.timeout = rpcCfg[0].Timeout
		s.wsEnabled = rpcCfg[0].WebSocket
	}

	s.methods = map[string]handlerFunc{
		"create":         s.handleCreate,
		"verify_url":     s.handleVerifyURL,
		"verify_content": s.handleVerifyContent,
		"server_info":    s.handleServerInfo,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/metrics", s.handleMetrics)

	writeTimeout := 30 * time.Second
	if s.timeout > 0 {
		writeTimeout = s.timeout + 5*time.Second
	}
	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: writeTimeout,
	}

	return s
}

// SetMetrics enables request metrics and the /metrics endpoint.
func (s *Server) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// parseAllowedIPs converts string IP/CIDR entries into net.IPNet.
func parseAllowedIPs(entries []string) []*net.IPNet {
	var nets []*net.IPNet
	for _, entry := range entries {
		_, ipNet, err := net.ParseCIDR(entry)
		if err == nil {
			nets = append(nets, ipNet)
			continue
		}
		// Try as a single IP (add /32 or /128).
		ip := net.ParseIP(entry)
		if ip == nil {
			continue
		}
		bits := 32
		if ip.To4() == nil {
			bits = 128
		}
		nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return nets
}

// Start begins listening and serving in a background goroutine.
// It returns immediately after the listener is bound.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("rpc listen: %w", err)
	}
	s.ln = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("RPC server error")
		}
	}()

	return nil
}

// Addr returns the listener address (useful when bound to :0).
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// allowRemote applies the IP allow-list. It writes a 403 and returns false
// when the caller is not allowed.
func (s *Server) allowRemote(w http.ResponseWriter, r *http.Request) bool {
	if len(s.allowedNets) == 0 {
		return true
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	ip := net.ParseIP(host)
	if ip == nil || !s.isIPAllowed(ip) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

// handleRequest is the main HTTP handler for JSON-RPC requests.
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	if !s.allowRemote(w, r) {
		return
	}

	s.setCORSHeaders(w, r)

	// Handle CORS preflight.
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, nil, CodeInvalidRequest, "only POST method is allowed")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		writeError(w, nil, CodeParseError, "failed to read request body")
		return
	}
	if len(body) > maxBodySize {
		writeError(w, nil, CodeInvalidRequest, "request body too large")
		return
	}

	writeJSON(w, s.process(r.Context(), body))
}

// process decodes one JSON-RPC message and runs it to completion.
func (s *Server) process(ctx context.Context, body []byte) Response {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return Response{JSONRPC: "2.0", Error: &Error{Code: CodeParseError, Message: "invalid JSON"}}
	}
	if req.JSONRPC != "2.0" {
		return Response{JSONRPC: "2.0", Error: &Error{Code: CodeInvalidRequest, Message: "jsonrpc must be \"2.0\""}, ID: req.ID}
	}

	result, rpcErr := s.dispatch(ctx, &req)
	if rpcErr != nil {
		return Response{JSONRPC: "2.0", Error: rpcErr, ID: req.ID}
	}
	return Response{JSONRPC: "2.0", Result: result, ID: req.ID}
}

// dispatch routes a request to the appropriate handler under the
// per-request deadline.
func (s *Server) dispatch(ctx context.Context, req *Request) (interface{}, *Error) {
	h, ok := s.methods[req.Method]
	if !ok {
		return nil, &Error{Code: CodeMethodNotFound, Message: fmt.Sprintf("method %q not found", req.Method)}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	done := s.metrics.Track()
	defer done()
	start := time.Now()

	result, rpcErr := h(ctx, req)

	elapsed := time.Since(start)
	outcome := "ok"
	if rpcErr != nil {
		outcome = errorOutcome(rpcErr)
		s.logger.Debug().
			Str("method", req.Method).
			Int("code", rpcErr.Code).
			Str("error", rpcErr.Message).
			Dur("elapsed", elapsed).
			Msg("RPC call failed")
	} else {
		s.logger.Debug().Str("method", req.Method).Dur("elapsed", elapsed).Msg("RPC call")
	}
	s.metrics.ObserveRequest(req.Method, outcome, elapsed)

	return result, rpcErr
}

// toRPCError maps a service error onto a JSON-RPC error.
func toRPCError(err error) *Error {
	kind := service.Classify(err)
	code := CodeInternalError
	switch kind {
	case service.KindValidation:
		code = CodeInvalidParams
	case service.KindTampered:
		code = CodeTampered
	case service.KindSource:
		code = CodeSource
	case service.KindIO:
		code = CodeIO
	}
	return &Error{
		Code:    code,
		Message: err.Error(),
		Data: &ErrorData{
			Kind:      kind.String(),
			Transient: service.IsTransient(err),
		},
	}
}

// errorOutcome returns the metrics label for a failed call.
func errorOutcome(e *Error) string {
	if d, ok := e.Data.(*ErrorData); ok {
		return d.Kind
	}
	return "rpc"
}

// writeJSON writes a JSON-RPC response.
func writeJSON(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// writeError writes a JSON-RPC error response.
func writeError(w http.ResponseWriter, id interface{}, code int, message string) {
	writeJSON(w, Response{
		JSONRPC: "2.0",
		Error:   &Error{Code: code, Message: message},
		ID:      id,
	})
}

// handleMetrics serves Prometheus metrics when enabled.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		http.NotFound(w, r)
		return
	}
	if !s.allowRemote(w, r) {
		return
	}
	s.metrics.Handler().ServeHTTP(w, r)
}

// isIPAllowed checks if the IP is in the allowed networks list.
func (s *Server) isIPAllowed(ip net.IP) bool {
	for _, n := range s.allowedNets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// originAllowed reports whether origin matches the configured CORS origins
// and returns the value for Access-Control-Allow-Origin.
func (s *Server) originAllowed(origin string) (string, bool) {
	for _, o := range s.corsOrigins {
		if o == "*" {
			return "*", true
		}
		if o == origin {
			return origin, true
		}
	}
	return "", false
}

// setCORSHeaders adds CORS headers based on the configured origins.
func (s *Server) setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	if len(s.corsOrigins) == 0 {
		return
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}

	if allow, ok := s.originAllowed(origin); ok {
		w.Header().Set("Access-Control-Allow-Origin", allow)
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	}
}

// parseParams unmarshals the request params into the given target.
func parseParams(req *Request, target interface{}) *Error {
	if req.Params == nil {
		return &Error{Code: CodeInvalidParams, Message: "params required"}
	}

	data, err := json.Marshal(req.Params)
	if err != nil {
		return &Error{Code: CodeInvalidParams, Message: "invalid params"}
	}

	if err := json.Unmarshal(data, target); err != nil {
		return &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid params: %v", err)}
	}
	return nil
}
