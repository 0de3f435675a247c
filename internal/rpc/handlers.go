package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/Klingon-tech/sui-tokengen/config"
	"github.com/Klingon-tech/sui-tokengen/internal/service"
	"github.com/Klingon-tech/sui-tokengen/internal/token"
)

// ── Token endpoints ─────────────────────────────────────────────────────

func (s *Server) handleCreate(ctx context.Context, req *Request) (interface{}, *Error) {
	var params CreateParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	// Out-of-range values would be truncated by the uint8 conversion.
	if params.Decimals < token.MinDecimals || params.Decimals > token.MaxDecimals {
		return nil, toRPCError(&token.ValidationError{Field: "decimals",
			Reason: fmt.Sprintf("must be between %d and %d, got %d", token.MinDecimals, token.MaxDecimals, params.Decimals)})
	}

	c, err := s.svc.Create(ctx, token.Params{
		Decimals:    uint8(params.Decimals),
		Symbol:      params.Symbol,
		Name:        params.Name,
		Description: params.Description,
		IsFrozen:    params.IsFrozen,
		Environment: token.Environment(params.Environment),
	})
	if err != nil {
		return nil, toRPCError(err)
	}
	s.metrics.RecordCreate()

	return &CreateResult{
		Slug:             c.Slug,
		TokenContent:     c.TokenContent,
		MoveToml:         c.MoveToml,
		TestTokenContent: c.TestTokenContent,
	}, nil
}

func (s *Server) handleVerifyURL(ctx context.Context, req *Request) (interface{}, *Error) {
	var params VerifyURLParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	if params.URL == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "url is required"}
	}

	res, err := s.svc.VerifyURL(ctx, params.URL)
	return s.verifyResult("url", res, err)
}

func (s *Server) handleVerifyContent(ctx context.Context, req *Request) (interface{}, *Error) {
	var params VerifyContentParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}

	res, err := s.svc.VerifyContent(ctx, params.Content)
	return s.verifyResult("content", res, err)
}

func (s *Server) verifyResult(source string, res *service.VerifyResult, err error) (interface{}, *Error) {
	if err != nil {
		s.metrics.RecordVerification(source, service.Classify(err).String(), 0)
		return nil, toRPCError(err)
	}
	s.metrics.RecordVerification(source, "ok", len(res.Files))
	return &VerifyResult{
		Authentic:   true,
		Files:       res.Paths(),
		Fingerprint: res.Fingerprint(),
	}, nil
}

// ── Server endpoints ────────────────────────────────────────────────────

func (s *Server) handleServerInfo(_ context.Context, _ *Request) (interface{}, *Error) {
	envs := make([]string, 0, len(token.Environments))
	for _, e := range token.Environments {
		envs = append(envs, string(e))
	}
	return &ServerInfoResult{
		Version:      config.Version,
		Environments: envs,
		VerifyMode:   s.svc.Mode().String(),
		WebSocket:    s.wsEnabled,
		Uptime:       int64(time.Since(s.started).Seconds()),
	}, nil
}
