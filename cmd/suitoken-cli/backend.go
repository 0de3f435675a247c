package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	klog "github.com/Klingon-tech/sui-tokengen/internal/log"
	"github.com/Klingon-tech/sui-tokengen/internal/rpc"
	"github.com/Klingon-tech/sui-tokengen/internal/rpcclient"
	"github.com/Klingon-tech/sui-tokengen/internal/service"
	"github.com/Klingon-tech/sui-tokengen/internal/source"
	"github.com/Klingon-tech/sui-tokengen/internal/token"
)

// backend runs the token operations either in-process or on a daemon.
type backend interface {
	Create(ctx context.Context, p token.Params) (*rpc.CreateResult, error)
	VerifyLocation(ctx context.Context, location string) (*rpc.VerifyResult, error)
	VerifyContent(ctx context.Context, content string) (*rpc.VerifyResult, error)
}

func newBackend(opts *globalOpts) (backend, error) {
	mode, err := service.ParseMode(opts.verifyMode)
	if err != nil {
		return nil, err
	}
	local := &localBackend{svc: service.New(service.Options{
		Mode:    mode,
		Hosts:   opts.hosts,
		Fetcher: source.NewFetcher(source.NewGitCloner(opts.git), ""),
	})}
	if opts.rpcURL == "" {
		return local, nil
	}
	client := rpcclient.NewWithTimeout(opts.rpcURL, opts.timeout)
	klog.CLI.Debug().Str("endpoint", client.Endpoint()).Msg("Using daemon")
	return &remoteBackend{client: client, local: local}, nil
}

// localBackend runs the pipeline in-process.
type localBackend struct {
	svc *service.Service
}

func (b *localBackend) Create(ctx context.Context, p token.Params) (*rpc.CreateResult, error) {
	c, err := b.svc.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	return &rpc.CreateResult{
		Slug:             c.Slug,
		TokenContent:     c.TokenContent,
		MoveToml:         c.MoveToml,
		TestTokenContent: c.TestTokenContent,
	}, nil
}

func (b *localBackend) VerifyLocation(ctx context.Context, location string) (*rpc.VerifyResult, error) {
	return toVerifyResult(b.svc.VerifyLocation(ctx, location))
}

func (b *localBackend) VerifyContent(ctx context.Context, content string) (*rpc.VerifyResult, error) {
	return toVerifyResult(b.svc.VerifyContent(ctx, content))
}

func toVerifyResult(res *service.VerifyResult, err error) (*rpc.VerifyResult, error) {
	if err != nil {
		return nil, err
	}
	return &rpc.VerifyResult{
		Authentic:   true,
		Files:       res.Paths(),
		Fingerprint: res.Fingerprint(),
	}, nil
}

// remoteBackend sends requests to suitokend. Local directories cannot be
// read by a remote daemon and are verified in-process.
type remoteBackend struct {
	client *rpcclient.Client
	local  *localBackend
}

func (b *remoteBackend) Create(ctx context.Context, p token.Params) (*rpc.CreateResult, error) {
	res, err := b.client.Create(ctx, rpc.CreateParam{
		Decimals:    int(p.Decimals),
		Name:        p.Name,
		Symbol:      p.Symbol,
		Description: p.Description,
		IsFrozen:    p.IsFrozen,
		Environment: string(p.Environment),
	})
	return res, b.wrap(err)
}

func (b *remoteBackend) VerifyLocation(ctx context.Context, location string) (*rpc.VerifyResult, error) {
	if !strings.Contains(location, "://") {
		return b.local.VerifyLocation(ctx, location)
	}
	res, err := b.client.VerifyURL(ctx, location)
	return res, b.wrap(err)
}

func (b *remoteBackend) VerifyContent(ctx context.Context, content string) (*rpc.VerifyResult, error) {
	res, err := b.client.VerifyContent(ctx, content)
	return res, b.wrap(err)
}

// wrap names the daemon in transport failures. Errors returned by the
// daemon itself pass through unchanged.
func (b *remoteBackend) wrap(err error) error {
	if err == nil {
		return nil
	}
	var rerr *rpcclient.RPCError
	if errors.As(err, &rerr) {
		return err
	}
	klog.CLI.Debug().Err(err).Str("endpoint", b.client.Endpoint()).Msg("Daemon unreachable")
	return fmt.Errorf("daemon %s: %w", b.client.Endpoint(), err)
}
