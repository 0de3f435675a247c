// Package daemon assembles the token service, its git fetcher, metrics and
// the RPC server into a runnable daemon that can be embedded in any binary.
package daemon

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/Klingon-tech/sui-tokengen/config"
	klog "github.com/Klingon-tech/sui-tokengen/internal/log"
	"github.com/Klingon-tech/sui-tokengen/internal/metrics"
	"github.com/Klingon-tech/sui-tokengen/internal/rpc"
	"github.com/Klingon-tech/sui-tokengen/internal/service"
	"github.com/Klingon-tech/sui-tokengen/internal/source"
)

// Daemon is a fully-initialized token daemon.
type Daemon struct {
	cfg    *config.Config
	logger zerolog.Logger

	svc       *service.Service
	metrics   *metrics.Metrics
	rpcServer *rpc.Server
}

// New creates and initializes a Daemon. It performs all setup steps
// (logger, fetcher, service, metrics, RPC) but does not bind the listener.
// Call Start() for that.
func New(cfg *config.Config) (*Daemon, error) {
	// ── 1. Init logger ──────────────────────────────────────────────
	if err := klog.InitWithRolls(cfg.Log.Level, cfg.Log.JSON, cfg.LogFile(), cfg.Log.MaxRolls); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := klog.Daemon

	logger.Info().
		Str("version", config.Version).
		Str("datadir", cfg.DataDir).
		Str("verify_mode", cfg.Verify.Mode).
		Strs("git_hosts", cfg.Source.Hosts).
		Msg("Starting Sui token daemon")

	// ── 2. Source fetcher ───────────────────────────────────────────
	workDir := expandHome(cfg.Source.WorkDir)
	if workDir != "" {
		if err := os.MkdirAll(workDir, 0o700); err != nil {
			return nil, fmt.Errorf("create work dir %s: %w", workDir, err)
		}
	}
	gitBin, err := resolveGit(cfg.Source.GitBinary)
	if err != nil {
		// verify_url will fail per request; create and verify_content still work.
		logger.Warn().Err(err).Msg("git not found; repository verification unavailable")
	} else {
		logger.Info().Str("git", gitBin).Msg("Using git")
	}
	fetcher := source.NewFetcher(source.NewGitCloner(gitBin), workDir)

	// ── 3. Service ──────────────────────────────────────────────────
	mode, err := service.ParseMode(cfg.Verify.Mode)
	if err != nil {
		return nil, err
	}
	svc := service.New(service.Options{
		Mode:    mode,
		Hosts:   cfg.Source.Hosts,
		Fetcher: fetcher,
	})

	// ── 4. Metrics ──────────────────────────────────────────────────
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace)
		logger.Info().Str("namespace", cfg.Metrics.Namespace).Msg("Metrics enabled on /metrics")
	}

	// ── 5. RPC server ───────────────────────────────────────────────
	rpcServer := rpc.New(cfg.RPC.ListenAddr(), svc, cfg.RPC)
	rpcServer.SetMetrics(m)

	return &Daemon{
		cfg:       cfg,
		logger:    logger,
		svc:       svc,
		metrics:   m,
		rpcServer: rpcServer,
	}, nil
}

// Start binds the RPC listener and serves in the background.
func (d *Daemon) Start() error {
	if err := d.rpcServer.Start(); err != nil {
		return fmt.Errorf("start RPC at %s: %w", d.cfg.RPC.ListenAddr(), err)
	}
	d.logger.Info().
		Str("addr", d.rpcServer.Addr()).
		Bool("websocket", d.cfg.RPC.WebSocket).
		Dur("timeout", d.cfg.RPC.Timeout).
		Msg("RPC server started")
	return nil
}

// Stop performs graceful shutdown.
func (d *Daemon) Stop() {
	if err := d.rpcServer.Stop(); err != nil {
		d.logger.Warn().Err(err).Msg("RPC shutdown")
	}
	d.logger.Info().Msg("Goodbye!")
	klog.Close()
}

// RPCAddr returns the address the RPC server is listening on.
func (d *Daemon) RPCAddr() string {
	return d.rpcServer.Addr()
}

// Service returns the token service.
func (d *Daemon) Service() *service.Service {
	return d.svc
}
