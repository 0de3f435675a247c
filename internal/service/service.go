// Package service ties parameter validation, rendering, source acquisition
// and verification together into the create and verify operations exposed
// by the CLI and the RPC server.
package service

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	klog "github.com/Klingon-tech/sui-tokengen/internal/log"
	"github.com/Klingon-tech/sui-tokengen/internal/movegen"
	"github.com/Klingon-tech/sui-tokengen/internal/source"
	"github.com/Klingon-tech/sui-tokengen/internal/token"
	"github.com/Klingon-tech/sui-tokengen/internal/verify"
)

// Mode selects which .move files of a location are verified.
type Mode int

const (
	ModeAll Mode = iota
	ModeFirst
)

func (m Mode) String() string {
	if m == ModeFirst {
		return "first"
	}
	return "all"
}

// ParseMode accepts "first" or "all".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "all", "":
		return ModeAll, nil
	case "first":
		return ModeFirst, nil
	default:
		return ModeAll, fmt.Errorf("unknown verify mode %q (want first or all)", s)
	}
}

// Contract is a freshly generated Move package.
type Contract struct {
	Params           token.Params
	Slug             string
	TokenContent     string
	MoveToml         string
	TestTokenContent string
}

// FileReport is the verification outcome for one file.
type FileReport struct {
	Path        string // Relative to the checkout root; "<content>" for inline content.
	Fingerprint string
	Params      token.Params
}

// VerifyResult lists the files that were verified. It is only returned when
// every file is authentic.
type VerifyResult struct {
	Files []FileReport
}

// Fingerprint returns the fingerprint of the first verified file.
func (r *VerifyResult) Fingerprint() string {
	if r == nil || len(r.Files) == 0 {
		return ""
	}
	return r.Files[0].Fingerprint
}

// Paths returns the verified file paths.
func (r *VerifyResult) Paths() []string {
	paths := make([]string, 0, len(r.Files))
	for _, f := range r.Files {
		paths = append(paths, f.Path)
	}
	return paths
}

// Options configures a Service.
type Options struct {
	Mode     Mode
	Hosts    []string          // Allowed git hosts (nil = source.DefaultHosts).
	Renderer *movegen.Renderer // nil = embedded templates.
	Fetcher  *source.Fetcher   // nil = git fetcher with the system temp dir.
}

// Service runs the create and verify pipelines. It holds no mutable state
// and is safe for concurrent use.
type Service struct {
	mode     Mode
	hosts    []string
	renderer *movegen.Renderer
	verifier *verify.Verifier
	fetcher  *source.Fetcher
	logger   zerolog.Logger
}

// New creates a Service.
func New(opts Options) *Service {
	r := opts.Renderer
	if r == nil {
		r = movegen.Default()
	}
	f := opts.Fetcher
	if f == nil {
		f = source.NewFetcher(nil, "")
	}
	return &Service{
		mode:     opts.Mode,
		hosts:    opts.Hosts,
		renderer: r,
		verifier: verify.New(r),
		fetcher:  f,
		logger:   klog.Service,
	}
}

// Mode returns the verification mode.
func (s *Service) Mode() Mode {
	return s.mode
}

// Create validates p and renders the coin module, its test module and the
// package manifest.
func (s *Service) Create(ctx context.Context, p token.Params) (*Contract, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p = p.Canonicalize()
	if err := token.Validate(p); err != nil {
		return nil, err
	}

	coin, err := s.renderer.Render(p, movegen.Standard)
	if err != nil {
		return nil, fmt.Errorf("render coin: %w", err)
	}
	tests, err := s.renderer.Render(p, movegen.Test)
	if err != nil {
		return nil, fmt.Errorf("render tests: %w", err)
	}
	manifest, err := s.renderer.RenderManifest(p.ModuleName(), p.Environment)
	if err != nil {
		return nil, fmt.Errorf("render manifest: %w", err)
	}

	s.logger.Debug().
		Str("slug", p.Slug()).
		Str("symbol", p.Symbol).
		Str("env", string(p.Environment)).
		Bool("frozen", p.IsFrozen).
		Msg("Contract created")

	return &Contract{
		Params:           p,
		Slug:             p.Slug(),
		TokenContent:     coin,
		MoveToml:         manifest,
		TestTokenContent: tests,
	}, nil
}

// VerifyContent verifies a single module held in memory.
func (s *Service) VerifyContent(ctx context.Context, content string) (*VerifyResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report, err := s.verifier.Check(content)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{Files: []FileReport{{
		Path:        "<content>",
		Fingerprint: report.Fingerprint,
		Params:      report.Params,
	}}}, nil
}

// VerifyURL clones a git repository and verifies its sources/ folder.
func (s *Service) VerifyURL(ctx context.Context, url string) (*VerifyResult, error) {
	if err := source.ValidateRepoURL(url, s.hosts); err != nil {
		return nil, err
	}
	return s.verifyAt(ctx, source.Location{Kind: source.KindGit, URL: url})
}

// VerifyLocation verifies a local directory or a git repository URL.
func (s *Service) VerifyLocation(ctx context.Context, location string) (*VerifyResult, error) {
	loc, err := source.ParseLocation(location, s.hosts)
	if err != nil {
		return nil, err
	}
	return s.verifyAt(ctx, loc)
}

func (s *Service) verifyAt(ctx context.Context, loc source.Location) (*VerifyResult, error) {
	checkout, err := s.fetcher.Fetch(ctx, loc)
	if err != nil {
		return nil, err
	}
	defer checkout.Close()

	files, err := source.MoveFiles(checkout.Dir, loc.Kind == source.KindGit)
	if err != nil {
		return nil, err
	}
	if s.mode == ModeFirst {
		files = files[:1]
	}

	result := &VerifyResult{}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rel, relErr := filepath.Rel(checkout.Dir, path)
		if relErr != nil {
			rel = filepath.Base(path)
		}

		content, err := source.ReadFile(path)
		if err != nil {
			return nil, err
		}
		report, err := s.verifier.Check(content)
		if err != nil {
			s.logger.Debug().Err(err).Str("location", loc.String()).Str("file", rel).Msg("Verification failed")
			return nil, fmt.Errorf("%s: %w", rel, err)
		}
		result.Files = append(result.Files, FileReport{
			Path:        filepath.ToSlash(rel),
			Fingerprint: report.Fingerprint,
			Params:      report.Params,
		})
	}

	s.logger.Debug().
		Str("location", loc.String()).
		Int("files", len(result.Files)).
		Msg("Location verified")
	return result, nil
}
