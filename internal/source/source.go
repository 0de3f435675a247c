// Package source resolves a verification target, either a local directory
// or a git repository URL, to a readable directory of Move files.
//
// Remote repositories are cloned into temporary directories owned by the
// returned Checkout; callers must Close it on every exit path.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	klog "github.com/Klingon-tech/sui-tokengen/internal/log"
)

// Kind distinguishes local and remote locations.
type Kind int

const (
	KindLocal Kind = iota
	KindGit
)

func (k Kind) String() string {
	if k == KindGit {
		return "git"
	}
	return "local"
}

// DefaultHosts are the git hosts accepted when none are configured.
var DefaultHosts = []string{"github.com"}

// Source acquisition errors.
var (
	ErrInvalidURL     = errors.New("invalid repository url")
	ErrNotFound       = errors.New("location not found")
	ErrCloneFailed    = errors.New("git clone failed")
	ErrMissingSources = errors.New("missing sources directory")
	ErrNoMoveFiles    = errors.New("no .move files found")
)

// Error is a source acquisition failure. Transient marks failures worth
// retrying (network, clone) as opposed to bad input.
type Error struct {
	Op        string
	Location  string
	Transient bool
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Location, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IOError wraps a filesystem failure with the path and operation.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Location is a parsed verification target.
type Location struct {
	Kind Kind
	Path string // Local directory (KindLocal).
	URL  string // Repository URL (KindGit).
}

func (l Location) String() string {
	if l.Kind == KindGit {
		return l.URL
	}
	return l.Path
}

// ParseLocation classifies s. Anything with a URL scheme is treated as a
// git repository and validated against hosts (DefaultHosts when empty).
func ParseLocation(s string, hosts []string) (Location, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Location{}, &Error{Op: "parse", Location: s, Err: ErrNotFound}
	}
	if strings.Contains(s, "://") {
		if err := ValidateRepoURL(s, hosts); err != nil {
			return Location{}, err
		}
		return Location{Kind: KindGit, URL: s}, nil
	}
	return Location{Kind: KindLocal, Path: filepath.Clean(s)}, nil
}

var repoPath = regexp.MustCompile(`^/[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+?(\.git)?/?$`)

// ValidateRepoURL checks that raw is an https URL of the form
// https://<host>/<owner>/<repo>[.git] with host in hosts.
func ValidateRepoURL(raw string, hosts []string) error {
	if len(hosts) == 0 {
		hosts = DefaultHosts
	}
	fail := func(reason string) error {
		return &Error{Op: "validate", Location: raw, Err: fmt.Errorf("%w: %s", ErrInvalidURL, reason)}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fail(err.Error())
	}
	if u.Scheme != "https" {
		return fail("scheme must be https")
	}
	if u.User != nil || u.RawQuery != "" || u.Fragment != "" {
		return fail("credentials, query and fragment are not allowed")
	}
	host := strings.ToLower(u.Hostname())
	allowed := false
	for _, h := range hosts {
		if strings.EqualFold(h, host) {
			allowed = true
			break
		}
	}
	if !allowed {
		return fail(fmt.Sprintf("host %q is not allowed", host))
	}
	if !repoPath.MatchString(u.Path) || strings.Contains(u.Path, "..") {
		return fail("path must be /<owner>/<repo>")
	}
	return nil
}

// RepoName returns the repository name of a validated URL.
func RepoName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(path.Base(strings.TrimSuffix(u.Path, "/")), ".git")
}

// Cloner fetches a repository into an empty directory.
type Cloner interface {
	Clone(ctx context.Context, url, dir string) error
}

// Checkout is a resolved, readable directory. Close releases any temporary
// clone; it is safe to call more than once.
type Checkout struct {
	Dir      string
	Location Location

	cleanup func() error
}

// Close removes temporary state owned by the checkout.
func (c *Checkout) Close() error {
	if c == nil || c.cleanup == nil {
		return nil
	}
	fn := c.cleanup
	c.cleanup = nil
	return fn()
}

// Fetcher resolves locations into checkouts.
type Fetcher struct {
	cloner  Cloner
	workDir string // Parent for temporary clones; "" = os.TempDir().
	logger  zerolog.Logger
}

// NewFetcher creates a fetcher. A nil cloner selects a GitCloner.
func NewFetcher(cloner Cloner, workDir string) *Fetcher {
	if cloner == nil {
		cloner = NewGitCloner("")
	}
	return &Fetcher{
		cloner:  cloner,
		workDir: workDir,
		logger:  klog.Source,
	}
}

// Fetch resolves loc. Local directories are used in place; repositories are
// cloned into a fresh temporary directory that Close removes.
func (f *Fetcher) Fetch(ctx context.Context, loc Location) (*Checkout, error) {
	switch loc.Kind {
	case KindLocal:
		info, err := os.Stat(loc.Path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, &Error{Op: "open", Location: loc.Path, Err: ErrNotFound}
			}
			return nil, &IOError{Op: "stat", Path: loc.Path, Err: err}
		}
		if !info.IsDir() {
			return nil, &Error{Op: "open", Location: loc.Path, Err: fmt.Errorf("%w: not a directory", ErrNotFound)}
		}
		return &Checkout{Dir: loc.Path, Location: loc}, nil

	case KindGit:
		tmp, err := os.MkdirTemp(f.workDir, "suitoken-clone-")
		if err != nil {
			return nil, &IOError{Op: "mkdir temp", Path: f.workDir, Err: err}
		}
		remove := func() error {
			if err := os.RemoveAll(tmp); err != nil {
				f.logger.Warn().Err(err).Str("dir", tmp).Msg("Failed to remove clone")
				return &IOError{Op: "remove", Path: tmp, Err: err}
			}
			return nil
		}

		dir := filepath.Join(tmp, "repo")
		f.logger.Debug().Str("url", loc.URL).Str("dir", dir).Msg("Cloning repository")
		if err := f.cloner.Clone(ctx, loc.URL, dir); err != nil {
			_ = remove()
			return nil, &Error{Op: "clone", Location: loc.URL, Transient: true,
				Err: fmt.Errorf("%w: %v", ErrCloneFailed, err)}
		}
		return &Checkout{Dir: dir, Location: loc, cleanup: remove}, nil

	default:
		return nil, &Error{Op: "fetch", Location: loc.String(), Err: fmt.Errorf("unknown location kind %d", loc.Kind)}
	}
}

// MoveFiles lists the .move files to verify under dir, sorted by path.
// A sources/ subdirectory is preferred; when requireSources is false and it
// is absent, .move files directly inside dir are used instead.
func MoveFiles(dir string, requireSources bool) ([]string, error) {
	searchDir := filepath.Join(dir, "sources")
	info, err := os.Stat(searchDir)
	switch {
	case err == nil && info.IsDir():
	case err != nil && !os.IsNotExist(err):
		return nil, &IOError{Op: "stat", Path: searchDir, Err: err}
	case requireSources:
		return nil, &Error{Op: "scan", Location: dir, Err: ErrMissingSources}
	default:
		searchDir = dir
	}

	entries, err := os.ReadDir(searchDir)
	if err != nil {
		return nil, &IOError{Op: "read dir", Path: searchDir, Err: err}
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".move") {
			continue
		}
		files = append(files, filepath.Join(searchDir, e.Name()))
	}
	if len(files) == 0 {
		return nil, &Error{Op: "scan", Location: searchDir, Err: ErrNoMoveFiles}
	}
	sort.Strings(files)
	return files, nil
}

// ReadFile reads a Move file, wrapping failures as IOError.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &IOError{Op: "read", Path: path, Err: err}
	}
	return string(data), nil
}
