// Package movegen renders Sui Move coin modules and package manifests from
// token parameters.
//
// Templates are embedded in the binary and parsed once per Renderer. Every
// substitution is strict: referencing a variable the renderer does not
// supply is a RenderError rather than an empty string.
package movegen

import (
	"embed"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/Klingon-tech/sui-tokengen/internal/token"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Template names.
const (
	CoinTemplate     = "coin.move.tmpl"
	CoinTestTemplate = "coin_test.move.tmpl"
	ManifestTemplate = "Move.toml.tmpl"
)

// Variant selects which coin template is rendered.
type Variant int

const (
	// Standard is the deployable coin module (sources/<slug>.move).
	Standard Variant = iota
	// Test is the companion unit-test module (tests/<slug>.move).
	Test
)

func (v Variant) String() string {
	switch v {
	case Standard:
		return "standard"
	case Test:
		return "test"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

func (v Variant) templateName() string {
	if v == Test {
		return CoinTestTemplate
	}
	return CoinTemplate
}

// Rendering errors.
var (
	ErrTemplate  = errors.New("template error")
	ErrRender    = errors.New("render error")
	ErrEmptySlug = errors.New("token name has no letters or digits")
)

// TemplateError reports a template that could not be found or compiled.
type TemplateError struct {
	Name string
	Err  error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s: %v", e.Name, e.Err)
}

func (e *TemplateError) Unwrap() []error {
	return []error{ErrTemplate, e.Err}
}

// RenderError reports a failure while executing a template, such as a
// reference to an undeclared variable.
type RenderError struct {
	Name string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Name, e.Err)
}

func (e *RenderError) Unwrap() []error {
	return []error{ErrRender, e.Err}
}

// Renderer executes the coin and manifest templates.
type Renderer struct {
	tmpl *template.Template
	now  func() time.Time
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock overrides the clock used for the manifest edition year.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// New parses the embedded templates.
func New(opts ...Option) (*Renderer, error) {
	tmpl, err := template.New("movegen").Option("missingkey=error").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, &TemplateError{Name: "templates/*.tmpl", Err: err}
	}
	return newRenderer(tmpl, opts...), nil
}

// NewFromStrings builds a Renderer from in-memory templates keyed by name.
// It is used to exercise alternative template sets.
func NewFromStrings(templates map[string]string, opts ...Option) (*Renderer, error) {
	root := template.New("movegen").Option("missingkey=error")
	for name, text := range templates {
		if _, err := root.New(name).Parse(text); err != nil {
			return nil, &TemplateError{Name: name, Err: err}
		}
	}
	return newRenderer(root, opts...), nil
}

func newRenderer(tmpl *template.Template, opts ...Option) *Renderer {
	r := &Renderer{tmpl: tmpl, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render produces Move source for p using the template selected by v.
// Parameters are rendered as given; domain validation is the caller's job.
func (r *Renderer) Render(p token.Params, v Variant) (string, error) {
	slug := p.Slug()
	if slug == "" {
		return "", ErrEmptySlug
	}
	vars := map[string]any{
		"module_name": slug,
		"token_type":  strings.ToUpper(slug),
		"name":        p.Name,
		"symbol":      p.Symbol,
		"decimals":    p.Decimals,
		"description": p.Description,
		"is_frozen":   p.IsFrozen,
		"is_test":     v == Test,
	}
	return r.execute(v.templateName(), vars)
}

// RenderManifest produces the Move.toml for a package.
func (r *Renderer) RenderManifest(packageName string, env token.Environment) (string, error) {
	vars := map[string]any{
		"package_name":  packageName,
		"year":          r.now().Year(),
		"framework_rev": env.FrameworkRev(),
	}
	return r.execute(ManifestTemplate, vars)
}

func (r *Renderer) execute(name string, vars map[string]any) (string, error) {
	t := r.tmpl.Lookup(name)
	if t == nil {
		return "", &TemplateError{Name: name, Err: errors.New("not found")}
	}
	var b strings.Builder
	if err := t.Execute(&b, vars); err != nil {
		return "", &RenderError{Name: name, Err: err}
	}
	return b.String(), nil
}

var defaultRenderer *Renderer

func init() {
	r, err := New()
	if err != nil {
		panic(fmt.Sprintf("movegen: embedded templates: %v", err))
	}
	defaultRenderer = r
}

// Default returns the renderer built from the embedded templates.
func Default() *Renderer {
	return defaultRenderer
}

// Render renders p with the embedded templates.
func Render(p token.Params, v Variant) (string, error) {
	return defaultRenderer.Render(p, v)
}

// RenderManifest renders a Move.toml with the embedded templates.
func RenderManifest(packageName string, env token.Environment) (string, error) {
	return defaultRenderer.RenderManifest(packageName, env)
}
