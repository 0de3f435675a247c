// Package verify decides whether a Move coin module is exactly what the
// generator would emit for the parameters the module itself declares.
//
// The check is a self-consistency round trip: extract the declared
// parameters, re-render the standard template, normalize both texts and
// compare. It detects any deviation from the canonical template shape; it
// cannot detect a contract that was deliberately built to conform to it.
package verify

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/Klingon-tech/sui-tokengen/internal/movegen"
	"github.com/Klingon-tech/sui-tokengen/internal/token"
)

// ErrTampered is returned when a module does not match its regeneration.
var ErrTampered = errors.New("content mismatch detected")

// Report describes one verification.
type Report struct {
	Params      token.Params // Parameters extracted from the candidate.
	Authentic   bool
	Fingerprint string // BLAKE3 of the normalized candidate.
	Expected    string // BLAKE3 of the normalized regeneration; empty if none was rendered.
}

// Verifier checks candidates against a renderer's standard template.
type Verifier struct {
	renderer *movegen.Renderer
}

// New returns a Verifier using r. A nil r selects the embedded templates.
func New(r *movegen.Renderer) *Verifier {
	if r == nil {
		r = movegen.Default()
	}
	return &Verifier{renderer: r}
}

// Check runs the round trip and returns a report. A mismatch is reported
// both through Report.Authentic and an error wrapping ErrTampered.
func (v *Verifier) Check(src string) (*Report, error) {
	params := Extract(src)
	normalized := Normalize(src)
	report := &Report{
		Params:      params,
		Fingerprint: digest(normalized),
	}

	regenerated, err := v.renderer.Render(params, movegen.Standard)
	if err != nil {
		if errors.Is(err, movegen.ErrEmptySlug) {
			return report, fmt.Errorf("%w: no coin declaration found", ErrTampered)
		}
		return report, fmt.Errorf("regenerate: %w", err)
	}

	expected := Normalize(regenerated)
	report.Expected = digest(expected)
	if normalized != expected {
		return report, ErrTampered
	}
	report.Authentic = true
	return report, nil
}

// Verify returns nil when src is authentic and an error wrapping
// ErrTampered otherwise.
func (v *Verifier) Verify(src string) error {
	_, err := v.Check(src)
	return err
}

// Verify checks src with the embedded templates.
func Verify(src string) error {
	return New(nil).Verify(src)
}

// Check checks src with the embedded templates.
func Check(src string) (*Report, error) {
	return New(nil).Check(src)
}

// Fingerprint returns the hex BLAKE3-256 digest of the normalized text.
func Fingerprint(text string) string {
	return digest(Normalize(text))
}

func digest(normalized string) string {
	sum := blake3.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
