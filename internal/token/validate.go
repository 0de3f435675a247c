package token

import (
	"errors"
	"fmt"
	"strings"
)

// Parameter limits.
const (
	MinDecimals     = 1
	MaxDecimals     = 99
	MaxSymbolLength = 6
)

// ErrInvalidParams is wrapped by every ValidationError.
var ErrInvalidParams = errors.New("invalid token parameters")

// ValidationError reports the first parameter that breaks a domain rule.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidParams
}

// Validate checks p against the parameter rules. It does not canonicalize;
// callers accepting user input should call Canonicalize first.
func Validate(p Params) error {
	if p.Decimals < MinDecimals || p.Decimals > MaxDecimals {
		return &ValidationError{Field: "decimals",
			Reason: fmt.Sprintf("must be between %d and %d, got %d", MinDecimals, MaxDecimals, p.Decimals)}
	}

	if p.Symbol == "" {
		return &ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	if len(p.Symbol) > MaxSymbolLength {
		return &ValidationError{Field: "symbol",
			Reason: fmt.Sprintf("must be at most %d characters, got %d", MaxSymbolLength, len(p.Symbol))}
	}
	for i := 0; i < len(p.Symbol); i++ {
		if !isAlnum(p.Symbol[i]) {
			return &ValidationError{Field: "symbol", Reason: "must contain only letters and digits"}
		}
	}

	if p.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if err := validateText("name", p.Name); err != nil {
		return err
	}
	if p.Slug() == "" {
		return &ValidationError{Field: "name", Reason: "must contain at least one letter or digit"}
	}

	if err := validateText("description", p.Description); err != nil {
		return err
	}
	return nil
}

// validateText enforces the name/description character class: letters,
// digits, single spaces, commas and periods.
func validateText(field, s string) error {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAlnum(c) || c == ' ' || c == ',' || c == '.' {
			continue
		}
		return &ValidationError{Field: field,
			Reason: fmt.Sprintf("character %q is not allowed (letters, digits, spaces, commas and periods only)", c)}
	}
	if strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		return &ValidationError{Field: field, Reason: "must not start or end with a space"}
	}
	if strings.Contains(s, "  ") {
		return &ValidationError{Field: field, Reason: "must not contain consecutive spaces"}
	}
	return nil
}
