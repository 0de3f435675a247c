package service

import (
	"context"
	"errors"

	"github.com/Klingon-tech/sui-tokengen/internal/movegen"
	"github.com/Klingon-tech/sui-tokengen/internal/source"
	"github.com/Klingon-tech/sui-tokengen/internal/token"
	"github.com/Klingon-tech/sui-tokengen/internal/verify"
)

// Kind classifies a failure for callers that report it (CLI, RPC).
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindTemplate
	KindTampered
	KindSource
	KindIO
)

var kindNames = map[Kind]string{
	KindInternal:   "internal",
	KindValidation: "validation",
	KindTemplate:   "template",
	KindTampered:   "tampered",
	KindSource:     "source",
	KindIO:         "io",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "internal"
}

// ParseKind is the inverse of Kind.String. Unknown names map to KindInternal.
func ParseKind(s string) Kind {
	for k, name := range kindNames {
		if name == s {
			return k
		}
	}
	return KindInternal
}

// Classify maps err onto the error taxonomy. Unrecognised errors are
// KindInternal.
func Classify(err error) Kind {
	var ioErr *source.IOError
	var srcErr *source.Error
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, token.ErrInvalidParams):
		return KindValidation
	case errors.Is(err, verify.ErrTampered):
		return KindTampered
	case errors.Is(err, movegen.ErrTemplate), errors.Is(err, movegen.ErrRender):
		return KindTemplate
	case errors.As(err, &ioErr):
		return KindIO
	case errors.As(err, &srcErr):
		return KindSource
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return KindSource
	default:
		return KindInternal
	}
}

// IsTransient reports whether err is a fetch failure worth retrying.
func IsTransient(err error) bool {
	var srcErr *source.Error
	if errors.As(err, &srcErr) {
		return srcErr.Transient
	}
	return errors.Is(err, context.DeadlineExceeded)
}
