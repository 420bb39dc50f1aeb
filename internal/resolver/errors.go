package resolver

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrKind enumerates the root-cause categories from spec §7. It is deliberately
// a value, not a Go error type hierarchy, so callers can switch on it after
// unwrapping with errors.Cause.
type ErrKind uint8

const (
	NotFound ErrKind = iota
	PackagePathNotExported
	InvalidSpecifier
	ManifestParse
	RecursionLimit
	Io
)

func (k ErrKind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case PackagePathNotExported:
		return "package path not exported"
	case InvalidSpecifier:
		return "invalid specifier"
	case ManifestParse:
		return "manifest parse error"
	case RecursionLimit:
		return "recursion limit exceeded"
	case Io:
		return "i/o error"
	default:
		return "unknown"
	}
}

// ResolveError carries enough context to explain a failed resolve call: the
// root cause kind, the original request, and the base directory it was
// resolved against (spec §6: "Errors are strings carrying at minimum: the
// original request, the base directory, and the root cause kind").
type ResolveError struct {
	Kind    ErrKind
	Base    string
	Request string
	Detail  string
}

func (e *ResolveError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: cannot resolve %q from %q: %s", e.Kind, e.Request, e.Base, e.Detail)
	}
	return fmt.Sprintf("%s: cannot resolve %q from %q", e.Kind, e.Request, e.Base)
}

func newError(kind ErrKind, base, request, detail string) error {
	return errors.WithStack(&ResolveError{Kind: kind, Base: base, Request: request, Detail: detail})
}

// KindOf unwraps err (which may have been wrapped with github.com/pkg/errors)
// to recover its ResolveError.Kind, ok=false if err is not one of ours.
func KindOf(err error) (ErrKind, bool) {
	type causer interface{ Cause() error }
	for err != nil {
		if re, ok := err.(*ResolveError); ok {
			return re.Kind, true
		}
		c, ok := err.(causer)
		if !ok {
			return 0, false
		}
		err = c.Cause()
	}
	return 0, false
}
