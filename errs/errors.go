// Package errs defines the typed error kinds shared across zvote, following
// the teacher's api.Error convention (api/errors_definition.go) of a small
// struct carrying a stable kind plus a wrapped cause, rather than ad-hoc
// sentinel errors or panics.
package errs

import "fmt"

// Kind is one of the error categories named in the specification's error
// handling design. Kinds are stable identifiers: callers (the UI shell,
// tests) switch on Kind, never on the formatted message.
type Kind string

const (
	// InvalidEncoding covers bad bech32m, wrong HRP, wrong length, an
	// off-curve point, malformed hex, or malformed JSON.
	InvalidEncoding Kind = "invalid_encoding"
	// MissingProperty means a required property was absent from the store.
	MissingProperty Kind = "missing_property"
	// InsufficientFunds means the selected notes' total is below the
	// requested amount.
	InsufficientFunds Kind = "insufficient_funds"
	// SignatureRequired means the election requires spend-authorization
	// signatures and the caller did not supply a spending key.
	SignatureRequired Kind = "signature_required"
	// CryptoFail means a signature, proof, or value-balance check failed.
	CryptoFail Kind = "crypto_fail"
	// Io covers network, gRPC, or storage errors.
	Io Kind = "io"
	// Programmer means a byte length that is statically known to the
	// protocol failed a length check: a fatal, should-never-happen defect.
	Programmer Kind = "programmer"
)

// Error is the concrete error type returned by every zvote package. It
// always carries a Kind so callers can branch on category without string
// matching, and optionally wraps an underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error that wraps cause. If cause is already an *Error with
// the same kind and message is empty, it is returned unchanged to avoid
// nesting layers of identical context.
func Wrap(kind Kind, message string, cause error) *Error {
	if e, ok := cause.(*Error); ok && e.Kind == kind && message == "" {
		return e
	}
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err is (or wraps) an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if as(err, &e) {
		return e.Kind == kind
	}
	return false
}

// as mirrors errors.As without importing errors here, avoiding an import
// cycle footgun for packages that alias errs under a local name.
func as(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
