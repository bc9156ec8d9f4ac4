// Package errors provides the structured error taxonomy used across the
// wallet core: a small set of kinds callers can branch on, plus helpers for
// wrapping and annotating errors without losing that kind.
//
//nolint:revive // package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an error into one of the categories callers branch on.
// Exit codes and user-facing handling key off Kind, never off message text.
type Kind string

const (
	InvalidInput       Kind = "INVALID_INPUT"
	InvalidChecksum    Kind = "INVALID_CHECKSUM"
	CryptoFailure      Kind = "CRYPTO_FAILURE"
	NetworkUnavailable Kind = "NETWORK_UNAVAILABLE"
	Timeout            Kind = "TIMEOUT"
	ProtocolError      Kind = "PROTOCOL_ERROR"
	ServerError        Kind = "SERVER_ERROR"
	PersistenceFailure Kind = "PERSISTENCE_FAILURE"
	NotFound           Kind = "NOT_FOUND"
	InsufficientFunds  Kind = "INSUFFICIENT_FUNDS"
)

// Exit codes for command-line surfaces.
const (
	ExitSuccess  = 0
	ExitGeneral  = 1
	ExitInput    = 2
	ExitNotFound = 3
	ExitFunds    = 4
	ExitNetwork  = 5
)

var exitCodes = map[Kind]int{
	InvalidInput:       ExitInput,
	InvalidChecksum:    ExitInput,
	CryptoFailure:      ExitGeneral,
	NetworkUnavailable: ExitNetwork,
	Timeout:            ExitNetwork,
	ProtocolError:      ExitNetwork,
	ServerError:        ExitNetwork,
	PersistenceFailure: ExitGeneral,
	NotFound:           ExitNotFound,
	InsufficientFunds:  ExitFunds,
}

// CoreError is the structured error type threaded through the wallet
// core. Details carries machine-readable context (e.g. the server's
// rejection payload on a ServerError); Cause is the wrapped underlying
// error, if any.
type CoreError struct {
	Kind    Kind
	Message string
	Details map[string]string
	Cause   error
}

func (e *CoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CoreError) Unwrap() error {
	return e.Cause
}

// Is reports equality by Kind, so errors.Is matches across wrapping.
func (e *CoreError) Is(target error) bool {
	var t *CoreError
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// New creates a CoreError of the given kind.
func New(kind Kind, message string) *CoreError {
	return &CoreError{Kind: kind, Message: message}
}

// Newf creates a CoreError of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *CoreError {
	return &CoreError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap adds context to err without losing its Kind: if err is already a
// *CoreError the wrapped result keeps its Kind and Details, only the
// message changes. Errors with no Kind wrap as ProtocolError, since that's
// the catch-all for "something in the stack returned an error we didn't
// specifically classify."
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)

	var we *CoreError
	if errors.As(err, &we) {
		return &CoreError{
			Kind:    we.Kind,
			Message: fmt.Sprintf("%s: %s", msg, we.Message),
			Details: we.Details,
			Cause:   err,
		}
	}
	return &CoreError{Kind: ProtocolError, Message: msg, Cause: err}
}

// WrapKind is like Wrap but assigns an explicit Kind regardless of err's
// own, for call sites that reclassify an underlying error (e.g. a raw
// network timeout surfacing through the Electrum client as Timeout).
func WrapKind(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &CoreError{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: err}
}

// WithDetails attaches machine-readable context, e.g. a JSON-RPC error
// payload on a ServerError.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}
	var we *CoreError
	if errors.As(err, &we) {
		return &CoreError{Kind: we.Kind, Message: we.Message, Details: details, Cause: we.Cause}
	}
	return &CoreError{Kind: ProtocolError, Message: err.Error(), Details: details, Cause: err}
}

// KindOf returns the Kind of err, or "" if err is nil or not a *CoreError.
func KindOf(err error) Kind {
	var we *CoreError
	if errors.As(err, &we) {
		return we.Kind
	}
	return ""
}

// ExitCode maps an error to a CLI exit code via its Kind.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if code, ok := exitCodes[KindOf(err)]; ok {
		return code
	}
	return ExitGeneral
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Sentinel instances for the common cases callers compare against
// directly rather than constructing inline.
var (
	ErrWalletNotFound    = New(NotFound, "wallet not found")
	ErrAddressNotFound   = New(NotFound, "address not found")
	ErrTxNotFound        = New(NotFound, "transaction not found")
	ErrWalletExists      = New(InvalidInput, "wallet already exists")
	ErrInvalidMnemonic   = New(InvalidChecksum, "invalid mnemonic phrase")
	ErrInvalidAddress    = New(InvalidInput, "invalid address")
	ErrInsufficientFunds = New(InsufficientFunds, "insufficient funds for transaction")
)
