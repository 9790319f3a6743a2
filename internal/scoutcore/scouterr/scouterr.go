// Package scouterr defines the error taxonomy shared across the scoutcore
// pipeline. Every error surfaced to a CLI caller is one of these kinds,
// each carrying a short user-facing sentence.
package scouterr

import "fmt"

// Kind classifies a scoutcore error for retry/escalation decisions and for
// choosing the terminal-facing message.
type Kind string

const (
	// ConfigMissing means a required API key or config value was absent.
	ConfigMissing Kind = "config_missing"
	// ParseError means a source file could not be parsed by any extractor.
	ParseError Kind = "parse_error"
	// IOError means a disk read/write failed.
	IOError Kind = "io_error"
	// CacheCorrupt means an on-disk cache was unreadable; callers treat this
	// as an empty cache and log, never a hard failure.
	CacheCorrupt Kind = "cache_corrupt"
	// LLMTransport means a provider call failed at the network/HTTP layer.
	// Retriable within an attempt budget.
	LLMTransport Kind = "llm_transport"
	// LLMMalformed means a provider responded but the payload didn't parse
	// into the expected shape. Retriable within an attempt budget.
	LLMMalformed Kind = "llm_malformed"
	// GateEscalated is not an error - it is the gate's decision to bypass
	// compression. Kept in the taxonomy so callers can branch on it with
	// the same switch they use for real errors.
	GateEscalated Kind = "gate_escalated"
	// BudgetExceeded means a configured cost ceiling was crossed.
	BudgetExceeded Kind = "budget_exceeded"
)

// Error is a scoutcore error: a Kind plus a short user-facing sentence and
// an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Retriable reports whether an error of this kind should be retried within
// a bounded attempt budget before escalating/surfacing.
func (e *Error) Retriable() bool {
	return e.Kind == LLMTransport || e.Kind == LLMMalformed
}

// New builds an *Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error around cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// As reports whether err is a *Error and, if so, returns it.
func As(err error) (*Error, bool) {
	se, ok := err.(*Error)
	return se, ok
}
