// Package coreerr defines the typed error taxonomy the ingestion pipeline
// raises: a fixed Code plus an optional wrapped cause, carried through
// fmt.Errorf("...: %w", err) chains like any other Go error.
package coreerr

import "fmt"

// Code is a machine-readable error code drawn from the pipeline's error
// policy table (fatal, filtered-silently, or dropped-and-counted).
type Code string

const (
	// IoError: file read/write failure. Fatal.
	IoError Code = "IO_ERROR"
	// YamlSyntaxError: malformed YAML document. Fatal; the message names the
	// document's index within its chunk, not the chunk's place in the file.
	YamlSyntaxError Code = "YAML_SYNTAX_ERROR"
	// DuplicateSymbolId: two workers produced the same symbol id. Fatal.
	DuplicateSymbolId Code = "DUPLICATE_SYMBOL_ID"
	// WorkerCrashed: a parse worker panicked. Fatal.
	WorkerCrashed Code = "WORKER_CRASHED"
	// PathOutsideProject: a file-URI is not under the project root. Filtered silently.
	PathOutsideProject Code = "PATH_OUTSIDE_PROJECT"
	// UnresolvedContainer: a reference's container id is not in the symbol map.
	// Dropped silently; the Container strategy keeps no count of these drops.
	UnresolvedContainer Code = "UNRESOLVED_CONTAINER"
	// SpanMismatch: the Span Provider could not match a Symbol. Counted, symbol stays span-less.
	SpanMismatch Code = "SPAN_MISMATCH"
	// IngestTimeout: a database mutation exceeded its deadline. Fatal.
	IngestTimeout Code = "INGEST_TIMEOUT"
	// CacheCorrupted: cache deserialisation failed. Discard cache, reparse.
	CacheCorrupted Code = "CACHE_CORRUPTED"
)

// Error is a structured pipeline error: a machine-readable Code, a
// human-readable message, and an optional wrapped cause.
type Error struct {
	code    Code
	message string
	cause   error
}

// New creates an Error without a cause.
func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap creates an Error that wraps a cause for logging/unwrapping.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{code: code, message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

// Unwrap returns the wrapped cause for errors.Is/errors.As chaining.
func (e *Error) Unwrap() error { return e.cause }

// Code returns the machine-readable error code.
func (e *Error) Code() Code { return e.code }

// Message returns the human-readable message.
func (e *Error) Message() string { return e.message }

// IsFatal reports whether errors of this code should abort the run.
func IsFatal(code Code) bool {
	switch code {
	case IoError, YamlSyntaxError, DuplicateSymbolId, WorkerCrashed, IngestTimeout:
		return true
	default:
		return false
	}
}
