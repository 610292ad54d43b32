package errors

import (
	"fmt"
)

// RetrievalError is the structured error type for the retrieval engine.
// It carries an error code, severity, and the underlying cause so that
// callers can branch on the failure class rather than on message text.
type RetrievalError struct {
	// Code is the unique error code (e.g., "ERR_201_INDEX_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Severity is the error severity level.
	Severity Severity

	// Cause is the underlying error that caused this error.
	Cause error

	// Recoverable indicates the caller has a documented recovery path
	// (rebuild the index, degrade to in-memory state, lexical-only search).
	Recoverable bool
}

// Error implements the error interface.
func (e *RetrievalError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *RetrievalError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with RetrievalError.
func (e *RetrievalError) Is(target error) bool {
	if t, ok := target.(*RetrievalError); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new RetrievalError with the given code and message.
// Severity and the recoverable flag are derived from the code.
func New(code string, message string, cause error) *RetrievalError {
	return &RetrievalError{
		Code:        code,
		Message:     message,
		Severity:    severityFromCode(code),
		Cause:       cause,
		Recoverable: isRecoverableCode(code),
	}
}

// EmptyCorpus creates the fatal build-time error for an empty document set.
func EmptyCorpus() *RetrievalError {
	return New(ErrCodeEmptyCorpus, "cannot build index over an empty corpus", nil)
}

// IndexNotFound creates the recoverable load-time error for a missing
// persisted index artifact. Callers are expected to trigger a rebuild.
func IndexNotFound(path string) *RetrievalError {
	return New(ErrCodeIndexNotFound, fmt.Sprintf("index artifact not found at %s", path), nil)
}

// InconsistentIndex creates the recoverable load-time error for a persisted
// index whose tables do not match the corpus it claims to cover.
func InconsistentIndex(message string) *RetrievalError {
	return New(ErrCodeInconsistentIndex, message, nil)
}

// Serialization creates the recoverable persistence error. The operation
// degrades to non-persistent in-memory state with a logged warning.
func Serialization(message string, cause error) *RetrievalError {
	return New(ErrCodeSerialization, message, cause)
}

// SemanticBackend creates the recoverable per-query error for a failed
// semantic delegate call. The search falls back to lexical-only ranking.
func SemanticBackend(cause error) *RetrievalError {
	return New(ErrCodeSemanticBackend, "semantic search backend failed", cause)
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	if re, ok := err.(*RetrievalError); ok {
		return re.Recoverable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if re, ok := err.(*RetrievalError); ok {
		return re.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a RetrievalError.
// Returns empty string if not a RetrievalError.
func GetCode(err error) string {
	if re, ok := err.(*RetrievalError); ok {
		return re.Code
	}
	return ""
}
