// Package errors provides structured error handling for kbsearch.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Corpus and build errors
//   - 2XX: Index persistence errors
//   - 3XX: Search backend errors
package errors

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates an unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates the operation failed but the caller can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Corpus/build errors (100-199)
	ErrCodeEmptyCorpus = "ERR_101_EMPTY_CORPUS"

	// Index persistence errors (200-299)
	ErrCodeIndexNotFound     = "ERR_201_INDEX_NOT_FOUND"
	ErrCodeInconsistentIndex = "ERR_202_INCONSISTENT_INDEX"
	ErrCodeSerialization     = "ERR_203_SERIALIZATION"

	// Search backend errors (300-399)
	ErrCodeSemanticBackend = "ERR_301_SEMANTIC_BACKEND"
)

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeEmptyCorpus:
		// No sensible index can exist over an empty corpus.
		return SeverityFatal
	case ErrCodeSerialization, ErrCodeSemanticBackend:
		// Persistence degrades to in-memory state; a failed semantic leg
		// degrades to lexical-only ranking.
		return SeverityWarning
	default:
		return SeverityError
	}
}

// isRecoverableCode checks if the caller has a documented recovery path.
func isRecoverableCode(code string) bool {
	switch code {
	case ErrCodeIndexNotFound, ErrCodeInconsistentIndex:
		return true // rebuild the index
	case ErrCodeSerialization, ErrCodeSemanticBackend:
		return true // degrade and continue
	default:
		return false
	}
}
