package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesSeverityAndRecoverable(t *testing.T) {
	tests := []struct {
		name        string
		code        string
		severity    Severity
		recoverable bool
	}{
		{"empty corpus is fatal", ErrCodeEmptyCorpus, SeverityFatal, false},
		{"index not found is recoverable", ErrCodeIndexNotFound, SeverityError, true},
		{"inconsistent index is recoverable", ErrCodeInconsistentIndex, SeverityError, true},
		{"serialization degrades", ErrCodeSerialization, SeverityWarning, true},
		{"semantic backend degrades", ErrCodeSemanticBackend, SeverityWarning, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, "msg", nil)
			assert.Equal(t, tt.severity, err.Severity)
			assert.Equal(t, tt.recoverable, err.Recoverable)
		})
	}
}

func TestIs_MatchesByCode(t *testing.T) {
	err := IndexNotFound("/tmp/index.json")

	assert.True(t, stderrors.Is(err, New(ErrCodeIndexNotFound, "other message", nil)))
	assert.False(t, stderrors.Is(err, New(ErrCodeInconsistentIndex, "other message", nil)))
}

func TestUnwrap_PreservesCause(t *testing.T) {
	cause := fmt.Errorf("disk on fire")
	err := Serialization("failed to write bundle", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, cause, err.Unwrap())
}

func TestError_FormatsCodeAndMessage(t *testing.T) {
	err := EmptyCorpus()
	assert.Equal(t, "[ERR_101_EMPTY_CORPUS] cannot build index over an empty corpus", err.Error())
}

func TestHelpers_NilAndForeignErrors(t *testing.T) {
	assert.False(t, IsRecoverable(nil))
	assert.False(t, IsFatal(nil))
	assert.Empty(t, GetCode(stderrors.New("plain")))
	assert.True(t, IsFatal(EmptyCorpus()))
	assert.True(t, IsRecoverable(SemanticBackend(stderrors.New("down"))))
}
