package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	// Test without cause
	err := New(CodeVideoDownload, "Test error")
	assert.Equal(t, "[1100] Test error", err.Error())

	// Test with cause
	cause := errors.New("underlying error")
	errWithCause := Wrap(CodeVideoDownload, "Test error", cause)
	assert.Contains(t, errWithCause.Error(), "underlying error")
	assert.Contains(t, errWithCause.Error(), "1100")
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(CodeTranscribeFailed, "Transcription failed", cause)

	// Test Unwrap
	assert.Equal(t, cause, err.Unwrap())

	// Test errors.Is
	assert.True(t, errors.Is(err, cause))
}

func TestIs(t *testing.T) {
	err := New(CodeCredentialInvalid, "bad key")

	assert.True(t, Is(err, CodeCredentialInvalid))
	assert.False(t, Is(err, CodeVideoDownload))

	// Test with regular error
	regularErr := errors.New("regular error")
	assert.False(t, Is(regularErr, CodeCredentialInvalid))
}

func TestIsThroughWrapping(t *testing.T) {
	// Classification must survive fmt.Errorf %w chains since stage functions
	// wrap collaborator errors before they reach the sequencer.
	inner := New(CodeCredentialInvalid, "401 from provider")
	wrapped := fmt.Errorf("audio analysis: %w", inner)

	assert.True(t, Is(wrapped, CodeCredentialInvalid))
	assert.Equal(t, CodeCredentialInvalid, GetCode(wrapped))
}

func TestGetCode(t *testing.T) {
	appErr := New(CodeMalformedResponse, "not json")
	assert.Equal(t, CodeMalformedResponse, GetCode(appErr))

	// Regular error returns CodeUnknown
	regularErr := errors.New("regular error")
	assert.Equal(t, CodeUnknown, GetCode(regularErr))
}

func TestGetMessage(t *testing.T) {
	appErr := New(CodeFileNotFound, "File not found")
	assert.Equal(t, "File not found", GetMessage(appErr))

	regularErr := errors.New("regular error message")
	assert.Equal(t, "regular error message", GetMessage(regularErr))
}

func TestGetDetail(t *testing.T) {
	appErr := WrapWithDetail(CodeCredentialInvalid, "Invalid API credential", "gemini", errors.New("401"))
	assert.Equal(t, "gemini", GetDetail(appErr))

	assert.Equal(t, "", GetDetail(errors.New("plain")))
}
