// Package errors provides structured error handling for the application.
// It defines AppError type with error codes for consistent API responses
// and for the pipeline sequencer's failure classification.
package errors

import (
	"errors"
	"fmt"
)

// Error codes organized by category
const (
	// General errors (1000-1099)
	CodeSuccess       = 0
	CodeUnknown       = 1000
	CodeInvalidParams = 1001
	CodeNotFound      = 1002
	CodeUnauthorized  = 1003
	CodeCanceled      = 1004

	// Media acquisition errors (1100-1199)
	CodeVideoDownload  = 1100
	CodeAudioExtract   = 1101
	CodeVideoNotFound  = 1102
	CodeUnsupportedURL = 1103

	// Scene/frame processing errors (1200-1299)
	CodeSceneDetectFailed  = 1200
	CodeFrameExtractFailed = 1201
	CodeBrightnessFailed   = 1202

	// AI analysis errors (1300-1399)
	CodeCredentialInvalid = 1300
	CodeMalformedResponse = 1301
	CodeAnalysisFailed    = 1302
	CodeTranscribeFailed  = 1303
	CodeLLMQuotaExceeded  = 1304

	// Report errors (1400-1499)
	CodeReportFailed = 1400
	CodeScoreInvalid = 1401

	// Storage errors (1500-1599)
	CodeDBError         = 1500
	CodeFileNotFound    = 1501
	CodeFileWriteError  = 1502
	CodeArtifactMissing = 1503
)

// AppError represents a structured application error.
// Detail carries context such as the failing provider ("openai", "gemini")
// so a credential failure can be surfaced against the right key.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code int, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithDetail wraps an error with additional detail
func WrapWithDetail(code int, message string, detail string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Detail:  detail,
		Cause:   cause,
	}
}

// Is checks if the target error is an AppError with the specified code
func Is(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts error code from error, returns CodeUnknown if not AppError
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetMessage extracts message from error
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// GetDetail extracts the detail field, empty for plain errors
func GetDetail(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Detail
	}
	return ""
}

// Predefined common errors
var (
	ErrInvalidParams = New(CodeInvalidParams, "Invalid parameters")
	ErrNotFound      = New(CodeNotFound, "Resource not found")
	ErrUnauthorized  = New(CodeUnauthorized, "Unauthorized")

	ErrVideoDownload  = New(CodeVideoDownload, "Video download failed")
	ErrAudioExtract   = New(CodeAudioExtract, "Audio extraction failed")
	ErrUnsupportedURL = New(CodeUnsupportedURL, "Unsupported video URL")

	ErrSceneDetectFailed  = New(CodeSceneDetectFailed, "Scene detection failed")
	ErrFrameExtractFailed = New(CodeFrameExtractFailed, "Frame extraction failed")

	ErrCredentialInvalid = New(CodeCredentialInvalid, "Invalid API credential")
	ErrMalformedResponse = New(CodeMalformedResponse, "Malformed AI response")
	ErrTranscribeFailed  = New(CodeTranscribeFailed, "Transcription failed")

	ErrDBError         = New(CodeDBError, "Database error")
	ErrFileNotFound    = New(CodeFileNotFound, "File not found")
	ErrArtifactMissing = New(CodeArtifactMissing, "Upstream artifact missing")
)
