// Package errors provides standardized error handling for the gateway.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Generation / streaming
	ErrCodeGenerationTimeout ErrorCode = "GENERATION_TIMEOUT"
	ErrCodeGenerationFailed  ErrorCode = "GENERATION_FAILED"
	ErrCodeSpeechFailed      ErrorCode = "SPEECH_SYNTHESIS_FAILED"

	// Key-value store
	ErrCodeStoreConnectionFailed ErrorCode = "STORE_CONNECTION_FAILED"
	ErrCodeStoreReadFailed       ErrorCode = "STORE_READ_FAILED"
	ErrCodeStoreWriteFailed      ErrorCode = "STORE_WRITE_FAILED"
	ErrCodeRecordNotFound        ErrorCode = "RECORD_NOT_FOUND"

	// Accounts and admin console
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeDuplicateAccount   ErrorCode = "DUPLICATE_ACCOUNT"
	ErrCodeNotAuthenticated   ErrorCode = "NOT_AUTHENTICATED"

	// Request validation
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidCounty    ErrorCode = "INVALID_COUNTY"
	ErrCodeInvalidLanguage  ErrorCode = "INVALID_LANGUAGE"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// CodeOf extracts the ErrorCode from err, or empty when err is not a
// StandardError.
func CodeOf(err error) ErrorCode {
	var std *StandardError
	if errors.As(err, &std) {
		return std.Code
	}
	return ""
}

// IsRetryable reports whether err is a StandardError marked retryable.
func IsRetryable(err error) bool {
	var std *StandardError
	return errors.As(err, &std) && std.Retryable
}

// ==========================
// 2. Error Constructors
// ==========================

// NewGenerationTimeoutError creates a retryable generation deadline error.
func NewGenerationTimeoutError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationTimeout,
		Message:   "Generation request exceeded its deadline",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationFailedError creates a retryable generation transport error.
func NewGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationFailed,
		Message:   "Generation stream failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSpeechFailedError creates a non-retryable speech synthesis error.
func NewSpeechFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSpeechFailed,
		Message:   "Speech synthesis failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreConnectionFailedError creates a retryable store connection error.
func NewStoreConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreConnectionFailed,
		Message:   "Key-value store connection failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreReadFailedError creates a retryable store read error.
func NewStoreReadFailedError(key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreReadFailed,
		Message:   "Failed to read record from key-value store",
		Details:   fmt.Sprintf("key %s: %v", key, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreWriteFailedError creates a retryable store write error.
func NewStoreWriteFailedError(key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreWriteFailed,
		Message:   "Failed to write record to key-value store",
		Details:   fmt.Sprintf("key %s: %v", key, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecordNotFoundError creates a non-retryable missing-record error.
func NewRecordNotFoundError(kind, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordNotFound,
		Message:   fmt.Sprintf("%s not found", kind),
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidCredentialsError creates a non-retryable credential error.
func NewInvalidCredentialsError() *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidCredentials,
		Message:   "Invalid email or password",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateAccountError creates a non-retryable duplicate-signup error.
func NewDuplicateAccountError(email string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateAccount,
		Message:   "User with this email already exists",
		Details:   fmt.Sprintf("email: %s", email),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotAuthenticatedError creates a non-retryable session error.
func NewNotAuthenticatedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeNotAuthenticated,
		Message:   "Not authenticated",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable payload validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request payload validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidCountyError creates a non-retryable county filter error.
func NewInvalidCountyError(county string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidCounty,
		Message:   "Unknown county filter",
		Details:   fmt.Sprintf("county: %s", county),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidLanguageError creates a non-retryable language variant error.
func NewInvalidLanguageError(lang string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidLanguage,
		Message:   "Unknown language variant",
		Details:   fmt.Sprintf("language: %s", lang),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
