// Package errors provides standardized error handling for the lead-intake service.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Validation errors: rejected synchronously, never retried.
	ErrCodeMissingRequiredFields ErrorCode = "MISSING_REQUIRED_FIELDS"
	ErrCodeInvalidContactHandle  ErrorCode = "INVALID_CONTACT_HANDLE"
	ErrCodeInvalidFieldValue     ErrorCode = "INVALID_FIELD_VALUE"
	ErrCodeMalformedPayload      ErrorCode = "MALFORMED_PAYLOAD"

	// Authorization errors.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// Collaborator errors: logged and swallowed, retried once.
	ErrCodeEmailSendFailed    ErrorCode = "EMAIL_SEND_FAILED"
	ErrCodeSMSSendFailed      ErrorCode = "SMS_SEND_FAILED"
	ErrCodeSheetAppendFailed  ErrorCode = "SHEET_APPEND_FAILED"
	ErrCodeCRMSyncFailed      ErrorCode = "CRM_SYNC_FAILED"
	ErrCodeArchiveWriteFailed ErrorCode = "ARCHIVE_WRITE_FAILED"
	ErrCodeChatSendFailed     ErrorCode = "CHAT_SEND_FAILED"
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

// ==========================
// 2. Error Constructors
// ==========================

// NewMissingRequiredFieldsError creates a non-retryable validation error.
func NewMissingRequiredFieldsError(fields []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingRequiredFields,
		Message:   "Missing required fields.",
		Details:   fmt.Sprintf("fields: %s", strings.Join(fields, ", ")),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidContactHandleError creates a non-retryable validation error.
func NewInvalidContactHandleError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidContactHandle,
		Message:   "Invalid Indonesian WhatsApp number",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidFieldValueError creates a non-retryable validation error.
func NewInvalidFieldValueError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidFieldValue,
		Message:   "Field value outside the allowed set",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedPayloadError creates a non-retryable parse error.
func NewMalformedPayloadError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedPayload,
		Message:   "Request body is not valid JSON",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnauthorizedError creates a non-retryable authorization error.
func NewUnauthorizedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeUnauthorized,
		Message:   "Unauthorized",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmailSendFailedError creates a retryable collaborator error.
func NewEmailSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmailSendFailed,
		Message:   "Email notification delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSMSSendFailedError creates a retryable collaborator error.
func NewSMSSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSMSSendFailed,
		Message:   "SMS escalation delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSheetAppendFailedError creates a retryable collaborator error.
func NewSheetAppendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSheetAppendFailed,
		Message:   "Spreadsheet append failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCRMSyncFailedError creates a retryable collaborator error.
func NewCRMSyncFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCRMSyncFailed,
		Message:   "CRM contact sync failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewArchiveWriteFailedError creates a retryable collaborator error.
func NewArchiveWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeArchiveWriteFailed,
		Message:   "Lead archive write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewChatSendFailedError creates a retryable collaborator error.
func NewChatSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeChatSendFailed,
		Message:   "Operator chat notification failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. HTTP Mapping
// ==========================

// HTTPStatusMapping maps internal error codes to HTTP status codes.
// Collaborator errors are never surfaced to callers, so they map to 502
// only for completeness (operator tooling, logs).
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeMissingRequiredFields: http.StatusBadRequest,
	ErrCodeInvalidContactHandle:  http.StatusBadRequest,
	ErrCodeInvalidFieldValue:     http.StatusBadRequest,
	ErrCodeMalformedPayload:      http.StatusBadRequest,
	ErrCodeUnauthorized:          http.StatusUnauthorized,
	ErrCodeEmailSendFailed:       http.StatusBadGateway,
	ErrCodeSMSSendFailed:         http.StatusBadGateway,
	ErrCodeSheetAppendFailed:     http.StatusBadGateway,
	ErrCodeCRMSyncFailed:         http.StatusBadGateway,
	ErrCodeArchiveWriteFailed:    http.StatusBadGateway,
	ErrCodeChatSendFailed:        http.StatusBadGateway,
}

// HTTPStatus returns the HTTP status for an error code, defaulting to 500.
func HTTPStatus(code ErrorCode) int {
	if status, exists := HTTPStatusMapping[code]; exists {
		return status
	}
	return http.StatusInternalServerError
}

// GetRetryCount returns the recommended retry count per error code.
// Collaborator calls get exactly one retry; everything else none.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeEmailSendFailed,
		ErrCodeSMSSendFailed,
		ErrCodeSheetAppendFailed,
		ErrCodeCRMSyncFailed,
		ErrCodeArchiveWriteFailed,
		ErrCodeChatSendFailed:
		return 1
	default:
		return 0
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "UNAUTHORIZED"):
		return "AUTHORIZATION"
	case strings.Contains(codeStr, "MISSING") || strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "MALFORMED"):
		return "VALIDATION"
	default:
		return "COLLABORATOR"
	}
}
