// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeProfileNotFound  ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodeMatchNotFound    ErrorCode = "MATCH_NOT_FOUND"
	ErrCodeMatchScoreFailed ErrorCode = "MATCH_SCORE_FAILED"

	ErrCodeFeedAssemblyFailed ErrorCode = "FEED_ASSEMBLY_FAILED"
	ErrCodeMatchUpsertFailed  ErrorCode = "MATCH_UPSERT_FAILED"

	ErrCodeInvalidStatusAction   ErrorCode = "INVALID_STATUS_ACTION"
	ErrCodeInvalidInvestedAmount ErrorCode = "INVALID_INVESTED_AMOUNT"
	ErrCodeConversationFailed    ErrorCode = "CONVERSATION_FAILED"
	ErrCodeInboxFetchFailed      ErrorCode = "INBOX_FETCH_FAILED"

	ErrCodePitchCheckFailed    ErrorCode = "PITCH_CHECK_FAILED"
	ErrCodeTractionQueryFailed ErrorCode = "TRACTION_QUERY_FAILED"
	ErrCodeInvalidFilterFormat ErrorCode = "INVALID_FILTER_FORMAT"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
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
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewProfileNotFoundError creates a non-retryable missing profile error.
func NewProfileNotFoundError(kind, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileNotFound,
		Message:   fmt.Sprintf("%s profile not found", kind),
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMatchNotFoundError creates a non-retryable missing match error.
func NewMatchNotFoundError(founderID, investorID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMatchNotFound,
		Message:   "Match record not found",
		Details:   fmt.Sprintf("founderId: %s, investorId: %s", founderID, investorID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMatchScoreFailedError creates a retryable scoring pipeline error.
func NewMatchScoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMatchScoreFailed,
		Message:   "Match score computation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewFeedAssemblyFailedError creates a retryable feed assembly error.
func NewFeedAssemblyFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFeedAssemblyFailed,
		Message:   "Deal feed assembly failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMatchUpsertFailedError creates a retryable match persistence error.
func NewMatchUpsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMatchUpsertFailed,
		Message:   "Match persistence failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidStatusActionError creates a non-retryable transition error.
func NewInvalidStatusActionError(current, action string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidStatusAction,
		Message:   "Status action not allowed from current state",
		Details:   fmt.Sprintf("current: %s, action: %s", current, action),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInvestedAmountError creates a non-retryable amount validation error.
func NewInvalidInvestedAmountError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInvestedAmount,
		Message:   "Invested amount is missing or not positive",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConversationFailedError creates a retryable conversation side-effect error.
func NewConversationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeConversationFailed,
		Message:   "Conversation create or delete failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInboxFetchFailedError creates a retryable inbox query error.
func NewInboxFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInboxFetchFailed,
		Message:   "Inbox fetch failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPitchCheckFailedError creates a retryable pitch readiness error.
func NewPitchCheckFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePitchCheckFailed,
		Message:   "Pitch readiness check failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTractionQueryFailedError creates a retryable traction history error.
func NewTractionQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTractionQueryFailed,
		Message:   "Traction history query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidFilterFormatError creates a non-retryable filter format error.
func NewInvalidFilterFormatError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidFilterFormat,
		Message:   "Invalid filter format",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes. The
// two sets are intentionally identical so process models can reference
// the documented codes directly.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeProfileNotFound:          "PROFILE_NOT_FOUND",
	ErrCodeMatchNotFound:            "MATCH_NOT_FOUND",
	ErrCodeMatchScoreFailed:         "MATCH_SCORE_FAILED",
	ErrCodeFeedAssemblyFailed:       "FEED_ASSEMBLY_FAILED",
	ErrCodeMatchUpsertFailed:        "MATCH_UPSERT_FAILED",
	ErrCodeInvalidStatusAction:      "INVALID_STATUS_ACTION",
	ErrCodeInvalidInvestedAmount:    "INVALID_INVESTED_AMOUNT",
	ErrCodeConversationFailed:       "CONVERSATION_FAILED",
	ErrCodeInboxFetchFailed:         "INBOX_FETCH_FAILED",
	ErrCodePitchCheckFailed:         "PITCH_CHECK_FAILED",
	ErrCodeTractionQueryFailed:      "TRACTION_QUERY_FAILED",
	ErrCodeInvalidFilterFormat:      "INVALID_FILTER_FORMAT",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:     "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:             "QUERY_TIMEOUT",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeMatchScoreFailed,
		ErrCodeFeedAssemblyFailed,
		ErrCodeMatchUpsertFailed,
		ErrCodeConversationFailed,
		ErrCodeInboxFetchFailed,
		ErrCodePitchCheckFailed,
		ErrCodeTractionQueryFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeNotificationSendFailed:
		return 3 // Retryable technical errors

	case ErrCodeQueryTimeout:
		return 2 // Partial retry for timeouts

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PROFILE") || strings.Contains(codeStr, "PITCH") || strings.Contains(codeStr, "TRACTION"):
		return "PROFILE"
	case strings.Contains(codeStr, "MATCH") || strings.Contains(codeStr, "FEED") || strings.Contains(codeStr, "STATUS"):
		return "MATCHING"
	case strings.Contains(codeStr, "CONVERSATION") || strings.Contains(codeStr, "INBOX") || strings.Contains(codeStr, "NOTIFICATION"):
		return "ENGAGEMENT"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
