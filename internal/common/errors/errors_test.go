package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewMatchScoreFailedError(fmt.Errorf("profile query failed"))

	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "MATCH_SCORE_FAILED", bpmnErr.Code)
	assert.Equal(t, "Match score computation failed", bpmnErr.Message)
	assert.True(t, bpmnErr.Retryable)
	assert.Equal(t, 3, bpmnErr.Retries)
	assert.Equal(t, "MATCH_SCORE_FAILED", bpmnErr.ErrorVariables["originalErrorCode"])
}

func TestConvertToBPMNError_NonRetryableGetsZeroRetries(t *testing.T) {
	stdErr := NewInvalidStatusActionError("declined", "interested")

	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "INVALID_STATUS_ACTION", bpmnErr.Code)
	assert.False(t, bpmnErr.Retryable)
	assert.Equal(t, 0, bpmnErr.Retries)
}

func TestBPMNError_ToErrorVariables(t *testing.T) {
	bpmnErr := &BPMNError{
		Code:      "INBOX_FETCH_FAILED",
		Message:   "Inbox fetch failed",
		Details:   "connection reset",
		Retryable: true,
		ErrorVariables: map[string]interface{}{
			"userId": "founder-1",
		},
	}

	vars := bpmnErr.ToErrorVariables()

	require.Equal(t, "INBOX_FETCH_FAILED", vars["errorCode"])
	require.Equal(t, "Inbox fetch failed", vars["errorMessage"])
	require.Equal(t, true, vars["retryable"])
	require.Equal(t, "founder-1", vars["userId"])
}

func TestGetRetryCount(t *testing.T) {
	assert.Equal(t, 3, GetRetryCount(ErrCodeFeedAssemblyFailed))
	assert.Equal(t, 2, GetRetryCount(ErrCodeQueryTimeout))
	assert.Equal(t, 0, GetRetryCount(ErrCodeInvalidInvestedAmount))
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeNotificationSendFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeProfileNotFound))
}

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected string
	}{
		{ErrCodePitchCheckFailed, "PROFILE"},
		{ErrCodeMatchUpsertFailed, "MATCHING"},
		{ErrCodeConversationFailed, "ENGAGEMENT"},
		{ErrCodeQueryExecutionFailed, "DATABASE"},
		{ErrorCode("SOMETHING_ELSE"), "OTHER"},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, GetErrorCategory(tt.code))
		})
	}
}
