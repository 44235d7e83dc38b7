package camunda

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	return &Client{
		config: &ClientConfig{
			RetryConfig: &RetryConfig{
				MaxRetries: 2,
				BaseDelay:  1 * time.Millisecond,
				MaxDelay:   5 * time.Millisecond,
			},
		},
	}
}

func TestExecuteWithRetry_SucceedsFirstAttempt(t *testing.T) {
	c := newTestClient()
	calls := 0

	result, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		calls++
		return "ok", nil
	}, "complete-job")

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
}

func TestExecuteWithRetry_RetriesTransientFailure(t *testing.T) {
	c := newTestClient()
	calls := 0

	result, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		calls++
		if calls < 3 {
			return nil, fmt.Errorf("rpc error: connection refused")
		}
		return "ok", nil
	}, "activate-jobs")

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_NonRetryableFailsImmediately(t *testing.T) {
	c := newTestClient()
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, fmt.Errorf("element not found")
	}, "throw-error")

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, err.Error(), "not found")
}

func TestExecuteWithRetry_ExhaustsRetries(t *testing.T) {
	c := newTestClient()
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, fmt.Errorf("deadline exceeded")
	}, "complete-job")

	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_ContextCancelled(t *testing.T) {
	c := newTestClient()
	c.config.RetryConfig.BaseDelay = 50 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	_, err := c.ExecuteWithRetry(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, fmt.Errorf("unavailable")
	}, "activate-jobs")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")
}

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"connection refused", fmt.Errorf("dial tcp: connection refused"), true},
		{"deadline exceeded", fmt.Errorf("context deadline exceeded"), true},
		{"unavailable", fmt.Errorf("rpc error: code = Unavailable"), true},
		{"broken pipe", fmt.Errorf("write: broken pipe"), true},
		{"business error", fmt.Errorf("invalid status action"), false},
		{"not found", fmt.Errorf("process definition not found"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, isRetryableZeebeError(tt.err))
		})
	}
}
