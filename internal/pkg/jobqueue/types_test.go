package jobqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wishclip/wishclip/internal/pkg/notify"
)

func TestJobType(t *testing.T) {
	tests := []struct {
		name     string
		jobType  JobType
		expected string
	}{
		{"Remote Cleanup", JobTypeRemoteCleanup, "remote_cleanup"},
		{"Order Notify", JobTypeOrderNotify, "order_notify"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.jobType))
		})
	}
}

func TestJob_IsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		job       *Job
		retryable bool
	}{
		{
			name:      "Retries remaining",
			job:       &Job{Status: JobStatusFailed, RetryCount: 1, MaxRetries: 3},
			retryable: true,
		},
		{
			name:      "No retries remaining",
			job:       &Job{Status: JobStatusFailed, RetryCount: 3, MaxRetries: 3},
			retryable: false,
		},
		{
			name:      "Completed job",
			job:       &Job{Status: JobStatusCompleted, RetryCount: 1, MaxRetries: 3},
			retryable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.job.IsRetryable())
		})
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{Status: JobStatusPending, MaxRetries: DefaultMaxRetries}

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)

	job.MarkAsFailed("provider unreachable")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "provider unreachable", job.ErrorMsg)
	assert.Equal(t, 1, job.RetryCount)

	job.MarkAsRetrying()
	assert.Equal(t, JobStatusRetrying, job.Status)

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	require.NotNil(t, job.CompletedAt)
}

func TestRemoteCleanupJobPayload_RoundTrip(t *testing.T) {
	payload := RemoteCleanupJobPayload{
		CheckoutSessionID: "ch_xyz",
		PlanID:            "plan_abc",
	}

	restored, err := RemoteCleanupJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, payload, *restored)
}

func TestOrderNotifyJobPayload_RoundTrip(t *testing.T) {
	payload := OrderNotifyJobPayload{
		Notification: notify.OrderNotification{
			OrderID:   "WHOP-1725000000000-abcdef123",
			ProductID: 7,
			Email:     "buyer@example.com",
			Amount:    47.00,
			Status:    "completed",
			OrderURL:  "https://shop.example/order/WHOP-1725000000000-abcdef123",
		},
	}

	restored, err := OrderNotifyJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, payload, *restored)
}
