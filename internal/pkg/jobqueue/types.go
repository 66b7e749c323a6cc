package jobqueue

import (
	"encoding/json"
	"time"

	"github.com/wishclip/wishclip/internal/pkg/notify"
)

// JobType defines the type of job
type JobType string

const (
	// JobTypeRemoteCleanup deletes the ephemeral provider resources
	// (hosted checkout session, dynamic plan) after fulfillment.
	JobTypeRemoteCleanup JobType = "remote_cleanup"
	// JobTypeOrderNotify fires the notifyOrderCreated collaborator.
	JobTypeOrderNotify JobType = "order_notify"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// MarkAsProcessing sets processing state and timestamps
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.ProcessedAt = &now
	j.UpdatedAt = now
}

// MarkAsCompleted sets completed state and timestamps
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkAsFailed records a failure
func (j *Job) MarkAsFailed(errMsg string) {
	j.Status = JobStatusFailed
	j.ErrorMsg = errMsg
	j.RetryCount++
	j.UpdatedAt = time.Now()
}

// MarkAsRetrying flags the job for another attempt
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}

// IsRetryable reports whether the job has retry budget left
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// RemoteCleanupJobPayload contains the payload for remote cleanup jobs
type RemoteCleanupJobPayload struct {
	CheckoutSessionID string `json:"checkout_session_id"`
	PlanID            string `json:"plan_id"`
}

// ToMap converts the payload to a map for storage
func (p RemoteCleanupJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"checkout_session_id": p.CheckoutSessionID,
		"plan_id":             p.PlanID,
	}
}

// RemoteCleanupJobPayloadFromMap creates a payload from a map
func RemoteCleanupJobPayloadFromMap(data map[string]interface{}) (*RemoteCleanupJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload RemoteCleanupJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// OrderNotifyJobPayload contains the payload for order notification jobs
type OrderNotifyJobPayload struct {
	Notification notify.OrderNotification `json:"notification"`
}

// ToMap converts the payload to a map for storage
func (p OrderNotifyJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"notification": p.Notification,
	}
}

// OrderNotifyJobPayloadFromMap creates a payload from a map
func OrderNotifyJobPayloadFromMap(data map[string]interface{}) (*OrderNotifyJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload OrderNotifyJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}
