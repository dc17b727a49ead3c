package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeAlertEmail     JobType = "alert_email"
	JobTypeWebhookArchive JobType = "webhook_archive"
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

// AlertEmailJobPayload contains the payload for alert notification mail jobs.
// One job per published alert; the processor resolves eligible recipients.
type AlertEmailJobPayload struct {
	AlertID   uint   `json:"alert_id"`
	AlertUUID string `json:"alert_uuid"`
}

// ToMap converts the payload to a map for storage
func (p AlertEmailJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"alert_id":   p.AlertID,
		"alert_uuid": p.AlertUUID,
	}
}

// AlertEmailJobPayloadFromMap creates a payload from a map
func AlertEmailJobPayloadFromMap(data map[string]interface{}) (*AlertEmailJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload AlertEmailJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// WebhookArchiveJobPayload contains the payload for webhook archival jobs
type WebhookArchiveJobPayload struct {
	WebhookEventID  uint   `json:"webhook_event_id"`
	Provider        string `json:"provider"`
	ProviderEventID string `json:"provider_event_id"`
}

// ToMap converts the payload to a map for storage
func (p WebhookArchiveJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"webhook_event_id":  p.WebhookEventID,
		"provider":          p.Provider,
		"provider_event_id": p.ProviderEventID,
	}
}

// WebhookArchiveJobPayloadFromMap creates a payload from a map
func WebhookArchiveJobPayloadFromMap(data map[string]interface{}) (*WebhookArchiveJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload WebhookArchiveJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
