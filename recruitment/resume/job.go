package resume

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// JobStatuses lists every status in lifecycle order
var JobStatuses = []JobStatus{JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed}

// DefaultMaxAttempts bounds worker retries of a single job
const DefaultMaxAttempts = 3

// ParseJobStatus canonicalises a status string from any boundary. Backends
// have been seen sending "Processing" and "PROCESSING" for the same state.
func ParseJobStatus(s string) (JobStatus, bool) {
	status := JobStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return status, true
	default:
		return status, false
	}
}

// UnmarshalJSON normalises casing so comparisons against the constants hold
func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	status, _ := ParseJobStatus(raw)
	*s = status
	return nil
}

func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ResumeJob tracks one ingested attachment through parsing
type ResumeJob struct {
	ID       kernel.ResumeJobID `json:"id"`
	ClientID kernel.ClientID    `json:"clientId"`

	MessageID   string `json:"messageId"`
	Sender      string `json:"sender"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	FileSize    int64  `json:"fileSize"`
	FilePath    string `json:"filePath"`

	Status       JobStatus     `json:"status"`
	AttemptCount int           `json:"attemptCount"`
	MaxAttempts  int           `json:"maxAttempts"`
	Parsed       *ParsedResume `json:"parsed,omitempty"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
	Embedding    []float32     `json:"-"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	NextRetryAt *time.Time `json:"nextRetryAt,omitempty"`
}

// ============================================================================
// Domain Methods
// ============================================================================

// Start moves a pending job to processing
func (j *ResumeJob) Start(now time.Time) error {
	if j.Status != JobStatusPending {
		return ErrJobAlreadyProcessing().
			WithDetail("job_id", j.ID).
			WithDetail("status", j.Status)
	}
	j.Status = JobStatusProcessing
	j.StartedAt = &now
	j.NextRetryAt = nil
	j.touch(now)
	return nil
}

// Complete stores the parse result and ends the job
func (j *ResumeJob) Complete(parsed *ParsedResume, now time.Time) {
	j.Status = JobStatusCompleted
	j.Parsed = parsed
	j.ErrorMessage = ""
	j.CompletedAt = &now
	j.NextRetryAt = nil
	j.touch(now)
}

// Fail records an attempt failure. It returns true when the job may be
// retried, in which case it is back to pending.
func (j *ResumeJob) Fail(reason string, now time.Time) bool {
	j.AttemptCount++
	j.ErrorMessage = reason
	j.touch(now)

	if j.AttemptCount < j.MaxAttempts {
		j.Status = JobStatusPending
		return true
	}

	j.Abandon(reason, now)
	return false
}

// Abandon ends the job as failed whatever attempts remain
func (j *ResumeJob) Abandon(reason string, now time.Time) {
	j.Status = JobStatusFailed
	j.ErrorMessage = reason
	j.CompletedAt = &now
	j.NextRetryAt = nil
	j.touch(now)
}

// RetryDelay is the exponential backoff before the next attempt
func (j *ResumeJob) RetryDelay() time.Duration {
	return time.Duration(1<<uint(j.AttemptCount)) * time.Minute
}

func (j *ResumeJob) touch(now time.Time) {
	if now.Before(j.CreatedAt) {
		now = j.CreatedAt
	}
	j.UpdatedAt = now
}
