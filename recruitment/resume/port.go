package resume

import (
	"context"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
)

type JobRepository interface {
	Create(ctx context.Context, job *ResumeJob) error
	Update(ctx context.Context, job *ResumeJob) error
	GetByID(ctx context.Context, id kernel.ResumeJobID) (*ResumeJob, error)
	List(ctx context.Context, req ListJobsRequest, pagination kernel.PaginationOptions) (*kernel.Paginated[ResumeJob], error)

	// Claim atomically moves a pending job to processing. It fails with
	// ErrJobAlreadyProcessing when someone else got there first.
	Claim(ctx context.Context, id kernel.ResumeJobID) (*ResumeJob, error)

	// CountByStatus feeds the dashboard statistics
	CountByStatus(ctx context.Context) (map[JobStatus]int, error)
}

// JobQueue defines the interface for job queue operations
type JobQueue interface {
	// Enqueue adds a job to the queue
	Enqueue(ctx context.Context, jobID kernel.ResumeJobID) error

	// Dequeue gets a job from the queue (blocking with timeout). An empty id
	// means the timeout passed with nothing to do.
	Dequeue(ctx context.Context, timeout time.Duration) (kernel.ResumeJobID, error)

	// EnqueueDelayed schedules a job for later processing (for retries)
	EnqueueDelayed(ctx context.Context, jobID kernel.ResumeJobID, delay time.Duration) error

	// MoveDelayedToReady moves delayed jobs that are ready to the main queue
	MoveDelayedToReady(ctx context.Context) (int, error)

	// GetQueueSize returns the number of jobs in the queue
	GetQueueSize(ctx context.Context) (int64, error)

	// GetDelayedQueueSize returns the number of delayed jobs
	GetDelayedQueueSize(ctx context.Context) (int64, error)
}

// Parser extracts structured fields from a resume document
type Parser interface {
	Parse(ctx context.Context, doc Document) (*ParsedResume, error)
}

// Embedder turns resume text into a vector for similarity search
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// FileStore is the slice of fsx the ingestion pipeline needs
type FileStore interface {
	WriteFile(ctx context.Context, path string, data []byte) error
	ReadFile(ctx context.Context, path string) ([]byte, error)
	DeleteFile(ctx context.Context, path string) error
}
