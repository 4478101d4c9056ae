package resumeinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/recruitment/resume"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
)

type PostgresJobRepository struct {
	db *sqlx.DB
}

func NewPostgresJobRepository(db *sqlx.DB) resume.JobRepository {
	return &PostgresJobRepository{db: db}
}

// jobRow is the database model. Parsed is JSONB and status may arrive in
// any casing from older writers.
type jobRow struct {
	ID           string           `db:"id"`
	ClientID     string           `db:"client_id"`
	MessageID    sql.NullString   `db:"message_id"`
	Sender       sql.NullString   `db:"sender"`
	FileName     string           `db:"file_name"`
	ContentType  string           `db:"content_type"`
	FileSize     int64            `db:"file_size"`
	FilePath     string           `db:"file_path"`
	Status       string           `db:"status"`
	AttemptCount int              `db:"attempt_count"`
	MaxAttempts  int              `db:"max_attempts"`
	Parsed       []byte           `db:"parsed"`
	ErrorMessage sql.NullString   `db:"error_message"`
	Embedding    *pgvector.Vector `db:"embedding"`
	CreatedAt    time.Time        `db:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at"`
	StartedAt    *time.Time       `db:"started_at"`
	CompletedAt  *time.Time       `db:"completed_at"`
	NextRetryAt  *time.Time       `db:"next_retry_at"`
}

const jobColumns = `
	id, client_id, message_id, sender, file_name, content_type, file_size, file_path,
	status, attempt_count, max_attempts, parsed, error_message, embedding,
	created_at, updated_at, started_at, completed_at, next_retry_at`

func (r jobRow) toDomain() (*resume.ResumeJob, error) {
	status, _ := resume.ParseJobStatus(r.Status)
	job := &resume.ResumeJob{
		ID:           kernel.ResumeJobID(r.ID),
		ClientID:     kernel.ClientID(r.ClientID),
		MessageID:    r.MessageID.String,
		Sender:       r.Sender.String,
		FileName:     r.FileName,
		ContentType:  r.ContentType,
		FileSize:     r.FileSize,
		FilePath:     r.FilePath,
		Status:       status,
		AttemptCount: r.AttemptCount,
		MaxAttempts:  r.MaxAttempts,
		ErrorMessage: r.ErrorMessage.String,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		StartedAt:    r.StartedAt,
		CompletedAt:  r.CompletedAt,
		NextRetryAt:  r.NextRetryAt,
	}

	if len(r.Parsed) > 0 {
		var parsed resume.ParsedResume
		if err := json.Unmarshal(r.Parsed, &parsed); err != nil {
			return nil, fmt.Errorf("unmarshal parsed resume for job %s: %w", r.ID, err)
		}
		job.Parsed = &parsed
	}
	if r.Embedding != nil {
		job.Embedding = r.Embedding.Slice()
	}
	return job, nil
}

func embeddingArg(v []float32) any {
	if len(v) == 0 {
		return nil
	}
	return pgvector.NewVector(v)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Create creates a new job record
func (r *PostgresJobRepository) Create(ctx context.Context, job *resume.ResumeJob) error {
	query := `
		INSERT INTO resume_jobs (` + jobColumns + `
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.ClientID, nullString(job.MessageID), nullString(job.Sender),
		job.FileName, job.ContentType, job.FileSize, job.FilePath,
		string(job.Status), job.AttemptCount, job.MaxAttempts, job.Parsed,
		nullString(job.ErrorMessage), embeddingArg(job.Embedding),
		job.CreatedAt, job.UpdatedAt, job.StartedAt, job.CompletedAt, job.NextRetryAt,
	)
	if err != nil {
		return fmt.Errorf("create job %s: %w", job.ID, err)
	}
	return nil
}

// Update updates an existing job
func (r *PostgresJobRepository) Update(ctx context.Context, job *resume.ResumeJob) error {
	query := `
		UPDATE resume_jobs SET
			status = $2,
			attempt_count = $3,
			parsed = $4,
			error_message = $5,
			embedding = $6,
			updated_at = $7,
			started_at = $8,
			completed_at = $9,
			next_retry_at = $10
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		job.ID,
		string(job.Status),
		job.AttemptCount,
		job.Parsed,
		nullString(job.ErrorMessage),
		embeddingArg(job.Embedding),
		job.UpdatedAt,
		job.StartedAt,
		job.CompletedAt,
		job.NextRetryAt,
	)
	if err != nil {
		return fmt.Errorf("update job %s: %w", job.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update job %s: %w", job.ID, err)
	}
	if rows == 0 {
		return resume.ErrJobNotFound().WithDetail("job_id", job.ID)
	}
	return nil
}

// GetByID retrieves a job by ID
func (r *PostgresJobRepository) GetByID(ctx context.Context, id kernel.ResumeJobID) (*resume.ResumeJob, error) {
	var row jobRow
	err := r.db.GetContext(ctx, &row, `SELECT `+jobColumns+` FROM resume_jobs WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, resume.ErrJobNotFound().WithDetail("job_id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return row.toDomain()
}

// Claim flips pending to processing in one statement so the worker and a
// synchronous parse never both run the same job
func (r *PostgresJobRepository) Claim(ctx context.Context, id kernel.ResumeJobID) (*resume.ResumeJob, error) {
	query := `
		UPDATE resume_jobs SET
			status = 'processing',
			started_at = $2,
			updated_at = GREATEST($2, created_at),
			next_retry_at = NULL
		WHERE id = $1 AND lower(status) = 'pending'
		RETURNING ` + jobColumns

	var row jobRow
	err := r.db.GetContext(ctx, &row, query, id, time.Now().UTC())
	if errors.Is(err, sql.ErrNoRows) {
		current, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, resume.ErrJobAlreadyProcessing().
			WithDetail("job_id", id).
			WithDetail("status", current.Status)
	}
	if err != nil {
		return nil, fmt.Errorf("claim job %s: %w", id, err)
	}
	return row.toDomain()
}

// List retrieves jobs newest first
func (r *PostgresJobRepository) List(ctx context.Context, req resume.ListJobsRequest, pagination kernel.PaginationOptions) (*kernel.Paginated[resume.ResumeJob], error) {
	var (
		where []string
		args  []any
	)
	if req.Status != "" {
		status, _ := resume.ParseJobStatus(string(req.Status))
		args = append(args, string(status))
		where = append(where, fmt.Sprintf("lower(status) = $%d", len(args)))
	}
	if !req.ClientID.IsEmpty() {
		args = append(args, req.ClientID)
		where = append(where, fmt.Sprintf("client_id = $%d", len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM resume_jobs `+whereClause, args...); err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}

	p := pagination.Normalize()
	query := fmt.Sprintf(`SELECT %s FROM resume_jobs %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		jobColumns, whereClause, len(args)+1, len(args)+2)

	var rows []jobRow
	if err := r.db.SelectContext(ctx, &rows, query, append(args, p.PageSize, p.Offset())...); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	jobs := make([]resume.ResumeJob, 0, len(rows))
	for _, row := range rows {
		job, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return kernel.NewPaginated(jobs, p, total), nil
}

func (r *PostgresJobRepository) CountByStatus(ctx context.Context) (map[resume.JobStatus]int, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	query := `SELECT lower(status) AS status, COUNT(*) AS count FROM resume_jobs GROUP BY lower(status)`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count jobs by status: %w", err)
	}

	counts := make(map[resume.JobStatus]int, len(rows))
	for _, row := range rows {
		status, _ := resume.ParseJobStatus(row.Status)
		counts[status] += row.Count
	}
	return counts, nil
}
