package resumesrv

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/errx"
	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/pkg/logx"
	"github.com/Abraxas-365/talentdesk/recruitment/events"
	"github.com/Abraxas-365/talentdesk/recruitment/resume"
	"github.com/google/uuid"
)

const (
	// DefaultParseWait bounds how long a synchronous parse waits on a job
	// another caller is processing
	DefaultParseWait    = 20 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
)

type Service struct {
	jobs     resume.JobRepository
	queue    resume.JobQueue
	files    resume.FileStore
	parser   resume.Parser
	embedder resume.Embedder
	events   events.Publisher

	now          func() time.Time
	parseWait    time.Duration
	pollInterval time.Duration
}

type Option func(*Service)

// WithEmbedder enables embedding generation for completed jobs
func WithEmbedder(e resume.Embedder) Option {
	return func(s *Service) { s.embedder = e }
}

func WithEvents(p events.Publisher) Option {
	return func(s *Service) { s.events = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithParseWait tunes how a synchronous parse waits on a busy job
func WithParseWait(wait, poll time.Duration) Option {
	return func(s *Service) {
		s.parseWait = wait
		s.pollInterval = poll
	}
}

func NewService(
	jobs resume.JobRepository,
	queue resume.JobQueue,
	files resume.FileStore,
	parser resume.Parser,
	opts ...Option,
) *Service {
	s := &Service{
		jobs:         jobs,
		queue:        queue,
		files:        files,
		parser:       parser,
		now:          time.Now,
		parseWait:    DefaultParseWait,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ============================================================================
// Ingestion
// ============================================================================

type decodedAttachment struct {
	name        string
	contentType string
	data        []byte
}

// Ingest stores every attachment of an email envelope and queues one job
// per attachment. Jobs are queued only once every attachment is stored and
// recorded. A failure part way removes the files already stored and marks
// jobs already recorded as failed.
func (s *Service) Ingest(ctx context.Context, req resume.IngestRequest) (*resume.IngestResponse, error) {
	if req.ClientID.IsEmpty() {
		return nil, resume.ErrClientRequired()
	}
	if len(req.Email.Attachments) == 0 {
		return nil, resume.ErrInvalidEnvelope().WithMessage("Email has no attachments")
	}

	messageID := strings.TrimSpace(req.Email.MessageID)
	if messageID == "" {
		messageID = uuid.NewString()
	}

	decoded := make([]decodedAttachment, 0, len(req.Email.Attachments))
	for i, att := range req.Email.Attachments {
		d, err := decodeAttachment(i, att)
		if err != nil {
			return nil, err
		}
		decoded = append(decoded, d)
	}

	logx.Infof("Ingesting %d attachment(s): ClientID=%s, MessageID=%s", len(decoded), req.ClientID, messageID)

	jobs := make([]*resume.ResumeJob, 0, len(decoded))
	for _, att := range decoded {
		job, err := s.createJob(ctx, req.ClientID, messageID, req.Email.Sender, att)
		if err != nil {
			s.abortIngest(ctx, jobs)
			return nil, err
		}
		jobs = append(jobs, job)
	}

	jobIDs := make([]kernel.ResumeJobID, 0, len(jobs))
	for _, job := range jobs {
		// A job that misses the queue stays pending; the synchronous parse
		// endpoint can still claim it
		if err := s.queue.Enqueue(ctx, job.ID); err != nil {
			logx.Errorf("Failed to enqueue job %s: %v", job.ID, err)
		}
		logx.Infof("Job queued: JobID=%s, File=%s", job.ID, job.FileName)
		events.Emit(ctx, s.events, events.TypeResumeJobUpdated, job)
		jobIDs = append(jobIDs, job.ID)
	}

	return &resume.IngestResponse{
		Success: true,
		Message: fmt.Sprintf("Queued %d resume(s) for parsing", len(jobIDs)),
		JobIDs:  jobIDs,
	}, nil
}

func decodeAttachment(index int, att resume.Attachment) (decodedAttachment, error) {
	name := strings.TrimSpace(att.FileName)
	if name == "" {
		name = fmt.Sprintf("attachment-%d", index+1)
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(att.ContentBase64))
	if err != nil {
		return decodedAttachment{}, resume.ErrRegistry.NewWithCause(resume.CodeInvalidAttachment, err).
			WithDetail("file_name", name).
			WithDetail("index", index)
	}

	contentType := att.ContentType
	if strings.TrimSpace(contentType) == "" {
		contentType = http.DetectContentType(data)
	}
	contentType = resume.NormalizeContentType(contentType)

	if err := resume.ValidateUpload(name, contentType, int64(len(data))); err != nil {
		return decodedAttachment{}, err
	}
	return decodedAttachment{name: name, contentType: contentType, data: data}, nil
}

func (s *Service) createJob(ctx context.Context, clientID kernel.ClientID, messageID, sender string, att decodedAttachment) (*resume.ResumeJob, error) {
	jobID := kernel.NewResumeJobID(uuid.NewString())
	filePath := path.Join("resumes", string(clientID), string(jobID), safeFileName(att.name))

	if err := s.files.WriteFile(ctx, filePath, att.data); err != nil {
		return nil, resume.ErrRegistry.NewWithCause(resume.CodeFileStoreFailed, err).
			WithDetail("file_name", att.name)
	}

	now := s.now().UTC()
	job := &resume.ResumeJob{
		ID:          jobID,
		ClientID:    clientID,
		MessageID:   messageID,
		Sender:      sender,
		FileName:    att.name,
		ContentType: att.contentType,
		FileSize:    int64(len(att.data)),
		FilePath:    filePath,
		Status:      resume.JobStatusPending,
		MaxAttempts: resume.DefaultMaxAttempts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		if delErr := s.files.DeleteFile(ctx, filePath); delErr != nil {
			logx.Warnf("Failed to remove orphaned file %s: %v", filePath, delErr)
		}
		return nil, resume.ErrRegistry.NewWithCause(resume.CodeJobCreationFailed, err).
			WithDetail("file_name", att.name)
	}

	return job, nil
}

// abortIngest undoes the jobs of an envelope that failed part way
func (s *Service) abortIngest(ctx context.Context, jobs []*resume.ResumeJob) {
	for _, job := range jobs {
		if err := s.files.DeleteFile(ctx, job.FilePath); err != nil {
			logx.Warnf("Failed to remove file %s of aborted job %s: %v", job.FilePath, job.ID, err)
		}
		job.Abandon("Ingestion aborted: another attachment could not be stored", s.now().UTC())
		if err := s.jobs.Update(ctx, job); err != nil {
			logx.Errorf("Failed to mark aborted job %s as failed: %v", job.ID, err)
		}
	}
}

func safeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." || name == "/" {
		return "resume"
	}
	return name
}

// ============================================================================
// Parsing
// ============================================================================

// Parse returns the parse result for a job, parsing it now when nobody
// has. A job being processed elsewhere is awaited for a bounded time.
func (s *Service) Parse(ctx context.Context, id kernel.ResumeJobID) (*resume.ParseResponse, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if job.Status == resume.JobStatusPending {
		claimed, err := s.jobs.Claim(ctx, id)
		switch {
		case err == nil:
			s.run(ctx, claimed)
			return parseResponse(claimed), nil
		case errx.IsCode(err, resume.CodeJobAlreadyProcessing):
			// lost the race to the worker; fall through to waiting
		default:
			return nil, err
		}
	}

	job, err = s.awaitTerminal(ctx, id)
	if err != nil {
		return nil, err
	}
	return parseResponse(job), nil
}

// GetParseResult reports the stored result without doing any work
func (s *Service) GetParseResult(ctx context.Context, id kernel.ResumeJobID) (*resume.ParseResponse, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return parseResponse(job), nil
}

func (s *Service) awaitTerminal(ctx context.Context, id kernel.ResumeJobID) (*resume.ResumeJob, error) {
	waitCtx, cancel := context.WithTimeout(ctx, s.parseWait)
	defer cancel()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		job, err := s.jobs.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if job.Status.IsTerminal() {
			return job, nil
		}

		select {
		case <-waitCtx.Done():
			return job, nil
		case <-ticker.C:
		}
	}
}

func parseResponse(job *resume.ResumeJob) *resume.ParseResponse {
	resp := &resume.ParseResponse{Status: job.Status}
	switch job.Status {
	case resume.JobStatusCompleted:
		resp.Success = true
		resp.Data = job.Parsed
	case resume.JobStatusFailed:
		resp.Message = job.ErrorMessage
	case resume.JobStatusProcessing:
		resp.Message = "Resume is still being processed"
	default:
		if job.ErrorMessage != "" {
			resp.Message = fmt.Sprintf("Parsing failed, retry %d/%d scheduled: %s", job.AttemptCount, job.MaxAttempts, job.ErrorMessage)
		} else {
			resp.Message = "Resume is waiting to be processed"
		}
	}
	return resp
}

// ProcessJob is the worker entry point. Jobs already claimed elsewhere or
// finished are skipped.
func (s *Service) ProcessJob(ctx context.Context, id kernel.ResumeJobID) error {
	job, err := s.jobs.Claim(ctx, id)
	if err != nil {
		if errx.IsCode(err, resume.CodeJobAlreadyProcessing) {
			logx.Debugf("Skipping job %s: already claimed or finished", id)
			return nil
		}
		return err
	}

	logx.Infof("Processing job: JobID=%s, Attempt=%d/%d", job.ID, job.AttemptCount+1, job.MaxAttempts)
	return s.run(ctx, job)
}

// run parses a claimed job and records the outcome on it
func (s *Service) run(ctx context.Context, job *resume.ResumeJob) error {
	events.Emit(ctx, s.events, events.TypeResumeJobUpdated, job)

	data, err := s.files.ReadFile(ctx, job.FilePath)
	if err != nil {
		return s.handleJobError(ctx, job, "file_read_failed", err)
	}

	parsed, err := s.parser.Parse(ctx, resume.Document{
		FileName:    job.FileName,
		ContentType: job.ContentType,
		Data:        data,
	})
	if err != nil {
		return s.handleJobError(ctx, job, "parsing_failed", err)
	}
	if parsed == nil || parsed.IsEmpty() {
		return s.handleJobError(ctx, job, "parsing_failed", fmt.Errorf("no resume fields found in %s", job.FileName))
	}

	if s.embedder != nil {
		embedding, err := s.embedder.GenerateEmbedding(ctx, embeddingText(parsed))
		if err != nil {
			logx.Warnf("Embedding generation failed for job %s: %v", job.ID, err)
		} else {
			job.Embedding = embedding
		}
	}

	job.Complete(parsed, s.now().UTC())
	if err := s.jobs.Update(ctx, job); err != nil {
		return resume.ErrRegistry.NewWithCause(resume.CodeJobUpdateFailed, err).
			WithDetail("job_id", job.ID).
			WithDetail("status", job.Status)
	}

	logx.Infof("Job completed successfully: JobID=%s", job.ID)
	events.Emit(ctx, s.events, events.TypeResumeJobUpdated, job)
	return nil
}

func embeddingText(p *resume.ParsedResume) string {
	parts := []string{p.Name, p.Location, p.Skills.Join(), p.RawTextSummary}
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(part)
	}
	return b.String()
}

// handleJobError handles job processing errors with retry logic
func (s *Service) handleJobError(ctx context.Context, job *resume.ResumeJob, errorType string, cause error) error {
	now := s.now().UTC()
	reason := fmt.Sprintf("%s: %v", errorType, cause)

	if job.Fail(reason, now) {
		retryDelay := job.RetryDelay()
		nextRetry := now.Add(retryDelay)
		job.NextRetryAt = &nextRetry

		logx.Warnf("Job failed, will retry: JobID=%s, Attempt=%d/%d, NextRetry=%v, Error=%s",
			job.ID, job.AttemptCount, job.MaxAttempts, nextRetry, errorType)

		if queueErr := s.queue.EnqueueDelayed(ctx, job.ID, retryDelay); queueErr != nil {
			logx.Errorf("Failed to enqueue for retry: %v", queueErr)
			job.Abandon(reason+" (retry enqueue failed)", now)
		}
	} else {
		logx.Errorf("Job permanently failed: JobID=%s, Error=%s, Attempts=%d/%d",
			job.ID, errorType, job.AttemptCount, job.MaxAttempts)
	}

	if err := s.jobs.Update(ctx, job); err != nil {
		logx.Errorf("Failed to update job %s after failure: %v", job.ID, err)
	}
	events.Emit(ctx, s.events, events.TypeResumeJobUpdated, job)

	if job.Status == resume.JobStatusFailed {
		return resume.ErrRegistry.NewWithCause(resume.CodeJobMaxRetriesReached, cause).
			WithDetail("job_id", job.ID).
			WithDetail("error_type", errorType).
			WithDetail("final_attempt", job.AttemptCount)
	}
	return resume.ErrRegistry.NewWithCause(resume.CodeJobFailed, cause).
		WithDetail("job_id", job.ID).
		WithDetail("error_type", errorType).
		WithDetail("will_retry", true).
		WithDetail("next_retry_at", job.NextRetryAt)
}

// ============================================================================
// Queries and maintenance
// ============================================================================

func (s *Service) GetJob(ctx context.Context, id kernel.ResumeJobID) (*resume.ResumeJob, error) {
	return s.jobs.GetByID(ctx, id)
}

func (s *Service) ListJobs(ctx context.Context, req resume.ListJobsRequest, pagination kernel.PaginationOptions) (*kernel.Paginated[resume.ResumeJob], error) {
	if req.Status != "" {
		status, ok := resume.ParseJobStatus(string(req.Status))
		if !ok {
			return nil, resume.ErrInvalidJobStatus().WithDetail("status", req.Status)
		}
		req.Status = status
	}
	return s.jobs.List(ctx, req, pagination)
}

func (s *Service) CountByStatus(ctx context.Context) (map[resume.JobStatus]int, error) {
	return s.jobs.CountByStatus(ctx)
}

// RetryJob manually requeues a failed job with a fresh attempt budget
func (s *Service) RetryJob(ctx context.Context, id kernel.ResumeJobID) (*resume.ResumeJob, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if job.Status != resume.JobStatusFailed {
		return nil, resume.ErrInvalidJobStatus().
			WithDetail("job_id", id).
			WithDetail("current_status", job.Status).
			WithDetail("required_status", resume.JobStatusFailed)
	}

	job.Status = resume.JobStatusPending
	job.AttemptCount = 0
	job.ErrorMessage = ""
	job.CompletedAt = nil
	job.NextRetryAt = nil
	if job.MaxAttempts < resume.DefaultMaxAttempts {
		job.MaxAttempts = resume.DefaultMaxAttempts
	}
	job.UpdatedAt = s.now().UTC()

	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, resume.ErrRegistry.NewWithCause(resume.CodeJobUpdateFailed, err).WithDetail("job_id", id)
	}

	if err := s.queue.Enqueue(ctx, id); err != nil {
		return nil, resume.ErrRegistry.NewWithCause(resume.CodeQueueEnqueueFailed, err).WithDetail("job_id", id)
	}

	logx.Infof("Job manually retried: JobID=%s", id)
	events.Emit(ctx, s.events, events.TypeResumeJobUpdated, job)
	return job, nil
}
