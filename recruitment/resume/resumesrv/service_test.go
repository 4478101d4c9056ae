package resumesrv

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/errx"
	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/recruitment/events"
	"github.com/Abraxas-365/talentdesk/recruitment/events/eventsinfra"
	"github.com/Abraxas-365/talentdesk/recruitment/resume"
	"github.com/Abraxas-365/talentdesk/recruitment/resume/resumeinfra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memFiles struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemFiles() *memFiles { return &memFiles{files: make(map[string][]byte)} }

func (m *memFiles) WriteFile(ctx context.Context, path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = data
	return nil
}

func (m *memFiles) ReadFile(ctx context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return nil, errors.New("no such file")
	}
	return data, nil
}

func (m *memFiles) DeleteFile(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
	return nil
}

type stubParser struct {
	calls  atomic.Int32
	result *resume.ParsedResume
	err    error
}

func (p *stubParser) Parse(ctx context.Context, doc resume.Document) (*resume.ParsedResume, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	out := *p.result
	return &out, nil
}

type fixture struct {
	svc    *Service
	repo   *resumeinfra.MemoryJobRepository
	queue  *resumeinfra.MemoryQueue
	files  *memFiles
	parser *stubParser
	broker *eventsinfra.MemoryBroker
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		repo:   resumeinfra.NewMemoryJobRepository(),
		queue:  resumeinfra.NewMemoryQueue(16),
		files:  newMemFiles(),
		parser: &stubParser{result: &resume.ParsedResume{Name: "Jane Doe", Email: "jane@example.com", Skills: resume.Skills{"Go"}}},
		broker: eventsinfra.NewMemoryBroker(),
	}
	opts = append([]Option{WithEvents(f.broker), WithParseWait(time.Second, 10*time.Millisecond)}, opts...)
	f.svc = NewService(f.repo, f.queue, f.files, f.parser, opts...)
	return f
}

func pdfAttachment(name string) resume.Attachment {
	data := []byte("%PDF-1.4 resume")
	return resume.Attachment{
		FileName:      name,
		ContentType:   "application/pdf",
		ContentBase64: base64.StdEncoding.EncodeToString(data),
		Size:          int64(len(data)),
	}
}

func ingestOne(t *testing.T, f *fixture) *resume.ResumeJob {
	t.Helper()
	resp, err := f.svc.Ingest(context.Background(), resume.IngestRequest{
		ClientID: "client-1",
		Email: resume.EmailEnvelope{
			MessageID:   "m1",
			Sender:      "hr@example.com",
			Attachments: []resume.Attachment{pdfAttachment("resume.pdf")},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.JobIDs, 1)

	job, err := f.repo.GetByID(context.Background(), resp.JobIDs[0])
	require.NoError(t, err)
	return job
}

func TestIngestRejectsInvalidEnvelopes(t *testing.T) {
	gif := pdfAttachment("photo.gif")
	gif.ContentType = "image/gif"
	badBase64 := pdfAttachment("resume.pdf")
	badBase64.ContentBase64 = "!!!"

	tests := []struct {
		name string
		req  resume.IngestRequest
		code string
	}{
		{"missing client", resume.IngestRequest{Email: resume.EmailEnvelope{Attachments: []resume.Attachment{pdfAttachment("a.pdf")}}}, resume.CodeClientRequired},
		{"no attachments", resume.IngestRequest{ClientID: "c"}, resume.CodeInvalidEnvelope},
		{"bad base64", resume.IngestRequest{ClientID: "c", Email: resume.EmailEnvelope{Attachments: []resume.Attachment{badBase64}}}, resume.CodeInvalidAttachment},
		{"unsupported type", resume.IngestRequest{ClientID: "c", Email: resume.EmailEnvelope{Attachments: []resume.Attachment{pdfAttachment("a.pdf"), gif}}}, resume.CodeInvalidFileFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Ingest(context.Background(), tt.req)
			assert.True(t, errx.IsCode(err, tt.code), "got %v", err)
			assert.Empty(t, f.files.files)

			size, _ := f.queue.GetQueueSize(context.Background())
			assert.Zero(t, size)
		})
	}
}

func TestIngestQueuesOneJobPerAttachment(t *testing.T) {
	f := newFixture(t)
	sub, err := f.broker.Subscribe(context.Background())
	require.NoError(t, err)
	defer sub.Close()

	resp, err := f.svc.Ingest(context.Background(), resume.IngestRequest{
		ClientID: "client-1",
		Email: resume.EmailEnvelope{
			Attachments: []resume.Attachment{pdfAttachment("a.pdf"), pdfAttachment("../b c.pdf")},
		},
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Len(t, resp.JobIDs, 2)

	size, _ := f.queue.GetQueueSize(context.Background())
	assert.Equal(t, int64(2), size)

	job, err := f.repo.GetByID(context.Background(), resp.JobIDs[1])
	require.NoError(t, err)
	assert.Equal(t, resume.JobStatusPending, job.Status)
	assert.NotEmpty(t, job.MessageID)
	assert.Contains(t, job.FilePath, "b_c.pdf")
	assert.NotContains(t, job.FilePath, "..")

	ev := <-sub.Events()
	assert.Equal(t, events.TypeResumeJobUpdated, ev.Type)
}

// failingFiles accepts failAt-1 writes and rejects the rest
type failingFiles struct {
	*memFiles
	writes int
	failAt int
}

func (f *failingFiles) WriteFile(ctx context.Context, path string, data []byte) error {
	f.writes++
	if f.writes >= f.failAt {
		return errors.New("bucket unavailable")
	}
	return f.memFiles.WriteFile(ctx, path, data)
}

func TestIngestFailingPartWayQueuesNothing(t *testing.T) {
	f := newFixture(t)
	files := &failingFiles{memFiles: newMemFiles(), failAt: 2}
	svc := NewService(f.repo, f.queue, files, f.parser)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, resume.IngestRequest{
		ClientID: "client-1",
		Email: resume.EmailEnvelope{
			Attachments: []resume.Attachment{pdfAttachment("a.pdf"), pdfAttachment("b.pdf")},
		},
	})
	assert.True(t, errx.IsCode(err, resume.CodeFileStoreFailed), "got %v", err)
	assert.Empty(t, files.files)

	size, _ := f.queue.GetQueueSize(ctx)
	assert.Zero(t, size)

	jobs, err := f.repo.List(ctx, resume.ListJobsRequest{}, kernel.PaginationOptions{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, jobs.Items, 1)
	assert.Equal(t, resume.JobStatusFailed, jobs.Items[0].Status)
	assert.Equal(t, "a.pdf", jobs.Items[0].FileName)
}

func TestParseClaimsPendingJobOnce(t *testing.T) {
	f := newFixture(t)
	job := ingestOne(t, f)

	resp, err := f.svc.Parse(context.Background(), job.ID)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, resume.JobStatusCompleted, resp.Status)
	assert.Equal(t, "Jane Doe", resp.Data.Name)

	// completed jobs return the stored result
	resp, err = f.svc.Parse(context.Background(), job.ID)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, int32(1), f.parser.calls.Load())

	// the worker finds nothing left to do
	require.NoError(t, f.svc.ProcessJob(context.Background(), job.ID))
	assert.Equal(t, int32(1), f.parser.calls.Load())
}

func TestParseWaitsForJobProcessedElsewhere(t *testing.T) {
	f := newFixture(t)
	job := ingestOne(t, f)

	claimed, err := f.repo.Claim(context.Background(), job.ID)
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		claimed.Complete(&resume.ParsedResume{Name: "Worker Result"}, time.Now())
		_ = f.repo.Update(context.Background(), claimed)
	}()

	resp, err := f.svc.Parse(context.Background(), job.ID)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Worker Result", resp.Data.Name)
	assert.Zero(t, f.parser.calls.Load())
}

func TestParseGivesUpOnSlowJob(t *testing.T) {
	f := newFixture(t, WithParseWait(50*time.Millisecond, 10*time.Millisecond))
	job := ingestOne(t, f)

	_, err := f.repo.Claim(context.Background(), job.ID)
	require.NoError(t, err)

	resp, err := f.svc.Parse(context.Background(), job.ID)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, resume.JobStatusProcessing, resp.Status)
}

func TestFailedParsingRetriesThenFails(t *testing.T) {
	f := newFixture(t)
	f.parser.err = errors.New("model unavailable")
	job := ingestOne(t, f)
	ctx := context.Background()

	for attempt := 1; attempt < resume.DefaultMaxAttempts; attempt++ {
		err := f.svc.ProcessJob(ctx, job.ID)
		assert.True(t, errx.IsCode(err, resume.CodeJobFailed))

		got, _ := f.repo.GetByID(ctx, job.ID)
		assert.Equal(t, resume.JobStatusPending, got.Status)
		assert.Equal(t, attempt, got.AttemptCount)
		assert.NotNil(t, got.NextRetryAt)
	}

	delayed, _ := f.queue.GetDelayedQueueSize(ctx)
	assert.Equal(t, int64(1), delayed)

	err := f.svc.ProcessJob(ctx, job.ID)
	assert.True(t, errx.IsCode(err, resume.CodeJobMaxRetriesReached))

	resp, err := f.svc.GetParseResult(ctx, job.ID)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, resume.JobStatusFailed, resp.Status)
	assert.Contains(t, resp.Message, "model unavailable")

	f.parser.err = nil
	retried, err := f.svc.RetryJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, resume.JobStatusPending, retried.Status)
	assert.Zero(t, retried.AttemptCount)
}

func TestEmptyParseCountsAsFailure(t *testing.T) {
	f := newFixture(t)
	f.parser.result = &resume.ParsedResume{}
	job := ingestOne(t, f)

	resp, err := f.svc.Parse(context.Background(), job.ID)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, resume.JobStatusPending, resp.Status)
}

func TestListJobsRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	ingestOne(t, f)

	page, err := f.svc.ListJobs(context.Background(), resume.ListJobsRequest{Status: "PENDING"}, kernelPage())
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page.Total)

	_, err = f.svc.ListJobs(context.Background(), resume.ListJobsRequest{Status: "queued"}, kernelPage())
	assert.True(t, errx.IsCode(err, resume.CodeInvalidJobStatus))
}

func kernelPage() kernel.PaginationOptions {
	return kernel.PaginationOptions{Page: 1, PageSize: 10}
}
