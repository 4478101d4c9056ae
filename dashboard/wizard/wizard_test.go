package wizard

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/apiclient"
	"github.com/Abraxas-365/talentdesk/pkg/errx"
	"github.com/Abraxas-365/talentdesk/pkg/iam/user"
	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate"
	"github.com/Abraxas-365/talentdesk/recruitment/resume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResumes struct {
	ingest    *resume.IngestResponse
	ingestErr error
	parse     *resume.ParseResponse
	parseErr  error

	// block makes IngestEmail wait for its context
	block   bool
	started chan struct{}

	mu       sync.Mutex
	requests []resume.IngestRequest
}

func (f *fakeResumes) IngestEmail(ctx context.Context, req resume.IngestRequest) (*resume.IngestResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.block {
		close(f.started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.ingest, f.ingestErr
}

func (f *fakeResumes) ParseJob(ctx context.Context, id kernel.ResumeJobID) (*resume.ParseResponse, error) {
	return f.parse, f.parseErr
}

type fakeCandidates struct {
	err   error
	calls []candidate.CreateCandidateRequest
	keys  []string
}

func (f *fakeCandidates) Create(ctx context.Context, req candidate.CreateCandidateRequest) (*candidate.Candidate, error) {
	f.calls = append(f.calls, req)
	f.keys = append(f.keys, apiclient.IdempotencyKeyFrom(ctx))
	if f.err != nil {
		return nil, f.err
	}
	return &candidate.Candidate{ID: "cand-1", Name: req.Name, Email: req.Email, Skills: req.Skills}, nil
}

type fakeProfile struct {
	user *user.User
}

func (f fakeProfile) Me(ctx context.Context) (*user.User, error) {
	if f.user == nil {
		return nil, errors.New("no session")
	}
	return f.user, nil
}

var recruiter = &user.User{
	ID:       "usr-1",
	Username: "recruiter",
	Email:    "recruiter@acme.com",
	ClientID: "cl-acme",
}

var pdf = File{Name: "resume.pdf", ContentType: "application/pdf", Data: make([]byte, 2<<20)}

func janeParse(t *testing.T) *resume.ParseResponse {
	t.Helper()
	var resp resume.ParseResponse
	require.NoError(t, json.Unmarshal([]byte(`{
		"success": true,
		"status": "completed",
		"data": {"name": "Jane Doe", "email": "jane@x.com", "skills": ["SQL"]}
	}`), &resp))
	return &resp
}

func newWizard(t *testing.T, res *fakeResumes, cands *fakeCandidates, opts ...Option) *Wizard {
	t.Helper()
	clock := time.Date(2024, 3, 1, 10, 30, 15, 999, time.FixedZone("X", 3600))
	opts = append([]Option{WithClock(func() time.Time { return clock })}, opts...)
	return New(res, cands, fakeProfile{user: recruiter}, opts...)
}

func TestUploadToSuccess(t *testing.T) {
	res := &fakeResumes{
		ingest: &resume.IngestResponse{Success: true, JobIDs: []kernel.ResumeJobID{"j1"}},
		parse:  janeParse(t),
	}
	cands := &fakeCandidates{}
	w := newWizard(t, res, cands)
	ctx := context.Background()

	require.NoError(t, w.SelectFile(pdf))
	require.NoError(t, w.Ingest(ctx))

	view := w.View()
	assert.Equal(t, StateReview, view.State)
	assert.Equal(t, kernel.ResumeJobID("j1"), view.JobID)
	assert.Equal(t, "Jane Doe", view.Form.Name)
	assert.Equal(t, "jane@x.com", view.Form.Email)
	assert.Equal(t, "SQL", view.Form.Skills)
	assert.Equal(t, DefaultSource, view.Form.Source)
	assert.Equal(t, "Parsed from resume.pdf", view.Form.Remarks)

	require.Len(t, res.requests, 1)
	req := res.requests[0]
	assert.Equal(t, kernel.ClientID("cl-acme"), req.ClientID)
	assert.NotEmpty(t, req.Email.MessageID)
	assert.Equal(t, "recruiter@acme.com", req.Email.Sender)
	assert.Contains(t, req.Email.Subject, "resume.pdf")
	assert.Equal(t, time.Date(2024, 3, 1, 9, 30, 15, 0, time.UTC), req.Email.ReceivedAt)
	require.Len(t, req.Email.Attachments, 1)
	att := req.Email.Attachments[0]
	assert.Equal(t, "application/pdf", att.ContentType)
	assert.Equal(t, int64(2<<20), att.Size)
	decoded, err := base64.StdEncoding.DecodeString(att.ContentBase64)
	require.NoError(t, err)
	assert.Len(t, decoded, 2<<20)

	created, err := w.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, w.State())
	assert.Equal(t, "Jane Doe", created.Name)

	require.Len(t, cands.calls, 1)
	sent := cands.calls[0]
	assert.Equal(t, kernel.Email("jane@x.com"), sent.Email)
	assert.Equal(t, []string{"SQL"}, sent.Skills)
	assert.Equal(t, kernel.ResumeJobID("j1"), sent.ResumeJobID)
	assert.Equal(t, DefaultSource, sent.Source)
	require.NotNil(t, sent.ResumeParse)
	assert.NotEmpty(t, cands.keys[0])
}

func TestIngestFailureEndsInError(t *testing.T) {
	tests := []struct {
		name    string
		res     *fakeResumes
		wantMsg string
	}{
		{
			name:    "rejected by server",
			res:     &fakeResumes{ingest: &resume.IngestResponse{Success: false, Message: "Client not found"}},
			wantMsg: "Client not found",
		},
		{
			name:    "request failed",
			res:     &fakeResumes{ingestErr: apiclient.ErrRequestFailed(500, `{"message":"Storage unavailable"}`)},
			wantMsg: "Storage unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cands := &fakeCandidates{}
			w := newWizard(t, tt.res, cands)

			require.NoError(t, w.SelectFile(pdf))
			require.Error(t, w.Ingest(context.Background()))

			view := w.View()
			assert.Equal(t, StateError, view.State)
			assert.Equal(t, tt.wantMsg, view.Error)
			assert.Empty(t, cands.calls)

			require.NoError(t, w.Retry())
			assert.Equal(t, StateUpload, w.State())
			assert.Empty(t, w.View().FileName)
		})
	}
}

func TestIngestWithoutClient(t *testing.T) {
	res := &fakeResumes{}
	w := New(res, &fakeCandidates{}, fakeProfile{user: &user.User{Username: "orphan"}})

	require.NoError(t, w.SelectFile(pdf))
	err := w.Ingest(context.Background())
	assert.True(t, errx.IsCode(err, CodeNoClient))
	assert.Equal(t, StateError, w.State())
	assert.Empty(t, res.requests)
}

func TestParseFailureLeavesFormBlank(t *testing.T) {
	tests := []struct {
		name     string
		ingest   *resume.IngestResponse
		parse    *resume.ParseResponse
		parseErr error
	}{
		{"parse error", &resume.IngestResponse{Success: true, JobIDs: []kernel.ResumeJobID{"j1"}}, nil, errors.New("parser timeout")},
		{"parse without data", &resume.IngestResponse{Success: true, JobIDs: []kernel.ResumeJobID{"j1"}}, &resume.ParseResponse{Success: false, Status: resume.JobStatusProcessing}, nil},
		{"no job ids", &resume.IngestResponse{Success: true}, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWizard(t, &fakeResumes{ingest: tt.ingest, parse: tt.parse, parseErr: tt.parseErr}, &fakeCandidates{})

			require.NoError(t, w.SelectFile(pdf))
			require.NoError(t, w.Ingest(context.Background()))

			view := w.View()
			assert.Equal(t, StateReview, view.State)
			assert.Equal(t, Form{Source: DefaultSource}, view.Form)
		})
	}
}

func TestSaveFailureKeepsForm(t *testing.T) {
	res := &fakeResumes{
		ingest: &resume.IngestResponse{Success: true, JobIDs: []kernel.ResumeJobID{"j1"}},
		parse:  janeParse(t),
	}
	cands := &fakeCandidates{err: apiclient.ErrRequestFailed(409, `{"message":"Email already registered"}`)}
	w := newWizard(t, res, cands)
	ctx := context.Background()

	require.NoError(t, w.SelectFile(pdf))
	require.NoError(t, w.Ingest(ctx))
	require.NoError(t, w.UpdateForm(func(f *Form) { f.Phone = "+1 555 0100" }))

	_, err := w.Save(ctx)
	require.Error(t, err)

	view := w.View()
	assert.Equal(t, StateReview, view.State)
	assert.Equal(t, "Email already registered", view.Error)
	assert.Equal(t, "Jane Doe", view.Form.Name)
	assert.Equal(t, "+1 555 0100", view.Form.Phone)
}

func TestSaveReusesKeyUntilFormChanges(t *testing.T) {
	res := &fakeResumes{
		ingest: &resume.IngestResponse{Success: true, JobIDs: []kernel.ResumeJobID{"j1"}},
		parse:  janeParse(t),
	}
	cands := &fakeCandidates{err: errors.New("connection reset")}
	w := newWizard(t, res, cands)
	ctx := context.Background()

	require.NoError(t, w.SelectFile(pdf))
	require.NoError(t, w.Ingest(ctx))

	_, err := w.Save(ctx)
	require.Error(t, err)
	_, err = w.Save(ctx)
	require.Error(t, err)

	require.NoError(t, w.UpdateForm(func(f *Form) { f.Location = "Lima" }))
	cands.err = nil
	_, err = w.Save(ctx)
	require.NoError(t, err)

	require.Len(t, cands.keys, 3)
	assert.Equal(t, cands.keys[0], cands.keys[1])
	assert.NotEqual(t, cands.keys[1], cands.keys[2])
}

func TestSaveRequiresName(t *testing.T) {
	res := &fakeResumes{ingest: &resume.IngestResponse{Success: true}}
	cands := &fakeCandidates{}
	w := newWizard(t, res, cands)

	require.NoError(t, w.SelectFile(pdf))
	require.NoError(t, w.Ingest(context.Background()))
	require.NoError(t, w.UpdateForm(func(f *Form) { f.Name = "   " }))

	_, err := w.Save(context.Background())
	assert.True(t, errx.IsCode(err, CodeNameRequired))
	assert.Equal(t, StateReview, w.State())
	assert.Empty(t, cands.calls)
}

func TestSelectFileValidation(t *testing.T) {
	tests := []struct {
		name     string
		file     File
		wantCode string
	}{
		{"word document", File{Name: "cv.docx", ContentType: "application/msword", Data: []byte("x")}, resume.CodeInvalidFileFormat},
		{"too large", File{Name: "big.pdf", ContentType: "application/pdf", Data: make([]byte, resume.MaxFileSize+1)}, resume.CodeFileTooLarge},
		{"empty", File{Name: "empty.pdf", ContentType: "application/pdf"}, resume.CodeInvalidFileFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := &fakeResumes{}
			w := newWizard(t, res, &fakeCandidates{})

			err := w.SelectFile(tt.file)
			assert.True(t, errx.IsCode(err, tt.wantCode))
			assert.Equal(t, StateError, w.State())
			assert.NotEmpty(t, w.View().Error)

			assert.Error(t, w.Ingest(context.Background()))
			assert.Empty(t, res.requests)
		})
	}
}

func TestSelectFileNormalizesJPG(t *testing.T) {
	w := newWizard(t, &fakeResumes{}, &fakeCandidates{})
	require.NoError(t, w.SelectFile(File{Name: "scan.jpg", ContentType: "image/jpg", Data: []byte{0xff}}))
	assert.Equal(t, StateUpload, w.State())
	assert.Equal(t, "scan.jpg", w.View().FileName)
}

func TestSkillsObjectsArePrefilled(t *testing.T) {
	var resp resume.ParseResponse
	require.NoError(t, json.Unmarshal([]byte(`{"success":true,"data":{"name":"Ana","skills":["Python",{"name":"React"}],"experience_years":4.5}}`), &resp))

	res := &fakeResumes{
		ingest: &resume.IngestResponse{Success: true, JobIDs: []kernel.ResumeJobID{"j2"}},
		parse:  &resp,
	}
	cands := &fakeCandidates{}
	w := newWizard(t, res, cands)

	require.NoError(t, w.SelectFile(pdf))
	require.NoError(t, w.Ingest(context.Background()))
	assert.Equal(t, "Python, React", w.View().Form.Skills)
	assert.Equal(t, "4.5", w.View().Form.ExperienceYears)

	_, err := w.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Python", "React"}, cands.calls[0].Skills)
	assert.Equal(t, 4.5, cands.calls[0].ExperienceYears)
}

func TestBackKeepsFile(t *testing.T) {
	res := &fakeResumes{ingest: &resume.IngestResponse{Success: true}}
	w := newWizard(t, res, &fakeCandidates{})

	require.NoError(t, w.SelectFile(pdf))
	require.NoError(t, w.Ingest(context.Background()))
	require.NoError(t, w.Back())

	view := w.View()
	assert.Equal(t, StateUpload, view.State)
	assert.Equal(t, "resume.pdf", view.FileName)
	assert.Empty(t, view.Form.Name)
}

func TestCloseDiscardsInFlightStep(t *testing.T) {
	res := &fakeResumes{block: true, started: make(chan struct{})}
	w := newWizard(t, res, &fakeCandidates{})
	require.NoError(t, w.SelectFile(pdf))

	done := make(chan error, 1)
	go func() { done <- w.Ingest(context.Background()) }()

	<-res.started
	assert.Equal(t, StateIngesting, w.State())
	w.Close()

	select {
	case err := <-done:
		assert.True(t, errx.IsCode(err, CodeDiscarded))
	case <-time.After(2 * time.Second):
		t.Fatal("ingest did not stop after close")
	}
	assert.Equal(t, StateUpload, w.State())
	assert.Empty(t, w.View().Error)
}

func TestCallerCancellationStopsStep(t *testing.T) {
	res := &fakeResumes{block: true, started: make(chan struct{})}
	w := newWizard(t, res, &fakeCandidates{})
	require.NoError(t, w.SelectFile(pdf))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Ingest(ctx) }()

	<-res.started
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("ingest ignored caller cancellation")
	}
	assert.Equal(t, StateError, w.State())
}

func TestCloseAfterSuccessRunsCallback(t *testing.T) {
	res := &fakeResumes{
		ingest: &resume.IngestResponse{Success: true, JobIDs: []kernel.ResumeJobID{"j1"}},
		parse:  janeParse(t),
	}
	var completed []*candidate.Candidate
	w := newWizard(t, res, &fakeCandidates{}, WithOnComplete(func(c *candidate.Candidate) {
		completed = append(completed, c)
	}))
	ctx := context.Background()

	require.NoError(t, w.SelectFile(pdf))
	require.NoError(t, w.Ingest(ctx))
	_, err := w.Save(ctx)
	require.NoError(t, err)

	w.Close()
	require.Len(t, completed, 1)
	assert.Equal(t, "Jane Doe", completed[0].Name)
	assert.Equal(t, StateUpload, w.State())

	// closing again has nothing to report
	w.Close()
	assert.Len(t, completed, 1)
}

func TestFormRequestNumbers(t *testing.T) {
	tests := []struct {
		name       string
		form       Form
		experience float64
		ctc        *float64
		notice     *int
	}{
		{"plain", Form{Name: "A", ExperienceYears: "5", CurrentCTC: "1200000", NoticePeriodDays: "30"}, 5, ptr(1200000.0), ptr(30)},
		{"with units", Form{Name: "A", ExperienceYears: "3.5 yrs", CurrentCTC: "$1,500", NoticePeriodDays: "60 days"}, 3.5, ptr(1500.0), ptr(60)},
		{"blank", Form{Name: "A"}, 0, nil, nil},
		{"garbage", Form{Name: "A", ExperienceYears: "several", CurrentCTC: "n/a", NoticePeriodDays: "asap"}, 0, nil, nil},
		{"fractional notice", Form{Name: "A", NoticePeriodDays: "30.5"}, 0, nil, nil},
		{"letters around money", Form{Name: "A", ExperienceYears: "abc12", CurrentCTC: "abc12", NoticePeriodDays: "2 weeks"}, 12, nil, nil},
		{"trailing text on money", Form{Name: "A", CurrentCTC: "1500 per month"}, 0, nil, nil},
		{"currency with space", Form{Name: "A", CurrentCTC: "€ 2,000.50", NoticePeriodDays: "1 day"}, 0, ptr(2000.5), ptr(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.form.request("", nil)
			assert.Equal(t, tt.experience, req.ExperienceYears)
			assert.Equal(t, tt.ctc, req.CurrentCTC)
			assert.Equal(t, tt.notice, req.NoticePeriodDays)
			assert.Equal(t, DefaultSource, req.Source)
		})
	}
}

func TestPrefillTruncatesSummary(t *testing.T) {
	long := make([]rune, 150)
	for i := range long {
		long[i] = 'é'
	}
	f := prefill("cv.pdf", &resume.ParsedResume{RawTextSummary: string(long)})

	assert.Equal(t, "cv", f.Name)
	assert.Equal(t, "Parsed from cv.pdf: "+string(long[:100]), f.Remarks)
}

func ptr[T any](v T) *T { return &v }
