package wizard

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/apiclient"
	"github.com/Abraxas-365/talentdesk/pkg/errx"
	"github.com/Abraxas-365/talentdesk/pkg/iam/user"
	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/pkg/logx"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate"
	"github.com/Abraxas-365/talentdesk/recruitment/resume"
	"github.com/google/uuid"
)

type State string

const (
	StateUpload    State = "upload"
	StateIngesting State = "ingesting"
	StateReview    State = "review"
	StateSaving    State = "saving"
	StateSuccess   State = "success"
	StateError     State = "error"
)

// File is the resume picked by the operator
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Resumes is the slice of the data source the wizard uploads through
type Resumes interface {
	IngestEmail(ctx context.Context, req resume.IngestRequest) (*resume.IngestResponse, error)
	ParseJob(ctx context.Context, id kernel.ResumeJobID) (*resume.ParseResponse, error)
}

// Candidates creates the reviewed candidate; query.Candidates keeps the
// cache in step
type Candidates interface {
	Create(ctx context.Context, req candidate.CreateCandidateRequest) (*candidate.Candidate, error)
}

// Profile resolves the operator the upload is filed under
type Profile interface {
	Me(ctx context.Context) (*user.User, error)
}

// View is a consistent snapshot for rendering
type View struct {
	State     State
	FileName  string
	JobID     kernel.ResumeJobID
	Form      Form
	Error     string
	Candidate *candidate.Candidate
}

type Option func(*Wizard)

// WithOnComplete runs when a wizard that created a candidate is closed
func WithOnComplete(fn func(*candidate.Candidate)) Option {
	return func(w *Wizard) { w.onComplete = fn }
}

func WithClock(now func() time.Time) Option {
	return func(w *Wizard) { w.now = now }
}

// Wizard walks one resume from file to candidate: upload, ingest and parse,
// review, save. Every step runs under a context the wizard owns; Close
// cancels it and results of the cancelled steps are dropped.
type Wizard struct {
	resumes    Resumes
	candidates Candidates
	profile    Profile
	onComplete func(*candidate.Candidate)
	now        func() time.Time

	mu      sync.Mutex
	state   State
	file    *File
	jobID   kernel.ResumeJobID
	parsed  *resume.ParsedResume
	form    Form
	errMsg  string
	created *candidate.Candidate

	// one key per submission, reissued when the form changes
	idemKey  string
	idemForm Form

	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc
}

func New(resumes Resumes, candidates Candidates, profile Profile, opts ...Option) *Wizard {
	w := &Wizard{
		resumes:    resumes,
		candidates: candidates,
		profile:    profile,
		now:        time.Now,
		state:      StateUpload,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.ctx, w.cancel = context.WithCancel(context.Background())
	return w
}

func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Wizard) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	v := View{
		State:     w.state,
		JobID:     w.jobID,
		Form:      w.form,
		Error:     w.errMsg,
		Candidate: w.created,
	}
	if w.file != nil {
		v.FileName = w.file.Name
	}
	return v
}

// ============================================================================
// Upload
// ============================================================================

// SelectFile checks the file locally. A rejected file moves the wizard to
// error without any request being made.
func (w *Wizard) SelectFile(f File) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateUpload {
		return ErrInvalidState("select_file", w.state)
	}

	f.ContentType = resume.NormalizeContentType(f.ContentType)
	if err := resume.ValidateUpload(f.Name, f.ContentType, int64(len(f.Data))); err != nil {
		w.state = StateError
		w.errMsg = message(err)
		w.file = nil
		return err
	}

	w.file = &f
	w.errMsg = ""
	return nil
}

// Ingest uploads the selected file and tries to parse it right away. A
// failed upload ends in error; a failed parse only leaves the form blank.
func (w *Wizard) Ingest(ctx context.Context) error {
	w.mu.Lock()
	if w.state != StateUpload {
		state := w.state
		w.mu.Unlock()
		return ErrInvalidState("ingest", state)
	}
	if w.file == nil {
		w.mu.Unlock()
		return ErrNoFile()
	}
	file := *w.file
	stepCtx, done, gen := w.beginLocked(ctx, StateIngesting)
	w.mu.Unlock()
	defer done()

	me, err := w.profile.Me(stepCtx)
	if err != nil {
		return w.fail(gen, ErrRegistry.NewWithCause(CodeProfileFailed, err))
	}
	clientID, ok := me.IngestClientID()
	if !ok {
		return w.fail(gen, ErrNoClient().WithDetail("user", me.Username))
	}

	resp, err := w.resumes.IngestEmail(stepCtx, w.envelope(clientID, me, file))
	if err != nil {
		return w.fail(gen, err)
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "The server did not accept the resume"
		}
		return w.fail(gen, ErrRegistry.New(CodeIngestFailed).WithMessage(msg))
	}

	var jobID kernel.ResumeJobID
	var parsed *resume.ParsedResume
	if len(resp.JobIDs) > 0 {
		jobID = resp.JobIDs[0]
		parsed = w.parse(stepCtx, jobID)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gen != gen {
		return ErrDiscarded()
	}
	w.jobID = jobID
	w.parsed = parsed
	w.form = prefill(file.Name, parsed)
	w.state = StateReview
	return nil
}

func (w *Wizard) envelope(clientID kernel.ClientID, me *user.User, file File) resume.IngestRequest {
	return resume.IngestRequest{
		ClientID: clientID,
		Email: resume.EmailEnvelope{
			MessageID:  uuid.NewString(),
			Sender:     string(me.Email),
			Subject:    "Resume upload: " + file.Name,
			Body:       fmt.Sprintf("Resume %s uploaded from the dashboard by %s", file.Name, me.Username),
			ReceivedAt: w.now().UTC().Truncate(time.Second),
			Attachments: []resume.Attachment{{
				FileName:      file.Name,
				ContentType:   file.ContentType,
				ContentBase64: base64.StdEncoding.EncodeToString(file.Data),
				Size:          int64(len(file.Data)),
			}},
		},
	}
}

func (w *Wizard) parse(ctx context.Context, jobID kernel.ResumeJobID) *resume.ParsedResume {
	resp, err := w.resumes.ParseJob(ctx, jobID)
	switch {
	case err != nil:
		logx.Warnf("Parsing job %s failed, continuing with an empty form: %v", jobID, err)
		return nil
	case resp == nil:
		logx.Warnf("Parsing job %s returned nothing", jobID)
		return nil
	case !resp.Success || resp.Data == nil:
		logx.Warnf("Parsing job %s returned no data (%s): %s", jobID, resp.Status, resp.Message)
		return nil
	}
	return resp.Data
}

// ============================================================================
// Review
// ============================================================================

func (w *Wizard) SetForm(f Form) error {
	return w.UpdateForm(func(form *Form) { *form = f })
}

func (w *Wizard) UpdateForm(fn func(*Form)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateReview {
		return ErrInvalidState("edit", w.state)
	}
	fn(&w.form)
	return nil
}

// Back returns to the upload step with the same file selected
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateReview {
		return ErrInvalidState("back", w.state)
	}
	w.state = StateUpload
	w.jobID = ""
	w.parsed = nil
	w.form = Form{}
	w.errMsg = ""
	w.idemKey = ""
	return nil
}

// Save creates the candidate. On failure the wizard stays on review with
// the form as typed, so the operator can fix it and save again.
func (w *Wizard) Save(ctx context.Context) (*candidate.Candidate, error) {
	w.mu.Lock()
	if w.state != StateReview {
		state := w.state
		w.mu.Unlock()
		return nil, ErrInvalidState("save", state)
	}
	req := w.form.request(w.jobID, w.parsed)
	if req.Name == "" {
		err := ErrNameRequired()
		w.errMsg = message(err)
		w.mu.Unlock()
		return nil, err
	}
	if w.idemKey == "" || w.idemForm != w.form {
		w.idemKey = apiclient.NewIdempotencyKey()
		w.idemForm = w.form
	}
	key := w.idemKey
	w.errMsg = ""
	stepCtx, done, gen := w.beginLocked(ctx, StateSaving)
	w.mu.Unlock()
	defer done()

	created, err := w.candidates.Create(apiclient.WithIdempotencyKey(stepCtx, key), req)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gen != gen {
		return nil, ErrDiscarded()
	}
	if err != nil {
		w.state = StateReview
		w.errMsg = message(err)
		return nil, err
	}
	w.created = created
	w.state = StateSuccess
	return created, nil
}

// ============================================================================
// Error and lifecycle
// ============================================================================

// Retry leaves the error step for a fresh upload
func (w *Wizard) Retry() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateError {
		return ErrInvalidState("retry", w.state)
	}
	w.state = StateUpload
	w.errMsg = ""
	w.file = nil
	return nil
}

// Close abandons whatever is in flight and resets the wizard. Closing after
// a successful save hands the candidate to the completion callback first.
func (w *Wizard) Close() {
	w.mu.Lock()
	var created *candidate.Candidate
	if w.state == StateSuccess {
		created = w.created
	}
	w.mu.Unlock()

	if created != nil && w.onComplete != nil {
		w.onComplete(created)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancel()
	w.gen++
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.state = StateUpload
	w.file = nil
	w.jobID = ""
	w.parsed = nil
	w.form = Form{}
	w.errMsg = ""
	w.created = nil
	w.idemKey = ""
	w.idemForm = Form{}
}

// beginLocked moves to state and derives the step context. The step stops
// when either the caller or the wizard gives up.
func (w *Wizard) beginLocked(ctx context.Context, state State) (context.Context, func(), uint64) {
	w.state = state
	stepCtx, cancel := context.WithCancel(w.ctx)
	stop := context.AfterFunc(ctx, cancel)
	return stepCtx, func() {
		stop()
		cancel()
	}, w.gen
}

// fail records err unless the step was discarded meanwhile
func (w *Wizard) fail(gen uint64, err error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gen != gen {
		return ErrDiscarded()
	}
	w.state = StateError
	w.errMsg = message(err)
	return err
}

// message is the text shown to the operator
func message(err error) string {
	if apiclient.Body(err) != "" {
		return apiclient.Message(err)
	}
	if e, ok := errx.As(err); ok && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
