package candidatesrv

import (
	"context"
	"strings"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/errx"
	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/pkg/logx"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate"
	"github.com/Abraxas-365/talentdesk/recruitment/events"
	"github.com/google/uuid"
)

// MaxBulkSize caps how many candidates one bulk request may touch
const MaxBulkSize = 500

// CandidateService provides business operations for candidates
type CandidateService struct {
	candidateRepo candidate.Repository
	applications  candidate.ApplicationCounter
	events        events.Publisher
	now           func() time.Time
}

type Option func(*CandidateService)

// WithApplicationCounter makes Delete refuse candidates with applications
func WithApplicationCounter(counter candidate.ApplicationCounter) Option {
	return func(s *CandidateService) { s.applications = counter }
}

func WithEvents(p events.Publisher) Option {
	return func(s *CandidateService) { s.events = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *CandidateService) { s.now = now }
}

// NewCandidateService creates a new instance of the candidate service
func NewCandidateService(candidateRepo candidate.Repository, opts ...Option) *CandidateService {
	s := &CandidateService{candidateRepo: candidateRepo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCandidate creates a new candidate
func (s *CandidateService) CreateCandidate(ctx context.Context, req candidate.CreateCandidateRequest, creatorID kernel.UserID) (*candidate.Candidate, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	email := req.Email.Normalize()
	if email != "" {
		if err := s.ensureEmailFree(ctx, email, ""); err != nil {
			return nil, err
		}
	}

	status := candidate.CandidateStatusNew
	if req.Status != "" {
		status, _ = candidate.ParseStatus(string(req.Status))
	}

	now := s.now().UTC()
	newCandidate := &candidate.Candidate{
		ID:               kernel.NewCandidateID(uuid.NewString()),
		Name:             strings.TrimSpace(req.Name),
		Email:            email,
		Phone:            req.Phone.Normalize(),
		Location:         strings.TrimSpace(req.Location),
		Skills:           nonNil(req.Skills),
		ExperienceYears:  req.ExperienceYears,
		Status:           status,
		ResumeParse:      req.ResumeParse,
		ResumeJobID:      req.ResumeJobID,
		Flags:            []candidate.Flag{},
		CurrentCTC:       req.CurrentCTC,
		ExpectedCTC:      req.ExpectedCTC,
		NoticePeriodDays: req.NoticePeriodDays,
		Source:           req.Source,
		Remarks:          req.Remarks,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.candidateRepo.Create(ctx, newCandidate); err != nil {
		return nil, errx.Wrap(err, "failed to create candidate", errx.TypeInternal)
	}

	logx.Infof("Candidate created: ID=%s, By=%s", newCandidate.ID, creatorID)
	events.Emit(ctx, s.events, events.TypeCandidateUpdated, newCandidate)
	return newCandidate, nil
}

func (s *CandidateService) ensureEmailFree(ctx context.Context, email kernel.Email, self kernel.CandidateID) error {
	existing, err := s.candidateRepo.GetByEmail(ctx, email)
	if err != nil {
		if errx.IsCode(err, candidate.CodeCandidateNotFound) {
			return nil
		}
		return errx.Wrap(err, "failed to check candidate email", errx.TypeInternal)
	}
	if existing.ID == self {
		return nil
	}
	return candidate.ErrEmailAlreadyExists().
		WithDetail("email", string(email)).
		WithDetail("existing_id", existing.ID.String())
}

// GetCandidateByID retrieves a candidate by ID
func (s *CandidateService) GetCandidateByID(ctx context.Context, candidateID kernel.CandidateID) (*candidate.Candidate, error) {
	return s.candidateRepo.GetByID(ctx, candidateID)
}

// Exists reports whether a candidate with id is on file
func (s *CandidateService) Exists(ctx context.Context, candidateID kernel.CandidateID) (bool, error) {
	_, err := s.candidateRepo.GetByID(ctx, candidateID)
	if errx.IsCode(err, candidate.CodeCandidateNotFound) {
		return false, nil
	}
	return err == nil, err
}

// ListCandidates retrieves candidates matching the filter
func (s *CandidateService) ListCandidates(ctx context.Context, filter candidate.ListCandidatesRequest, pagination kernel.PaginationOptions) (*candidate.PaginatedCandidatesResponse, error) {
	if filter.Status != "" {
		status, ok := candidate.ParseStatus(string(filter.Status))
		if !ok {
			return nil, candidate.ErrInvalidStatus().WithDetail("status", filter.Status)
		}
		filter.Status = status
	}
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Skill = strings.TrimSpace(filter.Skill)
	filter.Location = strings.TrimSpace(filter.Location)

	return s.candidateRepo.List(ctx, filter, pagination.Normalize())
}

// UpdateCandidate applies a partial update
func (s *CandidateService) UpdateCandidate(ctx context.Context, candidateID kernel.CandidateID, req candidate.UpdateCandidateRequest, updaterID kernel.UserID) (*candidate.Candidate, error) {
	existing, err := s.candidateRepo.GetByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := req.Email.Normalize()
		if email != "" && email != existing.Email {
			if err := s.ensureEmailFree(ctx, email, candidateID); err != nil {
				return nil, err
			}
		}
	}

	if err := existing.Apply(req, s.now().UTC()); err != nil {
		return nil, err
	}

	if err := s.candidateRepo.Update(ctx, existing); err != nil {
		return nil, errx.Wrap(err, "failed to update candidate", errx.TypeInternal)
	}

	logx.Infof("Candidate updated: ID=%s, By=%s", candidateID, updaterID)
	events.Emit(ctx, s.events, events.TypeCandidateUpdated, existing)
	return existing, nil
}

// UpdateStatus moves a candidate to a new pipeline status
func (s *CandidateService) UpdateStatus(ctx context.Context, candidateID kernel.CandidateID, req candidate.UpdateStatusRequest, updaterID kernel.UserID) (*candidate.Candidate, error) {
	existing, err := s.candidateRepo.GetByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	from := existing.Status
	if err := existing.ChangeStatus(req.Status, s.now().UTC()); err != nil {
		return nil, err
	}
	if note := strings.TrimSpace(req.Note); note != "" {
		if existing.Remarks != "" {
			existing.Remarks += "\n"
		}
		existing.Remarks += note
	}

	if err := s.candidateRepo.Update(ctx, existing); err != nil {
		return nil, errx.Wrap(err, "failed to update candidate status", errx.TypeInternal)
	}

	logx.Infof("Candidate status changed: ID=%s, %s -> %s, By=%s", candidateID, from, existing.Status, updaterID)
	events.Emit(ctx, s.events, events.TypeCandidateUpdated, existing)
	return existing, nil
}

// AddFlag annotates a candidate
func (s *CandidateService) AddFlag(ctx context.Context, candidateID kernel.CandidateID, req candidate.AddFlagRequest, creatorID kernel.UserID) (*candidate.Candidate, error) {
	existing, err := s.candidateRepo.GetByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	flagType := candidate.FlagType(strings.ToUpper(strings.TrimSpace(string(req.Type))))
	if err := existing.AddFlag(candidate.Flag{
		Type:      flagType,
		Note:      strings.TrimSpace(req.Note),
		CreatedBy: creatorID,
	}, s.now().UTC()); err != nil {
		return nil, err
	}

	if err := s.candidateRepo.Update(ctx, existing); err != nil {
		return nil, errx.Wrap(err, "failed to flag candidate", errx.TypeInternal)
	}

	events.Emit(ctx, s.events, events.TypeCandidateUpdated, existing)
	return existing, nil
}

// DeleteCandidate removes a candidate that has no applications
func (s *CandidateService) DeleteCandidate(ctx context.Context, candidateID kernel.CandidateID, deleterID kernel.UserID) error {
	existing, err := s.candidateRepo.GetByID(ctx, candidateID)
	if err != nil {
		return err
	}

	if s.applications != nil {
		count, err := s.applications.CountByCandidate(ctx, candidateID)
		if err != nil {
			return errx.Wrap(err, "failed to count candidate applications", errx.TypeInternal)
		}
		if count > 0 {
			return candidate.ErrCandidateHasApplications().
				WithDetail("candidate_id", candidateID.String()).
				WithDetail("applications", count)
		}
	}

	if err := s.candidateRepo.Delete(ctx, candidateID); err != nil {
		return err
	}

	logx.Infof("Candidate deleted: ID=%s, By=%s", candidateID, deleterID)
	events.Emit(ctx, s.events, events.TypeCandidateUpdated, map[string]any{
		"id":      existing.ID,
		"deleted": true,
	})
	return nil
}

// BulkUpdateStatus attempts every id and tallies the outcomes
func (s *CandidateService) BulkUpdateStatus(ctx context.Context, req candidate.BulkStatusRequest, updaterID kernel.UserID) (*candidate.BulkOperationResponse, error) {
	if len(req.IDs) > MaxBulkSize {
		return nil, candidate.ErrBulkTooLarge().
			WithDetail("count", len(req.IDs)).
			WithDetail("max", MaxBulkSize)
	}
	if _, ok := candidate.ParseStatus(string(req.Status)); !ok {
		return nil, candidate.ErrInvalidStatus().WithDetail("status", req.Status)
	}

	result := &candidate.BulkOperationResponse{
		Successful: []kernel.CandidateID{},
		Failed:     make(map[string]string),
		Total:      len(req.IDs),
	}

	for _, candidateID := range req.IDs {
		if _, err := s.UpdateStatus(ctx, candidateID, candidate.UpdateStatusRequest{Status: req.Status}, updaterID); err != nil {
			result.Failed[candidateID.String()] = failureReason(err)
		} else {
			result.Successful = append(result.Successful, candidateID)
		}
	}

	return result, nil
}

// CountByStatus feeds the dashboard statistics
func (s *CandidateService) CountByStatus(ctx context.Context) (map[candidate.CandidateStatus]int, error) {
	return s.candidateRepo.CountByStatus(ctx)
}

func failureReason(err error) string {
	if e, ok := errx.As(err); ok {
		return e.Message
	}
	return err.Error()
}

func nonNil(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
