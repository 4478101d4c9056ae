package applicationsrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/errx"
	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/pkg/logx"
	"github.com/Abraxas-365/talentdesk/recruitment/application"
	"github.com/Abraxas-365/talentdesk/recruitment/events"
	"github.com/google/uuid"
)

// ApplicationService provides business operations for applications
type ApplicationService struct {
	applicationRepo application.Repository
	candidates      application.CandidateChecker
	clients         application.ClientChecker
	events          events.Publisher
	now             func() time.Time
}

type Option func(*ApplicationService)

// WithCandidateChecker rejects applications for unknown candidates
func WithCandidateChecker(c application.CandidateChecker) Option {
	return func(s *ApplicationService) { s.candidates = c }
}

// WithClientChecker rejects applications for unknown clients
func WithClientChecker(c application.ClientChecker) Option {
	return func(s *ApplicationService) { s.clients = c }
}

func WithEvents(p events.Publisher) Option {
	return func(s *ApplicationService) { s.events = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *ApplicationService) { s.now = now }
}

// NewApplicationService creates a new instance of the application service
func NewApplicationService(applicationRepo application.Repository, opts ...Option) *ApplicationService {
	s := &ApplicationService{applicationRepo: applicationRepo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateApplication creates a new application in APPLIED
func (s *ApplicationService) CreateApplication(ctx context.Context, req application.CreateApplicationRequest, createdBy kernel.UserID) (*application.Application, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Validate candidate and client exist
	if s.candidates != nil {
		ok, err := s.candidates.Exists(ctx, req.CandidateID)
		if err != nil {
			return nil, errx.Wrap(err, "failed to check candidate", errx.TypeInternal)
		}
		if !ok {
			return nil, application.ErrValidationFailed().
				WithMessage("Candidate not found").
				WithDetail("candidate_id", req.CandidateID.String())
		}
	}
	if s.clients != nil {
		ok, err := s.clients.Exists(ctx, req.ClientID)
		if err != nil {
			return nil, errx.Wrap(err, "failed to check client", errx.TypeInternal)
		}
		if !ok {
			return nil, application.ErrValidationFailed().
				WithMessage("Client not found").
				WithDetail("client_id", req.ClientID.String())
		}
	}

	exists, err := s.applicationRepo.ExistsActive(ctx, req.CandidateID, req.ClientID, req.JobTitle)
	if err != nil {
		return nil, errx.Wrap(err, "failed to check existing applications", errx.TypeInternal)
	}
	if exists {
		return nil, application.ErrApplicationAlreadyExists().
			WithDetail("candidate_id", req.CandidateID.String()).
			WithDetail("client_id", req.ClientID.String()).
			WithDetail("job_title", req.JobTitle)
	}

	app := application.New(kernel.NewApplicationID(uuid.NewString()), req, createdBy, s.now().UTC())
	if err := s.applicationRepo.Create(ctx, app); err != nil {
		return nil, errx.Wrap(err, "failed to create application", errx.TypeInternal)
	}

	logx.Infof("Application created: ID=%s, Candidate=%s, Client=%s", app.ID, app.CandidateID, app.ClientID)
	events.Emit(ctx, s.events, events.TypeNewApplication, app)
	return app, nil
}

// GetApplication retrieves an application by ID
func (s *ApplicationService) GetApplication(ctx context.Context, id kernel.ApplicationID) (*application.Application, error) {
	return s.applicationRepo.GetByID(ctx, id)
}

// ListApplications retrieves applications matching the filter
func (s *ApplicationService) ListApplications(ctx context.Context, filter application.ListApplicationsRequest, pagination kernel.PaginationOptions) (*application.PaginatedApplicationsResponse, error) {
	if filter.Status != "" {
		status, ok := application.ParseStatus(string(filter.Status))
		if !ok {
			return nil, application.ErrInvalidStatus().WithDetail("status", filter.Status)
		}
		filter.Status = status
	}
	return s.applicationRepo.List(ctx, filter, pagination.Normalize())
}

// UpdateApplication edits job title and notes
func (s *ApplicationService) UpdateApplication(ctx context.Context, id kernel.ApplicationID, req application.UpdateApplicationRequest, updatedBy kernel.UserID) (*application.Application, error) {
	app, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := app.Apply(req, s.now().UTC()); err != nil {
		return nil, err
	}

	if err := s.applicationRepo.Update(ctx, app); err != nil {
		return nil, errx.Wrap(err, "failed to update application", errx.TypeInternal)
	}

	logx.Infof("Application updated: ID=%s, By=%s", id, updatedBy)
	events.Emit(ctx, s.events, events.TypeApplicationUpdated, app)
	return app, nil
}

// UpdateStatus moves the application and records the change in its audit log
func (s *ApplicationService) UpdateStatus(ctx context.Context, id kernel.ApplicationID, req application.UpdateStatusRequest, updatedBy kernel.UserID) (*application.Application, error) {
	app, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := app.Status
	if err := app.UpdateStatus(req.Status, updatedBy, req.Note, s.now().UTC()); err != nil {
		return nil, err
	}

	if err := s.applicationRepo.Update(ctx, app); err != nil {
		return nil, errx.Wrap(err, "failed to update application status", errx.TypeInternal)
	}

	logx.Infof("Application status changed: ID=%s, %s -> %s, By=%s", id, from, app.Status, updatedBy)
	events.Emit(ctx, s.events, events.TypeStatusChanged, map[string]any{
		"id":          app.ID,
		"candidateId": app.CandidateID,
		"from":        from,
		"to":          app.Status,
	})
	return app, nil
}

// DeleteApplication removes an application
func (s *ApplicationService) DeleteApplication(ctx context.Context, id kernel.ApplicationID, deletedBy kernel.UserID) error {
	if err := s.applicationRepo.Delete(ctx, id); err != nil {
		return err
	}

	logx.Infof("Application deleted: ID=%s, By=%s", id, deletedBy)
	events.Emit(ctx, s.events, events.TypeApplicationUpdated, map[string]any{
		"id":      id,
		"deleted": true,
	})
	return nil
}

// CountByCandidate lets candidate deletion check for applications
func (s *ApplicationService) CountByCandidate(ctx context.Context, candidateID kernel.CandidateID) (int, error) {
	return s.applicationRepo.CountByCandidate(ctx, candidateID)
}

// CountByStatus feeds the dashboard statistics
func (s *ApplicationService) CountByStatus(ctx context.Context) (map[application.ApplicationStatus]int, error) {
	return s.applicationRepo.CountByStatus(ctx)
}
