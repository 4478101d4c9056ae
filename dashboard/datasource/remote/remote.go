package remote

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/Abraxas-365/talentdesk/dashboard/datasource"
	"github.com/Abraxas-365/talentdesk/pkg/apiclient"
	"github.com/Abraxas-365/talentdesk/pkg/iam/user"
	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/recruitment/application"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate"
	"github.com/Abraxas-365/talentdesk/recruitment/client"
	"github.com/Abraxas-365/talentdesk/recruitment/resume"
	"github.com/Abraxas-365/talentdesk/recruitment/stats"
)

// Source talks to the REST backend
type Source struct {
	api *apiclient.Client
}

var _ datasource.Source = (*Source)(nil)

func New(api *apiclient.Client) *Source {
	return &Source{api: api}
}

// ============================================================================
// Candidates
// ============================================================================

func (s *Source) ListCandidates(ctx context.Context, filter candidate.ListCandidatesRequest, page kernel.PaginationOptions) (*kernel.Paginated[candidate.Candidate], error) {
	q := pageQuery(page)
	setIf(q, "search", filter.Search)
	setIf(q, "status", string(filter.Status))
	setIf(q, "skill", filter.Skill)
	setIf(q, "location", filter.Location)

	var out kernel.Paginated[candidate.Candidate]
	if err := s.api.Get(ctx, "/candidates", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Source) GetCandidate(ctx context.Context, id kernel.CandidateID) (*candidate.Candidate, error) {
	var out candidate.Candidate
	if err := s.api.Get(ctx, path("/candidates", string(id)), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Source) CreateCandidate(ctx context.Context, req candidate.CreateCandidateRequest) (*candidate.Candidate, error) {
	var out candidate.Candidate
	if err := s.api.Post(ctx, "/candidates", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Source) UpdateCandidate(ctx context.Context, id kernel.CandidateID, req candidate.UpdateCandidateRequest) (*candidate.Candidate, error) {
	var out candidate.Candidate
	if err := s.api.Patch(ctx, path("/candidates", string(id)), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Source) UpdateCandidateStatus(ctx context.Context, id kernel.CandidateID, req candidate.UpdateStatusRequest) (*candidate.Candidate, error) {
	var out candidate.Candidate
	if err := s.api.Patch(ctx, path("/candidates", string(id), "status"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Source) AddCandidateFlag(ctx context.Context, id kernel.CandidateID, req candidate.AddFlagRequest) (*candidate.Candidate, error) {
	var out candidate.Candidate
	if err := s.api.Post(ctx, path("/candidates", string(id), "flags"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Source) DeleteCandidate(ctx context.Context, id kernel.CandidateID) error {
	return s.api.Delete(ctx, path("/candidates", string(id)), nil)
}

func (s *Source) BulkUpdateCandidateStatus(ctx context.Context, req candidate.BulkStatusRequest) (*candidate.BulkOperationResponse, error) {
	var out candidate.BulkOperationResponse
	if err := s.api.Post(ctx, "/candidates/bulk/status", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Applications
// ============================================================================

func (s *Source) ListApplications(ctx context.Context, filter application.ListApplicationsRequest, page kernel.PaginationOptions) (*kernel.Paginated[application.Application], error) {
	q := pageQuery(page)
	setIf(q, "search", filter.Search)
	setIf(q, "status", string(filter.Status))
	setIf(q, "candidateId", string(filter.CandidateID))
	setIf(q, "clientId", string(filter.ClientID))

	var out kernel.Paginated[application.Application]
	if err := s.api.Get(ctx, "/applications", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Source) GetApplication(ctx context.Context, id kernel.ApplicationID) (*application.Application, error) {
	var out application.Application
	if err := s.api.Get(ctx, path("/applications", string(id)), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Source) CreateApplication(ctx context.Context, req application.CreateApplicationRequest) (*application.Application, error) {
	var out application.Application
	if err := s.api.Post(ctx, "/applications", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Source) UpdateApplication(ctx context.Context, id kernel.ApplicationID, req application.UpdateApplicationRequest) (*application.Application, error) {
	var out application.Application
	if err := s.api.Patch(ctx, path("/applications", string(id)), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Source) UpdateApplicationStatus(ctx context.Context, id kernel.ApplicationID, req application.UpdateStatusRequest) (*application.Application, error) {
	var out application.Application
	if err := s.api.Patch(ctx, path("/applications", string(id), "status"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Source) DeleteApplication(ctx context.Context, id kernel.ApplicationID) error {
	return s.api.Delete(ctx, path("/applications", string(id)), nil)
}

// ============================================================================
// Clients
// ============================================================================

func (s *Source) ListClients(ctx context.Context, filter client.ListClientsRequest, page kernel.PaginationOptions) (*kernel.Paginated[client.Client], error) {
	q := pageQuery(page)
	setIf(q, "search", filter.Search)
	setIf(q, "industry", filter.Industry)
	setIf(q, "invitationStatus", string(filter.InvitationStatus))

	var out kernel.Paginated[client.Client]
	if err := s.api.Get(ctx, "/clients", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Source) GetClient(ctx context.Context, id kernel.ClientID) (*client.Client, error) {
	var out client.Client
	if err := s.api.Get(ctx, path("/clients", string(id)), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Source) CreateClient(ctx context.Context, req client.CreateClientRequest) (*client.Client, error) {
	var out client.Client
	if err := s.api.Post(ctx, "/clients", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Source) UpdateClient(ctx context.Context, id kernel.ClientID, req client.UpdateClientRequest) (*client.Client, error) {
	var out client.Client
	if err := s.api.Patch(ctx, path("/clients", string(id)), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Source) DeleteClient(ctx context.Context, id kernel.ClientID) error {
	return s.api.Delete(ctx, path("/clients", string(id)), nil)
}

func (s *Source) InviteClient(ctx context.Context, id kernel.ClientID) (*client.InviteResponse, error) {
	var out client.InviteResponse
	if err := s.api.Post(ctx, path("/clients", string(id), "invite"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Resume ingestion
// ============================================================================

func (s *Source) IngestEmail(ctx context.Context, req resume.IngestRequest) (*resume.IngestResponse, error) {
	var out resume.IngestResponse
	if err := s.api.Post(ctx, "/email/ingest", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Source) ParseJob(ctx context.Context, id kernel.ResumeJobID) (*resume.ParseResponse, error) {
	var out resume.ParseResponse
	if err := s.api.Post(ctx, path("/email/jobs", string(id), "parse"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Source) GetJob(ctx context.Context, id kernel.ResumeJobID) (*resume.ResumeJob, error) {
	var out resume.ResumeJob
	if err := s.api.Get(ctx, path("/email/jobs", string(id)), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Source) ListJobs(ctx context.Context, filter resume.ListJobsRequest, page kernel.PaginationOptions) (*kernel.Paginated[resume.ResumeJob], error) {
	q := pageQuery(page)
	setIf(q, "status", string(filter.Status))
	setIf(q, "clientId", string(filter.ClientID))

	var out kernel.Paginated[resume.ResumeJob]
	if err := s.api.Get(ctx, "/email/jobs", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Stats, auth and events
// ============================================================================

func (s *Source) DashboardStats(ctx context.Context) (*stats.DashboardStats, error) {
	var out stats.DashboardStats
	if err := s.api.Get(ctx, "/stats/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	Token       string `json:"token"`
}

// Login posts form-encoded credentials. Backends answer with either
// access_token or token.
func (s *Source) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var out loginResponse
	if err := s.api.PostForm(ctx, "/auth/login", form, &out); err != nil {
		return "", err
	}

	token := out.AccessToken
	if token == "" {
		token = out.Token
	}
	if token == "" {
		return "", datasource.ErrMissingToken()
	}
	return token, nil
}

func (s *Source) Me(ctx context.Context) (*user.User, error) {
	var out user.User
	if err := s.api.Get(ctx, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Source) Logout(ctx context.Context) error {
	return s.api.Post(ctx, "/auth/logout", nil, nil)
}

func (s *Source) Stream(ctx context.Context) (io.ReadCloser, error) {
	return s.api.Stream(ctx, "/events/stream", nil)
}

// ============================================================================
// Helpers
// ============================================================================

func pageQuery(page kernel.PaginationOptions) url.Values {
	page = page.Normalize()
	q := url.Values{}
	q.Set("page", strconv.Itoa(page.Page))
	q.Set("pageSize", strconv.Itoa(page.PageSize))
	return q
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func path(base string, segments ...string) string {
	p := base
	for _, seg := range segments {
		p += "/" + url.PathEscape(seg)
	}
	return p
}
