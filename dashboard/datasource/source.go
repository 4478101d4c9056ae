package datasource

import (
	"context"
	"io"

	"github.com/Abraxas-365/talentdesk/pkg/iam/user"
	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/recruitment/application"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate"
	"github.com/Abraxas-365/talentdesk/recruitment/client"
	"github.com/Abraxas-365/talentdesk/recruitment/resume"
	"github.com/Abraxas-365/talentdesk/recruitment/stats"
)

type CandidateSource interface {
	ListCandidates(ctx context.Context, filter candidate.ListCandidatesRequest, page kernel.PaginationOptions) (*kernel.Paginated[candidate.Candidate], error)
	GetCandidate(ctx context.Context, id kernel.CandidateID) (*candidate.Candidate, error)
	CreateCandidate(ctx context.Context, req candidate.CreateCandidateRequest) (*candidate.Candidate, error)
	UpdateCandidate(ctx context.Context, id kernel.CandidateID, req candidate.UpdateCandidateRequest) (*candidate.Candidate, error)
	UpdateCandidateStatus(ctx context.Context, id kernel.CandidateID, req candidate.UpdateStatusRequest) (*candidate.Candidate, error)
	AddCandidateFlag(ctx context.Context, id kernel.CandidateID, req candidate.AddFlagRequest) (*candidate.Candidate, error)
	DeleteCandidate(ctx context.Context, id kernel.CandidateID) error
	BulkUpdateCandidateStatus(ctx context.Context, req candidate.BulkStatusRequest) (*candidate.BulkOperationResponse, error)
}

type ApplicationSource interface {
	ListApplications(ctx context.Context, filter application.ListApplicationsRequest, page kernel.PaginationOptions) (*kernel.Paginated[application.Application], error)
	GetApplication(ctx context.Context, id kernel.ApplicationID) (*application.Application, error)
	CreateApplication(ctx context.Context, req application.CreateApplicationRequest) (*application.Application, error)
	UpdateApplication(ctx context.Context, id kernel.ApplicationID, req application.UpdateApplicationRequest) (*application.Application, error)
	UpdateApplicationStatus(ctx context.Context, id kernel.ApplicationID, req application.UpdateStatusRequest) (*application.Application, error)
	DeleteApplication(ctx context.Context, id kernel.ApplicationID) error
}

type ClientSource interface {
	ListClients(ctx context.Context, filter client.ListClientsRequest, page kernel.PaginationOptions) (*kernel.Paginated[client.Client], error)
	GetClient(ctx context.Context, id kernel.ClientID) (*client.Client, error)
	CreateClient(ctx context.Context, req client.CreateClientRequest) (*client.Client, error)
	UpdateClient(ctx context.Context, id kernel.ClientID, req client.UpdateClientRequest) (*client.Client, error)
	DeleteClient(ctx context.Context, id kernel.ClientID) error
	InviteClient(ctx context.Context, id kernel.ClientID) (*client.InviteResponse, error)
}

// ResumeSource covers the email ingestion endpoints the wizard drives
type ResumeSource interface {
	IngestEmail(ctx context.Context, req resume.IngestRequest) (*resume.IngestResponse, error)
	ParseJob(ctx context.Context, id kernel.ResumeJobID) (*resume.ParseResponse, error)
	GetJob(ctx context.Context, id kernel.ResumeJobID) (*resume.ResumeJob, error)
	ListJobs(ctx context.Context, filter resume.ListJobsRequest, page kernel.PaginationOptions) (*kernel.Paginated[resume.ResumeJob], error)
}

type StatsSource interface {
	DashboardStats(ctx context.Context) (*stats.DashboardStats, error)
}

// UserSource authenticates the operator. Login returns the bearer token
// without storing it.
type UserSource interface {
	Login(ctx context.Context, username, password string) (string, error)
	Me(ctx context.Context) (*user.User, error)
	Logout(ctx context.Context) error
}

// EventSource opens the server push stream. The caller closes the body.
type EventSource interface {
	Stream(ctx context.Context) (io.ReadCloser, error)
}

// Source is everything the dashboard reads and writes. It is chosen once
// at startup: remote REST or the in-process fixture backend.
type Source interface {
	CandidateSource
	ApplicationSource
	ClientSource
	ResumeSource
	StatsSource
	UserSource
	EventSource
}
