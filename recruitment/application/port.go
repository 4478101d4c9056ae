package application

import (
	"context"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
)

type Repository interface {
	// Create creates a new application
	Create(ctx context.Context, application *Application) error

	// Update updates an existing application
	Update(ctx context.Context, application *Application) error

	// GetByID retrieves an application by ID
	GetByID(ctx context.Context, id kernel.ApplicationID) (*Application, error)

	// Delete deletes an application by ID
	Delete(ctx context.Context, id kernel.ApplicationID) error

	// List retrieves applications matching the filter, newest first
	List(ctx context.Context, filter ListApplicationsRequest, pagination kernel.PaginationOptions) (*kernel.Paginated[Application], error)

	// ExistsActive checks if the candidate already has an active
	// application for the same client and job title
	ExistsActive(ctx context.Context, candidateID kernel.CandidateID, clientID kernel.ClientID, jobTitle string) (bool, error)

	// CountByCandidate counts applications for a specific candidate
	CountByCandidate(ctx context.Context, candidateID kernel.CandidateID) (int, error)

	// CountByStatus counts applications per status
	CountByStatus(ctx context.Context) (map[ApplicationStatus]int, error)
}

// CandidateChecker confirms the candidate an application refers to exists
type CandidateChecker interface {
	Exists(ctx context.Context, id kernel.CandidateID) (bool, error)
}

// ClientChecker confirms the hiring client exists
type ClientChecker interface {
	Exists(ctx context.Context, id kernel.ClientID) (bool, error)
}
