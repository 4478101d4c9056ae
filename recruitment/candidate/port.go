package candidate

import (
	"context"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
)

type Repository interface {
	// Create creates a new candidate
	Create(ctx context.Context, candidate *Candidate) error

	// Update updates an existing candidate
	Update(ctx context.Context, candidate *Candidate) error

	// GetByID retrieves a candidate by ID
	GetByID(ctx context.Context, id kernel.CandidateID) (*Candidate, error)

	// GetByEmail retrieves a candidate by email
	GetByEmail(ctx context.Context, email kernel.Email) (*Candidate, error)

	// Delete deletes a candidate by ID
	Delete(ctx context.Context, id kernel.CandidateID) error

	// List retrieves candidates matching the filter, newest first
	List(ctx context.Context, filter ListCandidatesRequest, pagination kernel.PaginationOptions) (*kernel.Paginated[Candidate], error)

	// CountByStatus counts candidates per status
	CountByStatus(ctx context.Context) (map[CandidateStatus]int, error)
}

// ApplicationCounter lets the service refuse deleting candidates that still
// have applications
type ApplicationCounter interface {
	CountByCandidate(ctx context.Context, id kernel.CandidateID) (int, error)
}
