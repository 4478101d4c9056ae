package applicationinfra

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/recruitment/application"
)

type MemoryApplicationRepository struct {
	mu   sync.RWMutex
	apps map[kernel.ApplicationID]application.Application
}

func NewMemoryApplicationRepository() *MemoryApplicationRepository {
	return &MemoryApplicationRepository{apps: make(map[kernel.ApplicationID]application.Application)}
}

var _ application.Repository = (*MemoryApplicationRepository)(nil)

func (r *MemoryApplicationRepository) Create(ctx context.Context, app *application.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps[app.ID] = cloneApplication(*app)
	return nil
}

func (r *MemoryApplicationRepository) Update(ctx context.Context, app *application.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[app.ID]; !ok {
		return application.ErrApplicationNotFound().WithDetail("application_id", app.ID)
	}
	r.apps[app.ID] = cloneApplication(*app)
	return nil
}

func (r *MemoryApplicationRepository) GetByID(ctx context.Context, id kernel.ApplicationID) (*application.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.apps[id]
	if !ok {
		return nil, application.ErrApplicationNotFound().WithDetail("application_id", id)
	}
	out := cloneApplication(app)
	return &out, nil
}

func (r *MemoryApplicationRepository) Delete(ctx context.Context, id kernel.ApplicationID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[id]; !ok {
		return application.ErrApplicationNotFound().WithDetail("application_id", id)
	}
	delete(r.apps, id)
	return nil
}

func (r *MemoryApplicationRepository) List(ctx context.Context, filter application.ListApplicationsRequest, pagination kernel.PaginationOptions) (*kernel.Paginated[application.Application], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []application.Application
	for _, app := range r.apps {
		if app.Matches(filter) {
			matched = append(matched, cloneApplication(app))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return kernel.PageOf(matched, pagination), nil
}

func (r *MemoryApplicationRepository) ExistsActive(ctx context.Context, candidateID kernel.CandidateID, clientID kernel.ClientID, jobTitle string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, app := range r.apps {
		if app.CandidateID == candidateID && app.ClientID == clientID &&
			strings.EqualFold(app.JobTitle, strings.TrimSpace(jobTitle)) && app.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryApplicationRepository) CountByCandidate(ctx context.Context, candidateID kernel.CandidateID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, app := range r.apps {
		if app.CandidateID == candidateID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryApplicationRepository) CountByStatus(ctx context.Context) (map[application.ApplicationStatus]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[application.ApplicationStatus]int)
	for _, app := range r.apps {
		counts[app.Status]++
	}
	return counts, nil
}

func cloneApplication(app application.Application) application.Application {
	app.AuditLog = append([]application.AuditEntry{}, app.AuditLog...)
	return app
}
