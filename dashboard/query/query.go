package query

import (
	"context"
	"time"

	"github.com/Abraxas-365/talentdesk/dashboard/datasource"
	"github.com/Abraxas-365/talentdesk/pkg/apiclient"
	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/pkg/querycache"
)

// Cache resources
const (
	ResourceCandidates   = "candidates"
	ResourceApplications = "applications"
	ResourceClients      = "clients"
	ResourceStats        = "stats"
	ResourceResumeJobs   = "resume_jobs"
)

const (
	ListTTL   = 5 * time.Minute
	DetailTTL = 5 * time.Minute
	StatsTTL  = 2 * time.Minute
)

const opList = "list"

// Queries reads through the cache and keeps it coherent after writes
type Queries struct {
	Candidates   *Candidates
	Applications *Applications
	Clients      *Clients
	Stats        *Stats
	ResumeJobs   *ResumeJobs

	cache *querycache.Cache
}

func New(cache *querycache.Cache, src datasource.Source) *Queries {
	return &Queries{
		Candidates:   &Candidates{cache: cache, src: src},
		Applications: &Applications{cache: cache, src: src},
		Clients:      &Clients{cache: cache, src: src},
		Stats:        &Stats{cache: cache, src: src},
		ResumeJobs:   &ResumeJobs{cache: cache, src: src},
		cache:        cache,
	}
}

// Invalidate marks everything cached for resources stale, the way a pushed
// event does
func (q *Queries) Invalidate(resources ...string) int {
	return q.cache.InvalidateResource(resources...)
}

func listKey(resource string, filter any, page kernel.PaginationOptions) querycache.Key {
	page = page.Normalize()
	return querycache.Key{
		Resource:  resource,
		Operation: opList,
		Filter:    filter,
		Page:      page.Page,
		PageSize:  page.PageSize,
	}
}

// mutate runs one write. The caller's idempotency key is kept so a retried
// submission reuses it; otherwise a fresh one is attached. Errors come back
// untouched and leave the cache alone.
func mutate[T any](ctx context.Context, write func(context.Context) (T, error), onSuccess func(T)) (T, error) {
	if apiclient.IdempotencyKeyFrom(ctx) == "" {
		ctx = apiclient.WithIdempotencyKey(ctx, apiclient.NewIdempotencyKey())
	}

	v, err := write(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	onSuccess(v)
	return v, nil
}

// remove is mutate for writes with no result
func remove(ctx context.Context, write func(context.Context) error, onSuccess func()) error {
	_, err := mutate(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, write(ctx)
	}, func(struct{}) { onSuccess() })
	return err
}
