package query

import (
	"context"

	"github.com/Abraxas-365/talentdesk/dashboard/datasource"
	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/pkg/querycache"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate"
)

type Candidates struct {
	cache *querycache.Cache
	src   datasource.CandidateSource
}

// BulkResult tallies a bulk status change. Every id was attempted.
type BulkResult struct {
	Successful []kernel.CandidateID
	Failed     map[kernel.CandidateID]string
	Total      int
}

func (c *Candidates) List(ctx context.Context, filter candidate.ListCandidatesRequest, page kernel.PaginationOptions) (querycache.Value[*kernel.Paginated[candidate.Candidate]], error) {
	return querycache.Load(ctx, c.cache, listKey(ResourceCandidates, filter, page), ListTTL,
		func(ctx context.Context) (*kernel.Paginated[candidate.Candidate], error) {
			return c.src.ListCandidates(ctx, filter, page)
		})
}

func (c *Candidates) Get(ctx context.Context, id kernel.CandidateID) (querycache.Value[*candidate.Candidate], error) {
	return querycache.Load(ctx, c.cache, querycache.DetailKey(ResourceCandidates, id.String()), DetailTTL,
		func(ctx context.Context) (*candidate.Candidate, error) {
			return c.src.GetCandidate(ctx, id)
		})
}

func (c *Candidates) Create(ctx context.Context, req candidate.CreateCandidateRequest) (*candidate.Candidate, error) {
	return mutate(ctx, func(ctx context.Context) (*candidate.Candidate, error) {
		return c.src.CreateCandidate(ctx, req)
	}, c.written)
}

func (c *Candidates) Update(ctx context.Context, id kernel.CandidateID, req candidate.UpdateCandidateRequest) (*candidate.Candidate, error) {
	return mutate(ctx, func(ctx context.Context) (*candidate.Candidate, error) {
		return c.src.UpdateCandidate(ctx, id, req)
	}, c.written)
}

func (c *Candidates) UpdateStatus(ctx context.Context, id kernel.CandidateID, status candidate.CandidateStatus, note string) (*candidate.Candidate, error) {
	return mutate(ctx, func(ctx context.Context) (*candidate.Candidate, error) {
		return c.src.UpdateCandidateStatus(ctx, id, candidate.UpdateStatusRequest{Status: status, Note: note})
	}, c.written)
}

func (c *Candidates) AddFlag(ctx context.Context, id kernel.CandidateID, flag candidate.FlagType, note string) (*candidate.Candidate, error) {
	return mutate(ctx, func(ctx context.Context) (*candidate.Candidate, error) {
		return c.src.AddCandidateFlag(ctx, id, candidate.AddFlagRequest{Type: flag, Note: note})
	}, c.written)
}

func (c *Candidates) Delete(ctx context.Context, id kernel.CandidateID) error {
	return remove(ctx, func(ctx context.Context) error {
		return c.src.DeleteCandidate(ctx, id)
	}, func() {
		c.cache.RemoveEntity(ResourceCandidates, id.String())
		c.cache.InvalidateLists(ResourceCandidates, ResourceStats)
	})
}

// BulkUpdateStatus moves every id to status. Per-id failures are reported
// in the result, not as an error.
func (c *Candidates) BulkUpdateStatus(ctx context.Context, ids []kernel.CandidateID, status candidate.CandidateStatus) (*BulkResult, error) {
	return mutate(ctx, func(ctx context.Context) (*BulkResult, error) {
		resp, err := c.src.BulkUpdateCandidateStatus(ctx, candidate.BulkStatusRequest{IDs: ids, Status: status})
		if err != nil {
			return nil, err
		}
		result := &BulkResult{
			Successful: resp.Successful,
			Failed:     make(map[kernel.CandidateID]string, len(resp.Failed)),
			Total:      resp.Total,
		}
		for id, reason := range resp.Failed {
			result.Failed[kernel.CandidateID(id)] = reason
		}
		return result, nil
	}, func(r *BulkResult) {
		if len(r.Successful) == 0 {
			return
		}
		c.cache.InvalidateResource(ResourceCandidates)
		c.cache.InvalidateLists(ResourceStats)
	})
}

func (c *Candidates) written(v *candidate.Candidate) {
	c.cache.SetEntity(ResourceCandidates, v.ID.String(), v)
	c.cache.InvalidateLists(ResourceCandidates, ResourceStats)
}
