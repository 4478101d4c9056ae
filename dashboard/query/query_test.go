package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Abraxas-365/talentdesk/pkg/apiclient"
	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/pkg/querycache"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate"
	"github.com/Abraxas-365/talentdesk/recruitment/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCandidates struct {
	listCalls atomic.Int32
	getCalls  atomic.Int32
	createErr error
	bulk      *candidate.BulkOperationResponse

	mu   sync.Mutex
	keys []string
}

func (f *fakeCandidates) record(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, apiclient.IdempotencyKeyFrom(ctx))
}

func (f *fakeCandidates) ListCandidates(ctx context.Context, filter candidate.ListCandidatesRequest, page kernel.PaginationOptions) (*kernel.Paginated[candidate.Candidate], error) {
	f.listCalls.Add(1)
	return kernel.NewPaginated([]candidate.Candidate{{ID: "c1", Name: "Ana"}}, page, 1), nil
}

func (f *fakeCandidates) GetCandidate(ctx context.Context, id kernel.CandidateID) (*candidate.Candidate, error) {
	f.getCalls.Add(1)
	return &candidate.Candidate{ID: id, Name: "fetched"}, nil
}

func (f *fakeCandidates) CreateCandidate(ctx context.Context, req candidate.CreateCandidateRequest) (*candidate.Candidate, error) {
	f.record(ctx)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &candidate.Candidate{ID: "c2", Name: req.Name}, nil
}

func (f *fakeCandidates) UpdateCandidate(ctx context.Context, id kernel.CandidateID, req candidate.UpdateCandidateRequest) (*candidate.Candidate, error) {
	f.record(ctx)
	return &candidate.Candidate{ID: id, Name: *req.Name}, nil
}

func (f *fakeCandidates) UpdateCandidateStatus(ctx context.Context, id kernel.CandidateID, req candidate.UpdateStatusRequest) (*candidate.Candidate, error) {
	f.record(ctx)
	return &candidate.Candidate{ID: id, Status: req.Status}, nil
}

func (f *fakeCandidates) AddCandidateFlag(ctx context.Context, id kernel.CandidateID, req candidate.AddFlagRequest) (*candidate.Candidate, error) {
	f.record(ctx)
	return &candidate.Candidate{ID: id, Flags: []candidate.Flag{{Type: req.Type}}}, nil
}

func (f *fakeCandidates) DeleteCandidate(ctx context.Context, id kernel.CandidateID) error {
	f.record(ctx)
	return nil
}

func (f *fakeCandidates) BulkUpdateCandidateStatus(ctx context.Context, req candidate.BulkStatusRequest) (*candidate.BulkOperationResponse, error) {
	f.record(ctx)
	return f.bulk, nil
}

func newCandidates(t *testing.T) (*Candidates, *fakeCandidates, *querycache.Cache) {
	t.Helper()
	cache := querycache.New()
	t.Cleanup(cache.Close)
	src := &fakeCandidates{}
	return &Candidates{cache: cache, src: src}, src, cache
}

func TestEqualKeysShareOneCall(t *testing.T) {
	c, src, _ := newCandidates(t)
	ctx := context.Background()
	filter := candidate.ListCandidatesRequest{Status: candidate.CandidateStatusNew}

	first, err := c.List(ctx, filter, kernel.PaginationOptions{Page: 1, PageSize: 20})
	require.NoError(t, err)
	second, err := c.List(ctx, filter, kernel.PaginationOptions{})
	require.NoError(t, err)

	assert.Equal(t, int32(1), src.listCalls.Load())
	assert.Same(t, first.Data, second.Data)
}

func TestMutationInvalidatesLists(t *testing.T) {
	c, src, _ := newCandidates(t)
	ctx := context.Background()

	_, err := c.List(ctx, candidate.ListCandidatesRequest{}, kernel.PaginationOptions{})
	require.NoError(t, err)

	created, err := c.Create(ctx, candidate.CreateCandidateRequest{Name: "Jane Doe"})
	require.NoError(t, err)
	assert.Equal(t, kernel.CandidateID("c2"), created.ID)

	_, err = c.List(ctx, candidate.ListCandidatesRequest{}, kernel.PaginationOptions{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.listCalls.Load())

	// the created entity is served from its detail slot
	got, err := c.Get(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.Data.Name)
	assert.Zero(t, src.getCalls.Load())
}

func TestFailedMutationLeavesCacheAlone(t *testing.T) {
	c, src, _ := newCandidates(t)
	ctx := context.Background()
	src.createErr = apiclient.ErrRequestFailed(409, `{"message":"Email already registered"}`)

	_, err := c.List(ctx, candidate.ListCandidatesRequest{}, kernel.PaginationOptions{})
	require.NoError(t, err)

	_, err = c.Create(ctx, candidate.CreateCandidateRequest{Name: "Dup"})
	assert.Same(t, src.createErr, err)

	_, err = c.List(ctx, candidate.ListCandidatesRequest{}, kernel.PaginationOptions{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.listCalls.Load())
}

func TestMutationsCarryIdempotencyKey(t *testing.T) {
	c, src, _ := newCandidates(t)

	_, err := c.UpdateStatus(context.Background(), "c1", candidate.CandidateStatusHired, "")
	require.NoError(t, err)

	ctx := apiclient.WithIdempotencyKey(context.Background(), "fixed-key")
	_, err = c.AddFlag(ctx, "c1", candidate.FlagHot, "")
	require.NoError(t, err)

	require.Len(t, src.keys, 2)
	assert.NotEmpty(t, src.keys[0])
	assert.Equal(t, "fixed-key", src.keys[1])
}

func TestDeleteDropsDetail(t *testing.T) {
	c, src, _ := newCandidates(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "c1")
	require.NoError(t, err)
	require.NoError(t, c.Delete(ctx, "c1"))

	_, err = c.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.getCalls.Load())
}

func TestBulkUpdateStatus(t *testing.T) {
	c, src, cache := newCandidates(t)
	ctx := context.Background()
	src.bulk = &candidate.BulkOperationResponse{
		Successful: []kernel.CandidateID{"c1"},
		Failed:     map[string]string{"c9": "Candidate not found"},
		Total:      2,
	}

	_, err := c.Get(ctx, "c1")
	require.NoError(t, err)

	result, err := c.BulkUpdateStatus(ctx, []kernel.CandidateID{"c1", "c9"}, candidate.CandidateStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, []kernel.CandidateID{"c1"}, result.Successful)
	assert.Equal(t, "Candidate not found", result.Failed["c9"])

	peek, ok := cache.Peek(querycache.DetailKey(ResourceCandidates, "c1"))
	require.True(t, ok)
	assert.True(t, peek.Stale)
}

type fakeStats struct {
	calls atomic.Int32
	err   error
}

func (f *fakeStats) DashboardStats(ctx context.Context) (*stats.DashboardStats, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &stats.DashboardStats{Totals: stats.Totals{Candidates: 3}}, nil
}

func TestStatsServesStaleDataOnFailure(t *testing.T) {
	cache := querycache.New()
	defer cache.Close()
	src := &fakeStats{}
	s := &Stats{cache: cache, src: src}
	ctx := context.Background()

	v, err := s.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Data.Totals.Candidates)

	src.err = errors.New("backend down")
	cache.InvalidateLists(ResourceStats)

	v, err = s.Dashboard(ctx)
	require.NoError(t, err)
	assert.True(t, v.Stale)
	assert.EqualError(t, v.Err, "backend down")
	assert.Equal(t, 3, v.Data.Totals.Candidates)
}
