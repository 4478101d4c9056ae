package candidateinfra

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate"
)

type MemoryCandidateRepository struct {
	mu         sync.RWMutex
	candidates map[kernel.CandidateID]candidate.Candidate
}

func NewMemoryCandidateRepository() *MemoryCandidateRepository {
	return &MemoryCandidateRepository{candidates: make(map[kernel.CandidateID]candidate.Candidate)}
}

var _ candidate.Repository = (*MemoryCandidateRepository)(nil)

func (r *MemoryCandidateRepository) Create(ctx context.Context, c *candidate.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkEmail(c); err != nil {
		return err
	}
	r.candidates[c.ID] = cloneCandidate(*c)
	return nil
}

func (r *MemoryCandidateRepository) Update(ctx context.Context, c *candidate.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.candidates[c.ID]; !ok {
		return candidate.ErrCandidateNotFound().WithDetail("candidate_id", c.ID)
	}
	if err := r.checkEmail(c); err != nil {
		return err
	}
	r.candidates[c.ID] = cloneCandidate(*c)
	return nil
}

// checkEmail mirrors the unique index on lower(email)
func (r *MemoryCandidateRepository) checkEmail(c *candidate.Candidate) error {
	if c.Email == "" {
		return nil
	}
	for id, existing := range r.candidates {
		if id != c.ID && strings.EqualFold(string(existing.Email), string(c.Email)) {
			return candidate.ErrEmailAlreadyExists().WithDetail("email", string(c.Email))
		}
	}
	return nil
}

func (r *MemoryCandidateRepository) GetByID(ctx context.Context, id kernel.CandidateID) (*candidate.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.candidates[id]
	if !ok {
		return nil, candidate.ErrCandidateNotFound().WithDetail("lookup", string(id))
	}
	out := cloneCandidate(c)
	return &out, nil
}

func (r *MemoryCandidateRepository) GetByEmail(ctx context.Context, email kernel.Email) (*candidate.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.candidates {
		if c.Email != "" && strings.EqualFold(string(c.Email), string(email)) {
			out := cloneCandidate(c)
			return &out, nil
		}
	}
	return nil, candidate.ErrCandidateNotFound().WithDetail("lookup", string(email))
}

func (r *MemoryCandidateRepository) Delete(ctx context.Context, id kernel.CandidateID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.candidates[id]; !ok {
		return candidate.ErrCandidateNotFound().WithDetail("candidate_id", id)
	}
	delete(r.candidates, id)
	return nil
}

func (r *MemoryCandidateRepository) List(ctx context.Context, filter candidate.ListCandidatesRequest, pagination kernel.PaginationOptions) (*kernel.Paginated[candidate.Candidate], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []candidate.Candidate
	for _, c := range r.candidates {
		if c.Matches(filter) {
			matched = append(matched, cloneCandidate(c))
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

func (r *MemoryCandidateRepository) CountByStatus(ctx context.Context) (map[candidate.CandidateStatus]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[candidate.CandidateStatus]int)
	for _, c := range r.candidates {
		counts[c.Status]++
	}
	return counts, nil
}

func cloneCandidate(c candidate.Candidate) candidate.Candidate {
	c.Skills = append([]string{}, c.Skills...)
	c.Flags = append([]candidate.Flag{}, c.Flags...)
	return c
}
