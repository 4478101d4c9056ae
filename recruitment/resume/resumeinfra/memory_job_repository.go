package resumeinfra

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/recruitment/resume"
)

type MemoryJobRepository struct {
	mu   sync.RWMutex
	jobs map[kernel.ResumeJobID]resume.ResumeJob
	now  func() time.Time
}

func NewMemoryJobRepository() *MemoryJobRepository {
	return &MemoryJobRepository{
		jobs: make(map[kernel.ResumeJobID]resume.ResumeJob),
		now:  time.Now,
	}
}

var _ resume.JobRepository = (*MemoryJobRepository)(nil)

func (r *MemoryJobRepository) Create(ctx context.Context, job *resume.ResumeJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = cloneJob(*job)
	return nil
}

func (r *MemoryJobRepository) Update(ctx context.Context, job *resume.ResumeJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.ID]; !ok {
		return resume.ErrJobNotFound().WithDetail("job_id", job.ID)
	}
	r.jobs[job.ID] = cloneJob(*job)
	return nil
}

func (r *MemoryJobRepository) GetByID(ctx context.Context, id kernel.ResumeJobID) (*resume.ResumeJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, resume.ErrJobNotFound().WithDetail("job_id", id)
	}
	out := cloneJob(job)
	return &out, nil
}

func (r *MemoryJobRepository) Claim(ctx context.Context, id kernel.ResumeJobID) (*resume.ResumeJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, resume.ErrJobNotFound().WithDetail("job_id", id)
	}
	if err := job.Start(r.now().UTC()); err != nil {
		return nil, err
	}
	r.jobs[id] = job
	out := cloneJob(job)
	return &out, nil
}

func (r *MemoryJobRepository) List(ctx context.Context, req resume.ListJobsRequest, pagination kernel.PaginationOptions) (*kernel.Paginated[resume.ResumeJob], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status, _ := resume.ParseJobStatus(string(req.Status))
	var matched []resume.ResumeJob
	for _, job := range r.jobs {
		if req.Status != "" && job.Status != status {
			continue
		}
		if !req.ClientID.IsEmpty() && job.ClientID != req.ClientID {
			continue
		}
		matched = append(matched, cloneJob(job))
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return kernel.PageOf(matched, pagination), nil
}

func (r *MemoryJobRepository) CountByStatus(ctx context.Context) (map[resume.JobStatus]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[resume.JobStatus]int)
	for _, job := range r.jobs {
		counts[job.Status]++
	}
	return counts, nil
}

func cloneJob(job resume.ResumeJob) resume.ResumeJob {
	if job.Parsed != nil {
		parsed := *job.Parsed
		parsed.Skills = append(resume.Skills(nil), job.Parsed.Skills...)
		job.Parsed = &parsed
	}
	job.Embedding = append([]float32(nil), job.Embedding...)
	return job
}
