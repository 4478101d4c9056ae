package stats

import (
	"context"
	"time"

	"github.com/Abraxas-365/talentdesk/recruitment/application"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate"
	"github.com/Abraxas-365/talentdesk/recruitment/client"
	"github.com/Abraxas-365/talentdesk/recruitment/resume"
	"golang.org/x/sync/errgroup"
)

type Totals struct {
	Candidates   int `json:"candidates"`
	Applications int `json:"applications"`
	Clients      int `json:"clients"`
	ResumeJobs   int `json:"resumeJobs"`
}

// DashboardStats is the monitoring snapshot shown on the dashboard home
type DashboardStats struct {
	Candidates   map[candidate.CandidateStatus]int     `json:"candidates"`
	Applications map[application.ApplicationStatus]int `json:"applications"`
	Clients      map[client.InvitationStatus]int       `json:"clients"`
	ResumeJobs   map[resume.JobStatus]int              `json:"resumeJobs"`
	Totals       Totals                                `json:"totals"`
	GeneratedAt  time.Time                             `json:"generatedAt"`
}

type CandidateCounter interface {
	CountByStatus(ctx context.Context) (map[candidate.CandidateStatus]int, error)
}

type ApplicationCounter interface {
	CountByStatus(ctx context.Context) (map[application.ApplicationStatus]int, error)
}

type ClientCounter interface {
	CountByInvitationStatus(ctx context.Context) (map[client.InvitationStatus]int, error)
}

type ResumeJobCounter interface {
	CountByStatus(ctx context.Context) (map[resume.JobStatus]int, error)
}

type Service struct {
	candidates   CandidateCounter
	applications ApplicationCounter
	clients      ClientCounter
	jobs         ResumeJobCounter
	now          func() time.Time
}

func NewService(candidates CandidateCounter, applications ApplicationCounter, clients ClientCounter, jobs ResumeJobCounter) *Service {
	return &Service{
		candidates:   candidates,
		applications: applications,
		clients:      clients,
		jobs:         jobs,
		now:          time.Now,
	}
}

// Dashboard gathers every counter concurrently. Known statuses are always
// present, with zero when nothing is in them.
func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	out := &DashboardStats{
		Candidates:   zeroed(candidate.Statuses),
		Applications: zeroed(application.Statuses),
		Clients:      zeroed(client.InvitationStatuses),
		ResumeJobs:   zeroed(resume.JobStatuses),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.candidates.CountByStatus(gctx)
		out.Totals.Candidates = merge(out.Candidates, counts)
		return err
	})
	g.Go(func() error {
		counts, err := s.applications.CountByStatus(gctx)
		out.Totals.Applications = merge(out.Applications, counts)
		return err
	})
	g.Go(func() error {
		counts, err := s.clients.CountByInvitationStatus(gctx)
		out.Totals.Clients = merge(out.Clients, counts)
		return err
	})
	g.Go(func() error {
		counts, err := s.jobs.CountByStatus(gctx)
		out.Totals.ResumeJobs = merge(out.ResumeJobs, counts)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, ErrStatsUnavailable().WithCause(err)
	}

	out.GeneratedAt = s.now().UTC()
	return out, nil
}

func zeroed[K comparable](keys []K) map[K]int {
	m := make(map[K]int, len(keys))
	for _, k := range keys {
		m[k] = 0
	}
	return m
}

// merge adds counts into dst and returns their sum
func merge[K comparable](dst, counts map[K]int) int {
	total := 0
	for k, n := range counts {
		dst[k] += n
		total += n
	}
	return total
}
