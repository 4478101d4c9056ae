package query

import (
	"context"

	"github.com/Abraxas-365/talentdesk/dashboard/datasource"
	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/pkg/querycache"
	"github.com/Abraxas-365/talentdesk/recruitment/resume"
	"github.com/Abraxas-365/talentdesk/recruitment/stats"
)

type Stats struct {
	cache *querycache.Cache
	src   datasource.StatsSource
}

var dashboardKey = querycache.Key{Resource: ResourceStats, Operation: "dashboard"}

func (s *Stats) Dashboard(ctx context.Context) (querycache.Value[*stats.DashboardStats], error) {
	return querycache.Load(ctx, s.cache, dashboardKey, StatsTTL, s.src.DashboardStats)
}

// ResumeJobs is read-only here; jobs change as the backend parses them and
// the live channel keeps the cache honest
type ResumeJobs struct {
	cache *querycache.Cache
	src   datasource.ResumeSource
}

func (r *ResumeJobs) List(ctx context.Context, filter resume.ListJobsRequest, page kernel.PaginationOptions) (querycache.Value[*kernel.Paginated[resume.ResumeJob]], error) {
	return querycache.Load(ctx, r.cache, listKey(ResourceResumeJobs, filter, page), ListTTL,
		func(ctx context.Context) (*kernel.Paginated[resume.ResumeJob], error) {
			return r.src.ListJobs(ctx, filter, page)
		})
}

func (r *ResumeJobs) Get(ctx context.Context, id kernel.ResumeJobID) (querycache.Value[*resume.ResumeJob], error) {
	return querycache.Load(ctx, r.cache, querycache.DetailKey(ResourceResumeJobs, id.String()), DetailTTL,
		func(ctx context.Context) (*resume.ResumeJob, error) {
			return r.src.GetJob(ctx, id)
		})
}
