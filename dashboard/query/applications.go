package query

import (
	"context"

	"github.com/Abraxas-365/talentdesk/dashboard/datasource"
	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/pkg/querycache"
	"github.com/Abraxas-365/talentdesk/recruitment/application"
)

type Applications struct {
	cache *querycache.Cache
	src   datasource.ApplicationSource
}

func (a *Applications) List(ctx context.Context, filter application.ListApplicationsRequest, page kernel.PaginationOptions) (querycache.Value[*kernel.Paginated[application.Application]], error) {
	return querycache.Load(ctx, a.cache, listKey(ResourceApplications, filter, page), ListTTL,
		func(ctx context.Context) (*kernel.Paginated[application.Application], error) {
			return a.src.ListApplications(ctx, filter, page)
		})
}

func (a *Applications) Get(ctx context.Context, id kernel.ApplicationID) (querycache.Value[*application.Application], error) {
	return querycache.Load(ctx, a.cache, querycache.DetailKey(ResourceApplications, id.String()), DetailTTL,
		func(ctx context.Context) (*application.Application, error) {
			return a.src.GetApplication(ctx, id)
		})
}

// Create also refreshes candidate lists, which show application counts
func (a *Applications) Create(ctx context.Context, req application.CreateApplicationRequest) (*application.Application, error) {
	return mutate(ctx, func(ctx context.Context) (*application.Application, error) {
		return a.src.CreateApplication(ctx, req)
	}, func(v *application.Application) {
		a.written(v)
		a.cache.InvalidateLists(ResourceCandidates)
	})
}

func (a *Applications) Update(ctx context.Context, id kernel.ApplicationID, req application.UpdateApplicationRequest) (*application.Application, error) {
	return mutate(ctx, func(ctx context.Context) (*application.Application, error) {
		return a.src.UpdateApplication(ctx, id, req)
	}, a.written)
}

func (a *Applications) UpdateStatus(ctx context.Context, id kernel.ApplicationID, status application.ApplicationStatus, note string) (*application.Application, error) {
	return mutate(ctx, func(ctx context.Context) (*application.Application, error) {
		return a.src.UpdateApplicationStatus(ctx, id, application.UpdateStatusRequest{Status: status, Note: note})
	}, a.written)
}

func (a *Applications) Delete(ctx context.Context, id kernel.ApplicationID) error {
	return remove(ctx, func(ctx context.Context) error {
		return a.src.DeleteApplication(ctx, id)
	}, func() {
		a.cache.RemoveEntity(ResourceApplications, id.String())
		a.cache.InvalidateLists(ResourceApplications, ResourceStats, ResourceCandidates)
	})
}

func (a *Applications) written(v *application.Application) {
	a.cache.SetEntity(ResourceApplications, v.ID.String(), v)
	a.cache.InvalidateLists(ResourceApplications, ResourceStats)
}
