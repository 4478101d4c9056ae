package query

import (
	"context"

	"github.com/Abraxas-365/talentdesk/dashboard/datasource"
	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/pkg/querycache"
	"github.com/Abraxas-365/talentdesk/recruitment/client"
)

type Clients struct {
	cache *querycache.Cache
	src   datasource.ClientSource
}

func (c *Clients) List(ctx context.Context, filter client.ListClientsRequest, page kernel.PaginationOptions) (querycache.Value[*kernel.Paginated[client.Client]], error) {
	return querycache.Load(ctx, c.cache, listKey(ResourceClients, filter, page), ListTTL,
		func(ctx context.Context) (*kernel.Paginated[client.Client], error) {
			return c.src.ListClients(ctx, filter, page)
		})
}

func (c *Clients) Get(ctx context.Context, id kernel.ClientID) (querycache.Value[*client.Client], error) {
	return querycache.Load(ctx, c.cache, querycache.DetailKey(ResourceClients, id.String()), DetailTTL,
		func(ctx context.Context) (*client.Client, error) {
			return c.src.GetClient(ctx, id)
		})
}

func (c *Clients) Create(ctx context.Context, req client.CreateClientRequest) (*client.Client, error) {
	return mutate(ctx, func(ctx context.Context) (*client.Client, error) {
		return c.src.CreateClient(ctx, req)
	}, c.written)
}

func (c *Clients) Update(ctx context.Context, id kernel.ClientID, req client.UpdateClientRequest) (*client.Client, error) {
	return mutate(ctx, func(ctx context.Context) (*client.Client, error) {
		return c.src.UpdateClient(ctx, id, req)
	}, c.written)
}

// Invite sends (or resends) the portal invitation
func (c *Clients) Invite(ctx context.Context, id kernel.ClientID) (*client.InviteResponse, error) {
	return mutate(ctx, func(ctx context.Context) (*client.InviteResponse, error) {
		return c.src.InviteClient(ctx, id)
	}, func(resp *client.InviteResponse) {
		if resp.Client != nil {
			c.cache.SetEntity(ResourceClients, resp.Client.ID.String(), resp.Client)
		} else {
			c.cache.RemoveEntity(ResourceClients, id.String())
		}
		c.cache.InvalidateLists(ResourceClients, ResourceStats)
	})
}

func (c *Clients) Delete(ctx context.Context, id kernel.ClientID) error {
	return remove(ctx, func(ctx context.Context) error {
		return c.src.DeleteClient(ctx, id)
	}, func() {
		c.cache.RemoveEntity(ResourceClients, id.String())
		c.cache.InvalidateLists(ResourceClients, ResourceStats, ResourceApplications)
	})
}

func (c *Clients) written(v *client.Client) {
	c.cache.SetEntity(ResourceClients, v.ID.String(), v)
	c.cache.InvalidateLists(ResourceClients, ResourceStats)
}
