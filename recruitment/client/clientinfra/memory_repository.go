package clientinfra

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/recruitment/client"
)

type MemoryClientRepository struct {
	mu      sync.RWMutex
	clients map[kernel.ClientID]client.Client
}

func NewMemoryClientRepository() *MemoryClientRepository {
	return &MemoryClientRepository{clients: make(map[kernel.ClientID]client.Client)}
}

var _ client.Repository = (*MemoryClientRepository)(nil)

func (r *MemoryClientRepository) Create(ctx context.Context, c *client.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[c.ID]; ok {
		return client.ErrClientAlreadyExists().WithDetail("client_id", c.ID)
	}
	r.clients[c.ID] = *c
	return nil
}

func (r *MemoryClientRepository) Update(ctx context.Context, c *client.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[c.ID]; !ok {
		return client.ErrClientNotFound().WithDetail("client_id", c.ID)
	}
	r.clients[c.ID] = *c
	return nil
}

func (r *MemoryClientRepository) GetByID(ctx context.Context, id kernel.ClientID) (*client.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[id]
	if !ok {
		return nil, client.ErrClientNotFound().WithDetail("client_id", id)
	}
	return &c, nil
}

func (r *MemoryClientRepository) GetByInvitationToken(ctx context.Context, token string) (*client.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.clients {
		if token != "" && c.InvitationToken == token {
			return &c, nil
		}
	}
	return nil, client.ErrClientNotFound()
}

func (r *MemoryClientRepository) Delete(ctx context.Context, id kernel.ClientID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[id]; !ok {
		return client.ErrClientNotFound().WithDetail("client_id", id)
	}
	delete(r.clients, id)
	return nil
}

func (r *MemoryClientRepository) List(ctx context.Context, filter client.ListClientsRequest, pagination kernel.PaginationOptions) (*kernel.Paginated[client.Client], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []client.Client
	for _, c := range r.clients {
		if c.Matches(filter) {
			matched = append(matched, c)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := strings.ToLower(matched[i].Name), strings.ToLower(matched[j].Name)
		if a == b {
			return matched[i].ID < matched[j].ID
		}
		return a < b
	})
	return kernel.PageOf(matched, pagination), nil
}

func (r *MemoryClientRepository) CountByInvitationStatus(ctx context.Context) (map[client.InvitationStatus]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[client.InvitationStatus]int)
	for _, c := range r.clients {
		counts[c.InvitationStatus]++
	}
	return counts, nil
}
