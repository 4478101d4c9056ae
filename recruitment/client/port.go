package client

import (
	"context"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
)

type Repository interface {
	// Create creates a new client
	Create(ctx context.Context, client *Client) error

	// Update updates an existing client
	Update(ctx context.Context, client *Client) error

	// GetByID retrieves a client by ID
	GetByID(ctx context.Context, id kernel.ClientID) (*Client, error)

	// GetByInvitationToken retrieves the client holding an outstanding invitation
	GetByInvitationToken(ctx context.Context, token string) (*Client, error)

	// Delete deletes a client by ID
	Delete(ctx context.Context, id kernel.ClientID) error

	// List retrieves clients matching the filter, sorted by name
	List(ctx context.Context, filter ListClientsRequest, pagination kernel.PaginationOptions) (*kernel.Paginated[Client], error)

	// CountByInvitationStatus counts clients per invitation state
	CountByInvitationStatus(ctx context.Context) (map[InvitationStatus]int, error)
}

// AccountRegistrar creates the portal login for a client that accepts its
// invitation
type AccountRegistrar interface {
	RegisterClientAccount(ctx context.Context, clientID kernel.ClientID, account Account) error
}

// AccountRegistrarFunc adapts a function to AccountRegistrar
type AccountRegistrarFunc func(ctx context.Context, clientID kernel.ClientID, account Account) error

func (f AccountRegistrarFunc) RegisterClientAccount(ctx context.Context, clientID kernel.ClientID, account Account) error {
	return f(ctx, clientID, account)
}
