package clientsrv

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/errx"
	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/pkg/logx"
	"github.com/Abraxas-365/talentdesk/recruitment/client"
	"github.com/Abraxas-365/talentdesk/recruitment/events"
	"github.com/google/uuid"
)

// ClientService provides business operations for hiring clients
type ClientService struct {
	clientRepo      client.Repository
	accounts        client.AccountRegistrar
	events          events.Publisher
	registrationURL string
	newToken        func() string
	now             func() time.Time
}

type Option func(*ClientService)

// WithAccountRegistrar creates a portal login when a client registers
func WithAccountRegistrar(r client.AccountRegistrar) Option {
	return func(s *ClientService) { s.accounts = r }
}

func WithEvents(p events.Publisher) Option {
	return func(s *ClientService) { s.events = p }
}

// WithRegistrationURL sets the page invitation links point to
func WithRegistrationURL(base string) Option {
	return func(s *ClientService) { s.registrationURL = base }
}

func WithClock(now func() time.Time) Option {
	return func(s *ClientService) { s.now = now }
}

// NewClientService creates a new instance of the client service
func NewClientService(clientRepo client.Repository, opts ...Option) *ClientService {
	s := &ClientService{
		clientRepo: clientRepo,
		newToken:   uuid.NewString,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateClient creates a new client in not_invited
func (s *ClientService) CreateClient(ctx context.Context, req client.CreateClientRequest, creatorID kernel.UserID) (*client.Client, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	c := &client.Client{
		ID:               kernel.NewClientID(uuid.NewString()),
		Name:             strings.TrimSpace(req.Name),
		Industry:         strings.TrimSpace(req.Industry),
		Website:          strings.TrimSpace(req.Website),
		ContactName:      strings.TrimSpace(req.ContactName),
		ContactEmail:     req.ContactEmail.Normalize(),
		ContactPhone:     req.ContactPhone.Normalize(),
		Address:          req.Address,
		Notes:            req.Notes,
		InvitationStatus: client.InvitationNotInvited,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.clientRepo.Create(ctx, c); err != nil {
		return nil, errx.Wrap(err, "failed to create client", errx.TypeInternal)
	}

	logx.Infof("Client created: ID=%s, Name=%s, By=%s", c.ID, c.Name, creatorID)
	events.Emit(ctx, s.events, events.TypeClientUpdated, c)
	return c, nil
}

// GetClient retrieves a client by ID
func (s *ClientService) GetClient(ctx context.Context, id kernel.ClientID) (*client.Client, error) {
	return s.clientRepo.GetByID(ctx, id)
}

// Exists reports whether a client with id is on file
func (s *ClientService) Exists(ctx context.Context, id kernel.ClientID) (bool, error) {
	_, err := s.clientRepo.GetByID(ctx, id)
	if errx.IsCode(err, client.CodeClientNotFound) {
		return false, nil
	}
	return err == nil, err
}

// ListClients retrieves clients matching the filter
func (s *ClientService) ListClients(ctx context.Context, filter client.ListClientsRequest, pagination kernel.PaginationOptions) (*client.PaginatedClientsResponse, error) {
	if filter.InvitationStatus != "" {
		st, ok := client.ParseInvitationStatus(string(filter.InvitationStatus))
		if !ok {
			return nil, client.ErrInvalidInvitationStatus().WithDetail("invitationStatus", filter.InvitationStatus)
		}
		filter.InvitationStatus = st
	}
	return s.clientRepo.List(ctx, filter, pagination.Normalize())
}

// UpdateClient applies a partial update
func (s *ClientService) UpdateClient(ctx context.Context, id kernel.ClientID, req client.UpdateClientRequest, updaterID kernel.UserID) (*client.Client, error) {
	c, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.Apply(req, s.now().UTC()); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Update(ctx, c); err != nil {
		return nil, errx.Wrap(err, "failed to update client", errx.TypeInternal)
	}

	logx.Infof("Client updated: ID=%s, By=%s", id, updaterID)
	events.Emit(ctx, s.events, events.TypeClientUpdated, c)
	return c, nil
}

// DeleteClient removes a client
func (s *ClientService) DeleteClient(ctx context.Context, id kernel.ClientID, deleterID kernel.UserID) error {
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return err
	}

	logx.Infof("Client deleted: ID=%s, By=%s", id, deleterID)
	events.Emit(ctx, s.events, events.TypeClientUpdated, map[string]any{
		"id":      id,
		"deleted": true,
	})
	return nil
}

// InviteClient sends (or resends) the registration invitation
func (s *ClientService) InviteClient(ctx context.Context, id kernel.ClientID, inviterID kernel.UserID) (*client.InviteResponse, error) {
	c, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resend := c.InvitationStatus == client.InvitationInvited
	token := s.newToken()
	if err := c.Invite(token, s.now().UTC()); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Update(ctx, c); err != nil {
		return nil, errx.Wrap(err, "failed to save invitation", errx.TypeInternal)
	}

	logx.Infof("Client invited: ID=%s, Contact=%s, Resend=%t, By=%s", id, c.ContactEmail, resend, inviterID)
	events.Emit(ctx, s.events, events.TypeClientUpdated, c)

	return &client.InviteResponse{
		Client:          c,
		InvitationToken: token,
		RegistrationURL: s.registrationLink(token),
	}, nil
}

func (s *ClientService) registrationLink(token string) string {
	if s.registrationURL == "" {
		return ""
	}
	u, err := url.Parse(s.registrationURL)
	if err != nil {
		logx.Warnf("Invalid registration URL %q: %v", s.registrationURL, err)
		return ""
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// Register accepts an invitation and, when requested, creates the portal
// login. The client only moves to registered once the login exists.
func (s *ClientService) Register(ctx context.Context, req client.RegisterRequest) (*client.Client, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.clientRepo.GetByInvitationToken(ctx, strings.TrimSpace(req.Token))
	if err != nil {
		if errx.IsCode(err, client.CodeClientNotFound) {
			return nil, client.ErrInvalidInvitationToken()
		}
		return nil, err
	}

	if err := c.Register(strings.TrimSpace(req.Token), s.now().UTC()); err != nil {
		return nil, err
	}

	if username := strings.TrimSpace(req.Username); username != "" && s.accounts != nil {
		fullName := req.FullName
		if fullName == "" {
			fullName = c.ContactName
		}
		if err := s.accounts.RegisterClientAccount(ctx, c.ID, client.Account{
			Username: username,
			Password: req.Password,
			Email:    c.ContactEmail,
			FullName: fullName,
		}); err != nil {
			return nil, err
		}
	}

	if err := s.clientRepo.Update(ctx, c); err != nil {
		return nil, errx.Wrap(err, "failed to save registration", errx.TypeInternal)
	}

	logx.Infof("Client registered: ID=%s", c.ID)
	events.Emit(ctx, s.events, events.TypeClientUpdated, c)
	return c, nil
}

// CountByInvitationStatus feeds the dashboard statistics
func (s *ClientService) CountByInvitationStatus(ctx context.Context) (map[client.InvitationStatus]int, error) {
	return s.clientRepo.CountByInvitationStatus(ctx)
}
