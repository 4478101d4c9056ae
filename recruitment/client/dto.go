package client

import (
	"strings"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
)

// CreateClientRequest - DTO for creating a new client
type CreateClientRequest struct {
	Name         string       `json:"name"`
	Industry     string       `json:"industry,omitempty"`
	Website      string       `json:"website,omitempty"`
	ContactName  string       `json:"contactName,omitempty"`
	ContactEmail kernel.Email `json:"contactEmail,omitempty"`
	ContactPhone kernel.Phone `json:"contactPhone,omitempty"`
	Address      string       `json:"address,omitempty"`
	Notes        string       `json:"notes,omitempty"`
}

func (r CreateClientRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrValidationFailed().WithMessage("Name is required").WithDetail("field", "name")
	}
	if !r.ContactEmail.Normalize().IsValid() {
		return ErrInvalidEmail().WithDetail("contactEmail", r.ContactEmail)
	}
	return nil
}

// UpdateClientRequest - DTO for updating an existing client
type UpdateClientRequest struct {
	Name         *string       `json:"name,omitempty"`
	Industry     *string       `json:"industry,omitempty"`
	Website      *string       `json:"website,omitempty"`
	ContactName  *string       `json:"contactName,omitempty"`
	ContactEmail *kernel.Email `json:"contactEmail,omitempty"`
	ContactPhone *kernel.Phone `json:"contactPhone,omitempty"`
	Address      *string       `json:"address,omitempty"`
	Notes        *string       `json:"notes,omitempty"`
}

func (r UpdateClientRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return ErrValidationFailed().WithMessage("Name is required").WithDetail("field", "name")
	}
	if r.ContactEmail != nil && !r.ContactEmail.Normalize().IsValid() {
		return ErrInvalidEmail().WithDetail("contactEmail", *r.ContactEmail)
	}
	return nil
}

// InviteResponse carries the token the contact registers with
type InviteResponse struct {
	Client          *Client `json:"client"`
	InvitationToken string  `json:"invitationToken"`
	RegistrationURL string  `json:"registrationUrl,omitempty"`
}

// RegisterRequest - POST /clients/register. The account fields are
// optional; when a username is given a portal login is created for the
// client contact.
type RegisterRequest struct {
	Token    string `json:"token" form:"token"`
	Username string `json:"username,omitempty" form:"username"`
	Password string `json:"password,omitempty" form:"password"`
	FullName string `json:"fullName,omitempty" form:"fullName"`
}

func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Token) == "" {
		return ErrInvalidInvitationToken()
	}
	if strings.TrimSpace(r.Username) != "" && len(r.Password) < 8 {
		return ErrValidationFailed().WithMessage("Password must be at least 8 characters").WithDetail("field", "password")
	}
	return nil
}

// Account is the portal login created on registration
type Account struct {
	Username string
	Password string
	Email    kernel.Email
	FullName string
}

// ListClientsRequest - filters for GET /clients
type ListClientsRequest struct {
	Search           string           `json:"search,omitempty" query:"search"`
	Industry         string           `json:"industry,omitempty" query:"industry"`
	InvitationStatus InvitationStatus `json:"invitationStatus,omitempty" query:"invitationStatus"`
}

// Response type alias for paginated clients
type PaginatedClientsResponse = kernel.Paginated[Client]
