package client

import (
	"strings"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
)

// InvitationStatus tracks whether the hiring company has portal access
type InvitationStatus string

const (
	InvitationNotInvited InvitationStatus = "not_invited" // No invitation sent
	InvitationInvited    InvitationStatus = "invited"     // Invitation sent, not yet used
	InvitationRegistered InvitationStatus = "registered"  // Invitation accepted
)

func ParseInvitationStatus(s string) (InvitationStatus, bool) {
	st := InvitationStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case InvitationNotInvited, InvitationInvited, InvitationRegistered:
		return st, true
	}
	return st, false
}

// InvitationStatuses lists every state in lifecycle order
var InvitationStatuses = []InvitationStatus{InvitationNotInvited, InvitationInvited, InvitationRegistered}

// Client is a hiring company
type Client struct {
	ID               kernel.ClientID  `json:"id"`
	Name             string           `json:"name"`
	Industry         string           `json:"industry,omitempty"`
	Website          string           `json:"website,omitempty"`
	ContactName      string           `json:"contactName,omitempty"`
	ContactEmail     kernel.Email     `json:"contactEmail,omitempty"`
	ContactPhone     kernel.Phone     `json:"contactPhone,omitempty"`
	Address          string           `json:"address,omitempty"`
	Notes            string           `json:"notes,omitempty"`
	InvitationStatus InvitationStatus `json:"invitationStatus"`
	InvitationToken  string           `json:"-"`
	InvitationSentAt *time.Time       `json:"invitationSentAt,omitempty"`
	RegisteredAt     *time.Time       `json:"registeredAt,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// ============================================================================
// Domain Methods
// ============================================================================

// IsRegistered checks if the client accepted its invitation
func (c *Client) IsRegistered() bool {
	return c.InvitationStatus == InvitationRegistered
}

// CanBeInvited checks if an invitation (or a resend) is allowed
func (c *Client) CanBeInvited() bool {
	return c.InvitationStatus == InvitationNotInvited || c.InvitationStatus == InvitationInvited
}

// Invite issues a fresh token. Resending replaces the previous token.
func (c *Client) Invite(token string, now time.Time) error {
	if !c.CanBeInvited() {
		return ErrAlreadyRegistered().WithDetail("client_id", c.ID)
	}
	if c.ContactEmail == "" {
		return ErrMissingContactEmail().WithDetail("client_id", c.ID)
	}

	now = c.clamp(now)
	c.InvitationStatus = InvitationInvited
	c.InvitationToken = token
	c.InvitationSentAt = &now
	c.UpdatedAt = now
	return nil
}

// Register accepts the invitation carrying token
func (c *Client) Register(token string, now time.Time) error {
	switch c.InvitationStatus {
	case InvitationRegistered:
		return ErrAlreadyRegistered().WithDetail("client_id", c.ID)
	case InvitationNotInvited:
		return ErrNotInvited().WithDetail("client_id", c.ID)
	}
	if token == "" || token != c.InvitationToken {
		return ErrInvalidInvitationToken()
	}

	now = c.clamp(now)
	c.InvitationStatus = InvitationRegistered
	c.InvitationToken = ""
	c.RegisteredAt = &now
	c.UpdatedAt = now
	return nil
}

// Apply merges the non-nil fields of req
func (c *Client) Apply(req UpdateClientRequest, now time.Time) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Industry != nil {
		c.Industry = *req.Industry
	}
	if req.Website != nil {
		c.Website = *req.Website
	}
	if req.ContactName != nil {
		c.ContactName = *req.ContactName
	}
	if req.ContactEmail != nil {
		c.ContactEmail = req.ContactEmail.Normalize()
	}
	if req.ContactPhone != nil {
		c.ContactPhone = req.ContactPhone.Normalize()
	}
	if req.Address != nil {
		c.Address = *req.Address
	}
	if req.Notes != nil {
		c.Notes = *req.Notes
	}
	c.UpdatedAt = c.clamp(now)
	return nil
}

func (c *Client) clamp(now time.Time) time.Time {
	if now.Before(c.CreatedAt) {
		return c.CreatedAt
	}
	return now
}

// Matches reports whether the client passes a list filter
func (c *Client) Matches(f ListClientsRequest) bool {
	if f.InvitationStatus != "" {
		if st, _ := ParseInvitationStatus(string(f.InvitationStatus)); st != c.InvitationStatus {
			return false
		}
	}
	if f.Industry != "" && !strings.EqualFold(strings.TrimSpace(f.Industry), c.Industry) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		haystack := strings.ToLower(c.Name + " " + c.ContactName + " " + string(c.ContactEmail))
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	return true
}
