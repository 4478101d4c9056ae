package user

import (
	"strings"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleRecruiter Role = "recruiter"
	RoleViewer    Role = "viewer"
)

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleAdmin, RoleRecruiter, RoleViewer:
		return r, true
	}
	return r, false
}

// User is a dashboard operator. ClientID and TenantID scope resume
// ingestion to a hiring company.
type User struct {
	ID           kernel.UserID   `json:"id"`
	Username     string          `json:"username"`
	Email        kernel.Email    `json:"email"`
	FullName     string          `json:"fullName,omitempty"`
	Role         Role            `json:"role"`
	ClientID     kernel.ClientID `json:"clientId,omitempty"`
	TenantID     kernel.TenantID `json:"tenantId,omitempty"`
	PasswordHash string          `json:"-"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// IngestClientID resolves which client uploads are filed under
func (u *User) IngestClientID() (kernel.ClientID, bool) {
	if !u.ClientID.IsEmpty() {
		return u.ClientID, true
	}
	if !u.TenantID.IsEmpty() {
		return u.TenantID.ClientID(), true
	}
	return "", false
}
