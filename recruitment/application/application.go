package application

import (
	"slices"
	"strings"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
)

// ApplicationStatus represents the status of an application
type ApplicationStatus string

const (
	ApplicationStatusApplied   ApplicationStatus = "APPLIED"   // Initial submission
	ApplicationStatusScreening ApplicationStatus = "SCREENING" // Being screened
	ApplicationStatusInterview ApplicationStatus = "INTERVIEW" // In interview process
	ApplicationStatusOffer     ApplicationStatus = "OFFER"     // Offer extended
	ApplicationStatusHired     ApplicationStatus = "HIRED"     // Accepted
	ApplicationStatusRejected  ApplicationStatus = "REJECTED"  // Rejected
	ApplicationStatusWithdrawn ApplicationStatus = "WITHDRAWN" // Withdrawn by candidate
)

// Pipeline is the forward order of the non-terminal flow
var Pipeline = []ApplicationStatus{
	ApplicationStatusApplied,
	ApplicationStatusScreening,
	ApplicationStatusInterview,
	ApplicationStatusOffer,
	ApplicationStatusHired,
}

// Statuses lists every status in display order
var Statuses = append(slices.Clone(Pipeline), ApplicationStatusRejected, ApplicationStatusWithdrawn)

func ParseStatus(s string) (ApplicationStatus, bool) {
	st := ApplicationStatus(strings.ToUpper(strings.TrimSpace(s)))
	return st, slices.Contains(Statuses, st)
}

// rank is the position in Pipeline, or -1 for side states
func (s ApplicationStatus) rank() int {
	return slices.Index(Pipeline, s)
}

// IsFinal reports whether the status accepts no further transitions
func (s ApplicationStatus) IsFinal() bool {
	return s == ApplicationStatusHired || s == ApplicationStatusRejected || s == ApplicationStatusWithdrawn
}

// AuditEntry records one status change
type AuditEntry struct {
	From      ApplicationStatus `json:"from"`
	To        ApplicationStatus `json:"to"`
	ChangedBy kernel.UserID     `json:"changedBy,omitempty"`
	Note      string            `json:"note,omitempty"`
	At        time.Time         `json:"at"`
}

type Application struct {
	ID          kernel.ApplicationID `json:"id"`
	CandidateID kernel.CandidateID   `json:"candidateId"`
	ClientID    kernel.ClientID      `json:"clientId"`
	JobTitle    string               `json:"jobTitle"`
	Status      ApplicationStatus    `json:"status"`
	Notes       string               `json:"notes,omitempty"`
	AuditLog    []AuditEntry         `json:"auditLog"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// New builds an application in APPLIED with its opening audit entry
func New(id kernel.ApplicationID, req CreateApplicationRequest, createdBy kernel.UserID, now time.Time) *Application {
	return &Application{
		ID:          id,
		CandidateID: req.CandidateID,
		ClientID:    req.ClientID,
		JobTitle:    strings.TrimSpace(req.JobTitle),
		Status:      ApplicationStatusApplied,
		Notes:       req.Notes,
		AuditLog: []AuditEntry{{
			From:      "",
			To:        ApplicationStatusApplied,
			ChangedBy: createdBy,
			At:        now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ============================================================================
// Domain Methods
// ============================================================================

// IsActive checks if the application is still moving through the pipeline
func (a *Application) IsActive() bool {
	return !a.Status.IsFinal()
}

// CanUpdateStatus checks if status can be changed. Moves go forward along
// Pipeline (skipping is allowed) and any active application can be rejected
// or withdrawn.
func (a *Application) CanUpdateStatus(newStatus ApplicationStatus) bool {
	if a.Status.IsFinal() || newStatus == a.Status {
		return false
	}
	switch newStatus {
	case ApplicationStatusRejected, ApplicationStatusWithdrawn:
		return true
	}
	from, to := a.Status.rank(), newStatus.rank()
	return from >= 0 && to > from
}

// UpdateStatus changes the status and appends the audit entry
func (a *Application) UpdateStatus(newStatus ApplicationStatus, changedBy kernel.UserID, note string, now time.Time) error {
	st, ok := ParseStatus(string(newStatus))
	if !ok {
		return ErrInvalidStatus().WithDetail("status", newStatus)
	}
	if !a.CanUpdateStatus(st) {
		return ErrInvalidStatusTransition().
			WithDetail("current_status", a.Status).
			WithDetail("new_status", st)
	}

	now = a.clamp(now)
	a.AuditLog = append(a.AuditLog, AuditEntry{
		From:      a.Status,
		To:        st,
		ChangedBy: changedBy,
		Note:      strings.TrimSpace(note),
		At:        now,
	})
	a.Status = st
	a.UpdatedAt = now
	return nil
}

// Apply merges the editable fields of req
func (a *Application) Apply(req UpdateApplicationRequest, now time.Time) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if req.JobTitle != nil {
		a.JobTitle = strings.TrimSpace(*req.JobTitle)
	}
	if req.Notes != nil {
		a.Notes = *req.Notes
	}
	a.UpdatedAt = a.clamp(now)
	return nil
}

func (a *Application) clamp(now time.Time) time.Time {
	if now.Before(a.CreatedAt) {
		return a.CreatedAt
	}
	return now
}

// Matches reports whether the application passes a list filter
func (a *Application) Matches(f ListApplicationsRequest) bool {
	if f.Status != "" {
		if st, _ := ParseStatus(string(f.Status)); st != a.Status {
			return false
		}
	}
	if !f.CandidateID.IsEmpty() && f.CandidateID != a.CandidateID {
		return false
	}
	if !f.ClientID.IsEmpty() && f.ClientID != a.ClientID {
		return false
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		if !strings.Contains(strings.ToLower(a.JobTitle), strings.ToLower(q)) {
			return false
		}
	}
	return true
}
