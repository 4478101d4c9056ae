package application

import (
	"strings"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
)

// CreateApplicationRequest - DTO for creating a new application
type CreateApplicationRequest struct {
	CandidateID kernel.CandidateID `json:"candidateId"`
	ClientID    kernel.ClientID    `json:"clientId"`
	JobTitle    string             `json:"jobTitle"`
	Notes       string             `json:"notes,omitempty"`
}

func (r CreateApplicationRequest) Validate() error {
	if r.CandidateID.IsEmpty() {
		return ErrValidationFailed().WithMessage("Candidate is required").WithDetail("field", "candidateId")
	}
	if r.ClientID.IsEmpty() {
		return ErrValidationFailed().WithMessage("Client is required").WithDetail("field", "clientId")
	}
	if strings.TrimSpace(r.JobTitle) == "" {
		return ErrValidationFailed().WithMessage("Job title is required").WithDetail("field", "jobTitle")
	}
	return nil
}

// UpdateApplicationRequest - DTO for updating an existing application
type UpdateApplicationRequest struct {
	JobTitle *string `json:"jobTitle,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

func (r UpdateApplicationRequest) Validate() error {
	if r.JobTitle != nil && strings.TrimSpace(*r.JobTitle) == "" {
		return ErrValidationFailed().WithMessage("Job title is required").WithDetail("field", "jobTitle")
	}
	return nil
}

// UpdateStatusRequest - PATCH /applications/:id/status
type UpdateStatusRequest struct {
	Status ApplicationStatus `json:"status"`
	Note   string            `json:"note,omitempty"`
}

// ListApplicationsRequest - filters for GET /applications
type ListApplicationsRequest struct {
	Search      string             `json:"search,omitempty" query:"search"`
	Status      ApplicationStatus  `json:"status,omitempty" query:"status"`
	CandidateID kernel.CandidateID `json:"candidateId,omitempty" query:"candidateId"`
	ClientID    kernel.ClientID    `json:"clientId,omitempty" query:"clientId"`
}

// Response type alias for paginated applications
type PaginatedApplicationsResponse = kernel.Paginated[Application]
