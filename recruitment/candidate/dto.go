package candidate

import (
	"strings"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/recruitment/resume"
)

// CreateCandidateRequest - DTO for creating a new candidate
type CreateCandidateRequest struct {
	Name             string               `json:"name"`
	Email            kernel.Email         `json:"email,omitempty"`
	Phone            kernel.Phone         `json:"phone,omitempty"`
	Location         string               `json:"location,omitempty"`
	Skills           []string             `json:"skills"`
	ExperienceYears  float64              `json:"experienceYears"`
	Status           CandidateStatus      `json:"status,omitempty"`
	CurrentCTC       *float64             `json:"currentCtc,omitempty"`
	ExpectedCTC      *float64             `json:"expectedCtc,omitempty"`
	NoticePeriodDays *int                 `json:"noticePeriodDays,omitempty"`
	Source           string               `json:"source,omitempty"`
	Remarks          string               `json:"remarks,omitempty"`
	ResumeJobID      kernel.ResumeJobID   `json:"resumeJobId,omitempty"`
	ResumeParse      *resume.ParsedResume `json:"resumeParse,omitempty"`
}

// Validate checks the fields a candidate cannot exist without
func (r CreateCandidateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrValidationFailed().WithMessage("Name is required").WithDetail("field", "name")
	}
	if !r.Email.Normalize().IsValid() {
		return ErrInvalidEmail().WithDetail("email", r.Email)
	}
	if r.ExperienceYears < 0 {
		return ErrNegativeExperience().WithDetail("experienceYears", r.ExperienceYears)
	}
	if r.Status != "" {
		if _, ok := ParseStatus(string(r.Status)); !ok {
			return ErrInvalidStatus().WithDetail("status", r.Status)
		}
	}
	return validateMoney(r.CurrentCTC, r.ExpectedCTC, r.NoticePeriodDays)
}

// UpdateCandidateRequest - DTO for updating an existing candidate
type UpdateCandidateRequest struct {
	Name             *string          `json:"name,omitempty"`
	Email            *kernel.Email    `json:"email,omitempty"`
	Phone            *kernel.Phone    `json:"phone,omitempty"`
	Location         *string          `json:"location,omitempty"`
	Skills           *[]string        `json:"skills,omitempty"`
	ExperienceYears  *float64         `json:"experienceYears,omitempty"`
	Status           *CandidateStatus `json:"status,omitempty"`
	CurrentCTC       *float64         `json:"currentCtc,omitempty"`
	ExpectedCTC      *float64         `json:"expectedCtc,omitempty"`
	NoticePeriodDays *int             `json:"noticePeriodDays,omitempty"`
	Source           *string          `json:"source,omitempty"`
	Remarks          *string          `json:"remarks,omitempty"`
}

func (r UpdateCandidateRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return ErrValidationFailed().WithMessage("Name is required").WithDetail("field", "name")
	}
	if r.Email != nil && !r.Email.Normalize().IsValid() {
		return ErrInvalidEmail().WithDetail("email", *r.Email)
	}
	if r.ExperienceYears != nil && *r.ExperienceYears < 0 {
		return ErrNegativeExperience().WithDetail("experienceYears", *r.ExperienceYears)
	}
	if r.Status != nil {
		if _, ok := ParseStatus(string(*r.Status)); !ok {
			return ErrInvalidStatus().WithDetail("status", *r.Status)
		}
	}
	return validateMoney(r.CurrentCTC, r.ExpectedCTC, r.NoticePeriodDays)
}

func validateMoney(current, expected *float64, notice *int) error {
	if current != nil && *current < 0 {
		return ErrValidationFailed().WithMessage("Current CTC cannot be negative").WithDetail("field", "currentCtc")
	}
	if expected != nil && *expected < 0 {
		return ErrValidationFailed().WithMessage("Expected CTC cannot be negative").WithDetail("field", "expectedCtc")
	}
	if notice != nil && *notice < 0 {
		return ErrValidationFailed().WithMessage("Notice period cannot be negative").WithDetail("field", "noticePeriodDays")
	}
	return nil
}

// UpdateStatusRequest - PATCH /candidates/:id/status
type UpdateStatusRequest struct {
	Status CandidateStatus `json:"status"`
	Note   string          `json:"note,omitempty"`
}

// AddFlagRequest - POST /candidates/:id/flags
type AddFlagRequest struct {
	Type FlagType `json:"type"`
	Note string   `json:"note,omitempty"`
}

// BulkStatusRequest - POST /candidates/bulk/status
type BulkStatusRequest struct {
	IDs    []kernel.CandidateID `json:"ids"`
	Status CandidateStatus      `json:"status"`
}

// BulkOperationResponse tallies a bulk operation. The operation is complete
// once every id was attempted, whatever the individual outcomes.
type BulkOperationResponse struct {
	Successful []kernel.CandidateID `json:"successful"`
	Failed     map[string]string    `json:"failed"`
	Total      int                  `json:"total"`
}

// ListCandidatesRequest - filters for GET /candidates
type ListCandidatesRequest struct {
	Search   string          `json:"search,omitempty" query:"search"`
	Status   CandidateStatus `json:"status,omitempty" query:"status"`
	Skill    string          `json:"skill,omitempty" query:"skill"`
	Location string          `json:"location,omitempty" query:"location"`
}

// Response type alias for paginated candidates
type PaginatedCandidatesResponse = kernel.Paginated[Candidate]
