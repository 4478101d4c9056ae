package candidate

import (
	"strings"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/recruitment/resume"
)

// CandidateStatus represents where a candidate stands in the pipeline
type CandidateStatus string

const (
	CandidateStatusNew          CandidateStatus = "NEW"
	CandidateStatusScreening    CandidateStatus = "SCREENING"
	CandidateStatusInterviewing CandidateStatus = "INTERVIEWING"
	CandidateStatusOffered      CandidateStatus = "OFFERED"
	CandidateStatusHired        CandidateStatus = "HIRED"
	CandidateStatusRejected     CandidateStatus = "REJECTED"
	CandidateStatusOnHold       CandidateStatus = "ON_HOLD"
)

// Statuses lists every status in display order
var Statuses = []CandidateStatus{
	CandidateStatusNew,
	CandidateStatusScreening,
	CandidateStatusInterviewing,
	CandidateStatusOffered,
	CandidateStatusHired,
	CandidateStatusRejected,
	CandidateStatusOnHold,
}

// ParseStatus accepts any casing and "on hold" / "on-hold" spellings
func ParseStatus(s string) (CandidateStatus, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	for _, st := range Statuses {
		if string(st) == normalized {
			return st, true
		}
	}
	return CandidateStatus(normalized), false
}

// FlagType classifies a flag annotation
type FlagType string

const (
	FlagDuplicate    FlagType = "DUPLICATE"
	FlagRedFlag      FlagType = "RED_FLAG"
	FlagHot          FlagType = "HOT"
	FlagNeedsReview  FlagType = "NEEDS_REVIEW"
	FlagDoNotContact FlagType = "DO_NOT_CONTACT"
)

func (f FlagType) IsValid() bool {
	switch f {
	case FlagDuplicate, FlagRedFlag, FlagHot, FlagNeedsReview, FlagDoNotContact:
		return true
	}
	return false
}

type Flag struct {
	Type      FlagType      `json:"type"`
	Note      string        `json:"note,omitempty"`
	CreatedBy kernel.UserID `json:"createdBy,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

type Candidate struct {
	ID               kernel.CandidateID   `json:"id"`
	Name             string               `json:"name"`
	Email            kernel.Email         `json:"email,omitempty"`
	Phone            kernel.Phone         `json:"phone,omitempty"`
	Location         string               `json:"location,omitempty"`
	Skills           []string             `json:"skills"`
	ExperienceYears  float64              `json:"experienceYears"`
	Status           CandidateStatus      `json:"status"`
	ResumeParse      *resume.ParsedResume `json:"resumeParse,omitempty"`
	ResumeJobID      kernel.ResumeJobID   `json:"resumeJobId,omitempty"`
	Flags            []Flag               `json:"flags"`
	CurrentCTC       *float64             `json:"currentCtc,omitempty"`
	ExpectedCTC      *float64             `json:"expectedCtc,omitempty"`
	NoticePeriodDays *int                 `json:"noticePeriodDays,omitempty"`
	Source           string               `json:"source,omitempty"`
	Remarks          string               `json:"remarks,omitempty"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

// ============================================================================
// Domain Methods
// ============================================================================

// ChangeStatus moves the candidate to any other status
func (c *Candidate) ChangeStatus(status CandidateStatus, now time.Time) error {
	st, ok := ParseStatus(string(status))
	if !ok {
		return ErrInvalidStatus().WithDetail("status", status)
	}
	c.Status = st
	c.touch(now)
	return nil
}

// AddFlag appends a flag annotation
func (c *Candidate) AddFlag(flag Flag, now time.Time) error {
	if !flag.Type.IsValid() {
		return ErrInvalidFlag().WithDetail("type", flag.Type)
	}
	if flag.CreatedAt.IsZero() {
		flag.CreatedAt = now
	}
	c.Flags = append(c.Flags, flag)
	c.touch(now)
	return nil
}

// HasFlag reports whether a flag of type t is present
func (c *Candidate) HasFlag(t FlagType) bool {
	for _, f := range c.Flags {
		if f.Type == t {
			return true
		}
	}
	return false
}

// Apply merges the non-nil fields of req
func (c *Candidate) Apply(req UpdateCandidateRequest, now time.Time) error {
	if err := req.Validate(); err != nil {
		return err
	}

	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		c.Email = req.Email.Normalize()
	}
	if req.Phone != nil {
		c.Phone = req.Phone.Normalize()
	}
	if req.Location != nil {
		c.Location = strings.TrimSpace(*req.Location)
	}
	if req.Skills != nil {
		c.Skills = *req.Skills
	}
	if req.ExperienceYears != nil {
		c.ExperienceYears = *req.ExperienceYears
	}
	if req.Status != nil {
		st, _ := ParseStatus(string(*req.Status))
		c.Status = st
	}
	if req.CurrentCTC != nil {
		c.CurrentCTC = req.CurrentCTC
	}
	if req.ExpectedCTC != nil {
		c.ExpectedCTC = req.ExpectedCTC
	}
	if req.NoticePeriodDays != nil {
		c.NoticePeriodDays = req.NoticePeriodDays
	}
	if req.Source != nil {
		c.Source = *req.Source
	}
	if req.Remarks != nil {
		c.Remarks = *req.Remarks
	}

	c.touch(now)
	return nil
}

// touch keeps UpdatedAt >= CreatedAt even when clocks disagree
func (c *Candidate) touch(now time.Time) {
	if now.Before(c.CreatedAt) {
		now = c.CreatedAt
	}
	c.UpdatedAt = now
}

// Matches reports whether the candidate passes a list filter
func (c *Candidate) Matches(f ListCandidatesRequest) bool {
	if f.Status != "" {
		if st, _ := ParseStatus(string(f.Status)); st != c.Status {
			return false
		}
	}
	if f.Location != "" && !containsFold(c.Location, f.Location) {
		return false
	}
	if f.Skill != "" {
		found := false
		for _, s := range c.Skills {
			if strings.EqualFold(s, strings.TrimSpace(f.Skill)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Search != "" {
		q := strings.TrimSpace(f.Search)
		if !containsFold(c.Name, q) && !containsFold(string(c.Email), q) && !containsFold(string(c.Phone), q) {
			return false
		}
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}
