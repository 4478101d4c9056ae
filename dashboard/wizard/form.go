package wizard

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate"
	"github.com/Abraxas-365/talentdesk/recruitment/resume"
)

// DefaultSource tags candidates created from an uploaded resume
const DefaultSource = "resume_upload"

const summaryPreview = 100

// Form is the review step as typed. Everything is text until Save.
type Form struct {
	Name             string
	Email            string
	Phone            string
	Location         string
	Skills           string
	ExperienceYears  string
	CurrentCTC       string
	ExpectedCTC      string
	NoticePeriodDays string
	Source           string
	Remarks          string
}

// prefill fills a form from a parse result. Without one the form is blank
// apart from the source tag. The file name stands in for a missing name.
func prefill(fileName string, parsed *resume.ParsedResume) Form {
	if parsed == nil {
		return Form{Source: DefaultSource}
	}

	f := Form{
		Name:    strings.TrimSuffix(fileName, filepath.Ext(fileName)),
		Source:  DefaultSource,
		Remarks: "Parsed from " + fileName,
	}
	if name := strings.TrimSpace(parsed.Name); name != "" {
		f.Name = name
	}
	f.Email = parsed.Email
	f.Phone = parsed.Phone
	f.Location = parsed.Location
	f.Skills = parsed.Skills.Join()
	if parsed.ExperienceYears != nil {
		f.ExperienceYears = strconv.FormatFloat(*parsed.ExperienceYears, 'f', -1, 64)
	}
	if summary := strings.TrimSpace(parsed.RawTextSummary); summary != "" {
		f.Remarks += ": " + truncate(summary, summaryPreview)
	}
	return f
}

// request converts the form. Experience reads leniently and falls back to
// zero; money and notice fields that are not plain numbers are left unset.
func (f Form) request(jobID kernel.ResumeJobID, parsed *resume.ParsedResume) candidate.CreateCandidateRequest {
	req := candidate.CreateCandidateRequest{
		Name:             strings.TrimSpace(f.Name),
		Email:            kernel.Email(strings.TrimSpace(f.Email)),
		Phone:            kernel.Phone(strings.TrimSpace(f.Phone)),
		Location:         strings.TrimSpace(f.Location),
		Skills:           []string(resume.SplitSkills(f.Skills)),
		ExperienceYears:  parseExperience(f.ExperienceYears),
		CurrentCTC:       parseAmount(f.CurrentCTC),
		ExpectedCTC:      parseAmount(f.ExpectedCTC),
		NoticePeriodDays: parseDays(f.NoticePeriodDays),
		Source:           strings.TrimSpace(f.Source),
		Remarks:          strings.TrimSpace(f.Remarks),
		ResumeJobID:      jobID,
		ResumeParse:      parsed,
	}
	if req.Source == "" {
		req.Source = DefaultSource
	}
	return req
}

// numeric keeps digits and dots, so "5 yrs" reads as 5
func numeric(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)
}

func parseExperience(s string) float64 {
	v, err := strconv.ParseFloat(numeric(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// parseAmount accepts a number with thousands separators and an optional
// leading currency sign, like "$1,500"
func parseAmount(s string) *float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimLeftFunc(s, func(r rune) bool { return unicode.Is(unicode.Sc, r) })
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return (r < '0' || r > '9') && r != '.' }) {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

func parseDays(s string) *int {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(strings.ToLower(s), "days"), "day"))
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
