package resumeparser

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/Abraxas-365/talentdesk/internal/pdf"
	"github.com/Abraxas-365/talentdesk/recruitment/resume"
)

var (
	emailPattern      = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern      = regexp.MustCompile(`\+?\d[\d\s().\-]{7,}\d`)
	experiencePattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*\+?\s*(?:years|yrs)`)
	locationPattern   = regexp.MustCompile(`(?i)^(?:location|address|based in)\s*[:\-]\s*(.+)$`)
)

// KnownSkills is scanned for when no model is available
var KnownSkills = []string{
	"Go", "Python", "Java", "JavaScript", "TypeScript", "React", "Angular", "Vue",
	"Node.js", "SQL", "PostgreSQL", "MySQL", "MongoDB", "Redis", "Docker",
	"Kubernetes", "AWS", "GCP", "Azure", "Terraform", "Linux", "Git", "C++",
	"C#", ".NET", "Rust", "Kotlin", "Swift", "Excel", "Salesforce",
}

const summaryChars = 300

// HeuristicParser reads the PDF text layer and picks fields out with
// patterns. Images carry no text layer, so they yield an empty result.
type HeuristicParser struct {
	extract func([]byte) (string, error)
}

func NewHeuristicParser() *HeuristicParser {
	return &HeuristicParser{extract: pdf.ExtractText}
}

func (h *HeuristicParser) Parse(ctx context.Context, doc resume.Document) (*resume.ParsedResume, error) {
	if resume.NormalizeContentType(doc.ContentType) != "application/pdf" {
		return &resume.ParsedResume{}, nil
	}
	text, err := h.extract(doc.Data)
	if err != nil {
		return nil, err
	}
	return ParseText(text), nil
}

// ParseText extracts what it can from plain resume text
func ParseText(text string) *resume.ParsedResume {
	out := &resume.ParsedResume{
		Email: emailPattern.FindString(text),
	}
	if phone := phonePattern.FindString(text); phone != "" {
		out.Phone = strings.TrimSpace(phone)
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if out.Name == "" && looksLikeName(line) {
			out.Name = line
		}
		if m := locationPattern.FindStringSubmatch(line); out.Location == "" && m != nil {
			out.Location = strings.TrimSpace(m[1])
		}
	}

	if m := experiencePattern.FindStringSubmatch(text); m != nil {
		if years, err := strconv.ParseFloat(m[1], 64); err == nil {
			out.ExperienceYears = &years
		}
	}

	out.Skills = scanSkills(text)

	summary := strings.Join(strings.Fields(text), " ")
	if len(summary) > summaryChars {
		summary = summary[:summaryChars]
	}
	out.RawTextSummary = summary
	return out
}

// looksLikeName accepts the first short line without digits or contact data
func looksLikeName(line string) bool {
	if len(line) > 60 || strings.ContainsAny(line, "@:/0123456789") {
		return false
	}
	words := strings.Fields(line)
	return len(words) >= 1 && len(words) <= 5
}

func scanSkills(text string) resume.Skills {
	var out resume.Skills
	for _, skill := range KnownSkills {
		pattern := `(?i)(^|[^A-Za-z0-9+#.])` + regexp.QuoteMeta(skill) + `($|[^A-Za-z0-9+#])`
		if regexp.MustCompile(pattern).MatchString(text) {
			out = append(out, skill)
		}
	}
	return out
}
