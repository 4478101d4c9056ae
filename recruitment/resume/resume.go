package resume

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// ParsedResume is the structured data extracted from one resume file
type ParsedResume struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	Location        string   `json:"location"`
	Skills          Skills   `json:"skills"`
	ExperienceYears *float64 `json:"experience_years,omitempty"`
	RawTextSummary  string   `json:"raw_text_summary,omitempty"`
}

// IsEmpty reports whether the parser found nothing worth pre-filling
func (p *ParsedResume) IsEmpty() bool {
	return p == nil || (p.Name == "" && p.Email == "" && p.Phone == "" &&
		p.Location == "" && len(p.Skills) == 0 && p.ExperienceYears == nil && p.RawTextSummary == "")
}

// Value stores the parse result in a JSONB column
func (p ParsedResume) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *ParsedResume) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("scan parsed resume: unsupported type %T", src)
	}
}

// Skills is a list of skill names. Parsers disagree on the shape, so the
// decoder accepts plain strings as well as objects carrying a "name".
type Skills []string

func (s *Skills) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		// a single comma separated string
		var joined string
		if err2 := json.Unmarshal(data, &joined); err2 != nil {
			return fmt.Errorf("skills: %w", err)
		}
		*s = SplitSkills(joined)
		return nil
	}

	out := make(Skills, 0, len(items))
	for _, item := range items {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
			continue
		}

		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return fmt.Errorf("skills: unsupported item %s", string(item))
		}
		if name := strings.TrimSpace(obj.Name); name != "" {
			out = append(out, name)
		}
	}

	*s = out
	return nil
}

// Join renders the list the way the review form shows it
func (s Skills) Join() string {
	return strings.Join(s, ", ")
}

// SplitSkills parses a comma separated list. Order and duplicates are kept.
func SplitSkills(s string) Skills {
	parts := strings.Split(s, ",")
	out := make(Skills, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
