package resumeparser

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Abraxas-365/talentdesk/recruitment/resume"
	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const janeResume = `Jane Doe
Senior Backend Engineer
jane.doe@example.com | +1 (555) 010-2030
Location: Lima, Peru

Summary
Backend engineer with 7 years of experience building Go and PostgreSQL services on AWS.
Skills: Go, Docker, Kubernetes, React`

func TestParseText(t *testing.T) {
	got := ParseText(janeResume)

	assert.Equal(t, "Jane Doe", got.Name)
	assert.Equal(t, "jane.doe@example.com", got.Email)
	assert.Equal(t, "+1 (555) 010-2030", got.Phone)
	assert.Equal(t, "Lima, Peru", got.Location)
	require.NotNil(t, got.ExperienceYears)
	assert.Equal(t, 7.0, *got.ExperienceYears)
	assert.Equal(t, resume.Skills{"Go", "React", "PostgreSQL", "Docker", "Kubernetes", "AWS"}, got.Skills)
	assert.NotEmpty(t, got.RawTextSummary)
}

func TestParseTextDoesNotMatchSkillInsideWords(t *testing.T) {
	got := ParseText("John Smith\nGoogle alumni, javascripting hobbyist")
	assert.Empty(t, got.Skills)
}

func TestHeuristicParserSkipsImages(t *testing.T) {
	h := &HeuristicParser{extract: func([]byte) (string, error) {
		t.Fatal("images have no text layer")
		return "", nil
	}}
	got, err := h.Parse(context.Background(), resume.Document{FileName: "cv.png", ContentType: "image/png", Data: []byte{1}})
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestHeuristicParserReadsPDFText(t *testing.T) {
	h := &HeuristicParser{extract: func([]byte) (string, error) { return janeResume, nil }}
	got, err := h.Parse(context.Background(), resume.Document{FileName: "cv.pdf", ContentType: "application/pdf", Data: []byte("%PDF")})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.Name)
}

func TestYearsFromExperience(t *testing.T) {
	now := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		exps []Experience
		want *float64
	}{
		{"none", nil, nil},
		{"closed range", []Experience{{StartDate: "2019-01", EndDate: "2021-07"}}, ptr(2.5)},
		{"present", []Experience{{StartDate: "2023-07", EndDate: "Present"}}, ptr(1.0)},
		{"bad dates skipped", []Experience{{StartDate: "2019"}, {StartDate: "2022-07", EndDate: "2024-07"}}, ptr(2.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, yearsFromExperience(tt.exps, now))
		})
	}
}

func ptr(f float64) *float64 { return &f }

func TestResumeParserParseText(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Model string `json:"model"`
		}
		_ = json.Unmarshal(body, &req)
		gotModel = req.Model

		content := `{"personal_info":{"name":"Jane Doe","email":"jane@example.com","phone":"","location":"Lima"},` +
			`"summary":"Go engineer","skills":["Go",{"name":"React"}],"experience_years":null,` +
			`"experience":[{"company":"Acme","title":"Engineer","start_date":"2020-01","end_date":"2022-01"}]}`
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   req.Model,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	defer srv.Close()

	p := NewResumeParser("test-key", WithRequestOptions(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(srv.URL+"/"),
		option.WithMaxRetries(0),
	))

	got, err := p.ParseText(context.Background(), janeResume)
	require.NoError(t, err)
	assert.Equal(t, DefaultTextModel, gotModel)
	assert.Equal(t, "Jane Doe", got.Name)
	assert.Equal(t, resume.Skills{"Go", "React"}, got.Skills)
	assert.Equal(t, "Go, React", got.Skills.Join())
	require.NotNil(t, got.ExperienceYears)
	assert.Equal(t, 2.0, *got.ExperienceYears)
	assert.Equal(t, "Go engineer", got.RawTextSummary)
}
