package resume

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkillsUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Skills
		join string
	}{
		{"strings and objects", `["Python", {"name":"React"}]`, Skills{"Python", "React"}, "Python, React"},
		{"objects only", `[{"name":"Go","level":"expert"},{"name":" SQL "}]`, Skills{"Go", "SQL"}, "Go, SQL"},
		{"blank entries dropped", `["", {"name":""}, "Rust"]`, Skills{"Rust"}, "Rust"},
		{"duplicates kept", `["Go","Go"]`, Skills{"Go", "Go"}, "Go, Go"},
		{"comma string", `"Go, Docker ,"`, Skills{"Go", "Docker"}, "Go, Docker"},
		{"null", `null`, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Skills
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.join, got.Join())
		})
	}
}

func TestSkillsUnmarshalRejectsNumbers(t *testing.T) {
	var got Skills
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &got))
}

func TestParseJobStatus(t *testing.T) {
	tests := []struct {
		in    string
		want  JobStatus
		valid bool
	}{
		{"pending", JobStatusPending, true},
		{"Processing", JobStatusProcessing, true},
		{"PROCESSING", JobStatusProcessing, true},
		{" Completed ", JobStatusCompleted, true},
		{"FAILED", JobStatusFailed, true},
		{"queued", JobStatus("queued"), false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseJobStatus(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.valid, ok)
		})
	}
}

func TestJobStatusJSONIsCaseInsensitive(t *testing.T) {
	var job ResumeJob
	require.NoError(t, json.Unmarshal([]byte(`{"id":"j1","status":"Processing"}`), &job))
	assert.Equal(t, JobStatusProcessing, job.Status)
}

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		code        string
	}{
		{"pdf", "application/pdf", 2 << 20, ""},
		{"png", "image/png", 1024, ""},
		{"jpeg alias", "image/jpg", 1024, ""},
		{"tiff with params", "image/tiff; charset=binary", 1024, ""},
		{"exactly 50MiB", "application/pdf", MaxFileSize, ""},
		{"docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", 1024, CodeInvalidFileFormat},
		{"gif", "image/gif", 1024, CodeInvalidFileFormat},
		{"too large", "application/pdf", MaxFileSize + 1, CodeFileTooLarge},
		{"empty", "application/pdf", 0, CodeInvalidFileFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload("resume", tt.contentType, tt.size)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errx.IsCode(err, tt.code))
		})
	}
}

func TestJobLifecycle(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	job := &ResumeJob{ID: "j1", Status: JobStatusPending, MaxAttempts: DefaultMaxAttempts, CreatedAt: created, UpdatedAt: created}

	require.NoError(t, job.Start(created.Add(time.Second)))
	assert.Equal(t, JobStatusProcessing, job.Status)
	assert.True(t, errx.IsCode(job.Start(created), CodeJobAlreadyProcessing))

	assert.True(t, job.Fail("parse error", created.Add(2*time.Second)))
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, 2*time.Minute, job.RetryDelay())

	require.NoError(t, job.Start(created.Add(3*time.Second)))
	assert.True(t, job.Fail("parse error", created.Add(4*time.Second)))
	require.NoError(t, job.Start(created.Add(5*time.Second)))
	assert.False(t, job.Fail("parse error", created.Add(6*time.Second)))
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.True(t, job.Status.IsTerminal())
	assert.Equal(t, 3, job.AttemptCount)
}

func TestJobTouchNeverPrecedesCreation(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	job := &ResumeJob{Status: JobStatusPending, CreatedAt: created, UpdatedAt: created}
	job.Complete(&ParsedResume{Name: "x"}, created.Add(-time.Hour))
	assert.False(t, job.UpdatedAt.Before(job.CreatedAt))
}
