package fsx

import (
	"testing"

	"github.com/Abraxas-365/talentdesk/pkg/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"resumes/c1/j1/cv.pdf", "resumes/c1/j1/cv.pdf"},
		{"/resumes//cv.pdf", "resumes/cv.pdf"},
		{"../../etc/passwd", "etc/passwd"},
		{"resumes/../../cv.pdf", "cv.pdf"},
		{`resumes\win\cv.pdf`, "resumes/win/cv.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Clean(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanRejectsRoot(t *testing.T) {
	for _, in := range []string{"", "/", "..", "./"} {
		_, err := Clean(in)
		assert.True(t, errx.IsCode(err, CodeInvalidPath), in)
	}
}
