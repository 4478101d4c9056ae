package resume

import (
	"strings"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
)

// MaxFileSize is the largest resume accepted, 50 MiB
const MaxFileSize int64 = 50 << 20

// AllowedContentTypes maps accepted MIME types to a short label
var AllowedContentTypes = map[string]string{
	"application/pdf": "pdf",
	"image/png":       "png",
	"image/jpeg":      "jpeg",
	"image/tiff":      "tiff",
}

// NormalizeContentType drops parameters and casing, "image/jpg" included
func NormalizeContentType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "image/jpg" || ct == "image/pjpeg" {
		ct = "image/jpeg"
	}
	return ct
}

// ValidateUpload checks type and size before anything touches the network
func ValidateUpload(fileName, contentType string, size int64) error {
	ct := NormalizeContentType(contentType)
	if _, ok := AllowedContentTypes[ct]; !ok {
		return ErrInvalidFileFormat().
			WithMessage("Unsupported file type. Please upload a PDF, PNG, JPEG or TIFF file").
			WithDetail("file_name", fileName).
			WithDetail("content_type", contentType)
	}
	if size > MaxFileSize {
		return ErrFileTooLarge().
			WithMessage("File is too large. Maximum size is 50 MB").
			WithDetail("file_name", fileName).
			WithDetail("size", size).
			WithDetail("max_size", MaxFileSize)
	}
	if size <= 0 {
		return ErrInvalidFileFormat().
			WithMessage("File is empty").
			WithDetail("file_name", fileName)
	}
	return nil
}

// ============================================================================
// Ingest DTOs (wire format is snake_case)
// ============================================================================

type Attachment struct {
	FileName      string `json:"filename"`
	ContentType   string `json:"content_type"`
	ContentBase64 string `json:"content_base64"`
	Size          int64  `json:"size"`
}

type EmailEnvelope struct {
	MessageID   string       `json:"message_id"`
	Sender      string       `json:"sender"`
	Subject     string       `json:"subject"`
	Body        string       `json:"body"`
	ReceivedAt  time.Time    `json:"received_at"`
	Attachments []Attachment `json:"attachments"`
}

// IngestRequest - POST /email/ingest
type IngestRequest struct {
	ClientID kernel.ClientID `json:"client_id"`
	Email    EmailEnvelope   `json:"email"`
}

type IngestResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message,omitempty"`
	JobIDs  []kernel.ResumeJobID `json:"job_ids,omitempty"`
}

// ParseResponse - GET/POST /email/jobs/:id/parse
type ParseResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Status  JobStatus     `json:"status,omitempty"`
	Data    *ParsedResume `json:"data,omitempty"`
}

// ListJobsRequest - GET /email/jobs
type ListJobsRequest struct {
	Status   JobStatus       `json:"status,omitempty" query:"status"`
	ClientID kernel.ClientID `json:"clientId,omitempty" query:"clientId"`
}

// Document is a stored file handed to a parser
type Document struct {
	FileName    string
	ContentType string
	Data        []byte
}

// StatusCountsResponse - counts per job status
type StatusCountsResponse map[JobStatus]int
