package resumeapi

import (
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/fiberx"
	"github.com/Abraxas-365/talentdesk/pkg/iam/auth"
	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/recruitment/resume"
	"github.com/Abraxas-365/talentdesk/recruitment/resume/resumesrv"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ResumeHandlers struct {
	service *resumesrv.Service
}

func NewResumeHandlers(service *resumesrv.Service) *ResumeHandlers {
	return &ResumeHandlers{service: service}
}

func (h *ResumeHandlers) RegisterRoutes(app *fiber.App, authMiddleware *auth.UnifiedAuthMiddleware) {
	email := app.Group("/email", authMiddleware.Authenticate())

	// Ingestion
	email.Post("/ingest", authMiddleware.RequireScope(auth.ScopeResumesIngest), h.Ingest)
	email.Post("/upload", authMiddleware.RequireScope(auth.ScopeResumesIngest), h.Upload)

	// Job Management
	email.Get("/jobs/stats", authMiddleware.RequireScope(auth.ScopeResumesRead), h.GetJobStats)
	email.Get("/jobs", authMiddleware.RequireScope(auth.ScopeResumesRead), h.ListJobs)
	email.Get("/jobs/:id", authMiddleware.RequireScope(auth.ScopeResumesRead), h.GetJob)
	email.Get("/jobs/:id/parse", authMiddleware.RequireScope(auth.ScopeResumesRead), h.GetParseResult)
	email.Post("/jobs/:id/parse", authMiddleware.RequireScope(auth.ScopeResumesIngest), h.Parse)
	email.Post("/jobs/:id/retry", authMiddleware.RequireScope(auth.ScopeResumesIngest), h.RetryJob)
}

// Ingest accepts an email envelope with base64 attachments
// POST /email/ingest
func (h *ResumeHandlers) Ingest(c *fiber.Ctx) error {
	var req resume.IngestRequest
	if err := c.BodyParser(&req); err != nil {
		return resume.ErrInvalidEnvelope().WithDetail("parse_error", err.Error())
	}

	if req.ClientID.IsEmpty() {
		req.ClientID = callerClientID(c)
	}

	resp, err := h.service.Ingest(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(resp)
}

// Upload wraps a multipart file in an envelope and ingests it
// POST /email/upload
func (h *ResumeHandlers) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return resume.ErrInvalidAttachment().WithMessage("file is required")
	}

	if err := resume.ValidateUpload(file.Filename, file.Header.Get(fiber.HeaderContentType), file.Size); err != nil {
		return err
	}

	// Open uploaded file
	uploaded, err := file.Open()
	if err != nil {
		return resume.ErrRegistry.NewWithCause(resume.CodeFileReadFailed, err)
	}
	defer uploaded.Close()

	data, err := io.ReadAll(uploaded)
	if err != nil {
		return resume.ErrRegistry.NewWithCause(resume.CodeFileReadFailed, err)
	}

	clientID := kernel.ClientID(c.FormValue("client_id"))
	if clientID.IsEmpty() {
		clientID = callerClientID(c)
	}

	sender := ""
	if ac, ok := auth.GetAuthContext(c); ok {
		sender = ac.Username
	}

	resp, err := h.service.Ingest(c.UserContext(), resume.IngestRequest{
		ClientID: clientID,
		Email: resume.EmailEnvelope{
			MessageID:  uuid.NewString(),
			Sender:     sender,
			Subject:    fmt.Sprintf("Resume upload: %s", file.Filename),
			Body:       fmt.Sprintf("Uploaded %s", file.Filename),
			ReceivedAt: time.Now().UTC(),
			Attachments: []resume.Attachment{{
				FileName:      file.Filename,
				ContentType:   file.Header.Get(fiber.HeaderContentType),
				ContentBase64: base64.StdEncoding.EncodeToString(data),
				Size:          int64(len(data)),
			}},
		},
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(resp)
}

// GetJob returns one job
// GET /email/jobs/:id
func (h *ResumeHandlers) GetJob(c *fiber.Ctx) error {
	job, err := h.service.GetJob(c.UserContext(), kernel.ResumeJobID(c.Params("id")))
	if err != nil {
		return err
	}
	return c.JSON(job)
}

// ListJobs lists jobs, optionally by status
// GET /email/jobs?status=pending
func (h *ResumeHandlers) ListJobs(c *fiber.Ctx) error {
	var req resume.ListJobsRequest
	if err := c.QueryParser(&req); err != nil {
		return resume.ErrInvalidJobStatus().WithDetail("parse_error", err.Error())
	}

	jobs, err := h.service.ListJobs(c.UserContext(), req, fiberx.Pagination(c))
	if err != nil {
		return err
	}
	return c.JSON(jobs)
}

// GetJobStats counts jobs per status
// GET /email/jobs/stats
func (h *ResumeHandlers) GetJobStats(c *fiber.Ctx) error {
	counts, err := h.service.CountByStatus(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(resume.StatusCountsResponse(counts))
}

// Parse parses the job now unless it already ran
// POST /email/jobs/:id/parse
func (h *ResumeHandlers) Parse(c *fiber.Ctx) error {
	resp, err := h.service.Parse(c.UserContext(), kernel.ResumeJobID(c.Params("id")))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetParseResult returns the stored result
// GET /email/jobs/:id/parse
func (h *ResumeHandlers) GetParseResult(c *fiber.Ctx) error {
	resp, err := h.service.GetParseResult(c.UserContext(), kernel.ResumeJobID(c.Params("id")))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// RetryJob requeues a failed job
// POST /email/jobs/:id/retry
func (h *ResumeHandlers) RetryJob(c *fiber.Ctx) error {
	job, err := h.service.RetryJob(c.UserContext(), kernel.ResumeJobID(c.Params("id")))
	if err != nil {
		return err
	}
	return c.JSON(job)
}

func callerClientID(c *fiber.Ctx) kernel.ClientID {
	ac, ok := auth.GetAuthContext(c)
	if !ok {
		return ""
	}
	if !ac.ClientID.IsEmpty() {
		return ac.ClientID
	}
	return ac.TenantID.ClientID()
}
