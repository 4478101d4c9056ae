package candidateapi

import (
	"github.com/Abraxas-365/talentdesk/pkg/fiberx"
	"github.com/Abraxas-365/talentdesk/pkg/iam/auth"
	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate/candidatesrv"
	"github.com/gofiber/fiber/v2"
)

// Handlers provides HTTP handlers for candidate operations
type Handlers struct {
	service *candidatesrv.CandidateService
}

// NewHandlers creates a new candidate handlers instance
func NewHandlers(service *candidatesrv.CandidateService) *Handlers {
	return &Handlers{
		service: service,
	}
}

func actorID(c *fiber.Ctx) (kernel.UserID, error) {
	authContext, ok := auth.GetAuthContext(c)
	if !ok || authContext.UserID == nil {
		return "", candidate.ErrInsufficientPermissions()
	}
	return *authContext.UserID, nil
}

func candidateID(c *fiber.Ctx) (kernel.CandidateID, error) {
	id := kernel.CandidateID(c.Params("id"))
	if id.IsEmpty() {
		return "", candidate.ErrCandidateNotFound().WithDetail("id", "missing or empty")
	}
	return id, nil
}

// CreateCandidate creates a new candidate
// POST /candidates
func (h *Handlers) CreateCandidate(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}

	var req candidate.CreateCandidateRequest
	if err := c.BodyParser(&req); err != nil {
		return candidate.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	newCandidate, err := h.service.CreateCandidate(c.UserContext(), req, userID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(newCandidate)
}

// GetCandidateByID retrieves a candidate by ID
// GET /candidates/:id
func (h *Handlers) GetCandidateByID(c *fiber.Ctx) error {
	id, err := candidateID(c)
	if err != nil {
		return err
	}

	candidateResp, err := h.service.GetCandidateByID(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(candidateResp)
}

// ListCandidates retrieves candidates with filters and pagination
// GET /candidates?search=&status=&skill=&location=&page=&pageSize=
func (h *Handlers) ListCandidates(c *fiber.Ctx) error {
	var filter candidate.ListCandidatesRequest
	if err := c.QueryParser(&filter); err != nil {
		return candidate.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	candidates, err := h.service.ListCandidates(c.UserContext(), filter, fiberx.Pagination(c))
	if err != nil {
		return err
	}

	return c.JSON(candidates)
}

// UpdateCandidate applies a partial update
// PATCH /candidates/:id
func (h *Handlers) UpdateCandidate(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}
	id, err := candidateID(c)
	if err != nil {
		return err
	}

	var req candidate.UpdateCandidateRequest
	if err := c.BodyParser(&req); err != nil {
		return candidate.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	updated, err := h.service.UpdateCandidate(c.UserContext(), id, req, userID)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

// UpdateStatus moves a candidate through the pipeline
// PATCH /candidates/:id/status
func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}
	id, err := candidateID(c)
	if err != nil {
		return err
	}

	var req candidate.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return candidate.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	updated, err := h.service.UpdateStatus(c.UserContext(), id, req, userID)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

// AddFlag annotates a candidate
// POST /candidates/:id/flags
func (h *Handlers) AddFlag(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}
	id, err := candidateID(c)
	if err != nil {
		return err
	}

	var req candidate.AddFlagRequest
	if err := c.BodyParser(&req); err != nil {
		return candidate.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	updated, err := h.service.AddFlag(c.UserContext(), id, req, userID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(updated)
}

// DeleteCandidate removes a candidate
// DELETE /candidates/:id
func (h *Handlers) DeleteCandidate(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}
	id, err := candidateID(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteCandidate(c.UserContext(), id, userID); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// BulkUpdateStatus changes the status of many candidates
// POST /candidates/bulk/status
func (h *Handlers) BulkUpdateStatus(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}

	var req candidate.BulkStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return candidate.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	result, err := h.service.BulkUpdateStatus(c.UserContext(), req, userID)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// RegisterRoutes registers all candidate routes
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware *auth.UnifiedAuthMiddleware) {
	api := app.Group("/candidates", authMiddleware.Authenticate())

	// Read routes
	api.Get("/", authMiddleware.RequireScope(auth.ScopeCandidatesRead), handlers.ListCandidates)
	api.Get("/:id", authMiddleware.RequireScope(auth.ScopeCandidatesRead), handlers.GetCandidateByID)

	// Bulk operations
	api.Post("/bulk/status", authMiddleware.RequireScope(auth.ScopeCandidatesWrite), handlers.BulkUpdateStatus)

	// Write routes
	api.Post("/", authMiddleware.RequireScope(auth.ScopeCandidatesWrite), handlers.CreateCandidate)
	api.Patch("/:id", authMiddleware.RequireScope(auth.ScopeCandidatesWrite), handlers.UpdateCandidate)
	api.Patch("/:id/status", authMiddleware.RequireScope(auth.ScopeCandidatesWrite), handlers.UpdateStatus)
	api.Post("/:id/flags", authMiddleware.RequireScope(auth.ScopeCandidatesWrite), handlers.AddFlag)

	// Delete route
	api.Delete("/:id", authMiddleware.RequireScope(auth.ScopeCandidatesDelete), handlers.DeleteCandidate)
}
