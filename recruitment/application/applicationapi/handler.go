package applicationapi

import (
	"github.com/Abraxas-365/talentdesk/pkg/fiberx"
	"github.com/Abraxas-365/talentdesk/pkg/iam/auth"
	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/recruitment/application"
	"github.com/Abraxas-365/talentdesk/recruitment/application/applicationsrv"
	"github.com/gofiber/fiber/v2"
)

// ApplicationHandlers handles HTTP requests for applications
type ApplicationHandlers struct {
	service *applicationsrv.ApplicationService
}

// NewApplicationHandlers creates new application handlers
func NewApplicationHandlers(service *applicationsrv.ApplicationService) *ApplicationHandlers {
	return &ApplicationHandlers{
		service: service,
	}
}

func actorID(c *fiber.Ctx) (kernel.UserID, error) {
	authContext, ok := auth.GetAuthContext(c)
	if !ok || authContext.UserID == nil {
		return "", application.ErrInsufficientPermissions()
	}
	return *authContext.UserID, nil
}

func applicationID(c *fiber.Ctx) (kernel.ApplicationID, error) {
	id := kernel.ApplicationID(c.Params("id"))
	if id.IsEmpty() {
		return "", application.ErrApplicationNotFound().WithDetail("id", "missing or empty")
	}
	return id, nil
}

// CreateApplication handles POST /applications
func (h *ApplicationHandlers) CreateApplication(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}

	var req application.CreateApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return application.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	app, err := h.service.CreateApplication(c.UserContext(), req, userID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(app)
}

// GetApplication handles GET /applications/:id
func (h *ApplicationHandlers) GetApplication(c *fiber.Ctx) error {
	id, err := applicationID(c)
	if err != nil {
		return err
	}

	app, err := h.service.GetApplication(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(app)
}

// ListApplications handles GET /applications
func (h *ApplicationHandlers) ListApplications(c *fiber.Ctx) error {
	var filter application.ListApplicationsRequest
	if err := c.QueryParser(&filter); err != nil {
		return application.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	apps, err := h.service.ListApplications(c.UserContext(), filter, fiberx.Pagination(c))
	if err != nil {
		return err
	}

	return c.JSON(apps)
}

// UpdateApplication handles PATCH /applications/:id
func (h *ApplicationHandlers) UpdateApplication(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}
	id, err := applicationID(c)
	if err != nil {
		return err
	}

	var req application.UpdateApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return application.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	app, err := h.service.UpdateApplication(c.UserContext(), id, req, userID)
	if err != nil {
		return err
	}

	return c.JSON(app)
}

// UpdateStatus handles PATCH /applications/:id/status
func (h *ApplicationHandlers) UpdateStatus(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}
	id, err := applicationID(c)
	if err != nil {
		return err
	}

	var req application.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return application.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	app, err := h.service.UpdateStatus(c.UserContext(), id, req, userID)
	if err != nil {
		return err
	}

	return c.JSON(app)
}

// DeleteApplication handles DELETE /applications/:id
func (h *ApplicationHandlers) DeleteApplication(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}
	id, err := applicationID(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteApplication(c.UserContext(), id, userID); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RegisterRoutes registers all application routes
func (h *ApplicationHandlers) RegisterRoutes(app *fiber.App, authMiddleware *auth.UnifiedAuthMiddleware) {
	applications := app.Group("/applications", authMiddleware.Authenticate())

	applications.Get("/", authMiddleware.RequireScope(auth.ScopeApplicationsRead), h.ListApplications)
	applications.Get("/:id", authMiddleware.RequireScope(auth.ScopeApplicationsRead), h.GetApplication)

	applications.Post("/", authMiddleware.RequireScope(auth.ScopeApplicationsWrite), h.CreateApplication)
	applications.Patch("/:id", authMiddleware.RequireScope(auth.ScopeApplicationsWrite), h.UpdateApplication)
	applications.Patch("/:id/status", authMiddleware.RequireScope(auth.ScopeApplicationsWrite), h.UpdateStatus)

	applications.Delete("/:id", authMiddleware.RequireScope(auth.ScopeApplicationsDelete), h.DeleteApplication)
}
