package clientapi

import (
	"github.com/Abraxas-365/talentdesk/pkg/fiberx"
	"github.com/Abraxas-365/talentdesk/pkg/iam/auth"
	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/recruitment/client"
	"github.com/Abraxas-365/talentdesk/recruitment/client/clientsrv"
	"github.com/gofiber/fiber/v2"
)

// ClientHandlers handles HTTP requests for hiring clients
type ClientHandlers struct {
	service *clientsrv.ClientService
}

func NewClientHandlers(service *clientsrv.ClientService) *ClientHandlers {
	return &ClientHandlers{service: service}
}

func actorID(c *fiber.Ctx) (kernel.UserID, error) {
	authContext, ok := auth.GetAuthContext(c)
	if !ok || authContext.UserID == nil {
		return "", client.ErrInsufficientPermissions()
	}
	return *authContext.UserID, nil
}

func clientID(c *fiber.Ctx) (kernel.ClientID, error) {
	id := kernel.ClientID(c.Params("id"))
	if id.IsEmpty() {
		return "", client.ErrClientNotFound().WithDetail("id", "missing or empty")
	}
	return id, nil
}

// CreateClient handles POST /clients
func (h *ClientHandlers) CreateClient(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}

	var req client.CreateClientRequest
	if err := c.BodyParser(&req); err != nil {
		return client.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	created, err := h.service.CreateClient(c.UserContext(), req, userID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetClient handles GET /clients/:id
func (h *ClientHandlers) GetClient(c *fiber.Ctx) error {
	id, err := clientID(c)
	if err != nil {
		return err
	}

	found, err := h.service.GetClient(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(found)
}

// ListClients handles GET /clients
func (h *ClientHandlers) ListClients(c *fiber.Ctx) error {
	var filter client.ListClientsRequest
	if err := c.QueryParser(&filter); err != nil {
		return client.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	clients, err := h.service.ListClients(c.UserContext(), filter, fiberx.Pagination(c))
	if err != nil {
		return err
	}
	return c.JSON(clients)
}

// UpdateClient handles PATCH /clients/:id
func (h *ClientHandlers) UpdateClient(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}
	id, err := clientID(c)
	if err != nil {
		return err
	}

	var req client.UpdateClientRequest
	if err := c.BodyParser(&req); err != nil {
		return client.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	updated, err := h.service.UpdateClient(c.UserContext(), id, req, userID)
	if err != nil {
		return err
	}
	return c.JSON(updated)
}

// DeleteClient handles DELETE /clients/:id
func (h *ClientHandlers) DeleteClient(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}
	id, err := clientID(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteClient(c.UserContext(), id, userID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// InviteClient handles POST /clients/:id/invite
func (h *ClientHandlers) InviteClient(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}
	id, err := clientID(c)
	if err != nil {
		return err
	}

	resp, err := h.service.InviteClient(c.UserContext(), id, userID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Register handles POST /clients/register (public)
func (h *ClientHandlers) Register(c *fiber.Ctx) error {
	var req client.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return client.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	registered, err := h.service.Register(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(registered)
}

// RegisterRoutes registers all client routes
func (h *ClientHandlers) RegisterRoutes(app *fiber.App, authMiddleware *auth.UnifiedAuthMiddleware) {
	// Public: invitation acceptance. Registered ahead of the group so the
	// group's auth middleware never runs for it.
	app.Post("/clients/register", h.Register)

	clients := app.Group("/clients", authMiddleware.Authenticate())

	clients.Get("/", authMiddleware.RequireScope(auth.ScopeClientsRead), h.ListClients)
	clients.Get("/:id", authMiddleware.RequireScope(auth.ScopeClientsRead), h.GetClient)

	clients.Post("/", authMiddleware.RequireScope(auth.ScopeClientsWrite), h.CreateClient)
	clients.Patch("/:id", authMiddleware.RequireScope(auth.ScopeClientsWrite), h.UpdateClient)
	clients.Post("/:id/invite", authMiddleware.RequireScope(auth.ScopeClientsInvite), h.InviteClient)

	clients.Delete("/:id", authMiddleware.RequireScope(auth.ScopeClientsDelete), h.DeleteClient)
}
