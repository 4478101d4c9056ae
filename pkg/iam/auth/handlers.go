package auth

import (
	"github.com/gofiber/fiber/v2"
)

type AuthHandlers struct {
	service *AuthService
}

func NewAuthHandlers(service *AuthService) *AuthHandlers {
	return &AuthHandlers{service: service}
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Login issues a token for form-encoded (or JSON) credentials
// POST /auth/login
func (h *AuthHandlers) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrInvalidCredentials().WithDetail("parse_error", err.Error())
	}

	resp, err := h.service.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Me returns the authenticated user
// GET /auth/me
func (h *AuthHandlers) Me(c *fiber.Ctx) error {
	ac, ok := GetAuthContext(c)
	if !ok {
		return ErrMissingToken()
	}

	u, err := h.service.Me(c.UserContext(), ac)
	if err != nil {
		return err
	}
	return c.JSON(u)
}

// Logout revokes the current token
// POST /auth/logout
func (h *AuthHandlers) Logout(c *fiber.Ctx) error {
	ac, _ := GetAuthContext(c)
	if err := h.service.Logout(c.UserContext(), ac); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// RegisterRoutes registers authentication routes
func RegisterRoutes(app *fiber.App, handlers *AuthHandlers, authMiddleware *UnifiedAuthMiddleware) {
	api := app.Group("/auth")

	api.Post("/login", handlers.Login)
	api.Get("/me", authMiddleware.Authenticate(), handlers.Me)
	api.Post("/logout", authMiddleware.Authenticate(), handlers.Logout)
}
