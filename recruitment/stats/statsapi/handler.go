package statsapi

import (
	"github.com/Abraxas-365/talentdesk/pkg/iam/auth"
	"github.com/Abraxas-365/talentdesk/recruitment/stats"
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	service *stats.Service
}

func NewHandlers(service *stats.Service) *Handlers {
	return &Handlers{service: service}
}

// Dashboard handles GET /stats/dashboard
func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	snapshot, err := h.service.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(snapshot)
}

func (h *Handlers) RegisterRoutes(app *fiber.App, authMiddleware *auth.UnifiedAuthMiddleware) {
	app.Get("/stats/dashboard",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeStatsView),
		h.Dashboard,
	)
}
