package auth

import (
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

const authContextKey = "auth_context"

// AuthContext is what the middleware learned about the caller
type AuthContext struct {
	UserID    *kernel.UserID
	Username  string
	Role      string
	ClientID  kernel.ClientID
	TenantID  kernel.TenantID
	Scopes    []string
	TokenID   string
	ExpiresAt time.Time
}

func (a *AuthContext) HasScope(scope string) bool {
	return HasScope(a.Scopes, scope)
}

// GetAuthContext returns the context stored by Authenticate
func GetAuthContext(c *fiber.Ctx) (*AuthContext, bool) {
	ac, ok := c.Locals(authContextKey).(*AuthContext)
	return ac, ok && ac != nil
}

func setAuthContext(c *fiber.Ctx, ac *AuthContext) {
	c.Locals(authContextKey, ac)
}
