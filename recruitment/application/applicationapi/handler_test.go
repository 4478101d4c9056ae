package applicationapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Abraxas-365/talentdesk/pkg/fiberx"
	"github.com/Abraxas-365/talentdesk/pkg/iam/auth"
	"github.com/Abraxas-365/talentdesk/pkg/iam/user"
	"github.com/Abraxas-365/talentdesk/recruitment/application/applicationinfra"
	"github.com/Abraxas-365/talentdesk/recruitment/application/applicationsrv"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*fiber.App, string) {
	t.Helper()
	jwtService := auth.NewJWTService(auth.Config{JWTSecret: "secret"})
	mw := auth.NewAuthMiddleware(jwtService, auth.NewMemoryRevocationStore())

	app := fiber.New(fiber.Config{ErrorHandler: fiberx.ErrorHandler})
	NewApplicationHandlers(applicationsrv.NewApplicationService(applicationinfra.NewMemoryApplicationRepository())).
		RegisterRoutes(app, mw)

	token, _, err := jwtService.GenerateAccessToken(&user.User{ID: "u1", Username: "rita", Role: user.RoleRecruiter})
	require.NoError(t, err)
	return app, token
}

func send(t *testing.T, app *fiber.App, token, method, target string, body any) (*http.Response, map[string]any) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestApplicationRoutes(t *testing.T) {
	app, token := newTestApp(t)

	resp, created := send(t, app, token, http.MethodPost, "/applications", map[string]any{
		"candidateId": "c1",
		"clientId":    "acme",
		"jobTitle":    "Data Engineer",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := created["id"].(string)

	resp, moved := send(t, app, token, http.MethodPatch, "/applications/"+id+"/status", map[string]any{"status": "INTERVIEW", "note": "strong CV"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "INTERVIEW", moved["status"])
	assert.Len(t, moved["auditLog"], 2)

	resp, body := send(t, app, token, http.MethodPatch, "/applications/"+id+"/status", map[string]any{"status": "APPLIED"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "APPLICATION_INVALID_STATUS_TRANSITION", body["code"])

	resp, list := send(t, app, token, http.MethodGet, "/applications?status=interview&clientId=acme", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, list["items"], 1)

	resp, _ = send(t, app, token, http.MethodDelete, "/applications/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
