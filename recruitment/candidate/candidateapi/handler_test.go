package candidateapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Abraxas-365/talentdesk/pkg/fiberx"
	"github.com/Abraxas-365/talentdesk/pkg/iam/auth"
	"github.com/Abraxas-365/talentdesk/pkg/iam/user"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate/candidateinfra"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate/candidatesrv"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	app    *fiber.App
	tokens map[user.Role]string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	jwtService := auth.NewJWTService(auth.Config{JWTSecret: "secret"})
	mw := auth.NewAuthMiddleware(jwtService, auth.NewMemoryRevocationStore())
	svc := candidatesrv.NewCandidateService(candidateinfra.NewMemoryCandidateRepository())

	app := fiber.New(fiber.Config{ErrorHandler: fiberx.ErrorHandler})
	RegisterRoutes(app, NewHandlers(svc), mw)

	ts := &testServer{app: app, tokens: make(map[user.Role]string)}
	for _, role := range []user.Role{user.RoleAdmin, user.RoleViewer} {
		token, _, err := jwtService.GenerateAccessToken(&user.User{ID: "u-" + string(role), Username: string(role), Role: role})
		require.NoError(t, err)
		ts.tokens[role] = token
	}
	return ts
}

func (ts *testServer) do(t *testing.T, role user.Role, method, target string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+ts.tokens[role])

	resp, err := ts.app.Test(req)
	require.NoError(t, err)

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestCandidateCRUD(t *testing.T) {
	ts := newTestServer(t)

	resp, created := ts.do(t, user.RoleAdmin, http.MethodPost, "/candidates", map[string]any{
		"name":            "Jane Doe",
		"email":           "jane@example.com",
		"skills":          []string{"Go"},
		"experienceYears": 3,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := created["id"].(string)
	assert.Equal(t, "NEW", created["status"])

	resp, got := ts.do(t, user.RoleViewer, http.MethodGet, "/candidates/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Jane Doe", got["name"])

	resp, patched := ts.do(t, user.RoleAdmin, http.MethodPatch, "/candidates/"+id, map[string]any{"location": "Lima"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Lima", patched["location"])
	assert.Equal(t, "Jane Doe", patched["name"])

	resp, moved := ts.do(t, user.RoleAdmin, http.MethodPatch, "/candidates/"+id+"/status", map[string]any{"status": "INTERVIEWING"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "INTERVIEWING", moved["status"])

	resp, flagged := ts.do(t, user.RoleAdmin, http.MethodPost, "/candidates/"+id+"/flags", map[string]any{"type": "HOT"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Len(t, flagged["flags"], 1)

	resp, list := ts.do(t, user.RoleViewer, http.MethodGet, "/candidates?search=jane&page=1&pageSize=5", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, list["items"], 1)

	resp, _ = ts.do(t, user.RoleAdmin, http.MethodDelete, "/candidates/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, missing := ts.do(t, user.RoleViewer, http.MethodGet, "/candidates/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, candidate.CodeCandidateNotFound, missing["code"])
}

func TestCandidateErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		role   user.Role
		method string
		target string
		body   any
		status int
	}{
		{"negative experience", user.RoleAdmin, http.MethodPost, "/candidates", map[string]any{"name": "A", "experienceYears": -2}, http.StatusBadRequest},
		{"missing name", user.RoleAdmin, http.MethodPost, "/candidates", map[string]any{"email": "a@b.co"}, http.StatusBadRequest},
		{"viewer cannot write", user.RoleViewer, http.MethodPost, "/candidates", map[string]any{"name": "A"}, http.StatusForbidden},
		{"viewer cannot delete", user.RoleViewer, http.MethodDelete, "/candidates/x", nil, http.StatusForbidden},
		{"unknown status filter", user.RoleViewer, http.MethodGet, "/candidates?status=lost", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := ts.do(t, tt.role, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestBulkStatusReportsPartialFailure(t *testing.T) {
	ts := newTestServer(t)

	_, created := ts.do(t, user.RoleAdmin, http.MethodPost, "/candidates", map[string]any{"name": "A"})
	id := created["id"].(string)

	resp, result := ts.do(t, user.RoleAdmin, http.MethodPost, "/candidates/bulk/status", map[string]any{
		"ids":    []string{id, "missing"},
		"status": "SCREENING",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), result["total"])
	assert.Equal(t, []any{id}, result["successful"])
	assert.Contains(t, result["failed"], "missing")
}
