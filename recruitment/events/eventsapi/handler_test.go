package eventsapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/fiberx"
	"github.com/Abraxas-365/talentdesk/pkg/iam/auth"
	"github.com/Abraxas-365/talentdesk/pkg/iam/user"
	"github.com/Abraxas-365/talentdesk/recruitment/events"
	"github.com/Abraxas-365/talentdesk/recruitment/events/eventsinfra"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamWritesEventsAsSSE(t *testing.T) {
	broker := eventsinfra.NewMemoryBroker()
	tokens := auth.NewJWTService(auth.Config{JWTSecret: "secret"})
	mw := auth.NewAuthMiddleware(tokens, auth.NewMemoryRevocationStore())

	app := fiber.New(fiber.Config{ErrorHandler: fiberx.ErrorHandler})
	RegisterRoutes(app, NewHandlers(broker, time.Hour), mw)

	token, _, err := tokens.GenerateAccessToken(&user.User{ID: "u1", Username: "viewer", Role: user.RoleViewer})
	require.NoError(t, err)

	type result struct {
		resp *http.Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		req := httptest.NewRequest(http.MethodGet, "/events/stream?token="+token, nil)
		resp, err := app.Test(req, -1)
		done <- result{resp, err}
	}()

	require.Eventually(t, func() bool { return broker.Subscribers() == 1 }, 2*time.Second, 5*time.Millisecond)
	events.Emit(context.Background(), broker, events.TypeNewApplication, map[string]string{"id": "a1"})
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, broker.Close())

	var r result
	select {
	case r = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not finish")
	}
	require.NoError(t, r.err)
	assert.Equal(t, http.StatusOK, r.resp.StatusCode)
	assert.Equal(t, "text/event-stream", r.resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(r.resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), ": connected\n\n")
	assert.Contains(t, string(body), "event: new_application\ndata: {")
	assert.Contains(t, string(body), `"payload":{"id":"a1"}`)
}

func TestStreamRequiresToken(t *testing.T) {
	tokens := auth.NewJWTService(auth.Config{JWTSecret: "secret"})
	app := fiber.New(fiber.Config{ErrorHandler: fiberx.ErrorHandler})
	RegisterRoutes(app, NewHandlers(eventsinfra.NewMemoryBroker(), 0), auth.NewAuthMiddleware(tokens, nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/events/stream", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
