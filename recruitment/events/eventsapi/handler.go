package eventsapi

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/iam/auth"
	"github.com/Abraxas-365/talentdesk/pkg/logx"
	"github.com/Abraxas-365/talentdesk/recruitment/events"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

const DefaultKeepAlive = 15 * time.Second

type Handlers struct {
	broker    events.Broker
	keepAlive time.Duration
}

func NewHandlers(broker events.Broker, keepAlive time.Duration) *Handlers {
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}
	return &Handlers{broker: broker, keepAlive: keepAlive}
}

// Stream pushes events as server-sent events until the client goes away
// GET /events/stream
func (h *Handlers) Stream(c *fiber.Ctx) error {
	ctx, cancel := context.WithCancel(context.Background())
	sub, err := h.broker.Subscribe(ctx)
	if err != nil {
		cancel()
		return fiber.NewError(fiber.StatusServiceUnavailable, "event stream unavailable")
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	subscriber := "anonymous"
	if ac, ok := auth.GetAuthContext(c); ok {
		subscriber = ac.Username
	}

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer sub.Close()

		logx.Debugf("Event stream opened for %s", subscriber)
		defer logx.Debugf("Event stream closed for %s", subscriber)

		ticker := time.NewTicker(h.keepAlive)
		defer ticker.Stop()

		if err := writeComment(w, "connected"); err != nil {
			return
		}

		for {
			select {
			case ev, ok := <-sub.Events():
				if !ok {
					return
				}
				if err := writeEvent(w, ev); err != nil {
					return
				}
			case <-ticker.C:
				// a failed flush is how a disconnected client shows up
				if err := writeComment(w, "keep-alive"); err != nil {
					return
				}
			}
		}
	}))

	return nil
}

func writeEvent(w *bufio.Writer, ev events.Event) error {
	frame, err := events.Frame(ev)
	if err != nil {
		logx.Errorf("Failed to write event: %v", err)
		return nil
	}
	if _, err := w.Write(frame); err != nil {
		return err
	}
	return w.Flush()
}

func writeComment(w *bufio.Writer, comment string) error {
	if _, err := fmt.Fprintf(w, ": %s\n\n", comment); err != nil {
		return err
	}
	return w.Flush()
}

// RegisterRoutes registers the live update stream
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware *auth.UnifiedAuthMiddleware) {
	app.Get("/events/stream",
		authMiddleware.AuthenticateStream(),
		authMiddleware.RequireScope(auth.ScopeEventsStream),
		handlers.Stream,
	)
}
