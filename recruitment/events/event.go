package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/logx"
)

type Type string

const (
	TypeCandidateUpdated   Type = "candidate_updated"
	TypeApplicationUpdated Type = "application_updated"
	TypeStatusChanged      Type = "status_changed"
	TypeNewApplication     Type = "new_application"
	TypeClientUpdated      Type = "client_updated"
	TypeResumeJobUpdated   Type = "resume_job_updated"
)

// Event is the envelope pushed to dashboards
type Event struct {
	Type      Type            `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// New marshals payload into an event stamped now
func New(t Type, payload any) (Event, error) {
	ev := Event{Type: t, Timestamp: time.Now().UTC()}
	if payload == nil {
		return ev, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	ev.Payload = data
	return ev, nil
}

// Frame renders the event as one server-sent event frame
func Frame(ev Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", ev.Type, err)
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", ev.Type, data)), nil
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Subscription delivers events until closed
type Subscription interface {
	Events() <-chan Event
	Close() error
}

type Broker interface {
	Publisher
	Subscribe(ctx context.Context) (Subscription, error)
}

// Emit publishes an event and only logs failures. Mutations have already
// been committed when it runs.
func Emit(ctx context.Context, pub Publisher, t Type, payload any) {
	if pub == nil {
		return
	}
	ev, err := New(t, payload)
	if err != nil {
		logx.Errorf("Failed to build %s event: %v", t, err)
		return
	}
	if err := pub.Publish(ctx, ev); err != nil {
		logx.Warnf("Failed to publish %s event: %v", t, err)
	}
}
