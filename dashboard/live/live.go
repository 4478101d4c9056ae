package live

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/Abraxas-365/talentdesk/dashboard/datasource"
	"github.com/Abraxas-365/talentdesk/dashboard/query"
	"github.com/Abraxas-365/talentdesk/pkg/apiclient"
	"github.com/Abraxas-365/talentdesk/pkg/logx"
	"github.com/Abraxas-365/talentdesk/recruitment/events"
)

type Status string

const (
	StatusConnecting Status = "connecting"
	StatusOnline     Status = "online"
	StatusOffline    Status = "offline"
)

const (
	DefaultRetryInterval = 3 * time.Second
	DefaultMaxAttempts   = 5
)

// Invalidator marks cached queries stale; query.Queries satisfies it
type Invalidator interface {
	Invalidate(resources ...string) int
}

var affected = map[events.Type][]string{
	events.TypeCandidateUpdated:   {query.ResourceCandidates},
	events.TypeApplicationUpdated: {query.ResourceApplications},
	events.TypeStatusChanged:      {query.ResourceApplications},
	events.TypeNewApplication:     {query.ResourceCandidates, query.ResourceApplications},
	events.TypeClientUpdated:      {query.ResourceClients},
	events.TypeResumeJobUpdated:   {query.ResourceResumeJobs},
}

// Resources lists what an event makes stale. Every known event also
// touches the dashboard stats; unknown events touch nothing.
func Resources(t events.Type) []string {
	base, ok := affected[t]
	if !ok {
		return nil
	}
	return append(append([]string(nil), base...), query.ResourceStats)
}

type Option func(*Channel)

func WithRetryInterval(d time.Duration) Option {
	return func(c *Channel) { c.interval = d }
}

func WithMaxAttempts(n int) Option {
	return func(c *Channel) { c.maxAttempts = n }
}

// WithOnEvent observes every decoded event after invalidation
func WithOnEvent(fn func(events.Event)) Option {
	return func(c *Channel) { c.onEvent = fn }
}

func WithOnStatus(fn func(Status)) Option {
	return func(c *Channel) { c.onStatus = fn }
}

// Channel keeps the query cache in step with server pushes. A lost
// connection is retried at a fixed interval; once the attempts run out the
// channel goes offline and waits for Reconnect.
type Channel struct {
	src         datasource.EventSource
	inv         Invalidator
	interval    time.Duration
	maxAttempts int
	onEvent     func(events.Event)
	onStatus    func(Status)

	wake chan struct{}

	mu       sync.Mutex
	status   Status
	attempts int
	drop     context.CancelFunc
}

func New(src datasource.EventSource, inv Invalidator, opts ...Option) *Channel {
	c := &Channel{
		src:         src,
		inv:         inv,
		interval:    DefaultRetryInterval,
		maxAttempts: DefaultMaxAttempts,
		wake:        make(chan struct{}, 1),
		status:      StatusOffline,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Channel) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Attempts is the number of reconnects since the last successful connect
func (c *Channel) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

// Reconnect drops the current connection, if any, and starts over with a
// fresh attempt budget
func (c *Channel) Reconnect() {
	c.mu.Lock()
	c.attempts = 0
	drop := c.drop
	c.mu.Unlock()

	if drop != nil {
		drop()
	}
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Run connects and dispatches events until ctx is done
func (c *Channel) Run(ctx context.Context) error {
	for {
		err := c.connect(ctx)
		if ctx.Err() != nil {
			c.setStatus(StatusOffline)
			return ctx.Err()
		}

		if apiclient.IsUnauthorized(err) {
			logx.Warnf("Live updates stopped, the session is no longer valid")
			c.setStatus(StatusOffline)
			if !c.idle(ctx) {
				return ctx.Err()
			}
			continue
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			logx.Warnf("Live update connection lost: %v", err)
		}

		c.mu.Lock()
		exhausted := c.attempts >= c.maxAttempts
		if !exhausted {
			c.attempts++
		}
		attempt := c.attempts
		c.mu.Unlock()

		if exhausted {
			logx.Warnf("Live updates offline after %d reconnect attempts", c.maxAttempts)
			c.setStatus(StatusOffline)
			if !c.idle(ctx) {
				return ctx.Err()
			}
			continue
		}

		logx.Debugf("Reconnecting live updates in %s (attempt %d/%d)", c.interval, attempt, c.maxAttempts)
		c.setStatus(StatusConnecting)
		if !c.sleep(ctx, c.interval) {
			return ctx.Err()
		}
	}
}

// connect holds one connection open and returns why it ended
func (c *Channel) connect(ctx context.Context) error {
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	c.drop = cancel
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.drop = nil
		c.mu.Unlock()
	}()

	c.setStatus(StatusConnecting)
	body, err := c.src.Stream(connCtx)
	if err != nil {
		return err
	}
	defer body.Close()

	c.mu.Lock()
	c.attempts = 0
	c.mu.Unlock()
	c.setStatus(StatusOnline)

	return c.consume(body)
}

func (c *Channel) consume(body io.Reader) error {
	dec := NewDecoder(body)
	for {
		frame, err := dec.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		c.dispatch(frame)
	}
}

func (c *Channel) dispatch(frame Frame) {
	var ev events.Event
	if err := json.Unmarshal([]byte(frame.Data), &ev); err != nil {
		logx.Debugf("Skipping malformed live event %q: %v", frame.Event, err)
		return
	}
	if ev.Type == "" {
		ev.Type = events.Type(frame.Event)
	}

	if resources := Resources(ev.Type); len(resources) > 0 {
		c.inv.Invalidate(resources...)
	}
	if c.onEvent != nil {
		c.onEvent(ev)
	}
}

func (c *Channel) setStatus(s Status) {
	c.mu.Lock()
	changed := c.status != s
	c.status = s
	c.mu.Unlock()

	if changed && c.onStatus != nil {
		c.onStatus(s)
	}
}

func (c *Channel) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-c.wake:
		return true
	case <-t.C:
		return true
	}
}

func (c *Channel) idle(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-c.wake:
		return true
	}
}
