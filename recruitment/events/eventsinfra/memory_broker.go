package eventsinfra

import (
	"context"
	"sync"

	"github.com/Abraxas-365/talentdesk/pkg/logx"
	"github.com/Abraxas-365/talentdesk/recruitment/events"
)

// subscriberBuffer is how far a slow subscriber may fall behind before
// events are dropped for it
const subscriberBuffer = 64

// MemoryBroker fans events out to in-process subscribers
type MemoryBroker struct {
	mu     sync.RWMutex
	subs   map[*memorySubscription]struct{}
	closed bool
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[*memorySubscription]struct{})}
}

// Publish never blocks; a full subscriber misses the event
func (b *MemoryBroker) Publish(ctx context.Context, event events.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs {
		select {
		case sub.ch <- event:
		default:
			logx.Warnf("Dropping %s event for slow subscriber", event.Type)
		}
	}
	return nil
}

// Subscribe registers a subscriber that lives until Close or ctx ends
func (b *MemoryBroker) Subscribe(ctx context.Context) (events.Subscription, error) {
	sub := &memorySubscription{broker: b, ch: make(chan events.Event, subscriberBuffer)}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(sub.ch)
		return sub, nil
	}
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		sub.Close()
	}()
	return sub, nil
}

// Subscribers reports how many subscriptions are open
func (b *MemoryBroker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close ends every subscription
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for sub := range b.subs {
		delete(b.subs, sub)
		close(sub.ch)
	}
	return nil
}

type memorySubscription struct {
	broker *MemoryBroker
	ch     chan events.Event
}

func (s *memorySubscription) Events() <-chan events.Event { return s.ch }

func (s *memorySubscription) Close() error {
	s.broker.mu.Lock()
	defer s.broker.mu.Unlock()
	if _, ok := s.broker.subs[s]; ok {
		delete(s.broker.subs, s)
		close(s.ch)
	}
	return nil
}
