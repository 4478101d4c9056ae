package eventsinfra

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Abraxas-365/talentdesk/pkg/logx"
	"github.com/Abraxas-365/talentdesk/recruitment/events"
	"github.com/go-redis/redis/v8"
)

// RedisBroker publishes events on a Redis pub/sub channel so every server
// instance can stream them
type RedisBroker struct {
	client  *redis.Client
	channel string
}

func NewRedisBroker(client *redis.Client, channel string) *RedisBroker {
	return &RedisBroker{client: client, channel: channel}
}

func (b *RedisBroker) Publish(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.Type, err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("publish event %s: %w", event.Type, err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context) (events.Subscription, error) {
	ps := b.client.Subscribe(ctx, b.channel)
	// Wait for the subscription confirmation so no event published right
	// after Subscribe returns is missed
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", b.channel, err)
	}

	sub := &redisSubscription{
		ps:   ps,
		ch:   make(chan events.Event, subscriberBuffer),
		done: make(chan struct{}),
	}
	go sub.pump(ctx)
	return sub, nil
}

type redisSubscription struct {
	ps   *redis.PubSub
	ch   chan events.Event
	done chan struct{}
	once sync.Once
}

func (s *redisSubscription) pump(ctx context.Context) {
	defer close(s.ch)

	msgs := s.ps.Channel()
	for {
		select {
		case <-ctx.Done():
			s.Close()
			return
		case <-s.done:
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var ev events.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logx.Warnf("Skipping malformed event on %s: %v", msg.Channel, err)
				continue
			}
			select {
			case s.ch <- ev:
			default:
				logx.Warnf("Dropping %s event for slow subscriber", ev.Type)
			}
		}
	}
}

func (s *redisSubscription) Events() <-chan events.Event { return s.ch }

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}
