package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/s21platform/room-service/internal/model"
	"github.com/s21platform/room-service/internal/presence"
)

// буфер одной подписки
const subscriptionBuffer = 16

// Broker is the in-process change notification channel: a per-room fan-out
// of membership events. Delivery is at least once; a subscriber that falls
// behind loses events and receives a resubscribed marker instead, which
// forces a roster refetch on the consumer side.
type Broker struct {
	mu     sync.RWMutex
	rooms  map[string]map[*subscription]struct{}
	closed bool
}

func NewBroker() *Broker {
	return &Broker{
		rooms: make(map[string]map[*subscription]struct{}),
	}
}

// Subscribe registers a live subscription for one room. The subscription is
// torn down when ctx is canceled or Close is called, whichever comes first.
func (b *Broker) Subscribe(ctx context.Context, roomID string) (presence.Subscription, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, fmt.Errorf("broker is closed")
	}

	sub := &subscription{
		broker: b,
		roomID: roomID,
		events: make(chan model.MembershipEvent, subscriptionBuffer),
	}

	subs, ok := b.rooms[roomID]
	if !ok {
		subs = make(map[*subscription]struct{})
		b.rooms[roomID] = subs
	}
	subs[sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = sub.Close()
	}()

	return sub, nil
}

// Publish fans the event out to every subscriber of its room. Publishing
// never blocks on a slow subscriber.
func (b *Broker) Publish(ev model.MembershipEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.rooms[ev.RoomID] {
		sub.offer(ev)
	}
}

// Close tears down every subscription. Further subscribes fail, further
// publishes are dropped.
func (b *Broker) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	rooms := b.rooms
	b.rooms = make(map[string]map[*subscription]struct{})
	b.mu.Unlock()

	for _, subs := range rooms {
		for sub := range subs {
			sub.shutdown()
		}
	}
}

func (b *Broker) unsubscribe(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.rooms[sub.roomID]
	if !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(b.rooms, sub.roomID)
	}
}

type subscription struct {
	broker *Broker
	roomID string
	events chan model.MembershipEvent

	mu        sync.Mutex
	gapped    bool
	closed    bool
	closeOnce sync.Once
}

func (s *subscription) Events() <-chan model.MembershipEvent {
	return s.events
}

// Close is idempotent and safe to call concurrently with Publish.
func (s *subscription) Close() error {
	s.closeOnce.Do(func() {
		s.broker.unsubscribe(s)
		s.shutdown()
	})
	return nil
}

func (s *subscription) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}

// offer delivers the event without blocking. A full buffer marks the
// subscription gapped; once space frees up the subscriber gets a
// resubscribed marker first, so missed events are reconciled by refetch.
func (s *subscription) offer(ev model.MembershipEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if s.gapped {
		marker := model.MembershipEvent{RoomID: s.roomID, Type: model.EventResubscribed}
		select {
		case s.events <- marker:
			s.gapped = false
		default:
			return
		}
	}

	select {
	case s.events <- ev:
	default:
		s.gapped = true
	}
}
