package event

import (
	"context"
	"errors"
	"sync"

	"github.com/luispater/storefrontBot/internal/utils"
	log "github.com/sirupsen/logrus"
)

// ErrClosed is returned by Subscription.Next after the subscription ended
// and every buffered event was consumed.
var ErrClosed = errors.New("subscription closed")

// Bus is an in-process publish/subscribe hub for page events. Every
// subscription buffers without bound, so a slow consumer never loses events.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	closed bool
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]*Subscription)}
}

// Subscription receives the events accepted by its matcher, in publish order.
type Subscription struct {
	id    uint64
	bus   *Bus
	match Matcher
	queue *utils.Queue[Event]
	once  sync.Once
}

// Subscribe registers a subscription. Events published after Subscribe
// returns are delivered to it; a nil matcher accepts everything.
func (b *Bus) Subscribe(m Matcher) *Subscription {
	if m == nil {
		m = Any()
	}
	sub := &Subscription{bus: b, match: m, queue: utils.NewQueue[Event]()}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		sub.queue.Close()
		return sub
	}
	b.nextID++
	sub.id = b.nextID
	b.subs[sub.id] = sub
	return sub
}

// Publish delivers ev to every matching subscription.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		log.Debugf("event bus closed, dropping %s event", ev.Kind)
		return
	}
	for _, sub := range b.subs {
		if sub.match(ev) {
			sub.queue.Enqueue(ev)
		}
	}
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close ends every subscription. Buffered events remain readable.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		sub.queue.Close()
		delete(b.subs, id)
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

// Next blocks until the next matching event arrives or ctx is done.
func (s *Subscription) Next(ctx context.Context) (Event, error) {
	ev, err := s.queue.DequeueContext(ctx)
	if errors.Is(err, utils.ErrQueueClosed) {
		return Event{}, ErrClosed
	}
	return ev, err
}

// Pending returns the number of buffered events.
func (s *Subscription) Pending() int {
	return s.queue.Size()
}

// Unsubscribe detaches the subscription from the bus. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.remove(s.id)
		s.queue.Close()
	})
}
