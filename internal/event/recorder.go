package event

import (
	"context"
	"sync"
)

// Recorder keeps the most recent events seen on a bus.
type Recorder struct {
	mu       sync.RWMutex
	capacity int
	events   []Event
	sub      *Subscription
	done     chan struct{}
}

// NewRecorder starts recording up to capacity events from bus.
func NewRecorder(bus *Bus, capacity int) *Recorder {
	if capacity <= 0 {
		capacity = 100
	}
	r := &Recorder{
		capacity: capacity,
		events:   make([]Event, 0, capacity),
		sub:      bus.Subscribe(Any()),
		done:     make(chan struct{}),
	}
	go r.loop()
	return r
}

func (r *Recorder) loop() {
	defer close(r.done)
	for {
		ev, err := r.sub.Next(context.Background())
		if err != nil {
			return
		}
		r.mu.Lock()
		if len(r.events) == r.capacity {
			copy(r.events, r.events[1:])
			r.events = r.events[:len(r.events)-1]
		}
		r.events = append(r.events, ev)
		r.mu.Unlock()
	}
}

// Recent returns up to limit of the latest events matching m, oldest first.
// A limit of zero or less returns every recorded match.
func (r *Recorder) Recent(m Matcher, limit int) []Event {
	if m == nil {
		m = Any()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Event, 0)
	for i := len(r.events) - 1; i >= 0; i-- {
		if !m(r.events[i]) {
			continue
		}
		out = append(out, r.events[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Close stops recording and waits for the recorder goroutine.
func (r *Recorder) Close() {
	r.sub.Unsubscribe()
	<-r.done
}
