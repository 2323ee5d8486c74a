package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func next(t *testing.T, sub *Subscription) Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ev, err := sub.Next(ctx)
	require.NoError(t, err)
	return ev
}

func TestBusDeliversMatchingEvents(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	responses := bus.Subscribe(ResponsePath("/x/y"))
	consoles := bus.Subscribe(OfKind(KindConsole))

	bus.Publish(NewRequest("s1", Request{Method: "GET", URL: "https://a.b/x/y"}))
	bus.Publish(NewResponse("s1", Response{URL: "https://a.b/x/y?q=1", Path: "/x/y", Status: 200, Body: "ok"}))
	bus.Publish(NewConsole("s1", Console{Type: "error", Text: "boom"}))

	ev := next(t, responses)
	assert.Equal(t, KindResponse, ev.Kind)
	assert.Equal(t, "ok", ev.Response.Body)
	assert.Equal(t, 0, responses.Pending())

	ev = next(t, consoles)
	assert.Equal(t, "boom", ev.Console.Text)
}

func TestBusKeepsPublishOrderWithoutDropping(t *testing.T) {
	bus := NewBus()
	defer bus.Close()
	sub := bus.Subscribe(nil)

	const n = 500
	for i := 0; i < n; i++ {
		bus.Publish(NewResponse("s", Response{Status: int64(i)}))
	}
	for i := 0; i < n; i++ {
		assert.Equal(t, int64(i), next(t, sub).Response.Status)
	}
}

func TestSubscriptionNextHonoursContext(t *testing.T) {
	bus := NewBus()
	defer bus.Close()
	sub := bus.Subscribe(OfKind(KindSocket))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := sub.Next(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()
	defer bus.Close()
	sub := bus.Subscribe(nil)
	require.Equal(t, 1, bus.Len())

	sub.Unsubscribe()
	sub.Unsubscribe()
	assert.Equal(t, 0, bus.Len())

	bus.Publish(NewConsole("s", Console{Type: "log"}))
	_, err := sub.Next(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBusCloseDrainsBufferedEvents(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(nil)
	bus.Publish(NewConsole("s", Console{Type: "warn", Text: "kept"}))
	bus.Close()
	bus.Close()

	assert.Equal(t, "kept", next(t, sub).Console.Text)
	_, err := sub.Next(context.Background())
	assert.ErrorIs(t, err, ErrClosed)

	late := bus.Subscribe(nil)
	_, err = late.Next(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBusConcurrentPublishers(t *testing.T) {
	bus := NewBus()
	defer bus.Close()
	sub := bus.Subscribe(OfKind(KindRequest))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				bus.Publish(NewRequest("s", Request{Method: "GET"}))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 400, sub.Pending())
}

func TestMatchers(t *testing.T) {
	resp := NewResponse("s1", Response{URL: "https://store.example.com/api/v1/login?x=1", Status: 200})
	cons := NewConsole("s2", Console{Type: "log"})

	assert.True(t, ResponsePath("/api/*/login")(resp))
	assert.False(t, ResponsePath("/api/*/login")(cons))
	assert.True(t, ResponseURL("https://store.example.com/api/*/login")(resp))
	assert.True(t, ConsoleType()(cons))
	assert.False(t, ConsoleType("error")(cons))
	assert.True(t, FromSession("s1")(resp))
	assert.False(t, And(FromSession("s1"), OfKind(KindConsole))(resp))
	assert.True(t, And(nil, OfKind(KindResponse))(resp))
}
