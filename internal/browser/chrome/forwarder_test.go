package chrome

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/luispater/storefrontBot/internal/device"
	"github.com/luispater/storefrontBot/internal/event"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextEvent(t *testing.T, sub *event.Subscription) event.Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ev, err := sub.Next(ctx)
	require.NoError(t, err)
	return ev
}

func respond(f *forwarder, id network.RequestID, url string, status int64) {
	f.handle(&network.EventResponseReceived{RequestID: id, Response: &network.Response{URL: url, Status: status}})
	f.handle(&network.EventLoadingFinished{RequestID: id})
}

func TestForwarderRequest(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()
	log.SetLevel(log.DebugLevel)
	defer log.SetLevel(log.InfoLevel)

	bus := event.NewBus()
	defer bus.Close()
	sub := bus.Subscribe(event.OfKind(event.KindRequest))
	f := newForwarder("s1", bus)

	f.handle(&network.EventRequestWillBeSent{RequestID: "1", Request: &network.Request{Method: "POST", URL: "https://a.b/login"}})

	ev := nextEvent(t, sub)
	assert.Equal(t, "s1", ev.SessionID)
	assert.Equal(t, "POST", ev.Request.Method)
	assert.Equal(t, "https://a.b/login", ev.Request.URL)

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, log.DebugLevel, last.Level)
	assert.Equal(t, "Sent POST to https://a.b/login", last.Message)
}

func TestForwarderResponseKeyIsURLPath(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()
	sub := bus.Subscribe(event.OfKind(event.KindResponse))
	f := newForwarder("s1", bus)
	f.fetchBody = func(id network.RequestID) ([]byte, error) {
		return []byte("body-" + string(id)), nil
	}

	cases := map[string]string{
		"https://a.b/x/y?q=1":                  "/x/y",
		"https://a.b/":                         "/",
		"https://a.b/api/v1#section":           "/api/v1",
		"https://a.b/users/a%40b.com/cart?q=1": "/users/a%40b.com/cart",
		"https://a.b/search/red%20shoes":       "/search/red%20shoes",
		"https://a.b":                          "/",
	}
	i := 0
	for url := range cases {
		i++
		respond(f, network.RequestID(strings.Repeat("r", i)), url, 200)
		ev := nextEvent(t, sub)
		assert.Equal(t, cases[ev.Response.URL], ev.Response.Path, ev.Response.URL)
		assert.Equal(t, "body-"+strings.Repeat("r", i), ev.Response.Body)
		assert.True(t, event.ResponsePath(cases[url])(ev))
	}
}

func TestForwarderResponseWithoutBody(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()
	sub := bus.Subscribe(event.OfKind(event.KindResponse))
	f := newForwarder("s1", bus)
	f.fetchBody = func(network.RequestID) ([]byte, error) {
		return nil, errors.New("No resource with given identifier found")
	}

	respond(f, "1", "https://a.b/redirect", 302)
	ev := nextEvent(t, sub)
	assert.Equal(t, int64(302), ev.Response.Status)
	assert.Empty(t, ev.Response.Body)
}

func TestForwarderFailedLoadIsNotPublished(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()
	sub := bus.Subscribe(nil)
	f := newForwarder("s1", bus)

	f.handle(&network.EventResponseReceived{RequestID: "1", Response: &network.Response{URL: "https://a.b/x", Status: 200}})
	f.handle(&network.EventLoadingFailed{RequestID: "1"})
	f.handle(&network.EventLoadingFinished{RequestID: "1"})
	f.wait()

	assert.Equal(t, 0, sub.Pending())
}

func TestForwarderSkipsBodiesAfterWait(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()
	sub := bus.Subscribe(event.OfKind(event.KindResponse))
	f := newForwarder("s1", bus)
	f.fetchBody = func(network.RequestID) ([]byte, error) {
		time.Sleep(time.Millisecond)
		return []byte("late"), nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			respond(f, network.RequestID(fmt.Sprint(i)), "https://a.b/late", 200)
		}
	}()
	f.wait()
	<-done
	published := sub.Pending()

	respond(f, "after", "https://a.b/after", 200)
	f.wait()
	assert.Equal(t, published, sub.Pending())
}

func consoleEvent(typ runtime.APIType, text string) *runtime.EventConsoleAPICalled {
	return &runtime.EventConsoleAPICalled{
		Type: typ,
		Args: []*runtime.RemoteObject{{Type: runtime.TypeString, Value: []byte(`"` + text + `"`)}},
	}
}

func TestForwarderConsoleLogging(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	bus := event.NewBus()
	defer bus.Close()
	sub := bus.Subscribe(event.OfKind(event.KindConsole))
	f := newForwarder("s1", bus)

	f.handle(consoleEvent(runtime.APITypeLog, "quiet"))
	ev := nextEvent(t, sub)
	assert.Equal(t, "log", ev.Console.Type)
	assert.Equal(t, "quiet", ev.Console.Text)
	for _, entry := range hook.AllEntries() {
		assert.NotEqual(t, log.InfoLevel, entry.Level, entry.Message)
	}

	f.handle(consoleEvent(runtime.APITypeError, "boom"))
	ev = nextEvent(t, sub)
	assert.Equal(t, "error", ev.Console.Type)

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, log.InfoLevel, last.Level)
	assert.Equal(t, "CONSOLE: error - boom", last.Message)
}

func TestConsoleArgs(t *testing.T) {
	args := consoleArgs([]*runtime.RemoteObject{
		{Type: runtime.TypeString, Value: []byte(`"hello"`)},
		{Type: runtime.TypeNumber, Value: []byte(`42`)},
		{Type: runtime.TypeObject, Value: []byte(`{"a":1}`)},
		{Type: runtime.TypeNumber, UnserializableValue: "NaN"},
		{Type: runtime.TypeObject, Description: "HTMLDivElement"},
		{Type: runtime.TypeUndefined},
		nil,
	})
	assert.Equal(t, []string{"hello", "42", `{"a":1}`, "NaN", "HTMLDivElement", "undefined"}, args)
}

func TestWebSocketEventsNeedInspector(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()
	sub := bus.Subscribe(event.OfKind(event.KindSocket))
	f := newForwarder("s1", bus)

	f.handle(&network.EventWebSocketCreated{RequestID: "ws1", URL: "wss://a.b/socket"})
	assert.Equal(t, 0, sub.Pending())

	var created, received, closed int
	f.setSocketListener(&WebSocketListener{
		OnCreated:       func(*network.EventWebSocketCreated) { created++ },
		OnFrameReceived: func(*network.EventWebSocketFrameReceived) { received++ },
		OnClosed:        func(*network.EventWebSocketClosed) { closed++ },
	})

	f.handle(&network.EventWebSocketCreated{RequestID: "ws1", URL: "wss://a.b/socket"})
	f.handle(&network.EventWebSocketWillSendHandshakeRequest{RequestID: "ws1"})
	f.handle(&network.EventWebSocketHandshakeResponseReceived{RequestID: "ws1", Response: &network.WebSocketResponse{Status: 101}})
	f.handle(&network.EventWebSocketFrameSent{RequestID: "ws1", Response: &network.WebSocketFrame{Opcode: 1, PayloadData: "ping"}})
	f.handle(&network.EventWebSocketFrameReceived{RequestID: "ws1", Response: &network.WebSocketFrame{Opcode: 1, PayloadData: "pong"}})
	f.handle(&network.EventWebSocketFrameError{RequestID: "ws1", ErrorMessage: "bad frame"})
	f.handle(&network.EventWebSocketClosed{RequestID: "ws1"})

	phases := []event.SocketPhase{
		event.SocketCreated, event.SocketHandshakeSent, event.SocketHandshakeReceived,
		event.SocketFrameSent, event.SocketFrameReceived, event.SocketError, event.SocketClosed,
	}
	for _, phase := range phases {
		ev := nextEvent(t, sub)
		assert.Equal(t, phase, ev.Socket.Phase)
		assert.Equal(t, "ws1", ev.Socket.RequestID)
		assert.Equal(t, "wss://a.b/socket", ev.Socket.URL)
		switch phase {
		case event.SocketHandshakeReceived:
			assert.Equal(t, int64(101), ev.Socket.Status)
		case event.SocketFrameReceived:
			assert.Equal(t, "pong", ev.Socket.Payload)
		case event.SocketError:
			assert.Equal(t, "bad frame", ev.Socket.Error)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, received)
	assert.Equal(t, 1, closed)
}

func TestSecondSessionKeepsFirstForwarding(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()
	m := &Manager{bus: bus, sessions: make(map[string]*Session)}

	first := testSession(t, bus, okNavigate(200))
	m.track(first)
	second := testSession(t, bus, okNavigate(200))
	m.track(second)
	require.Len(t, m.Sessions(), 2)

	sub := bus.Subscribe(event.OfKind(event.KindConsole))
	first.fwd.handle(consoleEvent(runtime.APITypeLog, "from first"))
	second.fwd.handle(consoleEvent(runtime.APITypeLog, "from second"))

	ev := nextEvent(t, sub)
	assert.Equal(t, first.ID, ev.SessionID)
	ev = nextEvent(t, sub)
	assert.Equal(t, second.ID, ev.SessionID)

	second.Close()
	sessions := m.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, first.ID, sessions[0].ID)
	assert.False(t, first.Closed())
}

func TestOpenSessionBeforeLaunch(t *testing.T) {
	m := &Manager{bus: event.NewBus(), sessions: make(map[string]*Session)}
	_, err := m.OpenSession(device.Default())
	assert.ErrorIs(t, err, ErrNotLaunched)
	assert.ErrorIs(t, m.ClearBrowserCookies(), ErrNotLaunched)
	assert.ErrorIs(t, m.ClearBrowserCache(), ErrNotLaunched)
	assert.NoError(t, m.Close())
}
