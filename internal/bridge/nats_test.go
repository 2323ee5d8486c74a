package bridge

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/luispater/storefrontBot/internal/config"
	"github.com/luispater/storefrontBot/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type message struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []message
	fail bool
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		f.fail = false
		return errors.New("disconnected")
	}
	f.msgs = append(f.msgs, message{subject: subject, data: data})
	return nil
}

func (f *fakePublisher) messages() []message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]message(nil), f.msgs...)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "storefront.events.console", Subject("storefront.events", event.KindConsole))
	assert.Equal(t, "response", Subject("", event.KindResponse))
}

func TestBridgeForwardsEventsInOrder(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()
	pub := &fakePublisher{}
	b := New(bus, pub, "sf")

	bus.Publish(event.NewRequest("s1", event.Request{Method: "GET", URL: "https://a.b/"}))
	bus.Publish(event.NewResponse("s1", event.Response{URL: "https://a.b/", Path: "/", Status: 200}))
	bus.Publish(event.NewConsole("s1", event.Console{Type: "warning", Text: "careful"}))

	require.Eventually(t, func() bool { return len(pub.messages()) == 3 }, time.Second, 5*time.Millisecond)
	require.NoError(t, b.Close())

	msgs := pub.messages()
	assert.Equal(t, "sf.request", msgs[0].subject)
	assert.Equal(t, "sf.response", msgs[1].subject)
	assert.Equal(t, "sf.console", msgs[2].subject)
	assert.Equal(t, "careful", gjson.GetBytes(msgs[2].data, "console.text").String())
	assert.Equal(t, "s1", gjson.GetBytes(msgs[2].data, "session_id").String())
}

func TestBridgeKeepsGoingAfterPublishError(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()
	pub := &fakePublisher{fail: true}
	b := New(bus, pub, "sf")
	defer b.Close()

	bus.Publish(event.NewConsole("s1", event.Console{Type: "log", Text: "lost"}))
	bus.Publish(event.NewConsole("s1", event.Console{Type: "log", Text: "kept"}))

	require.Eventually(t, func() bool { return len(pub.messages()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "kept", gjson.GetBytes(pub.messages()[0].data, "console.text").String())
}

func TestConnectRequiresURL(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()
	_, err := Connect(bus, config.AppConfigNATS{})
	assert.Error(t, err)
}
