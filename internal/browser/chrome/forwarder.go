package chrome

import (
	"strings"
	"sync"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/luispater/storefrontBot/internal/event"
	"github.com/luispater/storefrontBot/internal/utils"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// forwarder translates raw CDP page events into bus events for one session.
type forwarder struct {
	sessionID string
	bus       *event.Bus
	fetchBody func(network.RequestID) ([]byte, error)

	mu      sync.Mutex
	pending map[network.RequestID]*network.Response
	sockets *WebSocketListener
	wsURLs  map[network.RequestID]string
	closed  bool
	wg      sync.WaitGroup
}

func newForwarder(sessionID string, bus *event.Bus) *forwarder {
	return &forwarder{
		sessionID: sessionID,
		bus:       bus,
		pending:   make(map[network.RequestID]*network.Response),
		wsURLs:    make(map[network.RequestID]string),
	}
}

// handle is registered with chromedp.ListenTarget. It must not block on CDP
// calls, so body retrieval runs on its own goroutine.
func (f *forwarder) handle(ifEv interface{}) {
	switch ev := ifEv.(type) {
	case *network.EventRequestWillBeSent:
		f.onRequest(ev)
	case *network.EventResponseReceived:
		f.mu.Lock()
		f.pending[ev.RequestID] = ev.Response
		f.mu.Unlock()
	case *network.EventLoadingFinished:
		f.mu.Lock()
		resp, ok := f.pending[ev.RequestID]
		delete(f.pending, ev.RequestID)
		start := ok && !f.closed
		if start {
			f.wg.Add(1)
		}
		f.mu.Unlock()
		if start {
			go func() {
				defer f.wg.Done()
				f.onResponse(ev.RequestID, resp)
			}()
		}
	case *network.EventLoadingFailed:
		f.mu.Lock()
		delete(f.pending, ev.RequestID)
		f.mu.Unlock()
	case *runtime.EventConsoleAPICalled:
		f.onConsole(ev)
	default:
		f.onSocket(ifEv)
	}
}

func (f *forwarder) onRequest(ev *network.EventRequestWillBeSent) {
	if ev.Request == nil {
		return
	}
	log.Debugf("Sent %s to %s", ev.Request.Method, ev.Request.URL)
	f.bus.Publish(event.NewRequest(f.sessionID, event.Request{
		Method: ev.Request.Method,
		URL:    ev.Request.URL,
	}))
}

func (f *forwarder) onResponse(requestID network.RequestID, resp *network.Response) {
	var body string
	if f.fetchBody != nil {
		data, err := f.fetchBody(requestID)
		if err != nil {
			log.Debugf("Could not read body of %s: %v", resp.URL, err)
		} else {
			body = string(data)
		}
	}
	log.Debugf("Received from %s - %d", resp.URL, resp.Status)
	f.bus.Publish(event.NewResponse(f.sessionID, event.Response{
		URL:        resp.URL,
		Path:       utils.URLPath(resp.URL),
		Status:     resp.Status,
		StatusText: resp.StatusText,
		Body:       body,
	}))
}

func (f *forwarder) onConsole(ev *runtime.EventConsoleAPICalled) {
	args := consoleArgs(ev.Args)
	msg := event.Console{
		Type: string(ev.Type),
		Text: strings.Join(args, " "),
		Args: args,
	}
	if msg.Type != "log" {
		log.Infof("CONSOLE: %s - %s", msg.Type, msg.Text)
	}
	f.bus.Publish(event.NewConsole(f.sessionID, msg))
}

// consoleArgs renders console arguments the way the devtools console prints them.
func consoleArgs(args []*runtime.RemoteObject) []string {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == nil {
			continue
		}
		switch {
		case len(arg.Value) > 0:
			value := gjson.ParseBytes([]byte(arg.Value))
			if value.Type == gjson.String {
				out = append(out, value.String())
			} else {
				out = append(out, value.Raw)
			}
		case arg.UnserializableValue != "":
			out = append(out, string(arg.UnserializableValue))
		case arg.Description != "":
			out = append(out, arg.Description)
		default:
			out = append(out, string(arg.Type))
		}
	}
	return out
}

func (f *forwarder) setSocketListener(l *WebSocketListener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sockets = l
}

// wait blocks until every in-flight response has been published.
// wait stops new body fetches and waits for the running ones.
func (f *forwarder) wait() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.wg.Wait()
}
