package chrome

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"github.com/luispater/storefrontBot/internal/device"
	"github.com/luispater/storefrontBot/internal/event"
	log "github.com/sirupsen/logrus"
)

// DefaultNavigationTimeout bounds a single LoadURL navigation.
const DefaultNavigationTimeout = 60 * time.Second

// navigateFunc performs a navigation and returns the main document response.
type navigateFunc func(ctx context.Context, url string) (*network.Response, error)

// Session is one open page. Sessions are independent handles: opening another
// session never closes or replaces this one.
type Session struct {
	ID      string
	Profile device.Profile

	ctx               context.Context
	cancel            context.CancelFunc
	bus               *event.Bus
	fwd               *forwarder
	navigate          navigateFunc
	navigationTimeout time.Duration
	waitTimeout       time.Duration
	closed            atomic.Bool
	onClose           func(*Session)
}

func newSession(ctx context.Context, cancel context.CancelFunc, bus *event.Bus, profile device.Profile) *Session {
	id := uuid.New().String()
	return &Session{
		ID:                id,
		Profile:           profile,
		ctx:               ctx,
		cancel:            cancel,
		bus:               bus,
		fwd:               newForwarder(id, bus),
		navigate:          chromedpNavigate,
		navigationTimeout: DefaultNavigationTimeout,
	}
}

func chromedpNavigate(ctx context.Context, url string) (*network.Response, error) {
	return chromedp.RunResponse(ctx, chromedp.Navigate(url))
}

// GetContext returns the chromedp context bound to the page target.
func (s *Session) GetContext() context.Context {
	return s.ctx
}

// Bus returns the bus this session forwards to.
func (s *Session) Bus() *event.Bus {
	return s.bus
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	return s.closed.Load()
}

// InspectWebSockets starts forwarding WebSocket lifecycle events to l.
// Passing nil detaches the inspector.
func (s *Session) InspectWebSockets(l *WebSocketListener) {
	s.fwd.setSocketListener(l)
}

// Subscribe returns a subscription limited to this session's events.
func (s *Session) Subscribe(m event.Matcher) *event.Subscription {
	return s.bus.Subscribe(event.And(event.FromSession(s.ID), m))
}

// LoadResult is the outcome of one LoadURL call.
type LoadResult struct {
	// OK is true once the main document answered with a 2xx status.
	OK bool `json:"ok"`
	// Status is the HTTP status of the awaited response event, or of the
	// document when no event was awaited.
	Status int64 `json:"status"`
	// Response is the payload text of the awaited event.
	Response string       `json:"response,omitempty"`
	Event    *event.Event `json:"-"`
}

type loadOptions struct {
	waitFor     event.Matcher
	waitTimeout time.Duration
}

// LoadOption customises LoadURL.
type LoadOption func(*loadOptions)

// WithWaitFor makes LoadURL resolve only after an event matching m arrives.
func WithWaitFor(m event.Matcher) LoadOption {
	return func(o *loadOptions) {
		o.waitFor = m
	}
}

// WithWaitTimeout bounds the wait for the WithWaitFor event. Zero waits
// until the caller's context is done.
func WithWaitTimeout(d time.Duration) LoadOption {
	return func(o *loadOptions) {
		o.waitTimeout = d
	}
}

// LoadURL navigates the page to url. The awaited event subscription, if any,
// is registered before navigation starts so early events are not lost.
func (s *Session) LoadURL(ctx context.Context, url string, opts ...LoadOption) (*LoadResult, error) {
	if s.Closed() {
		return nil, ErrSessionClosed
	}
	o := loadOptions{waitTimeout: s.waitTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	var sub *event.Subscription
	if o.waitFor != nil {
		sub = s.Subscribe(o.waitFor)
		defer sub.Unsubscribe()
	}

	navCtx, cancel := context.WithTimeout(s.ctx, s.navigationTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	log.Debugf("Loading %s", url)
	resp, err := s.navigate(navCtx, url)
	if err != nil {
		if s.Closed() {
			return nil, fmt.Errorf("navigate to %s: %w", url, ErrSessionClosed)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("navigate to %s: %w", url, ctxErr)
		}
		return nil, fmt.Errorf("navigate to %s: %w", url, err)
	}

	result := &LoadResult{OK: true}
	if resp != nil {
		if resp.Status < 200 || resp.Status > 299 {
			return nil, &NotOkResponse{URL: resp.URL, Status: resp.Status, StatusText: resp.StatusText}
		}
		result.Status = resp.Status
	}
	if sub == nil {
		return result, nil
	}

	var waitCtx context.Context
	var waitCancel context.CancelFunc
	if o.waitTimeout > 0 {
		waitCtx, waitCancel = context.WithTimeout(ctx, o.waitTimeout)
	} else {
		waitCtx, waitCancel = context.WithCancel(ctx)
	}
	defer waitCancel()
	// closing the session ends the wait
	stopWait := context.AfterFunc(s.ctx, waitCancel)
	defer stopWait()

	ev, err := sub.Next(waitCtx)
	if err != nil {
		if s.Closed() || (ctx.Err() == nil && s.ctx.Err() != nil) {
			return nil, fmt.Errorf("waiting on %s: %w", url, ErrSessionClosed)
		}
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrWaitTimeout, o.waitTimeout)
		}
		return nil, err
	}
	result.Event = &ev
	switch ev.Kind {
	case event.KindResponse:
		result.Status = ev.Response.Status
		result.Response = ev.Response.Body
	case event.KindConsole:
		result.Response = ev.Console.Text
	case event.KindSocket:
		result.Response = ev.Socket.Payload
	case event.KindRequest:
		result.Response = ev.Request.URL
	}
	return result, nil
}

// Close closes the page. It is safe to call more than once.
func (s *Session) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.cancel()
	s.fwd.wait()
	if s.onClose != nil {
		s.onClose(s)
	}
	log.Debugf("Session %s closed", s.ID)
}
