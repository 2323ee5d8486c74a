package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/luispater/storefrontBot/internal/browser/chrome"
	"github.com/luispater/storefrontBot/internal/device"
	"github.com/luispater/storefrontBot/internal/event"
	"github.com/luispater/storefrontBot/internal/method"
	log "github.com/sirupsen/logrus"
)

// LoadRequest is a decoded POST /v1/load body.
type LoadRequest struct {
	URL         string
	WaitPath    string
	WaitURL     string
	WaitConsole string
	Timeout     time.Duration
}

// matcher returns the wait matcher, nil when nothing should be awaited.
// A path pattern wins over a URL pattern, which wins over a console type.
func (r LoadRequest) matcher() event.Matcher {
	switch {
	case r.WaitPath != "":
		return event.ResponsePath(r.WaitPath)
	case r.WaitURL != "":
		return event.ResponseURL(r.WaitURL)
	case r.WaitConsole != "":
		return event.ConsoleType(r.WaitConsole)
	}
	return nil
}

// Browser is the page the control API drives.
type Browser interface {
	Load(ctx context.Context, req LoadRequest) (*chrome.LoadResult, error)
	Screenshot(ctx context.Context) ([]byte, error)
	PDF(ctx context.Context, url string, opts method.PDFOptions) ([]byte, error)
	Reset(ctx context.Context) error
	Relaunch(ctx context.Context) error
}

// SessionBrowser drives a single chrome session and replaces it on relaunch.
type SessionBrowser struct {
	manager           *chrome.Manager
	profile           device.Profile
	inspector         *chrome.WebSocketListener
	navigationTimeout time.Duration

	mu      sync.Mutex
	session *chrome.Session
	method  *method.Method
}

// NewSessionBrowser opens the first session on an already launched manager.
// A nil inspector leaves websocket frames unlogged.
func NewSessionBrowser(manager *chrome.Manager, profile device.Profile, inspector *chrome.WebSocketListener, navigationTimeout time.Duration) (*SessionBrowser, error) {
	b := &SessionBrowser{
		manager:           manager,
		profile:           profile,
		inspector:         inspector,
		navigationTimeout: navigationTimeout,
	}
	if err := b.open(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *SessionBrowser) open() error {
	session, err := b.manager.OpenSession(b.profile)
	if err != nil {
		return err
	}
	if b.inspector != nil {
		session.InspectWebSockets(b.inspector)
	}
	b.mu.Lock()
	b.session = session
	b.method = method.NewMethod(session)
	b.mu.Unlock()
	return nil
}

func (b *SessionBrowser) current() (*chrome.Session, *method.Method) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session, b.method
}

func (b *SessionBrowser) Load(ctx context.Context, req LoadRequest) (*chrome.LoadResult, error) {
	var opts []chrome.LoadOption
	if m := req.matcher(); m != nil {
		opts = append(opts, chrome.WithWaitFor(m))
		if req.Timeout > 0 {
			opts = append(opts, chrome.WithWaitTimeout(req.Timeout))
		}
	}
	session, _ := b.current()
	return session.LoadURL(ctx, req.URL, opts...)
}

func (b *SessionBrowser) Screenshot(ctx context.Context) ([]byte, error) {
	_, m := b.current()
	return m.CaptureScreenshotContext(ctx)
}

func (b *SessionBrowser) PDF(ctx context.Context, url string, opts method.PDFOptions) ([]byte, error) {
	_, m := b.current()
	if url != "" {
		if err := m.NavigateAndWaitNetworkIdleContext(ctx, url, float64(b.navigationTimeout.Milliseconds())); err != nil {
			return nil, fmt.Errorf("could not load %s: %w", url, err)
		}
	}
	return m.RenderPDF(ctx, opts)
}

// Reset clears cookies and cache for the whole browser.
func (b *SessionBrowser) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.manager.ClearBrowserCookies(); err != nil {
		return err
	}
	return b.manager.ClearBrowserCache()
}

// Relaunch restarts chrome and opens a fresh session with the same profile.
func (b *SessionBrowser) Relaunch(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.manager.Relaunch(); err != nil {
		return err
	}
	if err := b.open(); err != nil {
		return fmt.Errorf("reopen session: %w", err)
	}
	log.Info("Browser relaunched")
	return nil
}
