package chrome

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/luispater/storefrontBot/internal/config"
	"github.com/luispater/storefrontBot/internal/device"
	"github.com/luispater/storefrontBot/internal/event"
	log "github.com/sirupsen/logrus"
)

// Manager manages a Chrome browser instance and the sessions opened in it.
type Manager struct {
	appConfig     *config.AppConfig
	bus           *event.Bus
	allocator     context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	execPath      string

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a new Chromedp Manager instance.
// It initializes the allocator context but does not launch the browser yet.
func NewManager(appConfig *config.AppConfig, bus *event.Bus) (*Manager, error) {
	if appConfig == nil {
		return nil, fmt.Errorf("appConfig cannot be nil")
	}
	if bus == nil {
		bus = event.NewBus()
	}

	execPath := appConfig.Browser.ExecPath
	if execPath == "" {
		execPath = os.Getenv("CHROME_BIN")
		if execPath == "" {
			log.Warn("Chromedp browser path not specified in config or CHROME_BIN env, will attempt auto-detection.")
		}
	}

	m := &Manager{
		appConfig: appConfig,
		bus:       bus,
		execPath:  execPath,
		sessions:  make(map[string]*Session),
	}
	m.allocate()
	return m, nil
}

// allocate prepares a fresh exec allocator. Callers hold m.mu or own m exclusively.
func (m *Manager) allocate() {
	m.allocator, m.allocCancel = chromedp.NewExecAllocator(context.Background(), allocatorOptions(m.appConfig, m.execPath)...)
}

// Bus returns the event bus every session forwards to.
func (m *Manager) Bus() *event.Bus {
	return m.bus
}

// Launch starts the browser process. A failed launch is logged and returned.
func (m *Manager) Launch() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.browserCtx != nil {
		return nil
	}
	if m.allocator == nil {
		if m.appConfig == nil {
			return fmt.Errorf("manager not properly initialized, config is nil")
		}
		log.Debug("Allocator was closed, preparing a new one")
		m.allocate()
	}

	log.Infof("Launch chrome %s", describeLaunch(m.appConfig))

	browserCtx, browserCancel := chromedp.NewContext(
		m.allocator,
		chromedp.WithLogf(log.Infof),
		chromedp.WithErrorf(log.Debugf),
	)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		log.Errorf("Failed to launch browser: %v", err)
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	m.browserCtx = browserCtx
	m.browserCancel = browserCancel

	log.Infof("Chromedp browser launched successfully with path: %s", m.execPath)
	return nil
}

// OpenSession opens a new page emulating profile and attaches the event forwarders.
func (m *Manager) OpenSession(profile device.Profile) (*Session, error) {
	m.mu.Lock()
	browserCtx := m.browserCtx
	m.mu.Unlock()
	if browserCtx == nil {
		return nil, ErrNotLaunched
	}

	var newTargetID target.ID
	err := chromedp.Run(
		browserCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			newTargetID, err = target.CreateTarget("about:blank").Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create new target (tab): %w", err)
	}

	pageCtx, pageCancel := chromedp.NewContext(browserCtx, chromedp.WithTargetID(newTargetID))
	session := newSession(pageCtx, pageCancel, m.bus, profile)
	session.navigationTimeout = m.appConfig.NavigationTimeoutDuration()
	session.waitTimeout = m.appConfig.WaitTimeoutDuration()
	session.fwd.fetchBody = func(requestID network.RequestID) ([]byte, error) {
		c := chromedp.FromContext(pageCtx)
		if c == nil || c.Target == nil {
			return nil, ErrSessionClosed
		}
		return network.GetResponseBody(requestID).Do(cdp.WithExecutor(pageCtx, c.Target))
	}
	chromedp.ListenTarget(pageCtx, session.fwd.handle)

	profileJSON, _ := json.Marshal(profile)
	log.Infof("Using device: %s", profileJSON)

	err = chromedp.Run(
		pageCtx,
		network.Enable(),
		page.SetLifecycleEventsEnabled(true),
		chromedp.Emulate(profile),
	)
	if err != nil {
		pageCancel()
		return nil, fmt.Errorf("failed to prepare session: %w", err)
	}

	m.track(session)

	log.Debugf("New Chromedp session %s (targetID: %s) created.", session.ID, newTargetID)
	return session, nil
}

func (m *Manager) track(s *Session) {
	s.onClose = m.forget
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
}

func (m *Manager) forget(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, s.ID)
}

// Sessions returns the sessions that are still open.
func (m *Manager) Sessions() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Close closes every open session, then the browser process.
func (m *Manager) Close() error {
	for _, s := range m.Sessions() {
		s.Close()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browserCancel != nil {
		log.Debug("Cancelling Chromedp browser context...")
		m.browserCancel()
		m.browserCancel = nil
		m.browserCtx = nil
		log.Info("Chromedp browser context cancelled.")
	}

	if m.allocCancel != nil {
		log.Debug("Cancelling Chromedp allocator context...")
		m.allocCancel()
		m.allocCancel = nil
		m.allocator = nil
		log.Info("Chromedp allocator context cancelled and browser process shut down.")
	}

	log.Info("Chromedp Manager closed.")
	return nil
}

// Relaunch closes every session and the browser, then launches a new browser.
// Sessions opened before Relaunch stay closed.
func (m *Manager) Relaunch() error {
	log.Info("Relaunching chrome")
	if err := m.Close(); err != nil {
		return err
	}
	return m.Launch()
}

// ClearBrowserCache clears the browser cache.
func (m *Manager) ClearBrowserCache() error {
	m.mu.Lock()
	browserCtx := m.browserCtx
	m.mu.Unlock()
	if browserCtx == nil {
		return ErrNotLaunched
	}
	log.Info("Clearing browser cache...")
	if err := chromedp.Run(browserCtx, network.ClearBrowserCache()); err != nil {
		return fmt.Errorf("failed to clear browser cache: %w", err)
	}
	log.Info("Browser cache cleared.")
	return nil
}

// ClearBrowserCookies clears all browser cookies.
func (m *Manager) ClearBrowserCookies() error {
	m.mu.Lock()
	browserCtx := m.browserCtx
	m.mu.Unlock()
	if browserCtx == nil {
		return ErrNotLaunched
	}
	log.Info("Clearing browser cookies...")
	if err := chromedp.Run(browserCtx, network.ClearBrowserCookies()); err != nil {
		return fmt.Errorf("failed to clear browser cookies: %w", err)
	}
	log.Info("Browser cookies cleared.")
	return nil
}
