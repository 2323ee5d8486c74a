package chrome

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/luispater/storefrontBot/internal/config"
	"github.com/luispater/storefrontBot/internal/device"
	"github.com/luispater/storefrontBot/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chromePath() string {
	if p := os.Getenv("CHROME_BIN"); p != "" {
		return p
	}
	for _, name := range []string{"headless-shell", "chromium", "chromium-browser", "google-chrome", "google-chrome-stable"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return ""
}

func storefrontServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, `<html><body><h1>store</h1>
<script>
console.warn("storefront ready");
fetch("/api/session").then(r => r.text());
</script></body></html>`)
	})
	mux.HandleFunc("/api/session", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"account":"guest"}`)
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	})
	return httptest.NewServer(mux)
}

func TestManagerAgainstRealBrowser(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	execPath := chromePath()
	if execPath == "" {
		t.Skip("no Chrome binary available")
	}

	srv := storefrontServer()
	defer srv.Close()

	cfg := config.Default()
	cfg.Stage = config.StageLocal
	cfg.Browser.ExecPath = execPath
	cfg.WaitTimeout = 10000

	bus := event.NewBus()
	defer bus.Close()
	m, err := NewManager(cfg, bus)
	require.NoError(t, err)
	defer func() { _ = m.Close() }()
	require.NoError(t, m.Launch())

	session, err := m.OpenSession(device.Default())
	require.NoError(t, err)

	var sockets int
	session.InspectWebSockets(&WebSocketListener{OnCreated: func(*network.EventWebSocketCreated) { sockets++ }})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := session.LoadURL(ctx, srv.URL+"/", WithWaitFor(event.ResponsePath("/api/session")))
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, int64(200), res.Status)
	assert.JSONEq(t, `{"account":"guest"}`, res.Response)

	_, err = session.LoadURL(ctx, srv.URL+"/gone")
	var notOk *NotOkResponse
	require.True(t, errors.As(err, &notOk))
	assert.Equal(t, int64(http.StatusGone), notOk.Status)

	second, err := m.OpenSession(device.Default())
	require.NoError(t, err)
	assert.Len(t, m.Sessions(), 2)
	second.Close()
	assert.Len(t, m.Sessions(), 1)
	assert.Equal(t, 0, sockets)

	require.NoError(t, m.ClearBrowserCookies())
	require.NoError(t, m.ClearBrowserCache())

	require.NoError(t, m.Relaunch())
	assert.True(t, session.Closed())
	assert.Empty(t, m.Sessions())
	reopened, err := m.OpenSession(device.Default())
	require.NoError(t, err)
	res, err = reopened.LoadURL(ctx, srv.URL+"/")
	require.NoError(t, err)
	assert.True(t, res.OK)
}
