package method

import (
	"context"
	"sync"
	"time"

	"github.com/luispater/storefrontBot/internal/browser/chrome"
)

// Method exposes page actions on a session. Exported methods take plain
// string/number parameters so workflows can call them by name.
type Method struct {
	session       *chrome.Session
	mu            sync.Mutex
	lastClickTime time.Time
}

func NewMethod(session *chrome.Session) *Method {
	return &Method{
		session: session,
	}
}

// Session returns the session actions run against.
func (m *Method) Session() *chrome.Session {
	return m.session
}

// opContext derives a context bounded by timeout milliseconds. Zero means no bound.
func (m *Method) opContext(timeout float64) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(m.session.GetContext(), time.Duration(timeout*float64(time.Millisecond)))
	}
	return context.WithCancel(m.session.GetContext())
}

// linkContexts returns a context carrying session's values that ends when
// either session or ctx does.
func linkContexts(session, ctx context.Context) (context.Context, context.CancelFunc) {
	linked, cancel := context.WithCancel(session)
	stop := context.AfterFunc(ctx, cancel)
	return linked, func() {
		stop()
		cancel()
	}
}
