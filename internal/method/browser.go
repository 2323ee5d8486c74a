package method

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/luispater/storefrontBot/internal/browser/chrome"
	"github.com/luispater/storefrontBot/internal/event"
	log "github.com/sirupsen/logrus"
)

func (m *Method) GetURL() (string, error) {
	var currentURL string
	err := chromedp.Run(m.session.GetContext(), chromedp.Location(&currentURL))
	if err != nil {
		return "", err
	}
	return currentURL, nil
}

func (m *Method) GetTitle() (string, error) {
	var title string
	err := chromedp.Run(m.session.GetContext(), chromedp.Title(&title))
	if err != nil {
		return "", err
	}
	return title, nil
}

// LoadURL navigates to url and fails on a non-2xx document.
func (m *Method) LoadURL(url string) error {
	res, err := m.session.LoadURL(m.session.GetContext(), url)
	if err != nil {
		return err
	}
	log.Debugf("Loaded %s with status %d", url, res.Status)
	return nil
}

// LoadURLAndWaitResponse navigates to url and returns the body of the first
// response whose path matches pathPattern.
func (m *Method) LoadURLAndWaitResponse(url, pathPattern string, timeout float64) (string, error) {
	res, err := m.session.LoadURL(m.session.GetContext(), url,
		chrome.WithWaitFor(event.ResponsePath(pathPattern)),
		chrome.WithWaitTimeout(msDuration(timeout)),
	)
	if err != nil {
		return "", err
	}
	return res.Response, nil
}

// NavigateAndWaitNetworkIdle navigates to url and waits until the page has
// at most two open connections, mirroring the networkidle2 condition.
func (m *Method) NavigateAndWaitNetworkIdle(url string, timeout float64) error {
	return m.NavigateAndWaitNetworkIdleContext(context.Background(), url, timeout)
}

// NavigateAndWaitNetworkIdleContext is NavigateAndWaitNetworkIdle stopped
// early when parent ends.
func (m *Method) NavigateAndWaitNetworkIdleContext(parent context.Context, url string, timeout float64) error {
	linked, cancelLinked := linkContexts(m.session.GetContext(), parent)
	defer cancelLinked()
	var ctx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(linked, msDuration(timeout))
	} else {
		ctx, cancel = context.WithCancel(linked)
	}
	defer cancel()

	idle := listenLifecycle(ctx, "networkAlmostIdle")
	if err := chromedp.Run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("error navigating to %s: %w", url, err)
	}

	select {
	case <-idle:
		log.Debugf("Network idle on %s", url)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("error waiting for network idle on %s: %w", url, ctx.Err())
	}
}
