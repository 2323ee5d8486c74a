package method

import (
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	log "github.com/sirupsen/logrus"
)

const clickInterval = 200 * time.Millisecond

func (m *Method) throttleClick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if time.Since(m.lastClickTime) < clickInterval {
		log.Debugf("Click too fast, wait for 200ms")
		time.Sleep(clickInterval)
	}
	m.lastClickTime = time.Now()
}

func (m *Method) Click(elementSelector string, timeout float64) error {
	m.throttleClick()
	log.Debugf("Attempting to find and click element with selector: %s", elementSelector)

	opCtx, cancel := m.opContext(timeout)
	defer cancel()

	err := chromedp.Run(opCtx,
		chromedp.WaitVisible(elementSelector, chromedp.ByQuery),
		chromedp.Click(elementSelector, chromedp.ByQuery),
	)

	if err != nil {
		currentURL, _ := m.GetURL()
		return fmt.Errorf("error clicking element '%s' on page %s: %w", elementSelector, currentURL, err)
	}

	log.Debugf("Successfully clicked element '%s'.", elementSelector)
	return nil
}

func (m *Method) MouseClick(x, y float64) error {
	m.throttleClick()
	return chromedp.Run(m.session.GetContext(), chromedp.MouseClickXY(x, y))
}
