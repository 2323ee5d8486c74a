package method

import (
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	log "github.com/sirupsen/logrus"
)

func (m *Method) WaitVisible(elementSelector string, timeout float64) error {
	opCtx, cancel := m.opContext(timeout)
	defer cancel()

	if err := chromedp.Run(opCtx, chromedp.WaitVisible(elementSelector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("error waiting for element '%s': %w", elementSelector, err)
	}
	log.Debugf("Element '%s' is visible.", elementSelector)
	return nil
}

func (m *Method) WaitReady(elementSelector string, timeout float64) error {
	opCtx, cancel := m.opContext(timeout)
	defer cancel()

	if err := chromedp.Run(opCtx, chromedp.WaitReady(elementSelector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("error waiting for element '%s': %w", elementSelector, err)
	}
	return nil
}

// Exists reports whether at least one element matches without waiting.
func (m *Method) Exists(elementSelector string) (bool, error) {
	var nodes []*cdp.Node
	err := chromedp.Run(m.session.GetContext(),
		chromedp.Nodes(elementSelector, &nodes, chromedp.ByQuery, chromedp.AtLeast(0)),
	)
	if err != nil {
		return false, fmt.Errorf("error finding element with selector '%s': %w", elementSelector, err)
	}
	return len(nodes) > 0, nil
}

func (m *Method) GetInnerText(elementSelector string, timeout float64) (string, error) {
	opCtx, cancel := m.opContext(timeout)
	defer cancel()

	var innerText string
	err := chromedp.Run(opCtx, chromedp.Text(elementSelector, &innerText, chromedp.ByQuery))
	if err != nil {
		log.Debugf("GetInnerText error: %v", err)
		return "", err
	}
	log.Debugf("GetInnerText: %s", innerText)
	return innerText, nil
}
