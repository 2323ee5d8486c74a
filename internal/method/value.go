package method

import (
	"fmt"

	"github.com/chromedp/chromedp"
	log "github.com/sirupsen/logrus"
)

func (m *Method) Value(elementSelector string, timeout float64) (string, error) {
	exists, err := m.Exists(elementSelector)
	if err != nil {
		return "", err
	}
	if !exists {
		currentURL, _ := m.GetURL()
		return "", fmt.Errorf("error: Element with selector '%s' not found on page %s", elementSelector, currentURL)
	}

	opCtx, cancel := m.opContext(timeout)
	defer cancel()

	var value string
	if err = chromedp.Run(opCtx, chromedp.Value(elementSelector, &value, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("error getting value from element '%s': %w", elementSelector, err)
	}
	return value, nil
}

// Input types text into the element after it becomes visible.
func (m *Method) Input(elementSelector, text string, timeout float64) error {
	opCtx, cancel := m.opContext(timeout)
	defer cancel()

	log.Debugf("Attempting to input into element '%s'...", elementSelector)
	err := chromedp.Run(opCtx,
		chromedp.WaitVisible(elementSelector, chromedp.ByQuery),
		chromedp.SendKeys(elementSelector, text, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("error input element '%s': %w", elementSelector, err)
	}
	log.Debugf("Successfully input element '%s'.", elementSelector)
	return nil
}

// Clear empties the value of the element.
func (m *Method) Clear(elementSelector string, timeout float64) error {
	opCtx, cancel := m.opContext(timeout)
	defer cancel()

	if err := chromedp.Run(opCtx, chromedp.SetValue(elementSelector, "", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("error clearing element '%s': %w", elementSelector, err)
	}
	log.Debugf("Cleared element '%s'.", elementSelector)
	return nil
}
