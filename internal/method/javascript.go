package method

import (
	"fmt"

	"github.com/chromedp/chromedp"
	log "github.com/sirupsen/logrus"
)

func (m *Method) Evaluate(script string) (any, error) {
	var result any
	if err := chromedp.Run(m.session.GetContext(), chromedp.Evaluate(script, &result)); err != nil {
		log.Error(err)
		return nil, err
	}
	return result, nil
}

func (m *Method) GetLocalStorage(name string) (any, error) {
	var value any
	script := fmt.Sprintf(`localStorage.getItem(%q)`, name)
	err := chromedp.Run(m.session.GetContext(),
		chromedp.Evaluate(script, &value),
	)
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (m *Method) SetLocalStorage(name, value string) error {
	script := fmt.Sprintf(`localStorage.setItem(%q, %q)`, name, value)
	return chromedp.Run(m.session.GetContext(),
		chromedp.Evaluate(script, nil),
	)
}
