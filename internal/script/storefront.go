package script

import (
	"context"
	"fmt"

	"github.com/luispater/storefrontBot/internal/browser/chrome"
	"github.com/luispater/storefrontBot/internal/config"
	"github.com/luispater/storefrontBot/internal/event"
	"github.com/luispater/storefrontBot/internal/method"
	"github.com/luispater/storefrontBot/internal/runner"
	log "github.com/sirupsen/logrus"
)

// Storefront opens the store with the configured device, saves a screenshot
// and walks the login flow up to submitting the empty form.
func Storefront(ctx context.Context, cfg *config.AppConfig, bus *event.Bus) error {
	profile, err := cfg.Storefront.Profile()
	if err != nil {
		return err
	}
	wf, err := loginWorkflow(cfg.Storefront)
	if err != nil {
		return err
	}

	manager, err := chrome.NewManager(cfg, bus)
	if err != nil {
		return err
	}
	defer func() {
		if errClose := manager.Close(); errClose != nil {
			log.Debugf("Error closing browser manager: %v", errClose)
		}
	}()

	if err = manager.Launch(); err != nil {
		return err
	}
	session, err := manager.OpenSession(profile)
	if err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, session.Close)
	defer stop()
	if cfg.Storefront.InspectWebSockets {
		session.InspectWebSockets(chrome.LoggingWebSocketListener())
	}

	res, err := session.LoadURL(ctx, cfg.Storefront.URL)
	if err != nil {
		return fmt.Errorf("could not open storefront: %w", err)
	}
	log.Infof("Storefront %s loaded with status %d", cfg.Storefront.URL, res.Status)

	m := method.NewMethod(session)
	if err = m.Screenshot(cfg.Storefront.ScreenshotPath); err != nil {
		return err
	}

	r := runner.NewRunnerManager("storefront", m)
	if err = r.Run(ctx, wf); err != nil {
		return err
	}
	if v, ok := r.Variable(loginURLVariable); ok {
		log.Infof("Login form submitted, page is now %v", v.Value)
	} else {
		log.Info("Login form submitted")
	}
	return nil
}
