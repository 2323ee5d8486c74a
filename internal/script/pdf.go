package script

import (
	"context"
	"fmt"

	"github.com/luispater/storefrontBot/internal/browser/chrome"
	"github.com/luispater/storefrontBot/internal/config"
	"github.com/luispater/storefrontBot/internal/device"
	"github.com/luispater/storefrontBot/internal/event"
	"github.com/luispater/storefrontBot/internal/method"
	log "github.com/sirupsen/logrus"
)

// PDF renders the configured page to a PDF file once the network settles.
func PDF(ctx context.Context, cfg *config.AppConfig, bus *event.Bus) error {
	if _, _, err := method.PaperSize(cfg.PDF.Format); err != nil {
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

	log.Info("Launching browser")
	if err = manager.Launch(); err != nil {
		return err
	}
	session, err := manager.OpenSession(device.Default())
	if err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, session.Close)
	defer stop()

	m := method.NewMethod(session)
	if err = m.NavigateAndWaitNetworkIdle(cfg.PDF.URL, float64(cfg.NavigationTimeout)); err != nil {
		return fmt.Errorf("could not load %s: %w", cfg.PDF.URL, err)
	}
	return m.PrintPDF(cfg.PDF.Path, cfg.PDF.Format, cfg.PDF.Landscape, cfg.PDF.PrintBackground)
}
