package main

import (
	"context"
	"time"

	"github.com/luispater/storefrontBot/internal/api"
	"github.com/luispater/storefrontBot/internal/browser/chrome"
	"github.com/luispater/storefrontBot/internal/event"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Keep a browser session open behind the HTTP control API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log.Info("Starting Storefront Bot API application...")

	bus := event.NewBus()
	defer bus.Close()
	recorder := event.NewRecorder(bus, cfg.API.EventHistory)
	defer recorder.Close()
	closeBridge := startBridge(bus, cfg)
	defer closeBridge()

	manager, err := chrome.NewManager(cfg, bus)
	if err != nil {
		return err
	}
	defer func() {
		log.Debugf("Closing browser manager...")
		if errClose := manager.Close(); errClose != nil {
			log.Debugf("Error closing browser manager: %v", errClose)
		}
	}()
	if err = manager.Launch(); err != nil {
		return err
	}

	profile, err := cfg.Storefront.Profile()
	if err != nil {
		return err
	}
	var inspector *chrome.WebSocketListener
	if cfg.Storefront.InspectWebSockets {
		inspector = chrome.LoggingWebSocketListener()
	}
	browser, err := api.NewSessionBrowser(manager, profile, inspector, cfg.NavigationTimeoutDuration())
	if err != nil {
		return err
	}

	log.Debugf("Navigating to: %s", cfg.Storefront.URL)
	if _, err = browser.Load(ctx, api.LoadRequest{URL: cfg.Storefront.URL}); err != nil {
		log.Warnf("could not goto %s: %v", cfg.Storefront.URL, err)
	}

	apiServer := api.NewServer(&api.ServerConfig{
		Port:     cfg.API.Port,
		Debug:    cfg.Debug,
		Browser:  browser,
		Recorder: recorder,
	}, cfg)

	errChan := make(chan error, 1)
	go func() {
		log.Infof("Starting API server on port %s", cfg.API.Port)
		errChan <- apiServer.Start()
	}()

	select {
	case err = <-errChan:
		return err
	case <-ctx.Done():
		log.Debugf("Received shutdown signal. Cleaning up...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err = apiServer.Stop(shutdownCtx); err != nil {
		log.Debugf("Error stopping API server: %v", err)
	}
	log.Debugf("Cleanup completed. Exiting...")
	return nil
}
