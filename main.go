package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/luispater/storefrontBot/internal/bridge"
	"github.com/luispater/storefrontBot/internal/config"
	"github.com/luispater/storefrontBot/internal/event"
	"github.com/luispater/storefrontBot/internal/logging"
	"github.com/luispater/storefrontBot/internal/script"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool
)

func init() {
	logging.Setup(os.Stdout, true)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		log.Error(err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "storefrontBot",
		Short:         "Headless Chrome automation for the storefront login flow and PDF rendering",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to the YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "storefront",
			Short: "Open the storefront, save a screenshot and walk to the login form",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRuntime(cmd.Context(), script.Storefront)
			},
		},
		&cobra.Command{
			Use:   "pdf",
			Short: "Render the configured page to a PDF file",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRuntime(cmd.Context(), script.PDF)
			},
		},
		newServeCommand(),
	)
	return rootCmd
}

// loadConfig reads the configuration and applies the log level.
func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.Debug = true
	}
	logging.Setup(os.Stdout, cfg.Debug)
	return cfg, nil
}

// startBridge connects the NATS bridge when a server is configured.
func startBridge(bus *event.Bus, cfg *config.AppConfig) func() {
	if cfg.NATS.URL == "" {
		return func() {}
	}
	b, err := bridge.Connect(bus, cfg.NATS)
	if err != nil {
		log.Warnf("NATS bridge disabled: %v", err)
		return func() {}
	}
	return func() {
		if errClose := b.Close(); errClose != nil {
			log.Debugf("Error closing NATS bridge: %v", errClose)
		}
	}
}

type scriptFunc func(ctx context.Context, cfg *config.AppConfig, bus *event.Bus) error

func withRuntime(ctx context.Context, run scriptFunc) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	bus := event.NewBus()
	defer bus.Close()
	closeBridge := startBridge(bus, cfg)
	defer closeBridge()

	return run(ctx, cfg, bus)
}
