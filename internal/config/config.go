package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/luispater/storefrontBot/internal/device"
	log "github.com/sirupsen/logrus"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "config.yaml"

// StageLocal relaxes the browser sandbox for local development.
const StageLocal = "LOCAL"

// AppConfig holds the application configuration.
type AppConfig struct {
	Version           string              `yaml:"version"`
	Debug             bool                `yaml:"debug"`
	Stage             string              `yaml:"stage"`
	Browser           AppConfigBrowser    `yaml:"browser"`
	NavigationTimeout int                 `yaml:"navigation-timeout"`
	WaitTimeout       int                 `yaml:"wait-timeout"`
	Storefront        AppConfigStorefront `yaml:"storefront"`
	PDF               AppConfigPDF        `yaml:"pdf"`
	API               AppConfigAPI        `yaml:"api"`
	NATS              AppConfigNATS       `yaml:"nats"`
}

type AppConfigBrowser struct {
	ExecPath     string   `yaml:"exec-path"`
	Headless     bool     `yaml:"headless"`
	Args         []string `yaml:"args"`
	UserDataDir  string   `yaml:"user-data-dir,omitempty"`
	WindowWidth  int      `yaml:"window-width"`
	WindowHeight int      `yaml:"window-height"`
}

type AppConfigStorefront struct {
	URL               string             `yaml:"url"`
	DeviceIndex       int                `yaml:"device-index"`
	Device            string             `yaml:"device,omitempty"`
	ScreenshotPath    string             `yaml:"screenshot-path"`
	ActionTimeout     int                `yaml:"action-timeout"`
	Workflow          string             `yaml:"workflow,omitempty"`
	InspectWebSockets bool               `yaml:"inspect-websockets"`
	Selectors         AppConfigSelectors `yaml:"selectors"`
}

// AppConfigSelectors are the CSS selectors driving the login flow.
type AppConfigSelectors struct {
	LoginButton   string `yaml:"login-button"`
	EpicLogin     string `yaml:"epic-login"`
	EmailInput    string `yaml:"email-input"`
	PasswordInput string `yaml:"password-input"`
	SignInButton  string `yaml:"sign-in-button"`
}

type AppConfigPDF struct {
	URL             string `yaml:"url"`
	Path            string `yaml:"path"`
	Format          string `yaml:"format"`
	Landscape       bool   `yaml:"landscape"`
	PrintBackground bool   `yaml:"print-background"`
}

type AppConfigAPI struct {
	Port         string `yaml:"port"`
	EventHistory int    `yaml:"event-history"`
}

type AppConfigNATS struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject-prefix"`
}

// Default returns the configuration used when no file overrides it.
func Default() *AppConfig {
	return &AppConfig{
		Version: "1",
		Browser: AppConfigBrowser{
			Headless:     true,
			WindowWidth:  1920,
			WindowHeight: 1080,
		},
		NavigationTimeout: 60000,
		WaitTimeout:       60000,
		Storefront: AppConfigStorefront{
			URL:            "https://store.epicgames.com/es-ES/",
			ScreenshotPath: "screenshots/epic_store.png",
			ActionTimeout:  30000,
			Selectors: AppConfigSelectors{
				LoginButton:   "#user",
				EpicLogin:     "#login-with-epic",
				EmailInput:    "#email",
				PasswordInput: "#password",
				SignInButton:  "#sign-in",
			},
		},
		PDF: AppConfigPDF{
			URL:    "https://news.ycombinator.com",
			Path:   "hn.pdf",
			Format: "a4",
		},
		API: AppConfigAPI{
			Port:         "8080",
			EventHistory: 200,
		},
		NATS: AppConfigNATS{
			SubjectPrefix: "storefront.events",
		},
	}
}

// LoadConfig loads configuration from path on top of the defaults, then
// applies environment overrides. A missing file is not an error.
func LoadConfig(path string) (*AppConfig, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		log.Debugf("Configuration file %s not found, using defaults", path)
	} else if err = yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	config.applyEnv()
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *AppConfig) applyEnv() {
	if stage, ok := os.LookupEnv("STAGE"); ok {
		c.Stage = stage
	}
	if c.Browser.ExecPath == "" {
		c.Browser.ExecPath = os.Getenv("CHROME_BIN")
	}
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		c.NATS.URL = natsURL
	}
}

// Validate reports configuration errors that would only surface after the browser launched.
func (c *AppConfig) Validate() error {
	if c.NavigationTimeout <= 0 {
		return fmt.Errorf("navigation-timeout must be positive, got %d", c.NavigationTimeout)
	}
	if c.WaitTimeout < 0 {
		return fmt.Errorf("wait-timeout must not be negative, got %d", c.WaitTimeout)
	}
	if strings.TrimSpace(c.Storefront.URL) == "" {
		return errors.New("storefront.url is required")
	}
	if strings.TrimSpace(c.PDF.URL) == "" {
		return errors.New("pdf.url is required")
	}
	if _, err := c.Storefront.Profile(); err != nil {
		return err
	}
	return nil
}

// IsLocal reports whether STAGE selects local development.
func (c *AppConfig) IsLocal() bool {
	return c.Stage == StageLocal
}

func (c *AppConfig) NavigationTimeoutDuration() time.Duration {
	return time.Duration(c.NavigationTimeout) * time.Millisecond
}

func (c *AppConfig) WaitTimeoutDuration() time.Duration {
	return time.Duration(c.WaitTimeout) * time.Millisecond
}

// Profile resolves the emulated device: the name wins over the index.
func (s AppConfigStorefront) Profile() (device.Profile, error) {
	if s.Device != "" {
		return device.ByName(s.Device)
	}
	return device.ByIndex(s.DeviceIndex)
}
