package chrome

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/chromedp/chromedp"
	"github.com/luispater/storefrontBot/internal/config"
)

// launchFlags returns the command line switches the browser is started with.
func launchFlags(appConfig *config.AppConfig) map[string]interface{} {
	flags := map[string]interface{}{
		"no-first-run":             true,
		"no-default-browser-check": true,
		"incognito":                true,
		"disable-dev-shm-usage":    true,
	}

	if appConfig.Browser.Headless {
		flags["headless"] = true
		flags["disable-gpu"] = true
		flags["hide-scrollbars"] = true
		flags["mute-audio"] = true
	}

	if appConfig.IsLocal() {
		flags["no-sandbox"] = true
	}

	for _, arg := range appConfig.Browser.Args {
		if arg != "" {
			parts := strings.SplitN(arg, "=", 2)
			if len(parts) == 2 {
				flags[strings.TrimPrefix(parts[0], "--")] = parts[1]
			} else {
				flags[strings.TrimPrefix(parts[0], "--")] = true
			}
		}
	}
	return flags
}

func allocatorOptions(appConfig *config.AppConfig, execPath string) []chromedp.ExecAllocatorOption {
	flags := launchFlags(appConfig)
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)

	opts := make([]chromedp.ExecAllocatorOption, 0, len(flags)+3)
	for _, name := range names {
		opts = append(opts, chromedp.Flag(name, flags[name]))
	}

	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}
	if appConfig.Browser.WindowWidth > 0 && appConfig.Browser.WindowHeight > 0 {
		opts = append(opts, chromedp.WindowSize(appConfig.Browser.WindowWidth, appConfig.Browser.WindowHeight))
	}
	if appConfig.Browser.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(appConfig.Browser.UserDataDir))
	}
	return opts
}

func describeLaunch(appConfig *config.AppConfig) string {
	data, err := json.MarshalIndent(map[string]interface{}{
		"headless": appConfig.Browser.Headless,
		"args":     launchFlags(appConfig),
	}, "", " ")
	if err != nil {
		return err.Error()
	}
	return string(data)
}
