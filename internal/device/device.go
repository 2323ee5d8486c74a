// Package device holds the fixed table of emulated client profiles.
package device

import (
	"fmt"
	"strings"

	cdpdevice "github.com/chromedp/chromedp/device"
)

const desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; WOW64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/68.0.3440.75 Safari/537.36"

// Profile is a named user agent and viewport. It satisfies chromedp.Device
// so it can be passed straight to chromedp.Emulate.
type Profile struct {
	Name      string  `json:"name" yaml:"name"`
	UserAgent string  `json:"user_agent" yaml:"user-agent"`
	Width     int64   `json:"width" yaml:"width"`
	Height    int64   `json:"height" yaml:"height"`
	Scale     float64 `json:"scale" yaml:"scale"`
	Landscape bool    `json:"landscape" yaml:"landscape"`
	Mobile    bool    `json:"mobile" yaml:"mobile"`
	Touch     bool    `json:"touch" yaml:"touch"`
}

// Device implements chromedp.Device.
func (p Profile) Device() cdpdevice.Info {
	scale := p.Scale
	if scale <= 0 {
		scale = 1
	}
	return cdpdevice.Info{
		Name:      p.Name,
		UserAgent: p.UserAgent,
		Width:     p.Width,
		Height:    p.Height,
		Scale:     scale,
		Landscape: p.Landscape,
		Mobile:    p.Mobile,
		Touch:     p.Touch,
	}
}

func (p Profile) String() string {
	return fmt.Sprintf("%s (%dx%d)", p.Name, p.Width, p.Height)
}

func fromInfo(info cdpdevice.Info) Profile {
	return Profile{
		Name:      info.Name,
		UserAgent: info.UserAgent,
		Width:     info.Width,
		Height:    info.Height,
		Scale:     info.Scale,
		Landscape: info.Landscape,
		Mobile:    info.Mobile,
		Touch:     info.Touch,
	}
}

var profiles = []Profile{
	{Name: "Desktop 1920x1080", UserAgent: desktopUserAgent, Width: 1920, Height: 1080, Scale: 1},
	{Name: "Desktop 1024x768", UserAgent: desktopUserAgent, Width: 1024, Height: 768, Scale: 1},
	fromInfo(cdpdevice.IPad.Device()),
	fromInfo(cdpdevice.IPadlandscape.Device()),
}

// List returns a copy of the profile table in index order.
func List() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}

// Default is the first desktop profile.
func Default() Profile {
	return profiles[0]
}

// ByIndex returns the profile at index i.
func ByIndex(i int) (Profile, error) {
	if i < 0 || i >= len(profiles) {
		return Profile{}, fmt.Errorf("device index %d out of range [0,%d)", i, len(profiles))
	}
	return profiles[i], nil
}

// ByName looks a profile up by case-insensitive name.
func ByName(name string) (Profile, error) {
	for _, p := range profiles {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("unknown device %q", name)
}
