package event

import (
	"github.com/luispater/storefrontBot/internal/utils"
)

// Matcher selects the events a subscription receives.
type Matcher func(Event) bool

// Any matches every event.
func Any() Matcher {
	return func(Event) bool { return true }
}

// OfKind matches events of the given kinds.
func OfKind(kinds ...Kind) Matcher {
	return func(ev Event) bool {
		for _, k := range kinds {
			if ev.Kind == k {
				return true
			}
		}
		return false
	}
}

// ResponsePath matches responses whose URL path matches pattern (path.Match syntax).
func ResponsePath(pattern string) Matcher {
	return func(ev Event) bool {
		if ev.Kind != KindResponse || ev.Response == nil {
			return false
		}
		return utils.MatchPath(pattern, ev.Response.URL)
	}
}

// ResponseURL matches responses against full URL patterns with the same
// scheme and host.
func ResponseURL(patterns ...string) Matcher {
	return func(ev Event) bool {
		if ev.Kind != KindResponse || ev.Response == nil {
			return false
		}
		return utils.MatchUrl(patterns, ev.Response.URL)
	}
}

// ConsoleType matches console messages of the given types, or all console
// messages when none are given.
func ConsoleType(types ...string) Matcher {
	return func(ev Event) bool {
		if ev.Kind != KindConsole || ev.Console == nil {
			return false
		}
		if len(types) == 0 {
			return true
		}
		for _, t := range types {
			if ev.Console.Type == t {
				return true
			}
		}
		return false
	}
}

// FromSession matches events forwarded by one session.
func FromSession(id string) Matcher {
	return func(ev Event) bool { return ev.SessionID == id }
}

// And matches when every matcher does. Nil matchers are ignored.
func And(matchers ...Matcher) Matcher {
	return func(ev Event) bool {
		for _, m := range matchers {
			if m != nil && !m(ev) {
				return false
			}
		}
		return true
	}
}
