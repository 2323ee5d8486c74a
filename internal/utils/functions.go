package utils

import (
	"net/url"
	"path"
)

// URLPath returns the percent-encoded path of rawURL, "/" for a bare origin,
// or an empty string when it cannot be parsed.
func URLPath(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return escapedPath(parsed)
}

func escapedPath(u *url.URL) string {
	if p := u.EscapedPath(); p != "" {
		return p
	}
	return "/"
}

// MatchPath reports whether the path of targetUrl matches pattern using path.Match rules.
func MatchPath(pattern string, targetUrl string) bool {
	targetPath := URLPath(targetUrl)
	if pattern == targetPath {
		return true
	}
	matched, err := path.Match(pattern, targetPath)
	if err != nil {
		return false
	}
	return matched
}

func MatchUrl(patternUrls []string, targetUrl string) bool {
	for _, patternUrl := range patternUrls {
		if patternUrl == targetUrl {
			return true
		}
		parsedPatternUrl, err := url.Parse(patternUrl)
		if err != nil {
			return false
		}
		patternUrlPath := escapedPath(parsedPatternUrl)

		parsedTargetUrl, err := url.Parse(targetUrl)
		if err != nil {
			return false
		}
		targetUrlPath := escapedPath(parsedTargetUrl)

		matched, err := path.Match(patternUrlPath, targetUrlPath)
		if err != nil {
			return false
		}

		if matched {
			if parsedPatternUrl.Scheme == parsedTargetUrl.Scheme && parsedPatternUrl.Host == parsedTargetUrl.Host {
				return true
			}
		}
	}
	return false
}
