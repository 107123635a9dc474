package checkin

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	meetHost        = "meet.google.com"
	institutionHost = "applications.zoom.us"
)

var (
	zoomDomains = []string{"zoom.us", "zoom.com", "zoomgov.com"}

	// classicJoinPath matches /j/..., /wc/join/... and /s/... join links.
	classicJoinPath = regexp.MustCompile(`^/(j|wc/join|s)/`)
	// institutionJoinPath matches the LTI single sign-on shape /lti/<segment>/j/<digits>.
	institutionJoinPath = regexp.MustCompile(`^/lti/[^/]+/j/(\d+)(?:/|$)`)
	// joinID finds /j/<digits> anywhere in a path.
	joinID = regexp.MustCompile(`/j/(\d+)`)
)

// IsAllowedTarget reports whether rawURL is an acceptable redirect target: Google Meet, or a
// Zoom join link on a Zoom-owned host. Malformed input is simply not allowed.
func IsAllowedTarget(rawURL string) bool {
	u, host, ok := parseTarget(rawURL)
	if !ok {
		return false
	}
	if host == meetHost {
		return true
	}
	if !isZoomHost(host) {
		return false
	}
	if classicJoinPath.MatchString(u.Path) {
		return true
	}
	return host == institutionHost && institutionJoinPath.MatchString(u.Path)
}

func parseTarget(rawURL string) (*url.URL, string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, "", false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, "", false
	}
	return u, host, true
}

func isZoomHost(host string) bool {
	for _, d := range zoomDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
