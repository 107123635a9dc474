package checkin

import "strings"

// ExtractMeetingID derives the meeting identifier from a target URL: the numeric Zoom
// meeting ID or the Google Meet room code. Returns "" when nothing matches.
func ExtractMeetingID(rawURL string) string {
	u, host, ok := parseTarget(rawURL)
	if !ok {
		return ""
	}
	switch {
	case host == institutionHost:
		// the LTI shape also contains /j/<digits>; match it explicitly first
		if m := institutionJoinPath.FindStringSubmatch(u.Path); m != nil {
			return m[1]
		}
		if m := joinID.FindStringSubmatch(u.Path); m != nil {
			return m[1]
		}
	case isZoomHost(host):
		if m := joinID.FindStringSubmatch(u.Path); m != nil {
			return m[1]
		}
	case host == meetHost:
		return strings.Trim(u.Path, "/")
	}
	return ""
}

// PublicRedirect returns the URL the caller should be sent to. Institutional single sign-on
// links are rewritten to the public join URL; everything else is returned as submitted.
func PublicRedirect(rawURL, meetingID string) string {
	if meetingID == "" {
		return rawURL
	}
	u, host, ok := parseTarget(rawURL)
	if !ok || host != institutionHost || !institutionJoinPath.MatchString(u.Path) {
		return rawURL
	}
	return "https://zoom.us/j/" + meetingID
}
