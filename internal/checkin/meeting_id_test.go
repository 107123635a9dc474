package checkin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMeetingID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{name: "zoom subdomain with query", url: "https://us06web.zoom.us/j/84240819038?pwd=x", expected: "84240819038"},
		{name: "zoom classic", url: "https://zoom.us/j/123", expected: "123"},
		{name: "zoom j nested in path", url: "https://zoom.us/wc/join/j/55", expected: "55"},
		{name: "google meet", url: "https://meet.google.com/abc-defg-hij", expected: "abc-defg-hij"},
		{name: "google meet trailing slash", url: "https://meet.google.com/abc-defg-hij/", expected: "abc-defg-hij"},
		{name: "google meet root", url: "https://meet.google.com/", expected: ""},
		{name: "institutional sso", url: "https://applications.zoom.us/lti/abc123/j/999", expected: "999"},
		{name: "institutional sso trailing segment", url: "https://applications.zoom.us/lti/seg/j/42/start", expected: "42"},
		{name: "zoom personal link has no id", url: "https://zoom.us/s/abc", expected: ""},
		{name: "zoom web client has no j segment", url: "https://zoom.us/wc/join/123", expected: ""},
		{name: "non zoom host", url: "https://evil.com/j/123", expected: ""},
		{name: "malformed", url: "::not a url", expected: ""},
		{name: "empty", url: "", expected: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractMeetingID(tt.url))
		})
	}
}

func TestPublicRedirect(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{name: "institutional sso normalized", url: "https://applications.zoom.us/lti/abc123/j/999", expected: "https://zoom.us/j/999"},
		{name: "classic untouched", url: "https://us06web.zoom.us/j/84240819038?pwd=x", expected: "https://us06web.zoom.us/j/84240819038?pwd=x"},
		{name: "meet untouched", url: "https://meet.google.com/abc-defg-hij", expected: "https://meet.google.com/abc-defg-hij"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PublicRedirect(tt.url, ExtractMeetingID(tt.url)))
		})
	}
}
