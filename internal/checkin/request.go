package checkin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
)

// text decodes a JSON string or number; null leaves it empty.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*t = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("expected string or number: %w", err)
		}
		*t = text(n.String())
	}
	return nil
}

// Request is the public check-in body. Legacy pages send name and link_zoom.
type Request struct {
	Nome     text `json:"nome"`
	Name     text `json:"name"`
	CPF      text `json:"cpf"`
	Meeting  text `json:"meeting"`
	LinkZoom text `json:"link_zoom"`
}

// RawName returns nome, falling back to name.
func (r Request) RawName() string {
	if r.Nome != "" {
		return string(r.Nome)
	}
	return string(r.Name)
}

// MeetingURL returns meeting, falling back to link_zoom, trimmed.
func (r Request) MeetingURL() string {
	if u := strings.TrimSpace(string(r.Meeting)); u != "" {
		return u
	}
	return strings.TrimSpace(string(r.LinkZoom))
}

// LooksPublic reports whether the request body has the shape of the public form rather than
// a peer insertion: it names `meeting`, or it carries no `ip`. Unreadable bodies count as
// public so the form answers them. The body is restored for the next reader.
func LooksPublic(c *gin.Context) bool {
	raw, err := c.GetRawData()
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return true
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return true
	}
	_, hasMeeting := fields["meeting"]
	_, hasIP := fields["ip"]
	return hasMeeting || !hasIP
}
