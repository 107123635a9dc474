package models

import (
	"time"
)

// Column names shared by every sink. The URL column is configurable (link_zoom or meeting_url).
const (
	ColumnTimestamp  = "data_hora"
	ColumnName       = "nome"
	ColumnNationalID = "cpf"
	ColumnMeetingID  = "meeting_id"
	ColumnClientIP   = "ip"
)

// CheckinRecord is one persisted check-in event. Append-only.
type CheckinRecord struct {
	Timestamp  time.Time `json:"data_hora"`
	Name       string    `json:"nome"`
	NationalID *string   `json:"cpf"`
	MeetingURL string    `json:"link_zoom"`
	MeetingID  *string   `json:"meeting_id"`
	ClientIP   *string   `json:"ip"`
}

// NewCheckinRecord builds a record stamped with the current UTC time. Empty optional
// fields become null.
func NewCheckinRecord(name, nationalID, meetingURL, meetingID, clientIP string) CheckinRecord {
	return CheckinRecord{
		Timestamp:  time.Now().UTC(),
		Name:       name,
		NationalID: nullable(nationalID),
		MeetingURL: meetingURL,
		MeetingID:  nullable(meetingID),
		ClientIP:   nullable(clientIP),
	}
}

// Row returns the record as a column map, timestamp in RFC 3339 with sub-second precision.
func (r CheckinRecord) Row(urlColumn string) map[string]any {
	return map[string]any{
		ColumnTimestamp:  r.Timestamp.UTC().Format(time.RFC3339Nano),
		ColumnName:       r.Name,
		ColumnNationalID: deref(r.NationalID),
		urlColumn:        r.MeetingURL,
		ColumnMeetingID:  deref(r.MeetingID),
		ColumnClientIP:   deref(r.ClientIP),
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
