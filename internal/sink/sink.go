// Package sink appends check-in records to the configured event store.
package sink

import (
	"context"
	"fmt"
	"strings"

	"github.com/unifecaf/checkin-api/internal/models"
)

// Sink is an append-only store of check-in records.
type Sink interface {
	InsertRows(ctx context.Context, rows []models.CheckinRecord) error
}

// RowError is one row rejected by the store.
type RowError struct {
	Index   int    `json:"index"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

// InsertErrors reports row-level rejections. The call itself reached the store.
type InsertErrors []RowError

func (e InsertErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, r := range e {
		parts = append(parts, fmt.Sprintf("row %d: %s", r.Index, r.Message))
	}
	return "insert errors: " + strings.Join(parts, "; ")
}
