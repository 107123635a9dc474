package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unifecaf/checkin-api/internal/models"
	"github.com/unifecaf/checkin-api/pkg/storage"
)

// Uploader is satisfied by *storage.S3.
type Uploader interface {
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader, contentLength int64) (string, error)
	CheckinsBucket() string
}

// S3 archives each record as one JSON object.
type S3 struct {
	up        Uploader
	urlColumn string
	logger    *zap.Logger
}

// NewS3 wraps an uploader.
func NewS3(up Uploader, urlColumn string, logger *zap.Logger) *S3 {
	return &S3{up: up, urlColumn: urlColumn, logger: logger}
}

func (s *S3) InsertRows(ctx context.Context, rows []models.CheckinRecord) error {
	var rowErrs InsertErrors
	for i, r := range rows {
		body, err := json.Marshal(r.Row(s.urlColumn))
		if err != nil {
			rowErrs = append(rowErrs, RowError{Index: i, Reason: "invalid", Message: err.Error()})
			continue
		}
		key := storage.CheckinKey(r.Timestamp, uuid.New().String())
		if _, err := s.up.Upload(ctx, s.up.CheckinsBucket(), key, "application/json", bytes.NewReader(body), int64(len(body))); err != nil {
			s.logger.Warn("archive checkin", zap.String("key", key), zap.Error(err))
			rowErrs = append(rowErrs, RowError{Index: i, Reason: "upload", Message: err.Error()})
		}
	}
	if len(rowErrs) > 0 {
		return rowErrs
	}
	return nil
}
