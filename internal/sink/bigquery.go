package sink

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	bq "google.golang.org/api/bigquery/v2"
	"google.golang.org/api/option"

	"github.com/unifecaf/checkin-api/internal/models"
)

// BigQuery streams rows into a table with tabledata.insertAll.
type BigQuery struct {
	svc       *bq.Service
	project   string
	dataset   string
	table     string
	urlColumn string
	logger    *zap.Logger
}

// BigQueryConfig locates the table and carries the service account key.
type BigQueryConfig struct {
	Project         string
	Dataset         string
	Table           string
	CredentialsJSON string
	URLColumn       string
}

// NewBigQuery builds the REST client. Without CredentialsJSON the default credential chain is used.
func NewBigQuery(ctx context.Context, cfg BigQueryConfig, logger *zap.Logger, opts ...option.ClientOption) (*BigQuery, error) {
	if cfg.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}
	opts = append(opts, option.WithScopes(bq.BigqueryInsertdataScope))
	svc, err := bq.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("bigquery client: %w", err)
	}
	logger.Info("BigQuery sink ready",
		zap.String("table", cfg.Project+"."+cfg.Dataset+"."+cfg.Table))
	return &BigQuery{
		svc:       svc,
		project:   cfg.Project,
		dataset:   cfg.Dataset,
		table:     cfg.Table,
		urlColumn: cfg.URLColumn,
		logger:    logger,
	}, nil
}

// InsertRows sends every record in one insertAll call with a fresh insert ID per row.
func (b *BigQuery) InsertRows(ctx context.Context, rows []models.CheckinRecord) error {
	req := &bq.TableDataInsertAllRequest{
		Rows: make([]*bq.TableDataInsertAllRequestRows, 0, len(rows)),
	}
	for _, r := range rows {
		js := make(map[string]bq.JsonValue)
		for k, v := range r.Row(b.urlColumn) {
			js[k] = v
		}
		req.Rows = append(req.Rows, &bq.TableDataInsertAllRequestRows{
			InsertId: uuid.New().String(),
			Json:     js,
		})
	}

	resp, err := b.svc.Tabledata.InsertAll(b.project, b.dataset, b.table, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("insertAll: %w", err)
	}
	if len(resp.InsertErrors) == 0 {
		return nil
	}
	var rowErrs InsertErrors
	for _, ie := range resp.InsertErrors {
		for _, e := range ie.Errors {
			rowErrs = append(rowErrs, RowError{Index: int(ie.Index), Reason: e.Reason, Message: e.Message})
		}
		if len(ie.Errors) == 0 {
			rowErrs = append(rowErrs, RowError{Index: int(ie.Index), Message: "rejected"})
		}
	}
	b.logger.Warn("bigquery rejected rows", zap.Int("count", len(rowErrs)))
	return rowErrs
}
