package sink

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/unifecaf/checkin-api/config"
	"github.com/unifecaf/checkin-api/pkg/database"
	"github.com/unifecaf/checkin-api/pkg/queue"
	redisclient "github.com/unifecaf/checkin-api/pkg/redis"
	"github.com/unifecaf/checkin-api/pkg/storage"
)

// Open builds the sink of the given kind and the clients it needs. The returned close
// func releases them and is never nil.
func Open(ctx context.Context, kind string, cfg *config.Config, logger *zap.Logger) (Sink, func(), error) {
	noop := func() {}
	switch kind {
	case config.SinkBigQuery:
		s, err := NewBigQuery(ctx, BigQueryConfig{
			Project:         cfg.BigQuery.Project,
			Dataset:         cfg.BigQuery.Dataset,
			Table:           cfg.BigQuery.Table,
			CredentialsJSON: cfg.BigQuery.CredentialsJSON,
			URLColumn:       cfg.Sink.URLColumn,
		}, logger)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil

	case config.SinkPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
		if err != nil {
			return nil, noop, fmt.Errorf("database: %w", err)
		}
		if cfg.Database.Migrate {
			if err := database.Migrate(ctx, pool, logger); err != nil {
				pool.Close()
				return nil, noop, fmt.Errorf("migrate: %w", err)
			}
		}
		return NewPostgres(pool, cfg.Database.Table, cfg.Sink.URLColumn, logger), pool.Close, nil

	case config.SinkS3:
		up, err := storage.NewS3(ctx, storage.S3Config{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			CheckinsBucket:  cfg.AWS.CheckinsBucket,
		}, logger)
		if err != nil {
			return nil, noop, fmt.Errorf("s3: %w", err)
		}
		return NewS3(up, cfg.Sink.URLColumn, logger), noop, nil

	case config.SinkQueue:
		rdb, err := redisclient.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			return nil, noop, fmt.Errorf("redis: %w", err)
		}
		return NewQueue(queue.NewQueue(rdb.Client, logger)), func() { _ = rdb.Close() }, nil
	}
	return nil, noop, fmt.Errorf("unknown sink kind %q", kind)
}
