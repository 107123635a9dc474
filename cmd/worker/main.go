// Package main runs the background worker that drains queued check-ins into a durable sink.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unifecaf/checkin-api/config"
	"github.com/unifecaf/checkin-api/internal/sink"
	"github.com/unifecaf/checkin-api/internal/worker"
	"github.com/unifecaf/checkin-api/pkg/queue"
	"github.com/unifecaf/checkin-api/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	durable, closeSink, err := sink.Open(ctx, cfg.Sink.WorkerKind, cfg, logger)
	if err != nil {
		logger.Fatal("sink", zap.String("kind", cfg.Sink.WorkerKind), zap.Error(err))
	}
	defer closeSink()

	jobQueue := queue.NewQueue(rdb.Client, logger)
	processor := worker.NewCheckinProcessor(durable, jobQueue, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		processor.Run(workerCtx)
		close(done)
	}()
	logger.Info("worker started", zap.String("sink", cfg.Sink.WorkerKind))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		logger.Warn("worker did not stop in time")
	}
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
