package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/unifecaf/checkin-api/internal/models"
	"github.com/unifecaf/checkin-api/internal/sink"
	"github.com/unifecaf/checkin-api/pkg/queue"
)

// JobQueue is satisfied by *queue.Queue.
type JobQueue interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// CheckinProcessor drains queued check-ins into a durable sink.
type CheckinProcessor struct {
	sink    sink.Sink
	queue   JobQueue
	backoff time.Duration
	logger  *zap.Logger
}

// NewCheckinProcessor creates a check-in delivery processor.
func NewCheckinProcessor(s sink.Sink, q JobQueue, logger *zap.Logger) *CheckinProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckinProcessor{sink: s, queue: q, backoff: queue.RetryBackoff, logger: logger}
}

// Process delivers one queued check-in.
func (p *CheckinProcessor) Process(ctx context.Context, job *queue.Job) error {
	rec, err := job.Checkin()
	if err != nil {
		return err
	}
	if err := p.sink.InsertRows(ctx, []models.CheckinRecord{rec}); err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	p.logger.Info("checkin delivered", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *CheckinProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("checkin worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(context.WithoutCancel(ctx), job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *CheckinProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
