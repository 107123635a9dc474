package sink

import (
	"context"
	"fmt"

	"github.com/unifecaf/checkin-api/internal/models"
)

// Enqueuer is satisfied by *queue.Queue.
type Enqueuer interface {
	EnqueueCheckin(ctx context.Context, rec models.CheckinRecord) error
}

// Queue hands records to the background worker. A record is accepted once it is on the list.
type Queue struct {
	q Enqueuer
}

func NewQueue(q Enqueuer) *Queue {
	return &Queue{q: q}
}

func (s *Queue) InsertRows(ctx context.Context, rows []models.CheckinRecord) error {
	for i, r := range rows {
		if err := s.q.EnqueueCheckin(ctx, r); err != nil {
			return fmt.Errorf("enqueue row %d: %w", i, err)
		}
	}
	return nil
}
