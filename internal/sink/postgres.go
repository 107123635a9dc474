package sink

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/unifecaf/checkin-api/internal/models"
)

// DB is the subset of pgxpool.Pool used by the Postgres sink.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Postgres appends check-ins to a table and lists them per meeting.
type Postgres struct {
	db        DB
	insertSQL string
	listSQL   string
	logger    *zap.Logger
}

// NewPostgres prepares statements for table (optionally schema-qualified) with the given URL column.
func NewPostgres(db DB, table, urlColumn string, logger *zap.Logger) *Postgres {
	tbl := pgx.Identifier(strings.Split(table, ".")).Sanitize()
	cols := []string{
		models.ColumnTimestamp,
		models.ColumnName,
		models.ColumnNationalID,
		urlColumn,
		models.ColumnMeetingID,
		models.ColumnClientIP,
	}
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	colList := strings.Join(quoted, ", ")
	return &Postgres{
		db:        db,
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6)", tbl, colList),
		listSQL: fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 ORDER BY %s",
			colList, tbl, quoted[4], quoted[0]),
		logger: logger,
	}
}

// InsertRows inserts each record. Rows the server rejects are reported as InsertErrors;
// any other failure (cancellation, pool or connection errors) aborts with a call error.
func (p *Postgres) InsertRows(ctx context.Context, rows []models.CheckinRecord) error {
	var rowErrs InsertErrors
	for i, r := range rows {
		_, err := p.db.Exec(ctx, p.insertSQL,
			r.Timestamp.UTC(), r.Name, r.NationalID, r.MeetingURL, r.MeetingID, r.ClientIP)
		if err == nil {
			continue
		}
		var pgErr *pgconn.PgError
		if ctx.Err() != nil || !errors.As(err, &pgErr) {
			return fmt.Errorf("insert checkin: %w", err)
		}
		p.logger.Warn("insert checkin row", zap.Int("index", i), zap.String("code", pgErr.Code), zap.Error(err))
		rowErrs = append(rowErrs, RowError{Index: i, Reason: pgErr.Code, Message: pgErr.Message})
	}
	if len(rowErrs) > 0 {
		return rowErrs
	}
	return nil
}

// ListByMeeting returns the check-ins of a meeting, oldest first.
func (p *Postgres) ListByMeeting(ctx context.Context, meetingID string) ([]models.CheckinRecord, error) {
	rows, err := p.db.Query(ctx, p.listSQL, meetingID)
	if err != nil {
		return nil, fmt.Errorf("list checkins: %w", err)
	}
	defer rows.Close()

	var list []models.CheckinRecord
	for rows.Next() {
		var r models.CheckinRecord
		var ts time.Time
		if err := rows.Scan(&ts, &r.Name, &r.NationalID, &r.MeetingURL, &r.MeetingID, &r.ClientIP); err != nil {
			return nil, err
		}
		r.Timestamp = ts.UTC()
		list = append(list, r)
	}
	return list, rows.Err()
}
