package sink

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/unifecaf/checkin-api/internal/models"
)

func sampleRecord() models.CheckinRecord {
	return models.NewCheckinRecord("Maria Silva", "12345678900", "https://zoom.us/j/123", "123", "10.0.0.1")
}

func newFakeBigQuery(t *testing.T, handler http.HandlerFunc) *BigQuery {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	b, err := NewBigQuery(context.Background(), BigQueryConfig{
		Project:   "proj",
		Dataset:   "ds",
		Table:     "tbl",
		URLColumn: "link_zoom",
	}, zap.NewNop(), option.WithEndpoint(srv.URL+"/bigquery/v2/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return b
}

func TestBigQueryInsertRows(t *testing.T) {
	var got struct {
		Rows []struct {
			InsertID string         `json:"insertId"`
			JSON     map[string]any `json:"json"`
		} `json:"rows"`
	}
	b := newFakeBigQuery(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/projects/proj/datasets/ds/tables/tbl/insertAll"), r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"kind":"bigquery#tableDataInsertAllResponse"}`))
	})

	require.NoError(t, b.InsertRows(context.Background(), []models.CheckinRecord{sampleRecord(), sampleRecord()}))
	require.Len(t, got.Rows, 2)
	assert.NotEmpty(t, got.Rows[0].InsertID)
	assert.NotEqual(t, got.Rows[0].InsertID, got.Rows[1].InsertID)
	assert.Equal(t, "Maria Silva", got.Rows[0].JSON["nome"])
	assert.Equal(t, "https://zoom.us/j/123", got.Rows[0].JSON["link_zoom"])
	assert.Equal(t, "123", got.Rows[0].JSON["meeting_id"])
}

func TestBigQueryInsertRowsReportsRowErrors(t *testing.T) {
	b := newFakeBigQuery(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"insertErrors":[{"index":0,"errors":[{"reason":"invalid","message":"no such field: ip"}]}]}`))
	})

	err := b.InsertRows(context.Background(), []models.CheckinRecord{sampleRecord()})
	var rowErrs InsertErrors
	require.True(t, errors.As(err, &rowErrs))
	require.Len(t, rowErrs, 1)
	assert.Equal(t, RowError{Index: 0, Reason: "invalid", Message: "no such field: ip"}, rowErrs[0])
}

func TestBigQueryInsertRowsCallFailure(t *testing.T) {
	b := newFakeBigQuery(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	err := b.InsertRows(context.Background(), []models.CheckinRecord{sampleRecord()})
	require.Error(t, err)
	var rowErrs InsertErrors
	assert.False(t, errors.As(err, &rowErrs))
}

type fakeDB struct {
	mu    sync.Mutex
	sql   []string
	args  [][]any
	errAt map[int]error
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := len(f.sql)
	f.sql = append(f.sql, sql)
	f.args = append(f.args, args)
	if err := f.errAt[i]; err != nil {
		return pgconn.CommandTag{}, err
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func TestPostgresInsertRows(t *testing.T) {
	db := &fakeDB{errAt: map[int]error{1: &pgconn.PgError{Code: "22001", Message: "value too long"}}}
	p := NewPostgres(db, "public.checkins", "meeting_url", zap.NewNop())

	err := p.InsertRows(context.Background(), []models.CheckinRecord{sampleRecord(), sampleRecord()})
	var rowErrs InsertErrors
	require.True(t, errors.As(err, &rowErrs))
	require.Len(t, rowErrs, 1)
	assert.Equal(t, RowError{Index: 1, Reason: "22001", Message: "value too long"}, rowErrs[0])

	require.Len(t, db.sql, 2)
	assert.Equal(t,
		`INSERT INTO "public"."checkins" ("data_hora", "nome", "cpf", "meeting_url", "meeting_id", "ip") VALUES ($1, $2, $3, $4, $5, $6)`,
		db.sql[0])
	assert.Equal(t, "Maria Silva", db.args[0][1])
}

func TestPostgresInsertRowsConnectionFailure(t *testing.T) {
	connErr := errors.New("failed to connect: connection refused")
	db := &fakeDB{errAt: map[int]error{0: connErr}}
	p := NewPostgres(db, "checkins", "link_zoom", zap.NewNop())

	err := p.InsertRows(context.Background(), []models.CheckinRecord{sampleRecord(), sampleRecord()})
	require.ErrorIs(t, err, connErr)
	var rowErrs InsertErrors
	assert.False(t, errors.As(err, &rowErrs))
	assert.Len(t, db.sql, 1, "stops at the first call failure")
}

func TestPostgresListQuery(t *testing.T) {
	p := NewPostgres(&fakeDB{}, "checkins", "link_zoom", zap.NewNop())
	assert.Equal(t,
		`SELECT "data_hora", "nome", "cpf", "link_zoom", "meeting_id", "ip" FROM "checkins" WHERE "meeting_id" = $1 ORDER BY "data_hora"`,
		p.listSQL)

	_, err := p.ListByMeeting(context.Background(), "123")
	assert.Error(t, err)
}

type fakeUploader struct {
	keys   []string
	bodies []string
	err    error
}

func (f *fakeUploader) Upload(_ context.Context, bucket, key, contentType string, body io.Reader, _ int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, _ := io.ReadAll(body)
	f.keys = append(f.keys, bucket+"/"+key)
	f.bodies = append(f.bodies, string(b))
	return "https://example/" + key, nil
}

func (f *fakeUploader) CheckinsBucket() string { return "archive" }

func TestS3InsertRows(t *testing.T) {
	up := &fakeUploader{}
	s := NewS3(up, "link_zoom", zap.NewNop())

	require.NoError(t, s.InsertRows(context.Background(), []models.CheckinRecord{sampleRecord()}))
	require.Len(t, up.keys, 1)
	assert.True(t, strings.HasPrefix(up.keys[0], "archive/checkins/"))
	assert.True(t, strings.HasSuffix(up.keys[0], ".json"))

	var row map[string]any
	require.NoError(t, json.Unmarshal([]byte(up.bodies[0]), &row))
	assert.Equal(t, "12345678900", row["cpf"])
}

func TestS3InsertRowsUploadFailure(t *testing.T) {
	s := NewS3(&fakeUploader{err: errors.New("access denied")}, "link_zoom", zap.NewNop())

	err := s.InsertRows(context.Background(), []models.CheckinRecord{sampleRecord()})
	var rowErrs InsertErrors
	require.True(t, errors.As(err, &rowErrs))
	assert.Equal(t, "upload", rowErrs[0].Reason)
}

type fakeEnqueuer struct {
	recs []models.CheckinRecord
	err  error
}

func (f *fakeEnqueuer) EnqueueCheckin(_ context.Context, rec models.CheckinRecord) error {
	if f.err != nil {
		return f.err
	}
	f.recs = append(f.recs, rec)
	return nil
}

func TestQueueInsertRows(t *testing.T) {
	q := &fakeEnqueuer{}
	require.NoError(t, NewQueue(q).InsertRows(context.Background(), []models.CheckinRecord{sampleRecord()}))
	assert.Len(t, q.recs, 1)

	err := NewQueue(&fakeEnqueuer{err: errors.New("connection refused")}).InsertRows(context.Background(), []models.CheckinRecord{sampleRecord()})
	assert.ErrorContains(t, err, "connection refused")
}

func TestInsertErrorsMessage(t *testing.T) {
	err := InsertErrors{{Index: 0, Message: "a"}, {Index: 2, Message: "b"}}
	assert.Equal(t, "insert errors: row 0: a; row 2: b", err.Error())
}
