package postgres

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/metrics"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/storage"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return &DB{DB: sqlx.NewDb(mockDB, "sqlmock")}, mock
}

func TestStore_Register(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewStore(db)
	schema := storage.DefaultSchema()

	for _, c := range schema.Collections {
		mock.ExpectExec(registerCollectionSQL).
			WithArgs(c.Name, c.KeyField).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, s.Register(context.Background(), schema))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Put(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewStore(db)

	mock.ExpectExec(putRecordSQL).
		WithArgs(storage.CollSettings, "theme", `{"key":"theme","value":"dark"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Put(context.Background(), storage.CollSettings, "theme", storage.Record{"key": "theme", "value": "dark"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewStore(db)

		mock.ExpectQuery(getRecordSQL).
			WithArgs(storage.CollSavedLooks, "look-1").
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"id":"look-1","isFavorite":true}`)))

		rec, found, err := s.Get(context.Background(), storage.CollSavedLooks, "look-1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, true, rec["isFavorite"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewStore(db)

		mock.ExpectQuery(getRecordSQL).
			WithArgs(storage.CollSavedLooks, "missing").
			WillReturnError(sql.ErrNoRows)

		rec, found, err := s.Get(context.Background(), storage.CollSavedLooks, "missing")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, rec)
	})

	t.Run("driver error", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewStore(db)

		mock.ExpectQuery(getRecordSQL).
			WithArgs(storage.CollSavedLooks, "x").
			WillReturnError(errors.New("connection reset"))

		_, _, err := s.Get(context.Background(), storage.CollSavedLooks, "x")
		assert.Error(t, err)
	})
}

func TestStore_GetAll(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewStore(db)

	rows := sqlmock.NewRows([]string{"key", "value"}).
		AddRow("e1", []byte(`{"id":"e1","title":"Gala"}`)).
		AddRow("e2", []byte(`{"id":"e2","title":"Brunch"}`))
	mock.ExpectQuery(listRecordsSQL).WithArgs(storage.CollCalendar).WillReturnRows(rows)

	recs, err := s.GetAll(context.Background(), storage.CollCalendar)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Brunch", recs[1]["title"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_DeleteAndClear(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewStore(db)

	mock.ExpectExec(deleteRecordSQL).WithArgs(storage.CollGlowUp, "g1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(clearRecordsSQL).WithArgs(storage.CollGlowUp).WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, s.Delete(context.Background(), storage.CollGlowUp, "g1"))
	require.NoError(t, s.Clear(context.Background(), storage.CollGlowUp))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_FacadeDegradesOnDriverError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(putRecordSQL).WillReturnError(errors.New("relation \"records\" does not exist"))
	mock.ExpectClose()

	open := func(ctx context.Context, schema storage.Schema) (storage.Backend, error) {
		return NewStore(db), nil
	}
	f := storage.NewFacade(storage.DefaultSchema(), open)

	err := f.Put(context.Background(), storage.CollSavedLooks, storage.Record{"id": "look-1"})
	require.NoError(t, err)
	assert.Equal(t, storage.StateFailed, f.State())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepo(db)
	ctx := context.Background()

	mock.ExpectQuery(getProfileSQL).WithArgs("u1").WillReturnError(sql.ErrNoRows)
	doc, found, err := repo.GetDoc(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, doc)

	mock.ExpectExec(upsertProfileSQL).
		WithArgs("u1", `{"email":"a@b.c","uid":"u1"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.PutDoc(ctx, "u1", map[string]any{"uid": "u1", "email": "a@b.c"}))

	mock.ExpectQuery(getProfileSQL).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow([]byte(`{"uid":"u1","name":"Luxe Member"}`)))
	doc, found, err = repo.GetDoc(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Luxe Member", doc["name"])

	mock.ExpectExec(deleteProfileSQL).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.DeleteDoc(ctx, "u1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_PutRejectsUnencodableRecord(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewStore(db)

	err := s.Put(context.Background(), storage.CollSavedLooks, "bad", storage.Record{"id": "bad", "score": math.NaN()})
	assert.ErrorIs(t, err, storage.ErrInvalidRecord)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_SamplePoolUsagePerPool(t *testing.T) {
	db, _ := newMockDB(t)
	db.SetMaxOpenConns(4)
	// sqlmock.New pings once, leaving one open connection
	db.samplePoolUsage(PoolRecords)

	assert.InDelta(t, 25.0, testutil.ToFloat64(metrics.DBConnectionPoolUsage.WithLabelValues(PoolRecords)), 0.001)
}

func TestStore_CloseStopsMetricsCollector(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectClose()

	stopped := false
	s := &Store{db: db, stopMetrics: func() { stopped = true }}
	require.NoError(t, s.Close())
	assert.True(t, stopped)
	assert.NoError(t, mock.ExpectationsWereMet())
}
