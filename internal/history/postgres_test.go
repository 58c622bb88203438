package history

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"weekend-planner/internal/common/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var recordColumns = []string{
	"id", "timestamp", "date", "venues_mentioned", "events_mentioned",
	"weather_conditions", "raw_text", "schema_version", "created_by",
}

func newMockPostgres(t *testing.T) (*PostgresBackend, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	backend, err := NewPostgresBackend(database.NewPostgresFromDB(db), "recommendations")
	require.NoError(t, err)
	return backend, mock
}

func TestNewPostgresBackend_RejectsBadTableName(t *testing.T) {
	_, err := NewPostgresBackend(nil, "recommendations; DROP TABLE users")
	assert.Error(t, err)
}

func TestPostgresBackend_EnsureSchema(t *testing.T) {
	backend, mock := newMockPostgres(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS recommendations")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, backend.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackend_Save(t *testing.T) {
	backend, mock := newMockPostgres(t)
	c := newTestClient(t, backend)

	rec := record(0, "Columbus Zoo", "COSI")
	rec.ID = "rec-1"
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO recommendations")).
		WithArgs("rec-1", rec.Timestamp, "2025-12-21", `["COSI","Columbus Zoo"]`, `[]`,
			"Sunny", "text", "2", "weekend-planner").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.Equal(t, "rec-1", c.Save(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackend_SaveFailure(t *testing.T) {
	backend, mock := newMockPostgres(t)
	c := newTestClient(t, backend)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO recommendations")).
		WillReturnError(errors.New("pq: connection refused"))

	assert.Equal(t, "", c.Save(context.Background(), record(0, "Zoo")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackend_RecentVenues(t *testing.T) {
	backend, mock := newMockPostgres(t)
	c := newTestClient(t, backend)

	cutoff := fixedNow.Add(-30 * 24 * time.Hour)
	rows := sqlmock.NewRows(recordColumns).
		AddRow("b", fixedNow.Add(-24*time.Hour), "2025-12-20", `["Columbus Zoo","COSI"]`, `[]`, "Rain", "t", "2", "weekend-planner").
		AddRow("a", fixedNow.Add(-72*time.Hour), "2025-12-18", `["COSI"]`, `["Holiday Lights"]`, "Snow", "t", "2", "weekend-planner")
	mock.ExpectQuery(regexp.QuoteMeta("FROM recommendations WHERE timestamp >= $1 ORDER BY timestamp DESC")).
		WithArgs(cutoff).
		WillReturnRows(rows)

	assert.Equal(t, []string{"COSI", "Columbus Zoo"}, c.RecentVenues(context.Background(), 30))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackend_QueryFailure(t *testing.T) {
	backend, mock := newMockPostgres(t)
	c := newTestClient(t, backend)

	mock.ExpectQuery("SELECT id").WillReturnError(errors.New("pq: relation does not exist"))

	got := c.QueryRecent(context.Background(), 30)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPostgresBackend_BadVenuesColumn(t *testing.T) {
	backend, mock := newMockPostgres(t)

	rows := sqlmock.NewRows(recordColumns).
		AddRow("a", fixedNow, "2025-12-21", `not-json`, `[]`, "Rain", "t", "2", "weekend-planner")
	mock.ExpectQuery("SELECT id").WillReturnRows(rows)

	_, err := backend.Since(context.Background(), fixedNow.Add(-time.Hour))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode venues")
}
