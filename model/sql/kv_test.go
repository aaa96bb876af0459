package sql

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/Brawl345/lensbot/model"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := New(DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err, "failed to open in-memory db")
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	return db
}

func TestKeyValueSetAndGet(t *testing.T) {
	kv := NewKeyValueService(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "google-lens-settings", `{"language":"en-US"}`))
	value, err := kv.Get(ctx, "google-lens-settings")
	require.NoError(t, err)
	require.Equal(t, `{"language":"en-US"}`, value)

	require.NoError(t, kv.Set(ctx, "google-lens-settings", `{"language":"fr-FR"}`))
	value, err = kv.Get(ctx, "google-lens-settings")
	require.NoError(t, err)
	require.Equal(t, `{"language":"fr-FR"}`, value)
}

func TestKeyValueMissingKey(t *testing.T) {
	kv := NewKeyValueService(setupTestDB(t))

	_, err := kv.Get(context.Background(), "missing")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestKeyValueDelete(t *testing.T) {
	kv := NewKeyValueService(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "google-lens-search-history", "[]"))
	require.NoError(t, kv.Delete(ctx, "google-lens-search-history"))
	require.NoError(t, kv.Delete(ctx, "google-lens-search-history"))

	_, err := kv.Get(ctx, "google-lens-search-history")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestKeyValueMySQLUpsert(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	kv := NewKeyValueService(sqlx.NewDb(mockDB, DriverMySQL))

	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE")).
		WithArgs("k", "v").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, kv.Set(context.Background(), "k", "v"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New("postgres", "postgres://localhost")
	require.Error(t, err)
}
