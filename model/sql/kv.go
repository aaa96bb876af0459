package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Brawl345/lensbot/logger"
	"github.com/Brawl345/lensbot/model"
	"github.com/jmoiron/sqlx"
)

type kvService struct {
	*sqlx.DB
	log logger.Logger
}

func NewKeyValueService(db *sqlx.DB) *kvService {
	return &kvService{
		DB:  db,
		log: logger.New("kvService"),
	}
}

func (db *kvService) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM kv WHERE name = ?`
	var value string
	err := db.GetContext(ctx, &value, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", model.ErrNotFound
	}
	return value, err
}

func (db *kvService) Set(ctx context.Context, key, value string) error {
	var query string
	switch db.DriverName() {
	case DriverMySQL:
		query = `INSERT INTO kv (name, value) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = CURRENT_TIMESTAMP`
	default:
		query = `INSERT INTO kv (name, value) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`
	}

	_, err := db.ExecContext(ctx, query, key, value)
	if err != nil {
		return fmt.Errorf("failed to store key %q: %w", key, err)
	}
	return nil
}

func (db *kvService) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM kv WHERE name = ?`
	res, err := db.ExecContext(ctx, query, key)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		db.log.Debug().Str("key", key).Msg("Nothing to delete")
	}
	return nil
}
