package sql

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations/*
var embeddedMigrations embed.FS

const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

// New connects to the key-value database and applies pending migrations.
// SQLite is the default, a local file next to the binary.
func New(driver, dsn string) (*sqlx.DB, error) {
	driver = strings.TrimSpace(driver)
	if driver == "" {
		driver = DriverSQLite
	}
	if driver != DriverSQLite && driver != DriverMySQL {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, err
	}

	_, ignoreMigration := os.LookupEnv("IGNORE_SQL_MIGRATION")
	if !ignoreMigration {
		if _, err := Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	if driver == DriverSQLite {
		// database/sql would otherwise open several connections to one file
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxIdleConns(100)
		db.SetMaxOpenConns(100)
		db.SetConnMaxIdleTime(10 * time.Minute)
	}

	return db, nil
}

func Migrate(db *sqlx.DB) (int, error) {
	migrationSource := &migrate.EmbedFileSystemMigrationSource{FileSystem: embeddedMigrations, Root: "migrations"}
	return migrate.Exec(db.DB, db.DriverName(), migrationSource, migrate.Up)
}
