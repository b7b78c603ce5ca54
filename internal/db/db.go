// Package db holds the PostgreSQL handle behind STORAGE_BACKEND=postgres.
// Worksheet rows live in the sheet_rows table created by the embedded
// migrations.
package db

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"

	"studentdesk/internal/logging"
)

// DB is the process-wide handle, set by Connect.
var DB *sql.DB

// Connect opens and pings databaseURL. A handle that fails the ping is closed
// and DB stays nil.
func Connect(ctx context.Context, databaseURL string) error {
	if databaseURL == "" {
		return errors.New("DATABASE_URL is empty")
	}
	conn, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	// one teacher at a time; a handful of connections covers cache refills
	conn.SetMaxOpenConns(5)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return errors.Wrap(err, "ping database")
	}

	DB = conn
	logging.L().Infow("database connection established", "max_open", 5)
	return nil
}

func Close() error {
	if DB == nil {
		return nil
	}
	err := DB.Close()
	DB = nil
	return err
}
