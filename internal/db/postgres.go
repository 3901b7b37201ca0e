package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const (
	connectAttempts = 10
	connectBackoff  = 500 * time.Millisecond
)

// InitPostgres opens the read-side sqlx pool, retrying while the database
// starts up.
func InitPostgres(ctx context.Context, dsn string) (*sqlx.DB, error) {
	var err error
	for i := 0; i < connectAttempts; i++ {
		var conn *sqlx.DB
		conn, err = sqlx.ConnectContext(ctx, "postgres", dsn)
		if err == nil {
			conn.SetMaxOpenConns(20)
			conn.SetConnMaxIdleTime(5 * time.Minute)
			return conn, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}
	return nil, fmt.Errorf("failed to connect to postgres after %d attempts: %w", connectAttempts, err)
}
