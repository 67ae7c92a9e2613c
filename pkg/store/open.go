package store

import (
	"context"
	"strings"
)

// Open picks the backend from the URL scheme: postgres:// and postgresql://
// go to Postgres, anything else is treated as a SQLite data source.
func Open(ctx context.Context, databaseURL string) (Storage, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return NewPostgresStore(ctx, databaseURL)
	}
	return NewSQLiteStore(databaseURL)
}
