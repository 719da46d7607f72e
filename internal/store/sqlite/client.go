package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"smartassembly/internal/store"
	"smartassembly/internal/tables"

	_ "modernc.org/sqlite"
)

var _ store.Backend = (*Client)(nil)

type Client struct {
	db   *sql.DB
	path string

	// tableLoaded runs after each table of a snapshot is read.
	tableLoaded func(tables.Def)
}

func New(ctx context.Context, dsn string) (*Client, error) {
	driverDSN, err := parseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing sqlite DSN: %w", err)
	}

	db, err := sql.Open("sqlite", driverDSN)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA busy_timeout = 30000;",
		"PRAGMA journal_mode = WAL;",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}

	return &Client{db: db, path: filePath(driverDSN)}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.db.Close()
}

// filePath strips query parameters; in-memory databases have no path.
func filePath(driverDSN string) string {
	if driverDSN == ":memory:" {
		return ""
	}
	path, _, _ := strings.Cut(driverDSN, "?")
	return path
}
