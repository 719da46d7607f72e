package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"smartassembly/internal/store"
	"smartassembly/internal/tables"
)

func (c *Client) LoadSnapshot(ctx context.Context) (store.Snapshot, error) {
	snapshot := store.Snapshot{}

	// A deferred transaction pins one WAL read mark at its first SELECT, so
	// every table reflects the same commit.
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	for _, def := range tables.All {
		if err := loadTable(ctx, tx, def, snapshot); err != nil {
			return nil, err
		}
		if c.tableLoaded != nil {
			c.tableLoaded(def)
		}
	}
	return snapshot, nil
}

func loadTable(ctx context.Context, tx *sql.Tx, def tables.Def, into store.Snapshot) error {
	columns := def.Columns()
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Name
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(names, ", "), def.SQLName())

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("loading %s: %w", def.SQLName(), err)
	}
	defer rows.Close()

	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("scanning %s row: %w", def.SQLName(), err)
		}
		ref, record, err := def.Decode(values)
		if err != nil {
			return err
		}
		into[ref] = record
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating %s rows: %w", def.SQLName(), err)
	}
	return nil
}
