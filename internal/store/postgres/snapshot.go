package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"smartassembly/internal/store"
	"smartassembly/internal/tables"
)

func (c *Client) LoadSnapshot(ctx context.Context) (store.Snapshot, error) {
	snapshot := store.Snapshot{}

	// One repeatable-read transaction so every table reflects the same instant.
	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("beginning snapshot transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, def := range tables.All {
		if err := loadTable(ctx, tx, def, snapshot); err != nil {
			return nil, err
		}
	}
	return snapshot, nil
}

func selectQuery(def tables.Def) string {
	columns := def.Columns()
	exprs := make([]string, len(columns))
	for i, col := range columns {
		// Everything is read as text; tables.Def decodes uniformly.
		exprs[i] = col.Name + "::text"
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(exprs, ", "), def.SQLName())
}

func loadTable(ctx context.Context, tx pgx.Tx, def tables.Def, into store.Snapshot) error {
	rows, err := tx.Query(ctx, selectQuery(def))
	if err != nil {
		return fmt.Errorf("loading %s: %w", def.SQLName(), err)
	}
	defer rows.Close()

	width := len(def.Columns())
	for rows.Next() {
		values := make([]sql.NullString, width)
		dest := make([]any, width)
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
