package sqlite

import (
	"context"
	"fmt"
	"strings"

	"smartassembly/internal/tables"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	statements := splitStatements(schemaDDL())
	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	return nil
}

// schemaDDL renders one table per record kind. uint256 values do not fit any
// sqlite numeric type and are kept as decimal text.
func schemaDDL() string {
	var b strings.Builder
	for _, def := range tables.All {
		fmt.Fprintf(&b, "-- %s\n", def.Name())
		fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", def.SQLName())
		for i, col := range def.Columns() {
			b.WriteString("\t" + col.Name + " " + columnType(col.Kind))
			if i == 0 {
				b.WriteString(" NOT NULL PRIMARY KEY")
			}
			if i < len(def.Columns())-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(");\n")
	}
	return b.String()
}

func columnType(kind tables.Kind) string {
	switch kind {
	case tables.KindUint, tables.KindBool:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(stripped, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		statements = append(statements, current.String())
	}

	return statements
}
