package postgres

import (
	"context"
	"fmt"
	"strings"

	"smartassembly/internal/tables"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	// PostgreSQL runs a multi-statement simple query in one implicit
	// transaction.
	_, err := c.pool.Exec(ctx, schemaDDL())
	if err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}

func schemaDDL() string {
	var b strings.Builder
	for _, def := range tables.All {
		fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", def.SQLName())
		columns := def.Columns()
		for i, col := range columns {
			fmt.Fprintf(&b, "    %s %s", col.Name, columnType(col.Kind))
			if i == 0 {
				b.WriteString(" PRIMARY KEY")
			}
			if i < len(columns)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(");\n\n")
	}
	return b.String()
}

func columnType(kind tables.Kind) string {
	switch kind {
	case tables.KindUint256:
		return "NUMERIC(78, 0)"
	case tables.KindUint:
		return "BIGINT"
	case tables.KindBool:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}
