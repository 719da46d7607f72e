package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"smartassembly/internal/store"
)

func querySQLCmd() *cobra.Command {
	var (
		paramPairs []string
		lines      bool
	)
	cmd := &cobra.Command{
		Use:   "sql <query>",
		Short: "Execute a read-only SQL query against the record tables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if err := store.CheckReadOnly(query); err != nil {
				return err
			}
			params, err := parsePositionalParams(paramPairs)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			cfg, _, err := loadProject()
			if err != nil {
				return err
			}
			db, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close(ctx)

			rows, err := db.RunSQL(ctx, query, params)
			if err != nil {
				return err
			}
			return writeRows(cmd.OutOrStdout(), rows, lines)
		},
	}
	cmd.Flags().StringArrayVar(&paramPairs, "param", nil, "Positional parameter as n=value, numbered from 1 (repeatable)")
	cmd.Flags().BoolVar(&lines, "lines", false, "Print one JSON object per row instead of an indented array")
	return cmd
}

// parsePositionalParams turns n=value pairs into the "1", "2", ... keyed map
// the backends bind in order. Positions must be contiguous from 1.
func parsePositionalParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid param %q: expected n=value", pair)
		}
		n, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid param %q: position must be a positive integer", pair)
		}
		position := strconv.Itoa(n)
		if _, dup := params[position]; dup {
			return nil, fmt.Errorf("param position %d given twice", n)
		}
		params[position] = strings.TrimSpace(value)
	}
	for i := 1; i <= len(params); i++ {
		if _, ok := params[strconv.Itoa(i)]; !ok {
			return nil, fmt.Errorf("param position %d is missing", i)
		}
	}
	return params, nil
}

func writeRows(w io.Writer, rows []map[string]any, lines bool) error {
	enc := json.NewEncoder(w)
	if lines {
		for _, row := range rows {
			if err := enc.Encode(row); err != nil {
				return fmt.Errorf("encoding row: %w", err)
			}
		}
		return nil
	}
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}
