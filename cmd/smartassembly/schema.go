package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"smartassembly/internal/tables"
)

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create the record tables in the configured database",
		Args:  cobra.NoArgs,
		RunE:  runSchema,
	}
}

func runSchema(cmd *cobra.Command, args []string) error {
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

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Schema ready: %d tables.\n", len(tables.All))
	return nil
}
