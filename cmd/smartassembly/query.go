package main

import "github.com/spf13/cobra"

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query the record database from the CLI",
	}
	cmd.AddCommand(querySQLCmd())
	return cmd
}
