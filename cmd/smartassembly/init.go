package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"smartassembly/internal/chain"
	"smartassembly/internal/config"
)

func initCmd() *cobra.Command {
	var projectName string
	var chainID uint64
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a smartassembly.yaml project config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(configPath, projectName, chainID)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	cmd.Flags().Uint64Var(&chainID, "chain-id", chain.GarnetChainID, "Chain the world is deployed on")
	return cmd
}

func runInit(path, projectName string, chainID uint64) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if _, ok := chain.IndexerURL(chainID); !ok {
		fmt.Fprintf(os.Stderr, "No public indexer known for chain %d; set indexer.url in %s.\n", chainID, path)
	}
	if err := os.WriteFile(path, []byte(config.Template(projectName, chainID)), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
