package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"smartassembly/internal/mcp"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	env, err := loadEnvironment(ctx)
	if err != nil {
		return err
	}
	defer env.Close(ctx)

	poller, err := env.poller(ctx)
	if err != nil {
		return err
	}
	if err := poller.Sync(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return poller.Run(ctx) })

	server := mcp.NewServer(env.stash, env.owners, env.cfg.ChainID, version,
		mcp.WithResolveTimeout(env.cfg.Indexer.Timeout+env.cfg.Database.Refresh),
		mcp.WithLogger(env.log),
		mcp.WithMetrics(env.metrics),
	)
	g.Go(func() error {
		// The client closing stdin ends the session, and with it the poller.
		defer cancel()
		return server.Run(ctx, &sdk.StdioTransport{})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
