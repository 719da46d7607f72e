package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"smartassembly/internal/resolver"
)

func resolveCmd() *cobra.Command {
	var id string
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a smart assembly once and print it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.Context(), id, timeout)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Smart object id (defaults to smart_object_id)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "How long to wait for a complete result")
	return cmd
}

func runResolve(ctx context.Context, idFlag string, timeout time.Duration) error {
	env, err := loadEnvironment(ctx)
	if err != nil {
		return err
	}
	defer env.Close(ctx)

	id, err := env.entityID(idFlag)
	if err != nil {
		return err
	}

	poller, err := env.poller(ctx)
	if err != nil {
		return err
	}
	if err := poller.Sync(ctx); err != nil {
		return err
	}

	resolveCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	go func() { _ = poller.Run(resolveCtx) }()

	res, err := resolver.Await(resolveCtx, env.stash, env.owners, env.cfg.ChainID, id,
		resolver.WithLogger(env.log),
		resolver.WithMetrics(env.metrics),
	)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	payload, encErr := json.MarshalIndent(res, "", "  ")
	if encErr != nil {
		return fmt.Errorf("encoding result: %w", encErr)
	}
	fmt.Fprintln(os.Stdout, string(payload))

	if err != nil {
		return fmt.Errorf("smart assembly %s incomplete after %s", id, timeout)
	}
	if res.Base == nil {
		return fmt.Errorf("smart assembly %s: owner %s", id, res.OwnerStatus)
	}
	return nil
}
