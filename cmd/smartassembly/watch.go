package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"smartassembly/internal/config"
	"smartassembly/internal/resolver"
)

func watchCmd() *cobra.Command {
	var id string
	var metricsAddr string
	var fromStdin bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream the resolved smart assembly as JSON lines on every change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var ids io.Reader
			if fromStdin {
				ids = cmd.InOrStdin()
			}
			return runWatch(cmd.Context(), id, metricsAddr, ids)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Smart object id (defaults to smart_object_id)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read replacement smart object ids from stdin, one per line")
	return cmd
}

func runWatch(ctx context.Context, idFlag, metricsAddr string, ids io.Reader) error {
	env, err := loadEnvironment(ctx)
	if err != nil {
		return err
	}
	defer env.Close(ctx)

	id, err := env.entityID(idFlag)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	poller, err := env.poller(ctx)
	if err != nil {
		return err
	}
	g.Go(func() error { return poller.Run(ctx) })

	r := resolver.New(env.stash, env.owners, env.cfg.ChainID,
		resolver.WithLogger(env.log),
		resolver.WithMetrics(env.metrics),
	)
	g.Go(func() error { return r.Run(ctx) })
	r.SetEntity(id)

	g.Go(func() error { return printResults(ctx, r.Results(), os.Stdout) })

	if ids != nil {
		// Not in the group: a blocked stdin read must not hold up shutdown.
		go func() {
			if err := readEntityIDs(ids, r.SetEntity); err != nil {
				env.log.WithError(err).Warn("reading smart object ids")
			}
		}()
	}

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(env.reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serving metrics: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		env.log.WithField("addr", metricsAddr).Info("serving metrics")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func printResults(ctx context.Context, results <-chan resolver.Result, out io.Writer) error {
	enc := json.NewEncoder(out)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res := <-results:
			if err := enc.Encode(res); err != nil {
				return fmt.Errorf("encoding result: %w", err)
			}
		}
	}
}

// readEntityIDs switches the watched id for every valid line read. Blank
// lines are skipped; invalid ids are reported and skipped.
func readEntityIDs(in io.Reader, set func(id *big.Int)) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, err := config.ParseSmartObjectID(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		set(id)
	}
	return scanner.Err()
}
