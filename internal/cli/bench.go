// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-kvgateway.
//
// go-kvgateway is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jeremyhahn/go-kvgateway/pkg/client"
)

type benchOptions struct {
	count       int
	concurrency int
	prefix      string
}

func newBenchCmd(cfg *Config) *cobra.Command {
	opts := &benchOptions{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Store then load many distinct keys concurrently and verify every value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			if opts.concurrency < 1 {
				return fmt.Errorf("--concurrency must be at least 1")
			}

			gw, err := cfg.NewGatewayClient()
			if err != nil {
				return err
			}
			defer gw.Close()

			printVerbose(cmd, cfg, "bench: %d keys, concurrency %d, gateway %s",
				opts.count, opts.concurrency, cfg.Gateway)

			result, err := runBench(cmd.Context(), gw, opts)
			if err != nil {
				return err
			}
			return NewPrinter(cfg.OutputFormat, cmd.OutOrStdout()).PrintBenchResult(result)
		},
	}

	cmd.Flags().IntVar(&opts.count, "count", 10000, "number of distinct keys")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 64, "maximum in-flight requests")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "prefix prepended to every key and value")

	return cmd
}

// benchKey and benchValue yield key_<i> and value_<i> under the prefix.
func benchKey(prefix string, i int) string   { return fmt.Sprintf("%skey_%d", prefix, i) }
func benchValue(prefix string, i int) string { return fmt.Sprintf("%svalue_%d", prefix, i) }

// runBench stores every key, then loads each one back and compares. The
// first failure cancels the remaining requests.
func runBench(ctx context.Context, gw *client.Gateway, opts *benchOptions) (*BenchResult, error) {
	result := &BenchResult{Count: opts.count, Concurrency: opts.concurrency}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.concurrency)
	for i := 0; i < opts.count; i++ {
		i := i
		g.Go(func() error {
			key := benchKey(opts.prefix, i)
			if err := gw.Store(gctx, key, benchValue(opts.prefix, i)); err != nil {
				return fmt.Errorf("store %q: %w", key, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	result.StoreDuration = time.Since(start)

	start = time.Now()
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(opts.concurrency)
	for i := 0; i < opts.count; i++ {
		i := i
		g.Go(func() error {
			key := benchKey(opts.prefix, i)
			reply, err := gw.Load(gctx, key)
			if err != nil {
				return fmt.Errorf("load %q: %w", key, err)
			}
			if want := benchValue(opts.prefix, i); reply.Value != want {
				return fmt.Errorf("load %q: got %q, want %q", key, reply.Value, want)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	result.LoadDuration = time.Since(start)

	return result, nil
}
