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
	"fmt"

	"github.com/spf13/cobra"
)

func newStoreCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "store <key> <value>",
		Short: "Store a value under a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := cfg.NewGatewayClient()
			if err != nil {
				return err
			}
			defer gw.Close()

			printVerbose(cmd, cfg, "POST %s/store key=%q", cfg.Gateway, args[0])
			if err := gw.Store(cmd.Context(), args[0], args[1]); err != nil {
				return fmt.Errorf("store %q: %w", args[0], err)
			}
			return NewPrinter(cfg.OutputFormat, cmd.OutOrStdout()).
				PrintSuccess(fmt.Sprintf("Stored %q", args[0]))
		},
	}
}

func newLoadCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "load <key>",
		Short: "Load the value stored under a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := cfg.NewGatewayClient()
			if err != nil {
				return err
			}
			defer gw.Close()

			printVerbose(cmd, cfg, "GET %s/load key=%q", cfg.Gateway, args[0])
			reply, err := gw.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("load %q: %w", args[0], err)
			}
			return NewPrinter(cfg.OutputFormat, cmd.OutOrStdout()).PrintEntry(reply.Key, reply.Value)
		},
	}
}
