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
	"io"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the kvctl command tree writing to out and errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	cfg := NewConfig()

	rootCmd := &cobra.Command{
		Use:   "kvctl",
		Short: "kvctl - client for the key-value gateway",
		Long: `kvctl stores and loads entries through the HTTPS gateway and can
drive a concurrent store/load workload against it.

Examples:
  kvctl store greeting hello
  kvctl load greeting
  kvctl bench --count 10000 --concurrency 64`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.Validate()
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.Gateway, "gateway", cfg.Gateway,
		"gateway base URL or host:port (env "+EnvGateway+")")
	flags.StringVar(&cfg.CAFile, "ca-file", "", "root certificate trusted for the gateway")
	flags.StringVar(&cfg.ServerName, "server-name", "", "name to verify in the gateway certificate")
	flags.BoolVar(&cfg.InsecureSkipVerify, "insecure-skip-verify", false,
		"skip TLS certificate verification (not recommended)")
	flags.BoolVar(&cfg.HTTP3, "http3", false, "use the gateway's HTTP/3 listener")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout")
	flags.StringVarP(&cfg.OutputFormat, "output", "o", cfg.OutputFormat, "output format (text, json)")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newStoreCmd(cfg))
	rootCmd.AddCommand(newLoadCmd(cfg))
	rootCmd.AddCommand(newBenchCmd(cfg))
	rootCmd.AddCommand(newVersionCmd(cfg))

	return rootCmd
}

// Execute runs kvctl with the process arguments and prints any error in
// the selected output format.
func Execute() error {
	rootCmd := NewRootCmd(os.Stdout, os.Stderr)
	err := rootCmd.Execute()
	if err != nil {
		format, _ := rootCmd.PersistentFlags().GetString("output")
		if format != string(OutputFormatJSON) {
			format = string(OutputFormatText)
		}
		_ = NewPrinter(format, os.Stderr).PrintError(err) // best-effort
	}
	return err
}

// printVerbose prints a message to stderr if verbose mode is enabled
func printVerbose(cmd *cobra.Command, cfg *Config, format string, args ...interface{}) {
	if cfg.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "[VERBOSE] "+format+"\n", args...)
	}
}
