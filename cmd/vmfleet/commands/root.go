// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing, flag binding, and validation. Command execution is delegated to
// handler functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/vmfleet/vmfleet/cmd/vmfleet/handlers"
)

// Root returns the root command for the vmfleet CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vmfleet",
		Short: "Bulk VM lifecycle operations against a vSphere endpoint",
	}

	cmd.AddCommand(Clone())
	cmd.AddCommand(Vmotion())
	cmd.AddCommand(Version())

	return cmd
}

// addSessionFlags binds the endpoint, logging, and defaults-file flags
// shared by every subcommand that opens a session.
func addSessionFlags(cmd *cobra.Command, opts *handlers.SessionOptions) {
	cmd.Flags().StringVarP(&opts.Host, "host", "H", "", "Endpoint hostname or IP")
	cmd.Flags().IntVarP(&opts.Port, "port", "o", 0, "Endpoint port (default 443)")
	cmd.Flags().StringVarP(&opts.User, "user", "u", "", "Endpoint user")
	cmd.Flags().StringVarP(&opts.Password, "password", "p", "", "Endpoint password (prompted when omitted)")
	cmd.Flags().BoolVarP(&opts.Insecure, "insecure", "S", false, "Skip TLS certificate verification")
	cmd.Flags().StringVarP(&opts.LogFile, "log-file", "l", "", "Append log output to this file instead of stderr")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show per-step progress detail")
	cmd.Flags().BoolVarP(&opts.Debug, "debug", "d", false, "Show poll-by-poll detail")
	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "Path to a YAML defaults file")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address (e.g. :9090)")
}
