package main

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/phenocheck/internal/logging"
)

type rootOptions struct {
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "phenocheck",
		Short: "Validate phenotype data files against a data dictionary",
		// main prints errors once, mapped to a user message.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logging.SetupWriter(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")

	cmd.AddCommand(newValidateCmd())
	return cmd
}
