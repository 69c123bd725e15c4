package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	logLevel   string
	human      bool
	jsonOutput bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "tokenctl",
		Short:         "Inspect responsive design-token documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "tokens.yaml", "Token document to load")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&flags.human, "human", false, "Write logs in console format")
	cmd.PersistentFlags().BoolVar(&flags.jsonOutput, "json", false, "Write command output as JSON")

	cmd.AddCommand(newBreakpointsCmd(flags))
	cmd.AddCommand(newResolveCmd(flags))
	cmd.AddCommand(newSchemaCmd(flags))
	cmd.AddCommand(newTraceCmd(flags))
	cmd.AddCommand(newSimulateCmd(flags))
	cmd.AddCommand(newPreviewCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
