package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	ctx := newCommandContext()

	rootCmd := &cobra.Command{
		Use:           "jdp",
		Short:         "Build study exports from language data packs",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	flags.BoolVarP(&ctx.quiet, "quiet", "q", false, "Suppress progress output")
	flags.BoolVarP(&ctx.verbose, "verbose", "v", false, "Verbose logging")

	rootCmd.AddCommand(newTestCommand(ctx))
	rootCmd.AddCommand(newValidateCommand(ctx))
	rootCmd.AddCommand(newCleanCommand(ctx))
	rootCmd.AddCommand(newBuildCommand(ctx))

	return rootCmd
}
