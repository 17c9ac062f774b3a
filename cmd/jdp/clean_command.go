package main

import (
	"github.com/spf13/cobra"

	"jdp/internal/workspace"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var output bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete the temporary directory, and the output with --output",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			_, logger := ctx.terminal(cfg)

			unlock, err := workspace.Lock(cfg.LockFile)
			if err != nil {
				return err
			}
			defer unlock()

			dirs := []string{cfg.TmpDir}
			if output {
				dirs = append(dirs, cfg.OutDir)
			}
			return workspace.DeleteDirectories(logger, dirs...)
		},
	}

	cmd.Flags().BoolVar(&output, "output", false, "Also delete the output directory")
	return cmd
}
