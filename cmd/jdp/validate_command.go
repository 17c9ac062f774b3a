package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"jdp/internal/ui"
	"jdp/internal/validate"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var opts filterOptions
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate data files against the JSON schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			opts.apply(cmd.Flags(), cfg)
			term, _ := ctx.terminal(cfg)

			schemas, err := validate.LoadSchemas(cfg.SchemaDir)
			if err != nil {
				return err
			}
			term.Debug(fmt.Sprintf("loaded %d schemas from %s", len(schemas), cfg.SchemaDir))

			dirs, err := filepath.Glob(filepath.Join(cfg.SrcDir, cfg.Language))
			if err != nil {
				return fmt.Errorf("bad language pattern %q: %w", cfg.Language, err)
			}
			sort.Strings(dirs)

			var all []validate.Violation
			for _, dir := range dirs {
				violations, err := validate.Validate(schemas, dir)
				if err != nil {
					return err
				}
				all = append(all, violations...)
			}

			out := cmd.OutOrStdout()
			rows := make([]ui.Violation, 0, len(all))
			for _, v := range all {
				fmt.Fprintln(out, v.String())
				rows = append(rows, ui.Violation{Path: v.Path, Field: v.Field, Message: v.Message})
			}
			term.Violations(rows)

			if len(all) == 0 {
				term.Success("All data files are valid")
				return nil
			}
			if strict {
				return fmt.Errorf("%d schema violations", len(all))
			}
			term.Warning(fmt.Sprintf("%d schema violations", len(all)))
			return nil
		},
	}

	bindLanguageFlag(cmd.Flags(), &opts)
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with an error when violations are found")
	return cmd
}
