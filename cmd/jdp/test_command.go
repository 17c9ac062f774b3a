package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"jdp/internal/ingest"
	"jdp/internal/pipeline"
)

func newTestCommand(ctx *commandContext) *cobra.Command {
	var opts filterOptions
	var records bool

	cmd := &cobra.Command{
		Use:   "test",
		Short: "List ready languages and their data files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			opts.apply(cmd.Flags(), cfg)
			_, logger := ctx.terminal(cfg)

			b, err := pipeline.New(cfg, logger, nil)
			if err != nil {
				return err
			}
			languages, err := b.Discover()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, lang := range languages {
				printLanguage(out, lang.Code, lang.Name, lang.Directory)
				for path, err := range lang.DataFiles() {
					if err != nil {
						return err
					}
					printItem(out, path)
				}
				if !records {
					continue
				}

				scanner := ingest.NewScanner(b.Filter(), cfg.Translation, logger)
				for rec, err := range scanner.Records(lang) {
					if err != nil {
						return err
					}
					base := rec.Base()
					printItem(out, fmt.Sprintf("%s (%s)", base.Phrase, strings.Join(base.Tags, ", ")))
				}
			}
			return nil
		},
	}

	bindFilterFlags(cmd.Flags(), &opts)
	cmd.Flags().BoolVar(&records, "records", false, "Also list the records that pass the filters")
	return cmd
}
