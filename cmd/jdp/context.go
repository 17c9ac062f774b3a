package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"jdp/internal/config"
	"jdp/internal/ui"
)

type commandContext struct {
	configFlag string
	quiet      bool
	verbose    bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

// ensureConfig loads the configuration once; persistent flags that were set
// explicitly override it.
func (c *commandContext) ensureConfig(cmd *cobra.Command) (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		flags := cmd.Flags()
		if flags.Changed("quiet") {
			cfg.Quiet = c.quiet
		}
		if flags.Changed("verbose") {
			cfg.Verbose = c.verbose
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// terminal returns the UI and a logger matching the configuration. Logs are
// discarded in quiet mode.
func (c *commandContext) terminal(cfg *config.Config) (*ui.UI, *slog.Logger) {
	term := ui.New(cfg.Quiet, cfg.Verbose)
	if cfg.Quiet {
		return term, slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return term, ui.NewLogger(cfg.Verbose)
}

// filterOptions are the record selection flags shared by test and build.
type filterOptions struct {
	language string
	format   string
	tag      string
}

func bindLanguageFlag(fs *pflag.FlagSet, opts *filterOptions) {
	fs.StringVarP(&opts.language, "language", "l", "*", "Language directory pattern (shell glob)")
}

func bindFilterFlags(fs *pflag.FlagSet, opts *filterOptions) {
	bindLanguageFlag(fs, opts)
	fs.StringVarP(&opts.format, "format", "f", "*", "Data file format pattern (shell glob)")
	fs.StringVarP(&opts.tag, "tag", "t", "*", "Data file tag pattern (shell glob)")
}

// apply copies explicitly set flags into cfg.
func (o *filterOptions) apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("language") {
		cfg.Language = o.language
	}
	if fs.Lookup("format") != nil && fs.Changed("format") {
		cfg.Format = o.format
	}
	if fs.Lookup("tag") != nil && fs.Changed("tag") {
		cfg.Tag = o.tag
	}
}

func printLanguage(w io.Writer, code, name, dir string) {
	fmt.Fprintf(w, "[%s] %s: %s\n", code, name, dir)
}

func printItem(w io.Writer, item string) {
	fmt.Fprintf(w, "      - %s\n", item)
}
