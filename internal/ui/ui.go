// Package ui provides terminal UI components using pterm.
package ui

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// UI wraps pterm components for jdp.
type UI struct {
	quiet   bool
	verbose bool
	tty     bool
}

// New creates a new UI instance. Colours and spinners are disabled when
// stdout is not a terminal.
func New(quiet, verbose bool) *UI {
	if quiet {
		pterm.DisableOutput()
	} else {
		pterm.EnableOutput()
	}
	tty := IsTerminal(os.Stdout)
	if !tty {
		pterm.DisableStyling()
	}
	if verbose {
		pterm.EnableDebugMessages()
	}
	return &UI{quiet: quiet, verbose: verbose, tty: tty}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NewLogger returns a structured logger printing through pterm. Warnings are
// always shown; debug records only in verbose mode.
func NewLogger(verbose bool) *slog.Logger {
	level := pterm.LogLevelInfo
	if verbose {
		level = pterm.LogLevelDebug
	}
	logger := pterm.DefaultLogger.WithLevel(level).WithWriter(os.Stderr)
	return slog.New(pterm.NewSlogHandler(logger))
}

// Banner prints the application banner.
func (u *UI) Banner() {
	if !u.tty {
		return
	}
	pterm.DefaultBigText.WithLetters(
		pterm.NewLettersFromStringWithStyle("j", pterm.NewStyle(pterm.FgCyan)),
		pterm.NewLettersFromStringWithStyle("dp", pterm.NewStyle(pterm.FgLightBlue)),
	).Render()

	pterm.DefaultCenter.Println(
		pterm.FgGray.Sprint("Language Data Pack Builder"),
	)
	fmt.Println()
}

// Config prints the configuration summary.
func (u *UI) Config(rows [][]string) {
	pterm.DefaultSection.Println("Configuration")
	pterm.DefaultTable.WithData(rows).Render()
	fmt.Println()
}

// Phase prints a phase header.
func (u *UI) Phase(number int, total int, name string) {
	pterm.DefaultSection.WithLevel(2).Println(
		fmt.Sprintf("[%d/%d] %s", number, total, name),
	)
}

// Spinner creates a spinner for long operations. It returns nil when stdout
// is not a terminal.
func (u *UI) Spinner(message string) *pterm.SpinnerPrinter {
	if !u.tty || u.quiet {
		return nil
	}
	spinner, _ := pterm.DefaultSpinner.
		WithRemoveWhenDone(true).
		Start(message)
	return spinner
}

// StopSpinner stops a spinner returned by Spinner.
func (u *UI) StopSpinner(spinner *pterm.SpinnerPrinter) {
	if spinner != nil {
		_ = spinner.Stop()
	}
}

// LanguageStatus prints status for a language operation.
func (u *UI) LanguageStatus(lang string, status string, details string) {
	prefix := pterm.FgCyan.Sprintf("[%s]", lang)
	switch status {
	case "ok":
		pterm.Success.Println(prefix, details)
	case "skip":
		pterm.Warning.Println(prefix, details)
	case "error":
		pterm.Error.Println(prefix, details)
	case "info":
		pterm.Info.Println(prefix, details)
	default:
		pterm.Println(prefix, details)
	}
}

// FormatStats prints per-format entry counts.
func (u *UI) FormatStats(byFormat map[string]int, order []string) {
	if len(byFormat) == 0 {
		return
	}

	data := pterm.TableData{{"Format", "Entries"}}
	for _, format := range order {
		if count, ok := byFormat[format]; ok && count > 0 {
			data = append(data, []string{format, fmt.Sprintf("%d", count)})
		}
	}

	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	pterm.Println()
}

// Violation is one row of the validation table.
type Violation struct {
	Path    string
	Field   string
	Message string
}

// Violations prints schema violations as "path (field): message" lines.
func (u *UI) Violations(violations []Violation) {
	for _, v := range violations {
		pterm.Warning.Println(fmt.Sprintf("%s (%s): %s", v.Path, v.Field, v.Message))
	}
}

// Report is the content of the final summary.
type Report struct {
	Languages    int
	Entries      int
	FilesWritten int
	MediaCopied  int64
	MediaReused  int64
	MediaBytes   int64
	Duration     time.Duration
}

// FinalReport prints the final summary report.
func (u *UI) FinalReport(r Report) {
	pterm.DefaultSection.Println("Summary")

	throughput := 0.0
	if r.Duration > 0 {
		throughput = float64(r.Entries) / r.Duration.Seconds()
	}

	panel := pterm.DefaultBox.WithTitle("Results").Sprint(
		fmt.Sprintf(
			"  Languages:      %s\n"+
				"  Entries:        %s\n"+
				"  Files Written:  %s\n"+
				"  Media:          %s copied, %s reused (%s)\n"+
				"  Duration:       %s\n"+
				"  Throughput:     %s entries/sec",
			pterm.FgCyan.Sprintf("%d", r.Languages),
			pterm.FgGreen.Sprint(humanize.Comma(int64(r.Entries))),
			pterm.FgCyan.Sprintf("%d", r.FilesWritten),
			humanize.Comma(r.MediaCopied),
			humanize.Comma(r.MediaReused),
			humanize.Bytes(uint64(r.MediaBytes)),
			pterm.FgYellow.Sprint(r.Duration.Round(time.Millisecond)),
			pterm.FgMagenta.Sprintf("%.0f", throughput),
		),
	)
	pterm.Println(panel)
}

// Success prints a success message.
func (u *UI) Success(message string) {
	pterm.Success.Println(message)
}

// Error prints an error message.
func (u *UI) Error(message string) {
	pterm.Error.Println(message)
}

// Warning prints a warning message.
func (u *UI) Warning(message string) {
	pterm.Warning.Println(message)
}

// Info prints an info message.
func (u *UI) Info(message string) {
	pterm.Info.Println(message)
}

// Debug prints a debug message (only in verbose mode).
func (u *UI) Debug(message string) {
	if u.verbose {
		pterm.Debug.Println(message)
	}
}

// Done prints the completion message.
func (u *UI) Done() {
	fmt.Println()
	pterm.DefaultCenter.Println(
		pterm.FgGreen.Sprint("✓ Done!"),
	)
}
