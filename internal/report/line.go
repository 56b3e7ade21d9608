package report

import (
	"context"
	"fmt"
	"io"

	"github.com/nhatthm/linkcheck/internal/crawl"
)

var _ crawl.Reporter = (*LineReporter)(nil)

// LineReporter writes one line per result, as soon as it is received.
//
// Status lines go to the output with the configured line ending, so they can be piped to other tools. Errors and stats go to
// the error output.
type LineReporter struct {
	out    io.Writer
	errOut io.Writer

	program string
	newline string
	quiet   bool
	stats   StatsPrinter
}

// Report writes the result of a checked link.
//
//	404: https://example.org/missing
//	linkcheck: error: https://example.org/slow - timeout.
func (r *LineReporter) Report(_ context.Context, e crawl.Event) error {
	if e.IsError() {
		if _, err := fmt.Fprintf(r.errOut, "%s: error: %s - %s.\n", r.program, e.URL, e.Err.Description()); err != nil {
			return fmt.Errorf("could not write error: %w", err)
		}

		return nil
	}

	if _, err := fmt.Fprintf(r.out, "%d: %s%s", e.StatusCode, e.URL, r.newline); err != nil {
		return fmt.Errorf("could not write status: %w", err)
	}

	return nil
}

// Summarize writes the stats, unless the reporter is quiet.
func (r *LineReporter) Summarize(_ context.Context, s crawl.Stats) error {
	if r.quiet {
		return nil
	}

	if err := r.stats.PrintStats(r.errOut, s); err != nil {
		return fmt.Errorf("could not write stats: %w", err)
	}

	return nil
}

// NewLineReporter creates a new LineReporter.
func NewLineReporter(out, errOut io.Writer, opts ...LineReporterOption) *LineReporter {
	r := &LineReporter{
		out:     out,
		errOut:  errOut,
		program: "linkcheck",
		newline: "\n",
		stats:   StatsPrinterFunc(PrintTextStats),
	}

	for _, opt := range opts {
		opt.applyLineReporterOption(r)
	}

	return r
}

// LineReporterOption is option to set up LineReporter.
type LineReporterOption interface {
	applyLineReporterOption(r *LineReporter)
}

type lineReporterOptionFunc func(r *LineReporter)

func (f lineReporterOptionFunc) applyLineReporterOption(r *LineReporter) {
	f(r)
}

// WithNewline sets the line ending of the status lines. See Newline.
func WithNewline(newline string) LineReporterOption {
	return lineReporterOptionFunc(func(r *LineReporter) {
		r.newline = newline
	})
}

// WithQuiet disables the stats.
func WithQuiet(quiet bool) LineReporterOption {
	return lineReporterOptionFunc(func(r *LineReporter) {
		r.quiet = quiet
	})
}

// WithStatsPrinter sets the printer of the stats.
func WithStatsPrinter(p StatsPrinter) LineReporterOption {
	return lineReporterOptionFunc(func(r *LineReporter) {
		r.stats = p
	})
}

// WithProgramName sets the prefix of the error lines.
func WithProgramName(name string) LineReporterOption {
	return lineReporterOptionFunc(func(r *LineReporter) {
		r.program = name
	})
}
