package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/rodaine/table"

	"github.com/nhatthm/linkcheck/internal/crawl"
)

const (
	// SummaryText prints the stats as sentences.
	SummaryText = "text"
	// SummaryTable prints the stats as a table.
	SummaryTable = "table"
)

// StatsPrinter writes the stats of a crawl.
type StatsPrinter interface {
	PrintStats(w io.Writer, s crawl.Stats) error
}

// StatsPrinterFunc is an adapter to use a function as a StatsPrinter.
type StatsPrinterFunc func(w io.Writer, s crawl.Stats) error

// PrintStats calls f(w, s).
func (f StatsPrinterFunc) PrintStats(w io.Writer, s crawl.Stats) error {
	return f(w, s)
}

// NewStatsPrinter returns the stats printer of a summary format.
func NewStatsPrinter(format string) (StatsPrinter, error) {
	switch format {
	case SummaryText, "":
		return StatsPrinterFunc(PrintTextStats), nil

	case SummaryTable:
		return StatsPrinterFunc(PrintTableStats), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownSummary, format)
}

// PrintTextStats writes the stats in three sentences.
//
//	Checked 12 total links in 1.23 seconds.
//	10 internal, 2 external.
//	0 network/parsing errors, 1 link errors.
func PrintTextStats(w io.Writer, s crawl.Stats) error {
	_, err := fmt.Fprintf(w,
		"Checked %d total links in %s seconds.\n%d internal, %d external.\n%d network/parsing errors, %d link errors.\n",
		s.TotalLinks, formatSeconds(s), s.InternalLinks, s.ExternalLinks, s.TaskErrors, s.LinkErrors,
	)

	return err // nolint: wrapcheck
}

// PrintTableStats writes the stats in a table.
func PrintTableStats(w io.Writer, s crawl.Stats) error {
	// The table does not report write errors, so it is rendered in memory first.
	buf := new(bytes.Buffer)

	table.New("Links", "Count").
		WithWriter(buf).
		AddRow("total", s.TotalLinks).
		AddRow("internal", s.InternalLinks).
		AddRow("external", s.ExternalLinks).
		AddRow("network/parsing errors", s.TaskErrors).
		AddRow("link errors", s.LinkErrors).
		AddRow("seconds", formatSeconds(s)).
		Print()

	_, err := buf.WriteTo(w)

	return err // nolint: wrapcheck
}

func formatSeconds(s crawl.Stats) string {
	return strconv.FormatFloat(s.Elapsed.Seconds(), 'g', 3, 64)
}
