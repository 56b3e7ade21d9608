package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bool64/ctxd"
	"github.com/gocarina/gocsv"

	"github.com/nhatthm/linkcheck/internal/crawl"
	"github.com/nhatthm/linkcheck/internal/crawler"
)

const jsonIndent = "  "

var _ crawl.Reporter = (*Exporter)(nil)

// BrokenLink is a row of an export.
//
// nolint: tagliatelle
type BrokenLink struct {
	URL        string `csv:"url" json:"url"`
	StatusCode int    `csv:"status_code" json:"status_code,omitempty"`
	Error      string `csv:"error" json:"error,omitempty"`
}

type encodeFunc func(w io.Writer, links []BrokenLink) error

// Exporter collects the broken links of a crawl and writes them to a file when the crawl is summarized.
//
// The format is chosen by the file extension: .csv or .json.
type Exporter struct {
	path   string
	encode encodeFunc
	log    ctxd.Logger

	links []BrokenLink
}

// Report keeps the event if the link is broken.
func (e *Exporter) Report(_ context.Context, ev crawl.Event) error {
	switch {
	case ev.IsError():
		e.links = append(e.links, BrokenLink{URL: ev.URL, StatusCode: ev.StatusCode, Error: ev.Err.Description()})

	case crawler.IsErrorStatus(ev.StatusCode):
		e.links = append(e.links, BrokenLink{URL: ev.URL, StatusCode: ev.StatusCode})
	}

	return nil
}

// Summarize writes the broken links to the file.
func (e *Exporter) Summarize(ctx context.Context, _ crawl.Stats) (err error) {
	f, err := os.Create(e.path) // nolint: gosec
	if err != nil {
		return fmt.Errorf("could not create export file: %w", err)
	}

	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("could not close export file: %w", closeErr)
		}
	}()

	if err := e.encode(f, e.links); err != nil {
		return fmt.Errorf("could not export broken links: %w", err)
	}

	e.log.Debug(ctx, "exported broken links", "report.export.path", e.path, "report.export.num_links", len(e.links))

	return nil
}

// Links returns the collected broken links.
func (e *Exporter) Links() []BrokenLink {
	return e.links
}

func encodeCSV(w io.Writer, links []BrokenLink) error {
	return gocsv.Marshal(&links, w) // nolint: wrapcheck
}

func encodeJSON(w io.Writer, links []BrokenLink) error {
	enc := json.NewEncoder(w)

	enc.SetIndent("", jsonIndent)

	return enc.Encode(links) // nolint: wrapcheck
}

// NewExporter creates a new Exporter that writes to the path. The file is created at the end of the crawl.
//
// The function returns ErrUnsupportedExport if the extension is neither .csv nor .json.
func NewExporter(path string, opts ...ExporterOption) (*Exporter, error) {
	e := &Exporter{
		path:  filepath.Clean(path),
		log:   ctxd.NoOpLogger{},
		links: make([]BrokenLink, 0),
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		e.encode = encodeCSV

	case ".json":
		e.encode = encodeJSON

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExport, ext)
	}

	for _, opt := range opts {
		opt.applyExporterOption(e)
	}

	return e, nil
}

// ExporterOption is option to set up Exporter.
type ExporterOption interface {
	applyExporterOption(e *Exporter)
}

type exporterOptionFunc func(e *Exporter)

func (f exporterOptionFunc) applyExporterOption(e *Exporter) {
	f(e)
}

// WithExportLogger sets logger for Exporter.
func WithExportLogger(l ctxd.Logger) ExporterOption {
	return exporterOptionFunc(func(e *Exporter) {
		e.log = l
	})
}
