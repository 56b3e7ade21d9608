package crawl

import (
	"context"

	"github.com/nhatthm/linkcheck/internal/crawler"
)

// Event is the result of a checked link.
type Event struct {
	URL string
	// StatusCode is zero when no response was received.
	StatusCode int
	// Err is set when the link could not be fetched.
	Err *crawler.TaskError
}

// IsError returns true if the link could not be fetched.
func (e Event) IsError() bool {
	return e.Err != nil
}

// Reporter receives the results of a crawl in completion order, and the stats at the end.
type Reporter interface {
	Report(ctx context.Context, e Event) error
	Summarize(ctx context.Context, s Stats) error
}

var _ Reporter = (*nopReporter)(nil)

type nopReporter struct{}

func (nopReporter) Report(context.Context, Event) error { return nil }

func (nopReporter) Summarize(context.Context, Stats) error { return nil }
