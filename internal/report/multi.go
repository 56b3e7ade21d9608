package report

import (
	"context"

	"github.com/nhatthm/linkcheck/internal/crawl"
)

var _ crawl.Reporter = (multi)(nil)

type multi []crawl.Reporter

// Multi creates a reporter that sends everything to all the reporters, in order. It stops at the first error.
func Multi(reporters ...crawl.Reporter) crawl.Reporter {
	return multi(reporters)
}

func (m multi) Report(ctx context.Context, e crawl.Event) error {
	for _, r := range m {
		if err := r.Report(ctx, e); err != nil {
			return err // nolint: wrapcheck
		}
	}

	return nil
}

func (m multi) Summarize(ctx context.Context, s crawl.Stats) error {
	for _, r := range m {
		if err := r.Summarize(ctx, s); err != nil {
			return err // nolint: wrapcheck
		}
	}

	return nil
}
