package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/bool64/ctxd"
	"github.com/google/uuid"

	"github.com/nhatthm/linkcheck/internal/crawl"
	"github.com/nhatthm/linkcheck/internal/crawler"
	"github.com/nhatthm/linkcheck/internal/footprint"
	"github.com/nhatthm/linkcheck/internal/logger"
	"github.com/nhatthm/linkcheck/internal/report"
)

const (
	// CodeOK indicates that the program exited with success.
	CodeOK = ExitCode(iota)
	// CodeErrTaskFailures indicates that at least one link could not be fetched.
	CodeErrTaskFailures
	// CodeErrBadArgs indicates that the provided arguments are invalid.
	CodeErrBadArgs
	// CodeErrOperationCanceled indicates that the program has been terminated and operation is canceled.
	CodeErrOperationCanceled
	// CodeErrOutput indicates that the program could not write to output.
	CodeErrOutput
)

const programName = "linkcheck"

// ExitCode is the exit code of the program.
type ExitCode int

// Run runs the program to check all the links reachable from the seed.
//
// The broken links are written to the output as soon as they are found, the network errors and the stats to the error output.
// The exit code is CodeErrTaskFailures if at least one link could not be fetched, even if the crawl went to the end.
func Run(cfg Config, seed string) ExitCode {
	if errs := validate(cfg, seed); len(errs) > 0 {
		for _, err := range errs {
			printError(cfg.ErrWriter, err)
		}

		return CodeErrBadArgs
	}

	log := logger.NewLogger(cfg.VerbosityLevel.Config(cfg.ErrWriter))

	reporter, err := initReporter(cfg, log)
	if err != nil {
		printError(cfg.ErrWriter, err)

		return CodeErrBadArgs
	}

	checker := crawler.NewHTTPLinkChecker(crawler.WithLogger(log))

	p, err := crawler.NewPool(checker,
		crawler.WithNumWorkers(cfg.NumWorkers),
		crawler.WithPoolLogger(log),
	)
	if err != nil {
		printError(cfg.ErrWriter, err)

		return CodeErrBadArgs
	}

	c := crawl.NewCrawler(p,
		crawl.WithPolicy(crawl.Policy{Internal: cfg.Internal, External: cfg.External}),
		crawl.WithTimeout(cfg.Timeout),
		crawl.WithFollowRedirects(!cfg.NoRedirects),
		crawl.WithPrintAll(cfg.PrintAll),
		crawl.WithReporter(reporter),
		crawl.WithLogger(log),
	)

	ctx := ctxd.AddFields(context.Background(), "crawl.run_id", uuid.New().String())

	return doCrawl(ctx, c, p, seed, cfg.ErrWriter, log)
}

// initReporter returns the reporter of the results: the lines to the outputs, and the export file if any.
func initReporter(cfg Config, log ctxd.Logger) (crawl.Reporter, error) {
	newline, err := report.Newline(cfg.Newline)
	if err != nil {
		return nil, err // nolint: wrapcheck
	}

	stats, err := report.NewStatsPrinter(cfg.Summary)
	if err != nil {
		return nil, err // nolint: wrapcheck
	}

	lines := report.NewLineReporter(cfg.OutWriter, cfg.ErrWriter,
		report.WithProgramName(programName),
		report.WithNewline(newline),
		report.WithQuiet(cfg.Quiet),
		report.WithStatsPrinter(stats),
	)

	if cfg.Export == "" {
		return lines, nil
	}

	exporter, err := report.NewExporter(cfg.Export, report.WithExportLogger(log))
	if err != nil {
		return nil, err // nolint: wrapcheck
	}

	return report.Multi(lines, exporter), nil
}

// doCrawl runs the crawl until there is no more link to check.
//
// In case of SIGINT or SIGTERM, the pool and the crawl are stopped and the function returns CodeErrOperationCanceled.
// In case of output error, the function returns CodeErrOutput.
func doCrawl(ctx context.Context, c *crawl.Crawler, p *crawler.Pool, seed string, errOut io.Writer, log ctxd.Logger) ExitCode {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go footprint.Track(ctx, log, func() []any {
		return []any{"crawl.pending", c.Pending(), "crawl.state", c.State().String()}
	})

	sigs := make(chan os.Signal, 1)

	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() { // Watch for termination to cancel the context in order to signal all the workers to stop.
		defer wg.Done()

		select {
		case sig := <-sigs:
			log.Debug(ctx, "received signal", "signal", sig.String())

			// A second signal terminates the program.
			signal.Stop(sigs)
			cancel()

		case <-ctx.Done():
		}
	}()

	p.Start(ctx)

	stats, err := c.Run(ctx, seed)

	cancel()
	p.Close()
	wg.Wait()

	if err != nil {
		printError(errOut, err)

		switch {
		case errors.Is(err, crawl.ErrInvalidSeed):
			return CodeErrBadArgs

		case errors.Is(err, crawl.ErrReport):
			return CodeErrOutput
		}

		return CodeErrOperationCanceled
	}

	if stats.HasTaskErrors() {
		return CodeErrTaskFailures
	}

	return CodeOK
}

// printError writes an error the way the reporter writes the network errors.
func printError(w io.Writer, err error) {
	if w == nil {
		w = os.Stderr
	}

	_, _ = fmt.Fprintf(w, "%s: error: %s.\n", programName, err.Error())
}
