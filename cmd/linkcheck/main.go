package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nhatthm/linkcheck/internal/app/cli"
	"github.com/nhatthm/linkcheck/internal/crawl"
	"github.com/nhatthm/linkcheck/internal/report"
)

const (
	// defaultNumWorkers is the default value for number of concurrent link checks.
	defaultNumWorkers = 1
	// defaultTimeout is the default timeout for checking a link.
	defaultTimeout = 10 * time.Second

	usage = `Find dead links in a website, starting from an url.

Usage:
  [app] [options] URL

Options:
  -p, --threads NUM
                    Number of concurrent link checks. Default to [defaultNumWorkers].
  -t, --timeout TIMEOUT
                    Timeout for checking a link, in the form "72h3m0.5s".
                    Use 0 for no timeout. Default to [defaultTimeout].
  --internal MODE   What to do with the links on the same host as URL:
                    check, ignore or follow. Default to check.
  --external MODE   What to do with the links on other hosts:
                    check, ignore or follow. Default to check.
  --no-redirects    Do not follow redirects, report their status instead.
  --print-all       Print all the checked links, not only the broken ones.
  --newline MODE    Line ending of the output: dos, mac, unix or system.
                    Default to system.
  --summary FORMAT  Format of the stats: text or table. Default to text.
  --quiet           Do not print the stats after crawling.
  --export FILE     Write the broken links to FILE, as .csv or .json.
  -v, --verbose     Print out the error log messages.
  -vv               Print out the all log messages.
  -h, --help        Print out the help message.

Modes:
  check             Check the status of the link.
  ignore            Do not check the link.
  follow            Check the status of the link and all the links in it.

Examples:
  Check all the pages of a website, and the links to other websites:
    [app] --internal follow http://localhost:8000/

  Check a website with 4 concurrent link checks and export the broken links:
    [app] -p 4 --internal follow --external ignore --export broken.csv https://example.org/

  Print only the broken urls:
    [app] --internal follow --quiet https://example.org/ | awk '{ print $2 }'

Exit codes:
  0  All the links have been checked.
  1  At least one link could not be fetched (network error or timeout).
  2  Invalid arguments.
  3  Canceled.
  4  Could not write the output.

Read more:
  - Time Duration format: https://golang.org/pkg/time/#ParseDuration
`
)

var (
	// argNumWorkers is the number of concurrent link checks. Default to defaultNumWorkers.
	argNumWorkers = defaultNumWorkers
	// argTimeout is the timeout for checking a link.
	argTimeout = defaultTimeout
	// argInternal is the mode of the links on the seed host.
	argInternal = crawl.ModeCheck
	// argExternal is the mode of the links on other hosts.
	argExternal = crawl.ModeCheck
	// argNoRedirects is used to turn off redirects.
	argNoRedirects bool
	// argPrintAll is used to print all the checked links.
	argPrintAll bool
	// argNewline is the line ending of the output.
	argNewline = report.NewlineSystem
	// argSummary is the format of the stats.
	argSummary = report.SummaryText
	// argQuiet is used to turn off the stats.
	argQuiet bool
	// argExport is the path to the export file.
	argExport string

	// argVerbose is used to set the verbosity level.
	argVerbose bool
	// argVeryVerbose is used to set the verbosity level.
	argVeryVerbose bool
)

// init is for registering all the arguments.
// nolint: gochecknoinits
func init() {
	flag.IntVar(&argNumWorkers, "threads", defaultNumWorkers, "")
	flag.IntVar(&argNumWorkers, "p", defaultNumWorkers, "")
	flag.DurationVar(&argTimeout, "timeout", defaultTimeout, "")
	flag.DurationVar(&argTimeout, "t", defaultTimeout, "")
	flag.TextVar(&argInternal, "internal", crawl.ModeCheck, "")
	flag.TextVar(&argExternal, "external", crawl.ModeCheck, "")
	flag.BoolVar(&argNoRedirects, "no-redirects", false, "")
	flag.BoolVar(&argPrintAll, "print-all", false, "")
	flag.StringVar(&argNewline, "newline", report.NewlineSystem, "")
	flag.StringVar(&argSummary, "summary", report.SummaryText, "")
	flag.BoolVar(&argQuiet, "quiet", false, "")
	flag.StringVar(&argExport, "export", "", "")
	flag.BoolVar(&argVerbose, "verbose", false, "")
	flag.BoolVar(&argVerbose, "v", false, "")
	flag.BoolVar(&argVeryVerbose, "vv", false, "")

	flag.Usage = func() {
		r := strings.NewReplacer(
			`[app]`, filepath.Base(os.Args[0]),
			`[defaultNumWorkers]`, strconv.Itoa(defaultNumWorkers),
			`[defaultTimeout]`, defaultTimeout.String(),
		)

		fmt.Print(r.Replace(usage))
	}
}

func main() {
	os.Exit(runMain())
}

func runMain() int {
	flag.Parse()

	if flag.NArg() != 1 {
		_, _ = fmt.Fprintf(os.Stderr, "linkcheck: error: expected exactly one url, got %d.\n", flag.NArg())

		return int(cli.CodeErrBadArgs)
	}

	cfg := cli.Config{
		OutWriter:      os.Stdout,
		ErrWriter:      os.Stderr,
		NumWorkers:     argNumWorkers,
		Timeout:        argTimeout,
		Internal:       argInternal,
		External:       argExternal,
		NoRedirects:    argNoRedirects,
		PrintAll:       argPrintAll,
		Quiet:          argQuiet,
		Newline:        argNewline,
		Summary:        argSummary,
		Export:         argExport,
		VerbosityLevel: cli.VerbosityLevelSilent,
	}

	if argVeryVerbose {
		cfg.VerbosityLevel = cli.VerbosityLevelDebug
	} else if argVerbose {
		cfg.VerbosityLevel = cli.VerbosityLevelError
	}

	return int(cli.Run(cfg, flag.Arg(0)))
}
