//go:build !testsignal

package cli_test

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/nhatthm/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhatthm/linkcheck/internal/app/cli"
	"github.com/nhatthm/linkcheck/internal/crawl"
)

func Test_Run_Error_BadArgs(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		scenario      string
		mockConfig    func(cfg *cli.Config)
		seed          string
		expectedError string
	}{
		{
			scenario: "zero workers",
			mockConfig: func(cfg *cli.Config) {
				cfg.NumWorkers = 0
			},
			seed:          "http://example.test/",
			expectedError: "linkcheck: error: threads must be at least 1, got 0.\n",
		},
		{
			scenario: "negative timeout",
			mockConfig: func(cfg *cli.Config) {
				cfg.Timeout = -time.Second
			},
			seed:          "http://example.test/",
			expectedError: "linkcheck: error: timeout must be at least 0, got -1s.\n",
		},
		{
			scenario: "unknown mode",
			mockConfig: func(cfg *cli.Config) {
				cfg.External = crawl.Mode(5)
			},
			seed:          "http://example.test/",
			expectedError: "linkcheck: error: external must be at most 2, got Mode(5).\n",
		},
		{
			scenario: "unknown newline",
			mockConfig: func(cfg *cli.Config) {
				cfg.Newline = "amiga"
			},
			seed:          "http://example.test/",
			expectedError: "linkcheck: error: newline must be one of dos, mac, unix, system, got \"amiga\".\n",
		},
		{
			scenario: "unknown summary",
			mockConfig: func(cfg *cli.Config) {
				cfg.Summary = "yaml"
			},
			seed:          "http://example.test/",
			expectedError: "linkcheck: error: summary must be one of text, table, got \"yaml\".\n",
		},
		{
			scenario: "unsupported export",
			mockConfig: func(cfg *cli.Config) {
				cfg.Export = "report.xml"
			},
			seed:          "http://example.test/",
			expectedError: "linkcheck: error: unsupported export format: \".xml\".\n",
		},
		{
			scenario:      "missing seed",
			seed:          "",
			expectedError: "linkcheck: error: seed url is required.\n",
		},
		{
			scenario:      "invalid seed",
			seed:          "example",
			expectedError: "linkcheck: error: seed url is not a valid url: \"example\".\n",
		},
		{
			scenario:      "unsupported scheme",
			seed:          "ftp://example.test/",
			expectedError: "linkcheck: error: invalid seed url \"ftp://example.test/\": unsupported scheme \"ftp\".\n",
		},
		{
			scenario: "multiple errors",
			mockConfig: func(cfg *cli.Config) {
				cfg.NumWorkers = -1
			},
			seed: "",
			expectedError: "linkcheck: error: threads must be at least 1, got -1.\n" +
				"linkcheck: error: seed url is required.\n",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.scenario, func(t *testing.T) {
			t.Parallel()

			outBuf := new(safeBuffer)
			errBuf := new(safeBuffer)

			cfg := cli.Config{
				OutWriter:  outBuf,
				ErrWriter:  errBuf,
				NumWorkers: 1,
			}

			if tc.mockConfig != nil {
				tc.mockConfig(&cfg)
			}

			code := cli.Run(cfg, tc.seed)

			assert.Empty(t, outBuf.String())
			assert.Equal(t, tc.expectedError, errBuf.String())
			assert.Equal(t, cli.CodeErrBadArgs, code)
		})
	}
}

// The mock servers expect their requests in order, so the crawls run with one worker.
func Test_Run_Success(t *testing.T) {
	t.Parallel()

	external := httpmock.New(func(s *httpmock.Server) {
		s.ExpectGet("/").
			ReturnCode(httpmock.StatusOK)
	})(t)

	srv := httpmock.New(func(s *httpmock.Server) {
		expectPage(s, "/", fmt.Sprintf(`
			<a href="/about#team">About</a>
			<a href="/missing">Missing</a>
			<a href="%s/">External</a>
			<a href="mailto:john@example.com">Mail</a>
			<img src="/about">
		`, external.URL()))

		expectPage(s, "/about", `<a href="/">Home</a>`)

		s.ExpectGet("/missing").
			ReturnCode(httpmock.StatusNotFound)
	})(t)

	outBuf := new(safeBuffer)
	errBuf := new(safeBuffer)

	code := cli.Run(cli.Config{
		OutWriter:  outBuf,
		ErrWriter:  errBuf,
		NumWorkers: 1,
		Timeout:    time.Second,
		Internal:   crawl.ModeFollow,
		External:   crawl.ModeCheck,
	}, srv.URL()+"/")

	expectedStats := `^Checked 4 total links in [0-9.e+-]+ seconds\.
3 internal, 1 external\.
0 network/parsing errors, 1 link errors\.
$`

	assert.Equal(t, fmt.Sprintf("404: %s/missing\n", srv.URL()), outBuf.String())
	assert.Regexp(t, regexp.MustCompile(expectedStats), errBuf.String())
	assert.Equal(t, cli.CodeOK, code)
}

func Test_Run_SeedNotFound(t *testing.T) {
	t.Parallel()

	srv := httpmock.New(func(s *httpmock.Server) {
		s.ExpectGet("/").
			ReturnCode(httpmock.StatusNotFound).
			Return(`<a href="/never-checked">Link</a>`)
	})(t)

	outBuf := new(safeBuffer)
	errBuf := new(safeBuffer)

	code := cli.Run(cli.Config{
		OutWriter:  outBuf,
		ErrWriter:  errBuf,
		NumWorkers: 1,
		Internal:   crawl.ModeFollow,
		Quiet:      true,
	}, srv.URL()+"/")

	assert.Equal(t, fmt.Sprintf("404: %s/\n", srv.URL()), outBuf.String())
	assert.Empty(t, errBuf.String())
	assert.Equal(t, cli.CodeOK, code)
}

func Test_Run_TaskFailures(t *testing.T) {
	t.Parallel()

	done := make(chan struct{})
	defer close(done)

	srv := httpmock.New(func(s *httpmock.Server) {
		expectPage(s, "/", `<a href="/slow">Slow</a><a href="/ok">OK</a>`)

		s.ExpectGet("/slow").
			Run(func(*http.Request) ([]byte, error) {
				<-done

				return nil, nil
			})

		s.ExpectGet("/ok").
			ReturnCode(httpmock.StatusOK)
	})(t)

	outBuf := new(safeBuffer)
	errBuf := new(safeBuffer)

	code := cli.Run(cli.Config{
		OutWriter:  outBuf,
		ErrWriter:  errBuf,
		NumWorkers: 1,
		Timeout:    50 * time.Millisecond,
		Summary:    "table",
	}, srv.URL()+"/")

	assert.Empty(t, outBuf.String())
	assert.Contains(t, errBuf.String(), fmt.Sprintf("linkcheck: error: %s/slow - timeout.\n", srv.URL()))
	assert.Regexp(t, regexp.MustCompile(`(?m)^network/parsing errors\s+1\s*$`), errBuf.String())
	assert.Equal(t, cli.CodeErrTaskFailures, code)
}

func Test_Run_PrintAll(t *testing.T) {
	t.Parallel()

	srv := httpmock.New(func(s *httpmock.Server) {
		expectPage(s, "/", `<a href="/moved">Moved</a>`)

		s.ExpectGet("/moved").
			ReturnHeader("Location", "/").
			ReturnCode(http.StatusMovedPermanently)
	})(t)

	outBuf := new(safeBuffer)
	errBuf := new(safeBuffer)

	code := cli.Run(cli.Config{
		OutWriter:   outBuf,
		ErrWriter:   errBuf,
		NumWorkers:  1,
		NoRedirects: true,
		PrintAll:    true,
		Quiet:       true,
		Newline:     "dos",
	}, srv.URL()+"/")

	expected := fmt.Sprintf("200: %[1]s/\r\n301: %[1]s/moved\r\n", srv.URL())

	assert.Equal(t, expected, outBuf.String())
	assert.Empty(t, errBuf.String())
	assert.Equal(t, cli.CodeOK, code)
}

func Test_Run_Export(t *testing.T) {
	t.Parallel()

	srv := httpmock.New(func(s *httpmock.Server) {
		expectPage(s, "/", `<a href="/missing">Missing</a>`)

		s.ExpectGet("/missing").
			ReturnCode(httpmock.StatusNotFound)
	})(t)

	path := filepath.Join(t.TempDir(), "broken.csv")

	code := cli.Run(cli.Config{
		OutWriter:  new(safeBuffer),
		ErrWriter:  new(safeBuffer),
		NumWorkers: 1,
		Export:     path,
	}, srv.URL()+"/")

	require.Equal(t, cli.CodeOK, code)

	actual, err := os.ReadFile(path) // nolint: gosec
	require.NoError(t, err)

	expected := fmt.Sprintf("url,status_code,error\n%s/missing,404,\n", srv.URL())

	assert.Equal(t, expected, string(actual))
}

func Test_Run_Error_Output(t *testing.T) {
	t.Parallel()

	srv := httpmock.New(func(s *httpmock.Server) {
		s.ExpectGet("/").
			ReturnCode(httpmock.StatusNotFound)
	})(t)

	errBuf := new(safeBuffer)

	code := cli.Run(cli.Config{
		OutWriter: writerFunc(func([]byte) (int, error) {
			return 0, errors.New("write error")
		}),
		ErrWriter:  errBuf,
		NumWorkers: 1,
	}, srv.URL()+"/")

	expected := fmt.Sprintf("linkcheck: error: could not report %q: could not write status: write error.\n", srv.URL()+"/")

	assert.Equal(t, expected, errBuf.String())
	assert.Equal(t, cli.CodeErrOutput, code)
}

func Test_Run_Verbose(t *testing.T) {
	t.Parallel()

	srv := httpmock.New(func(s *httpmock.Server) {
		s.ExpectGet("/").
			ReturnCode(httpmock.StatusOK)
	})(t)

	errBuf := new(safeBuffer)

	code := cli.Run(cli.Config{
		OutWriter:      new(safeBuffer),
		ErrWriter:      errBuf,
		NumWorkers:     1,
		Quiet:          true,
		VerbosityLevel: cli.VerbosityLevelDebug,
	}, srv.URL()+"/")

	assert.Contains(t, errBuf.String(), "started crawling")
	assert.Contains(t, errBuf.String(), `"crawl.run_id": "`)
	assert.Contains(t, errBuf.String(), "finished crawling")
	assert.Equal(t, cli.CodeOK, code)
}
