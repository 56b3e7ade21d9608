package crawler_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nhatthm/linkcheck/internal/crawler"
)

func contextWithDeadline(t *testing.T, d time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()

	deadline, ok := t.Deadline()
	if !ok {
		deadline = time.Now().Add(d)
	}

	return context.WithDeadline(context.Background(), deadline)
}

func gzipFile(file string) func(*http.Request) ([]byte, error) {
	return func(req *http.Request) ([]byte, error) {
		f, err := os.Open(filepath.Clean(file))
		if err != nil {
			return nil, fmt.Errorf("could not open for compression: %w", err)
		}

		defer func() {
			_ = f.Close() // nolint: errcheck
		}()

		buf := new(bytes.Buffer)
		gz := gzip.NewWriter(buf)

		if _, err := io.Copy(gz, f); err != nil {
			return nil, fmt.Errorf("could not compress: %w", err)
		}

		if err := gz.Close(); err != nil {
			return nil, fmt.Errorf("could not close compressor: %w", err)
		}

		return buf.Bytes(), nil
	}
}

// startPool starts a pool and closes it at the end of the test.
func startPool(t *testing.T, checker crawler.LinkChecker, opts ...crawler.PoolOption) *crawler.Pool {
	t.Helper()

	p, err := crawler.NewPool(checker, opts...)
	require.NoError(t, err)

	p.Start(context.Background())
	t.Cleanup(p.Close)

	return p
}

// nextTask waits for the next completed task or fails the test.
func nextTask(t *testing.T, p *crawler.Pool, timeout time.Duration) *crawler.Task {
	t.Helper()

	ctx, cancel := contextWithDeadline(t, timeout)
	defer cancel()

	task, err := p.Next(ctx)
	require.NoError(t, err, "test timed out")

	return task
}

// checkTask runs a task through a checker and returns it.
func checkTask(c crawler.LinkChecker, task *crawler.Task) *crawler.Task {
	c.Check(context.Background(), task)

	return task
}
