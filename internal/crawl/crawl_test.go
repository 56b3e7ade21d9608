package crawl_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nhatthm/linkcheck/internal/crawl"
	"github.com/nhatthm/linkcheck/internal/crawler"
)

const seed = "http://example.test/"

// page is a fake response.
type page struct {
	status int
	links  []string
	err    *crawler.TaskError
	// wait blocks the check until it is closed.
	wait chan struct{}
}

// site is an in-memory web site, keyed by url.
type site struct {
	pages map[string]page

	mu      sync.Mutex
	checked map[string][]*crawler.Task
}

func newSite(pages map[string]page) *site {
	return &site{
		pages:   pages,
		checked: make(map[string][]*crawler.Task),
	}
}

// Check serves the task from the pages. Unknown pages are 404.
func (s *site) Check(_ context.Context, task *crawler.Task) {
	s.mu.Lock()
	s.checked[task.URL] = append(s.checked[task.URL], task)
	s.mu.Unlock()

	p, ok := s.pages[task.URL]
	if !ok {
		task.StatusCode = 404

		return
	}

	if p.wait != nil {
		<-p.wait
	}

	if p.err != nil {
		task.Err = p.err

		return
	}

	task.StatusCode = p.status
	if task.StatusCode == 0 {
		task.StatusCode = 200
	}

	if task.ExtractLinks && !crawler.IsErrorStatus(task.StatusCode) {
		task.Links = p.links
	}
}

// tasks returns the tasks created for an url.
func (s *site) tasks(url string) []*crawler.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.checked[url]
}

// urls returns all the checked urls with the number of times they have been checked.
func (s *site) urls() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make(map[string]int, len(s.checked))

	for url, tasks := range s.checked {
		result[url] = len(tasks)
	}

	return result
}

// recorder is a reporter that keeps everything in memory.
type recorder struct {
	events []crawl.Event
	stats  *crawl.Stats

	reportErr    error
	summarizeErr error
}

func (r *recorder) Report(_ context.Context, e crawl.Event) error {
	if r.reportErr != nil {
		return r.reportErr
	}

	r.events = append(r.events, e)

	return nil
}

func (r *recorder) Summarize(_ context.Context, s crawl.Stats) error {
	if r.summarizeErr != nil {
		return r.summarizeErr
	}

	r.stats = &s

	return nil
}

// runCrawl runs a crawl over the site with a real pool.
func runCrawl(t *testing.T, s *site, numWorkers int, opts ...crawl.Option) (*crawl.Crawler, crawl.Stats, error) {
	t.Helper()

	p, err := crawler.NewPool(s, crawler.WithNumWorkers(numWorkers))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p.Start(ctx)
	defer p.Close()

	c := crawl.NewCrawler(p, opts...)
	stats, err := c.Run(ctx, seed)

	return c, stats, err
}
