package crawl

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bool64/ctxd"
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/nhatthm/linkcheck/internal/crawler"
)

// State is the lifecycle state of a crawl.
type State int32

const (
	// StateIdle is the state before Run.
	StateIdle State = iota
	// StateDispatching is the state while tasks are in flight.
	StateDispatching
	// StateDraining is the state after the last task completed, while the stats are reported.
	StateDraining
	// StateDone is the state after Run returned.
	StateDone
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDispatching:
		return "dispatching"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	}

	return fmt.Sprintf("State(%d)", int32(s))
}

// Executor runs tasks concurrently and hands them back when they are completed.
type Executor interface {
	Submit(task *crawler.Task)
	Next(ctx context.Context) (*crawler.Task, error)
}

var _ Executor = (*crawler.Pool)(nil)

// Crawler checks all the links reachable from a seed.
//
// The crawler is the only owner of the crawl state: the visited set, the frontier counter and the stats are mutated by the
// goroutine calling Run only. Tasks run concurrently in the Executor and are handled in completion order.
type Crawler struct {
	exec     Executor
	reporter Reporter
	log      ctxd.Logger

	policy          Policy
	timeout         time.Duration
	followRedirects bool
	printAll        bool

	// pending is the frontier counter: number of tasks submitted and not yet received.
	pending atomic.Int64
	state   atomic.Int32
}

// Pending returns the number of tasks submitted and not yet completed. It is safe to call from any goroutine.
func (c *Crawler) Pending() int64 {
	return c.pending.Load()
}

// State returns the lifecycle state of the crawl. It is safe to call from any goroutine.
func (c *Crawler) State() State {
	return State(c.state.Load())
}

// Run crawls from the seed until there are no more links to check.
//
// The seed is always checked and its links always collected, whatever the policy. Every other link is checked at most once,
// fragments are not part of the identity of a link. Results are reported as soon as their task completes.
//
// Run returns the stats even when it returns an error. The error is ErrOperationCanceled if the context is done before the
// end, ErrReport if the reporter fails, and ErrInvalidSeed if the seed is not an absolute http or https url.
func (c *Crawler) Run(ctx context.Context, seed string) (Stats, error) {
	seedURL, err := parseSeed(seed)
	if err != nil {
		return Stats{}, err
	}

	startTime := time.Now()
	ctx = ctxd.AddFields(ctx, "crawl.seed", seed)

	c.pending.Store(0)

	r := &run{
		Crawler: c,
		host:    strings.ToLower(seedURL.Host),
		visited: mapset.NewThreadUnsafeSet[string](),
		stats:   Stats{TotalLinks: 1, InternalLinks: 1},
	}

	r.visited.Add(stripFragment(seed))

	c.log.Debug(ctx, "started crawling",
		"crawl.policy.internal", c.policy.Internal.String(),
		"crawl.policy.external", c.policy.External.String(),
	)

	c.state.Store(int32(StateDispatching))
	c.submit(ctx, seed, true)

	defer c.state.Store(int32(StateDone))

	for c.pending.Load() > 0 {
		task, err := c.exec.Next(ctx)
		if err != nil {
			r.stats.Elapsed = time.Since(startTime)

			if ctx.Err() != nil {
				c.log.Debug(ctx, "stopped crawling", "error", err, "crawl.pending", c.pending.Load())

				return r.stats, fmt.Errorf("%w: %d links not checked", ErrOperationCanceled, c.pending.Load())
			}

			return r.stats, fmt.Errorf("could not receive completed task: %w", err)
		}

		c.pending.Add(-1)

		if err := r.handle(ctx, task); err != nil {
			r.stats.Elapsed = time.Since(startTime)

			return r.stats, err
		}
	}

	c.state.Store(int32(StateDraining))

	r.stats.Elapsed = time.Since(startTime)

	c.log.Debug(ctx, "finished crawling",
		"crawl.total_links", r.stats.TotalLinks,
		"crawl.duration", r.stats.Elapsed.String(),
	)

	if err := c.reporter.Summarize(ctx, r.stats); err != nil {
		return r.stats, fmt.Errorf("%w stats: %w", ErrReport, err)
	}

	return r.stats, nil
}

func (c *Crawler) submit(ctx context.Context, link string, extractLinks bool) {
	c.pending.Add(1)
	c.exec.Submit(crawler.NewTask(link, extractLinks, c.timeout, c.followRedirects))

	c.log.Debug(ctx, "submitted task",
		"crawler.task.url", link,
		"crawler.task.extract_links", extractLinks,
		"crawl.pending", c.pending.Load(),
	)
}

// run is the state of a single call to Crawler.Run.
type run struct {
	*Crawler

	host    string
	visited mapset.Set[string]
	stats   Stats
}

func (r *run) handle(ctx context.Context, task *crawler.Task) error {
	ctx = ctxd.AddFields(ctx, "crawler.task.url", task.URL)

	r.log.Debug(ctx, "received completed task",
		"http.status_code", task.StatusCode,
		"crawler.task.num_links", len(task.Links),
	)

	if task.Err != nil {
		r.stats.TaskErrors++

		return r.report(ctx, Event{URL: task.URL, StatusCode: task.StatusCode, Err: task.Err})
	}

	broken := task.IsBroken()

	if broken {
		r.stats.LinkErrors++
	}

	if broken || r.printAll {
		if err := r.report(ctx, Event{URL: task.URL, StatusCode: task.StatusCode}); err != nil {
			return err
		}
	}

	for _, link := range task.Links {
		r.discover(ctx, link)
	}

	return nil
}

func (r *run) report(ctx context.Context, e Event) error {
	if err := r.reporter.Report(ctx, e); err != nil {
		r.log.Error(ctx, "could not report result", "error", err)

		return fmt.Errorf("%w %q: %w", ErrReport, e.URL, err)
	}

	return nil
}

// discover decides whether a link found in a page is checked.
func (r *run) discover(ctx context.Context, link string) {
	link = stripFragment(link)

	// Mark the link as visited before any other decision, so it is never considered again.
	if !r.visited.Add(link) {
		return
	}

	u, err := url.Parse(link)
	if err != nil {
		r.log.Debug(ctx, "skipped unparsable link", "link", link, "error", err)

		return
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		r.log.Debug(ctx, "skipped link that is not http or https", "link", link)

		return
	}

	scope := ScopeExternal
	if strings.ToLower(u.Host) == r.host {
		scope = ScopeInternal
	}

	mode := r.policy.For(scope)
	if mode == ModeIgnore {
		r.log.Debug(ctx, "ignored link", "link", link, "crawl.scope", scope.String())

		return
	}

	r.stats.count(scope)
	r.submit(ctx, link, mode == ModeFollow)
}

// stripFragment removes the fragment of a link, the same page is checked only once whatever the anchor.
func stripFragment(link string) string {
	link, _, _ = strings.Cut(link, "#")

	return link
}

func parseSeed(seed string) (*url.URL, error) {
	u, err := url.Parse(seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w %q: unsupported scheme %q", ErrInvalidSeed, seed, u.Scheme)
	}

	if u.Host == "" {
		return nil, fmt.Errorf("%w %q: missing hostname", ErrInvalidSeed, seed)
	}

	return u, nil
}

// NewCrawler creates a new crawler that runs its tasks with the executor.
//
//	p, _ := crawler.NewPool(crawler.NewHTTPLinkChecker(), crawler.WithNumWorkers(4))
//	p.Start(ctx)
//	defer p.Close()
//
//	c := NewCrawler(p, WithPolicy(Policy{Internal: ModeFollow, External: ModeCheck}))
//
//	stats, err := c.Run(ctx, "https://example.org/")
func NewCrawler(exec Executor, opts ...Option) *Crawler {
	c := &Crawler{
		exec:            exec,
		reporter:        nopReporter{},
		log:             ctxd.NoOpLogger{},
		followRedirects: true,
	}

	for _, opt := range opts {
		opt.applyCrawlerOption(c)
	}

	return c
}

// Option is option to set up Crawler.
type Option interface {
	applyCrawlerOption(c *Crawler)
}

type crawlerOptionFunc func(c *Crawler)

func (f crawlerOptionFunc) applyCrawlerOption(c *Crawler) {
	f(c)
}

// WithPolicy sets the policy for internal and external links.
func WithPolicy(p Policy) Option {
	return crawlerOptionFunc(func(c *Crawler) {
		c.policy = p
	})
}

// WithTimeout sets the timeout of every task. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return crawlerOptionFunc(func(c *Crawler) {
		c.timeout = d
	})
}

// WithFollowRedirects tells the tasks whether to follow redirects. Redirects are followed by default.
func WithFollowRedirects(follow bool) Option {
	return crawlerOptionFunc(func(c *Crawler) {
		c.followRedirects = follow
	})
}

// WithPrintAll reports every checked link instead of only the broken ones.
func WithPrintAll(printAll bool) Option {
	return crawlerOptionFunc(func(c *Crawler) {
		c.printAll = printAll
	})
}

// WithReporter sets the reporter receiving the results.
func WithReporter(r Reporter) Option {
	return crawlerOptionFunc(func(c *Crawler) {
		c.reporter = r
	})
}

// WithLogger sets logger for Crawler.
func WithLogger(l ctxd.Logger) Option {
	return crawlerOptionFunc(func(c *Crawler) {
		c.log = l
	})
}
