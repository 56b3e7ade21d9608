package crawler

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bool64/ctxd"
	"golang.org/x/net/html/charset"

	"github.com/nhatthm/linkcheck/internal/collector"
)

const (
	// defaultUserAgent is the default user agent to disguise.
	defaultUserAgent = `Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/99.0.4844.51 Safari/537.36`
)

var _ LinkChecker = (*HTTPLinkChecker)(nil)

// HTTPLinkChecker checks links by sending GET requests.
//
// A single checker is shared by all the workers of a Pool. The transport (and its connection pool) is shared, the client is
// built per task because the timeout and the redirect policy are properties of the task.
type HTTPLinkChecker struct {
	transport  http.RoundTripper
	collectors map[string]collector.LinkCollector // Key is mime type, Value is a link collector.
	log        ctxd.Logger

	// userAgent is the user agent to disguise when sending request to server. Default value is defaultUserAgent.
	userAgent string
}

// Check checks the link of the task and records the result in the task.
//
// Any failure is recorded in task.Err, Check never panics on network or parsing errors.
func (c *HTTPLinkChecker) Check(ctx context.Context, task *Task) {
	startTime := time.Now()
	ctx = ctxd.AddFields(ctx,
		"crawler.task.url", task.URL,
		"crawler.task.extract_links", task.ExtractLinks,
	)

	c.log.Debug(ctx, "started checking")

	defer func() {
		c.log.Debug(ctx, "finished checking", "crawler.task.duration", time.Since(startTime).String())
	}()

	if err := c.check(ctx, task); err != nil {
		task.Err = newTaskError(err)

		c.log.Error(ctx, "failed to check link", "error", err, "crawler.task.error_kind", string(task.Err.Kind))
	}
}

func (c *HTTPLinkChecker) check(ctx context.Context, task *Task) error {
	resp, err := c.doRequest(ctx, task)
	if err != nil {
		return err
	}

	defer resp.Body.Close() // nolint: errcheck

	task.StatusCode = resp.StatusCode

	// When not looking for links, we have all the information needed.
	if !task.ExtractLinks {
		return nil
	}

	// Error pages are not crawlable content.
	if IsErrorStatus(resp.StatusCode) {
		return nil
	}

	links, err := c.collectLinks(ctx, resp)
	if err != nil {
		return err
	}

	task.Links = c.resolveLinks(ctx, task.URL, links)

	return nil
}

func (c *HTTPLinkChecker) doRequest(ctx context.Context, task *Task) (*http.Response, error) {
	ctx = ctxd.AddFields(ctx,
		"http.timeout", task.Timeout.String(),
		"http.follow_redirects", task.FollowRedirects,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, task.URL, nil)
	if err != nil {
		c.log.Error(ctx, "failed to create http request", "error", err)

		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	c.log.Debug(ctx, "send http request",
		"http.user_agent", c.userAgent,
	)

	startTime := time.Now()
	resp, err := c.client(task).Do(req)
	endTime := time.Now()

	if err != nil {
		c.log.Error(ctx, "failed to send http request", "error", err)

		return nil, fmt.Errorf("failed to send http request: %w", err)
	}

	c.log.Debug(ctx, "received http response",
		"http.duration", endTime.Sub(startTime).String(),
		"http.status_code", resp.StatusCode,
	)

	return resp, nil
}

// client builds a http client for the task.
func (c *HTTPLinkChecker) client(task *Task) *http.Client {
	client := &http.Client{
		Transport: c.transport,
		Timeout:   task.Timeout,
	}

	if !task.FollowRedirects {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return client
}

// collectLinks collects links from the response if there is a collector for its content type.
//
// A response without a supported content type has no links, it is not an error.
func (c *HTTPLinkChecker) collectLinks(ctx context.Context, resp *http.Response) ([]string, error) {
	rawContentType := resp.Header.Get("Content-Type")
	contentType, _, _ := mime.ParseMediaType(rawContentType) // nolint: errcheck // We do not care about the error, it is probably an error after the `;`.
	contentType = strings.ToLower(contentType)

	ctx = ctxd.AddFields(ctx, "http.content_type", contentType)

	linkCollector, ok := c.collectors[contentType]
	if !ok {
		c.log.Debug(ctx, "skipped collecting links from unsupported content type")

		return nil, nil
	}

	ctx = ctxd.AddFields(ctx, "crawler.http.collector", fmt.Sprintf("%T", linkCollector))

	// Decode the body to UTF-8 using the charset declared in the headers or in the document.
	body, err := charset.NewReader(resp.Body, rawContentType)
	if err != nil {
		c.log.Error(ctx, "failed to decode body", "error", err)

		return nil, fmt.Errorf("failed to decode body: %w", err)
	}

	links, err := linkCollector.GetLinks(body)
	if err != nil {
		c.log.Error(ctx, "failed to get links", "error", err)

		return nil, fmt.Errorf("failed to get links: %w", err)
	}

	c.log.Debug(ctx, "collected links", "crawler.http.num_links", len(links))

	return links, nil
}

// resolveLinks resolves the links against the page url. The resolution is lexical only, links are not deduplicated.
//
// For example: given a `http://localhost/dir/page.html` page
//   - link: .
//     result: http://localhost/dir/
//   - link: /absolute/path/to/file.html
//     result: http://localhost/absolute/path/to/file.html
//   - link: path/to/file.html#anchor
//     result: http://localhost/dir/path/to/file.html#anchor
//   - link: https://example.org
//     result: https://example.org
func (c *HTTPLinkChecker) resolveLinks(ctx context.Context, page string, links []string) []string {
	base, err := url.Parse(page)
	if err != nil {
		// This should not happen because the request has been sent to this url.
		c.log.Error(ctx, "failed to parse page url", "error", err)

		return nil
	}

	result := make([]string, 0, len(links))

	for _, link := range links {
		linkURL, err := base.Parse(strings.TrimSpace(link))
		if err != nil {
			c.log.Debug(ctx, "failed to parse link", "link", link, "error", err)

			continue
		}

		result = append(result, linkURL.String())
	}

	return result
}

// NewHTTPLinkChecker creates a new HTTPLinkChecker.
//
// By default, HTML and XHTML documents are parsed for anchors and images.
//
//	c := NewHTTPLinkChecker(WithLogger(log))
//	task := NewTask("https://example.org/", true, 10*time.Second, true)
//
//	c.Check(ctx, task)
//
//	fmt.Println(task.StatusCode, task.Links)
func NewHTTPLinkChecker(opts ...HTTPLinkCheckerOption) *HTTPLinkChecker {
	htmlCollector := collector.NewHTMLLinkCollector()

	c := &HTTPLinkChecker{
		transport: http.DefaultTransport,
		collectors: map[string]collector.LinkCollector{
			"text/html":             htmlCollector,
			"application/xhtml+xml": htmlCollector,
		},
		log: ctxd.NoOpLogger{},

		userAgent: defaultUserAgent,
	}

	for _, opt := range opts {
		opt.applyHTTPLinkCheckerOption(c)
	}

	return c
}

// HTTPLinkCheckerOption is option to set up HTTPLinkChecker.
type HTTPLinkCheckerOption interface {
	applyHTTPLinkCheckerOption(c *HTTPLinkChecker)
}

type httpLinkCheckerOptionFunc func(c *HTTPLinkChecker)

func (f httpLinkCheckerOptionFunc) applyHTTPLinkCheckerOption(c *HTTPLinkChecker) {
	f(c)
}

// WithLogger sets logger for HTTPLinkChecker.
func WithLogger(l ctxd.Logger) HTTPLinkCheckerOption {
	return httpLinkCheckerOptionFunc(func(c *HTTPLinkChecker) {
		c.log = l
	})
}

// WithTransport sets the round tripper shared by all the requests.
func WithTransport(rt http.RoundTripper) HTTPLinkCheckerOption {
	return httpLinkCheckerOptionFunc(func(c *HTTPLinkChecker) {
		c.transport = rt
	})
}

// WithUserAgent sets the user agent of the requests.
func WithUserAgent(ua string) HTTPLinkCheckerOption {
	return httpLinkCheckerOptionFunc(func(c *HTTPLinkChecker) {
		c.userAgent = ua
	})
}

// WithLinkCollector sets link collector for HTTPLinkChecker for multiple content types.
func WithLinkCollector(collector collector.LinkCollector, contentTypes ...string) HTTPLinkCheckerOption {
	return httpLinkCheckerOptionFunc(func(c *HTTPLinkChecker) {
		for _, contentType := range contentTypes {
			c.collectors[strings.ToLower(contentType)] = collector
		}
	})
}
