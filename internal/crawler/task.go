package crawler

import (
	"context"
	"errors"
	"net"
	"time"
)

// ErrorKind is the category of a task-level error.
type ErrorKind string

const (
	// ErrorKindTimeout indicates that the request did not complete before the task timeout.
	ErrorKindTimeout = ErrorKind("timeout")
	// ErrorKindFetch indicates any other transport or parsing failure.
	ErrorKindFetch = ErrorKind("fetch-error")
)

var _ error = (*TaskError)(nil)

// TaskError is a failure that happened while executing a task. It is carried by the task, never returned.
type TaskError struct {
	Kind ErrorKind
	Err  error
}

// Error implements the error interface.
func (e *TaskError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}

	return string(e.Kind) + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *TaskError) Unwrap() error {
	return e.Err
}

// Description is a short human readable explanation of the error.
//
// Timeouts are common when checking many links, so they are described with a single word.
func (e *TaskError) Description() string {
	if e.Kind == ErrorKindTimeout || e.Err == nil {
		return string(e.Kind)
	}

	return e.Err.Error()
}

// newTaskError classifies err into a TaskError.
func newTaskError(err error) *TaskError {
	if isTimeout(err) {
		return &TaskError{Kind: ErrorKindTimeout, Err: err}
	}

	return &TaskError{Kind: ErrorKindFetch, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var nErr net.Error

	return errors.As(err, &nErr) && nErr.Timeout()
}

// Task is a unit of work that checks one URL and, optionally, collects the links of its body.
//
// The input fields are set by the creator. The output fields are written exactly once by the worker executing the task, and
// are read only after the task is received from Pool.Next.
type Task struct {
	// URL is the absolute URL to check.
	URL string
	// ExtractLinks tells the checker to parse the body for links.
	ExtractLinks bool
	// Timeout is the limit for the whole request, body included. Zero means no timeout.
	Timeout time.Duration
	// FollowRedirects tells the checker to follow 3xx responses. When false, the 3xx status is recorded as is.
	FollowRedirects bool

	// StatusCode is the status of the final response. Zero means no response was received.
	StatusCode int
	// Links is the list of absolute URLs found in the body, anchors first, then images.
	Links []string
	// Err is set when the request could not be completed.
	Err *TaskError
}

// NewTask creates a new task for checking a URL.
func NewTask(url string, extractLinks bool, timeout time.Duration, followRedirects bool) *Task {
	return &Task{
		URL:             url,
		ExtractLinks:    extractLinks,
		Timeout:         timeout,
		FollowRedirects: followRedirects,
	}
}

// HasStatus returns true if the task received a response.
func (t *Task) HasStatus() bool {
	return t.StatusCode != 0
}

// IsBroken returns true if the response status is a client or server error.
func (t *Task) IsBroken() bool {
	return IsErrorStatus(t.StatusCode)
}

// IsErrorStatus returns true if the status code is in the client or server error range.
func IsErrorStatus(code int) bool {
	return code >= 400 && code <= 599
}

// LinkChecker executes tasks.
//
// Implementations must record every failure in the task instead of returning it.
type LinkChecker interface {
	Check(ctx context.Context, task *Task)
}

var _ LinkChecker = (LinkCheckerFunc)(nil)

// LinkCheckerFunc is an adapter to use an ordinary function as a LinkChecker.
type LinkCheckerFunc func(ctx context.Context, task *Task)

// Check calls f(ctx, task).
func (f LinkCheckerFunc) Check(ctx context.Context, task *Task) {
	f(ctx, task)
}
