package crawl

import "time"

// Stats is the summary of a crawl.
type Stats struct {
	// TotalLinks is the number of links queued for checking, the seed included.
	TotalLinks int
	// InternalLinks is the number of queued links on the seed host, the seed included.
	InternalLinks int
	// ExternalLinks is the number of queued links on other hosts.
	ExternalLinks int
	// TaskErrors is the number of links that could not be fetched (network errors, timeouts).
	TaskErrors int
	// LinkErrors is the number of links that answered with a client or server error.
	LinkErrors int
	// Elapsed is the wall time of the crawl.
	Elapsed time.Duration
}

// HasTaskErrors returns true if at least one link could not be fetched.
func (s Stats) HasTaskErrors() bool {
	return s.TaskErrors > 0
}

func (s *Stats) count(scope Scope) {
	s.TotalLinks++

	if scope == ScopeInternal {
		s.InternalLinks++
	} else {
		s.ExternalLinks++
	}
}
