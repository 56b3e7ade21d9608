package cli_test

import (
	"bytes"
	"sync"

	"github.com/nhatthm/httpmock"
)

// Mock interfaces for testing.

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) {
	return f(p)
}

type safeBuffer struct {
	buffer bytes.Buffer
	mutex  sync.Mutex
}

func (s *safeBuffer) Write(p []byte) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.buffer.Write(p) // nolint: wrapcheck
}

func (s *safeBuffer) String() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.buffer.String()
}

// expectPage expects a request to an html page.
func expectPage(s *httpmock.Server, path string, body string) {
	s.ExpectGet(path).
		ReturnHeader("Content-Type", "text/html; charset=utf-8").
		ReturnCode(httpmock.StatusOK).
		Return(body)
}
