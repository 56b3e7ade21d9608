package crawler

var _ error = (*Error)(nil)

const (
	// ErrInvalidNumWorkers indicates that the pool is configured with less than one worker.
	ErrInvalidNumWorkers = Error("number of workers must be greater than 0")
	// ErrPoolClosed indicates that the pool has been closed and will not deliver tasks anymore.
	ErrPoolClosed = Error("pool closed")
	// ErrTaskPanicked indicates that the execution of a task panicked.
	ErrTaskPanicked = Error("task panicked")
)

// Error is a crawler error.
type Error string

// Error implements the error interface.
func (e Error) Error() string {
	return string(e)
}
