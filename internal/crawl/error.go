package crawl

var _ error = (*Error)(nil)

const (
	// ErrInvalidSeed indicates that the seed is not an absolute http or https url.
	ErrInvalidSeed = Error("invalid seed url")
	// ErrOperationCanceled indicates that the crawl was canceled before all the links were checked.
	ErrOperationCanceled = Error("operation canceled")
	// ErrReport indicates that the reporter could not handle a result.
	ErrReport = Error("could not report")
	// ErrUnknownMode indicates that a policy mode is not one of check, ignore or follow.
	ErrUnknownMode = Error("unknown mode")
)

// Error is a crawl error.
type Error string

// Error implements the error interface.
func (e Error) Error() string {
	return string(e)
}
