package report

var _ error = (*Error)(nil)

const (
	// ErrUnknownNewline indicates that the newline mode is not one of dos, mac, unix or system.
	ErrUnknownNewline = Error("unknown newline mode")
	// ErrUnknownSummary indicates that the summary format is not supported.
	ErrUnknownSummary = Error("unknown summary format")
	// ErrUnsupportedExport indicates that the export file extension is not supported.
	ErrUnsupportedExport = Error("unsupported export format")
)

// Error is a report error.
type Error string

// Error implements the error interface.
func (e Error) Error() string {
	return string(e)
}
