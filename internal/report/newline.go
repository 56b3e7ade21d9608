package report

import (
	"fmt"
	"runtime"
)

const (
	// NewlineDOS ends the lines with \r\n.
	NewlineDOS = "dos"
	// NewlineMac ends the lines with \r.
	NewlineMac = "mac"
	// NewlineUnix ends the lines with \n.
	NewlineUnix = "unix"
	// NewlineSystem ends the lines with the newline of the platform.
	NewlineSystem = "system"
)

// Newline returns the line ending of a newline mode.
func Newline(mode string) (string, error) {
	switch mode {
	case NewlineDOS:
		return "\r\n", nil

	case NewlineMac:
		return "\r", nil

	case NewlineUnix:
		return "\n", nil

	case NewlineSystem, "":
		if runtime.GOOS == "windows" {
			return "\r\n", nil
		}

		return "\n", nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownNewline, mode)
}
