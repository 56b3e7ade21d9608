package logger

import (
	"io"

	"go.uber.org/zap/zapcore"
)

// Level is a log level.
type Level = zapcore.Level

const (
	// DebugLevel is a debug log level.
	DebugLevel = zapcore.DebugLevel
	// ErrorLevel is an error log level.
	ErrorLevel = zapcore.ErrorLevel
)

// Verbosity is how much the application tells about itself.
type Verbosity uint

const (
	// VerbositySilent discards all the log messages.
	VerbositySilent Verbosity = iota
	// VerbosityError logs the errors.
	VerbosityError
	// VerbosityDebug logs everything.
	VerbosityDebug
)

// Config is the configuration for the logger.
type Config struct {
	Output io.Writer
	Level  Level
	// StripTime disables time variance in logger.
	StripTime bool
}

// Config returns the logger configuration of the verbosity.
//
// The silent verbosity writes to io.Discard, the others write to the output.
func (v Verbosity) Config(output io.Writer) Config {
	cfg := Config{
		Output: io.Discard,
		Level:  ErrorLevel,
	}

	if v > VerbositySilent {
		cfg.Output = output
	}

	if v > VerbosityError {
		cfg.Level = DebugLevel
	}

	return cfg
}
