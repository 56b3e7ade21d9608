package cli

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nhatthm/linkcheck/internal/crawl"
	"github.com/nhatthm/linkcheck/internal/logger"
)

// VerbosityLevel is the verbosity level of the application.
type VerbosityLevel = logger.Verbosity

const (
	// VerbosityLevelSilent is the silent verbosity level.
	VerbosityLevelSilent = logger.VerbositySilent
	// VerbosityLevelError is the error verbosity level.
	VerbosityLevelError = logger.VerbosityError
	// VerbosityLevelDebug is the debug verbosity level.
	VerbosityLevelDebug = logger.VerbosityDebug
)

// Config is the configuration of the application.
//
// The flag tag is the name of the field in the validation errors.
type Config struct {
	OutWriter io.Writer `flag:"output" validate:"required"`       // The stream that will receive the status lines.
	ErrWriter io.Writer `flag:"error output" validate:"required"` // The stream that will receive the errors, the stats and all the log messages.

	NumWorkers  int           `flag:"threads" validate:"min=1"`                               // The number of concurrent link checks.
	Timeout     time.Duration `flag:"timeout" validate:"min=0"`                               // The timeout of a link check, 0 means no timeout.
	Internal    crawl.Mode    `flag:"internal" validate:"min=0,max=2"`                        // What to do with the links on the seed host.
	External    crawl.Mode    `flag:"external" validate:"min=0,max=2"`                        // What to do with the links on other hosts.
	NoRedirects bool          `flag:"no-redirects"`                                           // Report the redirect statuses instead of following them.
	PrintAll    bool          `flag:"print-all"`                                              // Print all the checked links, not only the broken ones.
	Quiet       bool          `flag:"quiet"`                                                  // Do not print the stats.
	Newline     string        `flag:"newline" validate:"omitempty,oneof=dos mac unix system"` // The line ending of the status lines.
	Summary     string        `flag:"summary" validate:"omitempty,oneof=text table"`          // The format of the stats.
	Export      string        `flag:"export"`                                                 // The file receiving the broken links, .csv or .json.

	VerbosityLevel VerbosityLevel `flag:"verbosity" validate:"max=2"` // The verbosity level of the tool.
}

// validate checks the configuration and the seed, and returns one error per invalid value.
func validate(cfg Config, seed string) []error {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("flag")
	})

	var errs []error

	if err := v.Struct(cfg); err != nil {
		errs = append(errs, validationErrors(err)...)
	}

	if err := v.Var(seed, "required,url"); err != nil {
		errs = append(errs, validationErrors(err)...)
	}

	return errs
}

func validationErrors(err error) []error {
	var fieldErrs validator.ValidationErrors

	if !errors.As(err, &fieldErrs) {
		return []error{err}
	}

	errs := make([]error, 0, len(fieldErrs))

	for _, fe := range fieldErrs {
		errs = append(errs, validationError(fe))
	}

	return errs
}

// nolint: goerr113 // Error will be printed out.
func validationError(fe validator.FieldError) error {
	field := fe.Field()
	if field == "" {
		field = "seed url"
	}

	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)

	case "min":
		return fmt.Errorf("%s must be at least %s, got %v", field, fe.Param(), fe.Value())

	case "max":
		return fmt.Errorf("%s must be at most %s, got %v", field, fe.Param(), fe.Value())

	case "oneof":
		return fmt.Errorf("%s must be one of %s, got %q", field, strings.Join(strings.Fields(fe.Param()), ", "), fe.Value())

	case "url":
		return fmt.Errorf("%s is not a valid url: %q", field, fe.Value())
	}

	return fmt.Errorf("%s is invalid: %v", field, fe.Value())
}
