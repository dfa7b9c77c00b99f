package format

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrSpawn matches every SpawnError with errors.Is.
	ErrSpawn = errors.New("spawn error")
	// ErrFormatter matches every FormatterError with errors.Is.
	ErrFormatter = errors.New("formatter error")
	// ErrTimeout matches every TimeoutError with errors.Is.
	ErrTimeout = errors.New("timeout error")
)

const (
	spawnHint = "isorted: You may need to install isort and/or configure 'isort_command' in isorted's settings."

	// isortErrorPrefix is how isort prefixes its own diagnostics on stderr.
	isortErrorPrefix = "isort: error: "
)

// SpawnError is returned when the formatter executable could not be found or started.
type SpawnError struct {
	Executable string
	Err        error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v\n\n%s", e.Executable, e.Err, spawnHint)
}

func (e *SpawnError) Is(target error) bool {
	return target == ErrSpawn
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// FormatterError is returned when the formatter exited with a non-zero status or wrote to stderr.
type FormatterError struct {
	ExitCode int
	// Stderr is the raw diagnostic output of the formatter.
	Stderr string
}

func (e *FormatterError) Error() string {
	msg := e.Message()
	if msg == "" {
		msg = fmt.Sprintf("exited with status %d", e.ExitCode)
	}

	return "isort: " + msg
}

// Message returns the formatter's own diagnostic, trimmed to the text following isort's error prefix.
func (e *FormatterError) Message() string {
	parts := strings.Split(e.Stderr, isortErrorPrefix)

	return strings.TrimSpace(parts[len(parts)-1])
}

func (e *FormatterError) Is(target error) bool {
	return target == ErrFormatter
}

// TimeoutError is returned when the formatter did not complete in time. The process is killed.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("isort: did not complete within %v", e.Timeout)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
