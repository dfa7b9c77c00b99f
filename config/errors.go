package config

import (
	"errors"
	"fmt"
)

// ErrConfiguration matches every ConfigurationError with errors.Is.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError is returned when the settings cannot be turned into a valid command line.
// It is always fatal to the current invocation and is raised before any process is spawned.
type ConfigurationError struct {
	// Name of the offending setting, if any.
	Name string
	// Reason is the user facing message.
	Reason string
	// Err is the underlying cause, if any.
	Err error
}

func (e *ConfigurationError) Error() string {
	msg := "isorted: " + e.Reason
	if e.Name != "" {
		msg = fmt.Sprintf("%s (setting '%s')", msg, e.Name)
	}

	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

const (
	reasonCommand    = "'isort_command' not properly configured. Problem with settings?"
	reasonName       = "settings names not properly configured."
	reasonValue      = "only boolean, strings, numbers and list of strings and numbers allowed in settings."
	reasonOnSave     = "'isort_on_save' must be a boolean."
	reasonListValues = "lists in settings must hold only strings or only numbers."
)
