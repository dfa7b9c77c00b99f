package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
)

// optionNameRegex restricts option names to lowercase words joined by `_` or `-`.
var optionNameRegex = regexp.MustCompile(`^(?:[a-z]{2}|[a-z][a-z_-]+[a-z])$`)

// Resolved is everything needed to invoke the formatter.
type Resolved struct {
	// Command is the unexpanded command template.
	Command []string
	// Options are the long flags derived from the settings, in settings order.
	Options []string
	// OnSave indicates formatting should run before the buffer is saved.
	OnSave bool
}

// Resolver merges the global and project settings layers.
// Settings are read fresh on every call.
type Resolver struct {
	Global  SettingsProvider
	Project SettingsProvider
}

// Merge reads both layers, project values taking precedence over global ones.
func (r *Resolver) Merge() (*Settings, error) {
	settings := NewSettings()

	for _, provider := range []SettingsProvider{r.Global, r.Project} {
		if provider == nil {
			continue
		}

		layer, err := provider.Settings()
		if err != nil {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}

		settings.Merge(layer)
	}

	return settings, nil
}

// Resolve merges the settings and derives the command template, the option flags and the on save switch.
func (r *Resolver) Resolve() (*Resolved, error) {
	settings, err := r.Merge()
	if err != nil {
		return nil, err
	}

	onSave, err := OnSave(settings)
	if err != nil {
		return nil, err
	}

	command, err := Command(settings)
	if err != nil {
		return nil, err
	}

	options, err := Options(settings)
	if err != nil {
		return nil, err
	}

	log.WithPrefix("config").Debug("resolved settings", "command", command, "options", options, "on_save", onSave)

	return &Resolved{
		Command: command,
		Options: options,
		OnSave:  onSave,
	}, nil
}

// OnSave returns the isort_on_save setting, false when absent.
func OnSave(settings *Settings) (bool, error) {
	raw, ok := settings.Get(KeyOnSave)
	if !ok || raw == nil {
		return false, nil
	}

	switch v := raw.(type) {
	case bool:
		return v, nil
	case Bool:
		return bool(v), nil
	default:
		return false, &ConfigurationError{Name: KeyOnSave, Reason: reasonOnSave, Err: fmt.Errorf("got %T", raw)}
	}
}

// Command returns the isort_command template as a list of tokens.
// It must be a non-empty string or a non-empty list of strings.
func Command(settings *Settings) ([]string, error) {
	invalid := func(err error) error {
		return &ConfigurationError{Name: KeyCommand, Reason: reasonCommand, Err: err}
	}

	raw, ok := settings.Get(KeyCommand)
	if !ok || raw == nil {
		return nil, invalid(nil)
	}

	var command []string

	switch v := raw.(type) {
	case string:
		command = []string{v}
	case []string:
		command = slices.Clone(v)
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, invalid(fmt.Errorf("list item of type %T", item))
			}

			command = append(command, s)
		}
	default:
		return nil, invalid(fmt.Errorf("got %T", raw))
	}

	if len(command) == 0 || slices.Contains(command, "") {
		return nil, invalid(nil)
	}

	return command, nil
}

// Options converts every non-control setting into long flags for the formatter.
// All names are validated before any value is looked at, values are converted one at a time.
func Options(settings *Settings) ([]string, error) {
	var names []string

	for _, name := range settings.Keys() {
		if slices.Contains(controlKeys, name) {
			continue
		}

		if !optionNameRegex.MatchString(name) {
			return nil, &ConfigurationError{Name: name, Reason: reasonName}
		}

		names = append(names, name)
	}

	var options []string

	for _, name := range names {
		raw, _ := settings.Get(name)

		value, err := ValueOf(name, raw)
		if err != nil {
			return nil, err
		}

		args, err := Args(FlagName(name), value)
		if err != nil {
			return nil, fmt.Errorf("failed to build arguments for '%s': %w", name, err)
		}

		options = append(options, args...)
	}

	return options, nil
}

// FlagName returns the long flag for an option name, e.g. force_sort_within_sections becomes
// --force-sort-within-sections.
func FlagName(name string) string {
	return "--" + strings.ReplaceAll(name, "_", "-")
}
