package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

const (
	// KeyCommand is the setting holding the formatter invocation template.
	KeyCommand = "isort_command"
	// KeyOnSave is the setting enabling formatting before save.
	KeyOnSave = "isort_on_save"

	keyOptions       = "options"
	keySettings      = "settings"
	keyPlugin        = "isorted"
	flatPluginPrefix = keyPlugin + "."
)

// controlKeys are settings consumed by isorted itself rather than passed to the formatter.
var controlKeys = []string{KeyCommand, KeyOnSave}

// SettingsProvider supplies one layer of settings.
type SettingsProvider interface {
	Settings() (*Settings, error)
}

// GlobalSettings reads the plugin defaults file.
//
// The control keys are read from the top level and an [options] table is flattened on top of them:
//
//	isort_command = ["python", "-m", "isort"]
//	isort_on_save = true
//
//	[options]
//	profile = "black"
//
// An empty Path or a missing file provide no settings.
type GlobalSettings struct {
	Path string
}

func (g *GlobalSettings) Settings() (*Settings, error) {
	settings := NewSettings()

	raw, keys, err := decodeFile(g.Path)
	if err != nil || raw == nil {
		return settings, err
	}

	for _, name := range controlKeys {
		if v, ok := raw[name]; ok {
			settings.Set(name, v)
		}
	}

	for _, key := range keys {
		if len(key) == 2 && key[0] == keyOptions {
			settings.Set(key[1], lookup(raw, key))
		}
	}

	return settings, nil
}

// ProjectSettings reads project level overrides from the [settings] table of a project file.
// Overrides are given either as flat keys prefixed with "isorted." or in a nested isorted table, whose own
// options table is flattened:
//
//	[settings]
//	"isorted.isort_on_save" = true
//
//	[settings.isorted]
//	isort_command = "~/.venv/bin/isort"
//
//	[settings.isorted.options]
//	line_length = 100
//
// An empty Path or a missing file provide no settings.
type ProjectSettings struct {
	Path string
}

func (p *ProjectSettings) Settings() (*Settings, error) {
	settings := NewSettings()

	raw, keys, err := decodeFile(p.Path)
	if err != nil || raw == nil {
		return settings, err
	}

	for _, key := range keys {
		if len(key) < 2 || key[0] != keySettings {
			continue
		}

		name := key[1]

		switch {
		case len(key) == 2 && strings.HasPrefix(name, flatPluginPrefix) && len(name) > len(flatPluginPrefix):
			settings.Set(strings.TrimPrefix(name, flatPluginPrefix), lookup(raw, key))

		case len(key) == 3 && name == keyPlugin:
			value := lookup(raw, key)
			if _, isTable := value.(map[string]any); key[2] == keyOptions && isTable {
				// flattened below
				continue
			}

			settings.Set(key[2], value)

		case len(key) == 4 && name == keyPlugin && key[2] == keyOptions:
			settings.Set(key[3], lookup(raw, key))
		}
	}

	return settings, nil
}

// StaticSettings provides a fixed set of settings.
type StaticSettings struct {
	Values *Settings
}

func (s *StaticSettings) Settings() (*Settings, error) {
	if s.Values == nil {
		return NewSettings(), nil
	}

	return s.Values.Clone(), nil
}

// decodeFile decodes a toml file, returning its data and its keys in document order.
func decodeFile(path string) (map[string]any, []toml.Key, error) {
	if path == "" {
		return nil, nil, nil
	}

	var raw map[string]any

	md, err := toml.DecodeFile(path, &raw)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debugf("settings file not found: %s", path)

		return nil, nil, nil
	} else if err != nil {
		return nil, nil, &ConfigurationError{Reason: fmt.Sprintf("failed to read settings file %s", path), Err: err}
	}

	return raw, md.Keys(), nil
}

// lookup walks the nested tables of raw following key.
func lookup(raw map[string]any, key toml.Key) any {
	var current any = raw

	for _, part := range key {
		table, ok := current.(map[string]any)
		if !ok {
			return nil
		}

		current = table[part]
	}

	return current
}
