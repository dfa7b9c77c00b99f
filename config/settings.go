package config

import (
	"maps"
	"slices"
)

// Settings maps setting names to their raw values, remembering the order names were first set in.
// Option flags are emitted in this order.
type Settings struct {
	keys   []string
	values map[string]any
}

// NewSettings returns empty Settings.
func NewSettings() *Settings {
	return &Settings{values: make(map[string]any)}
}

// SettingsOf builds Settings from alternating name and value arguments, e.g. SettingsOf("profile", "black").
// It panics on an odd number of arguments or a non string name, and is meant for fixtures.
func SettingsOf(pairs ...any) *Settings {
	if len(pairs)%2 != 0 {
		panic("config: SettingsOf requires name/value pairs")
	}

	s := NewSettings()

	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			panic("config: SettingsOf names must be strings")
		}

		s.Set(name, pairs[i+1])
	}

	return s
}

// Set assigns value to name. An existing name keeps its position.
func (s *Settings) Set(name string, value any) {
	if _, ok := s.values[name]; !ok {
		s.keys = append(s.keys, name)
	}

	s.values[name] = value
}

// Get returns the raw value for name.
func (s *Settings) Get(name string) (any, bool) {
	v, ok := s.values[name]

	return v, ok
}

// Delete removes name.
func (s *Settings) Delete(name string) {
	if _, ok := s.values[name]; !ok {
		return
	}

	delete(s.values, name)
	s.keys = slices.DeleteFunc(s.keys, func(k string) bool { return k == name })
}

// Keys returns the names in order.
func (s *Settings) Keys() []string {
	return slices.Clone(s.keys)
}

// Len returns the number of settings.
func (s *Settings) Len() int {
	return len(s.keys)
}

// Merge applies other on top of s, values in other winning.
func (s *Settings) Merge(other *Settings) {
	if other == nil {
		return
	}

	for _, k := range other.keys {
		s.Set(k, other.values[k])
	}
}

// Clone returns a shallow copy.
func (s *Settings) Clone() *Settings {
	return &Settings{
		keys:   slices.Clone(s.keys),
		values: maps.Clone(s.values),
	}
}
