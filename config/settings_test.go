package config_test

import (
	"testing"

	"github.com/numtide/isorted/config"
	"github.com/stretchr/testify/require"
)

func TestSettingsOrder(t *testing.T) {
	as := require.New(t)

	s := config.SettingsOf("b", 1, "a", 2)
	s.Set("c", 3)
	s.Set("b", 4)

	as.Equal([]string{"b", "a", "c"}, s.Keys())

	v, ok := s.Get("b")
	as.True(ok)
	as.Equal(4, v)

	// merging keeps existing positions and appends new names
	s.Merge(config.SettingsOf("d", 5, "a", 6))
	as.Equal([]string{"b", "a", "c", "d"}, s.Keys())

	v, _ = s.Get("a")
	as.Equal(6, v)

	s.Delete("c")
	s.Delete("missing")
	as.Equal([]string{"b", "a", "d"}, s.Keys())
	as.Equal(3, s.Len())

	clone := s.Clone()
	clone.Set("e", 7)
	as.Equal(3, s.Len())
	as.Equal(4, clone.Len())
}

func TestSettingsOfPanics(t *testing.T) {
	require.Panics(t, func() { config.SettingsOf("a") })
	require.Panics(t, func() { config.SettingsOf(1, 2) })
}
