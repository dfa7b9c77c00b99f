package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/numtide/isorted/config"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func newConfig(t *testing.T, args ...string) *config.Config {
	t.Helper()

	as := require.New(t)

	v, err := config.NewViper()
	as.NoError(err)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.SetFlags(fs)
	as.NoError(fs.Parse(args))
	as.NoError(v.BindPFlags(fs))

	cfg, err := config.FromViper(v)
	as.NoError(err)

	return cfg
}

func TestFromViperDefaults(t *testing.T) {
	as := require.New(t)

	// isolate from the user's own config
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()

	dir := t.TempDir()

	cfg := newConfig(t, "--working-dir", dir)
	as.Equal(dir, cfg.WorkingDir)
	as.Equal(config.DefaultTimeout, cfg.Timeout)
	as.Empty(cfg.ProjectFile)
	as.False(cfg.Stdin)
	as.False(cfg.FailOnChange)
}

func TestFromViperFlagsAndEnv(t *testing.T) {
	as := require.New(t)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()
	t.Setenv("ISORTED_FAIL_ON_CHANGE", "true")
	t.Setenv("ISORTED_DEFAULT_ENCODING", "latin-1")

	cfg := newConfig(t, "--timeout", "3s", "-vv", "--encoding", "utf-8", "--working-dir", t.TempDir())
	as.Equal(3*time.Second, cfg.Timeout)
	as.Equal(uint8(2), cfg.Verbose)
	as.Equal("utf-8", cfg.Encoding)
	as.Equal("latin-1", cfg.DefaultEncoding)
	as.True(cfg.FailOnChange)
}

func TestFromViperFindsFiles(t *testing.T) {
	as := require.New(t)

	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	xdg.Reload()

	settingsPath := filepath.Join(configHome, "isorted", config.SettingsFileName)
	as.NoError(os.MkdirAll(filepath.Dir(settingsPath), 0o755))
	as.NoError(os.WriteFile(settingsPath, []byte(`isort_command = "isort"`), 0o600))

	root := t.TempDir()
	projectPath := writeFile(t, root, ".isorted-project.toml", "[settings]\n")

	nested := filepath.Join(root, "a", "b")
	as.NoError(os.MkdirAll(nested, 0o755))

	cfg := newConfig(t, "--working-dir", nested)
	as.Equal(projectPath, cfg.ProjectFile)
	as.Equal(settingsPath, cfg.SettingsFile)

	// explicit paths are left alone
	cfg = newConfig(t, "--working-dir", nested, "--project-file", "p.toml", "--settings-file", "s.toml")
	as.Equal("p.toml", cfg.ProjectFile)
	as.Equal("s.toml", cfg.SettingsFile)
}

func TestFindUp(t *testing.T) {
	as := require.New(t)

	root := t.TempDir()
	nested := filepath.Join(root, "x", "y")
	as.NoError(os.MkdirAll(nested, 0o755))

	_, _, err := config.FindUp(nested, "marker.toml")
	as.Error(err)

	path := writeFile(t, root, "marker.toml", "")

	found, dir, err := config.FindUp(nested, "other.toml", "marker.toml")
	as.NoError(err)
	as.Equal(path, found)
	as.Equal(root, dir)
}
