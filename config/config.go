package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// SettingsFileName is the name of the global settings file.
	SettingsFileName = "isorted.toml"

	// DefaultTimeout bounds a single formatter invocation.
	DefaultTimeout = 10 * time.Second
)

// ProjectFileNames are searched for upwards from the working directory when no project file is given.
var ProjectFileNames = []string{".isorted-project.toml", "isorted-project.toml"}

// Config holds the options of the command line host.
type Config struct {
	ClearCache      bool          `mapstructure:"clear-cache"`
	DefaultEncoding string        `mapstructure:"default-encoding"`
	Encoding        string        `mapstructure:"encoding"`
	FailOnChange    bool          `mapstructure:"fail-on-change"`
	NoCache         bool          `mapstructure:"no-cache"`
	OnSave          bool          `mapstructure:"on-save"`
	ProjectFile     string        `mapstructure:"project-file"`
	Quiet           bool          `mapstructure:"quiet"`
	SettingsFile    string        `mapstructure:"settings-file"`
	Stdin           bool          `mapstructure:"stdin"`
	Timeout         time.Duration `mapstructure:"timeout"`
	Verbose         uint8         `mapstructure:"verbose"`
	WorkingDir      string        `mapstructure:"working-dir"`
}

// SetFlags appends our flags to the provided flag set.
// Flag names match the mapstructure tags in Config.
func SetFlags(fs *pflag.FlagSet) {
	fs.BoolP(
		"clear-cache", "c", false,
		"Reset the sorted files cache before running. (env $ISORTED_CLEAR_CACHE)",
	)
	fs.String(
		"default-encoding", "",
		"Encoding to fall back to when neither the buffer nor a coding comment declares one. "+
			"(env $ISORTED_DEFAULT_ENCODING)",
	)
	fs.String(
		"encoding", "",
		"Encoding of the files being sorted, overriding detection. (env $ISORTED_ENCODING)",
	)
	fs.Bool(
		"fail-on-change", false,
		"Exit with error if any changes were made. Useful for CI. (env $ISORTED_FAIL_ON_CHANGE)",
	)
	fs.Bool(
		"no-cache", false,
		"Ignore the sorted files cache entirely. (env $ISORTED_NO_CACHE)",
	)
	fs.Bool(
		"on-save", false,
		"Behave like the pre-save hook, only sorting when isort_on_save is enabled. (env $ISORTED_ON_SAVE)",
	)
	fs.String(
		"project-file", "",
		"Load project overrides from the given path (defaults to searching upwards for "+
			strings.Join(ProjectFileNames, " or ")+"). (env $ISORTED_PROJECT_FILE)",
	)
	fs.BoolP(
		"quiet", "q", false,
		"Only log errors. (env $ISORTED_QUIET)",
	)
	fs.String(
		"settings-file", "",
		"Load the global settings from the given path (defaults to "+SettingsFileName+
			" in the user config directory). (env $ISORTED_SETTINGS_FILE)",
	)
	fs.Bool(
		"stdin", false,
		"Sort the content passed in via stdin and write the result to stdout.",
	)
	fs.Duration(
		"timeout", DefaultTimeout,
		"Maximum time a single isort invocation may take. (env $ISORTED_TIMEOUT)",
	)
	fs.CountP(
		"verbose", "v",
		"Set the verbosity of logs e.g. -vv. (env $ISORTED_VERBOSE)",
	)
	fs.StringP(
		"working-dir", "C", ".",
		"Run as if isorted was started in the specified working directory. (env $ISORTED_WORKING_DIR)",
	)
}

// NewViper creates a Viper instance with env overrides enabled under the `ISORTED_` prefix,
// mapping `-` in flag names to `_` e.g. `fail-on-change` => `ISORTED_FAIL_ON_CHANGE`.
func NewViper() (*viper.Viper, error) {
	v := viper.New()

	v.SetEnvPrefix("isorted")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// stdin is a property of how we are invoked, never of the environment
	if err := os.Unsetenv("ISORTED_STDIN"); err != nil {
		return nil, fmt.Errorf("failed to unset ISORTED_STDIN: %w", err)
	}

	return v, nil
}

// FromViper takes a viper instance and produces a Config instance, resolving the settings and project file paths.
func FromViper(v *viper.Viper) (*Config, error) {
	var err error

	cfg := &Config{}

	if err = v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.WorkingDir, err = filepath.Abs(cfg.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for working directory: %w", err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	l := log.WithPrefix("config")

	if cfg.SettingsFile == "" {
		// a missing global settings file is not an error, isort_command may come from the project file
		if path, err := xdg.SearchConfigFile(filepath.Join("isorted", SettingsFileName)); err == nil {
			cfg.SettingsFile = path
		} else {
			l.Debugf("no global settings file found: %v", err)
		}
	}

	if cfg.ProjectFile == "" {
		if path, _, err := FindUp(cfg.WorkingDir, ProjectFileNames...); err == nil {
			cfg.ProjectFile = path
		} else {
			l.Debugf("no project file found: %v", err)
		}
	}

	l.Debugf("settings file = %s", cfg.SettingsFile)
	l.Debugf("project file = %s", cfg.ProjectFile)

	return cfg, nil
}

// Resolver returns a Resolver reading the configured settings and project files.
func (c *Config) Resolver() *Resolver {
	return &Resolver{
		Global:  &GlobalSettings{Path: c.SettingsFile},
		Project: &ProjectSettings{Path: c.ProjectFile},
	}
}

// FindUp searches searchDir and its parents for the first of fileNames, returning its path and directory.
func FindUp(searchDir string, fileNames ...string) (path string, dir string, err error) {
	for _, dir := range eachDir(searchDir) {
		for _, f := range fileNames {
			path := filepath.Join(dir, f)
			if fileExists(path) {
				return path, dir, nil
			}
		}
	}

	return "", "", fmt.Errorf("could not find %s in %s", fileNames, searchDir)
}

func eachDir(path string) (paths []string) {
	path, err := filepath.Abs(path)
	if err != nil {
		return
	}

	for {
		paths = append(paths, path)

		parent := filepath.Dir(path)
		if parent == path {
			return
		}

		path = parent
	}
}

func fileExists(path string) bool {
	// Some broken filesystems like SSHFS return file information on stat() but
	// then cannot open the file. So we use os.Open.
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return false
	}

	return fi.Mode().IsRegular()
}
