package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/numtide/isorted/build"
	"github.com/numtide/isorted/cmd/format"
	_init "github.com/numtide/isorted/cmd/init"
	"github.com/numtide/isorted/config"
	"github.com/numtide/isorted/stats"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewRoot() (*cobra.Command, *stats.Stats) {
	var (
		isortedInit bool
		completion  string
	)

	// create a viper instance for reading in config
	v, err := config.NewViper()
	if err != nil {
		cobra.CheckErr(fmt.Errorf("failed to create viper instance: %w", err))
	}

	// create a new stats instance
	statz := stats.New()

	// create out root command
	cmd := &cobra.Command{
		Use:     build.Name + " <paths...>",
		Short:   "Sort python imports with isort",
		Version: build.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runE(v, statz, cmd, args)
		},
	}

	// update version template
	cmd.SetVersionTemplate("isorted {{.Version}}")

	fs := cmd.Flags()

	// add our config flags to the command's flag set
	config.SetFlags(fs)

	// caching makes no sense when the result goes to stdout
	cmd.MarkFlagsMutuallyExclusive("stdin", "clear-cache")

	// add a couple of special flags which don't have a corresponding entry in Config
	fs.BoolVarP(
		&isortedInit, "init", "i", false,
		"Create an "+config.SettingsFileName+" file in the current directory.",
	)
	fs.StringVar(
		&completion, "completion", "",
		"Print shell completions for the given shell (bash, zsh or fish).",
	)

	// bind our command's flags to viper
	if err := v.BindPFlags(fs); err != nil {
		cobra.CheckErr(fmt.Errorf("failed to bind global config to viper: %w", err))
	}

	return cmd, statz
}

func runE(v *viper.Viper, statz *stats.Stats, cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	if shell, err := flags.GetString("completion"); err != nil {
		return fmt.Errorf("failed to read completion flag: %w", err)
	} else if shell != "" {
		return generateShellCompletions(cmd, shell, cmd.OutOrStdout())
	}

	// change working directory if required
	workingDir, err := filepath.Abs(v.GetString("working-dir"))
	if err != nil {
		return fmt.Errorf("failed to get absolute path for working directory: %w", err)
	} else if err = os.Chdir(workingDir); err != nil {
		return fmt.Errorf("failed to change working directory: %w", err)
	}

	// check if we are running the init command
	if init, err := flags.GetBool("init"); err != nil {
		return fmt.Errorf("failed to read init flag: %w", err)
	} else if init {
		if err := _init.Run(cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("failed to run init command: %w", err)
		}

		return nil
	}

	// configure logging
	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(false)

	if v.GetBool("quiet") {
		// if quiet, we only log errors
		log.SetLevel(log.ErrorLevel)
	} else {
		// otherwise, the verbose flag controls the log level
		switch v.GetInt("verbose") {
		case 0:
			log.SetLevel(log.WarnLevel)
		case 1:
			log.SetLevel(log.InfoLevel)
		default:
			log.SetLevel(log.DebugLevel)
		}
	}

	// sort
	return format.Run(v, statz, cmd, args) //nolint:wrapcheck
}
