package init

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/numtide/isorted/config"
)

// We embed the sample toml file for use with the init flag.
//
//go:embed init.toml
var initBytes []byte

// Run writes a starter settings file into the current directory, refusing to overwrite an existing one.
func Run(out io.Writer) error {
	f, err := os.OpenFile(config.SettingsFileName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", config.SettingsFileName, err)
	}
	defer f.Close()

	if _, err = f.Write(initBytes); err != nil {
		return fmt.Errorf("failed to write %s: %w", config.SettingsFileName, err)
	}

	_, _ = fmt.Fprintf(out, "Generated %s. Now it's your turn to edit it.\n", config.SettingsFileName)

	return nil
}
