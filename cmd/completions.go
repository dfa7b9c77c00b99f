package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func generateShellCompletions(cmd *cobra.Command, shell string, out io.Writer) error {
	var err error

	switch shell {
	case "bash":
		err = cmd.Root().GenBashCompletion(out)
	case "zsh":
		err = cmd.Root().GenZshCompletion(out)
	case "fish":
		err = cmd.Root().GenFishCompletion(out, true)
	default:
		err = fmt.Errorf("unsupported shell: %s", shell)
	}

	if err != nil {
		err = fmt.Errorf("failed to generate shell completions: %w", err)
	}

	return err
}
