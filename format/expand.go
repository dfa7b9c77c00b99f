package format

import (
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/numtide/isorted/config"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

// Sentinel tells isort to read from stdin and write to stdout.
const Sentinel = "-"

const lineEndingFlag = "--line-ending"

// Environ overlays the host variables on top of the process environment.
func Environ(vars map[string]string) expand.Environ {
	pairs := os.Environ()
	for k, v := range vars {
		pairs = append(pairs, k+"="+v)
	}

	return expand.ListEnviron(pairs...)
}

// ExpandCommand expands each token of a command template independently: first a leading `~` or `~user`,
// then `$name` and `${name}` references against the host variables and the environment.
// Unknown variables expand to an empty string.
func ExpandCommand(template []string, env expand.Environ) ([]string, error) {
	cfg := &expand.Config{Env: env}
	parser := syntax.NewParser()

	expanded := make([]string, len(template))

	for i, token := range template {
		word, err := parser.Document(strings.NewReader(expandUser(token)))
		if err != nil {
			return nil, &config.ConfigurationError{
				Name: config.KeyCommand, Reason: fmt.Sprintf("failed to parse '%s'", token), Err: err,
			}
		}

		if expanded[i], err = expand.Document(cfg, word); err != nil {
			return nil, &config.ConfigurationError{
				Name: config.KeyCommand, Reason: fmt.Sprintf("failed to expand '%s'", token), Err: err,
			}
		}
	}

	return expanded, nil
}

// expandUser replaces a leading `~` or `~user` with the matching home directory.
// The path is returned unchanged when the home directory cannot be determined.
func expandUser(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	end := len(path)

	for i := 1; i < len(path); i++ {
		if os.IsPathSeparator(path[i]) {
			end = i

			break
		}
	}

	var (
		home string
		err  error
	)

	if name := path[1:end]; name == "" {
		home, err = os.UserHomeDir()
	} else {
		var u *user.User
		if u, err = user.Lookup(name); err == nil {
			home = u.HomeDir
		}
	}

	if err != nil || home == "" {
		return path
	}

	return home + path[end:]
}

// CommandLine builds the full formatter invocation: the expanded template, the option flags, unix line endings
// unless configured otherwise, and the stdin/stdout sentinel.
func CommandLine(resolved *config.Resolved, env expand.Environ) ([]string, error) {
	args, err := ExpandCommand(resolved.Command, env)
	if err != nil {
		return nil, err
	}

	args = append(args, resolved.Options...)

	// buffers always use \n internally
	if !containsFlag(resolved.Options, lineEndingFlag) {
		args = append(args, lineEndingFlag, "\n")
	}

	return append(args, Sentinel), nil
}

func containsFlag(options []string, flag string) bool {
	for _, opt := range options {
		if opt == flag || strings.HasPrefix(opt, flag+"=") {
			return true
		}
	}

	return false
}
