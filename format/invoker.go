package format

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/numtide/isorted/config"
	"github.com/numtide/isorted/editor"
	ilog "github.com/numtide/isorted/internal/log"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

// waitDelay bounds how long we wait for the output pipes to close once the formatter has been killed.
const waitDelay = time.Second

// Invoker pipes a buffer through the formatter and splices the result back in.
type Invoker struct {
	// Timeout bounds a single formatter run.
	Timeout time.Duration
	// DefaultEncoding is used when neither the host nor a magic comment declares an encoding.
	DefaultEncoding string

	log *log.Logger
}

// NewInvoker creates an Invoker. A non-positive timeout selects config.DefaultTimeout.
func NewInvoker(timeout time.Duration, defaultEncoding string) *Invoker {
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}

	return &Invoker{
		Timeout:         timeout,
		DefaultEncoding: defaultEncoding,
		log:             log.WithPrefix("format"),
	}
}

// Result describes a completed run.
type Result struct {
	// Args is the command line the formatter was invoked with.
	Args []string
	// Encoding is the name of the encoding used to talk to the formatter.
	Encoding string
	// Changed is true when the buffer contents were replaced with different text.
	Changed bool
	// Elapsed is how long the formatter took.
	Elapsed time.Duration
}

// Run formats the view. On any error the buffer and its selections are left exactly as they were.
func (i *Invoker) Run(ctx context.Context, view editor.View, resolved *config.Resolved) (*Result, error) {
	selections := view.Selections()
	text := view.Text()

	encName := DetectEncoding(view.Encoding(), text, i.DefaultEncoding)

	enc, err := Codec(encName)
	if err != nil {
		return nil, err
	}

	env := Environ(Variables(view))

	args, err := CommandLine(resolved, env)
	if err != nil {
		return nil, err
	}

	input, err := Encode(enc, text)
	if err != nil {
		return nil, fmt.Errorf("failed to encode buffer as %s: %w", encName, err)
	}

	start := time.Now()

	stdout, err := i.exec(ctx, args, WorkingDir(view), env, input)
	if err != nil {
		var fmtErr *FormatterError
		if errors.As(err, &fmtErr) {
			// decode the diagnostic so it reads correctly in the error message
			if stderr, decodeErr := Decode(enc, []byte(fmtErr.Stderr)); decodeErr == nil {
				fmtErr.Stderr = stderr
			}
		}

		return nil, err
	}

	out, err := Decode(enc, stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode formatter output as %s: %w", encName, err)
	}

	if runtime.GOOS == "windows" {
		out = strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(out)
	}

	result := &Result{
		Args:     args,
		Encoding: encName,
		Changed:  out != text,
		Elapsed:  time.Since(start),
	}

	if result.Changed {
		view.Replace(out)
		// the replacement invalidates the selections, put them back where they were
		view.SetSelections(selections)
	}

	i.log.Debug("formatted", "file", view.FileName(), "changed", result.Changed, "elapsed", result.Elapsed)

	return result, nil
}

// exec runs the formatter with input on stdin, returning its stdout.
func (i *Invoker) exec(ctx context.Context, args []string, dir string, env expand.Environ, input []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("formatter cancelled: %w", err)
	}

	lookupDir := dir
	if lookupDir == "" {
		lookupDir, _ = os.Getwd()
	}

	executable, err := interp.LookPathDir(lookupDir, env, args[0])
	if err != nil {
		return nil, &SpawnError{Executable: args[0], Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, i.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, executable, args[1:]...) //nolint:gosec
	cmd.Dir = dir
	cmd.SysProcAttr = sysProcAttr()
	// replace the default Cancel handler so the whole process group is killed
	cmd.Cancel = func() error {
		return killProcess(cmd.Process)
	}
	cmd.WaitDelay = waitDelay
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = io.MultiWriter(&stderr, &ilog.Writer{Log: i.log, Level: log.DebugLevel})

	i.log.Debugf("executing: %s", cmd.String())

	if err = cmd.Start(); err != nil {
		return nil, &SpawnError{Executable: executable, Err: err}
	}

	err = cmd.Wait()

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		i.log.Errorf("killed %s after %v", executable, i.Timeout)

		return nil, &TimeoutError{Timeout: i.Timeout}
	case ctx.Err() != nil:
		return nil, fmt.Errorf("formatter cancelled: %w", ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil, &FormatterError{ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
	} else if err != nil {
		return nil, fmt.Errorf("failed to wait for formatter: %w", err)
	}

	if stderr.Len() > 0 {
		return nil, &FormatterError{Stderr: stderr.String()}
	}

	return stdout.Bytes(), nil
}

// WorkingDir is the directory of the file backing the view, falling back to the first folder of its window.
// It returns "" when neither is available.
func WorkingDir(view editor.View) string {
	if name := view.FileName(); name != "" {
		return filepath.Dir(name)
	}

	if w := view.Window(); w != nil {
		if folders := w.Folders(); len(folders) > 0 {
			return folders[0]
		}
	}

	return ""
}

// Variables returns the host path variables for the view.
func Variables(view editor.View) map[string]string {
	if w := view.Window(); w != nil {
		return w.Variables()
	}

	return editor.WindowVariables(view.FileName(), "", "")
}
