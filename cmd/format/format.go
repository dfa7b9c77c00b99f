package format

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/numtide/isorted/cache"
	"github.com/numtide/isorted/config"
	"github.com/numtide/isorted/editor"
	"github.com/numtide/isorted/format"
	"github.com/numtide/isorted/git"
	"github.com/numtide/isorted/stats"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"mvdan.cc/sh/v3/interp"
)

var (
	ErrFailOnChange       = errors.New("unexpected changes detected, --fail-on-change is enabled")
	ErrFormattingFailures = errors.New("failed to sort one or more files")
)

// runner carries what every file needs while being processed.
type runner struct {
	cfg        *config.Config
	statz      *stats.Stats
	dispatcher *format.Dispatcher
	window     *editor.StaticWindow

	sorted   *cache.Sorted
	cacheKey string

	log *log.Logger
}

func Run(v *viper.Viper, statz *stats.Stats, cmd *cobra.Command, paths []string) error {
	cmd.SilenceUsage = true

	cfg, err := config.FromViper(v)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// for stdin, the optional path names the buffer for enablement, working directory and variables
	if cfg.Stdin && len(paths) > 1 {
		return errors.New("at most one path may be specified when using the --stdin flag")
	}

	r := &runner{
		cfg:   cfg,
		statz: statz,
		log:   log.WithPrefix("cli"),
	}

	resolver := cfg.Resolver()

	// errors are logged along with the path of the file once they reach us
	reporter := format.ReporterFunc(func(err error) {
		r.log.Debugf("dispatch failed: %v", err)
	})

	r.dispatcher = format.NewDispatcher(resolver, format.NewInvoker(cfg.Timeout, cfg.DefaultEncoding), reporter)

	// the window folder is the enclosing git worktree, falling back to the working directory
	folder, err := git.ProjectRoot(cfg.WorkingDir)
	if err != nil {
		r.log.Warnf("failed to detect git worktree: %v", err)
	}

	if folder == "" {
		folder = cfg.WorkingDir
	}

	r.window = &editor.StaticWindow{
		Project: cfg.ProjectFile,
		Dirs:    []string{folder},
	}

	// create an app context and listen for shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Stdin {
		return r.runStdin(ctx, cmd, paths)
	}

	if cfg.ClearCache {
		if err = cache.Remove(cfg.WorkingDir); err != nil {
			r.log.Warnf("failed to clear cache: %v", err)
		}
	}

	// the cache is keyed on the command line, which needs settings that resolve.
	// if they don't, every file reports the error anyway.
	if !cfg.NoCache {
		if resolved, err := resolver.Resolve(); err == nil {
			r.openCache(resolved)
		}
	}

	defer func() {
		if r.sorted == nil {
			return
		}

		if err := r.sorted.Close(); err != nil {
			r.log.Errorf("failed to close cache: %v", err)
		}
	}()

	if len(paths) == 0 {
		paths = []string{"."}
	}

	files, err := collectFiles(paths)
	if err != nil {
		return err
	}

	// we don't want a cancel clause, in order to let every file run up to the end.
	var eg errgroup.Group

	eg.SetLimit(runtime.NumCPU())

	for _, path := range files {
		eg.Go(func() error {
			if err := r.processFile(ctx, path); err != nil {
				r.statz.Add(stats.Failed, 1)
				r.log.Error("failed to sort", "path", path, "err", err)
			}

			return nil
		})
	}

	_ = eg.Wait()

	if !cfg.Quiet {
		statz.Print(cmd.OutOrStdout())
	}

	if statz.Value(stats.Failed) > 0 {
		return ErrFormattingFailures
	}

	if cfg.FailOnChange && statz.Value(stats.Changed) > 0 {
		return ErrFailOnChange
	}

	return nil
}

func (r *runner) openCache(resolved *config.Resolved) {
	db, err := cache.Open(r.cfg.WorkingDir)
	if err != nil {
		// if we can't open the cache, we log a warning and fallback to no cache
		r.log.Warnf("failed to open cache: %v", err)

		return
	}

	r.sorted = cache.NewSorted(db)
	r.cacheKey = cache.Hash(
		[]byte(strings.Join(resolved.Command, "\x00")),
		[]byte(strings.Join(resolved.Options, "\x00")),
		[]byte(r.cfg.Encoding),
		[]byte(r.cfg.DefaultEncoding),
		[]byte(r.formatterVersion(resolved)),
	)
}

// formatterVersion identifies the formatter executable the command resolves to by its expanded command line,
// path, size and modification time, so that an upgraded or relocated formatter invalidates the cache.
// It returns "" when the executable cannot be found, in which case every run reports the error anyway.
func (r *runner) formatterVersion(resolved *config.Resolved) string {
	env := format.Environ(r.window.Variables())

	args, err := format.ExpandCommand(resolved.Command, env)
	if err != nil || len(args) == 0 {
		return ""
	}

	executable, err := interp.LookPathDir(r.cfg.WorkingDir, env, args[0])
	if err != nil {
		r.log.Debugf("failed to find formatter executable %s: %v", args[0], err)

		return ""
	}

	parts := append(args, executable)

	// the link itself and whatever it points to, virtualenvs are usually symlinks into the interpreter
	for _, stat := range []func(string) (os.FileInfo, error){os.Lstat, os.Stat} {
		info, err := stat(executable)
		if err != nil {
			r.log.Debugf("failed to stat formatter executable %s: %v", executable, err)

			return ""
		}

		parts = append(parts, fmt.Sprintf("%d:%d", info.Size(), info.ModTime().UnixNano()))
	}

	return strings.Join(parts, "\x00")
}

// processFile sorts a single file in place, recording it in the cache once sorted.
func (r *runner) processFile(ctx context.Context, path string) error {
	r.statz.Add(stats.Processed, 1)

	f, err := readFile(r.cfg, r.window, path)
	if err != nil {
		return err
	}

	if !r.dispatcher.IsEnabled(f.buffer) {
		r.log.Debugf("not a python file: %s", path)
		r.statz.Add(stats.Skipped, 1)

		return nil
	}

	if r.sorted != nil {
		if ok, err := r.sorted.IsSorted(path, f.content, r.cacheKey); err != nil {
			r.log.Warn(err)
		} else if ok {
			r.statz.Add(stats.Skipped, 1)

			return nil
		}
	}

	result, err := r.dispatch(ctx, f.buffer)
	if err != nil {
		return err
	} else if result == nil {
		r.statz.Add(stats.Skipped, 1)

		return nil
	}

	r.statz.Add(stats.Formatted, 1)

	content := f.content

	if result.Changed {
		r.statz.Add(stats.Changed, 1)
		r.logChange(path)

		if content, err = f.encoded(); err != nil {
			return err
		} else if err = os.WriteFile(path, content, f.mode); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	if r.sorted != nil {
		if err = r.sorted.Record(path, content, r.cacheKey); err != nil {
			r.log.Warnf("failed to update cache: %v", err)
		}
	}

	return nil
}

func (r *runner) runStdin(ctx context.Context, cmd *cobra.Command, paths []string) error {
	input, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}

	var path string
	if len(paths) == 1 {
		if path, err = filepath.Abs(paths[0]); err != nil {
			return fmt.Errorf("failed to get absolute path for %s: %w", paths[0], err)
		}
	}

	r.statz.Add(stats.Processed, 1)

	output := input

	// whatever happens, the caller gets a buffer back on stdout
	defer func() {
		if _, err := cmd.OutOrStdout().Write(output); err != nil {
			r.log.Errorf("failed to write stdout: %v", err)
		}
	}()

	f, err := loadBuffer(r.cfg, r.window, path, input)
	if err != nil {
		r.statz.Add(stats.Failed, 1)

		return err
	}

	result, err := r.dispatch(ctx, f.buffer)
	if err != nil {
		r.statz.Add(stats.Failed, 1)

		return err
	} else if result == nil {
		r.statz.Add(stats.Skipped, 1)

		return nil
	}

	r.statz.Add(stats.Formatted, 1)

	if !result.Changed {
		return nil
	}

	r.statz.Add(stats.Changed, 1)

	if output, err = f.encoded(); err != nil {
		output = input

		return err
	}

	if r.cfg.FailOnChange {
		return ErrFailOnChange
	}

	return nil
}

func (r *runner) dispatch(ctx context.Context, buffer *editor.Buffer) (*format.Result, error) {
	if r.cfg.OnSave {
		return r.dispatcher.OnBeforeSave(ctx, buffer) //nolint:wrapcheck
	}

	return r.dispatcher.Execute(ctx, buffer) //nolint:wrapcheck
}

func (r *runner) logChange(path string) {
	logMethod := r.log.Debug
	if r.cfg.FailOnChange {
		// surface the changed file more obviously
		logMethod = r.log.Error
	}

	logMethod("file has changed", "path", path)
}
