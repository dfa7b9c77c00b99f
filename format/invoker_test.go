package format_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/numtide/isorted/config"
	"github.com/numtide/isorted/editor"
	"github.com/numtide/isorted/format"
	"github.com/numtide/isorted/test"
	"github.com/stretchr/testify/require"
)

func resolvedFor(isort string, options ...string) *config.Resolved {
	return &config.Resolved{Command: []string{isort}, Options: options}
}

func TestInvokerSorts(t *testing.T) {
	as := require.New(t)

	isort := test.FakeIsort(t)
	invoker := format.NewInvoker(5*time.Second, "")

	selections := []editor.Region{editor.Point(5), {A: 9, B: 15}}
	buf := editor.NewBuffer("import b\nimport a\n", editor.WithSelections(selections...))

	result, err := invoker.Run(context.Background(), buf, resolvedFor(isort))
	as.NoError(err)
	as.True(result.Changed)
	as.Equal("utf-8", result.Encoding)
	as.Equal("import a\nimport b\n", buf.Text())
	as.Equal(selections, buf.Selections(), "selections are restored")
	as.Equal([]string{isort, "--line-ending", "\n", "-"}, result.Args)

	// running again is a no-op
	result, err = invoker.Run(context.Background(), buf, resolvedFor(isort))
	as.NoError(err)
	as.False(result.Changed)
	as.Equal("import a\nimport b\n", buf.Text())
	as.Equal(selections, buf.Selections())
}

func TestInvokerPythonModule(t *testing.T) {
	as := require.New(t)

	// a ["python", "-m", "isort"] style template, with sh standing in for the interpreter
	isort := test.FakeIsort(t)
	args := test.RecordArgs(t)

	resolved := &config.Resolved{
		Command: []string{"sh", isort},
		Options: []string{"--profile", "black", "--known-first-party", "app", "--known-first-party", "lib"},
	}

	buf := editor.NewBuffer("import b\nimport a\n", editor.WithSelections(editor.Point(3)))

	_, err := format.NewInvoker(0, "").Run(context.Background(), buf, resolved)
	as.NoError(err)
	as.Equal("import a\nimport b\n", buf.Text())
	as.Equal([]editor.Region{editor.Point(3)}, buf.Selections())
	as.Equal([]string{
		"--profile", "black",
		"--known-first-party", "app",
		"--known-first-party", "lib",
		"--line-ending", "\n",
		"-",
	}, args())
}

func TestInvokerMissingExecutable(t *testing.T) {
	as := require.New(t)

	buf := editor.NewBuffer("import b\nimport a\n", editor.WithSelections(editor.Point(4)))

	for _, cmd := range []string{"isorted-does-not-exist", filepath.Join(t.TempDir(), "missing", "isort")} {
		_, err := format.NewInvoker(0, "").Run(context.Background(), buf, resolvedFor(cmd))
		as.ErrorIs(err, format.ErrSpawn, cmd)
		as.Equal("import b\nimport a\n", buf.Text())
		as.Equal([]editor.Region{editor.Point(4)}, buf.Selections())
	}
}

func TestInvokerNotExecutable(t *testing.T) {
	test.SkipOnWindows(t)

	path := filepath.Join(t.TempDir(), "isort")
	require.NoError(t, os.WriteFile(path, []byte("not a program"), 0o644))

	buf := editor.NewBuffer("import b\n")

	_, err := format.NewInvoker(0, "").Run(context.Background(), buf, resolvedFor(path))
	require.ErrorIs(t, err, format.ErrSpawn)
	require.Equal(t, "import b\n", buf.Text())
}

func TestInvokerFormatterError(t *testing.T) {
	as := require.New(t)

	isort := test.FakeIsort(t)
	buf := editor.NewBuffer("import b\nimport a\n")

	_, err := format.NewInvoker(0, "").Run(context.Background(), buf, resolvedFor(isort, "--fail"))
	as.ErrorIs(err, format.ErrFormatter)
	as.EqualError(err, "isort: unrecognized arguments: --fail")
	as.Equal("import b\nimport a\n", buf.Text())

	var fmtErr *format.FormatterError
	as.ErrorAs(err, &fmtErr)
	as.Equal(2, fmtErr.ExitCode)
}

func TestInvokerStderrIsFailure(t *testing.T) {
	as := require.New(t)

	isort := test.FakeIsort(t)
	buf := editor.NewBuffer("import b\nimport a\n")

	_, err := format.NewInvoker(0, "").Run(context.Background(), buf, resolvedFor(isort, "--warn"))
	as.ErrorIs(err, format.ErrFormatter)
	as.ErrorContains(err, "Warning: deprecated option")
	as.Equal("import b\nimport a\n", buf.Text())

	var fmtErr *format.FormatterError
	as.ErrorAs(err, &fmtErr)
	as.Equal(0, fmtErr.ExitCode)
}

func TestInvokerTimeout(t *testing.T) {
	as := require.New(t)

	isort := test.FakeIsort(t)
	buf := editor.NewBuffer("import b\nimport a\n")

	start := time.Now()

	_, err := format.NewInvoker(200*time.Millisecond, "").Run(context.Background(), buf, resolvedFor(isort, "--sleep"))
	as.ErrorIs(err, format.ErrTimeout)
	as.Less(time.Since(start), 10*time.Second, "the formatter should have been killed")
	as.Equal("import b\nimport a\n", buf.Text())
}

func TestInvokerCancelled(t *testing.T) {
	isort := test.FakeIsort(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	buf := editor.NewBuffer("import b\n")

	_, err := format.NewInvoker(0, "").Run(ctx, buf, resolvedFor(isort))
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, "import b\n", buf.Text())
}

func TestInvokerMagicCommentEncoding(t *testing.T) {
	as := require.New(t)

	isort := test.FakeIsort(t)

	// no host encoding, the coding declaration decides
	text := "# -*- coding: latin-1 -*-\nimport zlib\nimport café\n"
	buf := editor.NewBuffer(text)

	result, err := format.NewInvoker(0, "").Run(context.Background(), buf, resolvedFor(isort))
	as.NoError(err)
	as.Equal("latin-1", result.Encoding)
	as.Equal("# -*- coding: latin-1 -*-\nimport café\nimport zlib\n", buf.Text())
}

func TestInvokerHostEncoding(t *testing.T) {
	as := require.New(t)

	isort := test.FakeIsort(t)
	buf := editor.NewBuffer("import é\nimport a\n", editor.WithEncoding("Windows-1252"))

	result, err := format.NewInvoker(0, "utf-8").Run(context.Background(), buf, resolvedFor(isort))
	as.NoError(err)
	as.Equal("windows-1252", result.Encoding)
	as.Equal("import a\nimport é\n", buf.Text())

	// a buffer which cannot be represented in its encoding is left alone
	buf = editor.NewBuffer("import 日本\n", editor.WithEncoding("latin-1"))

	_, err = format.NewInvoker(0, "").Run(context.Background(), buf, resolvedFor(isort))
	as.Error(err)
	as.Equal("import 日本\n", buf.Text())
}

func TestInvokerUnknownEncoding(t *testing.T) {
	isort := test.FakeIsort(t)
	buf := editor.NewBuffer("# coding: klingon\nimport a\n")

	_, err := format.NewInvoker(0, "").Run(context.Background(), buf, resolvedFor(isort))
	require.ErrorIs(t, err, config.ErrConfiguration)
}

func TestInvokerWorkingDir(t *testing.T) {
	as := require.New(t)

	isort := test.FakeIsort(t)

	// resolve symlinks, pwd reports the physical path on some platforms
	fileDir, err := filepath.EvalSymlinks(t.TempDir())
	as.NoError(err)

	folder, err := filepath.EvalSymlinks(t.TempDir())
	as.NoError(err)

	window := &editor.StaticWindow{Dirs: []string{folder}}

	// the directory of the file
	buf := editor.NewBuffer("", editor.WithFileName(filepath.Join(fileDir, "module.py")), editor.WithWindow(window))

	_, err = format.NewInvoker(0, "").Run(context.Background(), buf, resolvedFor(isort, "--pwd"))
	as.NoError(err)
	as.Equal(fileDir, strings.TrimSpace(buf.Text()))

	// the first folder for an unsaved buffer
	buf = editor.NewBuffer("", editor.WithWindow(window))

	_, err = format.NewInvoker(0, "").Run(context.Background(), buf, resolvedFor(isort, "--pwd"))
	as.NoError(err)
	as.Equal(folder, strings.TrimSpace(buf.Text()))
}

func TestInvokerExpandsVariables(t *testing.T) {
	as := require.New(t)

	isort := test.FakeIsort(t)

	window := &editor.StaticWindow{
		Dirs:  []string{t.TempDir()},
		Extra: map[string]string{"isort_bin": filepath.Dir(isort)},
	}

	buf := editor.NewBuffer("import b\nimport a\n", editor.WithWindow(window))
	resolved := &config.Resolved{Command: []string{"${isort_bin}/isort"}}

	result, err := format.NewInvoker(0, "").Run(context.Background(), buf, resolved)
	as.NoError(err)
	as.Equal(isort, result.Args[0])
	as.Equal("import a\nimport b\n", buf.Text())
}

func TestWorkingDir(t *testing.T) {
	as := require.New(t)

	as.Equal("", format.WorkingDir(editor.NewBuffer("")))
	as.Equal("", format.WorkingDir(editor.NewBuffer("", editor.WithWindow(&editor.StaticWindow{}))))
	as.Equal(filepath.Join("/a", "b"), format.WorkingDir(editor.NewBuffer("", editor.WithFileName(filepath.Join("/a", "b", "c.py")))))
	as.Equal("/first", format.WorkingDir(editor.NewBuffer("", editor.WithWindow(&editor.StaticWindow{Dirs: []string{"/first", "/second"}}))))
}
