package test

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/BurntSushi/toml"
	cp "github.com/otiai10/copy"
	"github.com/stretchr/testify/require"
)

// fakeIsort stands in for isort: it sorts the lines it reads from stdin.
// A few flags trigger other behaviour so error paths can be exercised:
//
//	--fail   reports an isort style error and exits with status 2
//	--warn   writes a warning to stderr but exits with status 0
//	--sleep  sleeps before sorting, for timeouts
//	--pwd    prints the working directory instead of sorting
//
// When FAKE_ISORT_ARGS is set the arguments are written to that file, separated by NUL bytes.
const fakeIsort = `#!/bin/sh
if [ -n "$FAKE_ISORT_ARGS" ]; then
	printf '%s\0' "$@" > "$FAKE_ISORT_ARGS"
fi
for arg in "$@"; do
	case "$arg" in
		--fail)
			echo "usage: isort [-h] [files]" >&2
			echo "isort: error: unrecognized arguments: --fail" >&2
			exit 2
			;;
		--warn)
			echo "Warning: deprecated option" >&2
			;;
		--sleep)
			sleep 30
			;;
		--pwd)
			pwd
			exit 0
			;;
	esac
done
LC_ALL=C sort
`

// SkipOnWindows skips tests which rely on a posix shell.
func SkipOnWindows(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("requires a posix shell")
	}
}

// FakeIsort installs a fake isort executable into a temporary directory, returning its path.
func FakeIsort(t *testing.T) string {
	t.Helper()
	SkipOnWindows(t)

	binDir := filepath.Join(t.TempDir(), "bin")
	require.NoError(t, os.Mkdir(binDir, 0o755))

	path := filepath.Join(binDir, "isort")
	require.NoError(t, os.WriteFile(path, []byte(fakeIsort), 0o755), "failed to write fake isort")

	return path
}

// FakeIsortOnPath installs the fake isort and prepends its directory to PATH for the duration of the test.
func FakeIsortOnPath(t *testing.T) string {
	t.Helper()

	path := FakeIsort(t)
	t.Setenv("PATH", filepath.Dir(path)+string(os.PathListSeparator)+os.Getenv("PATH"))

	return path
}

// RecordArgs makes the fake isort record its arguments, returning a function reading them back.
func RecordArgs(t *testing.T) func() []string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "args")
	t.Setenv("FAKE_ISORT_ARGS", path)

	return func() []string {
		b, err := os.ReadFile(path)
		require.NoError(t, err, "failed to read recorded arguments")

		var args []string
		for _, arg := range bytes.Split(bytes.TrimSuffix(b, []byte{0}), []byte{0}) {
			args = append(args, string(arg))
		}

		return args
	}
}

// WriteSettings encodes value as toml into path.
func WriteSettings(t *testing.T, path string, value any) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create settings file: %v", err)
	}
	defer f.Close()

	if err = toml.NewEncoder(f).Encode(value); err != nil {
		t.Fatalf("failed to write settings file: %v", err)
	}
}

// TempExamples copies the example python sources into a temporary directory and returns it.
func TempExamples(t *testing.T) string {
	t.Helper()

	tempDir := t.TempDir()
	require.NoError(t, cp.Copy(examplesDir(t), tempDir), "failed to copy test data to dir")

	return tempDir
}

func examplesDir(t *testing.T) string {
	t.Helper()

	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok, "failed to locate test helpers")

	return filepath.Join(filepath.Dir(file), "examples")
}

// ChangeWorkDir changes the current working directory for the duration of the test.
// The original directory is restored when the test ends.
func ChangeWorkDir(t *testing.T, dir string) {
	t.Helper()

	cwd, err := os.Getwd()
	require.NoError(t, err, "failed to get current working directory")

	t.Cleanup(func() {
		require.NoError(t, os.Chdir(cwd), "failed to restore working directory")
	})

	require.NoError(t, os.Chdir(dir), "failed to change working directory")
}
