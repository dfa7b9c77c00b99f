package format

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/numtide/isorted/config"
	"github.com/numtide/isorted/editor"
	"github.com/numtide/isorted/format"
	"golang.org/x/text/encoding"
)

// file is a buffer loaded from disk, along with what is needed to write it back.
type file struct {
	path    string
	mode    fs.FileMode
	content []byte
	codec   encoding.Encoding
	buffer  *editor.Buffer
}

// loadBuffer decodes content into a Buffer. The encoding is detected the same way the invoker does, so the
// buffer always carries an explicit encoding.
func loadBuffer(cfg *config.Config, window *editor.StaticWindow, path string, content []byte) (*file, error) {
	encName := format.DetectEncoding(cfg.Encoding, string(content), cfg.DefaultEncoding)

	codec, err := format.Codec(encName)
	if err != nil {
		return nil, err
	}

	text, err := format.Decode(codec, content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s as %s: %w", path, encName, err)
	}

	w := *window
	w.File = path

	return &file{
		path:    path,
		content: content,
		codec:   codec,
		buffer: editor.NewBuffer(text,
			editor.WithFileName(path),
			editor.WithEncoding(encName),
			editor.WithWindow(&w),
		),
	}, nil
}

func readFile(cfg *config.Config, window *editor.StaticWindow, path string) (*file, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	f, err := loadBuffer(cfg, window, path, content)
	if err != nil {
		return nil, err
	}

	f.mode = info.Mode().Perm()

	return f, nil
}

// encoded returns the current buffer contents in the file's encoding.
func (f *file) encoded() ([]byte, error) {
	b, err := format.Encode(f.codec, f.buffer.Text())
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", f.path, err)
	}

	return b, nil
}

// skipDir reports whether a directory should not be descended into: hidden directories and bytecode caches.
func skipDir(name string) bool {
	return name == "__pycache__" || (len(name) > 1 && strings.HasPrefix(name, "."))
}

// collectFiles expands paths into the regular files they name, walking directories.
// Each file is listed once, in the order it was first found.
func collectFiles(paths []string) ([]string, error) {
	var files []string

	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, path := range paths {
		path, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for %s: %w", path, err)
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("path %s not found: %w", path, err)
		}

		if !info.IsDir() {
			add(path)

			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			switch {
			case d.IsDir() && p != path && skipDir(d.Name()):
				return filepath.SkipDir
			case d.Type().IsRegular():
				add(p)
			}

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", path, err)
		}
	}

	return files, nil
}
