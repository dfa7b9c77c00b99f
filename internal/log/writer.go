package log

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/charmbracelet/log"
)

// Writer logs each non-blank line written to it at Level.
// It is used to echo the diagnostic output of child processes.
type Writer struct {
	Log   *log.Logger
	Level log.Level
}

func (l *Writer) Write(p []byte) (n int, err error) {
	scanner := bufio.NewScanner(bytes.NewReader(p))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		l.Log.Log(l.Level, line)
	}

	return len(p), nil
}
