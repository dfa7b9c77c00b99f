package log_test

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	ilog "github.com/numtide/isorted/internal/log"
	"github.com/stretchr/testify/require"
)

func TestWriter(t *testing.T) {
	as := require.New(t)

	var buf bytes.Buffer

	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	w := &ilog.Writer{Log: logger, Level: log.DebugLevel}

	input := "isort: error: first\n\n   \nsecond"
	n, err := w.Write([]byte(input))
	as.NoError(err)
	as.Equal(len(input), n)

	out := buf.String()
	as.Contains(out, "isort: error: first")
	as.Contains(out, "second")
	as.Equal(2, bytes.Count(buf.Bytes(), []byte("DEBU")))
}
