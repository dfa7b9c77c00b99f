package stats

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"
)

type Type int

const (
	// Processed counts buffers handed to the dispatcher.
	Processed Type = iota
	// Skipped counts buffers that were not run through isort, because they were not python or already sorted.
	Skipped
	// Formatted counts successful isort runs.
	Formatted
	// Changed counts buffers whose contents were replaced.
	Changed
	// Failed counts buffers that could not be sorted.
	Failed
)

func (t Type) String() string {
	switch t {
	case Processed:
		return "processed"
	case Skipped:
		return "skipped"
	case Formatted:
		return "formatted"
	case Changed:
		return "changed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Stats holds the counters of a single run. It is safe for concurrent use.
type Stats struct {
	start    time.Time
	counters map[Type]*atomic.Int32
}

// New creates Stats with every counter at zero and the clock started.
func New() *Stats {
	counters := make(map[Type]*atomic.Int32)
	for _, t := range []Type{Processed, Skipped, Formatted, Changed, Failed} {
		counters[t] = &atomic.Int32{}
	}

	return &Stats{
		start:    time.Now(),
		counters: counters,
	}
}

func (s *Stats) Add(t Type, delta int) int {
	return int(s.counters[t].Add(int32(delta)))
}

func (s *Stats) Value(t Type) int {
	return int(s.counters[t].Load())
}

func (s *Stats) Elapsed() time.Duration {
	return time.Since(s.start)
}

// Print writes a summary of the counters to w.
func (s *Stats) Print(w io.Writer) {
	components := []string{
		"processed %d files",
		"skipped %d files",
		"sorted %d files (%d changed)",
		"failed %d files",
		"in %v",
		"",
	}

	_, _ = fmt.Fprintf(w,
		strings.Join(components, "\n"),
		s.Value(Processed),
		s.Value(Skipped),
		s.Value(Formatted),
		s.Value(Changed),
		s.Value(Failed),
		s.Elapsed().Round(time.Millisecond),
	)
}
