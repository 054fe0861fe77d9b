package orchestrator

import (
	"fmt"
	"path/filepath"
	"time"

	"mmv/internal/matcher"
	"mmv/internal/mmverr"
)

// State is the terminal state of a run.
type State string

const (
	// AllMoved means every discovered file was moved.
	AllMoved State = "ALL_MOVED"
	// Aborted means the run stopped at its first failure.
	Aborted State = "ABORTED"
	// Planned means a dry run computed every move without performing any.
	Planned State = "PLANNED"
)

// Summary describes how a run ended.
type Summary struct {
	Moves       []Move           // moves performed, or planned in a dry run
	State       State            // terminal state
	FailedIndex int              // zero-based index of the failing file, -1 when none
	ErrCode     mmverr.ErrorCode // code of the aborting error
	DryRun      bool
	Duration    time.Duration
}

// Moved returns the number of files moved (or planned).
func (s *Summary) Moved() int {
	return len(s.Moves)
}

// Failed reports whether the run was aborted.
func (s *Summary) Failed() bool {
	return s.State == Aborted
}

// String returns a one-line summary.
func (s *Summary) String() string {
	verb := "Moved"
	if s.DryRun {
		verb = "Would move"
	}
	line := fmt.Sprintf("%s %d %s in %s", verb, s.Moved(), plural(s.Moved()), s.Duration.Round(time.Millisecond))
	if s.Failed() {
		line += fmt.Sprintf(", aborted at file %d (%s)", s.FailedIndex+1, s.ErrCode)
	}
	return line
}

// RunStats contains statistics from a run.
type RunStats struct {
	Moved       int
	Duration    time.Duration
	ByDirectory map[string]int // destination directory -> files, only populated in verbose mode
}

// GenerateStats computes statistics from a summary.
// When verbose is true, ByDirectory holds a per destination directory breakdown.
func GenerateStats(summary *Summary, verbose bool) *RunStats {
	if summary == nil {
		return &RunStats{}
	}

	stats := &RunStats{
		Moved:    summary.Moved(),
		Duration: summary.Duration,
	}

	if verbose {
		stats.ByDirectory = make(map[string]int)
		for _, mv := range summary.Moves {
			dir, _ := matcher.SplitPattern(mv.Destination)
			if dir == "" {
				dir = "." + string(filepath.Separator)
			}
			stats.ByDirectory[dir]++
		}
	}

	return stats
}

func plural(n int) string {
	if n == 1 {
		return "file"
	}
	return "files"
}
