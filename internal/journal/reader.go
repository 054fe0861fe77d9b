package journal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"

	"mmv/internal/mmverr"
)

// Reader reads runs back from the journal.
type Reader struct {
	fs   afero.Fs
	path string
}

// NewReader creates a Reader for the journal in dir.
func NewReader(fsys afero.Fs, dir string) *Reader {
	return &Reader{fs: fsys, path: filepath.Join(dir, FileName)}
}

// Events returns every event in the journal. A missing journal has no events.
func (r *Reader) Events() ([]Event, error) {
	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, mmverr.Wrapf(err, mmverr.ErrJournal, "failed to read journal %s", r.path)
	}

	var events []Event
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var e Event
		if err := json.Unmarshal(text, &e); err != nil {
			return nil, mmverr.Wrapf(err, mmverr.ErrJournal, "corrupt journal entry at %s:%d", r.path, line)
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, mmverr.Wrapf(err, mmverr.ErrJournal, "failed to scan journal %s", r.path)
	}
	return events, nil
}

// Runs groups the journal events by run, ordered by first appearance.
func (r *Reader) Runs() ([]*Run, error) {
	events, err := r.Events()
	if err != nil {
		return nil, err
	}

	var runs []*Run
	byID := make(map[RunID]*Run)
	for _, e := range events {
		run, ok := byID[e.RunID]
		if !ok {
			run = &Run{ID: e.RunID, Type: RunTypeMove, StartTime: e.Timestamp}
			byID[e.RunID] = run
			runs = append(runs, run)
		}
		if e.Type == EventRunStart {
			if t := e.Metadata[MetaRunType]; t != "" {
				run.Type = RunType(t)
			}
			run.UndoTarget = RunID(e.Metadata[MetaUndoTarget])
			run.StartTime = e.Timestamp
		}
		run.Events = append(run.Events, e)
	}
	return runs, nil
}

// LatestUndoable returns the most recent move run with MOVE events that no
// undo run has reversed yet, together with those pending moves in journal
// order. An undo that stopped early leaves the rest of its target pending.
// It returns a nil run when there is nothing to undo.
func (r *Reader) LatestUndoable() (*Run, []Event, error) {
	runs, err := r.Runs()
	if err != nil {
		return nil, nil, err
	}

	restored := make(map[RunID]map[movePair]int)
	for _, run := range runs {
		if run.Type != RunTypeUndo || run.UndoTarget == "" {
			continue
		}
		seen := restored[run.UndoTarget]
		if seen == nil {
			seen = make(map[movePair]int)
			restored[run.UndoTarget] = seen
		}
		for _, m := range run.Moves() {
			// A restore moves the destination back to the source.
			seen[movePair{src: m.DestinationPath, dst: m.SourcePath}]++
		}
	}

	for i := len(runs) - 1; i >= 0; i-- {
		run := runs[i]
		if run.Type != RunTypeMove {
			continue
		}
		if pending := pendingMoves(run, restored[run.ID]); len(pending) > 0 {
			return run, pending, nil
		}
	}
	return nil, nil, nil
}

type movePair struct {
	src, dst string
}

func pendingMoves(run *Run, restored map[movePair]int) []Event {
	var pending []Event
	for _, m := range run.Moves() {
		key := movePair{src: m.SourcePath, dst: m.DestinationPath}
		if restored[key] > 0 {
			restored[key]--
			continue
		}
		pending = append(pending, m)
	}
	return pending
}
