package journal

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"mmv/internal/mmverr"
)

// Writer appends events to the journal. Every event is written and synced
// before the call returns.
type Writer struct {
	mu         sync.Mutex
	file       afero.File
	path       string
	currentRun RunID
	now        func() time.Time
}

// Open creates the journal directory if needed and opens the journal for appending.
func Open(fsys afero.Fs, dir string) (*Writer, error) {
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return nil, mmverr.Wrapf(err, mmverr.ErrJournal, "failed to create journal directory %s", dir)
	}

	path := filepath.Join(dir, FileName)
	file, err := fsys.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, mmverr.Wrapf(err, mmverr.ErrJournal, "failed to open journal %s", path)
	}

	return &Writer{
		file: file,
		path: path,
		now:  time.Now,
	}, nil
}

// GenerateRunID generates a new UUID v4 format Run ID.
func GenerateRunID() (RunID, error) {
	uuid := make([]byte, 16)
	if _, err := rand.Read(uuid); err != nil {
		return "", fmt.Errorf("failed to generate UUID: %w", err)
	}

	uuid[6] = (uuid[6] & 0x0f) | 0x40 // Version 4
	uuid[8] = (uuid[8] & 0x3f) | 0x80 // Variant RFC 4122

	return RunID(fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		uuid[0:4],
		uuid[4:6],
		uuid[6:8],
		uuid[8:10],
		uuid[10:16],
	)), nil
}

// Path returns the journal file path.
func (w *Writer) Path() string {
	return w.path
}

// CurrentRun returns the ID of the run in progress, or "".
func (w *Writer) CurrentRun() RunID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.currentRun
}

// StartRun begins a run and writes its RUN_START event.
func (w *Writer) StartRun(runType RunType, metadata map[string]string) (RunID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	runID, err := GenerateRunID()
	if err != nil {
		return "", mmverr.Wrap(err, mmverr.ErrJournal, "failed to generate run ID")
	}

	meta := map[string]string{MetaRunType: string(runType)}
	for k, v := range metadata {
		meta[k] = v
	}

	if err := w.writeLocked(Event{RunID: runID, Type: EventRunStart, Metadata: meta}); err != nil {
		return "", err
	}
	w.currentRun = runID
	return runID, nil
}

// RecordMove writes a MOVE event for the current run.
func (w *Writer) RecordMove(src, dst string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.writeLocked(Event{
		RunID:           w.currentRun,
		Type:            EventMove,
		SourcePath:      src,
		DestinationPath: dst,
	})
}

// EndRun closes the current run with RUN_COMPLETE, or RUN_ABORTED when runErr is set.
func (w *Writer) EndRun(runErr error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	event := Event{RunID: w.currentRun, Type: EventRunComplete}
	if runErr != nil {
		event.Type = EventRunAborted
		event.Error = runErr.Error()
	}
	if err := w.writeLocked(event); err != nil {
		return err
	}
	w.currentRun = ""
	return nil
}

// Close closes the journal file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

func (w *Writer) writeLocked(event Event) error {
	event.Timestamp = w.now()

	data, err := json.Marshal(event)
	if err != nil {
		return mmverr.Wrap(err, mmverr.ErrJournal, "failed to marshal journal event")
	}
	data = append(data, '\n')

	if _, err := w.file.Write(data); err != nil {
		return mmverr.Wrapf(err, mmverr.ErrJournal, "failed to write journal %s", w.path)
	}
	if err := w.file.Sync(); err != nil {
		return mmverr.Wrapf(err, mmverr.ErrJournal, "failed to sync journal %s", w.path)
	}
	return nil
}
