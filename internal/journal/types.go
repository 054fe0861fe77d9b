// Package journal records every mmv run in an append-only JSON Lines file so
// that the moves of a run can be listed and reversed.
package journal

import "time"

// FileName is the journal file inside the journal directory.
const FileName = "mmv-journal.jsonl"

// RunID is a unique identifier for each run.
// It uses UUID v4 format: "xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx"
type RunID string

// EventType represents the type of journal event.
type EventType string

const (
	EventRunStart    EventType = "RUN_START"
	EventRunComplete EventType = "RUN_COMPLETE"
	EventRunAborted  EventType = "RUN_ABORTED"
	EventMove        EventType = "MOVE"
)

// RunType distinguishes pattern runs from undo runs.
type RunType string

const (
	RunTypeMove RunType = "MOVE"
	RunTypeUndo RunType = "UNDO"
)

// Metadata keys written on RUN_START events.
const (
	MetaRunType       = "runType"
	MetaSourcePattern = "sourcePattern"
	MetaDestPattern   = "destinationPattern"
	MetaUndoTarget    = "undoTargetId"
)

// Event is a single journal record.
type Event struct {
	Timestamp       time.Time
	RunID           RunID
	Type            EventType
	SourcePath      string
	DestinationPath string
	Error           string
	Metadata        map[string]string
}

// Run groups the events of one run in the order they were written.
type Run struct {
	ID         RunID
	Type       RunType
	StartTime  time.Time
	Events     []Event
	UndoTarget RunID
}

// Moves returns the MOVE events of the run.
func (r *Run) Moves() []Event {
	var moves []Event
	for _, e := range r.Events {
		if e.Type == EventMove {
			moves = append(moves, e)
		}
	}
	return moves
}
