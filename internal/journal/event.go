package journal

import (
	"encoding/json"
	"time"
)

// ISO8601Format is the time format used for journal timestamps.
const ISO8601Format = time.RFC3339Nano

// eventJSON is the wire form of an Event. Optional fields are pointers so
// that empty values are omitted.
type eventJSON struct {
	Timestamp       string            `json:"timestamp"`
	RunID           RunID             `json:"runId"`
	Type            EventType         `json:"eventType"`
	SourcePath      *string           `json:"sourcePath,omitempty"`
	DestinationPath *string           `json:"destinationPath,omitempty"`
	Error           *string           `json:"error,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// MarshalJSON implements json.Marshaler for Event.
func (e Event) MarshalJSON() ([]byte, error) {
	ej := eventJSON{
		Timestamp: e.Timestamp.UTC().Format(ISO8601Format),
		RunID:     e.RunID,
		Type:      e.Type,
		Metadata:  e.Metadata,
	}
	if e.SourcePath != "" {
		ej.SourcePath = &e.SourcePath
	}
	if e.DestinationPath != "" {
		ej.DestinationPath = &e.DestinationPath
	}
	if e.Error != "" {
		ej.Error = &e.Error
	}
	return json.Marshal(ej)
}

// UnmarshalJSON implements json.Unmarshaler for Event.
func (e *Event) UnmarshalJSON(data []byte) error {
	var ej eventJSON
	if err := json.Unmarshal(data, &ej); err != nil {
		return err
	}

	t, err := time.Parse(ISO8601Format, ej.Timestamp)
	if err != nil {
		return err
	}

	*e = Event{
		Timestamp: t,
		RunID:     ej.RunID,
		Type:      ej.Type,
		Metadata:  ej.Metadata,
	}
	if ej.SourcePath != nil {
		e.SourcePath = *ej.SourcePath
	}
	if ej.DestinationPath != nil {
		e.DestinationPath = *ej.DestinationPath
	}
	if ej.Error != nil {
		e.Error = *ej.Error
	}
	return nil
}
