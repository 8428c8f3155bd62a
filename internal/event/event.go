// Package event defines the lifecycle event record handed to the hook
// engine. Events are created once by the emitter and never mutated.
package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is an immutable lifecycle event. The payload is an open-ended
// mapping of contextual fields (feature name, task identifier, ...).
type Event struct {
	Type      string
	ID        string
	Timestamp time.Time
	Payload   map[string]any
}

// New creates an event of the given type with a generated ID and the
// current timestamp. The payload is copied so later changes by the
// caller cannot leak into an already-emitted event.
func New(eventType string, payload map[string]any) Event {
	p := make(map[string]any, len(payload))
	for k, v := range payload {
		p[k] = v
	}
	return Event{
		Type:      eventType,
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Payload:   p,
	}
}

// Field returns the string form of a payload field and whether it exists.
func (e Event) Field(name string) (string, bool) {
	v, ok := e.Payload[name]
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%v", v), true
}

// MarshalJSON flattens the payload fields alongside event_type, event_id
// and timestamp into a single object. This is the exact byte stream a
// hook receives on stdin; the reserved keys always win over payload
// fields of the same name.
func (e Event) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Payload)+3)
	for k, v := range e.Payload {
		out[k] = v
	}
	out["event_type"] = e.Type
	out["event_id"] = e.ID
	out["timestamp"] = e.Timestamp.UTC().Format(time.RFC3339Nano)
	return json.Marshal(out)
}
