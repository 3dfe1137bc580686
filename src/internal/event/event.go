// Package event defines the activity events a Session buffers during a
// process's lifetime and flushes at teardown, mirroring the
// shape Volta's original plugin event stream used.
package event

import (
	"encoding/json"
)

// Kind is the closed set of events a Session can record.
type Kind string

const (
	Start   Kind = "start"
	End     Kind = "end"
	Error   Kind = "error"
	ToolEnd Kind = "toolend"
)

// Event is one timestamped occurrence during the process's activity.
type Event struct {
	TimestampMillis int64           `json:"timestamp"`
	Name            string          `json:"name"`
	Kind            Kind            `json:"event"`
	ExitCode        int             `json:"exit_code,omitempty"`
	Error           string          `json:"error,omitempty"`
	Detail          json.RawMessage `json:"detail,omitempty"`
}

// Emitter receives a batch of buffered events at Session teardown. The
// default Emitter used in production is a no-op; a real deployment wires in
// whatever external plugin or telemetry endpoint the operator configures.
type Emitter interface {
	Emit(events []Event) error
}

// NoopEmitter discards every batch. This is Volta's default: without an
// explicit plugin configured, there is nothing to send events to.
type NoopEmitter struct{}

func (NoopEmitter) Emit([]Event) error { return nil }
