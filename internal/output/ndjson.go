// Package output renders command results for two audiences: NDJSON events
// for tooling that scrapes stdout, and styled text for humans.
package output

import (
	"encoding/json"
	"io"

	"github.com/gdbtap/gdbtap/internal/domain"
)

// SchemaVersion identifies the NDJSON event contract.
const SchemaVersion = 1

// NDJSONWriter emits one JSON event per line.
type NDJSONWriter struct {
	enc *json.Encoder
}

// NewNDJSONWriter creates an NDJSON writer over w.
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	return &NDJSONWriter{enc: json.NewEncoder(w)}
}

// ValueEvent carries one evaluated expression result.
type ValueEvent struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	Command       string `json:"command"`
	Value         string `json:"value"`
}

// WriteValue emits a value event for command.
func (w *NDJSONWriter) WriteValue(command, value string) error {
	return w.enc.Encode(ValueEvent{
		Type:          "value",
		SchemaVersion: SchemaVersion,
		Command:       command,
		Value:         value,
	})
}

// ReplyEvent carries the raw reply lines of a command.
type ReplyEvent struct {
	Type          string   `json:"type"`
	SchemaVersion int      `json:"schemaVersion"`
	Command       string   `json:"command"`
	Lines         []string `json:"lines"`
}

// WriteReply emits the raw reply lines for command.
func (w *NDJSONWriter) WriteReply(command string, lines []string) error {
	if lines == nil {
		lines = []string{}
	}
	return w.enc.Encode(ReplyEvent{
		Type:          "reply",
		SchemaVersion: SchemaVersion,
		Command:       command,
		Lines:         lines,
	})
}

// ToggleEvent reports a breakpoint toggle outcome.
type ToggleEvent struct {
	Type          string            `json:"type"`
	SchemaVersion int               `json:"schemaVersion"`
	Action        string            `json:"action"`
	Breakpoint    domain.Breakpoint `json:"breakpoint"`
}

// WriteToggle emits a toggle event.
func (w *NDJSONWriter) WriteToggle(action domain.ToggleAction, bp domain.Breakpoint) error {
	return w.enc.Encode(ToggleEvent{
		Type:          "toggle",
		SchemaVersion: SchemaVersion,
		Action:        string(action),
		Breakpoint:    bp,
	})
}

// BreakpointsEvent carries the full breakpoint table.
type BreakpointsEvent struct {
	Type          string              `json:"type"`
	SchemaVersion int                 `json:"schemaVersion"`
	Count         int                 `json:"count"`
	Breakpoints   []domain.Breakpoint `json:"breakpoints"`
}

// WriteBreakpoints emits the breakpoint table.
func (w *NDJSONWriter) WriteBreakpoints(bps []domain.Breakpoint) error {
	if bps == nil {
		bps = []domain.Breakpoint{}
	}
	return w.enc.Encode(BreakpointsEvent{
		Type:          "breakpoints",
		SchemaVersion: SchemaVersion,
		Count:         len(bps),
		Breakpoints:   bps,
	})
}

// StatusEvent reports session discovery state.
type StatusEvent struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	Active        bool   `json:"active"`
	PaneID        string `json:"pane_id,omitempty"`
}

// WriteStatus emits a session status event.
func (w *NDJSONWriter) WriteStatus(active bool, paneID string) error {
	return w.enc.Encode(StatusEvent{
		Type:          "status",
		SchemaVersion: SchemaVersion,
		Active:        active,
		PaneID:        paneID,
	})
}

// ErrorEvent is the machine-readable failure shape.
type ErrorEvent struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	Code          string `json:"code"`
	Message       string `json:"message"`
	Hint          string `json:"hint,omitempty"`
}

// WriteError emits a coded error event. An optional hint tells the caller
// what to try next.
func (w *NDJSONWriter) WriteError(code, message string, hint ...string) error {
	ev := ErrorEvent{
		Type:          "error",
		SchemaVersion: SchemaVersion,
		Code:          code,
		Message:       message,
	}
	if len(hint) > 0 {
		ev.Hint = hint[0]
	}
	return w.enc.Encode(ev)
}
